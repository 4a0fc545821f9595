package tile

import (
	"fmt"
	"slices"
	"strings"
)

// Suit represents a tile suit
type Suit uint8

const (
	Man Suit = iota
	Pin
	Sou
	Honor
)

// String returns the notation letter of the suit
func (s Suit) String() string {
	switch s {
	case Man:
		return "m"
	case Pin:
		return "p"
	case Sou:
		return "s"
	case Honor:
		return "z"
	default:
		return "?"
	}
}

// IsNumber reports whether the suit has ranks 1-9
func (s Suit) IsNumber() bool {
	return s <= Sou
}

// Honor ranks
const (
	East uint8 = iota + 1
	South
	West
	North
	White
	Green
	RedDragon
)

// Kinds is the number of distinct tiles ignoring red fives
const Kinds = 34

// Tile is a single playing tile. Red is only meaningful for rank-5 number tiles.
type Tile struct {
	Suit Suit
	Rank uint8
	Red  bool
}

// New creates a non-red tile
func New(suit Suit, rank uint8) Tile {
	return Tile{Suit: suit, Rank: rank}
}

// NewRed creates a red five of the given number suit
func NewRed(suit Suit) Tile {
	return Tile{Suit: suit, Rank: 5, Red: true}
}

// FromKind returns the non-red tile for a 0..33 kind index
func FromKind(kind int) Tile {
	if kind < 0 || kind >= Kinds {
		panic(fmt.Sprintf("tile kind %d out of range", kind))
	}
	return Tile{Suit: Suit(kind / 9), Rank: uint8(kind%9) + 1}
}

// Valid reports whether the tile exists in a standard set
func (t Tile) Valid() bool {
	switch {
	case t.Suit.IsNumber():
		if t.Red && t.Rank != 5 {
			return false
		}
		return t.Rank >= 1 && t.Rank <= 9
	case t.Suit == Honor:
		return !t.Red && t.Rank >= 1 && t.Rank <= 7
	}
	return false
}

// Kind returns the 0..33 index of the tile, ignoring the red flag
func (t Tile) Kind() int {
	return int(t.Suit)*9 + int(t.Rank) - 1
}

// IsFive reports whether the tile is a rank-5 number tile
func (t Tile) IsFive() bool {
	return t.Suit.IsNumber() && t.Rank == 5
}

// IsHonor reports whether the tile is a wind or dragon
func (t Tile) IsHonor() bool {
	return t.Suit == Honor
}

// IsTerminal reports whether the tile is a 1 or 9 of a number suit
func (t Tile) IsTerminal() bool {
	return t.Suit.IsNumber() && (t.Rank == 1 || t.Rank == 9)
}

// IsYaochuu reports whether the tile is a terminal or an honor
func (t Tile) IsYaochuu() bool {
	return t.IsHonor() || t.IsTerminal()
}

// IsDragon reports whether the tile is white, green or red dragon
func (t Tile) IsDragon() bool {
	return t.Suit == Honor && t.Rank >= White
}

// IsWind reports whether the tile is a wind
func (t Tile) IsWind() bool {
	return t.Suit == Honor && t.Rank <= North
}

// Plain returns the tile with the red flag cleared
func (t Tile) Plain() Tile {
	t.Red = false
	return t
}

// String returns the notation form, e.g. "5m", "0p" (red five) or "7z"
func (t Tile) String() string {
	if t.Red {
		return "0" + t.Suit.String()
	}
	return fmt.Sprintf("%d%s", t.Rank, t.Suit)
}

// MarshalText encodes the tile in notation form
func (t Tile) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid tile %d/%d", t.Suit, t.Rank)
	}
	return []byte(t.String()), nil
}

// UnmarshalText decodes a single tile in notation form
func (t *Tile) UnmarshalText(b []byte) error {
	tiles, err := Parse(string(b))
	if err != nil {
		return err
	}
	if len(tiles) != 1 {
		return fmt.Errorf("expected one tile, got %q", b)
	}
	*t = tiles[0]
	return nil
}

// Equal compares suit and rank, and the red flag when both are rank-5 number tiles
func Equal(a, b Tile) bool {
	if a.Suit != b.Suit || a.Rank != b.Rank {
		return false
	}
	if a.IsFive() && b.IsFive() {
		return a.Red == b.Red
	}
	return true
}

// SameKind compares suit and rank only
func SameKind(a, b Tile) bool {
	return a.Suit == b.Suit && a.Rank == b.Rank
}

// Compare orders tiles by suit, rank, then non-red before red
func Compare(a, b Tile) int {
	if a.Suit != b.Suit {
		return int(a.Suit) - int(b.Suit)
	}
	if a.Rank != b.Rank {
		return int(a.Rank) - int(b.Rank)
	}
	if !a.IsFive() || a.Red == b.Red {
		return 0
	}
	if a.Red {
		return 1
	}
	return -1
}

// Sort sorts tiles in place in canonical order
func Sort(tiles []Tile) {
	slices.SortStableFunc(tiles, Compare)
}

// Sorted returns a sorted copy
func Sorted(tiles []Tile) []Tile {
	out := slices.Clone(tiles)
	Sort(out)
	return out
}

// Unique returns the distinct tiles of a slice in canonical order
func Unique(tiles []Tile) []Tile {
	out := Sorted(tiles)
	return slices.CompactFunc(out, Equal)
}

// Index returns the position of the first tile equal to t, or -1
func Index(tiles []Tile, t Tile) int {
	return slices.IndexFunc(tiles, func(x Tile) bool { return Equal(x, t) })
}

// Contains reports whether an equal tile is present
func Contains(tiles []Tile, t Tile) bool {
	return Index(tiles, t) >= 0
}

// Counts returns kind counts ignoring red
func Counts(tiles []Tile) [Kinds]int {
	var c [Kinds]int
	for _, t := range tiles {
		c[t.Kind()]++
	}
	return c
}

// CountKind returns how many tiles share t's kind
func CountKind(tiles []Tile, t Tile) int {
	n := 0
	for _, x := range tiles {
		if SameKind(x, t) {
			n++
		}
	}
	return n
}

// DoraFromIndicator returns the tile indicated by a dora indicator
func DoraFromIndicator(ind Tile) Tile {
	switch {
	case ind.Suit.IsNumber():
		return New(ind.Suit, ind.Rank%9+1)
	case ind.IsWind():
		return New(Honor, ind.Rank%4+1)
	default:
		return New(Honor, (ind.Rank-White+1)%3+White)
	}
}

// Parse parses notation such as "123m406p789s1122z". A 0 denotes a red five.
func Parse(s string) ([]Tile, error) {
	var tiles []Tile
	var pending []byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			pending = append(pending, c)
		case c == ' ' || c == ',':
			continue
		default:
			suit, ok := suitFromLetter(c)
			if !ok {
				return nil, fmt.Errorf("invalid suit %q in %q", c, s)
			}
			if len(pending) == 0 {
				return nil, fmt.Errorf("suit %q without ranks in %q", c, s)
			}
			for _, d := range pending {
				t := Tile{Suit: suit, Rank: d - '0'}
				if d == '0' {
					t = Tile{Suit: suit, Rank: 5, Red: true}
				}
				if !t.Valid() {
					return nil, fmt.Errorf("invalid tile %c%c in %q", d, c, s)
				}
				tiles = append(tiles, t)
			}
			pending = pending[:0]
		}
	}
	if len(pending) > 0 {
		return nil, fmt.Errorf("trailing ranks without suit in %q", s)
	}
	return tiles, nil
}

// MustParse is like Parse but panics on error
func MustParse(s string) []Tile {
	tiles, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return tiles
}

// Format renders tiles in compact notation, grouping consecutive tiles of one suit
func Format(tiles []Tile) string {
	var b strings.Builder
	for i, t := range tiles {
		if t.Red {
			b.WriteByte('0')
		} else {
			b.WriteByte('0' + t.Rank)
		}
		if i == len(tiles)-1 || tiles[i+1].Suit != t.Suit {
			b.WriteString(t.Suit.String())
		}
	}
	return b.String()
}

func suitFromLetter(c byte) (Suit, bool) {
	switch c {
	case 'm', 'M':
		return Man, true
	case 'p', 'P':
		return Pin, true
	case 's', 'S':
		return Sou, true
	case 'z', 'Z':
		return Honor, true
	}
	return 0, false
}
