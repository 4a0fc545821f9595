package hand

import (
	"fmt"

	"github.com/lox/mahjongdojo/tile"
)

// Wind is an absolute seat or round wind
type Wind string

const (
	WindEast  Wind = "east"
	WindSouth Wind = "south"
	WindWest  Wind = "west"
	WindNorth Wind = "north"
)

// Winds lists the winds in seating order
var Winds = [4]Wind{WindEast, WindSouth, WindWest, WindNorth}

// Index returns the position of the wind in seating order
func (w Wind) Index() int {
	for i, x := range Winds {
		if x == w {
			return i
		}
	}
	panic(fmt.Sprintf("unknown wind %q", string(w)))
}

// Tile returns the honor tile of the wind
func (w Wind) Tile() tile.Tile {
	return tile.New(tile.Honor, uint8(w.Index())+tile.East)
}

// Table is the context of the round being played
type Table struct {
	Round          Wind `json:"round"`
	Seat           Wind `json:"seat"`
	RoundCount     int  `json:"roundCount"`
	Honba          bool `json:"honba"`
	Tenpai         bool `json:"tenpai"`
	RiichiLastGame bool `json:"riichiLastGame"`
	Continue       int  `json:"continue"`
	Deposit        int  `json:"deposit"`
}

// DefaultTable is the table before the first deal
func DefaultTable() Table {
	return Table{Round: WindEast, Seat: WindEast, RoundCount: 1}
}

// IsDealer reports whether the observed seat is East
func (t Table) IsDealer() bool {
	return t.Seat == WindEast
}

// Seat is a position relative to the observed player
type Seat int

const (
	Self Seat = iota
	Shimocha
	Toimen
	Kamicha
)

// Seats lists the relative seats in turn order
var Seats = [4]Seat{Self, Shimocha, Toimen, Kamicha}

// Next returns the seat that acts after s
func (s Seat) Next() Seat {
	return (s + 1) % 4
}

// String returns the conventional name of the seat
func (s Seat) String() string {
	switch s {
	case Self:
		return "self"
	case Shimocha:
		return "shimocha"
	case Toimen:
		return "toimen"
	case Kamicha:
		return "kamicha"
	}
	return "?"
}

// MarshalText encodes the seat by name
func (s Seat) MarshalText() ([]byte, error) {
	if s < Self || s > Kamicha {
		return nil, fmt.Errorf("invalid seat %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a seat name
func (s *Seat) UnmarshalText(b []byte) error {
	for _, x := range Seats {
		if x.String() == string(b) {
			*s = x
			return nil
		}
	}
	return fmt.Errorf("unknown seat %q", b)
}
