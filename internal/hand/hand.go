// Package hand holds the value types shared by the outcome evaluator, the
// winning-line generator and the round state machine: the observed seat's
// hand input, its melds, the win flags and the table context.
package hand

import (
	"slices"

	"github.com/lox/mahjongdojo/tile"
)

// MeldKind identifies the shape of a called group
type MeldKind string

const (
	Chi MeldKind = "chi"
	Pon MeldKind = "pon"
	Kan MeldKind = "kan"
)

// NoClaim marks a meld without a rotated (claimed) tile
const NoClaim = -1

// Meld is a called or declared group. Claimed indexes the rotated tile in Tiles.
type Meld struct {
	Kind    MeldKind    `json:"kind"`
	Tiles   []tile.Tile `json:"tiles"`
	Claimed int         `json:"claimed"`
	Closed  bool        `json:"closed,omitempty"`
	Added   bool        `json:"added,omitempty"`
}

// IsOpen reports whether the meld breaks a concealed hand
func (m Meld) IsOpen() bool {
	return !(m.Kind == Kan && m.Closed)
}

// Clone returns a deep copy
func (m Meld) Clone() Meld {
	m.Tiles = slices.Clone(m.Tiles)
	return m
}

// Input is the observed seat's hand as seen by the evaluator
type Input struct {
	Dora      []tile.Tile `json:"dora"`
	Ura       []tile.Tile `json:"ura,omitempty"` // revealed after a riichi win
	Concealed []tile.Tile `json:"concealed"`
	Drawn     *tile.Tile  `json:"drawn"`
	Melds     []Meld      `json:"melds"`
}

// Combined returns concealed tiles plus the drawn tile, if any
func (in Input) Combined() []tile.Tile {
	out := slices.Clone(in.Concealed)
	if in.Drawn != nil {
		out = append(out, *in.Drawn)
	}
	return out
}

// MeldTiles flattens all meld tiles
func (in Input) MeldTiles() []tile.Tile {
	var out []tile.Tile
	for _, m := range in.Melds {
		out = append(out, m.Tiles...)
	}
	return out
}

// IsConcealed reports whether every meld is a closed kan
func (in Input) IsConcealed() bool {
	for _, m := range in.Melds {
		if m.IsOpen() {
			return false
		}
	}
	return true
}

// Clone returns a deep copy
func (in Input) Clone() Input {
	out := Input{
		Dora:      slices.Clone(in.Dora),
		Ura:       slices.Clone(in.Ura),
		Concealed: slices.Clone(in.Concealed),
	}
	if in.Drawn != nil {
		d := *in.Drawn
		out.Drawn = &d
	}
	if in.Melds != nil {
		out.Melds = make([]Meld, len(in.Melds))
		for i, m := range in.Melds {
			out.Melds[i] = m.Clone()
		}
	}
	return out
}

// RiichiLevel is the riichi declaration state
type RiichiLevel string

const (
	RiichiNone   RiichiLevel = "none"
	RiichiSingle RiichiLevel = "riichi"
	RiichiDouble RiichiLevel = "double-riichi"
)

// Active reports whether any riichi has been declared
func (r RiichiLevel) Active() bool {
	return r == RiichiSingle || r == RiichiDouble
}

// Options are the situational win flags
type Options struct {
	Riichi  RiichiLevel `json:"riichi"`
	Ron     bool        `json:"ron"`
	Tsumo   bool        `json:"tsumo"`
	Ippatsu bool        `json:"ippatsu"`
	Rinshan bool        `json:"rinshan"`
	Chankan bool        `json:"chankan"`
	Haitei  bool        `json:"haitei"`
	Tenhou  bool        `json:"tenhou"`
}

// DefaultOptions returns flags for a fresh round
func DefaultOptions() Options {
	return Options{Riichi: RiichiNone}
}
