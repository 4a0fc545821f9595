// Package outcome classifies the observed seat's hand at any decision point:
// already winning, some exchanges away, waiting, choosing a discard, or able
// to win on the tile just taken.
package outcome

import (
	"fmt"

	"github.com/lox/mahjongdojo/internal/hora"
	"github.com/lox/mahjongdojo/tile"
)

// Result is one of Winning, Advancing, Ready, PendingDiscard or ImmediateWin.
// A nil Result means the hand size cannot be classified. Results may be
// shared through the cache and must not be modified.
type Result interface {
	isResult()
}

// Availability is a tile with the number of copies not yet visible
type Availability struct {
	Tile  tile.Tile `json:"tile"`
	Count int       `json:"count"`
}

// Winning holds the lines of a tenpai hand whose winning tiles are known
type Winning struct {
	Lines []hora.Line
}

// Advancing is a hand Shanten exchanges from tenpai and the tiles that
// bring it closer
type Advancing struct {
	Shanten int
	Tiles   []Availability
}

// Ready is a tenpai hand that is not yet a full thirteen-tile account,
// listed by its waits
type Ready struct {
	Tiles []Availability
}

// Candidate is a discard and the result it leaves behind
type Candidate struct {
	Tile tile.Tile
	Next Result
}

// PendingDiscard lists every discard tied for the best result
type PendingDiscard struct {
	Candidates []Candidate
}

// ImmediateWin means the tile just taken completes the hand
type ImmediateWin struct{}

func (Winning) isResult()        {}
func (Advancing) isResult()      {}
func (Ready) isResult()          {}
func (PendingDiscard) isResult() {}
func (ImmediateWin) isResult()   {}

// Rank orders resting results for discard choice. Winning and Ready rank 0,
// Advancing ranks by shanten.
func Rank(r Result) int {
	switch r := r.(type) {
	case Winning, Ready:
		return 0
	case Advancing:
		return r.Shanten
	}
	panic(fmt.Sprintf("outcome: cannot rank %T", r))
}

// Shanten reports the exchanges needed for a resting result. ok is false for
// results that are not resting.
func Shanten(r Result) (n int, ok bool) {
	switch r := r.(type) {
	case Winning:
		return 0, true
	case Advancing:
		return r.Shanten, true
	}
	return 0, false
}

// Lines returns the winning lines of r that use t, or all of them when t is
// nil.
func Lines(r Result, t *tile.Tile) []hora.Line {
	w, ok := r.(Winning)
	if !ok {
		return nil
	}
	if t == nil {
		return w.Lines
	}
	var out []hora.Line
	for _, l := range w.Lines {
		if tile.Equal(l.Tile, *t) {
			out = append(out, l)
		}
	}
	return out
}
