package outcome

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/lox/mahjongdojo/internal/hand"
	"github.com/lox/mahjongdojo/internal/hora"
	"github.com/lox/mahjongdojo/internal/shanten"
	"github.com/lox/mahjongdojo/tile"
)

// Query is everything a classification depends on
type Query struct {
	Table    hand.Table
	Input    hand.Input
	Options  hand.Options
	Rule     hand.Rule
	Discards []tile.Tile // every seat's discards
}

// Evaluator classifies hands. It is safe for concurrent use.
type Evaluator struct {
	cache  *Cache
	logger *log.Logger
}

// NewEvaluator creates an evaluator. A nil cache disables memoization.
func NewEvaluator(cache *Cache, logger *log.Logger) *Evaluator {
	return &Evaluator{cache: cache, logger: logger.WithPrefix("outcome")}
}

// Evaluate classifies the hand in q
func (e *Evaluator) Evaluate(q Query) Result {
	key := q.key()
	if r, ok := e.cache.Get(key); ok {
		return r
	}
	r := e.evaluate(q)
	e.cache.Set(key, r)
	return r
}

func (e *Evaluator) evaluate(q Query) Result {
	combined := q.Input.Combined()
	n := len(combined)
	if n%3 == 0 || n > 18 {
		return nil
	}
	switch {
	case n%3 == 1:
		return e.resting(q, combined)
	case q.Input.Drawn == nil:
		return e.afterCall(q)
	default:
		return e.afterDraw(q)
	}
}

// resting classifies a hand that is waiting for a tile
func (e *Evaluator) resting(q Query, combined []tile.Tile) Result {
	n := len(combined)
	melds := (14 - n - 1) / 3
	counts := tile.Counts(combined)
	own := tile.Counts(append(slices.Clone(combined), q.Input.MeldTiles()...))
	regular := shanten.Regular(counts, melds)

	ctx := hora.Context{Table: q.Table, Options: q.Options, Rule: q.Rule}
	in := q.Input.Clone()
	in.Concealed, in.Drawn = combined, nil

	if n == 13 {
		pairs := shanten.SevenPairs(counts)
		orphans := shanten.Orphans(counts)
		if regular == 0 || pairs == 0 || orphans == 0 {
			var lines []hora.Line
			if regular == 0 {
				lines = append(lines, hora.Generate(ctx, in, hora.Regular)...)
			}
			if pairs == 0 {
				lines = append(lines, hora.Generate(ctx, in, hora.SevenPairs)...)
			}
			if orphans == 0 {
				lines = append(lines, hora.Generate(ctx, in, hora.Orphans)...)
			}
			lines = hora.Unique(lines)
			e.logger.Debug("Hand is tenpai", "hand", tile.Format(combined), "lines", len(lines))
			return Winning{Lines: lines}
		}

		best := min(regular, pairs, orphans)
		var kinds []int
		if regular == best {
			kinds = append(kinds, shanten.Advancing(shanten.FormRegular, counts, own, 0)...)
		}
		if pairs == best {
			kinds = append(kinds, shanten.Advancing(shanten.FormSevenPairs, counts, own, 0)...)
		}
		if orphans == best {
			kinds = append(kinds, shanten.Advancing(shanten.FormOrphans, counts, own, 0)...)
		}
		return Advancing{Shanten: best, Tiles: q.availabilities(kinds)}
	}

	if n+3*len(q.Input.Melds) == 13 {
		if regular == 0 {
			return Winning{Lines: hora.Unique(hora.Generate(ctx, in, hora.Regular))}
		}
		return Advancing{Shanten: regular, Tiles: q.availabilities(shanten.Advancing(shanten.FormRegular, counts, own, melds))}
	}
	if regular == 0 {
		return Ready{Tiles: q.availabilities(shanten.Waits(counts, own, melds))}
	}
	return Advancing{Shanten: regular, Tiles: q.availabilities(shanten.Advancing(shanten.FormRegular, counts, own, melds))}
}

// afterCall classifies a hand that must discard after a call. The tile taken
// last sits at the end of the concealed tiles.
func (e *Evaluator) afterCall(q Query) Result {
	concealed := q.Input.Concealed
	last := concealed[len(concealed)-1]
	rest := concealed[:len(concealed)-1]

	base := e.Evaluate(q.withHand(slices.Clone(rest), nil))
	if r := shortCircuit(base, last); r != nil {
		return r
	}

	var candidates []Candidate
	for _, t := range tile.Unique(rest) {
		if tile.Equal(t, last) {
			continue
		}
		candidates = append(candidates, Candidate{Tile: t, Next: e.discard(q, t)})
	}
	candidates = append(candidates, Candidate{Tile: last, Next: base})
	return PendingDiscard{Candidates: bestCandidates(candidates)}
}

// afterDraw classifies a hand holding a drawn tile
func (e *Evaluator) afterDraw(q Query) Result {
	drawn := *q.Input.Drawn

	// the drawn tile can only complete the hand as a self-draw
	bq := q.withHand(slices.Clone(q.Input.Concealed), nil)
	bq.Options.Tsumo, bq.Options.Ron = true, false
	base := e.Evaluate(bq)
	if r := shortCircuit(base, drawn); r != nil {
		return r
	}

	var candidates []Candidate
	for _, t := range tile.Unique(q.Input.Concealed) {
		candidates = append(candidates, Candidate{Tile: t, Next: e.discard(q, t)})
	}
	candidates = append(candidates, Candidate{Tile: drawn, Next: base})
	return PendingDiscard{Candidates: bestCandidates(candidates)}
}

// discard evaluates the hand with one copy of t removed from the concealed
// tiles, keeping any drawn tile.
func (e *Evaluator) discard(q Query, t tile.Tile) Result {
	concealed := slices.Clone(q.Input.Concealed)
	i := tile.Index(concealed, t)
	if i < 0 {
		panic(fmt.Sprintf("outcome: discard %s missing from %s", t, tile.Format(concealed)))
	}
	concealed = slices.Delete(concealed, i, i+1)
	next := e.Evaluate(q.withHand(concealed, q.Input.Drawn))
	switch next.(type) {
	case Winning, Advancing, Ready:
		return next
	}
	panic(fmt.Sprintf("outcome: discarding %s from %s left %T", t, tile.Format(q.Input.Combined()), next))
}

// shortCircuit returns the result when the baseline already wins on t
func shortCircuit(base Result, t tile.Tile) Result {
	switch b := base.(type) {
	case Winning:
		if lines := Lines(b, &t); len(lines) > 0 {
			return Winning{Lines: lines}
		}
	case Ready:
		for _, a := range b.Tiles {
			if tile.Equal(a.Tile, t) {
				return ImmediateWin{}
			}
		}
	case Advancing:
	default:
		panic(fmt.Sprintf("outcome: baseline for %s is %T", t, base))
	}
	return nil
}

func bestCandidates(all []Candidate) []Candidate {
	best := Rank(all[0].Next)
	for _, c := range all[1:] {
		best = min(best, Rank(c.Next))
	}
	out := make([]Candidate, 0, len(all))
	for _, c := range all {
		if Rank(c.Next) == best {
			out = append(out, c)
		}
	}
	return out
}

func (q Query) withHand(concealed []tile.Tile, drawn *tile.Tile) Query {
	in := q.Input.Clone()
	in.Concealed = concealed
	in.Drawn = nil
	if drawn != nil {
		d := *drawn
		in.Drawn = &d
	}
	q.Input = in
	return q
}
