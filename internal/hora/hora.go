// Package hora turns a tenpai hand into its winning lines. Each line names
// the winning tile, how it was won, and the fu, han, yaku and payments that
// result.
package hora

import (
	"cmp"
	"slices"

	"github.com/lox/mahjongdojo/internal/hand"
	"github.com/lox/mahjongdojo/internal/shanten"
	"github.com/lox/mahjongdojo/tile"
)

// Source is how a winning tile arrives
type Source string

const (
	Ron   Source = "ron"
	Tsumo Source = "tsumo"
)

// Shape selects which winning form to generate lines for
type Shape uint8

const (
	Regular Shape = iota
	SevenPairs
	Orphans
)

// Yaku is a single scoring element. Yakuman is the yakuman multiplier and is
// zero for ordinary yaku.
type Yaku struct {
	Name    string `json:"name"`
	Han     int    `json:"han,omitempty"`
	Yakuman int    `json:"yakuman,omitempty"`
}

// IsBonus reports whether the element only counts dora
func (y Yaku) IsBonus() bool {
	switch y.Name {
	case "dora", "red-dora", "ura-dora":
		return true
	}
	return false
}

// Line is one way to win
type Line struct {
	Tile    tile.Tile `json:"tile"`
	Source  Source    `json:"source"`
	Fu      int       `json:"fu"`
	Han     int       `json:"han"`
	Yakuman int       `json:"yakuman,omitempty"`
	Yaku    []Yaku    `json:"yaku"`
	Points  Points    `json:"points"`
}

// HasRealYaku reports whether the line scores without dora
func (l Line) HasRealYaku() bool {
	for _, y := range l.Yaku {
		if y.Yakuman > 0 || !y.IsBonus() {
			return true
		}
	}
	return false
}

// Context is everything outside the tiles that affects scoring
type Context struct {
	Table   hand.Table
	Options hand.Options
	Rule    hand.Rule
}

// Generate lists every winning line for a hand one tile from complete in the
// given shape. The input holds no drawn tile; each candidate winning tile is
// tried as both ron and tsumo unless the options pin the source.
func Generate(ctx Context, in hand.Input, shape Shape) []Line {
	base := tile.Counts(in.Concealed)
	own := tile.Counts(append(in.Combined(), in.MeldTiles()...))

	var lines []Line
	for k := range tile.Kinds {
		if own[k] >= 4 {
			continue
		}
		c := base
		c[k]++
		readings := readingsFor(c, k, in.Melds, shape)
		if len(readings) == 0 {
			continue
		}
		for _, win := range variants(tile.FromKind(k), ctx.Rule.Red) {
			for _, src := range sources(ctx.Options) {
				for _, r := range readings {
					lines = append(lines, score(ctx, in, r, win, src))
				}
			}
		}
	}
	return lines
}

func readingsFor(c shanten.Counts, win int, melds []hand.Meld, shape Shape) []reading {
	switch shape {
	case SevenPairs:
		if len(melds) > 0 || !isSevenPairs(c) {
			return nil
		}
		return []reading{{form: SevenPairs, pair: win, wait: waitTanki, at: -1, counts: c, win: win}}
	case Orphans:
		if len(melds) > 0 || !isOrphans(c) {
			return nil
		}
		return []reading{{form: Orphans, pair: -1, wait: orphansWait(c, win), at: -1, counts: c, win: win}}
	}
	return regularReadings(c, win, melds)
}

// variants returns the physical tiles a winning kind can be. A rank-five
// number tile has a red and a plain copy when the allowance leaves room for
// both.
func variants(t tile.Tile, red hand.RedFives) []tile.Tile {
	if !t.IsFive() {
		return []tile.Tile{t}
	}
	allow := red.For(t.Suit)
	var out []tile.Tile
	if allow < 4 {
		out = append(out, t)
	}
	if allow > 0 {
		out = append(out, tile.NewRed(t.Suit))
	}
	return out
}

func sources(o hand.Options) []Source {
	switch {
	case o.Ron && !o.Tsumo:
		return []Source{Ron}
	case o.Tsumo && !o.Ron:
		return []Source{Tsumo}
	}
	return []Source{Ron, Tsumo}
}

// Unique keeps the best line for each winning tile and source. A line with a
// real yaku beats one without; then points, han and fu decide.
func Unique(lines []Line) []Line {
	var out []Line
	for _, l := range lines {
		i := slices.IndexFunc(out, func(o Line) bool {
			return o.Source == l.Source && tile.Equal(o.Tile, l.Tile)
		})
		if i < 0 {
			out = append(out, l)
			continue
		}
		if better(l, out[i]) {
			out[i] = l
		}
	}
	slices.SortStableFunc(out, func(a, b Line) int {
		if c := tile.Compare(a.Tile, b.Tile); c != 0 {
			return c
		}
		return cmp.Compare(a.Source, b.Source)
	})
	return out
}

func better(a, b Line) bool {
	if ar, br := a.HasRealYaku(), b.HasRealYaku(); ar != br {
		return ar
	}
	if a.Points.Total != b.Points.Total {
		return a.Points.Total > b.Points.Total
	}
	if a.Han != b.Han {
		return a.Han > b.Han
	}
	return a.Fu > b.Fu
}
