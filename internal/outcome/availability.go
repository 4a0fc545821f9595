package outcome

import (
	"slices"

	"github.com/lox/mahjongdojo/tile"
)

// availabilities annotates kinds with the copies still unseen. Fives get a
// plain and a red row, each bounded by the red allowance; a row that cannot
// exist under the allowance is left out.
func (q Query) availabilities(kinds []int) []Availability {
	slices.Sort(kinds)
	kinds = slices.Compact(kinds)

	seen := append(q.Input.Combined(), q.Input.MeldTiles()...)
	seen = append(seen, q.Input.Dora...)
	seen = append(seen, q.Discards...)

	var out []Availability
	for _, k := range kinds {
		t := tile.FromKind(k)
		if !t.IsFive() {
			out = append(out, Availability{Tile: t, Count: max(0, 4-tile.CountKind(seen, t))})
			continue
		}
		allow := q.Rule.Red.For(t.Suit)
		plain, red := 0, 0
		for _, s := range seen {
			if tile.SameKind(s, t) {
				if s.Red {
					red++
				} else {
					plain++
				}
			}
		}
		if allow < 4 {
			out = append(out, Availability{Tile: t, Count: max(0, 4-allow-plain)})
		}
		if allow > 0 {
			out = append(out, Availability{Tile: tile.NewRed(t.Suit), Count: max(0, allow-red)})
		}
	}
	return out
}
