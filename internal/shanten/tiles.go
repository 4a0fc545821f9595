package shanten

import "github.com/lox/mahjongdojo/tile"

// Form selects which winning shape a tile search measures against
type Form uint8

const (
	FormRegular Form = iota
	FormSevenPairs
	FormOrphans
)

// Of returns the shanten of counts for the form
func Of(form Form, counts Counts, melds int) int {
	switch form {
	case FormSevenPairs:
		return SevenPairs(counts)
	case FormOrphans:
		return Orphans(counts)
	}
	return Regular(counts, melds)
}

// Advancing returns the kinds that lower the shanten of a hand waiting for a
// draw. Kinds already exhausted by the player's own tiles (visible, hand plus
// melds) are skipped.
func Advancing(form Form, counts, visible Counts, melds int) []int {
	base := Of(form, counts, melds)
	var out []int
	for k := range tile.Kinds {
		if visible[k] >= 4 {
			continue
		}
		counts[k]++
		if Of(form, counts, melds) < base {
			out = append(out, k)
		}
		counts[k]--
	}
	return out
}

// Waits returns the kinds that complete a tenpai hand under the regular form
func Waits(counts, visible Counts, melds int) []int {
	var out []int
	for k := range tile.Kinds {
		if visible[k] >= 4 {
			continue
		}
		counts[k]++
		if Regular(counts, melds) == Complete {
			out = append(out, k)
		}
		counts[k]--
	}
	return out
}
