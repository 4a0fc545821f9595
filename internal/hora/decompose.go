package hora

import (
	"slices"

	"github.com/lox/mahjongdojo/internal/hand"
	"github.com/lox/mahjongdojo/internal/shanten"
	"github.com/lox/mahjongdojo/tile"
)

type groupKind uint8

const (
	run groupKind = iota
	triplet
	quad
)

type group struct {
	kind   groupKind
	first  int
	open   bool // called from another seat
	closed bool // concealed triplet or closed kan, counts as an ankou
}

func (g group) isSet() bool { return g.kind != run }

func (g group) hasYaochuu() bool {
	if g.kind == run {
		r := g.first % 9
		return r == 0 || r == 6
	}
	return isYaochuuKind(g.first)
}

type waitKind uint8

const (
	waitRyanmen waitKind = iota
	waitKanchan
	waitPenchan
	waitShanpon
	waitTanki
	waitThirteen // thirteen-sided orphans wait
)

// reading is one interpretation of a complete hand: its groups, pair and the
// wait the winning tile filled.
type reading struct {
	form   Shape
	pair   int // -1 for orphans
	groups []group
	wait   waitKind
	at     int            // group completed by the winning tile, -1 for the pair
	counts shanten.Counts // concealed tiles including the winning tile
	win    int
}

func isYaochuuKind(k int) bool {
	return k >= 27 || k%9 == 0 || k%9 == 8
}

func isSevenPairs(c shanten.Counts) bool {
	pairs := 0
	for _, n := range c {
		switch n {
		case 0:
		case 2:
			pairs++
		default:
			return false
		}
	}
	return pairs == 7
}

func isOrphans(c shanten.Counts) bool {
	return shanten.Orphans(c) == shanten.Complete
}

func orphansWait(c shanten.Counts, win int) waitKind {
	if c[win] == 2 {
		return waitThirteen
	}
	return waitTanki
}

func meldGroups(melds []hand.Meld) []group {
	out := make([]group, 0, len(melds))
	for _, m := range melds {
		first := m.Tiles[0].Kind()
		for _, t := range m.Tiles {
			first = min(first, t.Kind())
		}
		switch m.Kind {
		case hand.Chi:
			out = append(out, group{kind: run, first: first, open: true})
		case hand.Pon:
			out = append(out, group{kind: triplet, first: first, open: true})
		case hand.Kan:
			out = append(out, group{kind: quad, first: first, open: !m.Closed, closed: m.Closed})
		}
	}
	return out
}

// arrangement splits concealed counts into a pair and sets
type arrangement struct {
	pair   int
	groups []group
}

func arrangements(c shanten.Counts, need int) []arrangement {
	var out []arrangement
	var groups []group
	var walk func(pair, i int)
	walk = func(pair, i int) {
		for i < tile.Kinds && c[i] == 0 {
			i++
		}
		if i == tile.Kinds {
			if len(groups) == need {
				out = append(out, arrangement{pair: pair, groups: slices.Clone(groups)})
			}
			return
		}
		if len(groups) == need {
			return
		}
		if c[i] >= 3 {
			c[i] -= 3
			groups = append(groups, group{kind: triplet, first: i, closed: true})
			walk(pair, i)
			groups = groups[:len(groups)-1]
			c[i] += 3
		}
		if i < 27 && i%9 <= 6 && c[i+1] > 0 && c[i+2] > 0 {
			c[i]--
			c[i+1]--
			c[i+2]--
			groups = append(groups, group{kind: run, first: i})
			walk(pair, i)
			groups = groups[:len(groups)-1]
			c[i]++
			c[i+1]++
			c[i+2]++
		}
	}
	for p := range c {
		if c[p] < 2 {
			continue
		}
		c[p] -= 2
		walk(p, 0)
		c[p] += 2
	}
	return out
}

// regularReadings returns every four-groups-and-a-pair reading of the
// concealed counts, once per distinct place the winning tile can sit.
func regularReadings(c shanten.Counts, win int, melds []hand.Meld) []reading {
	need := 4 - len(melds)
	if need < 0 {
		return nil
	}
	called := meldGroups(melds)

	var out []reading
	for _, a := range arrangements(c, need) {
		seen := make(map[group]bool)
		add := func(wait waitKind, at int) {
			groups := slices.Clone(a.groups)
			if at >= 0 {
				if seen[groups[at]] {
					return
				}
				seen[groups[at]] = true
			}
			groups = append(groups, called...)
			out = append(out, reading{form: Regular, pair: a.pair, groups: groups, wait: wait, at: at, counts: c, win: win})
		}
		if a.pair == win {
			add(waitTanki, -1)
		}
		for i, g := range a.groups {
			switch {
			case g.kind == triplet && g.first == win:
				add(waitShanpon, i)
			case g.kind == run && win >= g.first && win <= g.first+2:
				add(runWait(g.first, win), i)
			}
		}
	}
	return out
}

func runWait(first, win int) waitKind {
	switch win - first {
	case 1:
		return waitKanchan
	case 0:
		if first%9 == 6 {
			return waitPenchan
		}
	case 2:
		if first%9 == 0 {
			return waitPenchan
		}
	}
	return waitRyanmen
}
