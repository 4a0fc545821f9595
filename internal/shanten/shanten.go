// Package shanten counts how far a hand is from complete. Counts are indexed
// by tile kind (0..33, see tile.Kind) and never include red flags.
//
// A shanten of 0 means tenpai and Complete (-1) means the tiles already form
// a winning shape.
package shanten

import (
	"slices"
	"strconv"
	"strings"

	"github.com/lox/mahjongdojo/tile"
)

// Complete is the shanten of a finished hand
const Complete = -1

// Counts is a per-kind tile count
type Counts = [tile.Kinds]int

// BlockKind identifies a group inside a decomposition
type BlockKind uint8

const (
	Sequence BlockKind = iota
	Triplet
	Pair
	Adjacent // two consecutive ranks, ryanmen or penchan
	Gapped   // kanchan
	Single
)

var blockNames = [...]string{"seq", "trip", "pair", "adj", "gap", "single"}

func (k BlockKind) String() string {
	return blockNames[k]
}

// Block is one group of a decomposition, identified by its lowest kind
type Block struct {
	Kind  BlockKind
	First int
}

// Tiles returns the kinds covered by the block
func (b Block) Tiles() []int {
	switch b.Kind {
	case Sequence:
		return []int{b.First, b.First + 1, b.First + 2}
	case Triplet:
		return []int{b.First, b.First, b.First}
	case Pair:
		return []int{b.First, b.First}
	case Adjacent:
		return []int{b.First, b.First + 1}
	case Gapped:
		return []int{b.First, b.First + 2}
	}
	return []int{b.First}
}

// Decomposition is one way of reading a hand at minimal shanten
type Decomposition struct {
	Head   int // pair kind used as the head, -1 when none
	Blocks []Block
}

// String renders a decomposition as space separated blocks
func (d Decomposition) String() string {
	parts := make([]string, 0, len(d.Blocks)+1)
	if d.Head >= 0 {
		parts = append(parts, "head:"+tile.FromKind(d.Head).String())
	}
	for _, b := range d.Blocks {
		var sb strings.Builder
		sb.WriteString(b.Kind.String())
		sb.WriteByte(':')
		for _, k := range b.Tiles() {
			sb.WriteString(strconv.Itoa(int(tile.FromKind(k).Rank)))
		}
		sb.WriteString(tile.FromKind(b.First).Suit.String())
		parts = append(parts, sb.String())
	}
	return strings.Join(parts, " ")
}

// Result is the minimal shanten with every decomposition reaching it
type Result struct {
	Shanten        int
	Decompositions []Decomposition
}

// Standard computes the regular four-groups-and-a-pair shanten for a hand
// that already has melds called, returning all tied minimal decompositions.
func Standard(counts Counts, melds int) Result {
	s := newSearch(counts, melds, true)
	s.run(0)
	slices.SortFunc(s.found, func(a, b Decomposition) int {
		return strings.Compare(a.String(), b.String())
	})
	return Result{Shanten: s.best, Decompositions: s.found}
}

// Regular computes the regular shanten without collecting decompositions
func Regular(counts Counts, melds int) int {
	s := newSearch(counts, melds, false)
	s.run(0)
	return s.best
}

// SevenPairs computes the seven pairs shanten of a concealed hand
func SevenPairs(counts Counts) int {
	pairs, kinds := 0, 0
	for _, c := range counts {
		if c > 0 {
			kinds++
		}
		if c >= 2 {
			pairs++
		}
	}
	n := 6 - pairs
	if kinds < 7 {
		n += 7 - kinds
	}
	return n
}

// Orphans computes the thirteen orphans shanten of a concealed hand
func Orphans(counts Counts) int {
	kinds, pair := 0, 0
	for _, k := range orphanKinds {
		if counts[k] > 0 {
			kinds++
			if counts[k] >= 2 {
				pair = 1
			}
		}
	}
	return 13 - kinds - pair
}

var orphanKinds = [...]int{0, 8, 9, 17, 18, 26, 27, 28, 29, 30, 31, 32, 33}

type search struct {
	c       Counts
	need    int
	best    int
	sets    int
	partial int
	head    int
	left    int
	collect bool
	blocks  []Block
	found   []Decomposition
	seen    map[string]struct{}
}

func newSearch(counts Counts, melds int, collect bool) *search {
	need := 4 - melds
	s := &search{c: counts, need: need, best: 2*need + 1, head: -1, collect: collect}
	for _, c := range counts {
		s.left += c
	}
	if collect {
		s.seen = make(map[string]struct{})
	}
	return s
}

func (s *search) value() int {
	partial := s.partial
	if s.sets+partial > s.need {
		partial = s.need - s.sets
	}
	v := 2*(s.need-s.sets) - partial
	if s.head >= 0 {
		v--
	}
	return v
}

func (s *search) record() {
	v := s.value()
	if v > s.best {
		return
	}
	if v < s.best {
		s.best = v
		if s.collect {
			s.found = s.found[:0]
			clear(s.seen)
		}
	}
	if !s.collect {
		return
	}
	blocks := slices.Clone(s.blocks)
	slices.SortFunc(blocks, func(a, b Block) int {
		if a.Kind != b.Kind {
			return int(a.Kind) - int(b.Kind)
		}
		return a.First - b.First
	})
	d := Decomposition{Head: s.head, Blocks: blocks}
	key := d.String()
	if _, ok := s.seen[key]; ok {
		return
	}
	s.seen[key] = struct{}{}
	s.found = append(s.found, d)
}

// bound reports whether no completion of the current branch can reach the
// best value. Each remaining tile lowers the value by at most 2/3.
func (s *search) bound() bool {
	low := max(s.value()-2*s.left/3, Complete)
	if s.collect {
		return low > s.best
	}
	return low >= s.best
}

func (s *search) push(kind BlockKind, first int, take ...int) {
	for _, k := range take {
		s.c[k]--
	}
	s.left -= len(take)
	s.blocks = append(s.blocks, Block{Kind: kind, First: first})
}

func (s *search) pop(take ...int) {
	for _, k := range take {
		s.c[k]++
	}
	s.left += len(take)
	s.blocks = s.blocks[:len(s.blocks)-1]
}

func (s *search) run(i int) {
	if s.bound() {
		return
	}
	for i < tile.Kinds && s.c[i] == 0 {
		i++
	}
	if i == tile.Kinds {
		s.record()
		return
	}
	number := i < 27
	rank := i%9 + 1
	full := s.sets+s.partial >= s.need

	if s.c[i] >= 3 {
		s.push(Triplet, i, i, i, i)
		s.sets++
		s.run(i)
		s.sets--
		s.pop(i, i, i)
	}
	if number && rank <= 7 && s.c[i+1] > 0 && s.c[i+2] > 0 {
		s.push(Sequence, i, i, i+1, i+2)
		s.sets++
		s.run(i)
		s.sets--
		s.pop(i, i+1, i+2)
	}
	if s.head < 0 && s.c[i] >= 2 {
		s.c[i] -= 2
		s.left -= 2
		s.head = i
		s.run(i)
		s.head = -1
		s.left += 2
		s.c[i] += 2
	}
	if !full {
		if s.c[i] >= 2 {
			s.push(Pair, i, i, i)
			s.partial++
			s.run(i)
			s.partial--
			s.pop(i, i)
		}
		if number && rank <= 8 && s.c[i+1] > 0 {
			s.push(Adjacent, i, i, i+1)
			s.partial++
			s.run(i)
			s.partial--
			s.pop(i, i+1)
		}
		if number && rank <= 7 && s.c[i+2] > 0 {
			s.push(Gapped, i, i, i+2)
			s.partial++
			s.run(i)
			s.partial--
			s.pop(i, i+2)
		}
	}
	s.push(Single, i, i)
	s.run(i)
	s.pop(i)
}
