package shanten

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/mahjongdojo/tile"
)

func counts(s string) Counts {
	return tile.Counts(tile.MustParse(s))
}

func kinds(s string) []int {
	var out []int
	for _, t := range tile.MustParse(s) {
		out = append(out, t.Kind())
	}
	return out
}

func TestRegular(t *testing.T) {
	tests := []struct {
		name  string
		hand  string
		melds int
		want  int
	}{
		{name: "complete", hand: "123m456p789s11122z", want: Complete},
		{name: "shanpon tenpai", hand: "123m456p789s1122z", want: 0},
		{name: "kanchan tenpai", hand: "123m456p789s13p55z", want: 0},
		{name: "one away", hand: "123m456p789s13p57z", want: 1},
		{name: "nine gates", hand: "1112345678999m", want: 0},
		{name: "orphans shape", hand: "19m19p19s1234567z", want: 8},
		{name: "tanki after four melds", hand: "1m", melds: 4, want: 0},
		{name: "complete after four melds", hand: "11m", melds: 4, want: Complete},
		{name: "two melds", hand: "1234m567p", melds: 2, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Regular(counts(tt.hand), tt.melds))
			assert.Equal(t, tt.want, Standard(counts(tt.hand), tt.melds).Shanten)
		})
	}
}

func TestStandardKeepsTiedDecompositions(t *testing.T) {
	// 111222333m reads as three triplets or three identical runs
	res := Standard(counts("111222333m456p7z"), 0)
	require.Equal(t, 0, res.Shanten)
	require.GreaterOrEqual(t, len(res.Decompositions), 2)

	var shapes []string
	for _, d := range res.Decompositions {
		shapes = append(shapes, d.String())
	}
	assert.Contains(t, shapes, "seq:123m seq:123m seq:123m seq:456p single:7z")
	assert.Contains(t, shapes, "seq:456p trip:111m trip:222m trip:333m single:7z")
}

func TestSevenPairs(t *testing.T) {
	assert.Equal(t, 0, SevenPairs(counts("1122m3344p5566s7z")))
	assert.Equal(t, Complete, SevenPairs(counts("1122m3344p5566s77z")))
	// four of a kind counts as a single pair
	assert.Equal(t, 2, SevenPairs(counts("1111m3344p5566s7z")))
}

func TestOrphans(t *testing.T) {
	assert.Equal(t, 0, Orphans(counts("19m19p19s1234567z")))
	assert.Equal(t, Complete, Orphans(counts("19m19p19s12345677z")))
	assert.Equal(t, 1, Orphans(counts("19m19p19s1234555z")))
}

func TestWaits(t *testing.T) {
	c := counts("123m456p789s13p55z")
	assert.Equal(t, kinds("2p"), Waits(c, c, 0))

	nine := counts("1112345678999m")
	assert.Equal(t, kinds("123456789m"), Waits(nine, nine, 0))
}

func TestWaitsSkipExhaustedKinds(t *testing.T) {
	c := counts("11112m234p567s99s")
	// a 1m wait would need a fifth copy
	assert.Equal(t, kinds("3m"), Waits(c, c, 0))
}

func TestAdvancing(t *testing.T) {
	c := counts("123m456p789s13p57z")
	assert.Equal(t, kinds("2p5z7z"), Advancing(FormRegular, c, c, 0))

	sp := counts("1122m3344p556s67z")
	got := Advancing(FormSevenPairs, sp, sp, 0)
	assert.Equal(t, kinds("6s67z"), got)
}
