// Package wall builds a seeded round: the shuffled 136-tile set, the dead
// wall reserves, the unwound live wall and the four starting hands.
package wall

import (
	"errors"
	"fmt"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/mahjongdojo/internal/hand"
	"github.com/lox/mahjongdojo/internal/randutil"
	"github.com/lox/mahjongdojo/tile"
)

const (
	// TotalTiles is the size of a full set
	TotalTiles     = 136
	stacksPerWall  = 17
	deadWallStacks = 7
	handSize       = 13
)

// ErrTileCount reports a broken 136-tile conservation
var ErrTileCount = errors.New("tile count mismatch")

// Round is the result of setting up a round. Hands are in absolute seat order
// east, south, west, north.
type Round struct {
	Seed        string
	Red         hand.RedFives
	Dice        [2]int
	LiveWallCut int
	Wall        []tile.Tile
	KanDraws    []tile.Tile
	DoraPending []tile.Tile
	UraPending  []tile.Tile
	Dora        []tile.Tile
	Hands       [4][]tile.Tile
}

// Total counts every tile held by the round. The revealed dora indicator is a
// view of DoraPending[0] and is not counted twice.
func (r *Round) Total() int {
	n := len(r.Wall) + len(r.KanDraws) + len(r.DoraPending) + len(r.UraPending)
	for _, h := range r.Hands {
		n += len(h)
	}
	return n
}

// Dealer sets up rounds. The clock only supplies a seed when none is given.
type Dealer struct {
	clock  quartz.Clock
	logger *log.Logger
}

// NewDealer creates a dealer
func NewDealer(clock quartz.Clock, logger *log.Logger) *Dealer {
	return &Dealer{clock: clock, logger: logger.WithPrefix("wall")}
}

// Deal builds a round for the red-five allowance. An empty seed is replaced
// with one derived from the current time.
func (d *Dealer) Deal(red hand.RedFives, seed string) (*Round, error) {
	if seed == "" {
		seed = fmt.Sprintf("seed-%d", d.clock.Now().UnixMilli())
	}
	r, err := Build(red, seed)
	if err != nil {
		return nil, err
	}
	d.logger.Debug("Dealt round", "seed", r.Seed, "dice", r.Dice, "cut", r.LiveWallCut)
	return r, nil
}

// Build is the deterministic core of Deal
func Build(red hand.RedFives, seed string) (*Round, error) {
	rng := randutil.FromSeed(seed)
	tiles := shuffle(fullSet(red), rng)

	var walls [4][][]tile.Tile
	for w := range walls {
		walls[w] = make([][]tile.Tile, 0, stacksPerWall)
		for s := range stacksPerWall {
			i := (w*stacksPerWall + s) * 2
			walls[w] = append(walls[w], []tile.Tile{tiles[i], tiles[i+1]})
		}
	}

	dice := [2]int{rollDie(rng), rollDie(rng)}
	sum := dice[0] + dice[1]
	start := ((sum % 4) + 3) % 4
	breakAt := stacksPerWall - sum

	dead := make([][]tile.Tile, 0, deadWallStacks)
	w, idx := start, breakAt
	last := w
	for range deadWallStacks {
		if len(walls[w]) == 0 {
			return nil, fmt.Errorf("wall %d empty while cutting dead wall", w)
		}
		dead = append(dead, walls[w][idx])
		walls[w] = append(walls[w][:idx:idx], walls[w][idx+1:]...)
		last = w
		if idx >= len(walls[w]) {
			w = (w + 1) % 4
			idx = 0
		}
	}

	r := &Round{
		Seed:        seed,
		Red:         red,
		Dice:        dice,
		LiveWallCut: len(walls[last]),
		KanDraws:    []tile.Tile{dead[1][1], dead[1][0], dead[0][1], dead[0][0]},
	}
	for _, stack := range dead[2:] {
		r.DoraPending = append(r.DoraPending, stack[0])
		r.UraPending = append(r.UraPending, stack[1])
	}
	r.Dora = []tile.Tile{r.DoraPending[0]}
	r.Wall = unwind(walls, start, breakAt-1)

	for range 3 {
		for seat := range r.Hands {
			r.Hands[seat] = append(r.Hands[seat], r.Wall[:4]...)
			r.Wall = r.Wall[4:]
		}
	}
	for seat := range r.Hands {
		r.Hands[seat] = append(r.Hands[seat], r.Wall[0])
		r.Wall = r.Wall[1:]
	}
	r.Wall = append([]tile.Tile(nil), r.Wall...)

	if n := r.Total(); n != TotalTiles {
		return nil, fmt.Errorf("%w: expected %d tiles, found %d", ErrTileCount, TotalTiles, n)
	}
	return r, nil
}

// unwind walks backwards from (w, idx) across walls in seat order and
// prepends each stack to the live wall as [second, first].
func unwind(walls [4][][]tile.Tile, w, idx int) []tile.Tile {
	if idx < 0 {
		w = (w + 3) % 4
		idx = len(walls[w]) - 1
	}
	remaining := 0
	for _, wall := range walls {
		remaining += len(wall)
	}
	out := make([]tile.Tile, remaining*2)
	pos := len(out)

	for remaining > 0 {
		for len(walls[w]) == 0 {
			w = (w + 3) % 4
		}
		if idx < 0 {
			w = (w + 3) % 4
			for len(walls[w]) == 0 {
				w = (w + 3) % 4
			}
			idx = len(walls[w]) - 1
		}
		if idx >= len(walls[w]) {
			idx = len(walls[w]) - 1
		}
		stack := walls[w][idx]
		pos -= 2
		out[pos], out[pos+1] = stack[1], stack[0]
		walls[w] = append(walls[w][:idx:idx], walls[w][idx+1:]...)
		remaining--
		idx--
	}
	return out
}

func fullSet(red hand.RedFives) []tile.Tile {
	tiles := make([]tile.Tile, 0, TotalTiles)
	for _, suit := range []tile.Suit{tile.Man, tile.Pin, tile.Sou} {
		for rank := uint8(1); rank <= 9; rank++ {
			for copyIdx := range 4 {
				t := tile.New(suit, rank)
				if rank == 5 && copyIdx < red.For(suit) {
					t.Red = true
				}
				tiles = append(tiles, t)
			}
		}
	}
	for rank := tile.East; rank <= tile.RedDragon; rank++ {
		for range 4 {
			tiles = append(tiles, tile.New(tile.Honor, rank))
		}
	}
	return tiles
}

func shuffle(tiles []tile.Tile, rng *rand.Rand) []tile.Tile {
	for i := len(tiles) - 1; i > 0; i-- {
		j := int(rng.Float64() * float64(i+1))
		tiles[i], tiles[j] = tiles[j], tiles[i]
	}
	return tiles
}

func rollDie(rng *rand.Rand) int {
	return int(rng.Float64()*6) + 1
}
