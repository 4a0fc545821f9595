package wall

import (
	"fmt"

	"github.com/lox/mahjongdojo/internal/hand"
	"github.com/lox/mahjongdojo/internal/randutil"
	"github.com/lox/mahjongdojo/tile"
)

// Seating is a round's hands arranged relative to the observed seat
type Seating struct {
	Hands [4][]tile.Tile // indexed by hand.Seat
	East  hand.Seat      // the seat that acts first
}

// SelfWind draws the observed seat's wind from a fresh generator on the
// round seed, so the same seed always seats the player identically.
func SelfWind(seed string) hand.Wind {
	rng := randutil.FromSeed(seed)
	return hand.Winds[int(rng.Float64()*4)]
}

// Seat maps absolute-order hands (east, south, west, north) onto relative
// seats for a player sitting at self.
func Seat(self hand.Wind, hands [4][]tile.Tile) Seating {
	selfIdx := self.Index()
	var s Seating
	for _, seat := range hand.Seats {
		abs := (selfIdx + int(seat)) % 4
		s.Hands[seat] = hands[abs]
		if abs == 0 {
			s.East = seat
		}
	}
	return s
}

// Customize swaps tiles into the hand at seat so that it holds exactly want.
// Replacement tiles come from the live wall, kan draws, unrevealed dora
// indicators, ura indicators and the other hands, in that order.
func Customize(r *Round, self hand.Wind, want []tile.Tile) error {
	if len(want) != handSize {
		return fmt.Errorf("custom hand needs %d tiles, got %d", handSize, len(want))
	}
	selfIdx := self.Index()
	mine := r.Hands[selfIdx]

	sources := [][]tile.Tile{r.Wall, r.KanDraws, r.DoraPending[1:], r.UraPending}
	for i := 1; i < 4; i++ {
		sources = append(sources, r.Hands[(selfIdx+i)%4])
	}

	fixed := make([]bool, len(mine))
	for i, w := range want {
		if !w.Valid() {
			return fmt.Errorf("invalid tile %v in custom hand", w)
		}
		if tile.Equal(mine[i], w) {
			fixed[i] = true
		}
	}
	for i, w := range want {
		if fixed[i] {
			continue
		}
		// a matching tile may already sit at a later unfixed position
		swapped := false
		for j := range mine {
			if !fixed[j] && j != i && tile.Equal(mine[j], w) && !tile.Equal(want[j], mine[j]) {
				mine[i], mine[j] = mine[j], mine[i]
				swapped = true
				break
			}
		}
		for _, src := range sources {
			if swapped {
				break
			}
			if k := tile.Index(src, w); k >= 0 {
				src[k], mine[i] = mine[i], src[k]
				swapped = true
			}
		}
		if !swapped {
			return fmt.Errorf("no copy of %v left for custom hand", w)
		}
		fixed[i] = true
	}
	if n := r.Total(); n != TotalTiles {
		return fmt.Errorf("%w: expected %d tiles, found %d", ErrTileCount, TotalTiles, n)
	}
	return nil
}
