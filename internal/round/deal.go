package round

import (
	"fmt"

	"github.com/lox/mahjongdojo/internal/hand"
	"github.com/lox/mahjongdojo/internal/wall"
	"github.com/lox/mahjongdojo/tile"
)

// rotation is the order the observed seat's wind moves through between rounds
var rotation = [4]hand.Wind{hand.WindEast, hand.WindNorth, hand.WindWest, hand.WindSouth}

// NewGame deals the first round of a game. An empty seed is derived from the
// clock. The observed seat's wind is drawn from the seed.
func (e *Engine) NewGame(seed string) *Snapshot {
	return e.apply("new-game", func(s *Snapshot) {
		e.newGame(s, seed)
	})
}

// CustomNewGame deals a new game whose observed hand is exactly want. The
// tiles are swapped in from the rest of the round so the set stays complete.
func (e *Engine) CustomNewGame(want []tile.Tile) (*Snapshot, error) {
	r := e.deal(e.Snapshot().Rule.Red, "")
	self := wall.SelfWind(r.Seed)
	if err := wall.Customize(r, self, want); err != nil {
		return nil, fmt.Errorf("custom hand: %w", err)
	}
	return e.apply("custom-new-game", func(s *Snapshot) {
		e.startGame(s, r, self)
	}), nil
}

// NewRound deals the next round, rotating the observed seat's wind and
// carrying continuation and deposit sticks.
func (e *Engine) NewRound() *Snapshot {
	return e.apply("new-round", e.newRound)
}

// SetRule replaces the rule. Red-five changes apply from the next deal.
func (e *Engine) SetRule(rule hand.Rule) *Snapshot {
	return e.apply("set-rule", func(s *Snapshot) {
		s.Rule = rule
	})
}

func (e *Engine) newGame(s *Snapshot, seed string) {
	r := e.deal(s.Rule.Red, seed)
	e.startGame(s, r, wall.SelfWind(r.Seed))
}

func (e *Engine) newRound(s *Snapshot) {
	if !s.Dealt() {
		e.newGame(s, "")
		return
	}
	next := rotation[0]
	for i, w := range rotation {
		if w == s.Table.Seat {
			next = rotation[(i+1)%4]
		}
	}

	table := s.Table
	table.Seat = next
	table.RoundCount++
	if s.Table.Honba {
		table.Continue++
	} else {
		table.Continue = 0
	}
	if s.Table.RiichiLastGame {
		table.Deposit++
	} else {
		table.Deposit = 0
	}
	table.Honba, table.Tenpai, table.RiichiLastGame = false, false, false

	session, history, avg := s.Session, s.ShantenHistory, s.AverageShanten
	e.reset(s, e.deal(s.Rule.Red, ""), next)
	s.Table = table
	s.Session = session
	s.ShantenHistory, s.AverageShanten = history, avg
	e.logger.Info("Round started", "round", table.RoundCount, "seat", next, "continue", table.Continue, "deposit", table.Deposit)
}

func (e *Engine) deal(red hand.RedFives, seed string) *wall.Round {
	r, err := e.dealer.Deal(red, seed)
	if err != nil {
		panic(fmt.Sprintf("round: deal failed: %v", err))
	}
	return r
}

func (e *Engine) startGame(s *Snapshot, r *wall.Round, self hand.Wind) {
	e.reset(s, r, self)
	s.Session = newSession()
	s.Table = hand.DefaultTable()
	s.Table.Seat = self
	e.logger.Info("Game started", "session", s.Session, "seed", s.Seed, "seat", self)
}

// reset replaces every per-round field of s with the freshly dealt round
func (e *Engine) reset(s *Snapshot, r *wall.Round, self hand.Wind) {
	seating := wall.Seat(self, r.Hands)
	*s = Snapshot{
		Rule:    s.Rule,
		Table:   s.Table,
		Options: hand.DefaultOptions(),
		Input: hand.Input{
			Dora:      r.Dora,
			Concealed: tile.Sorted(seating.Hands[hand.Self]),
		},
		DealtRed:           r.Red,
		Seed:               r.Seed,
		Dice:               r.Dice,
		LiveWallCut:        r.LiveWallCut,
		Wall:               r.Wall,
		KanDraws:           r.KanDraws,
		DoraPending:        r.DoraPending,
		UraPending:         r.UraPending,
		Turn:               seating.East,
		Phases:             Phases{Tenhou: true},
		RiichiDiscardIndex: -1,
	}
	for _, seat := range []hand.Seat{hand.Shimocha, hand.Toimen, hand.Kamicha} {
		s.Hands[seat] = seating.Hands[seat]
	}
}
