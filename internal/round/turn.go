package round

import (
	"slices"

	"github.com/lox/mahjongdojo/internal/hand"
	"github.com/lox/mahjongdojo/internal/outcome"
	"github.com/lox/mahjongdojo/tile"
)

// Draw moves the wall's tail tile into the observed seat's drawn slot
func (e *Engine) Draw() *Snapshot {
	return e.apply("draw", e.draw)
}

// OpponentDiscard plays the scripted opponent whose turn it is: the wall's
// tail tile goes straight to its discard pile. A reaction window opens when
// the observed seat could ron, chi, pon or kan the tile.
func (e *Engine) OpponentDiscard() *Snapshot {
	return e.apply("opponent-discard", e.opponentDiscard)
}

// Pass declines the discard in the reaction window
func (e *Engine) Pass() *Snapshot {
	return e.apply("pass", func(s *Snapshot) {
		if s.ReactionPhase && s.DiscardCheck != nil {
			e.pass(s)
		}
	})
}

// Discard discards by position in the full hand; index len(concealed) is the
// drawn tile.
func (e *Engine) Discard(index int) *Snapshot {
	return e.apply("discard", func(s *Snapshot) {
		e.discard(s, index)
	})
}

// DiscardDrawn discards the drawn tile
func (e *Engine) DiscardDrawn() *Snapshot {
	return e.apply("discard-drawn", func(s *Snapshot) {
		if s.Input.Drawn == nil {
			return
		}
		e.discard(s, len(s.Input.Concealed))
	})
}

// Next advances the round by whatever step is due: a new game or round once
// one ends, an exhaustive draw when the wall runs out, a pass in a reaction
// window, a draw on the observed seat's turn or an opponent discard.
func (e *Engine) Next() *Snapshot {
	return e.apply("next", func(s *Snapshot) {
		switch {
		case !s.Dealt() || s.GameOver:
			e.newGame(s, "")
		case s.RoundOver:
			e.newRound(s)
		case s.ReactionPhase:
			e.pass(s)
		case len(s.Wall) == 0 && s.Input.Drawn == nil && !s.MustDiscard:
			e.exhaustiveDraw(s)
		case s.Turn == hand.Self:
			e.draw(s)
		default:
			e.opponentDiscard(s)
		}
	})
}

// Escape cancels the active tile selection, returning to the reaction window
// or to the pending discard it was opened from.
func (e *Engine) Escape() *Snapshot {
	return e.apply("escape", func(s *Snapshot) {
		if s.Selection == nil {
			return
		}
		switch s.Selection.Kind {
		case SelectChi:
			delete(s.Errors, ScopeChi)
		case SelectPon:
			delete(s.Errors, ScopePon)
		case SelectKan:
			delete(s.Errors, ScopeKan)
		case SelectRiichi:
			delete(s.Errors, ScopeRiichi)
		}
		s.Selection = nil
	})
}

// ClearErrors drops every error message
func (e *Engine) ClearErrors() *Snapshot {
	return e.apply("clear-errors", func(s *Snapshot) {
		s.Errors = nil
	})
}

// LogShanten appends the current hand's shanten to the history and updates
// the running average
func (e *Engine) LogShanten() *Snapshot {
	return e.apply("log-shanten", func(s *Snapshot) {
		if !s.Dealt() {
			return
		}
		s.ShantenHistory = append(s.ShantenHistory, shantenOf(e.evaluate(s)))
		sum := 0
		for _, n := range s.ShantenHistory {
			sum += n
		}
		s.AverageShanten = float64(sum) / float64(len(s.ShantenHistory))
	})
}

// CheckFuriten recomputes self-inflicted furiten for a resting hand
func (e *Engine) CheckFuriten() *Snapshot {
	return e.apply("check-furiten", e.checkFuriten)
}

// RoundOver ends the round as an exhaustive draw
func (e *Engine) RoundOver() *Snapshot {
	return e.apply("round-over", e.exhaustiveDraw)
}

// GameOver ends the game
func (e *Engine) GameOver() *Snapshot {
	return e.apply("game-over", func(s *Snapshot) {
		s.GameOver = true
		s.RoundOver = false
	})
}

func (e *Engine) playing(s *Snapshot) bool {
	return s.Dealt() && !s.RoundOver && !s.GameOver
}

func (e *Engine) draw(s *Snapshot) {
	if !e.playing(s) || s.Turn != hand.Self || s.ReactionPhase {
		return
	}
	if s.Input.Drawn != nil || s.MustDiscard || len(s.Wall) == 0 {
		return
	}
	t := s.Wall[len(s.Wall)-1]
	s.Wall = s.Wall[:len(s.Wall)-1]
	s.Input.Drawn = &t
	s.DiscardCheck = nil
	s.Furiten.Temporary = false
	e.logger.Debug("Drew tile", "tile", t, "wall", len(s.Wall))
}

func (e *Engine) opponentDiscard(s *Snapshot) {
	if !e.playing(s) || s.Turn == hand.Self || s.ReactionPhase || len(s.Wall) == 0 {
		return
	}
	from := s.Turn
	t := s.Wall[len(s.Wall)-1]
	s.Wall = s.Wall[:len(s.Wall)-1]
	s.Discards[from] = append(s.Discards[from], t)

	ron := e.canRon(s, t)
	var chi, pon, kan bool
	if !s.Options.Riichi.Active() {
		chi = from == hand.Kamicha && len(chiSequences(s.Input.Concealed, t)) > 0
		n := tile.CountKind(s.Input.Concealed, t)
		pon = n >= 2
		kan = n >= 3
	}
	if ron || chi || pon || kan {
		s.DiscardCheck = &DiscardCheck{Tile: t, From: from}
		s.ReactionPhase = true
		e.logger.Debug("Reaction window", "tile", t, "from", from, "ron", ron, "chi", chi, "pon", pon, "kan", kan)
		return
	}
	s.DiscardCheck = nil
	s.Turn = from.Next()
}

func (e *Engine) pass(s *Snapshot) {
	dc := s.DiscardCheck
	if e.canRon(s, dc.Tile) {
		if s.Options.Riichi.Active() {
			s.Furiten.Permanent = true
		} else {
			s.Furiten.Temporary = true
		}
	}
	switch {
	case s.Furiten.Permanent:
		e.setError(s, ScopeRon, "Riichi furiten for the rest of the round")
	case s.Furiten.Temporary:
		e.setError(s, ScopeRon, "Temporary furiten for this turn")
	default:
		delete(s.Errors, ScopeRon)
	}
	s.Selection = nil
	s.DiscardCheck = nil
	s.ReactionPhase = false
	s.Turn = dc.From.Next()
}

func (e *Engine) discard(s *Snapshot, index int) {
	if !e.playing(s) {
		return
	}
	if s.Selection != nil && s.Selection.Kind == SelectRiichi {
		e.selectRiichi(s, index)
		return
	}
	switch full := s.FullHand(); {
	case s.Turn != hand.Self || s.ReactionPhase:
		e.setError(s, ScopeDiscard, "Not your turn")
	case s.Input.Drawn == nil && !s.MustDiscard:
		e.setError(s, ScopeDiscard, "Draw a tile first")
	case s.Selection != nil:
		e.setError(s, ScopeDiscard, "Finish or cancel the current call")
	case index < 0 || index >= len(full):
		e.setError(s, ScopeDiscard, "No tile at that position")
	case s.Options.Riichi.Active() && (s.Input.Drawn == nil || index != len(s.Input.Concealed)):
		e.setError(s, ScopeRiichi, "Can't modify riichi hand")
	default:
		e.commitDiscard(s, index)
	}
}

// commitDiscard moves the tile at index of the full hand to the observed
// seat's discard pile and passes the turn
func (e *Engine) commitDiscard(s *Snapshot, index int) {
	full := s.FullHand()
	t := full[index]
	s.Input.Concealed = tile.Sorted(slices.Delete(full, index, index+1))
	s.Input.Drawn = nil
	s.Discards[hand.Self] = append(s.Discards[hand.Self], t)
	s.Turn = hand.Self.Next()
	s.MustDiscard = false
	s.Phases = Phases{}
	delete(s.Errors, ScopeDiscard)
	e.checkFuriten(s)
	e.logger.Debug("Discarded", "tile", t, "furiten", s.Furiten.Self)
}

func (e *Engine) checkFuriten(s *Snapshot) {
	if !s.Dealt() || s.Input.Drawn != nil || s.MustDiscard {
		return
	}
	s.Furiten.Self = false
	for _, l := range outcome.Lines(e.evaluate(s), nil) {
		if slices.ContainsFunc(s.Discards[hand.Self], func(d tile.Tile) bool { return tile.SameKind(d, l.Tile) }) {
			s.Furiten.Self = true
			return
		}
	}
}

func (e *Engine) exhaustiveDraw(s *Snapshot) {
	if !e.playing(s) {
		return
	}
	tenpai := isTenpai(e.evaluate(s))
	s.Table.Tenpai = tenpai
	s.Table.Honba = !tenpai
	s.Table.RiichiLastGame = s.Options.Riichi.Active()
	e.logger.Info("Exhaustive draw", "tenpai", tenpai)
	e.endRound(s)
}

// endRound finishes the round, or the game when this is the final round
func (e *Engine) endRound(s *Snapshot) {
	final := s.Rule.FinalRound > 0 && s.Table.RoundCount >= s.Rule.FinalRound
	s.GameOver = final
	s.RoundOver = !final
	s.MustDiscard = false
	s.ReactionPhase = false
	s.Selection = nil
	e.logger.Info("Round over", "round", s.Table.RoundCount, "game_over", final)
}

func isTenpai(r outcome.Result) bool {
	switch r := r.(type) {
	case outcome.Winning, outcome.Ready, outcome.ImmediateWin:
		return true
	case outcome.PendingDiscard:
		return len(r.Candidates) > 0 && outcome.Rank(r.Candidates[0].Next) == 0
	}
	return false
}

func shantenOf(r outcome.Result) int {
	if n, ok := outcome.Shanten(r); ok {
		return n
	}
	if pd, ok := r.(outcome.PendingDiscard); ok && len(pd.Candidates) > 0 {
		return outcome.Rank(pd.Candidates[0].Next)
	}
	return 0
}
