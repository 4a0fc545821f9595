package round

import (
	"slices"

	"github.com/lox/mahjongdojo/internal/hand"
	"github.com/lox/mahjongdojo/internal/hora"
	"github.com/lox/mahjongdojo/internal/outcome"
	"github.com/lox/mahjongdojo/tile"
)

// CallRiichi opens the riichi discard selection. Only discards that leave the
// hand in tenpai are approved.
func (e *Engine) CallRiichi() *Snapshot {
	return e.apply("call-riichi", func(s *Snapshot) {
		ok := e.playing(s) &&
			s.Turn == hand.Self &&
			!s.ReactionPhase &&
			len(s.Wall) >= 5 &&
			s.Input.Drawn != nil &&
			!s.Options.Riichi.Active() &&
			(s.Selection == nil || s.Selection.Kind != SelectRiichi) &&
			s.Input.IsConcealed()
		if !ok {
			e.setError(s, ScopeRiichi, "Cannot call riichi now")
			return
		}
		pd, isPending := e.evaluate(s).(outcome.PendingDiscard)
		if !isPending {
			e.setError(s, ScopeRiichi, "Cannot call riichi now")
			return
		}

		var approved []tile.Tile
		for _, c := range pd.Candidates {
			switch c.Next.(type) {
			case outcome.Winning, outcome.Ready:
				approved = append(approved, c.Tile)
			}
		}
		if len(approved) == 0 {
			e.setError(s, ScopeRiichi, "No valid riichi discards")
			return
		}
		s.Selection = &Selection{Kind: SelectRiichi, Approved: approved}
		delete(s.Errors, ScopeRiichi)
	})
}

// selectRiichi discards the tile at index of the full hand if it is approved
// and declares riichi. Any other choice is rejected and the selection stays.
func (e *Engine) selectRiichi(s *Snapshot, index int) {
	full := s.FullHand()
	if index < 0 || index >= len(full) {
		e.setError(s, ScopeRiichi, "No tile at that position")
		return
	}
	t := full[index]
	if !slices.ContainsFunc(s.Selection.Approved, func(a tile.Tile) bool { return tile.Equal(a, t) }) {
		e.setError(s, ScopeRiichi, "That discard does not keep you in tenpai")
		return
	}

	level := hand.RiichiSingle
	if len(s.Discards[hand.Self]) == 0 {
		level = hand.RiichiDouble
	}
	s.Selection = nil
	e.commitDiscard(s, index)
	s.Options.Riichi = level
	s.Phases.Ippatsu = true
	s.RiichiDiscardIndex = len(s.Discards[hand.Self]) - 1
	delete(s.Errors, ScopeRiichi)
	e.logger.Info("Riichi declared", "level", level, "tile", t)
}

// CallRon wins on the discard in the reaction window
func (e *Engine) CallRon() *Snapshot {
	return e.apply("call-ron", func(s *Snapshot) {
		dc := s.DiscardCheck
		switch {
		case !e.playing(s) || !s.ReactionPhase || dc == nil:
			e.setError(s, ScopeRon, "Cannot ron now")
			return
		case s.Furiten.Permanent:
			e.setError(s, ScopeRon, "Riichi furiten for the rest of the round")
			return
		case s.Furiten.Temporary:
			e.setError(s, ScopeRon, "Temporary furiten for this turn")
			return
		case s.Furiten.Self:
			e.setError(s, ScopeRon, "Furiten on your own discards")
			return
		case !e.canRon(s, dc.Tile):
			e.setError(s, ScopeRon, "Cannot ron on that tile")
			return
		}

		s.Options = ronOptions(s)
		e.revealUra(s)
		s.Win = winningLines(e.evaluate(s), dc.Tile, hora.Ron)

		pile := s.Discards[dc.From]
		s.Discards[dc.From] = pile[:len(pile)-1]
		s.Input.Concealed = append(s.Input.Concealed, dc.Tile)
		s.DiscardCheck = nil
		s.Selection = nil
		s.Phases = Phases{}
		delete(s.Errors, ScopeRon)
		e.settleWin(s, dc.Tile, hora.Ron)
	})
}

// CallTsumo wins on the drawn tile
func (e *Engine) CallTsumo() *Snapshot {
	return e.apply("call-tsumo", func(s *Snapshot) {
		if !e.playing(s) || s.Turn != hand.Self || s.ReactionPhase {
			e.setError(s, ScopeTsumo, "Cannot tsumo, not your turn")
			return
		}
		d := s.Input.Drawn
		if d == nil {
			e.setError(s, ScopeTsumo, "No tile to tsumo")
			return
		}

		stamped := s.Clone()
		stamped.Options.Tsumo = true
		stamped.Options.Ippatsu = s.Phases.Ippatsu
		stamped.Options.Rinshan = s.Phases.Rinshan
		stamped.Options.Tenhou = s.Phases.Tenhou
		stamped.Options.Haitei = len(s.Wall) == 0
		e.revealUra(stamped)
		lines := winningLines(e.evaluate(stamped), *d, hora.Tsumo)
		if len(lines) == 0 {
			e.setError(s, ScopeTsumo, "Cannot tsumo with that tile")
			return
		}

		s.Options = stamped.Options
		s.Input.Ura = stamped.Input.Ura
		s.Win = lines
		s.Input.Concealed = append(s.Input.Concealed, *d)
		s.Input.Drawn = nil
		s.Selection = nil
		s.Phases = Phases{}
		delete(s.Errors, ScopeTsumo)
		e.settleWin(s, *d, hora.Tsumo)
	})
}

// canRon reports whether the observed seat may win on t: no furiten and a
// ron line on t that scores without dora
func (e *Engine) canRon(s *Snapshot, t tile.Tile) bool {
	if s.Furiten.Any() {
		return false
	}
	q := s.Query()
	q.Options = ronOptions(s)
	for _, l := range winningLines(e.eval.Evaluate(q), t, hora.Ron) {
		if l.HasRealYaku() {
			return true
		}
	}
	return false
}

// ronOptions stamps the flags a win on the current discard would carry
func ronOptions(s *Snapshot) hand.Options {
	o := s.Options
	o.Ron = true
	o.Ippatsu = s.Phases.Ippatsu
	o.Haitei = len(s.Wall) == 0
	return o
}

func winningLines(r outcome.Result, t tile.Tile, src hora.Source) []hora.Line {
	var out []hora.Line
	for _, l := range outcome.Lines(r, &t) {
		if l.Source == src {
			out = append(out, l)
		}
	}
	return out
}

// revealUra turns over one ura indicator per revealed dora for a riichi hand
func (e *Engine) revealUra(s *Snapshot) {
	if !s.Options.Riichi.Active() {
		return
	}
	n := min(len(s.Input.Dora), len(s.UraPending))
	s.Input.Ura = slices.Clone(s.UraPending[:n])
}

func (e *Engine) settleWin(s *Snapshot, t tile.Tile, src hora.Source) {
	s.Table.Honba = false
	s.Table.Tenpai = false
	s.Table.RiichiLastGame = false
	total := 0
	if len(s.Win) > 0 {
		total = s.Win[0].Points.Total
	}
	e.logger.Info("Hand won", "tile", t, "source", src, "points", total)
	e.endRound(s)
}
