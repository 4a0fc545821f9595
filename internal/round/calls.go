package round

import (
	"fmt"
	"slices"

	"github.com/lox/mahjongdojo/internal/hand"
	"github.com/lox/mahjongdojo/tile"
)

// CallChi opens a chi selection on the discard in the reaction window
func (e *Engine) CallChi() *Snapshot {
	return e.apply("call-chi", func(s *Snapshot) {
		dc := s.DiscardCheck
		if !s.ReactionPhase || dc == nil {
			return
		}
		if dc.From != hand.Kamicha {
			e.setError(s, ScopeChi, "Chi is only allowed from kamicha")
			return
		}
		seqs := chiSequences(s.Input.Concealed, dc.Tile)
		if len(seqs) == 0 {
			e.setError(s, ScopeChi, "Cannot chi that tile")
			return
		}
		if s.Options.Riichi.Active() {
			e.setError(s, ScopeRiichi, "Can't modify riichi hand")
			return
		}
		t := dc.Tile
		s.Selection = &Selection{Kind: SelectChi, Tile: &t, Open: true, Sequences: seqs}
	})
}

// CallPon opens a pon selection on the discard in the reaction window
func (e *Engine) CallPon() *Snapshot {
	return e.apply("call-pon", func(s *Snapshot) {
		e.openClaim(s, SelectPon, ScopePon, 2, "Cannot pon that tile")
	})
}

// CallKanDiscard opens an open-kan selection on the discard in the reaction
// window
func (e *Engine) CallKanDiscard() *Snapshot {
	return e.apply("call-kan-discard", func(s *Snapshot) {
		e.openClaim(s, SelectKan, ScopeKan, 3, "Cannot kan that tile")
	})
}

// CallKanDrawn declares a kan on the observed seat's own turn. An existing
// pon matching the drawn tile is upgraded at once; otherwise a selection opens
// for a concealed kan with the drawn fourth copy, or for four concealed
// copies.
func (e *Engine) CallKanDrawn() *Snapshot {
	return e.apply("call-kan-drawn", func(s *Snapshot) {
		if !e.playing(s) || s.Turn != hand.Self || s.ReactionPhase {
			return
		}
		if d := s.Input.Drawn; d != nil {
			for i, m := range s.Input.Melds {
				if m.Kind != hand.Pon || !tile.SameKind(m.Tiles[0], *d) {
					continue
				}
				m.Kind = hand.Kan
				m.Tiles = append(slices.Clone(m.Tiles), *d)
				m.Added = true
				s.Input.Melds[i] = m
				s.Input.Drawn = nil
				e.logger.Debug("Added kan", "tile", *d)
				e.kanDraw(s)
				return
			}
			if tile.CountKind(s.Input.Concealed, *d) >= 3 {
				t := *d
				s.Selection = &Selection{Kind: SelectKan, Tile: &t, HighlightDrawn: true}
				return
			}
		}
		for _, n := range tile.Counts(s.Input.Concealed) {
			if n == 4 {
				s.Selection = &Selection{Kind: SelectKan}
				return
			}
		}
		e.setError(s, ScopeKan, "No kan available")
	})
}

// SelectTile picks a concealed tile for the active selection. A riichi
// selection takes an index into the full hand and discards at once.
func (e *Engine) SelectTile(index int) *Snapshot {
	return e.apply("select-tile", func(s *Snapshot) {
		sel := s.Selection
		if sel == nil || !e.playing(s) {
			return
		}
		if sel.Kind == SelectRiichi {
			e.selectRiichi(s, index)
			return
		}
		if index < 0 || index >= len(s.Input.Concealed) || slices.Contains(sel.Picked, index) {
			return
		}
		sel.Picked = append(sel.Picked, index)
		if len(sel.Picked) < sel.Need() {
			return
		}
		switch sel.Kind {
		case SelectChi:
			e.completeChi(s)
		case SelectPon:
			e.completePon(s)
		case SelectKan:
			e.completeKan(s)
		}
	})
}

func (e *Engine) openClaim(s *Snapshot, kind SelectionKind, scope Scope, need int, msg string) {
	dc := s.DiscardCheck
	if !s.ReactionPhase || dc == nil {
		return
	}
	if tile.CountKind(s.Input.Concealed, dc.Tile) < need {
		e.setError(s, scope, msg)
		return
	}
	if s.Options.Riichi.Active() {
		e.setError(s, ScopeRiichi, "Can't modify riichi hand")
		return
	}
	t := dc.Tile
	s.Selection = &Selection{Kind: kind, Tile: &t, Open: true}
}

// chiSequences lists the runs, by starting rank, that the concealed tiles can
// complete with t
func chiSequences(concealed []tile.Tile, t tile.Tile) [][3]uint8 {
	if !t.Suit.IsNumber() {
		return nil
	}
	has := func(rank uint8) bool {
		return slices.ContainsFunc(concealed, func(c tile.Tile) bool {
			return c.Suit == t.Suit && c.Rank == rank
		})
	}
	var out [][3]uint8
	for start := max(1, int(t.Rank)-2); start <= min(7, int(t.Rank)); start++ {
		seq := [3]uint8{uint8(start), uint8(start + 1), uint8(start + 2)}
		ok := true
		for _, r := range seq {
			if r != t.Rank && !has(r) {
				ok = false
			}
		}
		if ok {
			out = append(out, seq)
		}
	}
	return out
}

func (s *Snapshot) picked() []tile.Tile {
	out := make([]tile.Tile, len(s.Selection.Picked))
	for i, idx := range s.Selection.Picked {
		out[i] = s.Input.Concealed[idx]
	}
	return out
}

// removePicked deletes the selected tiles from the concealed hand
func (s *Snapshot) removePicked() {
	idx := slices.Clone(s.Selection.Picked)
	slices.Sort(idx)
	for i := len(idx) - 1; i >= 0; i-- {
		s.Input.Concealed = slices.Delete(s.Input.Concealed, idx[i], idx[i]+1)
	}
}

func (e *Engine) completeChi(s *Snapshot) {
	claimed := *s.Selection.Tile
	picks := tile.Sorted(s.picked())
	ranks := [3]uint8{claimed.Rank, picks[0].Rank, picks[1].Rank}
	slices.Sort(ranks[:])

	valid := picks[0].Suit == claimed.Suit && picks[1].Suit == claimed.Suit &&
		slices.Contains(s.Selection.Sequences, ranks)
	if !valid {
		e.failCall(s, ScopeChi, "That's not chi")
		return
	}
	e.claim(s, hand.Meld{Kind: hand.Chi, Tiles: append([]tile.Tile{claimed}, picks...), Claimed: 0})
	s.MustDiscard = true
}

func (e *Engine) completePon(s *Snapshot) {
	claimed := *s.Selection.Tile
	picks := s.picked()
	if !allSameKind(claimed, picks) {
		e.failCall(s, ScopePon, "That's not pon")
		return
	}
	claimedAt := map[hand.Seat]int{hand.Kamicha: 0, hand.Toimen: 1, hand.Shimocha: 2}[s.DiscardCheck.From]
	e.claim(s, hand.Meld{Kind: hand.Pon, Tiles: append(picks, claimed), Claimed: claimedAt})
	s.MustDiscard = true
}

func (e *Engine) completeKan(s *Snapshot) {
	sel := s.Selection
	picks := s.picked()
	first := picks[0]
	if sel.Tile != nil {
		first = *sel.Tile
	}
	if !allSameKind(first, picks) {
		e.failCall(s, ScopeKan, "That's not kan")
		return
	}

	if sel.Open {
		claimedAt := map[hand.Seat]int{hand.Kamicha: 0, hand.Toimen: 1, hand.Shimocha: 3}[s.DiscardCheck.From]
		e.claim(s, hand.Meld{Kind: hand.Kan, Tiles: append(picks, *sel.Tile), Claimed: claimedAt})
		e.kanDraw(s)
		return
	}

	tiles := picks
	if sel.Tile != nil {
		tiles = append(tiles, *sel.Tile)
		s.Input.Drawn = nil
	}
	s.removePicked()
	s.Input.Melds = append(s.Input.Melds, hand.Meld{Kind: hand.Kan, Tiles: tiles, Claimed: hand.NoClaim, Closed: true})
	s.Selection = nil
	e.logger.Debug("Concealed kan", "tiles", tile.Format(tiles))
	e.kanDraw(s)
}

// claim takes the discard in the reaction window into a new meld built with
// the selected concealed tiles, giving the turn to the observed seat
func (e *Engine) claim(s *Snapshot, meld hand.Meld) {
	dc := s.DiscardCheck
	pile := s.Discards[dc.From]
	if len(pile) == 0 || !tile.Equal(pile[len(pile)-1], dc.Tile) {
		panic(fmt.Sprintf("round: claimed %s is not the last discard of %s", dc.Tile, dc.From))
	}
	s.Discards[dc.From] = pile[:len(pile)-1]
	s.removePicked()
	s.Input.Melds = append(s.Input.Melds, meld)
	s.Selection = nil
	s.DiscardCheck = nil
	s.ReactionPhase = false
	s.Turn = hand.Self
	s.Phases.Tenhou = false
	e.logger.Debug("Called", "kind", meld.Kind, "tiles", tile.Format(meld.Tiles), "from", dc.From)
}

// failCall drops a selection whose tiles do not form the meld. A claim on a
// discard ends the reaction window as a pass.
func (e *Engine) failCall(s *Snapshot, scope Scope, msg string) {
	open := s.Selection.Open
	s.Selection = nil
	if open && s.ReactionPhase && s.DiscardCheck != nil {
		e.pass(s)
	}
	e.setError(s, scope, msg)
}

// kanDraw finishes any kan: the replacement tile comes from the kan draws,
// the wall's front tile moves to the haitei reserve and one more dora
// indicator is revealed. The fifth indicator ends the round.
func (e *Engine) kanDraw(s *Snapshot) {
	if len(s.KanDraws) == 0 {
		panic("round: kan with no replacement tiles left")
	}
	if s.Input.Drawn != nil {
		s.Input.Concealed = tile.Sorted(append(s.Input.Concealed, *s.Input.Drawn))
	}
	d := s.KanDraws[0]
	s.KanDraws = s.KanDraws[1:]
	s.Input.Drawn = &d

	if len(s.Wall) > 0 {
		s.Haitei = append(s.Haitei, s.Wall[0])
		s.Wall = s.Wall[1:]
	}
	if i := len(s.Input.Dora); i < len(s.DoraPending) {
		s.Input.Dora = append(s.Input.Dora, s.DoraPending[i])
	}

	s.Selection = nil
	s.DiscardCheck = nil
	s.ReactionPhase = false
	s.Turn = hand.Self
	s.MustDiscard = false
	s.Phases = Phases{Rinshan: true}
	e.logger.Debug("Kan draw", "tile", d, "dora", len(s.Input.Dora))

	if len(s.Input.Dora) == len(s.DoraPending) {
		s.Table.Honba = true
		s.Table.Tenpai = false
		s.Table.RiichiLastGame = s.Options.Riichi.Active()
		e.endRound(s)
	}
}

func allSameKind(first tile.Tile, tiles []tile.Tile) bool {
	for _, t := range tiles {
		if !tile.SameKind(first, t) {
			return false
		}
	}
	return true
}
