package tui

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/lox/mahjongdojo/internal/hand"
	"github.com/lox/mahjongdojo/internal/hora"
	"github.com/lox/mahjongdojo/internal/outcome"
	"github.com/lox/mahjongdojo/internal/round"
	"github.com/lox/mahjongdojo/tile"
)

// formatTiles renders tiles with suit colors
func formatTiles(tiles []tile.Tile) string {
	parts := make([]string, len(tiles))
	for i, t := range tiles {
		parts[i] = tileStyle(t).Render(t.String())
	}
	return strings.Join(parts, " ")
}

func (m *Model) renderSidebarPane() string {
	s := m.snap
	var b strings.Builder
	b.WriteString(HeaderStyle.Render(" Table ") + "\n\n")
	if !s.Dealt() {
		b.WriteString(InfoStyle.Render("No round dealt.\nType 'new' to start."))
		return b.String()
	}

	fmt.Fprintf(&b, "Round:   %s %d\n", s.Table.Round, s.Table.RoundCount)
	fmt.Fprintf(&b, "Seat:    %s\n", s.Table.Seat)
	fmt.Fprintf(&b, "Honba:   %d\n", s.Table.Continue)
	fmt.Fprintf(&b, "Deposit: %d\n", s.Table.Deposit)
	fmt.Fprintf(&b, "Wall:    %d\n", len(s.Wall))
	fmt.Fprintf(&b, "Kan:     %d left\n", len(s.KanDraws))
	fmt.Fprintf(&b, "Dora:    %s\n", formatTiles(s.Input.Dora))
	fmt.Fprintf(&b, "Turn:    %s\n", s.Turn)
	if s.Options.Riichi.Active() {
		b.WriteString(WarningStyle.Render(string(s.Options.Riichi)) + "\n")
	}
	if f := s.Furiten; f.Any() {
		var kinds []string
		if f.Self {
			kinds = append(kinds, "own discards")
		}
		if f.Temporary {
			kinds = append(kinds, "temporary")
		}
		if f.Permanent {
			kinds = append(kinds, "permanent")
		}
		b.WriteString(ErrorStyle.Render("Furiten: "+strings.Join(kinds, ", ")) + "\n")
	}
	if len(s.ShantenHistory) > 0 {
		fmt.Fprintf(&b, "\nStart shanten: %.2f avg over %d\n", s.AverageShanten, len(s.ShantenHistory))
	}
	fmt.Fprintf(&b, "\n%s", InfoStyle.Render("seed "+s.Seed))
	return b.String()
}

func (m *Model) renderLogPane() string {
	s := m.snap
	var lines []string
	if s.Dealt() {
		lines = append(lines, HeaderStyle.Render(" Discards "))
		for _, seat := range hand.Seats {
			lines = append(lines, fmt.Sprintf("%-9s %s", seat, formatTiles(s.Discards[seat])))
		}
		lines = append(lines, "")
	}
	lines = append(lines, m.gameLog...)
	return strings.Join(lines, "\n")
}

func (m *Model) renderActionPane() string {
	s := m.snap
	var b strings.Builder
	if s.Dealt() {
		b.WriteString(m.renderHand() + "\n")
		switch {
		case len(s.Win) > 0:
			b.WriteString(describeWin(s.Win) + "\n")
		case s.GameOver:
			b.WriteString(WarningStyle.Render("Game over. Type 'new' for another game.") + "\n")
		case s.RoundOver:
			b.WriteString(InfoStyle.Render("Round over. Press enter for the next round.") + "\n")
		default:
			if d := describe(m.eval.Evaluate(s.Query())); d != "" {
				b.WriteString(d + "\n")
			}
		}
		if sel := s.Selection; sel != nil {
			fmt.Fprintf(&b, "%s\n", ActionsStyle.Render(fmt.Sprintf("%s: pick %d tile(s), %d chosen", sel.Kind, sel.Need(), len(sel.Picked))))
		}
		if dc := s.DiscardCheck; dc != nil && s.ReactionPhase {
			fmt.Fprintf(&b, "%s\n", ActionsStyle.Render(fmt.Sprintf("%s discarded %s: ron, chi, pon, kan or pass", dc.From, dc.Tile)))
		}
	}

	now := m.clock.Now()
	for _, scope := range slices.Sorted(maps.Keys(s.Errors)) {
		if n := s.Errors[scope]; now.Before(n.Expires) {
			b.WriteString(ErrorStyle.Render(n.Message) + "\n")
		}
	}

	b.WriteString(m.actionInput.View() + "\n")
	b.WriteString(InfoStyle.Render("enter: next | d N: discard | chi pon kan riichi ron tsumo pass | help | tab: scroll log"))
	return b.String()
}

// renderHand lists the concealed tiles by index, the drawn tile last
func (m *Model) renderHand() string {
	s := m.snap
	var picked []int
	if s.Selection != nil {
		picked = s.Selection.Picked
	}
	full := s.FullHand()
	parts := make([]string, 0, len(full)+1)
	for i, t := range full {
		label := fmt.Sprintf("%d:%s", i, tileStyle(t).Render(t.String()))
		if slices.Contains(picked, i) {
			label = SelectedStyle.Render(label)
		}
		if s.Input.Drawn != nil && i == len(full)-1 {
			parts = append(parts, "|")
		}
		parts = append(parts, label)
	}
	out := HandInfoStyle.Render("Hand ") + strings.Join(parts, " ")
	for _, meld := range s.Input.Melds {
		out += "  [" + formatTiles(meld.Tiles) + "]"
	}
	return out
}

// describe summarizes an evaluator result in one line
func describe(r outcome.Result) string {
	switch r := r.(type) {
	case outcome.ImmediateWin:
		return SuccessStyle.Render("You can win on that tile!")
	case outcome.Winning:
		best := map[string]int{}
		var order []string
		for _, l := range r.Lines {
			k := l.Tile.String()
			if _, ok := best[k]; !ok {
				order = append(order, k)
			}
			best[k] = max(best[k], l.Points.Total)
		}
		waits := make([]string, len(order))
		for i, k := range order {
			waits[i] = fmt.Sprintf("%s (%d)", k, best[k])
		}
		return SuccessStyle.Render("Tenpai, waiting on " + strings.Join(waits, ", "))
	case outcome.Ready:
		return SuccessStyle.Render("Tenpai on " + availability(r.Tiles))
	case outcome.Advancing:
		return fmt.Sprintf("%d-shanten, improved by %s", r.Shanten, availability(r.Tiles))
	case outcome.PendingDiscard:
		tiles := make([]tile.Tile, len(r.Candidates))
		for i, c := range r.Candidates {
			tiles[i] = c.Tile
		}
		next := ""
		if len(r.Candidates) > 0 {
			if n, ok := outcome.Shanten(r.Candidates[0].Next); ok && n > 0 {
				next = fmt.Sprintf(" for %d-shanten", n)
			} else {
				next = " for tenpai"
			}
		}
		return fmt.Sprintf("Best discards%s: %s", next, formatTiles(tiles))
	}
	return ""
}

func availability(tiles []outcome.Availability) string {
	total := 0
	parts := make([]string, len(tiles))
	for i, a := range tiles {
		parts[i] = fmt.Sprintf("%s×%d", a.Tile, a.Count)
		total += a.Count
	}
	return fmt.Sprintf("%s (%d tiles)", strings.Join(parts, " "), total)
}

// describeWin shows the highest scoring line
func describeWin(lines []hora.Line) string {
	best := lines[0]
	for _, l := range lines[1:] {
		if l.Points.Total > best.Points.Total {
			best = l
		}
	}
	names := make([]string, len(best.Yaku))
	for i, y := range best.Yaku {
		names[i] = y.Name
	}
	value := fmt.Sprintf("%d han %d fu", best.Han, best.Fu)
	if best.Yakuman > 0 {
		value = fmt.Sprintf("%dx yakuman", best.Yakuman)
	}
	if best.Points.Limit != "" {
		value += " " + best.Points.Limit
	}
	return SuccessStyle.Render(fmt.Sprintf("%s on %s: %s, %s = %d points",
		strings.ToUpper(string(best.Source)), best.Tile, strings.Join(names, ", "), value, best.Points.Total))
}

// narrate turns the difference between two snapshots into log lines
func narrate(prev, next *round.Snapshot) []string {
	var out []string
	if next.Session != prev.Session || next.Seed != prev.Seed {
		out = append(out, HeaderStyle.Render(fmt.Sprintf(" %s %d, seat %s ", next.Table.Round, next.Table.RoundCount, next.Table.Seat)))
		out = append(out, InfoStyle.Render("seed "+next.Seed))
		return out
	}

	for _, seat := range hand.Seats[1:] {
		if len(next.Discards[seat]) > len(prev.Discards[seat]) {
			d := next.Discards[seat]
			out = append(out, fmt.Sprintf("%s discards %s", seat, formatTiles(d[len(d)-1:])))
		}
	}
	if prev.Input.Drawn == nil && next.Input.Drawn != nil {
		out = append(out, "You draw "+formatTiles([]tile.Tile{*next.Input.Drawn}))
	}
	if len(next.Input.Melds) > len(prev.Input.Melds) || meldGrew(prev, next) {
		meld := next.Input.Melds[len(next.Input.Melds)-1]
		if len(next.Input.Melds) == len(prev.Input.Melds) {
			for i := range next.Input.Melds {
				if len(next.Input.Melds[i].Tiles) != len(prev.Input.Melds[i].Tiles) {
					meld = next.Input.Melds[i]
				}
			}
		}
		out = append(out, ActionsStyle.Render(fmt.Sprintf("You call %s ", meld.Kind))+formatTiles(meld.Tiles))
	}
	if d := next.Discards[hand.Self]; len(d) > len(prev.Discards[hand.Self]) {
		out = append(out, "You discard "+formatTiles(d[len(d)-1:]))
	}
	if !prev.Options.Riichi.Active() && next.Options.Riichi.Active() {
		out = append(out, WarningStyle.Render("Riichi!"))
	}
	if next.Selection != nil && prev.Selection == nil {
		out = append(out, ActionsStyle.Render(fmt.Sprintf("Pick %d tile(s) for %s", next.Selection.Need(), next.Selection.Kind)))
	}
	for _, scope := range slices.Sorted(maps.Keys(next.Errors)) {
		if n := next.Errors[scope]; n != prev.Errors[scope] {
			out = append(out, ErrorStyle.Render(n.Message))
		}
	}
	if len(next.Win) > 0 && len(prev.Win) == 0 {
		out = append(out, describeWin(next.Win))
	}
	if next.RoundOver && !prev.RoundOver && len(next.Win) == 0 {
		if len(next.Input.Dora) == len(next.DoraPending) {
			out = append(out, WarningStyle.Render("Fifth kan, the round is abandoned"))
		} else {
			out = append(out, WarningStyle.Render("Exhaustive draw"))
		}
	}
	if next.GameOver && !prev.GameOver {
		out = append(out, WarningStyle.Render("Game over"))
	}
	return out
}

// meldGrew reports whether a pon was upgraded to an added kan
func meldGrew(prev, next *round.Snapshot) bool {
	if len(prev.Input.Melds) != len(next.Input.Melds) {
		return false
	}
	for i := range next.Input.Melds {
		if len(next.Input.Melds[i].Tiles) != len(prev.Input.Melds[i].Tiles) {
			return true
		}
	}
	return false
}
