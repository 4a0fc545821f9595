package tui

import (
	"strconv"
	"strings"

	"github.com/lox/mahjongdojo/internal/round"
	"github.com/lox/mahjongdojo/tile"
)

const helpText = `Commands:
  <enter>, next      advance: draw, let opponents discard, pass, next round
  discard N, d N     discard tile N; 'd' alone discards the drawn tile
  chi, pon, kan      call the discard in the reaction window (kan on your turn declares a concealed or added kan)
  pick N, p N        choose tile N for the current call
  riichi             choose a riichi discard with pick N
  ron, tsumo         win
  pass               decline the discard in the reaction window
  cancel, esc        cancel the current call
  new [seed]         start a new game
  custom TILES       start a new game with a chosen hand, e.g. custom 123m456p789s1122z
  round              deal the next round
  shanten            record the current shanten
  furiten            recheck furiten on your discards
  clear              clear messages
  quit               exit`

// Execute runs one typed command and reports whether the session should end
func (m *Model) Execute(input string) bool {
	parts := strings.Fields(input)
	action := ""
	var args []string
	if len(parts) > 0 {
		action, args = strings.ToLower(parts[0]), parts[1:]
	}

	prev := m.snap
	var next *round.Snapshot
	switch action {
	case "", "next", "n":
		next = m.engine.Next()
	case "draw":
		next = m.engine.Draw()
	case "discard", "d":
		if len(args) == 0 {
			next = m.engine.DiscardDrawn()
			break
		}
		i, ok := m.index(args)
		if !ok {
			return false
		}
		next = m.engine.Discard(i)
	case "pick", "p":
		i, ok := m.index(args)
		if !ok {
			return false
		}
		next = m.engine.SelectTile(i)
	case "chi":
		next = m.engine.CallChi()
	case "pon":
		next = m.engine.CallPon()
	case "kan":
		if prev.ReactionPhase {
			next = m.engine.CallKanDiscard()
		} else {
			next = m.engine.CallKanDrawn()
		}
	case "riichi":
		next = m.engine.CallRiichi()
	case "ron":
		next = m.engine.CallRon()
	case "tsumo":
		next = m.engine.CallTsumo()
	case "pass":
		next = m.engine.Pass()
	case "cancel", "esc":
		next = m.engine.Escape()
	case "new":
		seed := ""
		if len(args) > 0 {
			seed = args[0]
		}
		next = m.engine.NewGame(seed)
	case "custom":
		want, err := tile.Parse(strings.Join(args, ""))
		if err != nil {
			m.errorf("Invalid hand: %v", err)
			return false
		}
		s, err := m.engine.CustomNewGame(want)
		if err != nil {
			m.errorf("Cannot deal that hand: %v", err)
			return false
		}
		next = s
	case "round":
		next = m.engine.NewRound()
	case "shanten":
		next = m.engine.LogShanten()
	case "furiten":
		next = m.engine.CheckFuriten()
	case "clear":
		next = m.engine.ClearErrors()
	case "help", "h", "?":
		m.AddLogEntry(InfoStyle.Render(helpText))
		return false
	case "quit", "q", "exit":
		return true
	default:
		m.errorf("Unknown command %q, type 'help'", action)
		return false
	}

	m.snap = next
	m.addLogEntries(narrate(prev, next))
	m.logger.Debug("Executed command", "action", action, "args", args)
	return false
}

func (m *Model) index(args []string) (int, bool) {
	if len(args) == 0 {
		m.errorf("Which tile? Give its number")
		return 0, false
	}
	i, err := strconv.Atoi(args[0])
	if err != nil {
		m.errorf("Invalid tile number %q", args[0])
		return 0, false
	}
	return i, true
}
