package tui

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/mahjongdojo/internal/hora"
	"github.com/lox/mahjongdojo/internal/outcome"
	"github.com/lox/mahjongdojo/internal/round"
	"github.com/lox/mahjongdojo/tile"
)

func newTestModel(t *testing.T) (*Model, *quartz.Mock) {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel}) // Quiet logger for tests
	clock := quartz.NewMock(t)
	eval := outcome.NewEvaluator(nil, logger)
	engine := round.NewEngine(eval, logger, round.WithClock(clock))
	return NewModelWithOptions(engine, eval, clock, logger, true), clock
}

func logText(m *Model) string {
	return strings.Join(m.GetCapturedLog(), "\n")
}

func TestTestModeCapturesLog(t *testing.T) {
	m, _ := newTestModel(t)
	assert.Empty(t, m.GetCapturedLog())

	m.AddLogEntry("first")
	m.AddLogEntry("second")
	assert.Equal(t, []string{"first", "second"}, m.GetCapturedLog())
}

func TestProductionModeDoesNotCapture(t *testing.T) {
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
	eval := outcome.NewEvaluator(nil, logger)
	m := NewModel(round.NewEngine(eval, logger), eval, quartz.NewReal(), logger)

	m.AddLogEntry("Some log entry")
	assert.Nil(t, m.GetCapturedLog())
}

func TestExecuteNewGame(t *testing.T) {
	m, _ := newTestModel(t)

	quit := m.Execute("new Seed-1")
	assert.False(t, quit)
	assert.Equal(t, "Seed-1", m.Snapshot().Seed)
	assert.Contains(t, logText(m), "seed Seed-1")
	assert.Len(t, m.Snapshot().Input.Concealed, 13)
}

func TestExecutePlaysTurns(t *testing.T) {
	m, _ := newTestModel(t)
	m.Execute("new play-1")

	for range 10 {
		if m.Snapshot().Input.Drawn != nil {
			break
		}
		m.Execute("")
	}
	require.NotNil(t, m.Snapshot().Input.Drawn, "the observed seat should draw within a lap")
	assert.Contains(t, logText(m), "You draw")

	drawn := *m.Snapshot().Input.Drawn
	m.Execute("d")
	s := m.Snapshot()
	assert.Nil(t, s.Input.Drawn)
	require.NotEmpty(t, s.Discards[0])
	assert.Equal(t, drawn, s.Discards[0][len(s.Discards[0])-1])
	assert.Contains(t, logText(m), "You discard")
}

func TestExecuteCustomHand(t *testing.T) {
	m, _ := newTestModel(t)

	m.Execute("custom 123m456p789s1122z")
	assert.Equal(t, "123m456p789s1122z", tile.Format(tile.Sorted(m.Snapshot().Input.Concealed)))

	m.Execute("custom 12x")
	assert.Contains(t, logText(m), "Invalid hand")

	m.Execute("custom 1111m1m")
	assert.Contains(t, logText(m), "Cannot deal that hand")
}

func TestExecuteRejectsBadInput(t *testing.T) {
	m, _ := newTestModel(t)
	m.Execute("new bad-1")

	tests := []struct {
		input string
		want  string
	}{
		{"dance", `Unknown command "dance"`},
		{"d x", `Invalid tile number "x"`},
		{"pick", "Which tile?"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			before := m.Snapshot()
			assert.False(t, m.Execute(tt.input))
			assert.Contains(t, logText(m), tt.want)
			assert.Same(t, before, m.Snapshot())
		})
	}
}

func TestExecuteHelpAndQuit(t *testing.T) {
	m, _ := newTestModel(t)

	assert.False(t, m.Execute("help"))
	assert.Contains(t, logText(m), "Commands:")
	assert.True(t, m.Execute("quit"))
	assert.True(t, m.Execute("Q"))
}

func TestErrorsExpire(t *testing.T) {
	m, clock := newTestModel(t)
	m.Execute("new expire-1")
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	m.Execute("ron")
	assert.Contains(t, logText(m), "Cannot ron now")
	assert.Contains(t, m.renderActionPane(), "Cannot ron now")

	clock.Advance(4 * time.Second).MustWait(context.Background())
	assert.NotContains(t, m.renderActionPane(), "Cannot ron now")

	m.Execute("clear")
	assert.Empty(t, m.Snapshot().Errors)
}

func TestView(t *testing.T) {
	m, _ := newTestModel(t)
	assert.Equal(t, "Loading...", m.View())

	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	view := m.View()
	assert.Contains(t, view, "Table")
	assert.Contains(t, view, "No round dealt")

	m.Execute("new view-1")
	view = m.View()
	assert.Contains(t, view, "Hand")
	assert.Contains(t, view, "Discards")
	assert.Contains(t, view, "seed view-1")
}

func TestEnterRunsCommand(t *testing.T) {
	m, _ := newTestModel(t)
	m.actionInput.SetValue("new enter-1")

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "enter-1", m.Snapshot().Seed)
	assert.Empty(t, m.actionInput.Value())

	m.actionInput.SetValue("quit")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.quitting)
	assert.Empty(t, m.View())
}

func TestDescribe(t *testing.T) {
	five := tile.MustParse("5m")[0]
	tests := []struct {
		name   string
		result outcome.Result
		want   string
	}{
		{"nil", nil, ""},
		{"immediate", outcome.ImmediateWin{}, "You can win"},
		{"winning", outcome.Winning{Lines: []hora.Line{
			{Tile: five, Points: hora.Points{Total: 1000}},
			{Tile: five, Points: hora.Points{Total: 2000}},
		}}, "5m (2000)"},
		{"ready", outcome.Ready{Tiles: []outcome.Availability{{Tile: five, Count: 3}}}, "Tenpai on 5m×3 (3 tiles)"},
		{"advancing", outcome.Advancing{Shanten: 2, Tiles: []outcome.Availability{{Tile: five, Count: 2}}}, "2-shanten"},
		{"pending", outcome.PendingDiscard{Candidates: []outcome.Candidate{{Tile: five, Next: outcome.Advancing{Shanten: 1}}}}, "for 1-shanten"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := describe(tt.result)
			if tt.want == "" {
				assert.Empty(t, got)
				return
			}
			assert.Contains(t, got, tt.want)
		})
	}
}

func TestDescribeWinPicksBestLine(t *testing.T) {
	five := tile.MustParse("5m")[0]
	got := describeWin([]hora.Line{
		{Tile: five, Source: hora.Ron, Han: 1, Fu: 30, Yaku: []hora.Yaku{{Name: "tanyao", Han: 1}}, Points: hora.Points{Total: 1000}},
		{Tile: five, Source: hora.Ron, Han: 2, Fu: 40, Yaku: []hora.Yaku{{Name: "pinfu", Han: 1}, {Name: "tanyao", Han: 1}}, Points: hora.Points{Total: 2600}},
	})
	assert.Contains(t, got, "RON on 5m")
	assert.Contains(t, got, "pinfu, tanyao")
	assert.Contains(t, got, "2 han 40 fu = 2600 points")
}
