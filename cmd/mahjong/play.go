package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/mahjongdojo/cmd/mahjong/shared"
	"github.com/lox/mahjongdojo/internal/outcome"
	"github.com/lox/mahjongdojo/internal/round"
	"github.com/lox/mahjongdojo/internal/store"
	"github.com/lox/mahjongdojo/internal/tui"
	"github.com/lox/mahjongdojo/tile"
)

// PlayCmd runs the interactive terminal session
type PlayCmd struct {
	Seed    string `kong:"help='Start a new game from this seed instead of resuming'"`
	Hand    string `kong:"help='Start a new game with this 13-tile hand, e.g. 123m456p789s1122z'"`
	Fresh   bool   `kong:"help='Ignore any saved round'"`
	LogFile string `kong:"default='mahjong.log',help='File the session log is written to'"`
}

func (c *PlayCmd) Run(g *Globals) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}

	// The terminal belongs to the UI, so logs go to a file
	logFile, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() {
		if err := logFile.Close(); err != nil {
			log.Error("Failed to close log file", "error", err)
		}
	}()
	logger := shared.SetupLogger(logFile, cfg.Level(), g.Debug)
	ctx := shared.SetupSignalHandler(logger)

	cache, err := outcome.NewCache(cfg.Engine.CacheSize)
	if err != nil {
		return fmt.Errorf("failed to create cache: %w", err)
	}
	defer cache.Close()
	eval := outcome.NewEvaluator(cache, logger)

	st, err := store.Open(ctx, cfg.StoreConfig(), logger)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Error("Failed to close storage", "error", err)
		}
	}()

	clock := quartz.NewReal()
	engine := round.NewEngine(eval, logger,
		round.WithClock(clock),
		round.WithStore(st),
		round.WithErrorTTL(cfg.ErrorTTL()),
		round.WithRule(cfg.GameRule()),
	)
	defer engine.Close()

	switch {
	case c.Hand != "":
		want, err := tile.Parse(c.Hand)
		if err != nil {
			return fmt.Errorf("invalid hand: %w", err)
		}
		if _, err := engine.CustomNewGame(want); err != nil {
			return err
		}
	case c.Seed != "" || c.Fresh:
		engine.NewGame(c.Seed)
	default:
		if s := engine.Restore(ctx); !s.Dealt() {
			engine.NewGame("")
		}
	}

	logger.Info("Starting session", "seed", engine.Snapshot().Seed, "storage", cfg.Storage.Backend)
	model := tui.NewModel(engine, eval, clock, logger)
	model.AddLogEntry("Press enter to play, 'help' lists commands.")

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("terminal session failed: %w", err)
	}
	return nil
}
