package main

import (
	"fmt"
	"os"
	"time"

	"github.com/lox/mahjongdojo/cmd/mahjong/shared"
	"github.com/lox/mahjongdojo/internal/outcome"
	"github.com/lox/mahjongdojo/internal/simulator"
)

// SimulateCmd autoplays rounds and reports statistics
type SimulateCmd struct {
	Rounds  int           `kong:"default='1000',help='Number of rounds to play'"`
	Seed    string        `kong:"default='',help='Base seed (defaults to one from the clock)'"`
	Policy  string        `kong:"default='efficient',enum='efficient,tsumogiri',help='Discard policy: efficient, tsumogiri'"`
	Workers int           `kong:"default='4',help='Rounds played in parallel'"`
	Timeout time.Duration `kong:"default='30s',help='Limit per round'"`
}

func (c *SimulateCmd) Run(g *Globals) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	logger := shared.SetupLogger(os.Stderr, cfg.Level(), g.Debug)
	ctx := shared.SetupSignalHandler(logger)

	seed := c.Seed
	if seed == "" {
		seed = fmt.Sprintf("sim-%d", time.Now().UnixMilli())
	}

	cache, err := outcome.NewCache(cfg.Engine.CacheSize)
	if err != nil {
		return fmt.Errorf("failed to create cache: %w", err)
	}
	defer cache.Close()

	sim := simulator.New(simulator.Config{
		Rounds:  c.Rounds,
		Seed:    seed,
		Policy:  c.Policy,
		Workers: c.Workers,
		Timeout: c.Timeout,
		Rule:    cfg.GameRule(),
		Cache:   cache,
		Logger:  logger,
	})
	logger.Info("Starting simulation", "run", sim.RunID(), "rounds", c.Rounds, "seed", seed, "policy", c.Policy)

	start := time.Now()
	stats, err := sim.Run(ctx)
	if err != nil {
		return err
	}
	simulator.PrintSummary(os.Stdout, stats, c.Policy)
	logger.Info("Simulation complete", "duration", time.Since(start), "cache_hit_ratio", cache.HitRatio())
	return nil
}
