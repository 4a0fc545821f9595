package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lox/mahjongdojo/cmd/mahjong/shared"
	"github.com/lox/mahjongdojo/internal/hand"
	"github.com/lox/mahjongdojo/internal/hora"
	"github.com/lox/mahjongdojo/internal/outcome"
	"github.com/lox/mahjongdojo/tile"
)

// EvalCmd classifies a hand without playing a round
type EvalCmd struct {
	Hand   string `kong:"arg,help='Concealed tiles, e.g. 234m456p678s345s5m'"`
	Drawn  string `kong:"help='Tile just drawn'"`
	Dora   string `kong:"default='',help='Dora indicators'"`
	Seen   string `kong:"default='',help='Tiles already visible in discards'"`
	Round  string `kong:"default='east',enum='east,south,west,north',help='Round wind'"`
	Seat   string `kong:"default='east',enum='east,south,west,north',help='Seat wind'"`
	Riichi bool   `kong:"help='Hand is in riichi'"`
}

func (c *EvalCmd) Run(g *Globals) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	logger := shared.SetupLogger(os.Stderr, cfg.Level(), g.Debug)

	q, err := c.query(cfg.GameRule())
	if err != nil {
		return err
	}
	r := outcome.NewEvaluator(nil, logger).Evaluate(q)
	if r == nil {
		return fmt.Errorf("cannot classify a hand of %d tiles", len(q.Input.Combined()))
	}
	printResult(os.Stdout, r)
	return nil
}

func (c *EvalCmd) query(rule hand.Rule) (outcome.Query, error) {
	concealed, err := tile.Parse(c.Hand)
	if err != nil {
		return outcome.Query{}, fmt.Errorf("invalid hand: %w", err)
	}
	dora, err := tile.Parse(c.Dora)
	if err != nil {
		return outcome.Query{}, fmt.Errorf("invalid dora: %w", err)
	}
	seen, err := tile.Parse(c.Seen)
	if err != nil {
		return outcome.Query{}, fmt.Errorf("invalid seen tiles: %w", err)
	}

	q := outcome.Query{
		Table:    hand.Table{Round: hand.Wind(c.Round), Seat: hand.Wind(c.Seat), RoundCount: 1},
		Input:    hand.Input{Concealed: tile.Sorted(concealed), Dora: dora},
		Options:  hand.DefaultOptions(),
		Rule:     rule,
		Discards: seen,
	}
	if c.Riichi {
		q.Options.Riichi = hand.RiichiSingle
	}
	if c.Drawn != "" {
		drawn, err := tile.Parse(c.Drawn)
		if err != nil || len(drawn) != 1 {
			return outcome.Query{}, fmt.Errorf("invalid drawn tile %q", c.Drawn)
		}
		q.Input.Drawn = &drawn[0]
	}
	return q, nil
}

func printResult(w io.Writer, r outcome.Result) {
	switch r := r.(type) {
	case outcome.ImmediateWin:
		fmt.Fprintln(w, "The drawn tile completes the hand")
	case outcome.Winning:
		fmt.Fprintln(w, "Tenpai")
		for _, l := range r.Lines {
			printLine(w, l)
		}
	case outcome.Ready:
		fmt.Fprintf(w, "Tenpai, waiting on %s\n", availability(r.Tiles))
	case outcome.Advancing:
		fmt.Fprintf(w, "%d-shanten, improved by %s\n", r.Shanten, availability(r.Tiles))
	case outcome.PendingDiscard:
		fmt.Fprintln(w, "Best discards:")
		for _, cand := range r.Candidates {
			fmt.Fprintf(w, "  %s: ", cand.Tile)
			if n, ok := outcome.Shanten(cand.Next); ok && n > 0 {
				fmt.Fprintf(w, "%d-shanten\n", n)
				continue
			}
			fmt.Fprintln(w, "tenpai")
		}
	}
}

func printLine(w io.Writer, l hora.Line) {
	names := make([]string, len(l.Yaku))
	for i, y := range l.Yaku {
		names[i] = y.Name
	}
	value := fmt.Sprintf("%d han %d fu", l.Han, l.Fu)
	if l.Yakuman > 0 {
		value = fmt.Sprintf("%dx yakuman", l.Yakuman)
	}
	fmt.Fprintf(w, "  %-5s %s: %s (%s) %d\n", l.Source, l.Tile, value, strings.Join(names, ", "), l.Points.Total)
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
