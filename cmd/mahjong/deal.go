package main

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/coder/quartz"

	"github.com/lox/mahjongdojo/cmd/mahjong/shared"
	"github.com/lox/mahjongdojo/internal/hand"
	"github.com/lox/mahjongdojo/internal/wall"
	"github.com/lox/mahjongdojo/tile"
)

var titleStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#FAFAFA")).
	Background(lipgloss.Color("#7D56F4")).
	Padding(0, 1).
	Bold(true)

// DealCmd prints the round a seed sets up
type DealCmd struct {
	Seed string `kong:"arg,optional,help='Round seed (defaults to one from the clock)'"`
	Wall bool   `kong:"help='Print the live wall in draw order'"`
}

func (c *DealCmd) Run(g *Globals) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	logger := shared.SetupLogger(os.Stderr, cfg.Level(), g.Debug)
	rule := cfg.GameRule()

	r, err := wall.NewDealer(quartz.NewReal(), logger).Deal(rule.Red, c.Seed)
	if err != nil {
		return err
	}
	self := wall.SelfWind(r.Seed)

	fmt.Println(titleStyle.Render(" " + r.Seed + " "))
	fmt.Printf("Dice %d+%d, live wall cut at %d\n", r.Dice[0], r.Dice[1], r.LiveWallCut)
	fmt.Printf("Dora indicator %s\n", tile.Format(r.Dora))
	fmt.Printf("You sit %s\n\n", self)
	for i, w := range hand.Winds {
		marker := " "
		if w == self {
			marker = "*"
		}
		fmt.Printf("%s %-6s %s\n", marker, w, tile.Format(tile.Sorted(r.Hands[i])))
	}
	fmt.Printf("\n%d live tiles, %d kan draws\n", len(r.Wall), len(r.KanDraws))
	if c.Wall {
		// the wall is drawn from its end
		order := slices.Clone(r.Wall)
		slices.Reverse(order)
		names := make([]string, len(order))
		for i, t := range order {
			names[i] = t.String()
		}
		fmt.Println(strings.Join(names, " "))
	}
	return nil
}
