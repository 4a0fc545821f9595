package main

import (
	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/lox/mahjongdojo/internal/config"
)

// version is set by ldflags during build
var version = "dev"

// Globals are flags shared by every command
type Globals struct {
	Config  string `kong:"default='${config_file}',help='HCL configuration file'"`
	Debug   bool   `kong:"help='Enable debug logging'"`
	NoColor bool   `kong:"name='no-color',env='NO_COLOR',help='Disable colored output'"`
}

type CLI struct {
	Globals

	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Play     PlayCmd          `cmd:"" default:"1" help:"Play rounds in the terminal"`
	Deal     DealCmd          `cmd:"" help:"Show the round a seed deals"`
	Eval     EvalCmd          `cmd:"" help:"Classify a hand"`
	Simulate SimulateCmd      `cmd:"" help:"Autoplay rounds and report statistics"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("mahjong"),
		kong.Description("Single-player riichi mahjong practice rounds"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version":     version,
			"config_file": config.DefaultFile,
		},
	)
	if cli.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
