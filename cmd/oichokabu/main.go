package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/lox/oichokabu/internal/config"
	"github.com/lox/oichokabu/internal/game"
)

// version is set by ldflags during build
var version = "dev"

// Globals are flags shared by every command.
type Globals struct {
	Config   string `short:"c" default:"${config}" help:"Path to HCL configuration file"`
	LogLevel string `short:"l" help:"Log level (overrides config)"`
	Sente    bool   `help:"Play Sente-Kabu: optional third card, ties push, dealer card face up"`
}

type CLI struct {
	Globals

	Play     PlayCmd     `cmd:"" default:"1" help:"Play at a table in the terminal"`
	Serve    ServeCmd    `cmd:"" help:"Serve tables over WebSocket"`
	Simulate SimulateCmd `cmd:"" help:"Simulate many rounds with a drawing strategy"`
	Bot      BotCmd      `cmd:"" help:"Play rounds against a running server"`
	Version  VersionCmd  `cmd:"" help:"Show version"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("oichokabu"),
		kong.Description("Oicho-Kabu card game: terminal table, WebSocket server and simulator"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"config": config.DefaultFilename,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}

// load reads the configuration file and applies command line overrides.
func (g *Globals) load() (*config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", g.Config, err)
	}
	if g.LogLevel != "" {
		cfg.LogLevel = g.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// rules returns the session options selected by the config and flags.
func (g *Globals) rules(cfg *config.Config) (game.Options, error) {
	opts, err := cfg.GameOptions()
	if err != nil {
		return game.Options{}, err
	}
	if g.Sente {
		sente := game.SenteKabu()
		opts.ThirdCardPolicy = sente.ThirdCardPolicy
		opts.TieBreak = sente.TieBreak
		opts.DealerVisibility = sente.DealerVisibility
	}
	return opts, nil
}

func newLogger(w io.Writer, cfg *config.Config) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           cfg.Level(),
		ReportTimestamp: true,
	})
}

// signalContext is cancelled on interrupt or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println("oichokabu", version)
	return nil
}
