package main

import (
	"io"
	"os"

	"github.com/coder/quartz"

	"github.com/lox/oichokabu/internal/game"
	"github.com/lox/oichokabu/internal/gameid"
	"github.com/lox/oichokabu/internal/randutil"
	"github.com/lox/oichokabu/internal/tui"
)

// PlayCmd plays a single-seat table in the terminal.
type PlayCmd struct {
	Seed    *int64 `help:"Deterministic RNG seed (optional)"`
	LogFile string `help:"Write logs to this file; the terminal is owned by the UI"`
}

func (c *PlayCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	opts, err := g.rules(cfg)
	if err != nil {
		return err
	}
	delay, err := cfg.StepDelay()
	if err != nil {
		return err
	}

	var out io.Writer = io.Discard
	if c.LogFile != "" {
		f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	logger := newLogger(out, cfg)

	rng, seed := randutil.NewTimeSeeded()
	if c.Seed != nil {
		seed = *c.Seed
		rng = randutil.New(seed)
	}
	logger.Info("Starting table", "seed", seed, "policy", opts.ThirdCardPolicy, "tie_break", opts.TieBreak)

	clock := quartz.NewReal()
	session := game.NewSession(rng,
		game.WithOptions(opts),
		game.WithIDGenerator(gameid.NewGenerator(nil, clock)),
		game.WithLogger(logger),
	)
	table := game.NewTable(session, clock, delay, logger)

	ctx, cancel := signalContext()
	defer cancel()
	return tui.Run(ctx, table, logger)
}
