package main

import (
	"os"

	"github.com/lox/oichokabu/internal/server"
)

// ServeCmd serves one table per WebSocket connection.
type ServeCmd struct {
	Addr string `short:"a" help:"Server address to bind to (overrides config)"`
}

func (c *ServeCmd) Run(g *Globals) error {
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

	addr := cfg.ServerAddress()
	if c.Addr != "" {
		addr = c.Addr
	}
	logger := newLogger(os.Stderr, cfg)
	logger.Info("Starting Oicho-Kabu server",
		"addr", addr,
		"policy", opts.ThirdCardPolicy,
		"tie_break", opts.TieBreak,
		"step_delay", delay)

	srv := server.NewServer(addr, logger,
		server.WithRules(opts),
		server.WithStepDelay(delay),
	)

	ctx, cancel := signalContext()
	defer cancel()
	return srv.ListenAndServe(ctx)
}
