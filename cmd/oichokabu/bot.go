package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/lox/oichokabu/internal/client"
	"github.com/lox/oichokabu/internal/simulator"
)

// BotCmd plays rounds against a running server.
type BotCmd struct {
	URL       string `short:"u" default:"http://localhost:8080" help:"Server URL"`
	Rounds    int    `short:"n" default:"100" help:"Number of rounds to play"`
	Bet       int    `default:"10" help:"Stake per round"`
	Strategy  string `short:"s" default:"stand" enum:"stand,draw,threshold" help:"Optional third-card strategy (stand, draw, threshold)"`
	Threshold int    `default:"5" help:"Draw when the score is at or below this (threshold strategy)"`
}

func (c *BotCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	strategy, err := simulator.ParseStrategy(c.Strategy, c.Threshold)
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr, cfg)

	ctx, cancel := signalContext()
	defer cancel()

	conn, err := client.Dial(ctx, c.URL, logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	stats, err := client.NewPlayer(conn, strategy, c.Bet).Play(ctx, c.Rounds)
	if err != nil && !errors.Is(err, client.ErrBankrupt) {
		return err
	}
	fmt.Printf("Played %d rounds with %s: %d wins, %d pushes, %d losses, balance %d\n",
		stats.Rounds, strategy.Name(), stats.Wins, stats.Draws, stats.Losses, conn.State().Balance)
	return nil
}
