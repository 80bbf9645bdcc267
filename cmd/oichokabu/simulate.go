package main

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/lox/oichokabu/internal/fileutil"
	"github.com/lox/oichokabu/internal/simulator"
)

// SimulateCmd measures a third-card strategy over many rounds.
type SimulateCmd struct {
	Rounds    int           `short:"n" default:"100000" help:"Number of rounds to play"`
	Workers   int           `short:"w" help:"Parallel workers (default: number of CPUs)"`
	Bet       int           `default:"10" help:"Stake per round"`
	Strategy  string        `short:"s" default:"stand" enum:"stand,draw,threshold" help:"Optional third-card strategy (stand, draw, threshold)"`
	Threshold int           `default:"5" help:"Draw when the score is at or below this (threshold strategy)"`
	Seed      *int64        `help:"Deterministic RNG seed (optional)"`
	Timeout   time.Duration `default:"0s" help:"Abort after this long (0 for no limit)"`
	Output    string        `short:"o" help:"Write a JSON report to this file"`
}

func (c *SimulateCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	opts, err := g.rules(cfg)
	if err != nil {
		return err
	}
	strategy, err := simulator.ParseStrategy(c.Strategy, c.Threshold)
	if err != nil {
		return err
	}

	seed := time.Now().UnixNano()
	if c.Seed != nil {
		seed = *c.Seed
	}
	workers := c.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	logger := newLogger(os.Stderr, cfg)
	sim := simulator.New(simulator.Config{
		Rounds:   c.Rounds,
		Workers:  workers,
		Bet:      c.Bet,
		Seed:     seed,
		Strategy: strategy,
		Options:  opts,
		Timeout:  c.Timeout,
		Logger:   logger,
	})

	ctx, cancel := signalContext()
	defer cancel()

	logger.Info("Simulating", "rounds", c.Rounds, "workers", workers, "strategy", strategy.Name(), "seed", seed)
	start := time.Now()
	stats, err := sim.Run(ctx)
	if err != nil {
		return err
	}
	report := sim.NewReport(stats, time.Since(start))

	low, high := stats.ConfidenceInterval95()
	fmt.Printf("Strategy:   %s (%s, ties %s)\n", report.Strategy, report.Rules.ThirdCardPolicy, report.Rules.TieBreak)
	fmt.Printf("Rounds:     %d in %s\n", report.Rounds, report.Duration)
	fmt.Printf("Result:     %+.4f stakes/round (95%% CI %+.4f to %+.4f)\n", report.Mean, low, high)
	fmt.Printf("Outcomes:   %d wins, %d pushes, %d losses (win rate %.1f%%)\n",
		report.Wins, report.Draws, report.Losses, report.WinRate*100)
	fmt.Printf("Third card: %d rounds at %+.4f, stood %d rounds at %+.4f\n",
		report.DrawRounds, report.DrawMean, report.StandRounds, report.StandMean)
	for _, line := range report.ByScore {
		fmt.Printf("  score %d: %7d rounds  %+.4f\n", line.Score, line.Rounds, line.Mean)
	}

	if c.Output != "" {
		if err := fileutil.WriteJSONAtomic(c.Output, report); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		logger.Info("Report written", "path", c.Output)
	}
	return nil
}
