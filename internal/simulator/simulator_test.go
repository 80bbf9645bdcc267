package simulator

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/oichokabu/internal/game"
	"github.com/lox/oichokabu/kabu"
)

func testConfig(rounds, workers int, strategy Strategy) Config {
	return Config{
		Rounds:   rounds,
		Workers:  workers,
		Bet:      10,
		Seed:     42,
		Strategy: strategy,
		Options:  game.DefaultOptions(),
		Logger:   log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel}),
	}
}

func TestNewDefaults(t *testing.T) {
	t.Parallel()

	sim := New(Config{Rounds: 10})
	assert.Equal(t, 1, sim.config.Workers)
	assert.Equal(t, "stand", sim.config.Strategy.Name())
	assert.NotNil(t, sim.config.Logger)
}

func TestRunAccountsForEveryRound(t *testing.T) {
	t.Parallel()

	for _, strategy := range []Strategy{Stand{}, AlwaysDraw{}, Threshold(4)} {
		t.Run(strategy.Name(), func(t *testing.T) {
			t.Parallel()

			stats, err := New(testConfig(500, 3, strategy)).Run(context.Background())
			require.NoError(t, err)

			assert.Equal(t, 500, stats.Rounds)
			assert.Equal(t, stats.Rounds, stats.Wins+stats.Draws+stats.Losses)
			assert.Equal(t, stats.Rounds, stats.DrawRounds+stats.StandRounds)
			assert.True(t, stats.IsLedgerBalanced())
			assert.GreaterOrEqual(t, stats.Mean(), -1.0)
			assert.LessOrEqual(t, stats.Mean(), 1.0)
		})
	}
}

func TestRunDealerWinsTiesHasNoPushes(t *testing.T) {
	t.Parallel()

	stats, err := New(testConfig(300, 2, Stand{})).Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Draws)
}

func TestRunStandOnlyDrawsMandatoryCards(t *testing.T) {
	t.Parallel()

	stats, err := New(testConfig(400, 2, Stand{})).Run(context.Background())
	require.NoError(t, err)

	// Scores of 0-3 still force a draw under strict rules.
	assert.Positive(t, stats.DrawRounds)
	assert.Positive(t, stats.StandRounds)
}

func TestRunSenteKabuStandNeverDraws(t *testing.T) {
	t.Parallel()

	cfg := testConfig(300, 2, Stand{})
	cfg.Options = game.SenteKabu()
	stats, err := New(cfg).Run(context.Background())
	require.NoError(t, err)

	assert.Zero(t, stats.DrawRounds)
	assert.Equal(t, 300, stats.StandRounds)
}

func TestRunIsReproducible(t *testing.T) {
	t.Parallel()

	a, err := New(testConfig(200, 4, Threshold(5))).Run(context.Background())
	require.NoError(t, err)
	b, err := New(testConfig(200, 4, Threshold(5))).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, a.Wins, b.Wins)
	assert.Equal(t, a.Losses, b.Losses)
	assert.Equal(t, a.ByScore, b.ByScore)
}

func TestRunRejectsBadConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"no rounds", func(c *Config) { c.Rounds = 0 }},
		{"bet below minimum", func(c *Config) { c.Bet = 5 }},
		{"bet above maximum", func(c *Config) { c.Options.MaxBet = 50; c.Bet = 100 }},
		{"threshold too low", func(c *Config) { c.Options.ReshuffleThreshold = 3 }},
		{"bad rules", func(c *Config) { c.Options.MinBet = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := testConfig(10, 1, Stand{})
			tt.modify(&cfg)
			_, err := New(cfg).Run(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestRunHonoursCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(testConfig(100, 2, Stand{})).Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseStrategy(t *testing.T) {
	t.Parallel()

	s, err := ParseStrategy("stand", 0)
	require.NoError(t, err)
	assert.Equal(t, Stand{}, s)

	s, err = ParseStrategy("draw", 0)
	require.NoError(t, err)
	assert.Equal(t, AlwaysDraw{}, s)

	s, err = ParseStrategy("threshold", 5)
	require.NoError(t, err)
	assert.Equal(t, "threshold-5", s.Name())

	_, err = ParseStrategy("threshold", 10)
	assert.Error(t, err)
	_, err = ParseStrategy("martingale", 0)
	assert.Error(t, err)
}

func TestThresholdStrategy(t *testing.T) {
	t.Parallel()

	four := kabu.Hand{kabu.NewCard(1, 1), kabu.NewCard(3, 1)}
	six := kabu.Hand{kabu.NewCard(2, 1), kabu.NewCard(4, 1)}

	assert.True(t, Threshold(5).TakeThirdCard(four))
	assert.False(t, Threshold(5).TakeThirdCard(six))
}

func TestNewReport(t *testing.T) {
	t.Parallel()

	sim := New(testConfig(200, 2, AlwaysDraw{}))
	stats, err := sim.Run(context.Background())
	require.NoError(t, err)

	report := sim.NewReport(stats, 1500*time.Millisecond)
	assert.Equal(t, "draw", report.Strategy)
	assert.Equal(t, 200, report.Rounds)
	assert.Equal(t, "1.5s", report.Duration)
	assert.Equal(t, "strict", report.Rules.ThirdCardPolicy)
	assert.Equal(t, "dealer_wins", report.Rules.TieBreak)
	assert.InDelta(t, stats.Mean(), report.Mean, 1e-9)

	total := 0
	for _, line := range report.ByScore {
		total += line.Rounds
	}
	assert.Equal(t, 200, total)
}
