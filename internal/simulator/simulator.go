// Package simulator plays many Oicho-Kabu rounds without a clock to measure
// how a third-card strategy fares under a rule variant.
package simulator

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/oichokabu/internal/game"
	"github.com/lox/oichokabu/internal/gameid"
	"github.com/lox/oichokabu/internal/randutil"
	"github.com/lox/oichokabu/internal/statistics"
)

// Config holds configuration for running simulations
type Config struct {
	Rounds   int
	Workers  int
	Bet      int
	Seed     int64
	Strategy Strategy
	Options  game.Options
	Timeout  time.Duration // 0 for no limit
	Logger   *log.Logger
}

// Simulator runs Oicho-Kabu simulations
type Simulator struct {
	config Config
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	if config.Workers < 1 {
		config.Workers = 1
	}
	if config.Strategy == nil {
		config.Strategy = Stand{}
	}
	if config.Logger == nil {
		config.Logger = log.New(io.Discard)
	}
	return &Simulator{config: config}
}

func (s *Simulator) validate() error {
	if s.config.Rounds <= 0 {
		return fmt.Errorf("rounds must be positive, got %d", s.config.Rounds)
	}
	if err := s.config.Options.Validate(); err != nil {
		return fmt.Errorf("invalid rules: %w", err)
	}
	if s.config.Bet < s.config.Options.MinBet {
		return fmt.Errorf("bet %d is below the table minimum of %d", s.config.Bet, s.config.Options.MinBet)
	}
	if s.config.Options.MaxBet > 0 && s.config.Bet > s.config.Options.MaxBet {
		return fmt.Errorf("bet %d is above the table maximum of %d", s.config.Bet, s.config.Options.MaxBet)
	}
	return nil
}

// Run plays the configured number of rounds split across workers. Each
// worker owns an independent session seeded from the base seed, so a run is
// reproducible for a given seed and worker count.
func (s *Simulator) Run(ctx context.Context) (*statistics.Statistics, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	var (
		mu    sync.Mutex
		stats = &statistics.Statistics{}
	)

	g, ctx := errgroup.WithContext(ctx)
	perWorker, extra := s.config.Rounds/s.config.Workers, s.config.Rounds%s.config.Workers
	for w := range s.config.Workers {
		rounds := perWorker
		if w < extra {
			rounds++
		}
		if rounds == 0 {
			continue
		}
		seed := randutil.Derive(s.config.Seed, w)

		g.Go(func() error {
			local, err := s.runWorker(ctx, w, seed, rounds)
			if err != nil {
				return err
			}
			mu.Lock()
			stats.Merge(local)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}
	return stats, nil
}

func (s *Simulator) runWorker(ctx context.Context, worker int, seed int64, rounds int) (*statistics.Statistics, error) {
	logger := s.config.Logger.With("worker", worker, "seed", seed)

	// Every round risks one stake, so this balance can never run dry.
	opts := s.config.Options
	opts.StartingBalance = max(opts.StartingBalance, s.config.Bet*rounds)
	session := game.NewSession(randutil.New(seed),
		game.WithOptions(opts),
		game.WithIDGenerator(gameid.NewGenerator(randutil.New(^seed), nil)),
		game.WithLogger(logger),
	)

	stats := &statistics.Statistics{}
	for round := range rounds {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("worker %d stopped after %d rounds: %w", worker, round, err)
		}
		result, err := s.playRound(session)
		if err != nil {
			return nil, fmt.Errorf("worker %d round %d (seed %d): %w", worker, round+1, seed, err)
		}
		result.Seed = seed
		stats.Add(result)
	}
	logger.Debug("Worker finished", "rounds", rounds, "mean", stats.Mean())
	return stats, nil
}

// playRound plays one round with the configured strategy and returns to
// betting.
func (s *Simulator) playRound(session *game.Session) (statistics.RoundResult, error) {
	bet := s.config.Bet
	if err := session.PlaceBet(bet); err != nil {
		return statistics.RoundResult{}, err
	}
	if err := session.StartDeal(); err != nil {
		return statistics.RoundResult{}, err
	}
	for session.Phase() == game.PhaseDealing {
		if err := session.DrawNext(); err != nil {
			return statistics.RoundResult{}, err
		}
	}

	drew := session.MustTakeThirdCard() ||
		(session.CanTakeThirdCard() && s.config.Strategy.TakeThirdCard(session.PlayerHand()))
	if drew {
		if err := session.TakeThirdCard(); err != nil {
			return statistics.RoundResult{}, err
		}
	}
	if err := session.Finalize(); err != nil {
		return statistics.RoundResult{}, err
	}
	if err := session.RunDealer(); err != nil {
		return statistics.RoundResult{}, err
	}

	snap := session.State()
	result := statistics.RoundResult{
		Net:         float64(snap.Payout-bet) / float64(bet),
		Outcome:     snap.Outcome,
		PlayerScore: snap.PlayerScore,
		DealerScore: snap.DealerScore,
		PlayerDrew:  drew,
		DealerDrew:  len(snap.Dealer) == 3,
	}
	return result, session.NewRound()
}
