package client

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/lox/oichokabu/internal/game"
	"github.com/lox/oichokabu/internal/protocol"
	"github.com/lox/oichokabu/internal/simulator"
	"github.com/lox/oichokabu/internal/statistics"
	"github.com/lox/oichokabu/kabu"
)

// ErrBankrupt is returned when the balance cannot cover another stake.
var ErrBankrupt = errors.New("balance below stake")

// Player plays rounds against a server table with a drawing strategy.
type Player struct {
	client   *Client
	strategy simulator.Strategy
	bet      int
}

// NewPlayer creates a player staking bet each round.
func NewPlayer(c *Client, strategy simulator.Strategy, bet int) *Player {
	return &Player{client: c, strategy: strategy, bet: bet}
}

// Play plays up to rounds rounds. It stops early, with the rounds played so
// far, when the balance runs out.
func (p *Player) Play(ctx context.Context, rounds int) (*statistics.Statistics, error) {
	stats := &statistics.Statistics{}
	for round := range rounds {
		result, err := p.playRound(ctx)
		if errors.Is(err, ErrBankrupt) {
			p.client.logger.Warn("Stopping early", "rounds", round, "balance", p.client.State().Balance)
			return stats, err
		}
		if err != nil {
			return stats, fmt.Errorf("round %d: %w", round+1, err)
		}
		stats.Add(result)
		p.client.logger.Info("Round finished",
			"outcome", result.Outcome,
			"player", result.PlayerScore,
			"dealer", result.DealerScore,
			"balance", p.client.State().Balance)
	}
	return stats, nil
}

func (p *Player) playRound(ctx context.Context) (statistics.RoundResult, error) {
	c := p.client
	state, err := c.WaitForPhase(ctx, game.PhaseBetting)
	if err != nil {
		return statistics.RoundResult{}, err
	}
	if state.Balance < p.bet {
		return statistics.RoundResult{}, ErrBankrupt
	}

	for _, step := range []struct {
		action game.Action
		amount int
	}{
		{game.ActionPlaceBet, p.bet},
		{game.ActionStartDeal, 0},
		{game.ActionDrawNext, 0},
		{game.ActionDrawNext, 0},
		{game.ActionDrawNext, 0},
	} {
		if state, err = c.Do(ctx, step.action, step.amount); err != nil {
			return statistics.RoundResult{}, err
		}
	}

	canTake := slices.Contains(state.Actions, string(game.ActionTakeThirdCard))
	canStand := slices.Contains(state.Actions, string(game.ActionFinalize))
	if canTake && (!canStand || p.strategy.TakeThirdCard(hand(state.Player))) {
		if _, err = c.Do(ctx, game.ActionTakeThirdCard, 0); err != nil {
			return statistics.RoundResult{}, err
		}
	}
	if _, err = c.Do(ctx, game.ActionFinalize, 0); err != nil {
		return statistics.RoundResult{}, err
	}
	if state, err = c.WaitForPhase(ctx, game.PhaseShowdown); err != nil {
		return statistics.RoundResult{}, err
	}

	result := statistics.RoundResult{
		Net:         float64(state.Payout-state.Bet) / float64(state.Bet),
		Outcome:     outcome(state.Outcome),
		PlayerScore: state.PlayerScore,
		PlayerDrew:  len(state.Player) == kabu.MaxHandSize,
		DealerDrew:  len(state.Dealer) == kabu.MaxHandSize,
	}
	if state.DealerScore != nil {
		result.DealerScore = *state.DealerScore
	}

	_, err = c.Do(ctx, game.ActionNewRound, 0)
	return result, err
}

// hand rebuilds a scoring hand from face-up cards.
func hand(cards []protocol.Card) kabu.Hand {
	h := make(kabu.Hand, 0, len(cards))
	for _, c := range cards {
		if c.FaceUp {
			h = append(h, kabu.NewCard(c.Suit, 0))
		}
	}
	return h
}

func outcome(s string) kabu.Outcome {
	switch s {
	case kabu.Win.String():
		return kabu.Win
	case kabu.Draw.String():
		return kabu.Draw
	case kabu.Loss.String():
		return kabu.Loss
	}
	return kabu.NoOutcome
}
