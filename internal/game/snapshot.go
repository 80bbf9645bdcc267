package game

import (
	"slices"

	"github.com/lox/oichokabu/kabu"
)

// CardView is a card as the player may see it. A face-down view carries the
// zero Card so that hidden cards never leave the session.
type CardView struct {
	Card   kabu.Card
	FaceUp bool
}

// Snapshot is a read-only copy of a session for rendering.
type Snapshot struct {
	SessionID  string
	Round      int
	Generation uint64
	Phase      Phase
	DeckSize   int

	Player      []CardView
	PlayerScore int
	// PlayerRule is the third-card rule of the player's current score.
	PlayerRule kabu.ThirdCardRule

	Dealer           []CardView
	DealerScore      int // zero while any dealer card is face down
	DealerScoreKnown bool

	Bet     int
	Balance int
	Outcome kabu.Outcome
	Payout  int // amount credited at showdown

	Actions []Action

	// Set by Table: Seq orders its snapshots and DealerPending reports a
	// scheduled dealer step.
	Seq           uint64
	DealerPending bool
}

// State returns a snapshot of the session.
func (s *Session) State() Snapshot {
	snap := Snapshot{
		SessionID:   s.id,
		Round:       s.round,
		Generation:  s.generation,
		Phase:       s.phase,
		DeckSize:    s.deck.Remaining(),
		Player:      make([]CardView, len(s.player)),
		PlayerScore: s.player.Score(),
		PlayerRule:  s.player.Rule(),
		Dealer:      make([]CardView, len(s.dealer)),
		Bet:         s.bet,
		Balance:     s.balance,
		Outcome:     s.outcome,
		Payout:      s.payout,
		Actions:     s.AllowedActions(),
	}

	for i, c := range s.player {
		snap.Player[i] = CardView{Card: c, FaceUp: true}
	}

	known := true
	for i, c := range s.dealer {
		if i == 0 && !s.holeRevealed {
			known = false
			continue
		}
		snap.Dealer[i] = CardView{Card: c, FaceUp: true}
	}
	if known && len(s.dealer) > 0 {
		snap.DealerScore = s.dealer.Score()
		snap.DealerScoreKnown = true
	}
	return snap
}

// Allows reports whether action is in the snapshot's legal action set.
func (s Snapshot) Allows(action Action) bool {
	return slices.Contains(s.Actions, action)
}

// Stalled reports a dealer turn that cannot continue because the deck ran
// out. Only ActionReset is allowed.
func (s Snapshot) Stalled() bool {
	return s.Phase == PhaseDealerTurn && !s.Allows(ActionDealerStep)
}
