package game

import (
	"fmt"
	"math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/lox/oichokabu/internal/gameid"
	"github.com/lox/oichokabu/kabu"
)

// Phase is the stage of the current round.
type Phase int

const (
	PhaseBetting Phase = iota
	PhaseDealing
	PhasePlayerDeciding
	PhaseDealerTurn
	PhaseShowdown
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseBetting:
		return "betting"
	case PhaseDealing:
		return "dealing"
	case PhasePlayerDeciding:
		return "player_deciding"
	case PhaseDealerTurn:
		return "dealer_turn"
	case PhaseShowdown:
		return "showdown"
	default:
		return "unknown"
	}
}

// Action names an entry point of the session.
type Action string

const (
	ActionPlaceBet      Action = "place_bet"
	ActionClearBet      Action = "clear_bet"
	ActionStartDeal     Action = "start_deal"
	ActionDrawNext      Action = "draw_next"
	ActionTakeThirdCard Action = "take_third_card"
	ActionFinalize      Action = "finalize"
	ActionDealerStep    Action = "dealer_step"
	ActionNewRound      Action = "new_round"
	ActionReset         Action = "reset"
)

// initialDeal is the target of each of the three opening draws.
var initialDeal = [3]seat{seatPlayer, seatDealer, seatPlayer}

type seat int

const (
	seatPlayer seat = iota
	seatDealer
)

func (s seat) String() string {
	if s == seatDealer {
		return "dealer"
	}
	return "player"
}

// Session is one player's seat at an Oicho-Kabu table: the deck, both hands,
// the stake and the running balance. A Session is owned by its caller and is
// not safe for concurrent use; Table adds locking and a dealer clock.
//
// Every action either applies completely or returns an error and leaves the
// session untouched.
type Session struct {
	id     string
	opts   Options
	rng    *rand.Rand
	logger *log.Logger

	deck   *kabu.Deck
	player kabu.Hand
	dealer kabu.Hand

	phase        Phase
	dealt        int // cards dealt in the opening sequence
	holeRevealed bool

	bet     int
	balance int
	outcome kabu.Outcome
	payout  int

	round      int
	generation uint64
}

// NewSession creates a session in the betting phase with a freshly shuffled
// deck. The RNG is required so that shuffles are reproducible from a seed.
func NewSession(rng *rand.Rand, opts ...Option) *Session {
	cfg := newSessionConfig(rng, opts)

	id := cfg.id
	switch {
	case id != "":
	case cfg.ids != nil:
		id = cfg.ids.Generate()
	default:
		id = gameid.Generate()
	}

	deck := cfg.deck
	if deck == nil {
		deck = kabu.NewDeck(rng)
	}

	return &Session{
		id:      id,
		opts:    cfg.opts,
		rng:     rng,
		logger:  cfg.logger.With("session", id),
		deck:    deck,
		phase:   PhaseBetting,
		balance: cfg.opts.StartingBalance,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Options returns the table rules.
func (s *Session) Options() Options { return s.opts }

// Phase returns the current phase.
func (s *Session) Phase() Phase { return s.phase }

// Balance returns the chips not currently staked.
func (s *Session) Balance() int { return s.balance }

// Bet returns the stake of the current round.
func (s *Session) Bet() int { return s.bet }

// Outcome returns the result of the round, or kabu.NoOutcome before showdown.
func (s *Session) Outcome() kabu.Outcome { return s.outcome }

// PlayerHand returns a copy of the player's tableau.
func (s *Session) PlayerHand() kabu.Hand { return s.player.Clone() }

// DealerHand returns a copy of the dealer's hand, hidden cards included.
func (s *Session) DealerHand() kabu.Hand { return s.dealer.Clone() }

// DeckRemaining returns the number of undealt cards.
func (s *Session) DeckRemaining() int { return s.deck.Remaining() }

// Round returns the number of deals started in this session.
func (s *Session) Round() int { return s.round }

// Generation identifies the current round for deferred work. It changes on
// every NewRound and Reset, so a dealer step scheduled for an earlier round
// can detect that it is stale.
func (s *Session) Generation() uint64 { return s.generation }

// PlaceBet moves amount from the balance to the stake. It may be called
// repeatedly during betting to build up the stake.
func (s *Session) PlaceBet(amount int) error {
	if s.phase != PhaseBetting {
		return wrongPhase(ActionPlaceBet, s.phase)
	}
	if amount <= 0 {
		return invalid(ActionPlaceBet, "amount must be positive, got %d", amount)
	}
	if amount < s.opts.MinBet {
		return invalid(ActionPlaceBet, "amount %d is below the minimum of %d", amount, s.opts.MinBet)
	}
	if s.opts.MaxBet > 0 && s.bet+amount > s.opts.MaxBet {
		return invalid(ActionPlaceBet, "stake %d would exceed the maximum of %d", s.bet+amount, s.opts.MaxBet)
	}
	if amount > s.balance {
		return fmt.Errorf("%w: bet %d with balance %d", ErrInsufficientFunds, amount, s.balance)
	}

	s.balance -= amount
	s.bet += amount
	s.logger.Debug("Bet placed", "amount", amount, "bet", s.bet, "balance", s.balance)
	return nil
}

// ClearBet returns the whole stake to the balance. Clearing an empty stake
// is a no-op.
func (s *Session) ClearBet() error {
	if s.phase != PhaseBetting {
		return wrongPhase(ActionClearBet, s.phase)
	}
	if s.bet == 0 {
		return nil
	}
	s.balance += s.bet
	s.logger.Debug("Bet cleared", "refunded", s.bet, "balance", s.balance)
	s.bet = 0
	return nil
}

// StartDeal closes betting and begins the opening deal.
func (s *Session) StartDeal() error {
	if s.phase != PhaseBetting {
		return wrongPhase(ActionStartDeal, s.phase)
	}
	if s.bet <= 0 {
		return invalid(ActionStartDeal, "no bet placed")
	}

	s.player = kabu.Hand{}
	s.dealer = kabu.Hand{}
	s.dealt = 0
	s.holeRevealed = s.opts.DealerVisibility == Immediate
	s.round++
	s.phase = PhaseDealing
	s.logger.Debug("Deal started", "round", s.round, "bet", s.bet, "deck", s.deck.Remaining())
	return nil
}

// DrawNext deals the next card of the opening sequence: player, dealer,
// player. The third card moves the round to the player's decision.
func (s *Session) DrawNext() error {
	if s.phase != PhaseDealing {
		return wrongPhase(ActionDrawNext, s.phase)
	}
	card, err := s.draw(ActionDrawNext)
	if err != nil {
		return err
	}

	target := initialDeal[s.dealt]
	switch target {
	case seatPlayer:
		s.player = append(s.player, card)
	case seatDealer:
		s.dealer = append(s.dealer, card)
	}
	s.dealt++
	s.logger.Debug("Card dealt", "to", target, "card", card, "dealt", s.dealt)

	if s.dealt == len(initialDeal) {
		s.phase = PhasePlayerDeciding
	}
	return nil
}

// CanTakeThirdCard reports whether TakeThirdCard would succeed, ignoring an
// empty deck.
func (s *Session) CanTakeThirdCard() bool {
	if s.phase != PhasePlayerDeciding || len(s.player) != 2 {
		return false
	}
	return s.opts.ThirdCardPolicy == AlwaysOptional || s.player.Rule() != kabu.Forbidden
}

// MustTakeThirdCard reports whether the player's hand cannot be finalized
// until it draws.
func (s *Session) MustTakeThirdCard() bool {
	return s.phase == PhasePlayerDeciding && !s.settled()
}

// TakeThirdCard draws a third card for the player.
func (s *Session) TakeThirdCard() error {
	if s.phase != PhasePlayerDeciding {
		return wrongPhase(ActionTakeThirdCard, s.phase)
	}
	if len(s.player) != 2 {
		return invalid(ActionTakeThirdCard, "hand already has %d cards", len(s.player))
	}
	if s.opts.ThirdCardPolicy == Strict && s.player.Rule() == kabu.Forbidden {
		return invalid(ActionTakeThirdCard, "score %d must stand", s.player.Score())
	}
	card, err := s.draw(ActionTakeThirdCard)
	if err != nil {
		return err
	}
	s.player = append(s.player, card)
	s.logger.Debug("Third card taken", "card", card, "score", s.player.Score())
	return nil
}

// settled reports whether the player's hand may be finalized.
func (s *Session) settled() bool {
	if s.opts.ThirdCardPolicy == AlwaysOptional {
		return true
	}
	return len(s.player) == kabu.MaxHandSize || s.player.Rule() != kabu.Mandatory
}

// Finalize locks the player's hand, reveals the dealer's first card and
// hands play to the dealer.
func (s *Session) Finalize() error {
	if s.phase != PhasePlayerDeciding {
		return wrongPhase(ActionFinalize, s.phase)
	}
	if !s.settled() {
		if !s.opts.AutoDrawMandatory {
			return invalid(ActionFinalize, "score %d must take a third card", s.player.Score())
		}
		card, err := s.draw(ActionFinalize)
		if err != nil {
			return err
		}
		s.player = append(s.player, card)
		s.logger.Debug("Mandatory third card drawn", "card", card, "score", s.player.Score())
	}

	s.holeRevealed = true
	s.phase = PhaseDealerTurn
	s.logger.Debug("Player finalized", "score", s.player.Score(), "cards", len(s.player))
	return nil
}

// dealerDraws reports whether the dealer takes another card.
func (s *Session) dealerDraws() bool {
	switch len(s.dealer) {
	case 0, 1:
		return true
	case 2:
		return s.dealer.Rule() != kabu.Forbidden && s.dealer.Score() <= 5
	default:
		return false
	}
}

// DealerStep performs one automatic dealer move: drawing a card when the
// dealer's rule calls for one, or otherwise settling the round. Callers tick
// it on a timer or loop over it until the phase leaves DealerTurn.
func (s *Session) DealerStep() error {
	if s.phase != PhaseDealerTurn {
		return wrongPhase(ActionDealerStep, s.phase)
	}
	if s.dealerDraws() {
		card, err := s.draw(ActionDealerStep)
		if err != nil {
			return err
		}
		s.dealer = append(s.dealer, card)
		s.logger.Debug("Dealer drew", "card", card, "score", s.dealer.Score())
		return nil
	}

	s.outcome, s.payout = kabu.Resolve(s.player, s.dealer, s.bet, s.opts.TieBreak)
	s.balance += s.payout
	s.phase = PhaseShowdown
	s.logger.Info("Round settled",
		"round", s.round,
		"player", s.player.Score(),
		"dealer", s.dealer.Score(),
		"outcome", s.outcome,
		"payout", s.payout,
		"balance", s.balance)
	return nil
}

// RunDealer ticks DealerStep until the round reaches showdown.
func (s *Session) RunDealer() error {
	for s.phase == PhaseDealerTurn {
		if err := s.DealerStep(); err != nil {
			return err
		}
	}
	return nil
}

// NewRound clears the finished round and reopens betting. The deck is
// replaced with a fresh shuffled one when it has fallen below the reshuffle
// threshold.
func (s *Session) NewRound() error {
	if s.phase != PhaseShowdown {
		return wrongPhase(ActionNewRound, s.phase)
	}
	if s.deck.Remaining() < s.opts.ReshuffleThreshold {
		s.logger.Debug("Reshuffling", "remaining", s.deck.Remaining(), "threshold", s.opts.ReshuffleThreshold)
		s.deck = kabu.NewDeck(s.rng)
	}
	s.clearRound()
	return nil
}

// Reset abandons the current round from any phase: an unsettled stake is
// refunded, the deck is replaced and betting reopens. Pending dealer steps
// become stale.
func (s *Session) Reset() error {
	if s.phase != PhaseShowdown {
		s.balance += s.bet
	}
	s.deck = kabu.NewDeck(s.rng)
	s.clearRound()
	s.logger.Debug("Session reset", "balance", s.balance)
	return nil
}

func (s *Session) clearRound() {
	s.player = nil
	s.dealer = nil
	s.dealt = 0
	s.holeRevealed = false
	s.bet = 0
	s.outcome = kabu.NoOutcome
	s.payout = 0
	s.phase = PhaseBetting
	s.generation++
}

func (s *Session) draw(action Action) (kabu.Card, error) {
	card, err := s.deck.Draw()
	if err != nil {
		s.logger.Warn("Draw from empty deck", "action", action)
		return kabu.Card{}, fmt.Errorf("%w: %s (%w)", ErrDeckExhausted, action, err)
	}
	return card, nil
}

// AllowedActions lists the actions that are legal right now.
func (s *Session) AllowedActions() []Action {
	actions := make([]Action, 0, 4)
	switch s.phase {
	case PhaseBetting:
		if s.balance >= s.opts.MinBet && (s.opts.MaxBet == 0 || s.bet+s.opts.MinBet <= s.opts.MaxBet) {
			actions = append(actions, ActionPlaceBet)
		}
		if s.bet > 0 {
			actions = append(actions, ActionClearBet, ActionStartDeal)
		}
	case PhaseDealing:
		if s.deck.Remaining() > 0 {
			actions = append(actions, ActionDrawNext)
		}
	case PhasePlayerDeciding:
		if s.CanTakeThirdCard() && s.deck.Remaining() > 0 {
			actions = append(actions, ActionTakeThirdCard)
		}
		if s.settled() || (s.opts.AutoDrawMandatory && s.deck.Remaining() > 0) {
			actions = append(actions, ActionFinalize)
		}
	case PhaseDealerTurn:
		if !s.dealerDraws() || s.deck.Remaining() > 0 {
			actions = append(actions, ActionDealerStep)
		}
	case PhaseShowdown:
		actions = append(actions, ActionNewRound)
	}
	return append(actions, ActionReset)
}

// Apply dispatches a named action. Amount is used only by ActionPlaceBet.
func (s *Session) Apply(action Action, amount int) error {
	switch action {
	case ActionPlaceBet:
		return s.PlaceBet(amount)
	case ActionClearBet:
		return s.ClearBet()
	case ActionStartDeal:
		return s.StartDeal()
	case ActionDrawNext:
		return s.DrawNext()
	case ActionTakeThirdCard:
		return s.TakeThirdCard()
	case ActionFinalize:
		return s.Finalize()
	case ActionDealerStep:
		return s.DealerStep()
	case ActionNewRound:
		return s.NewRound()
	case ActionReset:
		return s.Reset()
	default:
		return fmt.Errorf("%w: unknown action %q", ErrInvalidAction, action)
	}
}
