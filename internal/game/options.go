package game

import (
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/lox/oichokabu/internal/gameid"
	"github.com/lox/oichokabu/kabu"
)

// ThirdCardPolicy selects which third-card rules bind the player.
type ThirdCardPolicy int

const (
	// Strict enforces the Oicho-Kabu rules: a score of 0-3 must draw and a
	// score of 7-9 may not.
	Strict ThirdCardPolicy = iota
	// AlwaysOptional lets the player draw or stand on any two-card hand
	// (Sente-Kabu).
	AlwaysOptional
)

// String returns the policy name used in configuration files.
func (p ThirdCardPolicy) String() string {
	switch p {
	case Strict:
		return "strict"
	case AlwaysOptional:
		return "always_optional"
	default:
		return "unknown"
	}
}

// ParseThirdCardPolicy parses a policy name.
func ParseThirdCardPolicy(s string) (ThirdCardPolicy, error) {
	switch s {
	case "strict":
		return Strict, nil
	case "always_optional", "optional":
		return AlwaysOptional, nil
	}
	return 0, fmt.Errorf("unknown third card policy %q", s)
}

// DealerVisibility selects when the dealer's first card is turned face up.
type DealerVisibility int

const (
	// AtDealerTurn keeps the first dealer card hidden until the player
	// finalizes.
	AtDealerTurn DealerVisibility = iota
	// Immediate deals the first dealer card face up.
	Immediate
)

// String returns the visibility name used in configuration files.
func (v DealerVisibility) String() string {
	switch v {
	case AtDealerTurn:
		return "dealer_turn"
	case Immediate:
		return "immediate"
	default:
		return "unknown"
	}
}

// ParseDealerVisibility parses a visibility name.
func ParseDealerVisibility(s string) (DealerVisibility, error) {
	switch s {
	case "dealer_turn":
		return AtDealerTurn, nil
	case "immediate":
		return Immediate, nil
	}
	return 0, fmt.Errorf("unknown dealer visibility %q", s)
}

// ParseTieBreak parses a tie-break name.
func ParseTieBreak(s string) (kabu.TieBreak, error) {
	switch s {
	case "dealer_wins":
		return kabu.DealerWins, nil
	case "push":
		return kabu.Push, nil
	}
	return 0, fmt.Errorf("unknown tie break %q", s)
}

// MinReshuffleThreshold is the smallest reshuffle threshold that still
// leaves enough cards for a full round: three each for player and dealer.
const MinReshuffleThreshold = 2 * kabu.MaxHandSize

// Options holds the table rules for a session.
type Options struct {
	StartingBalance    int
	MinBet             int // smallest single placement
	MaxBet             int // largest total stake per round, 0 for no limit
	ReshuffleThreshold int // replace the deck below this many cards
	ThirdCardPolicy    ThirdCardPolicy
	TieBreak           kabu.TieBreak
	DealerVisibility   DealerVisibility
	AutoDrawMandatory  bool // draw a mandatory third card on finalize
}

// DefaultOptions returns strict Oicho-Kabu rules.
func DefaultOptions() Options {
	return Options{
		StartingBalance:    1000,
		MinBet:             10,
		ReshuffleThreshold: kabu.DeckSize / 2,
		ThirdCardPolicy:    Strict,
		TieBreak:           kabu.DealerWins,
		DealerVisibility:   AtDealerTurn,
	}
}

// SenteKabu returns the loose variant: the player may always draw, ties
// push and the dealer's first card is dealt face up.
func SenteKabu() Options {
	o := DefaultOptions()
	o.ThirdCardPolicy = AlwaysOptional
	o.TieBreak = kabu.Push
	o.DealerVisibility = Immediate
	return o
}

// Validate checks the options for consistency.
func (o Options) Validate() error {
	if o.StartingBalance < 0 {
		return fmt.Errorf("starting balance must not be negative: %d", o.StartingBalance)
	}
	if o.MinBet < 1 {
		return fmt.Errorf("minimum bet must be positive: %d", o.MinBet)
	}
	if o.MaxBet != 0 && o.MaxBet < o.MinBet {
		return fmt.Errorf("maximum bet %d is below minimum bet %d", o.MaxBet, o.MinBet)
	}
	if o.ReshuffleThreshold < MinReshuffleThreshold || o.ReshuffleThreshold > kabu.DeckSize {
		return fmt.Errorf("reshuffle threshold must be between %d and %d: %d", MinReshuffleThreshold, kabu.DeckSize, o.ReshuffleThreshold)
	}
	if o.ThirdCardPolicy != Strict && o.ThirdCardPolicy != AlwaysOptional {
		return fmt.Errorf("unknown third card policy %d", o.ThirdCardPolicy)
	}
	if o.TieBreak != kabu.DealerWins && o.TieBreak != kabu.Push {
		return fmt.Errorf("unknown tie break %d", o.TieBreak)
	}
	if o.DealerVisibility != AtDealerTurn && o.DealerVisibility != Immediate {
		return fmt.Errorf("unknown dealer visibility %d", o.DealerVisibility)
	}
	return nil
}

// Option configures a Session during creation.
type Option func(*sessionConfig)

type sessionConfig struct {
	opts   Options
	deck   *kabu.Deck
	logger *log.Logger
	id     string
	ids    *gameid.Generator
}

// WithOptions replaces the whole rule set.
func WithOptions(o Options) Option {
	return func(c *sessionConfig) {
		c.opts = o
	}
}

// WithStartingBalance sets the opening balance. Default is 1000.
func WithStartingBalance(balance int) Option {
	return func(c *sessionConfig) {
		c.opts.StartingBalance = balance
	}
}

// WithBetLimits sets the minimum single placement and the maximum total
// stake. A max of 0 removes the cap.
func WithBetLimits(minBet, maxBet int) Option {
	return func(c *sessionConfig) {
		c.opts.MinBet = minBet
		c.opts.MaxBet = maxBet
	}
}

// WithThirdCardPolicy selects strict or always-optional third cards.
func WithThirdCardPolicy(p ThirdCardPolicy) Option {
	return func(c *sessionConfig) {
		c.opts.ThirdCardPolicy = p
	}
}

// WithTieBreak selects how equal scores resolve.
func WithTieBreak(t kabu.TieBreak) Option {
	return func(c *sessionConfig) {
		c.opts.TieBreak = t
	}
}

// WithDealerVisibility selects when the dealer's first card is shown.
func WithDealerVisibility(v DealerVisibility) Option {
	return func(c *sessionConfig) {
		c.opts.DealerVisibility = v
	}
}

// WithAutoDrawMandatory makes Finalize draw a mandatory third card instead
// of rejecting the unsettled hand.
func WithAutoDrawMandatory(enabled bool) Option {
	return func(c *sessionConfig) {
		c.opts.AutoDrawMandatory = enabled
	}
}

// WithReshuffleThreshold sets the low-water mark for replacing the deck.
func WithReshuffleThreshold(n int) Option {
	return func(c *sessionConfig) {
		c.opts.ReshuffleThreshold = n
	}
}

// WithDeck sets the first deck. Replacement decks are still shuffled from
// the session's RNG.
func WithDeck(deck *kabu.Deck) Option {
	return func(c *sessionConfig) {
		c.deck = deck
	}
}

// WithLogger sets the session logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *sessionConfig) {
		c.logger = logger
	}
}

// WithIDGenerator draws the session identifier from g when WithID is not
// given.
func WithIDGenerator(g *gameid.Generator) Option {
	return func(c *sessionConfig) {
		c.ids = g
	}
}

// WithID sets the session identifier reported in snapshots and logs.
func WithID(id string) Option {
	return func(c *sessionConfig) {
		c.id = id
	}
}

func newSessionConfig(rng *rand.Rand, opts []Option) *sessionConfig {
	if rng == nil {
		panic("rng is required for session creation")
	}
	cfg := &sessionConfig{opts: DefaultOptions()}
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.opts.Validate(); err != nil {
		panic("invalid session options: " + err.Error())
	}
	if cfg.logger == nil {
		cfg.logger = log.New(io.Discard)
	}
	return cfg
}
