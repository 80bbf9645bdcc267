package kabu

import "strings"

// MaxHandSize is the largest number of cards a hand may hold.
const MaxHandSize = 3

// ThirdCardRule says whether a two-card hand must, may or may not draw.
type ThirdCardRule int

const (
	Mandatory ThirdCardRule = iota
	Optional
	Forbidden
)

// String returns the rule name.
func (r ThirdCardRule) String() string {
	switch r {
	case Mandatory:
		return "mandatory"
	case Optional:
		return "optional"
	case Forbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// RuleFor classifies a score: 0-3 must draw, 7-9 must stand, 4-6 may choose.
func RuleFor(score int) ThirdCardRule {
	switch {
	case score <= 3:
		return Mandatory
	case score >= 7:
		return Forbidden
	default:
		return Optional
	}
}

// Hand is a player tableau or dealer hand.
type Hand []Card

// Score returns the last digit of the sum of card values.
func (h Hand) Score() int {
	total := 0
	for _, c := range h {
		total += c.Value()
	}
	return total % 10
}

// Rule returns the third-card rule for the hand's current score.
func (h Hand) Rule() ThirdCardRule {
	return RuleFor(h.Score())
}

// Clone returns an independent copy of the hand.
func (h Hand) Clone() Hand {
	if h == nil {
		return nil
	}
	out := make(Hand, len(h))
	copy(out, h)
	return out
}

// String renders the hand as space-separated cards.
func (h Hand) String() string {
	parts := make([]string, len(h))
	for i, c := range h {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
