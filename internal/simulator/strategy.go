package simulator

import (
	"fmt"

	"github.com/lox/oichokabu/kabu"
)

// Strategy decides whether to take an optional third card.
type Strategy interface {
	Name() string
	TakeThirdCard(hand kabu.Hand) bool
}

// Stand never takes an optional card.
type Stand struct{}

func (Stand) Name() string                 { return "stand" }
func (Stand) TakeThirdCard(kabu.Hand) bool { return false }

// AlwaysDraw takes every card it is allowed to.
type AlwaysDraw struct{}

func (AlwaysDraw) Name() string                 { return "draw" }
func (AlwaysDraw) TakeThirdCard(kabu.Hand) bool { return true }

// Threshold draws while the score is at or below its value.
type Threshold int

func (t Threshold) Name() string { return fmt.Sprintf("threshold-%d", int(t)) }

func (t Threshold) TakeThirdCard(hand kabu.Hand) bool {
	return hand.Score() <= int(t)
}

// ParseStrategy resolves a strategy by name. Threshold is used only by the
// "threshold" strategy.
func ParseStrategy(name string, threshold int) (Strategy, error) {
	switch name {
	case "stand":
		return Stand{}, nil
	case "draw":
		return AlwaysDraw{}, nil
	case "threshold":
		if threshold < 0 || threshold > 9 {
			return nil, fmt.Errorf("threshold must be between 0 and 9, got %d", threshold)
		}
		return Threshold(threshold), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
}
