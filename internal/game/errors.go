package game

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAction is returned when an action is not legal in the current
	// phase or with the given parameters. The session is left unchanged.
	ErrInvalidAction = errors.New("invalid action")

	// ErrInsufficientFunds is returned when a bet exceeds the balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrDeckExhausted is returned when a draw finds the deck empty.
	ErrDeckExhausted = fmt.Errorf("%w: deck exhausted", ErrInvalidAction)
)

func invalid(action Action, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidAction, action, fmt.Sprintf(format, args...))
}

func wrongPhase(action Action, phase Phase) error {
	return invalid(action, "not allowed during %s", phase)
}
