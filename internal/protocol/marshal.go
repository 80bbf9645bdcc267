package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lox/oichokabu/internal/game"
	"github.com/lox/oichokabu/kabu"
)

// ErrUnknownMessageType is returned when a frame's type is not recognised.
var ErrUnknownMessageType = errors.New("unknown message type")

// Marshal serializes a message to JSON.
func Marshal(v any) ([]byte, error) {
	switch v.(type) {
	case *Action, *State, *Error:
		return json.Marshal(v)
	default:
		return nil, ErrUnknownMessageType
	}
}

// DecodeAction parses a client frame. The only client message is an action.
func DecodeAction(data []byte) (Action, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Action{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Type != TypeAction {
		return Action{}, fmt.Errorf("%w: %q", ErrUnknownMessageType, env.Type)
	}
	var msg Action
	if err := json.Unmarshal(data, &msg); err != nil {
		return Action{}, fmt.Errorf("decode action: %w", err)
	}
	if msg.Action == "" {
		return Action{}, errors.New("action is required")
	}
	return msg, nil
}

// NewState converts a snapshot into a state message.
func NewState(snap game.Snapshot) *State {
	view := TableView{
		SessionID:     snap.SessionID,
		Round:         snap.Round,
		Phase:         snap.Phase.String(),
		DeckSize:      snap.DeckSize,
		Player:        cards(snap.Player),
		PlayerScore:   snap.PlayerScore,
		Dealer:        cards(snap.Dealer),
		Bet:           snap.Bet,
		Balance:       snap.Balance,
		Payout:        snap.Payout,
		Actions:       make([]string, 0, len(snap.Actions)+1),
		DealerPending: snap.DealerPending,
		Stalled:       snap.Stalled(),
	}
	if len(snap.Player) > 0 {
		view.PlayerRule = snap.PlayerRule.String()
	}
	if snap.DealerScoreKnown {
		score := snap.DealerScore
		view.DealerScore = &score
	}
	if snap.Outcome != kabu.NoOutcome {
		view.Outcome = snap.Outcome.String()
	}
	for _, a := range snap.Actions {
		if a == game.ActionDealerStep {
			continue
		}
		view.Actions = append(view.Actions, string(a))
	}
	view.Actions = append(view.Actions, ActionState)
	return &State{Type: TypeState, State: view}
}

func cards(views []game.CardView) []Card {
	out := make([]Card, len(views))
	for i, v := range views {
		if v.FaceUp {
			out[i] = Card{ID: v.Card.String(), Suit: v.Card.Suit, FaceUp: true}
		}
	}
	return out
}

// NewError maps an action error onto an error message.
func NewError(err error) *Error {
	code := CodeInternal
	switch {
	case errors.Is(err, game.ErrInsufficientFunds):
		code = CodeInsufficientFunds
	case errors.Is(err, game.ErrDeckExhausted):
		code = CodeDeckExhausted
	case errors.Is(err, game.ErrInvalidAction), errors.Is(err, game.ErrTableClosed):
		code = CodeInvalidAction
	}
	return &Error{Type: TypeError, Code: code, Message: err.Error()}
}

// NewBadRequest reports a frame that could not be decoded.
func NewBadRequest(err error) *Error {
	return &Error{Type: TypeError, Code: CodeBadRequest, Message: err.Error()}
}
