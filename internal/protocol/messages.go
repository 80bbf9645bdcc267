// Package protocol defines the JSON messages exchanged over the websocket
// between a player client and the server.
package protocol

// Message types
const (
	// Client -> Server
	TypeAction = "action"

	// Server -> Client
	TypeState = "state"
	TypeError = "error"
)

// ActionState asks for the current state without changing it.
const ActionState = "state"

// Error codes
const (
	CodeInvalidAction     = "invalid_action"
	CodeInsufficientFunds = "insufficient_funds"
	CodeDeckExhausted     = "deck_exhausted"
	CodeBadRequest        = "bad_request"
	CodeInternal          = "internal"
)

// Envelope is decoded first to find out which message follows.
type Envelope struct {
	Type string `json:"type"`
}

// Client -> Server Messages

// Action is a player action. Amount is only read for place_bet.
type Action struct {
	Type   string `json:"type"`
	Action string `json:"action"`
	Amount int    `json:"amount,omitempty"`
}

// Server -> Client Messages

// State carries a table snapshot after every change.
type State struct {
	Type  string    `json:"type"`
	State TableView `json:"state"`
}

// TableView is the player's view of the table.
type TableView struct {
	SessionID     string   `json:"session_id"`
	Round         int      `json:"round"`
	Phase         string   `json:"phase"`
	DeckSize      int      `json:"deck_size"`
	Player        []Card   `json:"player"`
	PlayerScore   int      `json:"player_score"`
	PlayerRule    string   `json:"player_rule,omitempty"`
	Dealer        []Card   `json:"dealer"`
	DealerScore   *int     `json:"dealer_score,omitempty"` // absent while a dealer card is hidden
	Bet           int      `json:"bet"`
	Balance       int      `json:"balance"`
	Outcome       string   `json:"outcome,omitempty"`
	Payout        int      `json:"payout,omitempty"`
	Actions       []string `json:"actions"`
	DealerPending bool     `json:"dealer_pending,omitempty"`
	Stalled       bool     `json:"stalled,omitempty"` // deck ran out during the dealer's turn
}

// Card is a card on the wire. ID is "suit-slot", e.g. "9-2". Face-down
// cards carry neither field.
type Card struct {
	ID     string `json:"id,omitempty"`
	Suit   int    `json:"suit,omitempty"`
	FaceUp bool   `json:"face_up"`
}

// Error reports a rejected message.
type Error struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
