// Package kabu implements the card rules of Oicho-Kabu: the 48-card deck,
// hand scoring, the third-card rule and payout resolution.
//
// Everything in this package is a pure value or a pure function of its
// inputs. Round sequencing lives in internal/game.
package kabu

import "fmt"

const (
	// Suits is the number of suits (months) in the deck.
	Suits = 12
	// CopiesPerSuit is the number of cards sharing each suit.
	CopiesPerSuit = 4
	// DeckSize is the number of cards in a fresh deck.
	DeckSize = Suits * CopiesPerSuit
)

// Card is a single card. Its identity is the (Suit, Slot) pair.
type Card struct {
	Suit int // 1..12
	Slot int // 0..3, copy index within the suit
}

// NewCard creates a card.
func NewCard(suit, slot int) Card {
	return Card{Suit: suit, Slot: slot}
}

// Value returns the card's contribution to a hand score.
func (c Card) Value() int {
	return c.Suit
}

// Valid reports whether the card exists in a 48-card deck.
func (c Card) Valid() bool {
	return c.Suit >= 1 && c.Suit <= Suits && c.Slot >= 0 && c.Slot < CopiesPerSuit
}

// IsZero reports whether c is the zero Card, used for face-down views.
func (c Card) IsZero() bool {
	return c == Card{}
}

// String returns the card as "suit-slot", e.g. "9-2".
func (c Card) String() string {
	return fmt.Sprintf("%d-%d", c.Suit, c.Slot)
}
