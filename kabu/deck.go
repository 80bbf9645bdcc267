package kabu

import (
	"errors"
	"math/rand/v2"
)

// ErrDeckEmpty is returned when drawing from an exhausted deck.
var ErrDeckEmpty = errors.New("kabu: deck is empty")

// Deck is an ordered pile of cards drawn from the head.
type Deck struct {
	cards []Card
	next  int
}

// NewDeck creates a full 48-card deck shuffled with rng.
func NewDeck(rng *rand.Rand) *Deck {
	if rng == nil {
		panic("rng is required for deck creation")
	}
	d := &Deck{cards: make([]Card, 0, DeckSize)}
	for suit := 1; suit <= Suits; suit++ {
		for slot := range CopiesPerSuit {
			d.cards = append(d.cards, NewCard(suit, slot))
		}
	}
	shuffle(d.cards, rng)
	return d
}

// NewOrderedDeck creates a deck that deals cards in exactly the given order.
// It is meant for scripted rounds and tests.
func NewOrderedDeck(cards ...Card) *Deck {
	d := &Deck{cards: make([]Card, len(cards))}
	copy(d.cards, cards)
	return d
}

// shuffle is an in-place Fisher-Yates shuffle.
func shuffle(cards []Card, rng *rand.Rand) {
	for i := len(cards) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}

// Draw removes and returns the top card.
func (d *Deck) Draw() (Card, error) {
	if d.next >= len(d.cards) {
		return Card{}, ErrDeckEmpty
	}
	c := d.cards[d.next]
	d.next++
	return c, nil
}

// Remaining returns the number of undealt cards.
func (d *Deck) Remaining() int {
	return len(d.cards) - d.next
}

// Cards returns a copy of the undealt cards in draw order.
func (d *Deck) Cards() []Card {
	out := make([]Card, d.Remaining())
	copy(out, d.cards[d.next:])
	return out
}
