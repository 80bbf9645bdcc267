package game

import (
	"github.com/lox/oichokabu/internal/randutil"
	"github.com/lox/oichokabu/kabu"
)

// ScriptedDeck builds a deck that deals the given suits in order, assigning
// slots so that no (suit, slot) pair repeats.
func ScriptedDeck(suits ...int) *kabu.Deck {
	used := make(map[int]int)
	cards := make([]kabu.Card, len(suits))
	for i, suit := range suits {
		cards[i] = kabu.NewCard(suit, used[suit]%kabu.CopiesPerSuit)
		used[suit]++
	}
	return kabu.NewOrderedDeck(cards...)
}

// NewTestSession returns a session dealing the scripted suits, seeded so
// that replacement decks are reproducible.
func NewTestSession(suits []int, opts ...Option) *Session {
	opts = append([]Option{WithID("test"), WithDeck(ScriptedDeck(suits...))}, opts...)
	return NewSession(randutil.New(1), opts...)
}
