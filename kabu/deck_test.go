package kabu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/oichokabu/internal/randutil"
)

func TestNewDeckComposition(t *testing.T) {
	t.Parallel()

	for seed := range int64(20) {
		d := NewDeck(randutil.New(seed))
		require.Equal(t, DeckSize, d.Remaining())

		perSuit := make(map[int]int)
		seen := make(map[Card]bool)
		for _, c := range d.Cards() {
			require.True(t, c.Valid(), "invalid card %s", c)
			require.False(t, seen[c], "duplicate card %s", c)
			seen[c] = true
			perSuit[c.Value()]++
		}
		for suit := 1; suit <= Suits; suit++ {
			assert.Equal(t, CopiesPerSuit, perSuit[suit], "suit %d", suit)
		}
	}
}

func TestNewDeckRequiresRNG(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { NewDeck(nil) })
}

func TestNewDeckIsReproducible(t *testing.T) {
	t.Parallel()

	a := NewDeck(randutil.New(7)).Cards()
	b := NewDeck(randutil.New(7)).Cards()
	c := NewDeck(randutil.New(8)).Cards()

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestShufflePositionsAreUniform(t *testing.T) {
	t.Parallel()

	const trials = DeckSize * 200
	rng := randutil.New(12345)

	// counts[cardIndex][position]
	var counts [DeckSize][DeckSize]int
	index := func(c Card) int { return (c.Suit-1)*CopiesPerSuit + c.Slot }

	for range trials {
		for pos, c := range NewDeck(rng).Cards() {
			counts[index(c)][pos]++
		}
	}

	// Expected 200 per cell with a standard deviation near 14.
	expected := trials / DeckSize
	for card := range DeckSize {
		for pos := range DeckSize {
			got := counts[card][pos]
			if got < expected-90 || got > expected+90 {
				t.Fatalf("card %d appeared at position %d %d times, expected about %d", card, pos, got, expected)
			}
		}
	}
}

func TestDeckDraw(t *testing.T) {
	t.Parallel()

	d := NewOrderedDeck(NewCard(9, 0), NewCard(5, 1))

	c, err := d.Draw()
	require.NoError(t, err)
	assert.Equal(t, NewCard(9, 0), c)
	assert.Equal(t, 1, d.Remaining())

	c, err = d.Draw()
	require.NoError(t, err)
	assert.Equal(t, NewCard(5, 1), c)

	_, err = d.Draw()
	assert.True(t, errors.Is(err, ErrDeckEmpty))
	assert.Equal(t, 0, d.Remaining())
}

func TestOrderedDeckCopiesInput(t *testing.T) {
	t.Parallel()

	cards := []Card{NewCard(1, 0), NewCard(2, 0)}
	d := NewOrderedDeck(cards...)
	cards[0] = NewCard(12, 3)

	c, err := d.Draw()
	require.NoError(t, err)
	assert.Equal(t, NewCard(1, 0), c)
}
