package kabu

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lox/oichokabu/internal/randutil"
)

func TestRuleFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		score int
		want  ThirdCardRule
	}{
		{0, Mandatory},
		{1, Mandatory},
		{3, Mandatory},
		{4, Optional},
		{5, Optional},
		{6, Optional},
		{7, Forbidden},
		{8, Forbidden},
		{9, Forbidden},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RuleFor(tt.score), "score %d", tt.score)
	}
}

func TestHandScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		hand Hand
		want int
	}{
		{"empty", nil, 0},
		{"single", Hand{NewCard(7, 0)}, 7},
		{"ten wraps to zero", Hand{NewCard(4, 0), NewCard(6, 0)}, 0},
		{"twelves", Hand{NewCard(12, 0), NewCard(12, 1)}, 4},
		{"kabu", Hand{NewCard(9, 0), NewCard(9, 1), NewCard(9, 2)}, 7},
		{"fives", Hand{NewCard(5, 0), NewCard(5, 1), NewCard(5, 2)}, 5},
		{"max sum", Hand{NewCard(12, 0), NewCard(12, 1), NewCard(12, 2)}, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.hand.Score())
		})
	}

	assert.Equal(t, Mandatory, Hand(nil).Rule())
}

func TestHandScoreIsOrderInvariant(t *testing.T) {
	t.Parallel()

	rng := randutil.New(99)
	for range 500 {
		size := rng.IntN(MaxHandSize + 1)
		cards := NewDeck(rng).Cards()[:size]
		hand := Hand(cards)

		sum := 0
		for _, c := range hand {
			sum += c.Value()
		}
		want := sum % 10
		assert.Equal(t, want, hand.Score())

		reversed := hand.Clone()
		slices.Reverse(reversed)
		assert.Equal(t, want, reversed.Score())

		rotated := append(hand.Clone()[min(1, size):], hand[:min(1, size)]...)
		assert.Equal(t, want, rotated.Score())
	}
}

func TestHandCloneIsIndependent(t *testing.T) {
	t.Parallel()

	h := Hand{NewCard(1, 0), NewCard(2, 0)}
	c := h.Clone()
	c[0] = NewCard(3, 0)

	assert.Equal(t, NewCard(1, 0), h[0])
	assert.Equal(t, "1-0 2-0", h.String())
	assert.Nil(t, Hand(nil).Clone())
}
