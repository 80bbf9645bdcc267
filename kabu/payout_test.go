package kabu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func hand(suits ...int) Hand {
	h := make(Hand, len(suits))
	for i, s := range suits {
		h[i] = NewCard(s, i%CopiesPerSuit)
	}
	return h
}

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		player      Hand
		dealer      Hand
		tie         TieBreak
		wantOutcome Outcome
		wantDelta   int
	}{
		{"kabu beats five", hand(9, 9, 9), hand(5, 5, 5), DealerWins, Win, 200},
		{"lower loses", hand(1, 2), hand(4, 4), DealerWins, Loss, 0},
		{"tie goes to dealer", hand(3, 4), hand(2, 5), DealerWins, Loss, 0},
		{"tie pushes", hand(3, 4), hand(2, 5), Push, Draw, 100},
		{"win under push rules", hand(8), hand(1, 2), Push, Win, 200},
		{"loss under push rules", hand(1), hand(8), Push, Loss, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			outcome, delta := Resolve(tt.player, tt.dealer, 100, tt.tie)
			assert.Equal(t, tt.wantOutcome, outcome)
			assert.Equal(t, tt.wantDelta, delta)
		})
	}
}

func TestOutcomeStrings(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "win", Win.String())
	assert.Equal(t, "draw", Draw.String())
	assert.Equal(t, "loss", Loss.String())
	assert.Equal(t, "none", NoOutcome.String())
	assert.Equal(t, "push", Push.String())
	assert.Equal(t, "forbidden", Forbidden.String())
}
