package tui

import (
	"context"
	"io"
	"os"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/oichokabu/internal/game"
	"github.com/lox/oichokabu/kabu"
)

const testDelay = 500 * time.Millisecond

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

func newTestModel(t *testing.T, suits ...int) (*Model, *quartz.Mock) {
	t.Helper()

	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
	mClock := quartz.NewMock(t)
	table := game.NewTable(game.NewTestSession(suits), mClock, testDelay, logger)
	t.Cleanup(table.Close)

	m := New(table, logger)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, mClock
}

func press(m *Model, keys ...string) {
	for _, k := range keys {
		msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		if k == " " {
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(k)}
		}
		m.Update(msg)
	}
}

func TestPlayRoundWithKeys(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	m, mClock := newTestModel(t, 4, 2, 4, 3, 1)
	assert.Contains(t, m.View(), "Place a bet to start.")

	press(m, "4")
	require.NoError(t, m.err)
	assert.Equal(t, 100, m.snap.Bet)
	assert.Equal(t, 900, m.snap.Balance)

	press(m, "d", " ", " ", " ")
	require.NoError(t, m.err)
	assert.Equal(t, game.PhasePlayerDeciding, m.snap.Phase)
	assert.Contains(t, m.View(), "Stand to pass to the dealer.")

	press(m, "f")
	require.NoError(t, m.err)
	assert.Equal(t, game.PhaseDealerTurn, m.snap.Phase)
	assert.Contains(t, m.View(), "Dealer is playing...")

	for range 3 {
		mClock.Advance(testDelay).MustWait(ctx)
	}
	m.Update(refreshMsg{})

	assert.Equal(t, game.PhaseShowdown, m.snap.Phase)
	assert.Equal(t, kabu.Win, m.snap.Outcome)
	require.Len(t, m.rounds, 1)
	assert.Equal(t, "Round 1: win 8 vs 6, bet 100, paid 200", m.rounds[0])

	view := m.View()
	assert.Contains(t, view, "You win 200!")
	assert.Contains(t, view, "Balance: 1100")

	// A second refresh must not log the round twice.
	m.Update(refreshMsg{})
	assert.Len(t, m.rounds, 1)

	press(m, "n")
	require.NoError(t, m.err)
	assert.Equal(t, game.PhaseBetting, m.snap.Phase)
}

func TestRejectedKeyShowsError(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t, 4, 2, 4, 3, 1)

	press(m, "d")
	require.ErrorIs(t, m.err, game.ErrInvalidAction)
	assert.Contains(t, m.View(), m.err.Error())

	press(m, "1")
	assert.NoError(t, m.err)
	assert.Equal(t, 10, m.snap.Bet)

	press(m, "c")
	assert.NoError(t, m.err)
	assert.Zero(t, m.snap.Bet)
}

func TestHiddenDealerCard(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t, 4, 2, 4, 3, 1)
	press(m, "2", "d", " ", " ")

	require.Len(t, m.snap.Dealer, 1)
	assert.False(t, m.snap.Dealer[0].FaceUp)
	assert.Contains(t, m.View(), "?")
}

func TestResetKey(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t, 4, 2, 4, 3, 1)
	press(m, "3", "d", " ")
	require.Equal(t, game.PhaseDealing, m.snap.Phase)

	press(m, "r")
	require.NoError(t, m.err)
	assert.Equal(t, game.PhaseBetting, m.snap.Phase)
	assert.Equal(t, 1000, m.snap.Balance)
}

func TestStalledDealerOffersReset(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Player 8 stands, then the dealer finds the deck empty.
	m, mClock := newTestModel(t, 4, 6, 4)
	press(m, "4", "d", " ", " ", " ", "f")
	require.NoError(t, m.err)

	mClock.Advance(testDelay).MustWait(ctx)
	m.Update(refreshMsg{})
	assert.True(t, m.snap.Stalled())
	assert.Contains(t, m.View(), "Press r to reset.")

	press(m, "r")
	require.NoError(t, m.err)
	assert.Equal(t, game.PhaseBetting, m.snap.Phase)
	assert.Equal(t, 1000, m.snap.Balance)
}

func TestQuit(t *testing.T) {
	t.Parallel()

	m, _ := newTestModel(t, 4, 2, 4, 3, 1)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}
