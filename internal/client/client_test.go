package client

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/oichokabu/internal/game"
	"github.com/lox/oichokabu/internal/randutil"
	"github.com/lox/oichokabu/internal/server"
	"github.com/lox/oichokabu/internal/simulator"
	"github.com/lox/oichokabu/kabu"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

// startServer serves sessions built by opts on a real clock with a short
// dealer delay and returns its http URL.
func startServer(t *testing.T, opts ...game.Option) string {
	t.Helper()

	srv := server.NewServer("127.0.0.1:0", testLogger(),
		server.WithClock(quartz.NewReal()),
		server.WithStepDelay(time.Millisecond),
		server.WithSessionFactory(func(logger *log.Logger) *game.Session {
			return game.NewSession(randutil.New(7), append([]game.Option{game.WithLogger(logger)}, opts...)...)
		}),
	)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

func dial(t *testing.T, url string) *Client {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := Dial(ctx, url, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestDialReadsInitialState(t *testing.T) {
	t.Parallel()

	c := dial(t, startServer(t, game.WithID("bot")))
	state := c.State()
	assert.Equal(t, "bot", state.SessionID)
	assert.Equal(t, "betting", state.Phase)
	assert.Equal(t, 1000, state.Balance)
}

func TestDialBadURL(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := Dial(ctx, "http://127.0.0.1:1", testLogger())
	assert.Error(t, err)
}

func TestServerErrorsMatchSentinels(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c := dial(t, startServer(t))

	_, err := c.Do(ctx, game.ActionFinalize, 0)
	require.ErrorIs(t, err, game.ErrInvalidAction)
	assert.NotErrorIs(t, err, game.ErrInsufficientFunds)

	_, err = c.Do(ctx, game.ActionPlaceBet, 5000)
	require.ErrorIs(t, err, game.ErrInsufficientFunds)

	var serverErr *Error
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, "insufficient_funds", serverErr.Code)

	exhausted := &Error{Code: "deck_exhausted"}
	assert.ErrorIs(t, exhausted, game.ErrDeckExhausted)
	assert.ErrorIs(t, exhausted, game.ErrInvalidAction)
	assert.NotErrorIs(t, &Error{Code: "invalid_action"}, game.ErrDeckExhausted)

	state, err := c.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1000, state.Balance)
}

func TestPlayScriptedRound(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c := dial(t, startServer(t, game.WithDeck(game.ScriptedDeck(4, 2, 4, 3, 1))))

	stats, err := NewPlayer(c, simulator.Stand{}, 100).Play(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Rounds)
	assert.Equal(t, 1, stats.Wins)
	assert.InDelta(t, 1.0, stats.SumNet, 1e-9)
	assert.Equal(t, 1, stats.ByScore[8].Rounds)
	assert.Equal(t, 1100, c.State().Balance)
	assert.Equal(t, "betting", c.State().Phase)
}

func TestPlayManyRoundsBalancesTheBooks(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	c := dial(t, startServer(t))

	const bet = 10
	stats, err := NewPlayer(c, simulator.Threshold(4), bet).Play(ctx, 25)
	require.NoError(t, err)
	require.NoError(t, stats.Validate())

	assert.Equal(t, 25, stats.Rounds)
	assert.Equal(t, 1000+int(stats.SumNet*bet), c.State().Balance)
}

func TestPlayStopsWhenBankrupt(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	// Player 3+3 stands on 6, dealer 2+5 makes 7.
	c := dial(t, startServer(t,
		game.WithStartingBalance(20),
		game.WithDeck(game.ScriptedDeck(3, 2, 3, 5)),
	))

	stats, err := NewPlayer(c, simulator.Stand{}, 20).Play(ctx, 3)
	require.ErrorIs(t, err, ErrBankrupt)
	assert.Equal(t, 1, stats.Rounds)
	assert.Equal(t, 1, stats.Losses)
	assert.Equal(t, 0, c.State().Balance)
}

func TestStalledDealerEndsRound(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	// Player 4+4 stands on 8 and the dealer needs a card after the 6.
	c := dial(t, startServer(t, game.WithDeck(game.ScriptedDeck(4, 6, 4))))

	stats, err := NewPlayer(c, simulator.Stand{}, 100).Play(ctx, 1)
	require.ErrorIs(t, err, game.ErrDeckExhausted)
	assert.ErrorIs(t, err, game.ErrInvalidAction)
	assert.Equal(t, 0, stats.Rounds)
	assert.True(t, c.State().Stalled)

	state, err := c.Do(ctx, game.ActionReset, 0)
	require.NoError(t, err)
	assert.Equal(t, "betting", state.Phase)
	assert.Equal(t, 1000, state.Balance)
}

func TestHandFromCards(t *testing.T) {
	t.Parallel()

	c := dial(t, startServer(t, game.WithDeck(game.ScriptedDeck(9, 1, 8))))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := c.Do(ctx, game.ActionStartDeal, 0)
	require.ErrorIs(t, err, game.ErrInvalidAction, "dealing needs a bet")

	_, err = c.Do(ctx, game.ActionPlaceBet, 10)
	require.NoError(t, err)
	state, err := c.Do(ctx, game.ActionStartDeal, 0)
	require.NoError(t, err)
	for range 3 {
		state, err = c.Do(ctx, game.ActionDrawNext, 0)
		require.NoError(t, err)
	}

	h := hand(state.Player)
	require.Len(t, h, 2)
	assert.Equal(t, 7, h.Score())
	assert.Equal(t, kabu.Forbidden, h.Rule())
	assert.Empty(t, hand(state.Dealer), "dealer card is face down")
}
