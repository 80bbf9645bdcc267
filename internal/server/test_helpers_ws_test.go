package server

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/lox/oichokabu/internal/game"
	"github.com/lox/oichokabu/internal/protocol"
	"github.com/lox/oichokabu/internal/randutil"
)

const testDelay = 500 * time.Millisecond

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

// scriptedServer deals every connection the same scripted suits.
func scriptedServer(clock quartz.Clock, suits ...int) *Server {
	return NewServer("127.0.0.1:0", testLogger(),
		WithClock(clock),
		WithStepDelay(testDelay),
		WithSessionFactory(func(logger *log.Logger) *game.Session {
			return game.NewSession(randutil.New(1),
				game.WithID("ws"),
				game.WithDeck(game.ScriptedDeck(suits...)),
				game.WithLogger(logger),
			)
		}),
	)
}

func dial(t *testing.T, srv *Server) *websocket.Conn {
	t.Helper()

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func sendAction(t *testing.T, conn *websocket.Conn, action string, amount int) {
	t.Helper()

	payload, err := protocol.Marshal(&protocol.Action{Type: protocol.TypeAction, Action: action, Amount: amount})
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, payload))
}

func readFrame(t *testing.T, conn *websocket.Conn) (string, []byte) {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var env protocol.Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	return env.Type, data
}

func readState(t *testing.T, conn *websocket.Conn) protocol.TableView {
	t.Helper()

	typ, data := readFrame(t, conn)
	require.Equal(t, protocol.TypeState, typ, string(data))

	var msg protocol.State
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg.State
}

func readError(t *testing.T, conn *websocket.Conn) protocol.Error {
	t.Helper()

	typ, data := readFrame(t, conn)
	require.Equal(t, protocol.TypeError, typ, string(data))

	var msg protocol.Error
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}
