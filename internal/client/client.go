// Package client talks to an Oicho-Kabu server over its websocket protocol.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/oichokabu/internal/game"
	"github.com/lox/oichokabu/internal/protocol"
)

const (
	writeWait   = 10 * time.Second
	defaultWait = 30 * time.Second
)

// Error is an error frame returned by the server. It matches the game
// package's sentinel errors with errors.Is: deck_exhausted matches both
// ErrDeckExhausted and ErrInvalidAction, as the wrapped sentinel does.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("server: %s: %s", e.Code, e.Message)
}

func (e *Error) Is(target error) bool {
	switch e.Code {
	case protocol.CodeInvalidAction:
		return target == game.ErrInvalidAction
	case protocol.CodeInsufficientFunds:
		return target == game.ErrInsufficientFunds
	case protocol.CodeDeckExhausted:
		return target == game.ErrDeckExhausted || target == game.ErrInvalidAction
	}
	return false
}

func errStalled() error {
	return &Error{Code: protocol.CodeDeckExhausted, Message: "dealer cannot draw, reset to continue"}
}

// Client is a connection to one table. Its methods are not safe for
// concurrent use; each call sends at most one action and reads the replies.
type Client struct {
	conn      *websocket.Conn
	logger    *log.Logger
	state     protocol.TableView
	closeOnce sync.Once
}

// Dial connects to the server at serverURL and reads the initial state.
// http and https URLs are converted to ws and wss.
func Dial(ctx context.Context, serverURL string, logger *log.Logger) (*Client, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	if !strings.HasSuffix(u.Path, "/ws") {
		u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	}

	logger = logger.WithPrefix("client")
	logger.Info("Connecting to server", "url", u.String())

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	c := &Client{conn: conn, logger: logger}
	if _, err := c.WaitFor(ctx, func(protocol.TableView) bool { return true }); err != nil {
		_ = c.Close()
		return nil, err
	}
	c.logger = logger.With("session", c.state.SessionID)
	return c, nil
}

// State returns the last state received.
func (c *Client) State() protocol.TableView {
	return c.state
}

// Do sends an action and returns the state it produced.
func (c *Client) Do(ctx context.Context, action game.Action, amount int) (protocol.TableView, error) {
	return c.send(ctx, string(action), amount)
}

// Refresh asks the server for the current state.
func (c *Client) Refresh(ctx context.Context) (protocol.TableView, error) {
	return c.send(ctx, protocol.ActionState, 0)
}

func (c *Client) send(ctx context.Context, action string, amount int) (protocol.TableView, error) {
	payload, err := protocol.Marshal(&protocol.Action{Type: protocol.TypeAction, Action: action, Amount: amount})
	if err != nil {
		return protocol.TableView{}, err
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return protocol.TableView{}, fmt.Errorf("send %s: %w", action, err)
	}
	c.logger.Debug("Sent action", "action", action, "amount", amount)
	return c.WaitFor(ctx, func(protocol.TableView) bool { return true })
}

// WaitFor reads states until done reports true. An error frame ends the
// wait with an *Error, as does a stalled dealer that done does not accept:
// the table needs a reset before anything else can happen.
func (c *Client) WaitFor(ctx context.Context, done func(protocol.TableView) bool) (protocol.TableView, error) {
	for {
		deadline, ok := ctx.Deadline()
		if !ok {
			deadline = time.Now().Add(defaultWait)
		}
		if err := ctx.Err(); err != nil {
			return c.state, err
		}
		_ = c.conn.SetReadDeadline(deadline)

		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return c.state, fmt.Errorf("read: %w", err)
		}

		var env protocol.Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return c.state, fmt.Errorf("decode frame: %w", err)
		}
		switch env.Type {
		case protocol.TypeState:
			var msg protocol.State
			if err := json.Unmarshal(data, &msg); err != nil {
				return c.state, fmt.Errorf("decode state: %w", err)
			}
			c.state = msg.State
			if done(c.state) {
				return c.state, nil
			}
			if c.state.Stalled {
				return c.state, errStalled()
			}
		case protocol.TypeError:
			var msg protocol.Error
			if err := json.Unmarshal(data, &msg); err != nil {
				return c.state, fmt.Errorf("decode error: %w", err)
			}
			return c.state, &Error{Code: msg.Code, Message: msg.Message}
		default:
			c.logger.Debug("Ignoring frame", "type", env.Type)
		}
	}
}

// WaitForPhase reads states until the table reaches phase.
func (c *Client) WaitForPhase(ctx context.Context, phase game.Phase) (protocol.TableView, error) {
	if c.state.Phase == phase.String() {
		return c.state, nil
	}
	if c.state.Stalled {
		return c.state, errStalled()
	}
	return c.WaitFor(ctx, func(s protocol.TableView) bool { return s.Phase == phase.String() })
}

// Close sends a close frame and closes the connection.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		err = c.conn.Close()
		c.logger.Info("Disconnected from server")
	})
	return err
}
