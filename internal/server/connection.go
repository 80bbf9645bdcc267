package server

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/oichokabu/internal/game"
	"github.com/lox/oichokabu/internal/protocol"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	sendBuffer = 64
)

// Connection is one player's websocket and the table they sit at.
type Connection struct {
	conn      *websocket.Conn
	table     *game.Table
	send      chan []byte
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewConnection wraps conn. The connection owns table and closes it on
// disconnect.
func NewConnection(conn *websocket.Conn, table *game.Table, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	return &Connection{
		conn:   conn,
		table:  table,
		send:   make(chan []byte, sendBuffer),
		logger: logger.WithPrefix("conn").With("session", table.State().SessionID),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start pushes the initial state and begins pumping messages. Every table
// change, including each dealer step, is pushed to the client.
func (c *Connection) Start() {
	c.table.OnChange(c.sendState)
	c.sendState(c.table.State())

	go c.writePump()
	go c.readPump()
}

// Done is closed once the connection has shut down.
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Close stops the table and the socket.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		c.table.Close()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		err = c.conn.Close()
	})
	return err
}

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }() // Ignore close errors during cleanup

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}
		c.handleMessage(data)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Close()
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Connection) handleMessage(data []byte) {
	msg, err := protocol.DecodeAction(data)
	if err != nil {
		c.logger.Debug("Bad request", "error", err)
		c.sendMessage(protocol.NewBadRequest(err))
		return
	}
	c.logger.Debug("Received action", "action", msg.Action, "amount", msg.Amount)

	if msg.Action == protocol.ActionState {
		c.sendState(c.table.State())
		return
	}
	// Successful actions are answered by the table's change hook.
	if err := c.table.Do(game.Action(msg.Action), msg.Amount); err != nil {
		c.sendMessage(protocol.NewError(err))
	}
}

func (c *Connection) sendState(snap game.Snapshot) {
	c.sendMessage(protocol.NewState(snap))
}

// sendMessage queues msg for the write pump. A client that cannot keep up
// is disconnected.
func (c *Connection) sendMessage(msg any) {
	payload, err := protocol.Marshal(msg)
	if err != nil {
		c.logger.Error("Failed to encode message", "error", err)
		return
	}

	select {
	case c.send <- payload:
	case <-c.ctx.Done():
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
	}
}
