package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/lox/oichokabu/internal/game"
	"github.com/lox/oichokabu/internal/gameid"
	"github.com/lox/oichokabu/internal/randutil"
)

const shutdownTimeout = 5 * time.Second

// SessionFactory creates the session for a new connection.
type SessionFactory func(logger *log.Logger) *game.Session

// Server seats every websocket client at its own table.
type Server struct {
	addr        string
	upgrader    websocket.Upgrader
	logger      *log.Logger
	clock       quartz.Clock
	stepDelay   time.Duration
	newSession  SessionFactory
	ids         *gameid.Generator
	mu          sync.Mutex
	connections map[*Connection]struct{}
}

// Option configures a Server.
type Option func(*Server)

// WithClock sets the clock that paces dealer steps.
func WithClock(clock quartz.Clock) Option {
	return func(s *Server) { s.clock = clock }
}

// WithStepDelay sets the pause between dealer steps.
func WithStepDelay(d time.Duration) Option {
	return func(s *Server) { s.stepDelay = d }
}

// WithRules deals every connection a time-seeded session under rules.
// Session IDs are stamped from the server's clock.
func WithRules(rules game.Options) Option {
	return func(s *Server) {
		s.newSession = func(logger *log.Logger) *game.Session {
			rng, seed := randutil.NewTimeSeeded()
			logger.Debug("Seeded session", "seed", seed)
			return game.NewSession(rng,
				game.WithOptions(rules),
				game.WithIDGenerator(s.ids),
				game.WithLogger(logger),
			)
		}
	}
}

// WithSessionFactory overrides how sessions are created.
func WithSessionFactory(f SessionFactory) Option {
	return func(s *Server) { s.newSession = f }
}

// NewServer creates a WebSocket server listening on addr.
func NewServer(addr string, logger *log.Logger, opts ...Option) *Server {
	s := &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			// Browser clients are served from anywhere.
			CheckOrigin:     func(*http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:      logger.WithPrefix("server"),
		clock:       quartz.NewReal(),
		stepDelay:   game.DefaultStepDelay,
		connections: make(map[*Connection]struct{}),
	}
	WithRules(game.DefaultOptions())(s)
	for _, opt := range opts {
		opt(s)
	}
	s.ids = gameid.NewGenerator(nil, s.clock)
	return s
}

// Handler returns the HTTP routes: /ws and /health.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// ListenAndServe listens on the configured address and serves until ctx is
// cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// the HTTP server and closes every open table.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("Starting WebSocket server", "addr", ln.Addr().String())
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := httpServer.Shutdown(shutdownCtx)
		s.closeAll()
		return err
	})
	return g.Wait()
}

// ConnectionCount returns the number of open connections.
func (s *Server) ConnectionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.connections)
}

func (s *Server) closeAll() {
	s.mu.Lock()
	conns := make([]*Connection, 0, len(s.connections))
	for c := range s.connections {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		_ = c.Close() // Ignore close errors during shutdown
	}
}

func (s *Server) register(c *Connection) {
	s.mu.Lock()
	s.connections[c] = struct{}{}
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Info("Client connected", "session", c.table.State().SessionID, "total", total)
}

func (s *Server) unregister(c *Connection) {
	s.mu.Lock()
	delete(s.connections, c)
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Info("Client disconnected", "total", total)
}

// handleWebSocket seats the client at a fresh table.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	session := s.newSession(s.logger)
	table := game.NewTable(session, s.clock, s.stepDelay, s.logger)
	client := NewConnection(conn, table, s.logger)
	s.register(client)
	client.Start()

	go func() {
		<-client.Done()
		s.unregister(client)
	}()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK") // Ignore write errors for health check
}
