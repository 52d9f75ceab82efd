package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/airsense/sds011/internal/logging"
	"github.com/airsense/sds011/internal/sensor"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Per-client queue; a client further behind than this gets dropped
	clientQueueSize = 8

	// Graceful shutdown budget once the context is cancelled
	shutdownTimeout = 5 * time.Second
)

// Config holds the server configuration
type Config struct {
	ListenAddr string // host:port to bind, e.g. "localhost:8017"
}

// Server broadcasts sensor measurements to WebSocket clients.
type Server struct {
	config   *Config
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan sensor.Measurement
}

// New creates a new Server instance
func New(config *Config) *Server {
	return &Server{
		config: config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Local dashboards connect from file:// or other ports
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Handler returns the HTTP handler serving /ws and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", s.handleHealthz)
	return mux
}

// Start runs the HTTP server and blocks until ctx is cancelled or the
// listener fails.
func (s *Server) Start(ctx context.Context) error {
	httpSrv := &http.Server{
		Addr:    s.config.ListenAddr,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("measurement server listening", zap.String("addr", s.config.ListenAddr))
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down measurement server: %w", err)
		}
		return nil
	case err := <-errCh:
		return fmt.Errorf("measurement server failed: %w", err)
	}
}

// Broadcast fans measurements out to every connected client until the
// channel closes or ctx is cancelled.
func (s *Server) Broadcast(ctx context.Context, measurements <-chan sensor.Measurement) {
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-measurements:
			if !ok {
				return
			}
			s.broadcastOne(m)
		}
	}
}

// ClientCount returns the number of currently connected WebSocket clients.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) broadcastOne(m sensor.Measurement) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for c := range s.clients {
		select {
		case c.send <- m:
		default:
			// Client cannot keep up; drop it instead of stalling the loop
			logging.Warn("dropping slow websocket client",
				zap.String("remote_addr", c.conn.RemoteAddr().String()),
			)
			delete(s.clients, c)
			close(c.send)
		}
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("websocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan sensor.Measurement, clientQueueSize),
	}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	logging.Info("websocket client connected", zap.String("remote_addr", r.RemoteAddr))

	go s.writeLoop(c)
	go s.readLoop(c)
}

// writeLoop pushes queued measurements to one client. It exits when the
// client's queue is closed (eviction) or a write fails.
func (s *Server) writeLoop(c *client) {
	defer func() { _ = c.conn.Close() }()

	for m := range c.send {
		payload, err := json.Marshal(m)
		if err != nil {
			logging.Error("failed to marshal measurement", zap.Error(err))
			continue
		}

		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			logging.Debug("websocket write failed, disconnecting",
				zap.String("remote_addr", c.conn.RemoteAddr().String()),
				zap.Error(err),
			)
			s.remove(c)
			return
		}
	}
}

// readLoop drains the client. Clients only ever send control frames; any
// read error means the peer went away.
func (s *Server) readLoop(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			logging.Info("websocket client disconnected",
				zap.String("remote_addr", c.conn.RemoteAddr().String()),
			)
			s.remove(c)
			return
		}
	}
}

// remove unregisters a client; safe to call from both loops.
func (s *Server) remove(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"clients": s.ClientCount(),
	})
}
