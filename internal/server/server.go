// Package server hosts arena sessions over WebSocket. Each connection gets
// its own simulation, served by a dedicated goroutine.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/control-arena/internal/config"
	"github.com/vovakirdan/control-arena/internal/storage"
)

// Leaderboard is the storage the server needs: recording results and
// serving the top list.
type Leaderboard interface {
	ResultSaver
	TopScores(source string, limit int) ([]storage.Result, error)
}

// Server is the WebSocket host.
type Server struct {
	cfg      config.Config
	board    Leaderboard
	logger   *log.Logger
	registry *Registry
	upgrader websocket.Upgrader
	sessions sync.WaitGroup // handleWS calls still inside Session.Run

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a server. board may be nil, in which case nothing is recorded
// and /scores returns an empty list.
func New(cfg config.Config, board Leaderboard, logger *log.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	srv := &Server{
		cfg:      cfg,
		board:    board,
		logger:   logger,
		registry: NewRegistry(),
		ctx:      ctx,
		cancel:   cancel,
	}
	srv.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     srv.checkOrigin,
	}
	return srv
}

// Registry exposes the live sessions.
func (s *Server) Registry() *Registry {
	return s.registry
}

// Handler returns the HTTP routes: /ws, /healthz, /scores and
// /scores/{source}.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/ws", s.handleWS).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/scores", s.handleScores).Methods(http.MethodGet)
	r.HandleFunc("/scores/{source}", s.handleScores).Methods(http.MethodGet)
	return r
}

// ListenAndServe listens on the configured address and serves until ctx is
// cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Addr())
	if err != nil {
		s.Close()
		return fmt.Errorf("server: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully. It returns only after every session has finished recording
// its result, or the shutdown timeout has passed.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpSrv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String(), "tick_hz", s.cfg.Server.TickHz)
		errCh <- httpSrv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.Close()
		s.waitSessions(shutdownCtx)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "sessions", s.registry.Count())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.Close()
	shutdownErr := httpSrv.Shutdown(shutdownCtx)
	s.waitSessions(shutdownCtx)
	if shutdownErr != nil {
		return fmt.Errorf("server: shutdown: %w", shutdownErr)
	}
	return nil
}

// waitSessions blocks until every WebSocket handler has returned or ctx is
// done. http.Server.Shutdown does not wait for hijacked connections.
func (s *Server) waitSessions(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		s.sessions.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("sessions still running after shutdown timeout", "sessions", s.registry.Count())
	}
}

// Close ends every live session. Hijacked WebSocket connections are not
// tracked by http.Server.Shutdown, so they are closed here.
func (s *Server) Close() {
	s.cancel()
	s.registry.CloseAll()
}

func (s *Server) checkOrigin(r *http.Request) bool {
	allowed := s.cfg.Server.AllowedOrigins
	if len(allowed) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, o := range allowed {
		if o == origin {
			return true
		}
	}
	return false
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	c, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	s.sessions.Add(1)
	defer s.sessions.Done()

	sc := s.cfg.Server
	c.SetReadLimit(sc.MaxMessageBytes)
	_ = c.SetReadDeadline(time.Now().Add(sc.PongWait))
	c.SetPongHandler(func(string) error {
		return c.SetReadDeadline(time.Now().Add(sc.PongWait))
	})

	conn := newWSConn(c, sc.WriteWait)
	sess := NewSession(conn, s.cfg.Game, sc.TickHz, s.saver(), s.logger)
	s.registry.Register(sess)
	defer s.registry.Unregister(sess.ID())
	defer conn.Close()

	s.logger.Info("session started", "session", sess.ID()[:8], "remote", r.RemoteAddr)

	done := make(chan struct{})
	defer close(done)

	reads := make(chan []byte, 16)
	go readPump(c, reads, done)
	go pingLoop(conn, sc.PingInterval, done)

	sess.Run(s.ctx, reads)
}

// readPump forwards frames to the session until the connection fails.
func readPump(c *websocket.Conn, reads chan<- []byte, done <-chan struct{}) {
	defer close(reads)
	for {
		_, msg, err := c.ReadMessage()
		if err != nil {
			return
		}
		select {
		case reads <- msg:
		case <-done:
			return
		}
	}
}

func pingLoop(conn *wsConn, interval time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := conn.Ping(); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (s *Server) saver() ResultSaver {
	if s.board == nil {
		return nil
	}
	return s.board
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

type scoreEntry struct {
	Player    string    `json:"player"`
	Score     int       `json:"score"`
	Level     int       `json:"level"`
	Kills     int       `json:"kills"`
	EndReason string    `json:"end_reason"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 100 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries := make([]scoreEntry, 0, limit)
	if s.board != nil {
		source := r.URL.Query().Get("source")
		if v, ok := mux.Vars(r)["source"]; ok {
			source = v
		}
		results, err := s.board.TopScores(source, limit)
		if err != nil {
			s.logger.Error("score query failed", "err", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		for _, res := range results {
			entries = append(entries, scoreEntry{
				Player:    res.Player,
				Score:     res.Score,
				Level:     res.Level,
				Kills:     res.Kills,
				EndReason: res.EndReason,
				CreatedAt: res.CreatedAt,
			})
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(entries); err != nil {
		s.logger.Debug("write scores failed", "err", err)
	}
}
