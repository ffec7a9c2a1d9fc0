package server

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/control-arena/internal/arena"
	"github.com/vovakirdan/control-arena/internal/config"
	"github.com/vovakirdan/control-arena/internal/core"
	"github.com/vovakirdan/control-arena/internal/protocol"
	"github.com/vovakirdan/control-arena/internal/storage"
)

// ResultSaver records finished rounds.
type ResultSaver interface {
	SaveResult(r storage.Result) (int64, error)
}

// Session is one client connection with its own arena. All of its state is
// owned by the goroutine running Run; nothing else touches the simulation.
type Session struct {
	id     string
	name   string
	conn   Conn
	sim    *arena.Simulation
	tickHz int
	saver  ResultSaver
	logger *log.Logger
	now    func() time.Time

	roundStart time.Time
	recorded   bool // the current round's result has been saved
	overSent   bool // game_over already pushed in fixed-rate mode
}

// NewSession creates a session with a fresh simulation. saver may be nil.
func NewSession(conn Conn, cfg config.ArenaConfig, tickHz int, saver ResultSaver, logger *log.Logger) *Session {
	return newSession(conn, cfg, tickHz, saver, logger, time.Now)
}

func newSession(conn Conn, cfg config.ArenaConfig, tickHz int, saver ResultSaver, logger *log.Logger, now func() time.Time) *Session {
	id := uuid.NewString()
	start := now()
	return &Session{
		id:         id,
		conn:       conn,
		sim:        arena.New(cfg, start),
		tickHz:     tickHz,
		saver:      saver,
		logger:     logger.With("session", id[:8]),
		now:        now,
		roundStart: start,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Name returns the player name given at handshake, if any.
func (s *Session) Name() string { return s.name }

// Snapshot returns the current arena state.
func (s *Session) Snapshot() arena.StateView { return s.sim.Snapshot() }

// HandleMessage dispatches one client frame and returns the replies.
func (s *Session) HandleMessage(raw []byte, now time.Time) []protocol.Outbound {
	in, err := protocol.DecodeStrict(raw)
	if err != nil {
		s.logger.Debug("undecodable message", "err", err)
	}

	switch in.Type {
	case protocol.MsgHandshake:
		if in.Name != "" {
			s.name = in.Name
		}
		s.logger.Info("handshake", "name", s.name)
		return []protocol.Outbound{protocol.Ack(protocol.AckHandshakeOK)}

	case protocol.MsgInput:
		if in.Action == "" {
			return []protocol.Outbound{protocol.Error(protocol.ErrCodeMissingAction)}
		}
		action, ok := core.ParseAction(in.Action)
		if !ok {
			s.logger.Debug("unknown action", "action", in.Action)
		}
		s.sim.ApplyInput(action)
		if s.tickHz > 0 {
			return nil
		}
		s.sim.Advance(now)
		return []protocol.Outbound{protocol.StateFor(s.sim.Snapshot())}

	case protocol.MsgRestart:
		if !s.recorded {
			s.record(storage.EndRestart, now)
		}
		s.sim.Reset(now)
		s.roundStart = now
		s.recorded = false
		s.overSent = false
		s.logger.Info("round restarted")
		return []protocol.Outbound{protocol.StateFor(s.sim.Snapshot())}

	default:
		return []protocol.Outbound{protocol.Error(protocol.ErrCodeUnknownMessageType)}
	}
}

// Tick advances the arena in fixed-rate mode and returns the state push.
// After game over a single game_over is returned and later ticks return
// nothing until the round is restarted.
func (s *Session) Tick(now time.Time) []protocol.Outbound {
	if s.sim.IsGameOver() {
		if s.overSent {
			return nil
		}
		s.overSent = true
		return []protocol.Outbound{protocol.GameOver(s.sim.Snapshot())}
	}
	s.sim.Advance(now)
	view := s.sim.Snapshot()
	if view.IsGameOver {
		s.overSent = true
	}
	return []protocol.Outbound{protocol.StateFor(view)}
}

// Run serves the session until reads is closed or ctx is cancelled.
// reads carries raw frames from the connection's reader goroutine.
func (s *Session) Run(ctx context.Context, reads <-chan []byte) {
	var ticks <-chan time.Time
	if s.tickHz > 0 {
		ticker := time.NewTicker(time.Second / time.Duration(s.tickHz))
		defer ticker.Stop()
		ticks = ticker.C
	}

	if err := s.send(protocol.Ack(protocol.AckConnected)); err != nil {
		s.finish(endReason(ctx))
		return
	}

	for {
		select {
		case <-ctx.Done():
			s.finish(storage.EndShutdown)
			return

		case raw, ok := <-reads:
			if !ok {
				s.finish(endReason(ctx))
				return
			}
			if err := s.sendAll(s.HandleMessage(raw, s.now())); err != nil {
				s.logger.Debug("write failed", "err", err)
				s.finish(endReason(ctx))
				return
			}
			s.checkGameOver()

		case <-ticks:
			if err := s.sendAll(s.Tick(s.now())); err != nil {
				s.logger.Debug("write failed", "err", err)
				s.finish(endReason(ctx))
				return
			}
			s.checkGameOver()
		}
	}
}

// endReason tells a client hangup apart from the server closing the
// connection during shutdown.
func endReason(ctx context.Context) string {
	if ctx.Err() != nil {
		return storage.EndShutdown
	}
	return storage.EndDisconnect
}

func (s *Session) send(msg protocol.Outbound) error {
	b, err := protocol.Encode(msg)
	if err != nil {
		s.logger.Error("encode failed", "type", msg.Type, "err", err)
		return nil
	}
	return s.conn.Send(b)
}

func (s *Session) sendAll(msgs []protocol.Outbound) error {
	for _, m := range msgs {
		if err := s.send(m); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) checkGameOver() {
	if s.sim.IsGameOver() && !s.recorded {
		s.logger.Info("game over", "score", s.sim.Score(), "level", s.sim.Level())
		s.record(storage.EndGameOver, s.now())
	}
}

func (s *Session) finish(reason string) {
	if !s.recorded {
		s.record(reason, s.now())
	}
	s.logger.Info("session ended", "reason", reason, "score", s.sim.Score())
}

// record saves the current round once. Rounds that never ticked are not
// worth a leaderboard row.
func (s *Session) record(reason string, now time.Time) {
	s.recorded = true
	if s.saver == nil || s.sim.Tick() == 0 {
		return
	}
	_, err := s.saver.SaveResult(storage.Result{
		SessionID: s.id,
		Player:    s.name,
		Source:    storage.SourceWebSocket,
		Score:     s.sim.Score(),
		Level:     s.sim.Level(),
		Kills:     s.sim.Kills(),
		Ticks:     int64(s.sim.Tick()),
		EndReason: reason,
		Duration:  int(now.Sub(s.roundStart).Seconds()),
	})
	if err != nil {
		s.logger.Warn("failed to save result", "err", err)
	}
}
