package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/control-arena/internal/config"
	"github.com/vovakirdan/control-arena/internal/protocol"
	"github.com/vovakirdan/control-arena/internal/storage"
)

var start = time.Unix(1_700_000_000, 0)

type fakeConn struct {
	sendCh  chan []byte
	failing bool
	closed  bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{sendCh: make(chan []byte, 64)}
}

func (c *fakeConn) Send(b []byte) error {
	if c.failing {
		return errors.New("broken pipe")
	}
	c.sendCh <- b
	return nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

type fakeSaver struct {
	mu      sync.Mutex
	results []storage.Result
}

func (f *fakeSaver) SaveResult(r storage.Result) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, r)
	return int64(len(f.results)), nil
}

func (f *fakeSaver) saved() []storage.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]storage.Result(nil), f.results...)
}

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
	return c.t
}

func newTestSession(cfg config.ArenaConfig, tickHz int, saver ResultSaver) (*Session, *fakeConn, *testClock) {
	conn := newFakeConn()
	clock := &testClock{t: start}
	return newSession(conn, cfg, tickHz, saver, testLogger(), clock.now), conn, clock
}

func TestSessionHandshake(t *testing.T) {
	s, _, _ := newTestSession(config.DefaultArenaConfig(), 0, nil)

	out := s.HandleMessage([]byte(`{"type":"handshake","name":"neo"}`), start)
	require.Len(t, out, 1)
	assert.Equal(t, protocol.Ack(protocol.AckHandshakeOK), out[0])
	assert.Equal(t, "neo", s.Name())
	assert.Zero(t, s.Snapshot().Tick, "handshake must not touch the arena")
}

func TestSessionInputAdvances(t *testing.T) {
	s, _, _ := newTestSession(config.DefaultArenaConfig(), 0, nil)

	out := s.HandleMessage([]byte(`{"type":"input","action":"move_right"}`), start.Add(500*time.Millisecond))
	require.Len(t, out, 1)
	assert.Equal(t, protocol.MsgStateUpdate, out[0].Type)
	require.NotNil(t, out[0].State)
	assert.Equal(t, 100.0, out[0].State.Player.X)
	assert.EqualValues(t, 1, out[0].State.Tick)
}

func TestSessionInputErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want protocol.Outbound
	}{
		{"missing action", `{"type":"input"}`, protocol.Error(protocol.ErrCodeMissingAction)},
		{"empty action", `{"type":"input","action":""}`, protocol.Error(protocol.ErrCodeMissingAction)},
		{"zero action", `{"type":"input","action":0}`, protocol.Error(protocol.ErrCodeMissingAction)},
		{"empty array action", `{"type":"input","action":[]}`, protocol.Error(protocol.ErrCodeMissingAction)},
		{"empty object action", `{"type":"input","action":{}}`, protocol.Error(protocol.ErrCodeMissingAction)},
		{"false action", `{"type":"input","action":false}`, protocol.Error(protocol.ErrCodeMissingAction)},
		{"unknown type", `{"type":"teleport"}`, protocol.Error(protocol.ErrCodeUnknownMessageType)},
		{"no type", `{"action":"jump"}`, protocol.Error(protocol.ErrCodeUnknownMessageType)},
		{"not json", `jump!`, protocol.Error(protocol.ErrCodeUnknownMessageType)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, _, _ := newTestSession(config.DefaultArenaConfig(), 0, nil)
			out := s.HandleMessage([]byte(tc.raw), start.Add(time.Second))
			require.Len(t, out, 1)
			assert.Equal(t, tc.want, out[0])
			assert.Zero(t, s.Snapshot().Tick, "errors must not reach the arena")
		})
	}
}

func TestSessionUnknownActionStillTicks(t *testing.T) {
	s, _, _ := newTestSession(config.DefaultArenaConfig(), 0, nil)

	out := s.HandleMessage([]byte(`{"type":"input","action":"fly"}`), start.Add(time.Second))
	require.Len(t, out, 1)
	assert.Equal(t, protocol.MsgStateUpdate, out[0].Type)
	assert.EqualValues(t, 1, out[0].State.Tick)
	assert.Equal(t, 0.0, out[0].State.Player.X)
	assert.Equal(t, 0, out[0].State.ProjectilesCount)
}

// lethalConfig makes the first enemy contact end the game.
func lethalConfig() config.ArenaConfig {
	cfg := config.DefaultArenaConfig()
	cfg.Enemies.ContactDamage = cfg.Player.MaxHP
	return cfg
}

func playUntilGameOver(t *testing.T, s *Session, clock *testClock) protocol.Outbound {
	t.Helper()
	for i := 0; i < 200; i++ {
		out := s.HandleMessage([]byte(`{"type":"input","action":"move_left"}`), clock.advance(250*time.Millisecond))
		require.Len(t, out, 1)
		if out[0].Type == protocol.MsgGameOver {
			return out[0]
		}
		require.Equal(t, protocol.MsgStateUpdate, out[0].Type)
	}
	t.Fatal("game never ended")
	return protocol.Outbound{}
}

func TestSessionGameOverIsRecordedOnce(t *testing.T) {
	saver := &fakeSaver{}
	s, _, clock := newTestSession(lethalConfig(), 0, saver)
	s.HandleMessage([]byte(`{"type":"handshake","name":"trin"}`), start)

	last := playUntilGameOver(t, s, clock)
	assert.True(t, last.State.IsGameOver)
	assert.Equal(t, 0, last.State.Player.HP)

	s.checkGameOver()
	out := s.HandleMessage([]byte(`{"type":"input","action":"shoot"}`), clock.advance(time.Second))
	require.Len(t, out, 1)
	assert.Equal(t, protocol.MsgGameOver, out[0].Type, "a finished game keeps answering game_over")
	assert.Equal(t, 0, out[0].State.ProjectilesCount)
	s.checkGameOver()

	results := saver.saved()
	require.Len(t, results, 1)
	assert.Equal(t, storage.EndGameOver, results[0].EndReason)
	assert.Equal(t, storage.SourceWebSocket, results[0].Source)
	assert.Equal(t, "trin", results[0].Player)
	assert.Equal(t, s.ID(), results[0].SessionID)
}

func TestSessionRestart(t *testing.T) {
	saver := &fakeSaver{}
	s, _, clock := newTestSession(lethalConfig(), 0, saver)

	playUntilGameOver(t, s, clock)
	s.checkGameOver()

	out := s.HandleMessage([]byte(`{"type":"restart"}`), clock.advance(time.Second))
	require.Len(t, out, 1)
	assert.Equal(t, protocol.MsgStateUpdate, out[0].Type)
	assert.False(t, out[0].State.IsGameOver)
	assert.Equal(t, 100, out[0].State.Player.HP)
	assert.EqualValues(t, 0, out[0].State.Tick)
	assert.Len(t, saver.saved(), 1, "the finished round was already recorded")

	// An abandoned round is recorded when restarting over it.
	s.HandleMessage([]byte(`{"type":"input","action":"shoot"}`), clock.advance(time.Second))
	s.HandleMessage([]byte(`{"type":"restart"}`), clock.advance(time.Second))
	results := saver.saved()
	require.Len(t, results, 2)
	assert.Equal(t, storage.EndRestart, results[1].EndReason)
}

func TestSessionFixedRate(t *testing.T) {
	s, _, _ := newTestSession(config.DefaultArenaConfig(), 20, nil)

	out := s.HandleMessage([]byte(`{"type":"input","action":"move_right"}`), start.Add(time.Second))
	assert.Empty(t, out, "fixed-rate inputs are answered by the next tick")
	assert.Zero(t, s.Snapshot().Tick)

	out = s.Tick(start.Add(250 * time.Millisecond))
	require.Len(t, out, 1)
	assert.Equal(t, protocol.MsgStateUpdate, out[0].Type)
	assert.Equal(t, 50.0, out[0].State.Player.X)
}

func TestSessionFixedRateGameOverPushedOnce(t *testing.T) {
	s, _, clock := newTestSession(lethalConfig(), 20, nil)

	var overs int
	for i := 0; i < 200; i++ {
		for _, out := range s.Tick(clock.advance(250 * time.Millisecond)) {
			if out.Type == protocol.MsgGameOver {
				overs++
			}
		}
	}
	assert.Equal(t, 1, overs)
}

func TestSessionRun(t *testing.T) {
	saver := &fakeSaver{}
	s, conn, clock := newTestSession(config.DefaultArenaConfig(), 0, saver)
	reads := make(chan []byte, 4)

	done := make(chan struct{})
	go func() {
		s.Run(context.Background(), reads)
		close(done)
	}()

	first := <-conn.sendCh
	assert.JSONEq(t, `{"type":"ack","message":"connected"}`, string(first))

	clock.advance(time.Second)
	reads <- []byte(`{"type":"input","action":"shoot"}`)
	var msg map[string]any
	require.NoError(t, json.Unmarshal(<-conn.sendCh, &msg))
	assert.Equal(t, protocol.MsgStateUpdate, msg["type"])

	close(reads)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after the reader closed")
	}

	results := saver.saved()
	require.Len(t, results, 1)
	assert.Equal(t, storage.EndDisconnect, results[0].EndReason)
}

func TestSessionRunShutdown(t *testing.T) {
	saver := &fakeSaver{}
	s, conn, _ := newTestSession(config.DefaultArenaConfig(), 0, saver)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.Run(ctx, make(chan []byte))
		close(done)
	}()
	<-conn.sendCh

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Empty(t, saver.saved(), "a round that never ticked is not recorded")
}

func TestSessionRunClosedDuringShutdown(t *testing.T) {
	saver := &fakeSaver{}
	s, conn, clock := newTestSession(config.DefaultArenaConfig(), 0, saver)
	s.HandleMessage([]byte(`{"type":"input","action":"jump"}`), clock.advance(100*time.Millisecond))

	// Shutdown cancels the context and then closes the socket, so the
	// reader may report the close before Run sees the cancellation.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	reads := make(chan []byte)
	close(reads)

	s.Run(ctx, reads)
	<-conn.sendCh

	results := saver.saved()
	require.Len(t, results, 1)
	assert.Equal(t, storage.EndShutdown, results[0].EndReason)
}

func TestSessionRunStopsOnWriteError(t *testing.T) {
	s, conn, _ := newTestSession(config.DefaultArenaConfig(), 0, nil)
	conn.failing = true

	done := make(chan struct{})
	go func() {
		s.Run(context.Background(), make(chan []byte))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run should stop when the first write fails")
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	a, connA, _ := newTestSession(config.DefaultArenaConfig(), 0, nil)
	b, connB, _ := newTestSession(config.DefaultArenaConfig(), 0, nil)

	r.Register(a)
	r.Register(b)
	assert.Equal(t, 2, r.Count())

	got, ok := r.Get(a.ID())
	require.True(t, ok)
	assert.Same(t, a, got)

	r.CloseAll()
	assert.True(t, connA.closed)
	assert.True(t, connB.closed)

	r.Unregister(a.ID())
	_, ok = r.Get(a.ID())
	assert.False(t, ok)
	assert.Equal(t, 1, r.Count())
}
