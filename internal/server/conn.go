package server

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is the write side of a client connection.
type Conn interface {
	Send(b []byte) error
	Close() error
}

// wsConn adapts a gorilla connection. Send is only called from the owning
// session goroutine; pings go through WriteControl, which gorilla allows
// concurrently with other writers.
type wsConn struct {
	c         *websocket.Conn
	writeWait time.Duration
	closeOnce sync.Once
}

func newWSConn(c *websocket.Conn, writeWait time.Duration) *wsConn {
	return &wsConn{c: c, writeWait: writeWait}
}

func (w *wsConn) Send(b []byte) error {
	_ = w.c.SetWriteDeadline(time.Now().Add(w.writeWait))
	return w.c.WriteMessage(websocket.TextMessage, b)
}

func (w *wsConn) Ping() error {
	return w.c.WriteControl(websocket.PingMessage, nil, time.Now().Add(w.writeWait))
}

func (w *wsConn) Close() error {
	var err error
	w.closeOnce.Do(func() {
		_ = w.c.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(w.writeWait),
		)
		err = w.c.Close()
	})
	return err
}
