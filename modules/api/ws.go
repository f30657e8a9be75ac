package api

import (
	"context"
	"sync"

	"github.com/gofiber/contrib/websocket"
)

// wsConn adapts a fiber websocket connection to the realtime connection
// contract. Broadcasts write from other goroutines, and the underlying
// connection does not allow concurrent writers, so writes are serialized
// with a mutex.
type wsConn struct {
	conn *websocket.Conn

	writeMu sync.Mutex
}

func newWSConn(conn *websocket.Conn) *wsConn {
	return &wsConn{conn: conn}
}

func (w *wsConn) WriteJSON(v any) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	return w.conn.WriteJSON(v)
}

func (w *wsConn) ReadJSON(v any) error {
	return w.conn.ReadJSON(v)
}

func (w *wsConn) Close() error {
	return w.conn.Close()
}

// handleWebSocket drives a realtime session over the upgraded connection.
// It blocks until the client disconnects.
func (m *APIModule) handleWebSocket(c *websocket.Conn) {
	defer c.Close()
	m.realtime.Handle(context.Background(), newWSConn(c))
}
