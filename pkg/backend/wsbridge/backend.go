package wsbridge

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mds-protocol/mds-go/pkg/backend"
	"github.com/mds-protocol/mds-go/pkg/wire"
)

// DefaultDialTimeout bounds the WebSocket handshake.
const DefaultDialTimeout = 10 * time.Second

// WSBackend bridges the MDS protocol to a WebSocket endpoint.
type WSBackend struct {
	conn   *websocket.Conn
	router *backend.Router

	writeMu sync.Mutex
}

// Dial connects to the bridge at url (ws:// or wss://).
func Dial(url string) (*WSBackend, error) {
	dialer := websocket.Dialer{HandshakeTimeout: DefaultDialTimeout}
	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", url, err)
	}
	return NewFromConn(conn), nil
}

// NewFromConn wraps an established WebSocket connection. The backend
// takes ownership of conn.
func NewFromConn(conn *websocket.Conn) *WSBackend {
	b := &WSBackend{
		conn:   conn,
		router: backend.NewRouter(),
	}
	go b.readLoop()
	return b
}

// Read reads one message payload from the given channel.
func (b *WSBackend) Read(ch wire.Channel, p []byte, timeout time.Duration) (int, error) {
	return b.router.Read(ch, p, timeout)
}

// Write sends p as one binary message on the given channel.
func (b *WSBackend) Write(ch wire.Channel, p []byte) (int, error) {
	if b.router.Closed() {
		return 0, backend.ErrClosed
	}

	msg := make([]byte, 1+len(p))
	msg[0] = byte(ch)
	copy(msg[1:], p)

	b.writeMu.Lock()
	err := b.conn.WriteMessage(websocket.BinaryMessage, msg)
	b.writeMu.Unlock()
	if err != nil {
		return 0, fmt.Errorf("writing message: %w", err)
	}
	return len(p), nil
}

// Close closes the connection and releases blocked readers.
func (b *WSBackend) Close() error {
	if b.router.Closed() {
		return nil
	}
	b.router.Close()
	return b.conn.Close()
}

func (b *WSBackend) readLoop() {
	for {
		kind, msg, err := b.conn.ReadMessage()
		if err != nil {
			b.router.Close()
			return
		}
		if kind != websocket.BinaryMessage || len(msg) < 1 {
			continue
		}
		b.router.Push(wire.Channel(msg[0]), msg[1:])
	}
}

// Compile-time interface satisfaction check.
var _ backend.Backend = (*WSBackend)(nil)
