package backend

import (
	"errors"
	"time"

	"github.com/mds-protocol/mds-go/pkg/wire"
)

// NoTimeout makes Read block until data arrives or the backend fails.
const NoTimeout time.Duration = -1

// ErrTimeout is returned by Read when no data arrived within the
// timeout. It is an expected, non-fatal condition: callers poll in a
// loop and must never treat it as a hard I/O failure. Backends must
// return it (or wrap it) for timeouts and nothing else.
var ErrTimeout = errors.New("backend read timed out")

// ErrClosed is returned by operations on a backend that has been
// closed.
var ErrClosed = errors.New("backend is closed")

// Backend moves channel-tagged buffers between the protocol engine and
// a transport.
//
// Implementations decide how a wire.Channel maps onto the transport
// (HID report IDs, serial framing bytes, GATT characteristics); the
// mapping must stay consistent for the backend's lifetime.
type Backend interface {
	// Read reads one buffer from the given channel into p and returns
	// the number of bytes read. A zero timeout polls, a positive
	// timeout bounds the blocking wait, and NoTimeout (or any negative
	// value) blocks until data arrives. Returns ErrTimeout when the
	// wait elapses without data.
	Read(ch wire.Channel, p []byte, timeout time.Duration) (int, error)

	// Write writes p to the given channel and returns the number of
	// bytes written.
	Write(ch wire.Channel, p []byte) (int, error)

	// Close releases the transport. Further Reads and Writes return
	// ErrClosed.
	Close() error
}
