package backend

import (
	"sync"
	"time"

	"github.com/mds-protocol/mds-go/pkg/wire"
)

// DefaultQueueDepth is the per-channel buffer depth a Router uses when
// created with NewRouter.
const DefaultQueueDepth = 32

// Router distributes buffers received by a transport's read loop onto
// per-channel queues and serves the Backend Read contract from them.
// Backends that drain their transport with a single goroutine (HID
// input reports, serial frames, WebSocket messages) embed a Router and
// delegate Read to it.
type Router struct {
	mu     sync.Mutex
	depth  int
	queues map[wire.Channel]chan []byte
	done   chan struct{}
	once   sync.Once
}

// NewRouter creates a Router with DefaultQueueDepth per channel.
func NewRouter() *Router {
	return &Router{
		depth:  DefaultQueueDepth,
		queues: make(map[wire.Channel]chan []byte),
		done:   make(chan struct{}),
	}
}

// Push delivers one received buffer to the channel's queue. When the
// queue is full the oldest entry is dropped so a stalled consumer sees
// recent data rather than stale data. Push copies buf.
func (r *Router) Push(ch wire.Channel, buf []byte) {
	data := make([]byte, len(buf))
	copy(data, buf)

	q := r.queue(ch)
	for {
		select {
		case q <- data:
			return
		default:
		}
		select {
		case <-q: // drop oldest
		default:
		}
	}
}

// Read implements the Backend Read semantics against the channel's
// queue: zero timeout polls, negative blocks, otherwise bounded wait.
// Returns ErrTimeout when no buffer arrives in time and ErrClosed
// after Close.
func (r *Router) Read(ch wire.Channel, p []byte, timeout time.Duration) (int, error) {
	q := r.queue(ch)

	// Buffers already queued are served even after Close, so a reader
	// does not lose data the transport delivered before shutdown.
	select {
	case data := <-q:
		return copy(p, data), nil
	default:
	}

	select {
	case <-r.done:
		return 0, ErrClosed
	default:
	}

	if timeout == 0 {
		return 0, ErrTimeout
	}

	var timer <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		timer = t.C
	}

	select {
	case data := <-q:
		return copy(p, data), nil
	case <-r.done:
		return 0, ErrClosed
	case <-timer:
		return 0, ErrTimeout
	}
}

// Close releases all blocked readers. Idempotent.
func (r *Router) Close() {
	r.once.Do(func() {
		close(r.done)
	})
}

// Closed reports whether Close has been called.
func (r *Router) Closed() bool {
	select {
	case <-r.done:
		return true
	default:
		return false
	}
}

func (r *Router) queue(ch wire.Channel) chan []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.queues[ch]
	if !ok {
		q = make(chan []byte, r.depth)
		r.queues[ch] = q
	}
	return q
}
