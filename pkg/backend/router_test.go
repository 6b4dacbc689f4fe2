package backend

import (
	"errors"
	"testing"
	"time"

	"github.com/mds-protocol/mds-go/pkg/wire"
)

func TestRouterDeliversPushedBuffer(t *testing.T) {
	r := NewRouter()
	defer r.Close()

	r.Push(wire.ChannelStreamData, []byte{0x01, 0x02})

	p := make([]byte, 64)
	n, err := r.Read(wire.ChannelStreamData, p, 0)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != 2 || p[0] != 0x01 || p[1] != 0x02 {
		t.Errorf("Read = %d bytes %x, want 2 bytes 0102", n, p[:n])
	}
}

func TestRouterChannelsAreIndependent(t *testing.T) {
	r := NewRouter()
	defer r.Close()

	r.Push(wire.ChannelDeviceIdentifier, []byte("DEV"))

	p := make([]byte, 8)
	if _, err := r.Read(wire.ChannelStreamData, p, 0); !errors.Is(err, ErrTimeout) {
		t.Errorf("Read on empty channel = %v, want ErrTimeout", err)
	}
	n, err := r.Read(wire.ChannelDeviceIdentifier, p, 0)
	if err != nil || string(p[:n]) != "DEV" {
		t.Errorf("Read = %q, %v", p[:n], err)
	}
}

func TestRouterPollTimeout(t *testing.T) {
	r := NewRouter()
	defer r.Close()

	p := make([]byte, 8)
	if _, err := r.Read(wire.ChannelStreamData, p, 0); !errors.Is(err, ErrTimeout) {
		t.Errorf("poll on empty queue = %v, want ErrTimeout", err)
	}
	if _, err := r.Read(wire.ChannelStreamData, p, 10*time.Millisecond); !errors.Is(err, ErrTimeout) {
		t.Errorf("bounded wait on empty queue = %v, want ErrTimeout", err)
	}
}

func TestRouterBlockingReadWakesOnPush(t *testing.T) {
	r := NewRouter()
	defer r.Close()

	go func() {
		time.Sleep(10 * time.Millisecond)
		r.Push(wire.ChannelStreamData, []byte{0xAB})
	}()

	p := make([]byte, 8)
	n, err := r.Read(wire.ChannelStreamData, p, NoTimeout)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != 1 || p[0] != 0xAB {
		t.Errorf("Read = %x, want ab", p[:n])
	}
}

func TestRouterDropsOldestWhenFull(t *testing.T) {
	r := NewRouter()
	defer r.Close()

	for i := 0; i <= DefaultQueueDepth; i++ {
		r.Push(wire.ChannelStreamData, []byte{byte(i)})
	}

	p := make([]byte, 1)
	n, err := r.Read(wire.ChannelStreamData, p, 0)
	if err != nil || n != 1 {
		t.Fatalf("Read = %d, %v", n, err)
	}
	if p[0] != 1 {
		t.Errorf("first buffer = %d, want 1 (oldest dropped)", p[0])
	}
}

func TestRouterCloseUnblocksAndDrains(t *testing.T) {
	r := NewRouter()
	r.Push(wire.ChannelStreamData, []byte{0x01})
	r.Close()
	r.Close() // idempotent

	// Data queued before Close is still served.
	p := make([]byte, 8)
	n, err := r.Read(wire.ChannelStreamData, p, 0)
	if err != nil || n != 1 {
		t.Fatalf("Read after Close = %d, %v", n, err)
	}

	// Then readers see ErrClosed.
	if _, err := r.Read(wire.ChannelStreamData, p, NoTimeout); !errors.Is(err, ErrClosed) {
		t.Errorf("Read on closed empty router = %v, want ErrClosed", err)
	}
	if !r.Closed() {
		t.Error("Closed() = false after Close")
	}
}
