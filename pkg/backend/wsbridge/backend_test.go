package wsbridge

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mds-protocol/mds-go/pkg/backend"
	"github.com/mds-protocol/mds-go/pkg/wire"
)

// startBridge runs a WebSocket server that echoes device behavior:
// every received message is passed to handle, which may return reply
// messages to send back.
func startBridge(t *testing.T, handle func(msg []byte) [][]byte) string {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			for _, reply := range handle(msg) {
				if err := conn.WriteMessage(websocket.BinaryMessage, reply); err != nil {
					return
				}
			}
		}
	}))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWriteAndReadRoundTrip(t *testing.T) {
	// The fake bridge answers a stream-control write with one stream
	// data message.
	url := startBridge(t, func(msg []byte) [][]byte {
		if wire.Channel(msg[0]) == wire.ChannelStreamControl && msg[1] == wire.StreamModeEnabled {
			return [][]byte{{byte(wire.ChannelStreamData), 0x00, 0x41, 0x42}}
		}
		return nil
	})

	b, err := Dial(url)
	require.NoError(t, err)
	defer b.Close()

	n, err := b.Write(wire.ChannelStreamControl, []byte{wire.StreamModeEnabled})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	p := make([]byte, 64)
	n, err = b.Read(wire.ChannelStreamData, p, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x41, 0x42}, p[:n])
}

func TestReadTimeout(t *testing.T) {
	url := startBridge(t, func([]byte) [][]byte { return nil })

	b, err := Dial(url)
	require.NoError(t, err)
	defer b.Close()

	p := make([]byte, 64)
	_, err = b.Read(wire.ChannelStreamData, p, 20*time.Millisecond)
	assert.ErrorIs(t, err, backend.ErrTimeout)
}

func TestCloseIsIdempotent(t *testing.T) {
	url := startBridge(t, func([]byte) [][]byte { return nil })

	b, err := Dial(url)
	require.NoError(t, err)

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())

	_, err = b.Write(wire.ChannelStreamControl, []byte{0x00})
	assert.ErrorIs(t, err, backend.ErrClosed)
}

func TestDialFailure(t *testing.T) {
	_, err := Dial("ws://127.0.0.1:1/nope")
	require.Error(t, err)
}
