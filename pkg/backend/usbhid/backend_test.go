package usbhid

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mds-protocol/mds-go/pkg/backend"
	"github.com/mds-protocol/mds-go/pkg/wire"
)

// fakeDevice scripts feature reports and streams input reports from a
// channel until it is closed.
type fakeDevice struct {
	features map[byte][]byte // report ID -> payload served on get
	sent     [][]byte        // feature reports received via send
	input    chan []byte
	closed   chan struct{}
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		features: make(map[byte][]byte),
		input:    make(chan []byte, 8),
		closed:   make(chan struct{}),
	}
}

func (d *fakeDevice) Read(b []byte) (int, error) {
	select {
	case report, ok := <-d.input:
		if !ok {
			return 0, io.EOF
		}
		return copy(b, report), nil
	case <-d.closed:
		return 0, io.EOF
	}
}

func (d *fakeDevice) Write(b []byte) (int, error) {
	return len(b), nil
}

func (d *fakeDevice) GetFeatureReport(b []byte) (int, error) {
	payload, ok := d.features[b[0]]
	if !ok {
		return 0, errors.New("unsupported report")
	}
	n := copy(b[1:], payload)
	return n + 1, nil
}

func (d *fakeDevice) SendFeatureReport(b []byte) (int, error) {
	report := make([]byte, len(b))
	copy(report, b)
	d.sent = append(d.sent, report)
	return len(b), nil
}

func (d *fakeDevice) Close() error {
	select {
	case <-d.closed:
	default:
		close(d.closed)
	}
	return nil
}

func TestFeatureReportRead(t *testing.T) {
	dev := newFakeDevice()
	dev.features[byte(wire.ChannelDeviceIdentifier)] = []byte("DEVICE-01\x00")

	b := newBackend(dev)
	defer b.Close()

	p := make([]byte, wire.MaxDeviceIDLen)
	n, err := b.Read(wire.ChannelDeviceIdentifier, p, backend.NoTimeout)
	require.NoError(t, err)
	assert.Equal(t, "DEVICE-01", wire.DecodeConfigString(p[:n], wire.MaxDeviceIDLen))
}

func TestStreamControlWrite(t *testing.T) {
	dev := newFakeDevice()
	b := newBackend(dev)
	defer b.Close()

	n, err := b.Write(wire.ChannelStreamControl, []byte{wire.StreamModeEnabled})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.Len(t, dev.sent, 1)
	assert.Equal(t, []byte{byte(wire.ChannelStreamControl), wire.StreamModeEnabled}, dev.sent[0])
}

func TestStreamDataRouting(t *testing.T) {
	dev := newFakeDevice()
	b := newBackend(dev)
	defer b.Close()

	// Input report: report ID then sequence byte then payload.
	dev.input <- []byte{byte(wire.ChannelStreamData), 0x00, 0x41, 0x42}

	p := make([]byte, 64)
	n, err := b.Read(wire.ChannelStreamData, p, time.Second)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x41, 0x42}, p[:n])
}

func TestStreamDataIgnoresForeignReports(t *testing.T) {
	dev := newFakeDevice()
	b := newBackend(dev)
	defer b.Close()

	dev.input <- []byte{0x7F, 0xAA}                                // unknown report ID
	dev.input <- []byte{byte(wire.ChannelStreamData), 0x01, 0xBB} // real stream report

	p := make([]byte, 64)
	n, err := b.Read(wire.ChannelStreamData, p, time.Second)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0xBB}, p[:n])
}

func TestStreamDataTimeout(t *testing.T) {
	dev := newFakeDevice()
	b := newBackend(dev)
	defer b.Close()

	p := make([]byte, 64)
	_, err := b.Read(wire.ChannelStreamData, p, 10*time.Millisecond)
	require.ErrorIs(t, err, backend.ErrTimeout)
}

func TestCloseReleasesReaders(t *testing.T) {
	dev := newFakeDevice()
	b := newBackend(dev)

	require.NoError(t, b.Close())
	require.NoError(t, b.Close()) // idempotent

	p := make([]byte, 64)
	_, err := b.Read(wire.ChannelStreamData, p, backend.NoTimeout)
	assert.ErrorIs(t, err, backend.ErrClosed)
	_, err = b.Read(wire.ChannelDeviceIdentifier, p, backend.NoTimeout)
	assert.ErrorIs(t, err, backend.ErrClosed)
	_, err = b.Write(wire.ChannelStreamControl, []byte{0x01})
	assert.ErrorIs(t, err, backend.ErrClosed)
}

func TestDeviceDisconnectClosesRouter(t *testing.T) {
	dev := newFakeDevice()
	b := newBackend(dev)
	defer b.Close()

	close(dev.input) // device gone: reader loop sees EOF

	p := make([]byte, 64)
	_, err := b.Read(wire.ChannelStreamData, p, time.Second)
	assert.ErrorIs(t, err, backend.ErrClosed)
}
