package serialport

import (
	"fmt"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/mds-protocol/mds-go/pkg/backend"
	"github.com/mds-protocol/mds-go/pkg/wire"
)

// DefaultBaudRate is used when Config.BaudRate is zero.
const DefaultBaudRate = 115200

// Config describes the serial port to open.
type Config struct {
	// Device is the port path, e.g. "/dev/ttyACM0" or "COM3".
	Device string

	// BaudRate defaults to DefaultBaudRate. USB CDC ports ignore it.
	BaudRate int
}

// SerialBackend bridges the MDS protocol to a serial port.
type SerialBackend struct {
	port   serial.Port
	router *backend.Router

	writeMu sync.Mutex
	decoder *Decoder
}

// Open opens the serial port and starts the frame reader.
func Open(cfg Config) (*SerialBackend, error) {
	if cfg.Device == "" {
		return nil, fmt.Errorf("serial device path is empty")
	}
	baud := cfg.BaudRate
	if baud == 0 {
		baud = DefaultBaudRate
	}

	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(cfg.Device, mode)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", cfg.Device, err)
	}

	b := &SerialBackend{
		port:    port,
		router:  backend.NewRouter(),
		decoder: NewDecoder(),
	}
	go b.readLoop()
	return b, nil
}

// Read reads one frame payload from the given channel.
func (b *SerialBackend) Read(ch wire.Channel, p []byte, timeout time.Duration) (int, error) {
	return b.router.Read(ch, p, timeout)
}

// Write sends p as one frame on the given channel.
func (b *SerialBackend) Write(ch wire.Channel, p []byte) (int, error) {
	if b.router.Closed() {
		return 0, backend.ErrClosed
	}
	frame, err := EncodeFrame(ch, p)
	if err != nil {
		return 0, err
	}

	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	if _, err := b.port.Write(frame); err != nil {
		return 0, fmt.Errorf("writing frame: %w", err)
	}
	return len(p), nil
}

// Close closes the port and releases blocked readers.
func (b *SerialBackend) Close() error {
	if b.router.Closed() {
		return nil
	}
	b.router.Close()
	return b.port.Close()
}

// ChecksumErrors returns the number of frames dropped for checksum
// mismatches since the port was opened.
func (b *SerialBackend) ChecksumErrors() uint64 {
	return b.decoder.ChecksumErrors()
}

func (b *SerialBackend) readLoop() {
	buf := make([]byte, 512)
	for {
		n, err := b.port.Read(buf)
		if err != nil {
			// Port closed or unplugged; release blocked readers.
			b.router.Close()
			return
		}
		for _, f := range b.decoder.Feed(buf[:n]) {
			b.router.Push(f.Channel, f.Payload)
		}
	}
}

// Compile-time interface satisfaction check.
var _ backend.Backend = (*SerialBackend)(nil)
