package usbhid

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/karalabe/hid"

	"github.com/mds-protocol/mds-go/pkg/backend"
	"github.com/mds-protocol/mds-go/pkg/wire"
)

// ErrDeviceNotFound indicates no attached HID device matched.
var ErrDeviceNotFound = errors.New("no matching HID device found")

// rawDevice is the slice of the hidapi device surface the backend
// uses. *hid.Device satisfies it; tests substitute fakes.
type rawDevice interface {
	Read(b []byte) (int, error)
	Write(b []byte) (int, error)
	GetFeatureReport(b []byte) (int, error)
	SendFeatureReport(b []byte) (int, error)
	Close() error
}

// DeviceInfo describes one enumerated HID device.
type DeviceInfo struct {
	Path         string
	VendorID     uint16
	ProductID    uint16
	Serial       string
	Manufacturer string
	Product      string
}

// Enumerate lists attached HID devices matching the vendor and product
// IDs; zero matches any.
func Enumerate(vendorID, productID uint16) []DeviceInfo {
	var out []DeviceInfo
	infos, _ := hid.Enumerate(vendorID, productID)
	for _, info := range infos {
		out = append(out, DeviceInfo{
			Path:         info.Path,
			VendorID:     info.VendorID,
			ProductID:    info.ProductID,
			Serial:       info.Serial,
			Manufacturer: info.Manufacturer,
			Product:      info.Product,
		})
	}
	return out
}

// HIDBackend bridges the MDS protocol to a USB HID device.
type HIDBackend struct {
	dev    rawDevice
	router *backend.Router

	// hidapi handles are not safe for concurrent control transfers.
	mu sync.Mutex
}

// Open opens the first device matching vendor and product ID, and
// serial number when non-empty.
func Open(vendorID, productID uint16, serial string) (*HIDBackend, error) {
	infos, _ := hid.Enumerate(vendorID, productID)
	for _, info := range infos {
		if serial != "" && info.Serial != serial {
			continue
		}
		dev, err := info.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %04x:%04x: %w", vendorID, productID, err)
		}
		return newBackend(dev), nil
	}
	return nil, ErrDeviceNotFound
}

// OpenPath opens the device with the given platform path, as returned
// by Enumerate.
func OpenPath(path string) (*HIDBackend, error) {
	infos, _ := hid.Enumerate(0, 0)
	for _, info := range infos {
		if info.Path != path {
			continue
		}
		dev, err := info.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		return newBackend(dev), nil
	}
	return nil, ErrDeviceNotFound
}

func newBackend(dev rawDevice) *HIDBackend {
	b := &HIDBackend{
		dev:    dev,
		router: backend.NewRouter(),
	}
	go b.readLoop()
	return b
}

// Read reads from the given channel. Stream data is served from the
// input report queue with the usual timeout semantics; configuration
// channels are synchronous feature report reads and ignore timeout.
func (b *HIDBackend) Read(ch wire.Channel, p []byte, timeout time.Duration) (int, error) {
	if ch == wire.ChannelStreamData {
		return b.router.Read(ch, p, timeout)
	}
	if b.router.Closed() {
		return 0, backend.ErrClosed
	}

	// Feature report buffers carry the report ID in byte 0, both
	// directions. That byte is the channel, not payload.
	buf := make([]byte, 1+len(p))
	buf[0] = byte(ch)

	b.mu.Lock()
	n, err := b.dev.GetFeatureReport(buf)
	b.mu.Unlock()
	if err != nil {
		return 0, fmt.Errorf("get feature report %v: %w", ch, err)
	}
	if n < 1 {
		return 0, nil
	}
	return copy(p, buf[1:n]), nil
}

// Write sends p on the given channel as a feature report.
func (b *HIDBackend) Write(ch wire.Channel, p []byte) (int, error) {
	if b.router.Closed() {
		return 0, backend.ErrClosed
	}

	buf := make([]byte, 1+len(p))
	buf[0] = byte(ch)
	copy(buf[1:], p)

	b.mu.Lock()
	_, err := b.dev.SendFeatureReport(buf)
	b.mu.Unlock()
	if err != nil {
		return 0, fmt.Errorf("send feature report %v: %w", ch, err)
	}
	return len(p), nil
}

// Close closes the device and releases blocked readers.
func (b *HIDBackend) Close() error {
	if b.router.Closed() {
		return nil
	}
	b.router.Close()
	return b.dev.Close()
}

// readLoop drains input reports. Byte 0 of a numbered input report is
// its report ID; only stream data reports are routed, anything else is
// ignored.
func (b *HIDBackend) readLoop() {
	buf := make([]byte, 1+wire.MaxChunkDataLen)
	for {
		n, err := b.dev.Read(buf)
		if err != nil {
			b.router.Close()
			return
		}
		if n < 1 || buf[0] != byte(wire.ChannelStreamData) {
			continue
		}
		b.router.Push(wire.ChannelStreamData, buf[1:n])
	}
}

// Compile-time interface satisfaction check.
var _ backend.Backend = (*HIDBackend)(nil)
