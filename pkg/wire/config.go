package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Configuration field bounds, from the reference report descriptors.
const (
	// MaxDeviceIDLen bounds the device identifier string.
	MaxDeviceIDLen = 64

	// MaxURILen bounds the data upload URI.
	MaxURILen = 128

	// MaxAuthLen bounds the authorization header string.
	MaxAuthLen = 128
)

// DeviceConfig is a snapshot of the configuration a device exposes on
// its feature channels. It is immutable once read; callers keep their
// own copy.
type DeviceConfig struct {
	// SupportedFeatures is the feature bitmask (currently always 0).
	SupportedFeatures uint32

	// DeviceID identifies the device, e.g. for tagging uploads.
	DeviceID string

	// DataURI is the endpoint chunks are uploaded to.
	DataURI string

	// Authorization is the opaque header string passed to uploaders,
	// conventionally "HeaderName:HeaderValue".
	Authorization string
}

// DecodeSupportedFeatures parses the 4-byte little-endian feature
// bitmask. Buffers shorter than 4 bytes are a decode failure.
func DecodeSupportedFeatures(buf []byte) (uint32, error) {
	if len(buf) < 4 {
		return 0, fmt.Errorf("supported features: need 4 bytes, got %d", len(buf))
	}
	return binary.LittleEndian.Uint32(buf), nil
}

// DecodeConfigString parses a text configuration field. The result is
// cut at the first NUL byte and truncated to maxLen-1 bytes, matching
// the fixed-size NUL-terminated buffers of the reference devices.
func DecodeConfigString(buf []byte, maxLen int) string {
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		buf = buf[:i]
	}
	if maxLen > 0 && len(buf) > maxLen-1 {
		buf = buf[:maxLen-1]
	}
	return string(buf)
}
