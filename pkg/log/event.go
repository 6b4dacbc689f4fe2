package log

import "time"

// Event is one MDS protocol event. CBOR encoding uses integer keys for
// compactness; exactly one of the payload pointers is set, selected by
// Category.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID uniquely identifies the session (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Direction indicates data flow relative to the host.
	Direction Direction `cbor:"3,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"4,keyasint"`

	// DeviceID is the device identifier, when known.
	DeviceID string `cbor:"5,keyasint,omitempty"`

	// Type-specific payload (one of these is set).
	Packet      *PacketEvent      `cbor:"6,keyasint,omitempty"`
	StreamState *StreamStateEvent `cbor:"7,keyasint,omitempty"`
	ConfigRead  *ConfigReadEvent  `cbor:"8,keyasint,omitempty"`
	Upload      *UploadEvent      `cbor:"9,keyasint,omitempty"`
	Error       *ErrorEvent       `cbor:"10,keyasint,omitempty"`
}

// Direction indicates the direction of data flow.
type Direction uint8

const (
	// DirectionIn indicates data received from the device.
	DirectionIn Direction = 0
	// DirectionOut indicates data sent to the device or the cloud.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Category classifies an event.
type Category uint8

const (
	// CategoryPacket is a decoded stream packet (including gaps).
	CategoryPacket Category = 0
	// CategoryStreamState is a streaming enable/disable transition.
	CategoryStreamState Category = 1
	// CategoryConfigRead is a completed device configuration read.
	CategoryConfigRead Category = 2
	// CategoryUpload is a chunk upload attempt.
	CategoryUpload Category = 3
	// CategoryError is a protocol or I/O error.
	CategoryError Category = 4
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryPacket:
		return "PACKET"
	case CategoryStreamState:
		return "STREAM_STATE"
	case CategoryConfigRead:
		return "CONFIG_READ"
	case CategoryUpload:
		return "UPLOAD"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// PacketEvent describes one decoded stream packet.
type PacketEvent struct {
	// Sequence is the packet's 5-bit sequence counter.
	Sequence uint8 `cbor:"1,keyasint"`

	// Expected is the sequence value the tracker predicted.
	Expected uint8 `cbor:"2,keyasint"`

	// Gap is true when Sequence != Expected (drop or duplicate).
	Gap bool `cbor:"3,keyasint,omitempty"`

	// DataLen is the chunk payload length in bytes.
	DataLen int `cbor:"4,keyasint"`
}

// StreamStateEvent describes a streaming state transition.
type StreamStateEvent struct {
	// Enabled is the new streaming state.
	Enabled bool `cbor:"1,keyasint"`
}

// ConfigReadEvent describes a completed device configuration read.
type ConfigReadEvent struct {
	// Features is the supported-features bitmask.
	Features uint32 `cbor:"1,keyasint"`

	// DataURI is the chunk upload endpoint.
	DataURI string `cbor:"2,keyasint,omitempty"`
}

// UploadEvent describes one chunk upload attempt.
type UploadEvent struct {
	// URI the chunk was posted to.
	URI string `cbor:"1,keyasint"`

	// Bytes is the chunk size.
	Bytes int `cbor:"2,keyasint"`

	// Err is the upload error message, empty on success.
	Err string `cbor:"3,keyasint,omitempty"`
}

// ErrorEvent describes a protocol or I/O error.
type ErrorEvent struct {
	// Op is the operation that failed, e.g. "read_device_config".
	Op string `cbor:"1,keyasint"`

	// Message is the error text.
	Message string `cbor:"2,keyasint"`
}
