package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mds-protocol/mds-go/pkg/backend"
	"github.com/mds-protocol/mds-go/pkg/log"
	"github.com/mds-protocol/mds-go/pkg/wire"
)

// Session errors.
var (
	// ErrNoBackend indicates an operation that needs a backend was
	// called on a session created without one. Distinct from backend
	// I/O failures.
	ErrNoBackend = errors.New("session has no backend")

	// ErrClosed indicates the session has been closed.
	ErrClosed = errors.New("session is closed")

	// ErrNilConfig indicates a processing call without a device
	// configuration.
	ErrNilConfig = errors.New("device config is nil")
)

// UploadFunc uploads one chunk to the cloud. It receives the data URI
// and authorization header from the device configuration and the raw
// chunk payload. State an uploader needs (HTTP client, statistics)
// travels in the closure; the session never interprets it.
type UploadFunc func(uri, authHeader string, chunk []byte) error

// Session drives the MDS protocol over an optional backend.
//
// The zero value is not usable; create sessions with New. Sessions are
// not safe for concurrent use.
type Session struct {
	id        string
	backend   backend.Backend // nil for externally-driven I/O
	tracker   sequenceTracker
	streaming bool
	upload    UploadFunc
	logger    log.Logger
	deviceID  string
	closed    bool
}

// New creates a session. b may be nil when the caller drives all I/O
// itself through ProcessFromBytes; backend-dependent operations then
// fail with ErrNoBackend. The session takes exclusive ownership of a
// non-nil backend and closes it in Close.
func New(b backend.Backend) *Session {
	return &Session{
		id:      uuid.NewString(),
		backend: b,
		tracker: newSequenceTracker(),
		logger:  log.NoopLogger{},
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// SetLogger configures protocol event logging. Pass nil to disable.
func (s *Session) SetLogger(l log.Logger) {
	if l == nil {
		l = log.NoopLogger{}
	}
	s.logger = l
}

// SetUploadCallback registers fn to be invoked once per decoded
// packet. It replaces any previously registered callback; pass nil to
// clear. With no callback registered, processing succeeds without
// uploading.
func (s *Session) SetUploadCallback(fn UploadFunc) {
	s.upload = fn
}

// Streaming reports whether streaming is currently enabled.
func (s *Session) Streaming() bool {
	return s.streaming
}

// LastSequence returns the last observed sequence number. Before any
// packet has been observed it returns wire.SequenceMax, the tracker's
// sentinel.
func (s *Session) LastSequence() uint8 {
	return s.tracker.last
}

// ReadDeviceConfig reads the full device configuration: supported
// features, device identifier, data URI, and authorization, in that
// order. The whole operation fails on the first read failure; no
// partial configuration is returned.
func (s *Session) ReadDeviceConfig() (*wire.DeviceConfig, error) {
	features, err := s.SupportedFeatures()
	if err != nil {
		return nil, err
	}
	deviceID, err := s.DeviceIdentifier()
	if err != nil {
		return nil, err
	}
	uri, err := s.DataURI()
	if err != nil {
		return nil, err
	}
	auth, err := s.Authorization()
	if err != nil {
		return nil, err
	}

	cfg := &wire.DeviceConfig{
		SupportedFeatures: features,
		DeviceID:          deviceID,
		DataURI:           uri,
		Authorization:     auth,
	}
	s.deviceID = deviceID

	s.logger.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: s.id,
		Direction: log.DirectionIn,
		Category:  log.CategoryConfigRead,
		DeviceID:  deviceID,
		ConfigRead: &log.ConfigReadEvent{
			Features: features,
			DataURI:  uri,
		},
	})
	return cfg, nil
}

// SupportedFeatures reads the feature bitmask from the device.
func (s *Session) SupportedFeatures() (uint32, error) {
	buf := make([]byte, 4)
	n, err := s.readChannel(wire.ChannelSupportedFeatures, buf)
	if err != nil {
		return 0, err
	}
	return wire.DecodeSupportedFeatures(buf[:n])
}

// DeviceIdentifier reads the device identifier string.
func (s *Session) DeviceIdentifier() (string, error) {
	return s.readString(wire.ChannelDeviceIdentifier, wire.MaxDeviceIDLen)
}

// DataURI reads the chunk upload URI.
func (s *Session) DataURI() (string, error) {
	return s.readString(wire.ChannelDataURI, wire.MaxURILen)
}

// Authorization reads the authorization header string.
func (s *Session) Authorization() (string, error) {
	return s.readString(wire.ChannelAuthorization, wire.MaxAuthLen)
}

// EnableStreaming sends the stream-enable control byte and marks the
// session as streaming. Calling it again while already streaming
// simply re-sends the control byte.
func (s *Session) EnableStreaming() error {
	return s.setStreaming(true)
}

// DisableStreaming sends the stream-disable control byte and clears
// the streaming flag.
func (s *Session) DisableStreaming() error {
	return s.setStreaming(false)
}

// ProcessFromBackend reads one stream packet from the backend and runs
// it through the processing pipeline: decode, sequence check, upload
// dispatch. A backend timeout is returned as backend.ErrTimeout so
// pollers can loop without treating it as fatal.
//
// On an upload callback failure the callback's error is returned
// together with the decoded packet; decoding and sequence tracking
// have already committed.
func (s *Session) ProcessFromBackend(cfg *wire.DeviceConfig, timeout time.Duration) (*wire.StreamPacket, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if s.closed {
		return nil, ErrClosed
	}
	if s.backend == nil {
		return nil, ErrNoBackend
	}

	buf := make([]byte, wire.MaxChunkDataLen+1)
	n, err := s.backend.Read(wire.ChannelStreamData, buf, timeout)
	if err != nil {
		if errors.Is(err, backend.ErrTimeout) {
			return nil, err
		}
		s.logError("read_stream_data", err)
		return nil, fmt.Errorf("reading stream data: %w", err)
	}

	return s.process(cfg, buf[:n])
}

// ProcessFromBytes runs a raw stream-data buffer through the
// processing pipeline without touching the backend. This is the entry
// point for event-driven hosts and works on sessions without a
// backend.
func (s *Session) ProcessFromBytes(cfg *wire.DeviceConfig, raw []byte) (*wire.StreamPacket, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if s.closed {
		return nil, ErrClosed
	}
	return s.process(cfg, raw)
}

// Close disables streaming if it was left enabled (best effort, the
// control write may fail without failing Close), closes the backend if
// present, and marks the session closed. Close is idempotent and safe
// on sessions that never streamed or never read config.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	if s.streaming && s.backend != nil {
		buf := []byte{wire.EncodeStreamControl(false)}
		if _, err := s.backend.Write(wire.ChannelStreamControl, buf); err != nil {
			s.logError("disable_streaming", err)
		}
		s.streaming = false
	}

	if s.backend != nil {
		if err := s.backend.Close(); err != nil {
			return fmt.Errorf("closing backend: %w", err)
		}
	}
	return nil
}

// process is the shared post-decode pipeline for both processing entry
// points.
func (s *Session) process(cfg *wire.DeviceConfig, raw []byte) (*wire.StreamPacket, error) {
	pkt, err := wire.DecodeStreamPacket(raw)
	if err != nil {
		return nil, err
	}

	// Sequence mismatches are observations, not errors: the chunk is
	// forwarded best-effort regardless.
	expected, gap := s.tracker.observe(pkt.Sequence)
	s.logger.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: s.id,
		Direction: log.DirectionIn,
		Category:  log.CategoryPacket,
		DeviceID:  s.deviceID,
		Packet: &log.PacketEvent{
			Sequence: pkt.Sequence,
			Expected: expected,
			Gap:      gap,
			DataLen:  len(pkt.Data),
		},
	})

	if s.upload != nil {
		uploadErr := s.upload(cfg.DataURI, cfg.Authorization, pkt.Data)
		event := log.Event{
			Timestamp: time.Now(),
			SessionID: s.id,
			Direction: log.DirectionOut,
			Category:  log.CategoryUpload,
			DeviceID:  s.deviceID,
			Upload: &log.UploadEvent{
				URI:   cfg.DataURI,
				Bytes: len(pkt.Data),
			},
		}
		if uploadErr != nil {
			event.Upload.Err = uploadErr.Error()
		}
		s.logger.Log(event)
		if uploadErr != nil {
			return &pkt, uploadErr
		}
	}
	return &pkt, nil
}

func (s *Session) setStreaming(enabled bool) error {
	if s.closed {
		return ErrClosed
	}
	if s.backend == nil {
		return ErrNoBackend
	}

	buf := []byte{wire.EncodeStreamControl(enabled)}
	if _, err := s.backend.Write(wire.ChannelStreamControl, buf); err != nil {
		s.logError("stream_control", err)
		return fmt.Errorf("writing stream control: %w", err)
	}
	s.streaming = enabled

	s.logger.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: s.id,
		Direction: log.DirectionOut,
		Category:  log.CategoryStreamState,
		DeviceID:  s.deviceID,
		StreamState: &log.StreamStateEvent{
			Enabled: enabled,
		},
	})
	return nil
}

func (s *Session) readChannel(ch wire.Channel, buf []byte) (int, error) {
	if s.closed {
		return 0, ErrClosed
	}
	if s.backend == nil {
		return 0, ErrNoBackend
	}
	n, err := s.backend.Read(ch, buf, backend.NoTimeout)
	if err != nil {
		s.logError("read_"+ch.String(), err)
		return 0, fmt.Errorf("reading %v: %w", ch, err)
	}
	return n, nil
}

func (s *Session) readString(ch wire.Channel, maxLen int) (string, error) {
	buf := make([]byte, maxLen)
	n, err := s.readChannel(ch, buf)
	if err != nil {
		return "", err
	}
	return wire.DecodeConfigString(buf[:n], maxLen), nil
}

func (s *Session) logError(op string, err error) {
	s.logger.Log(log.Event{
		Timestamp: time.Now(),
		SessionID: s.id,
		Category:  log.CategoryError,
		DeviceID:  s.deviceID,
		Error: &log.ErrorEvent{
			Op:      op,
			Message: err.Error(),
		},
	})
}
