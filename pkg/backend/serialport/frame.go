package serialport

import (
	"fmt"
	"sync/atomic"

	"github.com/mds-protocol/mds-go/pkg/wire"
)

// FrameDelimiter marks the start of a serial frame.
const FrameDelimiter byte = 0x7E

// MaxFramePayload is the largest payload one frame can carry.
const MaxFramePayload = 255

// Frame is one decoded serial frame.
type Frame struct {
	Channel wire.Channel
	Payload []byte
}

// EncodeFrame builds the wire form of one frame:
// delimiter, channel, length, payload, XOR checksum.
func EncodeFrame(ch wire.Channel, payload []byte) ([]byte, error) {
	if len(payload) > MaxFramePayload {
		return nil, fmt.Errorf("frame payload too large: %d > %d", len(payload), MaxFramePayload)
	}

	buf := make([]byte, 0, len(payload)+4)
	buf = append(buf, FrameDelimiter, byte(ch), byte(len(payload)))
	buf = append(buf, payload...)
	buf = append(buf, checksum(byte(ch), payload))
	return buf, nil
}

func checksum(ch byte, payload []byte) byte {
	sum := ch ^ byte(len(payload))
	for _, b := range payload {
		sum ^= b
	}
	return sum
}

// decoder state machine states.
const (
	stateSeekDelimiter = iota
	stateChannel
	stateLength
	statePayload
	stateChecksum
)

// Decoder incrementally decodes frames from a serial byte stream.
// Bytes outside a frame and frames with checksum mismatches are
// skipped; the decoder resynchronizes on the next delimiter.
type Decoder struct {
	state        int
	channel      byte
	length       int
	payload      []byte
	checksumErrs atomic.Uint64
}

// NewDecoder creates a Decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed consumes raw bytes and returns any frames completed by them.
func (d *Decoder) Feed(p []byte) []Frame {
	var frames []Frame
	for _, b := range p {
		if f, ok := d.feedByte(b); ok {
			frames = append(frames, f)
		}
	}
	return frames
}

// ChecksumErrors returns the number of frames dropped for checksum
// mismatches. Safe to call while the reader goroutine is feeding the
// decoder.
func (d *Decoder) ChecksumErrors() uint64 {
	return d.checksumErrs.Load()
}

func (d *Decoder) feedByte(b byte) (Frame, bool) {
	switch d.state {
	case stateSeekDelimiter:
		if b == FrameDelimiter {
			d.state = stateChannel
		}
	case stateChannel:
		d.channel = b
		d.state = stateLength
	case stateLength:
		d.length = int(b)
		d.payload = d.payload[:0]
		if d.length == 0 {
			d.state = stateChecksum
		} else {
			d.state = statePayload
		}
	case statePayload:
		d.payload = append(d.payload, b)
		if len(d.payload) == d.length {
			d.state = stateChecksum
		}
	case stateChecksum:
		d.state = stateSeekDelimiter
		if b != checksum(d.channel, d.payload) {
			d.checksumErrs.Add(1)
			return Frame{}, false
		}
		payload := make([]byte, len(d.payload))
		copy(payload, d.payload)
		return Frame{Channel: wire.Channel(d.channel), Payload: payload}, true
	}
	return Frame{}, false
}
