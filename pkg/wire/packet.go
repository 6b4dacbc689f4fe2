package wire

import "errors"

// Stream packet constants.
const (
	// MaxChunkDataLen is the maximum chunk payload per packet, after
	// the sequence byte.
	MaxChunkDataLen = 63

	// SequenceMask extracts the sequence counter from packet byte 0.
	SequenceMask uint8 = 0x1F

	// SequenceMax is the largest sequence value; the counter wraps to
	// zero after it.
	SequenceMax uint8 = 31
)

// Stream control byte values.
const (
	// StreamModeDisabled disables streaming.
	StreamModeDisabled byte = 0x00

	// StreamModeEnabled enables streaming.
	StreamModeEnabled byte = 0x01
)

// ErrEmptyPacket indicates a stream buffer without even a sequence byte.
var ErrEmptyPacket = errors.New("stream packet is empty")

// StreamPacket is one decoded chunk of diagnostic payload.
type StreamPacket struct {
	// Sequence is the 5-bit wrapping counter (0-31).
	Sequence uint8

	// Data is the chunk payload, at most MaxChunkDataLen bytes.
	Data []byte
}

// DecodeStreamPacket parses a raw stream-data buffer.
//
// Byte 0's low 5 bits become the sequence number; the upper 3 bits are
// reserved and ignored. The remaining bytes are the payload. A payload
// longer than MaxChunkDataLen is silently truncated to that bound;
// truncation is deterministic, not an error. The payload is copied, so
// the returned packet does not alias buf.
func DecodeStreamPacket(buf []byte) (StreamPacket, error) {
	if len(buf) == 0 {
		return StreamPacket{}, ErrEmptyPacket
	}

	dataLen := len(buf) - 1
	if dataLen > MaxChunkDataLen {
		dataLen = MaxChunkDataLen
	}

	pkt := StreamPacket{
		Sequence: buf[0] & SequenceMask,
		Data:     make([]byte, dataLen),
	}
	copy(pkt.Data, buf[1:1+dataLen])
	return pkt, nil
}

// EncodeStreamControl encodes the stream-control byte.
func EncodeStreamControl(enabled bool) byte {
	if enabled {
		return StreamModeEnabled
	}
	return StreamModeDisabled
}

// NextSequence returns the sequence value expected after last.
func NextSequence(last uint8) uint8 {
	return (last + 1) & SequenceMask
}

// ValidateSequence reports whether newSeq is the expected successor of
// last. It returns false both for forward gaps (dropped packets) and
// for repeated or backward values (duplicates); callers wanting to
// tell the two apart compare newSeq against NextSequence(last)
// themselves.
func ValidateSequence(last, newSeq uint8) bool {
	return newSeq == NextSequence(last)
}
