package session

import "github.com/mds-protocol/mds-go/pkg/wire"

// sequenceTracker holds the last observed stream sequence number.
//
// The tracker is initialized to wire.SequenceMax (31) as the "no packet
// observed yet" sentinel, matching the reference devices. The sentinel
// collides with a legitimate wrapped-around sequence value: a packet
// following a real sequence-31 packet is never gap-checked, and a
// session's very first packet is accepted whatever its sequence. This
// is preserved for compatibility with the reference behavior.
type sequenceTracker struct {
	last uint8
}

func newSequenceTracker() sequenceTracker {
	return sequenceTracker{last: wire.SequenceMax}
}

// observe records seq and classifies it against the previous value.
// It returns the sequence the tracker expected and whether the packet
// was a mismatch (gap or duplicate). The last value is updated
// unconditionally, mismatch or not.
func (t *sequenceTracker) observe(seq uint8) (expected uint8, gap bool) {
	expected = wire.NextSequence(t.last)
	if t.last != wire.SequenceMax {
		gap = !wire.ValidateSequence(t.last, seq)
	}
	t.last = seq
	return expected, gap
}
