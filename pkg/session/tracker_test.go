package session

import (
	"testing"

	"github.com/mds-protocol/mds-go/pkg/wire"
)

func TestTrackerFirstPacketNeverFlagged(t *testing.T) {
	for seq := uint8(0); seq <= wire.SequenceMax; seq++ {
		tr := newSequenceTracker()
		if _, gap := tr.observe(seq); gap {
			t.Errorf("first packet with sequence %d flagged as gap", seq)
		}
		if tr.last != seq {
			t.Errorf("last = %d after observe(%d)", tr.last, seq)
		}
	}
}

func TestTrackerExpectedSuccessors(t *testing.T) {
	tr := newSequenceTracker()
	tr.observe(0)
	for seq := uint8(1); seq <= wire.SequenceMax; seq++ {
		expected, gap := tr.observe(seq)
		if gap {
			t.Errorf("observe(%d) flagged as gap", seq)
		}
		if expected != seq {
			t.Errorf("expected = %d, want %d", expected, seq)
		}
	}
}

func TestTrackerGapAndDuplicate(t *testing.T) {
	tr := newSequenceTracker()
	tr.observe(0)

	// Forward gap: 0 -> 5.
	expected, gap := tr.observe(5)
	if !gap {
		t.Error("forward gap not flagged")
	}
	if expected != 1 {
		t.Errorf("expected = %d, want 1", expected)
	}

	// Duplicate: 5 -> 5. Updated unconditionally, so still flagged.
	if _, gap := tr.observe(5); !gap {
		t.Error("duplicate not flagged")
	}

	// Backward: 5 -> 3.
	if _, gap := tr.observe(3); !gap {
		t.Error("backward sequence not flagged")
	}
}

func TestTrackerSentinelCollision(t *testing.T) {
	// A real packet with sequence 31 leaves the tracker in the
	// sentinel state, so its successor is never gap-checked. This is
	// the reference behavior, preserved for compatibility.
	tr := newSequenceTracker()
	tr.observe(30)
	if _, gap := tr.observe(31); gap {
		t.Error("30 -> 31 flagged as gap")
	}
	if _, gap := tr.observe(17); gap {
		t.Error("packet after a real sequence-31 packet was gap-checked")
	}
}
