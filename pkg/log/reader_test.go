package log

import (
	"io"
	"path/filepath"
	"testing"
	"time"
)

// writeEventFile writes events to a temp file and returns the path.
func writeEventFile(t *testing.T, events ...Event) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "events.mdslog")
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	return path
}

func TestReaderReadsAllEvents(t *testing.T) {
	path := writeEventFile(t,
		Event{SessionID: "s1", Category: CategoryConfigRead, ConfigRead: &ConfigReadEvent{Features: 1}},
		Event{SessionID: "s1", Category: CategoryPacket, Packet: &PacketEvent{Sequence: 0, DataLen: 3}},
		Event{SessionID: "s1", Category: CategoryPacket, Packet: &PacketEvent{Sequence: 2, Expected: 1, Gap: true, DataLen: 5}},
	)

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer r.Close()

	count := 0
	for {
		_, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		count++
	}
	if count != 3 {
		t.Errorf("read %d events, want 3", count)
	}
}

func TestFilteredReader(t *testing.T) {
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	path := writeEventFile(t,
		Event{Timestamp: base, SessionID: "s1", Direction: DirectionIn, Category: CategoryPacket,
			Packet: &PacketEvent{Sequence: 0, DataLen: 3}},
		Event{Timestamp: base.Add(time.Second), SessionID: "s1", Direction: DirectionIn, Category: CategoryPacket,
			Packet: &PacketEvent{Sequence: 4, Expected: 1, Gap: true, DataLen: 3}},
		Event{Timestamp: base.Add(2 * time.Second), SessionID: "s2", Direction: DirectionOut, Category: CategoryUpload,
			Upload: &UploadEvent{URI: "https://chunks.example", Bytes: 3}},
	)

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"all", Filter{}, 3},
		{"by session", Filter{SessionID: "s2"}, 1},
		{"by category", Filter{Category: categoryPtr(CategoryPacket)}, 2},
		{"by direction", Filter{Direction: directionPtr(DirectionOut)}, 1},
		{"gaps only", Filter{GapsOnly: true}, 1},
		{"time window", Filter{TimeStart: timePtr(base.Add(time.Second)), TimeEnd: timePtr(base.Add(2 * time.Second))}, 1},
		{"no match", Filter{SessionID: "nope"}, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, err := NewFilteredReader(path, tc.filter)
			if err != nil {
				t.Fatalf("NewFilteredReader failed: %v", err)
			}
			defer r.Close()

			count := 0
			for {
				_, err := r.Next()
				if err == io.EOF {
					break
				}
				if err != nil {
					t.Fatalf("Next failed: %v", err)
				}
				count++
			}
			if count != tc.want {
				t.Errorf("read %d events, want %d", count, tc.want)
			}
		})
	}
}

func categoryPtr(c Category) *Category    { return &c }
func directionPtr(d Direction) *Direction { return &d }
func timePtr(t time.Time) *time.Time      { return &t }
