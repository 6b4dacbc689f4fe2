package log

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestEventRoundTrip(t *testing.T) {
	event := Event{
		Timestamp: time.Now().UTC(),
		SessionID: "3f6c0b5e-0000-4000-8000-000000000001",
		Direction: DirectionIn,
		Category:  CategoryPacket,
		DeviceID:  "DEVICE-01",
		Packet: &PacketEvent{
			Sequence: 5,
			Expected: 3,
			Gap:      true,
			DataLen:  42,
		},
	}

	data, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if decoded.SessionID != event.SessionID {
		t.Errorf("SessionID = %q, want %q", decoded.SessionID, event.SessionID)
	}
	if decoded.Category != CategoryPacket {
		t.Errorf("Category = %v, want CategoryPacket", decoded.Category)
	}
	if decoded.Packet == nil {
		t.Fatal("Packet payload missing after round trip")
	}
	if decoded.Packet.Sequence != 5 || decoded.Packet.Expected != 3 || !decoded.Packet.Gap {
		t.Errorf("Packet = %+v, want sequence 5, expected 3, gap", decoded.Packet)
	}
	if decoded.Packet.DataLen != 42 {
		t.Errorf("DataLen = %d, want 42", decoded.Packet.DataLen)
	}
}

func TestFileLoggerWritesAndCloses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.mdslog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	logger.Log(Event{
		Timestamp: time.Now(),
		SessionID: "s1",
		Direction: DirectionIn,
		Category:  CategoryStreamState,
		StreamState: &StreamStateEvent{
			Enabled: true,
		},
	})

	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	// Second close and post-close logging are no-ops.
	if err := logger.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
	logger.Log(Event{SessionID: "dropped"})

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening event file: %v", err)
	}
	defer f.Close()

	var decoded Event
	if err := NewDecoder(f).Decode(&decoded); err != nil {
		t.Fatalf("decoding event file: %v", err)
	}
	if decoded.StreamState == nil || !decoded.StreamState.Enabled {
		t.Errorf("decoded event = %+v, want stream enabled", decoded)
	}

	var extra Event
	if err := NewDecoder(f).Decode(&extra); err == nil && extra.SessionID == "dropped" {
		t.Error("event logged after Close was written to the file")
	}
}

type captureLogger struct {
	events []Event
}

func (c *captureLogger) Log(event Event) {
	c.events = append(c.events, event)
}

func TestMultiLoggerFansOut(t *testing.T) {
	a := &captureLogger{}
	b := &captureLogger{}
	m := NewMultiLogger(a, b)

	m.Log(Event{SessionID: "s1", Category: CategoryUpload})

	if len(a.events) != 1 || len(b.events) != 1 {
		t.Fatalf("fan-out counts = %d/%d, want 1/1", len(a.events), len(b.events))
	}
	if a.events[0].Category != CategoryUpload {
		t.Errorf("Category = %v, want CategoryUpload", a.events[0].Category)
	}
}
