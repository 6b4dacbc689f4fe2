// Package commands implements the mds-log CLI commands.
package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/mds-protocol/mds-go/pkg/log"
)

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	Direction *log.Direction
	Category  *log.Category
	GapsOnly  bool
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [sess:id] DIRECTION Category
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	sessID := shortenSessionID(event.SessionID)
	dir := event.Direction.String()

	fmt.Fprintf(w, "%s [sess:%s] %-3s %s\n", ts, sessID, dir, event.Category.String())

	switch {
	case event.Packet != nil:
		formatPacketDetails(w, event.Packet)
	case event.StreamState != nil:
		formatStreamStateDetails(w, event.StreamState)
	case event.ConfigRead != nil:
		formatConfigReadDetails(w, event.ConfigRead)
	case event.Upload != nil:
		formatUploadDetails(w, event.Upload)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	if event.DeviceID != "" {
		fmt.Fprintf(w, "  Device: %s\n", event.DeviceID)
	}

	fmt.Fprintln(w) // Blank line between events
}

// shortenSessionID returns the first 8 characters of the session ID.
func shortenSessionID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatPacketDetails(w io.Writer, pkt *log.PacketEvent) {
	fmt.Fprintf(w, "  Sequence: %d (expected %d)\n", pkt.Sequence, pkt.Expected)
	if pkt.Gap {
		fmt.Fprintln(w, "  Gap: yes")
	}
	fmt.Fprintf(w, "  Size: %d bytes\n", pkt.DataLen)
}

func formatStreamStateDetails(w io.Writer, ss *log.StreamStateEvent) {
	if ss.Enabled {
		fmt.Fprintln(w, "  Streaming: enabled")
	} else {
		fmt.Fprintln(w, "  Streaming: disabled")
	}
}

func formatConfigReadDetails(w io.Writer, cr *log.ConfigReadEvent) {
	fmt.Fprintf(w, "  Features: 0x%08x\n", cr.Features)
	if cr.DataURI != "" {
		fmt.Fprintf(w, "  DataURI: %s\n", cr.DataURI)
	}
}

func formatUploadDetails(w io.Writer, up *log.UploadEvent) {
	fmt.Fprintf(w, "  URI: %s\n", up.URI)
	fmt.Fprintf(w, "  Size: %d bytes\n", up.Bytes)
	if up.Err != "" {
		fmt.Fprintf(w, "  Failed: %s\n", up.Err)
	}
}

func formatErrorDetails(w io.Writer, e *log.ErrorEvent) {
	fmt.Fprintf(w, "  Op: %s\n", e.Op)
	fmt.Fprintf(w, "  Message: %s\n", e.Message)
}

// ParseDirectionFlag parses a direction string from command-line flag (case-insensitive).
func ParseDirectionFlag(s string) (log.Direction, error) {
	return parseDirection(s)
}

// parseDirection parses a direction string (case-insensitive).
func parseDirection(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("invalid direction: %s (must be in or out)", s)
	}
}

// ParseCategoryFlag parses a category string from command-line flag (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	return parseCategory(s)
}

// parseCategory parses a category string (case-insensitive).
func parseCategory(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "packet":
		return log.CategoryPacket, nil
	case "stream-state":
		return log.CategoryStreamState, nil
	case "config-read":
		return log.CategoryConfigRead, nil
	case "upload":
		return log.CategoryUpload, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be packet, stream-state, config-read, upload, or error)", s)
	}
}

// RunView executes the view command.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, log.Filter{
		Direction: filter.Direction,
		Category:  filter.Category,
		GapsOnly:  filter.GapsOnly,
	})
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		formatEvent(output, event)
	}

	return nil
}
