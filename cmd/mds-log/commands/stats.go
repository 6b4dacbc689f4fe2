package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/mds-protocol/mds-go/pkg/log"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents       int
	EventsByCategory  map[log.Category]int
	EventsByDirection map[log.Direction]int
	Sessions          map[string]*SessionStats
	Errors            int
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// SessionStats holds statistics for a single session.
type SessionStats struct {
	FirstSeen     time.Time
	LastSeen      time.Time
	Events        int
	DeviceID      string
	Packets       int
	Gaps          int
	ChunkBytes    int
	Uploads       int
	UploadErrors  int
	UploadedBytes int
}

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByCategory:  make(map[log.Category]int),
		EventsByDirection: make(map[log.Direction]int),
		Sessions:          make(map[string]*SessionStats),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsByCategory[event.Category]++
		stats.EventsByDirection[event.Direction]++

		// Track time range
		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}

		// Track session stats
		sess, ok := stats.Sessions[event.SessionID]
		if !ok {
			sess = &SessionStats{
				FirstSeen: event.Timestamp,
				LastSeen:  event.Timestamp,
			}
			stats.Sessions[event.SessionID] = sess
		}
		sess.Events++
		if event.Timestamp.After(sess.LastSeen) {
			sess.LastSeen = event.Timestamp
		}
		if event.DeviceID != "" && sess.DeviceID == "" {
			sess.DeviceID = event.DeviceID
		}

		if event.Packet != nil {
			sess.Packets++
			sess.ChunkBytes += event.Packet.DataLen
			if event.Packet.Gap {
				sess.Gaps++
			}
		}
		if event.Upload != nil {
			sess.Uploads++
			if event.Upload.Err != "" {
				sess.UploadErrors++
			} else {
				sess.UploadedBytes += event.Upload.Bytes
			}
		}
		if event.Error != nil {
			stats.Errors++
		}
	}

	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== MDS Protocol Log Statistics ===")
	fmt.Fprintln(w)

	// Time range
	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	// Total events
	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	// Events by category
	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryPacket, log.CategoryStreamState, log.CategoryConfigRead, log.CategoryUpload, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-13s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	// Events by direction
	fmt.Fprintln(w, "Events by Direction:")
	for _, dir := range []log.Direction{log.DirectionIn, log.DirectionOut} {
		if count := stats.EventsByDirection[dir]; count > 0 {
			fmt.Fprintf(w, "  %-13s %d\n", dir.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	// Sessions
	fmt.Fprintf(w, "Sessions: %d\n", len(stats.Sessions))
	if len(stats.Sessions) > 0 {
		// Sort by first seen time
		type sessInfo struct {
			id    string
			stats *SessionStats
		}
		sessions := make([]sessInfo, 0, len(stats.Sessions))
		for id, ss := range stats.Sessions {
			sessions = append(sessions, sessInfo{id, ss})
		}
		sort.Slice(sessions, func(i, j int) bool {
			return sessions[i].stats.FirstSeen.Before(sessions[j].stats.FirstSeen)
		})

		fmt.Fprintln(w, "")
		for _, s := range sessions {
			duration := s.stats.LastSeen.Sub(s.stats.FirstSeen).Round(time.Millisecond)
			shortID := s.id
			if len(shortID) > 8 {
				shortID = shortID[:8]
			}
			fmt.Fprintf(w, "  [%s] %d events, duration %s\n", shortID, s.stats.Events, duration)
			if s.stats.DeviceID != "" {
				fmt.Fprintf(w, "           Device: %s\n", s.stats.DeviceID)
			}
			if s.stats.Packets > 0 {
				fmt.Fprintf(w, "           Packets: %d (%d bytes, %d gaps)\n",
					s.stats.Packets, s.stats.ChunkBytes, s.stats.Gaps)
			}
			if s.stats.Uploads > 0 {
				fmt.Fprintf(w, "           Uploads: %d (%d bytes, %d failed)\n",
					s.stats.Uploads, s.stats.UploadedBytes, s.stats.UploadErrors)
			}
		}
	}

	// Errors
	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
