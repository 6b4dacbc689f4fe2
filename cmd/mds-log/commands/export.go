package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mds-protocol/mds-go/pkg/log"
)

// RunExport exports the log file to the specified format.
func RunExport(path, format, output string) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	// Determine output writer
	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "jsonl":
		return exportJSONL(reader, w)
	case "csv":
		return exportCSV(reader, w)
	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := encoder.Encode(event); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
	return nil
}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	// Write header
	header := []string{"timestamp", "session_id", "direction", "category", "device_id", "sequence", "gap", "bytes", "detail"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		sequence := ""
		gap := ""
		bytes := ""
		detail := ""
		switch {
		case event.Packet != nil:
			sequence = fmt.Sprintf("%d", event.Packet.Sequence)
			gap = fmt.Sprintf("%t", event.Packet.Gap)
			bytes = fmt.Sprintf("%d", event.Packet.DataLen)
		case event.StreamState != nil:
			detail = fmt.Sprintf("enabled=%t", event.StreamState.Enabled)
		case event.ConfigRead != nil:
			detail = fmt.Sprintf("features=0x%08x", event.ConfigRead.Features)
		case event.Upload != nil:
			bytes = fmt.Sprintf("%d", event.Upload.Bytes)
			detail = event.Upload.URI
			if event.Upload.Err != "" {
				detail += " err=" + event.Upload.Err
			}
		case event.Error != nil:
			detail = event.Error.Op + ": " + event.Error.Message
		}

		row := []string{
			event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z"),
			event.SessionID,
			event.Direction.String(),
			event.Category.String(),
			event.DeviceID,
			sequence,
			gap,
			bytes,
			detail,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return nil
}
