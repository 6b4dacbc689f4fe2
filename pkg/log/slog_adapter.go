package log

import (
	"context"
	"log/slog"
)

// SlogAdapter mirrors protocol events to an slog.Logger, for
// development and CLI console output.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a SlogAdapter writing to the given logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event at Debug level, or Warn for gaps and errors.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("session_id", event.SessionID),
		slog.String("direction", event.Direction.String()),
		slog.String("category", event.Category.String()),
	}
	if event.DeviceID != "" {
		attrs = append(attrs, slog.String("device_id", event.DeviceID))
	}

	level := slog.LevelDebug

	switch {
	case event.Packet != nil:
		attrs = append(attrs,
			slog.Uint64("sequence", uint64(event.Packet.Sequence)),
			slog.Int("data_len", event.Packet.DataLen),
		)
		if event.Packet.Gap {
			attrs = append(attrs,
				slog.Uint64("expected", uint64(event.Packet.Expected)),
				slog.Bool("gap", true),
			)
			level = slog.LevelWarn
		}
	case event.StreamState != nil:
		attrs = append(attrs, slog.Bool("streaming", event.StreamState.Enabled))
	case event.ConfigRead != nil:
		attrs = append(attrs,
			slog.Uint64("features", uint64(event.ConfigRead.Features)),
			slog.String("data_uri", event.ConfigRead.DataURI),
		)
	case event.Upload != nil:
		attrs = append(attrs,
			slog.String("uri", event.Upload.URI),
			slog.Int("bytes", event.Upload.Bytes),
		)
		if event.Upload.Err != "" {
			attrs = append(attrs, slog.String("error", event.Upload.Err))
			level = slog.LevelWarn
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("op", event.Error.Op),
			slog.String("error", event.Error.Message),
		)
		level = slog.LevelWarn
	}

	a.logger.LogAttrs(context.Background(), level, "mds event", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
