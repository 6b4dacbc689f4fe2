// Package log provides structured protocol event logging for MDS
// sessions.
//
// Sessions emit typed events (packets, sequence gaps, stream state
// changes, config reads, uploads, errors) through the Logger interface.
// Events can be written to a CBOR event file for later analysis
// (FileLogger), mirrored to log/slog for console output (SlogAdapter),
// or fanned out to several sinks at once (MultiLogger).
package log
