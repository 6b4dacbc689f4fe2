// Package session implements the MDS session lifecycle: device
// configuration reads, stream control, packet processing with sequence
// tracking, and upload dispatch.
//
// A Session owns at most one backend.Backend and drives the protocol
// over it. Sessions created without a backend support only
// ProcessFromBytes, the entry point for hosts that receive raw buffers
// from their own event loop (FFI bindings, HID report callbacks).
//
// Sessions are not safe for concurrent use. Run the blocking read loop
// on one goroutine, or serialize access externally; close a session
// only after its read loop has exited.
package session
