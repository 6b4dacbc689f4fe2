// Package backend defines the transport contract between the MDS
// protocol engine and a concrete I/O mechanism (USB HID, serial,
// WebSocket, or anything else that can move channel-tagged buffers in
// both directions).
//
// The protocol engine assumes nothing about a backend beyond the three
// methods of the Backend interface. A session exclusively owns its
// backend and closes it exactly once during its own teardown; no other
// component may keep a reference after that.
package backend
