// Package wsbridge implements the MDS backend contract over a
// WebSocket connection, for devices reached through a remote bridge
// (for example a browser or network gateway that relays HID reports).
//
// Each binary WebSocket message carries one channel buffer: byte 0 is
// the channel, the rest is the payload. A reader goroutine routes
// incoming messages onto per-channel queues.
package wsbridge
