// Package serialport implements the MDS backend contract over a
// serial port.
//
// Serial links have no report IDs, so channels travel in a small
// frame: a 0x7E delimiter, the channel byte, a one-byte payload
// length, the payload, and an XOR checksum over channel, length, and
// payload. Frames with a bad checksum are dropped and counted.
//
// A reader goroutine decodes incoming frames and routes them onto
// per-channel queues; Read serves the queues with the usual timeout
// semantics.
package serialport
