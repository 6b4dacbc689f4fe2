// Package wire defines the MDS wire format: channel identifiers, the
// stream packet layout, and the device configuration fields.
//
// The format is byte-oriented and fixed-width, inherited from the HID
// report layout of the reference devices:
//   - Stream control: a single byte, 0x01 = enabled, 0x00 = disabled.
//   - Stream data: byte 0 carries a 5-bit sequence counter in its low
//     bits (upper 3 bits reserved), bytes 1..N are chunk payload,
//     N <= 63.
//   - Supported features: 4 bytes, little-endian unsigned 32-bit.
//   - Device identifier / data URI / authorization: raw text, bounded,
//     NUL-terminated on the wire.
//
// All decode functions are pure: they perform no I/O and identical
// input always yields identical output.
package wire
