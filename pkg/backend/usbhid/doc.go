// Package usbhid implements the MDS backend contract over USB HID,
// using the hidapi bindings from github.com/karalabe/hid.
//
// Channel mapping follows the reference devices: the four
// configuration channels and stream control are HID feature reports
// (report IDs equal the channel values), and stream data arrives as
// input reports. A reader goroutine drains input reports onto a
// per-channel queue so stream reads honor timeouts; feature report
// reads are synchronous control transfers and ignore the timeout.
package usbhid
