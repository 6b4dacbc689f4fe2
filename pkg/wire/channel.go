package wire

// Channel identifies one of the six logical MDS sub-streams.
// The numeric values follow the reference HID report IDs; backends for
// other transports may remap them as long as the mapping stays
// consistent within one backend.
type Channel uint8

const (
	// ChannelSupportedFeatures carries the 32-bit feature bitmask.
	ChannelSupportedFeatures Channel = 0x01

	// ChannelDeviceIdentifier carries the device identifier string.
	ChannelDeviceIdentifier Channel = 0x02

	// ChannelDataURI carries the chunk upload URI.
	ChannelDataURI Channel = 0x03

	// ChannelAuthorization carries the authorization header string,
	// conventionally "HeaderName:HeaderValue".
	ChannelAuthorization Channel = 0x04

	// ChannelStreamControl carries the stream enable/disable byte.
	ChannelStreamControl Channel = 0x05

	// ChannelStreamData carries diagnostic chunk packets.
	ChannelStreamData Channel = 0x06
)

// String returns the channel name.
func (c Channel) String() string {
	switch c {
	case ChannelSupportedFeatures:
		return "SUPPORTED_FEATURES"
	case ChannelDeviceIdentifier:
		return "DEVICE_IDENTIFIER"
	case ChannelDataURI:
		return "DATA_URI"
	case ChannelAuthorization:
		return "AUTHORIZATION"
	case ChannelStreamControl:
		return "STREAM_CONTROL"
	case ChannelStreamData:
		return "STREAM_DATA"
	default:
		return "UNKNOWN"
	}
}
