package wire

import (
	"strings"
	"testing"
)

func TestDecodeSupportedFeatures(t *testing.T) {
	got, err := DecodeSupportedFeatures([]byte{0x01, 0x00, 0x00, 0x00})
	if err != nil {
		t.Fatalf("DecodeSupportedFeatures: %v", err)
	}
	if got != 1 {
		t.Errorf("features = %d, want 1", got)
	}

	got, err = DecodeSupportedFeatures([]byte{0x78, 0x56, 0x34, 0x12, 0xFF})
	if err != nil {
		t.Fatalf("DecodeSupportedFeatures: %v", err)
	}
	if got != 0x12345678 {
		t.Errorf("features = %#x, want 0x12345678", got)
	}
}

func TestDecodeSupportedFeaturesShort(t *testing.T) {
	for _, n := range []int{0, 1, 2, 3} {
		if _, err := DecodeSupportedFeatures(make([]byte, n)); err == nil {
			t.Errorf("DecodeSupportedFeatures with %d bytes: want error", n)
		}
	}
}

func TestDecodeConfigString(t *testing.T) {
	tests := []struct {
		name   string
		buf    []byte
		maxLen int
		want   string
	}{
		{
			name:   "plain text",
			buf:    []byte("DEVICE-01"),
			maxLen: MaxDeviceIDLen,
			want:   "DEVICE-01",
		},
		{
			name:   "cut at first NUL",
			buf:    []byte("abc\x00def"),
			maxLen: MaxDeviceIDLen,
			want:   "abc",
		},
		{
			name:   "empty",
			buf:    nil,
			maxLen: MaxDeviceIDLen,
			want:   "",
		},
		{
			name:   "truncated to bound",
			buf:    []byte(strings.Repeat("x", 200)),
			maxLen: MaxURILen,
			want:   strings.Repeat("x", MaxURILen-1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecodeConfigString(tt.buf, tt.maxLen); got != tt.want {
				t.Errorf("DecodeConfigString = %q, want %q", got, tt.want)
			}
		})
	}
}
