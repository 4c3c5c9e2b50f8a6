package x509der

import "testing"

func TestProbe(t *testing.T) {
	for _, tc := range []struct {
		name string
		buf  []byte
		want probeResult
	}{
		{"empty", nil, probeTruncated},
		{"tag only", []byte{0x30}, probeTruncated},
		{"short content", []byte{0x30, 0x05, 0x01}, probeTruncated},
		{"complete element", []byte{0x30, 0x02, 0x01, 0x02}, probeOK},
		{"complete with trailer", []byte{0x02, 0x01, 0x00, 0xff}, probeOK},
		{"indefinite length", []byte{0x30, 0x80, 0x00, 0x00}, probeBadLength},
		{"five length octets", []byte{0x30, 0x85, 0x01, 0x02, 0x03, 0x04, 0x05}, probeBadLength},
		{"long form truncated", []byte{0x30, 0x82, 0x01}, probeTruncated},
		{"long form short content", []byte{0x30, 0x81, 0x80, 0x00}, probeTruncated},
		{"high tag truncated", []byte{0x9f, 0x85}, probeTruncated},
		{"high tag complete", []byte{0x9f, 0x21, 0x01, 0x00}, probeOK},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := probe(tc.buf); got != tc.want {
				t.Errorf("probe(%x) = %d, want %d", tc.buf, got, tc.want)
			}
		})
	}
}
