package x509der

import (
	encoding_asn1 "encoding/asn1"
	"unicode/utf16"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

// NumericString has no constant in cryptobyte/asn1.
const numericStringTag = asn1.Tag(18)

// parseString gives us a Go string out of an ASN.1 string element.
func parseString(tag asn1.Tag, data cryptobyte.String) (string, error) {
	switch tag {
	case encoding_asn1.TagBMPString:
		return parseBMPString(data)
	case numericStringTag, asn1.PrintableString, asn1.IA5String, asn1.UTF8String:
		return string(data), nil
	default:
		return "", NotAString
	}
}

// parseBMPString parses a utf-16 bmpString. Taken from pkcs12.
func parseBMPString(bmpString cryptobyte.String) (string, error) {
	if len(bmpString)%2 != 0 {
		return "", NotAString
	}

	// Strip terminator if present.
	if l := len(bmpString); l >= 2 && bmpString[l-1] == 0 && bmpString[l-2] == 0 {
		bmpString = bmpString[:l-2]
	}

	s := make([]uint16, 0, len(bmpString)/2)
	for len(bmpString) > 0 {
		s = append(s, uint16(bmpString[0])<<8+uint16(bmpString[1]))
		bmpString = bmpString[2:]
	}

	return string(utf16.Decode(s)), nil
}
