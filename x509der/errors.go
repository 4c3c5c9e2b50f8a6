package x509der

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/cryptobyte"
)

// Decode failures wrap one of these sentinel kinds so that callers can
// classify errors with errors.Is instead of string matching. Context about
// which structural field failed is layered on top with fmt.Errorf.
var (
	ErrTruncated                    = errors.New("truncated DER input")
	ErrInvalidTag                   = errors.New("unexpected ASN.1 tag")
	ErrInvalidLength                = errors.New("invalid ASN.1 length")
	ErrInvalidVersion               = errors.New("invalid version")
	ErrInvalidSerialNumber          = errors.New("invalid serial number")
	ErrInvalidName                  = errors.New("invalid X.501 name")
	ErrInvalidAlgorithmIdentifier   = errors.New("invalid AlgorithmIdentifier")
	ErrInvalidSubjectPublicKeyInfo  = errors.New("invalid SubjectPublicKeyInfo")
	ErrInvalidValidity              = errors.New("invalid validity")
	ErrInvalidExtensions            = errors.New("invalid extensions")
	ErrInvalidAttributes            = errors.New("invalid attributes")
	ErrInvalidSignatureValue        = errors.New("invalid signature value")
	ErrDuplicateExtension           = errors.New("duplicate extension OID")
	ErrUnsupportedCriticalExtension = errors.New("unsupported critical extension")
	ErrTrailingData                 = errors.New("trailing data after structure")
)

// NotAString is returned when an attribute value cannot be represented as a
// Go string because its ASN.1 type is not one of the string types.
var NotAString = errors.New("attribute value is not a string type")

// readErr classifies a failed cryptobyte read of der. A read fails either
// because the buffer ended mid-TLV or because the next element is not what
// the caller expected; the distinction matters to consumers, so the header
// of the pending element is probed to tell the cases apart.
func readErr(der cryptobyte.String, kind error, field string) error {
	switch probe(der) {
	case probeTruncated:
		return fmt.Errorf("%s: %w", field, ErrTruncated)
	case probeBadLength:
		return fmt.Errorf("%s: %w", field, ErrInvalidLength)
	}
	return fmt.Errorf("%s: %w", field, kind)
}

type probeResult int

const (
	probeOK probeResult = iota
	probeTruncated
	probeBadLength
)

// probe inspects the header of the next TLV in buf without consuming it and
// reports whether the element is complete, cut short, or carries a length
// field that is not valid DER (indefinite or wider than 4 octets).
func probe(buf []byte) probeResult {
	if len(buf) == 0 {
		return probeTruncated
	}
	i := 1
	if buf[0]&0x1f == 0x1f {
		// high-tag-number form: tag continues while the top bit is set
		for {
			if i >= len(buf) {
				return probeTruncated
			}
			b := buf[i]
			i++
			if b&0x80 == 0 {
				break
			}
		}
	}
	if i >= len(buf) {
		return probeTruncated
	}
	lenByte := buf[i]
	i++
	var length int
	switch {
	case lenByte&0x80 == 0:
		length = int(lenByte)
	default:
		n := int(lenByte & 0x7f)
		if n == 0 || n > 4 {
			// indefinite-length BER, or a length DER would never emit
			return probeBadLength
		}
		if i+n > len(buf) {
			return probeTruncated
		}
		for _, b := range buf[i : i+n] {
			length = length<<8 | int(b)
		}
		i += n
	}
	if length > len(buf)-i {
		return probeTruncated
	}
	return probeOK
}
