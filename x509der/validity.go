package x509der

import (
	"encoding/json"
	"time"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

//	Time ::= CHOICE {
//	  utcTime        UTCTime,
//	  generalTime    GeneralizedTime }
type Time struct {
	Tag  asn1.Tag
	Time time.Time
}

func ParseTime(der *cryptobyte.String) (Time, error) {
	var t time.Time
	if der.PeekASN1Tag(asn1.UTCTime) {
		if !der.ReadASN1UTCTime(&t) {
			return Time{}, readErr(*der, ErrInvalidValidity, "reading UTCTime")
		}
		return Time{asn1.UTCTime, t}, nil
	}
	if der.PeekASN1Tag(asn1.GeneralizedTime) {
		if !der.ReadASN1GeneralizedTime(&t) {
			return Time{}, readErr(*der, ErrInvalidValidity, "reading GeneralizedTime")
		}
		return Time{asn1.GeneralizedTime, t}, nil
	}
	return Time{}, readErr(*der, ErrInvalidValidity, "reading Time")
}

// parseOptionalTime reads a Time if one is next, without consuming input
// when neither time tag is present.
func parseOptionalTime(der *cryptobyte.String) (*Time, error) {
	if !der.PeekASN1Tag(asn1.UTCTime) && !der.PeekASN1Tag(asn1.GeneralizedTime) {
		return nil, nil
	}
	t, err := ParseTime(der)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (t Time) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time)
}

//	Validity ::= SEQUENCE {
//	  notBefore      Time,
//	  notAfter       Time }
type Validity struct {
	NotBefore Time
	NotAfter  Time
}

func ParseValidity(der *cryptobyte.String) (Validity, error) {
	var validity cryptobyte.String
	if !der.ReadASN1(&validity, asn1.SEQUENCE) {
		return Validity{}, readErr(*der, ErrInvalidValidity, "reading Validity")
	}

	notBefore, err := ParseTime(&validity)
	if err != nil {
		return Validity{}, err
	}

	notAfter, err := ParseTime(&validity)
	if err != nil {
		return Validity{}, err
	}

	return Validity{
		NotBefore: notBefore,
		NotAfter:  notAfter,
	}, nil
}

// IsValidAt reports whether t falls inside the validity interval. The
// interval is half-open: notBefore <= t < notAfter.
func (v Validity) IsValidAt(t time.Time) bool {
	return !t.Before(v.NotBefore.Time) && t.Before(v.NotAfter.Time)
}

// IsValidNow reports whether the certificate is currently within its
// validity interval.
func (v Validity) IsValidNow() bool {
	return v.IsValidAt(time.Now())
}

// TimeToExpiration returns the duration left until notAfter. ok is false
// whenever the certificate is not valid right now, including when notBefore
// is still in the future.
func (v Validity) TimeToExpiration() (time.Duration, bool) {
	now := time.Now()
	if !v.IsValidAt(now) {
		return 0, false
	}
	return v.NotAfter.Time.Sub(now), true
}
