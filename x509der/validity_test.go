package x509der

import (
	"testing"
	"time"

	"golang.org/x/crypto/cryptobyte/asn1"
)

func validityBetween(notBefore, notAfter time.Time) Validity {
	return Validity{
		NotBefore: Time{asn1.UTCTime, notBefore},
		NotAfter:  Time{asn1.UTCTime, notAfter},
	}
}

func TestValidityIsValidAt(t *testing.T) {
	notBefore := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	notAfter := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	v := validityBetween(notBefore, notAfter)

	for _, tc := range []struct {
		name string
		at   time.Time
		want bool
	}{
		{"before notBefore", notBefore.Add(-time.Second), false},
		{"exactly notBefore", notBefore, true},
		{"inside", notBefore.AddDate(0, 6, 0), true},
		{"just before notAfter", notAfter.Add(-time.Second), true},
		{"exactly notAfter", notAfter, false},
		{"after notAfter", notAfter.Add(time.Second), false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := v.IsValidAt(tc.at); got != tc.want {
				t.Errorf("IsValidAt(%s) = %t, want %t", tc.at, got, tc.want)
			}
		})
	}
}

func TestTimeToExpiration(t *testing.T) {
	now := time.Now()

	t.Run("currently valid", func(t *testing.T) {
		v := validityBetween(now.Add(-time.Hour), now.Add(time.Hour))
		remaining, ok := v.TimeToExpiration()
		if !ok {
			t.Fatal("ok = false for a currently valid interval")
		}
		if remaining <= 0 || remaining > time.Hour {
			t.Errorf("remaining = %s", remaining)
		}
	})

	t.Run("expired", func(t *testing.T) {
		v := validityBetween(now.Add(-2*time.Hour), now.Add(-time.Hour))
		if _, ok := v.TimeToExpiration(); ok {
			t.Error("ok = true for an expired interval")
		}
	})

	t.Run("not yet valid", func(t *testing.T) {
		v := validityBetween(now.Add(time.Hour), now.Add(2*time.Hour))
		if _, ok := v.TimeToExpiration(); ok {
			t.Error("ok = true for a not-yet-valid interval")
		}
	})
}
