package x509der

import (
	"bytes"
	"errors"
	"testing"

	"golang.org/x/crypto/cryptobyte"
)

func TestParseExtensionValueUnknownOID(t *testing.T) {
	oid := ObjectIdentifier{1, 2, 3, 4}
	value := cryptobyte.String([]byte{0x05, 0x00})

	t.Run("non-critical degrades", func(t *testing.T) {
		parsed, err := parseExtensionValue(oid, false, value)
		if err != nil {
			t.Fatal(err)
		}
		unsupported, ok := parsed.(UnsupportedExtension)
		if !ok {
			t.Fatalf("parsed is %T, want UnsupportedExtension", parsed)
		}
		if !bytes.Equal(unsupported.Raw, value) {
			t.Errorf("Raw = %x, want %x", []byte(unsupported.Raw), []byte(value))
		}
	})

	t.Run("critical rejects", func(t *testing.T) {
		_, err := parseExtensionValue(oid, true, value)
		if !errors.Is(err, ErrUnsupportedCriticalExtension) {
			t.Errorf("error = %v, want ErrUnsupportedCriticalExtension", err)
		}
	})
}

func TestParseExtensionValueBadPayload(t *testing.T) {
	// basicConstraints whose value is not a SEQUENCE
	oid := ObjectIdentifier{2, 5, 29, 19}
	value := cryptobyte.String([]byte{0x02, 0x01, 0x00})

	t.Run("non-critical degrades", func(t *testing.T) {
		parsed, err := parseExtensionValue(oid, false, value)
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := parsed.(UnsupportedExtension); !ok {
			t.Fatalf("parsed is %T, want UnsupportedExtension", parsed)
		}
	})

	t.Run("critical rejects", func(t *testing.T) {
		_, err := parseExtensionValue(oid, true, value)
		if !errors.Is(err, ErrUnsupportedCriticalExtension) {
			t.Errorf("error = %v, want ErrUnsupportedCriticalExtension", err)
		}
	})
}

func TestParseBasicConstraintsExtension(t *testing.T) {
	t.Run("CA with path length", func(t *testing.T) {
		// SEQUENCE { BOOLEAN TRUE, INTEGER 3 }
		input := cryptobyte.String([]byte{0x30, 0x06, 0x01, 0x01, 0xff, 0x02, 0x01, 0x03})
		bc, err := ParseBasicConstraintsExtension(&input)
		if err != nil {
			t.Fatal(err)
		}
		if !bc.CA {
			t.Error("CA = false")
		}
		if bc.PathLengthConstraint == nil || *bc.PathLengthConstraint != 3 {
			t.Errorf("PathLengthConstraint = %v", bc.PathLengthConstraint)
		}
	})

	t.Run("defaults", func(t *testing.T) {
		// SEQUENCE { }
		input := cryptobyte.String([]byte{0x30, 0x00})
		bc, err := ParseBasicConstraintsExtension(&input)
		if err != nil {
			t.Fatal(err)
		}
		if bc.CA {
			t.Error("CA = true for an empty BasicConstraints")
		}
		if bc.PathLengthConstraint != nil {
			t.Errorf("PathLengthConstraint = %d", *bc.PathLengthConstraint)
		}
	})
}

func TestParseKeyUsageExtension(t *testing.T) {
	// BIT STRING asserting digitalSignature(0) and cRLSign(6): bits 1000001x
	input := cryptobyte.String([]byte{0x03, 0x02, 0x01, 0x82})
	ku, err := ParseKeyUsageExtension(&input)
	if err != nil {
		t.Fatal(err)
	}
	if !ku.Has(KeyUsageDigitalSignature) {
		t.Error("digitalSignature not asserted")
	}
	if !ku.Has(KeyUsageCRLSign) {
		t.Error("cRLSign not asserted")
	}
	if ku.Has(KeyUsageKeyEncipherment) {
		t.Error("keyEncipherment asserted")
	}
}

func TestParseSKIExtension(t *testing.T) {
	input := cryptobyte.String([]byte{0x04, 0x03, 0xaa, 0xbb, 0xcc})
	ski, err := ParseSKIExtension(&input)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(ski, []byte{0xaa, 0xbb, 0xcc}) {
		t.Errorf("SKI = %x", []byte(ski))
	}
}

func TestParseInhibitAnyPolicyExtension(t *testing.T) {
	input := cryptobyte.String([]byte{0x02, 0x01, 0x05})
	iap, err := ParseInhibitAnyPolicyExtension(&input)
	if err != nil {
		t.Fatal(err)
	}
	if iap != 5 {
		t.Errorf("InhibitAnyPolicy = %d, want 5", iap)
	}
}

func TestParseReasonCodeExtension(t *testing.T) {
	// ENUMERATED 4 (superseded)
	input := cryptobyte.String([]byte{0x0a, 0x01, 0x04})
	code, err := ParseReasonCodeExtension(&input)
	if err != nil {
		t.Fatal(err)
	}
	if code != ReasonSuperseded {
		t.Errorf("ReasonCode = %s, want %s", code, ReasonSuperseded)
	}
}

func TestExtensionsDuplicateAdd(t *testing.T) {
	oid := ObjectIdentifier{2, 5, 29, 15}
	var extensions Extensions
	if err := extensions.add(Extension{OID: oid}); err != nil {
		t.Fatal(err)
	}
	err := extensions.add(Extension{OID: oid})
	if !errors.Is(err, ErrDuplicateExtension) {
		t.Errorf("error = %v, want ErrDuplicateExtension", err)
	}
	if extensions.Len() != 1 {
		t.Errorf("Len() = %d, want 1", extensions.Len())
	}
}

func TestExtensionsOrderPreserved(t *testing.T) {
	var extensions Extensions
	oids := []ObjectIdentifier{{2, 5, 29, 15}, {2, 5, 29, 19}, {2, 5, 29, 17}}
	for _, oid := range oids {
		if err := extensions.add(Extension{OID: oid}); err != nil {
			t.Fatal(err)
		}
	}
	for i, ext := range extensions.All() {
		if !ext.OID.Equal(oids[i].String()) {
			t.Errorf("extension %d is %s, want %s", i, ext.OID, oids[i])
		}
	}
}

func TestParseExtensionTrailingData(t *testing.T) {
	// a known OID whose value carries bytes after the decoded structure
	oid := ObjectIdentifier{2, 5, 29, 19}
	value := cryptobyte.String([]byte{0x30, 0x00, 0xff})
	_, err := parseExtensionValue(oid, true, value)
	if !errors.Is(err, ErrUnsupportedCriticalExtension) {
		t.Errorf("error = %v, want ErrUnsupportedCriticalExtension", err)
	}
}
