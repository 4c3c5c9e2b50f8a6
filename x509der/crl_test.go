package x509der

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"

	"golang.org/x/crypto/cryptobyte"
)

func newTestCRL(t *testing.T, template *x509.RevocationList) []byte {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	issuer := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "Test CRL Issuer"},
		NotBefore:             time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		NotAfter:              time.Date(2034, 1, 1, 0, 0, 0, 0, time.UTC),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	issuerDER, err := x509.CreateCertificate(rand.Reader, issuer, issuer, &key.PublicKey, key)
	if err != nil {
		t.Fatal(err)
	}
	issuerCert, err := x509.ParseCertificate(issuerDER)
	if err != nil {
		t.Fatal(err)
	}
	der, err := x509.CreateRevocationList(rand.Reader, template, issuerCert, key)
	if err != nil {
		t.Fatal(err)
	}
	return der
}

func TestParseCertificateRevocationList(t *testing.T) {
	thisUpdate := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	nextUpdate := time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC)
	revocationTime := time.Date(2024, 5, 30, 12, 0, 0, 0, time.UTC)

	der := newTestCRL(t, &x509.RevocationList{
		Number:     big.NewInt(7),
		ThisUpdate: thisUpdate,
		NextUpdate: nextUpdate,
		RevokedCertificateEntries: []x509.RevocationListEntry{{
			SerialNumber:   big.NewInt(0x42),
			RevocationTime: revocationTime,
			ReasonCode:     1, // keyCompromise
		}},
	})

	input := cryptobyte.String(der)
	crl, err := ParseCertificateRevocationList(&input)
	if err != nil {
		t.Fatal(err)
	}
	if !input.Empty() {
		t.Errorf("unconsumed input of %d bytes", len(input))
	}

	if got := crl.Version(); got != V2 {
		t.Errorf("Version() = %s, want %s", got, V2)
	}
	if cn, ok := crl.Issuer().CommonName(); !ok || cn != "Test CRL Issuer" {
		t.Errorf("Issuer().CommonName() = %q, %t", cn, ok)
	}
	if !crl.LastUpdate().Time.Equal(thisUpdate) {
		t.Errorf("LastUpdate() = %s, want %s", crl.LastUpdate().Time, thisUpdate)
	}
	next, ok := crl.NextUpdate()
	if !ok || !next.Time.Equal(nextUpdate) {
		t.Errorf("NextUpdate() = %s, %t", next.Time, ok)
	}

	number, ok := crl.CRLNumber()
	if !ok || number.Cmp(big.NewInt(7)) != 0 {
		t.Errorf("CRLNumber() = %s, %t", number, ok)
	}

	revoked := crl.RevokedCertificates()
	if len(revoked) != 1 {
		t.Fatalf("RevokedCertificates() has %d entries, want 1", len(revoked))
	}
	entry := revoked[0]
	if entry.SerialNumber.Value.Cmp(big.NewInt(0x42)) != 0 {
		t.Errorf("entry serial = %s", entry.SerialNumber.Value)
	}
	if !entry.RevocationDate.Time.Equal(revocationTime) {
		t.Errorf("entry RevocationDate = %s, want %s", entry.RevocationDate.Time, revocationTime)
	}
	if got := entry.ReasonCode(); got != ReasonKeyCompromise {
		t.Errorf("entry ReasonCode() = %s, want %s", got, ReasonKeyCompromise)
	}
	if _, ok := entry.InvalidityDate(); ok {
		t.Error("InvalidityDate() present on an entry without one")
	}
}

func TestCRLRawTBSMatchesSignedBytes(t *testing.T) {
	der := newTestCRL(t, &x509.RevocationList{
		Number:     big.NewInt(1),
		ThisUpdate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		NextUpdate: time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC),
	})

	stdCRL, err := x509.ParseRevocationList(der)
	if err != nil {
		t.Fatal(err)
	}

	input := cryptobyte.String(der)
	crl, err := ParseCertificateRevocationList(&input)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(crl.RawTBS(), stdCRL.RawTBSRevocationList) {
		t.Error("RawTBS() differs from the stdlib TBS span")
	}
	if !bytes.Equal(crl.SignatureValue.Bytes, stdCRL.Signature) {
		t.Error("SignatureValue differs from the stdlib signature")
	}
}

func TestParseEmptyCRL(t *testing.T) {
	der := newTestCRL(t, &x509.RevocationList{
		Number:     big.NewInt(2),
		ThisUpdate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		NextUpdate: time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC),
	})

	input := cryptobyte.String(der)
	crl, err := ParseCertificateRevocationList(&input)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(crl.RevokedCertificates()); got != 0 {
		t.Errorf("RevokedCertificates() has %d entries, want 0", got)
	}
}

func TestReasonCodeString(t *testing.T) {
	if got := ReasonCessationOfOperation.String(); got != "cessationOfOperation" {
		t.Errorf("String() = %q", got)
	}
	if got := ReasonCode(42).String(); got != "reasonCode(42)" {
		t.Errorf("String() = %q", got)
	}
}
