package x509der

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"testing"

	"golang.org/x/crypto/cryptobyte"
)

func newTestCSR(t *testing.T, template *x509.CertificateRequest) []byte {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	der, err := x509.CreateCertificateRequest(rand.Reader, template, key)
	if err != nil {
		t.Fatal(err)
	}
	return der
}

func TestParseCertificationRequest(t *testing.T) {
	der := newTestCSR(t, &x509.CertificateRequest{
		Subject: pkix.Name{
			CommonName:   "csr.example.com",
			Organization: []string{"Example Org"},
		},
		DNSNames: []string{"csr.example.com", "www.example.com"},
	})

	input := cryptobyte.String(der)
	csr, err := ParseCertificationRequest(&input)
	if err != nil {
		t.Fatal(err)
	}
	if !input.Empty() {
		t.Errorf("unconsumed input of %d bytes", len(input))
	}

	if got := csr.Version(); got != V1 {
		t.Errorf("Version() = %s, want %s", got, V1)
	}
	if cn, ok := csr.Subject().CommonName(); !ok || cn != "csr.example.com" {
		t.Errorf("Subject().CommonName() = %q, %t", cn, ok)
	}

	// id-ecPublicKey
	spki := csr.CertificationRequestInfo.SubjectPublicKeyInfo
	if !spki.Algorithm.Algorithm.Equal("1.2.840.10045.2.1") {
		t.Errorf("SPKI algorithm = %s", spki.Algorithm.Algorithm)
	}
	if spki.SubjectPublicKey.BitLength == 0 {
		t.Error("SubjectPublicKey is empty")
	}

	extensions, ok := csr.RequestedExtensions()
	if !ok {
		t.Fatal("RequestedExtensions() missing")
	}
	ext, found := extensions.Get(OIDExtensionSubjectAltName)
	if !found {
		t.Fatal("requested extensions lack a SAN")
	}
	san, ok := ext.Parsed.(SubjectAlternativeName)
	if !ok {
		t.Fatalf("Parsed is %T, want SubjectAlternativeName", ext.Parsed)
	}
	dns := san.DNSNames()
	if len(dns) != 2 || dns[0] != "csr.example.com" || dns[1] != "www.example.com" {
		t.Errorf("DNSNames() = %v", dns)
	}

	if _, ok := csr.ChallengePassword(); ok {
		t.Error("ChallengePassword() present on a CSR without one")
	}
}

func TestCSRRawTBSMatchesSignedBytes(t *testing.T) {
	der := newTestCSR(t, &x509.CertificateRequest{
		Subject: pkix.Name{CommonName: "csr.example.com"},
	})

	stdCSR, err := x509.ParseCertificateRequest(der)
	if err != nil {
		t.Fatal(err)
	}

	input := cryptobyte.String(der)
	csr, err := ParseCertificationRequest(&input)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(csr.RawTBS(), stdCSR.RawTBSCertificateRequest) {
		t.Error("RawTBS() differs from the stdlib span")
	}
	if !bytes.Equal(csr.SignatureValue.Bytes, stdCSR.Signature) {
		t.Error("SignatureValue differs from the stdlib signature")
	}
}

func TestParseCSRWithoutAttributes(t *testing.T) {
	der := newTestCSR(t, &x509.CertificateRequest{
		Subject: pkix.Name{CommonName: "bare.example.com"},
	})

	input := cryptobyte.String(der)
	csr, err := ParseCertificationRequest(&input)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := csr.RequestedExtensions(); ok {
		t.Error("RequestedExtensions() present on a CSR without extensions")
	}
	if got := csr.Attributes().Len(); got != 0 {
		t.Errorf("Attributes().Len() = %d, want 0", got)
	}
}
