package pem

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"testing"
	"time"
)

func testPEMInputs(t *testing.T) (certPEM, crlPEM, csrPEM []byte) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}

	template := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "pem.example.com"},
		NotBefore:             time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		NotAfter:              time.Date(2034, 1, 1, 0, 0, 0, 0, time.UTC),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	certDER, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatal(err)
	}
	issuer, err := x509.ParseCertificate(certDER)
	if err != nil {
		t.Fatal(err)
	}

	crlDER, err := x509.CreateRevocationList(rand.Reader, &x509.RevocationList{
		Number:     big.NewInt(1),
		ThisUpdate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		NextUpdate: time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC),
	}, issuer, key)
	if err != nil {
		t.Fatal(err)
	}

	csrDER, err := x509.CreateCertificateRequest(rand.Reader, &x509.CertificateRequest{
		Subject: pkix.Name{CommonName: "pem.example.com"},
	}, key)
	if err != nil {
		t.Fatal(err)
	}

	certPEM = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})
	crlPEM = pem.EncodeToMemory(&pem.Block{Type: "X509 CRL", Bytes: crlDER})
	csrPEM = pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE REQUEST", Bytes: csrDER})
	return certPEM, crlPEM, csrPEM
}

func TestLoadCertificates(t *testing.T) {
	certPEM, crlPEM, _ := testPEMInputs(t)

	// two certs with an unrelated block between them
	content := append(append(append([]byte{}, certPEM...), crlPEM...), certPEM...)
	certs, err := LoadCertificates(content)
	if err != nil {
		t.Fatal(err)
	}
	if len(certs) != 2 {
		t.Fatalf("loaded %d certificates, want 2", len(certs))
	}
	if cn, ok := certs[0].Subject().CommonName(); !ok || cn != "pem.example.com" {
		t.Errorf("Subject().CommonName() = %q, %t", cn, ok)
	}
}

func TestLoadCertificateLists(t *testing.T) {
	certPEM, crlPEM, _ := testPEMInputs(t)

	content := append(append([]byte{}, certPEM...), crlPEM...)
	crls, err := LoadCertificateLists(content)
	if err != nil {
		t.Fatal(err)
	}
	if len(crls) != 1 {
		t.Fatalf("loaded %d CRLs, want 1", len(crls))
	}
	if cn, ok := crls[0].Issuer().CommonName(); !ok || cn != "pem.example.com" {
		t.Errorf("Issuer().CommonName() = %q, %t", cn, ok)
	}
}

func TestLoadCertificateRequests(t *testing.T) {
	_, _, csrPEM := testPEMInputs(t)

	csrs, err := LoadCertificateRequests(csrPEM)
	if err != nil {
		t.Fatal(err)
	}
	if len(csrs) != 1 {
		t.Fatalf("loaded %d CSRs, want 1", len(csrs))
	}

	// the legacy label some tools emit
	block, _ := pem.Decode(csrPEM)
	legacy := pem.EncodeToMemory(&pem.Block{Type: "NEW CERTIFICATE REQUEST", Bytes: block.Bytes})
	csrs, err = LoadCertificateRequests(legacy)
	if err != nil {
		t.Fatal(err)
	}
	if len(csrs) != 1 {
		t.Fatalf("loaded %d legacy CSRs, want 1", len(csrs))
	}
}

func TestLoadNoBlocks(t *testing.T) {
	certs, err := LoadCertificates([]byte("no pem here"))
	if err != nil {
		t.Fatal(err)
	}
	if len(certs) != 0 {
		t.Errorf("loaded %d certificates from non-PEM content", len(certs))
	}
}
