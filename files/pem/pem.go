// Package pem loads DER objects out of PEM-armored files.
package pem

import (
	"encoding/pem"

	"github.com/certspan/certspan/x509der"
	"golang.org/x/crypto/cryptobyte"
)

// LoadCertificates parses every CERTIFICATE block in content. Blocks of
// other types are skipped.
func LoadCertificates(content []byte) ([]*x509der.Certificate, error) {
	var block *pem.Block
	var certs []*x509der.Certificate

	for {
		block, content = pem.Decode(content)
		if block == nil {
			return certs, nil
		}
		if block.Type != "CERTIFICATE" {
			continue
		}

		der := cryptobyte.String(block.Bytes)
		certificate, err := x509der.ParseCertificate(&der)
		if err != nil {
			return nil, err
		}
		certs = append(certs, certificate)
	}
}

// LoadCertificateLists parses every X509 CRL block in content. Blocks of
// other types are skipped.
func LoadCertificateLists(content []byte) ([]*x509der.CertificateRevocationList, error) {
	var block *pem.Block
	var crls []*x509der.CertificateRevocationList

	for {
		block, content = pem.Decode(content)
		if block == nil {
			return crls, nil
		}
		if block.Type != "X509 CRL" {
			continue
		}

		der := cryptobyte.String(block.Bytes)
		crl, err := x509der.ParseCertificateRevocationList(&der)
		if err != nil {
			return nil, err
		}
		crls = append(crls, crl)
	}
}

// LoadCertificateRequests parses every CERTIFICATE REQUEST block in
// content. The legacy NEW CERTIFICATE REQUEST label some tools emit is
// accepted too; other block types are skipped.
func LoadCertificateRequests(content []byte) ([]*x509der.CertificationRequest, error) {
	var block *pem.Block
	var csrs []*x509der.CertificationRequest

	for {
		block, content = pem.Decode(content)
		if block == nil {
			return csrs, nil
		}
		if block.Type != "CERTIFICATE REQUEST" && block.Type != "NEW CERTIFICATE REQUEST" {
			continue
		}

		der := cryptobyte.String(block.Bytes)
		csr, err := x509der.ParseCertificationRequest(&der)
		if err != nil {
			return nil, err
		}
		csrs = append(csrs, csr)
	}
}
