// Package x509der decodes DER-encoded X.509 certificates, certificate
// revocation lists and certification requests per RFC5280.
//
// Decoded objects are zero-copy views into the input buffer: raw TBS spans,
// serial octets and extension values are sub-slices of the original bytes,
// so an external verifier can check signatures over exactly the bytes that
// were signed. The buffer must outlive every object decoded from it.
// Nothing is mutated after a parse returns, so decoded objects may be
// shared across goroutines without synchronization.
//
// Each Parse function consumes its structure from a *cryptobyte.String in
// place and leaves trailing bytes for the caller, which decides whether
// they are an error. Malformed input is reported with an error naming the
// field that failed, wrapping one of the Err* sentinel kinds; no partial
// objects are returned. The RFC5280 grammar has a fixed nesting depth, so
// adversarial inputs cannot drive unbounded recursion.
package x509der

import (
	encoding_asn1 "encoding/asn1"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

// Version ::= INTEGER {v1(0), v2(1), v3(2)}
type Version uint

const (
	V1 Version = 0
	V2 Version = 1
	V3 Version = 2
)

func (v Version) String() string {
	if v > 2 {
		return fmt.Sprintf("unknown(%d)", uint(v))
	}
	return fmt.Sprintf("v%d(%d)", uint(v)+1, uint(v))
}

// parseVersion reads the [0] EXPLICIT version of a TBSCertificate. When the
// tag is absent the version defaults to v1 and no input is consumed.
func parseVersion(der *cryptobyte.String) (Version, error) {
	var version uint
	if !der.ReadOptionalASN1Integer(&version, asn1.Tag(0).Constructed().ContextSpecific(), uint(V1)) {
		return 0, readErr(*der, ErrInvalidVersion, "reading version")
	}
	return Version(version), nil
}

// CertificateSerialNumber ::= INTEGER
//
// Both the arbitrary-precision value and the exact encoded content octets
// are retained: some validators compare serials byte-for-byte, independent
// of the numeric value.
type SerialNumber struct {
	Value *big.Int
	Raw   cryptobyte.String
}

func parseSerialNumber(der *cryptobyte.String) (SerialNumber, error) {
	var raw cryptobyte.String
	if !der.ReadASN1(&raw, asn1.INTEGER) {
		return SerialNumber{}, readErr(*der, ErrInvalidSerialNumber, "reading serial number")
	}
	if len(raw) == 0 {
		return SerialNumber{}, fmt.Errorf("empty serial number: %w", ErrInvalidSerialNumber)
	}
	if raw[0]&0x80 != 0 {
		// serials are unsigned per RFC5280 4.1.2.2
		return SerialNumber{}, fmt.Errorf("negative serial number: %w", ErrInvalidSerialNumber)
	}
	return SerialNumber{
		Value: new(big.Int).SetBytes(raw),
		Raw:   raw,
	}, nil
}

// String formats the serial as colon-separated hex octets.
func (s SerialNumber) String() string {
	if len(s.Raw) == 0 {
		return ""
	}
	parts := make([]string, len(s.Raw))
	for i, b := range s.Raw {
		parts[i] = fmt.Sprintf("%02x", b)
	}
	return strings.Join(parts, ":")
}

func (s SerialNumber) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UniqueIdentifier  ::=  BIT STRING
type UniqueIdentifier struct {
	BitString encoding_asn1.BitString
}

// parseUniqueIdentifier reads an optional [tag] IMPLICIT BIT STRING. The
// implicit tag replaces the BIT STRING tag, so the content octets (leading
// unused-bit count included) are interpreted directly.
func parseUniqueIdentifier(der *cryptobyte.String, tag uint8) (*UniqueIdentifier, error) {
	var content cryptobyte.String
	var present bool
	if !der.ReadOptionalASN1(&content, &present, asn1.Tag(tag).ContextSpecific()) {
		return nil, readErr(*der, ErrInvalidTag, "reading UniqueIdentifier")
	}
	if !present {
		return nil, nil
	}

	bs, err := bitStringFromContent(content)
	if err != nil {
		return nil, fmt.Errorf("reading UniqueIdentifier: %w", err)
	}
	return &UniqueIdentifier{BitString: bs}, nil
}

// bitStringFromContent interprets raw BIT STRING content octets, where the
// first octet counts the unused trailing bits.
func bitStringFromContent(content cryptobyte.String) (encoding_asn1.BitString, error) {
	if len(content) == 0 {
		return encoding_asn1.BitString{}, fmt.Errorf("empty BIT STRING: %w", ErrInvalidLength)
	}
	padding := int(content[0])
	bits := content[1:]
	if padding > 7 || (len(bits) == 0 && padding != 0) {
		return encoding_asn1.BitString{}, fmt.Errorf("BIT STRING padding of %d bits: %w", padding, ErrInvalidLength)
	}
	return encoding_asn1.BitString{Bytes: bits, BitLength: len(bits)*8 - padding}, nil
}

//	TBSCertificate  ::=  SEQUENCE  {
//		 version         [0]  EXPLICIT Version DEFAULT v1,
//		 serialNumber         CertificateSerialNumber,
//		 signature            AlgorithmIdentifier,
//		 issuer               Name,
//		 validity             Validity,
//		 subject              Name,
//		 subjectPublicKeyInfo SubjectPublicKeyInfo,
//		 issuerUniqueID  [1]  IMPLICIT UniqueIdentifier OPTIONAL,
//		                      -- If present, version MUST be v2 or v3
//		 subjectUniqueID [2]  IMPLICIT UniqueIdentifier OPTIONAL,
//		                      -- If present, version MUST be v2 or v3
//		 extensions      [3]  EXPLICIT Extensions OPTIONAL
//		                      -- If present, version MUST be v3
//		 }
//
// The version/field presence rules above are not enforced: RFC5280 marks
// them non-normative for decoding, and real-world certificates violate
// them. Callers that care can check Version against the optional fields.
type TBSCertificate struct {
	Version              Version
	SerialNumber         SerialNumber
	Signature            AlgorithmIdentifier
	Issuer               Name
	Validity             Validity
	Subject              Name
	SubjectPublicKeyInfo SubjectPublicKeyInfo
	IssuerUniqueID       *UniqueIdentifier `json:",omitempty"`
	SubjectUniqueID      *UniqueIdentifier `json:",omitempty"`
	Extensions           Extensions
	// Raw is the complete encoded TBSCertificate element: the exact bytes
	// covered by the envelope signature.
	Raw cryptobyte.String `json:"-"`
}

func ParseTBSCertificate(der *cryptobyte.String) (TBSCertificate, error) {
	var raw cryptobyte.String
	if !der.ReadASN1Element(&raw, asn1.SEQUENCE) {
		return TBSCertificate{}, readErr(*der, ErrInvalidTag, "reading tbsCertificate")
	}
	body := raw
	var tbs cryptobyte.String
	if !body.ReadASN1(&tbs, asn1.SEQUENCE) {
		return TBSCertificate{}, readErr(body, ErrInvalidTag, "reading tbsCertificate")
	}

	version, err := parseVersion(&tbs)
	if err != nil {
		return TBSCertificate{}, err
	}

	serialNumber, err := parseSerialNumber(&tbs)
	if err != nil {
		return TBSCertificate{}, err
	}

	signature, err := ParseAlgorithmIdentifier(&tbs)
	if err != nil {
		return TBSCertificate{}, fmt.Errorf("parsing signature algorithm: %w", err)
	}

	issuer, err := ParseName(&tbs)
	if err != nil {
		return TBSCertificate{}, fmt.Errorf("parsing issuer: %w", err)
	}

	validity, err := ParseValidity(&tbs)
	if err != nil {
		return TBSCertificate{}, fmt.Errorf("parsing validity: %w", err)
	}

	subject, err := ParseName(&tbs)
	if err != nil {
		return TBSCertificate{}, fmt.Errorf("parsing subject: %w", err)
	}

	subjectPublicKeyInfo, err := ParseSubjectPublicKeyInfo(&tbs)
	if err != nil {
		return TBSCertificate{}, fmt.Errorf("parsing SubjectPublicKeyInfo: %w", err)
	}

	issuerUniqueID, err := parseUniqueIdentifier(&tbs, 1)
	if err != nil {
		return TBSCertificate{}, fmt.Errorf("parsing issuer UniqueIdentifier: %w", err)
	}

	subjectUniqueID, err := parseUniqueIdentifier(&tbs, 2)
	if err != nil {
		return TBSCertificate{}, fmt.Errorf("parsing subject UniqueIdentifier: %w", err)
	}

	extensions, err := parseTaggedExtensions(&tbs, 3)
	if err != nil {
		return TBSCertificate{}, fmt.Errorf("parsing extensions: %w", err)
	}

	if !tbs.Empty() {
		return TBSCertificate{}, fmt.Errorf("after tbsCertificate: %w", ErrTrailingData)
	}

	return TBSCertificate{
		Version:              version,
		SerialNumber:         serialNumber,
		Signature:            signature,
		Issuer:               issuer,
		Validity:             validity,
		Subject:              subject,
		SubjectPublicKeyInfo: subjectPublicKeyInfo,
		IssuerUniqueID:       issuerUniqueID,
		SubjectUniqueID:      subjectUniqueID,
		Extensions:           extensions,
		Raw:                  raw,
	}, nil
}

//	Certificate  ::=  SEQUENCE  {
//	  tbsCertificate     TBSCertificate,
//	  signatureAlgorithm AlgorithmIdentifier,
//	  signatureValue     BIT STRING  }
type Certificate struct {
	TBSCertificate     TBSCertificate
	SignatureAlgorithm AlgorithmIdentifier
	SignatureValue     encoding_asn1.BitString
}

// ParseCertificate decodes one DER-encoded Certificate from der, leaving
// any trailing bytes unconsumed for the caller.
//
// No cross-check is made between the TBS-internal signature algorithm and
// the envelope-level one; RFC5280 requires them to match, but detecting a
// mismatch is a validation concern, not a decoding one.
func ParseCertificate(der *cryptobyte.String) (*Certificate, error) {
	var certificate cryptobyte.String
	if !der.ReadASN1(&certificate, asn1.SEQUENCE) {
		return nil, readErr(*der, ErrInvalidTag, "reading Certificate")
	}

	tbsCertificate, err := ParseTBSCertificate(&certificate)
	if err != nil {
		return nil, err
	}

	signatureAlgorithm, err := ParseAlgorithmIdentifier(&certificate)
	if err != nil {
		return nil, fmt.Errorf("parsing signatureAlgorithm: %w", err)
	}

	var signatureValue encoding_asn1.BitString
	if !certificate.ReadASN1BitString(&signatureValue) {
		return nil, readErr(certificate, ErrInvalidSignatureValue, "reading signatureValue")
	}

	if !certificate.Empty() {
		return nil, fmt.Errorf("after Certificate: %w", ErrTrailingData)
	}

	return &Certificate{
		TBSCertificate:     tbsCertificate,
		SignatureAlgorithm: signatureAlgorithm,
		SignatureValue:     signatureValue,
	}, nil
}

// Version returns the version of the encoded certificate.
func (c *Certificate) Version() Version {
	return c.TBSCertificate.Version
}

// SerialNumber returns the certificate serial number.
func (c *Certificate) SerialNumber() SerialNumber {
	return c.TBSCertificate.SerialNumber
}

// Subject returns the certificate subject name.
func (c *Certificate) Subject() *Name {
	return &c.TBSCertificate.Subject
}

// Issuer returns the certificate issuer name.
func (c *Certificate) Issuer() *Name {
	return &c.TBSCertificate.Issuer
}

// Validity returns the certificate validity interval.
func (c *Certificate) Validity() Validity {
	return c.TBSCertificate.Validity
}

// Extensions returns the certificate extension set.
func (c *Certificate) Extensions() *Extensions {
	return &c.TBSCertificate.Extensions
}

// RawTBS returns the exact encoded bytes the signature covers.
func (c *Certificate) RawTBS() []byte {
	return c.TBSCertificate.Raw
}

// The accessors below are read-only projections over the decoded extension
// set; none of them re-parse. Each returns the decoded payload, the
// extension's critical flag, and whether the extension is present with the
// expected payload type.

func (t *TBSCertificate) BasicConstraints() (bc BasicConstraints, critical, ok bool) {
	ext, found := t.Extensions.Get(OIDExtensionBasicConstraints)
	if !found {
		return BasicConstraints{}, false, false
	}
	bc, ok = ext.Parsed.(BasicConstraints)
	return bc, ext.Critical, ok
}

func (t *TBSCertificate) KeyUsage() (ku KeyUsage, critical, ok bool) {
	ext, found := t.Extensions.Get(OIDExtensionKeyUsage)
	if !found {
		return nil, false, false
	}
	ku, ok = ext.Parsed.(KeyUsage)
	return ku, ext.Critical, ok
}

func (t *TBSCertificate) ExtendedKeyUsage() (eku ExtendedKeyUsage, critical, ok bool) {
	ext, found := t.Extensions.Get(OIDExtensionExtendedKeyUsage)
	if !found {
		return nil, false, false
	}
	eku, ok = ext.Parsed.(ExtendedKeyUsage)
	return eku, ext.Critical, ok
}

func (t *TBSCertificate) SubjectAlternativeName() (san SubjectAlternativeName, critical, ok bool) {
	ext, found := t.Extensions.Get(OIDExtensionSubjectAltName)
	if !found {
		return nil, false, false
	}
	san, ok = ext.Parsed.(SubjectAlternativeName)
	return san, ext.Critical, ok
}

func (t *TBSCertificate) NameConstraints() (nc NameConstraints, critical, ok bool) {
	ext, found := t.Extensions.Get(OIDExtensionNameConstraints)
	if !found {
		return NameConstraints{}, false, false
	}
	nc, ok = ext.Parsed.(NameConstraints)
	return nc, ext.Critical, ok
}

func (t *TBSCertificate) PolicyMappings() (pm PolicyMappings, critical, ok bool) {
	ext, found := t.Extensions.Get(OIDExtensionPolicyMappings)
	if !found {
		return nil, false, false
	}
	pm, ok = ext.Parsed.(PolicyMappings)
	return pm, ext.Critical, ok
}

func (t *TBSCertificate) InhibitAnyPolicy() (iap InhibitAnyPolicy, critical, ok bool) {
	ext, found := t.Extensions.Get(OIDExtensionInhibitAnyPolicy)
	if !found {
		return 0, false, false
	}
	iap, ok = ext.Parsed.(InhibitAnyPolicy)
	return iap, ext.Critical, ok
}

// IsCA reports whether the certificate carries basicConstraints CA:true.
func (t *TBSCertificate) IsCA() bool {
	bc, _, ok := t.BasicConstraints()
	return ok && bc.CA
}
