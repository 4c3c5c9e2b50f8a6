package x509der

import (
	encoding_asn1 "encoding/asn1"
	"fmt"
	"math/big"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

//	TBSCertList  ::=  SEQUENCE  {
//	     version                 Version OPTIONAL,
//	                                  -- if present, MUST be v2
//	     signature               AlgorithmIdentifier,
//	     issuer                  Name,
//	     thisUpdate              Time,
//	     nextUpdate              Time OPTIONAL,
//	     revokedCertificates     SEQUENCE OF SEQUENCE  {
//	          userCertificate         CertificateSerialNumber,
//	          revocationDate          Time,
//	          crlEntryExtensions      Extensions OPTIONAL
//	                                   -- if present, version MUST be v2
//	                               }  OPTIONAL,
//	     crlExtensions           [0]  EXPLICIT Extensions OPTIONAL
//	                                   -- if present, version MUST be v2
//	     }
//
// Unlike a TBSCertificate, the CRL version is a plain INTEGER with no
// wrapping tag; absence means v1.
type TBSCertList struct {
	Version             *Version `json:",omitempty"`
	Signature           AlgorithmIdentifier
	Issuer              Name
	ThisUpdate          Time
	NextUpdate          *Time `json:",omitempty"`
	RevokedCertificates []RevokedCertificate
	Extensions          Extensions
	// Raw is the complete encoded TBSCertList element: the exact bytes
	// covered by the envelope signature.
	Raw cryptobyte.String `json:"-"`
}

func ParseTBSCertList(der *cryptobyte.String) (TBSCertList, error) {
	var raw cryptobyte.String
	if !der.ReadASN1Element(&raw, asn1.SEQUENCE) {
		return TBSCertList{}, readErr(*der, ErrInvalidTag, "reading tbsCertList")
	}
	body := raw
	var tbs cryptobyte.String
	if !body.ReadASN1(&tbs, asn1.SEQUENCE) {
		return TBSCertList{}, readErr(body, ErrInvalidTag, "reading tbsCertList")
	}

	var version *Version
	if tbs.PeekASN1Tag(asn1.INTEGER) {
		var v uint
		if !tbs.ReadASN1Integer(&v) {
			return TBSCertList{}, readErr(tbs, ErrInvalidVersion, "reading CRL version")
		}
		ver := Version(v)
		version = &ver
	}

	signature, err := ParseAlgorithmIdentifier(&tbs)
	if err != nil {
		return TBSCertList{}, fmt.Errorf("parsing signature algorithm: %w", err)
	}

	issuer, err := ParseName(&tbs)
	if err != nil {
		return TBSCertList{}, fmt.Errorf("parsing issuer: %w", err)
	}

	thisUpdate, err := ParseTime(&tbs)
	if err != nil {
		return TBSCertList{}, fmt.Errorf("parsing thisUpdate: %w", err)
	}

	nextUpdate, err := parseOptionalTime(&tbs)
	if err != nil {
		return TBSCertList{}, fmt.Errorf("parsing nextUpdate: %w", err)
	}

	var revokedCertificates []RevokedCertificate
	if tbs.PeekASN1Tag(asn1.SEQUENCE) {
		revokedCertificates, err = ParseSequenceOf[RevokedCertificate](&tbs, asn1.SEQUENCE)
		if err != nil {
			return TBSCertList{}, fmt.Errorf("parsing revokedCertificates: %w", err)
		}
	}

	extensions, err := parseTaggedExtensions(&tbs, 0)
	if err != nil {
		return TBSCertList{}, fmt.Errorf("parsing CRL extensions: %w", err)
	}

	if !tbs.Empty() {
		return TBSCertList{}, fmt.Errorf("after tbsCertList: %w", ErrTrailingData)
	}

	return TBSCertList{
		Version:             version,
		Signature:           signature,
		Issuer:              issuer,
		ThisUpdate:          thisUpdate,
		NextUpdate:          nextUpdate,
		RevokedCertificates: revokedCertificates,
		Extensions:          extensions,
		Raw:                 raw,
	}, nil
}

// RevokedCertificate is one entry of the revokedCertificates list.
type RevokedCertificate struct {
	SerialNumber   SerialNumber
	RevocationDate Time
	Extensions     Extensions
}

func (r *RevokedCertificate) Parse(der *cryptobyte.String) error {
	var entry cryptobyte.String
	if !der.ReadASN1(&entry, asn1.SEQUENCE) {
		return readErr(*der, ErrInvalidTag, "reading revokedCertificate")
	}

	serialNumber, err := parseSerialNumber(&entry)
	if err != nil {
		return err
	}

	revocationDate, err := ParseTime(&entry)
	if err != nil {
		return fmt.Errorf("parsing revocationDate: %w", err)
	}

	// crlEntryExtensions is an untagged SEQUENCE, optional by position
	var extensions Extensions
	if entry.PeekASN1Tag(asn1.SEQUENCE) {
		extensions, err = parseExtensionSequence(&entry)
		if err != nil {
			return fmt.Errorf("parsing crlEntryExtensions: %w", err)
		}
	}

	if !entry.Empty() {
		return fmt.Errorf("after revokedCertificate: %w", ErrTrailingData)
	}

	r.SerialNumber = serialNumber
	r.RevocationDate = revocationDate
	r.Extensions = extensions
	return nil
}

// ReasonCode returns the revocation reason of this entry, defaulting to
// unspecified when the extension is absent.
func (r *RevokedCertificate) ReasonCode() ReasonCode {
	ext, found := r.Extensions.Get(OIDExtensionReasonCode)
	if !found {
		return ReasonUnspecified
	}
	code, ok := ext.Parsed.(ReasonCode)
	if !ok {
		return ReasonUnspecified
	}
	return code
}

// InvalidityDate returns the suspected compromise date of this entry, if
// present.
func (r *RevokedCertificate) InvalidityDate() (InvalidityDate, bool) {
	ext, found := r.Extensions.Get(OIDExtensionInvalidityDate)
	if !found {
		return InvalidityDate{}, false
	}
	date, ok := ext.Parsed.(InvalidityDate)
	return date, ok
}

//	CertificateList  ::=  SEQUENCE  {
//	     tbsCertList          TBSCertList,
//	     signatureAlgorithm   AlgorithmIdentifier,
//	     signatureValue       BIT STRING  }
type CertificateRevocationList struct {
	TBSCertList        TBSCertList
	SignatureAlgorithm AlgorithmIdentifier
	SignatureValue     encoding_asn1.BitString
}

// ParseCertificateRevocationList decodes one DER-encoded CertificateList
// from der, leaving any trailing bytes unconsumed for the caller.
func ParseCertificateRevocationList(der *cryptobyte.String) (*CertificateRevocationList, error) {
	var certificateList cryptobyte.String
	if !der.ReadASN1(&certificateList, asn1.SEQUENCE) {
		return nil, readErr(*der, ErrInvalidTag, "reading CertificateList")
	}

	tbsCertList, err := ParseTBSCertList(&certificateList)
	if err != nil {
		return nil, err
	}

	signatureAlgorithm, err := ParseAlgorithmIdentifier(&certificateList)
	if err != nil {
		return nil, fmt.Errorf("parsing signatureAlgorithm: %w", err)
	}

	var signatureValue encoding_asn1.BitString
	if !certificateList.ReadASN1BitString(&signatureValue) {
		return nil, readErr(certificateList, ErrInvalidSignatureValue, "reading signatureValue")
	}

	if !certificateList.Empty() {
		return nil, fmt.Errorf("after CertificateList: %w", ErrTrailingData)
	}

	return &CertificateRevocationList{
		TBSCertList:        tbsCertList,
		SignatureAlgorithm: signatureAlgorithm,
		SignatureValue:     signatureValue,
	}, nil
}

// Version returns the CRL version, defaulting to v1 when the field is
// absent.
func (c *CertificateRevocationList) Version() Version {
	if c.TBSCertList.Version == nil {
		return V1
	}
	return *c.TBSCertList.Version
}

// Issuer returns the CRL issuer name.
func (c *CertificateRevocationList) Issuer() *Name {
	return &c.TBSCertList.Issuer
}

// LastUpdate returns the thisUpdate time.
func (c *CertificateRevocationList) LastUpdate() Time {
	return c.TBSCertList.ThisUpdate
}

// NextUpdate returns the nextUpdate time, if present.
func (c *CertificateRevocationList) NextUpdate() (Time, bool) {
	if c.TBSCertList.NextUpdate == nil {
		return Time{}, false
	}
	return *c.TBSCertList.NextUpdate, true
}

// RevokedCertificates returns the revocation entries in encoded order. The
// list is empty for a CRL that revokes nothing.
func (c *CertificateRevocationList) RevokedCertificates() []RevokedCertificate {
	return c.TBSCertList.RevokedCertificates
}

// Extensions returns the CRL-level extension set.
func (c *CertificateRevocationList) Extensions() *Extensions {
	return &c.TBSCertList.Extensions
}

// RawTBS returns the exact encoded bytes the signature covers.
func (c *CertificateRevocationList) RawTBS() []byte {
	return c.TBSCertList.Raw
}

// CRLNumber returns the monotonically increasing CRL number, if present.
func (c *CertificateRevocationList) CRLNumber() (*big.Int, bool) {
	ext, found := c.TBSCertList.Extensions.Get(OIDExtensionCRLNumber)
	if !found {
		return nil, false
	}
	number, ok := ext.Parsed.(CRLNumber)
	if !ok {
		return nil, false
	}
	return number.Value, true
}
