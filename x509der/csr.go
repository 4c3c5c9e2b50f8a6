package x509der

import (
	encoding_asn1 "encoding/asn1"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

// ParsedAttribute is the closed set of decoded CSR attribute payloads.
type ParsedAttribute interface {
	isParsedAttribute()
}

// UnsupportedAttribute carries the untouched raw values of an attribute
// whose OID is outside the registry or whose specialized decode failed.
// Attributes have no critical bit, so a failed decode always degrades.
type UnsupportedAttribute struct {
	Raw cryptobyte.String
}

// ExtensionRequest is the PKCS#9 extensionRequest attribute: the extensions
// the requester asks the CA to include in the issued certificate.
type ExtensionRequest struct {
	Extensions Extensions
}

// ChallengePassword is the PKCS#9 challengePassword attribute.
type ChallengePassword string

func (UnsupportedAttribute) isParsedAttribute() {}
func (ExtensionRequest) isParsedAttribute()     {}
func (ChallengePassword) isParsedAttribute()    {}

//	Attribute { ATTRIBUTE:IOSet } ::= SEQUENCE {
//	    type   ATTRIBUTE.&id({IOSet}),
//	    values SET SIZE(1..MAX) OF ATTRIBUTE.&Type({IOSet}{@type})
//	}
type Attribute struct {
	OID ObjectIdentifier
	// Value is the complete encoded SET OF values element, preserved
	// unmodified even for recognized attributes.
	Value  cryptobyte.String
	Parsed ParsedAttribute
}

func (a *Attribute) Parse(der *cryptobyte.String) error {
	var attribute cryptobyte.String
	if !der.ReadASN1(&attribute, asn1.SEQUENCE) {
		return readErr(*der, ErrInvalidAttributes, "reading Attribute")
	}

	oid, err := ParseObjectIdentifier(&attribute)
	if err != nil {
		return fmt.Errorf("reading Attribute OID: %w", ErrInvalidAttributes)
	}

	var values cryptobyte.String
	if !attribute.ReadASN1Element(&values, asn1.SET) {
		return readErr(attribute, ErrInvalidAttributes, fmt.Sprintf("reading attribute %s values", oid))
	}
	if !attribute.Empty() {
		return fmt.Errorf("after attribute %s: %w", oid, ErrTrailingData)
	}

	a.OID = oid
	a.Value = values
	a.Parsed = parseAttributeValue(oid, values)
	return nil
}

// parseAttributeValue routes the SET OF values to the decoder registered
// for oid. Unlike extensions, attributes carry no criticality, so failures
// always degrade to UnsupportedAttribute with the raw bytes preserved.
func parseAttributeValue(oid ObjectIdentifier, values cryptobyte.String) ParsedAttribute {
	parse, known := attributeParsers[oid.String()]
	if !known {
		return UnsupportedAttribute{Raw: values}
	}

	rest := values
	var set cryptobyte.String
	if !rest.ReadASN1(&set, asn1.SET) {
		return UnsupportedAttribute{Raw: values}
	}

	parsed, err := parse(&set)
	if err != nil || !set.Empty() {
		return UnsupportedAttribute{Raw: values}
	}
	return parsed
}

type attributeParser func(der *cryptobyte.String) (ParsedAttribute, error)

func wrapAttr[T ParsedAttribute](parse func(*cryptobyte.String) (T, error)) attributeParser {
	return func(der *cryptobyte.String) (ParsedAttribute, error) {
		v, err := parse(der)
		if err != nil {
			var zero ParsedAttribute
			return zero, err
		}
		return v, nil
	}
}

// attributeParsers maps an attribute OID to its decoder. Each decoder
// consumes a single value from the SET. Process-wide static data,
// initialized once and never mutated.
var attributeParsers = map[string]attributeParser{
	OIDAttributeExtensionRequest:  wrapAttr(parseExtensionRequestAttribute),
	OIDAttributeChallengePassword: wrapAttr(parseChallengePasswordAttribute),
}

func parseExtensionRequestAttribute(der *cryptobyte.String) (ExtensionRequest, error) {
	extensions, err := parseExtensionSequence(der)
	if err != nil {
		return ExtensionRequest{}, err
	}
	return ExtensionRequest{Extensions: extensions}, nil
}

func parseChallengePasswordAttribute(der *cryptobyte.String) (ChallengePassword, error) {
	var tag asn1.Tag
	var value cryptobyte.String
	if !der.ReadAnyASN1(&value, &tag) {
		return "", readErr(*der, ErrInvalidAttributes, "reading challengePassword")
	}
	password, err := parseString(tag, value)
	if err != nil {
		return "", err
	}
	return ChallengePassword(password), nil
}

// Attributes is an OID-keyed attribute set that preserves the original
// order. Duplicate OIDs are rejected during parsing.
type Attributes struct {
	list  []Attribute
	index map[string]int
}

func (a *Attributes) add(attr Attribute) error {
	key := attr.OID.String()
	if _, dup := a.index[key]; dup {
		return fmt.Errorf("attribute %s: %w", key, ErrInvalidAttributes)
	}
	if a.index == nil {
		a.index = make(map[string]int)
	}
	a.index[key] = len(a.list)
	a.list = append(a.list, attr)
	return nil
}

// Get looks up an attribute by its dotted OID.
func (a *Attributes) Get(dotted string) (*Attribute, bool) {
	i, ok := a.index[dotted]
	if !ok {
		return nil, false
	}
	return &a.list[i], true
}

// All returns the attributes in their original order.
func (a *Attributes) All() []Attribute {
	return a.list
}

func (a *Attributes) Len() int {
	return len(a.list)
}

func (a Attributes) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.list)
}

// parseTaggedAttributes reads the [0] IMPLICIT SET OF Attribute of a
// CertificationRequestInfo. RFC2986 marks the field non-optional, but an
// empty set is common and an absent wrapper is tolerated as empty.
func parseTaggedAttributes(der *cryptobyte.String) (Attributes, error) {
	var wrapper cryptobyte.String
	var present bool
	if !der.ReadOptionalASN1(&wrapper, &present, asn1.Tag(0).Constructed().ContextSpecific()) {
		return Attributes{}, readErr(*der, ErrInvalidAttributes, "reading attributes wrapper")
	}
	if !present {
		return Attributes{}, nil
	}

	var attributes Attributes
	for !wrapper.Empty() {
		var attr Attribute
		if err := attr.Parse(&wrapper); err != nil {
			return Attributes{}, err
		}
		if err := attributes.add(attr); err != nil {
			return Attributes{}, err
		}
	}
	return attributes, nil
}

//	CertificationRequestInfo ::= SEQUENCE {
//	    version       INTEGER { v1(0) } (v1,...),
//	    subject       Name,
//	    subjectPKInfo SubjectPublicKeyInfo{{ PKInfoAlgorithms }},
//	    attributes    [0] Attributes{{ CRIAttributes }}
//	}
//
// Unlike certificates and CRLs the version field is required, and v1 is the
// only version RFC2986 defines. Higher values are retained rather than
// rejected.
type CertificationRequestInfo struct {
	Version              Version
	Subject              Name
	SubjectPublicKeyInfo SubjectPublicKeyInfo
	Attributes           Attributes
	// Raw is the complete encoded CertificationRequestInfo element: the
	// exact bytes covered by the envelope signature.
	Raw cryptobyte.String `json:"-"`
}

func ParseCertificationRequestInfo(der *cryptobyte.String) (CertificationRequestInfo, error) {
	var raw cryptobyte.String
	if !der.ReadASN1Element(&raw, asn1.SEQUENCE) {
		return CertificationRequestInfo{}, readErr(*der, ErrInvalidTag, "reading certificationRequestInfo")
	}
	body := raw
	var info cryptobyte.String
	if !body.ReadASN1(&info, asn1.SEQUENCE) {
		return CertificationRequestInfo{}, readErr(body, ErrInvalidTag, "reading certificationRequestInfo")
	}

	var version uint
	if !info.ReadASN1Integer(&version) {
		return CertificationRequestInfo{}, readErr(info, ErrInvalidVersion, "reading CSR version")
	}

	subject, err := ParseName(&info)
	if err != nil {
		return CertificationRequestInfo{}, fmt.Errorf("parsing subject: %w", err)
	}

	subjectPublicKeyInfo, err := ParseSubjectPublicKeyInfo(&info)
	if err != nil {
		return CertificationRequestInfo{}, fmt.Errorf("parsing SubjectPublicKeyInfo: %w", err)
	}

	attributes, err := parseTaggedAttributes(&info)
	if err != nil {
		return CertificationRequestInfo{}, fmt.Errorf("parsing attributes: %w", err)
	}

	if !info.Empty() {
		return CertificationRequestInfo{}, fmt.Errorf("after certificationRequestInfo: %w", ErrTrailingData)
	}

	return CertificationRequestInfo{
		Version:              Version(version),
		Subject:              subject,
		SubjectPublicKeyInfo: subjectPublicKeyInfo,
		Attributes:           attributes,
		Raw:                  raw,
	}, nil
}

//	CertificationRequest ::= SEQUENCE {
//	    certificationRequestInfo CertificationRequestInfo,
//	    signatureAlgorithm AlgorithmIdentifier{{ SignatureAlgorithms }},
//	    signature          BIT STRING
//	}
type CertificationRequest struct {
	CertificationRequestInfo CertificationRequestInfo
	SignatureAlgorithm       AlgorithmIdentifier
	SignatureValue           encoding_asn1.BitString
}

// ParseCertificationRequest decodes one DER-encoded PKCS#10
// CertificationRequest from der, leaving any trailing bytes unconsumed for
// the caller.
func ParseCertificationRequest(der *cryptobyte.String) (*CertificationRequest, error) {
	var certificationRequest cryptobyte.String
	if !der.ReadASN1(&certificationRequest, asn1.SEQUENCE) {
		return nil, readErr(*der, ErrInvalidTag, "reading CertificationRequest")
	}

	info, err := ParseCertificationRequestInfo(&certificationRequest)
	if err != nil {
		return nil, err
	}

	signatureAlgorithm, err := ParseAlgorithmIdentifier(&certificationRequest)
	if err != nil {
		return nil, fmt.Errorf("parsing signatureAlgorithm: %w", err)
	}

	var signatureValue encoding_asn1.BitString
	if !certificationRequest.ReadASN1BitString(&signatureValue) {
		return nil, readErr(certificationRequest, ErrInvalidSignatureValue, "reading signature")
	}

	if !certificationRequest.Empty() {
		return nil, fmt.Errorf("after CertificationRequest: %w", ErrTrailingData)
	}

	return &CertificationRequest{
		CertificationRequestInfo: info,
		SignatureAlgorithm:       signatureAlgorithm,
		SignatureValue:           signatureValue,
	}, nil
}

// Version returns the CSR version.
func (c *CertificationRequest) Version() Version {
	return c.CertificationRequestInfo.Version
}

// Subject returns the requested subject name.
func (c *CertificationRequest) Subject() *Name {
	return &c.CertificationRequestInfo.Subject
}

// Attributes returns the CSR attribute set.
func (c *CertificationRequest) Attributes() *Attributes {
	return &c.CertificationRequestInfo.Attributes
}

// RawTBS returns the exact encoded bytes the signature covers.
func (c *CertificationRequest) RawTBS() []byte {
	return c.CertificationRequestInfo.Raw
}

// RequestedExtensions returns the extensions of the extensionRequest
// attribute, if present and well formed.
func (c *CertificationRequest) RequestedExtensions() (*Extensions, bool) {
	attr, found := c.CertificationRequestInfo.Attributes.Get(OIDAttributeExtensionRequest)
	if !found {
		return nil, false
	}
	req, ok := attr.Parsed.(ExtensionRequest)
	if !ok {
		return nil, false
	}
	return &req.Extensions, true
}

// ChallengePassword returns the challengePassword attribute value, if
// present and well formed.
func (c *CertificationRequest) ChallengePassword() (string, bool) {
	attr, found := c.CertificationRequestInfo.Attributes.Get(OIDAttributeChallengePassword)
	if !found {
		return "", false
	}
	password, ok := attr.Parsed.(ChallengePassword)
	if !ok {
		return "", false
	}
	return string(password), true
}
