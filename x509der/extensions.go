package x509der

import (
	encoding_asn1 "encoding/asn1"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

// ParsedExtension is the closed set of decoded extension payloads. The
// concrete type is selected by the extension OID through the static parser
// registry; OIDs outside the registry decode to UnsupportedExtension.
type ParsedExtension interface {
	isParsedExtension()
}

//	Extension  ::=  SEQUENCE  {
//	    extnID      OBJECT IDENTIFIER,
//	    critical    BOOLEAN DEFAULT FALSE,
//	    extnValue   OCTET STRING
//	    }
type Extension struct {
	OID      ObjectIdentifier
	Critical bool
	// Value is the raw content of extnValue, preserved unmodified even for
	// recognized extensions.
	Value  cryptobyte.String
	Parsed ParsedExtension
}

func (e *Extension) Parse(der *cryptobyte.String) error {
	var extension cryptobyte.String
	if !der.ReadASN1(&extension, asn1.SEQUENCE) {
		return readErr(*der, ErrInvalidExtensions, "reading Extension")
	}

	oid, err := ParseObjectIdentifier(&extension)
	if err != nil {
		return fmt.Errorf("reading Extension OID: %w", ErrInvalidExtensions)
	}

	critical := false
	if extension.PeekASN1Tag(asn1.BOOLEAN) {
		if !extension.ReadASN1Boolean(&critical) {
			return readErr(extension, ErrInvalidExtensions, "reading Extension critical flag")
		}
	}

	var value cryptobyte.String
	if !extension.ReadASN1(&value, asn1.OCTET_STRING) {
		return readErr(extension, ErrInvalidExtensions, fmt.Sprintf("reading extension %s value", oid))
	}
	if !extension.Empty() {
		return fmt.Errorf("after extension %s: %w", oid, ErrTrailingData)
	}

	parsed, err := parseExtensionValue(oid, critical, value)
	if err != nil {
		return err
	}

	e.OID = oid
	e.Critical = critical
	e.Value = value
	e.Parsed = parsed
	return nil
}

// parseExtensionValue routes value to the decoder registered for oid.
// Unrecognized OIDs and failed decodes degrade to UnsupportedExtension with
// the raw value preserved, except on critical extensions: RFC5280 requires
// rejecting a certificate whose critical extensions cannot be understood,
// so either condition there aborts the whole parse.
func parseExtensionValue(oid ObjectIdentifier, critical bool, value cryptobyte.String) (ParsedExtension, error) {
	parse, known := extensionParsers[oid.String()]
	if !known {
		if critical {
			return nil, fmt.Errorf("unrecognized critical extension %s: %w", oid, ErrUnsupportedCriticalExtension)
		}
		return UnsupportedExtension{Raw: value}, nil
	}

	rest := value
	parsed, err := parse(&rest)
	if err == nil && !rest.Empty() {
		err = fmt.Errorf("after extension %s value: %w", oid, ErrTrailingData)
	}
	if err != nil {
		if critical {
			return nil, fmt.Errorf("critical extension %s: %w: %w", oid, err, ErrUnsupportedCriticalExtension)
		}
		return UnsupportedExtension{Raw: value}, nil
	}
	return parsed, nil
}

type extensionParser func(der *cryptobyte.String) (ParsedExtension, error)

// wrapExt adapts a decoder with a concrete result type to the registry
// signature.
func wrapExt[T ParsedExtension](parse func(*cryptobyte.String) (T, error)) extensionParser {
	return func(der *cryptobyte.String) (ParsedExtension, error) {
		v, err := parse(der)
		if err != nil {
			var zero ParsedExtension
			return zero, err
		}
		return v, nil
	}
}

// extensionParsers maps an extension OID to its decoder. Process-wide
// static data, initialized once and never mutated.
var extensionParsers = map[string]extensionParser{
	OIDExtensionAuthorityKeyIdentifier: wrapExt(ParseAKIExtension),
	OIDExtensionSubjectKeyIdentifier:   wrapExt(ParseSKIExtension),
	OIDExtensionKeyUsage:               wrapExt(ParseKeyUsageExtension),
	OIDExtensionPrivateKeyUsagePeriod:  wrapExt(ParsePrivateKeyUsagePeriodExtension),
	OIDExtensionSubjectAltName:         wrapExt(ParseSANExtension),
	OIDExtensionBasicConstraints:       wrapExt(ParseBasicConstraintsExtension),
	OIDExtensionCRLNumber:              wrapExt(ParseCRLNumberExtension),
	OIDExtensionReasonCode:             wrapExt(ParseReasonCodeExtension),
	OIDExtensionInvalidityDate:         wrapExt(ParseInvalidityDateExtension),
	OIDExtensionNameConstraints:        wrapExt(ParseNameConstraintsExtension),
	OIDExtensionCRLDistributionPoints:  wrapExt(ParseCRLDPExtension),
	OIDExtensionCertificatePolicies:    wrapExt(ParseCertPoliciesExtension),
	OIDExtensionPolicyMappings:         wrapExt(ParsePolicyMappingsExtension),
	OIDExtensionExtendedKeyUsage:       wrapExt(ParseExtKeyUsageExtension),
	OIDExtensionInhibitAnyPolicy:       wrapExt(ParseInhibitAnyPolicyExtension),
	OIDExtensionAuthorityInfoAccess:    wrapExt(ParseAIAExtension),
	OIDExtensionTLSFeature:             wrapExt(ParseTLSFeatureExtension),
	OIDExtensionSCTList:                wrapExt(ParseSCTExtension),
	OIDExtensionPrecertPoison:          wrapExt(ParsePrecertPoisonExtension),
	OIDExtensionEntrustVersion:         wrapExt(ParseEntrustVersionExtension),
}

// Extensions is an OID-keyed extension set that preserves the original
// sequence order. A given OID appears at most once; duplicates are rejected
// during parsing with ErrDuplicateExtension rather than silently keeping
// either copy.
type Extensions struct {
	list  []Extension
	index map[string]int
}

func (e *Extensions) add(ext Extension) error {
	key := ext.OID.String()
	if _, dup := e.index[key]; dup {
		return fmt.Errorf("extension %s: %w", key, ErrDuplicateExtension)
	}
	if e.index == nil {
		e.index = make(map[string]int)
	}
	e.index[key] = len(e.list)
	e.list = append(e.list, ext)
	return nil
}

// Get looks up an extension by its dotted OID.
func (e *Extensions) Get(dotted string) (*Extension, bool) {
	i, ok := e.index[dotted]
	if !ok {
		return nil, false
	}
	return &e.list[i], true
}

// All returns the extensions in their original sequence order.
func (e *Extensions) All() []Extension {
	return e.list
}

func (e *Extensions) Len() int {
	return len(e.list)
}

func (e Extensions) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.list)
}

// parseTaggedExtensions reads the optional EXPLICIT [tag] SEQUENCE OF
// Extension wrapper ([3] on certificates, [0] on CRLs). Absence yields an
// empty set, never an error.
func parseTaggedExtensions(der *cryptobyte.String, tag uint8) (Extensions, error) {
	var wrapper cryptobyte.String
	var present bool
	if !der.ReadOptionalASN1(&wrapper, &present, asn1.Tag(tag).Constructed().ContextSpecific()) {
		return Extensions{}, readErr(*der, ErrInvalidExtensions, "reading extensions wrapper")
	}
	if !present {
		return Extensions{}, nil
	}

	extensions, err := parseExtensionSequence(&wrapper)
	if err != nil {
		return Extensions{}, err
	}
	if !wrapper.Empty() {
		return Extensions{}, fmt.Errorf("after extensions: %w", ErrTrailingData)
	}
	return extensions, nil
}

// parseExtensionSequence reads a SEQUENCE OF Extension into an OID-keyed
// set.
func parseExtensionSequence(der *cryptobyte.String) (Extensions, error) {
	var sequence cryptobyte.String
	if !der.ReadASN1(&sequence, asn1.SEQUENCE) {
		return Extensions{}, readErr(*der, ErrInvalidExtensions, "reading extensions sequence")
	}

	var extensions Extensions
	for !sequence.Empty() {
		var ext Extension
		if err := ext.Parse(&sequence); err != nil {
			return Extensions{}, err
		}
		if err := extensions.add(ext); err != nil {
			return Extensions{}, err
		}
	}
	return extensions, nil
}

// UnsupportedExtension carries the untouched raw value of an extension that
// is either outside the registry or failed its specialized decode while
// non-critical.
type UnsupportedExtension struct {
	Raw cryptobyte.String
}

type AuthorityKeyIdentifier struct {
	KeyIdentifier             []byte            `json:",omitempty"`
	AuthorityCertIssuer       []GeneralName     `json:",omitempty"`
	AuthorityCertSerialNumber cryptobyte.String `json:",omitempty"`
}

// ParseAKIExtension as described in RFC5280 4.2.1.1
//
//	AuthorityKeyIdentifier ::= SEQUENCE {
//	  keyIdentifier             [0] KeyIdentifier           OPTIONAL,
//	  authorityCertIssuer       [1] GeneralNames            OPTIONAL,
//	  authorityCertSerialNumber [2] CertificateSerialNumber OPTIONAL  }
//	KeyIdentifier ::= OCTET STRING
func ParseAKIExtension(der *cryptobyte.String) (AuthorityKeyIdentifier, error) {
	var aki cryptobyte.String
	if !der.ReadASN1(&aki, asn1.SEQUENCE) {
		return AuthorityKeyIdentifier{}, readErr(*der, ErrInvalidTag, "reading AuthorityKeyIdentifier")
	}

	var keyID cryptobyte.String
	var hasKeyID bool
	if !aki.ReadOptionalASN1(&keyID, &hasKeyID, asn1.Tag(0).ContextSpecific()) {
		return AuthorityKeyIdentifier{}, readErr(aki, ErrInvalidTag, "reading keyIdentifier")
	}

	var certIssuer cryptobyte.String
	var hasCertIssuer bool
	if !aki.ReadOptionalASN1(&certIssuer, &hasCertIssuer, asn1.Tag(1).Constructed().ContextSpecific()) {
		return AuthorityKeyIdentifier{}, readErr(aki, ErrInvalidTag, "reading authorityCertIssuer")
	}

	var authorityCertIssuer []GeneralName
	for hasCertIssuer && !certIssuer.Empty() {
		name, err := ParseGeneralName(&certIssuer, false)
		if err != nil {
			return AuthorityKeyIdentifier{}, fmt.Errorf("parsing authorityCertIssuer: %w", err)
		}
		authorityCertIssuer = append(authorityCertIssuer, name)
	}

	var serial cryptobyte.String
	var hasSerial bool
	if !aki.ReadOptionalASN1(&serial, &hasSerial, asn1.Tag(2).ContextSpecific()) {
		return AuthorityKeyIdentifier{}, readErr(aki, ErrInvalidTag, "reading authorityCertSerialNumber")
	}

	if !aki.Empty() {
		return AuthorityKeyIdentifier{}, fmt.Errorf("after AuthorityKeyIdentifier: %w", ErrTrailingData)
	}

	return AuthorityKeyIdentifier{
		KeyIdentifier:             keyID,
		AuthorityCertIssuer:       authorityCertIssuer,
		AuthorityCertSerialNumber: serial,
	}, nil
}

// SubjectKeyIdentifier ::= KeyIdentifier
type SubjectKeyIdentifier []byte

// ParseSKIExtension as described in RFC5280 4.2.1.2
func ParseSKIExtension(der *cryptobyte.String) (SubjectKeyIdentifier, error) {
	var keyID cryptobyte.String
	if !der.ReadASN1(&keyID, asn1.OCTET_STRING) {
		return nil, readErr(*der, ErrInvalidTag, "reading SubjectKeyIdentifier")
	}
	return SubjectKeyIdentifier(keyID), nil
}

// KeyUsage is the set of asserted key-usage bits.
type KeyUsage []KeyUsageBit

type KeyUsageBit int

//	KeyUsage ::= BIT STRING {
//	    digitalSignature        (0),
//	    nonRepudiation          (1), -- renamed to contentCommitment
//	    keyEncipherment         (2),
//	    dataEncipherment        (3),
//	    keyAgreement            (4),
//	    keyCertSign             (5),
//	    cRLSign                 (6),
//	    encipherOnly            (7),
//	    decipherOnly            (8) }
const (
	KeyUsageDigitalSignature KeyUsageBit = iota
	KeyUsageContentCommitment
	KeyUsageKeyEncipherment
	KeyUsageDataEncipherment
	KeyUsageKeyAgreement
	KeyUsageKeyCertSign
	KeyUsageCRLSign
	KeyUsageEncipherOnly
	KeyUsageDecipherOnly
)

// Has reports whether the given bit is asserted.
func (k KeyUsage) Has(bit KeyUsageBit) bool {
	for _, b := range k {
		if b == bit {
			return true
		}
	}
	return false
}

// ParseKeyUsageExtension as described in RFC5280 4.2.1.3
func ParseKeyUsageExtension(der *cryptobyte.String) (KeyUsage, error) {
	var bits encoding_asn1.BitString
	if !der.ReadASN1BitString(&bits) {
		return nil, readErr(*der, ErrInvalidTag, "reading KeyUsage")
	}

	var usages KeyUsage
	for i := 0; i < 9; i++ {
		if bits.At(i) != 0 {
			usages = append(usages, KeyUsageBit(i))
		}
	}
	return usages, nil
}

type PrivateKeyUsagePeriod struct {
	NotBefore *time.Time `json:",omitempty"`
	NotAfter  *time.Time `json:",omitempty"`
}

const generalizedTimeFormatStr = "20060102150405Z0700"

// ParsePrivateKeyUsagePeriodExtension as described in RFC3280 (note: not 5280)
//
//	PrivateKeyUsagePeriod ::= SEQUENCE {
//	    notBefore       [0]     GeneralizedTime OPTIONAL,
//	    notAfter        [1]     GeneralizedTime OPTIONAL }
func ParsePrivateKeyUsagePeriodExtension(der *cryptobyte.String) (PrivateKeyUsagePeriod, error) {
	var kup cryptobyte.String
	if !der.ReadASN1(&kup, asn1.SEQUENCE) {
		return PrivateKeyUsagePeriod{}, readErr(*der, ErrInvalidTag, "reading PrivateKeyUsagePeriod")
	}

	var ret PrivateKeyUsagePeriod

	var notBefore cryptobyte.String
	var hasNotBefore bool
	if !kup.ReadOptionalASN1(&notBefore, &hasNotBefore, asn1.Tag(0).ContextSpecific()) {
		return PrivateKeyUsagePeriod{}, readErr(kup, ErrInvalidTag, "reading PrivateKeyUsagePeriod notBefore")
	}
	if hasNotBefore {
		nb, err := time.Parse(generalizedTimeFormatStr, string(notBefore))
		if err != nil {
			return PrivateKeyUsagePeriod{}, fmt.Errorf("parsing notBefore: %w", err)
		}
		ret.NotBefore = &nb
	}

	var notAfter cryptobyte.String
	var hasNotAfter bool
	if !kup.ReadOptionalASN1(&notAfter, &hasNotAfter, asn1.Tag(1).ContextSpecific()) {
		return PrivateKeyUsagePeriod{}, readErr(kup, ErrInvalidTag, "reading PrivateKeyUsagePeriod notAfter")
	}
	if hasNotAfter {
		na, err := time.Parse(generalizedTimeFormatStr, string(notAfter))
		if err != nil {
			return PrivateKeyUsagePeriod{}, fmt.Errorf("parsing notAfter: %w", err)
		}
		ret.NotAfter = &na
	}

	return ret, nil
}

// CertificatePolicies ::= SEQUENCE SIZE (1..MAX) OF PolicyInformation
type CertificatePolicies []PolicyInformation

type PolicyInformation struct {
	PolicyIdentifier ObjectIdentifier
	PolicyQualifiers []PolicyQualifierInfo `json:",omitempty"`
}

type PolicyQualifierInfo struct {
	PolicyQualifierID ObjectIdentifier
	Qualifier         string
}

// ParseCertPoliciesExtension as described in RFC5280 4.2.1.4
func ParseCertPoliciesExtension(der *cryptobyte.String) (CertificatePolicies, error) {
	var certPolicies cryptobyte.String
	if !der.ReadASN1(&certPolicies, asn1.SEQUENCE) {
		return nil, readErr(*der, ErrInvalidTag, "reading CertificatePolicies")
	}

	var policies CertificatePolicies
	for !certPolicies.Empty() {
		var certPolicy cryptobyte.String
		if !certPolicies.ReadASN1(&certPolicy, asn1.SEQUENCE) {
			return nil, readErr(certPolicies, ErrInvalidTag, "reading PolicyInformation")
		}

		oid, err := ParseObjectIdentifier(&certPolicy)
		if err != nil {
			return nil, err
		}

		var policyQualifiers []PolicyQualifierInfo
		if !certPolicy.Empty() {
			var qualifiers cryptobyte.String
			if !certPolicy.ReadASN1(&qualifiers, asn1.SEQUENCE) {
				return nil, readErr(certPolicy, ErrInvalidTag, "reading policyQualifiers")
			}
			for !qualifiers.Empty() {
				q, err := parsePolicyQualifierInfo(&qualifiers)
				if err != nil {
					return nil, err
				}
				policyQualifiers = append(policyQualifiers, q)
			}
		}

		policies = append(policies, PolicyInformation{
			PolicyIdentifier: oid,
			PolicyQualifiers: policyQualifiers,
		})
	}
	return policies, nil
}

func parsePolicyQualifierInfo(der *cryptobyte.String) (PolicyQualifierInfo, error) {
	var qualifier cryptobyte.String
	if !der.ReadASN1(&qualifier, asn1.SEQUENCE) {
		return PolicyQualifierInfo{}, readErr(*der, ErrInvalidTag, "reading PolicyQualifierInfo")
	}

	qoid, err := ParseObjectIdentifier(&qualifier)
	if err != nil {
		return PolicyQualifierInfo{}, err
	}

	var qval string

	switch qoid.String() {
	case "1.3.6.1.5.5.7.2.1": // id-qt-cps
		var cpsURI cryptobyte.String
		if !qualifier.ReadASN1(&cpsURI, asn1.IA5String) {
			return PolicyQualifierInfo{}, readErr(qualifier, ErrInvalidTag, "reading CPS URI")
		}
		qval = string(cpsURI)
	case "1.3.6.1.5.5.7.2.2": // id-qt-unotice
		var userNotice cryptobyte.String
		if !qualifier.ReadASN1(&userNotice, asn1.SEQUENCE) {
			return PolicyQualifierInfo{}, readErr(qualifier, ErrInvalidTag, "reading UserNotice")
		}

		var tag asn1.Tag
		var data cryptobyte.String
		if !userNotice.ReadAnyASN1(&data, &tag) {
			return PolicyQualifierInfo{}, readErr(userNotice, ErrInvalidTag, "reading UserNotice content")
		}

		switch tag {
		case asn1.SEQUENCE:
			// noticeRef; kept raw
			qval = "NoticeReference:" + fmt.Sprintf("%X", []byte(data))
		default:
			qval, err = parseString(tag, data)
			if err != nil {
				return PolicyQualifierInfo{}, err
			}
		}
	default:
		// other qualifiers are unsupported, keep them hex encoded
		qval = fmt.Sprintf("%X", []byte(qualifier))
	}

	return PolicyQualifierInfo{
		PolicyQualifierID: qoid,
		Qualifier:         qval,
	}, nil
}

// PolicyMappings ::= SEQUENCE SIZE (1..MAX) OF PolicyMap
type PolicyMappings []PolicyMap

type PolicyMap struct {
	IssuerDomainPolicy  ObjectIdentifier
	SubjectDomainPolicy ObjectIdentifier
}

func (p *PolicyMap) Parse(der *cryptobyte.String) error {
	var policyMap cryptobyte.String
	if !der.ReadASN1(&policyMap, asn1.SEQUENCE) {
		return readErr(*der, ErrInvalidTag, "reading PolicyMap")
	}
	issuerOID, err := ParseObjectIdentifier(&policyMap)
	if err != nil {
		return fmt.Errorf("parsing issuerDomainPolicy: %w", err)
	}
	subjectOID, err := ParseObjectIdentifier(&policyMap)
	if err != nil {
		return fmt.Errorf("parsing subjectDomainPolicy: %w", err)
	}
	p.IssuerDomainPolicy = issuerOID
	p.SubjectDomainPolicy = subjectOID
	return nil
}

// ParsePolicyMappingsExtension as described in RFC5280 4.2.1.5
func ParsePolicyMappingsExtension(der *cryptobyte.String) (PolicyMappings, error) {
	maps, err := ParseSequenceOf[PolicyMap](der, asn1.SEQUENCE)
	return PolicyMappings(maps), err
}

// SubjectAlternativeName ::= GeneralNames
type SubjectAlternativeName []GeneralName

// ParseSANExtension as described in RFC5280 4.2.1.6
func ParseSANExtension(der *cryptobyte.String) (SubjectAlternativeName, error) {
	var sans cryptobyte.String
	if !der.ReadASN1(&sans, asn1.SEQUENCE) {
		return nil, readErr(*der, ErrInvalidTag, "reading SubjectAlternativeName")
	}

	var ret SubjectAlternativeName
	for !sans.Empty() {
		name, err := ParseGeneralName(&sans, false)
		if err != nil {
			return nil, fmt.Errorf("parsing SAN entry: %w", err)
		}
		ret = append(ret, name)
	}
	return ret, nil
}

// DNSNames returns the dNSName entries of the SAN.
func (s SubjectAlternativeName) DNSNames() []string {
	var ret []string
	for _, name := range s {
		if name.Tag == DNSName {
			ret = append(ret, name.Value)
		}
	}
	return ret
}

//	BasicConstraints ::= SEQUENCE {
//	    cA                      BOOLEAN DEFAULT FALSE,
//	    pathLenConstraint       INTEGER (0..MAX) OPTIONAL }
type BasicConstraints struct {
	CA                   bool
	PathLengthConstraint *int `json:",omitempty"`
}

// ParseBasicConstraintsExtension as described in RFC5280 4.2.1.9
func ParseBasicConstraintsExtension(der *cryptobyte.String) (BasicConstraints, error) {
	var bce cryptobyte.String
	if !der.ReadASN1(&bce, asn1.SEQUENCE) {
		return BasicConstraints{}, readErr(*der, ErrInvalidTag, "reading BasicConstraints")
	}

	var ca bool
	if bce.PeekASN1Tag(asn1.BOOLEAN) {
		if !bce.ReadASN1Boolean(&ca) {
			return BasicConstraints{}, readErr(bce, ErrInvalidTag, "reading BasicConstraints cA")
		}
	}

	ret := BasicConstraints{CA: ca}
	if bce.PeekASN1Tag(asn1.INTEGER) {
		pathLen := -1
		if !bce.ReadASN1Integer(&pathLen) {
			return BasicConstraints{}, readErr(bce, ErrInvalidTag, "reading pathLenConstraint")
		}
		ret.PathLengthConstraint = &pathLen
	}
	return ret, nil
}

//	NameConstraints ::= SEQUENCE {
//	    permittedSubtrees       [0]     GeneralSubtrees OPTIONAL,
//	    excludedSubtrees        [1]     GeneralSubtrees OPTIONAL }
type NameConstraints struct {
	PermittedSubtrees []GeneralName `json:",omitempty"`
	ExcludedSubtrees  []GeneralName `json:",omitempty"`
}

//	GeneralSubtrees ::= SEQUENCE SIZE (1..MAX) OF GeneralSubtree
//	GeneralSubtree ::= SEQUENCE {
//	    base                    GeneralName,
//	    minimum         [0]     BaseDistance DEFAULT 0,
//	    maximum         [1]     BaseDistance OPTIONAL }
//
// RFC5280 says minimum and maximum MUST NOT be present, so they are not
// supported here.
func parseGeneralSubtrees(der *cryptobyte.String) ([]GeneralName, error) {
	var ret []GeneralName
	for !der.Empty() {
		var subtree cryptobyte.String
		if !der.ReadASN1(&subtree, asn1.SEQUENCE) {
			return nil, readErr(*der, ErrInvalidTag, "reading GeneralSubtree")
		}
		name, err := ParseGeneralName(&subtree, true)
		if err != nil {
			return nil, err
		}
		ret = append(ret, name)
	}
	return ret, nil
}

// ParseNameConstraintsExtension as described in RFC5280 4.2.1.10
func ParseNameConstraintsExtension(der *cryptobyte.String) (NameConstraints, error) {
	var nc cryptobyte.String
	if !der.ReadASN1(&nc, asn1.SEQUENCE) {
		return NameConstraints{}, readErr(*der, ErrInvalidTag, "reading NameConstraints")
	}

	var permitted cryptobyte.String
	var hasPermitted bool
	if !nc.ReadOptionalASN1(&permitted, &hasPermitted, asn1.Tag(0).Constructed().ContextSpecific()) {
		return NameConstraints{}, readErr(nc, ErrInvalidTag, "reading permittedSubtrees")
	}
	permittedSubtrees, err := parseGeneralSubtrees(&permitted)
	if err != nil {
		return NameConstraints{}, err
	}

	var excluded cryptobyte.String
	var hasExcluded bool
	if !nc.ReadOptionalASN1(&excluded, &hasExcluded, asn1.Tag(1).Constructed().ContextSpecific()) {
		return NameConstraints{}, readErr(nc, ErrInvalidTag, "reading excludedSubtrees")
	}
	excludedSubtrees, err := parseGeneralSubtrees(&excluded)
	if err != nil {
		return NameConstraints{}, err
	}

	return NameConstraints{
		PermittedSubtrees: permittedSubtrees,
		ExcludedSubtrees:  excludedSubtrees,
	}, nil
}

// CRLDistributionPoints ::= SEQUENCE SIZE (1..MAX) OF DistributionPoint
type CRLDistributionPoints []DistributionPoint

//	DistributionPoint ::= SEQUENCE {
//	     distributionPoint       [0]     DistributionPointName OPTIONAL,
//	     reasons                 [1]     ReasonFlags OPTIONAL,
//	     cRLIssuer               [2]     GeneralNames OPTIONAL }
//
//	DistributionPointName ::= CHOICE {
//	     fullName                [0]     GeneralNames,
//	     nameRelativeToCRLIssuer [1]     RelativeDistinguishedName }
type DistributionPoint struct {
	// A DPN could theoretically be a RelativeDistinguishedName, but that
	// form is not permitted in the CA/B BRs and is unused in practice.
	DistributionPointName GeneralName
}

func (d *DistributionPoint) Parse(der *cryptobyte.String) error {
	var dp cryptobyte.String
	if !der.ReadASN1(&dp, asn1.SEQUENCE) {
		return readErr(*der, ErrInvalidTag, "reading DistributionPoint")
	}

	var dpn cryptobyte.String
	var hasDPN bool
	if !dp.ReadOptionalASN1(&dpn, &hasDPN, asn1.Tag(0).Constructed().ContextSpecific()) {
		return readErr(dp, ErrInvalidTag, "reading DistributionPointName")
	}
	if !hasDPN {
		return fmt.Errorf("DistributionPoint without DistributionPointName: %w", ErrInvalidTag)
	}

	var fullName cryptobyte.String
	var hasFullName bool
	if !dpn.ReadOptionalASN1(&fullName, &hasFullName, asn1.Tag(0).Constructed().ContextSpecific()) {
		return readErr(dpn, ErrInvalidTag, "reading fullName")
	}

	gn, err := ParseGeneralName(&fullName, false)
	if err != nil {
		return err
	}

	if !dp.Empty() {
		// reasons and cRLIssuer are "MUST NOT" per CA/B BRs
		return fmt.Errorf("unsupported DistributionPoint fields: %w", ErrInvalidTag)
	}

	d.DistributionPointName = gn
	return nil
}

// ParseCRLDPExtension as described in RFC5280 4.2.1.13
func ParseCRLDPExtension(der *cryptobyte.String) (CRLDistributionPoints, error) {
	dps, err := ParseSequenceOf[DistributionPoint](der, asn1.SEQUENCE)
	return CRLDistributionPoints(dps), err
}

//	KeyPurposeId ::= OBJECT IDENTIFIER
//	ExtKeyUsageSyntax ::= SEQUENCE SIZE (1..MAX) OF KeyPurposeId
type ExtendedKeyUsage []ObjectIdentifier

// ParseExtKeyUsageExtension as described in RFC5280 4.2.1.12
func ParseExtKeyUsageExtension(der *cryptobyte.String) (ExtendedKeyUsage, error) {
	var ekus cryptobyte.String
	if !der.ReadASN1(&ekus, asn1.SEQUENCE) {
		return nil, readErr(*der, ErrInvalidTag, "reading ExtendedKeyUsage")
	}

	var ret ExtendedKeyUsage
	for !ekus.Empty() {
		ident, err := ParseObjectIdentifier(&ekus)
		if err != nil {
			return nil, err
		}
		ret = append(ret, ident)
	}
	return ret, nil
}

// InhibitAnyPolicy ::= SkipCerts
type InhibitAnyPolicy uint

// ParseInhibitAnyPolicyExtension as described in RFC5280 4.2.1.14
func ParseInhibitAnyPolicyExtension(der *cryptobyte.String) (InhibitAnyPolicy, error) {
	var skipCerts uint
	if !der.ReadASN1Integer(&skipCerts) {
		return 0, readErr(*der, ErrInvalidTag, "reading InhibitAnyPolicy")
	}
	return InhibitAnyPolicy(skipCerts), nil
}

// AuthorityInfoAccess ::= SEQUENCE SIZE (1..MAX) OF AccessDescription
type AuthorityInfoAccess []AccessDescription

//	AccessDescription  ::=  SEQUENCE {
//	  accessMethod   OBJECT IDENTIFIER,
//	  accessLocation GeneralName  }
type AccessDescription struct {
	AccessMethod   ObjectIdentifier
	AccessLocation GeneralName
}

func (ad *AccessDescription) Parse(der *cryptobyte.String) error {
	var accessDescription cryptobyte.String
	if !der.ReadASN1(&accessDescription, asn1.SEQUENCE) {
		return readErr(*der, ErrInvalidTag, "reading AccessDescription")
	}
	oid, err := ParseObjectIdentifier(&accessDescription)
	if err != nil {
		return fmt.Errorf("parsing accessMethod: %w", err)
	}
	accessLocation, err := ParseGeneralName(&accessDescription, false)
	if err != nil {
		return fmt.Errorf("parsing accessLocation: %w", err)
	}

	ad.AccessMethod = oid
	ad.AccessLocation = accessLocation
	return nil
}

// ParseAIAExtension as described in RFC5280 4.2.2.1
func ParseAIAExtension(der *cryptobyte.String) (AuthorityInfoAccess, error) {
	ads, err := ParseSequenceOf[AccessDescription](der, asn1.SEQUENCE)
	return AuthorityInfoAccess(ads), err
}

// TLSFeatures holds the TLS features of RFC7633, in practice only OCSP
// must-staple.
type TLSFeatures []TLSFeature

// TLSFeature is a TLS Feature, which is defined as being 16-bit in TLS.
type TLSFeature uint16

func (t *TLSFeature) Parse(der *cryptobyte.String) error {
	var feature uint16
	if !der.ReadASN1Integer(&feature) {
		return readErr(*der, ErrInvalidTag, "reading TLSFeature")
	}
	*t = TLSFeature(feature)
	return nil
}

// ParseTLSFeatureExtension as described in RFC7633
//
//	Features ::= SEQUENCE OF INTEGER
func ParseTLSFeatureExtension(der *cryptobyte.String) (TLSFeatures, error) {
	features, err := ParseSequenceOf[TLSFeature](der, asn1.SEQUENCE)
	return TLSFeatures(features), err
}

// SignedCertificateTimestamps keeps the serialized SCT list of RFC6962 3.3.
// The content is a TLS structure, not ASN.1, and is left raw.
type SignedCertificateTimestamps struct {
	Raw []byte
}

// ParseSCTExtension as described in RFC6962 3.3
func ParseSCTExtension(der *cryptobyte.String) (SignedCertificateTimestamps, error) {
	var list cryptobyte.String
	if !der.ReadASN1(&list, asn1.OCTET_STRING) {
		return SignedCertificateTimestamps{}, readErr(*der, ErrInvalidTag, "reading SCT list")
	}
	return SignedCertificateTimestamps{Raw: list}, nil
}

type PrecertificatePoison struct{}

// ParsePrecertPoisonExtension as described in RFC6962 3.1
func ParsePrecertPoisonExtension(der *cryptobyte.String) (PrecertificatePoison, error) {
	var poison cryptobyte.String
	if !der.ReadASN1(&poison, asn1.NULL) {
		return PrecertificatePoison{}, readErr(*der, ErrInvalidTag, "reading precertificate poison")
	}
	return PrecertificatePoison{}, nil
}

type EntrustVersion struct {
	Version string
	Flags   string
}

// ParseEntrustVersionExtension parses a somewhat-unknown extension
func ParseEntrustVersionExtension(der *cryptobyte.String) (EntrustVersion, error) {
	var entrustVersion cryptobyte.String
	if !der.ReadASN1(&entrustVersion, asn1.SEQUENCE) {
		return EntrustVersion{}, readErr(*der, ErrInvalidTag, "reading EntrustVersion")
	}

	var ver cryptobyte.String
	if !entrustVersion.ReadASN1(&ver, asn1.GeneralString) {
		return EntrustVersion{}, readErr(entrustVersion, ErrInvalidTag, "reading EntrustVersion version")
	}

	var flags encoding_asn1.BitString
	if !entrustVersion.ReadASN1BitString(&flags) {
		return EntrustVersion{}, readErr(entrustVersion, ErrInvalidTag, "reading EntrustVersion flags")
	}

	// the meaning of the flag bits is unknown, render them as binary
	var flagString string
	for i := 0; i < flags.BitLength; i++ {
		if flags.At(i) != 0 {
			flagString = "1" + flagString
		} else {
			flagString = "0" + flagString
		}
	}

	return EntrustVersion{
		Version: string(ver),
		Flags:   flagString,
	}, nil
}

// CRLNumber carries the arbitrary-precision CRL number of RFC5280 5.2.3.
// Verifiers must handle values up to 20 octets.
type CRLNumber struct {
	Value *big.Int
}

func ParseCRLNumberExtension(der *cryptobyte.String) (CRLNumber, error) {
	value := new(big.Int)
	if !der.ReadASN1Integer(value) {
		return CRLNumber{}, readErr(*der, ErrInvalidTag, "reading CRLNumber")
	}
	return CRLNumber{Value: value}, nil
}

// ReasonCode is the CRL entry revocation reason of RFC5280 5.3.1.
type ReasonCode int

const (
	ReasonUnspecified          ReasonCode = 0
	ReasonKeyCompromise        ReasonCode = 1
	ReasonCACompromise         ReasonCode = 2
	ReasonAffiliationChanged   ReasonCode = 3
	ReasonSuperseded           ReasonCode = 4
	ReasonCessationOfOperation ReasonCode = 5
	ReasonCertificateHold      ReasonCode = 6
	// value 7 is not used
	ReasonRemoveFromCRL      ReasonCode = 8
	ReasonPrivilegeWithdrawn ReasonCode = 9
	ReasonAACompromise       ReasonCode = 10
)

var reasonCodeNames = map[ReasonCode]string{
	ReasonUnspecified:          "unspecified",
	ReasonKeyCompromise:        "keyCompromise",
	ReasonCACompromise:         "cACompromise",
	ReasonAffiliationChanged:   "affiliationChanged",
	ReasonSuperseded:           "superseded",
	ReasonCessationOfOperation: "cessationOfOperation",
	ReasonCertificateHold:      "certificateHold",
	ReasonRemoveFromCRL:        "removeFromCRL",
	ReasonPrivilegeWithdrawn:   "privilegeWithdrawn",
	ReasonAACompromise:         "aACompromise",
}

func (r ReasonCode) String() string {
	if name, ok := reasonCodeNames[r]; ok {
		return name
	}
	return fmt.Sprintf("reasonCode(%d)", int(r))
}

// ParseReasonCodeExtension reads the CRLReason ENUMERATED.
func ParseReasonCodeExtension(der *cryptobyte.String) (ReasonCode, error) {
	var code int
	if !der.ReadASN1Enum(&code) {
		return 0, readErr(*der, ErrInvalidTag, "reading CRLReason")
	}
	return ReasonCode(code), nil
}

// InvalidityDate is the CRL entry extension of RFC5280 5.3.2: the date at
// which the key is known or suspected to have been compromised.
type InvalidityDate struct {
	Date time.Time
}

func ParseInvalidityDateExtension(der *cryptobyte.String) (InvalidityDate, error) {
	var date time.Time
	if !der.ReadASN1GeneralizedTime(&date) {
		return InvalidityDate{}, readErr(*der, ErrInvalidTag, "reading invalidityDate")
	}
	return InvalidityDate{Date: date}, nil
}

func (UnsupportedExtension) isParsedExtension()         {}
func (AuthorityKeyIdentifier) isParsedExtension()       {}
func (SubjectKeyIdentifier) isParsedExtension()         {}
func (KeyUsage) isParsedExtension()                     {}
func (PrivateKeyUsagePeriod) isParsedExtension()        {}
func (CertificatePolicies) isParsedExtension()          {}
func (PolicyMappings) isParsedExtension()               {}
func (SubjectAlternativeName) isParsedExtension()       {}
func (BasicConstraints) isParsedExtension()             {}
func (NameConstraints) isParsedExtension()              {}
func (CRLDistributionPoints) isParsedExtension()        {}
func (ExtendedKeyUsage) isParsedExtension()             {}
func (InhibitAnyPolicy) isParsedExtension()             {}
func (AuthorityInfoAccess) isParsedExtension()          {}
func (TLSFeatures) isParsedExtension()                  {}
func (SignedCertificateTimestamps) isParsedExtension()  {}
func (PrecertificatePoison) isParsedExtension()         {}
func (EntrustVersion) isParsedExtension()               {}
func (CRLNumber) isParsedExtension()                    {}
func (ReasonCode) isParsedExtension()                   {}
func (InvalidityDate) isParsedExtension()               {}
