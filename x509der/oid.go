package x509der

import (
	encoding_asn1 "encoding/asn1"
	"encoding/json"

	"golang.org/x/crypto/cryptobyte"
)

type ObjectIdentifier encoding_asn1.ObjectIdentifier

func ParseObjectIdentifier(der *cryptobyte.String) (ObjectIdentifier, error) {
	var oid encoding_asn1.ObjectIdentifier
	if !der.ReadASN1ObjectIdentifier(&oid) {
		return ObjectIdentifier{}, readErr(*der, ErrInvalidTag, "reading OID")
	}
	return ObjectIdentifier(oid), nil
}

func (oid *ObjectIdentifier) Parse(der *cryptobyte.String) error {
	o, err := ParseObjectIdentifier(der)
	if err != nil {
		return err
	}
	*oid = o
	return nil
}

func (oid ObjectIdentifier) String() string {
	return encoding_asn1.ObjectIdentifier(oid).String()
}

func (oid ObjectIdentifier) MarshalJSON() ([]byte, error) {
	return json.Marshal(oid.String())
}

// Equal reports whether the OID equals the given dotted form.
func (oid ObjectIdentifier) Equal(dotted string) bool {
	return oid.String() == dotted
}

// Extension and attribute OIDs in dotted form, as used for Extensions.Get
// and Attributes.Get lookups.
const (
	OIDExtensionSubjectKeyIdentifier   = "2.5.29.14"
	OIDExtensionKeyUsage               = "2.5.29.15"
	OIDExtensionPrivateKeyUsagePeriod  = "2.5.29.16"
	OIDExtensionSubjectAltName         = "2.5.29.17"
	OIDExtensionBasicConstraints       = "2.5.29.19"
	OIDExtensionCRLNumber              = "2.5.29.20"
	OIDExtensionReasonCode             = "2.5.29.21"
	OIDExtensionInvalidityDate         = "2.5.29.24"
	OIDExtensionNameConstraints        = "2.5.29.30"
	OIDExtensionCRLDistributionPoints  = "2.5.29.31"
	OIDExtensionCertificatePolicies    = "2.5.29.32"
	OIDExtensionPolicyMappings         = "2.5.29.33"
	OIDExtensionAuthorityKeyIdentifier = "2.5.29.35"
	OIDExtensionExtendedKeyUsage       = "2.5.29.37"
	OIDExtensionInhibitAnyPolicy       = "2.5.29.54"
	OIDExtensionAuthorityInfoAccess    = "1.3.6.1.5.5.7.1.1"
	OIDExtensionTLSFeature             = "1.3.6.1.5.5.7.1.24"
	OIDExtensionSCTList                = "1.3.6.1.4.1.11129.2.4.2"
	OIDExtensionPrecertPoison          = "1.3.6.1.4.1.11129.2.4.3"
	OIDExtensionEntrustVersion         = "1.2.840.113533.7.65.0"

	OIDAttributeChallengePassword = "1.2.840.113549.1.9.7"
	OIDAttributeExtensionRequest  = "1.2.840.113549.1.9.14"
)

// X.501 attribute-type OIDs used in distinguished names.
const (
	OIDNameCommonName         = "2.5.4.3"
	OIDNameSurname            = "2.5.4.4"
	OIDNameSerialNumber       = "2.5.4.5"
	OIDNameCountry            = "2.5.4.6"
	OIDNameLocality           = "2.5.4.7"
	OIDNameProvince           = "2.5.4.8"
	OIDNameStreetAddress      = "2.5.4.9"
	OIDNameOrganization       = "2.5.4.10"
	OIDNameOrganizationalUnit = "2.5.4.11"
	OIDNameDomainComponent    = "0.9.2342.19200300.100.1.25"
	OIDNameUserID             = "0.9.2342.19200300.100.1.1"
	OIDNameEmailAddress       = "1.2.840.113549.1.9.1"
)

// dnAbbreviations maps attribute-type OIDs to the short names used when
// rendering a Name. Process-wide static data, never mutated.
var dnAbbreviations = map[string]string{
	OIDNameCommonName:         "CN",
	OIDNameSurname:            "SN",
	OIDNameSerialNumber:       "serialNumber",
	OIDNameCountry:            "C",
	OIDNameLocality:           "L",
	OIDNameProvince:           "ST",
	OIDNameStreetAddress:      "STREET",
	OIDNameOrganization:       "O",
	OIDNameOrganizationalUnit: "OU",
	OIDNameDomainComponent:    "DC",
	OIDNameUserID:             "UID",
	OIDNameEmailAddress:       "emailAddress",
}

// AbbrevForOID returns the short attribute name for an attribute-type OID,
// falling back to the dotted form for OIDs outside the registry.
func AbbrevForOID(oid ObjectIdentifier) string {
	if abbrev, ok := dnAbbreviations[oid.String()]; ok {
		return abbrev
	}
	return oid.String()
}
