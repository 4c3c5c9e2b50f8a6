package x509der

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net"
	"strings"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

//	Name ::= CHOICE { rdnSequence RDNSequence }
//
//	RDNSequence ::= SEQUENCE OF RelativeDistinguishedName
type Name struct {
	RDNSequence []RelativeDistinguishedName
	// Raw is the complete encoded Name element, header included. Some
	// validators compare issuer/subject names byte-for-byte rather than
	// semantically, so the exact span is kept.
	Raw cryptobyte.String
}

// RelativeDistinguishedName ::= SET SIZE (1..MAX) OF AttributeTypeAndValue
type RelativeDistinguishedName struct {
	Set []AttributeTypeAndValue
}

//	AttributeTypeAndValue ::= SEQUENCE {
//	    type     AttributeType,
//	    value    AttributeValue }
//
// The value type is determined dynamically by the attribute type, so the
// raw content octets and their tag are kept as decoded.
type AttributeTypeAndValue struct {
	Type  ObjectIdentifier
	Tag   asn1.Tag
	Value cryptobyte.String
}

func ParseATV(der *cryptobyte.String) (AttributeTypeAndValue, error) {
	var atv cryptobyte.String
	if !der.ReadASN1(&atv, asn1.SEQUENCE) {
		return AttributeTypeAndValue{}, readErr(*der, ErrInvalidName, "reading AttributeTypeAndValue")
	}

	oid, err := ParseObjectIdentifier(&atv)
	if err != nil {
		return AttributeTypeAndValue{}, fmt.Errorf("reading attribute type: %w", ErrInvalidName)
	}

	ret := AttributeTypeAndValue{Type: oid}
	if !atv.ReadAnyASN1(&ret.Value, &ret.Tag) {
		return AttributeTypeAndValue{}, readErr(atv, ErrInvalidName, "reading attribute value")
	}
	if !atv.Empty() {
		return AttributeTypeAndValue{}, fmt.Errorf("after AttributeTypeAndValue: %w", ErrTrailingData)
	}
	return ret, nil
}

// AsString returns the attribute value as text. Only the NumericString,
// PrintableString, UTF8String and IA5String types qualify; anything else
// returns NotAString and is only available through Value.
func (atv AttributeTypeAndValue) AsString() (string, error) {
	switch atv.Tag {
	case numericStringTag, asn1.PrintableString, asn1.UTF8String, asn1.IA5String:
		return string(atv.Value), nil
	}
	return "", NotAString
}

// String renders the attribute as "<abbrev>=<value>". Values that are not
// string-typed render as upper-case hex of their content octets.
func (atv AttributeTypeAndValue) String() string {
	value, err := atv.AsString()
	if err != nil {
		value = strings.ToUpper(hex.EncodeToString(atv.Value))
	}
	return AbbrevForOID(atv.Type) + "=" + value
}

// ParseName decodes the X.501 Name used for the issuer and subject of a
// certificate, keeping both the RDN structure and the exact raw span.
func ParseName(der *cryptobyte.String) (Name, error) {
	var raw cryptobyte.String
	if !der.ReadASN1Element(&raw, asn1.SEQUENCE) {
		return Name{}, readErr(*der, ErrInvalidName, "reading Name")
	}

	body := raw
	var rdnSequence cryptobyte.String
	if !body.ReadASN1(&rdnSequence, asn1.SEQUENCE) {
		return Name{}, readErr(body, ErrInvalidName, "reading Name")
	}

	var rdns []RelativeDistinguishedName
	for !rdnSequence.Empty() {
		var set cryptobyte.String
		if !rdnSequence.ReadASN1(&set, asn1.SET) {
			return Name{}, readErr(rdnSequence, ErrInvalidName, "reading RelativeDistinguishedName")
		}
		if set.Empty() {
			// SET SIZE (1..MAX): an empty RDN is not valid DER
			return Name{}, fmt.Errorf("empty RelativeDistinguishedName: %w", ErrInvalidName)
		}
		var rdn RelativeDistinguishedName
		for !set.Empty() {
			atv, err := ParseATV(&set)
			if err != nil {
				return Name{}, err
			}
			rdn.Set = append(rdn.Set, atv)
		}
		rdns = append(rdns, rdn)
	}

	return Name{RDNSequence: rdns, Raw: raw}, nil
}

// String renders the name with RDNs joined by ", " in sequence order and
// attributes within an RDN joined by " + ". Rendering never fails: values
// that are not strings fall back to upper-case hex.
func (n Name) String() string {
	var b strings.Builder
	for i, rdn := range n.RDNSequence {
		if i > 0 {
			b.WriteString(", ")
		}
		for j, atv := range rdn.Set {
			if j > 0 {
				b.WriteString(" + ")
			}
			b.WriteString(atv.String())
		}
	}
	return b.String()
}

func (n Name) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.String())
}

// Attributes returns all AttributeTypeAndValue entries in sequence order,
// flattened across RDNs.
func (n Name) Attributes() []AttributeTypeAndValue {
	var ret []AttributeTypeAndValue
	for _, rdn := range n.RDNSequence {
		ret = append(ret, rdn.Set...)
	}
	return ret
}

// FindAttributes returns the attributes whose type matches the given dotted
// OID. The same type may legally appear more than once.
func (n Name) FindAttributes(dotted string) []AttributeTypeAndValue {
	var ret []AttributeTypeAndValue
	for _, atv := range n.Attributes() {
		if atv.Type.Equal(dotted) {
			ret = append(ret, atv)
		}
	}
	return ret
}

func (n Name) firstString(dotted string) (string, bool) {
	for _, atv := range n.FindAttributes(dotted) {
		if s, err := atv.AsString(); err == nil {
			return s, true
		}
	}
	return "", false
}

// CommonName returns the first CN attribute that has a string value.
func (n Name) CommonName() (string, bool) { return n.firstString(OIDNameCommonName) }

func (n Name) Country() (string, bool)            { return n.firstString(OIDNameCountry) }
func (n Name) Organization() (string, bool)       { return n.firstString(OIDNameOrganization) }
func (n Name) OrganizationalUnit() (string, bool) { return n.firstString(OIDNameOrganizationalUnit) }
func (n Name) Locality() (string, bool)           { return n.firstString(OIDNameLocality) }
func (n Name) Province() (string, bool)           { return n.firstString(OIDNameProvince) }
func (n Name) EmailAddress() (string, bool)       { return n.firstString(OIDNameEmailAddress) }

// GeneralName CHOICE tags from RFC5280 4.2.1.6.
const (
	OtherName                 = 0
	RFC822Name                = 1
	DNSName                   = 2
	X400Address               = 3
	DirectoryName             = 4
	EDIPartyName              = 5
	UniformResourceIdentifier = 6
	IPAddress                 = 7
	RegisteredID              = 8
)

type GeneralName struct {
	Tag   asn1.Tag
	Value string
}

// ParseGeneralName parses a GeneralName as defined in RFC5280 4.2.1.6.
// Tag is the context-specific tag from the GeneralName CHOICE, one of the
// constants above. When useIPCIDR is set, IP address names carry a mask
// (the form used inside name constraints).
func ParseGeneralName(der *cryptobyte.String, useIPCIDR bool) (GeneralName, error) {
	var data cryptobyte.String
	var tag asn1.Tag
	if !der.ReadAnyASN1(&data, &tag) {
		return GeneralName{}, readErr(*der, ErrInvalidTag, "reading GeneralName")
	}

	// remove the context-specific class bit
	tag = tag ^ 0x80

	var value string

	switch tag {
	case RFC822Name, DNSName, UniformResourceIdentifier:
		// IA5String
		value = string(data)
	case IPAddress:
		if useIPCIDR {
			if len(data) != net.IPv4len*2 && len(data) != net.IPv6len*2 {
				return GeneralName{}, fmt.Errorf("IP address and mask of %d bytes: %w", len(data), ErrInvalidLength)
			}
			// address octets first, then the mask
			ipnet := net.IPNet{
				IP:   net.IP(data[:len(data)/2]),
				Mask: net.IPMask(data[len(data)/2:]),
			}
			value = ipnet.String()
		} else {
			if len(data) != net.IPv4len && len(data) != net.IPv6len {
				return GeneralName{}, fmt.Errorf("IP address of %d bytes: %w", len(data), ErrInvalidLength)
			}
			value = net.IP(data).String()
		}
	case asn1.Tag(DirectoryName).Constructed():
		name, err := ParseName(&data)
		if err != nil {
			return GeneralName{}, err
		}
		value = name.String()
	default:
		value = hex.EncodeToString(data)
	}

	return GeneralName{
		Tag:   tag,
		Value: value,
	}, nil
}
