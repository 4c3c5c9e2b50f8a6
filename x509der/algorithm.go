package x509der

import (
	encoding_asn1 "encoding/asn1"
	"fmt"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

//	AlgorithmIdentifier  ::=  SEQUENCE  {
//	    algorithm               OBJECT IDENTIFIER,
//	    parameters              ANY DEFINED BY algorithm OPTIONAL  }
type AlgorithmIdentifier struct {
	Algorithm ObjectIdentifier
	// Parameters is the complete encoded parameters element, nil when the
	// field is absent. Interpretation depends on the algorithm and is left
	// to the caller.
	Parameters cryptobyte.String `json:",omitempty"`
}

func ParseAlgorithmIdentifier(der *cryptobyte.String) (AlgorithmIdentifier, error) {
	var algorithmIdentifier cryptobyte.String
	if !der.ReadASN1(&algorithmIdentifier, asn1.SEQUENCE) {
		return AlgorithmIdentifier{}, readErr(*der, ErrInvalidAlgorithmIdentifier, "reading AlgorithmIdentifier")
	}

	oid, err := ParseObjectIdentifier(&algorithmIdentifier)
	if err != nil {
		return AlgorithmIdentifier{}, fmt.Errorf("reading algorithm OID: %w", ErrInvalidAlgorithmIdentifier)
	}

	var parameters cryptobyte.String
	if !algorithmIdentifier.Empty() {
		var tag asn1.Tag
		if !algorithmIdentifier.ReadAnyASN1Element(&parameters, &tag) {
			return AlgorithmIdentifier{}, readErr(algorithmIdentifier, ErrInvalidAlgorithmIdentifier, "reading algorithm parameters")
		}
		if !algorithmIdentifier.Empty() {
			return AlgorithmIdentifier{}, fmt.Errorf("after algorithm parameters: %w", ErrTrailingData)
		}
	}

	return AlgorithmIdentifier{
		Algorithm:  oid,
		Parameters: parameters,
	}, nil
}

//	SubjectPublicKeyInfo  ::=  SEQUENCE  {
//	    algorithm            AlgorithmIdentifier,
//	    subjectPublicKey     BIT STRING  }
type SubjectPublicKeyInfo struct {
	Algorithm AlgorithmIdentifier
	// SubjectPublicKey keeps the padding bit count as encoded; padding
	// semantics are the caller's concern.
	SubjectPublicKey encoding_asn1.BitString
}

func ParseSubjectPublicKeyInfo(der *cryptobyte.String) (SubjectPublicKeyInfo, error) {
	var subjectPublicKeyInfo cryptobyte.String
	if !der.ReadASN1(&subjectPublicKeyInfo, asn1.SEQUENCE) {
		return SubjectPublicKeyInfo{}, readErr(*der, ErrInvalidSubjectPublicKeyInfo, "reading SubjectPublicKeyInfo")
	}

	algo, err := ParseAlgorithmIdentifier(&subjectPublicKeyInfo)
	if err != nil {
		return SubjectPublicKeyInfo{}, fmt.Errorf("parsing SubjectPublicKeyInfo algorithm: %w", err)
	}

	var subjectPublicKey encoding_asn1.BitString
	if !subjectPublicKeyInfo.ReadASN1BitString(&subjectPublicKey) {
		return SubjectPublicKeyInfo{}, readErr(subjectPublicKeyInfo, ErrInvalidSubjectPublicKeyInfo, "reading subjectPublicKey")
	}
	if !subjectPublicKeyInfo.Empty() {
		return SubjectPublicKeyInfo{}, fmt.Errorf("after SubjectPublicKeyInfo: %w", ErrTrailingData)
	}

	return SubjectPublicKeyInfo{
		Algorithm:        algo,
		SubjectPublicKey: subjectPublicKey,
	}, nil
}
