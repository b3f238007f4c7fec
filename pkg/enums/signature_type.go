package enums

import "fmt"

// SignatureType records how a party captured their signature.
type SignatureType string

const (
	SignatureTypeDrawn    SignatureType = "drawn"
	SignatureTypeTyped    SignatureType = "typed"
	SignatureTypeUploaded SignatureType = "uploaded"
)

var validSignatureTypes = []SignatureType{
	SignatureTypeDrawn,
	SignatureTypeTyped,
	SignatureTypeUploaded,
}

func (s SignatureType) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SignatureType.
func (s SignatureType) IsValid() bool {
	for _, candidate := range validSignatureTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSignatureType converts raw input into a SignatureType.
func ParseSignatureType(value string) (SignatureType, error) {
	for _, candidate := range validSignatureTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid signature type %q", value)
}
