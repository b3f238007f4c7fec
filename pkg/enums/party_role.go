package enums

import "fmt"

// PartyRole identifies which side of a booking a principal acts for.
type PartyRole string

const (
	PartyRoleArtist   PartyRole = "artist"
	PartyRolePromoter PartyRole = "promoter"
	PartyRoleAdmin    PartyRole = "admin"
)

var validPartyRoles = []PartyRole{
	PartyRoleArtist,
	PartyRolePromoter,
	PartyRoleAdmin,
}

func (p PartyRole) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PartyRole.
func (p PartyRole) IsValid() bool {
	for _, candidate := range validPartyRoles {
		if candidate == p {
			return true
		}
	}
	return false
}

// Counterparty returns the opposite booking party. Admin has no counterparty.
func (p PartyRole) Counterparty() PartyRole {
	switch p {
	case PartyRoleArtist:
		return PartyRolePromoter
	case PartyRolePromoter:
		return PartyRoleArtist
	default:
		return ""
	}
}

// ParsePartyRole converts raw input into a PartyRole.
func ParsePartyRole(value string) (PartyRole, error) {
	for _, candidate := range validPartyRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid party role %q", value)
}
