package enums

import "fmt"

// ContractStatus tracks a contract from generation to execution or voiding.
type ContractStatus string

const (
	ContractStatusDraft            ContractStatus = "draft"
	ContractStatusSent             ContractStatus = "sent"
	ContractStatusSignedByArtist   ContractStatus = "signed_by_artist"
	ContractStatusSignedByPromoter ContractStatus = "signed_by_promoter"
	ContractStatusSigned           ContractStatus = "signed"
	ContractStatusAdminReview      ContractStatus = "admin_review"
	ContractStatusVoided           ContractStatus = "voided"
	ContractStatusCompleted        ContractStatus = "completed"
)

var validContractStatuses = []ContractStatus{
	ContractStatusDraft,
	ContractStatusSent,
	ContractStatusSignedByArtist,
	ContractStatusSignedByPromoter,
	ContractStatusSigned,
	ContractStatusAdminReview,
	ContractStatusVoided,
	ContractStatusCompleted,
}

func (c ContractStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ContractStatus.
func (c ContractStatus) IsValid() bool {
	for _, candidate := range validContractStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseContractStatus converts raw input into a ContractStatus.
func ParseContractStatus(value string) (ContractStatus, error) {
	for _, candidate := range validContractStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid contract status %q", value)
}
