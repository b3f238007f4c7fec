package contracts

import (
	"time"

	"github.com/stagelink/stagelink-backend/pkg/db/models"
	"github.com/stagelink/stagelink-backend/pkg/enums"
	pkgerrors "github.com/stagelink/stagelink-backend/pkg/errors"
)

// CheckVoided is the universal guard consulted by every contract action.
// A voided contract rejects review, accept, sign, and edit uniformly with
// the same error.
func CheckVoided(contract *models.Contract) error {
	if contract.Status == enums.ContractStatusVoided {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "contract is voided and accepts no further actions").
			WithReason(pkgerrors.ReasonContractVoided)
	}
	return nil
}

// CheckDeadline rejects actions on an unsigned contract whose signing
// window has elapsed. Only sent contracts expire; anything past the first
// signature already beat the deadline.
func CheckDeadline(contract *models.Contract, now time.Time) error {
	if contract.Status == enums.ContractStatusSent && now.After(contract.DeadlineAt) {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "contract signing deadline has passed").
			WithReason(pkgerrors.ReasonDeadlineExpired)
	}
	return nil
}

// CheckReviewBeforeAccept enforces the per-party review step.
func CheckReviewBeforeAccept(contract *models.Contract, role enums.PartyRole) error {
	if contract.ReviewedAt(role) == nil {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "contract must be reviewed before accepting").
			WithReason(pkgerrors.ReasonReviewRequired)
	}
	return nil
}

// CheckAcceptBeforeSign enforces the per-party acceptance step.
func CheckAcceptBeforeSign(contract *models.Contract, role enums.PartyRole) error {
	if contract.AcceptedAt(role) == nil {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "contract must be accepted before signing").
			WithReason(pkgerrors.ReasonAcceptRequired)
	}
	return nil
}

// SignatureInput carries the non-repudiation payload captured at signing.
type SignatureInput struct {
	SignatureData string              `json:"signatureData"`
	SignatureType enums.SignatureType `json:"signatureType"`
	IPAddress     string              `json:"ipAddress"`
	UserAgent     string              `json:"userAgent"`
}

// ValidateSignature checks the four mandatory signature fields and returns
// one violation per missing or invalid field.
func ValidateSignature(input SignatureInput) []Violation {
	var violations []Violation
	if input.SignatureData == "" {
		violations = append(violations, Violation{
			Reason:  pkgerrors.ReasonIncompleteSignature,
			Field:   "signatureData",
			Message: "signature payload is required",
		})
	}
	if !input.SignatureType.IsValid() {
		violations = append(violations, Violation{
			Reason:  pkgerrors.ReasonIncompleteSignature,
			Field:   "signatureType",
			Message: "signature type must be drawn, typed, or uploaded",
		})
	}
	if input.IPAddress == "" {
		violations = append(violations, Violation{
			Reason:  pkgerrors.ReasonIncompleteSignature,
			Field:   "ipAddress",
			Message: "client IP address is required",
		})
	}
	if input.UserAgent == "" {
		violations = append(violations, Violation{
			Reason:  pkgerrors.ReasonIncompleteSignature,
			Field:   "userAgent",
			Message: "client user agent is required",
		})
	}
	return violations
}

// SignatureOutcome describes the contract state after one party signs.
type SignatureOutcome struct {
	FullyExecuted bool
	NewStatus     enums.ContractStatus
}

// CheckDualSignature resolves the status transition for a signature by the
// given role. Whichever party signs second completes execution and moves
// the contract into administrative review.
func CheckDualSignature(contract *models.Contract, role enums.PartyRole) SignatureOutcome {
	if contract.PartySignedAt(role.Counterparty()) != nil {
		return SignatureOutcome{FullyExecuted: true, NewStatus: enums.ContractStatusAdminReview}
	}
	status := enums.ContractStatusSignedByArtist
	if role == enums.PartyRolePromoter {
		status = enums.ContractStatusSignedByPromoter
	}
	return SignatureOutcome{FullyExecuted: false, NewStatus: status}
}
