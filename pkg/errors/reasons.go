package errors

// Machine-readable rejection reasons carried in error details. Clients and
// tests branch on these rather than on message text.
const (
	ReasonNotYourTurn          = "not_your_turn"
	ReasonMaxRoundsReached     = "max_rounds_reached"
	ReasonNegotiationLocked    = "negotiation_locked"
	ReasonEditAlreadyUsed      = "edit_already_used"
	ReasonPendingEditBlocks    = "pending_edit_blocks"
	ReasonLockedFieldViolation = "locked_field_violation"
	ReasonMilestoneSumInvalid  = "milestone_sum_invalid"
	ReasonPenaltyOutOfRange    = "penalty_out_of_range"
	ReasonInvalidTimeOrdering  = "invalid_time_ordering"
	ReasonUnknownCategory      = "unknown_category"
	ReasonUnknownField         = "unknown_field"
	ReasonReviewRequired       = "review_required"
	ReasonAcceptRequired       = "accept_required"
	ReasonIncompleteSignature  = "incomplete_signature"
	ReasonDeadlineExpired      = "deadline_expired"
	ReasonContractVoided       = "contract_voided"
)
