package enums

// CancelReason records why a booking was cancelled by the system or a party.
type CancelReason string

const (
	CancelReasonContractDeadlineExpired CancelReason = "contract_deadline_expired"
	CancelReasonNegotiationDeclined     CancelReason = "negotiation_declined"
	CancelReasonPartyRequested          CancelReason = "party_requested"
)

func (c CancelReason) String() string {
	return string(c)
}
