package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stagelink/stagelink-backend/pkg/enums"
)

// BookingOfferedEvent signals the opening offer on a booking.
type BookingOfferedEvent struct {
	BookingID   uuid.UUID       `json:"bookingId"`
	ArtistID    uuid.UUID       `json:"artistId"`
	OrganizerID uuid.UUID       `json:"organizerId"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    enums.Currency  `json:"currency"`
	Round       int             `json:"round"`
}

// BookingCounterOfferedEvent is emitted for every successful counter-offer.
type BookingCounterOfferedEvent struct {
	BookingID  uuid.UUID       `json:"bookingId"`
	ProposalID uuid.UUID       `json:"proposalId"`
	AuthorID   uuid.UUID       `json:"authorId"`
	AuthorRole enums.PartyRole `json:"authorRole"`
	Round      int             `json:"round"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   enums.Currency  `json:"currency"`
}

// NegotiationAcceptedEvent marks the hand-off from negotiation to contracting.
type NegotiationAcceptedEvent struct {
	NegotiationID uuid.UUID       `json:"negotiationId"`
	BookingID     uuid.UUID       `json:"bookingId"`
	AcceptedBy    uuid.UUID       `json:"acceptedBy"`
	FinalAmount   decimal.Decimal `json:"finalAmount"`
	Currency      enums.Currency  `json:"currency"`
}

// NegotiationDeclinedEvent marks a terminal decline.
type NegotiationDeclinedEvent struct {
	NegotiationID uuid.UUID `json:"negotiationId"`
	BookingID     uuid.UUID `json:"bookingId"`
	DeclinedBy    uuid.UUID `json:"declinedBy"`
}

// NegotiationTurnExpiringEvent nudges the party whose turn deadline lapsed.
type NegotiationTurnExpiringEvent struct {
	NegotiationID  uuid.UUID `json:"negotiationId"`
	BookingID      uuid.UUID `json:"bookingId"`
	AwaitingUserID uuid.UUID `json:"awaitingUserId"`
	TurnDeadlineAt time.Time `json:"turnDeadlineAt"`
}

// ContractInitiatedEvent is emitted when a contract is generated and sent.
type ContractInitiatedEvent struct {
	ContractID uuid.UUID `json:"contractId"`
	BookingID  uuid.UUID `json:"bookingId"`
	DeadlineAt time.Time `json:"deadlineAt"`
}

// ContractEditRequestedEvent is emitted when a party submits an edit request.
type ContractEditRequestedEvent struct {
	ContractID    uuid.UUID       `json:"contractId"`
	RequestID     uuid.UUID       `json:"requestId"`
	RequestedRole enums.PartyRole `json:"requestedRole"`
}

// ContractEditResolvedEvent is emitted when an admin resolves an edit request.
type ContractEditResolvedEvent struct {
	ContractID uuid.UUID `json:"contractId"`
	RequestID  uuid.UUID `json:"requestId"`
	Approved   bool      `json:"approved"`
	Version    int       `json:"version"`
}

// ContractSignedEvent is emitted for each individual party signature.
type ContractSignedEvent struct {
	ContractID uuid.UUID       `json:"contractId"`
	BookingID  uuid.UUID       `json:"bookingId"`
	SignerID   uuid.UUID       `json:"signerId"`
	Role       enums.PartyRole `json:"role"`
}

// ContractFullyExecutedEvent is emitted once both parties have signed.
type ContractFullyExecutedEvent struct {
	ContractID uuid.UUID `json:"contractId"`
	BookingID  uuid.UUID `json:"bookingId"`
	SignedAt   time.Time `json:"signedAt"`
}

// ContractVoidedEvent is emitted when a contract is voided.
type ContractVoidedEvent struct {
	ContractID uuid.UUID `json:"contractId"`
	BookingID  uuid.UUID `json:"bookingId"`
	Reason     string    `json:"reason"`
	VoidedAt   time.Time `json:"voidedAt"`
}

// BookingCancelledEvent is emitted when a booking reaches cancelled.
type BookingCancelledEvent struct {
	BookingID   uuid.UUID `json:"bookingId"`
	Reason      string    `json:"reason"`
	CancelledAt time.Time `json:"cancelledAt"`
}

// NotificationRequestedEvent tells downstream systems to alert a party.
type NotificationRequestedEvent struct {
	BookingID   uuid.UUID  `json:"bookingId"`
	ContractID  *uuid.UUID `json:"contractId,omitempty"`
	RecipientID uuid.UUID  `json:"recipientId"`
	Type        string     `json:"type"`
}
