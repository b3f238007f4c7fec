package negotiation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stagelink/stagelink-backend/pkg/db/models"
	"github.com/stagelink/stagelink-backend/pkg/enums"
)

// ProposeInput carries one counter-offer submission.
type ProposeInput struct {
	BookingID      uuid.UUID
	ActorID        uuid.UUID
	ActorRole      enums.PartyRole
	Amount         decimal.Decimal
	Currency       enums.Currency
	EventDate      *time.Time
	SlotType       *string
	Message        *string
	IdempotencyKey *string
}

// DecisionInput carries an accept or decline action.
type DecisionInput struct {
	BookingID      uuid.UUID
	ActorID        uuid.UUID
	ActorRole      enums.PartyRole
	IdempotencyKey *string
}

// BookingList is one cursor page of bookings for a party.
type BookingList struct {
	Items      []models.Booking
	NextCursor *string
}

// BookingDetail bundles the booking with its live workflow state.
type BookingDetail struct {
	Booking     models.Booking     `json:"booking"`
	Negotiation models.Negotiation `json:"negotiation"`
	Proposals   []models.Proposal  `json:"proposals"`
}

type eventPayload struct {
	Amount    *decimal.Decimal `json:"amount,omitempty"`
	Currency  enums.Currency   `json:"currency,omitempty"`
	EventDate *time.Time       `json:"eventDate,omitempty"`
	SlotType  *string          `json:"slotType,omitempty"`
	Message   *string          `json:"message,omitempty"`
}
