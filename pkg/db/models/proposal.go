package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stagelink/stagelink-backend/pkg/enums"
)

// ProposalStatusActive is the only proposal status; rows are immutable.
const ProposalStatusActive = "active"

// Proposal is one counter-offer in a negotiation. Created once per
// successful propose action and never mutated afterwards.
type Proposal struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BookingID  uuid.UUID       `gorm:"column:booking_id;type:uuid;not null;index"`
	AuthorID   uuid.UUID       `gorm:"column:author_id;type:uuid;not null"`
	AuthorRole enums.PartyRole `gorm:"column:author_role;type:party_role;not null"`
	Round      int             `gorm:"column:round;not null"`
	Amount     decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null"`
	Currency   enums.Currency  `gorm:"column:currency;type:text;not null"`
	EventDate  *time.Time      `gorm:"column:event_date;type:date"`
	SlotType   *string         `gorm:"column:slot_type"`
	Message    *string         `gorm:"column:message"`
	Status     string          `gorm:"column:status;not null;default:'active'"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
}
