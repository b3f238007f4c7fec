package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/stagelink/stagelink-backend/pkg/enums"
)

// Negotiation is the turn-based workflow row for one booking. Exactly one
// party is awaiting at any non-terminal state; once Locked is set no
// further transitions are permitted.
type Negotiation struct {
	ID             uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BookingID      uuid.UUID              `gorm:"column:booking_id;type:uuid;not null;uniqueIndex"`
	State          enums.NegotiationState `gorm:"column:state;type:negotiation_state;not null;default:'waiting_first_move'"`
	Round          int                    `gorm:"column:round;not null;default:0"`
	MaxRounds      int                    `gorm:"column:max_rounds;not null;default:3"`
	AwaitingUserID *uuid.UUID             `gorm:"column:awaiting_user_id;type:uuid"`
	Locked         bool                   `gorm:"column:locked;not null;default:false"`
	TurnDeadlineAt *time.Time             `gorm:"column:turn_deadline_at"`
	CreatedAt      time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
