package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/stagelink/stagelink-backend/pkg/enums"
)

// NegotiationEvent is the append-only audit trail of a booking's
// negotiation. Rows are never updated or deleted. The idempotency key is
// the caller-supplied token; a replayed request lands on the unique index.
type NegotiationEvent struct {
	ID             uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BookingID      uuid.UUID               `gorm:"column:booking_id;type:uuid;not null;index"`
	Action         enums.NegotiationAction `gorm:"column:action;type:negotiation_action;not null"`
	ActorID        uuid.UUID               `gorm:"column:actor_id;type:uuid;not null"`
	ActorRole      enums.PartyRole         `gorm:"column:actor_role;type:party_role;not null"`
	Round          int                     `gorm:"column:round;not null"`
	Payload        json.RawMessage         `gorm:"column:payload;type:jsonb"`
	IdempotencyKey *string                 `gorm:"column:idempotency_key;uniqueIndex"`
	CreatedAt      time.Time               `gorm:"column:created_at;autoCreateTime"`
}
