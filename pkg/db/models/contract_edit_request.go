package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/stagelink/stagelink-backend/pkg/enums"
	"github.com/stagelink/stagelink-backend/pkg/types"
)

// ContractEditRequest is one party's proposed change to the editable terms.
// At most one pending request may exist per contract, and each party gets
// one submission over the contract's lifetime regardless of outcome.
type ContractEditRequest struct {
	ID            uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ContractID    uuid.UUID               `gorm:"column:contract_id;type:uuid;not null;index"`
	RequestedBy   uuid.UUID               `gorm:"column:requested_by;type:uuid;not null"`
	RequestedRole enums.PartyRole         `gorm:"column:requested_role;type:party_role;not null"`
	Changes       types.ChangeSet         `gorm:"column:changes;type:jsonb;serializer:json"`
	Status        enums.EditRequestStatus `gorm:"column:status;type:edit_request_status;not null;default:'pending'"`
	ResolvedBy    *uuid.UUID              `gorm:"column:resolved_by;type:uuid"`
	ResolvedAt    *time.Time              `gorm:"column:resolved_at"`
	CreatedAt     time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
