package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/stagelink/stagelink-backend/pkg/types"
)

// ContractVersion is one snapshot in the append-only version log. Version 1
// is written at initiation; each approved edit appends version N+1. Rows
// are never mutated or deleted.
type ContractVersion struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ContractID    uuid.UUID           `gorm:"column:contract_id;type:uuid;not null;uniqueIndex:idx_contract_versions_contract_version"`
	Version       int                 `gorm:"column:version;not null;uniqueIndex:idx_contract_versions_contract_version"`
	Terms         types.ContractTerms `gorm:"column:terms;type:jsonb;serializer:json"`
	Text          string              `gorm:"column:text;type:text;not null"`
	ChangeSummary string              `gorm:"column:change_summary;not null"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
}
