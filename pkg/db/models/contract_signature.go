package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/stagelink/stagelink-backend/pkg/enums"
)

// ContractSignature captures one party's signature with the IP address and
// user agent required for non-repudiation. Immutable once written.
type ContractSignature struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ContractID    uuid.UUID           `gorm:"column:contract_id;type:uuid;not null;uniqueIndex:idx_contract_signatures_contract_role"`
	SignerID      uuid.UUID           `gorm:"column:signer_id;type:uuid;not null"`
	Role          enums.PartyRole     `gorm:"column:role;type:party_role;not null;uniqueIndex:idx_contract_signatures_contract_role"`
	SignatureData string              `gorm:"column:signature_data;type:text;not null"`
	SignatureType enums.SignatureType `gorm:"column:signature_type;type:signature_type;not null"`
	IPAddress     string              `gorm:"column:ip_address;not null"`
	UserAgent     string              `gorm:"column:user_agent;not null"`
	SignedAt      time.Time           `gorm:"column:signed_at;not null"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
}
