package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/stagelink/stagelink-backend/pkg/enums"
	"github.com/stagelink/stagelink-backend/pkg/types"
)

// Contract is the binding document generated from an accepted negotiation.
// At most one non-voided contract exists per booking. CurrentVersion always
// equals the highest ContractVersion.Version for the contract.
type Contract struct {
	ID                 uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BookingID          uuid.UUID            `gorm:"column:booking_id;type:uuid;not null;index"`
	Status             enums.ContractStatus `gorm:"column:status;type:contract_status;not null;default:'draft'"`
	Text               string               `gorm:"column:text;type:text;not null"`
	Terms              types.ContractTerms  `gorm:"column:terms;type:jsonb;serializer:json"`
	CurrentVersion     int                  `gorm:"column:current_version;not null;default:1"`
	InitiatedAt        time.Time            `gorm:"column:initiated_at;not null"`
	DeadlineAt         time.Time            `gorm:"column:deadline_at;not null"`
	ArtistReviewedAt   *time.Time           `gorm:"column:artist_reviewed_at"`
	ArtistAcceptedAt   *time.Time           `gorm:"column:artist_accepted_at"`
	ArtistSignedAt     *time.Time           `gorm:"column:artist_signed_at"`
	PromoterReviewedAt *time.Time           `gorm:"column:promoter_reviewed_at"`
	PromoterAcceptedAt *time.Time           `gorm:"column:promoter_accepted_at"`
	PromoterSignedAt   *time.Time           `gorm:"column:promoter_signed_at"`
	ArtistEditUsed     bool                 `gorm:"column:artist_edit_used;not null;default:false"`
	PromoterEditUsed   bool                 `gorm:"column:promoter_edit_used;not null;default:false"`
	SignedAt           *time.Time           `gorm:"column:signed_at"`
	VoidedAt           *time.Time           `gorm:"column:voided_at"`
	VoidReason         *string              `gorm:"column:void_reason"`
	Versions           []ContractVersion    `gorm:"foreignKey:ContractID;constraint:OnDelete:CASCADE"`
	Signatures         []ContractSignature  `gorm:"foreignKey:ContractID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// ReviewedAt returns the review timestamp for the given party.
func (c *Contract) ReviewedAt(role enums.PartyRole) *time.Time {
	if role == enums.PartyRoleArtist {
		return c.ArtistReviewedAt
	}
	return c.PromoterReviewedAt
}

// AcceptedAt returns the acceptance timestamp for the given party.
func (c *Contract) AcceptedAt(role enums.PartyRole) *time.Time {
	if role == enums.PartyRoleArtist {
		return c.ArtistAcceptedAt
	}
	return c.PromoterAcceptedAt
}

// PartySignedAt returns the signing timestamp for the given party.
func (c *Contract) PartySignedAt(role enums.PartyRole) *time.Time {
	if role == enums.PartyRoleArtist {
		return c.ArtistSignedAt
	}
	return c.PromoterSignedAt
}

// EditUsed reports whether the given party has spent its one-time edit.
func (c *Contract) EditUsed(role enums.PartyRole) bool {
	if role == enums.PartyRoleArtist {
		return c.ArtistEditUsed
	}
	return c.PromoterEditUsed
}
