package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/stagelink/stagelink-backend/pkg/enums"
)

// Booking is the anchor entity binding an artist and an organizer to one
// live-performance engagement. FinalAmount is set only once a negotiation
// has been accepted.
type Booking struct {
	ID                        uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ArtistID                  uuid.UUID           `gorm:"column:artist_id;type:uuid;not null"`
	OrganizerID               uuid.UUID           `gorm:"column:organizer_id;type:uuid;not null"`
	VenueID                   *uuid.UUID          `gorm:"column:venue_id;type:uuid"`
	EventTitle                string              `gorm:"column:event_title;not null"`
	EventDate                 time.Time           `gorm:"column:event_date;type:date;not null"`
	EventTime                 string              `gorm:"column:event_time;not null"`
	SlotType                  string              `gorm:"column:slot_type;not null"`
	PerformanceDurationMins   int                 `gorm:"column:performance_duration_mins;not null"`
	VenueName                 string              `gorm:"column:venue_name;not null"`
	ArtistName                string              `gorm:"column:artist_name;not null"`
	OrganizerName             string              `gorm:"column:organizer_name;not null"`
	OfferAmount               decimal.Decimal     `gorm:"column:offer_amount;type:numeric(12,2);not null"`
	Currency                  enums.Currency      `gorm:"column:currency;type:text;not null;default:'USD'"`
	FinalAmount               *decimal.Decimal    `gorm:"column:final_amount;type:numeric(12,2)"`
	DepositPercent            decimal.Decimal     `gorm:"column:deposit_percent;type:numeric(5,2);not null"`
	PlatformCommissionPercent decimal.Decimal     `gorm:"column:platform_commission_percent;type:numeric(5,2);not null"`
	Status                    enums.BookingStatus `gorm:"column:status;type:booking_status;not null;default:'inquiry'"`
	CancelReason              *enums.CancelReason `gorm:"column:cancel_reason;type:text"`
	Negotiation               *Negotiation        `gorm:"foreignKey:BookingID;constraint:OnDelete:CASCADE"`
	CreatedAt                 time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt                 time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// PartyRole resolves which side of the booking the given user is on.
// Returns an empty role when the user is neither party.
func (b *Booking) PartyRole(userID uuid.UUID) enums.PartyRole {
	switch userID {
	case b.ArtistID:
		return enums.PartyRoleArtist
	case b.OrganizerID:
		return enums.PartyRolePromoter
	default:
		return ""
	}
}

// Counterparty returns the user id of the other booking party.
func (b *Booking) Counterparty(userID uuid.UUID) uuid.UUID {
	if userID == b.ArtistID {
		return b.OrganizerID
	}
	return b.ArtistID
}
