package negotiation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stagelink/stagelink-backend/internal/repo"
	"github.com/stagelink/stagelink-backend/pkg/db/models"
	"github.com/stagelink/stagelink-backend/pkg/pagination"
)

type repository struct {
	base repo.Base
}

// NewRepository builds a negotiation repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{base: repo.NewBase(tx)}
}

func (r *repository) FindBookingByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := r.base.DB(ctx).
		Preload("Negotiation").
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) FindBookingForUpdate(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := r.base.DB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) FindNegotiationByBooking(ctx context.Context, bookingID uuid.UUID) (*models.Negotiation, error) {
	var negotiation models.Negotiation
	err := r.base.DB(ctx).
		Where("booking_id = ?", bookingID).
		First(&negotiation).Error
	if err != nil {
		return nil, err
	}
	return &negotiation, nil
}

func (r *repository) FindNegotiationForUpdate(ctx context.Context, bookingID uuid.UUID) (*models.Negotiation, error) {
	var negotiation models.Negotiation
	err := r.base.DB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("booking_id = ?", bookingID).
		First(&negotiation).Error
	if err != nil {
		return nil, err
	}
	return &negotiation, nil
}

func (r *repository) ListBookingsForParty(ctx context.Context, userID uuid.UUID, params pagination.Params) (*BookingList, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.base.DB(ctx).Model(&models.Booking{}).
		Where("artist_id = ? OR organizer_id = ?", userID, userID)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var bookings []models.Booking
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&bookings).Error; err != nil {
		return nil, err
	}

	list := &BookingList{Items: bookings}
	if len(bookings) > normalized {
		next := bookings[normalized]
		list.Items = bookings[:normalized]
		encoded := pagination.EncodeCursor(pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID})
		list.NextCursor = &encoded
	}
	return list, nil
}

func (r *repository) ListEvents(ctx context.Context, bookingID uuid.UUID) ([]models.NegotiationEvent, error) {
	var events []models.NegotiationEvent
	err := r.base.DB(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC, id ASC").
		Find(&events).Error
	return events, err
}

func (r *repository) ListProposals(ctx context.Context, bookingID uuid.UUID) ([]models.Proposal, error) {
	var proposals []models.Proposal
	err := r.base.DB(ctx).
		Where("booking_id = ?", bookingID).
		Order("round ASC").
		Find(&proposals).Error
	return proposals, err
}

func (r *repository) CreateProposal(ctx context.Context, proposal *models.Proposal) (*models.Proposal, error) {
	if err := r.base.DB(ctx).Create(proposal).Error; err != nil {
		return nil, err
	}
	return proposal, nil
}

func (r *repository) AppendEvent(ctx context.Context, event *models.NegotiationEvent) error {
	return r.base.DB(ctx).Create(event).Error
}

func (r *repository) UpdateNegotiation(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.base.DB(ctx).
		Model(&models.Negotiation{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) UpdateBooking(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.base.DB(ctx).
		Model(&models.Booking{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) FindExpiredTurns(ctx context.Context, cutoff time.Time, limit int) ([]models.Negotiation, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []models.Negotiation
	err := r.base.DB(ctx).
		Where("locked = ? AND turn_deadline_at IS NOT NULL AND turn_deadline_at < ?", false, cutoff).
		Order("turn_deadline_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
