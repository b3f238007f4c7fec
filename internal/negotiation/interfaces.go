package negotiation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stagelink/stagelink-backend/pkg/db/models"
	"github.com/stagelink/stagelink-backend/pkg/pagination"
)

// Repository defines persistence operations for bookings and negotiations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindBookingByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	FindBookingForUpdate(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	FindNegotiationByBooking(ctx context.Context, bookingID uuid.UUID) (*models.Negotiation, error)
	FindNegotiationForUpdate(ctx context.Context, bookingID uuid.UUID) (*models.Negotiation, error)
	ListBookingsForParty(ctx context.Context, userID uuid.UUID, params pagination.Params) (*BookingList, error)
	ListEvents(ctx context.Context, bookingID uuid.UUID) ([]models.NegotiationEvent, error)
	ListProposals(ctx context.Context, bookingID uuid.UUID) ([]models.Proposal, error)
	CreateProposal(ctx context.Context, proposal *models.Proposal) (*models.Proposal, error)
	AppendEvent(ctx context.Context, event *models.NegotiationEvent) error
	UpdateNegotiation(ctx context.Context, id uuid.UUID, updates map[string]any) error
	UpdateBooking(ctx context.Context, id uuid.UUID, updates map[string]any) error
	FindExpiredTurns(ctx context.Context, cutoff time.Time, limit int) ([]models.Negotiation, error)
}
