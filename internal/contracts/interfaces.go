package contracts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stagelink/stagelink-backend/pkg/db/models"
)

// Repository defines persistence operations for contracts and their
// versions, edit requests, and signatures.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindBookingByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	FindBookingForUpdate(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	FindContractByID(ctx context.Context, id uuid.UUID) (*models.Contract, error)
	FindContractForUpdate(ctx context.Context, id uuid.UUID) (*models.Contract, error)
	FindLiveByBooking(ctx context.Context, bookingID uuid.UUID) (*models.Contract, error)
	CreateContract(ctx context.Context, contract *models.Contract) error
	CreateVersion(ctx context.Context, version *models.ContractVersion) error
	CreateSignature(ctx context.Context, signature *models.ContractSignature) error
	CreateEditRequest(ctx context.Context, request *models.ContractEditRequest) error
	FindEditRequestForUpdate(ctx context.Context, id uuid.UUID) (*models.ContractEditRequest, error)
	FindPendingEdit(ctx context.Context, contractID uuid.UUID) (*models.ContractEditRequest, error)
	ListVersions(ctx context.Context, contractID uuid.UUID) ([]models.ContractVersion, error)
	UpdateContract(ctx context.Context, id uuid.UUID, updates map[string]any) error
	UpdateEditRequest(ctx context.Context, id uuid.UUID, updates map[string]any) error
	UpdateBooking(ctx context.Context, id uuid.UUID, updates map[string]any) error
	FindExpiredSent(ctx context.Context, now time.Time, limit int) ([]models.Contract, error)
}
