package contracts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stagelink/stagelink-backend/internal/repo"
	"github.com/stagelink/stagelink-backend/pkg/db/models"
	"github.com/stagelink/stagelink-backend/pkg/enums"
)

type repository struct {
	base repo.Base
}

// NewRepository builds a contract repository bound to the provided DB.
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

func (r *repository) FindContractByID(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	var contract models.Contract
	err := r.base.DB(ctx).
		Where("id = ?", id).
		First(&contract).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *repository) FindContractForUpdate(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	var contract models.Contract
	err := r.base.DB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&contract).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *repository) FindLiveByBooking(ctx context.Context, bookingID uuid.UUID) (*models.Contract, error) {
	var contract models.Contract
	err := r.base.DB(ctx).
		Where("booking_id = ? AND status <> ?", bookingID, enums.ContractStatusVoided).
		First(&contract).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *repository) CreateContract(ctx context.Context, contract *models.Contract) error {
	return r.base.DB(ctx).Create(contract).Error
}

func (r *repository) CreateVersion(ctx context.Context, version *models.ContractVersion) error {
	return r.base.DB(ctx).Create(version).Error
}

func (r *repository) CreateSignature(ctx context.Context, signature *models.ContractSignature) error {
	return r.base.DB(ctx).Create(signature).Error
}

func (r *repository) CreateEditRequest(ctx context.Context, request *models.ContractEditRequest) error {
	return r.base.DB(ctx).Create(request).Error
}

func (r *repository) FindEditRequestForUpdate(ctx context.Context, id uuid.UUID) (*models.ContractEditRequest, error) {
	var request models.ContractEditRequest
	err := r.base.DB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repository) FindPendingEdit(ctx context.Context, contractID uuid.UUID) (*models.ContractEditRequest, error) {
	var request models.ContractEditRequest
	err := r.base.DB(ctx).
		Where("contract_id = ? AND status = ?", contractID, enums.EditRequestStatusPending).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repository) ListVersions(ctx context.Context, contractID uuid.UUID) ([]models.ContractVersion, error) {
	var versions []models.ContractVersion
	err := r.base.DB(ctx).
		Where("contract_id = ?", contractID).
		Order("version ASC").
		Find(&versions).Error
	return versions, err
}

func (r *repository) UpdateContract(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.base.DB(ctx).
		Model(&models.Contract{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) UpdateEditRequest(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.base.DB(ctx).
		Model(&models.ContractEditRequest{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) UpdateBooking(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.base.DB(ctx).
		Model(&models.Booking{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) FindExpiredSent(ctx context.Context, now time.Time, limit int) ([]models.Contract, error) {
	if limit <= 0 {
		limit = 100
	}
	var contracts []models.Contract
	err := r.base.DB(ctx).
		Where("status = ? AND deadline_at < ?", enums.ContractStatusSent, now).
		Order("deadline_at ASC").
		Limit(limit).
		Find(&contracts).Error
	return contracts, err
}
