package persistence

import (
	"context"
	"errors"

	"github.com/leaseledger/backend/internal/domain/leasing"
	"github.com/leaseledger/backend/internal/domain/shared"
	"github.com/leaseledger/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSecurityDepositRepository implements SecurityDepositRepository using GORM
type GormSecurityDepositRepository struct {
	db *gorm.DB
}

// NewGormSecurityDepositRepository creates a new GormSecurityDepositRepository
func NewGormSecurityDepositRepository(db *gorm.DB) *GormSecurityDepositRepository {
	return &GormSecurityDepositRepository{db: db}
}

// FindByID finds a deposit by ID
func (r *GormSecurityDepositRepository) FindByID(ctx context.Context, id uuid.UUID) (*leasing.SecurityDeposit, error) {
	var model models.SecurityDepositModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByLease finds the deposit held for a lease
func (r *GormSecurityDepositRepository) FindByLease(ctx context.Context, leaseID uuid.UUID) (*leasing.SecurityDeposit, error) {
	var model models.SecurityDepositModel
	if err := r.db.WithContext(ctx).
		Where("lease_id = ?", leaseID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a deposit
func (r *GormSecurityDepositRepository) Save(ctx context.Context, deposit *leasing.SecurityDeposit) error {
	model := models.SecurityDepositModelFromDomain(deposit)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves a deposit with optimistic locking (version check)
// Returns error if the version has changed (concurrent modification)
func (r *GormSecurityDepositRepository) SaveWithLock(ctx context.Context, deposit *leasing.SecurityDeposit) error {
	model := models.SecurityDepositModelFromDomain(deposit)
	result := r.db.WithContext(ctx).
		Model(&models.SecurityDepositModel{}).
		Where("id = ? AND version = ?", deposit.ID, deposit.Version-1).
		Updates(map[string]interface{}{
			"amount_returned": model.AmountReturned,
			"deductions":      model.Deductions,
			"itemization":     model.Itemization,
			"status":          model.Status,
			"finalized_at":    model.FinalizedAt,
			"version":         model.Version,
			"updated_at":      model.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK", "The deposit has been modified by another transaction")
	}
	return nil
}

// Ensure GormSecurityDepositRepository implements SecurityDepositRepository
var _ leasing.SecurityDepositRepository = (*GormSecurityDepositRepository)(nil)
