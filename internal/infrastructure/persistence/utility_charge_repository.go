package persistence

import (
	"context"
	"errors"

	"github.com/leaseledger/backend/internal/domain/billing"
	"github.com/leaseledger/backend/internal/domain/shared"
	"github.com/leaseledger/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormUtilityChargeRepository implements UtilityChargeRepository using GORM
type GormUtilityChargeRepository struct {
	db *gorm.DB
}

// NewGormUtilityChargeRepository creates a new GormUtilityChargeRepository
func NewGormUtilityChargeRepository(db *gorm.DB) *GormUtilityChargeRepository {
	return &GormUtilityChargeRepository{db: db}
}

// FindByID finds a utility charge by its ID
func (r *GormUtilityChargeRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.UtilityCharge, error) {
	var model models.UtilityChargeModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByLeaseAndMonth finds a lease's charge for a billing month
func (r *GormUtilityChargeRepository) FindByLeaseAndMonth(ctx context.Context, leaseID uuid.UUID, year, month int) (*billing.UtilityCharge, error) {
	var model models.UtilityChargeModel
	if err := r.db.WithContext(ctx).
		Where("lease_id = ? AND billing_year = ? AND billing_month = ?", leaseID, year, month).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBillableForPeriod finds pending charges for a billing period,
// ready for the merge into rent obligations
func (r *GormUtilityChargeRepository) FindBillableForPeriod(ctx context.Context, year, month int) ([]billing.UtilityCharge, error) {
	var chargeModels []models.UtilityChargeModel
	if err := r.db.WithContext(ctx).
		Where("billing_year = ? AND billing_month = ? AND status = ?", year, month, billing.ChargeStatusPending).
		Order("created_at ASC").
		Find(&chargeModels).Error; err != nil {
		return nil, err
	}

	charges := make([]billing.UtilityCharge, len(chargeModels))
	for i, model := range chargeModels {
		charges[i] = *model.ToDomain()
	}
	return charges, nil
}

// FindAll finds utility charges matching the filter
func (r *GormUtilityChargeRepository) FindAll(ctx context.Context, filter billing.UtilityChargeFilter) ([]billing.UtilityCharge, error) {
	var chargeModels []models.UtilityChargeModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.UtilityChargeModel{}), filter)

	if err := query.Find(&chargeModels).Error; err != nil {
		return nil, err
	}

	charges := make([]billing.UtilityCharge, len(chargeModels))
	for i, model := range chargeModels {
		charges[i] = *model.ToDomain()
	}
	return charges, nil
}

// Save creates or updates a utility charge
func (r *GormUtilityChargeRepository) Save(ctx context.Context, charge *billing.UtilityCharge) error {
	model := models.UtilityChargeModelFromDomain(charge)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves a utility charge with optimistic locking (version check)
func (r *GormUtilityChargeRepository) SaveWithLock(ctx context.Context, charge *billing.UtilityCharge) error {
	model := models.UtilityChargeModelFromDomain(charge)
	result := r.db.WithContext(ctx).
		Model(&models.UtilityChargeModel{}).
		Where("id = ? AND version = ?", charge.ID, charge.Version-1).
		Updates(map[string]interface{}{
			"items":                model.Items,
			"status":               model.Status,
			"billed_obligation_id": model.BilledObligationID,
			"notes":                model.Notes,
			"version":              model.Version,
			"updated_at":           model.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK", "The utility charge has been modified by another transaction")
	}
	return nil
}

// Count counts utility charges matching the filter
func (r *GormUtilityChargeRepository) Count(ctx context.Context, filter billing.UtilityChargeFilter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.UtilityChargeModel{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormUtilityChargeRepository) applyFilter(query *gorm.DB, filter billing.UtilityChargeFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, UtilityChargeSortFields, "created_at")
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormUtilityChargeRepository) applyFilterWithoutPagination(query *gorm.DB, filter billing.UtilityChargeFilter) *gorm.DB {
	if filter.LeaseID != nil {
		query = query.Where("lease_id = ?", *filter.LeaseID)
	}
	if filter.TenantID != nil {
		query = query.Where("tenant_id = ?", *filter.TenantID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.BillingYear != nil {
		query = query.Where("billing_year = ?", *filter.BillingYear)
	}
	if filter.BillingMonth != nil {
		query = query.Where("billing_month = ?", *filter.BillingMonth)
	}

	return query
}

// Ensure GormUtilityChargeRepository implements UtilityChargeRepository
var _ billing.UtilityChargeRepository = (*GormUtilityChargeRepository)(nil)
