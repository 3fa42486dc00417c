package persistence

import (
	"context"
	"errors"

	"github.com/leaseledger/backend/internal/domain/leasing"
	"github.com/leaseledger/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSettlementRepository implements SettlementRepository using GORM
type GormSettlementRepository struct {
	db *gorm.DB
}

// NewGormSettlementRepository creates a new GormSettlementRepository
func NewGormSettlementRepository(db *gorm.DB) *GormSettlementRepository {
	return &GormSettlementRepository{db: db}
}

// FindByID finds a settlement by ID
func (r *GormSettlementRepository) FindByID(ctx context.Context, id uuid.UUID) (*leasing.Settlement, error) {
	var model models.SettlementModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByLease finds the settlement recorded for a lease
func (r *GormSettlementRepository) FindByLease(ctx context.Context, leaseID uuid.UUID) (*leasing.Settlement, error) {
	var model models.SettlementModel
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

// FindAll finds all settlements matching the filter
func (r *GormSettlementRepository) FindAll(ctx context.Context, filter leasing.SettlementFilter) ([]leasing.Settlement, error) {
	var settlementModels []models.SettlementModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.SettlementModel{}), filter)

	if err := query.Find(&settlementModels).Error; err != nil {
		return nil, err
	}

	settlements := make([]leasing.Settlement, len(settlementModels))
	for i, model := range settlementModels {
		settlements[i] = *model.ToDomain()
	}
	return settlements, nil
}

// Save persists a settlement record. Settlements are written once.
func (r *GormSettlementRepository) Save(ctx context.Context, settlement *leasing.Settlement) error {
	model := models.SettlementModelFromDomain(settlement)
	return r.db.WithContext(ctx).Create(model).Error
}

// Count counts settlements matching the filter
func (r *GormSettlementRepository) Count(ctx context.Context, filter leasing.SettlementFilter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.SettlementModel{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormSettlementRepository) applyFilter(query *gorm.DB, filter leasing.SettlementFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, SettlementSortFields, "created_at")
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("move_out_date DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormSettlementRepository) applyFilterWithoutPagination(query *gorm.DB, filter leasing.SettlementFilter) *gorm.DB {
	if filter.TenantID != nil {
		query = query.Where("tenant_id = ?", *filter.TenantID)
	}
	if filter.UnitID != nil {
		query = query.Where("unit_id = ?", *filter.UnitID)
	}
	if filter.FromDate != nil {
		query = query.Where("move_out_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("move_out_date <= ?", *filter.ToDate)
	}

	return query
}

// Ensure GormSettlementRepository implements SettlementRepository
var _ leasing.SettlementRepository = (*GormSettlementRepository)(nil)
