package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/leaseledger/backend/internal/domain/leasing"
	"github.com/leaseledger/backend/internal/domain/shared"
	"github.com/leaseledger/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLeaseRepository implements LeaseRepository using GORM
type GormLeaseRepository struct {
	db *gorm.DB
}

// NewGormLeaseRepository creates a new GormLeaseRepository
func NewGormLeaseRepository(db *gorm.DB) *GormLeaseRepository {
	return &GormLeaseRepository{db: db}
}

// FindByID finds a lease by its ID
func (r *GormLeaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*leasing.Lease, error) {
	var model models.LeaseModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds leases by a set of IDs
func (r *GormLeaseRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]leasing.Lease, error) {
	if len(ids) == 0 {
		return []leasing.Lease{}, nil
	}

	var leaseModels []models.LeaseModel
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&leaseModels).Error; err != nil {
		return nil, err
	}

	leases := make([]leasing.Lease, len(leaseModels))
	for i, model := range leaseModels {
		leases[i] = *model.ToDomain()
	}
	return leases, nil
}

// FindByNumber finds a lease by its lease number
func (r *GormLeaseRepository) FindByNumber(ctx context.Context, number string) (*leasing.Lease, error) {
	var model models.LeaseModel
	if err := r.db.WithContext(ctx).
		Where("lease_number = ?", number).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveInPeriod finds active leases whose term covers any day of the
// billing month. The term check is inclusive on both ends.
func (r *GormLeaseRepository) FindActiveInPeriod(ctx context.Context, year int, month time.Month) ([]leasing.Lease, error) {
	monthStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	nextMonth := monthStart.AddDate(0, 1, 0)

	var leaseModels []models.LeaseModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND start_date < ? AND end_date >= ?", leasing.LeaseStatusActive, nextMonth, monthStart).
		Order("lease_number ASC").
		Find(&leaseModels).Error; err != nil {
		return nil, err
	}

	leases := make([]leasing.Lease, len(leaseModels))
	for i, model := range leaseModels {
		leases[i] = *model.ToDomain()
	}
	return leases, nil
}

// FindByTenant finds a renter's leases, newest first
func (r *GormLeaseRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]leasing.Lease, error) {
	var leaseModels []models.LeaseModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&leaseModels).Error; err != nil {
		return nil, err
	}

	leases := make([]leasing.Lease, len(leaseModels))
	for i, model := range leaseModels {
		leases[i] = *model.ToDomain()
	}
	return leases, nil
}

// FindAll finds all leases matching the filter
func (r *GormLeaseRepository) FindAll(ctx context.Context, filter leasing.LeaseFilter) ([]leasing.Lease, error) {
	var leaseModels []models.LeaseModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.LeaseModel{}), filter)

	if err := query.Find(&leaseModels).Error; err != nil {
		return nil, err
	}

	leases := make([]leasing.Lease, len(leaseModels))
	for i, model := range leaseModels {
		leases[i] = *model.ToDomain()
	}
	return leases, nil
}

// ExistsActiveForUnit checks whether the unit already has an active lease
func (r *GormLeaseRepository) ExistsActiveForUnit(ctx context.Context, unitID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.LeaseModel{}).
		Where("unit_id = ? AND status = ?", unitID, leasing.LeaseStatusActive).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a lease
func (r *GormLeaseRepository) Save(ctx context.Context, lease *leasing.Lease) error {
	model := models.LeaseModelFromDomain(lease)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves a lease with optimistic locking (version check)
// Returns error if the version has changed (concurrent modification)
func (r *GormLeaseRepository) SaveWithLock(ctx context.Context, lease *leasing.Lease) error {
	model := models.LeaseModelFromDomain(lease)
	result := r.db.WithContext(ctx).
		Model(&models.LeaseModel{}).
		Where("id = ? AND version = ?", lease.ID, lease.Version-1).
		Updates(map[string]interface{}{
			"monthly_rent":      model.MonthlyRent,
			"late_fee":          model.LateFee,
			"grace_period_days": model.GracePeriodDays,
			"rent_due_day":      model.RentDueDay,
			"deposit_amount":    model.DepositAmount,
			"end_date":          model.EndDate,
			"move_out_date":     model.MoveOutDate,
			"status":            model.Status,
			"version":           model.Version,
			"updated_at":        model.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK", "The lease has been modified by another transaction")
	}
	return nil
}

// Count counts leases matching the filter
func (r *GormLeaseRepository) Count(ctx context.Context, filter leasing.LeaseFilter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.LeaseModel{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// GenerateLeaseNumber generates the next lease number.
// Format: LSE-YYYY-NNNN (e.g., LSE-2024-0001)
func (r *GormLeaseRepository) GenerateLeaseNumber(ctx context.Context) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("LSE-%d-", year)

	var lastModel models.LeaseModel
	err := r.db.WithContext(ctx).
		Where("lease_number LIKE ?", prefix+"%").
		Order("lease_number DESC").
		First(&lastModel).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && lastModel.LeaseNumber != "" {
		parts := strings.Split(lastModel.LeaseNumber, "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	return fmt.Sprintf("%s%04d", prefix, nextNum), nil
}

// applyFilter applies filter options to the query
func (r *GormLeaseRepository) applyFilter(query *gorm.DB, filter leasing.LeaseFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, LeaseSortFields, "created_at")
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormLeaseRepository) applyFilterWithoutPagination(query *gorm.DB, filter leasing.LeaseFilter) *gorm.DB {
	if filter.UnitID != nil {
		query = query.Where("unit_id = ?", *filter.UnitID)
	}
	if filter.TenantID != nil {
		query = query.Where("tenant_id = ?", *filter.TenantID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.ActiveOn != nil {
		query = query.Where("status = ? AND start_date <= ? AND end_date >= ?",
			leasing.LeaseStatusActive, *filter.ActiveOn, *filter.ActiveOn)
	}
	if filter.Search != "" {
		query = query.Where("lease_number ILIKE ?", "%"+filter.Search+"%")
	}

	return query
}

// Ensure GormLeaseRepository implements LeaseRepository
var _ leasing.LeaseRepository = (*GormLeaseRepository)(nil)
