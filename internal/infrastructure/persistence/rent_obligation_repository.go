package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/leaseledger/backend/internal/domain/billing"
	"github.com/leaseledger/backend/internal/domain/shared"
	"github.com/leaseledger/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// openObligationStatuses are the statuses that can still receive payments.
var openObligationStatuses = []billing.ObligationStatus{
	billing.ObligationStatusPending,
	billing.ObligationStatusOverdue,
}

// unpaidObligationStatuses are the statuses settlement resolves at move-out.
var unpaidObligationStatuses = []billing.ObligationStatus{
	billing.ObligationStatusPending,
	billing.ObligationStatusOverdue,
	billing.ObligationStatusPartial,
}

// GormRentObligationRepository implements RentObligationRepository using GORM
type GormRentObligationRepository struct {
	db *gorm.DB
}

// NewGormRentObligationRepository creates a new GormRentObligationRepository
func NewGormRentObligationRepository(db *gorm.DB) *GormRentObligationRepository {
	return &GormRentObligationRepository{db: db}
}

// FindByID finds a rent obligation by its ID
func (r *GormRentObligationRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.RentObligation, error) {
	var model models.RentObligationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds a rent obligation by its obligation number
func (r *GormRentObligationRepository) FindByNumber(ctx context.Context, number string) (*billing.RentObligation, error) {
	var model models.RentObligationModel
	if err := r.db.WithContext(ctx).
		Where("obligation_number = ?", number).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByLeaseAndPeriod finds the obligation for a lease's billing period
func (r *GormRentObligationRepository) FindByLeaseAndPeriod(ctx context.Context, leaseID uuid.UUID, year, month int) (*billing.RentObligation, error) {
	var model models.RentObligationModel
	if err := r.db.WithContext(ctx).
		Where("lease_id = ? AND period_year = ? AND period_month = ?", leaseID, year, month).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindOpenByLease finds pending and overdue obligations for a lease,
// oldest due date first
func (r *GormRentObligationRepository) FindOpenByLease(ctx context.Context, leaseID uuid.UUID) ([]billing.RentObligation, error) {
	return r.findByLeaseAndStatuses(ctx, leaseID, openObligationStatuses, false)
}

// FindOpenByLeaseForUpdate is FindOpenByLease with row locks. Must run
// inside a transaction; the locks hold until commit so a racing
// verification cannot apply against the same rows.
func (r *GormRentObligationRepository) FindOpenByLeaseForUpdate(ctx context.Context, leaseID uuid.UUID) ([]billing.RentObligation, error) {
	return r.findByLeaseAndStatuses(ctx, leaseID, openObligationStatuses, true)
}

// FindUnpaidByLease finds pending, overdue and partial obligations for a lease
func (r *GormRentObligationRepository) FindUnpaidByLease(ctx context.Context, leaseID uuid.UUID) ([]billing.RentObligation, error) {
	return r.findByLeaseAndStatuses(ctx, leaseID, unpaidObligationStatuses, false)
}

// FindUnpaidByLeaseForUpdate is FindUnpaidByLease with row locks for
// the settlement transaction
func (r *GormRentObligationRepository) FindUnpaidByLeaseForUpdate(ctx context.Context, leaseID uuid.UUID) ([]billing.RentObligation, error) {
	return r.findByLeaseAndStatuses(ctx, leaseID, unpaidObligationStatuses, true)
}

func (r *GormRentObligationRepository) findByLeaseAndStatuses(
	ctx context.Context,
	leaseID uuid.UUID,
	statuses []billing.ObligationStatus,
	forUpdate bool,
) ([]billing.RentObligation, error) {
	query := r.db.WithContext(ctx).
		Where("lease_id = ? AND status IN ?", leaseID, statuses).
		Order("due_date ASC")
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var obligationModels []models.RentObligationModel
	if err := query.Find(&obligationModels).Error; err != nil {
		return nil, err
	}

	obligations := make([]billing.RentObligation, len(obligationModels))
	for i, model := range obligationModels {
		obligations[i] = *model.ToDomain()
	}
	return obligations, nil
}

// FindPendingDueOnOrBefore finds pending obligations whose due date is on
// or before the cutoff. The overdue promotion batch scans these; the grace
// window is evaluated per lease by the caller.
func (r *GormRentObligationRepository) FindPendingDueOnOrBefore(ctx context.Context, cutoff time.Time) ([]billing.RentObligation, error) {
	var obligationModels []models.RentObligationModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND due_date <= ?", billing.ObligationStatusPending, cutoff).
		Order("due_date ASC").
		Find(&obligationModels).Error; err != nil {
		return nil, err
	}

	obligations := make([]billing.RentObligation, len(obligationModels))
	for i, model := range obligationModels {
		obligations[i] = *model.ToDomain()
	}
	return obligations, nil
}

// FindAll finds obligations matching the filter
func (r *GormRentObligationRepository) FindAll(ctx context.Context, filter billing.RentObligationFilter) ([]billing.RentObligation, error) {
	var obligationModels []models.RentObligationModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.RentObligationModel{}), filter)

	if err := query.Find(&obligationModels).Error; err != nil {
		return nil, err
	}

	obligations := make([]billing.RentObligation, len(obligationModels))
	for i, model := range obligationModels {
		obligations[i] = *model.ToDomain()
	}
	return obligations, nil
}

// ExistsForPeriod checks whether a lease already has an obligation for a period
func (r *GormRentObligationRepository) ExistsForPeriod(ctx context.Context, leaseID uuid.UUID, year, month int) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.RentObligationModel{}).
		Where("lease_id = ? AND period_year = ? AND period_month = ?", leaseID, year, month).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates an obligation and appends its pending history
// entries in the same call. The history rows are insert-only.
func (r *GormRentObligationRepository) Save(ctx context.Context, obligation *billing.RentObligation) error {
	model := models.RentObligationModelFromDomain(obligation)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return err
	}
	return r.insertPendingUpdates(ctx, obligation)
}

// SaveWithLock saves an obligation with optimistic locking (version check)
// and appends its pending history entries. Returns OPTIMISTIC_LOCK when the
// row moved on since it was read.
func (r *GormRentObligationRepository) SaveWithLock(ctx context.Context, obligation *billing.RentObligation) error {
	model := models.RentObligationModelFromDomain(obligation)
	result := r.db.WithContext(ctx).
		Model(&models.RentObligationModel{}).
		Where("id = ? AND version = ?", obligation.ID, obligation.Version-1).
		Updates(map[string]interface{}{
			"amount_due":        model.AmountDue,
			"utilities_charges": model.UtilitiesCharges,
			"late_fee":          model.LateFee,
			"amount_paid":       model.AmountPaid,
			"status":            model.Status,
			"payment_method":    model.PaymentMethod,
			"payment_reference": model.PaymentReference,
			"payment_date":      model.PaymentDate,
			"processed_by":      model.ProcessedBy,
			"version":           model.Version,
			"updated_at":        model.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK", "The obligation has been modified by another transaction")
	}
	return r.insertPendingUpdates(ctx, obligation)
}

// insertPendingUpdates drains the aggregate's history entries into the
// updates table. Called after the obligation row persisted, inside the
// same ambient transaction.
func (r *GormRentObligationRepository) insertPendingUpdates(ctx context.Context, obligation *billing.RentObligation) error {
	pending := obligation.PendingUpdates()
	if len(pending) == 0 {
		return nil
	}

	updateModels := make([]*models.ObligationUpdateModel, len(pending))
	for i, u := range pending {
		updateModels[i] = models.ObligationUpdateModelFromDomain(u)
	}
	if err := r.db.WithContext(ctx).Create(&updateModels).Error; err != nil {
		return fmt.Errorf("failed to append obligation history: %w", err)
	}
	obligation.ClearPendingUpdates()
	return nil
}

// Count counts obligations matching the filter
func (r *GormRentObligationRepository) Count(ctx context.Context, filter billing.RentObligationFilter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.RentObligationModel{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts obligations in a status
func (r *GormRentObligationRepository) CountByStatus(ctx context.Context, status billing.ObligationStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.RentObligationModel{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SumOutstandingByLease totals the unpaid balance across a lease's open
// and partially paid obligations
func (r *GormRentObligationRepository) SumOutstandingByLease(ctx context.Context, leaseID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.RentObligationModel{}).
		Select("COALESCE(SUM(amount_due + utilities_charges + late_fee - amount_paid), 0) as total").
		Where("lease_id = ? AND status IN ?", leaseID, unpaidObligationStatuses).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// SumOutstanding totals the unpaid balance across all open obligations
func (r *GormRentObligationRepository) SumOutstanding(ctx context.Context) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.RentObligationModel{}).
		Select("COALESCE(SUM(amount_due + utilities_charges + late_fee - amount_paid), 0) as total").
		Where("status IN ?", unpaidObligationStatuses).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// FindUpdates returns an obligation's append-only history, oldest first
func (r *GormRentObligationRepository) FindUpdates(ctx context.Context, obligationID uuid.UUID) ([]billing.ObligationUpdate, error) {
	var updateModels []models.ObligationUpdateModel
	if err := r.db.WithContext(ctx).
		Where("obligation_id = ?", obligationID).
		Order("created_at ASC").
		Find(&updateModels).Error; err != nil {
		return nil, err
	}

	updates := make([]billing.ObligationUpdate, len(updateModels))
	for i, model := range updateModels {
		updates[i] = model.ToDomain()
	}
	return updates, nil
}

// GenerateObligationNumber generates the next obligation number for a period.
// Format: RO-YYYYMM-NNNN (e.g., RO-202403-0001)
func (r *GormRentObligationRepository) GenerateObligationNumber(ctx context.Context, year, month int) (string, error) {
	prefix := fmt.Sprintf("RO-%04d%02d-", year, month)

	var maxNumber string
	if err := r.db.WithContext(ctx).
		Model(&models.RentObligationModel{}).
		Select("obligation_number").
		Where("obligation_number LIKE ?", prefix+"%").
		Order("obligation_number DESC").
		Limit(1).
		Pluck("obligation_number", &maxNumber).Error; err != nil {
		return "", err
	}

	var nextNum int
	if maxNumber != "" {
		parts := strings.Split(maxNumber, "-")
		if len(parts) == 3 {
			fmt.Sscanf(parts[2], "%d", &nextNum)
		}
	}
	nextNum++

	return fmt.Sprintf("%s%04d", prefix, nextNum), nil
}

// applyFilter applies filter options to the query
func (r *GormRentObligationRepository) applyFilter(query *gorm.DB, filter billing.RentObligationFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, ObligationSortFields, "due_date")
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("due_date DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormRentObligationRepository) applyFilterWithoutPagination(query *gorm.DB, filter billing.RentObligationFilter) *gorm.DB {
	if filter.LeaseID != nil {
		query = query.Where("lease_id = ?", *filter.LeaseID)
	}
	if filter.TenantID != nil {
		query = query.Where("tenant_id = ?", *filter.TenantID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.PeriodYear != nil {
		query = query.Where("period_year = ?", *filter.PeriodYear)
	}
	if filter.PeriodMonth != nil {
		query = query.Where("period_month = ?", *filter.PeriodMonth)
	}
	if filter.DueFrom != nil {
		query = query.Where("due_date >= ?", *filter.DueFrom)
	}
	if filter.DueTo != nil {
		query = query.Where("due_date <= ?", *filter.DueTo)
	}
	if filter.Search != "" {
		query = query.Where("obligation_number ILIKE ?", "%"+filter.Search+"%")
	}

	return query
}

// Ensure GormRentObligationRepository implements RentObligationRepository
var _ billing.RentObligationRepository = (*GormRentObligationRepository)(nil)
