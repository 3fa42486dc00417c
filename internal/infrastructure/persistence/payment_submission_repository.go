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

// GormPaymentSubmissionRepository implements PaymentSubmissionRepository using GORM
type GormPaymentSubmissionRepository struct {
	db *gorm.DB
}

// NewGormPaymentSubmissionRepository creates a new GormPaymentSubmissionRepository
func NewGormPaymentSubmissionRepository(db *gorm.DB) *GormPaymentSubmissionRepository {
	return &GormPaymentSubmissionRepository{db: db}
}

// FindByID finds a payment submission by its ID
func (r *GormPaymentSubmissionRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.PaymentSubmission, error) {
	var model models.PaymentSubmissionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds payment submissions by a set of IDs. Missing IDs are
// silently absent from the result; the caller reconciles the batch.
func (r *GormPaymentSubmissionRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]billing.PaymentSubmission, error) {
	if len(ids) == 0 {
		return []billing.PaymentSubmission{}, nil
	}

	var submissionModels []models.PaymentSubmissionModel
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&submissionModels).Error; err != nil {
		return nil, err
	}

	submissions := make([]billing.PaymentSubmission, len(submissionModels))
	for i, model := range submissionModels {
		submissions[i] = *model.ToDomain()
	}
	return submissions, nil
}

// FindPending finds submissions awaiting review, oldest transaction first
func (r *GormPaymentSubmissionRepository) FindPending(ctx context.Context, filter billing.PaymentSubmissionFilter) ([]billing.PaymentSubmission, error) {
	pending := billing.SubmissionStatusPending
	filter.Status = &pending
	if filter.OrderBy == "" {
		filter.OrderBy = "transaction_date"
		filter.OrderDir = "asc"
	}
	return r.FindAll(ctx, filter)
}

// FindAll finds submissions matching the filter
func (r *GormPaymentSubmissionRepository) FindAll(ctx context.Context, filter billing.PaymentSubmissionFilter) ([]billing.PaymentSubmission, error) {
	var submissionModels []models.PaymentSubmissionModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.PaymentSubmissionModel{}), filter)

	if err := query.Find(&submissionModels).Error; err != nil {
		return nil, err
	}

	submissions := make([]billing.PaymentSubmission, len(submissionModels))
	for i, model := range submissionModels {
		submissions[i] = *model.ToDomain()
	}
	return submissions, nil
}

// ExistsVerifiedReference checks whether another submission with this renter
// and transaction reference was already verified. Guards against the same
// bank or mobile-money transaction being credited twice.
func (r *GormPaymentSubmissionRepository) ExistsVerifiedReference(ctx context.Context, tenantID uuid.UUID, reference string, excludeID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.PaymentSubmissionModel{}).
		Where("tenant_id = ? AND transaction_reference = ? AND status = ? AND id <> ?",
			tenantID, reference, billing.SubmissionStatusVerified, excludeID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a payment submission
func (r *GormPaymentSubmissionRepository) Save(ctx context.Context, submission *billing.PaymentSubmission) error {
	model := models.PaymentSubmissionModelFromDomain(submission)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves a submission with optimistic locking (version check)
func (r *GormPaymentSubmissionRepository) SaveWithLock(ctx context.Context, submission *billing.PaymentSubmission) error {
	model := models.PaymentSubmissionModelFromDomain(submission)
	result := r.db.WithContext(ctx).
		Model(&models.PaymentSubmissionModel{}).
		Where("id = ? AND version = ?", submission.ID, submission.Version-1).
		Updates(map[string]interface{}{
			"verified_amount":       model.VerifiedAmount,
			"status":                model.Status,
			"verified_by":           model.VerifiedBy,
			"verified_at":           model.VerifiedAt,
			"admin_notes":           model.AdminNotes,
			"applied_obligation_id": model.AppliedObligationID,
			"version":               model.Version,
			"updated_at":            model.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("OPTIMISTIC_LOCK", "The submission has been modified by another transaction")
	}
	return nil
}

// Count counts submissions matching the filter
func (r *GormPaymentSubmissionRepository) Count(ctx context.Context, filter billing.PaymentSubmissionFilter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.PaymentSubmissionModel{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormPaymentSubmissionRepository) applyFilter(query *gorm.DB, filter billing.PaymentSubmissionFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, SubmissionSortFields, "created_at")
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormPaymentSubmissionRepository) applyFilterWithoutPagination(query *gorm.DB, filter billing.PaymentSubmissionFilter) *gorm.DB {
	if filter.LeaseID != nil {
		query = query.Where("lease_id = ?", *filter.LeaseID)
	}
	if filter.TenantID != nil {
		query = query.Where("tenant_id = ?", *filter.TenantID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Method != nil {
		query = query.Where("payment_method = ?", *filter.Method)
	}
	if filter.FromDate != nil {
		query = query.Where("transaction_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("transaction_date <= ?", *filter.ToDate)
	}
	if filter.Search != "" {
		query = query.Where("transaction_reference ILIKE ?", "%"+filter.Search+"%")
	}

	return query
}

// Ensure GormPaymentSubmissionRepository implements PaymentSubmissionRepository
var _ billing.PaymentSubmissionRepository = (*GormPaymentSubmissionRepository)(nil)
