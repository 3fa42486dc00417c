package persistence

import (
	"context"
	"errors"

	"github.com/leaseledger/backend/internal/domain/audit"
	"github.com/leaseledger/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormActivityRecordRepository implements ActivityRecordRepository using GORM.
// The audit trail is append-only; there is no update path.
type GormActivityRecordRepository struct {
	db *gorm.DB
}

// NewGormActivityRecordRepository creates a new GormActivityRecordRepository
func NewGormActivityRecordRepository(db *gorm.DB) *GormActivityRecordRepository {
	return &GormActivityRecordRepository{db: db}
}

// Save appends an activity record
func (r *GormActivityRecordRepository) Save(ctx context.Context, record *audit.ActivityRecord) error {
	model := models.ActivityRecordModelFromDomain(record)
	return r.db.WithContext(ctx).Create(model).Error
}

// SaveAll appends a batch of activity records
func (r *GormActivityRecordRepository) SaveAll(ctx context.Context, records []*audit.ActivityRecord) error {
	if len(records) == 0 {
		return nil
	}

	recordModels := make([]*models.ActivityRecordModel, len(records))
	for i, record := range records {
		recordModels[i] = models.ActivityRecordModelFromDomain(record)
	}
	return r.db.WithContext(ctx).Create(&recordModels).Error
}

// FindByID finds an activity record by its ID
func (r *GormActivityRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*audit.ActivityRecord, error) {
	var model models.ActivityRecordModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByResource finds the trail for one resource, oldest first
func (r *GormActivityRecordRepository) FindByResource(ctx context.Context, resourceType string, resourceID uuid.UUID) ([]audit.ActivityRecord, error) {
	var recordModels []models.ActivityRecordModel
	if err := r.db.WithContext(ctx).
		Where("resource_type = ? AND resource_id = ?", resourceType, resourceID).
		Order("created_at ASC").
		Find(&recordModels).Error; err != nil {
		return nil, err
	}

	records := make([]audit.ActivityRecord, len(recordModels))
	for i, model := range recordModels {
		records[i] = *model.ToDomain()
	}
	return records, nil
}

// FindAll finds activity records matching the filter
func (r *GormActivityRecordRepository) FindAll(ctx context.Context, filter audit.ActivityFilter) ([]audit.ActivityRecord, error) {
	var recordModels []models.ActivityRecordModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ActivityRecordModel{}), filter)

	if err := query.Find(&recordModels).Error; err != nil {
		return nil, err
	}

	records := make([]audit.ActivityRecord, len(recordModels))
	for i, model := range recordModels {
		records[i] = *model.ToDomain()
	}
	return records, nil
}

// Count counts activity records matching the filter
func (r *GormActivityRecordRepository) Count(ctx context.Context, filter audit.ActivityFilter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.ActivityRecordModel{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormActivityRecordRepository) applyFilter(query *gorm.DB, filter audit.ActivityFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderBy := ValidateSortField(filter.OrderBy, ActivitySortFields, "created_at")
		query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormActivityRecordRepository) applyFilterWithoutPagination(query *gorm.DB, filter audit.ActivityFilter) *gorm.DB {
	if filter.ActorID != nil {
		query = query.Where("actor_id = ?", *filter.ActorID)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.ResourceType != nil {
		query = query.Where("resource_type = ?", *filter.ResourceType)
	}
	if filter.ResourceID != nil {
		query = query.Where("resource_id = ?", *filter.ResourceID)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}
	if filter.Search != "" {
		query = query.Where("description ILIKE ?", "%"+filter.Search+"%")
	}

	return query
}

// Ensure GormActivityRecordRepository implements ActivityRecordRepository
var _ audit.ActivityRecordRepository = (*GormActivityRecordRepository)(nil)
