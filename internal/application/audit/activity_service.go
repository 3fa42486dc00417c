// Package audit provides read access to the append-only activity trail.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/leaseledger/backend/internal/domain/audit"
	"github.com/leaseledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ActivityResponse represents one audit trail entry in API responses
type ActivityResponse struct {
	ID           uuid.UUID      `json:"id"`
	ActorID      *uuid.UUID     `json:"actor_id,omitempty"`
	Type         string         `json:"type"`
	Description  string         `json:"description"`
	ResourceType string         `json:"resource_type,omitempty"`
	ResourceID   *uuid.UUID     `json:"resource_id,omitempty"`
	ExtraData    map[string]any `json:"extra_data,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// ActivityListFilter defines filtering options for audit trail queries
type ActivityListFilter struct {
	ActorID      string `form:"actor_id"`
	Type         string `form:"type"`
	ResourceType string `form:"resource_type"`
	ResourceID   string `form:"resource_id"`
	From         string `form:"from"`
	To           string `form:"to"`
	Page         int    `form:"page"`
	PageSize     int    `form:"page_size"`
}

// ActivityListResult is a paginated slice of the audit trail
type ActivityListResult struct {
	Activities []ActivityResponse `json:"activities"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
}

// ActivityService exposes the audit trail to staff queries. The trail
// itself is written by the command services; this service only reads.
type ActivityService struct {
	activityRepo audit.ActivityRecordRepository
	logger       *zap.Logger
}

// NewActivityService creates a new ActivityService
func NewActivityService(
	activityRepo audit.ActivityRecordRepository,
	logger *zap.Logger,
) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{
		activityRepo: activityRepo,
		logger:       logger,
	}
}

// List queries the trail with filters, newest first
func (s *ActivityService) List(ctx context.Context, filter ActivityListFilter) (*ActivityListResult, error) {
	domainFilter, err := s.buildFilter(filter)
	if err != nil {
		return nil, err
	}

	records, err := s.activityRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity records: %w", err)
	}

	total, err := s.activityRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to count activity records: %w", err)
	}

	responses := make([]ActivityResponse, len(records))
	for i := range records {
		responses[i] = toActivityResponse(&records[i])
	}

	return &ActivityListResult{
		Activities: responses,
		Total:      total,
		Page:       domainFilter.Page,
		PageSize:   domainFilter.PageSize,
	}, nil
}

// GetTrail returns the full trail for one resource, oldest first
func (s *ActivityService) GetTrail(ctx context.Context, resourceType string, resourceID uuid.UUID) ([]ActivityResponse, error) {
	records, err := s.activityRepo.FindByResource(ctx, resourceType, resourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to load activity trail: %w", err)
	}

	responses := make([]ActivityResponse, len(records))
	for i := range records {
		responses[i] = toActivityResponse(&records[i])
	}
	return responses, nil
}

func (s *ActivityService) buildFilter(filter ActivityListFilter) (audit.ActivityFilter, error) {
	domainFilter := audit.ActivityFilter{Filter: shared.DefaultFilter()}
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 && filter.PageSize <= 100 {
		domainFilter.PageSize = filter.PageSize
	}

	if filter.ActorID != "" {
		actorID, err := uuid.Parse(filter.ActorID)
		if err != nil {
			return domainFilter, shared.ErrInvalidInput.WithMessage("Invalid actor ID")
		}
		domainFilter.ActorID = &actorID
	}
	if filter.Type != "" {
		activityType := audit.ActivityType(filter.Type)
		if !activityType.IsValid() {
			return domainFilter, shared.ErrInvalidInput.WithMessage("Unknown activity type")
		}
		domainFilter.Type = &activityType
	}
	if filter.ResourceType != "" {
		resourceType := filter.ResourceType
		domainFilter.ResourceType = &resourceType
	}
	if filter.ResourceID != "" {
		resourceID, err := uuid.Parse(filter.ResourceID)
		if err != nil {
			return domainFilter, shared.ErrInvalidInput.WithMessage("Invalid resource ID")
		}
		domainFilter.ResourceID = &resourceID
	}
	if filter.From != "" {
		from, err := time.Parse("2006-01-02", filter.From)
		if err != nil {
			return domainFilter, shared.ErrInvalidInput.WithMessage("Invalid from date, expected YYYY-MM-DD")
		}
		domainFilter.From = &from
	}
	if filter.To != "" {
		to, err := time.Parse("2006-01-02", filter.To)
		if err != nil {
			return domainFilter, shared.ErrInvalidInput.WithMessage("Invalid to date, expected YYYY-MM-DD")
		}
		// Include the whole end day
		endOfDay := to.Add(24*time.Hour - time.Nanosecond)
		domainFilter.To = &endOfDay
	}

	return domainFilter, nil
}

func toActivityResponse(r *audit.ActivityRecord) ActivityResponse {
	return ActivityResponse{
		ID:           r.ID,
		ActorID:      r.ActorID,
		Type:         string(r.Type),
		Description:  r.Description,
		ResourceType: r.ResourceType,
		ResourceID:   r.ResourceID,
		ExtraData:    r.GetExtraData(),
		CreatedAt:    r.CreatedAt,
	}
}
