package audit

import (
	"context"
	"time"

	"github.com/leaseledger/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ActivityFilter defines filtering options for audit trail queries
type ActivityFilter struct {
	shared.Filter
	ActorID      *uuid.UUID    // Filter by actor
	Type         *ActivityType // Filter by activity type
	ResourceType *string       // Filter by resource type
	ResourceID   *uuid.UUID    // Filter by resource
	From         *time.Time    // Filter by time range start
	To           *time.Time    // Filter by time range end
}

// ActivityRecordRepository defines the interface for audit trail persistence
type ActivityRecordRepository interface {
	// Save appends an activity record. Records are never updated.
	Save(ctx context.Context, record *ActivityRecord) error

	// SaveAll appends a batch of activity records
	SaveAll(ctx context.Context, records []*ActivityRecord) error

	// FindByID finds a record by ID
	FindByID(ctx context.Context, id uuid.UUID) (*ActivityRecord, error)

	// FindByResource finds the trail for one resource, oldest first
	FindByResource(ctx context.Context, resourceType string, resourceID uuid.UUID) ([]ActivityRecord, error)

	// FindAll finds records with filtering
	FindAll(ctx context.Context, filter ActivityFilter) ([]ActivityRecord, error)

	// Count counts records with optional filters
	Count(ctx context.Context, filter ActivityFilter) (int64, error)
}
