package billing

import (
	"context"

	"github.com/leaseledger/backend/internal/domain/audit"
	"github.com/leaseledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// eventEmitter is the slice of aggregate behavior event publication needs
type eventEmitter interface {
	GetDomainEvents() []shared.DomainEvent
	ClearDomainEvents()
}

// publishEvents drains an aggregate's domain events onto the bus after the
// surrounding transaction has committed. Event handling is async; a publish
// failure is logged, never surfaced to the caller.
func publishEvents(ctx context.Context, bus shared.EventBus, logger *zap.Logger, agg eventEmitter) {
	if bus == nil {
		return
	}
	for _, event := range agg.GetDomainEvents() {
		if err := bus.Publish(ctx, event); err != nil {
			logger.Warn("Failed to publish domain event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	agg.ClearDomainEvents()
}

// recordActivity appends an audit trail entry. Non-blocking: a failed write
// is logged, the financial operation itself stands.
func recordActivity(
	ctx context.Context,
	repo audit.ActivityRecordRepository,
	logger *zap.Logger,
	actorID *uuid.UUID,
	activityType audit.ActivityType,
	description, resourceType string,
	resourceID *uuid.UUID,
	extra map[string]any,
) {
	if repo == nil {
		return
	}
	record, err := audit.NewActivityRecord(actorID, activityType, description, resourceType, resourceID, extra)
	if err == nil {
		err = repo.Save(ctx, record)
	}
	if err != nil {
		logger.Error("Failed to record activity",
			zap.String("activity_type", string(activityType)),
			zap.Error(err))
	}
}
