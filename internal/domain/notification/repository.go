package notification

import (
	"context"
	"time"

	"github.com/leaseledger/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// NotificationFilter defines filtering options for notification queries
type NotificationFilter struct {
	shared.Filter
	UserID *uuid.UUID        // Filter by recipient
	Type   *NotificationType // Filter by notification type
	Urgent *bool             // Filter by urgency
	Unread *bool             // Filter by read state
	From   *time.Time        // Created at or after
	To     *time.Time        // Created before
}

// NotificationRepository defines the persistence contract for the dispatch log
type NotificationRepository interface {
	// Save persists a notification (create or update)
	Save(ctx context.Context, n *Notification) error

	// SaveAll persists a batch of notifications
	SaveAll(ctx context.Context, notifications []*Notification) error

	// FindByID retrieves a notification by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Notification, error)

	// FindByUser retrieves a user's notifications, newest first
	FindByUser(ctx context.Context, userID uuid.UUID, filter NotificationFilter) ([]*Notification, error)

	// CountUnread returns how many notifications the user has not read yet
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)

	// MarkAllRead stamps every unread notification of the user as read
	MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) error

	// FindAll retrieves notifications matching the filter
	FindAll(ctx context.Context, filter NotificationFilter) ([]*Notification, error)

	// Count returns the number of notifications matching the filter
	Count(ctx context.Context, filter NotificationFilter) (int64, error)
}
