package event

import (
	"context"
	"fmt"
	"time"

	"github.com/leaseledger/backend/internal/domain/notification"
	"github.com/leaseledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotificationResponse represents a notification in API responses
type NotificationResponse struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	Type         string     `json:"type"`
	Title        string     `json:"title"`
	Message      string     `json:"message"`
	ResourceType string     `json:"resource_type,omitempty"`
	ResourceID   *uuid.UUID `json:"resource_id,omitempty"`
	Urgent       bool       `json:"urgent"`
	Read         bool       `json:"read"`
	ReadAt       *time.Time `json:"read_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// NotificationListFilter defines filtering options for notification queries
type NotificationListFilter struct {
	Type     string `form:"type"`
	Urgent   *bool  `form:"urgent"`
	Unread   *bool  `form:"unread"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// NotificationService serves the dispatch log to its recipients
type NotificationService struct {
	notificationRepo notification.NotificationRepository
	logger           *zap.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(
	notificationRepo notification.NotificationRepository,
	logger *zap.Logger,
) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// ListForUser lists a user's notifications, newest first
func (s *NotificationService) ListForUser(ctx context.Context, userID uuid.UUID, filter NotificationListFilter) ([]NotificationResponse, int64, error) {
	domainFilter := notification.NotificationFilter{
		UserID: &userID,
		Urgent: filter.Urgent,
		Unread: filter.Unread,
	}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize

	if filter.Type != "" {
		notificationType := notification.NotificationType(filter.Type)
		if !notificationType.IsValid() {
			return nil, 0, shared.ErrInvalidInput.WithMessage("Unknown notification type")
		}
		domainFilter.Type = &notificationType
	}

	notifications, err := s.notificationRepo.FindByUser(ctx, userID, domainFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}

	total, err := s.notificationRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	responses := make([]NotificationResponse, len(notifications))
	for i, n := range notifications {
		responses[i] = *toNotificationResponse(n)
	}
	return responses, total, nil
}

// UnreadCount returns how many notifications the user has not read yet
func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.notificationRepo.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead stamps one notification as read. Only the recipient may do so.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) (*NotificationResponse, error) {
	n, err := s.notificationRepo.FindByID(ctx, notificationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load notification: %w", err)
	}
	if n == nil {
		return nil, shared.ErrNotFound.WithMessage("Notification not found")
	}
	if n.UserID != userID {
		return nil, shared.ErrForbidden.WithMessage("Notification belongs to another user")
	}

	n.MarkRead(time.Now())
	if err := s.notificationRepo.Save(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to save notification: %w", err)
	}
	return toNotificationResponse(n), nil
}

// MarkAllRead stamps every unread notification of the user as read
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	if err := s.notificationRepo.MarkAllRead(ctx, userID, time.Now()); err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	s.logger.Debug("marked all notifications read", zap.String("user_id", userID.String()))
	return nil
}

func toNotificationResponse(n *notification.Notification) *NotificationResponse {
	return &NotificationResponse{
		ID:           n.ID,
		UserID:       n.UserID,
		Type:         string(n.Type),
		Title:        n.Title,
		Message:      n.Message,
		ResourceType: n.ResourceType,
		ResourceID:   n.ResourceID,
		Urgent:       n.Urgent,
		Read:         n.IsRead(),
		ReadAt:       n.ReadAt,
		CreatedAt:    n.CreatedAt,
	}
}
