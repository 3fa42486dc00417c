package notification

import (
	"strings"
	"time"

	"github.com/leaseledger/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// NotificationType classifies what the recipient is being told
type NotificationType string

const (
	NotificationPaymentVerified     NotificationType = "payment_verified"
	NotificationPaymentRejected     NotificationType = "payment_rejected"
	NotificationRentDue             NotificationType = "rent_due"
	NotificationRentOverdue         NotificationType = "rent_overdue"
	NotificationUtilitiesBilled     NotificationType = "utilities_billed"
	NotificationSettlementCompleted NotificationType = "settlement_completed"
)

// IsValid checks if the notification type is a known value
func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationPaymentVerified, NotificationPaymentRejected,
		NotificationRentDue, NotificationRentOverdue,
		NotificationUtilitiesBilled, NotificationSettlementCompleted:
		return true
	}
	return false
}

// Notification is one dispatch-log row. The engine only records what
// should be told to whom; delivery belongs to an external channel that
// reads these rows.
type Notification struct {
	shared.BaseEntity
	UserID       uuid.UUID        `json:"user_id"`
	Type         NotificationType `json:"type"`
	Title        string           `json:"title"`
	Message      string           `json:"message"`
	ResourceType string           `json:"resource_type,omitempty"`
	ResourceID   *uuid.UUID       `json:"resource_id,omitempty"`
	Urgent       bool             `json:"urgent"`
	ReadAt       *time.Time       `json:"read_at,omitempty"`
}

// NewNotification records a message for a recipient
func NewNotification(
	userID uuid.UUID,
	notificationType NotificationType,
	title, message string,
	resourceType string,
	resourceID *uuid.UUID,
	urgent bool,
) (*Notification, error) {
	if userID == uuid.Nil {
		return nil, shared.ErrInvalidInput.WithMessage("Recipient is required")
	}
	if !notificationType.IsValid() {
		return nil, shared.ErrInvalidInput.WithMessage("Unknown notification type")
	}
	if strings.TrimSpace(title) == "" {
		return nil, shared.ErrInvalidInput.WithMessage("Notification title cannot be empty")
	}

	return &Notification{
		BaseEntity:   shared.NewBaseEntity(),
		UserID:       userID,
		Type:         notificationType,
		Title:        title,
		Message:      message,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Urgent:       urgent,
	}, nil
}

// IsRead reports whether the recipient has seen the notification
func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}

// MarkRead stamps the first read time. Re-reading does not move it.
func (n *Notification) MarkRead(at time.Time) {
	if n.ReadAt != nil {
		return
	}
	if at.IsZero() {
		at = time.Now()
	}
	t := at
	n.ReadAt = &t
}
