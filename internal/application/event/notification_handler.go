package event

import (
	"context"
	"fmt"
	"time"

	"github.com/leaseledger/backend/internal/domain/audit"
	"github.com/leaseledger/backend/internal/domain/billing"
	"github.com/leaseledger/backend/internal/domain/leasing"
	"github.com/leaseledger/backend/internal/domain/notification"
	"github.com/leaseledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// NotificationDispatcher turns committed domain events into rows of the
// in-app dispatch log. It runs on the event bus after the producing
// transaction commits, so a failed insert never reaches the operation
// that raised the event; the error only keeps the idempotency key warm
// for a redelivery.
type NotificationDispatcher struct {
	notificationRepo notification.NotificationRepository
	logger           *zap.Logger
}

// NewNotificationDispatcher creates a new handler for tenant-facing events
func NewNotificationDispatcher(
	notificationRepo notification.NotificationRepository,
	logger *zap.Logger,
) *NotificationDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationDispatcher{
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *NotificationDispatcher) EventTypes() []string {
	return []string{
		billing.EventTypePaymentVerified,
		billing.EventTypePaymentRejected,
		billing.EventTypeRentObligationCreated,
		billing.EventTypeObligationOverdue,
		billing.EventTypeUtilitiesMerged,
		leasing.EventTypeSettlementCompleted,
	}
}

// Handle records one notification for the renter the event concerns
func (h *NotificationDispatcher) Handle(ctx context.Context, event shared.DomainEvent) error {
	n, err := h.build(event)
	if err != nil {
		h.logger.Error("failed to build notification",
			zap.String("event_id", event.EventID().String()),
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
		return err
	}

	if err := h.notificationRepo.Save(ctx, n); err != nil {
		h.logger.Error("failed to save notification",
			zap.String("event_id", event.EventID().String()),
			zap.String("event_type", event.EventType()),
			zap.String("user_id", n.UserID.String()),
			zap.Error(err),
		)
		return fmt.Errorf("failed to save notification: %w", err)
	}

	h.logger.Debug("notification recorded",
		zap.String("event_type", event.EventType()),
		zap.String("user_id", n.UserID.String()),
		zap.String("type", string(n.Type)),
	)
	return nil
}

func (h *NotificationDispatcher) build(event shared.DomainEvent) (*notification.Notification, error) {
	switch e := event.(type) {
	case *billing.PaymentVerifiedEvent:
		resourceID := e.SubmissionID
		return notification.NewNotification(
			e.TenantID(),
			notification.NotificationPaymentVerified,
			"Payment verified",
			fmt.Sprintf("Your payment of %s was verified and applied to your rent.", e.VerifiedAmount.String()),
			audit.ResourcePaymentSubmission,
			&resourceID,
			false,
		)

	case *billing.PaymentRejectedEvent:
		resourceID := e.SubmissionID
		message := fmt.Sprintf("Your payment claim of %s was rejected.", e.Amount.String())
		if e.Reason != "" {
			message = fmt.Sprintf("Your payment claim of %s was rejected: %s", e.Amount.String(), e.Reason)
		}
		return notification.NewNotification(
			e.TenantID(),
			notification.NotificationPaymentRejected,
			"Payment rejected",
			message,
			audit.ResourcePaymentSubmission,
			&resourceID,
			true,
		)

	case *billing.RentObligationCreatedEvent:
		resourceID := e.ObligationID
		period := periodLabel(e.PeriodYear, e.PeriodMonth)
		return notification.NewNotification(
			e.TenantID(),
			notification.NotificationRentDue,
			fmt.Sprintf("Rent due for %s", period),
			fmt.Sprintf("Your rent of %s for %s is due on %s.",
				e.AmountDue.String(), period, e.DueDate.Format("2 January 2006")),
			audit.ResourceRentObligation,
			&resourceID,
			false,
		)

	case *billing.ObligationOverdueEvent:
		resourceID := e.ObligationID
		message := fmt.Sprintf("Rent bill %s is overdue.", e.ObligationNumber)
		if e.LateFeeApplied {
			message = fmt.Sprintf("Rent bill %s is overdue and a late fee of %s was added.",
				e.ObligationNumber, e.LateFee.String())
		}
		return notification.NewNotification(
			e.TenantID(),
			notification.NotificationRentOverdue,
			"Rent overdue",
			message,
			audit.ResourceRentObligation,
			&resourceID,
			true,
		)

	case *billing.UtilitiesMergedEvent:
		resourceID := e.ObligationID
		return notification.NewNotification(
			e.TenantID(),
			notification.NotificationUtilitiesBilled,
			"Utilities added to your rent bill",
			fmt.Sprintf("Utility charges of %s were added to rent bill %s. The total due is now %s.",
				e.MergedAmount.String(), e.ObligationNumber, e.TotalDue.String()),
			audit.ResourceRentObligation,
			&resourceID,
			false,
		)

	case *leasing.SettlementCompletedEvent:
		resourceID := e.SettlementID
		return notification.NewNotification(
			e.TenantID(),
			notification.NotificationSettlementCompleted,
			"Lease settled",
			fmt.Sprintf("Your move-out on %s has been settled. Deposit refund: %s.",
				e.MoveOutDate.Format("2 January 2006"), e.RefundAmount.String()),
			audit.ResourceSettlement,
			&resourceID,
			false,
		)
	}

	return nil, fmt.Errorf("unexpected event type: %s", event.EventType())
}

func periodLabel(year, month int) string {
	return fmt.Sprintf("%s %d", time.Month(month), year)
}

// Ensure NotificationDispatcher implements shared.EventHandler
var _ shared.EventHandler = (*NotificationDispatcher)(nil)
