package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/leaseledger/backend/internal/domain/billing"
	"github.com/leaseledger/backend/internal/domain/leasing"
	"github.com/leaseledger/backend/internal/domain/notification"
	"github.com/leaseledger/backend/internal/domain/shared"
	"github.com/leaseledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockNotificationRepository is a mock implementation of NotificationRepository
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Save(ctx context.Context, n *notification.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepository) SaveAll(ctx context.Context, notifications []*notification.Notification) error {
	args := m.Called(ctx, notifications)
	return args.Error(0)
}

func (m *MockNotificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*notification.Notification), args.Error(1)
}

func (m *MockNotificationRepository) FindByUser(ctx context.Context, userID uuid.UUID, filter notification.NotificationFilter) ([]*notification.Notification, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*notification.Notification), args.Error(1)
}

func (m *MockNotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) error {
	args := m.Called(ctx, userID, at)
	return args.Error(0)
}

func (m *MockNotificationRepository) FindAll(ctx context.Context, filter notification.NotificationFilter) ([]*notification.Notification, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*notification.Notification), args.Error(1)
}

func (m *MockNotificationRepository) Count(ctx context.Context, filter notification.NotificationFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// Verify interface compliance
var _ notification.NotificationRepository = (*MockNotificationRepository)(nil)

// Test helper functions
func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func newPaymentVerifiedEvent(tenantID, submissionID uuid.UUID) *billing.PaymentVerifiedEvent {
	return &billing.PaymentVerifiedEvent{
		BaseDomainEvent:      shared.NewBaseDomainEvent(billing.EventTypePaymentVerified, billing.AggregateTypePaymentSubmission, submissionID, tenantID),
		SubmissionID:         submissionID,
		LeaseID:              uuid.New(),
		VerifiedAmount:       valueobject.NewMoneyKES(decimal.NewFromInt(25000)),
		TransactionReference: "QFC8XK2PLM",
		AppliedObligationID:  uuid.New(),
		VerifiedBy:           uuid.New(),
	}
}

// Tests for NotificationDispatcher

func TestNotificationDispatcher_EventTypes(t *testing.T) {
	mockRepo := new(MockNotificationRepository)
	handler := NewNotificationDispatcher(mockRepo, newTestLogger())

	eventTypes := handler.EventTypes()

	assert.ElementsMatch(t, []string{
		billing.EventTypePaymentVerified,
		billing.EventTypePaymentRejected,
		billing.EventTypeRentObligationCreated,
		billing.EventTypeObligationOverdue,
		billing.EventTypeUtilitiesMerged,
		leasing.EventTypeSettlementCompleted,
	}, eventTypes)
}

func TestNotificationDispatcher_Handle_PaymentVerified(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockNotificationRepository)
	handler := NewNotificationDispatcher(mockRepo, newTestLogger())

	tenantID := uuid.New()
	submissionID := uuid.New()
	event := newPaymentVerifiedEvent(tenantID, submissionID)

	var saved *notification.Notification
	mockRepo.On("Save", ctx, mock.AnythingOfType("*notification.Notification")).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*notification.Notification)
	}).Return(nil)

	// Execute
	err := handler.Handle(ctx, event)

	// Assert
	assert.NoError(t, err)
	assert.NotNil(t, saved)
	assert.Equal(t, tenantID, saved.UserID)
	assert.Equal(t, notification.NotificationPaymentVerified, saved.Type)
	assert.Equal(t, "Payment verified", saved.Title)
	assert.Contains(t, saved.Message, "25000.00 KES")
	assert.Equal(t, "payment_submission", saved.ResourceType)
	assert.Equal(t, submissionID, *saved.ResourceID)
	assert.False(t, saved.Urgent)
}

func TestNotificationDispatcher_Handle_PaymentRejectedIsUrgent(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockNotificationRepository)
	handler := NewNotificationDispatcher(mockRepo, newTestLogger())

	tenantID := uuid.New()
	submissionID := uuid.New()
	event := &billing.PaymentRejectedEvent{
		BaseDomainEvent:      shared.NewBaseDomainEvent(billing.EventTypePaymentRejected, billing.AggregateTypePaymentSubmission, submissionID, tenantID),
		SubmissionID:         submissionID,
		LeaseID:              uuid.New(),
		Amount:               valueobject.NewMoneyKES(decimal.NewFromInt(25000)),
		TransactionReference: "QFC8XK2PLM",
		Reason:               "Reference not found in bank statement",
		RejectedBy:           uuid.New(),
	}

	var saved *notification.Notification
	mockRepo.On("Save", ctx, mock.AnythingOfType("*notification.Notification")).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*notification.Notification)
	}).Return(nil)

	// Execute
	err := handler.Handle(ctx, event)

	// Assert
	assert.NoError(t, err)
	assert.NotNil(t, saved)
	assert.Equal(t, notification.NotificationPaymentRejected, saved.Type)
	assert.True(t, saved.Urgent)
	assert.Contains(t, saved.Message, "Reference not found in bank statement")
}

func TestNotificationDispatcher_Handle_RentObligationCreated(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockNotificationRepository)
	handler := NewNotificationDispatcher(mockRepo, newTestLogger())

	tenantID := uuid.New()
	obligationID := uuid.New()
	event := &billing.RentObligationCreatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(billing.EventTypeRentObligationCreated, billing.AggregateTypeRentObligation, obligationID, tenantID),
		ObligationID:     obligationID,
		ObligationNumber: "RO-202403-0001",
		LeaseID:          uuid.New(),
		PeriodYear:       2024,
		PeriodMonth:      3,
		DueDate:          time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		AmountDue:        valueobject.NewMoneyKES(decimal.NewFromInt(25000)),
	}

	var saved *notification.Notification
	mockRepo.On("Save", ctx, mock.AnythingOfType("*notification.Notification")).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*notification.Notification)
	}).Return(nil)

	// Execute
	err := handler.Handle(ctx, event)

	// Assert
	assert.NoError(t, err)
	assert.NotNil(t, saved)
	assert.Equal(t, notification.NotificationRentDue, saved.Type)
	assert.Equal(t, "Rent due for March 2024", saved.Title)
	assert.Contains(t, saved.Message, "1 March 2024")
	assert.Equal(t, "rent_obligation", saved.ResourceType)
	assert.False(t, saved.Urgent)
}

func TestNotificationDispatcher_Handle_ObligationOverdueWithLateFee(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockNotificationRepository)
	handler := NewNotificationDispatcher(mockRepo, newTestLogger())

	tenantID := uuid.New()
	obligationID := uuid.New()
	event := &billing.ObligationOverdueEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(billing.EventTypeObligationOverdue, billing.AggregateTypeRentObligation, obligationID, tenantID),
		ObligationID:     obligationID,
		ObligationNumber: "RO-202403-0001",
		LeaseID:          uuid.New(),
		DueDate:          time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		LateFee:          valueobject.NewMoneyKES(decimal.NewFromInt(2000)),
		LateFeeApplied:   true,
		AsOf:             time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
	}

	var saved *notification.Notification
	mockRepo.On("Save", ctx, mock.AnythingOfType("*notification.Notification")).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*notification.Notification)
	}).Return(nil)

	// Execute
	err := handler.Handle(ctx, event)

	// Assert
	assert.NoError(t, err)
	assert.NotNil(t, saved)
	assert.Equal(t, notification.NotificationRentOverdue, saved.Type)
	assert.True(t, saved.Urgent)
	assert.Contains(t, saved.Message, "late fee of 2000.00 KES")
}

func TestNotificationDispatcher_Handle_UtilitiesMerged(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockNotificationRepository)
	handler := NewNotificationDispatcher(mockRepo, newTestLogger())

	tenantID := uuid.New()
	obligationID := uuid.New()
	event := &billing.UtilitiesMergedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(billing.EventTypeUtilitiesMerged, billing.AggregateTypeRentObligation, obligationID, tenantID),
		ObligationID:     obligationID,
		ObligationNumber: "RO-202403-0001",
		LeaseID:          uuid.New(),
		UtilityChargeID:  uuid.New(),
		MergedAmount:     valueobject.NewMoneyKES(decimal.NewFromInt(3500)),
		TotalDue:         valueobject.NewMoneyKES(decimal.NewFromInt(28500)),
	}

	var saved *notification.Notification
	mockRepo.On("Save", ctx, mock.AnythingOfType("*notification.Notification")).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*notification.Notification)
	}).Return(nil)

	// Execute
	err := handler.Handle(ctx, event)

	// Assert
	assert.NoError(t, err)
	assert.NotNil(t, saved)
	assert.Equal(t, notification.NotificationUtilitiesBilled, saved.Type)
	assert.Contains(t, saved.Message, "3500.00 KES")
	assert.Contains(t, saved.Message, "28500.00 KES")
}

func TestNotificationDispatcher_Handle_SettlementCompleted(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockNotificationRepository)
	handler := NewNotificationDispatcher(mockRepo, newTestLogger())

	tenantID := uuid.New()
	settlementID := uuid.New()
	event := &leasing.SettlementCompletedEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(leasing.EventTypeSettlementCompleted, leasing.AggregateTypeSettlement, settlementID, tenantID),
		SettlementID:       settlementID,
		LeaseID:            uuid.New(),
		UnitID:             uuid.New(),
		MoveOutDate:        time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC),
		UnpaidRentHandling: leasing.UnpaidRentDeduct,
		TotalUnpaidRent:    valueobject.NewMoneyKES(decimal.NewFromInt(5000)),
		TotalDeductions:    valueobject.NewMoneyKES(decimal.NewFromInt(5000)),
		RefundAmount:       valueobject.NewMoneyKES(decimal.NewFromInt(25000)),
		DepositStatus:      leasing.DepositStatusPartiallyReturned,
	}

	var saved *notification.Notification
	mockRepo.On("Save", ctx, mock.AnythingOfType("*notification.Notification")).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*notification.Notification)
	}).Return(nil)

	// Execute
	err := handler.Handle(ctx, event)

	// Assert
	assert.NoError(t, err)
	assert.NotNil(t, saved)
	assert.Equal(t, notification.NotificationSettlementCompleted, saved.Type)
	assert.Equal(t, "settlement", saved.ResourceType)
	assert.Equal(t, settlementID, *saved.ResourceID)
	assert.Contains(t, saved.Message, "25000.00 KES")
}

func TestNotificationDispatcher_Handle_WrongEventType(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockNotificationRepository)
	handler := NewNotificationDispatcher(mockRepo, newTestLogger())

	// An event the dispatcher does not subscribe to
	wrongEvent := &leasing.LeaseCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(leasing.EventTypeLeaseCreated, leasing.AggregateTypeLease, uuid.New(), uuid.New()),
	}

	// Execute
	err := handler.Handle(ctx, wrongEvent)

	// Assert
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected event type")
	mockRepo.AssertNotCalled(t, "Save")
}

func TestNotificationDispatcher_Handle_SaveError(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockNotificationRepository)
	handler := NewNotificationDispatcher(mockRepo, newTestLogger())

	event := newPaymentVerifiedEvent(uuid.New(), uuid.New())
	mockRepo.On("Save", ctx, mock.AnythingOfType("*notification.Notification")).Return(errors.New("insert failed"))

	// Execute
	err := handler.Handle(ctx, event)

	// Assert
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save notification")
}
