package billing

import (
	"time"

	"github.com/leaseledger/backend/internal/domain/shared"
	"github.com/leaseledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypePaymentSubmission = "PaymentSubmission"

// Event type constants
const (
	EventTypePaymentSubmitted = "PaymentSubmitted"
	EventTypePaymentVerified  = "PaymentVerified"
	EventTypePaymentRejected  = "PaymentRejected"
)

// PaymentSubmittedEvent is raised when a renter files a payment claim
type PaymentSubmittedEvent struct {
	shared.BaseDomainEvent
	SubmissionID         uuid.UUID         `json:"submission_id"`
	LeaseID              uuid.UUID         `json:"lease_id"`
	Amount               valueobject.Money `json:"amount"`
	PaymentMethod        string            `json:"payment_method"`
	TransactionReference string            `json:"transaction_reference"`
	TransactionDate      time.Time         `json:"transaction_date"`
}

// EventType returns the event type name
func (e *PaymentSubmittedEvent) EventType() string {
	return EventTypePaymentSubmitted
}

// NewPaymentSubmittedEvent creates a new PaymentSubmittedEvent
func NewPaymentSubmittedEvent(s *PaymentSubmission) *PaymentSubmittedEvent {
	return &PaymentSubmittedEvent{
		BaseDomainEvent:      shared.NewBaseDomainEvent(EventTypePaymentSubmitted, AggregateTypePaymentSubmission, s.ID, s.TenantID),
		SubmissionID:         s.ID,
		LeaseID:              s.LeaseID,
		Amount:               s.Amount,
		PaymentMethod:        s.PaymentMethod,
		TransactionReference: s.TransactionReference,
		TransactionDate:      s.TransactionDate,
	}
}

// PaymentVerifiedEvent is raised when an admin confirms a payment claim
type PaymentVerifiedEvent struct {
	shared.BaseDomainEvent
	SubmissionID         uuid.UUID         `json:"submission_id"`
	LeaseID              uuid.UUID         `json:"lease_id"`
	VerifiedAmount       valueobject.Money `json:"verified_amount"`
	TransactionReference string            `json:"transaction_reference"`
	AppliedObligationID  uuid.UUID         `json:"applied_obligation_id"`
	VerifiedBy           uuid.UUID         `json:"verified_by"`
}

// EventType returns the event type name
func (e *PaymentVerifiedEvent) EventType() string {
	return EventTypePaymentVerified
}

// NewPaymentVerifiedEvent creates a new PaymentVerifiedEvent
func NewPaymentVerifiedEvent(s *PaymentSubmission) *PaymentVerifiedEvent {
	e := &PaymentVerifiedEvent{
		BaseDomainEvent:      shared.NewBaseDomainEvent(EventTypePaymentVerified, AggregateTypePaymentSubmission, s.ID, s.TenantID),
		SubmissionID:         s.ID,
		LeaseID:              s.LeaseID,
		VerifiedAmount:       s.VerifiedAmount,
		TransactionReference: s.TransactionReference,
	}
	if s.AppliedObligationID != nil {
		e.AppliedObligationID = *s.AppliedObligationID
	}
	if s.VerifiedBy != nil {
		e.VerifiedBy = *s.VerifiedBy
	}
	return e
}

// PaymentRejectedEvent is raised when an admin declines a payment claim
type PaymentRejectedEvent struct {
	shared.BaseDomainEvent
	SubmissionID         uuid.UUID         `json:"submission_id"`
	LeaseID              uuid.UUID         `json:"lease_id"`
	Amount               valueobject.Money `json:"amount"`
	TransactionReference string            `json:"transaction_reference"`
	Reason               string            `json:"reason"`
	RejectedBy           uuid.UUID         `json:"rejected_by"`
}

// EventType returns the event type name
func (e *PaymentRejectedEvent) EventType() string {
	return EventTypePaymentRejected
}

// NewPaymentRejectedEvent creates a new PaymentRejectedEvent
func NewPaymentRejectedEvent(s *PaymentSubmission) *PaymentRejectedEvent {
	e := &PaymentRejectedEvent{
		BaseDomainEvent:      shared.NewBaseDomainEvent(EventTypePaymentRejected, AggregateTypePaymentSubmission, s.ID, s.TenantID),
		SubmissionID:         s.ID,
		LeaseID:              s.LeaseID,
		Amount:               s.Amount,
		TransactionReference: s.TransactionReference,
		Reason:               s.AdminNotes,
	}
	if s.VerifiedBy != nil {
		e.RejectedBy = *s.VerifiedBy
	}
	return e
}
