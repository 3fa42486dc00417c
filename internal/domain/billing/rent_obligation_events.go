package billing

import (
	"time"

	"github.com/leaseledger/backend/internal/domain/shared"
	"github.com/leaseledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeRentObligation = "RentObligation"

// Event type constants
const (
	EventTypeRentObligationCreated = "RentObligationCreated"
	EventTypePaymentApplied        = "PaymentApplied"
	EventTypeObligationOverdue     = "ObligationOverdue"
	EventTypeUtilitiesMerged       = "UtilitiesMerged"
	EventTypeObligationSettled     = "ObligationSettled"
	EventTypeObligationWrittenOff  = "ObligationWrittenOff"
)

// RentObligationCreatedEvent is raised when a billing period's obligation is generated
type RentObligationCreatedEvent struct {
	shared.BaseDomainEvent
	ObligationID     uuid.UUID         `json:"obligation_id"`
	ObligationNumber string            `json:"obligation_number"`
	LeaseID          uuid.UUID         `json:"lease_id"`
	PeriodYear       int               `json:"period_year"`
	PeriodMonth      int               `json:"period_month"`
	DueDate          time.Time         `json:"due_date"`
	AmountDue        valueobject.Money `json:"amount_due"`
}

// EventType returns the event type name
func (e *RentObligationCreatedEvent) EventType() string {
	return EventTypeRentObligationCreated
}

// NewRentObligationCreatedEvent creates a new RentObligationCreatedEvent
func NewRentObligationCreatedEvent(o *RentObligation) *RentObligationCreatedEvent {
	return &RentObligationCreatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeRentObligationCreated, AggregateTypeRentObligation, o.ID, o.TenantID),
		ObligationID:     o.ID,
		ObligationNumber: o.ObligationNumber,
		LeaseID:          o.LeaseID,
		PeriodYear:       o.PeriodYear,
		PeriodMonth:      o.PeriodMonth,
		DueDate:          o.DueDate,
		AmountDue:        o.AmountDue,
	}
}

// PaymentAppliedEvent is raised when a payment is applied to an obligation
type PaymentAppliedEvent struct {
	shared.BaseDomainEvent
	ObligationID     uuid.UUID         `json:"obligation_id"`
	ObligationNumber string            `json:"obligation_number"`
	LeaseID          uuid.UUID         `json:"lease_id"`
	Amount           valueobject.Money `json:"amount"`
	AmountPaid       valueobject.Money `json:"amount_paid"`
	TotalDue         valueobject.Money `json:"total_due"`
	OldStatus        ObligationStatus  `json:"old_status"`
	NewStatus        ObligationStatus  `json:"new_status"`
	PaymentMethod    string            `json:"payment_method,omitempty"`
	PaymentReference string            `json:"payment_reference,omitempty"`
}

// EventType returns the event type name
func (e *PaymentAppliedEvent) EventType() string {
	return EventTypePaymentApplied
}

// NewPaymentAppliedEvent creates a new PaymentAppliedEvent
func NewPaymentAppliedEvent(o *RentObligation, amount valueobject.Money, oldStatus ObligationStatus) *PaymentAppliedEvent {
	return &PaymentAppliedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypePaymentApplied, AggregateTypeRentObligation, o.ID, o.TenantID),
		ObligationID:     o.ID,
		ObligationNumber: o.ObligationNumber,
		LeaseID:          o.LeaseID,
		Amount:           amount,
		AmountPaid:       o.AmountPaid,
		TotalDue:         o.TotalDue(),
		OldStatus:        oldStatus,
		NewStatus:        o.Status,
		PaymentMethod:    o.PaymentMethod,
		PaymentReference: o.PaymentReference,
	}
}

// ObligationOverdueEvent is raised when the promotion batch moves a pending
// obligation past its grace window
type ObligationOverdueEvent struct {
	shared.BaseDomainEvent
	ObligationID     uuid.UUID         `json:"obligation_id"`
	ObligationNumber string            `json:"obligation_number"`
	LeaseID          uuid.UUID         `json:"lease_id"`
	DueDate          time.Time         `json:"due_date"`
	LateFee          valueobject.Money `json:"late_fee"`
	LateFeeApplied   bool              `json:"late_fee_applied"`
	AsOf             time.Time         `json:"as_of"`
}

// EventType returns the event type name
func (e *ObligationOverdueEvent) EventType() string {
	return EventTypeObligationOverdue
}

// NewObligationOverdueEvent creates a new ObligationOverdueEvent
func NewObligationOverdueEvent(o *RentObligation, feeApplied bool, asOf time.Time) *ObligationOverdueEvent {
	return &ObligationOverdueEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeObligationOverdue, AggregateTypeRentObligation, o.ID, o.TenantID),
		ObligationID:     o.ID,
		ObligationNumber: o.ObligationNumber,
		LeaseID:          o.LeaseID,
		DueDate:          o.DueDate,
		LateFee:          o.LateFee,
		LateFeeApplied:   feeApplied,
		AsOf:             asOf,
	}
}

// UtilitiesMergedEvent is raised when a month's utility charges are folded
// into an obligation
type UtilitiesMergedEvent struct {
	shared.BaseDomainEvent
	ObligationID     uuid.UUID         `json:"obligation_id"`
	ObligationNumber string            `json:"obligation_number"`
	LeaseID          uuid.UUID         `json:"lease_id"`
	UtilityChargeID  uuid.UUID         `json:"utility_charge_id"`
	MergedAmount     valueobject.Money `json:"merged_amount"`
	TotalDue         valueobject.Money `json:"total_due"`
}

// EventType returns the event type name
func (e *UtilitiesMergedEvent) EventType() string {
	return EventTypeUtilitiesMerged
}

// NewUtilitiesMergedEvent creates a new UtilitiesMergedEvent
func NewUtilitiesMergedEvent(o *RentObligation, chargeID uuid.UUID, amount valueobject.Money) *UtilitiesMergedEvent {
	return &UtilitiesMergedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeUtilitiesMerged, AggregateTypeRentObligation, o.ID, o.TenantID),
		ObligationID:     o.ID,
		ObligationNumber: o.ObligationNumber,
		LeaseID:          o.LeaseID,
		UtilityChargeID:  chargeID,
		MergedAmount:     amount,
		TotalDue:         o.TotalDue(),
	}
}

// ObligationSettledEvent is raised when an open obligation is covered out
// of the security deposit at move-out
type ObligationSettledEvent struct {
	shared.BaseDomainEvent
	ObligationID     uuid.UUID         `json:"obligation_id"`
	ObligationNumber string            `json:"obligation_number"`
	LeaseID          uuid.UUID         `json:"lease_id"`
	SettledAmount    valueobject.Money `json:"settled_amount"`
	AmountPaid       valueobject.Money `json:"amount_paid"`
}

// EventType returns the event type name
func (e *ObligationSettledEvent) EventType() string {
	return EventTypeObligationSettled
}

// NewObligationSettledEvent creates a new ObligationSettledEvent
func NewObligationSettledEvent(o *RentObligation, settled valueobject.Money) *ObligationSettledEvent {
	return &ObligationSettledEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeObligationSettled, AggregateTypeRentObligation, o.ID, o.TenantID),
		ObligationID:     o.ID,
		ObligationNumber: o.ObligationNumber,
		LeaseID:          o.LeaseID,
		SettledAmount:    settled,
		AmountPaid:       o.AmountPaid,
	}
}

// ObligationWrittenOffEvent is raised when an obligation's balance is
// accepted as unrecoverable
type ObligationWrittenOffEvent struct {
	shared.BaseDomainEvent
	ObligationID       uuid.UUID         `json:"obligation_id"`
	ObligationNumber   string            `json:"obligation_number"`
	LeaseID            uuid.UUID         `json:"lease_id"`
	OutstandingBalance valueobject.Money `json:"outstanding_balance"`
}

// EventType returns the event type name
func (e *ObligationWrittenOffEvent) EventType() string {
	return EventTypeObligationWrittenOff
}

// NewObligationWrittenOffEvent creates a new ObligationWrittenOffEvent
func NewObligationWrittenOffEvent(o *RentObligation) *ObligationWrittenOffEvent {
	return &ObligationWrittenOffEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(EventTypeObligationWrittenOff, AggregateTypeRentObligation, o.ID, o.TenantID),
		ObligationID:       o.ID,
		ObligationNumber:   o.ObligationNumber,
		LeaseID:            o.LeaseID,
		OutstandingBalance: o.OutstandingBalance(),
	}
}
