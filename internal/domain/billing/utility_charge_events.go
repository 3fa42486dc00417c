package billing

import (
	"github.com/leaseledger/backend/internal/domain/shared"
	"github.com/leaseledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeUtilityCharge = "UtilityCharge"

// Event type constants
const (
	EventTypeUtilityChargeCreated   = "UtilityChargeCreated"
	EventTypeUtilityChargeFinalized = "UtilityChargeFinalized"
	EventTypeUtilityChargeBilled    = "UtilityChargeBilled"
)

// UtilityChargeCreatedEvent is raised when a month's utility charge is recorded
type UtilityChargeCreatedEvent struct {
	shared.BaseDomainEvent
	ChargeID     uuid.UUID         `json:"charge_id"`
	LeaseID      uuid.UUID         `json:"lease_id"`
	BillingYear  int               `json:"billing_year"`
	BillingMonth int               `json:"billing_month"`
	TotalAmount  valueobject.Money `json:"total_amount"`
	Status       ChargeStatus      `json:"status"`
}

// EventType returns the event type name
func (e *UtilityChargeCreatedEvent) EventType() string {
	return EventTypeUtilityChargeCreated
}

// NewUtilityChargeCreatedEvent creates a new UtilityChargeCreatedEvent
func NewUtilityChargeCreatedEvent(c *UtilityCharge) *UtilityChargeCreatedEvent {
	return &UtilityChargeCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUtilityChargeCreated, AggregateTypeUtilityCharge, c.ID, c.TenantID),
		ChargeID:        c.ID,
		LeaseID:         c.LeaseID,
		BillingYear:     c.BillingYear,
		BillingMonth:    c.BillingMonth,
		TotalAmount:     c.TotalAmount(),
		Status:          c.Status,
	}
}

// UtilityChargeFinalizedEvent is raised when a draft charge becomes billable
type UtilityChargeFinalizedEvent struct {
	shared.BaseDomainEvent
	ChargeID     uuid.UUID         `json:"charge_id"`
	LeaseID      uuid.UUID         `json:"lease_id"`
	BillingYear  int               `json:"billing_year"`
	BillingMonth int               `json:"billing_month"`
	TotalAmount  valueobject.Money `json:"total_amount"`
}

// EventType returns the event type name
func (e *UtilityChargeFinalizedEvent) EventType() string {
	return EventTypeUtilityChargeFinalized
}

// NewUtilityChargeFinalizedEvent creates a new UtilityChargeFinalizedEvent
func NewUtilityChargeFinalizedEvent(c *UtilityCharge) *UtilityChargeFinalizedEvent {
	return &UtilityChargeFinalizedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUtilityChargeFinalized, AggregateTypeUtilityCharge, c.ID, c.TenantID),
		ChargeID:        c.ID,
		LeaseID:         c.LeaseID,
		BillingYear:     c.BillingYear,
		BillingMonth:    c.BillingMonth,
		TotalAmount:     c.TotalAmount(),
	}
}

// UtilityChargeBilledEvent is raised when the billing merge folds a charge
// into a rent obligation
type UtilityChargeBilledEvent struct {
	shared.BaseDomainEvent
	ChargeID     uuid.UUID         `json:"charge_id"`
	LeaseID      uuid.UUID         `json:"lease_id"`
	ObligationID uuid.UUID         `json:"obligation_id"`
	TotalAmount  valueobject.Money `json:"total_amount"`
}

// EventType returns the event type name
func (e *UtilityChargeBilledEvent) EventType() string {
	return EventTypeUtilityChargeBilled
}

// NewUtilityChargeBilledEvent creates a new UtilityChargeBilledEvent
func NewUtilityChargeBilledEvent(c *UtilityCharge) *UtilityChargeBilledEvent {
	e := &UtilityChargeBilledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUtilityChargeBilled, AggregateTypeUtilityCharge, c.ID, c.TenantID),
		ChargeID:        c.ID,
		LeaseID:         c.LeaseID,
		TotalAmount:     c.TotalAmount(),
	}
	if c.BilledObligationID != nil {
		e.ObligationID = *c.BilledObligationID
	}
	return e
}
