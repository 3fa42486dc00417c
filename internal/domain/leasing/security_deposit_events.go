package leasing

import (
	"time"

	"github.com/leaseledger/backend/internal/domain/shared"
	"github.com/leaseledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeSecurityDeposit = "SecurityDeposit"

// Event type constants
const (
	EventTypeDepositCollected = "DepositCollected"
	EventTypeDepositFinalized = "DepositFinalized"
)

// DepositCollectedEvent is raised when a deposit is taken at lease activation
type DepositCollectedEvent struct {
	shared.BaseDomainEvent
	DepositID       uuid.UUID         `json:"deposit_id"`
	LeaseID         uuid.UUID         `json:"lease_id"`
	AmountCollected valueobject.Money `json:"amount_collected"`
	CollectedAt     time.Time         `json:"collected_at"`
}

// EventType returns the event type name
func (e *DepositCollectedEvent) EventType() string {
	return EventTypeDepositCollected
}

// NewDepositCollectedEvent creates a new DepositCollectedEvent
func NewDepositCollectedEvent(d *SecurityDeposit) *DepositCollectedEvent {
	return &DepositCollectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDepositCollected, AggregateTypeSecurityDeposit, d.ID, d.TenantID),
		DepositID:       d.ID,
		LeaseID:         d.LeaseID,
		AmountCollected: d.AmountCollected,
		CollectedAt:     d.CollectedAt,
	}
}

// DepositFinalizedEvent is raised when a deposit is dispositioned at offboarding
type DepositFinalizedEvent struct {
	shared.BaseDomainEvent
	DepositID       uuid.UUID         `json:"deposit_id"`
	LeaseID         uuid.UUID         `json:"lease_id"`
	AmountCollected valueobject.Money `json:"amount_collected"`
	AmountReturned  valueobject.Money `json:"amount_returned"`
	Deductions      valueobject.Money `json:"deductions"`
	Status          DepositStatus     `json:"status"`
}

// EventType returns the event type name
func (e *DepositFinalizedEvent) EventType() string {
	return EventTypeDepositFinalized
}

// NewDepositFinalizedEvent creates a new DepositFinalizedEvent
func NewDepositFinalizedEvent(d *SecurityDeposit) *DepositFinalizedEvent {
	return &DepositFinalizedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDepositFinalized, AggregateTypeSecurityDeposit, d.ID, d.TenantID),
		DepositID:       d.ID,
		LeaseID:         d.LeaseID,
		AmountCollected: d.AmountCollected,
		AmountReturned:  d.AmountReturned,
		Deductions:      d.Deductions,
		Status:          d.Status,
	}
}
