package leasing

import (
	"time"

	"github.com/leaseledger/backend/internal/domain/shared"
	"github.com/leaseledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeLease = "Lease"

// Event type constants
const (
	EventTypeLeaseCreated    = "LeaseCreated"
	EventTypeLeaseActivated  = "LeaseActivated"
	EventTypeLeaseAmended    = "LeaseAmended"
	EventTypeLeaseTerminated = "LeaseTerminated"
)

// LeaseCreatedEvent is raised when a draft lease is created
type LeaseCreatedEvent struct {
	shared.BaseDomainEvent
	LeaseID     uuid.UUID         `json:"lease_id"`
	LeaseNumber string            `json:"lease_number"`
	UnitID      uuid.UUID         `json:"unit_id"`
	MonthlyRent valueobject.Money `json:"monthly_rent"`
	StartDate   time.Time         `json:"start_date"`
	EndDate     time.Time         `json:"end_date"`
}

// EventType returns the event type name
func (e *LeaseCreatedEvent) EventType() string {
	return EventTypeLeaseCreated
}

// NewLeaseCreatedEvent creates a new LeaseCreatedEvent
func NewLeaseCreatedEvent(l *Lease) *LeaseCreatedEvent {
	return &LeaseCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeaseCreated, AggregateTypeLease, l.ID, l.TenantID),
		LeaseID:         l.ID,
		LeaseNumber:     l.LeaseNumber,
		UnitID:          l.UnitID,
		MonthlyRent:     l.MonthlyRent,
		StartDate:       l.StartDate,
		EndDate:         l.EndDate,
	}
}

// LeaseActivatedEvent is raised when a lease comes into force
type LeaseActivatedEvent struct {
	shared.BaseDomainEvent
	LeaseID       uuid.UUID         `json:"lease_id"`
	LeaseNumber   string            `json:"lease_number"`
	UnitID        uuid.UUID         `json:"unit_id"`
	DepositAmount valueobject.Money `json:"deposit_amount"`
}

// EventType returns the event type name
func (e *LeaseActivatedEvent) EventType() string {
	return EventTypeLeaseActivated
}

// NewLeaseActivatedEvent creates a new LeaseActivatedEvent
func NewLeaseActivatedEvent(l *Lease) *LeaseActivatedEvent {
	return &LeaseActivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeaseActivated, AggregateTypeLease, l.ID, l.TenantID),
		LeaseID:         l.ID,
		LeaseNumber:     l.LeaseNumber,
		UnitID:          l.UnitID,
		DepositAmount:   l.DepositAmount,
	}
}

// LeaseAmendedEvent is raised when an active lease's billing terms change
type LeaseAmendedEvent struct {
	shared.BaseDomainEvent
	LeaseID        uuid.UUID         `json:"lease_id"`
	LeaseNumber    string            `json:"lease_number"`
	OldMonthlyRent valueobject.Money `json:"old_monthly_rent"`
	NewMonthlyRent valueobject.Money `json:"new_monthly_rent"`
	LateFee        valueobject.Money `json:"late_fee"`
	EndDate        time.Time         `json:"end_date"`
}

// EventType returns the event type name
func (e *LeaseAmendedEvent) EventType() string {
	return EventTypeLeaseAmended
}

// NewLeaseAmendedEvent creates a new LeaseAmendedEvent
func NewLeaseAmendedEvent(l *Lease, oldRent valueobject.Money) *LeaseAmendedEvent {
	return &LeaseAmendedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeaseAmended, AggregateTypeLease, l.ID, l.TenantID),
		LeaseID:         l.ID,
		LeaseNumber:     l.LeaseNumber,
		OldMonthlyRent:  oldRent,
		NewMonthlyRent:  l.MonthlyRent,
		LateFee:         l.LateFee,
		EndDate:         l.EndDate,
	}
}

// LeaseTerminatedEvent is raised when a tenancy ends
type LeaseTerminatedEvent struct {
	shared.BaseDomainEvent
	LeaseID     uuid.UUID  `json:"lease_id"`
	LeaseNumber string     `json:"lease_number"`
	UnitID      uuid.UUID  `json:"unit_id"`
	MoveOutDate *time.Time `json:"move_out_date,omitempty"`
}

// EventType returns the event type name
func (e *LeaseTerminatedEvent) EventType() string {
	return EventTypeLeaseTerminated
}

// NewLeaseTerminatedEvent creates a new LeaseTerminatedEvent
func NewLeaseTerminatedEvent(l *Lease) *LeaseTerminatedEvent {
	return &LeaseTerminatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLeaseTerminated, AggregateTypeLease, l.ID, l.TenantID),
		LeaseID:         l.ID,
		LeaseNumber:     l.LeaseNumber,
		UnitID:          l.UnitID,
		MoveOutDate:     l.MoveOutDate,
	}
}
