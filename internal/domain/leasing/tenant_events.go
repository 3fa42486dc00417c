package leasing

import (
	"github.com/leaseledger/backend/internal/domain/shared"
	"github.com/leaseledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeTenant = "Tenant"

// Event type constant
const EventTypeTenantDebtRecorded = "TenantDebtRecorded"

// TenantDebtRecordedEvent is raised when written-off rent is charged to a
// renter's record
type TenantDebtRecordedEvent struct {
	shared.BaseDomainEvent
	RenterID   uuid.UUID         `json:"renter_id"`
	FullName   string            `json:"full_name"`
	DebtAmount valueobject.Money `json:"debt_amount"`
}

// EventType returns the event type name
func (e *TenantDebtRecordedEvent) EventType() string {
	return EventTypeTenantDebtRecorded
}

// NewTenantDebtRecordedEvent creates a new TenantDebtRecordedEvent
func NewTenantDebtRecordedEvent(t *Tenant, amount valueobject.Money) *TenantDebtRecordedEvent {
	return &TenantDebtRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTenantDebtRecorded, AggregateTypeTenant, t.ID, t.ID),
		RenterID:        t.ID,
		FullName:        t.FullName,
		DebtAmount:      amount,
	}
}
