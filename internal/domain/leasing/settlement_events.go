package leasing

import (
	"time"

	"github.com/leaseledger/backend/internal/domain/shared"
	"github.com/leaseledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeSettlement = "Settlement"

// Event type constant
const EventTypeSettlementCompleted = "SettlementCompleted"

// SettlementCompletedEvent is raised once per lease when offboarding resolves
type SettlementCompletedEvent struct {
	shared.BaseDomainEvent
	SettlementID       uuid.UUID          `json:"settlement_id"`
	LeaseID            uuid.UUID          `json:"lease_id"`
	UnitID             uuid.UUID          `json:"unit_id"`
	MoveOutDate        time.Time          `json:"move_out_date"`
	UnpaidRentHandling UnpaidRentHandling `json:"unpaid_rent_handling"`
	TotalUnpaidRent    valueobject.Money  `json:"total_unpaid_rent"`
	TotalDeductions    valueobject.Money  `json:"total_deductions"`
	RefundAmount       valueobject.Money  `json:"refund_amount"`
	DepositStatus      DepositStatus      `json:"deposit_status"`
}

// EventType returns the event type name
func (e *SettlementCompletedEvent) EventType() string {
	return EventTypeSettlementCompleted
}

// NewSettlementCompletedEvent creates a new SettlementCompletedEvent
func NewSettlementCompletedEvent(s *Settlement) *SettlementCompletedEvent {
	return &SettlementCompletedEvent{
		BaseDomainEvent:    shared.NewBaseDomainEvent(EventTypeSettlementCompleted, AggregateTypeSettlement, s.ID, s.TenantID),
		SettlementID:       s.ID,
		LeaseID:            s.LeaseID,
		UnitID:             s.UnitID,
		MoveOutDate:        s.MoveOutDate,
		UnpaidRentHandling: s.UnpaidRentHandling,
		TotalUnpaidRent:    s.TotalUnpaidRent,
		TotalDeductions:    s.TotalDeductions,
		RefundAmount:       s.RefundAmount,
		DepositStatus:      s.DepositStatus,
	}
}
