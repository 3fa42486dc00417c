package leasing

import (
	"time"

	"github.com/leaseledger/backend/internal/domain/shared"
	"github.com/leaseledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// UnpaidRentHandling selects how outstanding rent is resolved at offboarding
type UnpaidRentHandling string

const (
	// UnpaidRentDeduct covers outstanding rent out of the security deposit
	UnpaidRentDeduct UnpaidRentHandling = "deduct"
	// UnpaidRentWriteOff accepts outstanding rent as unrecoverable debt
	UnpaidRentWriteOff UnpaidRentHandling = "writeoff"
)

// IsValid checks if the handling mode is a known value
func (h UnpaidRentHandling) IsValid() bool {
	return h == UnpaidRentDeduct || h == UnpaidRentWriteOff
}

// DeductionUnpaidRentSettlement is the description of the synthetic
// deduction line added when outstanding rent is deducted from the deposit.
const DeductionUnpaidRentSettlement = "Unpaid Rent Settlement"

// Settlement is the single durable record of how an offboarding was
// resolved: the move-out date, how unpaid rent was handled, every
// deduction taken and the refund that resulted. Disputes are answered
// from this record, so it is written once and never edited.
type Settlement struct {
	shared.BaseAggregateRoot
	LeaseID               uuid.UUID
	TenantID              uuid.UUID
	UnitID                uuid.UUID
	MoveOutDate           time.Time
	UnpaidRentHandling    UnpaidRentHandling
	TotalUnpaidRent       valueobject.Money
	DeductionItems        DeductionItems
	TotalDeductions       valueobject.Money
	DepositAmount         valueobject.Money
	RefundAmount          valueobject.Money
	DepositStatus         DepositStatus
	SettledObligations    int
	WrittenOffObligations int
	ExecutedBy            uuid.UUID
	Notes                 string
}

// NewSettlement records a completed offboarding. The settlement engine
// computes every figure before constructing this; the record itself
// only guards basic coherence.
func NewSettlement(
	leaseID, tenantID, unitID uuid.UUID,
	moveOutDate time.Time,
	handling UnpaidRentHandling,
	totalUnpaidRent valueobject.Money,
	items DeductionItems,
	totalDeductions, depositAmount, refundAmount valueobject.Money,
	depositStatus DepositStatus,
	settledObligations, writtenOffObligations int,
	executedBy uuid.UUID,
	notes string,
) (*Settlement, error) {
	if leaseID == uuid.Nil {
		return nil, shared.ErrInvalidInput.WithMessage("Lease ID is required")
	}
	if moveOutDate.IsZero() {
		return nil, shared.ErrInvalidInput.WithMessage("Move-out date is required")
	}
	if !handling.IsValid() {
		return nil, shared.ErrInvalidInput.WithMessage("Unpaid rent handling must be deduct or writeoff")
	}
	if !depositStatus.IsFinal() {
		return nil, shared.ErrInvalidState.WithMessage("Settlement requires a dispositioned deposit")
	}
	if refundAmount.IsNegative() || totalDeductions.IsNegative() {
		return nil, shared.ErrInvalidAmount.WithMessage("Settlement amounts cannot be negative")
	}

	s := &Settlement{
		BaseAggregateRoot:     shared.NewBaseAggregateRoot(),
		LeaseID:               leaseID,
		TenantID:              tenantID,
		UnitID:                unitID,
		MoveOutDate:           moveOutDate,
		UnpaidRentHandling:    handling,
		TotalUnpaidRent:       totalUnpaidRent,
		DeductionItems:        items,
		TotalDeductions:       totalDeductions,
		DepositAmount:         depositAmount,
		RefundAmount:          refundAmount,
		DepositStatus:         depositStatus,
		SettledObligations:    settledObligations,
		WrittenOffObligations: writtenOffObligations,
		ExecutedBy:            executedBy,
		Notes:                 notes,
	}

	s.AddDomainEvent(NewSettlementCompletedEvent(s))
	return s, nil
}
