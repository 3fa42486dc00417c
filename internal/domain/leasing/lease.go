package leasing

import (
	"fmt"
	"strings"
	"time"

	"github.com/leaseledger/backend/internal/domain/shared"
	"github.com/leaseledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// LeaseStatus represents the lifecycle state of a lease
type LeaseStatus string

const (
	// LeaseStatusDraft means the lease is signed but not yet in force
	LeaseStatusDraft LeaseStatus = "draft"
	// LeaseStatusActive means the tenancy is running
	LeaseStatusActive LeaseStatus = "active"
	// LeaseStatusTerminated means the tenancy ended and was settled
	LeaseStatusTerminated LeaseStatus = "terminated"
)

// IsValid checks if the status is a known value
func (s LeaseStatus) IsValid() bool {
	switch s {
	case LeaseStatusDraft, LeaseStatusActive, LeaseStatusTerminated:
		return true
	}
	return false
}

// IsTerminal checks if the lease permits no further transitions
func (s LeaseStatus) IsTerminal() bool {
	return s == LeaseStatusTerminated
}

// CanTransitionTo checks if a transition to the target status is allowed
func (s LeaseStatus) CanTransitionTo(target LeaseStatus) bool {
	switch s {
	case LeaseStatusDraft:
		return target == LeaseStatusActive
	case LeaseStatusActive:
		return target == LeaseStatusTerminated
	}
	return false
}

// Lease binds a renter to a unit under agreed billing terms. The terms
// (rent, late fee, grace period, due day) drive obligation generation
// and overdue promotion for the life of the tenancy.
type Lease struct {
	shared.BaseAggregateRoot
	LeaseNumber     string
	UnitID          uuid.UUID
	TenantID        uuid.UUID
	MonthlyRent     valueobject.Money
	LateFee         valueobject.Money
	GracePeriodDays int
	RentDueDay      int
	DepositAmount   valueobject.Money
	StartDate       time.Time
	EndDate         time.Time
	MoveOutDate     *time.Time
	Status          LeaseStatus
}

// NewLease creates a draft lease. Activation brings it into force and
// collects the security deposit.
func NewLease(
	number string,
	unitID, tenantID uuid.UUID,
	monthlyRent, lateFee valueobject.Money,
	gracePeriodDays, rentDueDay int,
	depositAmount valueobject.Money,
	startDate, endDate time.Time,
) (*Lease, error) {
	if strings.TrimSpace(number) == "" {
		return nil, shared.ErrInvalidInput.WithMessage("Lease number cannot be empty")
	}
	if unitID == uuid.Nil {
		return nil, shared.ErrInvalidInput.WithMessage("Unit ID is required")
	}
	if tenantID == uuid.Nil {
		return nil, shared.ErrInvalidInput.WithMessage("Tenant ID is required")
	}
	if !monthlyRent.IsPositive() {
		return nil, shared.ErrInvalidAmount.WithMessage("Monthly rent must be positive")
	}
	if lateFee.IsNegative() {
		return nil, shared.ErrInvalidAmount.WithMessage("Late fee cannot be negative")
	}
	if depositAmount.IsNegative() {
		return nil, shared.ErrInvalidAmount.WithMessage("Deposit amount cannot be negative")
	}
	if lateFee.Currency() != monthlyRent.Currency() || depositAmount.Currency() != monthlyRent.Currency() {
		return nil, shared.ErrInvalidAmount.WithMessage("Lease amounts must share one currency")
	}
	if gracePeriodDays < 0 {
		return nil, shared.ErrInvalidInput.WithMessage("Grace period cannot be negative")
	}
	if rentDueDay < 1 || rentDueDay > 31 {
		return nil, shared.ErrInvalidInput.WithMessage("Rent due day must be between 1 and 31")
	}
	if startDate.IsZero() || endDate.IsZero() {
		return nil, shared.ErrInvalidInput.WithMessage("Lease start and end dates are required")
	}
	if !endDate.After(startDate) {
		return nil, shared.ErrInvalidInput.WithMessage("Lease end date must be after start date")
	}

	l := &Lease{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		LeaseNumber:       strings.TrimSpace(number),
		UnitID:            unitID,
		TenantID:          tenantID,
		MonthlyRent:       monthlyRent,
		LateFee:           lateFee,
		GracePeriodDays:   gracePeriodDays,
		RentDueDay:        rentDueDay,
		DepositAmount:     depositAmount,
		StartDate:         startDate,
		EndDate:           endDate,
		Status:            LeaseStatusDraft,
	}

	l.AddDomainEvent(NewLeaseCreatedEvent(l))
	return l, nil
}

// Activate brings a draft lease into force.
func (l *Lease) Activate() error {
	if !l.Status.CanTransitionTo(LeaseStatusActive) {
		return shared.ErrInvalidState.WithMessage(
			fmt.Sprintf("Cannot activate a %s lease", l.Status))
	}

	l.Status = LeaseStatusActive
	l.AddDomainEvent(NewLeaseActivatedEvent(l))
	l.IncrementVersion()
	return nil
}

// Amend updates the billing terms of an active lease. Obligations
// already generated keep their original amounts.
func (l *Lease) Amend(
	monthlyRent, lateFee valueobject.Money,
	gracePeriodDays, rentDueDay int,
	endDate time.Time,
) error {
	if l.Status != LeaseStatusActive {
		return shared.ErrInvalidState.WithMessage(
			fmt.Sprintf("Cannot amend a %s lease", l.Status))
	}
	if !monthlyRent.IsPositive() {
		return shared.ErrInvalidAmount.WithMessage("Monthly rent must be positive")
	}
	if lateFee.IsNegative() {
		return shared.ErrInvalidAmount.WithMessage("Late fee cannot be negative")
	}
	if lateFee.Currency() != monthlyRent.Currency() {
		return shared.ErrInvalidAmount.WithMessage("Lease amounts must share one currency")
	}
	if gracePeriodDays < 0 {
		return shared.ErrInvalidInput.WithMessage("Grace period cannot be negative")
	}
	if rentDueDay < 1 || rentDueDay > 31 {
		return shared.ErrInvalidInput.WithMessage("Rent due day must be between 1 and 31")
	}
	if !endDate.After(l.StartDate) {
		return shared.ErrInvalidInput.WithMessage("Lease end date must be after start date")
	}

	oldRent := l.MonthlyRent
	l.MonthlyRent = monthlyRent
	l.LateFee = lateFee
	l.GracePeriodDays = gracePeriodDays
	l.RentDueDay = rentDueDay
	l.EndDate = endDate

	l.AddDomainEvent(NewLeaseAmendedEvent(l, oldRent))
	l.IncrementVersion()
	return nil
}

// Terminate ends an active lease as of the move-out date. Settlement
// drives this transition; the lease itself only records it.
func (l *Lease) Terminate(moveOutDate time.Time) error {
	if !l.Status.CanTransitionTo(LeaseStatusTerminated) {
		return shared.ErrInvalidState.WithMessage(
			fmt.Sprintf("Cannot terminate a %s lease", l.Status))
	}
	if moveOutDate.IsZero() {
		return shared.ErrInvalidInput.WithMessage("Move-out date is required")
	}

	l.Status = LeaseStatusTerminated
	mo := moveOutDate
	l.MoveOutDate = &mo

	l.AddDomainEvent(NewLeaseTerminatedEvent(l))
	l.IncrementVersion()
	return nil
}

// IsActive reports whether the tenancy is currently in force.
func (l *Lease) IsActive() bool {
	return l.Status == LeaseStatusActive
}

// CoversPeriod reports whether the lease term overlaps any day of the
// given billing month. Generation creates obligations only for covered
// periods.
func (l *Lease) CoversPeriod(year int, month time.Month) bool {
	periodStart := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
	return !l.EndDate.Before(periodStart) && !l.StartDate.After(periodEnd)
}
