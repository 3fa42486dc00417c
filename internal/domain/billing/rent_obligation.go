package billing

import (
	"fmt"
	"time"

	"github.com/leaseledger/backend/internal/domain/shared"
	"github.com/leaseledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// ObligationStatus represents the lifecycle state of a rent obligation
type ObligationStatus string

const (
	// ObligationStatusPending means the obligation is owed and unpaid
	ObligationStatusPending ObligationStatus = "pending"
	// ObligationStatusPartial means part of the total due has been paid
	ObligationStatusPartial ObligationStatus = "partial"
	// ObligationStatusPaid means the total due has been fully covered
	ObligationStatusPaid ObligationStatus = "paid"
	// ObligationStatusOverdue means the grace window elapsed without payment
	ObligationStatusOverdue ObligationStatus = "overdue"
	// ObligationStatusWrittenOff means the debt was accepted as unrecoverable
	ObligationStatusWrittenOff ObligationStatus = "written_off"
)

// IsValid checks if the status is a known value
func (s ObligationStatus) IsValid() bool {
	switch s {
	case ObligationStatusPending, ObligationStatusPartial, ObligationStatusPaid,
		ObligationStatusOverdue, ObligationStatusWrittenOff:
		return true
	}
	return false
}

// IsTerminal checks if the status permits no further mutation
func (s ObligationStatus) IsTerminal() bool {
	return s == ObligationStatusWrittenOff
}

// IsOpen reports whether the obligation can still receive payments or charges
func (s ObligationStatus) IsOpen() bool {
	switch s {
	case ObligationStatusPending, ObligationStatusPartial, ObligationStatusOverdue:
		return true
	}
	return false
}

// PaymentMethodDepositDeduction marks payments settled out of the security
// deposit during offboarding.
const PaymentMethodDepositDeduction = "Security Deposit Deduction"

// ObligationUpdate is one entry in an obligation's append-only history.
// Every status or amount change records one of these; they are never
// edited or deleted.
type ObligationUpdate struct {
	ID               uuid.UUID          `json:"id"`
	ObligationID     uuid.UUID          `json:"obligation_id"`
	OldStatus        ObligationStatus   `json:"old_status"`
	NewStatus        ObligationStatus   `json:"new_status"`
	OldAmountPaid    valueobject.Money  `json:"old_amount_paid"`
	NewAmountPaid    valueobject.Money  `json:"new_amount_paid"`
	Amount           valueobject.Money  `json:"amount"`
	PaymentMethod    string             `json:"payment_method,omitempty"`
	PaymentReference string             `json:"payment_reference,omitempty"`
	Note             string             `json:"note,omitempty"`
	Actor            *uuid.UUID         `json:"actor,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
}

// RentObligation is one billing period's rent due for a lease. Rows are
// never deleted; resolution happens through status transitions only.
type RentObligation struct {
	shared.BaseAggregateRoot
	ObligationNumber string
	LeaseID          uuid.UUID
	TenantID         uuid.UUID
	PeriodYear       int
	PeriodMonth      int
	DueDate          time.Time
	AmountDue        valueobject.Money
	UtilitiesCharges valueobject.Money
	LateFee          valueobject.Money
	AmountPaid       valueobject.Money
	Status           ObligationStatus
	PaymentMethod    string
	PaymentReference string
	PaymentDate      *time.Time
	ProcessedBy      *uuid.UUID

	pendingUpdates []ObligationUpdate
}

// NewRentObligation creates a pending obligation for a billing period.
// The late fee starts at zero; only the overdue promotion batch applies
// the lease's fee.
func NewRentObligation(
	number string,
	leaseID, tenantID uuid.UUID,
	periodYear int, periodMonth int,
	dueDate time.Time,
	amountDue valueobject.Money,
) (*RentObligation, error) {
	if number == "" {
		return nil, shared.ErrInvalidInput.WithMessage("Obligation number cannot be empty")
	}
	if leaseID == uuid.Nil {
		return nil, shared.ErrInvalidInput.WithMessage("Lease ID is required")
	}
	if periodMonth < 1 || periodMonth > 12 {
		return nil, shared.ErrInvalidInput.WithMessage("Billing month must be between 1 and 12")
	}
	if !amountDue.IsPositive() {
		return nil, shared.ErrInvalidAmount.WithMessage("Amount due must be positive")
	}
	if dueDate.IsZero() {
		return nil, shared.ErrInvalidInput.WithMessage("Due date is required")
	}

	currency := amountDue.Currency()
	o := &RentObligation{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ObligationNumber:  number,
		LeaseID:           leaseID,
		TenantID:          tenantID,
		PeriodYear:        periodYear,
		PeriodMonth:       periodMonth,
		DueDate:           DateOf(dueDate),
		AmountDue:         amountDue,
		UtilitiesCharges:  valueobject.Zero(currency),
		LateFee:           valueobject.Zero(currency),
		AmountPaid:        valueobject.Zero(currency),
		Status:            ObligationStatusPending,
	}

	o.AddDomainEvent(NewRentObligationCreatedEvent(o))
	return o, nil
}

// TotalDue returns amount_due + utilities_charges + late_fee. It is always
// computed, never stored.
func (o *RentObligation) TotalDue() valueobject.Money {
	return o.AmountDue.MustAdd(o.UtilitiesCharges).MustAdd(o.LateFee)
}

// OutstandingBalance returns the unpaid remainder of the total due.
func (o *RentObligation) OutstandingBalance() valueobject.Money {
	return o.TotalDue().MustSubtract(o.AmountPaid)
}

// RentBalance returns the unpaid rent and late fee, excluding utilities.
// Settlement resolves this portion against the security deposit.
func (o *RentObligation) RentBalance() valueobject.Money {
	balance := o.AmountDue.MustAdd(o.LateFee).MustSubtract(o.AmountPaid)
	if balance.IsNegative() {
		return valueobject.Zero(balance.Currency())
	}
	return balance
}

// ApplyPayment adds a payment amount to the obligation and derives the new
// status. Payments accumulate; amount_paid never decreases. An amount that
// would push amount_paid past the total due is rejected so the invariant
// holds outside write-offs.
func (o *RentObligation) ApplyPayment(
	amount valueobject.Money,
	method, reference string,
	paymentDate time.Time,
	actor uuid.UUID,
	note string,
) error {
	if o.Status == ObligationStatusWrittenOff {
		return shared.ErrInvalidState.WithMessage("Cannot apply payment to a written-off obligation")
	}
	if !amount.IsPositive() {
		return shared.ErrInvalidAmount.WithMessage("Payment amount must be positive")
	}

	newPaid, err := o.AmountPaid.Add(amount)
	if err != nil {
		return shared.ErrInvalidAmount.WithMessage(fmt.Sprintf("Currency mismatch: %v", err))
	}
	totalDue := o.TotalDue()
	if exceeds, _ := newPaid.GreaterThan(totalDue); exceeds {
		return shared.ErrInvalidAmount.WithMessage(
			fmt.Sprintf("Payment of %s exceeds outstanding balance of %s", amount.String(), o.OutstandingBalance().String()))
	}

	oldStatus := o.Status
	oldPaid := o.AmountPaid

	newStatus := ObligationStatusPartial
	if covered, _ := newPaid.GreaterThanOrEqual(totalDue); covered {
		newStatus = ObligationStatusPaid
	}

	o.AmountPaid = newPaid
	o.Status = newStatus
	o.PaymentMethod = method
	o.PaymentReference = reference
	pd := paymentDate
	o.PaymentDate = &pd
	act := actor
	o.ProcessedBy = &act

	o.appendUpdate(ObligationUpdate{
		OldStatus:        oldStatus,
		NewStatus:        newStatus,
		OldAmountPaid:    oldPaid,
		NewAmountPaid:    newPaid,
		Amount:           amount,
		PaymentMethod:    method,
		PaymentReference: reference,
		Note:             note,
		Actor:            &act,
	})
	o.AddDomainEvent(NewPaymentAppliedEvent(o, amount, oldStatus))
	o.IncrementVersion()
	return nil
}

// MarkOverdue promotes a pending obligation past its grace window and
// applies the lease's late fee once. The transition is one-directional;
// only payment moves the obligation onward. Returns whether the fee was
// applied by this call.
func (o *RentObligation) MarkOverdue(leaseLateFee valueobject.Money, asOf time.Time) (bool, error) {
	if o.Status != ObligationStatusPending {
		return false, shared.ErrInvalidState.WithMessage(
			fmt.Sprintf("Only pending obligations can be marked overdue, current status is %s", o.Status))
	}

	oldStatus := o.Status
	feeApplied := false
	if o.LateFee.IsZero() && leaseLateFee.IsPositive() {
		o.LateFee = leaseLateFee
		feeApplied = true
	}
	o.Status = ObligationStatusOverdue

	o.appendUpdate(ObligationUpdate{
		OldStatus:     oldStatus,
		NewStatus:     ObligationStatusOverdue,
		OldAmountPaid: o.AmountPaid,
		NewAmountPaid: o.AmountPaid,
		Amount:        valueobject.Zero(o.AmountDue.Currency()),
		Note:          fmt.Sprintf("Marked overdue as of %s", DateOf(asOf).Format("2006-01-02")),
	})
	o.AddDomainEvent(NewObligationOverdueEvent(o, feeApplied, asOf))
	o.IncrementVersion()
	return feeApplied, nil
}

// MergeUtilityCharges folds a billed utility total into the obligation.
// Only open obligations accept charges; the caller guards merge-once via
// the charge's own status transition.
func (o *RentObligation) MergeUtilityCharges(total valueobject.Money, chargeID uuid.UUID) error {
	if !o.Status.IsOpen() {
		return shared.ErrInvalidState.WithMessage(
			fmt.Sprintf("Cannot merge utility charges into a %s obligation", o.Status))
	}
	if !total.IsPositive() {
		return shared.ErrInvalidAmount.WithMessage("Utility charge total must be positive")
	}

	merged, err := o.UtilitiesCharges.Add(total)
	if err != nil {
		return shared.ErrInvalidAmount.WithMessage(fmt.Sprintf("Currency mismatch: %v", err))
	}
	o.UtilitiesCharges = merged

	o.appendUpdate(ObligationUpdate{
		OldStatus:     o.Status,
		NewStatus:     o.Status,
		OldAmountPaid: o.AmountPaid,
		NewAmountPaid: o.AmountPaid,
		Amount:        total,
		Note:          fmt.Sprintf("Utility charges merged from charge %s", chargeID),
	})
	o.AddDomainEvent(NewUtilitiesMergedEvent(o, chargeID, total))
	o.IncrementVersion()
	return nil
}

// SettleByDeduction covers the unpaid rent and late fee out of the
// security deposit at offboarding. Utilities already paid above the rent
// portion are left untouched; amount_paid only moves up.
func (o *RentObligation) SettleByDeduction(moveOutDate time.Time, actor uuid.UUID) error {
	if !o.Status.IsOpen() {
		return shared.ErrInvalidState.WithMessage(
			fmt.Sprintf("Cannot settle a %s obligation", o.Status))
	}

	oldStatus := o.Status
	oldPaid := o.AmountPaid
	settled := o.AmountDue.MustAdd(o.LateFee)
	if below, _ := o.AmountPaid.LessThan(settled); below {
		o.AmountPaid = settled
	}
	o.Status = ObligationStatusPaid
	o.PaymentMethod = PaymentMethodDepositDeduction
	pd := moveOutDate
	o.PaymentDate = &pd
	act := actor
	o.ProcessedBy = &act

	o.appendUpdate(ObligationUpdate{
		OldStatus:     oldStatus,
		NewStatus:     ObligationStatusPaid,
		OldAmountPaid: oldPaid,
		NewAmountPaid: o.AmountPaid,
		Amount:        o.AmountPaid.MustSubtract(oldPaid),
		PaymentMethod: PaymentMethodDepositDeduction,
		Note:          "Settled against security deposit at move-out",
		Actor:         &act,
	})
	o.AddDomainEvent(NewObligationSettledEvent(o, o.AmountPaid.MustSubtract(oldPaid)))
	o.IncrementVersion()
	return nil
}

// WriteOff marks the obligation's remaining balance as accepted,
// unrecoverable debt. Terminal; amount_paid knowingly stays below the
// total due.
func (o *RentObligation) WriteOff(actor uuid.UUID, note string) error {
	if !o.Status.IsOpen() {
		return shared.ErrInvalidState.WithMessage(
			fmt.Sprintf("Cannot write off a %s obligation", o.Status))
	}

	oldStatus := o.Status
	o.Status = ObligationStatusWrittenOff
	act := actor
	o.ProcessedBy = &act

	o.appendUpdate(ObligationUpdate{
		OldStatus:     oldStatus,
		NewStatus:     ObligationStatusWrittenOff,
		OldAmountPaid: o.AmountPaid,
		NewAmountPaid: o.AmountPaid,
		Amount:        valueobject.Zero(o.AmountDue.Currency()),
		Note:          note,
		Actor:         &act,
	})
	o.AddDomainEvent(NewObligationWrittenOffEvent(o))
	o.IncrementVersion()
	return nil
}

// IsOverdue reports whether a pending obligation is past its grace window.
// Computed at read time so it is always consistent with now.
func (o *RentObligation) IsOverdue(graceDays int, now time.Time) bool {
	return o.Status == ObligationStatusPending && IsPastGrace(o.DueDate, graceDays, now)
}

// DaysOverdue returns how many days the obligation is past its grace
// window, counting the current day.
func (o *RentObligation) DaysOverdue(graceDays int, now time.Time) int {
	if o.Status != ObligationStatusPending && o.Status != ObligationStatusOverdue {
		return 0
	}
	return DaysOverdue(o.DueDate, graceDays, now)
}

// WithinGracePeriod reports whether a pending obligation is past due but
// still inside the grace window.
func (o *RentObligation) WithinGracePeriod(graceDays int, now time.Time) bool {
	return o.Status == ObligationStatusPending && WithinGracePeriod(o.DueDate, graceDays, now)
}

func (o *RentObligation) appendUpdate(u ObligationUpdate) {
	u.ID = uuid.New()
	u.ObligationID = o.ID
	u.CreatedAt = time.Now()
	o.pendingUpdates = append(o.pendingUpdates, u)
}

// PendingUpdates returns history entries recorded since the last save.
func (o *RentObligation) PendingUpdates() []ObligationUpdate {
	return o.pendingUpdates
}

// ClearPendingUpdates drops history entries after they are persisted.
func (o *RentObligation) ClearPendingUpdates() {
	o.pendingUpdates = nil
}
