package billing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/leaseledger/backend/internal/domain/shared"
	"github.com/leaseledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// ChargeStatus represents the lifecycle state of a monthly utility charge
type ChargeStatus string

const (
	// ChargeStatusDraft means the charge is still being itemized
	ChargeStatusDraft ChargeStatus = "draft"
	// ChargeStatusPending means the charge is finalized and ready to bill
	ChargeStatusPending ChargeStatus = "pending"
	// ChargeStatusBilled means the charge was merged into a rent obligation
	ChargeStatusBilled ChargeStatus = "billed"
	// ChargeStatusPaid means the charge was collected standalone
	ChargeStatusPaid ChargeStatus = "paid"
	// ChargeStatusOverdue means a standalone charge went uncollected
	ChargeStatusOverdue ChargeStatus = "overdue"
)

// IsValid checks if the status is a known value
func (s ChargeStatus) IsValid() bool {
	switch s {
	case ChargeStatusDraft, ChargeStatusPending, ChargeStatusBilled,
		ChargeStatusPaid, ChargeStatusOverdue:
		return true
	}
	return false
}

// CanBeBilled reports whether the merge batch may pick up the charge.
// Only finalized charges bill; the transition to billed is the merge-once
// guard.
func (s ChargeStatus) CanBeBilled() bool {
	return s == ChargeStatusPending
}

// UtilityItems is the itemized breakdown of one month's utility charge.
// All items share one currency.
type UtilityItems struct {
	Water       valueobject.Money `json:"water"`
	Electricity valueobject.Money `json:"electricity"`
	Gas         valueobject.Money `json:"gas"`
	Service     valueobject.Money `json:"service"`
	Garbage     valueobject.Money `json:"garbage"`
	CommonArea  valueobject.Money `json:"common_area"`
	Other       valueobject.Money `json:"other"`
}

// NewUtilityItems builds an itemization with every item zeroed in the
// given currency.
func NewUtilityItems(currency valueobject.Currency) UtilityItems {
	zero := valueobject.Zero(currency)
	return UtilityItems{
		Water:       zero,
		Electricity: zero,
		Gas:         zero,
		Service:     zero,
		Garbage:     zero,
		CommonArea:  zero,
		Other:       zero,
	}
}

// Value implements driver.Valuer interface for GORM to store as JSONB
func (i UtilityItems) Value() (driver.Value, error) {
	return json.Marshal(i)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (i *UtilityItems) Scan(value interface{}) error {
	if value == nil {
		*i = NewUtilityItems(valueobject.DefaultCurrency)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan UtilityItems: unsupported type")
	}

	if len(bytes) == 0 {
		*i = NewUtilityItems(valueobject.DefaultCurrency)
		return nil
	}

	return json.Unmarshal(bytes, i)
}

// Total sums all items.
func (i UtilityItems) Total() valueobject.Money {
	return i.Water.
		MustAdd(i.Electricity).
		MustAdd(i.Gas).
		MustAdd(i.Service).
		MustAdd(i.Garbage).
		MustAdd(i.CommonArea).
		MustAdd(i.Other)
}

// Validate checks every item is non-negative and currencies agree.
func (i UtilityItems) Validate() error {
	currency := i.Water.Currency()
	for _, item := range []valueobject.Money{
		i.Water, i.Electricity, i.Gas, i.Service, i.Garbage, i.CommonArea, i.Other,
	} {
		if item.IsNegative() {
			return shared.ErrInvalidAmount.WithMessage("Utility items cannot be negative")
		}
		if item.Currency() != currency {
			return shared.ErrInvalidAmount.WithMessage("Utility items must share one currency")
		}
	}
	return nil
}

// UtilityCharge is one lease's utility bill for one calendar month. It
// stays a distinct record until the billing merge folds its total into
// the period's rent obligation, after which the two never double-count.
type UtilityCharge struct {
	shared.BaseAggregateRoot
	LeaseID            uuid.UUID
	TenantID           uuid.UUID
	BillingYear        int
	BillingMonth       int
	Items              UtilityItems
	Status             ChargeStatus
	BilledObligationID *uuid.UUID
	Notes              string
}

// NewUtilityCharge creates a charge for a billing month. A charge may
// start as a draft for further itemization or directly pending, ready
// for the billing merge.
func NewUtilityCharge(
	leaseID, tenantID uuid.UUID,
	billingYear, billingMonth int,
	items UtilityItems,
	notes string,
	asDraft bool,
) (*UtilityCharge, error) {
	if leaseID == uuid.Nil {
		return nil, shared.ErrInvalidInput.WithMessage("Lease ID is required")
	}
	if billingMonth < 1 || billingMonth > 12 {
		return nil, shared.ErrInvalidInput.WithMessage("Billing month must be between 1 and 12")
	}
	if billingYear < 2000 {
		return nil, shared.ErrInvalidInput.WithMessage("Billing year is out of range")
	}
	if err := items.Validate(); err != nil {
		return nil, err
	}

	status := ChargeStatusPending
	if asDraft {
		status = ChargeStatusDraft
	}

	c := &UtilityCharge{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		LeaseID:           leaseID,
		TenantID:          tenantID,
		BillingYear:       billingYear,
		BillingMonth:      billingMonth,
		Items:             items,
		Status:            status,
		Notes:             notes,
	}

	c.AddDomainEvent(NewUtilityChargeCreatedEvent(c))
	return c, nil
}

// TotalAmount returns the sum of all items. Always computed, never stored.
func (c *UtilityCharge) TotalAmount() valueobject.Money {
	return c.Items.Total()
}

// UpdateItems replaces the itemization. Billed charges are immutable.
func (c *UtilityCharge) UpdateItems(items UtilityItems, notes string) error {
	if c.Status != ChargeStatusDraft && c.Status != ChargeStatusPending {
		return shared.ErrInvalidState.WithMessage(
			fmt.Sprintf("Cannot update a %s utility charge", c.Status))
	}
	if err := items.Validate(); err != nil {
		return err
	}

	c.Items = items
	c.Notes = notes
	c.IncrementVersion()
	return nil
}

// Finalize moves a draft charge to pending so the billing merge can
// pick it up.
func (c *UtilityCharge) Finalize() error {
	if c.Status != ChargeStatusDraft {
		return shared.ErrInvalidState.WithMessage(
			fmt.Sprintf("Only draft charges can be finalized, current status is %s", c.Status))
	}
	if !c.TotalAmount().IsPositive() {
		return shared.ErrInvalidAmount.WithMessage("Cannot finalize a charge with a zero total")
	}

	c.Status = ChargeStatusPending
	c.AddDomainEvent(NewUtilityChargeFinalizedEvent(c))
	c.IncrementVersion()
	return nil
}

// MarkBilled records that the charge's total was merged into an
// obligation. The bound obligation is set exactly once; re-running the
// merge finds the charge billed and skips it.
func (c *UtilityCharge) MarkBilled(obligationID uuid.UUID) error {
	if !c.Status.CanBeBilled() {
		return shared.ErrInvalidState.WithMessage(
			fmt.Sprintf("Only pending charges can be billed, current status is %s", c.Status))
	}
	if obligationID == uuid.Nil {
		return shared.ErrInvalidInput.WithMessage("Obligation ID is required")
	}
	if c.BilledObligationID != nil {
		return shared.ErrInvalidState.WithMessage("Utility charge has already been billed")
	}

	c.Status = ChargeStatusBilled
	oid := obligationID
	c.BilledObligationID = &oid

	c.AddDomainEvent(NewUtilityChargeBilledEvent(c))
	c.IncrementVersion()
	return nil
}
