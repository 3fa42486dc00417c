package leasing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/leaseledger/backend/internal/domain/shared"
	"github.com/leaseledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DepositStatus represents the disposition of a security deposit
type DepositStatus string

const (
	// DepositStatusHeld means the deposit is held for the running tenancy
	DepositStatusHeld DepositStatus = "held"
	// DepositStatusPartiallyReturned means part of the deposit was refunded
	DepositStatusPartiallyReturned DepositStatus = "partially_returned"
	// DepositStatusFullyReturned means the whole deposit was refunded
	DepositStatusFullyReturned DepositStatus = "fully_returned"
	// DepositStatusForfeited means deductions consumed the whole deposit
	DepositStatusForfeited DepositStatus = "forfeited"
)

// IsValid checks if the status is a known value
func (s DepositStatus) IsValid() bool {
	switch s {
	case DepositStatusHeld, DepositStatusPartiallyReturned,
		DepositStatusFullyReturned, DepositStatusForfeited:
		return true
	}
	return false
}

// IsFinal checks if the deposit has been dispositioned
func (s DepositStatus) IsFinal() bool {
	return s != DepositStatusHeld
}

// DeductionItem is one line withheld from a deposit at offboarding
type DeductionItem struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// DeductionItems is a slice of DeductionItem that implements GORM Scanner/Valuer for JSONB storage
type DeductionItems []DeductionItem

// Value implements driver.Valuer interface for GORM to store as JSONB
func (d DeductionItems) Value() (driver.Value, error) {
	if d == nil {
		return "[]", nil
	}
	return json.Marshal(d)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (d *DeductionItems) Scan(value interface{}) error {
	if value == nil {
		*d = DeductionItems{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan DeductionItems: unsupported type")
	}

	if len(bytes) == 0 {
		*d = DeductionItems{}
		return nil
	}

	return json.Unmarshal(bytes, d)
}

// Total sums all deduction lines.
func (d DeductionItems) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range d {
		total = total.Add(item.Amount)
	}
	return total
}

// Validate checks every line has a description and a positive amount.
func (d DeductionItems) Validate() error {
	for _, item := range d {
		if strings.TrimSpace(item.Description) == "" {
			return shared.ErrInvalidInput.WithMessage("Deduction line description cannot be empty")
		}
		if !item.Amount.IsPositive() {
			return shared.ErrInvalidAmount.WithMessage("Deduction line amount must be positive")
		}
	}
	return nil
}

// SecurityDeposit holds the money collected at lease activation and its
// final disposition at offboarding. Finalization happens exactly once
// and conserves the collected amount: returned plus deductions always
// equals collected.
type SecurityDeposit struct {
	shared.BaseAggregateRoot
	LeaseID         uuid.UUID
	TenantID        uuid.UUID
	AmountCollected valueobject.Money
	AmountReturned  valueobject.Money
	Deductions      valueobject.Money
	Itemization     DeductionItems
	Status          DepositStatus
	CollectedAt     time.Time
	FinalizedAt     *time.Time
}

// NewSecurityDeposit records the deposit collected when a lease activates.
func NewSecurityDeposit(leaseID, tenantID uuid.UUID, collected valueobject.Money, collectedAt time.Time) (*SecurityDeposit, error) {
	if leaseID == uuid.Nil {
		return nil, shared.ErrInvalidInput.WithMessage("Lease ID is required")
	}
	if !collected.IsPositive() {
		return nil, shared.ErrInvalidAmount.WithMessage("Collected deposit must be positive")
	}
	if collectedAt.IsZero() {
		collectedAt = time.Now()
	}

	currency := collected.Currency()
	d := &SecurityDeposit{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		LeaseID:           leaseID,
		TenantID:          tenantID,
		AmountCollected:   collected,
		AmountReturned:    valueobject.Zero(currency),
		Deductions:        valueobject.Zero(currency),
		Itemization:       DeductionItems{},
		Status:            DepositStatusHeld,
		CollectedAt:       collectedAt,
	}

	d.AddDomainEvent(NewDepositCollectedEvent(d))
	return d, nil
}

// Finalize dispositions the deposit at offboarding. The itemized
// deductions may never exceed what was collected; the refund is the
// exact remainder, and the status derives from how much came back.
func (d *SecurityDeposit) Finalize(items DeductionItems, finalizedAt time.Time) error {
	if d.Status != DepositStatusHeld {
		return shared.ErrInvalidState.WithMessage(
			fmt.Sprintf("Deposit has already been %s", d.Status))
	}
	if err := items.Validate(); err != nil {
		return err
	}

	currency := d.AmountCollected.Currency()
	totalDeductions, err := valueobject.NewMoney(items.Total(), currency)
	if err != nil {
		return shared.ErrInvalidAmount.WithMessage(err.Error())
	}
	if exceeds, _ := totalDeductions.GreaterThan(d.AmountCollected); exceeds {
		return shared.ErrInvalidState.WithMessage(
			fmt.Sprintf("Deductions of %s exceed the %s deposit held", totalDeductions.String(), d.AmountCollected.String()))
	}

	refund := d.AmountCollected.MustSubtract(totalDeductions)

	switch {
	case refund.Equals(d.AmountCollected):
		d.Status = DepositStatusFullyReturned
	case refund.IsPositive():
		d.Status = DepositStatusPartiallyReturned
	default:
		d.Status = DepositStatusForfeited
	}

	d.AmountReturned = refund
	d.Deductions = totalDeductions
	d.Itemization = items
	if finalizedAt.IsZero() {
		finalizedAt = time.Now()
	}
	fa := finalizedAt
	d.FinalizedAt = &fa

	d.AddDomainEvent(NewDepositFinalizedEvent(d))
	d.IncrementVersion()
	return nil
}
