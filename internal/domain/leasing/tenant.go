package leasing

import (
	"strings"

	"github.com/leaseledger/backend/internal/domain/shared"
	"github.com/leaseledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// BlacklistStatus grades how much scrutiny a renter's claims receive
type BlacklistStatus string

const (
	// BlacklistNone means the renter is in good standing
	BlacklistNone BlacklistStatus = "none"
	// BlacklistWatch means claims get extra review but are not blocked
	BlacklistWatch BlacklistStatus = "watch"
	// BlacklistSevere means payment claims are rejected outright
	BlacklistSevere BlacklistStatus = "severe"
)

// IsValid checks if the status is a known value
func (s BlacklistStatus) IsValid() bool {
	switch s {
	case BlacklistNone, BlacklistWatch, BlacklistSevere:
		return true
	}
	return false
}

// Tenant is the renter on a lease. Kept minimal: the payment lifecycle
// needs identity, standing and the link to the active lease, nothing
// more.
type Tenant struct {
	shared.BaseAggregateRoot
	FullName      string
	Phone         string
	Email         string
	Blacklist     BlacklistStatus
	DebtFlagged   bool
	ActiveLeaseID *uuid.UUID
}

// NewTenant registers a renter.
func NewTenant(fullName, phone, email string) (*Tenant, error) {
	if strings.TrimSpace(fullName) == "" {
		return nil, shared.ErrInvalidInput.WithMessage("Tenant name cannot be empty")
	}
	if strings.TrimSpace(phone) == "" {
		return nil, shared.ErrInvalidInput.WithMessage("Tenant phone cannot be empty")
	}

	return &Tenant{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		FullName:          strings.TrimSpace(fullName),
		Phone:             strings.TrimSpace(phone),
		Email:             strings.TrimSpace(email),
		Blacklist:         BlacklistNone,
	}, nil
}

// IsSeverelyBlacklisted reports whether payment claims from this renter
// are blocked.
func (t *Tenant) IsSeverelyBlacklisted() bool {
	return t.Blacklist == BlacklistSevere
}

// SetBlacklist changes the renter's standing.
func (t *Tenant) SetBlacklist(status BlacklistStatus) error {
	if !status.IsValid() {
		return shared.ErrInvalidInput.WithMessage("Unknown blacklist status")
	}
	t.Blacklist = status
	t.IncrementVersion()
	return nil
}

// FlagDebt marks the renter as carrying written-off debt.
func (t *Tenant) FlagDebt(amount valueobject.Money) {
	t.DebtFlagged = true
	t.AddDomainEvent(NewTenantDebtRecordedEvent(t, amount))
	t.IncrementVersion()
}

// AttachLease links the renter to their running lease. One active lease
// per renter.
func (t *Tenant) AttachLease(leaseID uuid.UUID) error {
	if leaseID == uuid.Nil {
		return shared.ErrInvalidInput.WithMessage("Lease ID is required")
	}
	if t.ActiveLeaseID != nil && *t.ActiveLeaseID != leaseID {
		return shared.ErrConflict.WithMessage("Tenant already has an active lease")
	}
	lid := leaseID
	t.ActiveLeaseID = &lid
	t.IncrementVersion()
	return nil
}

// DetachLease clears the active lease link at offboarding.
func (t *Tenant) DetachLease() {
	t.ActiveLeaseID = nil
	t.IncrementVersion()
}
