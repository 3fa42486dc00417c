package leasing

import (
	"strings"

	"github.com/leaseledger/backend/internal/domain/shared"
	"github.com/leaseledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// OccupancyStatus represents whether a unit currently houses a tenancy
type OccupancyStatus string

const (
	// OccupancyVacant means the unit can take a new lease
	OccupancyVacant OccupancyStatus = "vacant"
	// OccupancyOccupied means an active lease holds the unit
	OccupancyOccupied OccupancyStatus = "occupied"
)

// IsValid checks if the status is a known value
func (s OccupancyStatus) IsValid() bool {
	return s == OccupancyVacant || s == OccupancyOccupied
}

// Unit is a leasable residential unit. Occupancy flips on lease
// activation and settlement; everything else about the unit lives
// outside this engine.
type Unit struct {
	shared.BaseAggregateRoot
	Code          string
	PropertyName  string
	Address       valueobject.Address
	Occupancy     OccupancyStatus
	ActiveLeaseID *uuid.UUID
}

// UnitOption configures optional unit attributes at registration.
type UnitOption func(*Unit)

// WithAddress sets the unit's physical address.
func WithAddress(addr valueobject.Address) UnitOption {
	return func(u *Unit) {
		u.Address = addr
	}
}

// NewUnit registers a leasable unit.
func NewUnit(code, propertyName string, opts ...UnitOption) (*Unit, error) {
	if strings.TrimSpace(code) == "" {
		return nil, shared.ErrInvalidInput.WithMessage("Unit code cannot be empty")
	}

	unit := &Unit{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.TrimSpace(code),
		PropertyName:      strings.TrimSpace(propertyName),
		Occupancy:         OccupancyVacant,
	}
	for _, opt := range opts {
		opt(unit)
	}
	return unit, nil
}

// IsVacant reports whether the unit can take a new lease.
func (u *Unit) IsVacant() bool {
	return u.Occupancy == OccupancyVacant
}

// Occupy marks the unit as held by an active lease.
func (u *Unit) Occupy(leaseID uuid.UUID) error {
	if u.Occupancy == OccupancyOccupied {
		return shared.ErrConflict.WithMessage("Unit is already occupied")
	}
	if leaseID == uuid.Nil {
		return shared.ErrInvalidInput.WithMessage("Lease ID is required")
	}

	u.Occupancy = OccupancyOccupied
	lid := leaseID
	u.ActiveLeaseID = &lid
	u.IncrementVersion()
	return nil
}

// Release frees the unit after settlement.
func (u *Unit) Release() {
	u.Occupancy = OccupancyVacant
	u.ActiveLeaseID = nil
	u.IncrementVersion()
}
