package leasing

import (
	"context"
	"time"

	"github.com/leaseledger/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// LeaseFilter defines filtering options for lease queries
type LeaseFilter struct {
	shared.Filter
	UnitID   *uuid.UUID   // Filter by unit
	TenantID *uuid.UUID   // Filter by renter
	Status   *LeaseStatus // Filter by status
	ActiveOn *time.Time   // Filter leases in force on a date
}

// LeaseRepository defines the interface for lease persistence
type LeaseRepository interface {
	// FindByID finds a lease by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Lease, error)

	// FindByIDs finds leases by a set of IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Lease, error)

	// FindByNumber finds a lease by its lease number
	FindByNumber(ctx context.Context, number string) (*Lease, error)

	// FindActiveInPeriod finds active leases whose term covers any day of
	// the billing month. Obligation generation iterates these.
	FindActiveInPeriod(ctx context.Context, year int, month time.Month) ([]Lease, error)

	// FindByTenant finds a renter's leases, newest first
	FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]Lease, error)

	// FindAll finds leases with filtering
	FindAll(ctx context.Context, filter LeaseFilter) ([]Lease, error)

	// ExistsActiveForUnit checks whether the unit already has an active lease
	ExistsActiveForUnit(ctx context.Context, unitID uuid.UUID) (bool, error)

	// Save creates or updates a lease
	Save(ctx context.Context, lease *Lease) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, lease *Lease) error

	// Count counts leases with optional filters
	Count(ctx context.Context, filter LeaseFilter) (int64, error)

	// GenerateLeaseNumber generates the next lease number
	GenerateLeaseNumber(ctx context.Context) (string, error)
}

// SecurityDepositRepository defines the interface for deposit persistence
type SecurityDepositRepository interface {
	// FindByID finds a deposit by ID
	FindByID(ctx context.Context, id uuid.UUID) (*SecurityDeposit, error)

	// FindByLease finds the deposit held for a lease
	FindByLease(ctx context.Context, leaseID uuid.UUID) (*SecurityDeposit, error)

	// Save creates or updates a deposit
	Save(ctx context.Context, deposit *SecurityDeposit) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, deposit *SecurityDeposit) error
}

// SettlementFilter defines filtering options for settlement queries
type SettlementFilter struct {
	shared.Filter
	TenantID *uuid.UUID // Filter by renter
	UnitID   *uuid.UUID // Filter by unit
	FromDate *time.Time // Filter by move-out date range start
	ToDate   *time.Time // Filter by move-out date range end
}

// SettlementRepository defines the interface for settlement record persistence
type SettlementRepository interface {
	// FindByID finds a settlement by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Settlement, error)

	// FindByLease finds the settlement recorded for a lease
	FindByLease(ctx context.Context, leaseID uuid.UUID) (*Settlement, error)

	// FindAll finds settlements with filtering
	FindAll(ctx context.Context, filter SettlementFilter) ([]Settlement, error)

	// Save persists a settlement record. Settlements are written once.
	Save(ctx context.Context, settlement *Settlement) error

	// Count counts settlements with optional filters
	Count(ctx context.Context, filter SettlementFilter) (int64, error)
}

// TenantFilter defines filtering options for renter queries
type TenantFilter struct {
	shared.Filter
	Blacklist   *BlacklistStatus // Filter by standing
	DebtFlagged *bool            // Filter renters carrying written-off debt
}

// TenantRepository defines the interface for renter persistence
type TenantRepository interface {
	// FindByID finds a renter by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)

	// FindByPhone finds a renter by phone number
	FindByPhone(ctx context.Context, phone string) (*Tenant, error)

	// FindAll finds renters with filtering
	FindAll(ctx context.Context, filter TenantFilter) ([]Tenant, error)

	// Save creates or updates a renter
	Save(ctx context.Context, tenant *Tenant) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, tenant *Tenant) error

	// Count counts renters with optional filters
	Count(ctx context.Context, filter TenantFilter) (int64, error)
}

// UnitFilter defines filtering options for unit queries
type UnitFilter struct {
	shared.Filter
	Occupancy    *OccupancyStatus // Filter by occupancy
	PropertyName *string          // Filter by property
}

// UnitRepository defines the interface for unit persistence
type UnitRepository interface {
	// FindByID finds a unit by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Unit, error)

	// FindByCode finds a unit by its code
	FindByCode(ctx context.Context, code string) (*Unit, error)

	// FindAll finds units with filtering
	FindAll(ctx context.Context, filter UnitFilter) ([]Unit, error)

	// Save creates or updates a unit
	Save(ctx context.Context, unit *Unit) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, unit *Unit) error

	// Count counts units with optional filters
	Count(ctx context.Context, filter UnitFilter) (int64, error)
}
