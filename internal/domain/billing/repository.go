package billing

import (
	"context"
	"time"

	"github.com/leaseledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RentObligationFilter defines filtering options for obligation queries
type RentObligationFilter struct {
	shared.Filter
	LeaseID     *uuid.UUID        // Filter by lease
	TenantID    *uuid.UUID        // Filter by renter
	Status      *ObligationStatus // Filter by status
	PeriodYear  *int              // Filter by billing year
	PeriodMonth *int              // Filter by billing month
	DueFrom     *time.Time        // Filter by due date range start
	DueTo       *time.Time        // Filter by due date range end
}

// RentObligationRepository defines the interface for rent obligation persistence
type RentObligationRepository interface {
	// FindByID finds an obligation by ID
	FindByID(ctx context.Context, id uuid.UUID) (*RentObligation, error)

	// FindByNumber finds an obligation by its obligation number
	FindByNumber(ctx context.Context, number string) (*RentObligation, error)

	// FindByLeaseAndPeriod finds the obligation for a lease's billing period
	FindByLeaseAndPeriod(ctx context.Context, leaseID uuid.UUID, year, month int) (*RentObligation, error)

	// FindOpenByLease finds pending and overdue obligations for a lease,
	// oldest due date first. Verification applies payments to these.
	FindOpenByLease(ctx context.Context, leaseID uuid.UUID) ([]RentObligation, error)

	// FindOpenByLeaseForUpdate is FindOpenByLease with row locks. Call it
	// inside a transaction; verification holds the locks until commit so a
	// racing batch cannot double-apply against the same rows.
	FindOpenByLeaseForUpdate(ctx context.Context, leaseID uuid.UUID) ([]RentObligation, error)

	// FindUnpaidByLease finds pending, overdue and partial obligations
	// for a lease. Settlement resolves these at move-out.
	FindUnpaidByLease(ctx context.Context, leaseID uuid.UUID) ([]RentObligation, error)

	// FindUnpaidByLeaseForUpdate is FindUnpaidByLease with row locks for
	// the settlement transaction.
	FindUnpaidByLeaseForUpdate(ctx context.Context, leaseID uuid.UUID) ([]RentObligation, error)

	// FindPendingDueOnOrBefore finds pending obligations whose due date is
	// on or before the cutoff. The overdue promotion batch scans these.
	FindPendingDueOnOrBefore(ctx context.Context, cutoff time.Time) ([]RentObligation, error)

	// FindAll finds obligations with filtering
	FindAll(ctx context.Context, filter RentObligationFilter) ([]RentObligation, error)

	// ExistsForPeriod checks whether a lease already has an obligation for a period
	ExistsForPeriod(ctx context.Context, leaseID uuid.UUID, year, month int) (bool, error)

	// Save creates or updates an obligation along with its pending history entries
	Save(ctx context.Context, obligation *RentObligation) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, obligation *RentObligation) error

	// Count counts obligations with optional filters
	Count(ctx context.Context, filter RentObligationFilter) (int64, error)

	// CountByStatus counts obligations in a status
	CountByStatus(ctx context.Context, status ObligationStatus) (int64, error)

	// SumOutstandingByLease totals the unpaid balance across a lease's open obligations
	SumOutstandingByLease(ctx context.Context, leaseID uuid.UUID) (decimal.Decimal, error)

	// SumOutstanding totals the unpaid balance across all open obligations
	SumOutstanding(ctx context.Context) (decimal.Decimal, error)

	// FindUpdates returns an obligation's append-only history, oldest first
	FindUpdates(ctx context.Context, obligationID uuid.UUID) ([]ObligationUpdate, error)

	// GenerateObligationNumber generates the next obligation number for a period
	GenerateObligationNumber(ctx context.Context, year, month int) (string, error)
}

// UtilityChargeFilter defines filtering options for utility charge queries
type UtilityChargeFilter struct {
	shared.Filter
	LeaseID      *uuid.UUID    // Filter by lease
	TenantID     *uuid.UUID    // Filter by renter
	Status       *ChargeStatus // Filter by status
	BillingYear  *int          // Filter by billing year
	BillingMonth *int          // Filter by billing month
}

// UtilityChargeRepository defines the interface for utility charge persistence
type UtilityChargeRepository interface {
	// FindByID finds a utility charge by ID
	FindByID(ctx context.Context, id uuid.UUID) (*UtilityCharge, error)

	// FindByLeaseAndMonth finds a lease's charge for a billing month
	FindByLeaseAndMonth(ctx context.Context, leaseID uuid.UUID, year, month int) (*UtilityCharge, error)

	// FindBillableForPeriod finds pending charges for a billing period.
	// The billing merge consumes these.
	FindBillableForPeriod(ctx context.Context, year, month int) ([]UtilityCharge, error)

	// FindAll finds utility charges with filtering
	FindAll(ctx context.Context, filter UtilityChargeFilter) ([]UtilityCharge, error)

	// Save creates or updates a utility charge
	Save(ctx context.Context, charge *UtilityCharge) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, charge *UtilityCharge) error

	// Count counts utility charges with optional filters
	Count(ctx context.Context, filter UtilityChargeFilter) (int64, error)
}

// PaymentSubmissionFilter defines filtering options for submission queries
type PaymentSubmissionFilter struct {
	shared.Filter
	LeaseID  *uuid.UUID        // Filter by lease
	TenantID *uuid.UUID        // Filter by renter
	Status   *SubmissionStatus // Filter by verification status
	Method   *string           // Filter by payment method
	FromDate *time.Time        // Filter by transaction date range start
	ToDate   *time.Time        // Filter by transaction date range end
}

// PaymentSubmissionRepository defines the interface for payment submission persistence
type PaymentSubmissionRepository interface {
	// FindByID finds a submission by ID
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentSubmission, error)

	// FindByIDs finds submissions by a set of IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]PaymentSubmission, error)

	// FindPending finds submissions awaiting review
	FindPending(ctx context.Context, filter PaymentSubmissionFilter) ([]PaymentSubmission, error)

	// FindAll finds submissions with filtering
	FindAll(ctx context.Context, filter PaymentSubmissionFilter) ([]PaymentSubmission, error)

	// ExistsVerifiedReference checks whether another submission with this
	// renter and transaction reference was already verified
	ExistsVerifiedReference(ctx context.Context, tenantID uuid.UUID, reference string, excludeID uuid.UUID) (bool, error)

	// Save creates or updates a submission
	Save(ctx context.Context, submission *PaymentSubmission) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, submission *PaymentSubmission) error

	// Count counts submissions with optional filters
	Count(ctx context.Context, filter PaymentSubmissionFilter) (int64, error)
}
