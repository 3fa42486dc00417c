package leasing

import (
	"context"

	"github.com/leaseledger/backend/internal/domain/billing"
	"github.com/leaseledger/backend/internal/domain/leasing"
)

// TransactionScope provides transactional access to leasing repositories.
// When a function is executed within a transaction scope, all repository operations
// will be part of the same database transaction and will be committed or rolled back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the leasing repositories within
// a transaction. All repositories returned share the same underlying database
// transaction.
//
// Activation touches lease, unit, tenant and deposit together; settlement
// additionally resolves the lease's open obligations. The scope keeps each
// of those multi-aggregate operations atomic.
type TransactionalRepositories interface {
	// LeaseRepo returns the lease repository scoped to the current transaction
	LeaseRepo() leasing.LeaseRepository
	// DepositRepo returns the security deposit repository scoped to the current transaction
	DepositRepo() leasing.SecurityDepositRepository
	// SettlementRepo returns the settlement repository scoped to the current transaction
	SettlementRepo() leasing.SettlementRepository
	// TenantRepo returns the renter repository scoped to the current transaction
	TenantRepo() leasing.TenantRepository
	// UnitRepo returns the unit repository scoped to the current transaction
	UnitRepo() leasing.UnitRepository
	// ObligationRepo returns the rent obligation repository scoped to the current transaction
	ObligationRepo() billing.RentObligationRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	leaseRepo      leasing.LeaseRepository
	depositRepo    leasing.SecurityDepositRepository
	settlementRepo leasing.SettlementRepository
	tenantRepo     leasing.TenantRepository
	unitRepo       leasing.UnitRepository
	obligationRepo billing.RentObligationRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	leaseRepo leasing.LeaseRepository,
	depositRepo leasing.SecurityDepositRepository,
	settlementRepo leasing.SettlementRepository,
	tenantRepo leasing.TenantRepository,
	unitRepo leasing.UnitRepository,
	obligationRepo billing.RentObligationRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		leaseRepo:      leaseRepo,
		depositRepo:    depositRepo,
		settlementRepo: settlementRepo,
		tenantRepo:     tenantRepo,
		unitRepo:       unitRepo,
		obligationRepo: obligationRepo,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// LeaseRepo returns the lease repository.
func (s *NoOpTransactionScope) LeaseRepo() leasing.LeaseRepository {
	return s.leaseRepo
}

// DepositRepo returns the security deposit repository.
func (s *NoOpTransactionScope) DepositRepo() leasing.SecurityDepositRepository {
	return s.depositRepo
}

// SettlementRepo returns the settlement repository.
func (s *NoOpTransactionScope) SettlementRepo() leasing.SettlementRepository {
	return s.settlementRepo
}

// TenantRepo returns the renter repository.
func (s *NoOpTransactionScope) TenantRepo() leasing.TenantRepository {
	return s.tenantRepo
}

// UnitRepo returns the unit repository.
func (s *NoOpTransactionScope) UnitRepo() leasing.UnitRepository {
	return s.unitRepo
}

// ObligationRepo returns the rent obligation repository.
func (s *NoOpTransactionScope) ObligationRepo() billing.RentObligationRepository {
	return s.obligationRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
