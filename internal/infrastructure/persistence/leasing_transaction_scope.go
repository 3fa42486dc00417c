package persistence

import (
	"context"

	appleasing "github.com/leaseledger/backend/internal/application/leasing"
	"github.com/leaseledger/backend/internal/domain/billing"
	"github.com/leaseledger/backend/internal/domain/leasing"
	"gorm.io/gorm"
)

// GormLeasingTransactionScope implements the leasing TransactionScope using
// GORM transactions. Lease activation and settlement span several aggregates
// and run their repository operations atomically through it.
type GormLeasingTransactionScope struct {
	db *gorm.DB
}

// NewGormLeasingTransactionScope creates a new GormLeasingTransactionScope.
func NewGormLeasingTransactionScope(db *gorm.DB) *GormLeasingTransactionScope {
	return &GormLeasingTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormLeasingTransactionScope) Execute(ctx context.Context, fn func(repos appleasing.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormLeasingTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormLeasingTransactionalRepositories provides access to the leasing
// repositories within a transaction.
type gormLeasingTransactionalRepositories struct {
	tx *gorm.DB
}

// LeaseRepo returns the lease repository scoped to the current transaction.
func (r *gormLeasingTransactionalRepositories) LeaseRepo() leasing.LeaseRepository {
	return NewGormLeaseRepository(r.tx)
}

// DepositRepo returns the security deposit repository scoped to the current transaction.
func (r *gormLeasingTransactionalRepositories) DepositRepo() leasing.SecurityDepositRepository {
	return NewGormSecurityDepositRepository(r.tx)
}

// SettlementRepo returns the settlement repository scoped to the current transaction.
func (r *gormLeasingTransactionalRepositories) SettlementRepo() leasing.SettlementRepository {
	return NewGormSettlementRepository(r.tx)
}

// TenantRepo returns the renter repository scoped to the current transaction.
func (r *gormLeasingTransactionalRepositories) TenantRepo() leasing.TenantRepository {
	return NewGormTenantRepository(r.tx)
}

// UnitRepo returns the unit repository scoped to the current transaction.
func (r *gormLeasingTransactionalRepositories) UnitRepo() leasing.UnitRepository {
	return NewGormUnitRepository(r.tx)
}

// ObligationRepo returns the rent obligation repository scoped to the current transaction.
func (r *gormLeasingTransactionalRepositories) ObligationRepo() billing.RentObligationRepository {
	return NewGormRentObligationRepository(r.tx)
}

// Ensure GormLeasingTransactionScope implements TransactionScope
var _ appleasing.TransactionScope = (*GormLeasingTransactionScope)(nil)

// Ensure gormLeasingTransactionalRepositories implements TransactionalRepositories
var _ appleasing.TransactionalRepositories = (*gormLeasingTransactionalRepositories)(nil)
