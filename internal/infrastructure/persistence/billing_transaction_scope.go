package persistence

import (
	"context"

	appbilling "github.com/leaseledger/backend/internal/application/billing"
	"github.com/leaseledger/backend/internal/domain/billing"
	"gorm.io/gorm"
)

// GormBillingTransactionScope implements the billing TransactionScope using
// GORM transactions. Verification, the utility merge and the overdue batch
// run their repository operations atomically through it.
type GormBillingTransactionScope struct {
	db *gorm.DB
}

// NewGormBillingTransactionScope creates a new GormBillingTransactionScope.
func NewGormBillingTransactionScope(db *gorm.DB) *GormBillingTransactionScope {
	return &GormBillingTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormBillingTransactionScope) Execute(ctx context.Context, fn func(repos appbilling.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormBillingTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormBillingTransactionalRepositories provides access to the billing
// repositories within a transaction.
type gormBillingTransactionalRepositories struct {
	tx *gorm.DB
}

// ObligationRepo returns the rent obligation repository scoped to the current transaction.
func (r *gormBillingTransactionalRepositories) ObligationRepo() billing.RentObligationRepository {
	return NewGormRentObligationRepository(r.tx)
}

// SubmissionRepo returns the payment submission repository scoped to the current transaction.
func (r *gormBillingTransactionalRepositories) SubmissionRepo() billing.PaymentSubmissionRepository {
	return NewGormPaymentSubmissionRepository(r.tx)
}

// ChargeRepo returns the utility charge repository scoped to the current transaction.
func (r *gormBillingTransactionalRepositories) ChargeRepo() billing.UtilityChargeRepository {
	return NewGormUtilityChargeRepository(r.tx)
}

// Ensure GormBillingTransactionScope implements TransactionScope
var _ appbilling.TransactionScope = (*GormBillingTransactionScope)(nil)

// Ensure gormBillingTransactionalRepositories implements TransactionalRepositories
var _ appbilling.TransactionalRepositories = (*gormBillingTransactionalRepositories)(nil)
