package billing

import (
	"context"

	"github.com/leaseledger/backend/internal/domain/billing"
)

// TransactionScope provides transactional access to billing repositories.
// When a function is executed within a transaction scope, all repository operations
// will be part of the same database transaction and will be committed or rolled back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the billing repositories within
// a transaction. All repositories returned share the same underlying database
// transaction.
//
// Verification and the utility merge mutate a submission or charge together
// with the obligation it resolves against; the scope is what keeps the pair
// (and the obligation's history rows) atomic.
type TransactionalRepositories interface {
	// ObligationRepo returns the rent obligation repository scoped to the current transaction
	ObligationRepo() billing.RentObligationRepository
	// SubmissionRepo returns the payment submission repository scoped to the current transaction
	SubmissionRepo() billing.PaymentSubmissionRepository
	// ChargeRepo returns the utility charge repository scoped to the current transaction
	ChargeRepo() billing.UtilityChargeRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use transactions.
// This is useful for testing or when transaction support is not required.
type NoOpTransactionScope struct {
	obligationRepo billing.RentObligationRepository
	submissionRepo billing.PaymentSubmissionRepository
	chargeRepo     billing.UtilityChargeRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	obligationRepo billing.RentObligationRepository,
	submissionRepo billing.PaymentSubmissionRepository,
	chargeRepo billing.UtilityChargeRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		obligationRepo: obligationRepo,
		submissionRepo: submissionRepo,
		chargeRepo:     chargeRepo,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// ObligationRepo returns the rent obligation repository.
func (s *NoOpTransactionScope) ObligationRepo() billing.RentObligationRepository {
	return s.obligationRepo
}

// SubmissionRepo returns the payment submission repository.
func (s *NoOpTransactionScope) SubmissionRepo() billing.PaymentSubmissionRepository {
	return s.submissionRepo
}

// ChargeRepo returns the utility charge repository.
func (s *NoOpTransactionScope) ChargeRepo() billing.UtilityChargeRepository {
	return s.chargeRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
