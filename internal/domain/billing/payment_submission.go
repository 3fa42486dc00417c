package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/leaseledger/backend/internal/domain/shared"
	"github.com/leaseledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// SubmissionStatus represents the review state of a renter's payment claim
type SubmissionStatus string

const (
	// SubmissionStatusPending means the claim awaits admin review
	SubmissionStatusPending SubmissionStatus = "pending"
	// SubmissionStatusVerified means an admin confirmed the payment
	SubmissionStatusVerified SubmissionStatus = "verified"
	// SubmissionStatusRejected means an admin declined the claim
	SubmissionStatusRejected SubmissionStatus = "rejected"
)

// IsValid checks if the status is a known value
func (s SubmissionStatus) IsValid() bool {
	switch s {
	case SubmissionStatusPending, SubmissionStatusVerified, SubmissionStatusRejected:
		return true
	}
	return false
}

// IsTerminal checks if the submission has been decided
func (s SubmissionStatus) IsTerminal() bool {
	return s == SubmissionStatusVerified || s == SubmissionStatusRejected
}

// PaymentSubmission is a renter's claim of having paid, pending admin
// verification. Verification is the trust boundary: a submission never
// touches an obligation until an admin confirms it.
type PaymentSubmission struct {
	shared.BaseAggregateRoot
	LeaseID              uuid.UUID
	TenantID             uuid.UUID
	Amount               valueobject.Money
	VerifiedAmount       valueobject.Money
	PaymentMethod        string
	TransactionReference string
	TransactionDate      time.Time
	Status               SubmissionStatus
	VerifiedBy           *uuid.UUID
	VerifiedAt           *time.Time
	AdminNotes           string
	AppliedObligationID  *uuid.UUID
}

// NewPaymentSubmission records a renter's payment claim for review.
func NewPaymentSubmission(
	leaseID, tenantID uuid.UUID,
	amount valueobject.Money,
	method, reference string,
	transactionDate time.Time,
) (*PaymentSubmission, error) {
	if leaseID == uuid.Nil {
		return nil, shared.ErrInvalidInput.WithMessage("Lease ID is required")
	}
	if tenantID == uuid.Nil {
		return nil, shared.ErrInvalidInput.WithMessage("Tenant ID is required")
	}
	if !amount.IsPositive() {
		return nil, shared.ErrInvalidAmount.WithMessage("Submitted amount must be positive")
	}
	if strings.TrimSpace(method) == "" {
		return nil, shared.ErrInvalidInput.WithMessage("Payment method is required")
	}
	if strings.TrimSpace(reference) == "" {
		return nil, shared.ErrInvalidInput.WithMessage("Transaction reference is required")
	}
	if transactionDate.IsZero() {
		return nil, shared.ErrInvalidInput.WithMessage("Transaction date is required")
	}

	s := &PaymentSubmission{
		BaseAggregateRoot:    shared.NewBaseAggregateRoot(),
		LeaseID:              leaseID,
		TenantID:             tenantID,
		Amount:               amount,
		VerifiedAmount:       valueobject.Zero(amount.Currency()),
		PaymentMethod:        strings.TrimSpace(method),
		TransactionReference: strings.TrimSpace(reference),
		TransactionDate:      transactionDate,
		Status:               SubmissionStatusPending,
	}

	s.AddDomainEvent(NewPaymentSubmittedEvent(s))
	return s, nil
}

// Verify confirms the claim and binds it to the obligation the payment
// was applied to. The admin may verify less than the submitted amount
// when the evidence only supports part of it, never more.
func (s *PaymentSubmission) Verify(verifier uuid.UUID, verifiedAmount valueobject.Money, notes string, obligationID uuid.UUID) error {
	if s.Status != SubmissionStatusPending {
		return shared.ErrAlreadyProcessed.WithMessage(
			fmt.Sprintf("Submission has already been %s", s.Status))
	}
	if verifier == uuid.Nil {
		return shared.ErrInvalidInput.WithMessage("Verifier is required")
	}
	if obligationID == uuid.Nil {
		return shared.ErrInvalidInput.WithMessage("Applied obligation ID is required")
	}
	if strings.TrimSpace(notes) == "" {
		return shared.ErrInvalidInput.WithMessage("Admin notes are required to verify a submission")
	}
	if !verifiedAmount.IsPositive() {
		return shared.ErrInvalidAmount.WithMessage("Verified amount must be positive")
	}
	if exceeds, err := verifiedAmount.GreaterThan(s.Amount); err != nil {
		return shared.ErrInvalidAmount.WithMessage(fmt.Sprintf("Currency mismatch: %v", err))
	} else if exceeds {
		return shared.ErrInvalidAmount.WithMessage(
			fmt.Sprintf("Verified amount of %s cannot exceed the submitted amount of %s",
				verifiedAmount.String(), s.Amount.String()))
	}

	now := time.Now()
	s.Status = SubmissionStatusVerified
	s.VerifiedAmount = verifiedAmount
	ver := verifier
	s.VerifiedBy = &ver
	s.VerifiedAt = &now
	s.AdminNotes = strings.TrimSpace(notes)
	oid := obligationID
	s.AppliedObligationID = &oid

	s.AddDomainEvent(NewPaymentVerifiedEvent(s))
	s.IncrementVersion()
	return nil
}

// Reject declines the claim with a reason. No obligation is touched.
func (s *PaymentSubmission) Reject(verifier uuid.UUID, reason string) error {
	if s.Status != SubmissionStatusPending {
		return shared.ErrAlreadyProcessed.WithMessage(
			fmt.Sprintf("Submission has already been %s", s.Status))
	}
	if verifier == uuid.Nil {
		return shared.ErrInvalidInput.WithMessage("Verifier is required")
	}
	if strings.TrimSpace(reason) == "" {
		return shared.ErrInvalidInput.WithMessage("Rejection reason is required")
	}

	now := time.Now()
	s.Status = SubmissionStatusRejected
	ver := verifier
	s.VerifiedBy = &ver
	s.VerifiedAt = &now
	s.AdminNotes = strings.TrimSpace(reason)

	s.AddDomainEvent(NewPaymentRejectedEvent(s))
	s.IncrementVersion()
	return nil
}
