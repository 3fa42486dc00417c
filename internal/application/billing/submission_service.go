package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/leaseledger/backend/internal/domain/audit"
	"github.com/leaseledger/backend/internal/domain/billing"
	"github.com/leaseledger/backend/internal/domain/leasing"
	"github.com/leaseledger/backend/internal/domain/shared"
	"github.com/leaseledger/backend/internal/domain/shared/valueobject"
	"github.com/leaseledger/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SubmissionService handles the payment verification workflow. A renter's
// submission is a claim, not money; only admin verification moves it into
// an obligation, and a decided submission is never decided again.
type SubmissionService struct {
	submissionRepo  billing.PaymentSubmissionRepository
	obligationRepo  billing.RentObligationRepository
	leaseRepo       leasing.LeaseRepository
	tenantRepo      leasing.TenantRepository
	scope           TransactionScope
	eventBus        shared.EventBus
	activityRepo    audit.ActivityRecordRepository
	businessMetrics *telemetry.BusinessMetrics
	logger          *zap.Logger
}

// NewSubmissionService creates a new SubmissionService
func NewSubmissionService(
	submissionRepo billing.PaymentSubmissionRepository,
	obligationRepo billing.RentObligationRepository,
	leaseRepo leasing.LeaseRepository,
	tenantRepo leasing.TenantRepository,
	scope TransactionScope,
	eventBus shared.EventBus,
	activityRepo audit.ActivityRecordRepository,
	logger *zap.Logger,
) *SubmissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubmissionService{
		submissionRepo: submissionRepo,
		obligationRepo: obligationRepo,
		leaseRepo:      leaseRepo,
		tenantRepo:     tenantRepo,
		scope:          scope,
		eventBus:       eventBus,
		activityRepo:   activityRepo,
		logger:         logger,
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *SubmissionService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// ===================== Submission Queries =====================

// GetSubmission gets a payment submission by ID
func (s *SubmissionService) GetSubmission(ctx context.Context, id uuid.UUID) (*SubmissionResponse, error) {
	submission, err := s.submissionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if submission == nil {
		return nil, shared.ErrNotFound.WithMessage("Payment submission not found")
	}
	return ToSubmissionResponse(submission), nil
}

// ListSubmissions lists submissions with filtering
func (s *SubmissionService) ListSubmissions(ctx context.Context, filter SubmissionListFilter) ([]SubmissionResponse, int64, error) {
	domainFilter := billing.PaymentSubmissionFilter{
		LeaseID:  filter.LeaseID,
		TenantID: filter.TenantID,
		FromDate: filter.FromDate,
		ToDate:   filter.ToDate,
	}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	domainFilter.Search = filter.Search

	if filter.Status != "" {
		status := billing.SubmissionStatus(filter.Status)
		domainFilter.Status = &status
	}
	if filter.Method != "" {
		method := filter.Method
		domainFilter.Method = &method
	}

	submissions, err := s.submissionRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.submissionRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]SubmissionResponse, len(submissions))
	for i := range submissions {
		responses[i] = *ToSubmissionResponse(&submissions[i])
	}
	return responses, total, nil
}

// ListPendingSubmissions lists submissions awaiting review
func (s *SubmissionService) ListPendingSubmissions(ctx context.Context, filter SubmissionListFilter) ([]SubmissionResponse, error) {
	domainFilter := billing.PaymentSubmissionFilter{
		LeaseID:  filter.LeaseID,
		TenantID: filter.TenantID,
	}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize

	submissions, err := s.submissionRepo.FindPending(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]SubmissionResponse, len(submissions))
	for i := range submissions {
		responses[i] = *ToSubmissionResponse(&submissions[i])
	}
	return responses, nil
}

// ===================== Submit =====================

// SubmitPaymentRequest represents a renter filing payment evidence
type SubmitPaymentRequest struct {
	LeaseID         uuid.UUID
	TenantID        uuid.UUID
	Amount          decimal.Decimal
	Method          string
	Reference       string
	TransactionDate time.Time
}

// Submit records a renter's payment claim for admin review. The claim
// must come from the lease's own tenant against an active lease, and a
// transaction reference that was already verified for this tenant is
// rejected up front.
func (s *SubmissionService) Submit(ctx context.Context, req SubmitPaymentRequest) (*SubmissionResponse, error) {
	lease, err := s.leaseRepo.FindByID(ctx, req.LeaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lease: %w", err)
	}
	if lease == nil {
		return nil, shared.ErrNotFound.WithMessage("Lease not found")
	}
	if !lease.IsActive() {
		return nil, shared.ErrConflict.WithMessage("Payments can only be submitted against an active lease")
	}
	if req.TenantID != lease.TenantID {
		return nil, shared.ErrForbidden.WithMessage("Submission must come from the lease's tenant")
	}

	reference := strings.TrimSpace(req.Reference)
	duplicate, err := s.submissionRepo.ExistsVerifiedReference(ctx, lease.TenantID, reference, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check transaction reference: %w", err)
	}
	if duplicate {
		return nil, shared.ErrConflict.WithMessage(
			fmt.Sprintf("Transaction reference %s has already been verified for this tenant", reference))
	}

	amount, err := valueobject.NewMoney(req.Amount, lease.MonthlyRent.Currency())
	if err != nil {
		return nil, shared.ErrInvalidAmount.WithMessage(err.Error())
	}
	submission, err := billing.NewPaymentSubmission(
		lease.ID,
		lease.TenantID,
		amount,
		req.Method,
		reference,
		req.TransactionDate,
	)
	if err != nil {
		return nil, err
	}

	if err := s.submissionRepo.Save(ctx, submission); err != nil {
		return nil, fmt.Errorf("failed to save submission: %w", err)
	}

	publishEvents(ctx, s.eventBus, s.logger, submission)

	tenantID := lease.TenantID
	recordActivity(ctx, s.activityRepo, s.logger, &tenantID, audit.ActivityPaymentSubmitted,
		fmt.Sprintf("Submitted payment of %s for lease %s", req.Amount.String(), lease.LeaseNumber),
		audit.ResourcePaymentSubmission, &submission.ID,
		map[string]any{
			"amount":    req.Amount.String(),
			"method":    submission.PaymentMethod,
			"reference": submission.TransactionReference,
		})

	return ToSubmissionResponse(submission), nil
}

// ===================== Verify =====================

// VerifyRequest represents an admin confirming a payment submission.
// A zero VerifiedAmount means the full submitted amount.
type VerifyRequest struct {
	SubmissionID   uuid.UUID
	VerifiedAmount decimal.Decimal
	AdminNotes     string
	Actor          uuid.UUID
}

// Verify confirms a pending submission and applies the verified amount to
// the lease's oldest open obligation. Submission and obligation persist in
// one transaction; the obligation rows are read under a row lock so a
// racing verification cannot double-apply the same claim.
func (s *SubmissionService) Verify(ctx context.Context, req VerifyRequest) (*SubmissionResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "billing", "verify_submission")
	defer span.End()

	telemetry.SetAttributes(span, telemetry.SpanAttrSubmissionID, req.SubmissionID.String())

	var requestedAmount *decimal.Decimal
	if !req.VerifiedAmount.IsZero() {
		amount := req.VerifiedAmount
		requestedAmount = &amount
		telemetry.SetAttributes(span, telemetry.SpanAttrAmount, amount.String())
	}

	var result *SubmissionResponse
	var operationErr error
	telemetry.WithProfilingLabels(ctx, telemetry.BillingOperationLabels(telemetry.OperationVerifySubmission, ""), func(c context.Context) {
		if strings.TrimSpace(req.AdminNotes) == "" {
			err := shared.ErrInvalidInput.WithMessage("Admin notes are required to verify a submission")
			telemetry.RecordError(span, err)
			operationErr = err
			return
		}

		var submission *billing.PaymentSubmission
		var obligation *billing.RentObligation
		operationErr = s.scope.Execute(c, func(repos TransactionalRepositories) error {
			var err error
			submission, obligation, err = s.verifyWithinTx(c, repos, req.SubmissionID, requestedAmount, req.AdminNotes, req.Actor)
			return err
		})
		if operationErr != nil {
			telemetry.RecordError(span, operationErr)
			return
		}

		publishEvents(c, s.eventBus, s.logger, submission)
		publishEvents(c, s.eventBus, s.logger, obligation)

		// Record business metrics
		if s.businessMetrics != nil {
			s.businessMetrics.RecordSubmissionReviewed(c, telemetry.SubmissionOutcomeVerified)
			s.businessMetrics.RecordPaymentWithAmount(c, submission.PaymentMethod, telemetry.PaymentSourceSubmission, submission.VerifiedAmount.Amount())
		}

		actor := req.Actor
		recordActivity(c, s.activityRepo, s.logger, &actor, audit.ActivityPaymentVerified,
			fmt.Sprintf("Verified payment of %s against obligation %s", submission.VerifiedAmount.String(), obligation.ObligationNumber),
			audit.ResourcePaymentSubmission, &submission.ID,
			map[string]any{
				"verified_amount":   submission.VerifiedAmount.String(),
				"obligation_number": obligation.ObligationNumber,
				"reference":         submission.TransactionReference,
			})

		telemetry.AddEvent(span, "submission_verified",
			telemetry.SpanAttrObligationNumber, obligation.ObligationNumber,
			telemetry.SpanAttrObligationStatus, string(obligation.Status),
		)

		result = ToSubmissionResponse(submission)
	})

	return result, operationErr
}

// verifyWithinTx runs the verification checks and mutations that must sit
// inside the store transaction. A nil verifiedAmount means the full
// submitted amount. The caller publishes events and records activity
// after commit.
func (s *SubmissionService) verifyWithinTx(
	ctx context.Context,
	repos TransactionalRepositories,
	submissionID uuid.UUID,
	verifiedAmount *decimal.Decimal,
	adminNotes string,
	actor uuid.UUID,
) (*billing.PaymentSubmission, *billing.RentObligation, error) {
	submission, err := repos.SubmissionRepo().FindByID(ctx, submissionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load submission: %w", err)
	}
	if submission == nil {
		return nil, nil, shared.ErrNotFound.WithMessage("Payment submission not found")
	}
	if submission.Status != billing.SubmissionStatusPending {
		return nil, nil, shared.ErrAlreadyProcessed.WithMessage(
			fmt.Sprintf("Submission has already been %s", submission.Status))
	}

	lease, err := s.leaseRepo.FindByID(ctx, submission.LeaseID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load lease: %w", err)
	}
	if lease == nil {
		return nil, nil, shared.ErrNotFound.WithMessage("Lease not found")
	}
	if !lease.IsActive() {
		return nil, nil, shared.ErrConflict.WithMessage("Lease is no longer active")
	}

	tenant, err := s.tenantRepo.FindByID(ctx, submission.TenantID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load tenant: %w", err)
	}
	if tenant == nil {
		return nil, nil, shared.ErrNotFound.WithMessage("Tenant not found")
	}
	if tenant.IsSeverelyBlacklisted() {
		return nil, nil, shared.ErrConflict.WithMessage("Tenant is severely blacklisted; payments cannot be verified")
	}

	open, err := repos.ObligationRepo().FindOpenByLeaseForUpdate(ctx, submission.LeaseID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load open obligations: %w", err)
	}
	if len(open) == 0 {
		return nil, nil, shared.ErrConflict.WithMessage("Lease has no open obligations to apply the payment to")
	}

	duplicate, err := repos.SubmissionRepo().ExistsVerifiedReference(ctx, submission.TenantID, submission.TransactionReference, submission.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check transaction reference: %w", err)
	}
	if duplicate {
		return nil, nil, shared.ErrConflict.WithMessage(
			fmt.Sprintf("Transaction reference %s has already been verified for this tenant", submission.TransactionReference))
	}

	amountValue := submission.Amount.Amount()
	if verifiedAmount != nil {
		amountValue = *verifiedAmount
	}
	amount, err := valueobject.NewMoney(amountValue, submission.Amount.Currency())
	if err != nil {
		return nil, nil, shared.ErrInvalidAmount.WithMessage(err.Error())
	}

	// Oldest open obligation by due date takes the payment
	obligation := &open[0]
	if err := submission.Verify(actor, amount, adminNotes, obligation.ID); err != nil {
		return nil, nil, err
	}

	// The applied payment carries the submission's reference and transaction
	// date so the ledger entry can be re-derived from the bank side.
	if err := obligation.ApplyPayment(
		amount,
		submission.PaymentMethod,
		submission.TransactionReference,
		submission.TransactionDate,
		actor,
		"Verified payment submission",
	); err != nil {
		return nil, nil, err
	}

	if err := repos.SubmissionRepo().SaveWithLock(ctx, submission); err != nil {
		return nil, nil, fmt.Errorf("failed to save submission: %w", err)
	}
	if err := repos.ObligationRepo().SaveWithLock(ctx, obligation); err != nil {
		return nil, nil, fmt.Errorf("failed to save obligation: %w", err)
	}

	return submission, obligation, nil
}

// ===================== Reject =====================

// RejectRequest represents an admin declining a payment submission
type RejectRequest struct {
	SubmissionID uuid.UUID
	Reason       string
	Actor        uuid.UUID
}

// Reject declines a pending submission with a reason. No obligation is
// touched; the rejection reaches the renter as an urgent notification.
func (s *SubmissionService) Reject(ctx context.Context, req RejectRequest) (*SubmissionResponse, error) {
	submission, err := s.submissionRepo.FindByID(ctx, req.SubmissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load submission: %w", err)
	}
	if submission == nil {
		return nil, shared.ErrNotFound.WithMessage("Payment submission not found")
	}

	if err := submission.Reject(req.Actor, req.Reason); err != nil {
		return nil, err
	}

	if err := s.submissionRepo.SaveWithLock(ctx, submission); err != nil {
		return nil, fmt.Errorf("failed to save submission: %w", err)
	}

	publishEvents(ctx, s.eventBus, s.logger, submission)

	// Record business metrics
	if s.businessMetrics != nil {
		s.businessMetrics.RecordSubmissionReviewed(ctx, telemetry.SubmissionOutcomeRejected)
	}

	actor := req.Actor
	recordActivity(ctx, s.activityRepo, s.logger, &actor, audit.ActivityPaymentRejected,
		fmt.Sprintf("Rejected payment submission of %s", submission.Amount.String()),
		audit.ResourcePaymentSubmission, &submission.ID,
		map[string]any{
			"reason":    submission.AdminNotes,
			"reference": submission.TransactionReference,
		})

	return ToSubmissionResponse(submission), nil
}

// ===================== Bulk Verify =====================

// BulkVerifyRequest represents verifying a batch of submissions at their
// full submitted amounts
type BulkVerifyRequest struct {
	SubmissionIDs []uuid.UUID
	AdminNotes    string
	Actor         uuid.UUID
}

// BulkVerifyResult reports a committed bulk verification
type BulkVerifyResult struct {
	VerifiedCount int             `json:"verified_count"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// BulkVerify verifies a batch of submissions all-or-nothing. A precheck
// fails the whole batch fast when any id is missing or already decided;
// the batch then re-runs the full verification per item inside one store
// transaction, where the obligation row locks close the race the precheck
// cannot.
func (s *SubmissionService) BulkVerify(ctx context.Context, req BulkVerifyRequest) (*BulkVerifyResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "billing", "bulk_verify_submissions")
	defer span.End()

	telemetry.SetAttributes(span, "submission_count", len(req.SubmissionIDs))

	var result *BulkVerifyResult
	var operationErr error
	telemetry.WithProfilingLabels(ctx, telemetry.BillingOperationLabels(telemetry.OperationVerifySubmission, "bulk"), func(c context.Context) {
		if len(req.SubmissionIDs) == 0 {
			err := shared.ErrInvalidInput.WithMessage("At least one submission is required")
			telemetry.RecordError(span, err)
			operationErr = err
			return
		}
		if strings.TrimSpace(req.AdminNotes) == "" {
			err := shared.ErrInvalidInput.WithMessage("Admin notes are required to verify a submission")
			telemetry.RecordError(span, err)
			operationErr = err
			return
		}

		if err := s.precheckBatch(c, req.SubmissionIDs); err != nil {
			telemetry.RecordError(span, err)
			operationErr = err
			return
		}

		verified := make([]*billing.PaymentSubmission, 0, len(req.SubmissionIDs))
		obligations := make(map[uuid.UUID]*billing.RentObligation)
		total := decimal.Zero

		operationErr = s.scope.Execute(c, func(repos TransactionalRepositories) error {
			for _, id := range req.SubmissionIDs {
				submission, obligation, err := s.verifyWithinTx(c, repos, id, nil, req.AdminNotes, req.Actor)
				if err != nil {
					return err
				}

				verified = append(verified, submission)
				obligations[obligation.ID] = obligation
				total = total.Add(submission.VerifiedAmount.Amount())
			}
			return nil
		})
		if operationErr != nil {
			telemetry.RecordError(span, operationErr)
			return
		}

		for _, submission := range verified {
			publishEvents(c, s.eventBus, s.logger, submission)
			if s.businessMetrics != nil {
				s.businessMetrics.RecordSubmissionReviewed(c, telemetry.SubmissionOutcomeVerified)
				s.businessMetrics.RecordPaymentWithAmount(c, submission.PaymentMethod, telemetry.PaymentSourceSubmission, submission.VerifiedAmount.Amount())
			}
		}
		for _, obligation := range obligations {
			publishEvents(c, s.eventBus, s.logger, obligation)
		}

		actor := req.Actor
		recordActivity(c, s.activityRepo, s.logger, &actor, audit.ActivityPaymentVerified,
			fmt.Sprintf("Bulk verified %d payment submissions totalling %s", len(verified), total.String()),
			audit.ResourcePaymentSubmission, nil,
			map[string]any{
				"verified_count": len(verified),
				"total_amount":   total.String(),
			})

		s.logger.Info("Completed bulk verification",
			zap.Int("verified", len(verified)),
			zap.String("total_amount", total.String()),
		)

		result = &BulkVerifyResult{
			VerifiedCount: len(verified),
			TotalAmount:   total,
		}
	})

	return result, operationErr
}

// precheckBatch fast-fails a bulk verification when any submission is
// missing or already decided. Point-in-time only; the transactional row
// locks are what close the race window.
func (s *SubmissionService) precheckBatch(ctx context.Context, ids []uuid.UUID) error {
	submissions, err := s.submissionRepo.FindByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to load submissions: %w", err)
	}

	found := make(map[uuid.UUID]*billing.PaymentSubmission, len(submissions))
	for i := range submissions {
		found[submissions[i].ID] = &submissions[i]
	}

	for _, id := range ids {
		submission, ok := found[id]
		if !ok {
			return shared.ErrNotFound.WithMessage(
				fmt.Sprintf("Payment submission %s not found", id))
		}
		if submission.Status != billing.SubmissionStatusPending {
			return shared.ErrAlreadyProcessed.WithMessage(
				fmt.Sprintf("Submission %s has already been %s", id, submission.Status))
		}
	}
	return nil
}
