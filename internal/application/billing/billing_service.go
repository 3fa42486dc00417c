package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/leaseledger/backend/internal/domain/audit"
	"github.com/leaseledger/backend/internal/domain/billing"
	"github.com/leaseledger/backend/internal/domain/shared"
	"github.com/leaseledger/backend/internal/domain/shared/valueobject"
	"github.com/leaseledger/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BillingService handles rent obligation queries and payment application.
// It is the single place payment amounts turn into status transitions;
// verification and settlement both route money through it or through the
// domain methods it owns.
type BillingService struct {
	obligationRepo  billing.RentObligationRepository
	scope           TransactionScope
	eventBus        shared.EventBus
	activityRepo    audit.ActivityRecordRepository
	businessMetrics *telemetry.BusinessMetrics
	logger          *zap.Logger
}

// NewBillingService creates a new BillingService
func NewBillingService(
	obligationRepo billing.RentObligationRepository,
	scope TransactionScope,
	eventBus shared.EventBus,
	activityRepo audit.ActivityRecordRepository,
	logger *zap.Logger,
) *BillingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BillingService{
		obligationRepo: obligationRepo,
		scope:          scope,
		eventBus:       eventBus,
		activityRepo:   activityRepo,
		logger:         logger,
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *BillingService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// ===================== Obligation Queries =====================

// GetObligation gets a rent obligation by ID
func (s *BillingService) GetObligation(ctx context.Context, id uuid.UUID) (*ObligationResponse, error) {
	obligation, err := s.obligationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if obligation == nil {
		return nil, shared.ErrNotFound.WithMessage("Rent obligation not found")
	}
	return ToObligationResponse(obligation), nil
}

// GetObligationByNumber gets a rent obligation by its obligation number
func (s *BillingService) GetObligationByNumber(ctx context.Context, number string) (*ObligationResponse, error) {
	obligation, err := s.obligationRepo.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if obligation == nil {
		return nil, shared.ErrNotFound.WithMessage("Rent obligation not found")
	}
	return ToObligationResponse(obligation), nil
}

// ListObligations lists obligations with filtering
func (s *BillingService) ListObligations(ctx context.Context, filter ObligationListFilter) ([]ObligationResponse, int64, error) {
	domainFilter := billing.RentObligationFilter{
		LeaseID:     filter.LeaseID,
		TenantID:    filter.TenantID,
		PeriodYear:  filter.PeriodYear,
		PeriodMonth: filter.PeriodMonth,
		DueFrom:     filter.DueFrom,
		DueTo:       filter.DueTo,
	}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	domainFilter.Search = filter.Search

	if filter.Status != "" {
		status := billing.ObligationStatus(filter.Status)
		domainFilter.Status = &status
	}

	obligations, err := s.obligationRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.obligationRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ObligationResponse, len(obligations))
	for i := range obligations {
		responses[i] = *ToObligationResponse(&obligations[i])
	}

	return responses, total, nil
}

// GetObligationHistory returns an obligation's append-only history, oldest first
func (s *BillingService) GetObligationHistory(ctx context.Context, id uuid.UUID) ([]ObligationUpdateResponse, error) {
	obligation, err := s.obligationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if obligation == nil {
		return nil, shared.ErrNotFound.WithMessage("Rent obligation not found")
	}

	updates, err := s.obligationRepo.FindUpdates(ctx, id)
	if err != nil {
		return nil, err
	}

	responses := make([]ObligationUpdateResponse, len(updates))
	for i, u := range updates {
		responses[i] = ToObligationUpdateResponse(u)
	}
	return responses, nil
}

// BillingSummary aggregates obligation counts and the open balance
type BillingSummary struct {
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	PendingCount     int64           `json:"pending_count"`
	OverdueCount     int64           `json:"overdue_count"`
	PartialCount     int64           `json:"partial_count"`
	PaidCount        int64           `json:"paid_count"`
	WrittenOffCount  int64           `json:"written_off_count"`
}

// GetBillingSummary gets portfolio-wide obligation counts by status
func (s *BillingService) GetBillingSummary(ctx context.Context) (*BillingSummary, error) {
	totalOutstanding, err := s.obligationRepo.SumOutstanding(ctx)
	if err != nil {
		return nil, err
	}

	pendingCount, err := s.obligationRepo.CountByStatus(ctx, billing.ObligationStatusPending)
	if err != nil {
		return nil, err
	}

	overdueCount, err := s.obligationRepo.CountByStatus(ctx, billing.ObligationStatusOverdue)
	if err != nil {
		return nil, err
	}

	partialCount, err := s.obligationRepo.CountByStatus(ctx, billing.ObligationStatusPartial)
	if err != nil {
		return nil, err
	}

	paidCount, err := s.obligationRepo.CountByStatus(ctx, billing.ObligationStatusPaid)
	if err != nil {
		return nil, err
	}

	writtenOffCount, err := s.obligationRepo.CountByStatus(ctx, billing.ObligationStatusWrittenOff)
	if err != nil {
		return nil, err
	}

	return &BillingSummary{
		TotalOutstanding: totalOutstanding,
		PendingCount:     pendingCount,
		OverdueCount:     overdueCount,
		PartialCount:     partialCount,
		PaidCount:        paidCount,
		WrittenOffCount:  writtenOffCount,
	}, nil
}

// GetLeaseOutstanding totals the unpaid balance across a lease's open obligations
func (s *BillingService) GetLeaseOutstanding(ctx context.Context, leaseID uuid.UUID) (decimal.Decimal, error) {
	return s.obligationRepo.SumOutstandingByLease(ctx, leaseID)
}

// ===================== Payment Application =====================

// ApplyPaymentRequest represents a request to apply a payment to an obligation
type ApplyPaymentRequest struct {
	ObligationID uuid.UUID
	Amount       decimal.Decimal
	Method       string
	Reference    string
	PaymentDate  time.Time
	Actor        uuid.UUID
	Note         string
}

// ApplyPayment applies a payment amount to a rent obligation. Payments
// accumulate; the derived status comes from the domain aggregate and the
// obligation row plus its history entry persist in one transaction. An
// amount that would overshoot the total due is rejected, not clamped.
func (s *BillingService) ApplyPayment(ctx context.Context, req ApplyPaymentRequest) (*ObligationResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "billing", "apply_payment")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrObligationID, req.ObligationID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
		telemetry.SpanAttrPaymentMethod, req.Method,
	)

	var result *ObligationResponse
	var operationErr error
	telemetry.WithProfilingLabels(ctx, telemetry.BillingOperationLabels(telemetry.OperationApplyPayment, ""), func(c context.Context) {
		if req.Amount.IsNegative() || req.Amount.IsZero() {
			err := shared.ErrInvalidAmount.WithMessage("Payment amount must be positive")
			telemetry.RecordError(span, err)
			operationErr = err
			return
		}

		paymentDate := req.PaymentDate
		if paymentDate.IsZero() {
			paymentDate = time.Now()
		}

		var obligation *billing.RentObligation
		operationErr = s.scope.Execute(c, func(repos TransactionalRepositories) error {
			var err error
			obligation, err = repos.ObligationRepo().FindByID(c, req.ObligationID)
			if err != nil {
				return fmt.Errorf("failed to load obligation: %w", err)
			}
			if obligation == nil {
				return shared.ErrNotFound.WithMessage("Rent obligation not found")
			}

			amount, err := valueobject.NewMoney(req.Amount, obligation.AmountDue.Currency())
			if err != nil {
				return shared.ErrInvalidAmount.WithMessage(err.Error())
			}
			if err := obligation.ApplyPayment(amount, req.Method, req.Reference, paymentDate, req.Actor, req.Note); err != nil {
				return err
			}

			return repos.ObligationRepo().SaveWithLock(c, obligation)
		})
		if operationErr != nil {
			telemetry.RecordError(span, operationErr)
			return
		}

		publishEvents(c, s.eventBus, s.logger, obligation)

		// Record business metrics
		if s.businessMetrics != nil {
			s.businessMetrics.RecordPaymentWithAmount(c, req.Method, telemetry.PaymentSourceDirect, req.Amount)
		}

		actor := req.Actor
		recordActivity(c, s.activityRepo, s.logger, &actor, audit.ActivityPaymentApplied,
			fmt.Sprintf("Applied payment of %s to obligation %s", req.Amount.String(), obligation.ObligationNumber),
			audit.ResourceRentObligation, &obligation.ID,
			map[string]any{
				"amount":    req.Amount.String(),
				"method":    req.Method,
				"reference": req.Reference,
				"status":    string(obligation.Status),
			})

		telemetry.AddEvent(span, "payment_applied",
			telemetry.SpanAttrObligationStatus, string(obligation.Status),
			"amount_paid", obligation.AmountPaid.String(),
		)

		result = ToObligationResponse(obligation)
	})

	return result, operationErr
}

