package leasing

import (
	"context"
	"fmt"
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

// SettlementService runs the offboarding engine: it resolves every open
// obligation of a terminating lease, dispositions the security deposit and
// writes the one durable settlement record, all inside a single store
// transaction. A failure at any step rolls the whole offboarding back; a
// partially settled lease is never observable.
type SettlementService struct {
	leaseRepo       leasing.LeaseRepository
	settlementRepo  leasing.SettlementRepository
	depositRepo     leasing.SecurityDepositRepository
	obligationRepo  billing.RentObligationRepository
	scope           TransactionScope
	eventBus        shared.EventBus
	activityRepo    audit.ActivityRecordRepository
	businessMetrics *telemetry.BusinessMetrics
	logger          *zap.Logger
}

// NewSettlementService creates a new SettlementService
func NewSettlementService(
	leaseRepo leasing.LeaseRepository,
	settlementRepo leasing.SettlementRepository,
	depositRepo leasing.SecurityDepositRepository,
	obligationRepo billing.RentObligationRepository,
	scope TransactionScope,
	eventBus shared.EventBus,
	activityRepo audit.ActivityRecordRepository,
	logger *zap.Logger,
) *SettlementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettlementService{
		leaseRepo:      leaseRepo,
		settlementRepo: settlementRepo,
		depositRepo:    depositRepo,
		obligationRepo: obligationRepo,
		scope:          scope,
		eventBus:       eventBus,
		activityRepo:   activityRepo,
		logger:         logger,
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *SettlementService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// ===================== Queries =====================

// GetSettlement gets a settlement record by ID
func (s *SettlementService) GetSettlement(ctx context.Context, id uuid.UUID) (*SettlementResponse, error) {
	settlement, err := s.settlementRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if settlement == nil {
		return nil, shared.ErrNotFound.WithMessage("Settlement not found")
	}
	return ToSettlementResponse(settlement), nil
}

// GetSettlementByLease gets the settlement recorded for a lease
func (s *SettlementService) GetSettlementByLease(ctx context.Context, leaseID uuid.UUID) (*SettlementResponse, error) {
	settlement, err := s.settlementRepo.FindByLease(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	if settlement == nil {
		return nil, shared.ErrNotFound.WithMessage("Lease has not been settled")
	}
	return ToSettlementResponse(settlement), nil
}

// ListSettlements lists settlement records with filtering
func (s *SettlementService) ListSettlements(ctx context.Context, filter SettlementListFilter) ([]SettlementResponse, int64, error) {
	domainFilter := leasing.SettlementFilter{
		TenantID: filter.TenantID,
		UnitID:   filter.UnitID,
		FromDate: filter.FromDate,
		ToDate:   filter.ToDate,
	}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize

	settlements, err := s.settlementRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.settlementRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]SettlementResponse, len(settlements))
	for i := range settlements {
		responses[i] = *ToSettlementResponse(&settlements[i])
	}
	return responses, total, nil
}

// ===================== Preview =====================

// PreviewSettlement produces a read-only move-out statement: the lease's
// open obligations with their rent balances and the deposit currently
// held. Nothing is mutated; admins use this before committing a
// settlement.
func (s *SettlementService) PreviewSettlement(ctx context.Context, leaseID uuid.UUID) (*SettlementPreviewResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "leasing", "preview_settlement")
	defer span.End()

	telemetry.SetAttributes(span, telemetry.SpanAttrLeaseID, leaseID.String())

	var result *SettlementPreviewResponse
	var operationErr error
	telemetry.WithProfilingLabels(ctx, telemetry.BillingOperationLabels(telemetry.OperationSettleLease, "preview"), func(c context.Context) {
		lease, err := s.leaseRepo.FindByID(c, leaseID)
		if err != nil {
			operationErr = fmt.Errorf("failed to load lease: %w", err)
			telemetry.RecordError(span, operationErr)
			return
		}
		if lease == nil {
			operationErr = shared.ErrNotFound.WithMessage("Lease not found")
			telemetry.RecordError(span, operationErr)
			return
		}

		unpaid, err := s.obligationRepo.FindUnpaidByLease(c, leaseID)
		if err != nil {
			operationErr = fmt.Errorf("failed to load unpaid obligations: %w", err)
			telemetry.RecordError(span, operationErr)
			return
		}

		depositHeld := decimal.Zero
		deposit, err := s.depositRepo.FindByLease(c, leaseID)
		if err != nil {
			operationErr = fmt.Errorf("failed to load deposit: %w", err)
			telemetry.RecordError(span, operationErr)
			return
		}
		if deposit != nil && deposit.Status == leasing.DepositStatusHeld {
			depositHeld = deposit.AmountCollected.Amount()
		}

		totalUnpaidRent := decimal.Zero
		previews := make([]UnpaidObligationPreview, len(unpaid))
		for i := range unpaid {
			o := &unpaid[i]
			balance := o.RentBalance().Amount()
			totalUnpaidRent = totalUnpaidRent.Add(balance)
			previews[i] = UnpaidObligationPreview{
				ObligationID:     o.ID,
				ObligationNumber: o.ObligationNumber,
				PeriodYear:       o.PeriodYear,
				PeriodMonth:      o.PeriodMonth,
				Status:           string(o.Status),
				TotalDue:         o.TotalDue().Amount(),
				AmountPaid:       o.AmountPaid.Amount(),
				RentBalance:      balance,
			}
		}

		result = &SettlementPreviewResponse{
			LeaseID:         lease.ID,
			LeaseNumber:     lease.LeaseNumber,
			DepositHeld:     depositHeld,
			TotalUnpaidRent: totalUnpaidRent,
			Currency:        string(lease.MonthlyRent.Currency()),
			Obligations:     previews,
		}
	})

	return result, operationErr
}

// ===================== Settle =====================

// SettleLeaseRequest represents an admin offboarding a lease
type SettleLeaseRequest struct {
	LeaseID            uuid.UUID
	MoveOutDate        time.Time
	Deductions         []DeductionLinePayload
	UnpaidRentHandling string
	Notes              string
	Actor              uuid.UUID
}

// settlementOutcome carries the aggregates mutated inside the settlement
// transaction out to post-commit publication.
type settlementOutcome struct {
	settlement  *leasing.Settlement
	lease       *leasing.Lease
	tenant      *leasing.Tenant
	unit        *leasing.Unit
	deposit     *leasing.SecurityDeposit
	obligations []*billing.RentObligation
	unpaidRent  decimal.Decimal
}

// SettleLease runs the offboarding for an active lease: open obligations
// are resolved per the chosen handling (deducted from the deposit or
// written off as debt), the lease terminates, the renter detaches, the
// unit frees, the deposit is finalized and one settlement record is
// written. All of it commits or none of it does.
func (s *SettlementService) SettleLease(ctx context.Context, req SettleLeaseRequest) (*SettlementResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "leasing", "settle_lease")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrLeaseID, req.LeaseID.String(),
		"unpaid_rent_handling", req.UnpaidRentHandling,
	)

	var result *SettlementResponse
	var operationErr error
	telemetry.WithProfilingLabels(ctx, telemetry.BillingOperationLabels(telemetry.OperationSettleLease, ""), func(c context.Context) {
		handling := leasing.UnpaidRentHandling(req.UnpaidRentHandling)
		if !handling.IsValid() {
			err := shared.ErrInvalidInput.WithMessage("Unpaid rent handling must be deduct or writeoff")
			telemetry.RecordError(span, err)
			operationErr = err
			return
		}
		if req.MoveOutDate.IsZero() {
			err := shared.ErrInvalidInput.WithMessage("Move-out date is required")
			telemetry.RecordError(span, err)
			operationErr = err
			return
		}
		requested := toDeductionItems(req.Deductions)
		if err := requested.Validate(); err != nil {
			telemetry.RecordError(span, err)
			operationErr = err
			return
		}

		var outcome *settlementOutcome
		operationErr = s.scope.Execute(c, func(repos TransactionalRepositories) error {
			var err error
			outcome, err = s.settleWithinTx(c, repos, req, handling, requested)
			return err
		})
		if operationErr != nil {
			telemetry.RecordError(span, operationErr)
			return
		}

		for _, obligation := range outcome.obligations {
			publishEvents(c, s.eventBus, s.logger, obligation)
		}
		publishEvents(c, s.eventBus, s.logger, outcome.lease)
		publishEvents(c, s.eventBus, s.logger, outcome.tenant)
		publishEvents(c, s.eventBus, s.logger, outcome.deposit)
		publishEvents(c, s.eventBus, s.logger, outcome.settlement)

		// Record business metrics
		if s.businessMetrics != nil && handling == leasing.UnpaidRentDeduct && outcome.unpaidRent.IsPositive() {
			s.businessMetrics.RecordPaymentWithAmount(c, billing.PaymentMethodDepositDeduction, telemetry.PaymentSourceSettlement, outcome.unpaidRent)
		}

		s.recordSettlementActivities(c, req, outcome)

		telemetry.AddEvent(span, "settlement_completed",
			telemetry.SpanAttrSettlementID, outcome.settlement.ID.String(),
			telemetry.SpanAttrDepositStatus, string(outcome.settlement.DepositStatus),
		)

		s.logger.Info("Settled lease",
			zap.String("lease_number", outcome.lease.LeaseNumber),
			zap.String("handling", string(handling)),
			zap.String("total_unpaid_rent", outcome.unpaidRent.String()),
			zap.String("refund_amount", outcome.settlement.RefundAmount.Amount().String()),
			zap.String("deposit_status", string(outcome.settlement.DepositStatus)),
		)

		result = ToSettlementResponse(outcome.settlement)
	})

	return result, operationErr
}

// settleWithinTx performs every settlement step that must commit
// atomically. The deduction total is checked against the deposit before
// any aggregate is touched so a rejected settlement leaves no trace.
func (s *SettlementService) settleWithinTx(
	ctx context.Context,
	repos TransactionalRepositories,
	req SettleLeaseRequest,
	handling leasing.UnpaidRentHandling,
	requested leasing.DeductionItems,
) (*settlementOutcome, error) {
	lease, err := repos.LeaseRepo().FindByID(ctx, req.LeaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lease: %w", err)
	}
	if lease == nil {
		return nil, shared.ErrNotFound.WithMessage("Lease not found")
	}
	if !lease.IsActive() {
		return nil, shared.ErrInvalidState.WithMessage(
			fmt.Sprintf("Cannot settle a %s lease", lease.Status))
	}

	deposit, err := repos.DepositRepo().FindByLease(ctx, lease.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load deposit: %w", err)
	}
	if deposit == nil {
		return nil, shared.ErrNotFound.WithMessage("No deposit held for this lease")
	}

	tenant, err := repos.TenantRepo().FindByID(ctx, lease.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant: %w", err)
	}
	if tenant == nil {
		return nil, shared.ErrNotFound.WithMessage("Tenant not found")
	}

	unit, err := repos.UnitRepo().FindByID(ctx, lease.UnitID)
	if err != nil {
		return nil, fmt.Errorf("failed to load unit: %w", err)
	}
	if unit == nil {
		return nil, shared.ErrNotFound.WithMessage("Unit not found")
	}

	open, err := repos.ObligationRepo().FindUnpaidByLeaseForUpdate(ctx, lease.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load unpaid obligations: %w", err)
	}

	currency := deposit.AmountCollected.Currency()
	totalUnpaidRent := decimal.Zero
	for i := range open {
		totalUnpaidRent = totalUnpaidRent.Add(open[i].RentBalance().Amount())
	}

	items := requested
	if handling == leasing.UnpaidRentDeduct && totalUnpaidRent.IsPositive() {
		items = append(items, leasing.DeductionItem{
			Description: leasing.DeductionUnpaidRentSettlement,
			Amount:      totalUnpaidRent,
		})
	}

	totalDeductions, err := valueobject.NewMoney(items.Total(), currency)
	if err != nil {
		return nil, shared.ErrInvalidAmount.WithMessage(err.Error())
	}
	totalUnpaidMoney, err := valueobject.NewMoney(totalUnpaidRent, currency)
	if err != nil {
		return nil, shared.ErrInvalidAmount.WithMessage(err.Error())
	}
	// Reject before any aggregate mutates: a settlement the deposit cannot
	// cover must leave lease, obligations and deposit exactly as they were.
	if exceeds, _ := totalDeductions.GreaterThan(deposit.AmountCollected); exceeds {
		return nil, shared.ErrInvalidState.WithMessage(
			fmt.Sprintf("Deductions of %s exceed the %s deposit held", totalDeductions.String(), deposit.AmountCollected.String()))
	}

	outcome := &settlementOutcome{
		lease:      lease,
		tenant:     tenant,
		unit:       unit,
		deposit:    deposit,
		unpaidRent: totalUnpaidRent,
	}

	var settledCount, writtenOffCount int
	if totalUnpaidRent.IsPositive() {
		for i := range open {
			obligation := &open[i]
			switch handling {
			case leasing.UnpaidRentDeduct:
				if err := obligation.SettleByDeduction(req.MoveOutDate, req.Actor); err != nil {
					return nil, err
				}
				settledCount++
			case leasing.UnpaidRentWriteOff:
				if err := obligation.WriteOff(req.Actor, "Unpaid rent written off at settlement"); err != nil {
					return nil, err
				}
				writtenOffCount++
			}
			if err := repos.ObligationRepo().SaveWithLock(ctx, obligation); err != nil {
				return nil, fmt.Errorf("failed to save obligation: %w", err)
			}
			outcome.obligations = append(outcome.obligations, obligation)
		}
		if handling == leasing.UnpaidRentWriteOff {
			tenant.FlagDebt(totalUnpaidMoney)
		}
	}

	if err := lease.Terminate(req.MoveOutDate); err != nil {
		return nil, err
	}
	tenant.DetachLease()
	unit.Release()

	if err := deposit.Finalize(items, req.MoveOutDate); err != nil {
		return nil, err
	}

	settlement, err := leasing.NewSettlement(
		lease.ID,
		lease.TenantID,
		lease.UnitID,
		req.MoveOutDate,
		handling,
		totalUnpaidMoney,
		items,
		totalDeductions,
		deposit.AmountCollected,
		deposit.AmountReturned,
		deposit.Status,
		settledCount,
		writtenOffCount,
		req.Actor,
		req.Notes,
	)
	if err != nil {
		return nil, err
	}
	outcome.settlement = settlement

	if err := repos.LeaseRepo().SaveWithLock(ctx, lease); err != nil {
		return nil, fmt.Errorf("failed to save lease: %w", err)
	}
	if err := repos.TenantRepo().SaveWithLock(ctx, tenant); err != nil {
		return nil, fmt.Errorf("failed to save tenant: %w", err)
	}
	if err := repos.UnitRepo().SaveWithLock(ctx, unit); err != nil {
		return nil, fmt.Errorf("failed to save unit: %w", err)
	}
	if err := repos.DepositRepo().SaveWithLock(ctx, deposit); err != nil {
		return nil, fmt.Errorf("failed to save deposit: %w", err)
	}
	if err := repos.SettlementRepo().Save(ctx, settlement); err != nil {
		return nil, fmt.Errorf("failed to save settlement: %w", err)
	}

	return outcome, nil
}

// recordSettlementActivities appends the audit entries for a committed
// settlement. The settlement row itself is the durable record; these
// entries only index it into the activity trail.
func (s *SettlementService) recordSettlementActivities(ctx context.Context, req SettleLeaseRequest, outcome *settlementOutcome) {
	actor := req.Actor
	recordActivity(ctx, s.activityRepo, s.logger, &actor, audit.ActivitySettlementCompleted,
		fmt.Sprintf("Settled lease %s with %s refund", outcome.lease.LeaseNumber, outcome.settlement.RefundAmount.String()),
		audit.ResourceSettlement, &outcome.settlement.ID,
		map[string]any{
			"lease_number":     outcome.lease.LeaseNumber,
			"handling":         string(outcome.settlement.UnpaidRentHandling),
			"total_deductions": outcome.settlement.TotalDeductions.Amount().String(),
			"refund_amount":    outcome.settlement.RefundAmount.Amount().String(),
			"deposit_status":   string(outcome.settlement.DepositStatus),
		})

	if outcome.settlement.UnpaidRentHandling == leasing.UnpaidRentWriteOff && outcome.unpaidRent.IsPositive() {
		recordActivity(ctx, s.activityRepo, s.logger, &actor, audit.ActivityTenantDebtRecorded,
			fmt.Sprintf("Recorded unrecovered debt of %s for tenant %s", outcome.unpaidRent.String(), outcome.tenant.FullName),
			audit.ResourceTenant, &outcome.tenant.ID,
			map[string]any{
				"lease_number":      outcome.lease.LeaseNumber,
				"unrecovered_total": outcome.unpaidRent.String(),
				"written_off":       outcome.settlement.WrittenOffObligations,
			})
	}
}
