package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/leaseledger/backend/internal/domain/audit"
	"github.com/leaseledger/backend/internal/domain/billing"
	"github.com/leaseledger/backend/internal/domain/leasing"
	"github.com/leaseledger/backend/internal/domain/shared"
	"github.com/leaseledger/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UtilityService manages itemized monthly utility charges and the billing
// merge that folds finalized charges into the period's rent obligations.
type UtilityService struct {
	chargeRepo   billing.UtilityChargeRepository
	leaseRepo    leasing.LeaseRepository
	scope        TransactionScope
	eventBus     shared.EventBus
	activityRepo audit.ActivityRecordRepository
	logger       *zap.Logger
}

// NewUtilityService creates a new UtilityService
func NewUtilityService(
	chargeRepo billing.UtilityChargeRepository,
	leaseRepo leasing.LeaseRepository,
	scope TransactionScope,
	eventBus shared.EventBus,
	activityRepo audit.ActivityRecordRepository,
	logger *zap.Logger,
) *UtilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UtilityService{
		chargeRepo:   chargeRepo,
		leaseRepo:    leaseRepo,
		scope:        scope,
		eventBus:     eventBus,
		activityRepo: activityRepo,
		logger:       logger,
	}
}

// ===================== Charge Operations =====================

// CreateChargeRequest represents a request to itemize a month's utilities
type CreateChargeRequest struct {
	LeaseID      uuid.UUID
	BillingYear  int
	BillingMonth int
	Items        UtilityItemsPayload
	Notes        string
	AsDraft      bool
}

// CreateCharge itemizes a lease's utility charge for one billing month.
// A lease carries at most one charge per month; the charge may start as a
// draft for further itemization or directly pending, ready for the merge.
func (s *UtilityService) CreateCharge(ctx context.Context, req CreateChargeRequest) (*UtilityChargeResponse, error) {
	lease, err := s.leaseRepo.FindByID(ctx, req.LeaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lease: %w", err)
	}
	if lease == nil {
		return nil, shared.ErrNotFound.WithMessage("Lease not found")
	}
	if !lease.IsActive() {
		return nil, shared.ErrConflict.WithMessage("Utility charges can only be raised against an active lease")
	}

	existing, err := s.chargeRepo.FindByLeaseAndMonth(ctx, req.LeaseID, req.BillingYear, req.BillingMonth)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing charge: %w", err)
	}
	if existing != nil {
		return nil, shared.ErrConflict.WithMessage(
			fmt.Sprintf("Lease already has a utility charge for %04d-%02d", req.BillingYear, req.BillingMonth))
	}

	items, err := ToUtilityItems(req.Items, lease.MonthlyRent.Currency())
	if err != nil {
		return nil, shared.ErrInvalidAmount.WithMessage(err.Error())
	}

	charge, err := billing.NewUtilityCharge(
		lease.ID,
		lease.TenantID,
		req.BillingYear,
		req.BillingMonth,
		items,
		req.Notes,
		req.AsDraft,
	)
	if err != nil {
		return nil, err
	}

	if err := s.chargeRepo.Save(ctx, charge); err != nil {
		return nil, fmt.Errorf("failed to save charge: %w", err)
	}

	publishEvents(ctx, s.eventBus, s.logger, charge)

	return ToUtilityChargeResponse(charge), nil
}

// UpdateChargeRequest represents a revision of a charge's itemization
type UpdateChargeRequest struct {
	Items UtilityItemsPayload
	Notes string
}

// UpdateCharge replaces a charge's itemization. Billed charges are immutable.
func (s *UtilityService) UpdateCharge(ctx context.Context, chargeID uuid.UUID, req UpdateChargeRequest) (*UtilityChargeResponse, error) {
	charge, err := s.chargeRepo.FindByID(ctx, chargeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load charge: %w", err)
	}
	if charge == nil {
		return nil, shared.ErrNotFound.WithMessage("Utility charge not found")
	}

	items, err := ToUtilityItems(req.Items, charge.TotalAmount().Currency())
	if err != nil {
		return nil, shared.ErrInvalidAmount.WithMessage(err.Error())
	}

	if err := charge.UpdateItems(items, req.Notes); err != nil {
		return nil, err
	}

	if err := s.chargeRepo.SaveWithLock(ctx, charge); err != nil {
		return nil, fmt.Errorf("failed to save charge: %w", err)
	}

	return ToUtilityChargeResponse(charge), nil
}

// FinalizeCharge promotes a draft charge to pending so the billing merge
// can pick it up
func (s *UtilityService) FinalizeCharge(ctx context.Context, chargeID uuid.UUID) (*UtilityChargeResponse, error) {
	charge, err := s.chargeRepo.FindByID(ctx, chargeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load charge: %w", err)
	}
	if charge == nil {
		return nil, shared.ErrNotFound.WithMessage("Utility charge not found")
	}

	if err := charge.Finalize(); err != nil {
		return nil, err
	}

	if err := s.chargeRepo.SaveWithLock(ctx, charge); err != nil {
		return nil, fmt.Errorf("failed to save charge: %w", err)
	}

	publishEvents(ctx, s.eventBus, s.logger, charge)

	return ToUtilityChargeResponse(charge), nil
}

// GetCharge gets a utility charge by ID
func (s *UtilityService) GetCharge(ctx context.Context, chargeID uuid.UUID) (*UtilityChargeResponse, error) {
	charge, err := s.chargeRepo.FindByID(ctx, chargeID)
	if err != nil {
		return nil, err
	}
	if charge == nil {
		return nil, shared.ErrNotFound.WithMessage("Utility charge not found")
	}
	return ToUtilityChargeResponse(charge), nil
}

// ListCharges lists utility charges with filtering
func (s *UtilityService) ListCharges(ctx context.Context, filter UtilityChargeListFilter) ([]UtilityChargeResponse, int64, error) {
	domainFilter := billing.UtilityChargeFilter{
		LeaseID:      filter.LeaseID,
		TenantID:     filter.TenantID,
		BillingYear:  filter.BillingYear,
		BillingMonth: filter.BillingMonth,
	}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize

	if filter.Status != "" {
		status := billing.ChargeStatus(filter.Status)
		domainFilter.Status = &status
	}

	charges, err := s.chargeRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.chargeRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]UtilityChargeResponse, len(charges))
	for i := range charges {
		responses[i] = *ToUtilityChargeResponse(&charges[i])
	}
	return responses, total, nil
}

// ===================== Billing Merge =====================

// MergeStats contains statistics about one billing merge run
type MergeStats struct {
	Scanned     int       `json:"scanned"`
	Merged      int       `json:"merged"`
	Skipped     int       `json:"skipped"`
	Failed      int       `json:"failed"`
	ProcessedAt time.Time `json:"processed_at"`
}

// RunBillingMerge folds every pending charge for the billing month into
// its lease's rent obligation for the same period. Each charge-obligation
// pair persists in its own transaction, so a partial run leaves nothing
// half-merged and a re-run never double-adds: billed charges drop out of
// the candidate set and the charge's own status transition is the
// merge-once guard. Charges without a matching obligation stay pending
// and are counted as skipped.
func (s *UtilityService) RunBillingMerge(ctx context.Context, year int, month time.Month, actor *uuid.UUID) (*MergeStats, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "billing", "merge_utilities")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrPeriod, fmt.Sprintf("%04d-%02d", year, month),
	)

	stats := &MergeStats{
		ProcessedAt: time.Now(),
	}

	if month < time.January || month > time.December {
		err := shared.ErrInvalidInput.WithMessage(fmt.Sprintf("Billing month %d is not a calendar month", month))
		telemetry.RecordError(span, err)
		return stats, err
	}

	var operationErr error
	telemetry.WithProfilingLabels(ctx, telemetry.BillingOperationLabels(telemetry.OperationMergeUtilities, ""), func(c context.Context) {
		charges, err := s.chargeRepo.FindBillableForPeriod(c, year, int(month))
		if err != nil {
			telemetry.RecordError(span, err)
			operationErr = fmt.Errorf("failed to find billable charges: %w", err)
			return
		}

		stats.Scanned = len(charges)
		if stats.Scanned == 0 {
			s.logger.Debug("No billable utility charges for period",
				zap.Int("year", year),
				zap.Int("month", int(month)),
			)
			return
		}

		for i := range charges {
			merged, err := s.mergeCharge(c, charges[i].ID, year, int(month))
			if err != nil {
				s.logger.Error("Failed to merge utility charge",
					zap.String("charge_id", charges[i].ID.String()),
					zap.String("lease_id", charges[i].LeaseID.String()),
					zap.Error(err),
				)
				stats.Failed++
				continue
			}
			if merged {
				stats.Merged++
			} else {
				stats.Skipped++
			}
		}

		if stats.Merged > 0 {
			recordActivity(c, s.activityRepo, s.logger, actor, audit.ActivityUtilitiesBilled,
				fmt.Sprintf("Merged %d utility charges into %04d-%02d obligations", stats.Merged, year, month),
				audit.ResourceUtilityCharge, nil,
				map[string]any{
					"billing_year":  year,
					"billing_month": int(month),
					"merged":        stats.Merged,
					"skipped":       stats.Skipped,
					"failed":        stats.Failed,
				})
		}

		s.logger.Info("Completed utility billing merge",
			zap.Int("year", year),
			zap.Int("month", int(month)),
			zap.Int("scanned", stats.Scanned),
			zap.Int("merged", stats.Merged),
			zap.Int("skipped", stats.Skipped),
			zap.Int("failed", stats.Failed),
		)
	})

	return stats, operationErr
}

// mergeCharge merges one charge into its period obligation inside a
// transaction. Returns false with no error when the charge has no
// matching obligation or was already billed by a racing run.
func (s *UtilityService) mergeCharge(ctx context.Context, chargeID uuid.UUID, year, month int) (bool, error) {
	merged := false
	var charge *billing.UtilityCharge
	var obligation *billing.RentObligation

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		charge, err = repos.ChargeRepo().FindByID(ctx, chargeID)
		if err != nil {
			return fmt.Errorf("failed to load charge: %w", err)
		}
		if charge == nil {
			return shared.ErrNotFound.WithMessage("Utility charge not found")
		}
		if !charge.Status.CanBeBilled() {
			// Another run got here first
			return nil
		}

		obligation, err = repos.ObligationRepo().FindByLeaseAndPeriod(ctx, charge.LeaseID, year, month)
		if err != nil {
			return fmt.Errorf("failed to load obligation: %w", err)
		}
		if obligation == nil {
			// No rent obligation for the period; the charge stays pending
			return nil
		}

		if err := obligation.MergeUtilityCharges(charge.TotalAmount(), charge.ID); err != nil {
			return err
		}
		if err := charge.MarkBilled(obligation.ID); err != nil {
			return err
		}

		if err := repos.ObligationRepo().SaveWithLock(ctx, obligation); err != nil {
			return fmt.Errorf("failed to save obligation: %w", err)
		}
		if err := repos.ChargeRepo().SaveWithLock(ctx, charge); err != nil {
			return fmt.Errorf("failed to save charge: %w", err)
		}

		merged = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if merged {
		publishEvents(ctx, s.eventBus, s.logger, charge)
		publishEvents(ctx, s.eventBus, s.logger, obligation)
	}
	return merged, nil
}
