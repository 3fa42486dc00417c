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

// ObligationGenerationService creates the monthly rent obligations. The
// batch is idempotent: a lease that already has an obligation for the
// period is skipped, and a unique index on (lease_id, period_year,
// period_month) backs that check up.
type ObligationGenerationService struct {
	obligationRepo  billing.RentObligationRepository
	leaseRepo       leasing.LeaseRepository
	eventBus        shared.EventBus
	activityRepo    audit.ActivityRecordRepository
	businessMetrics *telemetry.BusinessMetrics
	logger          *zap.Logger
}

// NewObligationGenerationService creates a new ObligationGenerationService
func NewObligationGenerationService(
	obligationRepo billing.RentObligationRepository,
	leaseRepo leasing.LeaseRepository,
	eventBus shared.EventBus,
	activityRepo audit.ActivityRecordRepository,
	logger *zap.Logger,
) *ObligationGenerationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ObligationGenerationService{
		obligationRepo: obligationRepo,
		leaseRepo:      leaseRepo,
		eventBus:       eventBus,
		activityRepo:   activityRepo,
		logger:         logger,
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *ObligationGenerationService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// GenerationStats contains statistics about one generation run
type GenerationStats struct {
	Generated   int       `json:"generated"`
	Skipped     int       `json:"skipped"`
	Failed      int       `json:"failed"`
	Leases      int       `json:"leases"`
	ProcessedAt time.Time `json:"processed_at"`
}

// GenerateForPeriod creates one rent obligation per active lease covering
// the billing month. Each obligation starts pending with a zero late fee;
// the overdue promotion batch is the only automatic path that applies the
// lease's late fee. Zero covered leases is reported as a domain error with
// zero counts so schedulers can log it without treating it as a fault.
func (s *ObligationGenerationService) GenerateForPeriod(
	ctx context.Context,
	year int,
	month time.Month,
	actor *uuid.UUID,
) (*GenerationStats, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "billing", "generate_obligations")
	defer span.End()

	telemetry.SetAttributes(span,
		telemetry.SpanAttrPeriod, fmt.Sprintf("%04d-%02d", year, month),
	)

	stats := &GenerationStats{
		ProcessedAt: time.Now(),
	}

	if month < time.January || month > time.December {
		err := shared.ErrInvalidInput.WithMessage(fmt.Sprintf("Billing month %d is not a calendar month", month))
		telemetry.RecordError(span, err)
		return stats, err
	}

	var operationErr error
	telemetry.WithProfilingLabels(ctx, telemetry.BillingOperationLabels(telemetry.OperationGenerateObligations, ""), func(c context.Context) {
		leases, err := s.leaseRepo.FindActiveInPeriod(c, year, month)
		if err != nil {
			telemetry.RecordError(span, err)
			operationErr = fmt.Errorf("failed to find active leases: %w", err)
			return
		}

		stats.Leases = len(leases)
		if stats.Leases == 0 {
			err := shared.ErrNotFound.WithMessage(
				fmt.Sprintf("No active leases cover the billing period %04d-%02d", year, month))
			telemetry.RecordError(span, err)
			operationErr = err
			return
		}

		for i := range leases {
			lease := &leases[i]
			created, err := s.generateForLease(c, lease, year, month)
			if err != nil {
				s.logger.Error("Failed to generate obligation",
					zap.String("lease_id", lease.ID.String()),
					zap.String("lease_number", lease.LeaseNumber),
					zap.Error(err),
				)
				stats.Failed++
				continue
			}
			if created {
				stats.Generated++
			} else {
				stats.Skipped++
			}
		}

		// Record business metrics
		if s.businessMetrics != nil {
			s.businessMetrics.RecordObligationsGenerated(c, stats.Generated)
		}

		recordActivity(c, s.activityRepo, s.logger, actor, audit.ActivityObligationGenerated,
			fmt.Sprintf("Generated %d rent obligations for %04d-%02d", stats.Generated, year, month),
			audit.ResourceRentObligation, nil,
			map[string]any{
				"period_year":  year,
				"period_month": int(month),
				"generated":    stats.Generated,
				"skipped":      stats.Skipped,
				"failed":       stats.Failed,
			})

		s.logger.Info("Completed obligation generation",
			zap.Int("year", year),
			zap.Int("month", int(month)),
			zap.Int("leases", stats.Leases),
			zap.Int("generated", stats.Generated),
			zap.Int("skipped", stats.Skipped),
			zap.Int("failed", stats.Failed),
		)
	})

	return stats, operationErr
}

// generateForLease creates the period's obligation for a single lease.
// Returns false when the lease already has one and nothing was written.
func (s *ObligationGenerationService) generateForLease(
	ctx context.Context,
	lease *leasing.Lease,
	year int,
	month time.Month,
) (bool, error) {
	exists, err := s.obligationRepo.ExistsForPeriod(ctx, lease.ID, year, int(month))
	if err != nil {
		return false, fmt.Errorf("failed to check existing obligation: %w", err)
	}
	if exists {
		return false, nil
	}

	number, err := s.obligationRepo.GenerateObligationNumber(ctx, year, int(month))
	if err != nil {
		return false, fmt.Errorf("failed to generate obligation number: %w", err)
	}

	dueDate := billing.DueDateForPeriod(year, month, lease.RentDueDay)
	obligation, err := billing.NewRentObligation(
		number,
		lease.ID,
		lease.TenantID,
		year,
		int(month),
		dueDate,
		lease.MonthlyRent,
	)
	if err != nil {
		return false, err
	}

	if err := s.obligationRepo.Save(ctx, obligation); err != nil {
		return false, fmt.Errorf("failed to save obligation: %w", err)
	}

	publishEvents(ctx, s.eventBus, s.logger, obligation)

	s.logger.Debug("Generated rent obligation",
		zap.String("obligation_number", obligation.ObligationNumber),
		zap.String("lease_number", lease.LeaseNumber),
		zap.String("due_date", dueDate.Format("2006-01-02")),
	)

	return true, nil
}
