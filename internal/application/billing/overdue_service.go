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

// OverdueService promotes pending obligations past their grace window to
// overdue and applies the lease's late fee exactly once. The transition is
// one-directional; only payment moves an obligation onward from overdue.
type OverdueService struct {
	obligationRepo  billing.RentObligationRepository
	leaseRepo       leasing.LeaseRepository
	eventBus        shared.EventBus
	activityRepo    audit.ActivityRecordRepository
	businessMetrics *telemetry.BusinessMetrics
	logger          *zap.Logger
}

// NewOverdueService creates a new OverdueService
func NewOverdueService(
	obligationRepo billing.RentObligationRepository,
	leaseRepo leasing.LeaseRepository,
	eventBus shared.EventBus,
	activityRepo audit.ActivityRecordRepository,
	logger *zap.Logger,
) *OverdueService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OverdueService{
		obligationRepo: obligationRepo,
		leaseRepo:      leaseRepo,
		eventBus:       eventBus,
		activityRepo:   activityRepo,
		logger:         logger,
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *OverdueService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// OverdueStats contains statistics about one promotion run
type OverdueStats struct {
	Scanned     int       `json:"scanned"`
	Promoted    int       `json:"promoted"`
	FeesApplied int       `json:"fees_applied"`
	Failed      int       `json:"failed"`
	ProcessedAt time.Time `json:"processed_at"`
}

// PromoteOverdue scans pending obligations whose due date has passed and
// promotes those past their lease's grace window. Obligations still inside
// the grace window are left untouched; grace is otherwise computed at read
// time and this batch materializes the overdue status for queryability.
func (s *OverdueService) PromoteOverdue(ctx context.Context, now time.Time) (*OverdueStats, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "billing", "promote_overdue")
	defer span.End()

	if now.IsZero() {
		now = time.Now()
	}

	stats := &OverdueStats{
		ProcessedAt: now,
	}

	var operationErr error
	telemetry.WithProfilingLabels(ctx, telemetry.BillingOperationLabels(telemetry.OperationPromoteOverdue, ""), func(c context.Context) {
		// Pending obligations due on or before today are the candidate set;
		// the grace window still filters most of them out below.
		candidates, err := s.obligationRepo.FindPendingDueOnOrBefore(c, billing.DateOf(now))
		if err != nil {
			telemetry.RecordError(span, err)
			operationErr = fmt.Errorf("failed to find due obligations: %w", err)
			return
		}

		stats.Scanned = len(candidates)
		if stats.Scanned == 0 {
			s.logger.Debug("No pending obligations due for promotion")
			return
		}

		leases, err := s.loadLeases(c, candidates)
		if err != nil {
			telemetry.RecordError(span, err)
			operationErr = err
			return
		}

		for i := range candidates {
			obligation := &candidates[i]
			lease, ok := leases[obligation.LeaseID]
			if !ok {
				s.logger.Error("Obligation references a missing lease",
					zap.String("obligation_number", obligation.ObligationNumber),
					zap.String("lease_id", obligation.LeaseID.String()),
				)
				stats.Failed++
				continue
			}

			if !obligation.IsOverdue(lease.GracePeriodDays, now) {
				continue
			}

			feeApplied, err := obligation.MarkOverdue(lease.LateFee, now)
			if err != nil {
				s.logger.Error("Failed to mark obligation overdue",
					zap.String("obligation_number", obligation.ObligationNumber),
					zap.Error(err),
				)
				stats.Failed++
				continue
			}

			if err := s.obligationRepo.SaveWithLock(c, obligation); err != nil {
				s.logger.Error("Failed to save overdue obligation",
					zap.String("obligation_number", obligation.ObligationNumber),
					zap.Error(err),
				)
				stats.Failed++
				continue
			}

			publishEvents(c, s.eventBus, s.logger, obligation)
			stats.Promoted++
			if feeApplied {
				stats.FeesApplied++
				if s.businessMetrics != nil {
					s.businessMetrics.RecordLateFeeApplied(c)
				}
			}
		}

		if stats.Promoted > 0 {
			recordActivity(c, s.activityRepo, s.logger, nil, audit.ActivityObligationOverdue,
				fmt.Sprintf("Promoted %d obligations to overdue", stats.Promoted),
				audit.ResourceRentObligation, nil,
				map[string]any{
					"promoted":     stats.Promoted,
					"fees_applied": stats.FeesApplied,
					"failed":       stats.Failed,
				})
		}

		telemetry.SetAttributes(span,
			"scanned", stats.Scanned,
			"promoted", stats.Promoted,
		)
		s.logger.Info("Completed overdue promotion",
			zap.Int("scanned", stats.Scanned),
			zap.Int("promoted", stats.Promoted),
			zap.Int("fees_applied", stats.FeesApplied),
			zap.Int("failed", stats.Failed),
		)
	})

	return stats, operationErr
}

// loadLeases bulk-loads the leases behind a candidate set, keyed by ID
func (s *OverdueService) loadLeases(ctx context.Context, obligations []billing.RentObligation) (map[uuid.UUID]*leasing.Lease, error) {
	idSet := make(map[uuid.UUID]struct{}, len(obligations))
	ids := make([]uuid.UUID, 0, len(obligations))
	for i := range obligations {
		if _, seen := idSet[obligations[i].LeaseID]; seen {
			continue
		}
		idSet[obligations[i].LeaseID] = struct{}{}
		ids = append(ids, obligations[i].LeaseID)
	}

	leases, err := s.leaseRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load leases: %w", err)
	}

	byID := make(map[uuid.UUID]*leasing.Lease, len(leases))
	for i := range leases {
		byID[leases[i].ID] = &leases[i]
	}
	return byID, nil
}
