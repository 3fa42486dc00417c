package billing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leaseledger/backend/internal/domain/shared"
	"github.com/leaseledger/backend/internal/infrastructure/scheduler"
)

// ObligationGenerator generates the monthly rent obligations
type ObligationGenerator interface {
	GenerateForPeriod(ctx context.Context, year int, month time.Month, actor *uuid.UUID) (*GenerationStats, error)
}

// OverduePromoter promotes pending obligations past their grace window
type OverduePromoter interface {
	PromoteOverdue(ctx context.Context, now time.Time) (*OverdueStats, error)
}

// UtilityMerger merges pending utility charges into period obligations
type UtilityMerger interface {
	RunBillingMerge(ctx context.Context, year int, month time.Month, actor *uuid.UUID) (*MergeStats, error)
}

// BillingJobExecutor routes scheduled billing jobs to the batch services.
// Scheduled runs carry no actor; audit entries record them as system runs.
type BillingJobExecutor struct {
	generation ObligationGenerator
	overdue    OverduePromoter
	utilities  UtilityMerger
	logger     *zap.Logger
}

// NewBillingJobExecutor creates a new billing job executor
func NewBillingJobExecutor(
	generation ObligationGenerator,
	overdue OverduePromoter,
	utilities UtilityMerger,
	logger *zap.Logger,
) *BillingJobExecutor {
	return &BillingJobExecutor{
		generation: generation,
		overdue:    overdue,
		utilities:  utilities,
		logger:     logger,
	}
}

// Execute implements scheduler.JobExecutor
func (e *BillingJobExecutor) Execute(ctx context.Context, job *scheduler.Job) error {
	switch job.TaskType {
	case scheduler.TaskGenerateObligations:
		return e.runGeneration(ctx, job)
	case scheduler.TaskPromoteOverdue:
		return e.runOverduePromotion(ctx, job)
	case scheduler.TaskMergeUtilities:
		return e.runUtilityMerge(ctx, job)
	default:
		return scheduler.ErrInvalidTaskType
	}
}

func (e *BillingJobExecutor) runGeneration(ctx context.Context, job *scheduler.Job) error {
	stats, err := e.generation.GenerateForPeriod(ctx, job.PeriodYear, job.PeriodMonth, nil)
	if err != nil {
		// A period with no active leases is a quiet month, not a fault;
		// retrying would produce the same answer.
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) && domainErr.Code == "NOT_FOUND" {
			e.logger.Info("No active leases for billing period",
				zap.Int("period_year", job.PeriodYear),
				zap.Int("period_month", int(job.PeriodMonth)),
			)
			return nil
		}
		return err
	}

	e.logger.Info("Scheduled obligation generation finished",
		zap.String("job_id", job.ID.String()),
		zap.Int("period_year", job.PeriodYear),
		zap.Int("period_month", int(job.PeriodMonth)),
		zap.Int("generated", stats.Generated),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed),
	)
	return nil
}

func (e *BillingJobExecutor) runOverduePromotion(ctx context.Context, job *scheduler.Job) error {
	stats, err := e.overdue.PromoteOverdue(ctx, job.AsOf)
	if err != nil {
		return err
	}

	e.logger.Info("Scheduled overdue promotion finished",
		zap.String("job_id", job.ID.String()),
		zap.Int("scanned", stats.Scanned),
		zap.Int("promoted", stats.Promoted),
		zap.Int("fees_applied", stats.FeesApplied),
		zap.Int("failed", stats.Failed),
	)
	return nil
}

func (e *BillingJobExecutor) runUtilityMerge(ctx context.Context, job *scheduler.Job) error {
	stats, err := e.utilities.RunBillingMerge(ctx, job.PeriodYear, job.PeriodMonth, nil)
	if err != nil {
		return err
	}

	e.logger.Info("Scheduled utility merge finished",
		zap.String("job_id", job.ID.String()),
		zap.Int("period_year", job.PeriodYear),
		zap.Int("period_month", int(job.PeriodMonth)),
		zap.Int("scanned", stats.Scanned),
		zap.Int("merged", stats.Merged),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed),
	)
	return nil
}

// Ensure BillingJobExecutor implements scheduler.JobExecutor
var _ scheduler.JobExecutor = (*BillingJobExecutor)(nil)
