// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics provides business metrics for the rent billing engine.
// It tracks obligation generation, payment activity and portfolio health.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	obligationGeneratedTotal *Counter
	paymentAppliedTotal      *Counter
	paymentAmountTotal       *Counter
	lateFeeAppliedTotal      *Counter
	submissionReviewedTotal  *Counter

	// Gauge metrics (point-in-time values)
	outstandingAmount      *Gauge
	overdueObligationCount *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	// Data provider for periodic collection
	billingProvider BillingMetricsProvider
}

// BillingMetricsProvider provides billing data for periodic metrics collection.
// This interface allows the telemetry layer to query billing state without
// depending on the billing domain directly.
type BillingMetricsProvider interface {
	// GetOutstandingRentCents returns the total unpaid balance across open
	// obligations, in cents
	GetOutstandingRentCents(ctx context.Context) (int64, error)

	// GetOverdueObligationCount returns the number of obligations currently overdue
	GetOverdueObligationCount(ctx context.Context) (int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // Default: 5 minutes
	BillingProvider BillingMetricsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:           cfg.Meter,
		logger:          logger,
		stopChan:        make(chan struct{}),
		billingProvider: cfg.BillingProvider,
	}

	// Initialize counter metrics
	var err error

	// Obligation metrics
	bm.obligationGeneratedTotal, err = NewCounter(
		cfg.Meter,
		"rent_obligation_generated_total",
		"Total number of rent obligations generated",
		"{obligations}",
	)
	if err != nil {
		return nil, err
	}

	// Payment metrics
	bm.paymentAppliedTotal, err = NewCounter(
		cfg.Meter,
		"rent_payment_applied_total",
		"Total number of payments applied to obligations",
		"{payments}",
	)
	if err != nil {
		return nil, err
	}

	bm.paymentAmountTotal, err = NewCounter(
		cfg.Meter,
		"rent_payment_amount_total",
		"Total payment amount in cents",
		"{cents}",
	)
	if err != nil {
		return nil, err
	}

	bm.lateFeeAppliedTotal, err = NewCounter(
		cfg.Meter,
		"rent_late_fee_applied_total",
		"Total number of late fees applied by overdue promotion",
		"{fees}",
	)
	if err != nil {
		return nil, err
	}

	bm.submissionReviewedTotal, err = NewCounter(
		cfg.Meter,
		"rent_submission_reviewed_total",
		"Total number of payment submissions reviewed",
		"{submissions}",
	)
	if err != nil {
		return nil, err
	}

	// Portfolio gauge metrics
	bm.outstandingAmount, err = NewGauge(
		cfg.Meter,
		"rent_outstanding_amount",
		"Current total unpaid balance across open obligations in cents",
		"{cents}",
	)
	if err != nil {
		return nil, err
	}

	bm.overdueObligationCount, err = NewGauge(
		cfg.Meter,
		"rent_overdue_obligation_count",
		"Number of obligations currently overdue",
		"{obligations}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Obligation Metrics
// =============================================================================

// RecordObligationsGenerated records obligations created by a generation run.
// This should be called from the application layer after the batch completes.
func (bm *BusinessMetrics) RecordObligationsGenerated(ctx context.Context, count int) {
	if count <= 0 {
		return
	}
	bm.obligationGeneratedTotal.Add(ctx, int64(count))
}

// RecordLateFeeApplied records a late fee applied during overdue promotion.
func (bm *BusinessMetrics) RecordLateFeeApplied(ctx context.Context) {
	bm.lateFeeAppliedTotal.Inc(ctx)
}

// =============================================================================
// Payment Metrics
// =============================================================================

// PaymentSource identifies how a payment reached the ledger for metrics labeling.
type PaymentSource string

const (
	PaymentSourceDirect     PaymentSource = "direct"
	PaymentSourceSubmission PaymentSource = "submission"
	PaymentSourceSettlement PaymentSource = "settlement"
)

// RecordPaymentApplied records a payment applied to an obligation.
func (bm *BusinessMetrics) RecordPaymentApplied(ctx context.Context, paymentMethod string, source PaymentSource) {
	bm.paymentAppliedTotal.Inc(ctx,
		AttrPaymentMethod.String(paymentMethod),
		AttrPaymentSource.String(string(source)),
	)
}

// RecordPaymentAmount records the payment amount.
// Amount should be in the smallest currency unit (cents).
func (bm *BusinessMetrics) RecordPaymentAmount(ctx context.Context, paymentMethod string, source PaymentSource, amountCents int64) {
	bm.paymentAmountTotal.Add(ctx, amountCents,
		AttrPaymentMethod.String(paymentMethod),
		AttrPaymentSource.String(string(source)),
	)
}

// RecordPaymentWithAmount is a convenience method that records both payment count and amount.
func (bm *BusinessMetrics) RecordPaymentWithAmount(ctx context.Context, paymentMethod string, source PaymentSource, amount decimal.Decimal) {
	bm.RecordPaymentApplied(ctx, paymentMethod, source)

	// Convert to cents (multiply by 100)
	amountCents := amount.Mul(decimal.NewFromInt(100)).IntPart()
	bm.RecordPaymentAmount(ctx, paymentMethod, source, amountCents)
}

// SubmissionOutcome represents the review outcome of a payment submission.
type SubmissionOutcome string

const (
	SubmissionOutcomeVerified SubmissionOutcome = "verified"
	SubmissionOutcomeRejected SubmissionOutcome = "rejected"
)

// RecordSubmissionReviewed records a verified or rejected payment submission.
func (bm *BusinessMetrics) RecordSubmissionReviewed(ctx context.Context, outcome SubmissionOutcome) {
	bm.submissionReviewedTotal.Inc(ctx,
		AttrSubmissionOutcome.String(string(outcome)),
	)
}

// =============================================================================
// Portfolio Metrics
// =============================================================================

// RecordOutstandingAmount records the current outstanding rent balance in cents.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordOutstandingAmount(ctx context.Context, amountCents int64) {
	bm.outstandingAmount.Record(ctx, amountCents)
}

// RecordOverdueCount records the number of obligations currently overdue.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordOverdueCount(ctx context.Context, count int64) {
	bm.overdueObligationCount.Record(ctx, count)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// StartPeriodicCollection starts periodic collection of gauge metrics.
// It collects portfolio metrics every interval (default: 5 minutes).
// This is non-blocking - use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go bm.runPeriodicCollection(ctx, interval)
	})
}

// runPeriodicCollection runs the periodic collection loop.
func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	bm.collectPortfolioMetrics(ctx)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectPortfolioMetrics(ctx)
		}
	}
}

// collectPortfolioMetrics collects the portfolio gauge metrics.
func (bm *BusinessMetrics) collectPortfolioMetrics(ctx context.Context) {
	if bm.billingProvider == nil {
		bm.logger.Debug("No billing provider configured, skipping portfolio metrics collection")
		return
	}

	outstanding, err := bm.billingProvider.GetOutstandingRentCents(ctx)
	if err != nil {
		bm.logger.Warn("Failed to get outstanding rent balance", zap.Error(err))
	} else {
		bm.RecordOutstandingAmount(ctx, outstanding)
	}

	overdueCount, err := bm.billingProvider.GetOverdueObligationCount(ctx)
	if err != nil {
		bm.logger.Warn("Failed to get overdue obligation count", zap.Error(err))
	} else {
		bm.RecordOverdueCount(ctx, overdueCount)
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

// =============================================================================
// Attribute Key Constants
// =============================================================================

// Business metrics attribute keys not already defined in metrics.go
var (
	AttrPaymentSource     = attribute.Key("payment_source")
	AttrSubmissionOutcome = attribute.Key("submission_outcome")
)
