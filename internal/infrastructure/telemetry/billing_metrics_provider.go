// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"

	"gorm.io/gorm"
)

// GormBillingMetricsProvider implements BillingMetricsProvider using GORM.
// It queries the rent_obligations table directly for aggregated metrics.
type GormBillingMetricsProvider struct {
	db *gorm.DB
}

// NewGormBillingMetricsProvider creates a new GormBillingMetricsProvider.
func NewGormBillingMetricsProvider(db *gorm.DB) *GormBillingMetricsProvider {
	return &GormBillingMetricsProvider{db: db}
}

// unpaidStatuses are the obligation statuses that still carry a balance.
var unpaidStatuses = []string{"pending", "partial", "overdue"}

// GetOutstandingRentCents returns the total unpaid balance across open
// obligations, in cents.
func (p *GormBillingMetricsProvider) GetOutstandingRentCents(ctx context.Context) (int64, error) {
	var result struct {
		Cents int64 `gorm:"column:cents"`
	}

	err := p.db.WithContext(ctx).
		Table("rent_obligations").
		Select("CAST(COALESCE(SUM((amount_due + utilities_charges + late_fee - amount_paid) * 100), 0) AS BIGINT) as cents").
		Where("status IN ?", unpaidStatuses).
		Scan(&result).Error

	if err != nil {
		return 0, err
	}

	return result.Cents, nil
}

// GetOverdueObligationCount returns the number of obligations currently overdue.
func (p *GormBillingMetricsProvider) GetOverdueObligationCount(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("rent_obligations").
		Where("status = ?", "overdue").
		Count(&count).Error

	return count, err
}
