package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// Common allowed sort fields for entities with base fields
// These are the common fields present in most entities

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// TenantSortFields contains allowed sort fields for renters
var TenantSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"full_name":    true,
	"phone":        true,
	"email":        true,
	"blacklist":    true,
	"debt_flagged": true,
}

// UnitSortFields contains allowed sort fields for units
var UnitSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"code":          true,
	"property_name": true,
	"occupancy":     true,
}

// LeaseSortFields contains allowed sort fields for leases
var LeaseSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"lease_number":  true,
	"unit_id":       true,
	"tenant_id":     true,
	"monthly_rent":  true,
	"rent_due_day":  true,
	"start_date":    true,
	"end_date":      true,
	"move_out_date": true,
	"status":        true,
}

// SettlementSortFields contains allowed sort fields for settlements
var SettlementSortFields = map[string]bool{
	"id":                true,
	"created_at":        true,
	"updated_at":        true,
	"lease_id":          true,
	"tenant_id":         true,
	"unit_id":           true,
	"move_out_date":     true,
	"total_unpaid_rent": true,
	"total_deductions":  true,
	"refund_amount":     true,
	"deposit_status":    true,
}

// ObligationSortFields contains allowed sort fields for rent obligations
var ObligationSortFields = map[string]bool{
	"id":                true,
	"created_at":        true,
	"updated_at":        true,
	"obligation_number": true,
	"lease_id":          true,
	"tenant_id":         true,
	"period_year":       true,
	"period_month":      true,
	"due_date":          true,
	"amount_due":        true,
	"amount_paid":       true,
	"late_fee":          true,
	"status":            true,
	"payment_date":      true,
}

// SubmissionSortFields contains allowed sort fields for payment submissions
var SubmissionSortFields = map[string]bool{
	"id":                    true,
	"created_at":            true,
	"updated_at":            true,
	"lease_id":              true,
	"tenant_id":             true,
	"amount":                true,
	"payment_method":        true,
	"transaction_reference": true,
	"transaction_date":      true,
	"status":                true,
	"verified_at":           true,
}

// UtilityChargeSortFields contains allowed sort fields for utility charges
var UtilityChargeSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"lease_id":      true,
	"tenant_id":     true,
	"billing_year":  true,
	"billing_month": true,
	"status":        true,
}

// NotificationSortFields contains allowed sort fields for notifications
var NotificationSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"user_id":    true,
	"type":       true,
	"urgent":     true,
	"read_at":    true,
}

// ActivitySortFields contains allowed sort fields for activity records
var ActivitySortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"type":          true,
	"actor_id":      true,
	"resource_type": true,
	"resource_id":   true,
}
