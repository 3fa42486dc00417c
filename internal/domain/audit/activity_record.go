package audit

import (
	"maps"
	"strings"

	"github.com/leaseledger/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ActivityType classifies what happened
type ActivityType string

const (
	ActivityObligationGenerated  ActivityType = "obligation_generated"
	ActivityObligationOverdue    ActivityType = "obligation_overdue"
	ActivityPaymentApplied       ActivityType = "payment_applied"
	ActivityPaymentSubmitted     ActivityType = "payment_submitted"
	ActivityPaymentVerified      ActivityType = "payment_verified"
	ActivityPaymentRejected      ActivityType = "payment_rejected"
	ActivityUtilitiesBilled      ActivityType = "utilities_billed"
	ActivityLeaseActivated       ActivityType = "lease_activated"
	ActivityLeaseAmended         ActivityType = "lease_amended"
	ActivityLeaseTerminated      ActivityType = "lease_terminated"
	ActivitySettlementCompleted  ActivityType = "settlement_completed"
	ActivityObligationWrittenOff ActivityType = "obligation_written_off"
	ActivityTenantDebtRecorded   ActivityType = "tenant_debt_recorded"
)

// Resource type names recorded on activity entries
const (
	ResourceRentObligation    = "rent_obligation"
	ResourcePaymentSubmission = "payment_submission"
	ResourceUtilityCharge     = "utility_charge"
	ResourceLease             = "lease"
	ResourceSettlement        = "settlement"
	ResourceTenant            = "tenant"
)

// IsValid checks if the activity type is a known value
func (t ActivityType) IsValid() bool {
	switch t {
	case ActivityObligationGenerated, ActivityObligationOverdue,
		ActivityPaymentApplied, ActivityPaymentSubmitted,
		ActivityPaymentVerified, ActivityPaymentRejected,
		ActivityUtilitiesBilled, ActivityLeaseActivated,
		ActivityLeaseAmended, ActivityLeaseTerminated,
		ActivitySettlementCompleted, ActivityObligationWrittenOff,
		ActivityTenantDebtRecorded:
		return true
	}
	return false
}

// ActivityRecord is one append-only entry in the financial audit trail.
// It captures who did what to which resource, with structured extra
// data instead of prose. Records are never edited or deleted.
type ActivityRecord struct {
	shared.BaseEntity
	ActorID      *uuid.UUID     `json:"actor_id,omitempty"`
	Type         ActivityType   `json:"type"`
	Description  string         `json:"description"`
	ResourceType string         `json:"resource_type"`
	ResourceID   *uuid.UUID     `json:"resource_id,omitempty"`
	ExtraData    map[string]any `json:"extra_data,omitempty"`
}

// NewActivityRecord creates an audit trail entry
func NewActivityRecord(
	actorID *uuid.UUID,
	activityType ActivityType,
	description string,
	resourceType string,
	resourceID *uuid.UUID,
	extraData map[string]any,
) (*ActivityRecord, error) {
	if !activityType.IsValid() {
		return nil, shared.ErrInvalidInput.WithMessage("Unknown activity type")
	}
	if strings.TrimSpace(description) == "" {
		return nil, shared.ErrInvalidInput.WithMessage("Activity description cannot be empty")
	}

	return &ActivityRecord{
		BaseEntity:   shared.NewBaseEntity(),
		ActorID:      actorID,
		Type:         activityType,
		Description:  description,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		ExtraData:    extraData,
	}, nil
}

// GetExtraData returns a copy of the structured payload
func (r *ActivityRecord) GetExtraData() map[string]any {
	if r.ExtraData == nil {
		return make(map[string]any)
	}
	result := make(map[string]any, len(r.ExtraData))
	maps.Copy(result, r.ExtraData)
	return result
}
