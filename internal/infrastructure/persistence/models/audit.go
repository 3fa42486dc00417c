package models

import (
	"encoding/json"

	"github.com/leaseledger/backend/internal/domain/audit"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// logger for model conversion errors (silent failures are logged for debugging)
var modelLogger = zap.L().Named("persistence.models")

// ActivityRecordModel is the persistence model for the ActivityRecord entity.
// Activity records are append-only and never modified after creation.
type ActivityRecordModel struct {
	BaseModel
	ActorID       *uuid.UUID         `gorm:"type:uuid;index"`
	Type          audit.ActivityType `gorm:"type:varchar(50);not null;index"`
	Description   string             `gorm:"type:text;not null"`
	ResourceType  string             `gorm:"type:varchar(50);not null;index:idx_activities_resource,priority:1"`
	ResourceID    *uuid.UUID         `gorm:"type:uuid;index:idx_activities_resource,priority:2"`
	ExtraDataJSON string             `gorm:"column:extra_data;type:jsonb;default:'{}'"`
}

// TableName returns the table name for GORM
func (ActivityRecordModel) TableName() string {
	return "activity_records"
}

// ToDomain converts the persistence model to a domain ActivityRecord entity.
func (m *ActivityRecordModel) ToDomain() *audit.ActivityRecord {
	record := &audit.ActivityRecord{
		BaseEntity:   m.BaseModel.ToDomain(),
		ActorID:      m.ActorID,
		Type:         m.Type,
		Description:  m.Description,
		ResourceType: m.ResourceType,
		ResourceID:   m.ResourceID,
	}

	if m.ExtraDataJSON != "" && m.ExtraDataJSON != "{}" {
		var extra map[string]any
		if err := json.Unmarshal([]byte(m.ExtraDataJSON), &extra); err != nil {
			modelLogger.Warn("failed to parse activity record extra_data JSON",
				zap.String("record_id", m.ID.String()),
				zap.Error(err))
		} else {
			record.ExtraData = extra
		}
	}

	return record
}

// FromDomain populates the persistence model from a domain ActivityRecord entity.
func (m *ActivityRecordModel) FromDomain(r *audit.ActivityRecord) {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.ActorID = r.ActorID
	m.Type = r.Type
	m.Description = r.Description
	m.ResourceType = r.ResourceType
	m.ResourceID = r.ResourceID

	if len(r.ExtraData) == 0 {
		m.ExtraDataJSON = "{}"
		return
	}
	if jsonBytes, err := json.Marshal(r.ExtraData); err == nil {
		m.ExtraDataJSON = string(jsonBytes)
	} else {
		m.ExtraDataJSON = "{}"
	}
}

// ActivityRecordModelFromDomain creates a new persistence model from a domain ActivityRecord.
func ActivityRecordModelFromDomain(r *audit.ActivityRecord) *ActivityRecordModel {
	m := &ActivityRecordModel{}
	m.FromDomain(r)
	return m
}
