package models

import (
	"time"

	"github.com/leaseledger/backend/internal/domain/notification"
	"github.com/google/uuid"
)

// NotificationModel is the persistence model for the Notification entity.
type NotificationModel struct {
	BaseModel
	UserID       uuid.UUID                     `gorm:"type:uuid;not null;index"`
	Type         notification.NotificationType `gorm:"type:varchar(50);not null;index"`
	Title        string                        `gorm:"type:varchar(200);not null"`
	Message      string                        `gorm:"type:text;not null"`
	ResourceType string                        `gorm:"type:varchar(50)"`
	ResourceID   *uuid.UUID                    `gorm:"type:uuid;index"`
	Urgent       bool                          `gorm:"not null;default:false"`
	ReadAt       *time.Time                    `gorm:"index"`
}

// TableName returns the table name for GORM
func (NotificationModel) TableName() string {
	return "notifications"
}

// ToDomain converts the persistence model to a domain Notification entity.
func (m *NotificationModel) ToDomain() *notification.Notification {
	return &notification.Notification{
		BaseEntity:   m.BaseModel.ToDomain(),
		UserID:       m.UserID,
		Type:         m.Type,
		Title:        m.Title,
		Message:      m.Message,
		ResourceType: m.ResourceType,
		ResourceID:   m.ResourceID,
		Urgent:       m.Urgent,
		ReadAt:       m.ReadAt,
	}
}

// FromDomain populates the persistence model from a domain Notification entity.
func (m *NotificationModel) FromDomain(n *notification.Notification) {
	m.FromDomainBaseEntity(n.BaseEntity)
	m.UserID = n.UserID
	m.Type = n.Type
	m.Title = n.Title
	m.Message = n.Message
	m.ResourceType = n.ResourceType
	m.ResourceID = n.ResourceID
	m.Urgent = n.Urgent
	m.ReadAt = n.ReadAt
}

// NotificationModelFromDomain creates a new persistence model from a domain Notification.
func NotificationModelFromDomain(n *notification.Notification) *NotificationModel {
	m := &NotificationModel{}
	m.FromDomain(n)
	return m
}
