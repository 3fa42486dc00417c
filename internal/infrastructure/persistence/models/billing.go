package models

import (
	"time"

	"github.com/leaseledger/backend/internal/domain/billing"
	"github.com/leaseledger/backend/internal/domain/shared"
	"github.com/leaseledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// RentObligationModel is the persistence model for the RentObligation aggregate root.
// The unique index on (lease_id, period_year, period_month) is what makes
// obligation generation idempotent per billing period.
type RentObligationModel struct {
	AggregateModel
	ObligationNumber string                   `gorm:"type:varchar(50);not null;uniqueIndex"`
	LeaseID          uuid.UUID                `gorm:"type:uuid;not null;uniqueIndex:idx_obligation_lease_period,priority:1;index"`
	TenantID         uuid.UUID                `gorm:"type:uuid;not null;index"`
	PeriodYear       int                      `gorm:"not null;uniqueIndex:idx_obligation_lease_period,priority:2"`
	PeriodMonth      int                      `gorm:"not null;uniqueIndex:idx_obligation_lease_period,priority:3"`
	DueDate          time.Time                `gorm:"not null;index"`
	AmountDue        valueobject.Money        `gorm:"type:decimal(18,4);not null"`
	UtilitiesCharges valueobject.Money        `gorm:"type:decimal(18,4);not null"`
	LateFee          valueobject.Money        `gorm:"type:decimal(18,4);not null"`
	AmountPaid       valueobject.Money        `gorm:"type:decimal(18,4);not null"`
	Status           billing.ObligationStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	PaymentMethod    string                   `gorm:"type:varchar(50)"`
	PaymentReference string                   `gorm:"type:varchar(100)"`
	PaymentDate      *time.Time
	ProcessedBy      *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (RentObligationModel) TableName() string {
	return "rent_obligations"
}

// ToDomain converts the persistence model to a domain RentObligation entity.
func (m *RentObligationModel) ToDomain() *billing.RentObligation {
	return &billing.RentObligation{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		ObligationNumber: m.ObligationNumber,
		LeaseID:          m.LeaseID,
		TenantID:         m.TenantID,
		PeriodYear:       m.PeriodYear,
		PeriodMonth:      m.PeriodMonth,
		DueDate:          m.DueDate,
		AmountDue:        m.AmountDue,
		UtilitiesCharges: m.UtilitiesCharges,
		LateFee:          m.LateFee,
		AmountPaid:       m.AmountPaid,
		Status:           m.Status,
		PaymentMethod:    m.PaymentMethod,
		PaymentReference: m.PaymentReference,
		PaymentDate:      m.PaymentDate,
		ProcessedBy:      m.ProcessedBy,
	}
}

// FromDomain populates the persistence model from a domain RentObligation entity.
func (m *RentObligationModel) FromDomain(o *billing.RentObligation) {
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	m.ObligationNumber = o.ObligationNumber
	m.LeaseID = o.LeaseID
	m.TenantID = o.TenantID
	m.PeriodYear = o.PeriodYear
	m.PeriodMonth = o.PeriodMonth
	m.DueDate = o.DueDate
	m.AmountDue = o.AmountDue
	m.UtilitiesCharges = o.UtilitiesCharges
	m.LateFee = o.LateFee
	m.AmountPaid = o.AmountPaid
	m.Status = o.Status
	m.PaymentMethod = o.PaymentMethod
	m.PaymentReference = o.PaymentReference
	m.PaymentDate = o.PaymentDate
	m.ProcessedBy = o.ProcessedBy
}

// RentObligationModelFromDomain creates a new persistence model from a domain RentObligation.
func RentObligationModelFromDomain(o *billing.RentObligation) *RentObligationModel {
	m := &RentObligationModel{}
	m.FromDomain(o)
	return m
}

// ObligationUpdateModel is the persistence model for an obligation's
// append-only history rows. Rows are inserted together with the obligation
// save that produced them and never updated afterwards.
type ObligationUpdateModel struct {
	ID               uuid.UUID                `gorm:"type:uuid;primaryKey"`
	ObligationID     uuid.UUID                `gorm:"type:uuid;not null;index"`
	OldStatus        billing.ObligationStatus `gorm:"type:varchar(20);not null"`
	NewStatus        billing.ObligationStatus `gorm:"type:varchar(20);not null"`
	OldAmountPaid    valueobject.Money        `gorm:"type:decimal(18,4);not null"`
	NewAmountPaid    valueobject.Money        `gorm:"type:decimal(18,4);not null"`
	Amount           valueobject.Money        `gorm:"type:decimal(18,4);not null"`
	PaymentMethod    string                   `gorm:"type:varchar(50)"`
	PaymentReference string                   `gorm:"type:varchar(100)"`
	Note             string                   `gorm:"type:text"`
	Actor            *uuid.UUID               `gorm:"type:uuid"`
	CreatedAt        time.Time                `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (ObligationUpdateModel) TableName() string {
	return "rent_obligation_updates"
}

// ToDomain converts the persistence model to a domain ObligationUpdate.
func (m *ObligationUpdateModel) ToDomain() billing.ObligationUpdate {
	return billing.ObligationUpdate{
		ID:               m.ID,
		ObligationID:     m.ObligationID,
		OldStatus:        m.OldStatus,
		NewStatus:        m.NewStatus,
		OldAmountPaid:    m.OldAmountPaid,
		NewAmountPaid:    m.NewAmountPaid,
		Amount:           m.Amount,
		PaymentMethod:    m.PaymentMethod,
		PaymentReference: m.PaymentReference,
		Note:             m.Note,
		Actor:            m.Actor,
		CreatedAt:        m.CreatedAt,
	}
}

// ObligationUpdateModelFromDomain creates a new persistence model from a domain ObligationUpdate.
func ObligationUpdateModelFromDomain(u billing.ObligationUpdate) *ObligationUpdateModel {
	return &ObligationUpdateModel{
		ID:               u.ID,
		ObligationID:     u.ObligationID,
		OldStatus:        u.OldStatus,
		NewStatus:        u.NewStatus,
		OldAmountPaid:    u.OldAmountPaid,
		NewAmountPaid:    u.NewAmountPaid,
		Amount:           u.Amount,
		PaymentMethod:    u.PaymentMethod,
		PaymentReference: u.PaymentReference,
		Note:             u.Note,
		Actor:            u.Actor,
		CreatedAt:        u.CreatedAt,
	}
}

// PaymentSubmissionModel is the persistence model for the PaymentSubmission aggregate root.
type PaymentSubmissionModel struct {
	AggregateModel
	LeaseID              uuid.UUID                `gorm:"type:uuid;not null;index"`
	TenantID             uuid.UUID                `gorm:"type:uuid;not null;index:idx_submission_tenant_reference,priority:1"`
	Amount               valueobject.Money        `gorm:"type:decimal(18,4);not null"`
	VerifiedAmount       valueobject.Money        `gorm:"type:decimal(18,4);not null"`
	PaymentMethod        string                   `gorm:"type:varchar(50);not null"`
	TransactionReference string                   `gorm:"type:varchar(100);not null;index:idx_submission_tenant_reference,priority:2"`
	TransactionDate      time.Time                `gorm:"not null;index"`
	Status               billing.SubmissionStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	VerifiedBy           *uuid.UUID               `gorm:"type:uuid"`
	VerifiedAt           *time.Time
	AdminNotes           string     `gorm:"type:text"`
	AppliedObligationID  *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (PaymentSubmissionModel) TableName() string {
	return "payment_submissions"
}

// ToDomain converts the persistence model to a domain PaymentSubmission entity.
func (m *PaymentSubmissionModel) ToDomain() *billing.PaymentSubmission {
	return &billing.PaymentSubmission{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		LeaseID:              m.LeaseID,
		TenantID:             m.TenantID,
		Amount:               m.Amount,
		VerifiedAmount:       m.VerifiedAmount,
		PaymentMethod:        m.PaymentMethod,
		TransactionReference: m.TransactionReference,
		TransactionDate:      m.TransactionDate,
		Status:               m.Status,
		VerifiedBy:           m.VerifiedBy,
		VerifiedAt:           m.VerifiedAt,
		AdminNotes:           m.AdminNotes,
		AppliedObligationID:  m.AppliedObligationID,
	}
}

// FromDomain populates the persistence model from a domain PaymentSubmission entity.
func (m *PaymentSubmissionModel) FromDomain(s *billing.PaymentSubmission) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.LeaseID = s.LeaseID
	m.TenantID = s.TenantID
	m.Amount = s.Amount
	m.VerifiedAmount = s.VerifiedAmount
	m.PaymentMethod = s.PaymentMethod
	m.TransactionReference = s.TransactionReference
	m.TransactionDate = s.TransactionDate
	m.Status = s.Status
	m.VerifiedBy = s.VerifiedBy
	m.VerifiedAt = s.VerifiedAt
	m.AdminNotes = s.AdminNotes
	m.AppliedObligationID = s.AppliedObligationID
}

// PaymentSubmissionModelFromDomain creates a new persistence model from a domain PaymentSubmission.
func PaymentSubmissionModelFromDomain(s *billing.PaymentSubmission) *PaymentSubmissionModel {
	m := &PaymentSubmissionModel{}
	m.FromDomain(s)
	return m
}

// UtilityChargeModel is the persistence model for the UtilityCharge aggregate root.
// One charge per lease per billing month.
type UtilityChargeModel struct {
	AggregateModel
	LeaseID            uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex:idx_charge_lease_month,priority:1;index"`
	TenantID           uuid.UUID            `gorm:"type:uuid;not null;index"`
	BillingYear        int                  `gorm:"not null;uniqueIndex:idx_charge_lease_month,priority:2"`
	BillingMonth       int                  `gorm:"not null;uniqueIndex:idx_charge_lease_month,priority:3"`
	Items              billing.UtilityItems `gorm:"type:jsonb;not null"`
	Status             billing.ChargeStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	BilledObligationID *uuid.UUID           `gorm:"type:uuid;index"`
	Notes              string               `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (UtilityChargeModel) TableName() string {
	return "utility_charges"
}

// ToDomain converts the persistence model to a domain UtilityCharge entity.
func (m *UtilityChargeModel) ToDomain() *billing.UtilityCharge {
	return &billing.UtilityCharge{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		LeaseID:            m.LeaseID,
		TenantID:           m.TenantID,
		BillingYear:        m.BillingYear,
		BillingMonth:       m.BillingMonth,
		Items:              m.Items,
		Status:             m.Status,
		BilledObligationID: m.BilledObligationID,
		Notes:              m.Notes,
	}
}

// FromDomain populates the persistence model from a domain UtilityCharge entity.
func (m *UtilityChargeModel) FromDomain(c *billing.UtilityCharge) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.LeaseID = c.LeaseID
	m.TenantID = c.TenantID
	m.BillingYear = c.BillingYear
	m.BillingMonth = c.BillingMonth
	m.Items = c.Items
	m.Status = c.Status
	m.BilledObligationID = c.BilledObligationID
	m.Notes = c.Notes
}

// UtilityChargeModelFromDomain creates a new persistence model from a domain UtilityCharge.
func UtilityChargeModelFromDomain(c *billing.UtilityCharge) *UtilityChargeModel {
	m := &UtilityChargeModel{}
	m.FromDomain(c)
	return m
}
