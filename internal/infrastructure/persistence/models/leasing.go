package models

import (
	"time"

	"github.com/leaseledger/backend/internal/domain/leasing"
	"github.com/leaseledger/backend/internal/domain/shared"
	"github.com/leaseledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// UnitModel is the persistence model for the Unit aggregate root.
type UnitModel struct {
	AggregateModel
	Code          string                  `gorm:"type:varchar(50);not null;uniqueIndex"`
	PropertyName  string                  `gorm:"type:varchar(200)"`
	Address       valueobject.Address     `gorm:"type:jsonb"`
	Occupancy     leasing.OccupancyStatus `gorm:"type:varchar(20);not null;default:'vacant';index"`
	ActiveLeaseID *uuid.UUID              `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (UnitModel) TableName() string {
	return "units"
}

// ToDomain converts the persistence model to a domain Unit entity.
func (m *UnitModel) ToDomain() *leasing.Unit {
	return &leasing.Unit{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		Code:          m.Code,
		PropertyName:  m.PropertyName,
		Address:       m.Address,
		Occupancy:     m.Occupancy,
		ActiveLeaseID: m.ActiveLeaseID,
	}
}

// FromDomain populates the persistence model from a domain Unit entity.
func (m *UnitModel) FromDomain(u *leasing.Unit) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.Code = u.Code
	m.PropertyName = u.PropertyName
	m.Address = u.Address
	m.Occupancy = u.Occupancy
	m.ActiveLeaseID = u.ActiveLeaseID
}

// UnitModelFromDomain creates a new persistence model from a domain Unit.
func UnitModelFromDomain(u *leasing.Unit) *UnitModel {
	m := &UnitModel{}
	m.FromDomain(u)
	return m
}

// TenantModel is the persistence model for the Tenant (renter) aggregate root.
type TenantModel struct {
	AggregateModel
	FullName      string                  `gorm:"type:varchar(200);not null"`
	Phone         string                  `gorm:"type:varchar(20);not null;uniqueIndex"`
	Email         string                  `gorm:"type:varchar(255)"`
	Blacklist     leasing.BlacklistStatus `gorm:"type:varchar(20);not null;default:'none';index"`
	DebtFlagged   bool                    `gorm:"not null;default:false;index"`
	ActiveLeaseID *uuid.UUID              `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (TenantModel) TableName() string {
	return "tenants"
}

// ToDomain converts the persistence model to a domain Tenant entity.
func (m *TenantModel) ToDomain() *leasing.Tenant {
	return &leasing.Tenant{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		FullName:      m.FullName,
		Phone:         m.Phone,
		Email:         m.Email,
		Blacklist:     m.Blacklist,
		DebtFlagged:   m.DebtFlagged,
		ActiveLeaseID: m.ActiveLeaseID,
	}
}

// FromDomain populates the persistence model from a domain Tenant entity.
func (m *TenantModel) FromDomain(t *leasing.Tenant) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.FullName = t.FullName
	m.Phone = t.Phone
	m.Email = t.Email
	m.Blacklist = t.Blacklist
	m.DebtFlagged = t.DebtFlagged
	m.ActiveLeaseID = t.ActiveLeaseID
}

// TenantModelFromDomain creates a new persistence model from a domain Tenant.
func TenantModelFromDomain(t *leasing.Tenant) *TenantModel {
	m := &TenantModel{}
	m.FromDomain(t)
	return m
}

// LeaseModel is the persistence model for the Lease aggregate root.
type LeaseModel struct {
	AggregateModel
	LeaseNumber     string              `gorm:"type:varchar(50);not null;uniqueIndex"`
	UnitID          uuid.UUID           `gorm:"type:uuid;not null;index"`
	TenantID        uuid.UUID           `gorm:"type:uuid;not null;index"`
	MonthlyRent     valueobject.Money   `gorm:"type:decimal(18,4);not null"`
	LateFee         valueobject.Money   `gorm:"type:decimal(18,4);not null"`
	GracePeriodDays int                 `gorm:"not null;default:0"`
	RentDueDay      int                 `gorm:"not null;default:1"`
	DepositAmount   valueobject.Money   `gorm:"type:decimal(18,4);not null"`
	StartDate       time.Time           `gorm:"not null;index"`
	EndDate         time.Time           `gorm:"not null;index"`
	MoveOutDate     *time.Time
	Status          leasing.LeaseStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
}

// TableName returns the table name for GORM
func (LeaseModel) TableName() string {
	return "leases"
}

// ToDomain converts the persistence model to a domain Lease entity.
func (m *LeaseModel) ToDomain() *leasing.Lease {
	return &leasing.Lease{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		LeaseNumber:     m.LeaseNumber,
		UnitID:          m.UnitID,
		TenantID:        m.TenantID,
		MonthlyRent:     m.MonthlyRent,
		LateFee:         m.LateFee,
		GracePeriodDays: m.GracePeriodDays,
		RentDueDay:      m.RentDueDay,
		DepositAmount:   m.DepositAmount,
		StartDate:       m.StartDate,
		EndDate:         m.EndDate,
		MoveOutDate:     m.MoveOutDate,
		Status:          m.Status,
	}
}

// FromDomain populates the persistence model from a domain Lease entity.
func (m *LeaseModel) FromDomain(l *leasing.Lease) {
	m.FromDomainAggregateRoot(l.BaseAggregateRoot)
	m.LeaseNumber = l.LeaseNumber
	m.UnitID = l.UnitID
	m.TenantID = l.TenantID
	m.MonthlyRent = l.MonthlyRent
	m.LateFee = l.LateFee
	m.GracePeriodDays = l.GracePeriodDays
	m.RentDueDay = l.RentDueDay
	m.DepositAmount = l.DepositAmount
	m.StartDate = l.StartDate
	m.EndDate = l.EndDate
	m.MoveOutDate = l.MoveOutDate
	m.Status = l.Status
}

// LeaseModelFromDomain creates a new persistence model from a domain Lease.
func LeaseModelFromDomain(l *leasing.Lease) *LeaseModel {
	m := &LeaseModel{}
	m.FromDomain(l)
	return m
}

// SecurityDepositModel is the persistence model for the SecurityDeposit aggregate root.
type SecurityDepositModel struct {
	AggregateModel
	LeaseID         uuid.UUID              `gorm:"type:uuid;not null;uniqueIndex"`
	TenantID        uuid.UUID              `gorm:"type:uuid;not null;index"`
	AmountCollected valueobject.Money      `gorm:"type:decimal(18,4);not null"`
	AmountReturned  valueobject.Money      `gorm:"type:decimal(18,4);not null"`
	Deductions      valueobject.Money      `gorm:"type:decimal(18,4);not null"`
	Itemization     leasing.DeductionItems `gorm:"type:jsonb;default:'[]'"`
	Status          leasing.DepositStatus  `gorm:"type:varchar(30);not null;default:'held';index"`
	CollectedAt     time.Time              `gorm:"not null"`
	FinalizedAt     *time.Time
}

// TableName returns the table name for GORM
func (SecurityDepositModel) TableName() string {
	return "security_deposits"
}

// ToDomain converts the persistence model to a domain SecurityDeposit entity.
func (m *SecurityDepositModel) ToDomain() *leasing.SecurityDeposit {
	return &leasing.SecurityDeposit{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		LeaseID:         m.LeaseID,
		TenantID:        m.TenantID,
		AmountCollected: m.AmountCollected,
		AmountReturned:  m.AmountReturned,
		Deductions:      m.Deductions,
		Itemization:     m.Itemization,
		Status:          m.Status,
		CollectedAt:     m.CollectedAt,
		FinalizedAt:     m.FinalizedAt,
	}
}

// FromDomain populates the persistence model from a domain SecurityDeposit entity.
func (m *SecurityDepositModel) FromDomain(d *leasing.SecurityDeposit) {
	m.FromDomainAggregateRoot(d.BaseAggregateRoot)
	m.LeaseID = d.LeaseID
	m.TenantID = d.TenantID
	m.AmountCollected = d.AmountCollected
	m.AmountReturned = d.AmountReturned
	m.Deductions = d.Deductions
	m.Itemization = d.Itemization
	m.Status = d.Status
	m.CollectedAt = d.CollectedAt
	m.FinalizedAt = d.FinalizedAt
}

// SecurityDepositModelFromDomain creates a new persistence model from a domain SecurityDeposit.
func SecurityDepositModelFromDomain(d *leasing.SecurityDeposit) *SecurityDepositModel {
	m := &SecurityDepositModel{}
	m.FromDomain(d)
	return m
}

// SettlementModel is the persistence model for the Settlement aggregate root.
// Settlements are written once at move-out and never updated.
type SettlementModel struct {
	AggregateModel
	LeaseID               uuid.UUID                  `gorm:"type:uuid;not null;uniqueIndex"`
	TenantID              uuid.UUID                  `gorm:"type:uuid;not null;index"`
	UnitID                uuid.UUID                  `gorm:"type:uuid;not null;index"`
	MoveOutDate           time.Time                  `gorm:"not null;index"`
	UnpaidRentHandling    leasing.UnpaidRentHandling `gorm:"type:varchar(20);not null"`
	TotalUnpaidRent       valueobject.Money          `gorm:"type:decimal(18,4);not null"`
	DeductionItems        leasing.DeductionItems     `gorm:"type:jsonb;default:'[]'"`
	TotalDeductions       valueobject.Money          `gorm:"type:decimal(18,4);not null"`
	DepositAmount         valueobject.Money          `gorm:"type:decimal(18,4);not null"`
	RefundAmount          valueobject.Money          `gorm:"type:decimal(18,4);not null"`
	DepositStatus         leasing.DepositStatus      `gorm:"type:varchar(30);not null"`
	SettledObligations    int                        `gorm:"not null;default:0"`
	WrittenOffObligations int                        `gorm:"not null;default:0"`
	ExecutedBy            uuid.UUID                  `gorm:"type:uuid;not null"`
	Notes                 string                     `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (SettlementModel) TableName() string {
	return "settlements"
}

// ToDomain converts the persistence model to a domain Settlement entity.
func (m *SettlementModel) ToDomain() *leasing.Settlement {
	return &leasing.Settlement{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		LeaseID:               m.LeaseID,
		TenantID:              m.TenantID,
		UnitID:                m.UnitID,
		MoveOutDate:           m.MoveOutDate,
		UnpaidRentHandling:    m.UnpaidRentHandling,
		TotalUnpaidRent:       m.TotalUnpaidRent,
		DeductionItems:        m.DeductionItems,
		TotalDeductions:       m.TotalDeductions,
		DepositAmount:         m.DepositAmount,
		RefundAmount:          m.RefundAmount,
		DepositStatus:         m.DepositStatus,
		SettledObligations:    m.SettledObligations,
		WrittenOffObligations: m.WrittenOffObligations,
		ExecutedBy:            m.ExecutedBy,
		Notes:                 m.Notes,
	}
}

// FromDomain populates the persistence model from a domain Settlement entity.
func (m *SettlementModel) FromDomain(s *leasing.Settlement) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.LeaseID = s.LeaseID
	m.TenantID = s.TenantID
	m.UnitID = s.UnitID
	m.MoveOutDate = s.MoveOutDate
	m.UnpaidRentHandling = s.UnpaidRentHandling
	m.TotalUnpaidRent = s.TotalUnpaidRent
	m.DeductionItems = s.DeductionItems
	m.TotalDeductions = s.TotalDeductions
	m.DepositAmount = s.DepositAmount
	m.RefundAmount = s.RefundAmount
	m.DepositStatus = s.DepositStatus
	m.SettledObligations = s.SettledObligations
	m.WrittenOffObligations = s.WrittenOffObligations
	m.ExecutedBy = s.ExecutedBy
	m.Notes = s.Notes
}

// SettlementModelFromDomain creates a new persistence model from a domain Settlement.
func SettlementModelFromDomain(s *leasing.Settlement) *SettlementModel {
	m := &SettlementModel{}
	m.FromDomain(s)
	return m
}
