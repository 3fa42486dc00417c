package leasing

import (
	"time"

	"github.com/leaseledger/backend/internal/domain/leasing"
	"github.com/leaseledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LeaseResponse represents a lease in API responses
type LeaseResponse struct {
	ID              uuid.UUID       `json:"id"`
	LeaseNumber     string          `json:"lease_number"`
	UnitID          uuid.UUID       `json:"unit_id"`
	TenantID        uuid.UUID       `json:"tenant_id"`
	MonthlyRent     decimal.Decimal `json:"monthly_rent"`
	LateFee         decimal.Decimal `json:"late_fee"`
	GracePeriodDays int             `json:"grace_period_days"`
	RentDueDay      int             `json:"rent_due_day"`
	DepositAmount   decimal.Decimal `json:"deposit_amount"`
	Currency        string          `json:"currency"`
	StartDate       time.Time       `json:"start_date"`
	EndDate         time.Time       `json:"end_date"`
	MoveOutDate     *time.Time      `json:"move_out_date,omitempty"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Version         int             `json:"version"`
}

// LeaseListFilter defines filtering options for lease list queries
type LeaseListFilter struct {
	Search   string     `form:"search"`
	UnitID   *uuid.UUID `form:"unit_id"`
	TenantID *uuid.UUID `form:"tenant_id"`
	Status   string     `form:"status"`
	ActiveOn *time.Time `form:"active_on"`
	Page     int        `form:"page"`
	PageSize int        `form:"page_size"`
}

// TenantResponse represents a renter in API responses
type TenantResponse struct {
	ID            uuid.UUID  `json:"id"`
	FullName      string     `json:"full_name"`
	Phone         string     `json:"phone"`
	Email         string     `json:"email,omitempty"`
	Blacklist     string     `json:"blacklist"`
	DebtFlagged   bool       `json:"debt_flagged"`
	ActiveLeaseID *uuid.UUID `json:"active_lease_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	Version       int        `json:"version"`
}

// TenantListFilter defines filtering options for renter list queries
type TenantListFilter struct {
	Search      string `form:"search"`
	Blacklist   string `form:"blacklist"`
	DebtFlagged *bool  `form:"debt_flagged"`
	Page        int    `form:"page"`
	PageSize    int    `form:"page_size"`
}

// AddressPayload carries a property address in requests and responses
type AddressPayload struct {
	Street     string `json:"street"`
	Town       string `json:"town"`
	County     string `json:"county,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

// ToValueObject converts the payload to a domain address
func (p AddressPayload) ToValueObject() (valueobject.Address, error) {
	var opts []valueobject.AddressOption
	if p.PostalCode != "" {
		opts = append(opts, valueobject.WithPostalCode(p.PostalCode))
	}
	if p.Country != "" {
		opts = append(opts, valueobject.WithCountry(p.Country))
	}
	return valueobject.NewAddress(p.Street, p.Town, p.County, opts...)
}

// UnitResponse represents a leasable unit in API responses
type UnitResponse struct {
	ID            uuid.UUID       `json:"id"`
	Code          string          `json:"code"`
	PropertyName  string          `json:"property_name,omitempty"`
	Address       *AddressPayload `json:"address,omitempty"`
	Occupancy     string          `json:"occupancy"`
	ActiveLeaseID *uuid.UUID      `json:"active_lease_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Version       int             `json:"version"`
}

// UnitListFilter defines filtering options for unit list queries
type UnitListFilter struct {
	Search       string `form:"search"`
	Occupancy    string `form:"occupancy"`
	PropertyName string `form:"property_name"`
	Page         int    `form:"page"`
	PageSize     int    `form:"page_size"`
}

// DeductionLinePayload carries one deduction line withheld from a deposit
type DeductionLinePayload struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// DepositResponse represents a security deposit in API responses
type DepositResponse struct {
	ID              uuid.UUID              `json:"id"`
	LeaseID         uuid.UUID              `json:"lease_id"`
	TenantID        uuid.UUID              `json:"tenant_id"`
	AmountCollected decimal.Decimal        `json:"amount_collected"`
	AmountReturned  decimal.Decimal        `json:"amount_returned"`
	Deductions      decimal.Decimal        `json:"deductions"`
	Itemization     []DeductionLinePayload `json:"itemization"`
	Currency        string                 `json:"currency"`
	Status          string                 `json:"status"`
	CollectedAt     time.Time              `json:"collected_at"`
	FinalizedAt     *time.Time             `json:"finalized_at,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
	Version         int                    `json:"version"`
}

// SettlementResponse represents a settlement record in API responses
type SettlementResponse struct {
	ID                    uuid.UUID              `json:"id"`
	LeaseID               uuid.UUID              `json:"lease_id"`
	TenantID              uuid.UUID              `json:"tenant_id"`
	UnitID                uuid.UUID              `json:"unit_id"`
	MoveOutDate           time.Time              `json:"move_out_date"`
	UnpaidRentHandling    string                 `json:"unpaid_rent_handling"`
	TotalUnpaidRent       decimal.Decimal        `json:"total_unpaid_rent"`
	DeductionItems        []DeductionLinePayload `json:"deduction_items"`
	TotalDeductions       decimal.Decimal        `json:"total_deductions"`
	DepositAmount         decimal.Decimal        `json:"deposit_amount"`
	RefundAmount          decimal.Decimal        `json:"refund_amount"`
	Currency              string                 `json:"currency"`
	DepositStatus         string                 `json:"deposit_status"`
	SettledObligations    int                    `json:"settled_obligations"`
	WrittenOffObligations int                    `json:"written_off_obligations"`
	ExecutedBy            uuid.UUID              `json:"executed_by"`
	Notes                 string                 `json:"notes,omitempty"`
	CreatedAt             time.Time              `json:"created_at"`
}

// SettlementListFilter defines filtering options for settlement list queries
type SettlementListFilter struct {
	TenantID *uuid.UUID `form:"tenant_id"`
	UnitID   *uuid.UUID `form:"unit_id"`
	FromDate *time.Time `form:"from_date"`
	ToDate   *time.Time `form:"to_date"`
	Page     int        `form:"page"`
	PageSize int        `form:"page_size"`
}

// UnpaidObligationPreview is one open obligation in a settlement preview
type UnpaidObligationPreview struct {
	ObligationID     uuid.UUID       `json:"obligation_id"`
	ObligationNumber string          `json:"obligation_number"`
	PeriodYear       int             `json:"period_year"`
	PeriodMonth      int             `json:"period_month"`
	Status           string          `json:"status"`
	TotalDue         decimal.Decimal `json:"total_due"`
	AmountPaid       decimal.Decimal `json:"amount_paid"`
	RentBalance      decimal.Decimal `json:"rent_balance"`
}

// SettlementPreviewResponse shows what a settlement would resolve before
// an admin commits to it
type SettlementPreviewResponse struct {
	LeaseID         uuid.UUID                 `json:"lease_id"`
	LeaseNumber     string                    `json:"lease_number"`
	DepositHeld     decimal.Decimal           `json:"deposit_held"`
	TotalUnpaidRent decimal.Decimal           `json:"total_unpaid_rent"`
	Currency        string                    `json:"currency"`
	Obligations     []UnpaidObligationPreview `json:"obligations"`
}

// ToLeaseResponse converts a lease to its API representation
func ToLeaseResponse(l *leasing.Lease) *LeaseResponse {
	return &LeaseResponse{
		ID:              l.ID,
		LeaseNumber:     l.LeaseNumber,
		UnitID:          l.UnitID,
		TenantID:        l.TenantID,
		MonthlyRent:     l.MonthlyRent.Amount(),
		LateFee:         l.LateFee.Amount(),
		GracePeriodDays: l.GracePeriodDays,
		RentDueDay:      l.RentDueDay,
		DepositAmount:   l.DepositAmount.Amount(),
		Currency:        string(l.MonthlyRent.Currency()),
		StartDate:       l.StartDate,
		EndDate:         l.EndDate,
		MoveOutDate:     l.MoveOutDate,
		Status:          string(l.Status),
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
		Version:         l.Version,
	}
}

// ToTenantResponse converts a renter to its API representation
func ToTenantResponse(t *leasing.Tenant) *TenantResponse {
	return &TenantResponse{
		ID:            t.ID,
		FullName:      t.FullName,
		Phone:         t.Phone,
		Email:         t.Email,
		Blacklist:     string(t.Blacklist),
		DebtFlagged:   t.DebtFlagged,
		ActiveLeaseID: t.ActiveLeaseID,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
		Version:       t.Version,
	}
}

// ToUnitResponse converts a unit to its API representation
func ToUnitResponse(u *leasing.Unit) *UnitResponse {
	var addr *AddressPayload
	if !u.Address.IsEmpty() {
		addr = &AddressPayload{
			Street:     u.Address.Street(),
			Town:       u.Address.Town(),
			County:     u.Address.County(),
			PostalCode: u.Address.PostalCode(),
			Country:    u.Address.Country(),
		}
	}
	return &UnitResponse{
		ID:            u.ID,
		Code:          u.Code,
		PropertyName:  u.PropertyName,
		Address:       addr,
		Occupancy:     string(u.Occupancy),
		ActiveLeaseID: u.ActiveLeaseID,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
		Version:       u.Version,
	}
}

// ToDepositResponse converts a security deposit to its API representation
func ToDepositResponse(d *leasing.SecurityDeposit) *DepositResponse {
	return &DepositResponse{
		ID:              d.ID,
		LeaseID:         d.LeaseID,
		TenantID:        d.TenantID,
		AmountCollected: d.AmountCollected.Amount(),
		AmountReturned:  d.AmountReturned.Amount(),
		Deductions:      d.Deductions.Amount(),
		Itemization:     toDeductionPayloads(d.Itemization),
		Currency:        string(d.AmountCollected.Currency()),
		Status:          string(d.Status),
		CollectedAt:     d.CollectedAt,
		FinalizedAt:     d.FinalizedAt,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
		Version:         d.Version,
	}
}

// ToSettlementResponse converts a settlement record to its API representation
func ToSettlementResponse(s *leasing.Settlement) *SettlementResponse {
	return &SettlementResponse{
		ID:                    s.ID,
		LeaseID:               s.LeaseID,
		TenantID:              s.TenantID,
		UnitID:                s.UnitID,
		MoveOutDate:           s.MoveOutDate,
		UnpaidRentHandling:    string(s.UnpaidRentHandling),
		TotalUnpaidRent:       s.TotalUnpaidRent.Amount(),
		DeductionItems:        toDeductionPayloads(s.DeductionItems),
		TotalDeductions:       s.TotalDeductions.Amount(),
		DepositAmount:         s.DepositAmount.Amount(),
		RefundAmount:          s.RefundAmount.Amount(),
		Currency:              string(s.DepositAmount.Currency()),
		DepositStatus:         string(s.DepositStatus),
		SettledObligations:    s.SettledObligations,
		WrittenOffObligations: s.WrittenOffObligations,
		ExecutedBy:            s.ExecutedBy,
		Notes:                 s.Notes,
		CreatedAt:             s.CreatedAt,
	}
}

func toDeductionPayloads(items leasing.DeductionItems) []DeductionLinePayload {
	payloads := make([]DeductionLinePayload, len(items))
	for i, item := range items {
		payloads[i] = DeductionLinePayload{Description: item.Description, Amount: item.Amount}
	}
	return payloads
}

func toDeductionItems(payloads []DeductionLinePayload) leasing.DeductionItems {
	items := make(leasing.DeductionItems, len(payloads))
	for i, p := range payloads {
		items[i] = leasing.DeductionItem{Description: p.Description, Amount: p.Amount}
	}
	return items
}
