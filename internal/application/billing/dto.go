package billing

import (
	"time"

	"github.com/leaseledger/backend/internal/domain/billing"
	"github.com/leaseledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ObligationResponse represents a rent obligation in API responses
type ObligationResponse struct {
	ID                 uuid.UUID       `json:"id"`
	ObligationNumber   string          `json:"obligation_number"`
	LeaseID            uuid.UUID       `json:"lease_id"`
	TenantID           uuid.UUID       `json:"tenant_id"`
	PeriodYear         int             `json:"period_year"`
	PeriodMonth        int             `json:"period_month"`
	DueDate            time.Time       `json:"due_date"`
	AmountDue          decimal.Decimal `json:"amount_due"`
	UtilitiesCharges   decimal.Decimal `json:"utilities_charges"`
	LateFee            decimal.Decimal `json:"late_fee"`
	AmountPaid         decimal.Decimal `json:"amount_paid"`
	TotalDue           decimal.Decimal `json:"total_due"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
	Currency           string          `json:"currency"`
	Status             string          `json:"status"`
	PaymentMethod      string          `json:"payment_method,omitempty"`
	PaymentReference   string          `json:"payment_reference,omitempty"`
	PaymentDate        *time.Time      `json:"payment_date,omitempty"`
	ProcessedBy        *uuid.UUID      `json:"processed_by,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	Version            int             `json:"version"`
}

// ObligationUpdateResponse represents one history entry of an obligation
type ObligationUpdateResponse struct {
	ID               uuid.UUID       `json:"id"`
	ObligationID     uuid.UUID       `json:"obligation_id"`
	OldStatus        string          `json:"old_status"`
	NewStatus        string          `json:"new_status"`
	OldAmountPaid    decimal.Decimal `json:"old_amount_paid"`
	NewAmountPaid    decimal.Decimal `json:"new_amount_paid"`
	Amount           decimal.Decimal `json:"amount"`
	PaymentMethod    string          `json:"payment_method,omitempty"`
	PaymentReference string          `json:"payment_reference,omitempty"`
	Note             string          `json:"note,omitempty"`
	Actor            *uuid.UUID      `json:"actor,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// ObligationListFilter defines filtering options for obligation list queries
type ObligationListFilter struct {
	Search      string     `form:"search"`
	LeaseID     *uuid.UUID `form:"lease_id"`
	TenantID    *uuid.UUID `form:"tenant_id"`
	Status      string     `form:"status"`
	PeriodYear  *int       `form:"period_year"`
	PeriodMonth *int       `form:"period_month"`
	DueFrom     *time.Time `form:"due_from"`
	DueTo       *time.Time `form:"due_to"`
	Page        int        `form:"page"`
	PageSize    int        `form:"page_size"`
}

// SubmissionResponse represents a payment submission in API responses
type SubmissionResponse struct {
	ID                   uuid.UUID       `json:"id"`
	LeaseID              uuid.UUID       `json:"lease_id"`
	TenantID             uuid.UUID       `json:"tenant_id"`
	Amount               decimal.Decimal `json:"amount"`
	VerifiedAmount       decimal.Decimal `json:"verified_amount"`
	Currency             string          `json:"currency"`
	PaymentMethod        string          `json:"payment_method"`
	TransactionReference string          `json:"transaction_reference"`
	TransactionDate      time.Time       `json:"transaction_date"`
	Status               string          `json:"status"`
	VerifiedBy           *uuid.UUID      `json:"verified_by,omitempty"`
	VerifiedAt           *time.Time      `json:"verified_at,omitempty"`
	AdminNotes           string          `json:"admin_notes,omitempty"`
	AppliedObligationID  *uuid.UUID      `json:"applied_obligation_id,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
	Version              int             `json:"version"`
}

// SubmissionListFilter defines filtering options for submission list queries
type SubmissionListFilter struct {
	Search   string     `form:"search"`
	LeaseID  *uuid.UUID `form:"lease_id"`
	TenantID *uuid.UUID `form:"tenant_id"`
	Status   string     `form:"status"`
	Method   string     `form:"method"`
	FromDate *time.Time `form:"from_date"`
	ToDate   *time.Time `form:"to_date"`
	Page     int        `form:"page"`
	PageSize int        `form:"page_size"`
}

// UtilityItemsPayload carries the per-category utility amounts
type UtilityItemsPayload struct {
	Water       decimal.Decimal `json:"water"`
	Electricity decimal.Decimal `json:"electricity"`
	Gas         decimal.Decimal `json:"gas"`
	Service     decimal.Decimal `json:"service"`
	Garbage     decimal.Decimal `json:"garbage"`
	CommonArea  decimal.Decimal `json:"common_area"`
	Other       decimal.Decimal `json:"other"`
}

// UtilityChargeResponse represents a utility charge in API responses
type UtilityChargeResponse struct {
	ID                 uuid.UUID           `json:"id"`
	LeaseID            uuid.UUID           `json:"lease_id"`
	TenantID           uuid.UUID           `json:"tenant_id"`
	BillingYear        int                 `json:"billing_year"`
	BillingMonth       int                 `json:"billing_month"`
	Items              UtilityItemsPayload `json:"items"`
	TotalAmount        decimal.Decimal     `json:"total_amount"`
	Currency           string              `json:"currency"`
	Status             string              `json:"status"`
	BilledObligationID *uuid.UUID          `json:"billed_obligation_id,omitempty"`
	Notes              string              `json:"notes,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
	Version            int                 `json:"version"`
}

// UtilityChargeListFilter defines filtering options for charge list queries
type UtilityChargeListFilter struct {
	LeaseID      *uuid.UUID `form:"lease_id"`
	TenantID     *uuid.UUID `form:"tenant_id"`
	Status       string     `form:"status"`
	BillingYear  *int       `form:"billing_year"`
	BillingMonth *int       `form:"billing_month"`
	Page         int        `form:"page"`
	PageSize     int        `form:"page_size"`
}

// ToObligationResponse converts a rent obligation to its API representation
func ToObligationResponse(o *billing.RentObligation) *ObligationResponse {
	return &ObligationResponse{
		ID:                 o.ID,
		ObligationNumber:   o.ObligationNumber,
		LeaseID:            o.LeaseID,
		TenantID:           o.TenantID,
		PeriodYear:         o.PeriodYear,
		PeriodMonth:        o.PeriodMonth,
		DueDate:            o.DueDate,
		AmountDue:          o.AmountDue.Amount(),
		UtilitiesCharges:   o.UtilitiesCharges.Amount(),
		LateFee:            o.LateFee.Amount(),
		AmountPaid:         o.AmountPaid.Amount(),
		TotalDue:           o.TotalDue().Amount(),
		OutstandingBalance: o.OutstandingBalance().Amount(),
		Currency:           string(o.AmountDue.Currency()),
		Status:             string(o.Status),
		PaymentMethod:      o.PaymentMethod,
		PaymentReference:   o.PaymentReference,
		PaymentDate:        o.PaymentDate,
		ProcessedBy:        o.ProcessedBy,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
		Version:            o.Version,
	}
}

// ToObligationUpdateResponse converts a history entry to its API representation
func ToObligationUpdateResponse(u billing.ObligationUpdate) ObligationUpdateResponse {
	return ObligationUpdateResponse{
		ID:               u.ID,
		ObligationID:     u.ObligationID,
		OldStatus:        string(u.OldStatus),
		NewStatus:        string(u.NewStatus),
		OldAmountPaid:    u.OldAmountPaid.Amount(),
		NewAmountPaid:    u.NewAmountPaid.Amount(),
		Amount:           u.Amount.Amount(),
		PaymentMethod:    u.PaymentMethod,
		PaymentReference: u.PaymentReference,
		Note:             u.Note,
		Actor:            u.Actor,
		CreatedAt:        u.CreatedAt,
	}
}

// ToSubmissionResponse converts a payment submission to its API representation
func ToSubmissionResponse(s *billing.PaymentSubmission) *SubmissionResponse {
	return &SubmissionResponse{
		ID:                   s.ID,
		LeaseID:              s.LeaseID,
		TenantID:             s.TenantID,
		Amount:               s.Amount.Amount(),
		VerifiedAmount:       s.VerifiedAmount.Amount(),
		Currency:             string(s.Amount.Currency()),
		PaymentMethod:        s.PaymentMethod,
		TransactionReference: s.TransactionReference,
		TransactionDate:      s.TransactionDate,
		Status:               string(s.Status),
		VerifiedBy:           s.VerifiedBy,
		VerifiedAt:           s.VerifiedAt,
		AdminNotes:           s.AdminNotes,
		AppliedObligationID:  s.AppliedObligationID,
		CreatedAt:            s.CreatedAt,
		UpdatedAt:            s.UpdatedAt,
		Version:              s.Version,
	}
}

// ToUtilityItems builds the domain itemization from a payload, with every
// item in the given currency
func ToUtilityItems(p UtilityItemsPayload, currency valueobject.Currency) (billing.UtilityItems, error) {
	var items billing.UtilityItems
	fields := []struct {
		dst   *valueobject.Money
		value decimal.Decimal
	}{
		{&items.Water, p.Water},
		{&items.Electricity, p.Electricity},
		{&items.Gas, p.Gas},
		{&items.Service, p.Service},
		{&items.Garbage, p.Garbage},
		{&items.CommonArea, p.CommonArea},
		{&items.Other, p.Other},
	}
	for _, f := range fields {
		money, err := valueobject.NewMoney(f.value, currency)
		if err != nil {
			return billing.UtilityItems{}, err
		}
		*f.dst = money
	}
	return items, nil
}

// ToUtilityChargeResponse converts a utility charge to its API representation
func ToUtilityChargeResponse(c *billing.UtilityCharge) *UtilityChargeResponse {
	return &UtilityChargeResponse{
		ID:           c.ID,
		LeaseID:      c.LeaseID,
		TenantID:     c.TenantID,
		BillingYear:  c.BillingYear,
		BillingMonth: c.BillingMonth,
		Items: UtilityItemsPayload{
			Water:       c.Items.Water.Amount(),
			Electricity: c.Items.Electricity.Amount(),
			Gas:         c.Items.Gas.Amount(),
			Service:     c.Items.Service.Amount(),
			Garbage:     c.Items.Garbage.Amount(),
			CommonArea:  c.Items.CommonArea.Amount(),
			Other:       c.Items.Other.Amount(),
		},
		TotalAmount:        c.TotalAmount().Amount(),
		Currency:           string(c.TotalAmount().Currency()),
		Status:             string(c.Status),
		BilledObligationID: c.BilledObligationID,
		Notes:              c.Notes,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
		Version:            c.Version,
	}
}
