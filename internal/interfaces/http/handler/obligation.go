package handler

import (
	"time"

	billingapp "github.com/leaseledger/backend/internal/application/billing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ObligationHandler handles rent obligation API endpoints
type ObligationHandler struct {
	BaseHandler
	billingService    *billingapp.BillingService
	generationService *billingapp.ObligationGenerationService
	overdueService    *billingapp.OverdueService
}

// NewObligationHandler creates a new ObligationHandler
func NewObligationHandler(
	billingService *billingapp.BillingService,
	generationService *billingapp.ObligationGenerationService,
	overdueService *billingapp.OverdueService,
) *ObligationHandler {
	return &ObligationHandler{
		billingService:    billingService,
		generationService: generationService,
		overdueService:    overdueService,
	}
}

// ApplyPaymentRequest represents a request to apply a payment to an obligation
// @Description Request body for applying a payment directly to a rent obligation
type ApplyPaymentRequest struct {
	Amount      float64 `json:"amount" binding:"required,gt=0" example:"25000.00"`
	Method      string  `json:"method" binding:"required,min=1,max=100" example:"bank_transfer"`
	Reference   string  `json:"reference" binding:"max=200" example:"TXN-8842113"`
	PaymentDate string  `json:"payment_date" binding:"required" example:"2026-05-12"`
	Note        string  `json:"note" binding:"max=500" example:"Paid at the office"`
}

// GeneratePeriodRequest selects the billing month for a batch run
// @Description Request body selecting the billing period for a batch run
type GeneratePeriodRequest struct {
	Year  int `json:"year" binding:"required,min=2000,max=2100" example:"2026"`
	Month int `json:"month" binding:"required,min=1,max=12" example:"5"`
}

// OutstandingBalanceResponse reports a lease's total open balance
// @Description Outstanding balance across a lease's open obligations
type OutstandingBalanceResponse struct {
	LeaseID     uuid.UUID       `json:"lease_id"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// List godoc
// @ID           listObligations
// @Summary      List rent obligations
// @Description  Retrieve a paginated list of rent obligations with optional filtering
// @Tags         obligations
// @Produce      json
// @Param        search query string false "Search term (obligation number)"
// @Param        lease_id query string false "Lease ID" format(uuid)
// @Param        tenant_id query string false "Tenant ID" format(uuid)
// @Param        status query string false "Obligation status" Enums(pending, partial, paid, overdue, written_off)
// @Param        period_year query int false "Billing period year"
// @Param        period_month query int false "Billing period month"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]billingapp.ObligationResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/obligations [get]
func (h *ObligationHandler) List(c *gin.Context) {
	var filter billingapp.ObligationListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	obligations, total, err := h.billingService.ListObligations(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, obligations, total, filter.Page, filter.PageSize)
}

// GetByID godoc
// @ID           getObligationById
// @Summary      Get obligation by ID
// @Description  Retrieve a rent obligation by its ID
// @Tags         obligations
// @Produce      json
// @Param        id path string true "Obligation ID" format(uuid)
// @Success      200 {object} APIResponse[billingapp.ObligationResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/obligations/{id} [get]
func (h *ObligationHandler) GetByID(c *gin.Context) {
	obligationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid obligation ID format")
		return
	}

	obligation, err := h.billingService.GetObligation(c.Request.Context(), obligationID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, obligation)
}

// GetByNumber godoc
// @ID           getObligationByNumber
// @Summary      Get obligation by number
// @Description  Retrieve a rent obligation by its business number
// @Tags         obligations
// @Produce      json
// @Param        number path string true "Obligation Number"
// @Success      200 {object} APIResponse[billingapp.ObligationResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/obligations/number/{number} [get]
func (h *ObligationHandler) GetByNumber(c *gin.Context) {
	number := c.Param("number")
	if number == "" {
		h.BadRequest(c, "Obligation number is required")
		return
	}

	obligation, err := h.billingService.GetObligationByNumber(c.Request.Context(), number)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, obligation)
}

// GetHistory godoc
// @ID           getObligationHistory
// @Summary      Get obligation history
// @Description  Retrieve the append-only update history of a rent obligation
// @Tags         obligations
// @Produce      json
// @Param        id path string true "Obligation ID" format(uuid)
// @Success      200 {object} APIResponse[[]billingapp.ObligationUpdateResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/obligations/{id}/history [get]
func (h *ObligationHandler) GetHistory(c *gin.Context) {
	obligationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid obligation ID format")
		return
	}

	history, err := h.billingService.GetObligationHistory(c.Request.Context(), obligationID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, history)
}

// GetSummary godoc
// @ID           getBillingSummary
// @Summary      Get billing summary
// @Description  Portfolio-wide obligation counts by status and the total outstanding balance
// @Tags         obligations
// @Produce      json
// @Success      200 {object} APIResponse[billingapp.BillingSummary]
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/summary [get]
func (h *ObligationHandler) GetSummary(c *gin.Context) {
	summary, err := h.billingService.GetBillingSummary(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, summary)
}

// GetLeaseOutstanding godoc
// @ID           getLeaseOutstandingBalance
// @Summary      Get a lease's outstanding balance
// @Description  Total unpaid balance across a lease's open obligations
// @Tags         obligations
// @Produce      json
// @Param        id path string true "Lease ID" format(uuid)
// @Success      200 {object} APIResponse[OutstandingBalanceResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/leases/{id}/outstanding [get]
func (h *ObligationHandler) GetLeaseOutstanding(c *gin.Context) {
	leaseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lease ID format")
		return
	}

	outstanding, err := h.billingService.GetLeaseOutstanding(c.Request.Context(), leaseID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, OutstandingBalanceResponse{LeaseID: leaseID, Outstanding: outstanding})
}

// ApplyPayment godoc
// @ID           applyObligationPayment
// @Summary      Apply a payment to an obligation
// @Description  Record a received payment against a rent obligation. Payments accumulate; an overshooting amount is rejected.
// @Tags         obligations
// @Accept       json
// @Produce      json
// @Param        id path string true "Obligation ID" format(uuid)
// @Param        request body ApplyPaymentRequest true "Payment application request"
// @Success      200 {object} APIResponse[billingapp.ObligationResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/obligations/{id}/payments [post]
func (h *ObligationHandler) ApplyPayment(c *gin.Context) {
	obligationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid obligation ID format")
		return
	}

	var req ApplyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	paymentDate, err := time.Parse("2006-01-02", req.PaymentDate)
	if err != nil {
		h.BadRequest(c, "Invalid payment date, expected YYYY-MM-DD")
		return
	}

	actor, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	appReq := billingapp.ApplyPaymentRequest{
		ObligationID: obligationID,
		Amount:       toDecimal(req.Amount),
		Method:       req.Method,
		Reference:    req.Reference,
		PaymentDate:  paymentDate,
		Actor:        actor,
		Note:         req.Note,
	}

	obligation, err := h.billingService.ApplyPayment(c.Request.Context(), appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, obligation)
}

// RunGeneration godoc
// @ID           runObligationGeneration
// @Summary      Generate obligations for a period
// @Description  Create one rent obligation per active lease covering the billing month. Re-runs skip leases already billed.
// @Tags         obligations
// @Accept       json
// @Produce      json
// @Param        request body GeneratePeriodRequest true "Billing period"
// @Success      200 {object} APIResponse[billingapp.GenerationStats]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/obligations/generate [post]
func (h *ObligationHandler) RunGeneration(c *gin.Context) {
	var req GeneratePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	actor, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	stats, err := h.generationService.GenerateForPeriod(c.Request.Context(), req.Year, time.Month(req.Month), &actor)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, stats)
}

// RunOverduePromotion godoc
// @ID           runOverduePromotion
// @Summary      Promote overdue obligations
// @Description  Scan pending obligations past their lease's grace window and mark them overdue with the lease's late fee.
// @Tags         obligations
// @Produce      json
// @Success      200 {object} APIResponse[billingapp.OverdueStats]
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/obligations/promote-overdue [post]
func (h *ObligationHandler) RunOverduePromotion(c *gin.Context) {
	stats, err := h.overdueService.PromoteOverdue(c.Request.Context(), time.Now())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, stats)
}
