package handler

import (
	"time"

	billingapp "github.com/leaseledger/backend/internal/application/billing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UtilityChargeHandler handles utility charge API endpoints
type UtilityChargeHandler struct {
	BaseHandler
	utilityService *billingapp.UtilityService
}

// NewUtilityChargeHandler creates a new UtilityChargeHandler
func NewUtilityChargeHandler(utilityService *billingapp.UtilityService) *UtilityChargeHandler {
	return &UtilityChargeHandler{
		utilityService: utilityService,
	}
}

// UtilityItemsRequest carries the per-category utility amounts of a request
// @Description Itemized utility amounts for one billing month
type UtilityItemsRequest struct {
	Water       float64 `json:"water" binding:"gte=0" example:"1200.00"`
	Electricity float64 `json:"electricity" binding:"gte=0" example:"3400.00"`
	Gas         float64 `json:"gas" binding:"gte=0" example:"0"`
	Service     float64 `json:"service" binding:"gte=0" example:"500.00"`
	Garbage     float64 `json:"garbage" binding:"gte=0" example:"300.00"`
	CommonArea  float64 `json:"common_area" binding:"gte=0" example:"250.00"`
	Other       float64 `json:"other" binding:"gte=0" example:"0"`
}

// CreateChargeRequest represents a request to itemize a month's utilities
// @Description Request body for itemizing a lease's utility charge
type CreateChargeRequest struct {
	LeaseID      string              `json:"lease_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	BillingYear  int                 `json:"billing_year" binding:"required,min=2000,max=2100" example:"2026"`
	BillingMonth int                 `json:"billing_month" binding:"required,min=1,max=12" example:"5"`
	Items        UtilityItemsRequest `json:"items" binding:"required"`
	Notes        string              `json:"notes" binding:"max=500" example:"Meter read on the 28th"`
	AsDraft      bool                `json:"as_draft" example:"false"`
}

// UpdateChargeRequest represents a request to re-itemize a charge
// @Description Request body for replacing a charge's itemization
type UpdateChargeRequest struct {
	Items UtilityItemsRequest `json:"items" binding:"required"`
	Notes string              `json:"notes" binding:"max=500"`
}

func toItemsPayload(r UtilityItemsRequest) billingapp.UtilityItemsPayload {
	return billingapp.UtilityItemsPayload{
		Water:       toDecimal(r.Water),
		Electricity: toDecimal(r.Electricity),
		Gas:         toDecimal(r.Gas),
		Service:     toDecimal(r.Service),
		Garbage:     toDecimal(r.Garbage),
		CommonArea:  toDecimal(r.CommonArea),
		Other:       toDecimal(r.Other),
	}
}

// Create godoc
// @ID           createUtilityCharge
// @Summary      Itemize a utility charge
// @Description  Record a lease's itemized utility charge for one billing month. At most one charge per lease per month.
// @Tags         utilities
// @Accept       json
// @Produce      json
// @Param        request body CreateChargeRequest true "Utility charge request"
// @Success      201 {object} APIResponse[billingapp.UtilityChargeResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/utility-charges [post]
func (h *UtilityChargeHandler) Create(c *gin.Context) {
	var req CreateChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	leaseID, err := uuid.Parse(req.LeaseID)
	if err != nil {
		h.BadRequest(c, "Invalid lease ID format")
		return
	}

	charge, err := h.utilityService.CreateCharge(c.Request.Context(), billingapp.CreateChargeRequest{
		LeaseID:      leaseID,
		BillingYear:  req.BillingYear,
		BillingMonth: req.BillingMonth,
		Items:        toItemsPayload(req.Items),
		Notes:        req.Notes,
		AsDraft:      req.AsDraft,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, charge)
}

// Update godoc
// @ID           updateUtilityCharge
// @Summary      Re-itemize a utility charge
// @Description  Replace a charge's itemization. Charges already billed into an obligation are immutable.
// @Tags         utilities
// @Accept       json
// @Produce      json
// @Param        id path string true "Charge ID" format(uuid)
// @Param        request body UpdateChargeRequest true "Updated itemization"
// @Success      200 {object} APIResponse[billingapp.UtilityChargeResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/utility-charges/{id} [put]
func (h *UtilityChargeHandler) Update(c *gin.Context) {
	chargeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid charge ID format")
		return
	}

	var req UpdateChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	charge, err := h.utilityService.UpdateCharge(c.Request.Context(), chargeID, billingapp.UpdateChargeRequest{
		Items: toItemsPayload(req.Items),
		Notes: req.Notes,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, charge)
}

// Finalize godoc
// @ID           finalizeUtilityCharge
// @Summary      Finalize a draft charge
// @Description  Promote a draft charge to pending so the next billing merge picks it up.
// @Tags         utilities
// @Produce      json
// @Param        id path string true "Charge ID" format(uuid)
// @Success      200 {object} APIResponse[billingapp.UtilityChargeResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/utility-charges/{id}/finalize [post]
func (h *UtilityChargeHandler) Finalize(c *gin.Context) {
	chargeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid charge ID format")
		return
	}

	charge, err := h.utilityService.FinalizeCharge(c.Request.Context(), chargeID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, charge)
}

// GetByID godoc
// @ID           getUtilityChargeById
// @Summary      Get utility charge by ID
// @Description  Retrieve a utility charge by its ID
// @Tags         utilities
// @Produce      json
// @Param        id path string true "Charge ID" format(uuid)
// @Success      200 {object} APIResponse[billingapp.UtilityChargeResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/utility-charges/{id} [get]
func (h *UtilityChargeHandler) GetByID(c *gin.Context) {
	chargeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid charge ID format")
		return
	}

	charge, err := h.utilityService.GetCharge(c.Request.Context(), chargeID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, charge)
}

// List godoc
// @ID           listUtilityCharges
// @Summary      List utility charges
// @Description  Retrieve a paginated list of utility charges with optional filtering
// @Tags         utilities
// @Produce      json
// @Param        lease_id query string false "Lease ID" format(uuid)
// @Param        tenant_id query string false "Tenant ID" format(uuid)
// @Param        status query string false "Charge status" Enums(draft, pending, billed)
// @Param        billing_year query int false "Billing year"
// @Param        billing_month query int false "Billing month"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]billingapp.UtilityChargeResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/utility-charges [get]
func (h *UtilityChargeHandler) List(c *gin.Context) {
	var filter billingapp.UtilityChargeListFilter
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

	charges, total, err := h.utilityService.ListCharges(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, charges, total, filter.Page, filter.PageSize)
}

// RunMerge godoc
// @ID           runUtilityBillingMerge
// @Summary      Merge pending charges into obligations
// @Description  Fold every pending utility charge for the billing month into its lease's rent obligation for the same period. A re-run never double-adds.
// @Tags         utilities
// @Accept       json
// @Produce      json
// @Param        request body GeneratePeriodRequest true "Billing period"
// @Success      200 {object} APIResponse[billingapp.MergeStats]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/utility-charges/merge [post]
func (h *UtilityChargeHandler) RunMerge(c *gin.Context) {
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

	stats, err := h.utilityService.RunBillingMerge(c.Request.Context(), req.Year, time.Month(req.Month), &actor)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, stats)
}
