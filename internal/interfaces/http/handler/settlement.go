package handler

import (
	"time"

	leasingapp "github.com/leaseledger/backend/internal/application/leasing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SettlementHandler handles move-out settlement API endpoints
type SettlementHandler struct {
	BaseHandler
	settlementService *leasingapp.SettlementService
}

// NewSettlementHandler creates a new SettlementHandler
func NewSettlementHandler(settlementService *leasingapp.SettlementService) *SettlementHandler {
	return &SettlementHandler{
		settlementService: settlementService,
	}
}

// DeductionLineRequest is one deduction withheld from the deposit
// @Description One itemized deduction line
type DeductionLineRequest struct {
	Description string  `json:"description" binding:"required,min=1,max=200" example:"Broken kitchen window"`
	Amount      float64 `json:"amount" binding:"required,gt=0" example:"3500.00"`
}

// SettleLeaseRequest represents a request to offboard a lease
// @Description Request body for settling a lease at move-out
type SettleLeaseRequest struct {
	MoveOutDate        string                 `json:"move_out_date" binding:"required" example:"2026-06-30"`
	Deductions         []DeductionLineRequest `json:"deductions" binding:"dive"`
	UnpaidRentHandling string                 `json:"unpaid_rent_handling" binding:"required,oneof=deduct writeoff" example:"deduct"`
	Notes              string                 `json:"notes" binding:"max=1000" example:"Keys returned, unit inspected"`
}

// Preview godoc
// @ID           previewSettlement
// @Summary      Preview a lease settlement
// @Description  Compute the open obligations, unpaid rent total and held deposit a settlement would resolve, without mutating anything.
// @Tags         settlements
// @Produce      json
// @Param        id path string true "Lease ID" format(uuid)
// @Success      200 {object} APIResponse[leasingapp.SettlementPreviewResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /leasing/leases/{id}/settlement/preview [get]
func (h *SettlementHandler) Preview(c *gin.Context) {
	leaseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lease ID format")
		return
	}

	preview, err := h.settlementService.PreviewSettlement(c.Request.Context(), leaseID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, preview)
}

// Settle godoc
// @ID           settleLease
// @Summary      Settle a lease at move-out
// @Description  Terminate the lease, resolve its unpaid rent against the deposit (deduct) or write it off, free the unit and finalize the deposit. One atomic operation; deductions exceeding the deposit are rejected whole.
// @Tags         settlements
// @Accept       json
// @Produce      json
// @Param        id path string true "Lease ID" format(uuid)
// @Param        request body SettleLeaseRequest true "Settlement request"
// @Success      200 {object} APIResponse[leasingapp.SettlementResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /leasing/leases/{id}/settle [post]
func (h *SettlementHandler) Settle(c *gin.Context) {
	leaseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lease ID format")
		return
	}

	var req SettleLeaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	moveOutDate, err := time.Parse("2006-01-02", req.MoveOutDate)
	if err != nil {
		h.BadRequest(c, "Invalid move-out date, expected YYYY-MM-DD")
		return
	}

	actor, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	deductions := make([]leasingapp.DeductionLinePayload, 0, len(req.Deductions))
	for _, d := range req.Deductions {
		deductions = append(deductions, leasingapp.DeductionLinePayload{
			Description: d.Description,
			Amount:      toDecimal(d.Amount),
		})
	}

	settlement, err := h.settlementService.SettleLease(c.Request.Context(), leasingapp.SettleLeaseRequest{
		LeaseID:            leaseID,
		MoveOutDate:        moveOutDate,
		Deductions:         deductions,
		UnpaidRentHandling: req.UnpaidRentHandling,
		Notes:              req.Notes,
		Actor:              actor,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, settlement)
}

// GetByID godoc
// @ID           getSettlementById
// @Summary      Get settlement by ID
// @Description  Retrieve a completed settlement record by its ID
// @Tags         settlements
// @Produce      json
// @Param        id path string true "Settlement ID" format(uuid)
// @Success      200 {object} APIResponse[leasingapp.SettlementResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /leasing/settlements/{id} [get]
func (h *SettlementHandler) GetByID(c *gin.Context) {
	settlementID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid settlement ID format")
		return
	}

	settlement, err := h.settlementService.GetSettlement(c.Request.Context(), settlementID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, settlement)
}

// GetByLease godoc
// @ID           getSettlementByLease
// @Summary      Get a lease's settlement
// @Description  Retrieve the settlement record of a terminated lease
// @Tags         settlements
// @Produce      json
// @Param        id path string true "Lease ID" format(uuid)
// @Success      200 {object} APIResponse[leasingapp.SettlementResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /leasing/leases/{id}/settlement [get]
func (h *SettlementHandler) GetByLease(c *gin.Context) {
	leaseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lease ID format")
		return
	}

	settlement, err := h.settlementService.GetSettlementByLease(c.Request.Context(), leaseID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, settlement)
}

// List godoc
// @ID           listSettlements
// @Summary      List settlements
// @Description  Retrieve a paginated list of completed settlements with optional filtering
// @Tags         settlements
// @Produce      json
// @Param        tenant_id query string false "Tenant ID" format(uuid)
// @Param        unit_id query string false "Unit ID" format(uuid)
// @Param        from_date query string false "Settled after (RFC 3339)"
// @Param        to_date query string false "Settled before (RFC 3339)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]leasingapp.SettlementResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /leasing/settlements [get]
func (h *SettlementHandler) List(c *gin.Context) {
	var filter leasingapp.SettlementListFilter
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

	settlements, total, err := h.settlementService.ListSettlements(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, settlements, total, filter.Page, filter.PageSize)
}
