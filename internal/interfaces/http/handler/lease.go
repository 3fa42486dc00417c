package handler

import (
	"time"

	leasingapp "github.com/leaseledger/backend/internal/application/leasing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LeaseHandler handles lease-related API endpoints
type LeaseHandler struct {
	BaseHandler
	leaseService *leasingapp.LeaseService
}

// NewLeaseHandler creates a new LeaseHandler
func NewLeaseHandler(leaseService *leasingapp.LeaseService) *LeaseHandler {
	return &LeaseHandler{
		leaseService: leaseService,
	}
}

// CreateLeaseRequest represents a request to draft a new lease
// @Description Request body for drafting a new lease
type CreateLeaseRequest struct {
	UnitID          string  `json:"unit_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	TenantID        string  `json:"tenant_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440001"`
	MonthlyRent     float64 `json:"monthly_rent" binding:"required,gt=0" example:"25000.00"`
	LateFee         float64 `json:"late_fee" binding:"gte=0" example:"2500.00"`
	GracePeriodDays int     `json:"grace_period_days" binding:"gte=0,lte=28" example:"5"`
	RentDueDay      int     `json:"rent_due_day" binding:"required,min=1,max=28" example:"5"`
	DepositAmount   float64 `json:"deposit_amount" binding:"gte=0" example:"50000.00"`
	Currency        string  `json:"currency" binding:"omitempty,len=3" example:"KES"`
	StartDate       string  `json:"start_date" binding:"required" example:"2026-01-01"`
	EndDate         string  `json:"end_date" binding:"required" example:"2026-12-31"`
}

// AmendLeaseRequest represents a request to amend an active lease's terms
// @Description Request body for amending lease billing terms
type AmendLeaseRequest struct {
	MonthlyRent     float64 `json:"monthly_rent" binding:"required,gt=0" example:"27000.00"`
	LateFee         float64 `json:"late_fee" binding:"gte=0" example:"2700.00"`
	GracePeriodDays int     `json:"grace_period_days" binding:"gte=0,lte=28" example:"5"`
	RentDueDay      int     `json:"rent_due_day" binding:"required,min=1,max=28" example:"5"`
	EndDate         string  `json:"end_date" binding:"required" example:"2027-12-31"`
}

// Create godoc
// @ID           createLease
// @Summary      Draft a new lease
// @Description  Draft a lease binding a tenant to a unit. Billing terms take effect on activation.
// @Tags         leases
// @Accept       json
// @Produce      json
// @Param        request body CreateLeaseRequest true "Lease creation request"
// @Success      201 {object} APIResponse[leasingapp.LeaseResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /leasing/leases [post]
func (h *LeaseHandler) Create(c *gin.Context) {
	var req CreateLeaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	unitID, err := uuid.Parse(req.UnitID)
	if err != nil {
		h.BadRequest(c, "Invalid unit ID format")
		return
	}
	tenantID, err := uuid.Parse(req.TenantID)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID format")
		return
	}
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		h.BadRequest(c, "Invalid start date, expected YYYY-MM-DD")
		return
	}
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		h.BadRequest(c, "Invalid end date, expected YYYY-MM-DD")
		return
	}

	appReq := leasingapp.CreateLeaseRequest{
		UnitID:          unitID,
		TenantID:        tenantID,
		MonthlyRent:     toDecimal(req.MonthlyRent),
		LateFee:         toDecimal(req.LateFee),
		GracePeriodDays: req.GracePeriodDays,
		RentDueDay:      req.RentDueDay,
		DepositAmount:   toDecimal(req.DepositAmount),
		Currency:        req.Currency,
		StartDate:       startDate,
		EndDate:         endDate,
	}

	lease, err := h.leaseService.CreateLease(c.Request.Context(), appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, lease)
}

// GetByID godoc
// @ID           getLeaseById
// @Summary      Get lease by ID
// @Description  Retrieve a lease by its ID
// @Tags         leases
// @Produce      json
// @Param        id path string true "Lease ID" format(uuid)
// @Success      200 {object} APIResponse[leasingapp.LeaseResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /leasing/leases/{id} [get]
func (h *LeaseHandler) GetByID(c *gin.Context) {
	leaseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lease ID format")
		return
	}

	lease, err := h.leaseService.GetLease(c.Request.Context(), leaseID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, lease)
}

// GetByNumber godoc
// @ID           getLeaseByNumber
// @Summary      Get lease by number
// @Description  Retrieve a lease by its business number
// @Tags         leases
// @Produce      json
// @Param        number path string true "Lease Number"
// @Success      200 {object} APIResponse[leasingapp.LeaseResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /leasing/leases/number/{number} [get]
func (h *LeaseHandler) GetByNumber(c *gin.Context) {
	number := c.Param("number")
	if number == "" {
		h.BadRequest(c, "Lease number is required")
		return
	}

	lease, err := h.leaseService.GetLeaseByNumber(c.Request.Context(), number)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, lease)
}

// List godoc
// @ID           listLeases
// @Summary      List leases
// @Description  Retrieve a paginated list of leases with optional filtering
// @Tags         leases
// @Produce      json
// @Param        search query string false "Search term (lease number)"
// @Param        unit_id query string false "Unit ID" format(uuid)
// @Param        tenant_id query string false "Tenant ID" format(uuid)
// @Param        status query string false "Lease status" Enums(draft, active, terminated)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]leasingapp.LeaseResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /leasing/leases [get]
func (h *LeaseHandler) List(c *gin.Context) {
	var filter leasingapp.LeaseListFilter
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

	leases, total, err := h.leaseService.ListLeases(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, leases, total, filter.Page, filter.PageSize)
}

// Activate godoc
// @ID           activateLease
// @Summary      Activate a lease
// @Description  Activate a drafted lease. The unit becomes occupied and the deposit is collected.
// @Tags         leases
// @Accept       json
// @Produce      json
// @Param        id path string true "Lease ID" format(uuid)
// @Success      200 {object} APIResponse[leasingapp.LeaseResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /leasing/leases/{id}/activate [post]
func (h *LeaseHandler) Activate(c *gin.Context) {
	leaseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lease ID format")
		return
	}

	actor, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	lease, err := h.leaseService.ActivateLease(c.Request.Context(), leaseID, actor)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, lease)
}

// Amend godoc
// @ID           amendLease
// @Summary      Amend lease terms
// @Description  Update the billing terms of an active lease. Existing obligations keep their amounts.
// @Tags         leases
// @Accept       json
// @Produce      json
// @Param        id path string true "Lease ID" format(uuid)
// @Param        request body AmendLeaseRequest true "Lease amendment request"
// @Success      200 {object} APIResponse[leasingapp.LeaseResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /leasing/leases/{id} [put]
func (h *LeaseHandler) Amend(c *gin.Context) {
	leaseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lease ID format")
		return
	}

	var req AmendLeaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		h.BadRequest(c, "Invalid end date, expected YYYY-MM-DD")
		return
	}

	actor, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	appReq := leasingapp.AmendLeaseRequest{
		LeaseID:         leaseID,
		MonthlyRent:     toDecimal(req.MonthlyRent),
		LateFee:         toDecimal(req.LateFee),
		GracePeriodDays: req.GracePeriodDays,
		RentDueDay:      req.RentDueDay,
		EndDate:         endDate,
		Actor:           actor,
	}

	lease, err := h.leaseService.AmendLease(c.Request.Context(), appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, lease)
}

// GetDeposit godoc
// @ID           getLeaseDeposit
// @Summary      Get a lease's security deposit
// @Description  Retrieve the security deposit held against a lease
// @Tags         leases
// @Produce      json
// @Param        id path string true "Lease ID" format(uuid)
// @Success      200 {object} APIResponse[leasingapp.DepositResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /leasing/leases/{id}/deposit [get]
func (h *LeaseHandler) GetDeposit(c *gin.Context) {
	leaseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid lease ID format")
		return
	}

	deposit, err := h.leaseService.GetLeaseDeposit(c.Request.Context(), leaseID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, deposit)
}
