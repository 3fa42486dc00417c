package handler

import (
	leasingapp "github.com/leaseledger/backend/internal/application/leasing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PortfolioHandler handles tenant and unit registry API endpoints
type PortfolioHandler struct {
	BaseHandler
	portfolioService *leasingapp.PortfolioService
}

// NewPortfolioHandler creates a new PortfolioHandler
func NewPortfolioHandler(portfolioService *leasingapp.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
	}
}

// RegisterTenantRequest represents a request to register a renter
// @Description Request body for registering a renter
type RegisterTenantRequest struct {
	FullName string `json:"full_name" binding:"required,min=1,max=200" example:"Grace Wanjiru"`
	Phone    string `json:"phone" binding:"required,min=7,max=20" example:"+254712345678"`
	Email    string `json:"email" binding:"omitempty,email" example:"grace@example.com"`
}

// SetBlacklistRequest represents a request to change a renter's standing
// @Description Request body for changing a renter's blacklist standing
type SetBlacklistRequest struct {
	Status string `json:"status" binding:"required,oneof=none watch severe" example:"watch"`
}

// RegisterUnitRequest represents a request to register a leasable unit
// @Description Request body for registering a unit
type RegisterUnitRequest struct {
	Code         string            `json:"code" binding:"required,min=1,max=50" example:"A-12"`
	PropertyName string            `json:"property_name" binding:"required,min=1,max=200" example:"Riverside Court"`
	Address      *UnitAddressInput `json:"address,omitempty"`
}

// UnitAddressInput carries an optional property address for a unit
// @Description Physical address of the unit's property
type UnitAddressInput struct {
	Street     string `json:"street" binding:"required,min=1,max=200" example:"Riverside Drive 14"`
	Town       string `json:"town" binding:"required,min=1,max=100" example:"Nairobi"`
	County     string `json:"county" binding:"max=100" example:"Nairobi"`
	PostalCode string `json:"postal_code" binding:"max=20" example:"00100"`
	Country    string `json:"country" binding:"max=100" example:"Kenya"`
}

// RegisterTenant godoc
// @ID           registerTenant
// @Summary      Register a tenant
// @Description  Register a renter in the portfolio. The phone number must be unique.
// @Tags         portfolio
// @Accept       json
// @Produce      json
// @Param        request body RegisterTenantRequest true "Tenant registration request"
// @Success      201 {object} APIResponse[leasingapp.TenantResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /leasing/tenants [post]
func (h *PortfolioHandler) RegisterTenant(c *gin.Context) {
	var req RegisterTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	tenant, err := h.portfolioService.RegisterTenant(c.Request.Context(), leasingapp.RegisterTenantRequest{
		FullName: req.FullName,
		Phone:    req.Phone,
		Email:    req.Email,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, tenant)
}

// GetTenant godoc
// @ID           getTenantById
// @Summary      Get tenant by ID
// @Description  Retrieve a renter by ID
// @Tags         portfolio
// @Produce      json
// @Param        id path string true "Tenant ID" format(uuid)
// @Success      200 {object} APIResponse[leasingapp.TenantResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /leasing/tenants/{id} [get]
func (h *PortfolioHandler) GetTenant(c *gin.Context) {
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID format")
		return
	}

	tenant, err := h.portfolioService.GetTenant(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, tenant)
}

// ListTenants godoc
// @ID           listTenants
// @Summary      List tenants
// @Description  Retrieve a paginated list of renters with optional filtering
// @Tags         portfolio
// @Produce      json
// @Param        search query string false "Search term (name, phone)"
// @Param        blacklist query string false "Blacklist standing" Enums(none, watch, severe)
// @Param        debt_flagged query bool false "Only tenants carrying written-off debt"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]leasingapp.TenantResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /leasing/tenants [get]
func (h *PortfolioHandler) ListTenants(c *gin.Context) {
	var filter leasingapp.TenantListFilter
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

	tenants, total, err := h.portfolioService.ListTenants(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, tenants, total, filter.Page, filter.PageSize)
}

// SetBlacklist godoc
// @ID           setTenantBlacklist
// @Summary      Change a tenant's standing
// @Description  Set a renter's blacklist standing. A severe standing blocks payment verification.
// @Tags         portfolio
// @Accept       json
// @Produce      json
// @Param        id path string true "Tenant ID" format(uuid)
// @Param        request body SetBlacklistRequest true "Standing change request"
// @Success      200 {object} APIResponse[leasingapp.TenantResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /leasing/tenants/{id}/blacklist [put]
func (h *PortfolioHandler) SetBlacklist(c *gin.Context) {
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID format")
		return
	}

	var req SetBlacklistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	actor, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	tenant, err := h.portfolioService.SetTenantBlacklist(c.Request.Context(), leasingapp.SetBlacklistRequest{
		TenantID: tenantID,
		Status:   req.Status,
		Actor:    actor,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, tenant)
}

// RegisterUnit godoc
// @ID           registerUnit
// @Summary      Register a unit
// @Description  Register a leasable unit under its unique code
// @Tags         portfolio
// @Accept       json
// @Produce      json
// @Param        request body RegisterUnitRequest true "Unit registration request"
// @Success      201 {object} APIResponse[leasingapp.UnitResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /leasing/units [post]
func (h *PortfolioHandler) RegisterUnit(c *gin.Context) {
	var req RegisterUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	svcReq := leasingapp.RegisterUnitRequest{
		Code:         req.Code,
		PropertyName: req.PropertyName,
	}
	if req.Address != nil {
		svcReq.Address = &leasingapp.AddressPayload{
			Street:     req.Address.Street,
			Town:       req.Address.Town,
			County:     req.Address.County,
			PostalCode: req.Address.PostalCode,
			Country:    req.Address.Country,
		}
	}

	unit, err := h.portfolioService.RegisterUnit(c.Request.Context(), svcReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, unit)
}

// GetUnit godoc
// @ID           getUnitById
// @Summary      Get unit by ID
// @Description  Retrieve a leasable unit by ID
// @Tags         portfolio
// @Produce      json
// @Param        id path string true "Unit ID" format(uuid)
// @Success      200 {object} APIResponse[leasingapp.UnitResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /leasing/units/{id} [get]
func (h *PortfolioHandler) GetUnit(c *gin.Context) {
	unitID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid unit ID format")
		return
	}

	unit, err := h.portfolioService.GetUnit(c.Request.Context(), unitID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, unit)
}

// ListUnits godoc
// @ID           listUnits
// @Summary      List units
// @Description  Retrieve a paginated list of leasable units with optional filtering
// @Tags         portfolio
// @Produce      json
// @Param        search query string false "Search term (code, property)"
// @Param        occupancy query string false "Occupancy status" Enums(vacant, occupied)
// @Param        property_name query string false "Property name"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]leasingapp.UnitResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /leasing/units [get]
func (h *PortfolioHandler) ListUnits(c *gin.Context) {
	var filter leasingapp.UnitListFilter
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

	units, total, err := h.portfolioService.ListUnits(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, units, total, filter.Page, filter.PageSize)
}
