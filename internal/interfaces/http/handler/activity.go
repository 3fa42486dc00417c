package handler

import (
	auditapp "github.com/leaseledger/backend/internal/application/audit"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ActivityHandler serves the append-only audit trail
type ActivityHandler struct {
	BaseHandler
	activityService *auditapp.ActivityService
}

// NewActivityHandler creates a new ActivityHandler
func NewActivityHandler(activityService *auditapp.ActivityService) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
	}
}

// List godoc
// @ID           listActivities
// @Summary      List audit activities
// @Description  Retrieve a paginated slice of the audit trail with optional filtering
// @Tags         audit
// @Produce      json
// @Param        actor_id query string false "Actor ID" format(uuid)
// @Param        type query string false "Activity type"
// @Param        resource_type query string false "Affected resource type"
// @Param        resource_id query string false "Affected resource ID" format(uuid)
// @Param        from query string false "Recorded after (RFC 3339)"
// @Param        to query string false "Recorded before (RFC 3339)"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[auditapp.ActivityListResult]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /audit/activities [get]
func (h *ActivityHandler) List(c *gin.Context) {
	var filter auditapp.ActivityListFilter
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

	result, err := h.activityService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Activities, result.Total, filter.Page, filter.PageSize)
}

// GetTrail godoc
// @ID           getResourceAuditTrail
// @Summary      Get a resource's audit trail
// @Description  Retrieve every audit entry recorded against one resource, oldest first. This is the replayable record used for dispute resolution.
// @Tags         audit
// @Produce      json
// @Param        resource_type path string true "Resource type" Enums(lease, rent_obligation, payment_submission, utility_charge, security_deposit, settlement, tenant, unit)
// @Param        resource_id path string true "Resource ID" format(uuid)
// @Success      200 {object} APIResponse[[]auditapp.ActivityResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /audit/trail/{resource_type}/{resource_id} [get]
func (h *ActivityHandler) GetTrail(c *gin.Context) {
	resourceType := c.Param("resource_type")
	if resourceType == "" {
		h.BadRequest(c, "Resource type is required")
		return
	}

	resourceID, err := uuid.Parse(c.Param("resource_id"))
	if err != nil {
		h.BadRequest(c, "Invalid resource ID format")
		return
	}

	trail, err := h.activityService.GetTrail(c.Request.Context(), resourceType, resourceID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, trail)
}
