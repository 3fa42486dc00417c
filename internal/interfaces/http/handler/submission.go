package handler

import (
	"errors"
	"time"

	billingapp "github.com/leaseledger/backend/internal/application/billing"
	"github.com/leaseledger/backend/internal/infrastructure/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var errMissingTenantID = errors.New("tenant ID required")

// SubmissionHandler handles payment submission API endpoints
type SubmissionHandler struct {
	BaseHandler
	submissionService *billingapp.SubmissionService
}

// NewSubmissionHandler creates a new SubmissionHandler
func NewSubmissionHandler(submissionService *billingapp.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService: submissionService,
	}
}

// SubmitPaymentRequest represents a tenant's payment claim
// @Description Request body for submitting a payment claim for verification
type SubmitPaymentRequest struct {
	LeaseID         string  `json:"lease_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	TenantID        string  `json:"tenant_id" binding:"omitempty,uuid" example:"550e8400-e29b-41d4-a716-446655440001"`
	Amount          float64 `json:"amount" binding:"required,gt=0" example:"25000.00"`
	Method          string  `json:"method" binding:"required,min=1,max=100" example:"mobile_money"`
	Reference       string  `json:"reference" binding:"required,min=1,max=200" example:"QJL4XR88TY"`
	TransactionDate string  `json:"transaction_date" binding:"required" example:"2026-05-12"`
}

// VerifySubmissionRequest represents a request to verify a submission.
// When verified_amount is omitted the full submitted amount is applied.
// @Description Request body for verifying a pending payment submission
type VerifySubmissionRequest struct {
	VerifiedAmount *float64 `json:"verified_amount" binding:"omitempty,gt=0" example:"25000.00"`
	AdminNotes     string   `json:"admin_notes" binding:"required,min=1,max=500" example:"Matched bank statement line 42"`
}

// RejectSubmissionRequest represents a request to reject a submission
// @Description Request body for rejecting a pending payment submission
type RejectSubmissionRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500" example:"Reference not found in bank statement"`
}

// BulkVerifyRequest represents a request to verify a batch of submissions
// @Description Request body for verifying multiple submissions at once
type BulkVerifyRequest struct {
	SubmissionIDs []string `json:"submission_ids" binding:"required,min=1,max=100,dive,uuid"`
	AdminNotes    string   `json:"admin_notes" binding:"max=500" example:"April bank statement batch"`
}

// Submit godoc
// @ID           submitPayment
// @Summary      Submit a payment claim
// @Description  Record a payment claim for admin verification. Tenant callers submit for themselves; staff may submit on a tenant's behalf.
// @Tags         submissions
// @Accept       json
// @Produce      json
// @Param        request body SubmitPaymentRequest true "Payment submission request"
// @Success      201 {object} APIResponse[billingapp.SubmissionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/submissions [post]
func (h *SubmissionHandler) Submit(c *gin.Context) {
	var req SubmitPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	leaseID, err := uuid.Parse(req.LeaseID)
	if err != nil {
		h.BadRequest(c, "Invalid lease ID format")
		return
	}
	transactionDate, err := time.Parse("2006-01-02", req.TransactionDate)
	if err != nil {
		h.BadRequest(c, "Invalid transaction date, expected YYYY-MM-DD")
		return
	}

	tenantID, err := h.resolveTenantID(c, req.TenantID)
	if err != nil {
		return
	}

	appReq := billingapp.SubmitPaymentRequest{
		LeaseID:         leaseID,
		TenantID:        tenantID,
		Amount:          toDecimal(req.Amount),
		Method:          req.Method,
		Reference:       req.Reference,
		TransactionDate: transactionDate,
	}

	submission, err := h.submissionService.Submit(c.Request.Context(), appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, submission)
}

// resolveTenantID picks the tenant the submission belongs to. A tenant
// caller always acts as themselves; staff must name the tenant. Writes
// the error response itself and returns a non-nil error to signal it.
func (h *SubmissionHandler) resolveTenantID(c *gin.Context, requested string) (uuid.UUID, error) {
	if getCallerRole(c) == auth.RoleTenant {
		userID, err := getUserID(c)
		if err != nil {
			h.Unauthorized(c, "User identity required")
			return uuid.Nil, err
		}
		return userID, nil
	}

	if requested == "" {
		h.BadRequest(c, "Tenant ID is required for staff submissions")
		return uuid.Nil, errMissingTenantID
	}
	tenantID, err := uuid.Parse(requested)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID format")
		return uuid.Nil, err
	}
	return tenantID, nil
}

// List godoc
// @ID           listSubmissions
// @Summary      List payment submissions
// @Description  Retrieve a paginated list of payment submissions. Tenant callers see only their own claims.
// @Tags         submissions
// @Produce      json
// @Param        search query string false "Search term (transaction reference)"
// @Param        lease_id query string false "Lease ID" format(uuid)
// @Param        tenant_id query string false "Tenant ID (staff only)" format(uuid)
// @Param        status query string false "Submission status" Enums(pending, verified, rejected)
// @Param        method query string false "Payment method"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]billingapp.SubmissionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/submissions [get]
func (h *SubmissionHandler) List(c *gin.Context) {
	var filter billingapp.SubmissionListFilter
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

	// Tenant callers are scoped to their own claims regardless of the filter
	if getCallerRole(c) == auth.RoleTenant {
		userID, err := getUserID(c)
		if err != nil {
			h.Unauthorized(c, "User identity required")
			return
		}
		filter.TenantID = &userID
	}

	submissions, total, err := h.submissionService.ListSubmissions(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, submissions, total, filter.Page, filter.PageSize)
}

// ListPending godoc
// @ID           listPendingSubmissions
// @Summary      List pending submissions
// @Description  Retrieve the verification queue, oldest claims first
// @Tags         submissions
// @Produce      json
// @Param        lease_id query string false "Lease ID" format(uuid)
// @Param        tenant_id query string false "Tenant ID" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]billingapp.SubmissionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/submissions/pending [get]
func (h *SubmissionHandler) ListPending(c *gin.Context) {
	var filter billingapp.SubmissionListFilter
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

	submissions, err := h.submissionService.ListPendingSubmissions(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, submissions)
}

// GetByID godoc
// @ID           getSubmissionById
// @Summary      Get submission by ID
// @Description  Retrieve a payment submission by its ID. Tenant callers may only read their own claims.
// @Tags         submissions
// @Produce      json
// @Param        id path string true "Submission ID" format(uuid)
// @Success      200 {object} APIResponse[billingapp.SubmissionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/submissions/{id} [get]
func (h *SubmissionHandler) GetByID(c *gin.Context) {
	submissionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid submission ID format")
		return
	}

	submission, err := h.submissionService.GetSubmission(c.Request.Context(), submissionID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	if getCallerRole(c) == auth.RoleTenant {
		userID, err := getUserID(c)
		if err != nil || submission.TenantID != userID {
			h.Forbidden(c, "Submission belongs to another tenant")
			return
		}
	}

	h.Success(c, submission)
}

// Verify godoc
// @ID           verifySubmission
// @Summary      Verify a submission
// @Description  Confirm a pending claim and apply the verified amount to the lease's oldest open obligation. The verified amount may differ from the claimed amount.
// @Tags         submissions
// @Accept       json
// @Produce      json
// @Param        id path string true "Submission ID" format(uuid)
// @Param        request body VerifySubmissionRequest false "Verification details"
// @Success      200 {object} APIResponse[billingapp.SubmissionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/submissions/{id}/verify [post]
func (h *SubmissionHandler) Verify(c *gin.Context) {
	submissionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid submission ID format")
		return
	}

	var req VerifySubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	actor, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	appReq := billingapp.VerifyRequest{
		SubmissionID: submissionID,
		AdminNotes:   req.AdminNotes,
		Actor:        actor,
	}
	if req.VerifiedAmount != nil {
		appReq.VerifiedAmount = toDecimal(*req.VerifiedAmount)
	}

	submission, err := h.submissionService.Verify(c.Request.Context(), appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, submission)
}

// Reject godoc
// @ID           rejectSubmission
// @Summary      Reject a submission
// @Description  Decline a pending claim with a reason. No obligation is touched.
// @Tags         submissions
// @Accept       json
// @Produce      json
// @Param        id path string true "Submission ID" format(uuid)
// @Param        request body RejectSubmissionRequest true "Rejection reason"
// @Success      200 {object} APIResponse[billingapp.SubmissionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/submissions/{id}/reject [post]
func (h *SubmissionHandler) Reject(c *gin.Context) {
	submissionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid submission ID format")
		return
	}

	var req RejectSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	actor, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	submission, err := h.submissionService.Reject(c.Request.Context(), billingapp.RejectRequest{
		SubmissionID: submissionID,
		Reason:       req.Reason,
		Actor:        actor,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, submission)
}

// BulkVerify godoc
// @ID           bulkVerifySubmissions
// @Summary      Bulk verify submissions
// @Description  Verify a batch of pending claims all-or-nothing at their claimed amounts. One bad claim fails the whole batch.
// @Tags         submissions
// @Accept       json
// @Produce      json
// @Param        request body BulkVerifyRequest true "Bulk verification request"
// @Success      200 {object} APIResponse[billingapp.BulkVerifyResult]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /billing/submissions/bulk-verify [post]
func (h *SubmissionHandler) BulkVerify(c *gin.Context) {
	var req BulkVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	ids := make([]uuid.UUID, 0, len(req.SubmissionIDs))
	for _, raw := range req.SubmissionIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid submission ID format: "+raw)
			return
		}
		ids = append(ids, id)
	}

	actor, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	result, err := h.submissionService.BulkVerify(c.Request.Context(), billingapp.BulkVerifyRequest{
		SubmissionIDs: ids,
		AdminNotes:    req.AdminNotes,
		Actor:         actor,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}
