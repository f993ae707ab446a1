package moderation

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"servicematch/internal/domain/notification"
	"servicematch/internal/pkg/response"
	"servicematch/internal/pkg/utils"
	"servicematch/internal/pkg/validator"
)

type DecisionRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type Handler struct {
	service   *Service
	publisher notification.Publisher
}

func NewHandler(service *Service, publisher notification.Publisher) *Handler {
	return &Handler{service: service, publisher: publisher}
}

// Reject handles POST /admin/reviews/:id/reject
// @Summary Remove a review and recompute the subject's rating
// @Tags Admin Reviews
// @Security BearerAuth
// @Param id path int true "Review ID"
// @Param request body DecisionRequest true "Reason"
// @Success 200 {object} response.Response{data=Result}
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /admin/reviews/{id}/reject [post]
func (h *Handler) Reject(c *gin.Context) {
	adminID, reviewID, req, ok := h.decisionInput(c)
	if !ok {
		return
	}
	res, events, err := h.service.RejectReview(c.Request.Context(), reviewID, adminID, req.Reason)
	if err != nil {
		response.FromError(c, err)
		return
	}
	h.publisher.Publish(c.Request.Context(), events...)
	response.Success(c, http.StatusOK, res)
}

// Approve handles POST /admin/reviews/:id/approve
// @Summary Record that a review was checked and kept
// @Tags Admin Reviews
// @Security BearerAuth
// @Param id path int true "Review ID"
// @Success 200 {object} response.Response{data=Result}
// @Router /admin/reviews/{id}/approve [post]
func (h *Handler) Approve(c *gin.Context) {
	adminID, reviewID, req, ok := h.decisionInput(c)
	if !ok {
		return
	}
	res, err := h.service.ApproveReview(c.Request.Context(), reviewID, adminID, req.Reason)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

// Decisions handles GET /admin/reviews/:id/decisions
func (h *Handler) Decisions(c *gin.Context) {
	reviewID, ok := utils.ParseID(c, "id")
	if !ok {
		response.BadRequest(c, "INVALID_ID", "Invalid review ID")
		return
	}
	out, err := h.service.ListDecisions(c.Request.Context(), reviewID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"decisions": out})
}

// decisionInput reads the admin, the review id and an optional body. It writes
// the error response itself and reports false on failure.
func (h *Handler) decisionInput(c *gin.Context) (int64, int64, DecisionRequest, bool) {
	var req DecisionRequest
	adminID := c.GetInt64("user_id")
	if adminID == 0 {
		response.Unauthorized(c)
		return 0, 0, req, false
	}
	reviewID, ok := utils.ParseID(c, "id")
	if !ok {
		response.BadRequest(c, "INVALID_ID", "Invalid review ID")
		return 0, 0, req, false
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, "INVALID_JSON", "Invalid JSON body")
		return 0, 0, req, false
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationFailed(c, errs)
		return 0, 0, req, false
	}
	return adminID, reviewID, req, true
}
