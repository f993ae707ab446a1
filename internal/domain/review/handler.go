package review

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

type Handler struct {
	service   *Service
	publisher notification.Publisher
}

func NewHandler(service *Service, publisher notification.Publisher) *Handler {
	return &Handler{service: service, publisher: publisher}
}

// Create handles POST /matches/:id/reviews
// @Summary Review the other participant of a completed match
// @Tags Reviews
// @Security BearerAuth
// @Param id path int true "Match ID"
// @Param request body CreateReviewRequest true "Ratings"
// @Success 201 {object} response.Response{data=MatchReview}
// @Failure 409 {object} response.Response
// @Failure 412 {object} response.Response
// @Router /matches/{id}/reviews [post]
func (h *Handler) Create(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Unauthorized(c)
		return
	}
	matchID, ok := utils.ParseID(c, "id")
	if !ok {
		response.BadRequest(c, "INVALID_ID", "Invalid match ID")
		return
	}

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "INVALID_JSON", "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationFailed(c, errs)
		return
	}

	rv, events, err := h.service.CreateReview(c.Request.Context(), matchID, userID, req.Ratings(), req.Comment)
	if err != nil {
		response.FromError(c, err)
		return
	}
	h.publisher.Publish(c.Request.Context(), events...)
	response.Success(c, http.StatusCreated, rv)
}

// Update handles PATCH /reviews/:id
// @Summary Edit my review
// @Tags Reviews
// @Security BearerAuth
// @Param id path int true "Review ID"
// @Param request body UpdateReviewRequest true "Changed fields"
// @Success 200 {object} response.Response{data=MatchReview}
// @Router /reviews/{id} [patch]
func (h *Handler) Update(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Unauthorized(c)
		return
	}
	reviewID, ok := utils.ParseID(c, "id")
	if !ok {
		response.BadRequest(c, "INVALID_ID", "Invalid review ID")
		return
	}

	var req UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "INVALID_JSON", "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationFailed(c, errs)
		return
	}

	rv, err := h.service.UpdateReview(c.Request.Context(), reviewID, userID, req.Patch())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, rv)
}

// Delete handles DELETE /reviews/:id
// @Summary Delete my review
// @Tags Reviews
// @Security BearerAuth
// @Param id path int true "Review ID"
// @Param request body DeleteReviewRequest false "Reason"
// @Success 200 {object} response.Response
// @Router /reviews/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Unauthorized(c)
		return
	}
	reviewID, ok := utils.ParseID(c, "id")
	if !ok {
		response.BadRequest(c, "INVALID_ID", "Invalid review ID")
		return
	}

	var req DeleteReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, "INVALID_JSON", "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationFailed(c, errs)
		return
	}

	if err := h.service.DeleteReview(c.Request.Context(), reviewID, userID, req.Reason); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": reviewID, "deleted": true})
}

// Status handles GET /matches/:id/reviews/status
// @Summary Which participants have reviewed
// @Tags Reviews
// @Security BearerAuth
// @Param id path int true "Match ID"
// @Success 200 {object} response.Response{data=MatchStatus}
// @Router /matches/{id}/reviews/status [get]
func (h *Handler) Status(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Unauthorized(c)
		return
	}
	matchID, ok := utils.ParseID(c, "id")
	if !ok {
		response.BadRequest(c, "INVALID_ID", "Invalid match ID")
		return
	}

	st, err := h.service.GetReviewStatus(c.Request.Context(), matchID, userID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, st)
}

// Eligibility handles GET /matches/:id/reviews/eligibility
// @Summary Can I review this match
// @Tags Reviews
// @Security BearerAuth
// @Param id path int true "Match ID"
// @Success 200 {object} response.Response{data=EligibilityResponse}
// @Router /matches/{id}/reviews/eligibility [get]
func (h *Handler) Eligibility(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Unauthorized(c)
		return
	}
	matchID, ok := utils.ParseID(c, "id")
	if !ok {
		response.BadRequest(c, "INVALID_ID", "Invalid match ID")
		return
	}

	can, err := h.service.CanLeaveReview(c.Request.Context(), matchID, userID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, EligibilityResponse{MatchID: matchID, CanReview: can})
}

// ListForUser handles GET /users/:id/reviews
// @Summary Reviews received by a user
// @Tags Reviews
// @Param id path int true "User ID"
// @Param limit query int false "Page size (default 20, max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} response.Response{data=ListResult}
// @Router /users/{id}/reviews [get]
func (h *Handler) ListForUser(c *gin.Context) {
	userID, ok := utils.ParseID(c, "id")
	if !ok {
		response.BadRequest(c, "INVALID_ID", "Invalid user ID")
		return
	}
	limit, offset := utils.Pagination(c, 20, 100)

	res, err := h.service.ListForUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

// Stats handles GET /users/:id/reviews/stats
// @Summary Review statistics for a user
// @Tags Reviews
// @Param id path int true "User ID"
// @Success 200 {object} response.Response{data=Stats}
// @Router /users/{id}/reviews/stats [get]
func (h *Handler) Stats(c *gin.Context) {
	userID, ok := utils.ParseID(c, "id")
	if !ok {
		response.BadRequest(c, "INVALID_ID", "Invalid user ID")
		return
	}

	st, err := h.service.GetReviewStats(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, st)
}
