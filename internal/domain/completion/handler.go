package completion

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

type RequestCompletionRequest struct {
	Comment string `json:"comment" validate:"max=500"`
}

type Handler struct {
	service   *Service
	publisher notification.Publisher
}

func NewHandler(service *Service, publisher notification.Publisher) *Handler {
	return &Handler{service: service, publisher: publisher}
}

// Request handles POST /matches/:id/completion/request
// @Summary Request completion confirmation from the other side
// @Tags Completion
// @Security BearerAuth
// @Param id path int true "Match ID"
// @Param request body RequestCompletionRequest false "Optional comment"
// @Success 200 {object} response.Response{data=Status}
// @Failure 409 {object} response.Response
// @Router /matches/{id}/completion/request [post]
func (h *Handler) Request(c *gin.Context) {
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

	var req RequestCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, "INVALID_JSON", "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationFailed(c, errs)
		return
	}

	st, events, err := h.service.RequestCompletion(c.Request.Context(), matchID, userID, req.Comment)
	if err != nil {
		response.FromError(c, err)
		return
	}
	h.publisher.Publish(c.Request.Context(), events...)
	response.Success(c, http.StatusOK, st)
}

// Confirm handles POST /matches/:id/completion/confirm
// @Summary Confirm the counterparty's completion request
// @Tags Completion
// @Security BearerAuth
// @Param id path int true "Match ID"
// @Success 200 {object} response.Response{data=Status}
// @Failure 403 {object} response.Response
// @Failure 412 {object} response.Response
// @Router /matches/{id}/completion/confirm [post]
func (h *Handler) Confirm(c *gin.Context) {
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

	st, events, err := h.service.ConfirmCompletion(c.Request.Context(), matchID, userID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	h.publisher.Publish(c.Request.Context(), events...)
	response.Success(c, http.StatusOK, st)
}

// Get handles GET /matches/:id/completion
// @Summary Completion handshake state
// @Tags Completion
// @Security BearerAuth
// @Param id path int true "Match ID"
// @Success 200 {object} response.Response{data=Status}
// @Router /matches/{id}/completion [get]
func (h *Handler) Get(c *gin.Context) {
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

	st, err := h.service.GetCompletionStatus(c.Request.Context(), matchID, userID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, st)
}
