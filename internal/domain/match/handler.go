package match

import (
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

// CreateMatch handles POST /internal/matches
// @Summary Create match from an accepted proposal
// @Tags Internal
// @Accept json
// @Produce json
// @Param request body CreateMatchRequest true "Accepted proposal"
// @Success 201 {object} response.Response{data=Match}
// @Failure 409 {object} response.Response
// @Router /internal/matches [post]
func (h *Handler) CreateMatch(c *gin.Context) {
	var req CreateMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "INVALID_JSON", "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationFailed(c, errs)
		return
	}

	m, err := h.service.CreateMatch(c.Request.Context(), req.Input())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, m)
}

// ListMatches handles GET /matches
// @Summary List my matches
// @Tags Matches
// @Security BearerAuth
// @Param role query string false "Filter by my side" Enums(client, professional)
// @Success 200 {object} response.Response{data=ListResponse}
// @Router /matches [get]
func (h *Handler) ListMatches(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Unauthorized(c)
		return
	}

	var role *Role
	if r := c.Query("role"); r != "" {
		v := Role(r)
		role = &v
	}

	list, err := h.service.ListMatchesForUser(c.Request.Context(), userID, role)
	if err != nil {
		response.FromError(c, err)
		return
	}
	if list == nil {
		list = []Match{}
	}
	response.Success(c, http.StatusOK, ListResponse{Matches: list, Total: len(list)})
}

// GetMatch handles GET /matches/:id
// @Summary Get match
// @Tags Matches
// @Security BearerAuth
// @Param id path int true "Match ID"
// @Success 200 {object} response.Response{data=Match}
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /matches/{id} [get]
func (h *Handler) GetMatch(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Unauthorized(c)
		return
	}
	id, ok := utils.ParseID(c, "id")
	if !ok {
		response.BadRequest(c, "INVALID_ID", "Invalid match ID")
		return
	}

	m, err := h.service.GetMatch(c.Request.Context(), id, userID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, m)
}

// UpdateStatus handles PATCH /matches/:id/status
// @Summary Change match status
// @Tags Matches
// @Security BearerAuth
// @Param id path int true "Match ID"
// @Param request body UpdateStatusRequest true "New status"
// @Success 200 {object} response.Response{data=Match}
// @Failure 409 {object} response.Response
// @Router /matches/{id}/status [patch]
func (h *Handler) UpdateStatus(c *gin.Context) {
	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Unauthorized(c)
		return
	}
	id, ok := utils.ParseID(c, "id")
	if !ok {
		response.BadRequest(c, "INVALID_ID", "Invalid match ID")
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "INVALID_JSON", "Invalid JSON body")
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		response.ValidationFailed(c, errs)
		return
	}

	m, events, err := h.service.UpdateStatus(c.Request.Context(), id, userID, req.Status)
	if err != nil {
		response.FromError(c, err)
		return
	}
	h.publisher.Publish(c.Request.Context(), events...)
	response.Success(c, http.StatusOK, m)
}
