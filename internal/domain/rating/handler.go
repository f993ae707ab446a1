package rating

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"servicematch/internal/pkg/apperr"
	"servicematch/internal/pkg/response"
)

type Handler struct {
	agg *Aggregator
}

func NewHandler(agg *Aggregator) *Handler {
	return &Handler{agg: agg}
}

// GetSummary handles GET /users/:id/rating
// @Summary Professional rating summary
// @Tags Reviews
// @Param id path int true "User ID"
// @Success 200 {object} response.Response{data=Summary}
// @Router /users/{id}/rating [get]
func (h *Handler) GetSummary(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || userID <= 0 {
		response.BadRequest(c, "INVALID_ID", "Invalid user ID")
		return
	}

	s, err := h.agg.Get(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, apperr.Persistence(err))
		return
	}
	response.Success(c, http.StatusOK, s)
}

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	r.GET("/users/:id/rating", h.GetSummary)
}
