package reveal

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"servicematch/internal/domain/notification"
	"servicematch/internal/pkg/response"
	"servicematch/internal/pkg/utils"
	"servicematch/internal/pkg/validator"
)

type RedeemRequest struct {
	Token string `json:"token" validate:"required,hexadecimal,len=64"`
}

type Handler struct {
	service   *Service
	publisher notification.Publisher
}

func NewHandler(service *Service, publisher notification.Publisher) *Handler {
	return &Handler{service: service, publisher: publisher}
}

func requestMeta(c *gin.Context) RequestMeta {
	return RequestMeta{IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}
}

// GenerateToken handles POST /matches/:id/phone/token
// @Summary Issue a one-time phone reveal token
// @Tags Phone
// @Security BearerAuth
// @Param id path int true "Match ID"
// @Success 201 {object} response.Response{data=TokenResult}
// @Failure 409 {object} response.Response
// @Failure 429 {object} response.Response
// @Router /matches/{id}/phone/token [post]
func (h *Handler) GenerateToken(c *gin.Context) {
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

	res, err := h.service.GenerateToken(c.Request.Context(), matchID, userID, requestMeta(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	response.Success(c, http.StatusCreated, res)
}

// Redeem handles POST /matches/:id/phone/redeem
// @Summary Redeem a reveal token
// @Tags Phone
// @Security BearerAuth
// @Param id path int true "Match ID"
// @Param request body RedeemRequest true "Token"
// @Success 200 {object} response.Response{data=RevealResult}
// @Failure 410 {object} response.Response
// @Router /matches/{id}/phone/redeem [post]
func (h *Handler) Redeem(c *gin.Context) {
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

	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "INVALID_JSON", "Invalid JSON body")
		return
	}
	if req.Token == "" {
		response.FromError(c, ErrTokenRequired)
		return
	}
	if errs := validator.Validate(&req); errs != nil {
		// a malformed token can never match a stored hash
		response.FromError(c, ErrInvalidOrExpiredToken)
		return
	}

	res, events, err := h.service.RedeemToken(c.Request.Context(), matchID, req.Token, userID, requestMeta(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	h.publisher.Publish(c.Request.Context(), events...)
	c.Header("Cache-Control", "no-store")
	response.Success(c, http.StatusOK, res)
}

// GetMasked handles GET /matches/:id/phone
// @Summary Masked counterparty phone
// @Tags Phone
// @Security BearerAuth
// @Param id path int true "Match ID"
// @Success 200 {object} response.Response{data=MaskedResult}
// @Router /matches/{id}/phone [get]
func (h *Handler) GetMasked(c *gin.Context) {
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

	res, err := h.service.GetMaskedPhone(c.Request.Context(), matchID, userID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

// History handles GET /admin/matches/:id/phone/history
// @Summary Phone reveal audit trail
// @Tags Admin
// @Security BearerAuth
// @Param id path int true "Match ID"
// @Success 200 {object} response.Response{data=[]HistoryEntry}
// @Router /admin/matches/{id}/phone/history [get]
func (h *Handler) History(c *gin.Context) {
	matchID, ok := utils.ParseID(c, "id")
	if !ok {
		response.BadRequest(c, "INVALID_ID", "Invalid match ID")
		return
	}

	res, err := h.service.GetRevealHistory(c.Request.Context(), matchID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}
