package match

import "github.com/gin-gonic/gin"

func RegisterRoutes(protected *gin.RouterGroup, h *Handler) {
	matches := protected.Group("/matches")
	{
		matches.GET("", h.ListMatches)
		matches.GET("/:id", h.GetMatch)
		matches.PATCH("/:id/status", h.UpdateStatus)
	}
}

// RegisterInternalRoutes exposes the proposal-acceptance hook to trusted services.
func RegisterInternalRoutes(internal *gin.RouterGroup, h *Handler) {
	internal.POST("/matches", h.CreateMatch)
}
