package completion

import "github.com/gin-gonic/gin"

func RegisterRoutes(protected *gin.RouterGroup, h *Handler) {
	g := protected.Group("/matches/:id/completion")
	{
		g.GET("", h.Get)
		g.POST("/request", h.Request)
		g.POST("/confirm", h.Confirm)
	}
}
