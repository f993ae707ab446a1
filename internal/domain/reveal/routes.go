package reveal

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the participant endpoints. limit guards token issue and redemption.
func RegisterRoutes(protected *gin.RouterGroup, h *Handler, limit gin.HandlerFunc) {
	g := protected.Group("/matches/:id/phone")
	{
		g.GET("", h.GetMasked)
		g.POST("/token", limit, h.GenerateToken)
		g.POST("/redeem", limit, h.Redeem)
	}
}

func RegisterAdminRoutes(admin *gin.RouterGroup, h *Handler) {
	admin.GET("/matches/:id/phone/history", h.History)
}
