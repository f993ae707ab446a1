package notification

import "github.com/gin-gonic/gin"

func RegisterRoutes(protected *gin.RouterGroup, handler *Handler) {
	g := protected.Group("/notifications")
	{
		g.GET("", handler.GetNotifications)
		g.POST("/:id/read", handler.MarkAsRead)
		g.POST("/read-all", handler.MarkAllAsRead)
	}
}
