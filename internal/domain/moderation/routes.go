package moderation

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts moderation endpoints on an admin-only group.
func RegisterRoutes(admin *gin.RouterGroup, h *Handler) {
	reviews := admin.Group("/reviews")
	{
		reviews.POST("/:id/reject", h.Reject)
		reviews.POST("/:id/approve", h.Approve)
		reviews.GET("/:id/decisions", h.Decisions)
	}
}
