package review

import "github.com/gin-gonic/gin"

// RegisterPublicRoutes mounts read-only profile endpoints.
func RegisterPublicRoutes(public *gin.RouterGroup, h *Handler) {
	public.GET("/users/:id/reviews", h.ListForUser)
	public.GET("/users/:id/reviews/stats", h.Stats)
}

func RegisterRoutes(protected *gin.RouterGroup, h *Handler) {
	protected.POST("/matches/:id/reviews", h.Create)
	protected.GET("/matches/:id/reviews/status", h.Status)
	protected.GET("/matches/:id/reviews/eligibility", h.Eligibility)

	protected.PATCH("/reviews/:id", h.Update)
	protected.DELETE("/reviews/:id", h.Delete)
}
