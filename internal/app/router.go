package app

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"servicematch/internal/config"
	"servicematch/internal/domain/completion"
	"servicematch/internal/domain/match"
	"servicematch/internal/domain/moderation"
	"servicematch/internal/domain/notification"
	"servicematch/internal/domain/rating"
	"servicematch/internal/domain/reveal"
	"servicematch/internal/domain/review"
	"servicematch/internal/middleware"
	"servicematch/internal/pkg/jwt"
)

// RouterDeps are the collaborators the HTTP layer needs beyond the services.
type RouterDeps struct {
	JWT       *jwt.Service
	Publisher notification.Publisher
	Limiter   *middleware.RateLimiter
}

func NewRouter(cfg *config.Config, svcs *Services, deps RouterDeps) *gin.Engine {
	if config.IsProdLike(cfg.AppEnv) {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		middleware.RequestContext(cfg.RequestTimeout),
		middleware.ErrorLogger(),
		middleware.AccessLog(),
		middleware.CORS(cfg.CORSAllowedOrigins),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	matchHandler := match.NewHandler(svcs.Matches, deps.Publisher)
	completionHandler := completion.NewHandler(svcs.Completion, deps.Publisher)
	revealHandler := reveal.NewHandler(svcs.Reveal, deps.Publisher)
	reviewHandler := review.NewHandler(svcs.Reviews, deps.Publisher)
	moderationHandler := moderation.NewHandler(svcs.Moderation, deps.Publisher)
	ratingHandler := rating.NewHandler(svcs.Ratings)
	notificationHandler := notification.NewHandler(svcs.Notifications)

	v1 := r.Group("/api/v1")
	{
		// public
		rating.RegisterRoutes(v1, ratingHandler)
		review.RegisterPublicRoutes(v1, reviewHandler)

		// service-to-service
		internal := v1.Group("/internal", middleware.InternalTokenAuth(cfg.InternalAPIToken))
		match.RegisterInternalRoutes(internal, matchHandler)

		protected := v1.Group("", middleware.JWTAuth(deps.JWT))
		{
			match.RegisterRoutes(protected, matchHandler)
			completion.RegisterRoutes(protected, completionHandler)
			reveal.RegisterRoutes(protected, revealHandler, deps.Limiter.Middleware())
			review.RegisterRoutes(protected, reviewHandler)
			notification.RegisterRoutes(protected, notificationHandler)
		}

		admin := protected.Group("/admin", middleware.AdminOnly())
		{
			reveal.RegisterAdminRoutes(admin, revealHandler)
			moderation.RegisterRoutes(admin, moderationHandler)
		}
	}
	return r
}
