package router

import (
	"time"

	"github.com/NomadCrew/feedback-tracker-backend/config"
	"github.com/NomadCrew/feedback-tracker-backend/handlers"
	"github.com/NomadCrew/feedback-tracker-backend/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Dependencies struct holds all dependencies required for setting up routes.
type Dependencies struct {
	Config          *config.Config
	FeedbackHandler *handlers.FeedbackHandler
	HealthHandler   *handlers.HealthHandler
	// RedisClient backs the submission rate limiter; nil disables it.
	RedisClient redis.UniversalClient
	Logger      *zap.SugaredLogger
}

// SetupRouter configures and returns the main Gin engine with all routes defined.
func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	if err := r.SetTrustedProxies(deps.Config.Server.TrustedProxies); err != nil {
		if deps.Logger != nil {
			deps.Logger.Warnw("Invalid trusted proxies, trusting none", "proxies", deps.Config.Server.TrustedProxies, "error", err)
		}
		_ = r.SetTrustedProxies(nil)
	}

	// Global Middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(&deps.Config.Server))
	r.Use(middleware.SecurityHeadersMiddleware(deps.Config))

	// Health and Metrics Routes
	r.GET("/health", deps.HealthHandler.Health)
	r.GET("/health/liveness", deps.HealthHandler.LivenessCheck)
	r.GET("/health/readiness", deps.HealthHandler.ReadinessCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	submit := []gin.HandlerFunc{}
	if deps.Config.RateLimit.Enabled && deps.RedisClient != nil {
		window := time.Duration(deps.Config.RateLimit.WindowSeconds) * time.Second
		submit = append(submit, middleware.SubmissionRateLimiter(deps.RedisClient, deps.Config.RateLimit.SubmissionsPerMinute, window))
		if deps.Logger != nil {
			deps.Logger.Infow("Submission rate limiting enabled",
				"limit", deps.Config.RateLimit.SubmissionsPerMinute,
				"window", window)
		}
	}
	submit = append(submit, deps.FeedbackHandler.CreateFeedback)

	feedback := r.Group("/feedback")
	{
		feedback.GET("", deps.FeedbackHandler.ListFeedback)
		feedback.POST("", submit...)
		feedback.PUT("/:id/vote", deps.FeedbackHandler.VoteFeedback)
		feedback.DELETE("/:id", deps.FeedbackHandler.DeleteFeedback)
	}
	r.GET("/stats", deps.FeedbackHandler.GetStats)

	r.NoRoute(middleware.NotFoundHandler)

	return r
}
