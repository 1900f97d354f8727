package http

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Harsh-BH/Leadly/internal/delivery/http/middleware"
	"github.com/Harsh-BH/Leadly/internal/usecase"
)

// RouterDeps bundles everything the router wires into handlers.
type RouterDeps struct {
	SubmitSearch  *usecase.SubmitSearchUsecase
	GetSearch     *usecase.GetSearchUsecase
	CancelSearch  *usecase.CancelSearchUsecase
	ListLeads     *usecase.ListLeadsUsecase
	ManageSources *usecase.ManageSourcesUsecase
	TriggerScan   *usecase.TriggerScanUsecase
	HealthChecks  map[string]HealthCheck

	// APIKeys guards every /api/v1 route except health. Empty disables auth.
	APIKeys      []string
	CORSOrigins  []string
	RateLimit    int
	MaxBodyBytes int64

	Logger *zap.Logger
}

// NewRouter creates and configures the Gin router with all routes and middleware.
// ctx bounds background work owned by middleware.
func NewRouter(ctx context.Context, deps RouterDeps) *gin.Engine {
	logger := deps.Logger
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(deps.CORSOrigins))
	router.Use(middleware.Logger(logger))

	// Metrics endpoint (no rate limiting)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		healthHandler := NewHealthHandler(deps.HealthChecks, logger)
		v1.GET("/health", healthHandler.Health)
	}

	api := v1.Group("")
	if deps.RateLimit > 0 {
		api.Use(middleware.RateLimiter(ctx, deps.RateLimit))
	}
	if deps.MaxBodyBytes > 0 {
		api.Use(middleware.BodySizeLimit(deps.MaxBodyBytes))
	}
	if len(deps.APIKeys) > 0 {
		api.Use(middleware.APIKeyAuth(deps.APIKeys))
	}
	{
		searchHandler := NewSearchHandler(deps.SubmitSearch, deps.GetSearch, deps.CancelSearch, logger)
		api.POST("/reddit/search", searchHandler.Submit)
		api.GET("/reddit/search/:id", searchHandler.GetByID)
		api.DELETE("/reddit/search/:id", searchHandler.Cancel)

		wsHandler := NewWebSocketHandler(deps.GetSearch, deps.CORSOrigins, logger)
		api.GET("/reddit/search/:id/stream", wsHandler.Stream)

		leadHandler := NewLeadHandler(deps.ListLeads, logger)
		api.GET("/leads", leadHandler.List)

		subHandler := NewSubredditHandler(deps.ManageSources, logger)
		api.GET("/config/subreddits", subHandler.List)
		api.POST("/config/subreddits", subHandler.Add)
		api.DELETE("/config/subreddits/:name", subHandler.Remove)

		scheduleHandler := NewScheduleHandler(deps.TriggerScan, logger)
		api.POST("/schedule/run", scheduleHandler.Run)
	}

	return router
}
