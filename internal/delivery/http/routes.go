package http

import (
	"github.com/cjfeed/backend/config"
	"github.com/cjfeed/backend/internal/infrastructure/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupRouter creates and configures the Gin router. reg may be nil, in
// which case no metrics are collected or exposed.
func SetupRouter(cfg *config.Config, handler *Handler, log *zap.Logger, reg *metrics.Registry) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}

	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware; the logger runs first so recovered panics carry a request ID
	router.Use(LoggerMiddleware(log))
	router.Use(RecoveryMiddleware(log))
	if reg != nil {
		router.Use(reg.Middleware())
	}
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	if reg != nil {
		router.GET("/metrics", gin.WrapH(reg.Handler()))
	}

	// Feed endpoint, also served at the bare path for existing consumers
	router.GET("/api/feed", handler.GetFeed)
	router.GET("/feed", handler.GetFeed)

	return router
}
