// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"mminv/internal/domain/inventory"
	"mminv/internal/infrastructure/http/v1/handlers"
	"mminv/internal/infrastructure/http/v1/middleware"
	"mminv/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Workspace owns the mirrors, views and reorder engine.
	Workspace *inventory.Workspace

	// Logger for request logging
	Logger *logger.Logger
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(cfg.Workspace)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	// API v1
	base := handlers.NewBaseHandler()
	viewHandler := handlers.NewViewHandler(base, cfg.Workspace)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/:view", viewHandler.List)
		v1.POST("/:view/sort", viewHandler.Sort)

		// Transactional views only; the workspace rejects the rest.
		v1.PUT("/:view/inputs", viewHandler.SetInputs)
		v1.POST("/:view/clear", viewHandler.ClearInputs)
		v1.POST("/:view/submit", viewHandler.Submit)
	}

	return router
}
