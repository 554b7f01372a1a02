package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nutrilog/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, log *zap.SugaredLogger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware(log))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(UserIDMiddleware())
	{
		logs := v1.Group("/logs")
		{
			logs.POST("/:date", handler.SubmitDayLog)
			logs.GET("/:date/summary", handler.DaySummary)
		}

		foods := v1.Group("/foods")
		{
			foods.GET("/search", handler.SearchFoods)
			foods.POST("/import", handler.ImportFood)
		}

		targets := v1.Group("/targets")
		{
			targets.GET("", handler.MicroTargets)
			targets.PUT("", handler.UpdateTargets)
		}
	}

	return router
}
