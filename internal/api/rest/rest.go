package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/copperline/pipeline-core/internal/api/middleware"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler, authCfg middleware.AuthConfig) {
	// Health check endpoint (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Read endpoints (public within the deployment)
		v1.GET("/prospects", handler.ListProspects)
		v1.GET("/prospects/:id", handler.GetProspect)
		v1.GET("/prospects/:id/activities", handler.ListActivities)
		v1.GET("/queue", handler.GetQueue)
		v1.GET("/reports/orphans", handler.GetOrphans)

		// Lifecycle mutations (require authentication)
		v1.POST("/prospects/:id/transition", middleware.Auth(authCfg), handler.Transition)
		v1.POST("/prospects/transition", middleware.Auth(authCfg), handler.BulkTransition)
		v1.POST("/prospects/:id/stage", middleware.Auth(authCfg), handler.TransitionStage)

		// Cadence mutations (require authentication)
		v1.POST("/prospects/:id/follow-up", middleware.Auth(authCfg), handler.SetFollowUp)
		v1.POST("/prospects/follow-up", middleware.Auth(authCfg), handler.BulkSetFollowUp)
		v1.POST("/prospects/:id/attempts", middleware.Auth(authCfg), handler.RecordAttempt)

		// Import funnel (requires authentication)
		v1.POST("/imports/analyze", middleware.Auth(authCfg), handler.AnalyzeImport)
		v1.POST("/imports/commit", middleware.Auth(authCfg), handler.CommitImport)
	}
}
