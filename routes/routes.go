package routes

import (
	"go_sports_pipeline/controllers"
	"go_sports_pipeline/services/pipeline"

	"github.com/gin-gonic/gin"
)

// SetupRoutes sets up all API routes
func SetupRoutes(router *gin.Engine, p *pipeline.Pipeline) {
	pipelineController := controllers.NewPipelineController(p)

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(p.Metrics().Handler()))

	// API v1 group
	api := router.Group("/api/v1")
	{
		// Data reads
		api.GET("/games/:id", pipelineController.GetGame)
		api.GET("/players/:id", pipelineController.GetPlayer)
		api.GET("/odds/:eventId", pipelineController.GetLiveOdds)
		api.GET("/projections", pipelineController.GetProjections)
		api.GET("/injuries/:sport", pipelineController.GetInjuries)
		api.GET("/weather/:venueId", pipelineController.GetWeather)

		// Management surface
		mgmt := api.Group("/pipeline")
		{
			mgmt.GET("/stats", pipelineController.GetStats)
			mgmt.GET("/connections", pipelineController.GetConnections)
			mgmt.POST("/refresh", pipelineController.RefreshAll)
			mgmt.POST("/cache/clear", pipelineController.ClearCache)
			mgmt.POST("/track/games/:id", pipelineController.TrackGame)
			mgmt.DELETE("/track/games/:id", pipelineController.UntrackGame)
			mgmt.POST("/track/sports/:sport", pipelineController.TrackSport)
		}
	}
}
