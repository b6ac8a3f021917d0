package controllers

import (
	"errors"
	"net/http"

	"go_sports_pipeline/services/pipeline"
	"go_sports_pipeline/services/providers"

	"github.com/gin-gonic/gin"
)

// PipelineController fronts the pipeline reads and management surface
type PipelineController struct {
	pipeline *pipeline.Pipeline
}

// NewPipelineController creates a new pipeline controller
func NewPipelineController(p *pipeline.Pipeline) *PipelineController {
	return &PipelineController{pipeline: p}
}

// respondReadError maps a failed read onto an HTTP status.
func respondReadError(c *gin.Context, err error) {
	var rle *pipeline.RateLimitError
	if errors.As(err, &rle) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": rle.Error()})
		return
	}

	var uerr *providers.UpstreamError
	if errors.As(err, &uerr) {
		c.JSON(http.StatusBadGateway, gin.H{"error": uerr.Error()})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// GetGame returns game detail
// GET /api/v1/games/:id
func (pc *PipelineController) GetGame(c *gin.Context) {
	game, err := pc.pipeline.GetGameData(c.Param("id"))
	if err != nil {
		respondReadError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": game})
}

// GetPlayer returns player detail
// GET /api/v1/players/:id
func (pc *PipelineController) GetPlayer(c *gin.Context) {
	player, err := pc.pipeline.GetPlayerData(c.Param("id"))
	if err != nil {
		respondReadError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": player})
}

// GetLiveOdds returns the odds board for an event
// GET /api/v1/odds/:eventId?market=h2h
func (pc *PipelineController) GetLiveOdds(c *gin.Context) {
	odds, err := pc.pipeline.GetLiveOdds(c.Param("eventId"), c.Query("market"))
	if err != nil {
		respondReadError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": odds})
}

// GetProjections returns the current projections board
// GET /api/v1/projections
func (pc *PipelineController) GetProjections(c *gin.Context) {
	projections, err := pc.pipeline.GetPrizePicksProjections()
	if err != nil {
		respondReadError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": projections, "count": len(projections)})
}

// GetInjuries returns the injury report for a sport
// GET /api/v1/injuries/:sport
func (pc *PipelineController) GetInjuries(c *gin.Context) {
	injuries, err := pc.pipeline.GetInjuries(c.Param("sport"))
	if err != nil {
		respondReadError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": injuries, "count": len(injuries)})
}

// GetWeather returns current venue conditions
// GET /api/v1/weather/:venueId
func (pc *PipelineController) GetWeather(c *gin.Context) {
	weather, err := pc.pipeline.GetWeatherData(c.Param("venueId"))
	if err != nil {
		respondReadError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": weather})
}

// GetStats returns cache and queue statistics
// GET /api/v1/pipeline/stats
func (pc *PipelineController) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": pc.pipeline.GetCacheStats()})
}

// GetConnections returns per-source reachability
// GET /api/v1/pipeline/connections
func (pc *PipelineController) GetConnections(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": pc.pipeline.GetConnectionStatus()})
}

// RefreshAll clears the cache and re-fetches critical categories
// POST /api/v1/pipeline/refresh
func (pc *PipelineController) RefreshAll(c *gin.Context) {
	if err := pc.pipeline.RefreshAllData(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Refresh completed"})
}

// ClearCache empties the pipeline cache
// POST /api/v1/pipeline/cache/clear
func (pc *PipelineController) ClearCache(c *gin.Context) {
	pc.pipeline.ClearCache()
	c.JSON(http.StatusOK, gin.H{"message": "Cache cleared"})
}

// TrackGame adds a game/event to the background refresh set
// POST /api/v1/pipeline/track/games/:id
func (pc *PipelineController) TrackGame(c *gin.Context) {
	pc.pipeline.TrackLiveGame(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"message": "Tracking game", "id": c.Param("id")})
}

// UntrackGame removes a game/event from the background refresh set
// DELETE /api/v1/pipeline/track/games/:id
func (pc *PipelineController) UntrackGame(c *gin.Context) {
	pc.pipeline.UntrackLiveGame(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"message": "Stopped tracking game", "id": c.Param("id")})
}

// TrackSport adds a sport to the injury refresh set
// POST /api/v1/pipeline/track/sports/:sport
func (pc *PipelineController) TrackSport(c *gin.Context) {
	pc.pipeline.TrackSport(c.Param("sport"))
	c.JSON(http.StatusOK, gin.H{"message": "Tracking sport", "sport": c.Param("sport")})
}
