// Package api wires the gin route tree over internal/api/handlers.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/jstittsworth/ff-alpha-core/internal/api/handlers"
)

// SetupRoutes registers every C5-C8 decision/simulation endpoint under
// group, plus a liveness probe.
func SetupRoutes(group *gin.RouterGroup, h *handlers.Handler) {
	group.GET("/health", h.Health)

	leagues := group.Group("/leagues")
	{
		leagues.POST("/lineup", h.RecommendLineup)
		leagues.POST("/free-agents", h.RecommendFreeAgents)
		leagues.POST("/trade/analyze", h.AnalyzeTrade)
		leagues.POST("/trade/search", h.SearchTrades)
	}

	simulate := group.Group("/simulate")
	{
		simulate.POST("/ratings", h.BuildTeamRatings)
		simulate.POST("/matchup", h.SimulateMatchup)
		simulate.POST("/matchup-rosters", h.SimulateMatchupFromRosters)
		simulate.POST("/season", h.SimulateSeason)
		simulate.POST("/playoffs", h.SimulatePlayoffs)
		simulate.POST("/draft-compare", h.CompareDraftStrategies)
	}

	backtestGroup := group.Group("/backtest")
	{
		backtestGroup.POST("/run", h.RunBacktest)
		backtestGroup.POST("/run-scheduled", h.RunScheduledBacktest)
	}
}
