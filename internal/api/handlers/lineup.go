package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/jstittsworth/ff-alpha-core/internal/audit"
	"github.com/jstittsworth/ff-alpha-core/internal/decisions"
	"github.com/jstittsworth/ff-alpha-core/internal/domain"
	"github.com/jstittsworth/ff-alpha-core/internal/valuation"
	"github.com/jstittsworth/ff-alpha-core/pkg/utils"
)

// LineupRequest carries the hydrated league context a lineup decision
// is scored against, plus the requesting team and week.
type LineupRequest struct {
	League domain.LeagueContext `json:"league"`
	TeamID string                `json:"team_id"`
	Week   int                   `json:"week"`
	Lambda float64               `json:"lambda"`
}

// RecommendLineup answers "who should I start": it projects the
// requesting team's roster for the given week and fills every
// starting slot with the highest lambda-adjusted scorer.
func (h *Handler) RecommendLineup(c *gin.Context) {
	var req LineupRequest
	if !bindJSON(c, &req) {
		return
	}
	team, ok := leagueTeam(c, &req.League, req.TeamID)
	if !ok {
		return
	}

	strength := valuation.ComputeOpponentStrength(&req.League)
	projections, err := h.deps.Pipeline.ProjectRoster(c.Request.Context(), &req.League, team, req.Week, strength, nil)
	if err != nil {
		utils.SendInternalError(c, "failed to build projections: "+err.Error())
		return
	}

	lambda := req.Lambda
	recommendation := decisions.RecommendLineup(team, req.League.RosterSlots, projections, decisions.LineupConfig{Lambda: lambda})

	h.recordAudit(audit.DecisionKindLineup, req.League.ID, req.Week,
		audit.JSONBlob{"team_id": req.TeamID, "week": req.Week, "lambda": lambda},
		audit.JSONBlob{"alpha_lift": recommendation.Audit.AlphaLift, "confidence": recommendation.Audit.ConfidenceLevel})

	utils.SendSuccess(c, recommendation)
}
