package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/jstittsworth/ff-alpha-core/internal/audit"
	"github.com/jstittsworth/ff-alpha-core/internal/decisions"
	"github.com/jstittsworth/ff-alpha-core/internal/domain"
	"github.com/jstittsworth/ff-alpha-core/internal/valuation"
	"github.com/jstittsworth/ff-alpha-core/pkg/utils"
)

// FreeAgentRequest carries the hydrated league plus the requesting
// team and the waiver-ranking tunables.
type FreeAgentRequest struct {
	League         domain.LeagueContext `json:"league"`
	TeamID         string                `json:"team_id"`
	Week           int                   `json:"week"`
	TopN           int                   `json:"top_n"`
	Position       string                `json:"position,omitempty"`
	ExcludeInjured bool                  `json:"exclude_injured"`
	UseROS         bool                  `json:"use_ros"`
}

// RecommendFreeAgents answers "who should I pick up": it ranks the
// league's free-agent pool against the requesting team's weakest
// same-position roster player by rest-of-season (or season-average) value
// delta.
func (h *Handler) RecommendFreeAgents(c *gin.Context) {
	var req FreeAgentRequest
	if !bindJSON(c, &req) {
		return
	}
	team, ok := leagueTeam(c, &req.League, req.TeamID)
	if !ok {
		return
	}

	strength := valuation.ComputeOpponentStrength(&req.League)
	rng := h.rng(nil)
	baseValue := h.deps.Pipeline.BaseValue(c.Request.Context(), rng, req.Week-1)

	cfg := decisions.FreeAgentConfig{
		TopN:           req.TopN,
		ExcludeInjured: req.ExcludeInjured,
		UseROS:         req.UseROS,
	}
	if req.Position != "" {
		pos := domain.Position(req.Position)
		cfg.PositionFilter = &pos
	}

	candidates := decisions.RecommendFreeAgents(&req.League, team, req.League.FreeAgents(), strength, baseValue, cfg)

	h.recordAudit(audit.DecisionKindFreeAgent, req.League.ID, req.Week,
		audit.JSONBlob{"team_id": req.TeamID, "week": req.Week, "top_n": req.TopN},
		audit.JSONBlob{"candidate_count": len(candidates)})

	utils.SendSuccess(c, candidates)
}
