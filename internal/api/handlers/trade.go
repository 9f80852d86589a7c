package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/jstittsworth/ff-alpha-core/internal/audit"
	"github.com/jstittsworth/ff-alpha-core/internal/decisions"
	"github.com/jstittsworth/ff-alpha-core/internal/domain"
	"github.com/jstittsworth/ff-alpha-core/internal/valuation"
	"github.com/jstittsworth/ff-alpha-core/pkg/utils"
)

// TradeAnalyzeRequest names both sides of a proposed swap by player id
// within the hydrated league.
type TradeAnalyzeRequest struct {
	League                   domain.LeagueContext `json:"league"`
	MyTeamID                 string                `json:"my_team_id"`
	TheirTeamID               string                `json:"their_team_id"`
	MyPlayerIDs               []string              `json:"my_player_ids"`
	TheirPlayerIDs             []string              `json:"their_player_ids"`
	Week                      int                   `json:"week"`
	UseROS                    bool                  `json:"use_ros"`
	WeeksRemaining            int                   `json:"weeks_remaining"`
	MinAdvantage              float64               `json:"min_advantage"`
	MinAcceptanceProbability  float64               `json:"min_acceptance_probability"`
}

func resolvePlayers(team *domain.Team, ids []string) []domain.Player {
	players := make([]domain.Player, 0, len(ids))
	for _, id := range ids {
		if p, ok := team.FindPlayer(id); ok {
			players = append(players, *p)
		}
	}
	return players
}

// AnalyzeTrade answers "should I make this trade": it computes each
// side's rest-of-season roster value change and a deterministic
// acceptance probability.
func (h *Handler) AnalyzeTrade(c *gin.Context) {
	var req TradeAnalyzeRequest
	if !bindJSON(c, &req) {
		return
	}
	myTeam, ok := leagueTeam(c, &req.League, req.MyTeamID)
	if !ok {
		return
	}
	theirTeam, ok := leagueTeam(c, &req.League, req.TheirTeamID)
	if !ok {
		return
	}

	strength := valuation.ComputeOpponentStrength(&req.League)
	rng := h.rng(nil)
	baseValue := h.deps.Pipeline.BaseValue(c.Request.Context(), rng, req.Week-1)

	myPlayers := resolvePlayers(myTeam, req.MyPlayerIDs)
	theirPlayers := resolvePlayers(theirTeam, req.TheirPlayerIDs)

	cfg := decisions.TradeConfig{
		UseROS:                   req.UseROS,
		WeeksRemaining:           req.WeeksRemaining,
		MinAdvantage:             req.MinAdvantage,
		MinAcceptanceProbability: req.MinAcceptanceProbability,
	}
	result := decisions.AnalyzeTrade(&req.League, myTeam, theirTeam, myPlayers, theirPlayers,
		strength, baseValue, req.League.RosterSlots, req.League.RosterSlots, cfg)

	h.recordAudit(audit.DecisionKindTrade, req.League.ID, req.Week,
		audit.JSONBlob{"my_team_id": req.MyTeamID, "their_team_id": req.TheirTeamID},
		audit.JSONBlob{"recommendation": result.Recommendation, "advantage_margin": result.AdvantageMargin})

	utils.SendSuccess(c, result)
}

// TradeSearchRequest bounds a league-wide trade-opportunity search for
// one team.
type TradeSearchRequest struct {
	League                    domain.LeagueContext `json:"league"`
	MyTeamID                  string                `json:"my_team_id"`
	Week                      int                   `json:"week"`
	UseROS                    bool                  `json:"use_ros"`
	MinAdvantage              float64               `json:"min_advantage"`
	MinAcceptanceProbability  float64               `json:"min_acceptance_probability"`
	MaxTradesPerTeam          int                   `json:"max_trades_per_team"`
	MaxTotalOpportunities     int                   `json:"max_total_opportunities"`
}

// SearchTrades answers "what trades are out there for me": it enumerates
// 1-for-1 and 2-for-1 swaps against every other league team and keeps
// only the ones AnalyzeTrade recommends accepting.
func (h *Handler) SearchTrades(c *gin.Context) {
	var req TradeSearchRequest
	if !bindJSON(c, &req) {
		return
	}
	myTeam, ok := leagueTeam(c, &req.League, req.MyTeamID)
	if !ok {
		return
	}

	strength := valuation.ComputeOpponentStrength(&req.League)
	rng := h.rng(nil)
	baseValue := h.deps.Pipeline.BaseValue(c.Request.Context(), rng, req.Week-1)

	cfg := decisions.SearchConfig{
		TradeConfig: decisions.TradeConfig{
			UseROS:                   req.UseROS,
			MinAdvantage:             req.MinAdvantage,
			MinAcceptanceProbability: req.MinAcceptanceProbability,
		},
		MaxTradesPerTeam:      req.MaxTradesPerTeam,
		MaxTotalOpportunities: req.MaxTotalOpportunities,
	}
	opportunities := decisions.SearchTrades(&req.League, myTeam, strength, baseValue, cfg)

	h.recordAudit(audit.DecisionKindTrade, req.League.ID, req.Week,
		audit.JSONBlob{"my_team_id": req.MyTeamID, "mode": "search"},
		audit.JSONBlob{"opportunity_count": len(opportunities)})

	utils.SendSuccess(c, opportunities)
}
