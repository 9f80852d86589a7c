package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/jstittsworth/ff-alpha-core/internal/decisions"
	"github.com/jstittsworth/ff-alpha-core/internal/domain"
	"github.com/jstittsworth/ff-alpha-core/internal/montecarlo"
	"github.com/jstittsworth/ff-alpha-core/internal/perfmodel"
	"github.com/jstittsworth/ff-alpha-core/internal/valuation"
	"github.com/jstittsworth/ff-alpha-core/pkg/utils"
)

// MatchupRequest names the two team ratings to simulate head-to-head.
type MatchupRequest struct {
	TeamA domain.TeamRating `json:"team_a"`
	TeamB domain.TeamRating `json:"team_b"`
	Seed  *int64            `json:"seed,omitempty"`
}

// SimulateMatchup answers "who wins this week's matchup": it draws
// paired scores from each team's rating and reports win/tie
// probability and the margin distribution.
func (h *Handler) SimulateMatchup(c *gin.Context) {
	var req MatchupRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := montecarlo.SimulateMatchup(c.Request.Context(), req.TeamA, req.TeamB, h.simulationConfig(req.Seed))
	if err != nil {
		utils.SendInternalError(c, "simulation failed: "+err.Error())
		return
	}
	utils.SendSuccess(c, result)
}

// MatchupFromRostersRequest names the two teams within league to
// simulate head-to-head using each starter's own C1 mixture draw
// instead of a single pre-aggregated team rating.
type MatchupFromRostersRequest struct {
	League  domain.LeagueContext `json:"league"`
	TeamAID string               `json:"team_a_id"`
	TeamBID string               `json:"team_b_id"`
	Week    int                  `json:"week"`
	Seed    *int64               `json:"seed,omitempty"`
}

// teamRoster selects team's optimal starting lineup for week and
// loads each starter's trained C1 state, falling back to a shifted
// fallback state (§ C1) for any player with no trained model yet.
func (h *Handler) teamRoster(ctx context.Context, league *domain.LeagueContext, team *domain.Team, week int) montecarlo.TeamRoster {
	values := make([]valuation.PlayerROSValue, 0, len(team.Roster))
	for _, p := range team.Roster {
		values = append(values, valuation.PlayerROSValue{Player: p, Value: p.ScoringHistory[week].ProjectedPoints})
	}
	starters := valuation.SelectStarters(league.RosterSlots, values)

	roster := montecarlo.TeamRoster{Starters: make([]*perfmodel.PlayerState, 0, len(starters))}
	for _, s := range starters {
		player, ok := team.FindPlayer(s.Player.ID)
		if !ok {
			continue
		}
		state, err := h.deps.PipelineDeps.Store.LoadOrTrain(ctx, player, h.deps.PipelineDeps.Year, week-1)
		if err != nil {
			state = perfmodel.FallbackState(player.ID, h.deps.PipelineDeps.Year, player.ScoringHistory[week].ProjectedPoints, 4.0)
		}
		roster.Starters = append(roster.Starters, state)
	}
	return roster
}

// SimulateMatchupFromRosters answers "who wins this week's matchup"
// from each team's actual starting lineup rather than a single
// pre-aggregated rating: every simulated draw sums each starter's own
// C1 state-biased mixture sample, so the matchup margin distribution
// reflects the per-player skew a Gaussian team summary discards.
// Starters are drawn independently of one another.
func (h *Handler) SimulateMatchupFromRosters(c *gin.Context) {
	var req MatchupFromRostersRequest
	if !bindJSON(c, &req) {
		return
	}
	teamA, ok := leagueTeam(c, &req.League, req.TeamAID)
	if !ok {
		return
	}
	teamB, ok := leagueTeam(c, &req.League, req.TeamBID)
	if !ok {
		return
	}

	rosterA := h.teamRoster(c.Request.Context(), &req.League, teamA, req.Week)
	rosterB := h.teamRoster(c.Request.Context(), &req.League, teamB, req.Week)

	result, err := montecarlo.SimulateMatchupFromRosters(c.Request.Context(), rosterA, rosterB, h.simulationConfig(req.Seed))
	if err != nil {
		utils.SendInternalError(c, "simulation failed: "+err.Error())
		return
	}
	utils.SendSuccess(c, result)
}

// SeasonRequest carries the hydrated league plus every team's current
// Gaussian rating.
type SeasonRequest struct {
	League  domain.LeagueContext           `json:"league"`
	Ratings map[string]domain.TeamRating `json:"ratings"`
	Seed    *int64                          `json:"seed,omitempty"`
}

// SimulateSeason answers "how many wins will I finish with": it
// replays the remaining schedule from each team's rating and reports
// projected wins and playoff probability.
func (h *Handler) SimulateSeason(c *gin.Context) {
	var req SeasonRequest
	if !bindJSON(c, &req) {
		return
	}
	results, err := montecarlo.SimulateSeason(c.Request.Context(), &req.League, req.Ratings, h.simulationConfig(req.Seed))
	if err != nil {
		utils.SendInternalError(c, "simulation failed: "+err.Error())
		return
	}
	utils.SendSuccess(c, results)
}

// SimulatePlayoffs answers "what are my championship odds": it runs
// the season to completion, seeds the playoff bracket and tallies
// championships across every replay.
func (h *Handler) SimulatePlayoffs(c *gin.Context) {
	var req SeasonRequest
	if !bindJSON(c, &req) {
		return
	}
	results, err := montecarlo.SimulatePlayoffs(c.Request.Context(), &req.League, req.Ratings, h.simulationConfig(req.Seed))
	if err != nil {
		utils.SendInternalError(c, "simulation failed: "+err.Error())
		return
	}
	utils.SendSuccess(c, results)
}

// DraftCompareRequest names the candidate drafting strategies to
// compare for myTeamID, holding every other team's rating fixed.
type DraftCompareRequest struct {
	League       domain.LeagueContext           `json:"league"`
	BaseRatings  map[string]domain.TeamRating `json:"base_ratings"`
	MyTeamID     string                          `json:"my_team_id"`
	Strategies   []montecarlo.DraftStrategy      `json:"strategies"`
	Seed         *int64                          `json:"seed,omitempty"`
}

// CompareDraftStrategies answers "which drafting approach should I
// take": it simulates the season and playoffs once per strategy and
// ranks them by championship probability.
func (h *Handler) CompareDraftStrategies(c *gin.Context) {
	var req DraftCompareRequest
	if !bindJSON(c, &req) {
		return
	}
	report, err := decisions.CompareDraftStrategies(c.Request.Context(), &req.League, req.BaseRatings,
		req.MyTeamID, req.Strategies, h.simulationConfig(req.Seed))
	if err != nil {
		utils.SendInternalError(c, "simulation failed: "+err.Error())
		return
	}
	utils.SendSuccess(c, report)
}
