package handlers

import (
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/jstittsworth/ff-alpha-core/internal/domain"
	"github.com/jstittsworth/ff-alpha-core/internal/montecarlo"
	"github.com/jstittsworth/ff-alpha-core/internal/valuation"
	"github.com/jstittsworth/ff-alpha-core/pkg/utils"
)

// TeamRatingsRequest carries the hydrated league a set of Gaussian
// team ratings is derived for, at the given week.
type TeamRatingsRequest struct {
	League domain.LeagueContext `json:"league"`
	Week   int                   `json:"week"`
}

// observedScores returns a team's realized weekly totals strictly
// before throughWeek, oldest first, the input BuildTeamRating blends
// against the roster-projected rating.
func observedScores(team *domain.Team, throughWeek int) []float64 {
	weeks := make([]int, 0, len(team.Scores))
	for w := range team.Scores {
		if w < throughWeek {
			weeks = append(weeks, w)
		}
	}
	sort.Ints(weeks)
	scores := make([]float64, 0, len(weeks))
	for _, w := range weeks {
		scores = append(scores, team.Scores[w])
	}
	return scores
}

// BuildTeamRatings answers "what is every team's current Gaussian
// scoring rating": it projects each team's roster for week, sums the
// optimal starting lineup's projected mean/variance into a team
// rating (§4.6), and blends it against the team's own realized
// scoring so far this season when ratings_blend is configured.
func (h *Handler) BuildTeamRatings(c *gin.Context) {
	var req TeamRatingsRequest
	if !bindJSON(c, &req) {
		return
	}

	strength := valuation.ComputeOpponentStrength(&req.League)
	ratingsCfg := h.ratingsConfig()

	ratings := make(map[string]domain.TeamRating, len(req.League.Teams))
	for ti := range req.League.Teams {
		team := &req.League.Teams[ti]
		projections, err := h.deps.Pipeline.ProjectRoster(c.Request.Context(), &req.League, team, req.Week, strength, nil)
		if err != nil {
			utils.SendInternalError(c, "failed to build projections: "+err.Error())
			return
		}
		ratings[team.ID] = montecarlo.BuildTeamRating(req.League.RosterSlots, projections, observedScores(team, req.Week), ratingsCfg)
	}

	utils.SendSuccess(c, ratings)
}
