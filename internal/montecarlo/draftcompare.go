package montecarlo

import (
	"context"

	"github.com/jstittsworth/ff-alpha-core/internal/domain"
)

// DraftStrategy is one preset drafting approach under comparison: a
// label (e.g. "zero_rb", "hero_rb", "best_player_available") paired
// with the team rating its roster template projects to for the team
// under evaluation.
type DraftStrategy struct {
	Label        string
	MyTeamRating domain.TeamRating
}

// DraftStrategyResult is one strategy's season-metric distribution,
// in the same shape C7 reports lineup/trade decisions in.
type DraftStrategyResult struct {
	Label               string
	MeanProjectedWins    float64
	PlayoffProbability   float64
	ChampionshipProbability float64
}

// copyRatings deep-copies the ratings map so mutating one strategy's
// entry for myTeamID never bleeds into another strategy's run.
func copyRatings(ratings map[string]domain.TeamRating) map[string]domain.TeamRating {
	cp := make(map[string]domain.TeamRating, len(ratings))
	for k, v := range ratings {
		cp[k] = v
	}
	return cp
}

// CompareDraftStrategies simulates the season and playoffs once per
// strategy, substituting myTeamID's rating with the strategy's
// projected roster-template rating while holding every other team's
// rating fixed, and reports each strategy's projected wins, playoff
// probability and championship probability.
func CompareDraftStrategies(ctx context.Context, league *domain.LeagueContext, baseRatings map[string]domain.TeamRating, myTeamID string, strategies []DraftStrategy, cfg Config) ([]DraftStrategyResult, error) {
	results := make([]DraftStrategyResult, 0, len(strategies))
	for _, strategy := range strategies {
		ratings := copyRatings(baseRatings)
		ratings[myTeamID] = strategy.MyTeamRating

		seasonResults, err := SimulateSeason(ctx, league, ratings, cfg)
		if err != nil {
			return nil, err
		}
		playoffResults, err := SimulatePlayoffs(ctx, league, ratings, cfg)
		if err != nil {
			return nil, err
		}

		result := DraftStrategyResult{Label: strategy.Label}
		for _, r := range seasonResults {
			if r.TeamID == myTeamID {
				result.MeanProjectedWins = r.MeanProjectedWins
				result.PlayoffProbability = r.PlayoffProbability
			}
		}
		for _, r := range playoffResults {
			if r.TeamID == myTeamID {
				result.ChampionshipProbability = r.ChampionshipProb
			}
		}
		results = append(results, result)
	}
	return results, nil
}
