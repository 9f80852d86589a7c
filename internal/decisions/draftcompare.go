package decisions

import (
	"context"
	"sort"

	"github.com/jstittsworth/ff-alpha-core/internal/domain"
	"github.com/jstittsworth/ff-alpha-core/internal/montecarlo"
)

// DraftStrategyReport is C7's formatted answer to "which drafting
// approach should I take": the per-strategy season distributions from
// C6, ranked by championship probability with the winner called out.
type DraftStrategyReport struct {
	Results         []montecarlo.DraftStrategyResult
	RecommendedLabel string
}

// CompareDraftStrategies calls straight into C6's simulation and
// formats the resulting distributions; no projection or simulation
// logic lives here.
func CompareDraftStrategies(ctx context.Context, league *domain.LeagueContext, baseRatings map[string]domain.TeamRating, myTeamID string, strategies []montecarlo.DraftStrategy, cfg montecarlo.Config) (DraftStrategyReport, error) {
	results, err := montecarlo.CompareDraftStrategies(ctx, league, baseRatings, myTeamID, strategies, cfg)
	if err != nil {
		return DraftStrategyReport{}, err
	}

	ranked := append([]montecarlo.DraftStrategyResult(nil), results...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].ChampionshipProbability > ranked[j].ChampionshipProbability
	})

	label := ""
	if len(ranked) > 0 {
		label = ranked[0].Label
	}

	return DraftStrategyReport{Results: ranked, RecommendedLabel: label}, nil
}
