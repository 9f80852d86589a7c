package montecarlo

import (
	"context"
	"testing"

	"github.com/jstittsworth/ff-alpha-core/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareDraftStrategies_HigherRatedStrategyWinsMore(t *testing.T) {
	league := fourTeamLeague()
	baseRatings := map[string]domain.TeamRating{
		"A": {Mean: 100, Stdev: 12},
		"B": {Mean: 100, Stdev: 12},
		"C": {Mean: 100, Stdev: 12},
		"D": {Mean: 100, Stdev: 12},
	}
	strategies := []DraftStrategy{
		{Label: "zero_rb", MyTeamRating: domain.TeamRating{Mean: 98, Stdev: 12}},
		{Label: "best_player_available", MyTeamRating: domain.TeamRating{Mean: 120, Stdev: 12}},
	}
	cfg := Config{NumSimulations: 2000, Workers: 4, Seed: 13}

	results, err := CompareDraftStrategies(context.Background(), league, baseRatings, "A", strategies, cfg)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Greater(t, results[1].MeanProjectedWins, results[0].MeanProjectedWins)
	assert.Greater(t, results[1].PlayoffProbability, results[0].PlayoffProbability)

	// base ratings map passed in must be untouched by either strategy run
	assert.Equal(t, 100.0, baseRatings["A"].Mean)
}
