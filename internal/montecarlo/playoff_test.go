package montecarlo

import (
	"context"
	"testing"

	"github.com/jstittsworth/ff-alpha-core/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatePlayoffs_StrongTeamWinsChampionshipMostOften(t *testing.T) {
	league := fourTeamLeague()
	ratings := map[string]domain.TeamRating{
		"A": {Mean: 135, Stdev: 10},
		"B": {Mean: 95, Stdev: 10},
		"C": {Mean: 100, Stdev: 10},
		"D": {Mean: 98, Stdev: 10},
	}
	cfg := Config{NumSimulations: 3000, Workers: 4, Seed: 21}

	results, err := SimulatePlayoffs(context.Background(), league, ratings, cfg)
	require.NoError(t, err)
	require.Len(t, results, 4)

	var teamA TeamPlayoffResult
	for _, r := range results {
		if r.TeamID == "A" {
			teamA = r
		}
	}
	assert.Greater(t, teamA.ChampionshipProb, 0.5)
	assert.Greater(t, teamA.MakesPlayoffsProb, 0.9)
}

func TestSimulatePlayoffs_ChampionshipProbabilitiesSumToOne(t *testing.T) {
	league := fourTeamLeague()
	ratings := map[string]domain.TeamRating{
		"A": {Mean: 105, Stdev: 14}, "B": {Mean: 105, Stdev: 14},
		"C": {Mean: 105, Stdev: 14}, "D": {Mean: 105, Stdev: 14},
	}
	cfg := Config{NumSimulations: 4000, Workers: 4, Seed: 9}

	results, err := SimulatePlayoffs(context.Background(), league, ratings, cfg)
	require.NoError(t, err)

	sum := 0.0
	for _, r := range results {
		sum += r.ChampionshipProb
	}
	assert.InDelta(t, 1.0, sum, 0.05)
}

func TestSimulatePlayoffs_Reproducible(t *testing.T) {
	league := fourTeamLeague()
	ratings := map[string]domain.TeamRating{
		"A": {Mean: 110, Stdev: 12}, "B": {Mean: 108, Stdev: 12},
		"C": {Mean: 104, Stdev: 12}, "D": {Mean: 100, Stdev: 12},
	}
	cfg := Config{NumSimulations: 2000, Workers: 4, Seed: 7}

	r1, err := SimulatePlayoffs(context.Background(), league, ratings, cfg)
	require.NoError(t, err)
	r2, err := SimulatePlayoffs(context.Background(), league, ratings, cfg)
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}
