package montecarlo

import (
	"context"
	"testing"

	"github.com/jstittsworth/ff-alpha-core/internal/domain"
	"github.com/jstittsworth/ff-alpha-core/internal/perfmodel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulateMatchup_FavoriteWinsMoreOften(t *testing.T) {
	teamA := domain.TeamRating{Mean: 120, Stdev: 12}
	teamB := domain.TeamRating{Mean: 95, Stdev: 12}
	cfg := Config{NumSimulations: 5000, Workers: 4, Seed: 42}

	result, err := SimulateMatchup(context.Background(), teamA, teamB, cfg)
	require.NoError(t, err)
	assert.Greater(t, result.WinProbA, result.WinProbB)
	assert.InDelta(t, 1.0, result.WinProbA+result.WinProbB+result.TieProb, 1e-9)
}

func TestSimulateMatchup_EvenRatingsAreCloseToCoinFlip(t *testing.T) {
	teamA := domain.TeamRating{Mean: 100, Stdev: 15}
	teamB := domain.TeamRating{Mean: 100, Stdev: 15}
	cfg := Config{NumSimulations: 20000, Workers: 4, Seed: 7}

	result, err := SimulateMatchup(context.Background(), teamA, teamB, cfg)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, result.WinProbA, 0.05)
}

func TestSimulateMatchup_DeterministicAcrossRunsWithSameSeed(t *testing.T) {
	teamA := domain.TeamRating{Mean: 110, Stdev: 10}
	teamB := domain.TeamRating{Mean: 105, Stdev: 10}
	cfg := Config{NumSimulations: 1000, Workers: 3, Seed: 99}

	r1, err := SimulateMatchup(context.Background(), teamA, teamB, cfg)
	require.NoError(t, err)
	r2, err := SimulateMatchup(context.Background(), teamA, teamB, cfg)
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}

func TestSimulateMatchup_ZeroVarianceRatingIsFloored(t *testing.T) {
	teamA := domain.TeamRating{Mean: 100, Stdev: 0}
	teamB := domain.TeamRating{Mean: 100, Stdev: 0}
	cfg := Config{NumSimulations: 2000, Workers: 2, Seed: 3}

	result, err := SimulateMatchup(context.Background(), teamA, teamB, cfg)
	require.NoError(t, err)
	assert.Less(t, result.WinProbA, 1.0)
	assert.Greater(t, result.WinProbA, 0.0)
}

func TestSimulateMatchupFromRosters_FavoriteWinsMoreOften(t *testing.T) {
	strongStarter := perfmodel.FallbackState("strong", 2024, 25.0, 4.0)
	weakStarter := perfmodel.FallbackState("weak", 2024, 8.0, 4.0)
	rosterA := TeamRoster{Starters: []*perfmodel.PlayerState{strongStarter, strongStarter}}
	rosterB := TeamRoster{Starters: []*perfmodel.PlayerState{weakStarter, weakStarter}}
	cfg := Config{NumSimulations: 5000, Workers: 4, Seed: 11}

	result, err := SimulateMatchupFromRosters(context.Background(), rosterA, rosterB, cfg)
	require.NoError(t, err)
	assert.Greater(t, result.WinProbA, result.WinProbB)
	assert.InDelta(t, 1.0, result.WinProbA+result.WinProbB+result.TieProb, 1e-9)
}

func TestSimulateMatchupFromRosters_DeterministicAcrossRunsWithSameSeed(t *testing.T) {
	starter := perfmodel.FallbackState("p", 2024, 15.0, 4.0)
	roster := TeamRoster{Starters: []*perfmodel.PlayerState{starter, starter}}
	cfg := Config{NumSimulations: 1000, Workers: 3, Seed: 5}

	r1, err := SimulateMatchupFromRosters(context.Background(), roster, roster, cfg)
	require.NoError(t, err)
	r2, err := SimulateMatchupFromRosters(context.Background(), roster, roster, cfg)
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}
