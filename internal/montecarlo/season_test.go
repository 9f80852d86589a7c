package montecarlo

import (
	"context"
	"testing"

	"github.com/jstittsworth/ff-alpha-core/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fourTeamLeague() *domain.LeagueContext {
	mk := func(id string, schedule map[int]string, outcomes map[int]domain.Outcome) domain.Team {
		return domain.Team{ID: id, Schedule: schedule, Outcomes: outcomes}
	}
	return &domain.LeagueContext{
		CurrentWeek:        3,
		RegSeasonFinalWeek: 4,
		PlayoffTeamCount:   2,
		Teams: []domain.Team{
			mk("A", map[int]string{3: "B", 4: "C"}, map[int]domain.Outcome{1: domain.OutcomeWin, 2: domain.OutcomeWin}),
			mk("B", map[int]string{3: "A", 4: "D"}, map[int]domain.Outcome{1: domain.OutcomeLoss, 2: domain.OutcomeLoss}),
			mk("C", map[int]string{3: "D", 4: "A"}, map[int]domain.Outcome{1: domain.OutcomeWin, 2: domain.OutcomeLoss}),
			mk("D", map[int]string{3: "C", 4: "B"}, map[int]domain.Outcome{1: domain.OutcomeLoss, 2: domain.OutcomeWin}),
		},
	}
}

func TestSimulateSeason_StrongTeamProjectsMoreWins(t *testing.T) {
	league := fourTeamLeague()
	ratings := map[string]domain.TeamRating{
		"A": {Mean: 130, Stdev: 12},
		"B": {Mean: 95, Stdev: 12},
		"C": {Mean: 100, Stdev: 12},
		"D": {Mean: 98, Stdev: 12},
	}
	cfg := Config{NumSimulations: 3000, Workers: 4, Seed: 11}

	results, err := SimulateSeason(context.Background(), league, ratings, cfg)
	require.NoError(t, err)
	require.Len(t, results, 4)

	var teamA TeamSeasonResult
	for _, r := range results {
		if r.TeamID == "A" {
			teamA = r
		}
	}
	assert.Greater(t, teamA.MeanProjectedWins, teamA.CurrentWins)
	assert.Greater(t, teamA.PlayoffProbability, 0.5)
}

func TestSimulateSeason_ProbabilitiesSumAcrossTeamsReasonably(t *testing.T) {
	league := fourTeamLeague()
	ratings := map[string]domain.TeamRating{
		"A": {Mean: 105, Stdev: 14}, "B": {Mean: 105, Stdev: 14},
		"C": {Mean: 105, Stdev: 14}, "D": {Mean: 105, Stdev: 14},
	}
	cfg := Config{NumSimulations: 4000, Workers: 4, Seed: 5}

	results, err := SimulateSeason(context.Background(), league, ratings, cfg)
	require.NoError(t, err)

	sum := 0.0
	for _, r := range results {
		sum += r.PlayoffProbability
	}
	// exactly PlayoffTeamCount spots are awarded every simulation
	assert.InDelta(t, float64(league.PlayoffTeamCount), sum, 0.05)
}
