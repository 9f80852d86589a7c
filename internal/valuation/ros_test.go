package valuation

import (
	"testing"

	"github.com/jstittsworth/ff-alpha-core/internal/domain"
	"github.com/stretchr/testify/assert"
)

func leagueForROS(currentWeek, finalWeek int) *domain.LeagueContext {
	return &domain.LeagueContext{CurrentWeek: currentWeek, RegSeasonFinalWeek: finalWeek}
}

func flatBase(value float64) BaseValueFunc {
	return func(player *domain.Player, week int) float64 { return value }
}

func TestROSPlayerValue_SumsAcrossHorizonDividedByWeeks(t *testing.T) {
	league := leagueForROS(5, 7)
	player := &domain.Player{
		Position: domain.PositionWR,
		Schedule: map[int]domain.ScheduledGame{
			5: {OpponentTeamID: "A"}, 6: {OpponentTeamID: "B"}, 7: {OpponentTeamID: "A"},
		},
	}
	strength := &OpponentStrength{
		Multiplier: map[domain.Position]map[string]float64{
			domain.PositionWR: {"A": 1.2, "B": 0.8},
		},
	}

	ptsPerWeek, contributions, empty := ROSPlayerValue(league, player, strength, flatBase(10))
	assert.False(t, empty)
	assert.Len(t, contributions, 3)
	expected := (10*1.2 + 10*0.8 + 10*1.2) / 3
	assert.InDelta(t, expected, ptsPerWeek, 1e-9)
}

func TestROSPlayerValue_MissingScheduleFlagsNoScheduleAndUsesOne(t *testing.T) {
	league := leagueForROS(5, 5)
	player := &domain.Player{Position: domain.PositionRB, Schedule: map[int]domain.ScheduledGame{}}
	strength := &OpponentStrength{}

	ptsPerWeek, contributions, empty := ROSPlayerValue(league, player, strength, flatBase(9))
	assert.False(t, empty)
	assert.Equal(t, 9.0, ptsPerWeek)
	assert.True(t, contributions[0].NoSchedule)
}

func TestROSPlayerValue_CurrentWeekPastFinalIsEmptyHorizon(t *testing.T) {
	league := leagueForROS(10, 9)
	player := &domain.Player{Position: domain.PositionRB}
	strength := &OpponentStrength{}

	ptsPerWeek, contributions, empty := ROSPlayerValue(league, player, strength, flatBase(9))
	assert.True(t, empty)
	assert.Equal(t, 0.0, ptsPerWeek)
	assert.Nil(t, contributions)
}

func TestROSPlayerValue_FinalWeekIsCurrentWeekGivesHorizonOfOne(t *testing.T) {
	league := leagueForROS(9, 9)
	player := &domain.Player{Position: domain.PositionRB}
	strength := &OpponentStrength{}

	_, contributions, empty := ROSPlayerValue(league, player, strength, flatBase(9))
	assert.False(t, empty)
	assert.Len(t, contributions, 1)
}
