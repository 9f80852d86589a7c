package decisions

import (
	"testing"

	"github.com/jstittsworth/ff-alpha-core/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func proj(id string, mean, uncertainty, confidence float64) domain.PlayerProjection {
	return domain.PlayerProjection{PlayerID: id, BlendedMean: mean, Baseline: mean * 0.9, Uncertainty: uncertainty, Confidence: confidence}
}

func TestRecommendLineup_PicksHighestScorePerSlot(t *testing.T) {
	team := &domain.Team{Roster: []domain.Player{
		{ID: "qb1", Position: domain.PositionQB, InjuryStatus: domain.InjuryActive},
		{ID: "rb1", Position: domain.PositionRB, InjuryStatus: domain.InjuryActive},
		{ID: "rb2", Position: domain.PositionRB, InjuryStatus: domain.InjuryActive},
	}}
	projections := map[string]domain.PlayerProjection{
		"qb1": proj("qb1", 20, 4, 0.8),
		"rb1": proj("rb1", 15, 4, 0.8),
		"rb2": proj("rb2", 18, 4, 0.8),
	}
	slots := domain.RosterSlots{"QB": 1, "RB": 1}

	rec := RecommendLineup(team, slots, projections, LineupConfig{Lambda: 0})
	require.Len(t, rec.Slots, 2)

	var rbSlot SlotRecommendation
	for _, s := range rec.Slots {
		if s.Slot == "RB" {
			rbSlot = s
		}
	}
	assert.Equal(t, "rb2", rbSlot.Recommended.Player.ID)
	require.Len(t, rbSlot.Bench, 1)
	assert.Equal(t, "rb1", rbSlot.Bench[0].Player.ID)
}

func TestRecommendLineup_AllInjuredStillFillsSlotAndFlags(t *testing.T) {
	team := &domain.Team{Roster: []domain.Player{
		{ID: "rb1", Position: domain.PositionRB, InjuryStatus: domain.InjuryOut},
		{ID: "rb2", Position: domain.PositionRB, InjuryStatus: domain.InjuryQuestionable},
	}}
	projections := map[string]domain.PlayerProjection{
		"rb1": proj("rb1", 6, 4, 0.5),
		"rb2": proj("rb2", 11, 4, 0.5),
	}
	slots := domain.RosterSlots{"RB": 1}

	rec := RecommendLineup(team, slots, projections, LineupConfig{Lambda: 0})
	require.Len(t, rec.Slots, 1)
	assert.False(t, rec.Slots[0].NoEligible)
	assert.True(t, rec.Slots[0].AllInjured)
	assert.Equal(t, "rb2", rec.Slots[0].Recommended.Player.ID)
}

func TestRecommendLineup_NoEligibleWhenPositionEmpty(t *testing.T) {
	team := &domain.Team{Roster: []domain.Player{
		{ID: "qb1", Position: domain.PositionQB, InjuryStatus: domain.InjuryActive},
	}}
	projections := map[string]domain.PlayerProjection{"qb1": proj("qb1", 20, 4, 0.8)}
	slots := domain.RosterSlots{"QB": 1, "DEF": 1}

	rec := RecommendLineup(team, slots, projections, LineupConfig{Lambda: 0})
	var defSlot SlotRecommendation
	for _, s := range rec.Slots {
		if s.Slot == "DEF" {
			defSlot = s
		}
	}
	assert.True(t, defSlot.NoEligible)
}

func TestRecommendLineup_FloorPlayPenalizesUncertainty(t *testing.T) {
	team := &domain.Team{Roster: []domain.Player{
		{ID: "steady", Position: domain.PositionWR, InjuryStatus: domain.InjuryActive},
		{ID: "volatile", Position: domain.PositionWR, InjuryStatus: domain.InjuryActive},
	}}
	projections := map[string]domain.PlayerProjection{
		"steady":   proj("steady", 12, 2, 0.8),
		"volatile": proj("volatile", 13, 9, 0.8),
	}
	slots := domain.RosterSlots{"WR": 1}

	ceiling := RecommendLineup(team, slots, projections, LineupConfig{Lambda: 0})
	assert.Equal(t, "volatile", ceiling.Slots[0].Recommended.Player.ID)

	floor := RecommendLineup(team, slots, projections, LineupConfig{Lambda: 1.0})
	assert.Equal(t, "steady", floor.Slots[0].Recommended.Player.ID)
}
