package decisions

import (
	"testing"

	"github.com/jstittsworth/ff-alpha-core/internal/domain"
	"github.com/jstittsworth/ff-alpha-core/internal/valuation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freeAgentLeague() *domain.LeagueContext {
	return &domain.LeagueContext{CurrentWeek: 10, RegSeasonFinalWeek: 14, RosterSlots: domain.RosterSlots{"WR": 1}}
}

func flatBase(pts float64) valuation.BaseValueFunc {
	return func(*domain.Player, int) float64 { return pts }
}

// baseFor returns per-player values keyed by ID, falling back
// otherwise, the discriminating BaseValueFunc a lineup-delta test
// needs since flatBase makes every candidate and roster player equal.
func baseFor(values map[string]float64, fallback float64) valuation.BaseValueFunc {
	return func(p *domain.Player, week int) float64 {
		if v, ok := values[p.ID]; ok {
			return v
		}
		return fallback
	}
}

func TestRecommendFreeAgents_InjuryWhitelistKeepsOnlyHealthy(t *testing.T) {
	league := freeAgentLeague()
	team := &domain.Team{Roster: []domain.Player{
		{ID: "bench_wr", Position: domain.PositionWR, ScoringHistory: map[int]domain.WeeklyStatLine{1: {Points: 5}}},
	}}
	freeAgents := []domain.Player{
		{ID: "active", Position: domain.PositionWR, InjuryStatus: domain.InjuryActive},
		{ID: "normal", Position: domain.PositionWR, InjuryStatus: domain.InjuryNormal},
		{ID: "out", Position: domain.PositionWR, InjuryStatus: domain.InjuryOut},
		{ID: "questionable", Position: domain.PositionWR, InjuryStatus: domain.InjuryQuestionable},
		{ID: "ir", Position: domain.PositionWR, InjuryStatus: domain.InjuryReserve},
		{ID: "none", Position: domain.PositionWR, InjuryStatus: domain.InjuryNone},
	}
	strength := &valuation.OpponentStrength{}

	candidates := RecommendFreeAgents(league, team, freeAgents, strength, flatBase(15), FreeAgentConfig{
		TopN: 10, ExcludeInjured: true, UseROS: true,
	})

	require.Len(t, candidates, 3)
	ids := map[string]bool{}
	for _, c := range candidates {
		ids[c.Player.ID] = true
	}
	assert.True(t, ids["active"])
	assert.True(t, ids["normal"])
	assert.True(t, ids["none"])
}

func TestRecommendFreeAgents_RanksByDeltaDescending(t *testing.T) {
	league := freeAgentLeague()
	team := &domain.Team{Roster: []domain.Player{
		{ID: "weak_wr", Position: domain.PositionWR, ScoringHistory: map[int]domain.WeeklyStatLine{1: {Points: 2}}},
	}}
	freeAgents := []domain.Player{
		{ID: "big_upgrade", Position: domain.PositionWR, InjuryStatus: domain.InjuryActive},
	}
	strength := &valuation.OpponentStrength{}
	base := baseFor(map[string]float64{"weak_wr": 2, "big_upgrade": 20}, 0)

	candidates := RecommendFreeAgents(league, team, freeAgents, strength, base, FreeAgentConfig{
		TopN: 10, ExcludeInjured: true, UseROS: true,
	})

	require.Len(t, candidates, 1)
	assert.Equal(t, "HIGH", candidates[0].Priority)
	require.NotNil(t, candidates[0].RecommendedDrop)
	assert.Equal(t, "weak_wr", candidates[0].RecommendedDrop.ID)
	// Delta is the lineup-level ROS value swing (scarcity-weighted),
	// not the raw (20-2) per-player difference.
	assert.InDelta(t, (20.0-2.0)*valuation.ScarcityWeight[domain.PositionWR], candidates[0].DeltaROSPointsPerWeek, 1e-9)
}

// TestRecommendFreeAgents_BenchOnlyCandidateScoresBenchWeightNotRawDiff
// covers the case C7 must get right: when the candidate would not
// crack the starting lineup (team already starts a better player at
// the position), its score reflects the discounted bench-slot swing,
// never the full raw per-player value difference.
func TestRecommendFreeAgents_BenchOnlyCandidateScoresBenchWeightNotRawDiff(t *testing.T) {
	league := &domain.LeagueContext{CurrentWeek: 10, RegSeasonFinalWeek: 14, RosterSlots: domain.RosterSlots{"WR": 1}}
	team := &domain.Team{Roster: []domain.Player{
		{ID: "starter_wr", Position: domain.PositionWR},
		{ID: "bench_wr", Position: domain.PositionWR},
	}}
	freeAgents := []domain.Player{
		{ID: "modest_upgrade", Position: domain.PositionWR, InjuryStatus: domain.InjuryActive},
	}
	strength := &valuation.OpponentStrength{}
	base := baseFor(map[string]float64{"starter_wr": 20, "bench_wr": 5, "modest_upgrade": 10}, 0)

	candidates := RecommendFreeAgents(league, team, freeAgents, strength, base, FreeAgentConfig{
		TopN: 10, ExcludeInjured: true, UseROS: true,
	})

	require.Len(t, candidates, 1)
	require.NotNil(t, candidates[0].RecommendedDrop)
	assert.Equal(t, "bench_wr", candidates[0].RecommendedDrop.ID)
	// starter_wr still fills the only WR slot either way, so the delta
	// is only the bench-weighted swing (10-5)*benchWeight, not the raw
	// (10-5) per-player diff and nowhere near the candidate's full
	// 10-point value.
	assert.InDelta(t, (10.0-5.0)*0.3, candidates[0].DeltaROSPointsPerWeek, 1e-9)
}
