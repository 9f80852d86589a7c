package decisions

import (
	"math"
	"sort"

	"github.com/jstittsworth/ff-alpha-core/internal/domain"
	"github.com/jstittsworth/ff-alpha-core/internal/valuation"
)

// FreeAgentCandidate is one ranked waiver-wire recommendation.
type FreeAgentCandidate struct {
	Player                domain.Player
	DeltaROSPointsPerWeek float64
	RecommendedDrop       *domain.Player
	SeasonAvgComparison   float64
	OwnershipPercent      float64
	Priority              string
}

// FreeAgentConfig is the analysis-section tunable surface for C7's
// free-agent ranking.
type FreeAgentConfig struct {
	TopN           int
	PositionFilter *domain.Position
	ExcludeInjured bool
	UseROS         bool
}

func valueFunc(league *domain.LeagueContext, strength *valuation.OpponentStrength, base valuation.BaseValueFunc, useROS bool) func(domain.Player) float64 {
	return func(p domain.Player) float64 {
		if useROS {
			v, _, _ := valuation.ROSPlayerValue(league, &p, strength, base)
			return v
		}
		return seasonAverage(&p)
	}
}

func seasonAverage(p *domain.Player) float64 {
	if len(p.ScoringHistory) == 0 {
		return 0
	}
	sum := 0.0
	for _, line := range p.ScoringHistory {
		sum += line.Points
	}
	return sum / float64(len(p.ScoringHistory))
}

func priorityLabel(delta float64) string {
	switch {
	case delta >= 3:
		return "HIGH"
	case delta >= 1:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// weakestAtPosition returns the roster player at position with the
// lowest value, the natural drop candidate for an incoming free agent
// at the same position.
func weakestAtPosition(team *domain.Team, position domain.Position, valueOf func(domain.Player) float64) *domain.Player {
	var weakest *domain.Player
	weakestValue := math.Inf(1)
	for i := range team.Roster {
		p := team.Roster[i]
		if p.Position != position {
			continue
		}
		if v := valueOf(p); v < weakestValue {
			weakestValue = v
			weakest = &team.Roster[i]
		}
	}
	return weakest
}

// candidateRoster returns team's roster with drop removed (if any) and
// candidate appended, the lineup RecommendFreeAgents recomputes
// optimal-starter value for to score a waiver pickup.
func candidateRoster(roster []domain.Player, drop *domain.Player, candidate domain.Player) []domain.Player {
	next := make([]domain.Player, 0, len(roster)+1)
	for _, p := range roster {
		if drop != nil && p.ID == drop.ID {
			continue
		}
		next = append(next, p)
	}
	return append(next, candidate)
}

// RecommendFreeAgents filters the free-agent pool to the healthy
// whitelist {ACTIVE, NORMAL, "", null} when ExcludeInjured is set, and
// scores each remaining candidate by the lineup-level ROS value swing
// of inserting it in place of the weakest same-position roster player
// — never a raw per-player value diff, since a bench-only gain at a
// deep position is worth less than the same raw value at a starved one.
func RecommendFreeAgents(league *domain.LeagueContext, team *domain.Team, freeAgents []domain.Player, strength *valuation.OpponentStrength, base valuation.BaseValueFunc, cfg FreeAgentConfig) []FreeAgentCandidate {
	valueOf := valueFunc(league, strength, base, cfg.UseROS)
	baseline := rosterValueFor(team.Roster, league.RosterSlots, valueOf)

	var pool []domain.Player
	for _, fa := range freeAgents {
		if cfg.ExcludeInjured && !fa.InjuryStatus.IsHealthyForWaiver() {
			continue
		}
		if cfg.PositionFilter != nil && fa.Position != *cfg.PositionFilter {
			continue
		}
		pool = append(pool, fa)
	}

	candidates := make([]FreeAgentCandidate, 0, len(pool))
	for _, fa := range pool {
		drop := weakestAtPosition(team, fa.Position, valueOf)
		withCandidate := rosterValueFor(candidateRoster(team.Roster, drop, fa), league.RosterSlots, valueOf)
		delta := withCandidate.Total - baseline.Total

		seasonDelta := seasonAverage(&fa)
		if drop != nil {
			seasonDelta -= seasonAverage(drop)
		}

		candidates = append(candidates, FreeAgentCandidate{
			Player:                fa,
			DeltaROSPointsPerWeek: delta,
			RecommendedDrop:       drop,
			SeasonAvgComparison:   seasonDelta,
			OwnershipPercent:      fa.PercentStarted,
			Priority:              priorityLabel(delta),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].DeltaROSPointsPerWeek > candidates[j].DeltaROSPointsPerWeek
	})
	if cfg.TopN > 0 && len(candidates) > cfg.TopN {
		candidates = candidates[:cfg.TopN]
	}
	return candidates
}
