// Package decisions implements C7: lineup recommendation, free-agent
// ranking, trade analysis with acceptance probability, and draft
// strategy comparison. Every operation here is a thin consumer of
// domain.PlayerProjection (C4) and the valuation package (C5) — no
// projection math lives in this package.
package decisions

import (
	"sort"

	"github.com/jstittsworth/ff-alpha-core/internal/domain"
)

// PlayerOption pairs a roster player with its projection for a given
// week, the unit the lineup recommender ranks within a slot.
type PlayerOption struct {
	Player     domain.Player
	Projection domain.PlayerProjection
}

// SlotRecommendation is one starting slot's verdict: the recommended
// player plus every other eligible roster player as a bench
// alternative, ordered by the same score.
type SlotRecommendation struct {
	Slot        string
	Recommended PlayerOption
	Score       float64
	Bench       []PlayerOption
	NoEligible  bool
	AllInjured  bool
}

// LineupAudit records the total baseline vs alpha-adjusted projection
// for the recommended lineup, the resulting lift, a confidence label,
// and the signals that moved the lineup the most.
type LineupAudit struct {
	TotalBaseline       float64
	TotalAlphaProjected float64
	AlphaLift           float64
	ConfidenceLevel     string
	DecisionFactors     []string
}

// LineupRecommendation is C7's full answer to "who should I start".
type LineupRecommendation struct {
	Slots []SlotRecommendation
	Audit LineupAudit
}

// LineupConfig tunes the ranking criterion. Lambda = 0 plays for
// ceiling (pure blended mean); a positive lambda penalizes uncertainty
// for floor play.
type LineupConfig struct {
	Lambda float64
}

func slotScore(p domain.PlayerProjection, lambda float64) float64 {
	return p.BlendedMean - lambda*p.Uncertainty
}

func eligibleForSlot(slot string, position domain.Position) bool {
	if slot == "FLEX" {
		switch position {
		case domain.PositionRB, domain.PositionWR, domain.PositionTE:
			return true
		default:
			return false
		}
	}
	return string(position) == slot
}

// startingPositionOrder is the fill order for single-position slots;
// FLEX is always filled last so RB/WR/TE starters get first claim on
// their own slots before spilling into FLEX eligibility.
var startingPositionOrder = []domain.Position{
	domain.PositionQB, domain.PositionRB, domain.PositionWR,
	domain.PositionTE, domain.PositionK, domain.PositionDEF,
}

// RecommendLineup fills every starting slot in domain.RosterSlots with
// the eligible, not-yet-used roster player of highest lambda-adjusted
// score. A slot is only left NoEligible when no roster player at all
// qualifies for it; a slot staffed entirely by injured/penalized
// players still gets the least-penalized one, flagged AllInjured.
func RecommendLineup(team *domain.Team, slots domain.RosterSlots, projections map[string]domain.PlayerProjection, cfg LineupConfig) LineupRecommendation {
	options := make([]PlayerOption, 0, len(team.Roster))
	for _, p := range team.Roster {
		proj, ok := projections[p.ID]
		if !ok {
			continue
		}
		options = append(options, PlayerOption{Player: p, Projection: proj})
	}

	used := make(map[string]bool)
	var slotResults []SlotRecommendation

	fillSlot := func(slotName string) {
		var pool []PlayerOption
		for _, opt := range options {
			if used[opt.Player.ID] {
				continue
			}
			if eligibleForSlot(slotName, opt.Player.Position) {
				pool = append(pool, opt)
			}
		}
		sort.SliceStable(pool, func(i, j int) bool {
			return slotScore(pool[i].Projection, cfg.Lambda) > slotScore(pool[j].Projection, cfg.Lambda)
		})

		result := SlotRecommendation{Slot: slotName}
		if len(pool) == 0 {
			result.NoEligible = true
			slotResults = append(slotResults, result)
			return
		}
		result.Recommended = pool[0]
		result.Score = slotScore(pool[0].Projection, cfg.Lambda)
		result.AllInjured = allUnhealthy(pool)
		if len(pool) > 1 {
			result.Bench = pool[1:]
		}
		used[pool[0].Player.ID] = true
		slotResults = append(slotResults, result)
	}

	for _, position := range startingPositionOrder {
		if count, ok := slots[string(position)]; ok {
			for i := 0; i < count; i++ {
				fillSlot(string(position))
			}
		}
	}
	if count, ok := slots["FLEX"]; ok {
		for i := 0; i < count; i++ {
			fillSlot("FLEX")
		}
	}

	return LineupRecommendation{Slots: slotResults, Audit: buildAudit(slotResults)}
}

func allUnhealthy(pool []PlayerOption) bool {
	if len(pool) == 0 {
		return false
	}
	for _, opt := range pool {
		if opt.Player.InjuryStatus.IsHealthyForWaiver() {
			return false
		}
	}
	return true
}

func buildAudit(slots []SlotRecommendation) LineupAudit {
	var totalBaseline, totalAlpha, confSum float64
	filled := 0
	impact := make(map[string]float64)
	var order []string

	for _, s := range slots {
		if s.NoEligible {
			continue
		}
		proj := s.Recommended.Projection
		totalBaseline += proj.Baseline
		totalAlpha += proj.BlendedMean
		confSum += proj.Confidence
		filled++
		for _, c := range proj.Contributions {
			weighted := c.Clipped * c.Weight
			if weighted < 0 {
				weighted = -weighted
			}
			if _, seen := impact[c.SignalName]; !seen {
				order = append(order, c.SignalName)
			}
			impact[c.SignalName] += weighted
		}
	}

	avgConfidence := 0.0
	if filled > 0 {
		avgConfidence = confSum / float64(filled)
	}
	level := "low"
	switch {
	case avgConfidence >= 0.75:
		level = "high"
	case avgConfidence >= 0.5:
		level = "medium"
	}

	sort.SliceStable(order, func(i, j int) bool { return impact[order[i]] > impact[order[j]] })
	if len(order) > 5 {
		order = order[:5]
	}

	return LineupAudit{
		TotalBaseline:       totalBaseline,
		TotalAlphaProjected: totalAlpha,
		AlphaLift:           totalAlpha - totalBaseline,
		ConfidenceLevel:     level,
		DecisionFactors:     order,
	}
}
