package valuation

import (
	"sort"

	"github.com/jstittsworth/ff-alpha-core/internal/domain"
)

// ScarcityWeight is the multiplicative starter-value adjustment
// applied per position, reflecting how replaceable that slot is.
var ScarcityWeight = map[domain.Position]float64{
	domain.PositionQB:  1.2,
	domain.PositionTE:  1.2,
	domain.PositionRB:  1.1,
	domain.PositionWR:  1.1,
	domain.PositionK:   0.6,
	domain.PositionDEF: 0.6,
}

const benchWeight = 0.3

// PlayerROSValue pairs a roster player with a precomputed ROS value,
// the unit this package's greedy selection operates on.
type PlayerROSValue struct {
	Player domain.Player
	Value  float64
}

func organizeByPosition(players []PlayerROSValue) map[domain.Position][]PlayerROSValue {
	byPosition := make(map[domain.Position][]PlayerROSValue)
	for _, pv := range players {
		byPosition[pv.Player.Position] = append(byPosition[pv.Player.Position], pv)
	}
	for pos := range byPosition {
		sort.SliceStable(byPosition[pos], func(i, j int) bool {
			return byPosition[pos][i].Value > byPosition[pos][j].Value
		})
	}
	return byPosition
}

func flexEligible(byPosition map[domain.Position][]PlayerROSValue, used map[string]bool) []PlayerROSValue {
	var eligible []PlayerROSValue
	for _, pos := range []domain.Position{domain.PositionRB, domain.PositionWR, domain.PositionTE} {
		for _, pv := range byPosition[pos] {
			if !used[pv.Player.ID] {
				eligible = append(eligible, pv)
			}
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool { return eligible[i].Value > eligible[j].Value })
	return eligible
}

// SelectStarters fills RosterSlots greedily by the same highest-value-
// first, FLEX-spillover rule ComputeRosterValue uses, but returns the
// chosen starters themselves rather than an aggregated value — the
// building block a team-level rating sums per-starter mean/variance
// over.
func SelectStarters(slots domain.RosterSlots, values []PlayerROSValue) []PlayerROSValue {
	byPosition := organizeByPosition(values)
	used := make(map[string]bool)
	var starters []PlayerROSValue

	fillSlot := func(position domain.Position, count int) {
		pool := byPosition[position]
		filled := 0
		for _, pv := range pool {
			if filled >= count {
				break
			}
			if used[pv.Player.ID] {
				continue
			}
			used[pv.Player.ID] = true
			starters = append(starters, pv)
			filled++
		}
	}

	for _, position := range []domain.Position{domain.PositionQB, domain.PositionRB, domain.PositionWR, domain.PositionTE, domain.PositionK, domain.PositionDEF} {
		if count, ok := slots[string(position)]; ok {
			fillSlot(position, count)
		}
	}

	if flexCount, ok := slots["FLEX"]; ok && flexCount > 0 {
		eligible := flexEligible(byPosition, used)
		filled := 0
		for _, pv := range eligible {
			if filled >= flexCount {
				break
			}
			used[pv.Player.ID] = true
			starters = append(starters, pv)
			filled++
		}
	}

	return starters
}

// RosterValue is C5's aggregate over a team's optimal starting lineup
// (selected greedily by position slot counts, scarcity-weighted) plus
// a discounted contribution from bench players.
type RosterValue struct {
	StarterValue float64
	BenchValue   float64
	Total        float64
	SlotGaps     []string // roster slots left unfilled due to a position shortage
}

// ComputeRosterValue fills RosterSlots greedily, highest ROS value
// first within each position, spills remainder into FLEX when
// RosterSlots contains one, and folds every unused roster player in
// at benchWeight. Scarcity weights are applied multiplicatively to
// starter (not bench) values.
func ComputeRosterValue(slots domain.RosterSlots, values []PlayerROSValue) RosterValue {
	byPosition := organizeByPosition(values)
	used := make(map[string]bool)
	var result RosterValue

	fillSlot := func(position domain.Position, count int) {
		pool := byPosition[position]
		filled := 0
		for _, pv := range pool {
			if filled >= count {
				break
			}
			if used[pv.Player.ID] {
				continue
			}
			used[pv.Player.ID] = true
			weight := ScarcityWeight[position]
			if weight == 0 {
				weight = 1.0
			}
			result.StarterValue += pv.Value * weight
			filled++
		}
		if filled < count {
			result.SlotGaps = append(result.SlotGaps, string(position))
		}
	}

	for _, position := range []domain.Position{domain.PositionQB, domain.PositionRB, domain.PositionWR, domain.PositionTE, domain.PositionK, domain.PositionDEF} {
		if count, ok := slots[string(position)]; ok {
			fillSlot(position, count)
		}
	}

	if flexCount, ok := slots["FLEX"]; ok && flexCount > 0 {
		eligible := flexEligible(byPosition, used)
		filled := 0
		for _, pv := range eligible {
			if filled >= flexCount {
				break
			}
			used[pv.Player.ID] = true
			weight := ScarcityWeight[pv.Player.Position]
			if weight == 0 {
				weight = 1.0
			}
			result.StarterValue += pv.Value * weight
			filled++
		}
		if filled < flexCount {
			result.SlotGaps = append(result.SlotGaps, "FLEX")
		}
	}

	for _, pv := range values {
		if !used[pv.Player.ID] {
			result.BenchValue += pv.Value * benchWeight
		}
	}

	result.Total = result.StarterValue + result.BenchValue
	return result
}
