package valuation

import (
	"testing"

	"github.com/jstittsworth/ff-alpha-core/internal/domain"
	"github.com/stretchr/testify/assert"
)

func pv(id string, pos domain.Position, value float64) PlayerROSValue {
	return PlayerROSValue{Player: domain.Player{ID: id, Position: pos}, Value: value}
}

func TestComputeRosterValue_FillsStartersByPositionHighestFirst(t *testing.T) {
	slots := domain.RosterSlots{"QB": 1, "RB": 2, "WR": 2, "TE": 1, "K": 1, "DEF": 1}
	values := []PlayerROSValue{
		pv("qb1", domain.PositionQB, 20),
		pv("rb1", domain.PositionRB, 15),
		pv("rb2", domain.PositionRB, 10),
		pv("rb3", domain.PositionRB, 5),
		pv("wr1", domain.PositionWR, 14),
		pv("wr2", domain.PositionWR, 12),
		pv("te1", domain.PositionTE, 8),
		pv("k1", domain.PositionK, 7),
		pv("def1", domain.PositionDEF, 6),
	}

	result := ComputeRosterValue(slots, values)
	assert.Empty(t, result.SlotGaps)
	assert.Greater(t, result.StarterValue, 0.0)
	assert.Greater(t, result.BenchValue, 0.0) // rb3 falls to bench
}

func TestComputeRosterValue_FlexPullsBestRemainingFlexEligible(t *testing.T) {
	slots := domain.RosterSlots{"RB": 1, "WR": 1, "FLEX": 1}
	values := []PlayerROSValue{
		pv("rb1", domain.PositionRB, 10),
		pv("rb2", domain.PositionRB, 9), // should land in FLEX, not bench
		pv("wr1", domain.PositionWR, 8),
	}

	result := ComputeRosterValue(slots, values)
	assert.Empty(t, result.SlotGaps)
	assert.Equal(t, 0.0, result.BenchValue)
}

func TestComputeRosterValue_ShortagePositionFlagsSlotGap(t *testing.T) {
	slots := domain.RosterSlots{"QB": 2}
	values := []PlayerROSValue{pv("qb1", domain.PositionQB, 10)}

	result := ComputeRosterValue(slots, values)
	assert.Contains(t, result.SlotGaps, "QB")
}

func TestComputeRosterValue_ScarcityWeightMultipliesStarterValue(t *testing.T) {
	slots := domain.RosterSlots{"QB": 1}
	values := []PlayerROSValue{pv("qb1", domain.PositionQB, 10)}

	result := ComputeRosterValue(slots, values)
	assert.InDelta(t, 10*ScarcityWeight[domain.PositionQB], result.StarterValue, 1e-9)
}

func TestComputeRosterValue_BenchValuedAtDiscount(t *testing.T) {
	slots := domain.RosterSlots{"QB": 1}
	values := []PlayerROSValue{
		pv("qb1", domain.PositionQB, 10),
		pv("qb2", domain.PositionQB, 6),
	}

	result := ComputeRosterValue(slots, values)
	assert.InDelta(t, 6*benchWeight, result.BenchValue, 1e-9)
}
