package alpha

import (
	"testing"

	"github.com/jstittsworth/ff-alpha-core/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestBlend_ZeroObservedWeeksShrinksRecentFormFullyToBaseline(t *testing.T) {
	cfg := DefaultBlendConfig()
	adj := domain.AlphaAdjustment{MatchupMultiplier: 1.0}
	// With zero observed weeks, shrink = k/(k+0) = 1, so the shrunk
	// recent-form term collapses to baseline regardless of alpha_blend
	// or the raw recent-form mean.
	proj := Blend(cfg, "p1", domain.PositionWR, 10.0, 15.0, 3.0, 0, 0, adj)
	assert.InDelta(t, 10.0, proj.BlendedMean, 1e-9)
}

func TestBlend_ZeroShrinkageKUsesRecentFormDirectly(t *testing.T) {
	cfg := DefaultBlendConfig()
	cfg.ShrinkageK = 0
	cfg.AlphaBlend = 1.0
	adj := domain.AlphaAdjustment{MatchupMultiplier: 1.0}
	// shrinkage_k == 0 means no shrinkage toward baseline at any
	// observed-week count, and alpha_blend == 1 trusts recent form
	// fully, so blended_mean collapses to recent_form_mean + delta.
	proj := Blend(cfg, "p1", domain.PositionWR, 10.0, 15.0, 3.0, 1, 0, adj)
	assert.InDelta(t, 15.0, proj.BlendedMean, 1e-9)
}

func TestBlend_ZeroAlphaUsesBaselineOnly(t *testing.T) {
	cfg := DefaultBlendConfig()
	cfg.AlphaBlend = 0
	adj := domain.AlphaAdjustment{MatchupMultiplier: 1.0, DeltaMeanPoints: 5.0}
	proj := Blend(cfg, "p1", domain.PositionWR, 10.0, 20.0, 3.0, 10, 0, adj)
	assert.InDelta(t, 10.0, proj.BlendedMean, 1e-9)
}

func TestBlend_DefaultAlphaWeightsBaselineAtSixtyPercent(t *testing.T) {
	cfg := DefaultBlendConfig() // alpha_blend = 0.4, shrinkage_k = 3.0
	adj := domain.AlphaAdjustment{MatchupMultiplier: 1.0}
	observedWeeks := 6
	shrink := cfg.ShrinkageK / (cfg.ShrinkageK + float64(observedWeeks))
	shrunkRecentForm := 10.0*shrink + 20.0*(1-shrink)
	want := (1-cfg.AlphaBlend)*10.0 + cfg.AlphaBlend*shrunkRecentForm
	proj := Blend(cfg, "p1", domain.PositionWR, 10.0, 20.0, 3.0, observedWeeks, 0, adj)
	assert.InDelta(t, want, proj.BlendedMean, 1e-9)
}

func TestBlend_UncertaintyFloorsAtPositionMinimum(t *testing.T) {
	cfg := DefaultBlendConfig()
	adj := domain.AlphaAdjustment{MatchupMultiplier: 1.0}
	proj := Blend(cfg, "p1", domain.PositionTE, 8.0, 8.0, 0.1, 6, 0, adj)
	assert.Equal(t, cfg.PositionStdevFloor[domain.PositionTE], proj.Uncertainty)
}

func TestBlend_MatchupMultiplierAppliedAfterAlphaBlend(t *testing.T) {
	cfg := DefaultBlendConfig()
	adj := domain.AlphaAdjustment{MatchupMultiplier: 1.1, DeltaMeanPoints: 2.0}
	// baseline == recentFormMean so shrinkage is a no-op; the alpha
	// blend only introduces the delta term.
	shrunk := (1-cfg.AlphaBlend)*10.0 + cfg.AlphaBlend*(10.0+2.0)
	proj := Blend(cfg, "p1", domain.PositionRB, 10.0, 10.0, 3.0, 6, 0, adj)
	assert.InDelta(t, shrunk*1.1, proj.BlendedMean, 1e-9)
}

func TestBlend_InjuryPenaltySubtractedLast(t *testing.T) {
	cfg := DefaultBlendConfig()
	adj := domain.AlphaAdjustment{MatchupMultiplier: 1.1, DeltaMeanPoints: 2.0}
	shrunk := (1-cfg.AlphaBlend)*10.0 + cfg.AlphaBlend*(10.0+2.0)
	proj := Blend(cfg, "p1", domain.PositionRB, 10.0, 10.0, 3.0, 6, 5.0, adj)
	assert.InDelta(t, shrunk*1.1-5.0, proj.BlendedMean, 1e-9)
}

func TestWeightedConfidence_IgnoresZeroWeightContributions(t *testing.T) {
	contributions := []domain.SignalContribution{
		{Clipped: 1.0, Weight: 1.0, Confidence: 0.9},
		{Weight: 0, Confidence: 0.0},
	}
	assert.InDelta(t, 0.9, weightedConfidence(contributions), 1e-9)
}

func TestWeightedConfidence_EmptyContributionsIsZero(t *testing.T) {
	assert.Equal(t, 0.0, weightedConfidence(nil))
}
