package alpha

import (
	"math"

	"github.com/jstittsworth/ff-alpha-core/internal/domain"
)

// BlendConfig tunes C4's fusion of a baseline projection with a
// performance-model draw and a C3 alpha adjustment.
type BlendConfig struct {
	// AlphaBlend is alpha_blend (α) ∈ [0,1]: the weight given to
	// (shrunk recent form + alpha delta) versus the ESPN baseline.
	AlphaBlend float64
	// ShrinkageK is shrinkage_k: recent-form mean is shrunk toward
	// baseline by k/(k+observed_weeks), so a player with few observed
	// weeks leans on baseline even where AlphaBlend would otherwise
	// weight recent form heavily.
	ShrinkageK float64
	// PositionStdevFloor is the minimum uncertainty allowed per
	// position, so low-sample players never collapse to a point mass.
	PositionStdevFloor map[domain.Position]float64
}

// DefaultBlendConfig mirrors the floors used across perfmodel's
// fallback path and the spec's default alpha_blend/shrinkage_k.
func DefaultBlendConfig() BlendConfig {
	return BlendConfig{
		AlphaBlend: 0.4,
		ShrinkageK: 3.0,
		PositionStdevFloor: map[domain.Position]float64{
			domain.PositionQB:  4.5,
			domain.PositionRB:  4.0,
			domain.PositionWR:  4.0,
			domain.PositionTE:  3.0,
			domain.PositionK:   2.5,
			domain.PositionDEF: 3.0,
		},
	}
}

// shrinkageFactor is k/(k+observed_weeks): the weight placed on
// baseline (1 - this factor is the weight placed on the observed
// recent-form mean) when shrinking recent form toward baseline.
func shrinkageFactor(observedWeeks int, shrinkageK float64) float64 {
	if shrinkageK <= 0 {
		return 0
	}
	return shrinkageK / (shrinkageK + float64(observedWeeks))
}

// Blend fuses a baseline projection, a recent-form mean (from C1),
// observed-week count and a C3 alpha adjustment into a final
// PlayerProjection, per blended_mean = (1-α)·baseline +
// α·(recent_form_mean + alpha_delta). Order of application:
// shrink recent form toward baseline, alpha-blend against baseline,
// apply matchup multiplier, subtract injury penalty, then compose
// uncertainty.
func Blend(cfg BlendConfig, playerID string, position domain.Position, baseline, recentFormMean, baseUncertainty float64, observedWeeks int, injuryPenalty float64, adj domain.AlphaAdjustment) domain.PlayerProjection {
	shrink := shrinkageFactor(observedWeeks, cfg.ShrinkageK)
	shrunkRecentForm := baseline*shrink + recentFormMean*(1-shrink)

	alpha := cfg.AlphaBlend
	blendedMean := (1-alpha)*baseline + alpha*(shrunkRecentForm+adj.DeltaMeanPoints)
	blendedMean *= adj.MatchupMultiplier
	blendedMean -= injuryPenalty

	floor := cfg.PositionStdevFloor[position]
	uncertainty := math.Sqrt(baseUncertainty*baseUncertainty + adj.DeltaStdevPoints*adj.DeltaStdevPoints)
	if uncertainty < floor {
		uncertainty = floor
	}

	confidence := weightedConfidence(adj.Contributions)

	return domain.PlayerProjection{
		PlayerID:      playerID,
		Position:      position,
		Baseline:      baseline,
		BlendedMean:   blendedMean,
		Uncertainty:   uncertainty,
		Confidence:    confidence,
		Contributions: adj.Contributions,
		Warnings:      adj.Warnings,
	}
}

// weightedConfidence is the mean of each contribution's confidence,
// weighted by the absolute clipped contribution |clipped·weight| and
// rescaled to [0, 1]. Zero-weight contributions (feed was unavailable)
// do not drag the average down since they carry no vote.
func weightedConfidence(contributions []domain.SignalContribution) float64 {
	var weightSum, confSum float64
	for _, c := range contributions {
		w := math.Abs(c.Clipped * c.Weight)
		weightSum += w
		confSum += w * c.Confidence
	}
	if weightSum == 0 {
		return 0
	}
	conf := confSum / weightSum
	if conf < 0 {
		return 0
	}
	if conf > 1 {
		return 1
	}
	return conf
}
