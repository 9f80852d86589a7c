package montecarlo

import (
	"math"

	"github.com/jstittsworth/ff-alpha-core/internal/domain"
	"github.com/jstittsworth/ff-alpha-core/internal/valuation"
	"gonum.org/v1/gonum/stat"
)

// RatingsConfig tunes BuildTeamRating: whether starter means use the
// alpha-blended projection or the raw ESPN baseline, the variance
// floor, and how heavily the roster-projected rating is blended
// against the team's own observed in-season scoring.
type RatingsConfig struct {
	AlphaMode          bool
	ScoreVarianceFloor float64 // score_variance_floor; <= 0 falls back to defaultVarianceFloor
	RatingsBlend       float64 // ratings_blend in [0,1]; <= 0 disables blending
}

func (c RatingsConfig) varianceFloor() float64 {
	if c.ScoreVarianceFloor <= 0 {
		return defaultVarianceFloor
	}
	return c.ScoreVarianceFloor
}

// BuildTeamRating derives a team's Gaussian scoring rating from its
// optimal starting lineup: Mean sums each starter's projected points
// (BlendedMean when AlphaMode is set, Baseline otherwise), selected by
// the same greedy RosterSlots fill RecommendLineup and ComputeRosterValue
// use. Stdev is the square root of the summed per-starter projection
// variance, floored at ScoreVarianceFloor.
//
// When RatingsBlend is positive and observedScores (the team's
// realized weekly totals so far this season) is non-empty, the
// roster-projected rating is linearly blended with the observed
// mean/stdev. Fewer than three observed weeks damps the observed
// weight proportionally, so the roster-projected rating dominates
// until enough of the season has actually been played.
func BuildTeamRating(slots domain.RosterSlots, projections map[string]domain.PlayerProjection, observedScores []float64, cfg RatingsConfig) domain.TeamRating {
	values := make([]valuation.PlayerROSValue, 0, len(projections))
	varianceByPlayer := make(map[string]float64, len(projections))
	for playerID, proj := range projections {
		mean := proj.Baseline
		if cfg.AlphaMode {
			mean = proj.BlendedMean
		}
		values = append(values, valuation.PlayerROSValue{
			Player: domain.Player{ID: playerID, Position: proj.Position},
			Value:  mean,
		})
		varianceByPlayer[playerID] = proj.Uncertainty * proj.Uncertainty
	}

	starters := valuation.SelectStarters(slots, values)

	var mean, variance float64
	for _, s := range starters {
		mean += s.Value
		variance += varianceByPlayer[s.Player.ID]
	}
	stdev := math.Sqrt(variance)
	if stdev < cfg.varianceFloor() {
		stdev = cfg.varianceFloor()
	}
	rating := domain.TeamRating{Mean: mean, Stdev: stdev}

	if cfg.RatingsBlend <= 0 || len(observedScores) == 0 {
		return rating
	}

	var observedMean, observedStdev float64
	if len(observedScores) == 1 {
		observedMean = observedScores[0]
		observedStdev = cfg.varianceFloor()
	} else {
		var observedVariance float64
		observedMean, observedVariance = stat.MeanVariance(observedScores, nil)
		observedStdev = math.Sqrt(observedVariance)
		if observedStdev < cfg.varianceFloor() {
			observedStdev = cfg.varianceFloor()
		}
	}

	blend := cfg.RatingsBlend
	if len(observedScores) < 3 {
		blend *= float64(len(observedScores)) / 3.0
	}

	return domain.TeamRating{
		Mean:  (1-blend)*rating.Mean + blend*observedMean,
		Stdev: (1-blend)*rating.Stdev + blend*observedStdev,
	}
}
