package perfmodel

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

const stateBiasProbability = 0.70

// StateOf returns the player's detected current-state label, or
// "normal" when the state cannot be determined.
func (ps *PlayerState) StateOf() StateLabel {
	if ps == nil {
		return StateNormal
	}
	return ps.CurrentState
}

// Predict draws n samples of weekly points. With stateBiased=true each
// draw comes from the current-state component with probability 0.70
// and from the full mixture (by component weight) otherwise; negative
// samples are clamped to zero. With stateBiased=false every draw comes
// from the full mixture directly. rng is caller-owned so Monte Carlo
// chunks can each hold an independent, seeded generator.
func (ps *PlayerState) Predict(rng *rand.Rand, n int, stateBiased bool) []float64 {
	samples := make([]float64, n)
	for i := 0; i < n; i++ {
		var comp MixtureComponent
		if stateBiased && rng.Float64() < stateBiasProbability {
			comp = ps.componentByLabel(ps.CurrentState)
		} else {
			comp = ps.drawMixtureComponent(rng)
		}
		dist := distuv.Normal{Mu: comp.Mean, Sigma: math.Sqrt(comp.Variance), Src: rng}
		v := dist.Rand()
		if v < 0 {
			v = 0
		}
		samples[i] = v
	}
	return samples
}

// PredictOne draws a single point estimate, used by the ROS valuator
// for a single predictive draw per (player, week).
func (ps *PlayerState) PredictOne(rng *rand.Rand, stateBiased bool) float64 {
	return ps.Predict(rng, 1, stateBiased)[0]
}

func (ps *PlayerState) drawMixtureComponent(rng *rand.Rand) MixtureComponent {
	r := rng.Float64()
	cumulative := 0.0
	for _, c := range ps.Components {
		cumulative += c.Weight
		if r <= cumulative {
			return c
		}
	}
	return ps.Components[numComponents-1]
}

// FallbackState builds the missing-state substitute used when a player
// has no trained model: a shifted normal with mean equal to the ESPN
// projected average and stdev equal to max(positionAvgStdev, 3.0),
// collapsed into all three mixture labels so Predict behaves uniformly.
func FallbackState(playerID string, year int, espnProjectedAverage, positionAvgStdev float64) *PlayerState {
	stdev := math.Max(positionAvgStdev, 3.0)
	comp := MixtureComponent{Weight: 1.0, Mean: espnProjectedAverage, Variance: stdev * stdev}
	return &PlayerState{
		SchemaVersion:  SchemaVersion,
		PlayerID:       playerID,
		Year:           year,
		Components:     [3]MixtureComponent{comp, comp, comp},
		CurrentState:   StateNormal,
		SeasonMean:     espnProjectedAverage,
		SeasonStdev:    stdev,
		RecentFormMean: espnProjectedAverage,
	}
}
