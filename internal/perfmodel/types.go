// Package perfmodel trains and serves the per-player three-component
// Gaussian mixture performance model (C1): fitting by EM, current-state
// detection, state-biased sampling, and a disk-backed cache keyed by
// (player, season).
package perfmodel

import "time"

// StateLabel names one of the three mixture components, ordered by mean.
type StateLabel string

const (
	StateCold   StateLabel = "cold"
	StateNormal StateLabel = "normal"
	StateHot    StateLabel = "hot"
)

// SchemaVersion is bumped whenever the on-disk artifact layout changes
// incompatibly; CacheStore rejects artifacts written by a different
// version and retrains instead of attempting to decode them.
const SchemaVersion = 1

// MixtureComponent is one (weight, mean, variance) component of the
// three-state Gaussian mixture.
type MixtureComponent struct {
	Weight   float64
	Mean     float64
	Variance float64
}

// PlayerState is the model state owned exclusively by this package;
// every field is written only by Train/BulkTrain.
type PlayerState struct {
	SchemaVersion  int
	PlayerID       string
	Year           int
	Components     [3]MixtureComponent // indices: cold, normal, hot
	CurrentState   StateLabel
	SeasonMean     float64
	SeasonStdev    float64
	RecentFormMean float64
	ObservedWeeks  int
	TrainedAt      time.Time
}

func (ps *PlayerState) componentByLabel(label StateLabel) MixtureComponent {
	switch label {
	case StateCold:
		return ps.Components[0]
	case StateHot:
		return ps.Components[2]
	default:
		return ps.Components[1]
	}
}
