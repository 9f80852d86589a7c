package perfmodel

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/jstittsworth/ff-alpha-core/internal/domain"
	"github.com/jstittsworth/ff-alpha-core/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func playerWithWeeks(points ...float64) *domain.Player {
	history := make(map[int]domain.WeeklyStatLine, len(points))
	for i, p := range points {
		history[i+1] = domain.WeeklyStatLine{Points: p}
	}
	return &domain.Player{
		ID:             "p1",
		Position:       domain.PositionRB,
		ScoringHistory: history,
	}
}

func TestTrain_InsufficientData(t *testing.T) {
	p := playerWithWeeks(10, 12, 8, 9)
	_, err := Train(p, 2024, 4)
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrInsufficientData)
}

func TestTrain_ThreeComponentsSumToOne(t *testing.T) {
	cases := []struct {
		name   string
		points []float64
	}{
		{"steady scorer", []float64{12, 13, 11, 14, 12, 13, 12}},
		{"boom/bust", []float64{2, 28, 4, 30, 3, 26, 5, 29}},
		{"single value repeated", []float64{10, 10, 10, 10, 10, 10}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := playerWithWeeks(tc.points...)
			state, err := Train(p, 2024, len(tc.points))
			require.NoError(t, err)
			assert.Len(t, state.Components, 3)

			sum := 0.0
			for _, c := range state.Components {
				sum += c.Weight
				assert.GreaterOrEqual(t, c.Variance, 0.0)
			}
			assert.InDelta(t, 1.0, sum, 1e-6)
			assert.LessOrEqual(t, state.Components[0].Mean, state.Components[1].Mean)
			assert.LessOrEqual(t, state.Components[1].Mean, state.Components[2].Mean)
		})
	}
}

func TestTrain_DeterministicAcrossRuns(t *testing.T) {
	p := playerWithWeeks(9, 22, 11, 24, 10, 20, 12)
	a, err := Train(p, 2024, 7)
	require.NoError(t, err)
	b, err := Train(p, 2024, 7)
	require.NoError(t, err)
	assert.Equal(t, a.Components, b.Components)
}

func TestPredict_NeverNegative(t *testing.T) {
	p := playerWithWeeks(1, 0, 2, 1, 0, 1)
	state, err := Train(p, 2024, 6)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(42))
	samples := state.Predict(rng, 5000, true)
	require.Len(t, samples, 5000)
	for _, s := range samples {
		assert.GreaterOrEqual(t, s, 0.0)
		assert.False(t, math.IsNaN(s))
	}
}

func TestBulkTrain_PerPlayerFailureIsolated(t *testing.T) {
	good := playerWithWeeks(10, 12, 11, 13, 12)
	good.ID = "good"
	bad := playerWithWeeks(10, 12)
	bad.ID = "bad"

	results := BulkTrain(context.Background(), []domain.Player{*good, *bad}, 2024, 5, 2)
	require.Len(t, results, 2)

	var goodResult, badResult *BulkTrainResult
	for i := range results {
		switch results[i].PlayerID {
		case "good":
			goodResult = &results[i]
		case "bad":
			badResult = &results[i]
		}
	}
	require.NotNil(t, goodResult)
	require.NotNil(t, badResult)
	assert.NoError(t, goodResult.Err)
	assert.NotNil(t, goodResult.State)
	assert.Error(t, badResult.Err)
	assert.Nil(t, badResult.State)
}

func TestFallbackState_UsesProvidedMeanAndFloorStdev(t *testing.T) {
	state := FallbackState("rookie", 2024, 9.5, 1.0)
	assert.Equal(t, 9.5, state.SeasonMean)
	assert.Equal(t, 3.0, state.SeasonStdev)
	assert.Equal(t, StateNormal, state.CurrentState)
}
