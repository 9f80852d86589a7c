package perfmodel

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/jstittsworth/ff-alpha-core/internal/domain"
	"github.com/jstittsworth/ff-alpha-core/pkg/utils"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	minValidWeeks  = 5
	numComponents  = 3
	maxEMIters     = 200
	emTolerance    = 1e-6
	minComponentVar = 1e-3
)

// Trainer fits and serves PlayerState models.
type Trainer struct {
	Store   *CacheStore
	clock   func() time.Time
}

// NewTrainer constructs a Trainer backed by the given cache store.
func NewTrainer(store *CacheStore) *Trainer {
	return &Trainer{Store: store, clock: time.Now}
}

// deterministicSeed derives a reproducible EM restart seed from
// (player_id, year) so repeated bulk training on the same inputs
// produces the same mixture, per the EM-non-determinism design note.
func deterministicSeed(playerID string, year int) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%d", playerID, year)
	return int64(h.Sum64())
}

// Train fits a 3-component Gaussian mixture for one player/year cut at
// the given cutWeek (inclusive). Fewer than 5 valid weeks is reported
// as ErrInsufficientData; callers substitute a fallback mean/stdev.
func Train(player *domain.Player, year, cutWeek int) (*PlayerState, error) {
	weeks := player.SortedWeeks()
	points := make([]float64, 0, len(weeks))
	for _, w := range weeks {
		if w > cutWeek {
			continue
		}
		points = append(points, player.ScoringHistory[w].Points)
	}
	if len(points) < minValidWeeks {
		return nil, fmt.Errorf("player %s has %d valid weeks: %w", player.ID, len(points), utils.ErrInsufficientData)
	}

	seed := deterministicSeed(player.ID, year)
	components, err := fitGaussianMixture(points, seed)
	if err != nil {
		// NumericFailure falls back to a single-Gaussian fit per the
		// error handling design (all three labels collapse to the
		// same component).
		mean, variance := sampleMeanVariance(points)
		single := MixtureComponent{Weight: 1.0, Mean: mean, Variance: variance}
		components = [3]MixtureComponent{single, single, single}
	}

	seasonMean, seasonVariance := sampleMeanVariance(points)
	recent := player.RecentWeeks(3, cutWeek)
	recentMean := meanOf(statLinePoints(recent))

	state := &PlayerState{
		SchemaVersion:  SchemaVersion,
		PlayerID:       player.ID,
		Year:           year,
		Components:     components,
		SeasonMean:     seasonMean,
		SeasonStdev:    math.Sqrt(seasonVariance),
		RecentFormMean: recentMean,
		ObservedWeeks:  len(points),
		TrainedAt:      time.Now().UTC(),
	}
	state.CurrentState = detectState(state, recent)
	return state, nil
}

// BulkTrainResult pairs a player id with its trained state or error.
type BulkTrainResult struct {
	PlayerID string
	State    *PlayerState
	Err      error
}

// BulkTrain trains every player concurrently with a bounded worker
// pool. Failures for one player never abort the others; each result
// carries its own error.
func BulkTrain(ctx context.Context, players []domain.Player, year, cutWeek, workers int) []BulkTrainResult {
	if workers < 1 {
		workers = 1
	}
	jobs := make(chan int, len(players))
	results := make([]BulkTrainResult, len(players))
	done := make(chan struct{}, workers)

	for w := 0; w < workers; w++ {
		go func() {
			for i := range jobs {
				select {
				case <-ctx.Done():
					results[i] = BulkTrainResult{PlayerID: players[i].ID, Err: ctx.Err()}
					continue
				default:
				}
				state, err := Train(&players[i], year, cutWeek)
				results[i] = BulkTrainResult{PlayerID: players[i].ID, State: state, Err: err}
			}
			done <- struct{}{}
		}()
	}
	for i := range players {
		jobs <- i
	}
	close(jobs)
	for w := 0; w < workers; w++ {
		<-done
	}
	return results
}

// fitGaussianMixture fits a 3-component 1D Gaussian mixture by EM,
// seeded deterministically for reproducible restarts, then sorts
// components by mean so labels {cold, normal, hot} are assignable.
func fitGaussianMixture(points []float64, seed int64) ([3]MixtureComponent, error) {
	var result [3]MixtureComponent
	rng := rand.New(rand.NewSource(seed))

	overallMean, overallVar := sampleMeanVariance(points)
	overallStdev := math.Sqrt(overallVar)
	if overallStdev == 0 {
		overallStdev = 1.0
	}

	weights := [numComponents]float64{1.0 / 3, 1.0 / 3, 1.0 / 3}
	means := [numComponents]float64{}
	variances := [numComponents]float64{}
	for k := 0; k < numComponents; k++ {
		means[k] = overallMean + overallStdev*(rng.Float64()*2-1)
		variances[k] = overallVar
		if variances[k] < minComponentVar {
			variances[k] = minComponentVar
		}
	}

	prevLogLik := math.Inf(-1)
	resp := make([][numComponents]float64, len(points))

	for iter := 0; iter < maxEMIters; iter++ {
		// E-step
		logLik := 0.0
		for i, x := range points {
			var densities [numComponents]float64
			sum := 0.0
			for k := 0; k < numComponents; k++ {
				dist := distuv.Normal{Mu: means[k], Sigma: math.Sqrt(variances[k])}
				densities[k] = weights[k] * dist.Prob(x)
				sum += densities[k]
			}
			if sum <= 0 {
				sum = 1e-12
			}
			for k := 0; k < numComponents; k++ {
				resp[i][k] = densities[k] / sum
			}
			logLik += math.Log(sum)
		}

		// M-step
		for k := 0; k < numComponents; k++ {
			nk := 0.0
			for i := range points {
				nk += resp[i][k]
			}
			weights[k] = nk / float64(len(points))
			if nk < 1e-9 {
				continue
			}
			meanK := 0.0
			for i, x := range points {
				meanK += resp[i][k] * x
			}
			meanK /= nk
			varK := 0.0
			for i, x := range points {
				d := x - meanK
				varK += resp[i][k] * d * d
			}
			varK /= nk
			if varK < minComponentVar {
				varK = minComponentVar
			}
			means[k] = meanK
			variances[k] = varK
		}

		if math.Abs(logLik-prevLogLik) < emTolerance {
			break
		}
		prevLogLik = logLik
	}

	if math.IsNaN(prevLogLik) || math.IsInf(prevLogLik, 0) {
		return result, fmt.Errorf("EM did not converge: %w", utils.ErrNumericFailure)
	}

	order := []int{0, 1, 2}
	sort.Slice(order, func(i, j int) bool { return means[order[i]] < means[order[j]] })
	for rank, idx := range order {
		result[rank] = MixtureComponent{Weight: weights[idx], Mean: means[idx], Variance: variances[idx]}
	}
	return result, nil
}

func sampleMeanVariance(points []float64) (mean, variance float64) {
	if len(points) == 1 {
		return points[0], 0
	}
	mean = stat.Mean(points, nil)
	variance = stat.Variance(points, nil)
	return mean, variance
}

func meanOf(points []float64) float64 {
	if len(points) == 0 {
		return 0
	}
	return stat.Mean(points, nil)
}

func statLinePoints(lines []domain.WeeklyStatLine) []float64 {
	out := make([]float64, len(lines))
	for i, l := range lines {
		out[i] = l.Points
	}
	return out
}

// detectState picks argmax label posterior given the last up-to-3
// weeks' mean; with no observed weeks the state is "normal".
func detectState(state *PlayerState, recent []domain.WeeklyStatLine) StateLabel {
	if len(recent) == 0 {
		return StateNormal
	}
	recentMean := meanOf(statLinePoints(recent))
	labels := []StateLabel{StateCold, StateNormal, StateHot}
	best := StateNormal
	bestDensity := math.Inf(-1)
	for i, label := range labels {
		c := state.Components[i]
		sigma := math.Sqrt(c.Variance)
		if sigma == 0 {
			sigma = 1e-6
		}
		dist := distuv.Normal{Mu: c.Mean, Sigma: sigma}
		density := dist.Prob(recentMean)
		if density > bestDensity {
			bestDensity = density
			best = label
		}
	}
	return best
}
