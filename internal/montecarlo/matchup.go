package montecarlo

import (
	"context"
	"math/rand"
	"sort"

	"github.com/jstittsworth/ff-alpha-core/internal/domain"
	"github.com/jstittsworth/ff-alpha-core/internal/perfmodel"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat/distuv"
)

// MatchupResult is the outcome of simulating two team ratings against
// each other NumSimulations times.
type MatchupResult struct {
	WinProbA     float64
	WinProbB     float64
	TieProb      float64
	MeanMargin   float64 // mean(A) - mean(B), positive favors A
	MarginP10    float64
	MarginP50    float64
	MarginP90    float64
}

// SimulateMatchup draws NumSimulations paired scores for teamA and
// teamB, splitting the work across cfg.Workers goroutines each with
// an independently seeded RNG, and aggregates win/tie counts and the
// margin distribution.
func SimulateMatchup(ctx context.Context, teamA, teamB domain.TeamRating, cfg Config) (MatchupResult, error) {
	teamA, teamB = floorRating(teamA, cfg.varianceFloor()), floorRating(teamB, cfg.varianceFloor())
	total := cfg.simulations()
	sizes := chunkSizes(total, cfg.workers())

	margins := make([][]float64, len(sizes))
	g, gctx := errgroup.WithContext(ctx)
	for i, size := range sizes {
		i, size := i, size
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			rng := rand.New(rand.NewSource(chunkSeed(cfg.Seed, i)))
			distA := distuv.Normal{Mu: teamA.Mean, Sigma: teamA.Stdev, Src: rng}
			distB := distuv.Normal{Mu: teamB.Mean, Sigma: teamB.Stdev, Src: rng}
			chunk := make([]float64, size)
			for j := 0; j < size; j++ {
				chunk[j] = distA.Rand() - distB.Rand()
			}
			margins[i] = chunk
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return MatchupResult{}, err
	}
	return aggregateMargins(margins, total), nil
}

// TeamRoster is one team's starting lineup for mixture-sampled
// matchup simulation: each starter's trained C1 state, so a team's
// total score is drawn as the sum of independent per-starter mixture
// draws instead of the Gaussian summary domain.TeamRating
// approximates it with.
type TeamRoster struct {
	Starters []*perfmodel.PlayerState
}

func (r TeamRoster) score(rng *rand.Rand) float64 {
	var total float64
	for _, starter := range r.Starters {
		total += starter.PredictOne(rng, true)
	}
	return total
}

// SimulateMatchupFromRosters draws NumSimulations paired scores for
// rosterA and rosterB by summing each starter's individual C1
// state-biased mixture draw (PlayerState.Predict) rather than
// sampling each team's total from a single pre-aggregated Gaussian,
// so the skew C1's per-player mixtures carry actually flows through to
// the matchup margin distribution. Starters are drawn independently
// of one another.
func SimulateMatchupFromRosters(ctx context.Context, rosterA, rosterB TeamRoster, cfg Config) (MatchupResult, error) {
	total := cfg.simulations()
	sizes := chunkSizes(total, cfg.workers())

	margins := make([][]float64, len(sizes))
	g, gctx := errgroup.WithContext(ctx)
	for i, size := range sizes {
		i, size := i, size
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			rng := rand.New(rand.NewSource(chunkSeed(cfg.Seed, i)))
			chunk := make([]float64, size)
			for j := 0; j < size; j++ {
				chunk[j] = rosterA.score(rng) - rosterB.score(rng)
			}
			margins[i] = chunk
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return MatchupResult{}, err
	}
	return aggregateMargins(margins, total), nil
}

// aggregateMargins flattens per-chunk margin draws into the win/tie
// probabilities and margin distribution both matchup simulators
// report.
func aggregateMargins(margins [][]float64, total int) MatchupResult {
	all := make([]float64, 0, total)
	for _, chunk := range margins {
		all = append(all, chunk...)
	}
	sort.Float64s(all)

	var wins, losses, ties int
	sum := 0.0
	for _, m := range all {
		sum += m
		switch {
		case m > 0:
			wins++
		case m < 0:
			losses++
		default:
			ties++
		}
	}
	n := float64(len(all))

	return MatchupResult{
		WinProbA:   float64(wins) / n,
		WinProbB:   float64(losses) / n,
		TieProb:    float64(ties) / n,
		MeanMargin: sum / n,
		MarginP10:  percentile(all, 0.10),
		MarginP50:  percentile(all, 0.50),
		MarginP90:  percentile(all, 0.90),
	}
}

// percentile expects a sorted slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(p * float64(len(sorted)-1))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
