package montecarlo

import (
	"context"
	"math/rand"
	"sort"

	"github.com/jstittsworth/ff-alpha-core/internal/domain"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat/distuv"
)

// TeamSeasonResult is one team's projected outcome across the
// simulated remainder of a season.
type TeamSeasonResult struct {
	TeamID              string
	CurrentWins         float64
	MeanProjectedWins   float64
	PlayoffProbability  float64
}

func currentWins(team domain.Team) float64 {
	wins := 0.0
	for _, outcome := range team.Outcomes {
		switch outcome {
		case domain.OutcomeWin:
			wins++
		case domain.OutcomeTie:
			wins += 0.5
		}
	}
	return wins
}

// SimulateSeason projects each team's rest-of-season win total and
// playoff qualification probability by repeatedly drawing every
// team's score for every remaining week from its rating and replaying
// the existing schedule. Ties for the final playoff spot are broken
// by mean rating, the same tiebreak a real standings page would use
// once points-for is exhausted.
func SimulateSeason(ctx context.Context, league *domain.LeagueContext, ratings map[string]domain.TeamRating, cfg Config) ([]TeamSeasonResult, error) {
	weeks := league.ROSWeeks()
	teams := league.Teams
	total := cfg.simulations()
	sizes := chunkSizes(total, cfg.workers())

	type chunkAccum struct {
		winSum     map[string]float64
		qualifyCnt map[string]int
	}
	accums := make([]chunkAccum, len(sizes))

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
			dists := make(map[string]distuv.Normal, len(teams))
			for _, team := range teams {
				r := floorRating(ratings[team.ID], cfg.varianceFloor())
				dists[team.ID] = distuv.Normal{Mu: r.Mean, Sigma: r.Stdev, Src: rng}
			}

			acc := chunkAccum{winSum: make(map[string]float64), qualifyCnt: make(map[string]int)}
			for s := 0; s < size; s++ {
				wins := make(map[string]float64, len(teams))
				for _, team := range teams {
					wins[team.ID] = currentWins(team)
				}

				for _, week := range weeks {
					scores := make(map[string]float64, len(teams))
					for _, team := range teams {
						scores[team.ID] = dists[team.ID].Rand()
					}
					for _, team := range teams {
						opponentID, hasGame := team.Schedule[week]
						if !hasGame {
							continue
						}
						myScore, oppScore := scores[team.ID], scores[opponentID]
						switch {
						case myScore > oppScore:
							wins[team.ID]++
						case myScore == oppScore:
							wins[team.ID] += 0.5
						}
					}
				}

				for _, teamID := range qualifiers(teams, wins, ratings, league.PlayoffTeamCount) {
					acc.qualifyCnt[teamID]++
				}
				for teamID, w := range wins {
					acc.winSum[teamID] += w
				}
			}
			accums[i] = acc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	winSum := make(map[string]float64)
	qualifyCnt := make(map[string]int)
	for _, acc := range accums {
		for teamID, w := range acc.winSum {
			winSum[teamID] += w
		}
		for teamID, c := range acc.qualifyCnt {
			qualifyCnt[teamID] += c
		}
	}

	results := make([]TeamSeasonResult, 0, len(teams))
	for _, team := range teams {
		results = append(results, TeamSeasonResult{
			TeamID:             team.ID,
			CurrentWins:        currentWins(team),
			MeanProjectedWins:  winSum[team.ID] / float64(total),
			PlayoffProbability: float64(qualifyCnt[team.ID]) / float64(total),
		})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].TeamID < results[j].TeamID })
	return results, nil
}

func qualifiers(teams []domain.Team, wins map[string]float64, ratings map[string]domain.TeamRating, playoffSlots int) []string {
	ids := make([]string, 0, len(teams))
	for _, t := range teams {
		ids = append(ids, t.ID)
	}
	sort.SliceStable(ids, func(i, j int) bool {
		if wins[ids[i]] != wins[ids[j]] {
			return wins[ids[i]] > wins[ids[j]]
		}
		return ratings[ids[i]].Mean > ratings[ids[j]].Mean
	})
	if playoffSlots > len(ids) {
		playoffSlots = len(ids)
	}
	return ids[:playoffSlots]
}
