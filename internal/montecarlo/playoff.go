package montecarlo

import (
	"context"
	"math/rand"
	"sort"

	"github.com/jstittsworth/ff-alpha-core/internal/domain"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat/distuv"
)

// TeamPlayoffResult is one team's championship odds across the
// simulated playoff field.
type TeamPlayoffResult struct {
	TeamID                string
	MakesPlayoffsProb      float64
	ChampionshipProb       float64
}

// SimulatePlayoffs runs the regular season to completion cfg.NumSimulations
// times; after each replay it seeds the top PlayoffTeamCount teams by
// projected win total (ties broken by rating mean, matching the
// standings tiebreak SimulateSeason already uses), plays a
// single-elimination bracket where the higher seed hosts every round,
// and tallies championships. The bracket is padded up to the
// next power of two at or above the league's PlayoffTeamCount; byes
// go to the top seeds when the count isn't a power of two.
func SimulatePlayoffs(ctx context.Context, league *domain.LeagueContext, ratings map[string]domain.TeamRating, cfg Config) ([]TeamPlayoffResult, error) {
	weeks := league.ROSWeeks()
	teams := league.Teams
	total := cfg.simulations()
	sizes := chunkSizes(total, cfg.workers())

	championCnt := make([]map[string]int, len(sizes))
	playoffCnt := make([]map[string]int, len(sizes))

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

			champions := make(map[string]int)
			qualified := make(map[string]int)
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

				seeds := qualifiers(teams, wins, ratings, league.PlayoffTeamCount)
				for _, teamID := range seeds {
					qualified[teamID]++
				}
				champions[playBracket(seeds, ratings, cfg.varianceFloor(), rng)]++
			}
			championCnt[i] = champions
			playoffCnt[i] = qualified
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	champSum := make(map[string]int)
	qualifySum := make(map[string]int)
	for i := range sizes {
		for teamID, c := range championCnt[i] {
			champSum[teamID] += c
		}
		for teamID, c := range playoffCnt[i] {
			qualifySum[teamID] += c
		}
	}

	results := make([]TeamPlayoffResult, 0, len(teams))
	for _, team := range teams {
		results = append(results, TeamPlayoffResult{
			TeamID:            team.ID,
			MakesPlayoffsProb: float64(qualifySum[team.ID]) / float64(total),
			ChampionshipProb:  float64(champSum[team.ID]) / float64(total),
		})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].TeamID < results[j].TeamID })
	return results, nil
}

// playBracket runs a single-elimination bracket over seeds (best seed
// first) and returns the champion's team id. The higher (lower-index)
// seed is always home; each round samples one score per team from its
// rating and the higher score advances, ties broken toward the higher
// seed. A bye is given to top seeds when the field isn't a power of two.
func playBracket(seeds []string, ratings map[string]domain.TeamRating, varianceFloor float64, rng *rand.Rand) string {
	if len(seeds) == 0 {
		return ""
	}
	round := append([]string(nil), seeds...)
	for len(round) > 1 {
		bracketSize := nextPowerOfTwo(len(round))
		byes := bracketSize - len(round)
		next := make([]string, 0, (len(round)+1)/2)
		for i := 0; i < byes; i++ {
			next = append(next, round[i])
		}
		remaining := round[byes:]
		for i := 0; i < len(remaining); i += 2 {
			if i+1 >= len(remaining) {
				next = append(next, remaining[i])
				continue
			}
			home, away := remaining[i], remaining[i+1]
			homeRating, awayRating := floorRating(ratings[home], varianceFloor), floorRating(ratings[away], varianceFloor)
			homeScore := distuv.Normal{Mu: homeRating.Mean, Sigma: homeRating.Stdev, Src: rng}.Rand()
			awayScore := distuv.Normal{Mu: awayRating.Mean, Sigma: awayRating.Stdev, Src: rng}.Rand()
			if awayScore > homeScore {
				next = append(next, away)
			} else {
				next = append(next, home)
			}
		}
		round = next
	}
	return round[0]
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p *= 2
	}
	return p
}
