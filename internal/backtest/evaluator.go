// Package backtest implements C8: it replays historical weeks through
// the same projection and matchup-simulation pipeline live decisions
// use, resolving every feed under the leakage guard (as_of = kickoff
// minus publication lag), and reports how much the alpha layer lifted
// accuracy over the bare baseline plus how well its win probabilities
// were calibrated against what actually happened.
package backtest

import (
	"context"
	"math"
	"time"

	"github.com/jstittsworth/ff-alpha-core/internal/alpha"
	"github.com/jstittsworth/ff-alpha-core/internal/domain"
	"github.com/jstittsworth/ff-alpha-core/internal/feeds"
	"github.com/jstittsworth/ff-alpha-core/internal/montecarlo"
	"github.com/jstittsworth/ff-alpha-core/internal/valuation"
)

// Config bounds one evaluation window and supplies the already-wired
// C2/C3/C4 collaborators the window replays against.
type Config struct {
	WindowStartWeek int
	WindowEndWeek   int

	Store          *feeds.SnapshotStore
	FeedNames      []string
	PublicationLag map[string]time.Duration
	Staleness      feeds.StalenessConfig

	Provider        *alpha.Provider
	BlendConfig     alpha.BlendConfig
	InjuryPenalties map[domain.InjuryStatus]float64

	Simulation montecarlo.Config
}

// ReliabilityBucket is one row of the calibration table: a predicted
// win-probability decile versus the realized frequency of winning
// within it.
type ReliabilityBucket struct {
	BucketLow   float64
	BucketHigh  float64
	Predictions int
	Wins        int
}

// EmpiricalFrequency is Wins/Predictions, or 0 for an empty bucket.
func (b ReliabilityBucket) EmpiricalFrequency() float64 {
	if b.Predictions == 0 {
		return 0
	}
	return float64(b.Wins) / float64(b.Predictions)
}

// Result is C8's full report for one window.
type Result struct {
	WindowStartWeek      int
	WindowEndWeek        int
	WeeksEvaluated       int
	PlayerWeeksEvaluated int
	BaselineMAE          float64
	AlphaMAE             float64
	AlphaLift            float64
	BrierScore           float64
	Reliability          []ReliabilityBucket
}

func newBuckets() []ReliabilityBucket {
	buckets := make([]ReliabilityBucket, 10)
	for i := range buckets {
		buckets[i] = ReliabilityBucket{BucketLow: float64(i) / 10, BucketHigh: float64(i+1) / 10}
	}
	return buckets
}

func bucketIndex(p float64, n int) int {
	idx := int(p * float64(n))
	if idx < 0 {
		idx = 0
	}
	if idx >= n {
		idx = n - 1
	}
	return idx
}

func boxScoreIndex(lines []domain.BoxScore) map[string]float64 {
	idx := make(map[string]float64, len(lines))
	for _, bs := range lines {
		idx[bs.PlayerID] = bs.Points
	}
	return idx
}

// kickoffTime returns a player's scheduled kickoff for a week, or the
// zero time if the schedule has no entry (treated as "resolve latest
// known" by resolveFeeds).
func kickoffTime(player *domain.Player, week int) time.Time {
	game, ok := player.Schedule[week]
	if !ok {
		return time.Time{}
	}
	return game.GameTime
}

func recentFormMean(player *domain.Player, week int) float64 {
	lines := player.RecentWeeks(3, week-1)
	if len(lines) == 0 {
		return player.ScoringHistory[week].ProjectedPoints
	}
	var sum float64
	for _, l := range lines {
		sum += l.Points
	}
	return sum / float64(len(lines))
}

func baselineUncertainty(player *domain.Player, week int) float64 {
	lines := player.RecentWeeks(6, week-1)
	if len(lines) < 2 {
		return 6.0
	}
	var mean float64
	for _, l := range lines {
		mean += l.Points
	}
	mean /= float64(len(lines))
	var variance float64
	for _, l := range lines {
		d := l.Points - mean
		variance += d * d
	}
	variance /= float64(len(lines) - 1)
	return math.Sqrt(variance)
}

// resolveFeeds computes, per feed, its own as-of cutoff (kickoff minus
// that feed's configured publication lag) and resolves the snapshot
// store at that cutoff, so a feed with a longer lag never sees data a
// feed with a shorter lag wouldn't yet have at kickoff.
func (cfg Config) resolveFeeds(league *domain.LeagueContext, week int, kickoff time.Time) (map[string]domain.FeedEnvelope, map[string]bool) {
	resolved := make(map[string]domain.FeedEnvelope, len(cfg.FeedNames))
	available := make(map[string]bool, len(cfg.FeedNames))
	for _, name := range cfg.FeedNames {
		cutoff := kickoff
		if !cutoff.IsZero() {
			cutoff = kickoff.Add(-cfg.PublicationLag[name])
		}
		envelope, err := cfg.Store.Resolve(league.ID, league.SeasonYear, week, name, cutoff, cfg.Staleness)
		resolved[name] = envelope
		available[name] = err == nil && !envelope.HasFlag("as_of_miss")
	}
	return resolved, available
}

func buildSignalContext(league *domain.LeagueContext, player *domain.Player, week int, kickoff time.Time, cfg Config, strength *valuation.OpponentStrength) *alpha.SignalContext {
	feedData, feedAvailable := cfg.resolveFeeds(league, week, kickoff)

	opponentID := ""
	if game, ok := player.Schedule[week]; ok {
		opponentID = game.OpponentTeamID
	}
	dvpRank := 0.5
	if strength != nil {
		dvpRank = (strength.MultiplierFor(player.Position, opponentID) - 0.70) / (1.30 - 0.70)
	}

	return &alpha.SignalContext{
		Player:         player,
		League:         league,
		Week:           week,
		ESPNBaseline:   player.ScoringHistory[week].ProjectedPoints,
		Feeds:          feedData,
		FeedAvailable:  feedAvailable,
		RecentWeeks:    player.RecentWeeks(3, week-1),
		PriorWeeks:     player.RecentWeeks(3, week-4),
		DVPRank:        dvpRank,
		PercentStarted: player.PercentStarted,
	}
}

// Run replays every week in [WindowStartWeek, WindowEndWeek] for which
// box scores are available, comparing baseline and alpha-adjusted
// player projections to realized points, and aggregate team-total
// win-probability predictions to realized matchup outcomes.
func Run(ctx context.Context, league *domain.LeagueContext, cfg Config) (Result, error) {
	result := Result{WindowStartWeek: cfg.WindowStartWeek, WindowEndWeek: cfg.WindowEndWeek}
	buckets := newBuckets()

	strength := valuation.ComputeOpponentStrength(league)

	var baselineErrSum, alphaErrSum float64
	var playerWeeks int
	var brierSum float64
	var brierCount int

	for week := cfg.WindowStartWeek; week <= cfg.WindowEndWeek; week++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		scores := boxScoreIndex(league.BoxScoresByWeek[week])
		if len(scores) == 0 {
			continue
		}
		result.WeeksEvaluated++

		teamRatings := make(map[string]domain.TeamRating, len(league.Teams))
		ratingsCfg := montecarlo.RatingsConfig{AlphaMode: true, ScoreVarianceFloor: cfg.Simulation.ScoreVarianceFloor}

		for ti := range league.Teams {
			team := &league.Teams[ti]
			projections := make(map[string]domain.PlayerProjection, len(team.Roster))
			for pi := range team.Roster {
				player := &team.Roster[pi]
				actual, played := scores[player.ID]
				if !played {
					continue
				}

				kickoff := kickoffTime(player, week)
				sigCtx := buildSignalContext(league, player, week, kickoff, cfg, strength)
				adjustment := cfg.Provider.Compute(sigCtx)

				baseline := player.ScoringHistory[week].ProjectedPoints
				injuryPenalty := cfg.InjuryPenalties[player.InjuryStatus]
				projection := alpha.Blend(cfg.BlendConfig, player.ID, player.Position, baseline,
					recentFormMean(player, week), baselineUncertainty(player, week),
					player.ValidWeeksThrough(week-1), injuryPenalty, adjustment)

				baselineErrSum += math.Abs(baseline - actual)
				alphaErrSum += math.Abs(projection.BlendedMean - actual)
				playerWeeks++

				projections[player.ID] = projection
			}
			teamRatings[team.ID] = montecarlo.BuildTeamRating(league.RosterSlots, projections, nil, ratingsCfg)
		}

		seen := make(map[string]bool)
		for ti := range league.Teams {
			team := &league.Teams[ti]
			opponentID, hasGame := team.Schedule[week]
			outcome, hasOutcome := team.Outcomes[week]
			if !hasGame || !hasOutcome || outcome == domain.OutcomeUnplayed || outcome == domain.OutcomeTie {
				continue
			}
			key := pairKey(team.ID, opponentID)
			if seen[key] {
				continue
			}
			seen[key] = true

			opponentRating, ok := teamRatings[opponentID]
			if !ok {
				continue
			}
			matchup, err := montecarlo.SimulateMatchup(ctx, teamRatings[team.ID], opponentRating, cfg.Simulation)
			if err != nil {
				return Result{}, err
			}

			won := 1
			if outcome == domain.OutcomeLoss {
				won = 0
			}
			diff := matchup.WinProbA - float64(won)
			brierSum += diff * diff
			brierCount++

			idx := bucketIndex(matchup.WinProbA, len(buckets))
			buckets[idx].Predictions++
			buckets[idx].Wins += won
		}
	}

	result.PlayerWeeksEvaluated = playerWeeks
	if playerWeeks > 0 {
		result.BaselineMAE = baselineErrSum / float64(playerWeeks)
		result.AlphaMAE = alphaErrSum / float64(playerWeeks)
		if result.BaselineMAE > 0 {
			result.AlphaLift = (result.BaselineMAE - result.AlphaMAE) / result.BaselineMAE
		}
	}
	if brierCount > 0 {
		result.BrierScore = brierSum / float64(brierCount)
	}
	result.Reliability = buckets

	return result, nil
}

func pairKey(a, b string) string {
	if a < b {
		return a + "|" + b
	}
	return b + "|" + a
}
