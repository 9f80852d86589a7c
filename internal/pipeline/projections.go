// Package pipeline wires C1 (perfmodel), C2 (feeds), C3 (alpha
// signals) and C4 (alpha blend) into the one operation every decision
// service in internal/decisions actually needs: a
// map[playerID]domain.PlayerProjection for a team's roster in a given
// week. No decision logic lives here — this is strictly the "build a
// projection" glue between C1-C4 and C5-C7.
package pipeline

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/jstittsworth/ff-alpha-core/internal/alpha"
	"github.com/jstittsworth/ff-alpha-core/internal/cache"
	"github.com/jstittsworth/ff-alpha-core/internal/domain"
	"github.com/jstittsworth/ff-alpha-core/internal/feeds"
	"github.com/jstittsworth/ff-alpha-core/internal/perfmodel"
	"github.com/jstittsworth/ff-alpha-core/internal/valuation"
)

// Deps bundles the already-constructed C1-C4 collaborators a Service
// needs. All fields are required except Registry and Cache. Registry
// may be nil when the caller only ever resolves feeds from the
// snapshot store (e.g. a backtest-style replay or a test harness with
// no live network access). Cache may be nil (a guaranteed-miss
// ProjectionCache still satisfies the interface) when no Redis
// instance is configured for this deployment.
type Deps struct {
	Trainer     *perfmodel.Trainer
	Store       *perfmodel.CacheStore
	Snapshots   *feeds.SnapshotStore
	Registry    *feeds.Registry
	Provider    *alpha.Provider
	BlendConfig alpha.BlendConfig
	Cache       *cache.ProjectionCache
	CacheTTL    time.Duration

	FeedNames       []string
	PublicationLag  map[string]time.Duration
	Staleness       feeds.StalenessConfig
	InjuryPenalties map[domain.InjuryStatus]float64
	Year            int
}

// configFingerprint identifies the blend configuration (alpha_blend
// and shrinkage_k) a memoized PlayerProjection was computed under, so
// a change to either naturally invalidates prior live (as_of == nil)
// cache entries instead of requiring an explicit flush. Injury
// penalties, stdev floors and provider settings are not part of it.
func (d Deps) configFingerprint() string {
	return fmt.Sprintf("a%.3f-k%.3f", d.BlendConfig.AlphaBlend, d.BlendConfig.ShrinkageK)
}

// Service builds PlayerProjections for a team's roster.
type Service struct {
	deps Deps
}

// NewService constructs a Service from its collaborators.
func NewService(deps Deps) *Service {
	return &Service{deps: deps}
}

// resolveFeeds resolves each configured feed for (league, week). With
// a registry adapter and a nil asOf it fetches the feed live and
// appends the result to the snapshot store; otherwise it resolves from
// the snapshot store at asOf (nil meaning now) minus the feed's
// publication lag.
func (s *Service) resolveFeeds(ctx context.Context, league *domain.LeagueContext, week int, asOf *time.Time) (map[string]domain.FeedEnvelope, map[string]bool) {
	resolved := make(map[string]domain.FeedEnvelope, len(s.deps.FeedNames))
	available := make(map[string]bool, len(s.deps.FeedNames))

	for _, name := range s.deps.FeedNames {
		if s.deps.Registry != nil && asOf == nil {
			if adapter, ok := s.deps.Registry.Get(name); ok {
				envelope := adapter.Fetch(ctx, league.ID, s.deps.Year, week)
				if s.deps.Snapshots != nil {
					_ = s.deps.Snapshots.Record(league.ID, s.deps.Year, week, name, envelope)
				}
				resolved[name] = envelope
				available[name] = !envelope.HasFlag("feed_unavailable") && !envelope.HasFlag("schema_invalid")
				continue
			}
		}

		cutoff := time.Now().UTC()
		if asOf != nil {
			cutoff = *asOf
		}
		if lag, ok := s.deps.PublicationLag[name]; ok {
			cutoff = cutoff.Add(-lag)
		}
		envelope, err := s.deps.Snapshots.Resolve(league.ID, s.deps.Year, week, name, cutoff, s.deps.Staleness)
		resolved[name] = envelope
		available[name] = err == nil && !envelope.HasFlag("as_of_miss")
	}
	return resolved, available
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

// baseline returns the ESPN-style projected points for a week,
// falling back to the trained performance model's season mean (or the
// fallback state's shifted mean) when the league collaborator never
// supplied a projection for that week — most commonly a future ROS
// week rather than the current one.
func (s *Service) baseline(ctx context.Context, player *domain.Player, week, cutWeek int) float64 {
	if line, ok := player.ScoringHistory[week]; ok && line.ProjectedPoints > 0 {
		return line.ProjectedPoints
	}
	state, err := s.deps.Store.LoadOrTrain(ctx, player, s.deps.Year, cutWeek)
	if err != nil {
		return recentFormMean(player, cutWeek+1)
	}
	return state.SeasonMean
}

// ProjectRoster builds a PlayerProjection for every roster player the
// league context has scheduling/history data for in week, optionally
// replaying feeds as of a fixed cutoff (nil means "live, most
// recent"). Feed resolution always precedes signal computation, which
// always precedes blending.
func (s *Service) ProjectRoster(ctx context.Context, league *domain.LeagueContext, team *domain.Team, week int, strength *valuation.OpponentStrength, asOf *time.Time) (map[string]domain.PlayerProjection, error) {
	projections := make(map[string]domain.PlayerProjection, len(team.Roster))

	// Feed resolution depends only on (league, week, asOf), not on the
	// player being projected, so it happens once per roster rather than
	// once per player.
	feedData, feedAvailable := s.resolveFeeds(ctx, league, week, asOf)

	// Live (non-replay) projections are memoized in the ephemeral
	// projection cache, keyed by a fingerprint of the blend config so a
	// config change invalidates stale entries without an explicit
	// flush. Backtest/as-of replays never touch the cache: a historical
	// replay must always recompute under its own cutoff.
	useCache := s.deps.Cache != nil && asOf == nil
	fingerprint := s.deps.configFingerprint()

	for i := range team.Roster {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		player := &team.Roster[i]

		if useCache {
			key := cache.ProjectionKey(league.ID, week, player.ID, fingerprint)
			if cached, found, err := s.deps.Cache.GetProjection(ctx, key); err == nil && found {
				projections[player.ID] = cached
				continue
			}
		}

		opponentID := ""
		if game, ok := player.Schedule[week]; ok {
			opponentID = game.OpponentTeamID
		}
		dvpRank := 0.5
		if strength != nil {
			dvpRank = (strength.MultiplierFor(player.Position, opponentID) - 0.70) / (1.30 - 0.70)
		}

		sigCtx := &alpha.SignalContext{
			Player:         player,
			League:         league,
			Week:           week,
			ESPNBaseline:   player.ScoringHistory[week].ProjectedPoints,
			MarketBaseline: marketBaseline(feedData, feedAvailable, player.ID),
			Feeds:          feedData,
			FeedAvailable:  feedAvailable,
			RecentWeeks:    player.RecentWeeks(3, week-1),
			PriorWeeks:     player.RecentWeeks(3, week-4),
			DVPRank:        dvpRank,
			PercentStarted: player.PercentStarted,
		}
		if env, ok := feedData["odds"]; ok && feedAvailable["odds"] {
			sigCtx.Spread = floatFrom(env.Data, "spread")
			sigCtx.ImpliedTotal = floatFrom(env.Data, "implied_total")
		}

		adjustment := s.deps.Provider.Compute(sigCtx)

		base := s.baseline(ctx, player, week, week-1)
		injuryPenalty := s.deps.InjuryPenalties[player.InjuryStatus]
		projection := alpha.Blend(s.deps.BlendConfig, player.ID, player.Position, base,
			recentFormMean(player, week), baselineUncertainty(player, week),
			player.ValidWeeksThrough(week-1), injuryPenalty, adjustment)

		projections[player.ID] = projection

		if useCache {
			key := cache.ProjectionKey(league.ID, week, player.ID, fingerprint)
			_ = s.deps.Cache.SetProjection(ctx, key, projection, s.deps.CacheTTL)
		}
	}

	return projections, nil
}

func floatFrom(data map[string]interface{}, key string) float64 {
	if v, ok := data[key]; ok {
		if f, ok := v.(float64); ok {
			return f
		}
	}
	return 0
}

// marketBaseline looks up a player's consensus market projection from
// the resolved market feed's normalized "projections" map, keyed by
// player id. A missing or unavailable feed yields zero, which the
// projection_residual signal treats as "no market signal".
func marketBaseline(feeds map[string]domain.FeedEnvelope, available map[string]bool, playerID string) float64 {
	if !available["market"] {
		return 0
	}
	env, ok := feeds["market"]
	if !ok {
		return 0
	}
	raw, ok := env.Data["projections"]
	if !ok {
		return 0
	}
	byPlayer, ok := raw.(map[string]interface{})
	if !ok {
		return 0
	}
	if v, ok := byPlayer[playerID]; ok {
		if f, ok := v.(float64); ok {
			return f
		}
	}
	return 0
}

// BaseValue returns a BaseValueFunc backed by C1's state-biased
// sampling for C5's ROS valuator, falling back to the ESPN projected
// average (or recent form) when no trained model is available for a
// player. rng is caller-owned so a single decision request shares one
// seeded generator across every player it values.
func (s *Service) BaseValue(ctx context.Context, rng *rand.Rand, cutWeek int) valuation.BaseValueFunc {
	return func(player *domain.Player, week int) float64 {
		state, err := s.deps.Store.LoadOrTrain(ctx, player, s.deps.Year, cutWeek)
		if err != nil {
			return s.baseline(ctx, player, week, cutWeek)
		}
		return state.PredictOne(rng, true)
	}
}
