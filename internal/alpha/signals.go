package alpha

import (
	"math"

	"github.com/jstittsworth/ff-alpha-core/internal/domain"
)

// SignalContext is the pure-function input every signal computes
// from: player features, league context and resolved feed data. No
// signal mutates anything it is given.
type SignalContext struct {
	Player         *domain.Player
	League         *domain.LeagueContext
	Week           int
	ESPNBaseline   float64
	MarketBaseline float64
	Feeds          map[string]domain.FeedEnvelope // resolved envelopes, keyed by feed name
	FeedAvailable  map[string]bool
	RecentWeeks    []domain.WeeklyStatLine
	PriorWeeks     []domain.WeeklyStatLine // weeks 4-6 back, for usage_trend
	DVPRank        float64                 // 0..1, higher = easier matchup
	Spread         float64
	ImpliedTotal   float64
	PercentStarted float64
	ReplacementValue float64
	CurrentStarterValue float64
	NextNWeekAvgDVP float64
}

// signalResult is what each pure signal function produces before
// clipping/weighting is applied by the provider.
type signalResult struct {
	Raw        float64
	Confidence float64
	Source     string
}

func feedOf(ctx *SignalContext, name string) (domain.FeedEnvelope, bool) {
	e, ok := ctx.Feeds[name]
	if !ok {
		return domain.FeedEnvelope{}, false
	}
	return e, ctx.FeedAvailable[name]
}

func floatField(data map[string]interface{}, key string, fallback float64) float64 {
	if v, ok := data[key]; ok {
		if f, ok := v.(float64); ok {
			return f
		}
	}
	return fallback
}

func boolField(data map[string]interface{}, key string) bool {
	if v, ok := data[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

func recentMean(lines []domain.WeeklyStatLine) float64 {
	if len(lines) == 0 {
		return 0
	}
	sum := 0.0
	for _, l := range lines {
		sum += l.Points
	}
	return sum / float64(len(lines))
}

func recentStdev(lines []domain.WeeklyStatLine) float64 {
	if len(lines) < 2 {
		return 0
	}
	mean := recentMean(lines)
	sumSq := 0.0
	for _, l := range lines {
		d := l.Points - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(lines)-1))
}

// recentFormConfidence implements the observed-weeks confidence table:
// >=4 weeks high (0.95), 2-3 medium (0.75), 1 low (0.40), 0 zero.
func recentFormConfidence(observedWeeks int) float64 {
	switch {
	case observedWeeks >= 4:
		return 0.95
	case observedWeeks >= 2:
		return 0.75
	case observedWeeks == 1:
		return 0.40
	default:
		return 0
	}
}

// --- base signal set (10) ---

func signalProjectionResidual(ctx *SignalContext) signalResult {
	if ctx.MarketBaseline == 0 {
		return signalResult{Source: "market"}
	}
	residual := ctx.MarketBaseline - ctx.ESPNBaseline
	return signalResult{Raw: residual, Confidence: recentFormConfidence(len(ctx.RecentWeeks)), Source: "market"}
}

func signalUsageTrend(ctx *SignalContext) signalResult {
	recent := recentMean(ctx.RecentWeeks)
	prior := recentMean(ctx.PriorWeeks)
	if prior == 0 {
		return signalResult{Confidence: recentFormConfidence(len(ctx.RecentWeeks)), Source: "nextgenstats"}
	}
	trend := (recent - prior) / prior
	scale := positionScale(ctx.Player.Position)
	return signalResult{Raw: trend * scale, Confidence: recentFormConfidence(len(ctx.RecentWeeks)), Source: "nextgenstats"}
}

func positionScale(p domain.Position) float64 {
	switch p {
	case domain.PositionRB, domain.PositionWR:
		return 6.0
	case domain.PositionTE:
		return 4.0
	case domain.PositionQB:
		return 5.0
	default:
		return 2.0
	}
}

func signalInjuryOpportunity(ctx *SignalContext, injuryPenalties map[string]float64) signalResult {
	confidence := 0.95
	penalty := injuryPenalties[string(ctx.Player.InjuryStatus)]
	raw := -penalty

	env, available := feedOf(ctx, "injury_news")
	if available {
		if boolField(env.Data, "teammate_out") {
			raw += 2.0
			confidence = 0.70
		}
	}
	return signalResult{Raw: raw, Confidence: confidence, Source: "injury_news"}
}

// signalMatchupUnit returns both the additive raw contribution and a
// multiplier derived from the same DVP rank, clipped to [0.85, 1.15].
func signalMatchupUnit(ctx *SignalContext) (signalResult, float64) {
	rank := ctx.DVPRank // 0..1, higher = easier
	raw := (rank - 0.5) * 4.0
	multiplier := 0.85 + rank*0.30
	if multiplier < 0.85 {
		multiplier = 0.85
	}
	if multiplier > 1.15 {
		multiplier = 1.15
	}
	return signalResult{Raw: raw, Confidence: 0.80, Source: "league_context"}, multiplier
}

func signalGameScript(ctx *SignalContext) signalResult {
	env, available := feedOf(ctx, "odds")
	if !available {
		return signalResult{Source: "odds"}
	}
	spread := floatField(env.Data, "spread", ctx.Spread)
	total := floatField(env.Data, "implied_total", ctx.ImpliedTotal)
	direction := gameScriptDirection(ctx.Player.Position, spread)
	raw := direction * (total - 22.0) * 0.08
	return signalResult{Raw: raw, Confidence: 0.75, Source: "odds"}
}

func gameScriptDirection(p domain.Position, spread float64) float64 {
	// negative spread means favored; RB leans positive game script when favored, WR/QB lean the other way in pass-heavy scripts
	switch p {
	case domain.PositionRB:
		return -spread
	case domain.PositionWR, domain.PositionQB, domain.PositionTE:
		return spread
	default:
		return 0
	}
}

func signalVolatilityAware(ctx *SignalContext) signalResult {
	stdev := recentStdev(ctx.RecentWeeks)
	volIndex := 0.0
	if env, available := feedOf(ctx, "nextgenstats"); available {
		volIndex = floatField(env.Data, "volatility_index", 0)
	}
	combined := stdev + volIndex
	raw := -0.15 * combined
	if combined < 3.0 {
		raw += 0.5 // low-volatility bonus
	}
	return signalResult{Raw: raw, Confidence: 0.60, Source: "nextgenstats"}
}

func signalWeatherVenue(ctx *SignalContext) signalResult {
	env, available := feedOf(ctx, "weather")
	if !available {
		return signalResult{Source: "weather"}
	}
	if boolField(env.Data, "is_dome") {
		return signalResult{Raw: 0, Confidence: 0.90, Source: "weather"}
	}
	wind := floatField(env.Data, "wind_mph", 0)
	precip := floatField(env.Data, "precip_chance", 0)
	raw := 0.0
	if wind > 20 {
		raw -= 1.5
	} else if wind > 12 {
		raw -= 0.6
	}
	if precip > 0.6 {
		raw -= 0.8
	}
	return signalResult{Raw: raw, Confidence: 0.70, Source: "weather"}
}

func signalMarketSentimentContrarian(ctx *SignalContext) signalResult {
	residual := ctx.MarketBaseline - ctx.ESPNBaseline
	contrarian := -0.5 * (ctx.PercentStarted - 50.0) / 50.0
	raw := contrarian * residual
	return signalResult{Raw: raw, Confidence: 0.55, Source: "market"}
}

func signalWaiverReplacementValue(ctx *SignalContext) signalResult {
	if ctx.ReplacementValue == 0 {
		return signalResult{Source: "league_context"}
	}
	raw := (ctx.CurrentStarterValue - ctx.ReplacementValue) * 0.10
	return signalResult{Raw: raw, Confidence: 0.65, Source: "league_context"}
}

func signalShortTermScheduleCluster(ctx *SignalContext) signalResult {
	raw := (ctx.NextNWeekAvgDVP - 0.5) * 2.0
	return signalResult{Raw: raw, Confidence: 0.60, Source: "league_context"}
}

// --- optional extended signal set (7) ---

func signalPlayerTiltLeverage(ctx *SignalContext) signalResult {
	env, available := feedOf(ctx, "nextgenstats")
	if !available {
		return signalResult{Source: "nextgenstats"}
	}
	tgtShare := floatField(env.Data, "target_share", 0)
	return signalResult{Raw: (tgtShare - 0.18) * 10, Confidence: 0.6, Source: "nextgenstats"}
}

func signalVegasProps(ctx *SignalContext) signalResult {
	env, available := feedOf(ctx, "market")
	if !available {
		return signalResult{Source: "market"}
	}
	prop := floatField(env.Data, "player_prop", ctx.ESPNBaseline)
	return signalResult{Raw: prop - ctx.ESPNBaseline, Confidence: 0.7, Source: "market"}
}

func signalWinProbabilityScript(ctx *SignalContext) signalResult {
	env, available := feedOf(ctx, "odds")
	if !available {
		return signalResult{Source: "odds"}
	}
	winProb := floatField(env.Data, "win_probability", 0.5)
	return signalResult{Raw: gameScriptDirection(ctx.Player.Position, (winProb-0.5)*-10), Confidence: 0.55, Source: "odds"}
}

func signalBackupQualityAdjustment(ctx *SignalContext) signalResult {
	env, available := feedOf(ctx, "injury_news")
	if !available {
		return signalResult{Source: "injury_news"}
	}
	if boolField(env.Data, "starter_out_backup_elevated") {
		return signalResult{Raw: 3.0, Confidence: 0.6, Source: "injury_news"}
	}
	return signalResult{Source: "injury_news"}
}

func signalRedZoneOpportunity(ctx *SignalContext) signalResult {
	env, available := feedOf(ctx, "nextgenstats")
	if !available {
		return signalResult{Source: "nextgenstats"}
	}
	rzShare := floatField(env.Data, "red_zone_share", 0)
	return signalResult{Raw: rzShare * 8, Confidence: 0.6, Source: "nextgenstats"}
}

func signalSnapCountPercentage(ctx *SignalContext) signalResult {
	env, available := feedOf(ctx, "nextgenstats")
	if !available {
		return signalResult{Source: "nextgenstats"}
	}
	snapPct := floatField(env.Data, "snap_pct", 0.5)
	return signalResult{Raw: (snapPct - 0.5) * 6, Confidence: 0.6, Source: "nextgenstats"}
}

func signalLineMovement(ctx *SignalContext) signalResult {
	env, available := feedOf(ctx, "odds")
	if !available {
		return signalResult{Source: "odds"}
	}
	movement := floatField(env.Data, "line_movement", 0)
	return signalResult{Raw: movement * 0.3, Confidence: 0.5, Source: "odds"}
}
