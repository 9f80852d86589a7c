package alpha

import (
	"fmt"
	"sort"

	"github.com/jstittsworth/ff-alpha-core/internal/domain"
)

// SignalWeights maps a signal name to its configured weight in the
// additive blend. SignalClips maps a signal name to the [min, max]
// range its raw value is clipped to before weighting.
type SignalWeights map[string]float64

type ClipRange struct {
	Min, Max float64
}

type SignalClips map[string]ClipRange

// ProviderConfig is the tunable surface for C3, sourced from the
// alpha section of runtime configuration.
type ProviderConfig struct {
	Weights          SignalWeights
	Clips            SignalClips
	InjuryPenalties  map[string]float64
	TotalClip        ClipRange
	EnableExtended   bool
}

// DefaultProviderConfig returns the weights and clip ranges used when
// no override is configured. Every signal except injury_opportunity
// moves a projection by at most two points on its own; the
// injury_opportunity clip range lets an injury penalty subtract up to
// eight before the total clip applies.
func DefaultProviderConfig() ProviderConfig {
	return ProviderConfig{
		Weights: SignalWeights{
			"projection_residual":         0.35,
			"usage_trend":                 0.6,
			"injury_opportunity":          1.0,
			"matchup_unit":                0.5,
			"game_script":                 0.5,
			"volatility_aware":            0.4,
			"weather_venue":               0.8,
			"market_sentiment_contrarian": 0.3,
			"waiver_replacement_value":    0.5,
			"short_term_schedule_cluster": 0.4,
			"player_tilt_leverage":        0.3,
			"vegas_props":                 0.4,
			"win_probability_script":      0.3,
			"backup_quality_adjustment":   0.6,
			"red_zone_opportunity":        0.4,
			"snap_count_percentage":       0.3,
			"line_movement":               0.2,
		},
		Clips: SignalClips{
			"projection_residual":         {-4, 4},
			"usage_trend":                 {-3, 3},
			"injury_opportunity":          {-8, 3},
			"matchup_unit":                {-2, 2},
			"game_script":                 {-2.5, 2.5},
			"volatility_aware":            {-2, 1},
			"weather_venue":               {-2.5, 0},
			"market_sentiment_contrarian": {-2, 2},
			"waiver_replacement_value":    {-1.5, 1.5},
			"short_term_schedule_cluster": {-1.5, 1.5},
			"player_tilt_leverage":        {-1.5, 1.5},
			"vegas_props":                 {-2, 2},
			"win_probability_script":      {-1.5, 1.5},
			"backup_quality_adjustment":   {0, 3},
			"red_zone_opportunity":        {-1, 2},
			"snap_count_percentage":       {-1.5, 1.5},
			"line_movement":               {-1, 1},
		},
		InjuryPenalties: map[string]float64{
			string(domain.InjuryOut):           10,
			string(domain.InjuryDoubtful):      6,
			string(domain.InjuryQuestionable):  2,
			string(domain.InjuryReserve):       10,
			string(domain.InjurySuspension):    10,
			string(domain.InjuryActive):        0,
		},
		TotalClip:      ClipRange{-6, 6},
		EnableExtended: true,
	}
}

func clip(v float64, r ClipRange) float64 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// Provider computes C3 alpha adjustments from a signal context.
type Provider struct {
	cfg             ProviderConfig
	lastDiagnostics []domain.SignalContribution
	lastWarnings    []string
}

// NewProvider builds a Provider with the given configuration.
func NewProvider(cfg ProviderConfig) *Provider {
	return &Provider{cfg: cfg}
}

type namedSignal struct {
	name string
	fn   func(*SignalContext) signalResult
}

func (p *Provider) baseSignals() []namedSignal {
	return []namedSignal{
		{"projection_residual", signalProjectionResidual},
		{"usage_trend", signalUsageTrend},
		{"injury_opportunity", func(ctx *SignalContext) signalResult {
			return signalInjuryOpportunity(ctx, p.cfg.InjuryPenalties)
		}},
		{"game_script", signalGameScript},
		{"volatility_aware", signalVolatilityAware},
		{"weather_venue", signalWeatherVenue},
		{"market_sentiment_contrarian", signalMarketSentimentContrarian},
		{"waiver_replacement_value", signalWaiverReplacementValue},
		{"short_term_schedule_cluster", signalShortTermScheduleCluster},
	}
}

func (p *Provider) extendedSignals() []namedSignal {
	return []namedSignal{
		{"player_tilt_leverage", signalPlayerTiltLeverage},
		{"vegas_props", signalVegasProps},
		{"win_probability_script", signalWinProbabilityScript},
		{"backup_quality_adjustment", signalBackupQualityAdjustment},
		{"red_zone_opportunity", signalRedZoneOpportunity},
		{"snap_count_percentage", signalSnapCountPercentage},
		{"line_movement", signalLineMovement},
	}
}

// Compute evaluates every configured signal against ctx and aggregates
// them into an AlphaAdjustment. A signal whose upstream feed was
// unavailable contributes zero weight rather than being dropped
// silently; its absence is recorded as a warning and as a
// "feed_unavailable" quality flag on the contribution. A signal that
// panics contributes neutrally, with the panic recorded both as a
// warning and in the contribution's quality flags.
func (p *Provider) Compute(ctx *SignalContext) domain.AlphaAdjustment {
	var contributions []domain.SignalContribution
	var warnings []string

	evalOne := func(ns namedSignal) (contrib domain.SignalContribution) {
		defer func() {
			if r := recover(); r != nil {
				msg := fmt.Sprintf("%s: signal panicked: %v", ns.name, r)
				warnings = append(warnings, msg)
				contrib = domain.SignalContribution{SignalName: ns.name, QualityFlags: []string{msg}}
			}
		}()
		res := ns.fn(ctx)
		clipRange, hasClip := p.cfg.Clips[ns.name]
		if !hasClip {
			clipRange = ClipRange{-1e9, 1e9}
		}
		clipped := clip(res.Raw, clipRange)
		weight := p.cfg.Weights[ns.name]
		confidence := res.Confidence
		var flags []string
		if available, tracked := ctx.FeedAvailable[res.Source]; tracked && !available {
			weight = 0
			confidence = 0
			flags = append(flags, "feed_unavailable")
			warnings = append(warnings, fmt.Sprintf("%s: feed %q unavailable, forced to zero weight", ns.name, res.Source))
		}
		return domain.SignalContribution{
			SignalName:   ns.name,
			Raw:          res.Raw,
			Clipped:      clipped,
			Weight:       weight,
			Confidence:   confidence,
			Source:       res.Source,
			QualityFlags: flags,
		}
	}

	for _, ns := range p.baseSignals() {
		contributions = append(contributions, evalOne(ns))
	}
	if p.cfg.EnableExtended {
		for _, ns := range p.extendedSignals() {
			contributions = append(contributions, evalOne(ns))
		}
	}

	matchupResult, matchupMultiplier := signalMatchupUnit(ctx)
	matchupClip := p.cfg.Clips["matchup_unit"]
	matchupWeight := p.cfg.Weights["matchup_unit"]
	matchupContribution := domain.SignalContribution{
		SignalName: "matchup_unit",
		Raw:        matchupResult.Raw,
		Clipped:    clip(matchupResult.Raw, matchupClip),
		Weight:     matchupWeight,
		Confidence: matchupResult.Confidence,
		Source:     matchupResult.Source,
	}
	contributions = append(contributions, matchupContribution)

	sort.SliceStable(contributions, func(i, j int) bool {
		return signalOrder(contributions[i].SignalName) < signalOrder(contributions[j].SignalName)
	})

	deltaMean := 0.0
	for _, c := range contributions {
		deltaMean += c.Clipped * c.Weight
	}
	deltaMean = clip(deltaMean, p.cfg.TotalClip)

	deltaStdev := 0.0
	for _, c := range contributions {
		if c.SignalName == "volatility_aware" {
			deltaStdev = -c.Clipped * c.Weight
		}
	}
	if deltaStdev < 0 {
		deltaStdev = 0
	}

	p.lastDiagnostics = contributions
	p.lastWarnings = warnings

	return domain.AlphaAdjustment{
		DeltaMeanPoints:   deltaMean,
		DeltaStdevPoints:  deltaStdev,
		MatchupMultiplier: matchupMultiplier,
		Contributions:     contributions,
		Warnings:          warnings,
	}
}

var signalPriority = []string{
	"projection_residual", "usage_trend", "injury_opportunity", "matchup_unit",
	"game_script", "volatility_aware", "weather_venue", "market_sentiment_contrarian",
	"waiver_replacement_value", "short_term_schedule_cluster", "player_tilt_leverage",
	"vegas_props", "win_probability_script", "backup_quality_adjustment",
	"red_zone_opportunity", "snap_count_percentage", "line_movement",
}

func signalOrder(name string) int {
	for i, n := range signalPriority {
		if n == name {
			return i
		}
	}
	return len(signalPriority)
}

// LastDiagnostics returns the per-signal contributions from the most
// recent Compute call, for decision-service audit trails.
func (p *Provider) LastDiagnostics() []domain.SignalContribution {
	return p.lastDiagnostics
}

// LastWarnings returns the warnings accumulated during the most recent
// Compute call.
func (p *Provider) LastWarnings() []string {
	return p.lastWarnings
}
