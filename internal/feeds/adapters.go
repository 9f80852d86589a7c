package feeds

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// AdapterConfig bundles the tunables every feed domain is constructed
// with, drawn from the runtime configuration surface.
type AdapterConfig struct {
	BaseURL             string
	Client              *http.Client
	TimeoutSeconds      float64
	Retries             int
	ConsecutiveFailures int
	RatePerSecond       float64
	Burst               int
}

func (c AdapterConfig) timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds * float64(time.Second))
}

func (c AdapterConfig) httpClient() *http.Client {
	if c.Client != nil {
		return c.Client
	}
	return http.DefaultClient
}

// NewWeatherAdapter fetches venue/weather conditions: dome flag, wind
// speed, precipitation probability, temperature.
func NewWeatherAdapter(cfg AdapterConfig) *Adapter {
	fetch := func(ctx context.Context, league string, year, week int) (map[string]interface{}, time.Time, error) {
		url := fmt.Sprintf("%s/weather/%s/%d/%d", cfg.BaseURL, league, year, week)
		data, err := httpGetJSON(ctx, cfg.httpClient(), url)
		return data, time.Now().UTC(), err
	}
	validate := func(data map[string]interface{}) bool {
		_, hasWind := data["wind_mph"]
		_, hasDome := data["is_dome"]
		return hasWind || hasDome
	}
	return NewAdapter("weather", fetch, validate, cfg.ConsecutiveFailures, cfg.RatePerSecond, cfg.Burst, cfg.timeout(), cfg.Retries)
}

// NewMarketAdapter fetches market consensus projections and ownership
// percentages.
func NewMarketAdapter(cfg AdapterConfig) *Adapter {
	fetch := func(ctx context.Context, league string, year, week int) (map[string]interface{}, time.Time, error) {
		url := fmt.Sprintf("%s/market/%s/%d/%d", cfg.BaseURL, league, year, week)
		data, err := httpGetJSON(ctx, cfg.httpClient(), url)
		return data, time.Now().UTC(), err
	}
	validate := func(data map[string]interface{}) bool {
		_, ok := data["projections"]
		return ok
	}
	return NewAdapter("market", fetch, validate, cfg.ConsecutiveFailures, cfg.RatePerSecond, cfg.Burst, cfg.timeout(), cfg.Retries)
}

// NewOddsAdapter fetches spreads, implied totals, and win probability
// game scripts.
func NewOddsAdapter(cfg AdapterConfig) *Adapter {
	fetch := func(ctx context.Context, league string, year, week int) (map[string]interface{}, time.Time, error) {
		url := fmt.Sprintf("%s/odds/%s/%d/%d", cfg.BaseURL, league, year, week)
		data, err := httpGetJSON(ctx, cfg.httpClient(), url)
		return data, time.Now().UTC(), err
	}
	validate := func(data map[string]interface{}) bool {
		_, ok := data["spreads"]
		return ok
	}
	return NewAdapter("odds", fetch, validate, cfg.ConsecutiveFailures, cfg.RatePerSecond, cfg.Burst, cfg.timeout(), cfg.Retries)
}

// NewInjuryNewsAdapter fetches injury status updates and
// teammate-out notes used by the injury_opportunity signal.
func NewInjuryNewsAdapter(cfg AdapterConfig) *Adapter {
	fetch := func(ctx context.Context, league string, year, week int) (map[string]interface{}, time.Time, error) {
		url := fmt.Sprintf("%s/injuries/%s/%d/%d", cfg.BaseURL, league, year, week)
		data, err := httpGetJSON(ctx, cfg.httpClient(), url)
		return data, time.Now().UTC(), err
	}
	validate := func(data map[string]interface{}) bool {
		_, ok := data["statuses"]
		return ok
	}
	return NewAdapter("injury_news", fetch, validate, cfg.ConsecutiveFailures, cfg.RatePerSecond, cfg.Burst, cfg.timeout(), cfg.Retries)
}

// NewNextGenStatsAdapter fetches advanced tracking metrics: separation,
// snap share, target share, volatility index.
func NewNextGenStatsAdapter(cfg AdapterConfig) *Adapter {
	fetch := func(ctx context.Context, league string, year, week int) (map[string]interface{}, time.Time, error) {
		url := fmt.Sprintf("%s/nextgenstats/%s/%d/%d", cfg.BaseURL, league, year, week)
		data, err := httpGetJSON(ctx, cfg.httpClient(), url)
		return data, time.Now().UTC(), err
	}
	validate := func(data map[string]interface{}) bool {
		_, ok := data["players"]
		return ok
	}
	return NewAdapter("nextgenstats", fetch, validate, cfg.ConsecutiveFailures, cfg.RatePerSecond, cfg.Burst, cfg.timeout(), cfg.Retries)
}

// Registry resolves a feed name to its adapter.
type Registry struct {
	adapters map[string]*Adapter
}

// NewRegistry wires the five base feed adapters.
func NewRegistry(cfg AdapterConfig) *Registry {
	return &Registry{adapters: map[string]*Adapter{
		"weather":      NewWeatherAdapter(cfg),
		"market":       NewMarketAdapter(cfg),
		"odds":         NewOddsAdapter(cfg),
		"injury_news":  NewInjuryNewsAdapter(cfg),
		"nextgenstats": NewNextGenStatsAdapter(cfg),
	}}
}

func (r *Registry) Get(feedName string) (*Adapter, bool) {
	a, ok := r.adapters[feedName]
	return a, ok
}
