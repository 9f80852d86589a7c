package feeds

import (
	"context"
	"fmt"
	"time"

	"github.com/jstittsworth/ff-alpha-core/internal/domain"
	"github.com/jstittsworth/ff-alpha-core/pkg/utils"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// RawFetcher is the domain-specific network call an adapter wraps: it
// returns the normalized payload and the source's own timestamp.
type RawFetcher func(ctx context.Context, league string, year, week int) (map[string]interface{}, time.Time, error)

// SchemaValidator checks a raw payload against the feed's expected
// shape before it is trusted.
type SchemaValidator func(data map[string]interface{}) bool

// Adapter fetches one feed domain's envelope, protected by a circuit
// breaker and a rate limiter. A tripped breaker or an exhausted
// limiter is treated identically to FeedUnavailable.
type Adapter struct {
	Name      string
	fetch     RawFetcher
	validate  SchemaValidator
	breaker   *gobreaker.CircuitBreaker
	limiter   *rate.Limiter
	timeout   time.Duration
	retries   int
}

// NewAdapter builds an adapter named feedName around fetcher, gated by
// a circuit breaker (tripping after consecutiveFailures) and a token
// bucket limiter (ratePerSecond, burst).
func NewAdapter(feedName string, fetcher RawFetcher, validate SchemaValidator, consecutiveFailures int, ratePerSecond float64, burst int, timeout time.Duration, retries int) *Adapter {
	cbSettings := gobreaker.Settings{
		Name:    feedName,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(consecutiveFailures)
		},
	}
	return &Adapter{
		Name:     feedName,
		fetch:    fetcher,
		validate: validate,
		breaker:  gobreaker.NewCircuitBreaker(cbSettings),
		limiter:  rate.NewLimiter(rate.Limit(ratePerSecond), burst),
		timeout:  timeout,
		retries:  retries,
	}
}

// Fetch resolves a live envelope for (league, year, week), falling
// back to a neutral envelope on breaker-open, rate-limit exhaustion,
// timeout, fetch error, or schema validation failure — the provider
// must always receive a usable (if neutral) envelope.
func (a *Adapter) Fetch(ctx context.Context, league string, year, week int) domain.FeedEnvelope {
	if err := a.limiter.Wait(ctx); err != nil {
		return domain.NewNeutralEnvelope("feed_unavailable", fmt.Sprintf("%s: rate limited: %v", a.Name, err))
	}

	result, err := a.breaker.Execute(func() (interface{}, error) {
		return a.fetchWithRetries(ctx, league, year, week)
	})
	if err != nil {
		return domain.NewNeutralEnvelope("feed_unavailable", fmt.Sprintf("%s: %v", a.Name, err))
	}

	envelope := result.(domain.FeedEnvelope)
	if a.validate != nil && !a.validate(envelope.Data) {
		return domain.NewNeutralEnvelope("schema_invalid", fmt.Sprintf("%s: schema validation failed", a.Name))
	}
	return envelope
}

func (a *Adapter) fetchWithRetries(ctx context.Context, league string, year, week int) (domain.FeedEnvelope, error) {
	var lastErr error
	attempts := a.retries + 1
	for i := 0; i < attempts; i++ {
		callCtx, cancel := context.WithTimeout(ctx, a.timeout)
		data, sourceTimestamp, err := a.fetch(callCtx, league, year, week)
		cancel()
		if err == nil {
			return domain.FeedEnvelope{
				Data:            data,
				SourceTimestamp: sourceTimestamp,
				QualityFlags:    map[string]struct{}{},
				PublishTime:     time.Now().UTC(),
			}, nil
		}
		lastErr = err
	}
	return domain.FeedEnvelope{}, fmt.Errorf("%w: %v", utils.ErrFeedUnavailable, lastErr)
}
