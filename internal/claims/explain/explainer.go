package explain

import (
	"context"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/fortify/retry"

	"claimsight/internal/claims/metrics"
)

// GenerateFunc produces a fresh explanation on a cache miss.
type GenerateFunc func(ctx context.Context) (string, error)

// Explainer answers from the cache and retries generation on a miss.
type Explainer struct {
	cache        Cache
	attempts     int
	initialDelay time.Duration
	logger       *slog.Logger
	metrics      *metrics.Metrics
}

type Option func(*Explainer)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Explainer) {
		e.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Explainer) {
		e.metrics = m
	}
}

// WithRetry sets how many times generation is attempted and the first backoff.
func WithRetry(attempts int, initialDelay time.Duration) Option {
	return func(e *Explainer) {
		if attempts > 0 {
			e.attempts = attempts
		}
		if initialDelay > 0 {
			e.initialDelay = initialDelay
		}
	}
}

func New(cache Cache, opts ...Option) *Explainer {
	e := &Explainer{
		cache:        cache,
		attempts:     3,
		initialDelay: 500 * time.Millisecond,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Explain returns the cached explanation for key or generates one. Cache
// faults are logged and treated as misses.
func (e *Explainer) Explain(ctx context.Context, key string, generate GenerateFunc) (string, error) {
	cached, ok, err := e.cache.Get(ctx, key)
	if err != nil {
		e.logger.WarnContext(ctx, "explanation cache read failed", "key", key, "error", err)
	}
	if ok {
		e.metrics.IncrementCacheHit()
		return cached, nil
	}
	e.metrics.IncrementCacheMiss()

	r := retry.New[string](retry.Config{
		MaxAttempts:   e.attempts,
		InitialDelay:  e.initialDelay,
		BackoffPolicy: retry.BackoffExponential,
	})
	text, err := r.Do(ctx, func(ctx context.Context) (string, error) {
		return generate(ctx)
	})
	if err != nil {
		return "", err
	}

	if err := e.cache.Set(ctx, key, text); err != nil {
		e.logger.WarnContext(ctx, "explanation cache write failed", "key", key, "error", err)
	}
	return text, nil
}
