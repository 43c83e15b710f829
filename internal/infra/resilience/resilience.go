// Package resilience provides fault-tolerance patterns: circuit breaker,
// bulkhead, settle-all fan-out and manually retried operations.
// Nothing in this package retries on its own.
package resilience

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerConfig holds circuit breaker parameters.
type BreakerConfig struct {
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	// IsFailure decides which errors count against the breaker. Nil counts every error.
	IsFailure func(err error) bool
}

// DefaultBreakerConfig returns the breaker settings used when none are configured.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests: 3,                // half-open: allow 3 requests
		Interval:    30 * time.Second, // closed: reset counters every 30s
		Timeout:     10 * time.Second, // open -> half-open after 10s
	}
}

// NewCircuitBreaker creates a circuit breaker that trips at a 60% failure ratio over 5+ requests.
func NewCircuitBreaker(name string, cfg BreakerConfig, logger *zap.Logger) *gobreaker.CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}
	if cfg.IsFailure != nil {
		settings.IsSuccessful = func(err error) bool {
			return err == nil || !cfg.IsFailure(err)
		}
	}
	return gobreaker.NewCircuitBreaker(settings)
}

// Bulkhead limits concurrent access to a resource.
type Bulkhead struct {
	sem chan struct{}
}

// NewBulkhead creates a bulkhead with the given max concurrency.
func NewBulkhead(maxConcurrency int) *Bulkhead {
	return &Bulkhead{sem: make(chan struct{}, maxConcurrency)}
}

// Acquire blocks until a slot is available or context is cancelled.
func (b *Bulkhead) Acquire(ctx context.Context) error {
	select {
	case b.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a slot.
func (b *Bulkhead) Release() {
	<-b.sem
}
