package recommend

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shoprec/internal/domain"
	"github.com/kailas-cloud/shoprec/internal/metrics"
)

// BreakerConfig controls the circuit breaker around snapshot reads.
type BreakerConfig struct {
	Name             string
	FailureThreshold uint32
	OpenTimeout      time.Duration
	MaxHalfOpen      uint32
}

// Breaker stops issuing snapshot reads while the store keeps failing.
type Breaker struct {
	cb   *gobreaker.CircuitBreaker[Snapshot]
	name string
}

// NewBreaker creates a snapshot circuit breaker.
func NewBreaker(cfg BreakerConfig, logger *zap.Logger) *Breaker {
	if cfg.Name == "" {
		cfg.Name = "snapshot"
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.MaxHalfOpen == 0 {
		cfg.MaxHalfOpen = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	b := &Breaker{name: cfg.Name}
	b.cb = gobreaker.NewCircuitBreaker[Snapshot](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxHalfOpen,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			// only store outages count as failures
			if err == nil || errors.Is(err, context.Canceled) {
				return true
			}
			return !errors.Is(err, domain.ErrDataUnavailable)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Snapshot breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			metrics.BreakerState.WithLabelValues(name).Set(float64(to))
		},
	})
	metrics.BreakerState.WithLabelValues(cfg.Name).Set(float64(gobreaker.StateClosed))
	return b
}

// Execute runs fn through the breaker. An open breaker yields domain.ErrCircuitOpen.
func (b *Breaker) Execute(fn func() (Snapshot, error)) (Snapshot, error) {
	snap, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return Snapshot{}, domain.ErrCircuitOpen
	}
	return snap, err //nolint:wrapcheck // fn errors pass through unchanged
}

// State returns the breaker state name.
func (b *Breaker) State() string { return b.cb.State().String() }
