// Package resilience wraps outbound HTTP calls to station feeds with a circuit
// breaker and bounded exponential-backoff retries, and tracks per-feed health.
package resilience

import (
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerConfig configures the circuit breaker guarding a feed.
type BreakerConfig struct {
	// Name identifies the breaker in state-change callbacks.
	Name string

	// MaxRequests allowed through while half-open. Default: 1.
	MaxRequests uint32

	// OpenTimeout is how long the breaker stays open before probing. Default: 60s.
	OpenTimeout time.Duration

	// ReadyToTrip decides when to open. Default: ShouldTrip.
	ReadyToTrip func(counts gobreaker.Counts) bool

	// OnStateChange is invoked on every transition, if set.
	OnStateChange func(name string, from, to gobreaker.State)
}

// ShouldTrip opens the breaker once five or more requests have been seen and
// at least half of them failed.
func ShouldTrip(counts gobreaker.Counts) bool {
	if counts.Requests < 5 {
		return false
	}
	return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.5
}

func newBreaker[T any](cfg BreakerConfig) *gobreaker.CircuitBreaker[T] {
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = 1
	}
	if cfg.OpenTimeout == 0 {
		cfg.OpenTimeout = 60 * time.Second
	}
	if cfg.ReadyToTrip == nil {
		cfg.ReadyToTrip = ShouldTrip
	}

	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:          cfg.Name,
		MaxRequests:   cfg.MaxRequests,
		Timeout:       cfg.OpenTimeout,
		ReadyToTrip:   cfg.ReadyToTrip,
		OnStateChange: cfg.OnStateChange,
	})
}
