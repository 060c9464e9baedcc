// Package circuitbreaker fails fast on unhealthy dependencies, built on
// github.com/sony/gobreaker.
package circuitbreaker

import (
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

type Config struct {
	Name string

	// MaxRequests limits probes while half-open.
	MaxRequests uint32

	// Interval clears the closed-state counts periodically.
	Interval time.Duration

	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration

	// FailureThreshold is the failure ratio that trips the breaker,
	// evaluated only once MinRequests calls have been counted.
	FailureThreshold float64
	MinRequests      uint32
}

func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

func ClaudeAPIConfig() Config {
	return DefaultConfig("claude-api")
}

func OpenAIAPIConfig() Config {
	return DefaultConfig("openai-api")
}

// SEODataAPIConfig tolerates a higher failure ratio before tripping,
// the metrics provider throttles aggressively and recovers slowly.
func SEODataAPIConfig() Config {
	return Config{
		Name:             "seodata-api",
		MaxRequests:      5,
		Interval:         60 * time.Second,
		Timeout:          120 * time.Second,
		FailureThreshold: 0.7,
		MinRequests:      10,
	}
}

// SerpFetchConfig trips only at a very high failure ratio because
// arbitrary competitor sites fail in arbitrary ways.
func SerpFetchConfig() Config {
	cfg := DefaultConfig("serp-fetch")
	cfg.Interval = 60 * time.Second
	cfg.Timeout = 120 * time.Second
	cfg.FailureThreshold = 0.8
	return cfg
}

// PublisherConfig covers CMS publish calls.
func PublisherConfig() Config {
	cfg := DefaultConfig("cms-publish")
	cfg.Interval = 60 * time.Second
	return cfg
}

// CircuitBreaker wraps gobreaker with ratio-based tripping and state
// change logging.
type CircuitBreaker struct {
	breaker *gobreaker.CircuitBreaker
	name    string
}

func New(cfg Config) *CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			slog.Warn("circuit breaker state changed",
				slog.String("circuit", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	}

	return &CircuitBreaker{
		breaker: gobreaker.NewCircuitBreaker(settings),
		name:    cfg.Name,
	}
}

// Execute runs fn through the breaker; an open circuit returns
// gobreaker.ErrOpenState without calling fn.
func (cb *CircuitBreaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	return cb.breaker.Execute(fn)
}

func (cb *CircuitBreaker) State() gobreaker.State {
	return cb.breaker.State()
}

func (cb *CircuitBreaker) Name() string {
	return cb.name
}

func (cb *CircuitBreaker) IsOpen() bool {
	return cb.breaker.State() == gobreaker.StateOpen
}
