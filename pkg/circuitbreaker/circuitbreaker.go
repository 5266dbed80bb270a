package circuitbreaker

import (
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// Config tunes when a breaker trips.
type Config struct {
	// MinRequests is the number of requests, counted since the last reset,
	// below which the breaker never trips.
	MinRequests uint32
	// FailingRatio is the share of failed requests that trips the breaker.
	FailingRatio float64
	// OpenTimeout is how long the breaker stays open before letting a trial
	// request through. Zero means gobreaker's default of 60 seconds.
	OpenTimeout time.Duration
}

// DefaultConfig trips after more than 10 requests with at least 60% of
// them failed.
var DefaultConfig = Config{
	MinRequests:  11,
	FailingRatio: 0.6,
}

// New returns a named breaker configured with cfg. State changes are logged
// at debug level.
func New(name string, cfg Config) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: readyToTrip(cfg),
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Debugf("circuit breaker %s: %s -> %s", name, from, to)
		},
	})
}

func readyToTrip(cfg Config) func(counts gobreaker.Counts) bool {
	return func(counts gobreaker.Counts) bool {
		if counts.Requests < cfg.MinRequests || counts.Requests == 0 {
			return false
		}
		ratio := float64(counts.TotalFailures) / float64(counts.Requests)
		return ratio >= cfg.FailingRatio
	}
}
