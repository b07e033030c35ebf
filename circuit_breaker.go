package redis

import (
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/pior/redis/resp"
)

// CircuitBreaker guards a server against repeated failures. It is
// typed for the single pipeline execution used by ServerPool.
type CircuitBreaker = gobreaker.CircuitBreaker[*resp.Response]

// NewCircuitBreakerConfig returns a function that creates circuit
// breakers for servers. This is a helper for common use cases: the
// breaker opens once at least 3 requests were seen within the interval
// and 60% of them failed.
func NewCircuitBreakerConfig(maxRequests uint32, interval, timeout time.Duration) func(string) *CircuitBreaker {
	return func(serverAddr string) *CircuitBreaker {
		settings := gobreaker.Settings{
			Name:        serverAddr,
			MaxRequests: maxRequests,
			Interval:    interval,
			Timeout:     timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 3 && failureRatio >= 0.6
			},
		}
		return gobreaker.NewCircuitBreaker[*resp.Response](settings)
	}
}
