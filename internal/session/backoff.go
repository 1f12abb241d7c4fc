package session

import (
	"math"
	"time"
)

// BackoffDelay returns the reconnect delay for attempt N (1-based):
// base * 2^(N-1), capped at max. Delays are deterministic so successive
// attempts never wait less than the previous one.
func BackoffDelay(base, max time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	if attempt <= 1 {
		return base
	}
	delay := float64(base) * math.Pow(2, float64(attempt-1))
	if max > 0 && delay > float64(max) {
		return max
	}
	return time.Duration(delay)
}
