package steamcmd

import (
	"math/rand"
	"time"
)

// Backoff computes exponential retry delays with a small random jitter
// so parallel instances hitting the same rate limit do not retry in
// lockstep.
type Backoff struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultBackoff matches the launcher's SteamCMD retry policy:
// 8 attempts, 5s base, capped at 10 minutes.
func DefaultBackoff() Backoff {
	return Backoff{
		MaxAttempts: 8,
		BaseDelay:   5 * time.Second,
		MaxDelay:    600 * time.Second,
	}
}

// Delay returns the sleep before retry number attempt (1-based):
// min(MaxDelay, BaseDelay * 2^(attempt-1)) plus up to 10% jitter,
// with the jitter itself capped at 5 seconds.
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := b.BaseDelay << uint(attempt-1)
	if delay > b.MaxDelay || delay <= 0 {
		delay = b.MaxDelay
	}
	maxJitter := delay / 10
	if maxJitter > 5*time.Second {
		maxJitter = 5 * time.Second
	}
	if maxJitter > 0 {
		delay += time.Duration(rand.Int63n(int64(maxJitter)))
	}
	return delay
}
