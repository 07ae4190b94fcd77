package steamcmd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffDelayGrowsExponentially(t *testing.T) {
	b := Backoff{MaxAttempts: 8, BaseDelay: 5 * time.Second, MaxDelay: 600 * time.Second}

	tests := []struct {
		attempt int
		minimum time.Duration
		maximum time.Duration
	}{
		{1, 5 * time.Second, 5*time.Second + 500*time.Millisecond},
		{2, 10 * time.Second, 11 * time.Second},
		{3, 20 * time.Second, 22 * time.Second},
		{7, 320 * time.Second, 325 * time.Second},
		// 5s * 2^7 = 640s exceeds the cap
		{8, 600 * time.Second, 605 * time.Second},
	}
	for _, tt := range tests {
		d := b.Delay(tt.attempt)
		assert.GreaterOrEqual(t, d, tt.minimum, "attempt %d", tt.attempt)
		assert.LessOrEqual(t, d, tt.maximum, "attempt %d", tt.attempt)
	}
}

func TestBackoffDelayJitterCapped(t *testing.T) {
	b := Backoff{MaxAttempts: 8, BaseDelay: 100 * time.Second, MaxDelay: 600 * time.Second}
	// delay/10 would be 10s; the jitter cap keeps it at 5s
	for i := 0; i < 50; i++ {
		d := b.Delay(1)
		assert.GreaterOrEqual(t, d, 100*time.Second)
		assert.LessOrEqual(t, d, 105*time.Second)
	}
}

func TestBackoffDelayClampsAttempt(t *testing.T) {
	b := Backoff{MaxAttempts: 8, BaseDelay: 5 * time.Second, MaxDelay: 600 * time.Second}
	assert.GreaterOrEqual(t, b.Delay(0), 5*time.Second)
	// huge attempt shifts past the int64 range; capped at MaxDelay
	assert.LessOrEqual(t, b.Delay(64), 605*time.Second)
}

func TestDefaultBackoff(t *testing.T) {
	b := DefaultBackoff()
	assert.Equal(t, 8, b.MaxAttempts)
	assert.Equal(t, 5*time.Second, b.BaseDelay)
	assert.Equal(t, 600*time.Second, b.MaxDelay)
}
