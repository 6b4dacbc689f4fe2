package uploader

import (
	"math/rand"
	"time"
)

// Retry backoff defaults.
const (
	defaultInitialBackoff    = 250 * time.Millisecond
	defaultMaxBackoff        = 5 * time.Second
	defaultBackoffMultiplier = 2.0
	defaultJitterFactor      = 0.25
)

// backoff calculates exponential retry delays with jitter. One
// instance covers one Upload call's retry loop; it is not shared.
type backoff struct {
	current    time.Duration
	max        time.Duration
	multiplier float64
	jitter     float64
	rng        *rand.Rand
}

func newBackoff(initial, max time.Duration) *backoff {
	if initial <= 0 {
		initial = defaultInitialBackoff
	}
	if max <= 0 {
		max = defaultMaxBackoff
	}
	return &backoff{
		current:    initial,
		max:        max,
		multiplier: defaultBackoffMultiplier,
		jitter:     defaultJitterFactor,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// next returns the jittered delay before the next attempt and advances
// the base delay.
func (b *backoff) next() time.Duration {
	delay := b.current
	if b.jitter > 0 {
		delay += time.Duration(float64(delay) * b.jitter * b.rng.Float64())
	}

	advanced := time.Duration(float64(b.current) * b.multiplier)
	if advanced > b.max {
		advanced = b.max
	}
	b.current = advanced

	return delay
}
