// Package backoff provides bounded exponential backoff with jitter for
// per-page fetch attempts. Retrying is opt-in and capped: a page that keeps
// failing becomes an error-tagged Record instead of blocking the run.
package backoff

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// Config bounds the retry loop.
type Config struct {
	// Attempts is the total number of tries including the first. Values
	// below 1 mean a single attempt.
	Attempts int

	// Initial is the delay before the first retry. Default 500ms.
	Initial time.Duration

	// Max caps the delay between attempts. Default 30s.
	Max time.Duration

	// Multiplier scales the delay after each attempt. Default 2.
	Multiplier float64

	// Jitter is the random fraction applied to each delay (0.25 = ±25%).
	Jitter float64
}

func (c Config) withDefaults() Config {
	if c.Attempts < 1 {
		c.Attempts = 1
	}
	if c.Initial <= 0 {
		c.Initial = 500 * time.Millisecond
	}
	if c.Max <= 0 {
		c.Max = 30 * time.Second
	}
	if c.Multiplier <= 0 {
		c.Multiplier = 2
	}
	if c.Jitter < 0 {
		c.Jitter = 0
	}
	return c
}

// Retry runs fn up to cfg.Attempts times, sleeping between attempts, and
// returns the first success. Non-retryable errors (per retryable) and
// context cancellation end the loop immediately with the last error.
func Retry[T any](ctx context.Context, cfg Config, retryable func(error) bool, fn func(ctx context.Context) (T, error)) (T, error) {
	cfg = cfg.withDefaults()

	var zero T
	var lastErr error
	for attempt := 0; attempt < cfg.Attempts; attempt++ {
		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}
		lastErr = err

		if ctx.Err() != nil || !retryable(err) || attempt >= cfg.Attempts-1 {
			break
		}

		timer := time.NewTimer(delay(attempt, cfg))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		case <-timer.C:
		}
	}
	return zero, lastErr
}

func delay(attempt int, cfg Config) time.Duration {
	d := float64(cfg.Initial) * math.Pow(cfg.Multiplier, float64(attempt))
	if d > float64(cfg.Max) {
		d = float64(cfg.Max)
	}
	if cfg.Jitter > 0 {
		d += (rand.Float64()*2 - 1) * d * cfg.Jitter
	}
	if d < 0 {
		d = 0
	}
	return time.Duration(d)
}
