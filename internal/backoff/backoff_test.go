package backoff

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient")

func always(error) bool { return true }
func never(error) bool  { return false }

func TestRetry_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	got, err := Retry(context.Background(), Config{Attempts: 3}, always,
		func(context.Context) (string, error) {
			calls++
			return "ok", nil
		})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 1, calls)
}

func TestRetry_RecoversAfterFailures(t *testing.T) {
	calls := 0
	got, err := Retry(context.Background(),
		Config{Attempts: 3, Initial: time.Millisecond}, always,
		func(context.Context) (int, error) {
			calls++
			if calls < 3 {
				return 0, errTransient
			}
			return 42, nil
		})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 3, calls)
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(),
		Config{Attempts: 4, Initial: time.Millisecond}, always,
		func(context.Context) (int, error) {
			calls++
			return 0, errTransient
		})
	require.ErrorIs(t, err, errTransient)
	assert.Equal(t, 4, calls)
}

func TestRetry_NonRetryableStopsImmediately(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(),
		Config{Attempts: 5, Initial: time.Millisecond}, never,
		func(context.Context) (int, error) {
			calls++
			return 0, errTransient
		})
	require.ErrorIs(t, err, errTransient)
	assert.Equal(t, 1, calls)
}

func TestRetry_CancellationStopsLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := Retry(ctx, Config{Attempts: 5, Initial: time.Millisecond}, always,
		func(context.Context) (int, error) {
			calls++
			cancel()
			return 0, errTransient
		})
	require.ErrorIs(t, err, errTransient)
	assert.Equal(t, 1, calls)
}

func TestRetry_ZeroConfigMeansSingleAttempt(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), Config{}, always,
		func(context.Context) (int, error) {
			calls++
			return 0, errTransient
		})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDelay_GrowthAndCap(t *testing.T) {
	cfg := Config{Initial: 100 * time.Millisecond, Max: time.Second, Multiplier: 2}.withDefaults()

	assert.Equal(t, 100*time.Millisecond, delay(0, cfg))
	assert.Equal(t, 200*time.Millisecond, delay(1, cfg))
	assert.Equal(t, 400*time.Millisecond, delay(2, cfg))
	assert.Equal(t, time.Second, delay(5, cfg))
}

func TestDelay_JitterStaysInBounds(t *testing.T) {
	cfg := Config{Initial: 100 * time.Millisecond, Jitter: 0.25}.withDefaults()
	for i := 0; i < 50; i++ {
		d := delay(0, cfg)
		assert.GreaterOrEqual(t, d, 75*time.Millisecond)
		assert.LessOrEqual(t, d, 125*time.Millisecond)
	}
}
