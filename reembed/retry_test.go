package reembed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryWithBackoff_FirstAttemptSucceeds(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(context.Background(), func() error {
		attempts++
		return nil
	}, 3, time.Millisecond)

	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRetryWithBackoff_SucceedsAfterRetries(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary error")
		}
		return nil
	}, 5, time.Millisecond)

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryWithBackoff_ReturnsLastError(t *testing.T) {
	attempts := 0
	lastErr := errors.New("persistent failure")
	err := RetryWithBackoff(context.Background(), func() error {
		attempts++
		return lastErr
	}, 3, time.Millisecond)

	require.ErrorIs(t, err, lastErr)
	assert.Equal(t, 3, attempts)
}

func TestRetryWithBackoff_InvalidMaxAttempts(t *testing.T) {
	err := RetryWithBackoff(context.Background(), func() error { return nil }, 0, time.Millisecond)
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)

	err = RetryWithBackoff(context.Background(), func() error { return nil }, -1, time.Millisecond)
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
}

func TestRetryWithBackoff_CancelledBeforeFirstAttempt(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := RetryWithBackoff(ctx, func() error {
		attempts++
		return nil
	}, 3, time.Millisecond)

	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, attempts)
}

func TestRetryWithBackoff_CancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	start := time.Now()
	err := RetryWithBackoff(ctx, func() error {
		attempts++
		cancel()
		return errors.New("fail")
	}, 3, time.Hour)

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
	assert.Less(t, time.Since(start), time.Second, "should not wait out the backoff")
}

func TestRetryWithBackoff_DelayDoubles(t *testing.T) {
	var gaps []time.Duration
	last := time.Now()

	_ = RetryWithBackoff(context.Background(), func() error {
		now := time.Now()
		gaps = append(gaps, now.Sub(last))
		last = now
		return errors.New("fail")
	}, 3, 20*time.Millisecond)

	require.Len(t, gaps, 3)
	// First gap is attempt overhead, the later ones include the 20ms
	// and 40ms backoffs.
	assert.GreaterOrEqual(t, gaps[1], 20*time.Millisecond)
	assert.GreaterOrEqual(t, gaps[2], 40*time.Millisecond)
}
