package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetrier(opts ...Option) *Retrier {
	base := []Option{WithInitialDelay(time.Millisecond), WithMaxDelay(2 * time.Millisecond)}
	return New(append(base, opts...)...)
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := fastRetrier().Do(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesTransientErrors(t *testing.T) {
	transient := errors.New("serialization conflict")
	calls := 0
	err := fastRetrier(WithMaxAttempts(3)).Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return transient
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	transient := errors.New("still conflicting")
	calls := 0
	err := fastRetrier(WithMaxAttempts(3)).Do(context.Background(), func(ctx context.Context) error {
		calls++
		return transient
	})

	assert.ErrorIs(t, err, transient)
	assert.Equal(t, 3, calls)
}

func TestDoStopsOnPermanentError(t *testing.T) {
	inner := errors.New("constraint violated")
	calls := 0
	err := fastRetrier(WithMaxAttempts(5)).Do(context.Background(), func(ctx context.Context) error {
		calls++
		return Permanent(inner)
	})

	assert.Equal(t, inner, err, "the permanent wrapper is stripped on return")
	assert.Equal(t, 1, calls)
}

func TestDoRespectsRetryIf(t *testing.T) {
	retryable := errors.New("retry me")
	fatal := errors.New("do not retry")
	calls := 0
	err := fastRetrier(
		WithMaxAttempts(5),
		WithRetryIf(func(err error) bool { return errors.Is(err, retryable) }),
	).Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return retryable
		}
		return fatal
	})

	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, 2, calls)
}

func TestDoStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := fastRetrier().Do(ctx, func(ctx context.Context) error {
		calls++
		return nil
	})

	assert.Error(t, err)
	assert.Zero(t, calls)
}

func TestDoReportsRetries(t *testing.T) {
	transient := errors.New("conflict")
	var reported []int
	_ = fastRetrier(
		WithMaxAttempts(3),
		WithOnRetry(func(attempt int, err error, delay time.Duration) {
			reported = append(reported, attempt)
		}),
	).Do(context.Background(), func(ctx context.Context) error {
		return transient
	})

	assert.Equal(t, []int{1, 2}, reported, "the final attempt does not schedule a retry")
}

func TestPermanentNilIsNil(t *testing.T) {
	assert.NoError(t, Permanent(nil))
}

func TestDelayForIsBoundedAndGrows(t *testing.T) {
	r := New(WithInitialDelay(10*time.Millisecond), WithMaxDelay(100*time.Millisecond))

	first := r.delayFor(1)
	assert.InDelta(t, float64(10*time.Millisecond), float64(first), float64(2*time.Millisecond))

	deep := r.delayFor(10)
	assert.LessOrEqual(t, deep, 110*time.Millisecond, "capped at MaxDelay plus jitter")
}
