package retry

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"stockstreamer/src/helpers"
	"stockstreamer/src/logger"
	"stockstreamer/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingBackoff records how often the policy waited.
type countingBackoff struct {
	waits []int
	delay time.Duration
}

func (b *countingBackoff) Delay(attempt int) time.Duration {
	b.waits = append(b.waits, attempt)
	return b.delay
}

func (b *countingBackoff) String() string { return "counting" }

var errBoom = errors.New("boom")

func TestExecuteAlwaysFailingRunsMaxAttempts(t *testing.T) {
	backoff := &countingBackoff{}
	p := &Policy{MaxAttempts: 5, Backoff: backoff, Logger: logger.NewNop()}

	calls := 0
	_, err := Execute(context.Background(), p, "fetch price AAPL", func(context.Context) (int, error) {
		calls++
		return 0, errBoom
	})

	require.Error(t, err)
	assert.Equal(t, 5, calls)
	assert.Equal(t, []int{1, 2, 3, 4}, backoff.waits)

	var exhausted *helpers.RetryExhaustedError
	require.True(t, errors.As(err, &exhausted))
	assert.Equal(t, 5, exhausted.Attempts)
	assert.True(t, errors.Is(err, errBoom))
}

func TestExecuteSucceedsOnAttemptK(t *testing.T) {
	for k := 1; k <= 5; k++ {
		backoff := &countingBackoff{}
		p := &Policy{MaxAttempts: 5, Backoff: backoff, Logger: logger.NewNop()}

		calls := 0
		got, err := Execute(context.Background(), p, "op", func(context.Context) (string, error) {
			calls++
			if calls < k {
				return "", errBoom
			}
			return "ok", nil
		})

		require.NoError(t, err)
		assert.Equal(t, "ok", got)
		assert.Equal(t, k, calls)
		assert.Len(t, backoff.waits, k-1)
	}
}

func TestExecuteDefaultsToFiveAttempts(t *testing.T) {
	var calls atomic.Int32
	_, err := Execute(context.Background(), &Policy{}, "op", func(context.Context) (int, error) {
		calls.Add(1)
		return 0, errBoom
	})
	assert.True(t, helpers.IsRetryExhausted(err))
	assert.EqualValues(t, DefaultMaxAttempts, calls.Load())
}

func TestExecuteStopsWhenContextCancelledDuringWait(t *testing.T) {
	p := &Policy{MaxAttempts: 5, Backoff: GrowingBackoff{Unit: time.Hour}, Logger: logger.NewNop()}
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	done := make(chan error, 1)
	go func() {
		_, err := Execute(ctx, p, "op", func(context.Context) (int, error) {
			calls++
			return 0, errBoom
		})
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
		assert.True(t, errors.Is(err, errBoom))
		assert.False(t, helpers.IsRetryExhausted(err))
		assert.Equal(t, 1, calls)
	case <-time.After(2 * time.Second):
		t.Fatal("Execute did not observe cancellation")
	}
}

func TestExecuteDoesNotStartOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := Execute(ctx, &Policy{MaxAttempts: 3}, "op", func(context.Context) (int, error) {
		calls++
		return 1, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestGrowingBackoff(t *testing.T) {
	b := GrowingBackoff{Unit: time.Second}
	assert.Equal(t, 1*time.Second, b.Delay(1))
	assert.Equal(t, 2*time.Second, b.Delay(2))
	assert.Equal(t, 6*time.Second, b.Delay(3))
	assert.Equal(t, 24*time.Second, b.Delay(4))

	capped := GrowingBackoff{Unit: time.Second, Max: 5 * time.Second}
	assert.Equal(t, 5*time.Second, capped.Delay(4))
}

func TestRandomBackoffStaysInWindow(t *testing.T) {
	b := RandomBackoff{Min: 10 * time.Millisecond, Max: 20 * time.Millisecond}
	for i := 1; i <= 200; i++ {
		d := b.Delay(i)
		assert.GreaterOrEqual(t, d, b.Min)
		assert.LessOrEqual(t, d, b.Max)
	}
	assert.Equal(t, 7*time.Millisecond, RandomBackoff{Min: 7 * time.Millisecond, Max: 7 * time.Millisecond}.Delay(1))
}

func TestFromConfig(t *testing.T) {
	assert.Equal(t, RandomBackoff{Min: 100 * time.Millisecond, Max: 900 * time.Millisecond},
		FromConfig(models.MRetryConfig{Backoff: "random", MinMs: 100, MaxMs: 900}))
	assert.Equal(t, GrowingBackoff{Unit: time.Second},
		FromConfig(models.MRetryConfig{Backoff: "growing", UnitMs: 1000}))
}
