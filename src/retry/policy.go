package retry

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"stockstreamer/src/helpers"
	"stockstreamer/src/logger"
	"stockstreamer/src/models"
)

// DefaultMaxAttempts is used when a Policy leaves MaxAttempts unset.
const DefaultMaxAttempts = 5

// -----------------------------------------------------------------------------
// Backoff shapes
// -----------------------------------------------------------------------------

// Backoff returns the wait that follows failed attempt number attempt (1-based).
type Backoff interface {
	Delay(attempt int) time.Duration
	String() string
}

// GrowingBackoff starts at one Unit and multiplies the delay by the attempt
// index after every failure: 1, 2, 6, 24 ... units. Max caps it when set.
type GrowingBackoff struct {
	Unit time.Duration
	Max  time.Duration
}

func (b GrowingBackoff) Delay(attempt int) time.Duration {
	delay := b.Unit
	for i := 2; i <= attempt; i++ {
		delay *= time.Duration(i)
		if b.Max > 0 && delay >= b.Max {
			return b.Max
		}
	}
	if b.Max > 0 && delay > b.Max {
		return b.Max
	}
	return delay
}

func (b GrowingBackoff) String() string {
	return fmt.Sprintf("growing(unit=%s, max=%s)", b.Unit, b.Max)
}

// -----------------------------------------------------------------------------

// RandomBackoff draws every delay uniformly from [Min, Max].
type RandomBackoff struct {
	Min time.Duration
	Max time.Duration
}

func (b RandomBackoff) Delay(int) time.Duration {
	if b.Max <= b.Min {
		return b.Min
	}
	return b.Min + rand.N(b.Max-b.Min+1)
}

func (b RandomBackoff) String() string {
	return fmt.Sprintf("random(%s..%s)", b.Min, b.Max)
}

// -----------------------------------------------------------------------------

// FromConfig builds the backoff described by the retry section of the config.
func FromConfig(cfg models.MRetryConfig) Backoff {
	if cfg.Backoff == "random" {
		return RandomBackoff{
			Min: time.Duration(cfg.MinMs) * time.Millisecond,
			Max: time.Duration(cfg.MaxMs) * time.Millisecond,
		}
	}
	return GrowingBackoff{
		Unit: time.Duration(cfg.UnitMs) * time.Millisecond,
		Max:  time.Duration(cfg.MaxDelayMs) * time.Millisecond,
	}
}

// -----------------------------------------------------------------------------
// Policy
// -----------------------------------------------------------------------------

// Policy runs an operation up to MaxAttempts times. Every error is retried.
type Policy struct {
	MaxAttempts int
	Backoff     Backoff
	Logger      *logger.Logger
}

func NewPolicy(cfg models.MRetryConfig, log *logger.Logger) *Policy {
	return &Policy{
		MaxAttempts: cfg.MaxAttempts,
		Backoff:     FromConfig(cfg),
		Logger:      log,
	}
}

func (p *Policy) attempts() int {
	if p == nil || p.MaxAttempts <= 0 {
		return DefaultMaxAttempts
	}
	return p.MaxAttempts
}

// -----------------------------------------------------------------------------

// Execute calls fn until it succeeds or the attempts run out, in which case
// the result is a *helpers.RetryExhaustedError wrapping the last failure.
// Cancelling ctx interrupts the wait between attempts.
func Execute[T any](ctx context.Context, p *Policy, operation string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error
	maxAttempts := p.attempts()

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, interrupted(operation, err, lastErr)
		}

		res, err := fn(ctx)
		if err == nil {
			return res, nil
		}
		lastErr = err

		if attempt == maxAttempts {
			break
		}

		var delay time.Duration
		if p != nil && p.Backoff != nil {
			delay = p.Backoff.Delay(attempt)
		}
		if p != nil && p.Logger != nil {
			p.Logger.Warning("%s failed (attempt %d/%d): %v. Retrying in %v", operation, attempt, maxAttempts, err, delay)
		}

		if err := sleep(ctx, delay); err != nil {
			return zero, interrupted(operation, err, lastErr)
		}
	}

	return zero, helpers.NewRetryExhaustedError(operation, maxAttempts, lastErr)
}

// -----------------------------------------------------------------------------

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func interrupted(operation string, ctxErr, lastErr error) error {
	if lastErr == nil {
		return fmt.Errorf("%s: %w", operation, ctxErr)
	}
	return fmt.Errorf("%s: %w (last error: %w)", operation, ctxErr, lastErr)
}
