package retry

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/givehub/payments/internal/pkg/logger"
	"github.com/givehub/payments/internal/pkg/payerrors"
)

// RetryableFunc represents a function that can be retried
type RetryableFunc func(ctx context.Context) error

// Config holds retry configuration
type Config struct {
	MaxAttempts   int              // Total attempts including the first call
	BaseDelay     time.Duration    // Base delay between attempts
	MaxDelay      time.Duration    // Upper bound on a single delay
	Multiplier    float64          // Exponential backoff multiplier
	Jitter        bool             // Randomize delays to avoid retry storms
	RetryableFunc func(error) bool // Determines whether an error is retryable
}

// DefaultConfig returns the default retry configuration: 3 attempts with
// exponential backoff and jitter, retrying only transient processor errors.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:   3,
		BaseDelay:     100 * time.Millisecond,
		MaxDelay:      10 * time.Second,
		Multiplier:    2.0,
		Jitter:        true,
		RetryableFunc: payerrors.IsRetryable,
	}
}

// Retrier handles retry logic with exponential backoff
type Retrier struct {
	config Config
	logger *logger.ZapLogger
}

// New creates a new retrier with the given configuration
func New(config Config, l *logger.ZapLogger) *Retrier {
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	if config.RetryableFunc == nil {
		config.RetryableFunc = payerrors.IsRetryable
	}
	return &Retrier{
		config: config,
		logger: l,
	}
}

// NewWithDefaults creates a new retrier with default configuration
func NewWithDefaults(l *logger.ZapLogger) *Retrier {
	return New(DefaultConfig(), l)
}

// Execute runs fn until it succeeds, exhausts the attempt budget, or fails
// with a non-retryable error. The attempt count actually consumed is
// returned alongside the final error so callers can audit it.
func (r *Retrier) Execute(ctx context.Context, fn RetryableFunc) (int, error) {
	var lastErr error
	attempts := 0

	for attempt := 0; attempt < r.config.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return attempts, ctx.Err()
		default:
		}

		attempts++
		err := fn(ctx)
		if err == nil {
			if attempt > 0 {
				r.logger.Info("Call succeeded after retries",
					logger.Int("attempts", attempts))
			}
			return attempts, nil
		}

		lastErr = err

		if !r.config.RetryableFunc(err) {
			// Validation, security and business declines propagate
			// immediately without consuming the retry budget.
			return attempts, err
		}

		if attempt == r.config.MaxAttempts-1 {
			break
		}

		delay := r.calculateDelay(attempt)
		r.logger.Debug("Call failed, retrying",
			logger.Err(err),
			logger.Int("attempt", attempts),
			logger.Duration("delay", delay),
			logger.Int("max_attempts", r.config.MaxAttempts))

		select {
		case <-ctx.Done():
			return attempts, ctx.Err()
		case <-time.After(delay):
		}
	}

	r.logger.Error("Call failed after all retries",
		logger.Err(lastErr),
		logger.Int("attempts", attempts))

	return attempts, fmt.Errorf("retry limit exceeded after %d attempts: %w", attempts, lastErr)
}

// calculateDelay computes the backoff for the given zero-based attempt.
func (r *Retrier) calculateDelay(attempt int) time.Duration {
	delay := float64(r.config.BaseDelay) * math.Pow(r.config.Multiplier, float64(attempt))

	if r.config.MaxDelay > 0 && delay > float64(r.config.MaxDelay) {
		delay = float64(r.config.MaxDelay)
	}

	if r.config.Jitter {
		// Up to 10% random jitter
		delay += delay * 0.1 * rand.Float64()
	}

	return time.Duration(delay)
}
