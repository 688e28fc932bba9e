package util

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// RetryConfig holds configuration for retry logic
type RetryConfig struct {
	MaxRetries      int
	BaseDelay       time.Duration
	MaxDelay        time.Duration
	ShouldRetryFunc func(error) bool
}

// DefaultRetryConfig retries nothing until ShouldRetryFunc is set
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 5,
		BaseDelay:  10 * time.Millisecond,
		MaxDelay:   1 * time.Second,
	}
}

// backoff returns the wait before the given attempt (attempt >= 1)
func (c RetryConfig) backoff(attempt int) time.Duration {
	delay := time.Duration(float64(c.BaseDelay) * math.Pow(2, float64(attempt-1)))
	if delay > c.MaxDelay {
		delay = c.MaxDelay
	}

	// Add jitter to prevent thundering herd
	jitter := time.Duration(rand.Float64() * float64(delay) * 0.1)
	return delay + jitter
}

// Retry implements exponential backoff retry logic with configurable error matching
func Retry(ctx context.Context, config RetryConfig, operation func() error) error {
	_, err := RetryValue(ctx, config, func() (struct{}, error) {
		return struct{}{}, operation()
	})
	return err
}

// RetryValue is Retry for operations that produce a result
func RetryValue[T any](ctx context.Context, config RetryConfig, operation func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(config.backoff(attempt)):
			}
		}

		value, err := operation()
		if err == nil {
			return value, nil
		}

		lastErr = err

		if config.ShouldRetryFunc != nil && config.ShouldRetryFunc(err) {
			continue
		}

		return zero, err
	}

	return zero, fmt.Errorf("operation failed after %d retries, last error: %w", config.MaxRetries, lastErr)
}
