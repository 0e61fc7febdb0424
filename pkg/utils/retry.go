// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package utils provides retry and telemetry helpers for the calendar service.
package utils

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// RetryConfig holds retry configuration for operations
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	// Retryable decides whether a failed attempt is tried again. A nil
	// Retryable retries every failure.
	Retryable func(error) bool
}

// NewRetryConfig creates a RetryConfig with specified parameters
func NewRetryConfig(maxAttempts int, baseDelay, maxDelay time.Duration) RetryConfig {
	return RetryConfig{
		MaxAttempts: maxAttempts,
		BaseDelay:   baseDelay,
		MaxDelay:    maxDelay,
	}
}

// WithRetryable returns a copy of c that only retries failures accepted by fn
func (c RetryConfig) WithRetryable(fn func(error) bool) RetryConfig {
	c.Retryable = fn
	return c
}

// backoff is the wait before the retry-th retry: BaseDelay * 2^(retry-1),
// capped at MaxDelay
func (c RetryConfig) backoff(retry int) time.Duration {
	delay := c.BaseDelay
	for i := 1; i < retry && delay < c.MaxDelay; i++ {
		delay *= 2
	}
	if c.MaxDelay > 0 && delay > c.MaxDelay {
		delay = c.MaxDelay
	}
	return delay
}

// RetryWithExponentialBackoff runs fn until it succeeds, fails with an error
// Retryable rejects, or MaxAttempts is reached. The last error of fn is
// returned unchanged so callers can still match its type.
func RetryWithExponentialBackoff(ctx context.Context, config RetryConfig, fn func() error) error {
	attempts := max(config.MaxAttempts, 1)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			delay := config.backoff(attempt - 1)
			slog.DebugContext(ctx, "retrying operation",
				"attempt", attempt,
				"total_attempts", attempts,
				"retry_delay_ms", delay.Milliseconds(),
			)

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return fmt.Errorf("retry cancelled: %w", ctx.Err())
			}
		}

		lastErr = fn()
		if lastErr == nil {
			if attempt > 1 {
				slog.InfoContext(ctx, "retry succeeded", "attempt", attempt)
			}
			return nil
		}

		if config.Retryable != nil && !config.Retryable(lastErr) {
			return lastErr
		}
		slog.WarnContext(ctx, "operation attempt failed",
			"attempt", attempt,
			"total_attempts", attempts,
			"error", lastErr,
		)
	}

	return lastErr
}
