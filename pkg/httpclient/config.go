// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package httpclient

import "time"

// Config holds the retry and timeout settings of a Client
type Config struct {
	Timeout      time.Duration
	MaxRetries   int
	RetryDelay   time.Duration
	RetryBackoff bool
	MaxDelay     time.Duration
}

// DefaultConfig returns the settings used by the outbound HTTP integrations
func DefaultConfig() Config {
	return Config{
		Timeout:      30 * time.Second,
		MaxRetries:   2,
		RetryDelay:   1 * time.Second,
		RetryBackoff: true,
		MaxDelay:     30 * time.Second,
	}
}
