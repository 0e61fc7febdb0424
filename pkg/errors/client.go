// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package errors

import "errors"

// Validation represents a validation error in the application.
type Validation struct {
	base
}

// Error returns the error message for Validation.
func (v Validation) Error() string {
	return v.error()
}

// NewValidation creates a new Validation error with the provided message.
func NewValidation(message string, err ...error) Validation {
	return Validation{
		base: base{
			message: message,
			err:     errors.Join(err...),
		},
	}
}

// NotFound represents a not found error in the application.
type NotFound struct {
	base
}

// Error returns the error message for NotFound.
func (nf NotFound) Error() string {
	return nf.error()
}

// NewNotFound creates a new NotFound error with the provided message.
func NewNotFound(message string, err ...error) NotFound {
	return NotFound{
		base: base{
			message: message,
			err:     errors.Join(err...),
		},
	}
}

// Conflict represents a write that lost an optimistic concurrency check,
// e.g. a stale ETag or KV revision.
type Conflict struct {
	base
}

// Error returns the error message for Conflict.
func (c Conflict) Error() string {
	return c.error()
}

// Retryable reports true: a fresh read gives a new ETag to write against.
func (c Conflict) Retryable() bool {
	return true
}

// NewConflict creates a new Conflict error with the provided message.
func NewConflict(message string, err ...error) Conflict {
	return Conflict{
		base: base{
			message: message,
			err:     errors.Join(err...),
		},
	}
}

// Unauthorized represents a rejected credential, such as an invalid or
// expired participation token.
type Unauthorized struct {
	base
}

// Error returns the error message for Unauthorized.
func (u Unauthorized) Error() string {
	return u.error()
}

// NewUnauthorized creates a new Unauthorized error with the provided message.
func NewUnauthorized(message string, err ...error) Unauthorized {
	return Unauthorized{
		base: base{
			message: message,
			err:     errors.Join(err...),
		},
	}
}

// Skipped is a definitive no-op outcome: nothing had to be done and retrying
// will not change that. Message handlers acknowledge it instead of failing.
type Skipped struct {
	base
}

// Error returns the error message for Skipped.
func (s Skipped) Error() string {
	return s.error()
}

// NewSkipped creates a new Skipped error with the provided message.
func NewSkipped(message string, err ...error) Skipped {
	return Skipped{
		base: base{
			message: message,
			err:     errors.Join(err...),
		},
	}
}

// IsSkipped reports whether err, or any error it wraps, is a Skipped error.
func IsSkipped(err error) bool {
	var skipped Skipped
	return errors.As(err, &skipped)
}
