// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package errors

import "errors"

// retryable is implemented by every error type in this package. Only
// failures that may clear on their own, such as a lost ETag race or an
// unreachable CalDAV backend, report true.
type retryable interface {
	Retryable() bool
}

// Unexpected is a failure the service cannot classify: a malformed backend
// response or a broken invariant. Message handlers nak it.
type Unexpected struct {
	base
}

// Error returns the error message for Unexpected.
func (u Unexpected) Error() string {
	return u.error()
}

// NewUnexpected creates a new Unexpected error with the provided message.
func NewUnexpected(message string, err ...error) Unexpected {
	return Unexpected{
		base: base{
			message: message,
			err:     errors.Join(err...),
		},
	}
}

// ServiceUnavailable means a dependency (CalDAV, SMTP, NATS) did not answer
// or answered with a 5xx status.
type ServiceUnavailable struct {
	base
}

// Error returns the error message for ServiceUnavailable.
func (su ServiceUnavailable) Error() string {
	return su.error()
}

// Retryable reports true: the dependency may be back on the next attempt.
func (su ServiceUnavailable) Retryable() bool {
	return true
}

// NewServiceUnavailable creates a new ServiceUnavailable error with the provided message.
func NewServiceUnavailable(message string, err ...error) ServiceUnavailable {
	return ServiceUnavailable{
		base: base{
			message: message,
			err:     errors.Join(err...),
		},
	}
}

// IsRetryable reports whether a failure may succeed when the operation is
// attempted again. Only the first retryable error found in the chain counts,
// so a permanent error wrapping a transient cause is still permanent.
func IsRetryable(err error) bool {
	var r retryable
	if !errors.As(err, &r) {
		return false
	}
	return r.Retryable()
}
