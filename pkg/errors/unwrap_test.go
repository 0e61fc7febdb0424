// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestUnwrap(t *testing.T) {
	rootCause := errors.New("ics payload is empty")

	validationErr := NewValidation("validation failed", rootCause)

	unwrapped := validationErr.Unwrap()
	if unwrapped == nil {
		t.Error("Expected unwrapped error to not be nil")
	}

	// errors.Join keeps the root cause reachable
	if !errors.Is(validationErr, rootCause) {
		t.Error("errors.Is should find the root cause in the wrapped error")
	}

	simpleErr := NewValidation("simple error")
	if simpleErr.Unwrap() != nil {
		t.Error("Expected Unwrap to return nil for error with no wrapped cause")
	}
}

func TestUnwrapWithDifferentErrorTypes(t *testing.T) {
	rootCause := errors.New("nats: timeout")

	testCases := []struct {
		name string
		err  error
	}{
		{"Validation", NewValidation("validation error", rootCause)},
		{"NotFound", NewNotFound("not found error", rootCause)},
		{"Conflict", NewConflict("revision mismatch", rootCause)},
		{"Unauthorized", NewUnauthorized("invalid token", rootCause)},
		{"Skipped", NewSkipped("nothing to send", rootCause)},
		{"Unexpected", NewUnexpected("unexpected error", rootCause)},
		{"ServiceUnavailable", NewServiceUnavailable("service unavailable", rootCause)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if !errors.Is(tc.err, rootCause) {
				t.Errorf("errors.Is should find root cause in %s error", tc.name)
			}

			type unwrapper interface {
				Unwrap() error
			}

			u, ok := tc.err.(unwrapper)
			if !ok {
				t.Fatalf("%s error should implement Unwrap()", tc.name)
			}
			if !errors.Is(u.Unwrap(), rootCause) {
				t.Errorf("errors.Is should find root cause in unwrapped %s error", tc.name)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := NewServiceUnavailable("failed to publish message", errors.New("connection closed"))
	if got, want := err.Error(), "failed to publish message: connection closed"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	plain := NewNotFound("calendar object not found")
	if got, want := plain.Error(), "calendar object not found"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestIsSkipped(t *testing.T) {
	skipped := NewSkipped("The recipient is not involved in the event")

	if !IsSkipped(skipped) {
		t.Error("expected a Skipped error to be reported as skipped")
	}
	if !IsSkipped(fmt.Errorf("routing: %w", skipped)) {
		t.Error("expected a wrapped Skipped error to be reported as skipped")
	}
	if IsSkipped(NewValidation("The ics must be a string")) {
		t.Error("a Validation error is not skipped")
	}
	if IsSkipped(nil) {
		t.Error("nil is not skipped")
	}
}

func TestIsRetryable(t *testing.T) {
	stale := NewConflict("etag mismatch")

	testCases := []struct {
		name string
		err  error
		want bool
	}{
		{"Conflict", stale, true},
		{"ServiceUnavailable", NewServiceUnavailable("caldav returned 503"), true},
		{"wrapped Conflict", fmt.Errorf("put calendar object: %w", stale), true},
		{"NotFound", NewNotFound("calendar object not found"), false},
		{"Validation", NewValidation("malformed ics"), false},
		{"Unexpected", NewUnexpected("unexpected response"), false},
		{"NotFound caused by a Conflict", NewNotFound("event deleted while retrying", stale), false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsRetryable(tc.err); got != tc.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
