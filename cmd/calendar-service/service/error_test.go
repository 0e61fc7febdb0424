// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/errors"
)

func TestWrapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"validation", errors.NewValidation("bad token"), http.StatusBadRequest},
		{"unauthorized", errors.NewUnauthorized("forged token"), http.StatusUnauthorized},
		{"not found", errors.NewNotFound("no event"), http.StatusNotFound},
		{"conflict", errors.NewConflict("etag mismatch"), http.StatusConflict},
		{"unavailable", errors.NewServiceUnavailable("nats down"), http.StatusServiceUnavailable},
		{"wrapped", fmt.Errorf("reply failed: %w", errors.NewNotFound("no event")), http.StatusNotFound},
		{"unknown", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			response := WrapError(context.Background(), tt.err)
			assert.Equal(t, tt.expected, response.Code)
			assert.Equal(t, tt.err.Error(), response.Error)
			assert.Nil(t, response.Result)
		})
	}
}
