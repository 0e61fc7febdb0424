// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"

	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/domain/model"
	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/errors"
)

// WrapError converts a request failure into the reply sent back to the caller
func WrapError(ctx context.Context, err error) *model.ReplyResponse {
	slog.ErrorContext(ctx, "request failed", "error", err)

	var (
		validation   errors.Validation
		unauthorized errors.Unauthorized
		notFound     errors.NotFound
		conflict     errors.Conflict
		unavailable  errors.ServiceUnavailable
	)

	code := http.StatusInternalServerError
	switch {
	case stderrors.As(err, &validation):
		code = http.StatusBadRequest
	case stderrors.As(err, &unauthorized):
		code = http.StatusUnauthorized
	case stderrors.As(err, &notFound):
		code = http.StatusNotFound
	case stderrors.As(err, &conflict):
		code = http.StatusConflict
	case stderrors.As(err, &unavailable):
		code = http.StatusServiceUnavailable
	}

	return &model.ReplyResponse{Code: code, Error: err.Error()}
}
