// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package port

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/domain/model"
)

// TokenSigner issues and verifies participation link tokens.
type TokenSigner interface {
	Sign(ctx context.Context, payload model.ParticipationToken) (string, error)
	Verify(ctx context.Context, token string) (*model.ParticipationToken, error)
}
