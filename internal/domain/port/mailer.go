// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package port

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/domain/model"
)

// Mailer hands a composed message to the mail transport.
type Mailer interface {
	Send(ctx context.Context, message *model.EmailMessage) error
}
