// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package port

import (
	"context"
	"time"

	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/domain/model"
)

// AlarmRepository persists scheduled alarms.
type AlarmRepository interface {
	Save(ctx context.Context, alarm *model.Alarm) error
	DeleteByEventPath(ctx context.Context, eventPath string) error
	// ListDue returns the waiting alarms due at or before now.
	ListDue(ctx context.Context, now time.Time) ([]*model.Alarm, error)
	UpdateState(ctx context.Context, alarm *model.Alarm, state string) error
}
