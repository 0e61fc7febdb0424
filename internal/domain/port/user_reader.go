// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package port

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/domain/model"
)

// UserReader resolves platform users. Both methods return nil, nil when no
// user matches.
type UserReader interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Get(ctx context.Context, id string) (*model.User, error)
}

// UserSettingsReader reads the display preferences of a user.
type UserSettingsReader interface {
	DatetimeOptions(ctx context.Context, user *model.User) (*model.DatetimeOptions, error)
	Locale(ctx context.Context, user *model.User) (string, error)
}

// ResourceReader resolves bookable resources; nil, nil when not found.
type ResourceReader interface {
	Get(ctx context.Context, id string) (*model.Resource, error)
}

// BaseURLResolver returns the public URL of the platform as seen by user,
// which may be nil.
type BaseURLResolver interface {
	BaseURL(ctx context.Context, user *model.User) (string, error)
}
