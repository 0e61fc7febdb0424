// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package config

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/domain/model"
	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/domain/port"
)

type staticBaseURL struct {
	url string
}

func (s staticBaseURL) BaseURL(ctx context.Context, user *model.User) (string, error) {
	return s.url, nil
}

// NewBaseURLResolver resolves every user to the configured base_url
func NewBaseURLResolver(cfg *Config) port.BaseURLResolver {
	return staticBaseURL{url: cfg.BaseURL}
}

// settingsWithDefaults fills the datetime options a user never set
type settingsWithDefaults struct {
	next     port.UserSettingsReader
	defaults model.DatetimeOptions
}

func (s settingsWithDefaults) DatetimeOptions(ctx context.Context, user *model.User) (*model.DatetimeOptions, error) {
	options, err := s.next.DatetimeOptions(ctx, user)
	if err != nil {
		return nil, err
	}
	if options == nil {
		defaults := s.defaults
		return &defaults, nil
	}
	if options.TimeZone == "" {
		options.TimeZone = s.defaults.TimeZone
	}
	return options, nil
}

func (s settingsWithDefaults) Locale(ctx context.Context, user *model.User) (string, error) {
	return s.next.Locale(ctx, user)
}

// WithDatetimeDefaults decorates next with default_timezone and use_24hour_format
func WithDatetimeDefaults(next port.UserSettingsReader, cfg *Config) port.UserSettingsReader {
	return settingsWithDefaults{
		next: next,
		defaults: model.DatetimeOptions{
			TimeZone:        cfg.DefaultTimezone,
			Use24HourFormat: cfg.Use24HourFormat,
		},
	}
}
