// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/calendar"
	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/domain/model"
	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/domain/port"
)

// displayOptions reads the locale and datetime preferences of user. A nil
// user renders with defaultLocale in UTC.
func displayOptions(ctx context.Context, settings port.UserSettingsReader, defaultLocale string, user *model.User) (calendar.RenderOptions, error) {
	options := calendar.RenderOptions{Locale: defaultLocale}
	if user == nil {
		return options, nil
	}

	datetime, err := settings.DatetimeOptions(ctx, user)
	if err != nil {
		return options, err
	}
	if datetime != nil {
		options.Timezone = datetime.TimeZone
		options.Use24Hour = datetime.Use24HourFormat
	}

	locale, err := settings.Locale(ctx, user)
	if err != nil {
		return options, err
	}
	if locale != "" {
		options.Locale = locale
	}

	return options, nil
}
