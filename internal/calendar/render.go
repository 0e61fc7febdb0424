// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package calendar

import (
	"strings"
	"time"

	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/constants"
	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/errors"
	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/i18n"
)

// RenderOptions are the display preferences of the user an email is
// rendered for.
type RenderOptions struct {
	Locale    string
	Timezone  string
	Use24Hour bool
}

// location resolves the preferred zone, UTC when unknown.
func (o RenderOptions) location() *time.Location {
	if o.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(o.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// RenderDate renders value in the zone, language and clock of opts. All-day
// values only carry date fields.
func RenderDate(value DateValue, allDay bool, opts RenderOptions) *DateContent {
	formatter := i18n.NewDateFormatter(opts.Locale, opts.Use24Hour)
	loc := opts.location()
	t := value.In(loc)

	if allDay || value.IsDate() {
		return &DateContent{
			Date:     formatter.ShortDate(t),
			FullDate: formatter.FullDate(t),
		}
	}

	return &DateContent{
		Date:         formatter.ShortDate(t),
		Time:         formatter.Time(t),
		Timezone:     loc.String(),
		FullDate:     formatter.FullDate(t),
		FullDateTime: formatter.FullDateTime(t),
	}
}

// RenderContent replaces the start and end of content with their localized
// rendering. content is modified in place.
func RenderContent(content *EventContent, opts RenderOptions) {
	if start, ok := content.StartValue(); ok {
		content.Start = RenderDate(start, content.AllDay, opts)
	}
	if end, ok := content.EndValue(); ok {
		content.End = RenderDate(end, content.AllDay, opts)
	}
}

// ParseChangeDate reads a previous start or end shipped with an update
// notification: a local time in timezone, or a date when allDay.
func ParseChangeDate(value string, allDay bool, timezone string) (DateValue, error) {
	wall, err := time.Parse(constants.ChangeDateFormat, strings.TrimSpace(value))
	if err != nil {
		return DateValue{}, errors.NewValidation("invalid change date", err)
	}

	if allDay {
		return NewDate(wall.Year(), wall.Month(), wall.Day()), nil
	}

	if timezone != "" {
		if loc, errLoad := time.LoadLocation(timezone); errLoad == nil {
			return NewDateTime(time.Date(wall.Year(), wall.Month(), wall.Day(),
				wall.Hour(), wall.Minute(), wall.Second(), 0, loc)), nil
		}
	}

	return DateValue{Kind: Floating, t: wall}, nil
}
