// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package i18n

import (
	"time"

	"github.com/goodsign/monday"
	"golang.org/x/text/language"
)

// dateLayouts are the Go layouts of one language; monday translates the
// weekday and month names they produce.
type dateLayouts struct {
	locale    monday.Locale
	shortDate string
	fullDate  string
}

var (
	english = dateLayouts{locale: monday.LocaleEnUS, shortDate: "01/02/2006", fullDate: "Monday, January 2, 2006"}
	french  = dateLayouts{locale: monday.LocaleFrFR, shortDate: "02/01/2006", fullDate: "Monday 2 January 2006"}
)

// DateFormatter renders dates the way notification emails display them.
type DateFormatter struct {
	layouts   dateLayouts
	use24Hour bool
}

// NewDateFormatter returns a formatter for the language matched by locale.
func NewDateFormatter(locale string, use24Hour bool) DateFormatter {
	layouts := english
	if Match(locale) == language.French {
		layouts = french
	}
	return DateFormatter{layouts: layouts, use24Hour: use24Hour}
}

// ShortDate renders the numeric date, e.g. 01/31/2015 in English.
func (f DateFormatter) ShortDate(t time.Time) string {
	return t.Format(f.layouts.shortDate)
}

// Time renders the time of day, 15:04 or 3:04 PM.
func (f DateFormatter) Time(t time.Time) string {
	if f.use24Hour {
		return t.Format("15:04")
	}
	return t.Format("3:04 PM")
}

// FullDate renders weekday, day, month and year with localized names.
func (f DateFormatter) FullDate(t time.Time) string {
	return monday.Format(t, f.layouts.fullDate, f.layouts.locale)
}

// FullDateTime is FullDate followed by Time.
func (f DateFormatter) FullDateTime(t time.Time) string {
	return f.FullDate(t) + " " + f.Time(t)
}
