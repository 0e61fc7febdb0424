// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package calendar

import (
	"strings"
	"time"

	"github.com/emersion/go-ical"
)

// DateKind tags how a calendar date value is anchored in time.
type DateKind int

const (
	// DateOnly is a calendar date without time of day or zone.
	DateOnly DateKind = iota
	// UTC is an instant expressed in UTC.
	UTC
	// Zoned is a wall-clock time in a zone known to the zone database.
	Zoned
	// Floating is a wall-clock time not bound to any known zone. Unknown
	// TZIDs degrade to this kind instead of failing.
	Floating
)

const (
	dateLayout     = "20060102"
	dateTimeLayout = "20060102T150405"
	utcLayout      = "20060102T150405Z"
)

// DateValue is a normalized DTSTART/DTEND/RECURRENCE-ID value.
type DateValue struct {
	Kind DateKind
	// TZID is the zone name of a Zoned value, or the raw TZID parameter of a
	// Floating value whose zone could not be loaded.
	TZID string

	// t holds the instant for UTC/Zoned values and the wall clock, expressed
	// in UTC, for DateOnly/Floating values.
	t time.Time
}

// ExtractDate reads a date or date-time property. Zone problems never fail:
// an unknown TZID yields a Floating value. ok is false only when the
// property is absent or its text is not a date.
func ExtractDate(prop *ical.Prop) (DateValue, bool) {
	if prop == nil {
		return DateValue{}, false
	}
	value := strings.TrimSpace(prop.Value)

	if strings.EqualFold(prop.Params.Get(ical.ParamValue), "DATE") || len(value) == len(dateLayout) {
		t, err := time.Parse(dateLayout, value)
		if err != nil {
			return DateValue{}, false
		}
		return NewDate(t.Year(), t.Month(), t.Day()), true
	}

	if strings.HasSuffix(value, "Z") {
		t, err := time.Parse(utcLayout, value)
		if err != nil {
			return DateValue{}, false
		}
		return DateValue{Kind: UTC, t: t}, true
	}

	wall, err := time.Parse(dateTimeLayout, value)
	if err != nil {
		return DateValue{}, false
	}

	tzid := strings.TrimSpace(prop.Params.Get(ical.ParamTimezoneID))
	if tzid != "" {
		if loc, err := time.LoadLocation(tzid); err == nil {
			return DateValue{
				Kind: Zoned,
				TZID: tzid,
				t:    time.Date(wall.Year(), wall.Month(), wall.Day(), wall.Hour(), wall.Minute(), wall.Second(), 0, loc),
			}, true
		}
	}

	return DateValue{Kind: Floating, TZID: tzid, t: wall}, true
}

// NewDate builds a DateOnly value.
func NewDate(year int, month time.Month, day int) DateValue {
	return DateValue{Kind: DateOnly, t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// NewDateTime builds a value from a time.Time: UTC times become UTC values,
// times in a named location become Zoned, anything else Floating.
func NewDateTime(t time.Time) DateValue {
	loc := t.Location()
	switch {
	case loc == time.UTC:
		return DateValue{Kind: UTC, t: t}
	case loc != time.Local && loc.String() != "":
		return DateValue{Kind: Zoned, TZID: loc.String(), t: t}
	default:
		return DateValue{Kind: Floating, t: time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)}
	}
}

// IsDate reports whether the value has no time of day.
func (d DateValue) IsDate() bool {
	return d.Kind == DateOnly
}

// Time returns the instant of UTC/Zoned values and the wall clock, in UTC,
// of DateOnly/Floating values.
func (d DateValue) Time() time.Time {
	return d.t
}

// In anchors the value in loc. Instants are converted; dates and floating
// times keep their wall clock.
func (d DateValue) In(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	switch d.Kind {
	case UTC, Zoned:
		return d.t.In(loc)
	default:
		return time.Date(d.t.Year(), d.t.Month(), d.t.Day(), d.t.Hour(), d.t.Minute(), d.t.Second(), 0, loc)
	}
}

// TimezoneName is "" for dates and zoneless floating times, "UTC" for UTC
// values and the TZID otherwise, including unloadable ones such as Windows
// zone names.
func (d DateValue) TimezoneName() string {
	switch d.Kind {
	case UTC:
		return "UTC"
	case Zoned, Floating:
		return d.TZID
	default:
		return ""
	}
}

// AddDays moves the value by n calendar days, keeping its kind.
func (d DateValue) AddDays(n int) DateValue {
	d.t = d.t.AddDate(0, 0, n)
	return d
}

// Add moves the value by a fixed duration, keeping its kind.
func (d DateValue) Add(delta time.Duration) DateValue {
	d.t = d.t.Add(delta)
	return d
}

// DaysBetween is the whole number of days from start to end, truncated
// toward zero. Both values are read as wall clocks in the zone of start so
// that a DST transition does not shorten or lengthen a day.
func DaysBetween(start, end DateValue) int {
	loc := time.UTC
	if start.Kind == Zoned {
		loc = start.t.Location()
	}
	from, to := wallClock(start.In(loc)), wallClock(end.In(loc))
	return int(to.Sub(from).Hours() / 24)
}

func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}
