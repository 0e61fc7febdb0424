// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package calendar

import (
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"
)

// Recurrence describes the RRULE of a recurring master event.
type Recurrence struct {
	Rule      string     `json:"rule"`
	Frequency string     `json:"frequency,omitempty"`
	Interval  int        `json:"interval,omitempty"`
	Count     int        `json:"count,omitempty"`
	Until     *time.Time `json:"until,omitempty"`
}

var frequencyNames = map[rrule.Frequency]string{
	rrule.YEARLY:   "YEARLY",
	rrule.MONTHLY:  "MONTHLY",
	rrule.WEEKLY:   "WEEKLY",
	rrule.DAILY:    "DAILY",
	rrule.HOURLY:   "HOURLY",
	rrule.MINUTELY: "MINUTELY",
	rrule.SECONDLY: "SECONDLY",
}

// ParseRecurrence reads the RRULE of event. ok is false when the event does
// not recur. A rule rrule-go cannot parse is still reported, with only Rule
// set.
func ParseRecurrence(event *ical.Component) (*Recurrence, bool) {
	rule := strings.TrimSpace(propValue(event, ical.PropRecurrenceRule))
	if rule == "" {
		return nil, false
	}

	recurrence := &Recurrence{Rule: rule}

	option, err := rrule.StrToROption(rule)
	if err != nil {
		return recurrence, true
	}

	recurrence.Frequency = frequencyNames[option.Freq]
	recurrence.Interval = option.Interval
	if recurrence.Interval == 0 {
		recurrence.Interval = 1
	}
	recurrence.Count = option.Count
	if !option.Until.IsZero() {
		until := option.Until.UTC()
		recurrence.Until = &until
	}

	return recurrence, true
}

// NextOccurrence returns the first start of event strictly after after,
// honoring RRULE and EXDATE. A non-recurring event only has its DTSTART.
func NextOccurrence(event *ical.Component, after time.Time) (time.Time, bool) {
	start, ok := ExtractDate(event.Props.Get(ical.PropDateTimeStart))
	if !ok {
		return time.Time{}, false
	}

	rule := strings.TrimSpace(propValue(event, ical.PropRecurrenceRule))
	if rule == "" {
		if start.Time().After(after) {
			return start.Time(), true
		}
		return time.Time{}, false
	}

	option, err := rrule.StrToROption(rule)
	if err != nil {
		return time.Time{}, false
	}
	option.Dtstart = start.Time()

	r, err := rrule.NewRRule(*option)
	if err != nil {
		return time.Time{}, false
	}

	set := rrule.Set{}
	set.RRule(r)
	for _, exdate := range exceptionDates(event, start) {
		set.ExDate(exdate)
	}

	next := set.After(after, false)
	if next.IsZero() {
		return time.Time{}, false
	}
	return next, true
}

// exceptionDates expands every EXDATE property, each possibly holding a
// comma separated list, using the zone rules of start.
func exceptionDates(event *ical.Component, start DateValue) []time.Time {
	var dates []time.Time
	for _, prop := range event.Props.Values(ical.PropExceptionDates) {
		for _, value := range strings.Split(prop.Value, ",") {
			single := ical.Prop{Name: prop.Name, Params: ical.Params{}, Value: strings.TrimSpace(value)}
			for name, values := range prop.Params {
				single.Params[name] = values
			}
			if single.Params.Get(ical.ParamTimezoneID) == "" && start.Kind == Zoned && !strings.HasSuffix(single.Value, "Z") {
				single.Params.Set(ical.ParamTimezoneID, start.TZID)
			}
			if date, ok := ExtractDate(&single); ok {
				dates = append(dates, date.Time())
			}
		}
	}
	return dates
}
