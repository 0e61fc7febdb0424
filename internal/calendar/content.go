// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package calendar

import (
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/samber/mo"

	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/constants"
	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/errors"
)

const (
	contentDateLayout = "01/02/2006"
	contentTimeLayout = "3:04 PM"
	avatarPath        = "api/avatars?objectType=user&email="
)

// EventContent is the flat view of an event used by emails and the search
// index.
type EventContent struct {
	Method                  string         `json:"method,omitempty"`
	UID                     string         `json:"uid"`
	Sequence                int            `json:"sequence"`
	Summary                 string         `json:"summary"`
	Location                string         `json:"location"`
	IsLocationAValidURL     bool           `json:"isLocationAValidURL"`
	IsLocationAnAbsoluteURL bool           `json:"isLocationAnAbsoluteURL"`
	Description             string         `json:"description"`
	Class                   string         `json:"class"`
	Start                   *DateContent   `json:"start,omitempty"`
	End                     *DateContent   `json:"end,omitempty"`
	AllDay                  bool           `json:"allDay"`
	DurationInDays          mo.Option[int] `json:"durationInDays"`
	Attendees               Attendees      `json:"attendees"`
	Resources               Attendees      `json:"resources"`
	HasResources            bool           `json:"hasResources"`
	Organizer               *Organizer     `json:"organizer,omitempty"`
	Alarm                   *Alarm         `json:"alarm,omitempty"`
	Comment                 string         `json:"comment,omitempty"`
	Recurring               bool           `json:"recurring"`
	Recurrence              *Recurrence    `json:"recurrence,omitempty"`

	startValue *DateValue
	endValue   *DateValue
}

// DateContent is a rendered start or end. Time and Timezone are empty for
// all-day events; FullDate and FullDateTime are only set by localized
// rendering.
type DateContent struct {
	Date         string `json:"date"`
	Time         string `json:"time,omitempty"`
	Timezone     string `json:"timezone,omitempty"`
	FullDateTime string `json:"fullDateTime,omitempty"`
	FullDate     string `json:"fullDate,omitempty"`
}

// Organizer of an event.
type Organizer struct {
	CommonName string `json:"cn,omitempty"`
	Email      string `json:"email"`
	Avatar     string `json:"avatar"`
}

// Alarm is the first VALARM of an event.
type Alarm struct {
	Action         string    `json:"action"`
	Trigger        string    `json:"trigger"`
	Description    string    `json:"description,omitempty"`
	Summary        string    `json:"summary,omitempty"`
	AlarmDueDate   time.Time `json:"alarmDueDate"`
	TriggerDisplay string    `json:"triggerDisplay"`
	// Attendee and Email are only set on EMAIL alarms.
	Attendee string `json:"attendee,omitempty"`
	Email    string `json:"email,omitempty"`
}

// StartValue returns the normalized DTSTART.
func (c *EventContent) StartValue() (DateValue, bool) {
	if c.startValue == nil {
		return DateValue{}, false
	}
	return *c.startValue, true
}

// EndValue returns the normalized end as displayed: inclusive for all-day
// events.
func (c *EventContent) EndValue() (DateValue, bool) {
	if c.endValue == nil {
		return DateValue{}, false
	}
	return *c.endValue, true
}

// BuildContent flattens the master event of obj. baseURL prefixes the
// organizer avatar link.
func BuildContent(obj *Object, baseURL string) (*EventContent, error) {
	if obj == nil {
		return nil, errors.NewValidation("calendar object is required")
	}
	return BuildEventContent(obj.Method(), obj.Master(), baseURL)
}

// BuildEventContent flattens one VEVENT; method is the iTIP method of its
// container.
func BuildEventContent(method string, event *ical.Component, baseURL string) (*EventContent, error) {
	if event == nil {
		return nil, errors.NewValidation("calendar object has no VEVENT")
	}

	humans, resources := ExtractAttendees(event)
	content := &EventContent{
		Method:         method,
		UID:            propValue(event, ical.PropUID),
		Sequence:       sequence(event),
		Summary:        textValue(event, ical.PropSummary),
		Location:       textValue(event, ical.PropLocation),
		Description:    textValue(event, ical.PropDescription),
		Class:          propValue(event, ical.PropClass),
		DurationInDays: mo.None[int](),
		Attendees:      humans,
		Resources:      resources,
		HasResources:   len(resources) > 0,
		Comment:        textValue(event, ical.PropComment),
	}
	content.IsLocationAValidURL = IsValidURL(content.Location)
	content.IsLocationAnAbsoluteURL = IsAbsoluteURL(content.Location)

	start, hasStart := ExtractDate(event.Props.Get(ical.PropDateTimeStart))
	end, hasEnd := eventEnd(event, start, hasStart)

	if hasStart && hasEnd {
		content.DurationInDays = mo.Some(DaysBetween(start, end))
	}

	if hasStart {
		content.AllDay = start.IsDate()
		content.startValue = &start
		content.Start = formatContentDate(start, start.TimezoneName(), content.AllDay)
	}

	if hasEnd {
		// exclusive DTEND of all-day events is displayed inclusive
		displayed := end
		if content.AllDay {
			displayed = end.AddDays(-1)
		}
		content.endValue = &displayed

		timezone := end.TimezoneName()
		if timezone == "" && hasStart {
			timezone = start.TimezoneName()
		}
		content.End = formatContentDate(displayed, timezone, content.AllDay)
	}

	if organizer := event.Props.Get(ical.PropOrganizer); organizer != nil {
		email := StripMailto(organizer.Value)
		content.Organizer = &Organizer{
			CommonName: organizer.Params.Get(ical.ParamCommonName),
			Email:      email,
			Avatar:     joinURL(baseURL, avatarPath+email),
		}
	}

	if valarm := firstChild(event, ical.CompAlarm); valarm != nil && hasStart {
		content.Alarm = buildAlarm(valarm, start, end, hasEnd)
	}

	if recurrence, ok := ParseRecurrence(event); ok {
		content.Recurring = true
		content.Recurrence = recurrence
	}

	return content, nil
}

// eventEnd resolves DTEND, falling back to DTSTART + DURATION.
func eventEnd(event *ical.Component, start DateValue, hasStart bool) (DateValue, bool) {
	if end, ok := ExtractDate(event.Props.Get(ical.PropDateTimeEnd)); ok {
		return end, true
	}

	prop := event.Props.Get(ical.PropDuration)
	if prop == nil || !hasStart {
		return DateValue{}, false
	}
	duration, err := prop.Duration()
	if err != nil {
		return DateValue{}, false
	}
	if start.IsDate() && duration%(24*time.Hour) == 0 {
		return start.AddDays(int(duration / (24 * time.Hour))), true
	}
	return start.Add(duration), true
}

func buildAlarm(valarm *ical.Component, start, end DateValue, hasEnd bool) *Alarm {
	action := propValue(valarm, ical.PropAction)
	trigger := valarm.Props.Get(ical.PropTrigger)

	alarm := &Alarm{
		Action:      action,
		Description: textValue(valarm, ical.PropDescription),
		Summary:     textValue(valarm, ical.PropSummary),
	}

	anchor := start
	if trigger != nil && strings.EqualFold(trigger.Params.Get(ical.ParamRelated), "END") && hasEnd {
		anchor = end
	}

	if trigger != nil {
		alarm.Trigger = trigger.Value

		if strings.EqualFold(trigger.Params.Get(ical.ParamValue), "DATE-TIME") {
			if due, ok := ExtractDate(trigger); ok {
				alarm.AlarmDueDate = due.Time()
				alarm.TriggerDisplay = HumanizeDuration(due.Time().Sub(anchor.Time()))
			}
		} else if offset, err := trigger.Duration(); err == nil {
			alarm.AlarmDueDate = anchor.Add(offset).Time()
			alarm.TriggerDisplay = HumanizeDuration(offset)
		}
	}

	if action == constants.AlarmActionEmail {
		attendee := propValue(valarm, ical.PropAttendee)
		alarm.Attendee = attendee
		alarm.Email = StripMailto(attendee)
	}

	return alarm
}

func formatContentDate(value DateValue, timezone string, allDay bool) *DateContent {
	t := value.Time()
	if allDay {
		return &DateContent{Date: t.Format(contentDateLayout)}
	}
	return &DateContent{
		Date:     t.Format(contentDateLayout),
		Time:     t.Format(contentTimeLayout),
		Timezone: timezone,
	}
}

func sequence(event *ical.Component) int {
	n, err := strconv.Atoi(strings.TrimSpace(propValue(event, ical.PropSequence)))
	if err != nil {
		return 0
	}
	return n
}

// joinURL joins base and path with exactly one slash between them.
func joinURL(base, path string) string {
	if base == "" {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
