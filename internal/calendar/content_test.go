// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package calendar

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseURL = "http://localhost:8080"

func TestBuildContent(t *testing.T) {
	obj := mustParse(t, ics(append([]string{"METHOD:REQUEST"}, vevent(
		"UID:meeting-1",
		"DTSTAMP:20150101T000000Z",
		"SEQUENCE:2",
		"DTSTART;TZID=Europe/Paris:20150112T100000",
		"DTEND;TZID=Europe/Paris:20150112T113000",
		"SUMMARY:Demo",
		"LOCATION:Room 42",
		"DESCRIPTION:Quarterly demo\\, bring slides",
		"CLASS:PUBLIC",
		"COMMENT:See you there",
		"ORGANIZER;CN=Olivia:mailto:organizer@example.com",
		"ATTENDEE;PARTSTAT=ACCEPTED;CN=Alice:mailto:alice@example.com",
		"ATTENDEE;PARTSTAT=NEEDS-ACTION:MAILTO:bob@example.com",
		"ATTENDEE;CUTYPE=RESOURCE;PARTSTAT=TENTATIVE;CN=Projector:mailto:projector@example.com",
	)...)...))

	content, err := BuildContent(obj, baseURL)
	require.NoError(t, err)

	assert.Equal(t, "REQUEST", content.Method)
	assert.Equal(t, "meeting-1", content.UID)
	assert.Equal(t, 2, content.Sequence)
	assert.Equal(t, "Demo", content.Summary)
	assert.Equal(t, "Room 42", content.Location)
	assert.False(t, content.IsLocationAValidURL)
	assert.False(t, content.IsLocationAnAbsoluteURL)
	assert.Equal(t, "Quarterly demo, bring slides", content.Description)
	assert.Equal(t, "PUBLIC", content.Class)
	assert.Equal(t, "See you there", content.Comment)
	assert.False(t, content.AllDay)
	assert.False(t, content.Recurring)

	assert.Equal(t, &DateContent{Date: "01/12/2015", Time: "10:00 AM", Timezone: "Europe/Paris"}, content.Start)
	assert.Equal(t, &DateContent{Date: "01/12/2015", Time: "11:30 AM", Timezone: "Europe/Paris"}, content.End)
	assert.Equal(t, 0, content.DurationInDays.MustGet())

	assert.Equal(t, Attendees{
		"alice@example.com": {Email: "alice@example.com", CommonName: "Alice", ParticipationStatus: "ACCEPTED"},
		"bob@example.com":   {Email: "bob@example.com", ParticipationStatus: "NEEDS-ACTION"},
	}, content.Attendees)
	assert.Equal(t, Attendees{
		"projector@example.com": {Email: "projector@example.com", CommonName: "Projector", ParticipationStatus: "TENTATIVE"},
	}, content.Resources)
	assert.True(t, content.HasResources)

	require.NotNil(t, content.Organizer)
	assert.Equal(t, "Olivia", content.Organizer.CommonName)
	assert.Equal(t, "organizer@example.com", content.Organizer.Email)
	assert.Equal(t, "http://localhost:8080/api/avatars?objectType=user&email=organizer@example.com", content.Organizer.Avatar)
}

func TestBuildContentAllDay(t *testing.T) {
	obj := mustParse(t, ics(vevent(
		"UID:all-day",
		"DTSTAMP:20150101T000000Z",
		"DTSTART;VALUE=DATE:20150112",
		"DTEND;VALUE=DATE:20150115",
	)...))

	content, err := BuildContent(obj, baseURL)
	require.NoError(t, err)

	assert.True(t, content.AllDay)
	assert.Equal(t, &DateContent{Date: "01/12/2015"}, content.Start)
	// exclusive DTEND 01/15 is displayed as 01/14
	assert.Equal(t, &DateContent{Date: "01/14/2015"}, content.End)
	assert.Equal(t, 3, content.DurationInDays.MustGet())

	end, ok := content.EndValue()
	require.True(t, ok)
	assert.Equal(t, time.Date(2015, 1, 14, 0, 0, 0, 0, time.UTC), end.Time())
}

func TestBuildContentEndFromDuration(t *testing.T) {
	obj := mustParse(t, ics(vevent(
		"UID:with-duration",
		"DTSTAMP:20150101T000000Z",
		"DTSTART:20150112T100000Z",
		"DURATION:PT1H30M",
	)...))

	content, err := BuildContent(obj, baseURL)
	require.NoError(t, err)

	assert.Equal(t, &DateContent{Date: "01/12/2015", Time: "11:30 AM", Timezone: "UTC"}, content.End)
}

func TestBuildContentTimezoneFallback(t *testing.T) {
	obj := mustParse(t, ics(vevent(
		"UID:floating-end",
		"DTSTAMP:20150101T000000Z",
		"DTSTART;TZID=America/New_York:20150112T100000",
		"DTEND:20150112T110000",
	)...))

	content, err := BuildContent(obj, baseURL)
	require.NoError(t, err)

	assert.Equal(t, "America/New_York", content.End.Timezone)
}

func TestBuildContentUnknownTimezone(t *testing.T) {
	obj := mustParse(t, ics(vevent(
		"UID:outlook-1",
		"DTSTAMP:20150101T000000Z",
		"DTSTART;TZID=W. Europe Standard Time:20150112T100000",
		"DTEND;TZID=W. Europe Standard Time:20150112T113000",
	)...))

	content, err := BuildContent(obj, baseURL)
	require.NoError(t, err)

	assert.Equal(t, &DateContent{Date: "01/12/2015", Time: "10:00 AM", Timezone: "W. Europe Standard Time"}, content.Start)
	assert.Equal(t, &DateContent{Date: "01/12/2015", Time: "11:30 AM", Timezone: "W. Europe Standard Time"}, content.End)
}

func TestBuildContentDurationAcrossDST(t *testing.T) {
	obj := mustParse(t, ics(vevent(
		"UID:spring-forward",
		"DTSTAMP:20240101T000000Z",
		"DTSTART;TZID=America/New_York:20240309T000000",
		"DTEND;TZID=America/New_York:20240311T000000",
	)...))

	content, err := BuildContent(obj, baseURL)
	require.NoError(t, err)
	assert.Equal(t, 2, content.DurationInDays.MustGet())
}

func TestBuildContentMissingEnd(t *testing.T) {
	obj := mustParse(t, ics(vevent(
		"UID:no-end",
		"DTSTAMP:20150101T000000Z",
		"DTSTART:20150112T100000Z",
	)...))

	content, err := BuildContent(obj, baseURL)
	require.NoError(t, err)

	assert.Nil(t, content.End)
	assert.True(t, content.DurationInDays.IsAbsent())

	data, err := json.Marshal(content)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"durationInDays":null`)
}

func TestBuildContentAlarm(t *testing.T) {
	tests := []struct {
		name        string
		alarm       []string
		wantDue     time.Time
		wantDisplay string
		wantEmail   string
	}{
		{
			name: "display alarm before start",
			alarm: []string{
				"BEGIN:VALARM",
				"ACTION:DISPLAY",
				"TRIGGER:-PT15M",
				"DESCRIPTION:Reminder",
				"END:VALARM",
			},
			wantDue:     time.Date(2015, 1, 12, 9, 45, 0, 0, time.UTC),
			wantDisplay: "15 minutes",
		},
		{
			name: "email alarm related to end",
			alarm: []string{
				"BEGIN:VALARM",
				"ACTION:EMAIL",
				"TRIGGER;RELATED=END:-PT1H",
				"SUMMARY:Wrap up",
				"DESCRIPTION:Wrap up",
				"ATTENDEE:mailto:alice@example.com",
				"END:VALARM",
			},
			wantDue:     time.Date(2015, 1, 12, 11, 0, 0, 0, time.UTC),
			wantDisplay: "an hour",
			wantEmail:   "alice@example.com",
		},
		{
			name: "absolute trigger",
			alarm: []string{
				"BEGIN:VALARM",
				"ACTION:DISPLAY",
				"TRIGGER;VALUE=DATE-TIME:20150111T100000Z",
				"DESCRIPTION:Reminder",
				"END:VALARM",
			},
			wantDue:     time.Date(2015, 1, 11, 10, 0, 0, 0, time.UTC),
			wantDisplay: "a day",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := []string{
				"UID:alarmed",
				"DTSTAMP:20150101T000000Z",
				"DTSTART:20150112T100000Z",
				"DTEND:20150112T120000Z",
			}
			obj := mustParse(t, ics(vevent(append(lines, tt.alarm...)...)...))

			content, err := BuildContent(obj, baseURL)
			require.NoError(t, err)
			require.NotNil(t, content.Alarm)

			assert.True(t, tt.wantDue.Equal(content.Alarm.AlarmDueDate), "due %s", content.Alarm.AlarmDueDate)
			assert.Equal(t, tt.wantDisplay, content.Alarm.TriggerDisplay)
			assert.Equal(t, tt.wantEmail, content.Alarm.Email)
		})
	}
}

func TestBuildContentRecurrence(t *testing.T) {
	content, err := BuildContent(recurringObject(t), baseURL)
	require.NoError(t, err)

	assert.True(t, content.Recurring)
	require.NotNil(t, content.Recurrence)
	assert.Equal(t, "WEEKLY", content.Recurrence.Frequency)
	assert.Equal(t, 1, content.Recurrence.Interval)
	assert.Equal(t, 5, content.Recurrence.Count)
}

func TestBuildContentWithoutEvent(t *testing.T) {
	obj := mustParse(t, ics())

	_, err := BuildContent(obj, baseURL)
	assert.Error(t, err)
}

func TestJoinURL(t *testing.T) {
	assert.Equal(t, "http://a/b", joinURL("http://a/", "/b"))
	assert.Equal(t, "http://a/b", joinURL("http://a", "b"))
	assert.Equal(t, "b", joinURL("", "b"))
}
