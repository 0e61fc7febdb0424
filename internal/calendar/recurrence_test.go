// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecurrence(t *testing.T) {
	obj := mustParse(t, ics(vevent(
		"UID:rrule",
		"DTSTAMP:20150101T000000Z",
		"DTSTART:20150101T100000Z",
		"RRULE:FREQ=MONTHLY;INTERVAL=2;UNTIL=20151231T000000Z",
	)...))

	recurrence, ok := ParseRecurrence(obj.Master())
	require.True(t, ok)
	assert.Equal(t, "FREQ=MONTHLY;INTERVAL=2;UNTIL=20151231T000000Z", recurrence.Rule)
	assert.Equal(t, "MONTHLY", recurrence.Frequency)
	assert.Equal(t, 2, recurrence.Interval)
	assert.Zero(t, recurrence.Count)
	require.NotNil(t, recurrence.Until)
	assert.True(t, time.Date(2015, 12, 31, 0, 0, 0, 0, time.UTC).Equal(*recurrence.Until))
}

func TestParseRecurrenceAbsent(t *testing.T) {
	obj := mustParse(t, ics(vevent(
		"UID:single",
		"DTSTAMP:20150101T000000Z",
		"DTSTART:20150101T100000Z",
	)...))

	_, ok := ParseRecurrence(obj.Master())
	assert.False(t, ok)
}

func TestNextOccurrence(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	t.Run("weekly rule", func(t *testing.T) {
		obj := recurringObject(t)

		next, ok := NextOccurrence(obj.Master(), time.Date(2015, 1, 2, 0, 0, 0, 0, time.UTC))
		require.True(t, ok)
		assert.True(t, time.Date(2015, 1, 8, 10, 0, 0, 0, paris).Equal(next), "next %s", next)
	})

	t.Run("excluded occurrence is skipped", func(t *testing.T) {
		obj := mustParse(t, ics(vevent(
			"UID:with-exdate",
			"DTSTAMP:20150101T000000Z",
			"DTSTART;TZID=Europe/Paris:20150101T100000",
			"RRULE:FREQ=WEEKLY;COUNT=5",
			"EXDATE;TZID=Europe/Paris:20150108T100000",
		)...))

		next, ok := NextOccurrence(obj.Master(), time.Date(2015, 1, 2, 0, 0, 0, 0, time.UTC))
		require.True(t, ok)
		assert.True(t, time.Date(2015, 1, 15, 10, 0, 0, 0, paris).Equal(next), "next %s", next)
	})

	t.Run("rule exhausted", func(t *testing.T) {
		obj := recurringObject(t)

		_, ok := NextOccurrence(obj.Master(), time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC))
		assert.False(t, ok)
	})

	t.Run("single event", func(t *testing.T) {
		obj := mustParse(t, ics(vevent(
			"UID:single",
			"DTSTAMP:20150101T000000Z",
			"DTSTART:20150101T100000Z",
		)...))

		next, ok := NextOccurrence(obj.Master(), time.Date(2014, 12, 31, 0, 0, 0, 0, time.UTC))
		require.True(t, ok)
		assert.True(t, time.Date(2015, 1, 1, 10, 0, 0, 0, time.UTC).Equal(next))

		_, ok = NextOccurrence(obj.Master(), time.Date(2015, 1, 2, 0, 0, 0, 0, time.UTC))
		assert.False(t, ok)
	})
}
