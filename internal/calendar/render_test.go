// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderDate(t *testing.T) {
	instant := NewDateTime(time.Date(2015, 1, 12, 15, 0, 0, 0, time.UTC))

	t.Run("french 24 hour", func(t *testing.T) {
		got := RenderDate(instant, false, RenderOptions{Locale: "fr", Timezone: "Europe/Paris", Use24Hour: true})
		assert.Equal(t, &DateContent{
			Date:         "12/01/2015",
			Time:         "16:00",
			Timezone:     "Europe/Paris",
			FullDate:     "lundi 12 janvier 2015",
			FullDateTime: "lundi 12 janvier 2015 16:00",
		}, got)
	})

	t.Run("english 12 hour", func(t *testing.T) {
		got := RenderDate(instant, false, RenderOptions{Locale: "en", Timezone: "America/New_York"})
		assert.Equal(t, &DateContent{
			Date:         "01/12/2015",
			Time:         "10:00 AM",
			Timezone:     "America/New_York",
			FullDate:     "Monday, January 12, 2015",
			FullDateTime: "Monday, January 12, 2015 10:00 AM",
		}, got)
	})

	t.Run("all day keeps the calendar date", func(t *testing.T) {
		got := RenderDate(NewDate(2015, time.January, 12), true, RenderOptions{Timezone: "Pacific/Honolulu"})
		assert.Equal(t, &DateContent{Date: "01/12/2015", FullDate: "Monday, January 12, 2015"}, got)
	})

	t.Run("unknown timezone renders in UTC", func(t *testing.T) {
		got := RenderDate(instant, false, RenderOptions{Timezone: "Nowhere/Land"})
		assert.Equal(t, "3:00 PM", got.Time)
		assert.Equal(t, "UTC", got.Timezone)
	})
}

func TestRenderContent(t *testing.T) {
	obj := mustParse(t, ics(vevent(
		"UID:rendered",
		"DTSTAMP:20150101T000000Z",
		"DTSTART;TZID=Europe/Paris:20150112T100000",
		"DTEND;TZID=Europe/Paris:20150112T110000",
	)...))
	content, err := BuildContent(obj, baseURL)
	require.NoError(t, err)

	RenderContent(content, RenderOptions{Locale: "en", Timezone: "UTC", Use24Hour: true})

	assert.Equal(t, "09:00", content.Start.Time)
	assert.Equal(t, "10:00", content.End.Time)
	assert.Equal(t, "Monday, January 12, 2015 09:00", content.Start.FullDateTime)
}

func TestParseChangeDate(t *testing.T) {
	zoned, err := ParseChangeDate("2015-01-12T10:00:00.000", false, "Europe/Paris")
	require.NoError(t, err)
	assert.Equal(t, Zoned, zoned.Kind)
	assert.True(t, time.Date(2015, 1, 12, 9, 0, 0, 0, time.UTC).Equal(zoned.Time()))

	allDay, err := ParseChangeDate("2015-01-12T00:00:00.000", true, "Europe/Paris")
	require.NoError(t, err)
	assert.True(t, allDay.IsDate())

	floating, err := ParseChangeDate("2015-01-12T10:00:00.000", false, "")
	require.NoError(t, err)
	assert.Equal(t, Floating, floating.Kind)

	_, err = ParseChangeDate("yesterday", false, "")
	assert.Error(t, err)
}
