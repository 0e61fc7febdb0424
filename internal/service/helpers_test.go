// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/calendar"
	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/infrastructure/mock"
)

const testBaseURL = "http://localhost:8080"

// ics wraps component lines into a VCALENDAR, with METHOD when set.
func ics(method string, lines ...string) string {
	all := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//LFX//Calendar Test//EN",
	}
	if method != "" {
		all = append(all, "METHOD:"+method)
	}
	all = append(all, lines...)
	all = append(all, "END:VCALENDAR")
	return strings.Join(all, "\r\n") + "\r\n"
}

func vevent(lines ...string) []string {
	return append(append([]string{"BEGIN:VEVENT"}, lines...), "END:VEVENT")
}

// meeting is a one hour event organized by the sample organizer, with alice
// and bob invited and one external attendee.
func meeting(method string, extra ...string) string {
	lines := append([]string{
		"UID:meeting-1",
		"DTSTAMP:20260101T000000Z",
		"DTSTART;TZID=Europe/Paris:20260115T100000",
		"DTEND;TZID=Europe/Paris:20260115T110000",
		"SUMMARY:Sprint review",
		"LOCATION:Room 1",
		"ORGANIZER;CN=John Doe:mailto:organizer@example.org",
		"ATTENDEE;PARTSTAT=ACCEPTED;CN=John Doe:mailto:organizer@example.org",
		"ATTENDEE;PARTSTAT=NEEDS-ACTION;CN=Alice Martin:mailto:alice@example.org",
		"ATTENDEE;PARTSTAT=NEEDS-ACTION;CN=Bob Durand:mailto:bob@example.org",
		"ATTENDEE;PARTSTAT=NEEDS-ACTION:mailto:guest@external.org",
	}, extra...)
	return ics(method, vevent(lines...)...)
}

func mustParse(t *testing.T, text string) *calendar.Object {
	t.Helper()
	obj, err := calendar.Parse(text)
	require.NoError(t, err)
	return obj
}

// resetMocks restores the sample directory and returns it with a fresh
// publisher.
func resetMocks(t *testing.T) (*mock.MockRepository, *mock.MockMessagePublisher) {
	t.Helper()
	repo := mock.NewMockRepository()
	repo.Reset()
	return repo, mock.NewMockMessagePublisher()
}
