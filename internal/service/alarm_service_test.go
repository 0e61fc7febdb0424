// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/domain/model"
	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/infrastructure/mock"
	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/constants"
	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/errors"
)

var meetingPath = model.EventPath{CalendarHomeID: "user-organizer", CalendarID: "events", EventUID: "meeting-1"}

func valarm(action string) []string {
	return []string{
		"BEGIN:VALARM",
		"ACTION:" + action,
		"TRIGGER:-PT15M",
		"ATTENDEE:mailto:alice@example.org",
		"SUMMARY:Reminder",
		"DESCRIPTION:Sprint review is about to start",
		"END:VALARM",
	}
}

func newTestAlarmService(repo *mock.MockRepository, now time.Time) *AlarmService {
	return NewAlarmService(
		mock.NewMockAlarmRepository(repo),
		mock.NewMockUserReader(repo),
		mock.NewMockUserSettingsReader(repo),
		mock.NewMockBaseURLResolver(testBaseURL),
		mock.NewMockMailer(repo),
		WithAlarmSender("noreply@example.org"),
		WithAlarmClock(func() time.Time { return now }),
	)
}

func TestAlarmService_Register(t *testing.T) {
	ctx := context.Background()
	// meeting-1 starts at 09:00 UTC
	beforeMeeting := time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC)

	t.Run("email alarm is scheduled", func(t *testing.T) {
		repo, _ := resetMocks(t)
		service := newTestAlarmService(repo, beforeMeeting)

		err := service.Register(ctx, meetingPath, mustParse(t, meeting("", valarm(constants.AlarmActionEmail)...)))
		require.NoError(t, err)

		alarms := repo.Alarms()
		require.Len(t, alarms, 1)
		alarm := alarms[0]
		assert.NotEmpty(t, alarm.ID)
		assert.Equal(t, meetingPath.String(), alarm.EventPath)
		assert.Equal(t, "meeting-1", alarm.EventUID)
		assert.Equal(t, constants.AlarmActionEmail, alarm.Action)
		assert.Equal(t, "alice@example.org", alarm.Email)
		assert.Equal(t, "Sprint review", alarm.Summary)
		assert.Equal(t, constants.AlarmStateWaiting, alarm.State)
		assert.Equal(t, time.Date(2026, 1, 15, 8, 45, 0, 0, time.UTC), alarm.DueDate)
		assert.Contains(t, alarm.ICS, "BEGIN:VALARM")
	})

	t.Run("registering again replaces the alarm", func(t *testing.T) {
		repo, _ := resetMocks(t)
		service := newTestAlarmService(repo, beforeMeeting)
		obj := mustParse(t, meeting("", valarm(constants.AlarmActionEmail)...))

		require.NoError(t, service.Register(ctx, meetingPath, obj))
		require.NoError(t, service.Register(ctx, meetingPath, obj))
		assert.Len(t, repo.Alarms(), 1)

		require.NoError(t, service.Register(ctx, meetingPath, mustParse(t, meeting(""))))
		assert.Empty(t, repo.Alarms(), "an event without alarm clears the previous one")
	})

	t.Run("past and display alarms are ignored", func(t *testing.T) {
		repo, _ := resetMocks(t)

		late := newTestAlarmService(repo, time.Date(2026, 1, 15, 8, 50, 0, 0, time.UTC))
		require.NoError(t, late.Register(ctx, meetingPath, mustParse(t, meeting("", valarm(constants.AlarmActionEmail)...))))
		assert.Empty(t, repo.Alarms())

		display := newTestAlarmService(repo, beforeMeeting)
		require.NoError(t, display.Register(ctx, meetingPath, mustParse(t, meeting("", valarm(constants.AlarmActionDisplay)...))))
		assert.Empty(t, repo.Alarms())
	})

	t.Run("recurring event uses the next occurrence", func(t *testing.T) {
		repo, _ := resetMocks(t)
		// the series starts on 2026-01-05 at 09:00 UTC and repeats weekly
		service := newTestAlarmService(repo, time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC))

		series := ics("", vevent(append([]string{
			"UID:weekly-1",
			"DTSTAMP:20260101T000000Z",
			"DTSTART;TZID=Europe/Paris:20260105T100000",
			"DTEND;TZID=Europe/Paris:20260105T110000",
			"RRULE:FREQ=WEEKLY;COUNT=10",
			"SUMMARY:Sync",
		}, valarm(constants.AlarmActionEmail)...)...)...)

		require.NoError(t, service.Register(ctx, testPath, mustParse(t, series)))

		alarms := repo.Alarms()
		require.Len(t, alarms, 1)
		assert.Equal(t, time.Date(2026, 1, 12, 8, 45, 0, 0, time.UTC), alarms[0].DueDate)
	})

	t.Run("storage failures are returned", func(t *testing.T) {
		repo, _ := resetMocks(t)
		repo.SetErrorForOperation("DeleteAlarms", errors.NewServiceUnavailable("kv down"))
		service := newTestAlarmService(repo, beforeMeeting)

		err := service.Register(ctx, meetingPath, mustParse(t, meeting("", valarm(constants.AlarmActionEmail)...)))
		assert.Error(t, err)
	})
}

func TestAlarmService_Unregister(t *testing.T) {
	ctx := context.Background()
	repo, _ := resetMocks(t)
	service := newTestAlarmService(repo, time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC))

	require.NoError(t, service.Register(ctx, meetingPath, mustParse(t, meeting("", valarm(constants.AlarmActionEmail)...))))
	require.Len(t, repo.Alarms(), 1)

	require.NoError(t, service.Unregister(ctx, meetingPath))
	assert.Empty(t, repo.Alarms())
}

func TestAlarmService_ProcessDue(t *testing.T) {
	ctx := context.Background()
	registeredAt := time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC)
	afterDue := time.Date(2026, 1, 15, 8, 46, 0, 0, time.UTC)

	t.Run("due alarm is mailed", func(t *testing.T) {
		repo, _ := resetMocks(t)
		service := newTestAlarmService(repo, registeredAt)
		require.NoError(t, service.Register(ctx, meetingPath, mustParse(t, meeting("", valarm(constants.AlarmActionEmail)...))))

		sent, err := service.ProcessDue(ctx, registeredAt)
		require.NoError(t, err)
		assert.Zero(t, sent, "nothing is due yet")

		sent, err = service.ProcessDue(ctx, afterDue)
		require.NoError(t, err)
		assert.Equal(t, 1, sent)

		emails := repo.SentEmails()
		require.Len(t, emails, 1)
		assert.Equal(t, "noreply@example.org", emails[0].From)
		assert.Equal(t, "alice@example.org", emails[0].To)
		assert.Equal(t, "Notification: Sprint review", emails[0].Subject)
		assert.Equal(t, constants.EmailTemplateAlarm, emails[0].Template.Name)

		locals, ok := emails[0].Locals.(*model.AlarmLocals)
		require.True(t, ok)
		assert.Equal(t, meetingPath.String(), locals.EventPath)
		assert.Equal(t, testBaseURL, locals.BaseURL)
		assert.Equal(t, "Sprint review", locals.Event.Summary)

		alarms := repo.Alarms()
		require.Len(t, alarms, 1)
		assert.Equal(t, constants.AlarmStateDone, alarms[0].State)

		sent, err = service.ProcessDue(ctx, afterDue)
		require.NoError(t, err)
		assert.Zero(t, sent, "a done alarm is not mailed twice")
	})

	t.Run("failed alarm is flagged", func(t *testing.T) {
		repo, _ := resetMocks(t)
		service := newTestAlarmService(repo, registeredAt)
		require.NoError(t, service.Register(ctx, meetingPath, mustParse(t, meeting("", valarm(constants.AlarmActionEmail)...))))
		repo.SetErrorForOperation("SendEmail", errors.NewServiceUnavailable("smtp down"))

		sent, err := service.ProcessDue(ctx, afterDue)
		require.NoError(t, err)
		assert.Zero(t, sent)

		alarms := repo.Alarms()
		require.Len(t, alarms, 1)
		assert.Equal(t, constants.AlarmStateError, alarms[0].State)
		assert.Contains(t, alarms[0].LastError, "smtp down")
	})

	t.Run("recurring alarm schedules the following occurrence", func(t *testing.T) {
		repo, _ := resetMocks(t)
		service := newTestAlarmService(repo, time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC))

		series := ics("", vevent(append([]string{
			"UID:weekly-1",
			"DTSTAMP:20260101T000000Z",
			"DTSTART;TZID=Europe/Paris:20260105T100000",
			"DTEND;TZID=Europe/Paris:20260105T110000",
			"RRULE:FREQ=WEEKLY;COUNT=10",
			"SUMMARY:Sync",
		}, valarm(constants.AlarmActionEmail)...)...)...)
		require.NoError(t, service.Register(ctx, testPath, mustParse(t, series)))

		sent, err := service.ProcessDue(ctx, time.Date(2026, 1, 12, 8, 50, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, 1, sent)

		alarms := repo.Alarms()
		require.Len(t, alarms, 2)
		assert.Equal(t, constants.AlarmStateDone, alarms[0].State)
		assert.Equal(t, constants.AlarmStateWaiting, alarms[1].State)
		assert.Equal(t, time.Date(2026, 1, 19, 8, 45, 0, 0, time.UTC), alarms[1].DueDate)
	})
}
