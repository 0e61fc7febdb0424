// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/calendar"
	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/domain/model"
	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/domain/port"
	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/infrastructure/mock"
	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/constants"
	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/errors"
	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/utils"
)

func newTestParticipationService(repo *mock.MockRepository, publisher *mock.MockMessagePublisher) *ParticipationService {
	return NewParticipationService(
		mock.NewMockTokenSigner(),
		mock.NewMockUserReader(repo),
		mock.NewMockResourceReader(repo),
		mock.NewMockCalendarObjectStore(repo),
		publisher,
	).WithRetryConfig(utils.NewRetryConfig(2, time.Millisecond, time.Millisecond))
}

func signToken(t *testing.T, payload model.ParticipationToken) string {
	t.Helper()
	token, err := mock.NewMockTokenSigner().Sign(context.Background(), payload)
	require.NoError(t, err)
	return token
}

func aliceToken(action string) model.ParticipationToken {
	return model.ParticipationToken{
		Action:         action,
		AttendeeEmail:  "alice@example.org",
		CalendarURI:    "events",
		OrganizerEmail: "organizer@example.org",
		UID:            "meeting-1",
	}
}

func partstat(t *testing.T, text, email string) string {
	t.Helper()
	attendee, ok := calendar.FindAttendee(mustParse(t, text).Master(), email)
	require.True(t, ok)
	return attendee.ParticipationStatus
}

func TestParticipationService_DecodeToken(t *testing.T) {
	ctx := context.Background()
	repo, publisher := resetMocks(t)
	service := newTestParticipationService(repo, publisher)

	t.Run("valid token", func(t *testing.T) {
		payload, organizer, err := service.DecodeToken(ctx, signToken(t, aliceToken(constants.AttendeeActionAccepted)))
		require.NoError(t, err)
		assert.Equal(t, "meeting-1", payload.UID)
		assert.Equal(t, "user-organizer", organizer.ID)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, _, err := service.DecodeToken(ctx, signToken(t, model.ParticipationToken{Action: constants.AttendeeActionAccepted}))
		var validation errors.Validation
		require.True(t, stderrors.As(err, &validation))
		assert.Contains(t, err.Error(), "calendarURI, uid, attendeeEmail, organizerEmail")
	})

	t.Run("unsupported action", func(t *testing.T) {
		_, _, err := service.DecodeToken(ctx, signToken(t, aliceToken("MAYBE")))
		var validation errors.Validation
		assert.True(t, stderrors.As(err, &validation))
	})

	t.Run("unknown organizer", func(t *testing.T) {
		payload := aliceToken(constants.AttendeeActionAccepted)
		payload.OrganizerEmail = "nobody@example.org"
		_, _, err := service.DecodeToken(ctx, signToken(t, payload))
		var notFound errors.NotFound
		assert.True(t, stderrors.As(err, &notFound))
	})

	t.Run("forged token", func(t *testing.T) {
		_, _, err := service.DecodeToken(ctx, "not-a-token")
		var unauthorized errors.Unauthorized
		assert.True(t, stderrors.As(err, &unauthorized))
	})
}

func TestParticipationService_ReplyWithToken(t *testing.T) {
	ctx := context.Background()
	path := "/calendars/user-organizer/events/meeting-1.ics"

	t.Run("updates the attendee and publishes the reply", func(t *testing.T) {
		repo, publisher := resetMocks(t)
		repo.AddCalendarObject(path, meeting(""))
		service := newTestParticipationService(repo, publisher)

		result, err := service.ReplyWithToken(ctx, signToken(t, aliceToken(constants.AttendeeActionDeclined)))
		require.NoError(t, err)
		assert.Equal(t, path, result.EventPath)
		assert.Equal(t, "alice@example.org", result.AttendeeEmail)
		assert.Equal(t, constants.AttendeeActionDeclined, result.Status)
		assert.Equal(t, "2", result.ETag)

		stored, ok := repo.CalendarObject(path)
		require.True(t, ok)
		assert.Equal(t, constants.AttendeeActionDeclined, partstat(t, stored, "alice@example.org"))
		assert.Equal(t, "NEEDS-ACTION", partstat(t, stored, "bob@example.org"))

		events := publisher.Messages(mock.MessageKindEvent)
		require.Len(t, events, 1)
		assert.Equal(t, constants.EventReplySubject, events[0].Subject)
		message, ok := events[0].Message.(*model.EventMessage)
		require.True(t, ok)
		assert.Equal(t, path, message.EventPath)
		assert.Equal(t, stored, message.Event)
	})

	t.Run("attendee not in event", func(t *testing.T) {
		repo, publisher := resetMocks(t)
		repo.AddCalendarObject(path, meeting(""))
		service := newTestParticipationService(repo, publisher)

		payload := aliceToken(constants.AttendeeActionAccepted)
		payload.AttendeeEmail = "stranger@example.org"
		_, err := service.ReplyWithToken(ctx, signToken(t, payload))

		var notFound errors.NotFound
		assert.True(t, stderrors.As(err, &notFound))
		assert.Empty(t, publisher.Messages(""))
	})

	t.Run("missing event", func(t *testing.T) {
		repo, publisher := resetMocks(t)
		service := newTestParticipationService(repo, publisher)

		_, err := service.ReplyWithToken(ctx, signToken(t, aliceToken(constants.AttendeeActionAccepted)))
		var notFound errors.NotFound
		assert.True(t, stderrors.As(err, &notFound))
	})

	t.Run("persistent conflicts are reported", func(t *testing.T) {
		repo, publisher := resetMocks(t)
		repo.AddCalendarObject(path, meeting(""))
		repo.SetErrorForOperation("PutCalendarObject", errors.NewConflict("etag mismatch"))
		service := newTestParticipationService(repo, publisher)

		_, err := service.ReplyWithToken(ctx, signToken(t, aliceToken(constants.AttendeeActionAccepted)))
		var conflict errors.Conflict
		assert.True(t, stderrors.As(err, &conflict))
		assert.Empty(t, publisher.Messages(""))
	})
}

// scriptedStore fails the next writes with putErrors before delegating
type scriptedStore struct {
	port.CalendarObjectStore
	putErrors []error
	gets      int
}

func (s *scriptedStore) GetCalendarObject(ctx context.Context, path string) (*model.CalendarObject, error) {
	s.gets++
	return s.CalendarObjectStore.GetCalendarObject(ctx, path)
}

func (s *scriptedStore) PutCalendarObject(ctx context.Context, object *model.CalendarObject) (string, error) {
	if len(s.putErrors) > 0 {
		err := s.putErrors[0]
		s.putErrors = s.putErrors[1:]
		return "", err
	}
	return s.CalendarObjectStore.PutCalendarObject(ctx, object)
}

func TestParticipationService_ReplyWithTokenRetries(t *testing.T) {
	ctx := context.Background()
	path := "/calendars/user-organizer/events/meeting-1.ics"

	newService := func(t *testing.T, putErrors ...error) (*ParticipationService, *scriptedStore, *mock.MockMessagePublisher) {
		repo, publisher := resetMocks(t)
		repo.AddCalendarObject(path, meeting(""))
		store := &scriptedStore{CalendarObjectStore: mock.NewMockCalendarObjectStore(repo), putErrors: putErrors}
		service := NewParticipationService(
			mock.NewMockTokenSigner(),
			mock.NewMockUserReader(repo),
			mock.NewMockResourceReader(repo),
			store,
			publisher,
		).WithRetryConfig(utils.NewRetryConfig(3, time.Millisecond, time.Millisecond))
		return service, store, publisher
	}

	t.Run("conflict is retried with a fresh read", func(t *testing.T) {
		service, store, publisher := newService(t, errors.NewConflict("etag mismatch"))

		result, err := service.ReplyWithToken(ctx, signToken(t, aliceToken(constants.AttendeeActionAccepted)))
		require.NoError(t, err)
		assert.Equal(t, constants.AttendeeActionAccepted, result.Status)
		assert.Equal(t, 2, store.gets)
		assert.Len(t, publisher.Messages(mock.MessageKindEvent), 1)
	})

	t.Run("permanent failure after a conflict is not retried", func(t *testing.T) {
		service, store, publisher := newService(t,
			errors.NewConflict("etag mismatch"),
			errors.NewNotFound("calendar object deleted"),
		)

		_, err := service.ReplyWithToken(ctx, signToken(t, aliceToken(constants.AttendeeActionAccepted)))
		var notFound errors.NotFound
		require.True(t, stderrors.As(err, &notFound))
		assert.Equal(t, "calendar object deleted", err.Error())
		assert.Equal(t, 2, store.gets)
		assert.Empty(t, publisher.Messages(""))
	})

	t.Run("validation failure is returned at once", func(t *testing.T) {
		service, store, _ := newService(t, errors.NewValidation("malformed calendar object"))

		_, err := service.ReplyWithToken(ctx, signToken(t, aliceToken(constants.AttendeeActionAccepted)))
		var validation errors.Validation
		require.True(t, stderrors.As(err, &validation))
		assert.Equal(t, 1, store.gets)
	})
}

func TestParticipationService_ChangeResourceParticipation(t *testing.T) {
	ctx := context.Background()
	path := "/calendars/resource-room/resource-room/meeting-1.ics"
	withRoom := meeting("", "ATTENDEE;CUTYPE=RESOURCE;PARTSTAT=NEEDS-ACTION:mailto:resource-room@example.org")

	tests := []struct {
		status         string
		expectedStatus string
		expectedTransp string
	}{
		{status: "accepted", expectedStatus: constants.AttendeeActionAccepted, expectedTransp: constants.TranspOpaque},
		{status: "DECLINED", expectedStatus: constants.AttendeeActionDeclined, expectedTransp: constants.TranspTransparent},
		{status: "Tentative", expectedStatus: constants.AttendeeActionTentative, expectedTransp: constants.TranspTransparent},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			repo, publisher := resetMocks(t)
			repo.AddCalendarObject(path, withRoom)
			service := newTestParticipationService(repo, publisher)

			result, err := service.ChangeResourceParticipation(ctx, model.ResourceParticipationRequest{
				ResourceID: "resource-room",
				EventID:    "meeting-1",
				Status:     tt.status,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, result.Status)
			assert.Equal(t, "resource-room@example.org", result.AttendeeEmail)

			stored, ok := repo.CalendarObject(path)
			require.True(t, ok)
			assert.Equal(t, tt.expectedStatus, partstat(t, stored, "resource-room@example.org"))
			assert.Contains(t, stored, "TRANSP:"+tt.expectedTransp)
		})
	}

	t.Run("invalid requests", func(t *testing.T) {
		repo, publisher := resetMocks(t)
		service := newTestParticipationService(repo, publisher)

		for _, req := range []model.ResourceParticipationRequest{
			{EventID: "meeting-1", Status: "ACCEPTED"},
			{ResourceID: "resource-room", Status: "ACCEPTED"},
			{ResourceID: "resource-room", EventID: "meeting-1", Status: "NEEDS-ACTION"},
		} {
			_, err := service.ChangeResourceParticipation(ctx, req)
			var validation errors.Validation
			assert.True(t, stderrors.As(err, &validation), "%+v", req)
		}
	})

	t.Run("unknown resource", func(t *testing.T) {
		repo, publisher := resetMocks(t)
		service := newTestParticipationService(repo, publisher)

		_, err := service.ChangeResourceParticipation(ctx, model.ResourceParticipationRequest{
			ResourceID: "resource-unknown",
			EventID:    "meeting-1",
			Status:     "ACCEPTED",
		})
		var notFound errors.NotFound
		assert.True(t, stderrors.As(err, &notFound))
	})
}
