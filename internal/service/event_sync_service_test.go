// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/domain/model"
	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/infrastructure/mock"
	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/constants"
)

func TestEventSyncService_HandleMessage(t *testing.T) {
	ctx := context.Background()
	path := "/calendars/user-organizer/events/meeting-1.ics"
	withAlarm := meeting("", valarm(constants.AlarmActionEmail)...)

	setup := func(t *testing.T) (*EventSyncService, *mock.MockRepository, *mock.MockMessagePublisher) {
		repo, publisher := resetMocks(t)
		alarms := newTestAlarmService(repo, time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC))
		service := NewEventSyncService(
			NewEventIndexService(publisher, testBaseURL),
			NewEventRelayService(publisher),
			alarms,
		)
		require.NotNil(t, service)
		return service, repo, publisher
	}

	message := func(t *testing.T, subject string, event model.EventMessage) *nats.Msg {
		data, err := json.Marshal(event)
		require.NoError(t, err)
		return &nats.Msg{Subject: subject, Data: data}
	}

	t.Run("handles created event", func(t *testing.T) {
		service, repo, publisher := setup(t)

		err := service.HandleMessage(ctx, message(t, constants.EventCreatedSubject, model.EventMessage{
			EventPath: path,
			Event:     withAlarm,
			ShareeIDs: []string{"principals/users/user-bob"},
		}))
		require.NoError(t, err)

		assert.Equal(t, []string{"created user-organizer--events--meeting-1"}, indexed(t, publisher))
		assert.Len(t, publisher.Messages(mock.MessageKindWebsocket), 2)
		assert.Len(t, repo.Alarms(), 1)
	})

	t.Run("handles updated event", func(t *testing.T) {
		service, repo, publisher := setup(t)

		err := service.HandleMessage(ctx, message(t, constants.EventUpdatedSubject, model.EventMessage{
			EventPath: path,
			Event:     withAlarm,
			OldEvent:  meeting(""),
		}))
		require.NoError(t, err)

		assert.Equal(t, []string{"updated user-organizer--events--meeting-1"}, indexed(t, publisher))
		websocket := publisher.Messages(mock.MessageKindWebsocket)
		require.Len(t, websocket, 1)
		assert.Equal(t, constants.WebsocketEventUpdated, websocket[0].Message.(*model.WebsocketMessage).Topic)
		assert.Len(t, repo.Alarms(), 1)
	})

	t.Run("handles deleted event", func(t *testing.T) {
		service, repo, publisher := setup(t)

		require.NoError(t, service.HandleMessage(ctx, message(t, constants.EventCreatedSubject, model.EventMessage{
			EventPath: path,
			Event:     withAlarm,
		})))
		require.Len(t, repo.Alarms(), 1)
		publisher.Reset()

		err := service.HandleMessage(ctx, message(t, constants.EventDeletedSubject, model.EventMessage{
			EventPath: path,
			Event:     withAlarm,
		}))
		require.NoError(t, err)

		assert.Equal(t, []string{"deleted user-organizer--events--meeting-1"}, indexed(t, publisher))
		assert.Empty(t, repo.Alarms())
	})

	t.Run("itip messages are only relayed", func(t *testing.T) {
		service, repo, publisher := setup(t)

		for _, subject := range []string{constants.EventRequestSubject, constants.EventCancelSubject, constants.EventReplySubject} {
			err := service.HandleMessage(ctx, message(t, subject, model.EventMessage{EventPath: path, Event: withAlarm}))
			require.NoError(t, err)
		}

		assert.Empty(t, publisher.Messages(mock.MessageKindIndexer))
		assert.Len(t, publisher.Messages(mock.MessageKindWebsocket), 3)
		assert.Empty(t, repo.Alarms())
	})

	t.Run("imported event is indexed but not relayed", func(t *testing.T) {
		service, _, publisher := setup(t)

		err := service.HandleMessage(ctx, message(t, constants.EventCreatedSubject, model.EventMessage{
			EventPath: path,
			Event:     meeting(""),
			Import:    true,
		}))
		require.NoError(t, err)

		assert.Len(t, publisher.Messages(mock.MessageKindIndexer), 1)
		assert.Empty(t, publisher.Messages(mock.MessageKindWebsocket))
	})

	t.Run("invalid path is dropped", func(t *testing.T) {
		service, _, publisher := setup(t)

		err := service.HandleMessage(ctx, message(t, constants.EventCreatedSubject, model.EventMessage{
			EventPath: "/",
			Event:     meeting(""),
		}))
		require.NoError(t, err)
		assert.Empty(t, publisher.Messages(""))
	})

	t.Run("rejects unknown subject", func(t *testing.T) {
		service, _, _ := setup(t)
		err := service.HandleMessage(ctx, &nats.Msg{Subject: "lfx.calendar.unknown", Data: []byte("{}")})
		assert.Error(t, err)
	})

	t.Run("rejects invalid payloads", func(t *testing.T) {
		service, _, _ := setup(t)

		err := service.HandleMessage(ctx, &nats.Msg{Subject: constants.EventCreatedSubject, Data: []byte("not json")})
		assert.Error(t, err)

		err = service.HandleMessage(ctx, message(t, constants.EventCreatedSubject, model.EventMessage{EventPath: path}))
		assert.Error(t, err, "a created event needs its calendar object")

		err = service.HandleMessage(ctx, message(t, constants.EventCreatedSubject, model.EventMessage{EventPath: path, Event: "garbage"}))
		assert.Error(t, err)
	})

	t.Run("publish failures are returned", func(t *testing.T) {
		service, _, publisher := setup(t)
		publisher.SetError(assert.AnError)

		err := service.HandleMessage(ctx, message(t, constants.EventCreatedSubject, model.EventMessage{
			EventPath: path,
			Event:     meeting(""),
		}))
		assert.ErrorIs(t, err, assert.AnError)
	})
}
