// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
	"golang.org/x/sync/errgroup"

	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/calendar"
	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/domain/model"
	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/constants"
)

// EventSyncService handles calendar event change messages and fans them out
// to the search index, the websocket relay and the alarm scheduler
type EventSyncService struct {
	index  *EventIndexService
	relay  *EventRelayService
	alarms *AlarmService
}

// NewEventSyncService creates a new event sync service
func NewEventSyncService(
	index *EventIndexService,
	relay *EventRelayService,
	alarms *AlarmService,
) *EventSyncService {
	return &EventSyncService{
		index:  index,
		relay:  relay,
		alarms: alarms,
	}
}

// HandleMessage routes NATS messages to appropriate handlers based on subject
func (s *EventSyncService) HandleMessage(ctx context.Context, msg *nats.Msg) error {
	subject := msg.Subject

	slog.DebugContext(ctx, "received calendar event", "subject", subject)

	topic, ok := websocketTopic(subject)
	if !ok {
		slog.WarnContext(ctx, "unknown calendar event subject", "subject", subject)
		return fmt.Errorf("unknown calendar event subject: %s", subject)
	}

	var event model.EventMessage
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		slog.ErrorContext(ctx, "failed to unmarshal calendar event", "error", err)
		return fmt.Errorf("failed to unmarshal event: %w", err)
	}

	if err := s.handleEvent(ctx, subject, topic, &event); err != nil {
		slog.ErrorContext(ctx, "error processing calendar event",
			"error", err,
			"subject", subject,
			"event_path", event.EventPath)
		return err
	}

	return nil
}

func (s *EventSyncService) handleEvent(ctx context.Context, subject, topic string, event *model.EventMessage) error {
	switch subject {
	case constants.EventCreatedSubject, constants.EventUpdatedSubject, constants.EventDeletedSubject:
	default:
		// iTIP messages only concern connected clients
		return s.relay.Relay(ctx, topic, event)
	}

	path, err := model.ParseEventPath(event.EventPath)
	if err != nil {
		slog.WarnContext(ctx, "dropping calendar event with invalid path",
			"error", err,
			"event_path", event.EventPath)
		return nil
	}

	current, err := parseOptional(event.Event)
	if err != nil {
		slog.ErrorContext(ctx, "calendar event carries an invalid calendar object",
			"error", err,
			"event_uid", path.EventUID)
		return err
	}
	if current == nil && subject != constants.EventDeletedSubject {
		return fmt.Errorf("calendar event %s has no calendar object", path.EventUID)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.relay.Relay(gctx, topic, event)
	})

	switch subject {
	case constants.EventCreatedSubject:
		g.Go(func() error { return s.index.Created(gctx, path, current) })
		g.Go(func() error { return s.alarms.Register(gctx, path, current) })

	case constants.EventUpdatedSubject:
		previous, errOld := parseOptional(event.OldEvent)
		if errOld != nil {
			slog.WarnContext(ctx, "ignoring invalid previous calendar object",
				"error", errOld,
				"event_uid", path.EventUID)
		}
		g.Go(func() error { return s.index.Updated(gctx, path, previous, current) })
		g.Go(func() error { return s.alarms.Register(gctx, path, current) })

	case constants.EventDeletedSubject:
		g.Go(func() error { return s.index.Deleted(gctx, path, current) })
		g.Go(func() error { return s.alarms.Unregister(gctx, path) })
	}

	if err := g.Wait(); err != nil {
		return err
	}

	slog.InfoContext(ctx, "calendar event processed successfully",
		"subject", subject,
		"event_uid", path.EventUID,
		"import", event.Import)
	return nil
}

// parseOptional parses ics unless it is empty.
func parseOptional(ics string) (*calendar.Object, error) {
	if ics == "" {
		return nil, nil
	}
	return calendar.Parse(ics)
}
