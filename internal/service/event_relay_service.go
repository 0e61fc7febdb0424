// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"

	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/domain/model"
	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/domain/port"
	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/constants"
)

// EventRelayService forwards calendar changes to the websocket gateway of
// the calendar owner and of every sharee.
type EventRelayService struct {
	publisher port.MessagePublisher
}

// NewEventRelayService creates a new event relay service
func NewEventRelayService(publisher port.MessagePublisher) *EventRelayService {
	return &EventRelayService{publisher: publisher}
}

// Relay publishes msg under topic. Imported events and messages with an
// unusable event path are dropped.
func (s *EventRelayService) Relay(ctx context.Context, topic string, msg *model.EventMessage) error {
	if msg.Import {
		slog.DebugContext(ctx, "imported event is not relayed", "event_path", msg.EventPath)
		return nil
	}

	path, err := model.ParseEventPath(msg.EventPath)
	if err != nil {
		slog.WarnContext(ctx, "dropping websocket relay of invalid event path",
			"error", err,
			"event_path", msg.EventPath,
		)
		return nil
	}

	payload := *msg
	payload.ShareeIDs = nil
	message := &model.WebsocketMessage{
		Namespace: constants.WebsocketNamespace,
		Topic:     topic,
		Event:     &payload,
	}

	for _, userID := range s.recipients(ctx, path, msg.ShareeIDs) {
		subject := constants.WebsocketUserSubjectPrefix + userID
		if err := s.publisher.Websocket(ctx, subject, message); err != nil {
			slog.ErrorContext(ctx, "failed to relay calendar event",
				"error", err,
				"subject", subject,
				"topic", topic,
			)
			return err
		}
	}

	slog.DebugContext(ctx, "calendar event relayed",
		"topic", topic,
		"event_uid", path.EventUID,
		"sharees", len(msg.ShareeIDs),
	)
	return nil
}

// recipients is the owner of the calendar home followed by each distinct
// sharee.
func (s *EventRelayService) recipients(ctx context.Context, path model.EventPath, sharees []string) []string {
	users := []string{path.CalendarHomeID}
	seen := map[string]bool{path.CalendarHomeID: true}

	for _, principal := range sharees {
		id, err := model.ParseUserPrincipal(principal)
		if err != nil {
			slog.WarnContext(ctx, "skipping invalid sharee principal", "error", err)
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		users = append(users, id)
	}
	return users
}

// websocketTopic maps an event change subject onto its websocket topic.
func websocketTopic(subject string) (string, bool) {
	switch subject {
	case constants.EventCreatedSubject:
		return constants.WebsocketEventCreated, true
	case constants.EventUpdatedSubject:
		return constants.WebsocketEventUpdated, true
	case constants.EventDeletedSubject:
		return constants.WebsocketEventDeleted, true
	case constants.EventRequestSubject:
		return constants.WebsocketEventRequest, true
	case constants.EventCancelSubject:
		return constants.WebsocketEventCancel, true
	case constants.EventReplySubject:
		return constants.WebsocketEventReply, true
	}
	return "", false
}
