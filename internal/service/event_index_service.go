// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"

	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/calendar"
	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/domain/model"
	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/domain/port"
	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/constants"
)

// EventIndexService keeps the calendar event search index in sync with
// calendar object changes.
type EventIndexService struct {
	publisher port.MessagePublisher
	baseURL   string
	now       func() time.Time
}

// NewEventIndexService creates a new event index service
func NewEventIndexService(publisher port.MessagePublisher, baseURL string) *EventIndexService {
	return &EventIndexService{
		publisher: publisher,
		baseURL:   baseURL,
		now:       time.Now,
	}
}

// Created indexes the master event and each of its exceptions.
func (s *EventIndexService) Created(ctx context.Context, path model.EventPath, obj *calendar.Object) error {
	if err := s.publishMaster(ctx, model.ActionCreated, path, obj); err != nil {
		return err
	}
	for _, id := range calendar.RecurrenceIDs(obj) {
		if err := s.publishEvent(ctx, model.ActionCreated, path, id, calendar.RecurrenceException(obj, id), obj.Method()); err != nil {
			return err
		}
	}
	return nil
}

// Updated applies the index maintenance classified by calendar.AnalyzeDiff.
// A nil previous revision forces a full reindex.
func (s *EventIndexService) Updated(ctx context.Context, path model.EventPath, previous, current *calendar.Object) error {
	diff := calendar.AnalyzeDiff(previous, current)
	if previous == nil {
		diff = forceFullReindex(diff, current)
	}

	slog.DebugContext(ctx, "classified calendar event update",
		"event_uid", path.EventUID,
		"action_type", diff.ActionType,
	)

	switch diff.ActionType {
	case calendar.MasterEventUpdate:
		return s.publishMaster(ctx, model.ActionUpdated, path, current)

	case calendar.FirstSpecialOccursAdded:
		for _, id := range diff.ActionDetails.NewRecurrenceIDs {
			if err := s.publishEvent(ctx, model.ActionCreated, path, id, calendar.RecurrenceException(current, id), current.Method()); err != nil {
				return err
			}
		}
		return nil

	default:
		for _, id := range diff.ActionDetails.RecurrenceIDsToBeDeleted {
			if err := s.publishDeleted(ctx, path, id); err != nil {
				return err
			}
		}
		if err := s.publishMaster(ctx, model.ActionUpdated, path, current); err != nil {
			return err
		}
		for _, id := range diff.ActionDetails.NewRecurrenceIDs {
			if err := s.publishEvent(ctx, model.ActionUpdated, path, id, calendar.RecurrenceException(current, id), current.Method()); err != nil {
				return err
			}
		}
		return nil
	}
}

// Deleted removes the master event document and those of its exceptions.
func (s *EventIndexService) Deleted(ctx context.Context, path model.EventPath, obj *calendar.Object) error {
	if err := s.publishDeleted(ctx, path, ""); err != nil {
		return err
	}
	for _, id := range calendar.RecurrenceIDs(obj) {
		if err := s.publishDeleted(ctx, path, id); err != nil {
			return err
		}
	}
	return nil
}

func forceFullReindex(diff calendar.DiffResult, current *calendar.Object) calendar.DiffResult {
	if diff.ActionType == calendar.FullReindex {
		return diff
	}
	return calendar.DiffResult{
		ActionType:    calendar.FullReindex,
		ActionDetails: &calendar.DiffDetails{NewRecurrenceIDs: calendar.RecurrenceIDs(current)},
	}
}

// publishMaster indexes the master document. Objects carrying only
// overridden occurrences have none; their exceptions are indexed on their own.
func (s *EventIndexService) publishMaster(ctx context.Context, action model.MessageAction, path model.EventPath, obj *calendar.Object) error {
	if !obj.HasMaster() {
		slog.DebugContext(ctx, "calendar object has no master event, skipping master document",
			"event_uid", path.EventUID,
		)
		return nil
	}
	return s.publishEvent(ctx, action, path, "", obj.Master(), obj.Method())
}

func (s *EventIndexService) publishEvent(ctx context.Context, action model.MessageAction, path model.EventPath, recurrenceID string, event *ical.Component, method string) error {
	content, err := calendar.BuildEventContent(method, event, s.baseURL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to build event content for indexing",
			"error", err,
			"event_uid", path.EventUID,
			"recurrence_id", recurrenceID,
		)
		return err
	}

	doc := model.NewEventDocument(path, recurrenceID, content, s.now())
	message := &model.IndexerMessage{
		Action: action,
		Tags:   doc.Tags(),
	}
	built, err := message.Build(ctx, doc)
	if err != nil {
		return err
	}

	return s.publish(ctx, built, doc.ID)
}

func (s *EventIndexService) publishDeleted(ctx context.Context, path model.EventPath, recurrenceID string) error {
	id := path.DocumentID(recurrenceID)
	message := &model.IndexerMessage{Action: model.ActionDeleted}
	built, err := message.Build(ctx, id)
	if err != nil {
		return err
	}
	return s.publish(ctx, built, id)
}

func (s *EventIndexService) publish(ctx context.Context, message *model.IndexerMessage, documentID string) error {
	if err := s.publisher.Indexer(ctx, constants.IndexCalendarEventSubject, message); err != nil {
		slog.ErrorContext(ctx, "failed to publish indexer message",
			"error", err,
			"action", message.Action,
			"document_id", documentID,
		)
		return err
	}

	slog.DebugContext(ctx, "indexer message published",
		"action", message.Action,
		"document_id", documentID,
	)
	return nil
}
