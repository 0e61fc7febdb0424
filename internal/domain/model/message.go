// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package model

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"time"

	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/calendar"
	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/constants"
)

// MessageAction is the action of an indexer message
type MessageAction string

// MessageAction constants
const (
	// ActionCreated is the action for a document creation message
	ActionCreated MessageAction = "created"
	// ActionUpdated is the action for a document update message
	ActionUpdated MessageAction = "updated"
	// ActionDeleted is the action for a document deletion message
	ActionDeleted MessageAction = "deleted"
)

// IndexerMessage is a NATS message schema for keeping the calendar event
// search index in sync. It is consumed by the indexing service.
type IndexerMessage struct {
	Action  MessageAction     `json:"action"`
	Headers map[string]string `json:"headers"`
	Data    any               `json:"data"`
	// Tags is a list of tags to be set on the indexed document for search
	Tags []string `json:"tags"`
}

// Build constructs an indexer message with proper context extraction and data marshaling
func (g *IndexerMessage) Build(ctx context.Context, input any) (*IndexerMessage, error) {
	// Extract headers from context for authorization propagation
	headers := make(map[string]string)
	if authorization, ok := ctx.Value(constants.AuthorizationContextID).(string); ok {
		headers[constants.AuthorizationHeader] = authorization
	}
	if principal, ok := ctx.Value(constants.PrincipalContextID).(string); ok {
		headers[constants.XOnBehalfOfHeader] = principal
	}
	g.Headers = headers

	var payload any

	switch g.Action {
	case ActionCreated, ActionUpdated:
		// The indexer expects a map[string]any
		data, err := json.Marshal(input)
		if err != nil {
			slog.ErrorContext(ctx, "error marshalling data into JSON", "error", err)
			return nil, err
		}
		var jsonData map[string]any
		if err := json.Unmarshal(data, &jsonData); err != nil {
			slog.ErrorContext(ctx, "error unmarshalling data into JSON", "error", err)
			return nil, err
		}
		payload = jsonData
	case ActionDeleted:
		// For delete actions, the data is the id of the document being deleted
		payload = input
	}

	g.Data = payload
	return g, nil
}

// EventDocument is the search-index document of a master event or of one of
// its exceptions.
type EventDocument struct {
	ID             string               `json:"id"`
	ObjectType     string               `json:"object_type"`
	CalendarHomeID string               `json:"calendar_home_id"`
	CalendarID     string               `json:"calendar_id"`
	UID            string               `json:"uid"`
	RecurrenceID   string               `json:"recurrence_id,omitempty"`
	Summary        string               `json:"summary"`
	Location       string               `json:"location,omitempty"`
	Description    string               `json:"description,omitempty"`
	Class          string               `json:"class,omitempty"`
	Start          *time.Time           `json:"start,omitempty"`
	End            *time.Time           `json:"end,omitempty"`
	AllDay         bool                 `json:"all_day"`
	Recurring      bool                 `json:"recurring"`
	Organizer      *calendar.Organizer  `json:"organizer,omitempty"`
	Attendees      []IndexedParticipant `json:"attendees"`
	Resources      []IndexedParticipant `json:"resources,omitempty"`
	IndexedAt      time.Time            `json:"indexed_at"`
}

// IndexedParticipant is an attendee as stored in the search index.
type IndexedParticipant struct {
	Email               string `json:"email"`
	CommonName          string `json:"cn,omitempty"`
	ParticipationStatus string `json:"partstat,omitempty"`
}

// NewEventDocument builds the document of content stored at path.
// recurrenceID is empty for the master event.
func NewEventDocument(path EventPath, recurrenceID string, content *calendar.EventContent, now time.Time) *EventDocument {
	doc := &EventDocument{
		ID:             path.DocumentID(recurrenceID),
		ObjectType:     constants.EventIndexObjectType,
		CalendarHomeID: path.CalendarHomeID,
		CalendarID:     path.CalendarID,
		UID:            content.UID,
		RecurrenceID:   recurrenceID,
		Summary:        content.Summary,
		Location:       content.Location,
		Description:    content.Description,
		Class:          content.Class,
		AllDay:         content.AllDay,
		Recurring:      content.Recurring,
		Organizer:      content.Organizer,
		Attendees:      indexedParticipants(content.Attendees),
		Resources:      indexedParticipants(content.Resources),
		IndexedAt:      now.UTC(),
	}

	if start, ok := content.StartValue(); ok {
		t := start.Time()
		doc.Start = &t
	}
	if end, ok := content.EndValue(); ok {
		t := end.Time()
		doc.End = &t
	}

	return doc
}

// Tags returns the search tags of the document.
func (d *EventDocument) Tags() []string {
	tags := []string{
		d.ID,
		"uid:" + d.UID,
		"calendar_home_id:" + d.CalendarHomeID,
		"calendar_id:" + d.CalendarID,
	}
	if d.RecurrenceID != "" {
		tags = append(tags, "recurrence_id:"+d.RecurrenceID)
	}
	if d.Organizer != nil {
		tags = append(tags, "organizer:"+d.Organizer.Email)
	}
	return tags
}

func indexedParticipants(attendees calendar.Attendees) []IndexedParticipant {
	participants := make([]IndexedParticipant, 0, len(attendees))
	for email, attendee := range attendees {
		participants = append(participants, IndexedParticipant{
			Email:               email,
			CommonName:          attendee.CommonName,
			ParticipationStatus: attendee.ParticipationStatus,
		})
	}
	sort.Slice(participants, func(i, j int) bool {
		return participants[i].Email < participants[j].Email
	})
	return participants
}
