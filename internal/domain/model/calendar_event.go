// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package model

import (
	"fmt"
	"strings"

	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/errors"
)

const (
	calendarsRoot    = "calendars"
	userPrincipalRef = "principals/users/"
	eventFileSuffix  = ".ics"
)

// EventMessage is published by the CalDAV bridge whenever a calendar object
// changes. OldEvent is only set on updates.
type EventMessage struct {
	EventPath string   `json:"eventPath"`
	Event     string   `json:"event"`
	OldEvent  string   `json:"oldEvent,omitempty"`
	Import    bool     `json:"import,omitempty"`
	ShareeIDs []string `json:"shareeIds,omitempty"`
}

// EventPath locates a calendar object on the CalDAV server.
type EventPath struct {
	CalendarHomeID string `json:"calendarHomeId"`
	CalendarID     string `json:"calendarId"`
	EventUID       string `json:"eventUid"`
}

// ParseEventPath splits /calendars/{home}/{calendar}/{uid}.ics.
func ParseEventPath(path string) (EventPath, error) {
	trimmed := strings.Trim(strings.TrimSpace(path), "/")
	if trimmed == "" {
		return EventPath{}, errors.NewValidation("event path is empty")
	}

	parts := strings.Split(trimmed, "/")
	if parts[0] == calendarsRoot {
		parts = parts[1:]
	}
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return EventPath{}, errors.NewValidation(fmt.Sprintf("invalid event path: %s", path))
	}

	return EventPath{
		CalendarHomeID: parts[0],
		CalendarID:     parts[1],
		EventUID:       strings.TrimSuffix(parts[2], eventFileSuffix),
	}, nil
}

// String renders the path in its /calendars/{home}/{calendar}/{uid}.ics form.
func (p EventPath) String() string {
	return fmt.Sprintf("/%s/%s/%s/%s%s", calendarsRoot, p.CalendarHomeID, p.CalendarID, p.EventUID, eventFileSuffix)
}

// DocumentID is the search-index key of the master event, or of one of its
// exceptions when recurrenceID is set.
func (p EventPath) DocumentID(recurrenceID string) string {
	id := strings.Join([]string{p.CalendarHomeID, p.CalendarID, p.EventUID}, "--")
	if recurrenceID != "" {
		id += "--" + recurrenceID
	}
	return id
}

// ParseUserPrincipal extracts the user id of a principals/users/{id} URI.
func ParseUserPrincipal(principal string) (string, error) {
	trimmed := strings.Trim(strings.TrimSpace(principal), "/")
	if !strings.HasPrefix(trimmed, userPrincipalRef) {
		return "", errors.NewValidation(fmt.Sprintf("invalid user principal: %s", principal))
	}
	id := strings.TrimPrefix(trimmed, userPrincipalRef)
	if id == "" || strings.Contains(id, "/") {
		return "", errors.NewValidation(fmt.Sprintf("invalid user principal: %s", principal))
	}
	return id, nil
}

// WebsocketMessage is relayed to the websocket gateway of one user.
type WebsocketMessage struct {
	Namespace string        `json:"namespace"`
	Topic     string        `json:"topic"`
	Event     *EventMessage `json:"event"`
}

// CalendarObject is the raw text of an event stored on the CalDAV server with
// the entity tag of its current revision.
type CalendarObject struct {
	Path string `json:"path"`
	ICS  string `json:"ics"`
	ETag string `json:"etag,omitempty"`
}
