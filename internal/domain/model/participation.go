// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package model

import (
	"slices"
	"strings"

	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/constants"
	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/errors"
)

// ParticipationToken is the payload of a one-click participation link.
type ParticipationToken struct {
	Action         string `json:"action"`
	AttendeeEmail  string `json:"attendeeEmail"`
	CalendarURI    string `json:"calendarURI"`
	OrganizerEmail string `json:"organizerEmail"`
	UID            string `json:"uid"`
}

// Validate checks that every field is set and the action is supported.
func (t *ParticipationToken) Validate() error {
	missing := []string{}
	if t.CalendarURI == "" {
		missing = append(missing, "calendarURI")
	}
	if t.UID == "" {
		missing = append(missing, "uid")
	}
	if t.AttendeeEmail == "" {
		missing = append(missing, "attendeeEmail")
	}
	if t.Action == "" {
		missing = append(missing, "action")
	}
	if t.OrganizerEmail == "" {
		missing = append(missing, "organizerEmail")
	}
	if len(missing) > 0 {
		return errors.NewValidation("participation token is missing " + strings.Join(missing, ", "))
	}

	if !slices.Contains(constants.AttendeeActions, t.Action) {
		return errors.NewValidation("participation token has an unsupported action: " + t.Action)
	}
	return nil
}

// ParticipationRequest is the request of the participation reply subject.
type ParticipationRequest struct {
	Token string `json:"token"`
}

// ResourceParticipationRequest is the request of the resource participation
// subject.
type ResourceParticipationRequest struct {
	ResourceID string `json:"resourceId"`
	EventID    string `json:"eventId"`
	Status     string `json:"status"`
}

// ParticipationResult describes the calendar object after a participation
// change.
type ParticipationResult struct {
	EventPath     string `json:"eventPath"`
	AttendeeEmail string `json:"attendeeEmail"`
	Status        string `json:"status"`
	ETag          string `json:"etag,omitempty"`
}

// ReplyResponse wraps the result or the error of a request/reply handler.
type ReplyResponse struct {
	Result *ParticipationResult `json:"result,omitempty"`
	// Code is the HTTP-like status of a failed request
	Code  int    `json:"code,omitempty"`
	Error string `json:"error,omitempty"`
}
