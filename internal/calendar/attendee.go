// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package calendar

import (
	"regexp"

	"github.com/emersion/go-ical"

	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/constants"
)

var mailtoPrefix = regexp.MustCompile(`(?i)^mailto:`)

// Attendee is one ATTENDEE entry of a VEVENT.
type Attendee struct {
	Email               string `json:"-"`
	CommonName          string `json:"cn,omitempty"`
	ParticipationStatus string `json:"partstat,omitempty"`
}

// Attendees maps attendee email to its record. Keys keep the case found in
// the object: two entries differing only in case are distinct attendees.
type Attendees map[string]Attendee

// Emails returns the keys of the map in no particular order.
func (a Attendees) Emails() []string {
	emails := make([]string, 0, len(a))
	for email := range a {
		emails = append(emails, email)
	}
	return emails
}

// StripMailto removes a case-insensitive "mailto:" prefix.
func StripMailto(value string) string {
	return mailtoPrefix.ReplaceAllString(value, "")
}

// ExtractAttendees splits the attendees of event into humans and resources
// (CUTYPE=RESOURCE).
func ExtractAttendees(event *ical.Component) (Attendees, Attendees) {
	humans := Attendees{}
	resources := Attendees{}
	if event == nil {
		return humans, resources
	}

	for _, prop := range event.Props.Values(ical.PropAttendee) {
		record := Attendee{
			Email:               StripMailto(prop.Value),
			CommonName:          prop.Params.Get(ical.ParamCommonName),
			ParticipationStatus: prop.Params.Get(ical.ParamParticipationStatus),
		}

		if prop.Params.Get(ical.ParamCalendarUserType) == constants.CalendarUserTypeResource {
			resources[record.Email] = record
			continue
		}
		humans[record.Email] = record
	}

	return humans, resources
}

// AttendeeEmails returns every attendee email, humans and resources alike,
// found on the master or any of its exceptions, in first-seen order.
func AttendeeEmails(obj *Object) []string {
	seen := map[string]struct{}{}
	var emails []string

	for _, event := range obj.Occurrences() {
		for _, prop := range event.Props.Values(ical.PropAttendee) {
			email := StripMailto(prop.Value)
			if _, ok := seen[email]; ok {
				continue
			}
			seen[email] = struct{}{}
			emails = append(emails, email)
		}
	}

	return emails
}

// FindAttendee returns the attendee record of email on event.
func FindAttendee(event *ical.Component, email string) (Attendee, bool) {
	humans, resources := ExtractAttendees(event)
	if record, ok := humans[email]; ok {
		return record, true
	}
	record, ok := resources[email]
	return record, ok
}

// OrganizerEmail returns the ORGANIZER of the master event without its
// mailto: prefix.
func OrganizerEmail(obj *Object) string {
	return StripMailto(propValue(obj.Master(), ical.PropOrganizer))
}
