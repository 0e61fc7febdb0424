// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package calendar normalizes iCalendar objects into event content, updates
// participation on them and classifies the search-index maintenance needed
// between two revisions of the same object.
package calendar

import (
	"bytes"
	"strings"

	"github.com/emersion/go-ical"

	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/errors"
)

// Object is one calendar object: a VCALENDAR holding a master VEVENT, its
// recurrence exceptions and any VTIMEZONE definitions.
type Object struct {
	*ical.Calendar
}

// Parse decodes an iCalendar text blob.
func Parse(ics string) (*Object, error) {
	if strings.TrimSpace(ics) == "" {
		return nil, errors.NewValidation("calendar object is empty")
	}

	cal, err := ical.NewDecoder(strings.NewReader(ics)).Decode()
	if err != nil {
		return nil, errors.NewValidation("invalid iCalendar payload", err)
	}

	return &Object{Calendar: cal}, nil
}

// Encode serializes the object back to iCalendar text.
func (o *Object) Encode() (string, error) {
	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(o.Calendar); err != nil {
		return "", errors.NewUnexpected("failed to encode calendar object", err)
	}
	return buf.String(), nil
}

// Method returns the iTIP METHOD of the container, empty when absent.
func (o *Object) Method() string {
	return propValue(o.Component, ical.PropMethod)
}

// Events returns every VEVENT of the container in document order.
func (o *Object) Events() []*ical.Component {
	if o == nil || o.Calendar == nil || o.Component == nil {
		return nil
	}

	events := make([]*ical.Component, 0, len(o.Children))
	for _, child := range o.Children {
		if child.Name == ical.CompEvent {
			events = append(events, child)
		}
	}
	return events
}

// Master returns the VEVENT without RECURRENCE-ID. When every VEVENT is an
// exception (an iTIP message about a single occurrence) the first one is used.
func (o *Object) Master() *ical.Component {
	events := o.Events()
	for _, event := range events {
		if !hasRecurrenceID(event) {
			return event
		}
	}
	if len(events) > 0 {
		return events[0]
	}
	return nil
}

// HasMaster reports whether the object holds a VEVENT without RECURRENCE-ID.
func (o *Object) HasMaster() bool {
	for _, event := range o.Events() {
		if !hasRecurrenceID(event) {
			return true
		}
	}
	return false
}

// Exceptions returns the VEVENTs overriding one occurrence of the master,
// i.e. carrying a RECURRENCE-ID and sharing the master's UID.
func (o *Object) Exceptions() []*ical.Component {
	master := o.Master()
	if master == nil {
		return nil
	}
	uid := propValue(master, ical.PropUID)

	var exceptions []*ical.Component
	for _, event := range o.Events() {
		if event == master || !hasRecurrenceID(event) {
			continue
		}
		if propValue(event, ical.PropUID) != uid {
			continue
		}
		exceptions = append(exceptions, event)
	}
	return exceptions
}

// Occurrences returns the master followed by its exceptions.
func (o *Object) Occurrences() []*ical.Component {
	master := o.Master()
	if master == nil {
		return nil
	}
	return append([]*ical.Component{master}, o.Exceptions()...)
}

// UID of the master event.
func (o *Object) UID() string {
	return propValue(o.Master(), ical.PropUID)
}

func hasRecurrenceID(event *ical.Component) bool {
	return strings.TrimSpace(propValue(event, ical.PropRecurrenceID)) != ""
}

// propValue returns the raw value of the first property named name.
func propValue(comp *ical.Component, name string) string {
	if comp == nil {
		return ""
	}
	prop := comp.Props.Get(name)
	if prop == nil {
		return ""
	}
	return prop.Value
}

// textValue returns the first property named name with RFC 5545 TEXT
// escaping removed.
func textValue(comp *ical.Component, name string) string {
	if comp == nil {
		return ""
	}
	prop := comp.Props.Get(name)
	if prop == nil {
		return ""
	}
	text, err := prop.Text()
	if err != nil {
		return prop.Value
	}
	return text
}

// firstChild returns the first child component named name.
func firstChild(comp *ical.Component, name string) *ical.Component {
	if comp == nil {
		return nil
	}
	for _, child := range comp.Children {
		if child.Name == name {
			return child
		}
	}
	return nil
}
