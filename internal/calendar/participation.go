// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package calendar

import (
	"github.com/emersion/go-ical"
)

// UpdateParticipation sets the PARTSTAT of every ATTENDEE matching email on
// the master and each of its exceptions. The object is mutated and returned;
// an attendee found nowhere leaves it unchanged. Callers must serialize
// concurrent mutations of the same object.
func UpdateParticipation(obj *Object, email, status string) *Object {
	for _, event := range obj.Occurrences() {
		attendees := event.Props[ical.PropAttendee]
		for i := range attendees {
			if StripMailto(attendees[i].Value) != email {
				continue
			}
			if attendees[i].Params == nil {
				attendees[i].Params = ical.Params{}
			}
			attendees[i].Params.Set(ical.ParamParticipationStatus, status)
		}
	}
	return obj
}

// CountAttendee returns how many occurrences of obj list email.
func CountAttendee(obj *Object, email string) int {
	count := 0
	for _, event := range obj.Occurrences() {
		for _, prop := range event.Props.Values(ical.PropAttendee) {
			if StripMailto(prop.Value) == email {
				count++
				break
			}
		}
	}
	return count
}

// UpdateTransp sets TRANSP to value on the master and every exception.
func UpdateTransp(obj *Object, value string) *Object {
	for _, event := range obj.Occurrences() {
		prop := ical.NewProp(ical.PropTransparency)
		prop.Value = value
		event.Props.Set(prop)
	}
	return obj
}
