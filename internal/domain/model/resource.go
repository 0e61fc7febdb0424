// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package model

import "fmt"

// Resource is a bookable item (room, projector) with its own calendar.
type Resource struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type,omitempty"`
	Creator     string `json:"creator,omitempty"`
	Domain      Domain `json:"domain"`
}

// Email is the address the resource is invited with.
func (r *Resource) Email() string {
	return fmt.Sprintf("%s@%s", r.ID, r.Domain.Name)
}

// EventPath is the path of eventID in the resource's own calendar.
func (r *Resource) EventPath(eventID string) EventPath {
	return EventPath{CalendarHomeID: r.ID, CalendarID: r.ID, EventUID: eventID}
}
