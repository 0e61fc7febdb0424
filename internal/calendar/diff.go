// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package calendar

import (
	"strings"

	"github.com/emersion/go-ical"
)

// ModificationType is the search-index maintenance needed after an update.
type ModificationType string

const (
	// MasterEventUpdate overwrites the master document only.
	MasterEventUpdate ModificationType = "MASTER_EVENT_UPDATE"
	// FirstSpecialOccursAdded adds documents for new exceptions only.
	FirstSpecialOccursAdded ModificationType = "FIRST_SPECIAL_OCCURS_ADDED"
	// FullReindex rewrites the master and every exception.
	FullReindex ModificationType = "FULL_REINDEX"
)

// DiffDetails lists the exceptions touched by an update.
type DiffDetails struct {
	NewRecurrenceIDs         []string `json:"newRecurrenceIds,omitempty"`
	RecurrenceIDsToBeDeleted []string `json:"recurrenceIdsToBeDeleted,omitempty"`
}

// DiffResult classifies an update of a calendar object.
type DiffResult struct {
	ActionType    ModificationType `json:"actionType"`
	ActionDetails *DiffDetails     `json:"actionDetails,omitempty"`
}

// RecurrenceIDs returns the RECURRENCE-ID values of every VEVENT of obj in
// document order, without duplicates. Events without one are skipped.
func RecurrenceIDs(obj *Object) []string {
	if obj == nil {
		return nil
	}

	seen := map[string]struct{}{}
	var ids []string
	for _, event := range obj.Events() {
		id := strings.TrimSpace(propValue(event, ical.PropRecurrenceID))
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// RecurrenceException returns the VEVENT overriding the occurrence
// recurrenceID, nil when obj has none.
func RecurrenceException(obj *Object, recurrenceID string) *ical.Component {
	if obj == nil {
		return nil
	}
	for _, event := range obj.Events() {
		if strings.TrimSpace(propValue(event, ical.PropRecurrenceID)) == recurrenceID {
			return event
		}
	}
	return nil
}

// AnalyzeDiff classifies the index maintenance needed to go from old to
// updated. A nil old object is treated as one without exceptions or master.
// Ambiguous cases always yield FullReindex.
func AnalyzeDiff(old, updated *Object) DiffResult {
	oldIDs := RecurrenceIDs(old)
	newIDs := RecurrenceIDs(updated)

	if len(oldIDs) == 0 && len(newIDs) == 0 {
		return DiffResult{ActionType: MasterEventUpdate}
	}

	if len(oldIDs) == 0 && canonicalText(masterEvent(old)) == canonicalText(masterEvent(updated)) {
		return DiffResult{
			ActionType:    FirstSpecialOccursAdded,
			ActionDetails: &DiffDetails{NewRecurrenceIDs: newIDs},
		}
	}

	kept := make(map[string]struct{}, len(newIDs))
	for _, id := range newIDs {
		kept[id] = struct{}{}
	}
	var deleted []string
	for _, id := range oldIDs {
		if _, ok := kept[id]; !ok {
			deleted = append(deleted, id)
		}
	}

	return DiffResult{
		ActionType: FullReindex,
		ActionDetails: &DiffDetails{
			NewRecurrenceIDs:         newIDs,
			RecurrenceIDsToBeDeleted: deleted,
		},
	}
}

// masterEvent is the VEVENT without RECURRENCE-ID, nil when there is none.
func masterEvent(obj *Object) *ical.Component {
	if obj == nil {
		return nil
	}
	for _, event := range obj.Events() {
		if !hasRecurrenceID(event) {
			return event
		}
	}
	return nil
}
