// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package model

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/constants"
)

// Alarm is an EMAIL reminder scheduled for one event.
type Alarm struct {
	ID        string    `json:"id"`
	EventPath string    `json:"eventPath"`
	EventUID  string    `json:"eventUid"`
	Action    string    `json:"action"`
	DueDate   time.Time `json:"dueDate"`
	Email     string    `json:"email"`
	Summary   string    `json:"summary"`
	ICS       string    `json:"ics"`
	State     string    `json:"state"`
	LastError string    `json:"lastError,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Key is the storage key of the alarm, grouped by event path.
func (a *Alarm) Key() string {
	return AlarmKeyPrefix(a.EventPath) + a.ID
}

// IsDue reports whether a waiting alarm should fire at now.
func (a *Alarm) IsDue(now time.Time) bool {
	return a.State == constants.AlarmStateWaiting && !a.DueDate.After(now)
}

// AlarmKeyPrefix is the storage key prefix of every alarm of eventPath.
func AlarmKeyPrefix(eventPath string) string {
	return fmt.Sprintf(constants.KVLookupAlarmEventPrefix, EncodeKey(eventPath))
}

// EncodeKey maps an event path onto the NATS KV key alphabet.
func EncodeKey(path string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(path))
}
