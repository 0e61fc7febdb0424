// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package constants

const (
	// KVBucketNameCalendarObjects is the name of the KV bucket holding raw calendar objects,
	// keyed by event path.
	KVBucketNameCalendarObjects = "calendar-objects"

	// KVBucketNameCalendarAlarms is the name of the KV bucket holding scheduled alarms.
	KVBucketNameCalendarAlarms = "calendar-alarms"

	// KVLookupAlarmEventPrefix is the key pattern grouping the alarms of one event path
	KVLookupAlarmEventPrefix = "alarm.%s."
)
