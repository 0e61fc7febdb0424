// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package constants

// CalendarServiceQueue is the NATS queue group for calendar service subscriptions
const CalendarServiceQueue = "lfx-v2-calendar-service"

// Implementation sources selectable through the environment
const (
	SourceNATS   = "nats"
	SourceCalDAV = "caldav"
	SourceMock   = "mock"
)
