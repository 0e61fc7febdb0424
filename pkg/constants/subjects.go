// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package constants

// Calendar event change subjects, published by the CalDAV bridge
const (
	EventCreatedSubject = "lfx.calendar.event.created"
	EventUpdatedSubject = "lfx.calendar.event.updated"
	EventDeletedSubject = "lfx.calendar.event.deleted"
	EventRequestSubject = "lfx.calendar.event.request"
	EventCancelSubject  = "lfx.calendar.event.cancel"
	EventReplySubject   = "lfx.calendar.event.reply"

	// NotificationEmailSendSubject carries one notification email request per recipient
	NotificationEmailSendSubject = "lfx.calendar.event.notification_email.send"
)

// Request/reply subjects served by this service
const (
	ParticipationUpdateSubject         = "lfx.calendar.participation.update"
	ResourceParticipationUpdateSubject = "lfx.calendar.resource.participation.update"
)

// Outbound subjects
const (
	// Indexing subject for search and discovery
	IndexCalendarEventSubject = "lfx.index.calendar_event"

	// WebsocketUserSubjectPrefix is suffixed with the user id of the websocket recipient
	WebsocketUserSubjectPrefix = "lfx.calendar.ws."

	// EmailSendSubject hands composed messages to the mail transport
	EmailSendSubject = "lfx.email.send"
)

// Request/reply subjects consumed by this service
const (
	UserFindByEmailSubject      = "lfx.users.find_by_email"
	UserGetSubject              = "lfx.users.get"
	UserDatetimeSettingsSubject = "lfx.users.settings.datetime"
	UserLocaleSettingsSubject   = "lfx.users.settings.locale"
	CalendarResourceGetSubject  = "lfx.calendar.resource.get"
)
