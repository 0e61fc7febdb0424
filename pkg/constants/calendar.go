// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package constants

// Attendee participation actions carried by participation links
const (
	AttendeeActionAccepted  = "ACCEPTED"
	AttendeeActionDeclined  = "DECLINED"
	AttendeeActionTentative = "TENTATIVE"
)

// AttendeeActions lists the actions a participation link can carry, in link order
var AttendeeActions = []string{AttendeeActionAccepted, AttendeeActionDeclined, AttendeeActionTentative}

// VALARM actions
const (
	AlarmActionDisplay = "DISPLAY"
	AlarmActionEmail   = "EMAIL"
)

// TRANSP values
const (
	TranspTransparent = "TRANSPARENT"
	TranspOpaque      = "OPAQUE"
)

// Calendar user types
const (
	CalendarUserTypeResource = "RESOURCE"
)

// iTIP methods routed to notification emails
const (
	MethodRequest = "REQUEST"
	MethodReply   = "REPLY"
	MethodCounter = "COUNTER"
	MethodCancel  = "CANCEL"
)

// DefaultEventSummary replaces an empty SUMMARY in rendered notifications
const DefaultEventSummary = "No title"

// DefaultLocale is used when no locale is configured for a user
const DefaultLocale = "en"

// Websocket topics relayed to calendar clients
const (
	WebsocketNamespace    = "/calendars"
	WebsocketEventCreated = "calendar:ws:event:created"
	WebsocketEventUpdated = "calendar:ws:event:updated"
	WebsocketEventRequest = "calendar:ws:event:request"
	WebsocketEventCancel  = "calendar:ws:event:cancel"
	WebsocketEventDeleted = "calendar:ws:event:deleted"
	WebsocketEventReply   = "calendar:ws:event:reply"
)

// Email templates
const (
	EmailTemplatePath          = "templates/email"
	EmailTemplateInvitation    = "event.invitation"
	EmailTemplateUpdate        = "event.update"
	EmailTemplateReply         = "event.reply"
	EmailTemplateCounter       = "event.counter"
	EmailTemplateCancel        = "event.cancel"
	EmailTemplateAlarm         = "event.alarm"
	EmailAttachmentName        = "meeting.ics"
	EmailAttachmentContentType = "application/ics"
	EmailEncoding              = "base64"
)

// Web application routes linked from notification emails
const (
	ParticipationLinkPath = "/calendar/#/calendar/participation/?jwt="
	CalendarLinkPath      = "/calendar/#/calendar?start="
	CalendarLinkDate      = "2006-01-02"
)

// Alarm scheduling
const (
	AlarmDefaultCronExpression = "0 * * * * *"

	AlarmStateWaiting = "waiting"
	AlarmStateRunning = "running"
	AlarmStateDone    = "done"
	AlarmStateError   = "error"
)

// Search index
const (
	EventIndexObjectType = "calendar_event"
)
