// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package model

import (
	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/calendar"
)

// NotificationRequest asks for the notification email of one recipient about
// one iTIP message. Sender may be omitted when SenderEmail is set.
type NotificationRequest struct {
	Method         string   `json:"method"`
	ICS            string   `json:"ics"`
	OldICS         string   `json:"oldIcs,omitempty"`
	Sender         *User    `json:"sender,omitempty"`
	SenderEmail    string   `json:"senderEmail,omitempty"`
	RecipientEmail string   `json:"recipientEmail"`
	CalendarURI    string   `json:"calendarURI"`
	IsNewEvent     bool     `json:"isNewEvent"`
	Changes        *Changes `json:"changes,omitempty"`
}

// Changes lists what an update modified on the event.
type Changes struct {
	DTStart  *DateChange `json:"dtstart,omitempty"`
	DTEnd    *DateChange `json:"dtend,omitempty"`
	Location *TextChange `json:"location,omitempty"`
}

// DateChange is the previous and current value of a start or end.
type DateChange struct {
	Previous *ChangeDate `json:"previous,omitempty"`
	Current  *ChangeDate `json:"current,omitempty"`
}

// ChangeDate is a local date-time in Timezone, formatted as
// 2006-01-02T15:04:05.000.
type ChangeDate struct {
	Date     string `json:"date"`
	IsAllDay bool   `json:"isAllDay"`
	Timezone string `json:"timezone,omitempty"`
}

// TextChange is the previous and current value of a text property.
type TextChange struct {
	Previous string `json:"previous"`
	Current  string `json:"current"`
}

// RenderedChanges are Changes rendered for the recipient.
type RenderedChanges struct {
	DTStart          *RenderedDateChange `json:"dtstart,omitempty"`
	DTEnd            *RenderedDateChange `json:"dtend,omitempty"`
	Location         *TextChange         `json:"location,omitempty"`
	IsOldEventAllDay bool                `json:"isOldEventAllDay"`
}

// RenderedDateChange is a DateChange rendered for the recipient.
type RenderedDateChange struct {
	Previous *calendar.DateContent `json:"previous,omitempty"`
	Current  *calendar.DateContent `json:"current,omitempty"`
}

// Editor is the user whose action triggered the notification.
type Editor struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

// NotificationContent is what the email templates render.
type NotificationContent struct {
	Method            string                 `json:"method"`
	Event             *calendar.EventContent `json:"event"`
	OldEvent          *calendar.EventContent `json:"oldEvent,omitempty"`
	Editor            *Editor                `json:"editor,omitempty"`
	Changes           *RenderedChanges       `json:"changes,omitempty"`
	InviteMessage     string                 `json:"inviteMessage,omitempty"`
	Yes               string                 `json:"yes,omitempty"`
	No                string                 `json:"no,omitempty"`
	Maybe             string                 `json:"maybe,omitempty"`
	SeeInCalendarLink string                 `json:"seeInCalendarLink,omitempty"`
	BaseURL           string                 `json:"baseUrl"`
}

// NotificationLocals are the template variables of a notification email.
type NotificationLocals struct {
	Content          NotificationContent `json:"content"`
	Subject          string              `json:"subject"`
	RawInviteMessage string              `json:"rawInviteMessage,omitempty"`
}

// AlarmLocals are the template variables of an alarm email.
type AlarmLocals struct {
	Event     *calendar.EventContent `json:"event"`
	Summary   string                 `json:"summary"`
	EventPath string                 `json:"eventPath"`
	BaseURL   string                 `json:"baseUrl"`
}
