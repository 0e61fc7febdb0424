// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package constants

const (
	// ChangeDateFormat is the local date-time layout of previous/current values
	// in event change descriptions
	ChangeDateFormat = "2006-01-02T15:04:05.000"
)

// Notification routing validation error messages
const (
	ErrSenderWithoutDomain  = "Sender must be a User object with at least one domain"
	ErrSenderEmailRequired  = "The senderEmail must be a string"
	ErrRecipientRequired    = "The recipientEmail must be a string"
	ErrMethodRequired       = "The method must be a string"
	ErrICSRequired          = "The ics must be a string"
	ErrCalendarURIRequired  = "The calendarURI must be a string"
	ErrRecipientNotInvolved = "The recipient is not involved in the event"
)
