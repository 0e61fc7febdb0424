// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package model

// EmailMessage is handed to the mail transport, which renders Template with
// Locals and delivers the result.
type EmailMessage struct {
	ID           string             `json:"id"`
	From         string             `json:"from"`
	To           string             `json:"to"`
	Subject      string             `json:"subject"`
	Encoding     string             `json:"encoding,omitempty"`
	Locale       string             `json:"locale,omitempty"`
	Alternatives []EmailAlternative `json:"alternatives,omitempty"`
	Attachments  []EmailAttachment  `json:"attachments,omitempty"`
	Template     EmailTemplate      `json:"template"`
	Locals       any                `json:"locals"`
}

// EmailAlternative is an extra MIME body part.
type EmailAlternative struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

// EmailAttachment is a file attached to the message.
type EmailAttachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

// EmailTemplate names the template rendering the message body.
type EmailTemplate struct {
	Name string `json:"name"`
	Path string `json:"path"`
}
