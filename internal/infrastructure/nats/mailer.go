// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package nats

import (
	"context"

	"github.com/google/uuid"

	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/domain/model"
	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/domain/port"
	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/constants"
)

// mailer hands composed messages to the mail transport listening on
// constants.EmailSendSubject.
type mailer struct {
	publisher *messagingPublisher
}

func (m *mailer) Send(ctx context.Context, message *model.EmailMessage) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	return m.publisher.publish(ctx, constants.EmailSendSubject, message, "email")
}

// NewMailer creates a Mailer publishing on the email transport subject
func NewMailer(client *NATSClient) port.Mailer {
	return &mailer{publisher: &messagingPublisher{client: client}}
}
