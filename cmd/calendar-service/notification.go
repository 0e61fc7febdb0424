// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"log/slog"
	"sync"

	"github.com/linuxfoundation/lfx-v2-calendar-service/cmd/calendar-service/service"
	internalService "github.com/linuxfoundation/lfx-v2-calendar-service/internal/service"
	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/constants"
)

// handleNotifications routes invitation, reply and cancellation emails
func handleNotifications(ctx context.Context, wg *sync.WaitGroup) error {
	slog.InfoContext(ctx, "starting notification router")

	notificationService := internalService.NewNotificationService(
		service.UserReader(ctx),
		service.UserSettingsReader(ctx),
		service.BaseURLResolver(ctx),
		service.TokenSigner(ctx),
		service.Mailer(ctx),
		service.Config(ctx).DefaultLocale,
	)

	return subscribe(ctx, wg, "notification", []string{constants.NotificationEmailSendSubject}, notificationService.HandleMessage)
}
