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

// newAlarmService builds the alarm service shared by the event sync and the
// alarm scheduler
func newAlarmService(ctx context.Context) *internalService.AlarmService {
	cfg := service.Config(ctx)
	return internalService.NewAlarmService(
		service.AlarmRepository(ctx),
		service.UserReader(ctx),
		service.UserSettingsReader(ctx),
		service.BaseURLResolver(ctx),
		service.Mailer(ctx),
		internalService.WithAlarmSender(cfg.Alarm.Sender),
		internalService.WithAlarmLocale(cfg.DefaultLocale),
	)
}

// handleEventSync indexes, relays and schedules the alarms of calendar event
// changes
func handleEventSync(ctx context.Context, wg *sync.WaitGroup, alarms *internalService.AlarmService) error {
	slog.InfoContext(ctx, "starting calendar event sync")

	publisher := service.MessagePublisher(ctx)
	syncService := internalService.NewEventSyncService(
		internalService.NewEventIndexService(publisher, service.Config(ctx).BaseURL),
		internalService.NewEventRelayService(publisher),
		alarms,
	)

	subjects := []string{
		constants.EventCreatedSubject,
		constants.EventUpdatedSubject,
		constants.EventDeletedSubject,
		constants.EventRequestSubject,
		constants.EventCancelSubject,
		constants.EventReplySubject,
	}
	if err := subscribe(ctx, wg, "event_sync", subjects, syncService.HandleMessage); err != nil {
		return err
	}

	slog.InfoContext(ctx, "calendar event sync started successfully")
	return nil
}
