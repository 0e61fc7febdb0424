// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/linuxfoundation/lfx-v2-calendar-service/cmd/calendar-service/service"
	internalService "github.com/linuxfoundation/lfx-v2-calendar-service/internal/service"
)

// handleAlarms mails due alarms on the configured schedule
func handleAlarms(ctx context.Context, wg *sync.WaitGroup, alarms *internalService.AlarmService) error {
	schedule := service.Config(ctx).Alarm.Cron
	slog.InfoContext(ctx, "starting alarm scheduler", "cron", schedule)

	scheduler := cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := scheduler.AddFunc(schedule, func() {
		runCtx, cancel := context.WithTimeout(context.Background(), messageTimeout)
		defer cancel()

		sent, errProcess := alarms.ProcessDue(runCtx, time.Now())
		if errProcess != nil {
			slog.ErrorContext(runCtx, "failed to process due alarms", "error", errProcess)
			return
		}
		if sent > 0 {
			slog.InfoContext(runCtx, "due alarms sent", "count", sent)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid alarm schedule %q: %w", schedule, err)
	}
	scheduler.Start()

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		slog.InfoContext(ctx, "shutting down alarm scheduler")
		<-scheduler.Stop().Done()
	}()

	return nil
}
