// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/linuxfoundation/lfx-v2-calendar-service/cmd/calendar-service/service"
	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/constants"
	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/errors"
	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/log"
)

const messageTimeout = 30 * time.Second

// messageHandler processes one message; the returned error decides between
// ack and nak
type messageHandler func(ctx context.Context, msg *nats.Msg) error

// messageContext creates a fresh context for one message, carrying its
// request ID. It is not derived from the shutdown context so that in-flight
// work is not cancelled.
func messageContext(msg *nats.Msg) (context.Context, context.CancelFunc) {
	requestID := ""
	if msg.Header != nil {
		requestID = msg.Header.Get(constants.RequestIDHeader)
	}
	if requestID == "" {
		requestID = uuid.NewString()
	}

	ctx := context.WithValue(context.Background(), constants.RequestIDContextKey, requestID)
	ctx = log.AppendCtx(ctx, slog.String("request_id", requestID))
	ctx = log.AppendCtx(ctx, slog.String("subject", msg.Subject))
	return context.WithTimeout(ctx, messageTimeout)
}

// subscribe registers handler on every subject with the service queue group.
// Failures worth retrying are nak'ed, other failures are logged and acked so
// that a poison message is not redelivered forever.
func subscribe(ctx context.Context, wg *sync.WaitGroup, name string, subjects []string, handler messageHandler) error {
	natsClient := service.GetNATSClient(ctx)

	for _, subject := range subjects {
		_, subErr := natsClient.QueueSubscribe(
			subject,
			constants.CalendarServiceQueue,
			func(msg *nats.Msg) {
				select {
				case <-ctx.Done():
					slog.InfoContext(ctx, "rejecting message - service shutting down",
						"subject", msg.Subject)
					if msg.Reply != "" {
						if nakErr := msg.Nak(); nakErr != nil {
							slog.ErrorContext(ctx, "failed to nak message during shutdown", "error", nakErr)
						}
					}
					return
				default:
				}

				msgCtx, cancel := messageContext(msg)
				defer cancel()

				handleErr := handler(msgCtx, msg)
				switch {
				case handleErr == nil:
				case errors.IsSkipped(handleErr):
					slog.DebugContext(msgCtx, "message skipped", "reason", handleErr)
				case errors.IsRetryable(handleErr):
					slog.ErrorContext(msgCtx, "failed to process message, will retry",
						"handler", name,
						"error", handleErr)
					if msg.Reply != "" {
						if nakErr := msg.Nak(); nakErr != nil {
							slog.ErrorContext(msgCtx, "failed to nak message", "error", nakErr)
						}
					}
					return
				default:
					slog.ErrorContext(msgCtx, "failed to process message, dropping it",
						"handler", name,
						"error", handleErr)
				}

				if msg.Reply != "" {
					if ackErr := msg.Ack(); ackErr != nil {
						slog.ErrorContext(msgCtx, "failed to ack message", "error", ackErr)
					}
				}
			},
		)
		if subErr != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", subject, subErr)
		}
		slog.InfoContext(ctx, "subscribed to subject",
			"handler", name,
			"subject", subject,
			"queue", constants.CalendarServiceQueue)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		slog.InfoContext(ctx, "shutting down subscriptions", "handler", name)
	}()

	return nil
}
