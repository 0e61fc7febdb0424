// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nats-io/nats.go"

	"github.com/linuxfoundation/lfx-v2-calendar-service/cmd/calendar-service/service"
	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/domain/model"
	internalService "github.com/linuxfoundation/lfx-v2-calendar-service/internal/service"
	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/constants"
	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/errors"
)

type replyHandler func(ctx context.Context, data []byte) (*model.ParticipationResult, error)

// reply answers every request on subject with a JSON ReplyResponse
func reply(ctx context.Context, wg *sync.WaitGroup, subject string, handler replyHandler) error {
	natsClient := service.GetNATSClient(ctx)

	_, subErr := natsClient.QueueSubscribe(subject, constants.CalendarServiceQueue, func(msg *nats.Msg) {
		msgCtx, cancel := messageContext(msg)
		defer cancel()

		var response *model.ReplyResponse
		select {
		case <-ctx.Done():
			response = service.WrapError(msgCtx, errors.NewServiceUnavailable("service shutting down"))
		default:
			result, err := handler(msgCtx, msg.Data)
			if err != nil {
				response = service.WrapError(msgCtx, err)
			} else {
				response = &model.ReplyResponse{Result: result}
			}
		}

		if msg.Reply == "" {
			return
		}
		data, err := json.Marshal(response)
		if err != nil {
			slog.ErrorContext(msgCtx, "failed to marshal reply", "error", err)
			return
		}
		if err := msg.Respond(data); err != nil {
			slog.ErrorContext(msgCtx, "failed to respond", "error", err)
		}
	})
	if subErr != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", subject, subErr)
	}
	slog.InfoContext(ctx, "subscribed to subject",
		"subject", subject,
		"queue", constants.CalendarServiceQueue)

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		slog.InfoContext(ctx, "shutting down request handler", "subject", subject)
	}()

	return nil
}

// handleParticipation serves one-click participation links and resource
// booking decisions
func handleParticipation(ctx context.Context, wg *sync.WaitGroup) error {
	slog.InfoContext(ctx, "starting participation handlers")

	participationService := internalService.NewParticipationService(
		service.TokenSigner(ctx),
		service.UserReader(ctx),
		service.ResourceReader(ctx),
		service.CalendarObjectStore(ctx),
		service.MessagePublisher(ctx),
	)

	err := reply(ctx, wg, constants.ParticipationUpdateSubject, func(ctx context.Context, data []byte) (*model.ParticipationResult, error) {
		var req model.ParticipationRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, errors.NewValidation("invalid participation request", err)
		}
		if req.Token == "" {
			return nil, errors.NewValidation("participation request is missing token")
		}
		return participationService.ReplyWithToken(ctx, req.Token)
	})
	if err != nil {
		return err
	}

	return reply(ctx, wg, constants.ResourceParticipationUpdateSubject, func(ctx context.Context, data []byte) (*model.ParticipationResult, error) {
		var req model.ResourceParticipationRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, errors.NewValidation("invalid resource participation request", err)
		}
		return participationService.ChangeResourceParticipation(ctx, req)
	})
}
