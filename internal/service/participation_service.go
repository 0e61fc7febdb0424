// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/calendar"
	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/domain/model"
	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/domain/port"
	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/constants"
	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/errors"
	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/redaction"
	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/utils"
)

// ParticipationService applies participation changes made outside a
// calendar client: one-click email links and resource booking decisions.
type ParticipationService struct {
	tokens    port.TokenSigner
	users     port.UserReader
	resources port.ResourceReader
	store     port.CalendarObjectStore
	publisher port.MessagePublisher
	retry     utils.RetryConfig
}

// NewParticipationService creates a new participation service
func NewParticipationService(
	tokens port.TokenSigner,
	users port.UserReader,
	resources port.ResourceReader,
	store port.CalendarObjectStore,
	publisher port.MessagePublisher,
) *ParticipationService {
	return &ParticipationService{
		tokens:    tokens,
		users:     users,
		resources: resources,
		store:     store,
		publisher: publisher,
		retry:     utils.NewRetryConfig(3, 100*time.Millisecond, 2*time.Second),
	}
}

// WithRetryConfig replaces the retry policy applied to conflicting writes
func (s *ParticipationService) WithRetryConfig(config utils.RetryConfig) *ParticipationService {
	s.retry = config
	return s
}

// DecodeToken verifies a participation link token and resolves the
// organizer it names.
func (s *ParticipationService) DecodeToken(ctx context.Context, token string) (*model.ParticipationToken, *model.User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, nil, errors.NewValidation("participation token is required")
	}

	payload, err := s.tokens.Verify(ctx, token)
	if err != nil {
		slog.WarnContext(ctx, "participation token rejected", "error", err)
		return nil, nil, err
	}

	if err := payload.Validate(); err != nil {
		slog.WarnContext(ctx, "participation token payload is invalid", "error", err)
		return nil, nil, err
	}

	organizer, err := s.users.FindByEmail(ctx, payload.OrganizerEmail)
	if err != nil {
		slog.ErrorContext(ctx, "failed to resolve organizer of participation token",
			"error", err,
			"organizer_email", redaction.RedactEmail(payload.OrganizerEmail),
		)
		return nil, nil, err
	}
	if organizer == nil {
		return nil, nil, errors.NewNotFound("organizer not found: " + redaction.RedactEmail(payload.OrganizerEmail))
	}

	return payload, organizer, nil
}

// ReplyWithToken applies the action of a participation link to the
// organizer's copy of the event and announces the reply.
func (s *ParticipationService) ReplyWithToken(ctx context.Context, token string) (*model.ParticipationResult, error) {
	ctx, span := tracer.Start(ctx, "ParticipationService.ReplyWithToken")
	defer span.End()

	payload, organizer, err := s.DecodeToken(ctx, token)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("calendar.uid", payload.UID))

	path := model.EventPath{
		CalendarHomeID: organizer.ID,
		CalendarID:     payload.CalendarURI,
		EventUID:       payload.UID,
	}

	result, ics, err := s.updateObject(ctx, path, payload.AttendeeEmail, payload.Action, nil)
	if err != nil {
		return nil, err
	}

	message := &model.EventMessage{EventPath: path.String(), Event: ics}
	if err := s.publisher.Event(ctx, constants.EventReplySubject, message); err != nil {
		slog.ErrorContext(ctx, "failed to publish participation reply",
			"error", err,
			"event_path", result.EventPath,
		)
		return nil, err
	}

	slog.InfoContext(ctx, "participation updated from link",
		"event_uid", payload.UID,
		"attendee_email", redaction.RedactEmail(payload.AttendeeEmail),
		"status", payload.Action,
	)
	return result, nil
}

// ChangeResourceParticipation records the booking decision of a resource in
// its own calendar and marks the slot busy only when accepted.
func (s *ParticipationService) ChangeResourceParticipation(ctx context.Context, req model.ResourceParticipationRequest) (*model.ParticipationResult, error) {
	ctx, span := tracer.Start(ctx, "ParticipationService.ChangeResourceParticipation")
	defer span.End()

	status := strings.ToUpper(strings.TrimSpace(req.Status))
	switch {
	case req.ResourceID == "":
		return nil, errors.NewValidation("resource id is required")
	case req.EventID == "":
		return nil, errors.NewValidation("event id is required")
	case !slices.Contains(constants.AttendeeActions, status):
		return nil, errors.NewValidation("unsupported participation status: " + req.Status)
	}
	span.SetAttributes(attribute.String("calendar.resource_id", req.ResourceID))

	resource, err := s.resources.Get(ctx, req.ResourceID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to resolve resource", "error", err, "resource_id", req.ResourceID)
		return nil, err
	}
	if resource == nil {
		return nil, errors.NewNotFound("resource not found: " + req.ResourceID)
	}

	transp := constants.TranspTransparent
	if status == constants.AttendeeActionAccepted {
		transp = constants.TranspOpaque
	}

	result, _, err := s.updateObject(ctx, resource.EventPath(req.EventID), resource.Email(), status, func(obj *calendar.Object) {
		calendar.UpdateTransp(obj, transp)
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "resource participation updated",
		"resource_id", req.ResourceID,
		"event_uid", req.EventID,
		"status", status,
		"transp", transp,
	)
	return result, nil
}

// updateObject sets the participation of email in the object at path and
// writes it back conditionally, reloading on conflicts.
func (s *ParticipationService) updateObject(
	ctx context.Context,
	path model.EventPath,
	email, status string,
	amend func(*calendar.Object),
) (*model.ParticipationResult, string, error) {
	var (
		result *model.ParticipationResult
		ics    string
	)

	attempt := func() error {
		stored, err := s.store.GetCalendarObject(ctx, path.String())
		if err != nil {
			return err
		}

		obj, err := calendar.Parse(stored.ICS)
		if err != nil {
			return err
		}

		if calendar.CountAttendee(obj, email) == 0 {
			return errors.NewNotFound("attendee not found in event " + path.EventUID + ": " + redaction.RedactEmail(email))
		}

		calendar.UpdateParticipation(obj, email, status)
		if amend != nil {
			amend(obj)
		}

		encoded, err := obj.Encode()
		if err != nil {
			return err
		}

		etag, err := s.store.PutCalendarObject(ctx, &model.CalendarObject{
			Path: path.String(),
			ICS:  encoded,
			ETag: stored.ETag,
		})
		if err != nil {
			return err
		}

		ics = encoded
		result = &model.ParticipationResult{
			EventPath:     path.String(),
			AttendeeEmail: email,
			Status:        status,
			ETag:          etag,
		}
		return nil
	}

	err := utils.RetryWithExponentialBackoff(ctx, s.retry.WithRetryable(errors.IsRetryable), attempt)
	if err != nil {
		slog.ErrorContext(ctx, "failed to update participation",
			"error", err,
			"event_path", path.String(),
			"attendee_email", redaction.RedactEmail(email),
		)
		return nil, "", err
	}

	return result, ics, nil
}
