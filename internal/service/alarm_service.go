// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/calendar"
	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/domain/model"
	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/domain/port"
	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/constants"
	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/i18n"
	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/redaction"
)

// AlarmService schedules the EMAIL alarms of calendar events and mails them
// once due.
type AlarmService struct {
	alarms        port.AlarmRepository
	users         port.UserReader
	settings      port.UserSettingsReader
	baseURL       port.BaseURLResolver
	mailer        port.Mailer
	sender        string
	defaultLocale string
	now           func() time.Time
}

// AlarmServiceOption configures an AlarmService
type AlarmServiceOption func(*AlarmService)

// WithAlarmSender sets the From address of alarm emails
func WithAlarmSender(sender string) AlarmServiceOption {
	return func(s *AlarmService) {
		s.sender = sender
	}
}

// WithAlarmLocale sets the locale used for recipients without preferences
func WithAlarmLocale(locale string) AlarmServiceOption {
	return func(s *AlarmService) {
		if locale != "" {
			s.defaultLocale = locale
		}
	}
}

// WithAlarmClock replaces the clock used when registering alarms
func WithAlarmClock(now func() time.Time) AlarmServiceOption {
	return func(s *AlarmService) {
		s.now = now
	}
}

// NewAlarmService creates a new alarm service
func NewAlarmService(
	alarms port.AlarmRepository,
	users port.UserReader,
	settings port.UserSettingsReader,
	baseURL port.BaseURLResolver,
	mailer port.Mailer,
	opts ...AlarmServiceOption,
) *AlarmService {
	s := &AlarmService{
		alarms:        alarms,
		users:         users,
		settings:      settings,
		baseURL:       baseURL,
		mailer:        mailer,
		defaultLocale: constants.DefaultLocale,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register replaces the alarms of path with the next due EMAIL alarm of the
// master event of obj, if any.
func (s *AlarmService) Register(ctx context.Context, path model.EventPath, obj *calendar.Object) error {
	eventPath := path.String()

	if err := s.alarms.DeleteByEventPath(ctx, eventPath); err != nil {
		slog.ErrorContext(ctx, "failed to clear previous alarms",
			"error", err,
			"event_path", eventPath,
		)
		return err
	}

	alarm, ok := s.schedule(ctx, eventPath, obj, s.now())
	if !ok {
		return nil
	}

	if err := s.alarms.Save(ctx, alarm); err != nil {
		slog.ErrorContext(ctx, "failed to save alarm",
			"error", err,
			"event_path", eventPath,
		)
		return err
	}

	slog.InfoContext(ctx, "alarm registered",
		"alarm_id", alarm.ID,
		"event_uid", alarm.EventUID,
		"due_date", alarm.DueDate,
	)
	return nil
}

// Unregister drops every alarm of path.
func (s *AlarmService) Unregister(ctx context.Context, path model.EventPath) error {
	if err := s.alarms.DeleteByEventPath(ctx, path.String()); err != nil {
		slog.ErrorContext(ctx, "failed to unregister alarms",
			"error", err,
			"event_path", path.String(),
		)
		return err
	}
	return nil
}

// ProcessDue mails every waiting alarm due at or before now and returns how
// many were sent. A failed alarm is left in the error state and does not
// stop the others.
func (s *AlarmService) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	ctx, span := tracer.Start(ctx, "AlarmService.ProcessDue")
	defer span.End()

	due, err := s.alarms.ListDue(ctx, now)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list due alarms", "error", err)
		return 0, err
	}
	span.SetAttributes(attribute.Int("alarm.due", len(due)))

	sent := 0
	for _, alarm := range due {
		if s.process(ctx, alarm) {
			sent++
		}
	}

	if len(due) > 0 {
		slog.InfoContext(ctx, "due alarms processed", "due", len(due), "sent", sent)
	}
	return sent, nil
}

func (s *AlarmService) process(ctx context.Context, alarm *model.Alarm) bool {
	if err := s.alarms.UpdateState(ctx, alarm, constants.AlarmStateRunning); err != nil {
		slog.WarnContext(ctx, "alarm could not be claimed", "error", err, "alarm_id", alarm.ID)
		return false
	}

	obj, err := calendar.Parse(alarm.ICS)
	if err == nil {
		err = s.send(ctx, alarm, obj)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to send alarm",
			"error", err,
			"alarm_id", alarm.ID,
			"recipient_email", redaction.RedactEmail(alarm.Email),
		)
		alarm.LastError = err.Error()
		if errState := s.alarms.UpdateState(ctx, alarm, constants.AlarmStateError); errState != nil {
			slog.ErrorContext(ctx, "failed to flag alarm in error", "error", errState, "alarm_id", alarm.ID)
		}
		return false
	}

	if err := s.alarms.UpdateState(ctx, alarm, constants.AlarmStateDone); err != nil {
		slog.ErrorContext(ctx, "failed to flag alarm as done", "error", err, "alarm_id", alarm.ID)
	}

	// recurring events get the alarm of their following occurrence
	if next, ok := s.schedule(ctx, alarm.EventPath, obj, alarm.DueDate); ok {
		if err := s.alarms.Save(ctx, next); err != nil {
			slog.ErrorContext(ctx, "failed to save next occurrence alarm", "error", err, "event_path", alarm.EventPath)
		}
	}
	return true
}

// schedule computes the first EMAIL alarm of the master of obj due strictly
// after after.
func (s *AlarmService) schedule(ctx context.Context, eventPath string, obj *calendar.Object, after time.Time) (*model.Alarm, bool) {
	master := obj.Master()
	content, err := calendar.BuildEventContent(obj.Method(), master, "")
	if err != nil || content.Alarm == nil {
		return nil, false
	}
	if content.Alarm.Action != constants.AlarmActionEmail || content.Alarm.Email == "" {
		slog.DebugContext(ctx, "event alarm is not mailed", "action", content.Alarm.Action, "event_uid", content.UID)
		return nil, false
	}

	start, ok := content.StartValue()
	if !ok || content.Alarm.AlarmDueDate.IsZero() {
		return nil, false
	}

	due := content.Alarm.AlarmDueDate
	if content.Recurring {
		offset := due.Sub(start.Time())
		occurrence, found := calendar.NextOccurrence(master, after.Add(-offset))
		if !found {
			return nil, false
		}
		due = occurrence.Add(offset)
	}
	if !due.After(after) {
		return nil, false
	}

	ics, err := obj.Encode()
	if err != nil {
		slog.WarnContext(ctx, "failed to encode calendar object of alarm", "error", err)
		return nil, false
	}

	now := s.now().UTC()
	return &model.Alarm{
		ID:        uuid.NewString(),
		EventPath: eventPath,
		EventUID:  content.UID,
		Action:    content.Alarm.Action,
		DueDate:   due.UTC(),
		Email:     content.Alarm.Email,
		Summary:   content.Summary,
		ICS:       ics,
		State:     constants.AlarmStateWaiting,
		CreatedAt: now,
		UpdatedAt: now,
	}, true
}

func (s *AlarmService) send(ctx context.Context, alarm *model.Alarm, obj *calendar.Object) error {
	recipient, err := s.users.FindByEmail(ctx, alarm.Email)
	if err != nil {
		return err
	}

	options, err := displayOptions(ctx, s.settings, s.defaultLocale, recipient)
	if err != nil {
		return err
	}

	baseURL, err := s.baseURL.BaseURL(ctx, recipient)
	if err != nil {
		return err
	}

	content, err := calendar.BuildContent(obj, baseURL)
	if err != nil {
		return err
	}
	if content.Summary == "" {
		content.Summary = constants.DefaultEventSummary
	}
	calendar.RenderContent(content, options)

	subject := i18n.Printer(options.Locale).Sprintf(i18n.SubjectAlarm, content.Summary)

	return s.mailer.Send(ctx, &model.EmailMessage{
		ID:       uuid.NewString(),
		From:     s.sender,
		To:       alarm.Email,
		Subject:  subject,
		Encoding: constants.EmailEncoding,
		Locale:   i18n.Match(options.Locale).String(),
		Template: model.EmailTemplate{
			Name: constants.EmailTemplateAlarm,
			Path: constants.EmailTemplatePath,
		},
		Locals: &model.AlarmLocals{
			Event:     content,
			Summary:   subject,
			EventPath: alarm.EventPath,
			BaseURL:   baseURL,
		},
	})
}
