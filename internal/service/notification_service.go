// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/calendar"
	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/domain/model"
	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/domain/port"
	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/constants"
	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/errors"
	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/i18n"
	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/redaction"
)

var tracer = otel.Tracer(constants.ServiceName)

// NotificationService decides whether a recipient is owed an email about an
// iTIP message and composes it.
type NotificationService struct {
	users         port.UserReader
	settings      port.UserSettingsReader
	baseURL       port.BaseURLResolver
	tokens        port.TokenSigner
	mailer        port.Mailer
	defaultLocale string
}

// NewNotificationService creates a new notification service
func NewNotificationService(
	users port.UserReader,
	settings port.UserSettingsReader,
	baseURL port.BaseURLResolver,
	tokens port.TokenSigner,
	mailer port.Mailer,
	defaultLocale string,
) *NotificationService {
	if defaultLocale == "" {
		defaultLocale = constants.DefaultLocale
	}
	return &NotificationService{
		users:         users,
		settings:      settings,
		baseURL:       baseURL,
		tokens:        tokens,
		mailer:        mailer,
		defaultLocale: defaultLocale,
	}
}

// notification gathers what is resolved while routing one request
type notification struct {
	request        model.NotificationRequest
	sender         *model.User
	object         *calendar.Object
	organizerEmail string
	recipient      *model.User
	organizer      *model.User
	baseURL        string
	options        calendar.RenderOptions
}

// Send routes req to its recipient. It returns a Skipped error when the
// recipient is not owed a message, in which case nothing is sent.
func (s *NotificationService) Send(ctx context.Context, req model.NotificationRequest) error {
	ctx, span := tracer.Start(ctx, "NotificationService.Send")
	defer span.End()
	span.SetAttributes(
		attribute.String("calendar.method", req.Method),
		attribute.String("calendar.uri", req.CalendarURI),
	)

	if err := validateNotificationRequest(req); err != nil {
		slog.WarnContext(ctx, "invalid notification request", "error", err, "method", req.Method)
		return err
	}

	sender, err := s.resolveSender(ctx, req)
	if err != nil {
		return err
	}

	obj, err := calendar.Parse(req.ICS)
	if err != nil {
		slog.WarnContext(ctx, "notification request carries an invalid calendar object", "error", err)
		return err
	}

	n := &notification{
		request:        req,
		sender:         sender,
		object:         obj,
		organizerEmail: calendar.OrganizerEmail(obj),
	}

	if err := n.checkInvolvement(); err != nil {
		slog.InfoContext(ctx, "no notification owed to recipient",
			"reason", err.Error(),
			"method", req.Method,
			"event_uid", obj.UID(),
			"recipient_email", redaction.RedactEmail(req.RecipientEmail),
		)
		return err
	}

	if err := s.resolveParticipants(ctx, n); err != nil {
		return err
	}

	message, err := s.compose(ctx, n)
	if err != nil {
		return err
	}

	if err := s.mailer.Send(ctx, message); err != nil {
		slog.ErrorContext(ctx, "failed to send notification email",
			"error", err,
			"event_uid", obj.UID(),
			"recipient_email", redaction.RedactEmail(req.RecipientEmail),
		)
		return err
	}

	slog.InfoContext(ctx, "notification email sent",
		"method", req.Method,
		"template", message.Template.Name,
		"event_uid", obj.UID(),
		"recipient_email", redaction.RedactEmail(req.RecipientEmail),
	)

	return nil
}

// HandleMessage decodes a notification request published on the
// notification subject and sends it. Skipped recipients are not an error.
func (s *NotificationService) HandleMessage(ctx context.Context, msg *nats.Msg) error {
	var req model.NotificationRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		slog.ErrorContext(ctx, "failed to unmarshal notification request", "error", err)
		return fmt.Errorf("failed to unmarshal notification request: %w", err)
	}

	err := s.Send(ctx, req)
	if errors.IsSkipped(err) {
		return nil
	}
	return err
}

func validateNotificationRequest(req model.NotificationRequest) error {
	switch {
	case req.Sender != nil && !req.Sender.HasDomain():
		return errors.NewValidation(constants.ErrSenderWithoutDomain)
	case req.Sender == nil && req.SenderEmail == "":
		return errors.NewValidation(constants.ErrSenderEmailRequired)
	case req.RecipientEmail == "":
		return errors.NewValidation(constants.ErrRecipientRequired)
	case req.Method == "":
		return errors.NewValidation(constants.ErrMethodRequired)
	case req.ICS == "":
		return errors.NewValidation(constants.ErrICSRequired)
	case req.CalendarURI == "":
		return errors.NewValidation(constants.ErrCalendarURIRequired)
	}
	return nil
}

func (s *NotificationService) resolveSender(ctx context.Context, req model.NotificationRequest) (*model.User, error) {
	if req.Sender != nil {
		return req.Sender, nil
	}

	sender, err := s.users.FindByEmail(ctx, req.SenderEmail)
	if err != nil {
		slog.ErrorContext(ctx, "failed to resolve notification sender",
			"error", err,
			"sender_email", redaction.RedactEmail(req.SenderEmail),
		)
		return nil, err
	}
	if sender == nil {
		return nil, errors.NewNotFound("sender not found: " + redaction.RedactEmail(req.SenderEmail))
	}
	if !sender.HasDomain() {
		return nil, errors.NewValidation(constants.ErrSenderWithoutDomain)
	}
	return sender, nil
}

// checkInvolvement rejects recipients that are neither organizer nor
// attendee, and those the method is not addressed to.
func (n *notification) checkInvolvement() error {
	recipient := n.request.RecipientEmail
	isOrganizer := recipient == n.organizerEmail
	isAttendee := slices.Contains(calendar.AttendeeEmails(n.object), recipient)

	if !isOrganizer && !isAttendee {
		return errors.NewSkipped(constants.ErrRecipientNotInvolved)
	}

	switch strings.ToUpper(n.request.Method) {
	case constants.MethodReply:
		if n.editorIsOrganizer() {
			if isOrganizer {
				return errors.NewSkipped("a reply of the organizer is only sent to attendees")
			}
			return nil
		}
		if !isOrganizer {
			return errors.NewSkipped("a reply of an attendee is only sent to the organizer")
		}
	case constants.MethodCounter:
		if !isOrganizer {
			return errors.NewSkipped("a counter proposal is only sent to the organizer")
		}
	}

	return nil
}

func (n *notification) editorIsOrganizer() bool {
	return slices.Contains(n.sender.Emails, n.organizerEmail)
}

// editorEmail is the sender address found on the event, else its first one.
func (n *notification) editorEmail() string {
	master := n.object.Master()
	for _, email := range n.sender.Emails {
		if email == n.organizerEmail {
			return email
		}
		if _, ok := calendar.FindAttendee(master, email); ok {
			return email
		}
	}
	return n.sender.FirstEmail()
}

// resolveParticipants looks up recipient, organizer and base URL
// concurrently, then the display preferences of whoever the email is
// rendered for.
func (s *NotificationService) resolveParticipants(ctx context.Context, n *notification) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		recipient, err := s.users.FindByEmail(gctx, n.request.RecipientEmail)
		if err != nil {
			return err
		}
		n.recipient = recipient
		return nil
	})
	g.Go(func() error {
		if n.organizerEmail == "" {
			return nil
		}
		organizer, err := s.users.FindByEmail(gctx, n.organizerEmail)
		if err != nil {
			return err
		}
		n.organizer = organizer
		return nil
	})
	g.Go(func() error {
		baseURL, err := s.baseURL.BaseURL(gctx, n.sender)
		if err != nil {
			return err
		}
		n.baseURL = baseURL
		return nil
	})

	if err := g.Wait(); err != nil {
		slog.ErrorContext(ctx, "failed to resolve notification participants", "error", err)
		return err
	}

	options, err := displayOptions(ctx, s.settings, s.defaultLocale, n.preferencesOwner())
	if err != nil {
		slog.ErrorContext(ctx, "failed to resolve display preferences", "error", err)
		return err
	}
	n.options = options

	return nil
}

// preferencesOwner is the internal recipient, else the organizer.
func (n *notification) preferencesOwner() *model.User {
	if n.recipient != nil {
		return n.recipient
	}
	return n.organizer
}

func (s *NotificationService) compose(ctx context.Context, n *notification) (*model.EmailMessage, error) {
	req := n.request
	method := strings.ToUpper(req.Method)

	content, err := calendar.BuildContent(n.object, n.baseURL)
	if err != nil {
		return nil, err
	}
	if content.Summary == "" {
		content.Summary = constants.DefaultEventSummary
	}
	calendar.RenderContent(content, n.options)

	locals := &model.NotificationLocals{
		Content: model.NotificationContent{
			Method:  method,
			Event:   content,
			BaseURL: n.baseURL,
		},
	}

	editorEmail := n.editorEmail()
	locals.Content.Editor = &model.Editor{
		DisplayName: strings.TrimSpace(n.sender.Firstname + " " + n.sender.Lastname),
		Email:       editorEmail,
	}

	if method == constants.MethodRequest && req.Changes != nil {
		changes, errChanges := renderChanges(req.Changes, content, n.options)
		if errChanges != nil {
			return nil, errChanges
		}
		locals.Content.Changes = changes
	}

	links, err := s.participationLinks(ctx, n, content.UID)
	if err != nil {
		return nil, err
	}
	locals.Content.Yes = links[constants.AttendeeActionAccepted]
	locals.Content.No = links[constants.AttendeeActionDeclined]
	locals.Content.Maybe = links[constants.AttendeeActionTentative]

	if n.recipient != nil {
		if start, ok := content.StartValue(); ok {
			locals.Content.SeeInCalendarLink = strings.TrimRight(n.baseURL, "/") +
				constants.CalendarLinkPath + start.Time().Format(constants.CalendarLinkDate)
		}
	}

	printer := i18n.Printer(n.options.Locale)
	template, subject := constants.EmailTemplateUpdate, ""
	organizerName := n.organizerName(content)

	switch method {
	case constants.MethodRequest:
		if req.IsNewEvent {
			template = constants.EmailTemplateInvitation
			subject = printer.Sprintf(i18n.SubjectInvitation, organizerName, content.Summary)
		} else {
			subject = printer.Sprintf(i18n.SubjectUpdate, content.Summary, organizerName)
		}
	case constants.MethodReply:
		template = constants.EmailTemplateReply
		partstat := ""
		if attendee, ok := calendar.FindAttendee(n.object.Master(), editorEmail); ok {
			partstat = attendee.ParticipationStatus
		}
		key, inviteMessage := replyMessages(partstat)
		if key == i18n.SubjectReply {
			subject = printer.Sprintf(key, content.Summary)
		} else {
			subject = printer.Sprintf(key, content.Summary, locals.Content.Editor.DisplayName)
		}
		locals.RawInviteMessage = inviteMessage
		locals.Content.InviteMessage = printer.Sprintf(inviteMessage)
	case constants.MethodCounter:
		template = constants.EmailTemplateCounter
		subject = printer.Sprintf(i18n.SubjectCounter, content.Summary)
		if req.OldICS != "" {
			oldEvent, errOld := n.oldEventContent(req.OldICS)
			if errOld != nil {
				slog.WarnContext(ctx, "failed to read the event a counter proposal applies to", "error", errOld)
				return nil, errOld
			}
			locals.Content.OldEvent = oldEvent
		}
	case constants.MethodCancel:
		template = constants.EmailTemplateCancel
		subject = printer.Sprintf(i18n.SubjectCancel, content.Summary, organizerName)
	default:
		return nil, errors.NewValidation("unsupported method: " + req.Method)
	}
	locals.Subject = subject

	return &model.EmailMessage{
		ID:       uuid.NewString(),
		From:     n.sender.FirstEmail(),
		To:       req.RecipientEmail,
		Subject:  subject,
		Encoding: constants.EmailEncoding,
		Locale:   i18n.Match(n.options.Locale).String(),
		Alternatives: []model.EmailAlternative{{
			ContentType: "text/calendar; charset=UTF-8; method=" + method,
			Content:     req.ICS,
		}},
		Attachments: []model.EmailAttachment{{
			Filename:    constants.EmailAttachmentName,
			ContentType: constants.EmailAttachmentContentType,
			Content:     req.ICS,
		}},
		Template: model.EmailTemplate{
			Name: template,
			Path: constants.EmailTemplatePath,
		},
		Locals: locals,
	}, nil
}

// oldEventContent renders the event version a counter proposal was made
// against, with the same display options as the proposal.
func (n *notification) oldEventContent(text string) (*calendar.EventContent, error) {
	obj, err := calendar.Parse(text)
	if err != nil {
		return nil, errors.NewValidation("The oldIcs must be a valid calendar object", err)
	}
	content, err := calendar.BuildContent(obj, n.baseURL)
	if err != nil {
		return nil, err
	}
	calendar.RenderContent(content, n.options)
	return content, nil
}

// organizerName is the directory name of the organizer, else its CN, else
// its email.
func (n *notification) organizerName(content *calendar.EventContent) string {
	if n.organizer != nil {
		if name := strings.TrimSpace(n.organizer.Firstname + " " + n.organizer.Lastname); name != "" {
			return name
		}
	}
	if content.Organizer == nil {
		return ""
	}
	if content.Organizer.CommonName != "" {
		return content.Organizer.CommonName
	}
	return content.Organizer.Email
}

// replyMessages picks the subject and invite message keys of a reply.
func replyMessages(partstat string) (string, string) {
	switch strings.ToUpper(partstat) {
	case constants.AttendeeActionAccepted:
		return i18n.SubjectAccepted, i18n.ReplyAccepted
	case constants.AttendeeActionDeclined:
		return i18n.SubjectDeclined, i18n.ReplyDeclined
	case constants.AttendeeActionTentative:
		return i18n.SubjectTentative, i18n.ReplyTentative
	default:
		return i18n.SubjectReply, i18n.ReplyDefault
	}
}

// participationLinks signs one token per attendee action and returns the
// links keyed by action.
func (s *NotificationService) participationLinks(ctx context.Context, n *notification, uid string) (map[string]string, error) {
	links := make(map[string]string, len(constants.AttendeeActions))
	for _, action := range constants.AttendeeActions {
		token, err := s.tokens.Sign(ctx, model.ParticipationToken{
			Action:         action,
			AttendeeEmail:  n.request.RecipientEmail,
			CalendarURI:    n.request.CalendarURI,
			OrganizerEmail: n.organizerEmail,
			UID:            uid,
		})
		if err != nil {
			slog.ErrorContext(ctx, "failed to sign participation token", "error", err, "action", action)
			return nil, err
		}
		links[action] = strings.TrimRight(n.baseURL, "/") + constants.ParticipationLinkPath + token
	}
	return links, nil
}

func renderChanges(changes *model.Changes, content *calendar.EventContent, opts calendar.RenderOptions) (*model.RenderedChanges, error) {
	rendered := &model.RenderedChanges{Location: changes.Location}

	if changes.DTStart != nil {
		change, err := renderDateChange(changes.DTStart, content.Start, opts)
		if err != nil {
			return nil, err
		}
		rendered.DTStart = change
		if changes.DTStart.Previous != nil {
			rendered.IsOldEventAllDay = changes.DTStart.Previous.IsAllDay
		}
	}

	if changes.DTEnd != nil {
		change, err := renderDateChange(changes.DTEnd, content.End, opts)
		if err != nil {
			return nil, err
		}
		rendered.DTEnd = change
		if changes.DTStart == nil && changes.DTEnd.Previous != nil {
			rendered.IsOldEventAllDay = changes.DTEnd.Previous.IsAllDay
		}
	}

	return rendered, nil
}

// renderDateChange renders the previous value; the current one defaults to
// the already rendered event date.
func renderDateChange(change *model.DateChange, current *calendar.DateContent, opts calendar.RenderOptions) (*model.RenderedDateChange, error) {
	rendered := &model.RenderedDateChange{Current: current}

	if change.Previous != nil {
		previous, err := renderChangeDate(change.Previous, opts)
		if err != nil {
			return nil, err
		}
		rendered.Previous = previous
	}

	if change.Current != nil {
		value, err := renderChangeDate(change.Current, opts)
		if err != nil {
			return nil, err
		}
		rendered.Current = value
	}

	return rendered, nil
}

func renderChangeDate(date *model.ChangeDate, opts calendar.RenderOptions) (*calendar.DateContent, error) {
	value, err := calendar.ParseChangeDate(date.Date, date.IsAllDay, date.Timezone)
	if err != nil {
		return nil, err
	}
	return calendar.RenderDate(value, date.IsAllDay, opts), nil
}
