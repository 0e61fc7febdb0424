// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package nats

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/domain/model"
	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/domain/port"
	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/constants"
	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/errors"
	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/redaction"
)

// messageRequest resolves users, their settings and resources from the
// directory services over NATS request/reply.
type messageRequest struct {
	client *NATSClient
}

// get sends key on subject and returns the raw reply. An empty reply means
// the directory does not know key.
func (m *messageRequest) get(ctx context.Context, subject, key string) ([]byte, error) {
	msg, err := m.client.Request(ctx, subject, []byte(key))
	if err != nil {
		slog.ErrorContext(ctx, "directory request failed",
			"error", err,
			"subject", subject,
		)
		return nil, errors.NewServiceUnavailable("directory request failed: "+subject, err)
	}
	return decodeReply(ctx, subject, msg.Data)
}

// decodeReply turns a JSON {"error": "..."} reply into an Unexpected error.
func decodeReply(ctx context.Context, subject string, data []byte) ([]byte, error) {
	var errorResponse struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &errorResponse); err == nil && errorResponse.Error != "" {
		slog.WarnContext(ctx, "message responded with an error", "subject", subject, "error", errorResponse.Error)
		return nil, errors.NewUnexpected(errorResponse.Error)
	}
	return data, nil
}

// getJSON unmarshals the reply into out. found is false on an empty or null reply.
func (m *messageRequest) getJSON(ctx context.Context, subject, key string, out any) (bool, error) {
	data, err := m.get(ctx, subject, key)
	if err != nil {
		return false, err
	}
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return false, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		slog.ErrorContext(ctx, "invalid directory reply", "error", err, "subject", subject)
		return false, errors.NewUnexpected("invalid reply on "+subject, err)
	}
	return true, nil
}

func (m *messageRequest) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	user := &model.User{}
	found, err := m.getJSON(ctx, constants.UserFindByEmailSubject, email, user)
	if err != nil || !found {
		if err == nil {
			slog.DebugContext(ctx, "no user for email", "email", redaction.RedactEmail(email))
		}
		return nil, err
	}
	return user, nil
}

func (m *messageRequest) Get(ctx context.Context, id string) (*model.User, error) {
	user := &model.User{}
	found, err := m.getJSON(ctx, constants.UserGetSubject, id, user)
	if err != nil || !found {
		return nil, err
	}
	return user, nil
}

func (m *messageRequest) DatetimeOptions(ctx context.Context, user *model.User) (*model.DatetimeOptions, error) {
	if user == nil {
		return nil, nil
	}
	options := &model.DatetimeOptions{}
	found, err := m.getJSON(ctx, constants.UserDatetimeSettingsSubject, user.ID, options)
	if err != nil || !found {
		return nil, err
	}
	return options, nil
}

// Locale returns the language of user; the reply is the bare locale string.
func (m *messageRequest) Locale(ctx context.Context, user *model.User) (string, error) {
	if user == nil {
		return "", nil
	}
	data, err := m.get(ctx, constants.UserLocaleSettingsSubject, user.ID)
	if err != nil {
		return "", err
	}
	return strings.Trim(strings.TrimSpace(string(data)), `"`), nil
}

type resourceRequest struct {
	*messageRequest
}

func (r resourceRequest) Get(ctx context.Context, id string) (*model.Resource, error) {
	resource := &model.Resource{}
	found, err := r.getJSON(ctx, constants.CalendarResourceGetSubject, id, resource)
	if err != nil || !found {
		return nil, err
	}
	return resource, nil
}

// NewUserReader creates a UserReader backed by the user directory
func NewUserReader(client *NATSClient) port.UserReader {
	return &messageRequest{client: client}
}

// NewUserSettingsReader creates a UserSettingsReader backed by the user directory
func NewUserSettingsReader(client *NATSClient) port.UserSettingsReader {
	return &messageRequest{client: client}
}

// NewResourceReader creates a ResourceReader backed by the resource directory
func NewResourceReader(client *NATSClient) port.ResourceReader {
	return resourceRequest{&messageRequest{client: client}}
}
