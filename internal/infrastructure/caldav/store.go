// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package caldav stores calendar objects on a CalDAV server.
package caldav

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/domain/model"
	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/domain/port"
	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/constants"
	errs "github.com/linuxfoundation/lfx-v2-calendar-service/pkg/errors"
	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/httpclient"
)

const (
	contentTypeXML = "application/xml; charset=utf-8"

	propfindETag = `<?xml version="1.0" encoding="utf-8"?>` +
		`<d:propfind xmlns:d="DAV:"><d:prop><d:getetag/></d:prop></d:propfind>`
)

// Config holds the CalDAV endpoint settings
type Config struct {
	// URL is the server root the event paths are appended to
	URL     string
	Token   string
	Timeout time.Duration
}

type store struct {
	baseURL string
	client  *httpclient.Client
}

// bearerRoundTripper authenticates every request with the service token
type bearerRoundTripper struct {
	token string
}

func (b *bearerRoundTripper) RoundTrip(req *http.Request, next func(*http.Request) (*http.Response, error)) (*http.Response, error) {
	req.Header.Set(constants.AuthorizationHeader, "Bearer "+b.token)
	return next(req)
}

func (s *store) url(path string) string {
	return s.baseURL + "/" + strings.TrimLeft(path, "/")
}

// GetCalendarObject fetches the object at path with its ETag
func (s *store) GetCalendarObject(ctx context.Context, path string) (*model.CalendarObject, error) {
	resp, err := s.client.Request(ctx, http.MethodGet, s.url(path), nil, map[string]string{
		"Accept": "text/calendar",
	})
	if err != nil {
		return nil, s.mapError(ctx, http.MethodGet, path, err)
	}

	return &model.CalendarObject{
		Path: path,
		ICS:  string(resp.Body),
		ETag: resp.Headers.Get("ETag"),
	}, nil
}

// PutCalendarObject writes the object, with If-Match when the ETag is known
func (s *store) PutCalendarObject(ctx context.Context, object *model.CalendarObject) (string, error) {
	headers := map[string]string{
		"Content-Type": constants.ContentTypeCalendar,
	}
	if object.ETag != "" {
		headers[constants.IfMatchHeader] = object.ETag
	}

	resp, err := s.client.Request(ctx, http.MethodPut, s.url(object.Path), []byte(object.ICS), headers)
	if err != nil {
		return "", s.mapError(ctx, http.MethodPut, object.Path, err)
	}

	etag := resp.Headers.Get("ETag")
	if etag != "" {
		return etag, nil
	}

	// the server may omit the ETag when it altered the stored data
	return s.fetchETag(ctx, object.Path)
}

// fetchETag reads getetag with a depth 0 PROPFIND
func (s *store) fetchETag(ctx context.Context, path string) (string, error) {
	resp, err := s.client.Request(ctx, "PROPFIND", s.url(path), []byte(propfindETag), map[string]string{
		"Accept":       "application/xml",
		"Content-Type": contentTypeXML,
		"Depth":        "0",
	})
	if err != nil {
		return "", s.mapError(ctx, "PROPFIND", path, err)
	}

	return parseETag(resp.Body)
}

// parseETag extracts getetag from a multistatus body
func parseETag(body []byte) (string, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return "", errs.NewUnexpected("invalid PROPFIND response", err)
	}

	element := doc.FindElement("//getetag")
	if element == nil {
		return "", errs.NewUnexpected("PROPFIND response has no getetag")
	}
	return strings.TrimSpace(element.Text()), nil
}

// mapError translates the HTTP status of a failed request
func (s *store) mapError(ctx context.Context, method, path string, err error) error {
	var httpErr *httpclient.StatusError
	if !errors.As(err, &httpErr) {
		slog.ErrorContext(ctx, "caldav request failed",
			"error", err,
			"method", method,
			"event_path", path,
		)
		return errs.NewServiceUnavailable("caldav request failed", err)
	}

	switch httpErr.StatusCode {
	case http.StatusNotFound, http.StatusGone:
		return errs.NewNotFound("calendar object not found: " + path)
	case http.StatusPreconditionFailed:
		slog.WarnContext(ctx, "calendar object was modified concurrently", "event_path", path)
		return errs.NewConflict("calendar object was modified: " + path)
	case http.StatusUnauthorized, http.StatusForbidden:
		return errs.NewUnauthorized("caldav server refused the request", err)
	}

	slog.ErrorContext(ctx, "caldav request failed",
		"error", err,
		"method", method,
		"event_path", path,
		"status_code", httpErr.StatusCode,
	)
	if httpErr.StatusCode >= http.StatusInternalServerError {
		return errs.NewServiceUnavailable("caldav server error", err)
	}
	return errs.NewUnexpected("caldav request failed", err)
}

// NewCalendarObjectStore creates a CalendarObjectStore backed by a CalDAV server
func NewCalendarObjectStore(config Config) (port.CalendarObjectStore, error) {
	if config.URL == "" {
		return nil, errs.NewValidation("CalDAV URL is required")
	}

	httpConfig := httpclient.DefaultConfig()
	if config.Timeout > 0 {
		httpConfig.Timeout = config.Timeout
	}

	client := httpclient.NewClient(httpConfig)
	if config.Token != "" {
		client.AddRoundTripper(&bearerRoundTripper{token: config.Token})
	}

	return &store{
		baseURL: strings.TrimRight(config.URL, "/"),
		client:  client,
	}, nil
}
