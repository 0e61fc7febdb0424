// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package model

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/calendar"
	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/constants"
)

func TestIndexerMessage_Build(t *testing.T) {
	tests := []struct {
		name        string
		message     *IndexerMessage
		context     func() context.Context
		input       any
		expectError bool
		validate    func(t *testing.T, result *IndexerMessage, err error)
	}{
		{
			name: "build create action with context headers",
			message: &IndexerMessage{
				Action: ActionCreated,
				Tags:   []string{"test:tag"},
			},
			context: func() context.Context {
				ctx := context.Background()
				ctx = context.WithValue(ctx, constants.AuthorizationContextID, "Bearer token123")
				ctx = context.WithValue(ctx, constants.PrincipalContextID, "user123")
				return ctx
			},
			input: map[string]interface{}{
				"uid":  "test-uid",
				"name": "test-name",
			},
			expectError: false,
			validate: func(t *testing.T, result *IndexerMessage, err error) {
				require.NoError(t, err)
				require.NotNil(t, result)

				// Check action preserved
				assert.Equal(t, ActionCreated, result.Action)

				// Check tags preserved
				assert.Equal(t, []string{"test:tag"}, result.Tags)

				// Check headers extracted from context
				assert.Equal(t, "Bearer token123", result.Headers[constants.AuthorizationHeader])
				assert.Equal(t, "user123", result.Headers[constants.XOnBehalfOfHeader])

				// Check data is properly marshaled to map[string]any
				dataMap, ok := result.Data.(map[string]any)
				require.True(t, ok, "Data should be a map[string]any")
				assert.Equal(t, "test-uid", dataMap["uid"])
				assert.Equal(t, "test-name", dataMap["name"])
			},
		},
		{
			name: "build update action with context headers",
			message: &IndexerMessage{
				Action: ActionUpdated,
				Tags:   []string{"update:tag"},
			},
			context: func() context.Context {
				ctx := context.Background()
				ctx = context.WithValue(ctx, constants.AuthorizationContextID, "Bearer updated-token")
				ctx = context.WithValue(ctx, constants.PrincipalContextID, "admin-user")
				return ctx
			},
			input: map[string]interface{}{
				"uid":         "updated-uid",
				"description": "updated description",
			},
			expectError: false,
			validate: func(t *testing.T, result *IndexerMessage, err error) {
				require.NoError(t, err)
				require.NotNil(t, result)

				assert.Equal(t, ActionUpdated, result.Action)
				assert.Equal(t, "Bearer updated-token", result.Headers[constants.AuthorizationHeader])
				assert.Equal(t, "admin-user", result.Headers[constants.XOnBehalfOfHeader])

				dataMap, ok := result.Data.(map[string]any)
				require.True(t, ok)
				assert.Equal(t, "updated-uid", dataMap["uid"])
				assert.Equal(t, "updated description", dataMap["description"])
			},
		},
		{
			name: "build delete action",
			message: &IndexerMessage{
				Action: ActionDeleted,
				Tags:   []string{"delete:tag"},
			},
			context: func() context.Context {
				ctx := context.Background()
				ctx = context.WithValue(ctx, constants.PrincipalContextID, "delete-user")
				return ctx
			},
			input:       "deleted-uid-123",
			expectError: false,
			validate: func(t *testing.T, result *IndexerMessage, err error) {
				require.NoError(t, err)
				require.NotNil(t, result)

				assert.Equal(t, ActionDeleted, result.Action)
				assert.Equal(t, "delete-user", result.Headers[constants.XOnBehalfOfHeader])
				assert.NotContains(t, result.Headers, constants.AuthorizationHeader)

				// For delete actions, data should be the input directly (string)
				assert.Equal(t, "deleted-uid-123", result.Data)
			},
		},
		{
			name: "build without context values",
			message: &IndexerMessage{
				Action: ActionCreated,
			},
			context: func() context.Context {
				return context.Background()
			},
			input: map[string]interface{}{
				"uid": "no-context-uid",
			},
			expectError: false,
			validate: func(t *testing.T, result *IndexerMessage, err error) {
				require.NoError(t, err)
				require.NotNil(t, result)

				// Headers should be empty when no context values
				assert.Empty(t, result.Headers)

				dataMap, ok := result.Data.(map[string]any)
				require.True(t, ok)
				assert.Equal(t, "no-context-uid", dataMap["uid"])
			},
		},
		{
			name: "build with struct input",
			message: &IndexerMessage{
				Action: ActionCreated,
			},
			context: func() context.Context {
				return context.Background()
			},
			input: struct {
				UID  string `json:"uid"`
				Name string `json:"name"`
			}{
				UID:  "struct-uid",
				Name: "struct-name",
			},
			expectError: false,
			validate: func(t *testing.T, result *IndexerMessage, err error) {
				require.NoError(t, err)

				dataMap, ok := result.Data.(map[string]any)
				require.True(t, ok)
				assert.Equal(t, "struct-uid", dataMap["uid"])
				assert.Equal(t, "struct-name", dataMap["name"])
			},
		},
		{
			name: "build with unmarshalable input for create action",
			message: &IndexerMessage{
				Action: ActionCreated,
			},
			context: func() context.Context {
				return context.Background()
			},
			input: make(chan int), // channels cannot be marshaled to JSON
			expectError: true,
			validate: func(t *testing.T, result *IndexerMessage, err error) {
				require.Error(t, err)
				assert.Nil(t, result)
				assert.Contains(t, err.Error(), "unsupported type")
			},
		},
		{
			name: "build with complex input that fails JSON unmarshal",
			message: &IndexerMessage{
				Action: ActionUpdated,
			},
			context: func() context.Context {
				return context.Background()
			},
			input: struct {
				InvalidJSON func() `json:"invalid"`
			}{
				InvalidJSON: func() {},
			},
			expectError: true,
			validate: func(t *testing.T, result *IndexerMessage, err error) {
				require.Error(t, err)
				assert.Nil(t, result)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := tt.context()
			result, err := tt.message.Build(ctx, tt.input)
			tt.validate(t, result, err)
		})
	}
}

func testEventContent(t *testing.T) *calendar.EventContent {
	t.Helper()

	obj, err := calendar.Parse(strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//LFX//Calendar Test//EN",
		"BEGIN:VEVENT",
		"UID:event-123",
		"DTSTAMP:20150101T000000Z",
		"DTSTART:20150112T100000Z",
		"DTEND:20150112T110000Z",
		"SUMMARY:Board meeting",
		"ORGANIZER;CN=Olivia:mailto:organizer@example.com",
		"ATTENDEE;PARTSTAT=ACCEPTED:mailto:zoe@example.com",
		"ATTENDEE;PARTSTAT=NEEDS-ACTION;CN=Alice:mailto:alice@example.com",
		"END:VEVENT",
		"END:VCALENDAR",
	}, "\r\n"))
	require.NoError(t, err)

	content, err := calendar.BuildContent(obj, "https://lfx.example.com")
	require.NoError(t, err)
	return content
}

func TestIndexerMessage_BuildWithEventDocument(t *testing.T) {
	path := EventPath{CalendarHomeID: "home-1", CalendarID: "events", EventUID: "event-123"}
	doc := NewEventDocument(path, "", testEventContent(t), time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC))

	message := &IndexerMessage{
		Action: ActionCreated,
		Tags:   doc.Tags(),
	}

	ctx := context.WithValue(context.Background(), constants.PrincipalContextID, "test-user")
	result, err := message.Build(ctx, doc)

	require.NoError(t, err)
	assert.Equal(t, ActionCreated, result.Action)
	assert.Equal(t, doc.Tags(), result.Tags)
	assert.Equal(t, "test-user", result.Headers[constants.XOnBehalfOfHeader])

	dataMap, ok := result.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "home-1--events--event-123", dataMap["id"])
	assert.Equal(t, "event-123", dataMap["uid"])
	assert.Equal(t, "Board meeting", dataMap["summary"])
	assert.Equal(t, constants.EventIndexObjectType, dataMap["object_type"])
	assert.Equal(t, "2015-01-12T10:00:00Z", dataMap["start"])
}

func TestNewEventDocument(t *testing.T) {
	path := EventPath{CalendarHomeID: "home-1", CalendarID: "events", EventUID: "event-123"}
	doc := NewEventDocument(path, "20150112T100000Z", testEventContent(t), time.Now())

	assert.Equal(t, "home-1--events--event-123--20150112T100000Z", doc.ID)
	assert.Equal(t, "20150112T100000Z", doc.RecurrenceID)
	require.Len(t, doc.Attendees, 2)
	// attendees are sorted by email
	assert.Equal(t, "alice@example.com", doc.Attendees[0].Email)
	assert.Equal(t, "Alice", doc.Attendees[0].CommonName)
	assert.Equal(t, "zoe@example.com", doc.Attendees[1].Email)
	assert.Contains(t, doc.Tags(), "recurrence_id:20150112T100000Z")
	assert.Contains(t, doc.Tags(), "organizer:organizer@example.com")

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"all_day":false`)
}

func TestMessageAction_Constants(t *testing.T) {
	// Test that message action constants have expected values
	assert.Equal(t, MessageAction("created"), ActionCreated)
	assert.Equal(t, MessageAction("updated"), ActionUpdated)
	assert.Equal(t, MessageAction("deleted"), ActionDeleted)
}
