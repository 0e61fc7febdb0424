// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mock

import (
	"context"
	"log/slog"
	"sync"

	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/domain/port"
)

// Message kinds recorded by MockMessagePublisher
const (
	MessageKindIndexer   = "indexer"
	MessageKindWebsocket = "websocket"
	MessageKindEvent     = "event"
)

// PublishedMessage is one message recorded by MockMessagePublisher
type PublishedMessage struct {
	Kind    string
	Subject string
	Message any
}

// MockMessagePublisher is a mock implementation of the MessagePublisher interface
type MockMessagePublisher struct {
	mu       sync.Mutex
	messages []PublishedMessage
	err      error
}

// Ensure MockMessagePublisher implements the MessagePublisher interface
var _ port.MessagePublisher = (*MockMessagePublisher)(nil)

// NewMockMessagePublisher creates a new mock publisher for testing
func NewMockMessagePublisher() *MockMessagePublisher {
	return &MockMessagePublisher{}
}

// Indexer records an indexer message
func (m *MockMessagePublisher) Indexer(ctx context.Context, subject string, message any) error {
	return m.record(ctx, MessageKindIndexer, subject, message)
}

// Websocket records a websocket message
func (m *MockMessagePublisher) Websocket(ctx context.Context, subject string, message any) error {
	return m.record(ctx, MessageKindWebsocket, subject, message)
}

// Event records a calendar event message
func (m *MockMessagePublisher) Event(ctx context.Context, subject string, message any) error {
	return m.record(ctx, MessageKindEvent, subject, message)
}

func (m *MockMessagePublisher) record(ctx context.Context, kind, subject string, message any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}

	m.messages = append(m.messages, PublishedMessage{Kind: kind, Subject: subject, Message: message})
	slog.DebugContext(ctx, "mock message published",
		"subject", subject,
		"message_type", kind,
	)
	return nil
}

// Messages returns the recorded messages of kind, all of them when kind is empty
func (m *MockMessagePublisher) Messages(kind string) []PublishedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	var messages []PublishedMessage
	for _, message := range m.messages {
		if kind == "" || message.Kind == kind {
			messages = append(messages, message)
		}
	}
	return messages
}

// SetError makes every publish fail with err
func (m *MockMessagePublisher) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Reset drops recorded messages and the configured error
func (m *MockMessagePublisher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = nil
	m.err = nil
}
