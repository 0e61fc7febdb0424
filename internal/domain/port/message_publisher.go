// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package port

import "context"

// MessagePublisher defines the interface for publishing calendar service messages
// This interface is implemented by the NATS messaging infrastructure
type MessagePublisher interface {
	// Indexer publishes indexer messages for search and discovery services
	// These messages are consumed by indexing services to maintain search indexes
	Indexer(ctx context.Context, subject string, message any) error

	// Websocket publishes a notification for the websocket gateway of one user
	Websocket(ctx context.Context, subject string, message any) error

	// Event publishes a calendar event message for the other subscribers of the platform
	Event(ctx context.Context, subject string, message any) error
}
