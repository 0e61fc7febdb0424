// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package constants defines shared constants used throughout the calendar service.
package constants

// ContextKey is the unified type for all context keys to prevent type mismatches
type ContextKey string

// Context keys for various service contexts
const (
	// PrincipalContextID is the context key for the principal
	PrincipalContextID ContextKey = "principal"

	// AuthorizationContextID is the context key for the authorization
	AuthorizationContextID ContextKey = "authorization"

	// RequestIDContextKey is the context key for request ID
	RequestIDContextKey ContextKey = "request-id"
)
