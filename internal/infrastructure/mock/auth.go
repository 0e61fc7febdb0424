// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package mock provides mock implementations for testing purposes.
package mock

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/domain/model"
	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/domain/port"
	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/errors"
)

const mockTokenPrefix = "mock."

// MockTokenSigner issues unsigned, readable participation tokens
type MockTokenSigner struct{}

var _ port.TokenSigner = (*MockTokenSigner)(nil)

// Sign encodes payload
func (m *MockTokenSigner) Sign(ctx context.Context, payload model.ParticipationToken) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", errors.NewUnexpected("failed to encode token payload", err)
	}
	return mockTokenPrefix + base64.RawURLEncoding.EncodeToString(data), nil
}

// Verify decodes a token produced by Sign
func (m *MockTokenSigner) Verify(ctx context.Context, token string) (*model.ParticipationToken, error) {
	encoded, ok := strings.CutPrefix(token, mockTokenPrefix)
	if !ok {
		return nil, errors.NewUnauthorized("invalid participation token")
	}

	data, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.NewUnauthorized("invalid participation token", err)
	}

	var payload model.ParticipationToken
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, errors.NewUnauthorized("invalid participation token", err)
	}
	return &payload, nil
}

// NewMockTokenSigner creates a new mock token signer
func NewMockTokenSigner() port.TokenSigner {
	return &MockTokenSigner{}
}
