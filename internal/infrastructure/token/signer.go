// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package token signs and verifies the participation links sent to attendees.
package token

import (
	"context"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/domain/model"
	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/domain/port"
	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/errors"
)

// Config holds the signing settings
type Config struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

type claims struct {
	model.ParticipationToken
	jwt.RegisteredClaims
}

// Validate shadows the payload validation; the participation service checks
// the payload fields itself.
func (c *claims) Validate() error {
	return nil
}

type signer struct {
	config Config
	now    func() time.Time
}

// Sign issues an HS256 token carrying payload
func (s *signer) Sign(ctx context.Context, payload model.ParticipationToken) (string, error) {
	now := s.now()
	registered := jwt.RegisteredClaims{
		Issuer:   s.config.Issuer,
		Subject:  payload.AttendeeEmail,
		IssuedAt: jwt.NewNumericDate(now),
	}
	if s.config.TTL > 0 {
		registered.ExpiresAt = jwt.NewNumericDate(now.Add(s.config.TTL))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{payload, registered}).SignedString([]byte(s.config.Secret))
	if err != nil {
		slog.ErrorContext(ctx, "failed to sign participation token", "error", err)
		return "", errors.NewUnexpected("failed to sign participation token", err)
	}
	return signed, nil
}

// Verify checks the signature, issuer and expiry of token
func (s *signer) Verify(ctx context.Context, token string) (*model.ParticipationToken, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}

	parsed := &claims{}
	_, err := jwt.ParseWithClaims(token, parsed, func(*jwt.Token) (any, error) {
		return []byte(s.config.Secret), nil
	}, opts...)
	if err != nil {
		slog.WarnContext(ctx, "invalid participation token", "error", err)
		return nil, errors.NewUnauthorized("invalid participation token", err)
	}

	payload := parsed.ParticipationToken
	return &payload, nil
}

// NewSigner creates a TokenSigner for config
func NewSigner(config Config) (port.TokenSigner, error) {
	if config.Secret == "" {
		return nil, errors.NewValidation("participation token secret is required")
	}
	return &signer{config: config, now: time.Now}, nil
}
