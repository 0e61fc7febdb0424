// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package service wires the port implementations selected by the environment.
package service

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/config"
	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/domain/port"
	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/infrastructure/caldav"
	infrastructure "github.com/linuxfoundation/lfx-v2-calendar-service/internal/infrastructure/mock"
	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/infrastructure/nats"
	"github.com/linuxfoundation/lfx-v2-calendar-service/internal/infrastructure/token"
	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/constants"
)

var (
	natsClient *nats.NATSClient
	natsDoOnce sync.Once

	serviceConfig *config.Config
	configDoOnce  sync.Once
)

func natsInit(ctx context.Context) {
	natsDoOnce.Do(func() {
		natsURL := os.Getenv(constants.EnvNATSURL)
		if natsURL == "" {
			natsURL = "nats://localhost:4222"
		}

		natsTimeout := os.Getenv("NATS_TIMEOUT")
		if natsTimeout == "" {
			natsTimeout = "10s"
		}
		natsTimeoutDuration, err := time.ParseDuration(natsTimeout)
		if err != nil {
			log.Fatalf("invalid NATS timeout duration: %v", err)
		}

		natsMaxReconnect := os.Getenv("NATS_MAX_RECONNECT")
		if natsMaxReconnect == "" {
			natsMaxReconnect = "3"
		}
		natsMaxReconnectInt, err := strconv.Atoi(natsMaxReconnect)
		if err != nil {
			log.Fatalf("invalid NATS max reconnect value %s: %v", natsMaxReconnect, err)
		}

		natsReconnectWait := os.Getenv("NATS_RECONNECT_WAIT")
		if natsReconnectWait == "" {
			natsReconnectWait = "2s"
		}
		natsReconnectWaitDuration, err := time.ParseDuration(natsReconnectWait)
		if err != nil {
			log.Fatalf("invalid NATS reconnect wait duration %s : %v", natsReconnectWait, err)
		}

		client, errNewClient := nats.NewClient(ctx, nats.Config{
			URL:           natsURL,
			Timeout:       natsTimeoutDuration,
			MaxReconnect:  natsMaxReconnectInt,
			ReconnectWait: natsReconnectWaitDuration,
		})
		if errNewClient != nil {
			log.Fatalf("failed to create NATS client: %v", errNewClient)
		}
		natsClient = client
	})
}

// GetNATSClient returns the shared NATS client, connecting on first use
func GetNATSClient(ctx context.Context) *nats.NATSClient {
	natsInit(ctx)
	return natsClient
}

// Config returns the service configuration loaded from CONFIG_FILE
func Config(ctx context.Context) *config.Config {
	configDoOnce.Do(func() {
		cfg, err := config.Load(os.Getenv(constants.EnvConfigFile))
		if err != nil {
			log.Fatalf("failed to load configuration: %v", err)
		}
		slog.InfoContext(ctx, "configuration loaded",
			"base_url", cfg.BaseURL,
			"default_locale", cfg.DefaultLocale,
			"default_timezone", cfg.DefaultTimezone,
			"alarm_cron", cfg.Alarm.Cron,
		)
		serviceConfig = cfg
	})
	return serviceConfig
}

func repositorySource() string {
	source := os.Getenv(constants.EnvRepositorySource)
	if source == "" {
		source = constants.SourceNATS
	}
	return source
}

// UserReader initializes the user directory implementation
func UserReader(ctx context.Context) port.UserReader {
	switch source := repositorySource(); source {
	case constants.SourceMock:
		slog.InfoContext(ctx, "initializing mock user directory")
		return infrastructure.NewMockUserReader(infrastructure.NewMockRepository())
	case constants.SourceNATS:
		slog.InfoContext(ctx, "initializing NATS user directory")
		return nats.NewUserReader(GetNATSClient(ctx))
	default:
		log.Fatalf("unsupported user directory implementation: %s", source)
	}
	return nil
}

// UserSettingsReader initializes the user settings implementation, falling
// back to the configured datetime defaults
func UserSettingsReader(ctx context.Context) port.UserSettingsReader {
	var reader port.UserSettingsReader
	switch source := repositorySource(); source {
	case constants.SourceMock:
		reader = infrastructure.NewMockUserSettingsReader(infrastructure.NewMockRepository())
	case constants.SourceNATS:
		reader = nats.NewUserSettingsReader(GetNATSClient(ctx))
	default:
		log.Fatalf("unsupported user settings implementation: %s", source)
	}
	return config.WithDatetimeDefaults(reader, Config(ctx))
}

// ResourceReader initializes the resource directory implementation
func ResourceReader(ctx context.Context) port.ResourceReader {
	switch source := repositorySource(); source {
	case constants.SourceMock:
		return infrastructure.NewMockResourceReader(infrastructure.NewMockRepository())
	case constants.SourceNATS:
		return nats.NewResourceReader(GetNATSClient(ctx))
	default:
		log.Fatalf("unsupported resource directory implementation: %s", source)
	}
	return nil
}

// MessagePublisher initializes the publisher of index, websocket and event messages
func MessagePublisher(ctx context.Context) port.MessagePublisher {
	switch source := repositorySource(); source {
	case constants.SourceMock:
		slog.InfoContext(ctx, "initializing mock message publisher")
		return infrastructure.NewMockMessagePublisher()
	case constants.SourceNATS:
		return nats.NewMessagePublisher(GetNATSClient(ctx))
	default:
		log.Fatalf("unsupported message publisher implementation: %s", source)
	}
	return nil
}

// Mailer initializes the email transport
func Mailer(ctx context.Context) port.Mailer {
	switch source := repositorySource(); source {
	case constants.SourceMock:
		return infrastructure.NewMockMailer(infrastructure.NewMockRepository())
	case constants.SourceNATS:
		return nats.NewMailer(GetNATSClient(ctx))
	default:
		log.Fatalf("unsupported mailer implementation: %s", source)
	}
	return nil
}

// AlarmRepository initializes the alarm storage
func AlarmRepository(ctx context.Context) port.AlarmRepository {
	switch source := repositorySource(); source {
	case constants.SourceMock:
		return infrastructure.NewMockAlarmRepository(infrastructure.NewMockRepository())
	case constants.SourceNATS:
		return nats.NewAlarmRepository(GetNATSClient(ctx))
	default:
		log.Fatalf("unsupported alarm repository implementation: %s", source)
	}
	return nil
}

// CalendarObjectStore initializes the calendar object storage
func CalendarObjectStore(ctx context.Context) port.CalendarObjectStore {
	source := os.Getenv(constants.EnvCalendarStoreSource)
	if source == "" {
		source = constants.SourceNATS
	}

	switch source {
	case constants.SourceMock:
		slog.InfoContext(ctx, "initializing mock calendar object store")
		return infrastructure.NewMockCalendarObjectStore(infrastructure.NewMockRepository())
	case constants.SourceNATS:
		slog.InfoContext(ctx, "initializing NATS KV calendar object store")
		return nats.NewCalendarObjectStore(GetNATSClient(ctx))
	case constants.SourceCalDAV:
		slog.InfoContext(ctx, "initializing CalDAV calendar object store", "url", os.Getenv(constants.EnvCalDAVURL))
		store, err := caldav.NewCalendarObjectStore(caldav.Config{
			URL:   os.Getenv(constants.EnvCalDAVURL),
			Token: os.Getenv(constants.EnvCalDAVToken),
		})
		if err != nil {
			log.Fatalf("failed to initialize CalDAV store: %v", err)
		}
		return store
	default:
		log.Fatalf("unsupported calendar object store implementation: %s", source)
	}
	return nil
}

// TokenSigner initializes the participation link signer. The mock signer is
// only used with the mock directory when no secret is configured.
func TokenSigner(ctx context.Context) port.TokenSigner {
	secret := os.Getenv(constants.EnvParticipationTokenSecret)
	if secret == "" && repositorySource() == constants.SourceMock {
		slog.WarnContext(ctx, "initializing mock participation token signer")
		return infrastructure.NewMockTokenSigner()
	}

	cfg := Config(ctx)
	signer, err := token.NewSigner(token.Config{
		Secret: secret,
		Issuer: cfg.Token.Issuer,
		TTL:    cfg.Token.TTL,
	})
	if err != nil {
		log.Fatalf("failed to initialize participation token signer: %v", err)
	}
	return signer
}

// BaseURLResolver resolves the frontend URL put in emails
func BaseURLResolver(ctx context.Context) port.BaseURLResolver {
	return config.NewBaseURLResolver(Config(ctx))
}
