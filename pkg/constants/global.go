// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package constants

// Service constants
const (
	// ServiceName is the name of this service
	ServiceName = "lfx-v2-calendar-service"
)

// HTTP header constants
const (
	// RequestIDHeader is the HTTP header name for request ID
	RequestIDHeader = "X-Request-Id"
)

// Environment variables
const (
	// EnvNATSURL is the environment variable for NATS server URL
	EnvNATSURL = "NATS_URL"
	// EnvConfigFile points at the optional YAML service configuration
	EnvConfigFile = "CONFIG_FILE"
	// EnvRepositorySource selects the user directory / publisher implementation
	EnvRepositorySource = "REPOSITORY_SOURCE"
	// EnvCalendarStoreSource selects the calendar object store implementation
	EnvCalendarStoreSource = "CALENDAR_STORE_SOURCE"
	// EnvCalDAVURL is the CalDAV server endpoint
	EnvCalDAVURL = "CALDAV_URL"
	// EnvCalDAVToken is the bearer token used against the CalDAV server
	EnvCalDAVToken = "CALDAV_TOKEN"
	// EnvParticipationTokenSecret is the HMAC secret of participation links
	EnvParticipationTokenSecret = "PARTICIPATION_TOKEN_SECRET"
)
