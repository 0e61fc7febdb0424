// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package config loads the YAML service configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/constants"
	errs "github.com/linuxfoundation/lfx-v2-calendar-service/pkg/errors"
	"github.com/linuxfoundation/lfx-v2-calendar-service/pkg/i18n"
)

// AlarmConfig drives the alarm dispatcher
type AlarmConfig struct {
	// Cron is a six field expression, seconds first
	Cron   string `yaml:"cron"`
	Sender string `yaml:"sender"`
}

// TokenConfig drives the participation links
type TokenConfig struct {
	Issuer string        `yaml:"issuer"`
	TTL    time.Duration `yaml:"ttl"`
}

// Config is the service configuration
type Config struct {
	// BaseURL is the public URL of the calendar frontend used in emails
	BaseURL string `yaml:"base_url"`

	DefaultLocale   string `yaml:"default_locale"`
	DefaultTimezone string `yaml:"default_timezone"`
	Use24HourFormat bool   `yaml:"use_24hour_format"`

	Alarm AlarmConfig `yaml:"alarm"`
	Token TokenConfig `yaml:"token"`
}

// DefaultConfig returns the configuration used when no file is given
func DefaultConfig() *Config {
	return &Config{
		BaseURL:         "http://localhost:8080",
		DefaultLocale:   constants.DefaultLocale,
		DefaultTimezone: "UTC",
		Use24HourFormat: false,
		Alarm: AlarmConfig{
			Cron:   constants.AlarmDefaultCronExpression,
			Sender: "noreply@localhost",
		},
		Token: TokenConfig{
			Issuer: constants.ServiceName,
			TTL:    30 * 24 * time.Hour,
		},
	}
}

// Load reads path over the defaults, applies the environment overrides and
// validates the result. An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, errs.NewUnexpected("failed to read config file "+path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, errs.NewValidation("invalid config file "+path, err)
			}
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides file values with the BASE_URL style variables
func (c *Config) applyEnv() {
	if v := os.Getenv("BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("DEFAULT_LOCALE"); v != "" {
		c.DefaultLocale = v
	}
	if v := os.Getenv("DEFAULT_TIMEZONE"); v != "" {
		c.DefaultTimezone = v
	}
	if v := os.Getenv("USE_24HOUR_FORMAT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Use24HourFormat = b
		}
	}
	if v := os.Getenv("ALARM_CRON"); v != "" {
		c.Alarm.Cron = v
	}
	if v := os.Getenv("ALARM_SENDER"); v != "" {
		c.Alarm.Sender = v
	}
	if v := os.Getenv("TOKEN_ISSUER"); v != "" {
		c.Token.Issuer = v
	}
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		if ttl, err := time.ParseDuration(v); err == nil {
			c.Token.TTL = ttl
		}
	}
}

// Validate checks every setting the service depends on
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errs.NewValidation(fmt.Sprintf("base_url must be an absolute URL: %q", c.BaseURL))
	}
	if c.DefaultLocale == "" || i18n.Match(c.DefaultLocale).String() != c.DefaultLocale {
		return errs.NewValidation(fmt.Sprintf("default_locale is not supported: %q", c.DefaultLocale))
	}
	if _, err := time.LoadLocation(c.DefaultTimezone); err != nil {
		return errs.NewValidation(fmt.Sprintf("default_timezone is unknown: %q", c.DefaultTimezone), err)
	}
	if _, err := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow).Parse(c.Alarm.Cron); err != nil {
		return errs.NewValidation(fmt.Sprintf("alarm.cron is invalid: %q", c.Alarm.Cron), err)
	}
	if c.Alarm.Sender == "" {
		return errs.NewValidation("alarm.sender is required")
	}
	if c.Token.TTL < 0 {
		return errs.NewValidation("token.ttl cannot be negative")
	}
	return nil
}
