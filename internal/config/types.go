package config

import (
	"errors"
	"fmt"
	"strings"
)

// Config is the single configuration document for the bot.
//
// The file may be JSON or YAML; YAML is coerced to JSON and both go
// through the same strict decoder (unknown fields are rejected).
// All durations are Go duration strings (e.g. "10s", "1m").
type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Logging  LoggingConfig  `json:"logging"`
	Registry RegistryConfig `json:"registry"`
	Feed     FeedConfig     `json:"feed"`
	Schedule ScheduleConfig `json:"schedule"`
	Delivery DeliveryConfig `json:"delivery,omitempty"`
	Storage  *StorageConfig `json:"storage,omitempty"`
}

type TelegramConfig struct {
	Token       string `json:"token"`
	PollTimeout string `json:"poll_timeout,omitempty"`
}

type LoggingConfig struct {
	Level   string        `json:"level,omitempty"`
	Console bool          `json:"console"`
	File    FileLogConfig `json:"file,omitempty"`
}

type FileLogConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path,omitempty"`
}

// RegistryConfig locates the destination list file.
type RegistryConfig struct {
	Path string `json:"path"`
}

type FeedConfig struct {
	URL     string `json:"url"`
	Timeout string `json:"timeout,omitempty"`
}

// ScheduleConfig sets the weekly announcement instant as a wall clock
// in the given timezone. Defaults: Sunday 09:00 local.
type ScheduleConfig struct {
	Weekday  string `json:"weekday,omitempty"`
	At       string `json:"at,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}

type DeliveryConfig struct {
	RatePerSec int `json:"rate_per_sec,omitempty"`
}

// StorageConfig controls the optional announcement history database.
type StorageConfig struct {
	Enabled     bool   `json:"enabled"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"`
}

// Validate checks the fields every component requires up front.
// Schedule fields are validated by the schedule package itself.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Telegram.Token) == "" {
		return errors.New("telegram.token is required (file or ANNOUNCEBOT_TELEGRAM_TOKEN)")
	}
	if strings.TrimSpace(c.Registry.Path) == "" {
		return errors.New("registry.path is required")
	}
	if strings.TrimSpace(c.Feed.URL) == "" {
		return errors.New("feed.url is required")
	}
	if c.Storage != nil && c.Storage.Enabled && strings.TrimSpace(c.Storage.Path) == "" {
		return errors.New("storage.path is required when storage is enabled")
	}
	for _, f := range []struct{ name, raw string }{
		{"telegram.poll_timeout", c.Telegram.PollTimeout},
		{"feed.timeout", c.Feed.Timeout},
		{"storage.busy_timeout", c.storageBusyTimeout()},
	} {
		if _, err := ParseDurationField(f.name, f.raw); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	return nil
}

func (c *Config) storageBusyTimeout() string {
	if c.Storage == nil {
		return ""
	}
	return c.Storage.BusyTimeout
}
