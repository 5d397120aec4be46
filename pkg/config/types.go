package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Config represents the persistent ragchat configuration stored as config.toml
// in the .ragchat/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version int          `toml:"version"`
	Client  ClientConfig `toml:"client"`
	Chat    ChatConfig   `toml:"chat"`
	Upload  UploadConfig `toml:"upload"`
	Server  ServerConfig `toml:"server"`
	Events  EventsConfig `toml:"events"`
}

// ClientConfig holds settings for commands that talk to the chat backend.
type ClientConfig struct {
	// APITarget is the backend base URL including the /api prefix.
	APITarget string `toml:"api_target,omitempty"`

	// Timeout bounds non-streaming requests. Streams are never timed out
	// client-side; see ChatConfig.IdleTimeout.
	Timeout string `toml:"timeout,omitempty"`
}

// ChatConfig holds settings for the chat state machine.
type ChatConfig struct {
	FallbackMessage string `toml:"fallback_message,omitempty"`

	// IdleTimeout aborts a stream that delivers no bytes for this long.
	// Empty or zero disables it.
	IdleTimeout string `toml:"idle_timeout,omitempty"`

	Markdown bool `toml:"markdown,omitempty"`
}

// UploadConfig holds settings for watch-mode uploads.
type UploadConfig struct {
	Workers uint `toml:"workers,omitempty"`
}

// ServerConfig holds settings for the stand-in backend.
type ServerConfig struct {
	Listen string `toml:"listen,omitempty"`

	// SQLitePath selects the sqlite driver; empty means in-memory.
	SQLitePath string `toml:"sqlite_path,omitempty"`

	TokenDelay string `toml:"token_delay,omitempty"`
}

// EventsConfig holds turn event publishing settings.
type EventsConfig struct {
	Provider string   `toml:"provider,omitempty"`
	Brokers  []string `toml:"brokers,omitempty"`
	Topic    string   `toml:"topic,omitempty"`
}

// configKey binds a user-facing dotted key to its field on *Config.
type configKey struct {
	name string

	// get renders the field as a string; "" means unset.
	get func(c *Config) string

	// set parses and stores v. An empty v clears the field.
	set func(c *Config, v string) error

	// value returns the typed field, used for viper defaults.
	value func(c *Config) any
}

// configKeys lists every supported key in TOML section order.
var configKeys = []configKey{
	stringKey("client.api_target", func(c *Config) *string { return &c.Client.APITarget }),
	durationKey("client.timeout", func(c *Config) *string { return &c.Client.Timeout }),
	stringKey("chat.fallback_message", func(c *Config) *string { return &c.Chat.FallbackMessage }),
	durationKey("chat.idle_timeout", func(c *Config) *string { return &c.Chat.IdleTimeout }),
	{
		name:  "chat.markdown",
		get:   func(c *Config) string { return strconv.FormatBool(c.Chat.Markdown) },
		value: func(c *Config) any { return c.Chat.Markdown },
		set: func(c *Config, v string) error {
			if v == "" {
				c.Chat.Markdown = false
				return nil
			}
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid value for chat.markdown: %w", err)
			}
			c.Chat.Markdown = b
			return nil
		},
	},
	{
		name: "upload.workers",
		get: func(c *Config) string {
			if c.Upload.Workers == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Upload.Workers), 10)
		},
		value: func(c *Config) any { return c.Upload.Workers },
		set: func(c *Config, v string) error {
			if v == "" {
				c.Upload.Workers = 0
				return nil
			}
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for upload.workers: %w", err)
			}
			c.Upload.Workers = uint(n)
			return nil
		},
	},
	stringKey("server.listen", func(c *Config) *string { return &c.Server.Listen }),
	stringKey("server.sqlite_path", func(c *Config) *string { return &c.Server.SQLitePath }),
	durationKey("server.token_delay", func(c *Config) *string { return &c.Server.TokenDelay }),
	{
		name:  "events.provider",
		get:   func(c *Config) string { return c.Events.Provider },
		value: func(c *Config) any { return c.Events.Provider },
		set: func(c *Config, v string) error {
			switch v {
			case "", "nop", "kafka":
				c.Events.Provider = v
				return nil
			default:
				return fmt.Errorf("invalid value for events.provider: %q (available: nop, kafka)", v)
			}
		},
	},
	{
		name:  "events.brokers",
		get:   func(c *Config) string { return strings.Join(c.Events.Brokers, ",") },
		value: func(c *Config) any { return c.Events.Brokers },
		set:   func(c *Config, v string) error { c.Events.Brokers = SplitList(v); return nil },
	},
	stringKey("events.topic", func(c *Config) *string { return &c.Events.Topic }),
}

func lookupKey(name string) (configKey, bool) {
	for _, k := range configKeys {
		if k.name == name {
			return k, true
		}
	}
	return configKey{}, false
}

func stringKey(name string, field func(c *Config) *string) configKey {
	return configKey{
		name:  name,
		get:   func(c *Config) string { return *field(c) },
		value: func(c *Config) any { return *field(c) },
		set:   func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

// durationKey stores the raw string after checking it parses as a
// time.Duration, so the file keeps what the user typed.
func durationKey(name string, field func(c *Config) *string) configKey {
	k := stringKey(name, field)
	k.set = func(c *Config, v string) error {
		if v != "" {
			if _, err := time.ParseDuration(v); err != nil {
				return fmt.Errorf("invalid value for %s: %w", name, err)
			}
		}
		*field(c) = v
		return nil
	}
	return k
}

// SplitList splits a comma separated value, dropping blank entries.
func SplitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
