package config

import "github.com/papercomputeco/ragchat/pkg/chat"

const (
	defaultClientAPITarget = "http://localhost:8080/api"
	defaultClientTimeout   = "30s"

	defaultUploadWorkers = 2

	defaultServerListen     = ":8080"
	defaultServerTokenDelay = "20ms"

	defaultEventsProvider = "nop"
	defaultEventsBroker   = "localhost:9092"
	defaultEventsTopic    = "ragchat.turns"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Client: ClientConfig{
			APITarget: defaultClientAPITarget,
			Timeout:   defaultClientTimeout,
		},
		Chat: ChatConfig{
			FallbackMessage: chat.DefaultFallbackMessage,
		},
		Upload: UploadConfig{
			Workers: defaultUploadWorkers,
		},
		Server: ServerConfig{
			Listen:     defaultServerListen,
			TokenDelay: defaultServerTokenDelay,
		},
		Events: EventsConfig{
			Provider: defaultEventsProvider,
			Brokers:  []string{defaultEventsBroker},
			Topic:    defaultEventsTopic,
		},
	}
}
