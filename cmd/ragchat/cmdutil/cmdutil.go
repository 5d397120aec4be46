// Package cmdutil holds the wiring shared by ragchat commands: config
// resolution, logging, the backend client and the turn event publisher.
package cmdutil

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papercomputeco/ragchat/pkg/backend"
	"github.com/papercomputeco/ragchat/pkg/cliui"
	"github.com/papercomputeco/ragchat/pkg/config"
	"github.com/papercomputeco/ragchat/pkg/eventstream"
	"github.com/papercomputeco/ragchat/pkg/eventstream/kafka"
	"github.com/papercomputeco/ragchat/pkg/eventstream/nop"
	"github.com/papercomputeco/ragchat/pkg/logger"
)

// Persistent flag names registered on the root command.
const (
	FlagDebug     = "debug"
	FlagConfigDir = "config-dir"
)

// ConfigDir returns the --config-dir override, or "" to use the default
// resolution.
func ConfigDir(cmd *cobra.Command) string {
	dir, _ := cmd.Flags().GetString(FlagConfigDir)
	return dir
}

// LoadViper resolves config for cmd and binds the given registry flags so
// that flag > env > file > default holds.
func LoadViper(cmd *cobra.Command, registryKeys ...string) (*viper.Viper, error) {
	v, err := config.InitViper(ConfigDir(cmd))
	if err != nil {
		return nil, err
	}
	config.BindRegisteredFlags(v, cmd, config.Flags, registryKeys)
	return v, nil
}

// NewLogger builds the command logger. Logs go to stderr so that answers on
// stdout stay clean, pretty when stderr is a terminal.
func NewLogger(cmd *cobra.Command) *slog.Logger {
	debug, _ := cmd.Flags().GetBool(FlagDebug)
	format := logger.FormatText
	if cliui.IsTerminal(os.Stderr) {
		format = logger.FormatPretty
	}

	return logger.New(
		logger.WithDebug(debug),
		logger.WithSource(debug),
		logger.WithFormat(format),
		logger.WithOutput(os.Stderr),
	)
}

// Duration parses a duration config value. An empty value is zero.
func Duration(v *viper.Viper, key string) (time.Duration, error) {
	raw := v.GetString(key)
	if raw == "" {
		return 0, nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return d, nil
}

// NewClient creates the backend client from client.* config.
func NewClient(v *viper.Viper, log *slog.Logger) (*backend.Client, error) {
	timeout, err := Duration(v, "client.timeout")
	if err != nil {
		return nil, err
	}

	return backend.NewClient(v.GetString("client.api_target"),
		backend.WithTimeout(timeout),
		backend.WithLogger(log),
	), nil
}

// NewPublisher creates the turn event publisher from events.* config.
func NewPublisher(v *viper.Viper, log *slog.Logger) (eventstream.Publisher, error) {
	switch provider := v.GetString("events.provider"); provider {
	case "", "nop":
		return nop.NewPublisher(log), nil
	case "kafka":
		brokers := v.GetStringSlice("events.brokers")
		if len(brokers) == 1 {
			// A single comma separated value from a flag or env var.
			brokers = config.SplitList(brokers[0])
		}

		p, err := kafka.NewPublisher(kafka.Config{
			Brokers: brokers,
			Topic:   v.GetString("events.topic"),
			Logger:  log,
		})
		if err != nil {
			return nil, fmt.Errorf("creating kafka publisher: %w", err)
		}
		log.Debug("publishing turn events to kafka", "brokers", brokers, "topic", v.GetString("events.topic"))
		return p, nil
	default:
		return nil, fmt.Errorf("unknown events provider %q (want nop or kafka)", provider)
	}
}
