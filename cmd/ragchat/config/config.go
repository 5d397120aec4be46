// Package configcmder provides the config command for managing persistent
// ragchat configuration stored in the .ragchat/ directory.
package configcmder

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/ragchat/cmd/ragchat/cmdutil"
	"github.com/papercomputeco/ragchat/pkg/config"
)

const configLongDesc string = `Manage persistent ragchat configuration.

Configuration is stored as config.toml in the .ragchat/ directory and provides
default values for command flags. CLI flags and RAGCHAT_* environment
variables take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  client.api_target, client.timeout,
  chat.fallback_message, chat.idle_timeout, chat.markdown,
  upload.workers,
  server.listen, server.sqlite_path, server.token_delay,
  events.provider, events.brokers, events.topic

Subcommands:
  ragchat config set <key> <value>    Set a configuration value
  ragchat config get <key>            Get a configuration value
  ragchat config unset <key>          Restore a key's default
  ragchat config list                 List all configuration values

Examples:
  ragchat config set client.api_target http://rag.internal:8080/api
  ragchat config set chat.idle_timeout 2m
  ragchat config get client.api_target
  ragchat config list`

const configShortDesc string = "Manage persistent ragchat configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newUnsetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

// openKey validates key and opens the config file for cmd.
func openKey(cmd *cobra.Command, key string) (*config.Configer, error) {
	if !config.IsValidConfigKey(key) {
		return nil, fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
			key, strings.Join(config.ValidConfigKeys(), ", "))
	}
	return openConfiger(cmd)
}

func openConfiger(cmd *cobra.Command) (*config.Configer, error) {
	cfger, err := config.NewConfiger(cmdutil.ConfigDir(cmd))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfger, nil
}

// completeKey offers config keys for the first positional argument.
func completeKey(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}
