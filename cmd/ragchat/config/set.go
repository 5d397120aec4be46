package configcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/ragchat/pkg/cliui"
)

const setLongDesc string = `Set a configuration value.

Validates the value and writes it to config.toml in the .ragchat/
directory. Durations use Go syntax (30s, 2m), lists are comma separated.

Examples:
  ragchat config set client.api_target http://localhost:8080/api
  ragchat config set upload.workers 4
  ragchat config set events.brokers kafka-1:9092,kafka-2:9092`

const setShortDesc string = "Set a configuration value"

func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "set <key> <value>",
		Short:             setShortDesc,
		Long:              setLongDesc,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeKey,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			cfger, err := openKey(cmd, key)
			if err != nil {
				return err
			}
			if err := cfger.SetConfigValue(key, value); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Set %s = %s %s\n",
				cliui.SuccessMark,
				cliui.KeyStyle.Render(key),
				cliui.ValueStyle.Render(value),
				cliui.DimStyle.Render("("+cfger.Path()+")"),
			)
			return nil
		},
	}
}
