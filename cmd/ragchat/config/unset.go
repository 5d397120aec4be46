package configcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/ragchat/pkg/cliui"
)

const unsetLongDesc string = `Remove a configuration value.

Deletes the key from config.toml so that its default applies again.

Examples:
  ragchat config unset chat.idle_timeout`

const unsetShortDesc string = "Restore a configuration value's default"

func newUnsetCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "unset <key>",
		Short:             unsetShortDesc,
		Long:              unsetLongDesc,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeKey,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfger, err := openKey(cmd, args[0])
			if err != nil {
				return err
			}
			if err := cfger.UnsetConfigValue(args[0]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s Unset %s\n", cliui.SuccessMark, cliui.KeyStyle.Render(args[0]))
			return nil
		},
	}
}
