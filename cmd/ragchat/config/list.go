package configcmder

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

const listLongDesc string = `List all configuration values.

Displays every configuration key with its effective value, aligned, or
as a JSON array with --json.

Examples:
  ragchat config list
  ragchat config list --json`

const listShortDesc string = "List all configuration values"

func newListCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: listShortDesc,
		Long:  listLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfger, err := openConfiger(cmd)
			if err != nil {
				return err
			}

			entries, err := cfger.Entries()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			width := 0
			for _, e := range entries {
				width = max(width, len(e.Key))
			}

			fmt.Fprintf(out, "Using config: %s\n\n", cfger.Path())
			for _, e := range entries {
				if e.Value == "" {
					fmt.Fprintf(out, "%-*s = <not set>\n", width, e.Key)
					continue
				}
				fmt.Fprintf(out, "%-*s = %q\n", width, e.Key, e.Value)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print entries as JSON")

	return cmd
}
