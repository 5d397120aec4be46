// Package versioncmder provides the version command.
package versioncmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/ragchat/pkg/cliui"
	"github.com/papercomputeco/ragchat/pkg/utils"
)

func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", cliui.KeyStyle.Render("version:  "), utils.Version)
			fmt.Fprintf(out, "%s %s\n", cliui.KeyStyle.Render("commit:   "), utils.Sha)
			fmt.Fprintf(out, "%s %s\n", cliui.KeyStyle.Render("built:    "), utils.Buildtime)
		},
	}
}
