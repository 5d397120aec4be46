// Package sessioncmder provides the session command for managing the saved
// chat session.
package sessioncmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/ragchat/cmd/ragchat/cmdutil"
	"github.com/papercomputeco/ragchat/pkg/cliui"
	"github.com/papercomputeco/ragchat/pkg/config"
	"github.com/papercomputeco/ragchat/pkg/dotdir"
)

const sessionLongDesc string = `Manage the saved chat session.

"ragchat chat --resume", "ragchat ask --resume" and "ragchat history" use the
session saved in .ragchat/session.json. A session is only reused against the
backend it was created on.

  ragchat session new      Create a session and save it
  ragchat session show     Show the saved session
  ragchat session clear    Forget the saved session`

const sessionShortDesc string = "Manage the saved chat session"

func NewSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: sessionShortDesc,
		Long:  sessionLongDesc,
	}

	cmd.AddCommand(newNewCmd())
	cmd.AddCommand(newShowCmd())
	cmd.AddCommand(newClearCmd())

	return cmd
}

func newNewCmd() *cobra.Command {
	var apiTarget, timeout string

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a backend session and save it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := cmdutil.LoadViper(cmd, config.FlagAPITarget, config.FlagTimeout)
			if err != nil {
				return err
			}

			log := cmdutil.NewLogger(cmd)
			client, err := cmdutil.NewClient(v, log)
			if err != nil {
				return err
			}

			var id string
			err = cliui.Step(cmd.ErrOrStderr(), "Creating session", func() error {
				var err error
				id, err = cmdutil.NewSession(cmd.Context(), cmd, client, log)
				return err
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagAPITarget, &apiTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagTimeout, &timeout)

	return cmd
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			state, err := dotdir.NewManager().LoadSession(cmdutil.ConfigDir(cmd))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if state == nil {
				fmt.Fprintln(out, cliui.DimStyle.Render("No saved session."))
				return nil
			}

			fmt.Fprintf(out, "%s %s\n", cliui.KeyStyle.Render("session:"), cliui.HashStyle.Render(state.SessionID))
			fmt.Fprintf(out, "%s %s\n", cliui.KeyStyle.Render("backend:"), cliui.ValueStyle.Render(state.APITarget))
			fmt.Fprintf(out, "%s %s\n", cliui.KeyStyle.Render("created:"), cliui.DimStyle.Render(state.CreatedAt.Format("2006-01-02 15:04:05")))
			return nil
		},
	}
}

func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := dotdir.NewManager().ClearSession(cmdutil.ConfigDir(cmd)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Session cleared\n", cliui.SuccessMark)
			return nil
		},
	}
}
