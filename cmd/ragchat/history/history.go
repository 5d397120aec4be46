// Package historycmder provides the history command for exporting a
// session's conversation.
package historycmder

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/ragchat/cmd/ragchat/cmdutil"
	"github.com/papercomputeco/ragchat/pkg/config"
	"github.com/papercomputeco/ragchat/pkg/transcript"
)

const historyLongDesc string = `Print a session's conversation history.

Without an argument the saved session is used. The history can be
printed as text, markdown, json or a standalone html page.

Examples:
  ragchat history
  ragchat history 3f1c9a52-7c4e-4d7e-9a55-2b1f0e6c8d11 --format json
  ragchat history --format html > transcript.html`

const historyShortDesc string = "Print a session's history"

var errNoSession = errors.New("no saved session; pass a session id or run \"ragchat session new\"")

type historyCommander struct {
	apiTarget string
	timeout   string
	format    string
}

func NewHistoryCmd() *cobra.Command {
	cmder := &historyCommander{}

	cmd := &cobra.Command{
		Use:   "history [session-id]",
		Short: historyShortDesc,
		Long:  historyLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id string
			if len(args) == 1 {
				id = args[0]
			}
			return cmder.run(cmd, id)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagAPITarget, &cmder.apiTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagTimeout, &cmder.timeout)
	cmd.Flags().StringVarP(&cmder.format, "format", "f", string(transcript.FormatText), "Output format (text, markdown, json, html)")

	return cmd
}

func (c *historyCommander) run(cmd *cobra.Command, sessionID string) error {
	format, err := transcript.ParseFormat(c.format)
	if err != nil {
		return err
	}

	v, err := cmdutil.LoadViper(cmd, config.FlagAPITarget, config.FlagTimeout)
	if err != nil {
		return err
	}

	log := cmdutil.NewLogger(cmd)

	client, err := cmdutil.NewClient(v, log)
	if err != nil {
		return err
	}

	if sessionID == "" {
		sessionID, err = cmdutil.SavedSession(cmd, client)
		if err != nil {
			return err
		}
		if sessionID == "" {
			return errNoSession
		}
	}

	entries, err := client.History(cmd.Context(), sessionID)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	return transcript.Render(cmd.OutOrStdout(), entries, format)
}
