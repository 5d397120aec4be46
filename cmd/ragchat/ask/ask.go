// Package askcmder provides the ask command for one-shot questions.
package askcmder

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/ragchat/cmd/ragchat/cmdutil"
	"github.com/papercomputeco/ragchat/pkg/chat"
	"github.com/papercomputeco/ragchat/pkg/cliui"
	"github.com/papercomputeco/ragchat/pkg/config"
)

const askLongDesc string = `Ask a single question and print the answer.

The answer streams to stdout as it arrives. With --markdown it is
rendered once complete. A new session is used unless --resume is given.

Examples:
  ragchat ask "What does the onboarding guide say about VPN access?"
  ragchat ask --resume --markdown "Summarize that as a list"`

const askShortDesc string = "Ask a single question"

var askFlags = []string{
	config.FlagAPITarget,
	config.FlagTimeout,
	config.FlagIdleTimeout,
	config.FlagFallback,
	config.FlagMarkdown,
	config.FlagEventProvider,
	config.FlagEventBrokers,
	config.FlagEventTopic,
}

type askCommander struct {
	apiTarget      string
	timeout        string
	idleTimeout    string
	fallback       string
	markdown       bool
	eventsProvider string
	eventsBrokers  string
	eventsTopic    string
	resume         bool
}

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd, strings.Join(args, " "))
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagAPITarget, &cmder.apiTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagTimeout, &cmder.timeout)
	config.AddStringFlag(cmd, config.Flags, config.FlagIdleTimeout, &cmder.idleTimeout)
	config.AddStringFlag(cmd, config.Flags, config.FlagFallback, &cmder.fallback)
	config.AddBoolFlag(cmd, config.Flags, config.FlagMarkdown, &cmder.markdown)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventProvider, &cmder.eventsProvider)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventBrokers, &cmder.eventsBrokers)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventTopic, &cmder.eventsTopic)
	cmd.Flags().BoolVarP(&cmder.resume, "resume", "r", false, "Ask within the saved session")

	return cmd
}

func (c *askCommander) run(cmd *cobra.Command, question string) error {
	if strings.TrimSpace(question) == "" {
		return chat.ErrEmptyMessage
	}

	v, err := cmdutil.LoadViper(cmd, askFlags...)
	if err != nil {
		return err
	}

	log := cmdutil.NewLogger(cmd)

	client, err := cmdutil.NewClient(v, log)
	if err != nil {
		return err
	}

	idle, err := cmdutil.Duration(v, "chat.idle_timeout")
	if err != nil {
		return err
	}

	publisher, err := cmdutil.NewPublisher(v, log)
	if err != nil {
		return err
	}
	defer publisher.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	sessionID, err := cmdutil.ResolveSession(ctx, cmd, client, log, c.resume)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	markdown := v.GetBool("chat.markdown")

	conv := chat.New(client,
		chat.WithLogger(log),
		chat.WithFallbackMessage(v.GetString("chat.fallback_message")),
		chat.WithIdleTimeout(idle),
		chat.WithPublisher(publisher),
		chat.WithObserver(chat.Observer{
			OnFragment: func(_ string, fragment string) {
				if !markdown {
					_, _ = io.WriteString(out, fragment)
				}
			},
		}),
	)
	defer conv.Close()
	conv.SetSession(sessionID)

	msg, sendErr := conv.Send(ctx, question)
	if errors.Is(sendErr, chat.ErrEmptyMessage) {
		return sendErr
	}

	switch {
	case msg.Failed:
		fmt.Fprint(cmd.ErrOrStderr(), cliui.ErrorStyle.Render(msg.Response))
	case markdown:
		if err := cliui.RenderMarkdownTo(out, msg.Response); err != nil {
			return err
		}
	}
	fmt.Fprintln(out)

	if sendErr != nil {
		return fmt.Errorf("streaming answer: %w", sendErr)
	}
	return nil
}
