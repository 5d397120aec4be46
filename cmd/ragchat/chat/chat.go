// Package chatcmder provides the interactive chat command.
package chatcmder

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/ragchat/cmd/ragchat/cmdutil"
	"github.com/papercomputeco/ragchat/pkg/backend"
	"github.com/papercomputeco/ragchat/pkg/chat"
	"github.com/papercomputeco/ragchat/pkg/config"
)

const chatLongDesc string = `Start an interactive chat with the backend.

Answers stream to the terminal as they arrive. A new session is created
unless --resume is given and a session for the same backend was saved
by an earlier run.

Commands inside the chat:
  /exit              Leave the chat
  /new               Start a new session
  /session           Show the session, or retry creating one
  /upload <file>     Upload a PDF into the knowledge base
  /history           Reload and print the session history
  /help              Show this list

Press Ctrl-C while an answer is streaming to stop it.

Examples:
  ragchat chat
  ragchat chat --resume
  ragchat chat --api-target http://rag.internal:8080/api`

const chatShortDesc string = "Interactive chat with the backend"

// chatFlags lists the registry flags the chat command binds.
var chatFlags = []string{
	config.FlagAPITarget,
	config.FlagTimeout,
	config.FlagIdleTimeout,
	config.FlagFallback,
	config.FlagMarkdown,
	config.FlagEventProvider,
	config.FlagEventBrokers,
	config.FlagEventTopic,
}

type chatCommander struct {
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

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
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
	cmd.Flags().BoolVarP(&cmder.resume, "resume", "r", false, "Resume the saved session")

	return cmd
}

func (c *chatCommander) run(cmd *cobra.Command) error {
	v, err := cmdutil.LoadViper(cmd, chatFlags...)
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

	r := &repl{
		cmd:      cmd,
		in:       cmd.InOrStdin(),
		out:      cmd.OutOrStdout(),
		client:   client,
		logger:   log,
		markdown: v.GetBool("chat.markdown"),
	}
	r.conv = chat.New(client,
		chat.WithLogger(log),
		chat.WithFallbackMessage(v.GetString("chat.fallback_message")),
		chat.WithIdleTimeout(idle),
		chat.WithPublisher(publisher),
		chat.WithObserver(chat.Observer{OnFragment: r.onFragment}),
	)
	defer r.conv.Close()

	ctx := cmd.Context()
	r.startSession(ctx, c.resume)

	return r.loop(ctx)
}

// interruptible returns a context cancelled by Ctrl-C, so an interrupt stops
// the current answer instead of the whole chat.
func interruptible(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt)
}

// startSession picks the session for the chat. Failures are logged and leave
// the chat without a session; /session retries.
func (r *repl) startSession(ctx context.Context, resume bool) {
	id, err := cmdutil.ResolveSession(ctx, r.cmd, r.client, r.logger, resume)
	if err != nil {
		r.logger.Warn("session creation failed", "api_target", r.client.BaseURL(), "error", err)
		r.printf("%s\n", dim("No session. Use /session to retry."))
		return
	}

	r.conv.SetSession(id)
	r.printf("%s %s\n", dim("session"), hash(id))
	r.loadHistory(ctx, false)
}

// loadHistory fetches the session's history into the conversation. Failures
// are logged and leave the history empty.
func (r *repl) loadHistory(ctx context.Context, printEmpty bool) {
	id := r.conv.Session()
	if id == "" {
		r.printf("%s\n", dim("No session."))
		return
	}

	entries, err := r.client.History(ctx, id)
	if err != nil {
		r.logger.Warn("history load failed", "session_id", id, "error", err)
		entries = nil
	}

	r.conv.LoadHistory(entries)
	if len(entries) == 0 {
		if printEmpty {
			r.printf("%s\n", dim("No messages yet."))
		}
		return
	}

	for _, e := range entries {
		r.printEntry(e)
	}
}

func (r *repl) printEntry(e backend.HistoryEntry) {
	r.printf("%s%s\n", userPrompt(), e.Message)
	r.printf("%s%s\n\n", assistantPrompt(), e.Response)
}
