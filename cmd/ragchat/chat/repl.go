package chatcmder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/ragchat/cmd/ragchat/cmdutil"
	"github.com/papercomputeco/ragchat/pkg/backend"
	"github.com/papercomputeco/ragchat/pkg/chat"
	"github.com/papercomputeco/ragchat/pkg/cliui"
	"github.com/papercomputeco/ragchat/pkg/upload"
)

const replHelp = `Commands:
  /exit              Leave the chat
  /new               Start a new session
  /session           Show the session, or retry creating one
  /upload <file>     Upload a PDF into the knowledge base
  /history           Reload and print the session history
  /help              Show this list`

// repl is one interactive chat. It reads lines from in and writes answers to
// out as they stream.
type repl struct {
	cmd      *cobra.Command
	in       io.Reader
	out      io.Writer
	client   *backend.Client
	conv     *chat.Conversation
	logger   *slog.Logger
	markdown bool
}

func (r *repl) loop(ctx context.Context) error {
	scanner := bufio.NewScanner(r.in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	r.printf("%s\n\n", dim("Type a question, /help for commands."))

	for {
		r.printf("%s", userPrompt())
		if !scanner.Scan() {
			r.printf("\n")
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "/"):
			if r.command(ctx, line) {
				return nil
			}
		default:
			r.send(ctx, line)
		}
	}
}

// command runs a slash command and reports whether the chat should end.
func (r *repl) command(ctx context.Context, line string) bool {
	name, arg := trimCommand(line)

	switch name {
	case "/exit", "/quit":
		return true

	case "/new":
		id, err := cmdutil.NewSession(ctx, r.cmd, r.client, r.logger)
		if err != nil {
			r.logger.Warn("session creation failed", "api_target", r.client.BaseURL(), "error", err)
			r.printf("%s\n", errorText("Could not start a new session."))
			return false
		}
		r.conv.SetSession(id)
		r.printf("%s %s\n", dim("new session"), hash(id))

	case "/session":
		if id := r.conv.Session(); id != "" {
			r.printf("%s %s\n", dim("session"), hash(id))
			return false
		}
		r.startSession(ctx, false)

	case "/upload":
		r.upload(ctx, arg)

	case "/history":
		r.loadHistory(ctx, true)

	case "/help":
		r.printf("%s\n", replHelp)

	default:
		r.printf("%s\n", errorText(fmt.Sprintf("Unknown command %s. Try /help.", name)))
	}

	return false
}

// send submits a question and streams its answer. Ctrl-C stops the answer.
func (r *repl) send(ctx context.Context, text string) {
	sendCtx, stop := interruptible(ctx)
	defer stop()

	if r.conv.Session() == "" {
		r.printf("%s\n", dim("No session. Use /session to retry."))
		return
	}

	r.printf("%s", assistantPrompt())
	msg, err := r.conv.Send(sendCtx, text)

	switch {
	case errors.Is(err, chat.ErrNoSession):
		r.printf("%s\n", dim("No session. Use /session to retry."))
		return
	case errors.Is(err, chat.ErrBusy), errors.Is(err, chat.ErrEmptyMessage), errors.Is(err, chat.ErrClosed):
		r.printf("\n")
		return
	}

	switch {
	case msg.Failed:
		r.printf("%s", errorText(msg.Response))
	case r.markdown:
		if err := cliui.RenderMarkdownTo(r.out, msg.Response); err != nil {
			r.logger.Debug("markdown render failed", "error", err)
		}
	}

	if err != nil && sendCtx.Err() != nil {
		r.printf(" %s", dim("(stopped)"))
	}
	r.printf("\n\n")
}

// onFragment prints streamed text as it arrives. In markdown mode the answer
// is rendered once complete instead.
func (r *repl) onFragment(_ string, fragment string) {
	if r.markdown {
		return
	}
	_, _ = io.WriteString(r.out, fragment)
}

func (r *repl) upload(ctx context.Context, path string) {
	if path == "" {
		r.printf("%s\n", errorText(upload.UserMessage(upload.ErrNoFile)))
		return
	}

	var res *backend.UploadResult
	err := cliui.Step(r.out, "Uploading "+filepath.Base(path), func() error {
		var err error
		res, err = r.client.UploadPDF(ctx, path)
		return err
	})
	if err != nil {
		r.logger.Debug("upload failed", "path", path, "error", err)
		r.printf("%s\n", errorText(cmdutil.UploadErrorMessage(err)))
		return
	}

	r.printf("%s\n", res.Message)
}

func (r *repl) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}

func trimCommand(line string) (string, string) {
	name, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	return strings.ToLower(name), strings.TrimSpace(arg)
}

func userPrompt() string      { return cliui.UserPrompt }
func assistantPrompt() string { return cliui.AssistantPrompt }
func dim(s string) string     { return cliui.DimStyle.Render(s) }
func hash(s string) string    { return cliui.HashStyle.Render(s) }
func errorText(s string) string {
	return cliui.ErrorStyle.Render(s)
}
