// Package uploadcmder provides the upload command for adding PDFs to the
// backend's knowledge base.
package uploadcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/ragchat/cmd/ragchat/cmdutil"
	"github.com/papercomputeco/ragchat/pkg/cliui"
	"github.com/papercomputeco/ragchat/pkg/config"
	"github.com/papercomputeco/ragchat/pkg/upload"
)

const uploadLongDesc string = `Upload PDFs into the backend's knowledge base.

Files are checked locally before anything is sent: they must exist, be
non-empty and be PDFs. Several files upload concurrently.

With --watch, the directory is watched for new or changed PDFs and each
one is uploaded once it has stopped changing. Press Ctrl-C to stop.

Examples:
  ragchat upload handbook.pdf
  ragchat upload docs/*.pdf --workers 4
  ragchat upload --watch ./inbox`

const uploadShortDesc string = "Upload PDFs"

var uploadFlags = []string{
	config.FlagAPITarget,
	config.FlagTimeout,
	config.FlagWorkers,
}

// ErrUploadsFailed is returned when at least one upload failed.
var ErrUploadsFailed = errors.New("some uploads failed")

type uploadCommander struct {
	apiTarget string
	timeout   string
	workers   uint
	watch     string
}

func NewUploadCmd() *cobra.Command {
	cmder := &uploadCommander{}

	cmd := &cobra.Command{
		Use:   "upload [file.pdf...]",
		Short: uploadShortDesc,
		Long:  uploadLongDesc,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch {
			case cmder.watch != "" && len(args) > 0:
				return errors.New("pass files or --watch, not both")
			case cmder.watch == "" && len(args) == 0:
				return errors.New(upload.UserMessage(upload.ErrNoFile))
			}
			return cmder.run(cmd, args)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagAPITarget, &cmder.apiTarget)
	config.AddStringFlag(cmd, config.Flags, config.FlagTimeout, &cmder.timeout)
	config.AddUintFlag(cmd, config.Flags, config.FlagWorkers, &cmder.workers)
	cmd.Flags().StringVar(&cmder.watch, "watch", "", "Watch a directory and upload PDFs as they appear")

	return cmd
}

func (c *uploadCommander) run(cmd *cobra.Command, files []string) error {
	v, err := cmdutil.LoadViper(cmd, uploadFlags...)
	if err != nil {
		return err
	}

	log := cmdutil.NewLogger(cmd)

	client, err := cmdutil.NewClient(v, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rep := &reporter{out: cmd.OutOrStdout()}

	queueSize := uint(len(files))
	pool, err := upload.NewPool(ctx, &upload.PoolConfig{
		Upload: func(ctx context.Context, path string) (string, error) {
			res, err := client.UploadPDF(ctx, path)
			if err != nil {
				return "", err
			}
			return res.Message, nil
		},
		OnResult:   rep.report,
		NumWorkers: v.GetUint("upload.workers"),
		QueueSize:  queueSize,
		Logger:     log,
	})
	if err != nil {
		return err
	}

	if c.watch != "" {
		err = c.watchDir(ctx, pool, log, rep)
	} else {
		for _, f := range files {
			pool.Enqueue(upload.Job{Path: f})
		}
	}

	pool.Close()

	if err != nil {
		return err
	}
	if rep.failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrUploadsFailed, rep.failed, rep.total)
	}
	return nil
}

func (c *uploadCommander) watchDir(ctx context.Context, pool *upload.Pool, log *slog.Logger, rep *reporter) error {
	info, err := os.Stat(c.watch)
	if err != nil {
		return fmt.Errorf("watching %s: %w", c.watch, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watching %s: not a directory", c.watch)
	}

	w, err := upload.NewWatcher(upload.WithWatcherLogger(log))
	if err != nil {
		return err
	}
	defer w.Close()

	events, err := w.Watch(ctx, c.watch)
	if err != nil {
		return err
	}

	abs, _ := filepath.Abs(c.watch)
	log.Info("watching for PDFs", "dir", abs)
	fmt.Fprintf(rep.out, "%s %s\n", cliui.DimStyle.Render("watching"), abs)

	for ev := range events {
		if !pool.Enqueue(upload.Job{Path: ev.Path}) {
			rep.report(upload.Result{Path: ev.Path, Err: errors.New("upload queue full")})
		}
	}

	return nil
}

// reporter prints one line per finished upload. Workers call it concurrently.
type reporter struct {
	mu     sync.Mutex
	out    io.Writer
	total  int
	failed int
}

func (r *reporter) report(res upload.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.total++
	name := filepath.Base(res.Path)
	if res.Err != nil {
		r.failed++
		fmt.Fprintf(r.out, "  %s %s %s\n", cliui.FailMark, name, cliui.ErrorStyle.Render(cmdutil.UploadErrorMessage(res.Err)))
		return
	}

	fmt.Fprintf(r.out, "  %s %s %s %s\n", cliui.SuccessMark, name, res.Message,
		cliui.StepStyle.Render(fmt.Sprintf("(%s)", cliui.FormatDuration(res.Duration))))
}
