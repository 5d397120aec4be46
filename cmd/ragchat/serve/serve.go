// Package servecmder provides the serve command that runs the stand-in
// backend.
package servecmder

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/ragchat/cmd/ragchat/cmdutil"
	"github.com/papercomputeco/ragchat/pkg/cliui"
	"github.com/papercomputeco/ragchat/pkg/config"
	"github.com/papercomputeco/ragchat/pkg/logger"
	"github.com/papercomputeco/ragchat/pkg/storage"
	"github.com/papercomputeco/ragchat/pkg/storage/inmemory"
	"github.com/papercomputeco/ragchat/pkg/storage/sqlite"
	"github.com/papercomputeco/ragchat/stub"
)

const serveLongDesc string = `Run the stand-in chat backend.

The stand-in serves the same HTTP API as the real backend under /api,
answering every question with a deterministic echo that names the
uploaded PDFs. It is meant for local development and demos.

Examples:
  ragchat serve
  ragchat serve --listen :9090 --token-delay 50ms
  ragchat serve --sqlite ./stub.db --log-file ./stub.log`

const serveShortDesc string = "Run the stand-in chat backend"

var serveFlags = []string{
	config.FlagListen,
	config.FlagSQLite,
	config.FlagTokenDelay,
}

type serveCommander struct {
	listen     string
	sqlitePath string
	tokenDelay string
	logFile    string

	logger *slog.Logger
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagTokenDelay, &cmder.tokenDelay)
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Also write JSON logs to this file")

	return cmd
}

func (c *serveCommander) run(cmd *cobra.Command) error {
	v, err := cmdutil.LoadViper(cmd, serveFlags...)
	if err != nil {
		return err
	}

	c.logger = cmdutil.NewLogger(cmd)
	if c.logFile != "" {
		f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()

		debug, _ := cmd.Flags().GetBool(cmdutil.FlagDebug)
		c.logger = logger.Tee(c.logger, logger.New(
			logger.WithDebug(debug),
			logger.WithFormat(logger.FormatJSON),
			logger.WithOutput(f),
			logger.WithComponent("stub"),
		))
	}

	delay, err := cmdutil.Duration(v, "server.token_delay")
	if err != nil {
		return err
	}

	store, err := c.createStore(v.GetString("server.sqlite_path"))
	if err != nil {
		return err
	}
	defer store.Close()

	server := stub.NewServer(stub.Config{
		ListenAddr: v.GetString("server.listen"),
		TokenDelay: delay,
	}, store, c.logger)

	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s%s\n",
		cliui.DimStyle.Render("stand-in backend on"),
		cliui.ValueStyle.Render(v.GetString("server.listen")),
		cliui.ValueStyle.Render(stub.APIPrefix),
	)

	// Channel to capture errors from the server goroutine
	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("stub server error: %w", err)
		}
	}()

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", "signal", sig.String())
		return server.Shutdown()
	}
}

func (c *serveCommander) createStore(sqlitePath string) (storage.Driver, error) {
	if sqlitePath != "" {
		store, err := sqlite.NewDriver(sqlitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite storage: %w", err)
		}
		c.logger.Info("using SQLite storage", "path", sqlitePath)
		return store, nil
	}

	c.logger.Info("using in-memory storage")
	return inmemory.NewDriver(), nil
}
