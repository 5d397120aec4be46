// Package logger builds the *slog.Logger instances used across ragchat.
// Components take a *slog.Logger; this package only picks handlers, levels
// and where output goes.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	charmlog "github.com/charmbracelet/log"
)

// Format selects the handler New builds.
type Format string

const (
	// FormatText is slog's key=value handler.
	FormatText Format = "text"

	// FormatPretty is the colorized charmbracelet/log handler for terminals.
	FormatPretty Format = "pretty"

	// FormatJSON is slog's JSON handler, one object per line.
	FormatJSON Format = "json"
)

// ParseFormat parses a format name, case-insensitively. An empty name is
// FormatText.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatPretty, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown log format %q (want text, pretty or json)", s)
	}
}

// prettyPrefix labels every line of pretty output.
const prettyPrefix = "ragchat"

// New creates a *slog.Logger. Without options it writes text at Info level
// to os.Stderr, keeping stdout free for answers.
func New(opts ...Option) *slog.Logger {
	s := settings{
		level:  slog.LevelInfo,
		format: FormatText,
		out:    os.Stderr,
	}
	for _, opt := range opts {
		opt(&s)
	}

	handlerOpts := &slog.HandlerOptions{Level: s.level, AddSource: s.source}

	var handler slog.Handler
	switch s.format {
	case FormatJSON:
		handler = slog.NewJSONHandler(s.out, handlerOpts)
	case FormatPretty:
		handler = charmlog.NewWithOptions(s.out, charmlog.Options{
			Level:           charmlog.Level(s.level),
			Prefix:          prettyPrefix,
			ReportTimestamp: true,
			TimeFormat:      time.TimeOnly,
			ReportCaller:    s.source,
		})
	default:
		handler = slog.NewTextHandler(s.out, handlerOpts)
	}

	l := slog.New(handler)
	if s.component != "" {
		l = l.With("component", s.component)
	}
	return l
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

type settings struct {
	level     slog.Level
	format    Format
	source    bool
	component string
	out       io.Writer
}
