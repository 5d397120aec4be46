package logger

import (
	"io"
	"log/slog"
)

// Option configures New.
type Option func(*settings)

// WithDebug lowers the level to Debug when debug is set.
func WithDebug(debug bool) Option {
	return func(s *settings) {
		if debug {
			s.level = slog.LevelDebug
		}
	}
}

// WithLevel sets the minimum level.
func WithLevel(level slog.Level) Option {
	return func(s *settings) {
		s.level = level
	}
}

// WithFormat picks the handler.
func WithFormat(f Format) Option {
	return func(s *settings) {
		s.format = f
	}
}

// WithOutput sets where records are written. Several writers receive the
// same bytes.
func WithOutput(w ...io.Writer) Option {
	return func(s *settings) {
		switch len(w) {
		case 0:
		case 1:
			s.out = w[0]
		default:
			s.out = io.MultiWriter(w...)
		}
	}
}

// WithSource adds the caller's file:line to each record.
func WithSource(source bool) Option {
	return func(s *settings) {
		s.source = source
	}
}

// WithComponent tags every record with component=name.
func WithComponent(name string) Option {
	return func(s *settings) {
		s.component = name
	}
}
