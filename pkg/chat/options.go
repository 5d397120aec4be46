package chat

import (
	"log/slog"
	"time"

	"github.com/papercomputeco/ragchat/pkg/eventstream"
)

// DefaultFallbackMessage replaces the answer when a send fails before any
// fragment arrived.
const DefaultFallbackMessage = "Sorry, I encountered an error. Please try again."

// Option configures a Conversation.
type Option func(*Conversation)

// WithObserver sets the progress observer.
func WithObserver(o Observer) Option {
	return func(c *Conversation) {
		c.observer = o
	}
}

// WithLogger sets the logger. Stream failures are logged at warn level.
func WithLogger(l *slog.Logger) Option {
	return func(c *Conversation) {
		c.logger = l
	}
}

// WithFallbackMessage overrides DefaultFallbackMessage.
func WithFallbackMessage(msg string) Option {
	return func(c *Conversation) {
		if msg != "" {
			c.fallback = msg
		}
	}
}

// WithIdleTimeout aborts a stream that delivers no bytes for d. Zero
// disables it.
func WithIdleTimeout(d time.Duration) Option {
	return func(c *Conversation) {
		c.idleTimeout = d
	}
}

// WithPublisher publishes a TurnCompletedEvent after every send.
func WithPublisher(p eventstream.Publisher) Option {
	return func(c *Conversation) {
		c.publisher = p
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Conversation) {
		c.now = now
	}
}
