// Package nop provides the publisher used when turn events are disabled.
package nop

import (
	"context"
	"log/slog"

	"github.com/papercomputeco/ragchat/pkg/eventstream"
	"github.com/papercomputeco/ragchat/pkg/logger"
)

// Publisher drops every event, logging each one at debug level.
type Publisher struct {
	logger *slog.Logger
}

// NewPublisher creates a no-op publisher. log may be nil.
func NewPublisher(log *slog.Logger) *Publisher {
	if log == nil {
		log = logger.Nop()
	}
	return &Publisher{logger: log}
}

// PublishTurn validates input and otherwise does nothing.
func (p *Publisher) PublishTurn(ctx context.Context, event *eventstream.TurnCompletedEvent) error {
	if event == nil {
		return eventstream.ErrNilTurnEvent
	}

	p.logger.DebugContext(ctx, "turn event dropped",
		"event_id", event.EventID,
		"session_id", event.SessionID,
		"message_id", event.MessageID,
	)
	return nil
}

// Close is a no-op.
func (p *Publisher) Close() error {
	return nil
}
