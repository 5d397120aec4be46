package eventstream

import (
	"context"
	"errors"
)

var (
	// ErrNilTurnEvent is returned by publishers handed a nil event.
	ErrNilTurnEvent = errors.New("nil turn event")

	// ErrPublisherClosed is returned by publishes after Close.
	ErrPublisherClosed = errors.New("publisher closed")
)

// Publisher delivers completed chat turns to an event stream. PublishTurn
// must not retain event after it returns.
type Publisher interface {
	PublishTurn(ctx context.Context, event *TurnCompletedEvent) error
	Close() error
}
