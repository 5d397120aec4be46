package chat

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	ErrEmptyMessage   = errors.New("message is empty")
	ErrNoSession      = errors.New("no chat session")
	ErrBusy           = errors.New("a message is already being sent")
	ErrClosed         = errors.New("conversation closed")
	ErrSessionChanged = errors.New("session changed while sending")
)

// State is the submission state of a Conversation.
type State int

const (
	// StateIdle accepts a new send.
	StateIdle State = iota

	// StateSending has exactly one outstanding send.
	StateSending

	// StateError is reported when a send fails. It always returns to
	// StateIdle before Send returns.
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Message is one user question and the answer received for it.
type Message struct {
	// ID is a uuid for messages sent in this process and the backend id for
	// loaded history.
	ID string

	Text     string
	Response string

	Timestamp time.Time

	// Failed is set when the fallback notice replaced an answer that never
	// started arriving.
	Failed bool

	// Completed is set when the stream signalled completion. Loaded history
	// is always complete.
	Completed bool
}

// Streamer opens a streamed answer for a message. *backend.Client satisfies it.
type Streamer interface {
	StreamMessage(ctx context.Context, sessionID, message string) (io.ReadCloser, error)
}

// Observer receives progress notifications. Every callback is optional.
//
// Callbacks run on the sending goroutine while the conversation is locked, so
// they are delivered in order and never after the send was superseded. They
// must not call back into the Conversation.
type Observer struct {
	OnFragment func(messageID, fragment string)
	OnState    func(State)
	OnComplete func(Message)
}
