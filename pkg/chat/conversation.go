// Package chat is the submission state machine behind the chat REPL: it owns
// the session id and visible history, admits one send at a time, and rebuilds
// each streamed answer fragment by fragment.
package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/ragchat/pkg/backend"
	"github.com/papercomputeco/ragchat/pkg/eventstream"
	"github.com/papercomputeco/ragchat/pkg/eventstream/nop"
	"github.com/papercomputeco/ragchat/pkg/logger"
	"github.com/papercomputeco/ragchat/pkg/sse"
)

// Conversation is safe for concurrent use. At most one Send is outstanding.
type Conversation struct {
	streamer    Streamer
	observer    Observer
	logger      *slog.Logger
	fallback    string
	idleTimeout time.Duration
	publisher   eventstream.Publisher
	now         func() time.Time

	mu       sync.Mutex
	session  string
	state    State
	messages []Message
	closed   bool

	// generation is bumped whenever the in-flight send is superseded. A
	// send only touches shared state while its generation is current.
	generation uint64
	cancel     context.CancelCauseFunc
}

// New creates an idle Conversation with no session.
func New(streamer Streamer, opts ...Option) *Conversation {
	c := &Conversation{
		streamer: streamer,
		logger:   logger.Nop(),
		fallback: DefaultFallbackMessage,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.publisher == nil {
		c.publisher = nop.NewPublisher(c.logger)
	}

	return c
}

// SetSession starts a new conversation under id. Any in-flight send is
// cancelled and makes no further changes; the visible history is cleared.
func (c *Conversation) SetSession(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.supersedeLocked(ErrSessionChanged)
	c.session = id
	c.messages = nil
	c.setStateLocked(StateIdle)
}

// Session returns the current session id, or "" when none is set.
func (c *Conversation) Session() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// State returns the current submission state.
func (c *Conversation) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Messages returns a copy of the visible history, oldest first.
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// LoadHistory replaces the visible history with entries from the backend.
// Like SetSession, it supersedes any in-flight send.
func (c *Conversation) LoadHistory(entries []backend.HistoryEntry) {
	msgs := make([]Message, 0, len(entries))
	for _, e := range entries {
		msgs = append(msgs, Message{
			ID:        e.ID,
			Text:      e.Message,
			Response:  e.Response,
			Timestamp: e.Timestamp,
			Completed: true,
		})
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.supersedeLocked(ErrSessionChanged)
	c.messages = msgs
	c.setStateLocked(StateIdle)
}

// CanSend reports whether Send would accept text right now.
func (c *Conversation) CanSend(text string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed && c.state == StateIdle && c.session != "" && strings.TrimSpace(text) != ""
}

// Send submits text and blocks until its answer has finished streaming.
//
// The message is appended to the history immediately and its Response grows
// as fragments arrive. If the transport fails before any fragment arrived, the
// Response becomes the fallback notice and the message is marked Failed;
// partial text is otherwise kept as the final answer. The transport error is
// returned after the conversation is back to idle.
func (c *Conversation) Send(ctx context.Context, text string) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrEmptyMessage
	}

	c.mu.Lock()
	switch {
	case c.closed:
		c.mu.Unlock()
		return Message{}, ErrClosed
	case c.session == "":
		c.mu.Unlock()
		return Message{}, ErrNoSession
	case c.state != StateIdle:
		c.mu.Unlock()
		return Message{}, ErrBusy
	}

	started := c.now()
	msg := Message{
		ID:        uuid.NewString(),
		Text:      text,
		Timestamp: started,
	}
	c.messages = append(c.messages, msg)
	idx := len(c.messages) - 1
	gen := c.generation
	sessionID := c.session

	sctx, cancel := context.WithCancelCause(ctx)
	c.cancel = cancel
	c.setStateLocked(StateSending)
	c.mu.Unlock()
	defer cancel(nil)

	var answer strings.Builder
	result, err := c.stream(sctx, sessionID, text, func(fragment string) {
		answer.WriteString(fragment)

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.generation != gen {
			return
		}
		c.messages[idx].Response += fragment
		if c.observer.OnFragment != nil {
			c.observer.OnFragment(msg.ID, fragment)
		}
	})

	c.mu.Lock()
	if c.generation != gen {
		c.mu.Unlock()

		msg.Response = answer.String()
		msg.Completed = result.Completed
		return msg, context.Cause(sctx)
	}

	final := &c.messages[idx]
	final.Completed = result.Completed
	if err != nil {
		if result.Fragments == 0 {
			final.Response = c.fallback
			final.Failed = true
		}
		c.logger.Warn("stream failed",
			"session_id", sessionID,
			"message_id", msg.ID,
			"fragments", result.Fragments,
			"error", err,
		)
		c.setStateLocked(StateError)
	}

	c.cancel = nil
	c.setStateLocked(StateIdle)
	done := *final
	if c.observer.OnComplete != nil {
		c.observer.OnComplete(done)
	}
	c.mu.Unlock()

	c.publish(ctx, sessionID, done, result, err, started)

	return done, err
}

// Close cancels any in-flight send. Nothing changes after Close.
func (c *Conversation) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.supersedeLocked(ErrClosed)
	c.closed = true
}

// stream opens the answer and runs it through the event framer.
func (c *Conversation) stream(ctx context.Context, sessionID, text string, onFragment func(string)) (sse.Result, error) {
	body, err := c.streamer.StreamMessage(ctx, sessionID, text)
	if err != nil {
		return sse.Result{}, err
	}
	defer body.Close()

	reader := sse.NewReader(body,
		sse.WithIdleTimeout(c.idleTimeout),
		sse.WithLogger(c.logger),
	)
	return reader.Stream(ctx, onFragment)
}

func (c *Conversation) supersedeLocked(cause error) {
	c.generation++
	if c.cancel != nil {
		c.cancel(cause)
		c.cancel = nil
	}
}

func (c *Conversation) setStateLocked(s State) {
	if c.state == s {
		return
	}
	c.state = s
	if c.observer.OnState != nil {
		c.observer.OnState(s)
	}
}

func (c *Conversation) publish(ctx context.Context, sessionID string, msg Message, result sse.Result, sendErr error, started time.Time) {
	event := eventstream.NewTurnCompletedEvent(c.now())
	event.SessionID = sessionID
	event.MessageID = msg.ID
	event.Question = msg.Text
	event.Answer = msg.Response
	event.Fragments = result.Fragments
	event.Completed = result.Completed
	event.Failed = msg.Failed
	event.StartedAt = started.UTC()
	event.DurationMs = c.now().Sub(started).Milliseconds()
	if sendErr != nil {
		event.Error = sendErr.Error()
	}

	// A cancelled send still reports its turn.
	if err := c.publisher.PublishTurn(context.WithoutCancel(ctx), event); err != nil {
		c.logger.Warn("publishing turn event failed",
			"session_id", sessionID,
			"message_id", msg.ID,
			"error", err,
		)
	}
}

// IsTransportError reports whether err came from the stream rather than from
// Send's own preconditions.
func IsTransportError(err error) bool {
	if err == nil {
		return false
	}
	for _, pre := range []error{ErrEmptyMessage, ErrNoSession, ErrBusy, ErrClosed, ErrSessionChanged} {
		if errors.Is(err, pre) {
			return false
		}
	}
	return true
}
