// Package eventstream defines the events emitted when a chat turn finishes and
// the Publisher interface that ships them to an event stream backend.
package eventstream

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeTurnCompleted is emitted after a send returns to idle, whether
	// the answer completed, was cut short or failed.
	EventTypeTurnCompleted = "ragchat.turn.completed"
)

// TurnCompletedEvent is a transport-neutral event payload for one finished turn.
type TurnCompletedEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`

	SessionID string `json:"session_id"`
	MessageID string `json:"message_id"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`

	// Fragments is the number of stream fragments delivered.
	Fragments int `json:"fragments"`

	// Completed is set when the stream signalled completion.
	Completed bool `json:"completed"`

	// Failed is set when the fallback notice replaced the answer.
	Failed bool   `json:"failed"`
	Error  string `json:"error,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	DurationMs int64     `json:"duration_ms"`
}

// NewTurnCompletedEvent stamps a fresh event id, type and schema version.
func NewTurnCompletedEvent(now time.Time) *TurnCompletedEvent {
	return &TurnCompletedEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeTurnCompleted,
		EventID:       uuid.NewString(),
		EmittedAt:     now.UTC(),
	}
}
