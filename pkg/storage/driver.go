// Package storage holds the chat turns and document records of the stub
// backend.
package storage

import (
	"context"
	"time"
)

// Turn is one question and its answer within a session.
type Turn struct {
	// ID is assigned by the driver on insert and increases monotonically.
	ID        int64
	SessionID string
	Message   string
	Response  string
	Timestamp time.Time
}

// Document records an accepted upload. The file contents are not kept.
type Document struct {
	ID          int64
	Name        string
	Size        int64
	ContentType string
	UploadedAt  time.Time
}

// Driver defines the interface for persisting turns and documents.
type Driver interface {
	// AddTurn stores a turn and sets its ID.
	AddTurn(ctx context.Context, turn *Turn) error

	// Turns returns the turns of a session in insertion order. An unknown
	// session has no turns and is not an error.
	Turns(ctx context.Context, sessionID string) ([]*Turn, error)

	// AddDocument stores a document record and sets its ID.
	AddDocument(ctx context.Context, doc *Document) error

	// Documents returns every document record in upload order.
	Documents(ctx context.Context) ([]*Document, error)

	// Close releases any resources held by the driver.
	Close() error
}
