// Package inmemory is a map-backed storage.Driver for tests and ephemeral
// stub runs.
package inmemory

import (
	"context"
	"sync"

	"github.com/papercomputeco/ragchat/pkg/storage"
)

// Driver implements storage.Driver in memory.
type Driver struct {
	mu sync.RWMutex

	// turns maps a session id to its turns in insertion order
	turns map[string][]*storage.Turn

	documents []*storage.Document
	nextTurn  int64
	nextDoc   int64
}

// NewDriver creates an empty in-memory driver.
func NewDriver() *Driver {
	return &Driver{
		turns: make(map[string][]*storage.Turn),
	}
}

// AddTurn stores a copy of turn.
func (d *Driver) AddTurn(_ context.Context, turn *storage.Turn) error {
	if turn == nil {
		return storage.ErrNilRecord
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextTurn++
	turn.ID = d.nextTurn

	stored := *turn
	d.turns[turn.SessionID] = append(d.turns[turn.SessionID], &stored)
	return nil
}

// Turns returns copies of the turns stored for sessionID.
func (d *Driver) Turns(_ context.Context, sessionID string) ([]*storage.Turn, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	stored := d.turns[sessionID]
	out := make([]*storage.Turn, 0, len(stored))
	for _, t := range stored {
		c := *t
		out = append(out, &c)
	}
	return out, nil
}

// AddDocument stores a copy of doc.
func (d *Driver) AddDocument(_ context.Context, doc *storage.Document) error {
	if doc == nil {
		return storage.ErrNilRecord
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextDoc++
	doc.ID = d.nextDoc

	stored := *doc
	d.documents = append(d.documents, &stored)
	return nil
}

// Documents returns copies of every document record.
func (d *Driver) Documents(_ context.Context) ([]*storage.Document, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]*storage.Document, 0, len(d.documents))
	for _, doc := range d.documents {
		c := *doc
		out = append(out, &c)
	}
	return out, nil
}

// Close is a no-op.
func (d *Driver) Close() error {
	return nil
}
