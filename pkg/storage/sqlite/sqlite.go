// Package sqlite provides a SQLite-backed storage driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/papercomputeco/ragchat/pkg/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS chat_turns (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT    NOT NULL,
	message    TEXT    NOT NULL,
	response   TEXT    NOT NULL,
	created_at TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_chat_turns_session ON chat_turns (session_id, id);

CREATE TABLE IF NOT EXISTS documents (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	name         TEXT    NOT NULL,
	size         INTEGER NOT NULL,
	content_type TEXT    NOT NULL,
	uploaded_at  TEXT    NOT NULL
);`

// Timestamps are stored as UTC text so ordering and round trips do not
// depend on the driver's time handling.
const timeLayout = time.RFC3339Nano

// Driver implements storage.Driver using SQLite.
type Driver struct {
	db *sql.DB
}

// NewDriver opens (and creates if needed) the database at dbPath.
// The dbPath can be a file path or ":memory:" for an in-memory database.
func NewDriver(dbPath string) (*Driver, error) {
	// Open the database using the github.com/mattn/go-sqlite3 driver (registered as "sqlite3")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Driver{db: db}, nil
}

// AddTurn stores a turn and sets its ID.
func (d *Driver) AddTurn(ctx context.Context, turn *storage.Turn) error {
	if turn == nil {
		return storage.ErrNilRecord
	}

	res, err := d.db.ExecContext(ctx,
		`INSERT INTO chat_turns (session_id, message, response, created_at) VALUES (?, ?, ?, ?)`,
		turn.SessionID, turn.Message, turn.Response, turn.Timestamp.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert turn: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read turn id: %w", err)
	}
	turn.ID = id
	return nil
}

// Turns returns the turns of a session ordered by id.
func (d *Driver) Turns(ctx context.Context, sessionID string) ([]*storage.Turn, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, session_id, message, response, created_at FROM chat_turns WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	turns := []*storage.Turn{}
	for rows.Next() {
		var (
			t  storage.Turn
			ts string
		)
		if err := rows.Scan(&t.ID, &t.SessionID, &t.Message, &t.Response, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		if t.Timestamp, err = time.Parse(timeLayout, ts); err != nil {
			return nil, fmt.Errorf("failed to parse turn timestamp %q: %w", ts, err)
		}
		turns = append(turns, &t)
	}

	return turns, rows.Err()
}

// AddDocument stores a document record and sets its ID.
func (d *Driver) AddDocument(ctx context.Context, doc *storage.Document) error {
	if doc == nil {
		return storage.ErrNilRecord
	}

	res, err := d.db.ExecContext(ctx,
		`INSERT INTO documents (name, size, content_type, uploaded_at) VALUES (?, ?, ?, ?)`,
		doc.Name, doc.Size, doc.ContentType, doc.UploadedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read document id: %w", err)
	}
	doc.ID = id
	return nil
}

// Documents returns every document record ordered by id.
func (d *Driver) Documents(ctx context.Context) ([]*storage.Document, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, name, size, content_type, uploaded_at FROM documents ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	docs := []*storage.Document{}
	for rows.Next() {
		var (
			doc storage.Document
			ts  string
		)
		if err := rows.Scan(&doc.ID, &doc.Name, &doc.Size, &doc.ContentType, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		if doc.UploadedAt, err = time.Parse(timeLayout, ts); err != nil {
			return nil, fmt.Errorf("failed to parse document timestamp %q: %w", ts, err)
		}
		docs = append(docs, &doc)
	}

	return docs, rows.Err()
}

// Close closes the database.
func (d *Driver) Close() error {
	return d.db.Close()
}
