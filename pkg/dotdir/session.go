package dotdir

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"
)

const (
	sessionFile = "session.json"
)

// SessionState is the chat session persisted between CLI runs.
type SessionState struct {
	// SessionID is the backend-issued conversation id.
	SessionID string `json:"session_id"`

	// APITarget is the backend base URL the session was created against.
	// A session is only resumed against the same backend.
	APITarget string `json:"api_target"`

	CreatedAt time.Time `json:"created_at"`
}

// LoadSession loads .ragchat/session.json.
// Returns nil, nil if no session has been saved.
func (m *Manager) LoadSession(overrideDir string) (*SessionState, error) {
	path, err := m.File(overrideDir, sessionFile)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading session state: %w", err)
	}

	state := &SessionState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("parsing session state: %w", err)
	}

	return state, nil
}

// SaveSession persists the session state to .ragchat/session.json.
func (m *Manager) SaveSession(state *SessionState, overrideDir string) error {
	if state == nil {
		return errors.New("cannot save nil session state")
	}
	if state.SessionID == "" {
		return errors.New("cannot save session state without a session id")
	}

	path, err := m.File(overrideDir, sessionFile)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling session state: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing session state: %w", err)
	}

	return nil
}

// ClearSession removes the session state file so the next chat starts a new
// conversation. Returns nil if there is nothing to clear.
func (m *Manager) ClearSession(overrideDir string) error {
	path, err := m.File(overrideDir, sessionFile)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("removing session state: %w", err)
	}

	return nil
}
