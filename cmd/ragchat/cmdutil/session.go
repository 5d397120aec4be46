package cmdutil

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/ragchat/pkg/backend"
	"github.com/papercomputeco/ragchat/pkg/dotdir"
)

// SavedSession returns the saved session id when it was created against the
// client's backend, or "".
func SavedSession(cmd *cobra.Command, client *backend.Client) (string, error) {
	state, err := dotdir.NewManager().LoadSession(ConfigDir(cmd))
	if err != nil {
		return "", err
	}
	if state == nil || state.APITarget != client.BaseURL() {
		return "", nil
	}
	return state.SessionID, nil
}

// NewSession creates a backend session and saves it as the one to resume.
// A failure to save is logged; the session is still usable.
func NewSession(ctx context.Context, cmd *cobra.Command, client *backend.Client, log *slog.Logger) (string, error) {
	id, err := client.CreateSession(ctx)
	if err != nil {
		return "", err
	}

	state := &dotdir.SessionState{
		SessionID: id,
		APITarget: client.BaseURL(),
		CreatedAt: time.Now(),
	}
	if err := dotdir.NewManager().SaveSession(state, ConfigDir(cmd)); err != nil {
		log.Warn("could not save session", "session_id", id, "error", err)
	}

	return id, nil
}

// ResolveSession reuses the saved session when resume is set and one exists,
// and creates a new one otherwise.
func ResolveSession(ctx context.Context, cmd *cobra.Command, client *backend.Client, log *slog.Logger, resume bool) (string, error) {
	if resume {
		id, err := SavedSession(cmd, client)
		if err != nil {
			log.Warn("could not read saved session", "error", err)
		}
		if id != "" {
			log.Debug("resuming session", "session_id", id)
			return id, nil
		}
	}

	return NewSession(ctx, cmd, client, log)
}
