// Package dotdir manages the .ragchat/ and ~/.ragchat directories.
//
// The directory holds config.toml and session.json, the chat session the CLI
// resumes between runs.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

// DirName is the name of the ragchat directory.
const DirName = ".ragchat"

// Manager resolves the ragchat directory. The zero value is not usable; use
// NewManager.
type Manager struct {
	workDir func() (string, error)
	homeDir func() (string, error)
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithWorkDir fixes the directory searched for a local .ragchat/ instead of
// the process working directory.
func WithWorkDir(dir string) ManagerOption {
	return func(m *Manager) {
		m.workDir = func() (string, error) { return dir, nil }
	}
}

// WithHomeDir fixes the fallback home directory.
func WithHomeDir(dir string) ManagerOption {
	return func(m *Manager) {
		m.homeDir = func() (string, error) { return dir, nil }
	}
}

func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		workDir: os.Getwd,
		homeDir: os.UserHomeDir,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Target returns the absolute path of the ragchat directory, creating it if
// needed. The first match wins:
//  1. overrideDir, when not empty
//  2. ./.ragchat/, when it already exists
//  3. ~/.ragchat/
func (m *Manager) Target(overrideDir string) (string, error) {
	dir, err := m.locate(overrideDir)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating ragchat directory %s: %w", dir, err)
	}
	return dir, nil
}

// File returns the path of name inside the resolved ragchat directory.
func (m *Manager) File(overrideDir, name string) (string, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

func (m *Manager) locate(overrideDir string) (string, error) {
	if overrideDir != "" {
		return filepath.Abs(overrideDir)
	}

	if cwd, err := m.workDir(); err == nil {
		local := filepath.Join(cwd, DirName)
		if info, err := os.Stat(local); err == nil && info.IsDir() {
			return filepath.Abs(local)
		}
	}

	home, err := m.homeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Abs(filepath.Join(home, DirName))
}
