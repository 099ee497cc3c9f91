// Package workspace manages the scratch directory builds clone into.
package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Manager owns one workspace directory, ephemeral or persistent.
type Manager struct {
	baseDir    string
	dir        string
	persistent bool
}

// NewManager creates a manager with timestamped ephemeral directories under
// baseDir (os.TempDir when empty).
func NewManager(baseDir string) *Manager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &Manager{baseDir: baseDir}
}

// NewPersistentManager creates a manager over a fixed directory that
// survives Cleanup, for incremental clones.
func NewPersistentManager(baseDir, name string) *Manager {
	if name == "" {
		name = "working"
	}
	return &Manager{
		baseDir:    baseDir,
		dir:        filepath.Join(baseDir, name),
		persistent: true,
	}
}

// Create makes the workspace directory.
func (m *Manager) Create() error {
	if m.persistent {
		if err := os.MkdirAll(m.dir, 0o750); err != nil {
			return fmt.Errorf("create persistent workspace: %w", err)
		}
		slog.Debug("Using persistent workspace", "path", m.dir)
		return nil
	}

	dir := filepath.Join(m.baseDir, fmt.Sprintf("sitectl-%s", time.Now().Format("20060102-150405")))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}
	m.dir = dir
	slog.Debug("Created workspace", "path", dir)
	return nil
}

// Path returns the workspace directory.
func (m *Manager) Path() string { return m.dir }

// Cleanup removes an ephemeral workspace. Persistent workspaces are kept.
func (m *Manager) Cleanup() error {
	if m.persistent || m.dir == "" {
		return nil
	}
	if err := os.RemoveAll(m.dir); err != nil {
		return fmt.Errorf("remove workspace: %w", err)
	}
	m.dir = ""
	return nil
}
