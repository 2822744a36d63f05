// Package cache persists a snapshot of the current user's profile as a local
// JSON blob so the desktop shell can render without a network round trip on
// startup. The snapshot is never authoritative; it is rewritten from the
// store on every login and profile read, and removed on logout.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ProfileSnapshot is the cached view of a user profile.
type ProfileSnapshot struct {
	UserID       uint64    `json:"user_id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Photo        string    `json:"photo"`
	WorkspaceIDs []uint64  `json:"workspace_ids"`
	SavedAt      time.Time `json:"saved_at"`
}

// ProfileCache reads and writes the snapshot file.
type ProfileCache struct {
	path string
}

// NewProfileCache creates a cache backed by the given file path.
func NewProfileCache(path string) *ProfileCache {
	return &ProfileCache{path: path}
}

// Load returns the cached snapshot, or nil when the file is absent or
// unreadable. A corrupt cache is treated the same as a missing one.
func (c *ProfileCache) Load() *ProfileSnapshot {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil
	}

	var snapshot ProfileSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil
	}

	return &snapshot
}

// Save writes the snapshot, replacing any previous one.
func (c *ProfileCache) Save(snapshot ProfileSnapshot) error {
	snapshot.SavedAt = time.Now()

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode profile snapshot: %w", err)
	}

	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	if err := os.WriteFile(c.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write profile snapshot: %w", err)
	}

	return nil
}

// Invalidate removes the snapshot file. Removing an absent file is a no-op.
func (c *ProfileCache) Invalidate() error {
	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove profile snapshot: %w", err)
	}
	return nil
}
