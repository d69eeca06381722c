// Package uistate persists UI preferences between workdeck runs.
//
// The state lives in one small JSON file. Writes are atomic (temp file
// plus rename) and guarded by a file lock, so two workdeck instances
// sharing a config directory cannot corrupt each other's state.
package uistate

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

const (
	lockTimeout       = 3 * time.Second
	lockRetryInterval = 100 * time.Millisecond
)

// State holds the persisted UI preferences.
type State struct {
	ActiveView       string    `json:"active_view"`
	SidebarCollapsed bool      `json:"sidebar_collapsed"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Store reads and writes the state file.
type Store struct {
	path     string
	fileLock *flock.Flock
	mu       sync.Mutex
}

// NewStore creates a store for the state file at path. The file and its
// parent directory need not exist yet.
func NewStore(path string) *Store {
	return &Store{
		path:     path,
		fileLock: flock.New(path + ".lock"),
	}
}

// Load reads the persisted state. A missing or empty file yields the
// zero state, not an error; a corrupt one is reported.
func (s *Store) Load() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.acquire()
	if err != nil {
		return State{}, err
	}
	defer unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("failed to read state file: %w", err)
	}
	if len(data) == 0 {
		return State{}, nil
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("failed to parse state file: %w", err)
	}
	return state, nil
}

// Save writes the state atomically. The parent directory is created if
// needed.
func (s *Store) Save(state State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.acquire()
	if err != nil {
		return err
	}
	defer unlock()

	state.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	// Write atomically: temp file first, then rename into place.
	tmpFile := s.path + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write temp state file: %w", err)
	}
	if err := os.Rename(tmpFile, s.path); err != nil {
		_ = os.Remove(tmpFile)
		return fmt.Errorf("failed to replace state file: %w", err)
	}

	return nil
}

// acquire takes the file lock with a bounded wait and returns the
// release function. The parent directory is created first because the
// lock file lives next to the state file.
func (s *Store) acquire() (func(), error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()

	locked, err := s.fileLock.TryLockContext(ctx, lockRetryInterval)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire state lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("could not acquire state lock")
	}
	return func() { _ = s.fileLock.Unlock() }, nil
}
