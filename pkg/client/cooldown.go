package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// CooldownStore persists the time of the last successful submission.
// A zero time means there has been none.
type CooldownStore interface {
	LastSubmission() (time.Time, error)
	SetLastSubmission(t time.Time) error
}

// MemoryCooldownStore keeps the timestamp in process memory.
type MemoryCooldownStore struct {
	mu   sync.Mutex
	last time.Time
}

func (m *MemoryCooldownStore) LastSubmission() (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last, nil
}

func (m *MemoryCooldownStore) SetLastSubmission(t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = t
	return nil
}

type cooldownFile struct {
	LastSubmission int64 `json:"last_submission"` // unix milliseconds
}

// FileCooldownStore keeps the timestamp in a small JSON file, so the cooldown
// survives process restarts the way browser local storage survives reloads.
type FileCooldownStore struct {
	path string
}

// NewFileCooldownStore returns a store backed by path. The file is created on first write.
func NewFileCooldownStore(path string) *FileCooldownStore {
	return &FileCooldownStore{path: path}
}

// DefaultCooldownPath is the per-user location used by the register CLI.
func DefaultCooldownPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("user config dir: %w", err)
	}
	return filepath.Join(dir, "speaker-registration", "last_submission.json"), nil
}

func (f *FileCooldownStore) LastSubmission() (time.Time, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("read cooldown file: %w", err)
	}
	var cf cooldownFile
	if err := json.Unmarshal(data, &cf); err != nil {
		// A corrupt file is treated like a missing one.
		return time.Time{}, nil
	}
	if cf.LastSubmission == 0 {
		return time.Time{}, nil
	}
	return time.UnixMilli(cf.LastSubmission), nil
}

func (f *FileCooldownStore) SetLastSubmission(t time.Time) error {
	data, err := json.Marshal(cooldownFile{LastSubmission: t.UnixMilli()})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create cooldown dir: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write cooldown file: %w", err)
	}
	return os.Rename(tmp, f.path)
}
