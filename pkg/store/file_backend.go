package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/mindweave-dev/mindweave/pkg/thought"
)

// ErrInvalidPathComponent is returned when a session id contains unsafe characters.
var ErrInvalidPathComponent = errors.New("invalid path component: contains path separator or traversal sequence")

// EnvStorageDir overrides the storage root when set. Used for test
// isolation and containerized deployments.
const EnvStorageDir = "MINDWEAVE_STORAGE_DIR"

// defaultPointerFile holds the default-session pointer. It lives next to
// the session records but is never enumerated as a session.
const defaultPointerFile = "default_session.json"

// validatePathComponent checks that a string is safe to use as a path component.
// It rejects empty strings, path separators, and traversal sequences.
func validatePathComponent(s string) error {
	if s == "" {
		return errors.New("path component cannot be empty")
	}
	if strings.ContainsAny(s, `/\`) || strings.Contains(s, "..") {
		return ErrInvalidPathComponent
	}
	return nil
}

// FileBackend implements Backend using one JSON file per session.
// Storage layout:
//
//	~/.mindweave/sessions/
//	  ├── <session-id>.json      # ordered thought list
//	  └── default_session.json   # default-session pointer
type FileBackend struct {
	baseDir string
	mu      sync.RWMutex
	closed  bool
}

// defaultPointer is the serialized form of the default-session record.
type defaultPointer struct {
	SessionID string `json:"session_id"`
}

// NewFileBackend creates a new file-based storage backend.
// If baseDir is empty, the MINDWEAVE_STORAGE_DIR environment variable is
// consulted, then ~/.mindweave/sessions.
func NewFileBackend(baseDir string) (*FileBackend, error) {
	if baseDir == "" {
		baseDir = os.Getenv(EnvStorageDir)
	}
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		baseDir = filepath.Join(home, ".mindweave", "sessions")
	}

	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create base directory: %w", err)
	}

	return &FileBackend{baseDir: baseDir}, nil
}

// BaseDir returns the storage root in use.
func (f *FileBackend) BaseDir() string {
	return f.baseDir
}

func (f *FileBackend) sessionPath(sessionID string) string {
	return filepath.Join(f.baseDir, sessionID+".json")
}

// SaveThoughts persists the full ordered thought list for a session.
func (f *FileBackend) SaveThoughts(ctx context.Context, sessionID string, thoughts []*thought.Thought) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrStorageClosed
	}
	if err := validatePathComponent(sessionID); err != nil {
		return fmt.Errorf("invalid session ID: %w", err)
	}

	if thoughts == nil {
		thoughts = []*thought.Thought{}
	}
	data, err := json.MarshalIndent(thoughts, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal thoughts: %w", err)
	}

	if err := os.WriteFile(f.sessionPath(sessionID), data, 0600); err != nil {
		return fmt.Errorf("write session record: %w", err)
	}
	return nil
}

// LoadThoughts retrieves the ordered thought list for a session.
// A missing record yields an empty list, never an error.
func (f *FileBackend) LoadThoughts(ctx context.Context, sessionID string) ([]*thought.Thought, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		return nil, ErrStorageClosed
	}
	if err := validatePathComponent(sessionID); err != nil {
		return nil, fmt.Errorf("invalid session ID: %w", err)
	}

	data, err := os.ReadFile(f.sessionPath(sessionID)) // #nosec G304 - path component validated to prevent traversal
	if err != nil {
		if os.IsNotExist(err) {
			return []*thought.Thought{}, nil
		}
		return nil, fmt.Errorf("read session record: %w", err)
	}

	var thoughts []*thought.Thought
	if err := json.Unmarshal(data, &thoughts); err != nil {
		return nil, fmt.Errorf("parse session record: %w", err)
	}
	if thoughts == nil {
		thoughts = []*thought.Thought{}
	}
	return thoughts, nil
}

// SessionExists reports whether a session record exists on disk.
func (f *FileBackend) SessionExists(ctx context.Context, sessionID string) (bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		return false, ErrStorageClosed
	}
	if err := validatePathComponent(sessionID); err != nil {
		return false, fmt.Errorf("invalid session ID: %w", err)
	}

	_, err := os.Stat(f.sessionPath(sessionID))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat session record: %w", err)
	}
	return true, nil
}

// ListSessions enumerates all persisted sessions with summary metadata.
// The default-pointer record is excluded.
func (f *FileBackend) ListSessions(ctx context.Context) ([]*SessionSummary, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		return nil, ErrStorageClosed
	}

	entries, err := os.ReadDir(f.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []*SessionSummary{}, nil
		}
		return nil, fmt.Errorf("read base directory: %w", err)
	}

	summaries := make([]*SessionSummary, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == defaultPointerFile || !strings.HasSuffix(name, ".json") {
			continue
		}
		sessionID := strings.TrimSuffix(name, ".json")

		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat session record %s: %w", name, err)
		}

		data, err := os.ReadFile(filepath.Join(f.baseDir, name)) // #nosec G304 - name comes from ReadDir
		if err != nil {
			return nil, fmt.Errorf("read session record %s: %w", name, err)
		}
		var thoughts []*thought.Thought
		if err := json.Unmarshal(data, &thoughts); err != nil {
			return nil, fmt.Errorf("parse session record %s: %w", name, err)
		}

		summary := &SessionSummary{
			ID:           sessionID,
			ThoughtCount: len(thoughts),
			UpdatedAt:    info.ModTime(),
		}
		if len(thoughts) > 0 {
			summary.FirstThought = thoughts[0].Timestamp
			summary.LastThought = thoughts[len(thoughts)-1].Timestamp
		}
		summaries = append(summaries, summary)
	}

	// Most recently updated first.
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})

	return summaries, nil
}

// DeleteSession removes a session record. If the deleted session is the
// current default, the default pointer is cleared too.
func (f *FileBackend) DeleteSession(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrStorageClosed
	}
	if err := validatePathComponent(sessionID); err != nil {
		return fmt.Errorf("invalid session ID: %w", err)
	}

	if err := os.Remove(f.sessionPath(sessionID)); err != nil {
		if os.IsNotExist(err) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("delete session record: %w", err)
	}

	current, err := f.defaultSessionUnlocked()
	if err != nil {
		return err
	}
	if current == sessionID {
		if err := f.clearDefaultUnlocked(); err != nil {
			return err
		}
	}
	return nil
}

// DefaultSession returns the default session id, or "" when unset.
func (f *FileBackend) DefaultSession(ctx context.Context) (string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		return "", ErrStorageClosed
	}
	return f.defaultSessionUnlocked()
}

// SetDefaultSession persists the default pointer unconditionally.
func (f *FileBackend) SetDefaultSession(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrStorageClosed
	}
	if err := validatePathComponent(sessionID); err != nil {
		return fmt.Errorf("invalid session ID: %w", err)
	}

	data, err := json.MarshalIndent(defaultPointer{SessionID: sessionID}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal default pointer: %w", err)
	}
	if err := os.WriteFile(filepath.Join(f.baseDir, defaultPointerFile), data, 0600); err != nil {
		return fmt.Errorf("write default pointer: %w", err)
	}
	return nil
}

// ClearDefaultSession removes the default pointer. Idempotent.
func (f *FileBackend) ClearDefaultSession(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrStorageClosed
	}
	return f.clearDefaultUnlocked()
}

// Close releases any resources held by the backend.
func (f *FileBackend) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
	return nil
}

// defaultSessionUnlocked reads the pointer record. Caller must hold a lock.
func (f *FileBackend) defaultSessionUnlocked() (string, error) {
	data, err := os.ReadFile(filepath.Join(f.baseDir, defaultPointerFile))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read default pointer: %w", err)
	}

	var ptr defaultPointer
	if err := json.Unmarshal(data, &ptr); err != nil {
		return "", fmt.Errorf("parse default pointer: %w", err)
	}
	return ptr.SessionID, nil
}

// clearDefaultUnlocked removes the pointer record. Caller must hold the write lock.
func (f *FileBackend) clearDefaultUnlocked() error {
	if err := os.Remove(filepath.Join(f.baseDir, defaultPointerFile)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear default pointer: %w", err)
	}
	return nil
}
