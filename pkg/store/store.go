// Package store provides durable persistence for thinking sessions.
// A session is one durable record holding an ordered list of thoughts;
// a second, independent record holds the default-session pointer. Two
// backends are provided: file-based JSON records and Redis.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/mindweave-dev/mindweave/pkg/thought"
)

// Common errors for storage operations.
var (
	// ErrSessionNotFound is returned when a session doesn't exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrNoDefaultSession is returned when no default session is set.
	ErrNoDefaultSession = errors.New("no default session set")
	// ErrStorageClosed is returned when operating on a closed backend.
	ErrStorageClosed = errors.New("storage backend is closed")
)

// Backend abstracts session persistence.
// Implementations must be safe for concurrent use. Serialization of
// load-modify-store sequences for a single session is the caller's
// responsibility (see workspace.Workspace).
type Backend interface {
	// SaveThoughts persists the full ordered thought list for a session,
	// creating the session record if it does not exist yet.
	SaveThoughts(ctx context.Context, sessionID string, thoughts []*thought.Thought) error

	// LoadThoughts retrieves the ordered thought list for a session.
	// A missing session yields an empty list, never an error, so appends
	// to brand-new identifiers always succeed.
	LoadThoughts(ctx context.Context, sessionID string) ([]*thought.Thought, error)

	// SessionExists reports whether a session record exists.
	SessionExists(ctx context.Context, sessionID string) (bool, error)

	// ListSessions enumerates all persisted sessions with summary metadata.
	ListSessions(ctx context.Context) ([]*SessionSummary, error)

	// DeleteSession removes a session record. Returns ErrSessionNotFound
	// if the session doesn't exist. If the deleted session is the current
	// default, the default pointer is cleared as part of the delete.
	DeleteSession(ctx context.Context, sessionID string) error

	// DefaultSession returns the default session id, or "" when unset.
	DefaultSession(ctx context.Context) (string, error)

	// SetDefaultSession persists the default pointer unconditionally.
	// Existence validation is the caller's concern.
	SetDefaultSession(ctx context.Context, sessionID string) error

	// ClearDefaultSession removes the default pointer. Clearing an
	// already-absent pointer is a success.
	ClearDefaultSession(ctx context.Context) error

	// Close releases any resources held by the backend.
	Close() error
}

// SessionSummary holds session metadata for listing without loading the
// full thought list into callers.
type SessionSummary struct {
	// ID is the session identifier.
	ID string `json:"id"`
	// ThoughtCount is the number of thoughts in the session.
	ThoughtCount int `json:"thought_count"`
	// FirstThought is the timestamp of the oldest thought (zero when empty).
	FirstThought time.Time `json:"first_thought,omitempty"`
	// LastThought is the timestamp of the newest thought (zero when empty).
	LastThought time.Time `json:"last_thought,omitempty"`
	// UpdatedAt is the last-modified time of the underlying record.
	UpdatedAt time.Time `json:"updated_at"`
}
