// Package workspace implements the operations of the thinking workspace:
// appending thoughts, listing and viewing sessions, managing the default
// session pointer, retention cleanup, and relationship search. It owns
// the serialization of mutating operations per session identifier.
package workspace

import (
	"errors"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/mindweave-dev/mindweave/pkg/graph"
	"github.com/mindweave-dev/mindweave/pkg/retention"
	"github.com/mindweave-dev/mindweave/pkg/store"
)

// ErrUnknownSession is returned when an operation names a session that
// does not exist and implicit creation is not allowed (set-default).
var ErrUnknownSession = errors.New("invalid session: session does not exist")

// ErrEmptyReasoning is returned when think is called without content.
var ErrEmptyReasoning = errors.New("reasoning must not be empty")

// ErrInvalidMode is returned for an unknown reasoning mode.
var ErrInvalidMode = errors.New("invalid reasoning mode")

// ErrInvalidRelationship is returned when relationship arguments are
// malformed (unknown type, or relates_to/relationship_type given alone).
var ErrInvalidRelationship = errors.New("invalid relationship arguments")

// ErrEmptyQuery is returned when a search is attempted without a query.
var ErrEmptyQuery = errors.New("query must not be empty")

// Kind partitions workspace errors into the three caller-visible classes.
type Kind int

const (
	// KindStorage covers underlying read/write/enumerate/delete failures.
	KindStorage Kind = iota
	// KindValidation covers argument failures detected before any mutation.
	KindValidation
	// KindNotFound covers unknown sessions and missing defaults.
	KindNotFound
)

// Classify maps an error returned by a workspace operation to its Kind.
func Classify(err error) Kind {
	switch {
	case errors.Is(err, graph.ErrSelfReference),
		errors.Is(err, graph.ErrReferenceNotFound),
		errors.Is(err, graph.ErrFutureReference),
		errors.Is(err, ErrUnknownSession),
		errors.Is(err, ErrEmptyReasoning),
		errors.Is(err, ErrInvalidMode),
		errors.Is(err, ErrInvalidRelationship),
		errors.Is(err, ErrEmptyQuery):
		return KindValidation
	case errors.Is(err, store.ErrSessionNotFound),
		errors.Is(err, store.ErrNoDefaultSession):
		return KindNotFound
	default:
		return KindStorage
	}
}

// Workspace coordinates all operations over one storage backend.
// It is safe for concurrent use: mutating operations on the same session
// id are serialized with a keyed mutex, so two concurrent appends both
// survive (no lost updates from overlapping load-modify-store sequences).
type Workspace struct {
	backend store.Backend
	sweeper *retention.Sweeper
	locks   keyedMutex
	tracer  trace.Tracer
}

// New creates a Workspace over the given backend.
func New(backend store.Backend) *Workspace {
	return &Workspace{
		backend: backend,
		sweeper: retention.NewSweeper(backend),
		tracer:  otel.Tracer("github.com/mindweave-dev/mindweave/pkg/workspace"),
	}
}

// Backend exposes the underlying store (for health checks and the CLI).
func (w *Workspace) Backend() store.Backend {
	return w.backend
}

// Close releases the underlying backend.
func (w *Workspace) Close() error {
	return w.backend.Close()
}

// keyedMutex serializes work per string key. Entries are reference
// counted so the map does not grow with every session id ever seen.
type keyedMutex struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// lock acquires the mutex for key and returns its release function.
func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.entries == nil {
		k.entries = make(map[string]*lockEntry)
	}
	e, ok := k.entries[key]
	if !ok {
		e = &lockEntry{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.entries, key)
		}
		k.mu.Unlock()
	}
}
