package workspace

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/mindweave-dev/mindweave/pkg/retention"
	"github.com/mindweave-dev/mindweave/pkg/search"
	"github.com/mindweave-dev/mindweave/pkg/store"
	"github.com/mindweave-dev/mindweave/pkg/thought"
)

// ListSessions enumerates every persisted session, newest first, along
// with the current default pointer.
func (w *Workspace) ListSessions(ctx context.Context) (*ListSessionsResult, error) {
	ctx, span := w.tracer.Start(ctx, "workspace.ListSessions")
	defer span.End()

	sessions, err := w.backend.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	def, err := w.backend.DefaultSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading default session: %w", err)
	}
	return &ListSessionsResult{
		Sessions:         sessions,
		Count:            len(sessions),
		DefaultSessionID: def,
	}, nil
}

// ViewSession returns the full ordered thought list of one session.
// An empty sessionID resolves through the default pointer.
func (w *Workspace) ViewSession(ctx context.Context, sessionID string) (*ViewSessionResult, error) {
	ctx, span := w.tracer.Start(ctx, "workspace.ViewSession")
	defer span.End()

	sessionID, usedDefault, err := w.resolveReadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("session.id", sessionID))

	thoughts, err := w.backend.LoadThoughts(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", sessionID, err)
	}
	return &ViewSessionResult{
		SessionID:   sessionID,
		Thoughts:    thoughts,
		Count:       len(thoughts),
		UsedDefault: usedDefault,
	}, nil
}

// DeleteSession removes a session record. Deleting the current default
// also clears the default pointer.
func (w *Workspace) DeleteSession(ctx context.Context, sessionID string) (*DeleteSessionResult, error) {
	ctx, span := w.tracer.Start(ctx, "workspace.DeleteSession")
	defer span.End()

	unlock := w.locks.lock(sessionID)
	defer unlock()

	def, err := w.backend.DefaultSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading default session: %w", err)
	}
	if err := w.backend.DeleteSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return &DeleteSessionResult{
		SessionID:  sessionID,
		WasDefault: def == sessionID,
	}, nil
}

// SetDefaultSession points the durable default at an existing session.
// Unlike appends, the default may only reference a session that exists.
func (w *Workspace) SetDefaultSession(ctx context.Context, sessionID string) (*SetDefaultResult, error) {
	ctx, span := w.tracer.Start(ctx, "workspace.SetDefaultSession")
	defer span.End()

	exists, err := w.backend.SessionExists(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("checking session %s: %w", sessionID, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSession, sessionID)
	}
	if err := w.backend.SetDefaultSession(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("setting default session: %w", err)
	}
	return &SetDefaultResult{SessionID: sessionID}, nil
}

// ClearDefaultSession removes the default pointer. Clearing an absent
// pointer succeeds.
func (w *Workspace) ClearDefaultSession(ctx context.Context) (*SetDefaultResult, error) {
	ctx, span := w.tracer.Start(ctx, "workspace.ClearDefaultSession")
	defer span.End()

	if err := w.backend.ClearDefaultSession(ctx); err != nil {
		return nil, fmt.Errorf("clearing default session: %w", err)
	}
	return &SetDefaultResult{Cleared: true}, nil
}

// CleanupSessions deletes every session whose record has not been
// modified within maxAgeDays. Zero or negative falls back to the
// retention default.
func (w *Workspace) CleanupSessions(ctx context.Context, maxAgeDays int) (retention.Result, error) {
	ctx, span := w.tracer.Start(ctx, "workspace.CleanupSessions")
	defer span.End()

	return w.sweeper.Sweep(ctx, maxAgeDays)
}

// Sweeper exposes the retention sweeper for scheduled background sweeps.
func (w *Workspace) Sweeper() *retention.Sweeper {
	return w.sweeper
}

// FindThoughtRelationships ranks the thoughts of one session against a
// lexical query. An empty SessionID resolves through the default pointer.
func (w *Workspace) FindThoughtRelationships(ctx context.Context, args SearchArgs) (*SearchResult, error) {
	ctx, span := w.tracer.Start(ctx, "workspace.FindThoughtRelationships")
	defer span.End()

	if strings.TrimSpace(args.Query) == "" {
		return nil, ErrEmptyQuery
	}
	for _, rel := range args.RelationshipTypes {
		if !thought.ValidRelationshipType(rel) {
			return nil, fmt.Errorf("%w: unknown relationship type %q", ErrInvalidRelationship, rel)
		}
	}

	sessionID, usedDefault, err := w.resolveReadSession(ctx, args.SessionID)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("session.id", sessionID))

	thoughts, err := w.backend.LoadThoughts(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", sessionID, err)
	}

	results := search.Search(thoughts, args.Query, search.Options{
		ExcludeID:         args.ExcludeThoughtID,
		RelationshipTypes: args.RelationshipTypes,
		Limit:             args.Limit,
	})
	hits := make([]SearchHit, 0, len(results))
	for _, r := range results {
		hits = append(hits, SearchHit{
			ID:               r.Thought.ID,
			Preview:          r.Thought.Preview(),
			Mode:             r.Thought.Mode,
			Tags:             r.Thought.Tags,
			Timestamp:        r.Thought.Timestamp,
			RelationshipType: r.Thought.RelationshipType,
			Score:            r.Score,
		})
	}
	return &SearchResult{
		SessionID:     sessionID,
		Results:       hits,
		Total:         len(hits),
		SearchedCount: len(thoughts),
		UsedDefault:   usedDefault,
	}, nil
}

// resolveReadSession resolves the target of a read-only operation. An
// explicit id must exist; an empty id goes through the default pointer
// and fails with ErrNoDefaultSession when none is set.
func (w *Workspace) resolveReadSession(ctx context.Context, sessionID string) (string, bool, error) {
	if sessionID != "" {
		exists, err := w.backend.SessionExists(ctx, sessionID)
		if err != nil {
			return "", false, fmt.Errorf("checking session %s: %w", sessionID, err)
		}
		if !exists {
			return "", false, fmt.Errorf("%w: %s", store.ErrSessionNotFound, sessionID)
		}
		return sessionID, false, nil
	}
	def, err := w.backend.DefaultSession(ctx)
	if err != nil {
		return "", false, fmt.Errorf("reading default session: %w", err)
	}
	if def == "" {
		return "", false, store.ErrNoDefaultSession
	}
	return def, true, nil
}
