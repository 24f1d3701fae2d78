package workspace

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/mindweave-dev/mindweave/pkg/graph"
	"github.com/mindweave-dev/mindweave/pkg/thought"
)

// idRerollAttempts bounds regeneration when a freshly generated thought
// id collides with an existing one in the session.
const idRerollAttempts = 5

// relatedContextLimit caps the contradicting/supporting thoughts returned
// alongside a builds_on chain.
const relatedContextLimit = 3

// Think appends one thought to a session, creating the session when the
// resolved identifier has no record yet. The whole load-modify-store
// sequence runs under the session's keyed mutex so concurrent appends to
// the same session cannot overwrite each other.
func (w *Workspace) Think(ctx context.Context, args ThinkArgs) (*ThinkResult, error) {
	ctx, span := w.tracer.Start(ctx, "workspace.Think")
	defer span.End()

	if strings.TrimSpace(args.Reasoning) == "" {
		return nil, ErrEmptyReasoning
	}
	mode := args.Mode
	if mode == "" {
		mode = thought.ModeLinear
	}
	if !thought.ValidMode(mode) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, args.Mode)
	}
	if err := validateRelationshipArgs(args.RelatesTo, args.RelationshipType); err != nil {
		return nil, err
	}

	sessionID, usedDefault, newSession, err := w.resolveSession(ctx, args)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("session.id", sessionID),
		attribute.String("thought.mode", string(mode)),
	)

	unlock := w.locks.lock(sessionID)
	defer unlock()

	thoughts, err := w.backend.LoadThoughts(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", sessionID, err)
	}

	g := graph.New(thoughts)
	id := thought.NewThoughtID()
	for attempt := 0; g.Contains(id) && attempt < idRerollAttempts; attempt++ {
		id = thought.NewThoughtID()
	}

	// Wall-clock time can step backwards; keep the per-session order
	// monotone so chain reconstruction never sees a future reference.
	ts := time.Now().UTC()
	if n := len(thoughts); n > 0 && ts.Before(thoughts[n-1].Timestamp) {
		ts = thoughts[n-1].Timestamp
	}

	if args.RelatesTo != "" {
		if err := g.ValidateReference(id, ts, args.RelatesTo); err != nil {
			return nil, err
		}
	}

	t := &thought.Thought{
		ID:               id,
		Content:          args.Reasoning,
		Mode:             mode,
		Tags:             args.Tags,
		Timestamp:        ts,
		RelatesTo:        args.RelatesTo,
		RelationshipType: args.RelationshipType,
	}
	if args.RelatesTo != "" {
		t.RelationshipsOut = append(t.RelationshipsOut, thought.RelationshipRef{
			ThoughtID:        args.RelatesTo,
			RelationshipType: args.RelationshipType,
		})
		target := g.Lookup(args.RelatesTo)
		target.RelationshipsIn = append(target.RelationshipsIn, thought.RelationshipRef{
			ThoughtID:        id,
			RelationshipType: args.RelationshipType,
		})
	}
	thoughts = append(thoughts, t)

	if err := w.backend.SaveThoughts(ctx, sessionID, thoughts); err != nil {
		return nil, fmt.Errorf("saving session %s: %w", sessionID, err)
	}
	if args.SetAsDefault {
		if err := w.backend.SetDefaultSession(ctx, sessionID); err != nil {
			return nil, fmt.Errorf("setting default session: %w", err)
		}
	}

	result := &ThinkResult{
		ThoughtID:          id,
		SessionID:          sessionID,
		ThoughtCount:       len(thoughts),
		Reasoning:          args.Reasoning,
		Mode:               mode,
		UsedDefaultSession: usedDefault,
		SetAsDefault:       args.SetAsDefault,
		NewSession:         newSession,
	}
	if args.RelationshipType == thought.RelBuildsOn {
		result.Relationship = buildRelationshipContext(thoughts, args.RelatesTo)
	}
	return result, nil
}

// resolveSession picks the session an append targets. Precedence:
// new_chat, explicit id, default pointer, fresh session. A missing
// default pointer falls back to a fresh session rather than failing.
func (w *Workspace) resolveSession(ctx context.Context, args ThinkArgs) (id string, usedDefault, newSession bool, err error) {
	switch {
	case args.NewChat:
		return thought.NewSessionID(), false, true, nil
	case args.SessionID != "":
		exists, err := w.backend.SessionExists(ctx, args.SessionID)
		if err != nil {
			return "", false, false, fmt.Errorf("checking session %s: %w", args.SessionID, err)
		}
		return args.SessionID, false, !exists, nil
	case args.UseDefaultSession:
		def, err := w.backend.DefaultSession(ctx)
		if err != nil {
			return "", false, false, fmt.Errorf("reading default session: %w", err)
		}
		if def == "" {
			return thought.NewSessionID(), false, true, nil
		}
		return def, true, false, nil
	default:
		return thought.NewSessionID(), false, true, nil
	}
}

func validateRelationshipArgs(relatesTo string, rel thought.RelationshipType) error {
	if relatesTo == "" && rel == "" {
		return nil
	}
	if relatesTo == "" || rel == "" {
		return fmt.Errorf("%w: relates_to and relationship_type must be given together", ErrInvalidRelationship)
	}
	if !thought.ValidRelationshipType(rel) {
		return fmt.Errorf("%w: unknown relationship type %q", ErrInvalidRelationship, rel)
	}
	return nil
}

// buildRelationshipContext derives the chain and related thoughts for a
// builds_on append, computed over the just-saved thought list.
func buildRelationshipContext(thoughts []*thought.Thought, relatesTo string) *RelationshipContext {
	g := graph.New(thoughts)
	chain := g.BuildChain(relatesTo)
	rc := &RelationshipContext{
		RelatesTo:        relatesTo,
		RelationshipType: thought.RelBuildsOn,
		Chain:            &chain,
	}
	for _, t := range g.RelatedBy(relatesTo, thought.RelContradicts, relatedContextLimit) {
		rc.Contradictions = append(rc.Contradictions, summarize(t))
	}
	for _, t := range g.RelatedBy(relatesTo, thought.RelSupports, relatedContextLimit) {
		rc.Supports = append(rc.Supports, summarize(t))
	}
	return rc
}
