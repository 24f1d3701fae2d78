package workspace

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/mindweave-dev/mindweave/pkg/store"
	"github.com/mindweave-dev/mindweave/pkg/thought"
)

func newTestWorkspace(t *testing.T) *Workspace {
	t.Helper()
	backend, err := store.NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileBackend: %v", err)
	}
	w := New(backend)
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func TestThinkCreatesFreshSession(t *testing.T) {
	w := newTestWorkspace(t)
	ctx := context.Background()

	res, err := w.Think(ctx, ThinkArgs{Reasoning: "first thought"})
	if err != nil {
		t.Fatalf("Think: %v", err)
	}
	if !res.NewSession {
		t.Error("expected a fresh session")
	}
	if res.ThoughtCount != 1 {
		t.Errorf("ThoughtCount = %d, want 1", res.ThoughtCount)
	}
	if res.Mode != thought.ModeLinear {
		t.Errorf("Mode = %q, want linear default", res.Mode)
	}
	if res.Reasoning != "first thought" {
		t.Errorf("Reasoning = %q, want verbatim content", res.Reasoning)
	}

	view, err := w.ViewSession(ctx, res.SessionID)
	if err != nil {
		t.Fatalf("ViewSession: %v", err)
	}
	if view.Count != 1 || view.Thoughts[0].ID != res.ThoughtID {
		t.Errorf("persisted session does not contain the appended thought")
	}
}

func TestThinkValidation(t *testing.T) {
	w := newTestWorkspace(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		args    ThinkArgs
		wantErr error
	}{
		{"empty reasoning", ThinkArgs{Reasoning: "   "}, ErrEmptyReasoning},
		{"unknown mode", ThinkArgs{Reasoning: "x", Mode: "quantum"}, ErrInvalidMode},
		{"relates_to alone", ThinkArgs{Reasoning: "x", RelatesTo: "thought_1_aaaaa"}, ErrInvalidRelationship},
		{"relationship_type alone", ThinkArgs{Reasoning: "x", RelationshipType: thought.RelSupports}, ErrInvalidRelationship},
		{"unknown relationship type", ThinkArgs{Reasoning: "x", RelatesTo: "thought_1_aaaaa", RelationshipType: "extends"}, ErrInvalidRelationship},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := w.Think(ctx, tt.args)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Think error = %v, want %v", err, tt.wantErr)
			}
			if Classify(err) != KindValidation {
				t.Errorf("Classify(%v) = %v, want KindValidation", err, Classify(err))
			}
		})
	}
}

func TestThinkExplicitSessionAppends(t *testing.T) {
	w := newTestWorkspace(t)
	ctx := context.Background()

	first, err := w.Think(ctx, ThinkArgs{Reasoning: "a"})
	if err != nil {
		t.Fatalf("Think: %v", err)
	}
	second, err := w.Think(ctx, ThinkArgs{Reasoning: "b", SessionID: first.SessionID})
	if err != nil {
		t.Fatalf("Think: %v", err)
	}
	if second.SessionID != first.SessionID {
		t.Errorf("SessionID = %q, want %q", second.SessionID, first.SessionID)
	}
	if second.NewSession {
		t.Error("append to existing session reported NewSession")
	}
	if second.ThoughtCount != 2 {
		t.Errorf("ThoughtCount = %d, want 2", second.ThoughtCount)
	}
}

func TestThinkExplicitUnknownSessionCreates(t *testing.T) {
	w := newTestWorkspace(t)
	ctx := context.Background()

	res, err := w.Think(ctx, ThinkArgs{Reasoning: "a", SessionID: "session_1_zzzzz"})
	if err != nil {
		t.Fatalf("Think: %v", err)
	}
	if res.SessionID != "session_1_zzzzz" {
		t.Errorf("SessionID = %q, want the explicit id", res.SessionID)
	}
	if !res.NewSession {
		t.Error("append to brand-new explicit id should report NewSession")
	}
}

func TestThinkDefaultSessionFlow(t *testing.T) {
	w := newTestWorkspace(t)
	ctx := context.Background()

	// No default set: use_default_session falls back to a fresh session.
	fresh, err := w.Think(ctx, ThinkArgs{Reasoning: "a", UseDefaultSession: true})
	if err != nil {
		t.Fatalf("Think: %v", err)
	}
	if fresh.UsedDefaultSession || !fresh.NewSession {
		t.Errorf("missing default should yield a fresh session, got %+v", fresh)
	}

	home, err := w.Think(ctx, ThinkArgs{Reasoning: "home", SetAsDefault: true})
	if err != nil {
		t.Fatalf("Think: %v", err)
	}
	routed, err := w.Think(ctx, ThinkArgs{Reasoning: "b", UseDefaultSession: true})
	if err != nil {
		t.Fatalf("Think: %v", err)
	}
	if !routed.UsedDefaultSession {
		t.Error("expected append through the default pointer")
	}
	if routed.SessionID != home.SessionID {
		t.Errorf("SessionID = %q, want default %q", routed.SessionID, home.SessionID)
	}

	// new_chat wins over both the explicit id and the default flag.
	fork, err := w.Think(ctx, ThinkArgs{Reasoning: "c", SessionID: home.SessionID, UseDefaultSession: true, NewChat: true})
	if err != nil {
		t.Fatalf("Think: %v", err)
	}
	if fork.SessionID == home.SessionID || !fork.NewSession {
		t.Errorf("new_chat should force a fresh session, got %+v", fork)
	}
}

func TestThinkRelationshipMirroring(t *testing.T) {
	w := newTestWorkspace(t)
	ctx := context.Background()

	base, err := w.Think(ctx, ThinkArgs{Reasoning: "premise"})
	if err != nil {
		t.Fatalf("Think: %v", err)
	}
	next, err := w.Think(ctx, ThinkArgs{
		Reasoning:        "conclusion",
		SessionID:        base.SessionID,
		RelatesTo:        base.ThoughtID,
		RelationshipType: thought.RelBuildsOn,
	})
	if err != nil {
		t.Fatalf("Think: %v", err)
	}

	view, err := w.ViewSession(ctx, base.SessionID)
	if err != nil {
		t.Fatalf("ViewSession: %v", err)
	}
	target, added := view.Thoughts[0], view.Thoughts[1]
	if len(added.RelationshipsOut) != 1 || added.RelationshipsOut[0].ThoughtID != base.ThoughtID {
		t.Errorf("outgoing edge not recorded: %+v", added.RelationshipsOut)
	}
	if len(target.RelationshipsIn) != 1 || target.RelationshipsIn[0].ThoughtID != next.ThoughtID {
		t.Errorf("incoming mirror not recorded: %+v", target.RelationshipsIn)
	}
	if target.RelationshipsIn[0].RelationshipType != thought.RelBuildsOn {
		t.Errorf("mirrored type = %q, want builds_on", target.RelationshipsIn[0].RelationshipType)
	}
}

func TestThinkBuildsOnReturnsChainContext(t *testing.T) {
	w := newTestWorkspace(t)
	ctx := context.Background()

	a, err := w.Think(ctx, ThinkArgs{Reasoning: "root idea"})
	if err != nil {
		t.Fatalf("Think: %v", err)
	}
	b, err := w.Think(ctx, ThinkArgs{
		Reasoning: "development", SessionID: a.SessionID,
		RelatesTo: a.ThoughtID, RelationshipType: thought.RelBuildsOn,
	})
	if err != nil {
		t.Fatalf("Think: %v", err)
	}
	if _, err = w.Think(ctx, ThinkArgs{
		Reasoning: "counterpoint", SessionID: a.SessionID,
		RelatesTo: b.ThoughtID, RelationshipType: thought.RelContradicts,
	}); err != nil {
		t.Fatalf("Think: %v", err)
	}

	c, err := w.Think(ctx, ThinkArgs{
		Reasoning: "synthesis step", SessionID: a.SessionID,
		RelatesTo: b.ThoughtID, RelationshipType: thought.RelBuildsOn,
	})
	if err != nil {
		t.Fatalf("Think: %v", err)
	}
	rc := c.Relationship
	if rc == nil {
		t.Fatal("builds_on append returned no relationship context")
	}
	if rc.Chain == nil || rc.Chain.TotalLength != 2 {
		t.Fatalf("chain = %+v, want length 2 (a, b)", rc.Chain)
	}
	if rc.Chain.Entries[0].ID != a.ThoughtID || rc.Chain.Entries[1].ID != b.ThoughtID {
		t.Errorf("chain order wrong: %+v", rc.Chain.Entries)
	}
	if len(rc.Contradictions) != 1 {
		t.Errorf("Contradictions = %+v, want the counterpoint", rc.Contradictions)
	}

	// Non-builds_on appends carry no relationship context.
	d, err := w.Think(ctx, ThinkArgs{
		Reasoning: "aside", SessionID: a.SessionID,
		RelatesTo: b.ThoughtID, RelationshipType: thought.RelRefines,
	})
	if err != nil {
		t.Fatalf("Think: %v", err)
	}
	if d.Relationship != nil {
		t.Errorf("refines append returned relationship context: %+v", d.Relationship)
	}
}

func TestThinkRejectsBadReferences(t *testing.T) {
	w := newTestWorkspace(t)
	ctx := context.Background()

	base, err := w.Think(ctx, ThinkArgs{Reasoning: "a"})
	if err != nil {
		t.Fatalf("Think: %v", err)
	}
	before, err := w.ViewSession(ctx, base.SessionID)
	if err != nil {
		t.Fatalf("ViewSession: %v", err)
	}

	_, err = w.Think(ctx, ThinkArgs{
		Reasoning: "dangling", SessionID: base.SessionID,
		RelatesTo: "thought_1_nope0", RelationshipType: thought.RelBuildsOn,
	})
	if err == nil || Classify(err) != KindValidation {
		t.Fatalf("dangling reference: err = %v, want validation", err)
	}

	// A rejected append must not have mutated the session.
	after, err := w.ViewSession(ctx, base.SessionID)
	if err != nil {
		t.Fatalf("ViewSession: %v", err)
	}
	if after.Count != before.Count {
		t.Errorf("session mutated by rejected append: %d -> %d", before.Count, after.Count)
	}
}

func TestConcurrentAppendsBothSurvive(t *testing.T) {
	w := newTestWorkspace(t)
	ctx := context.Background()

	base, err := w.Think(ctx, ThinkArgs{Reasoning: "seed"})
	if err != nil {
		t.Fatalf("Think: %v", err)
	}

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := w.Think(ctx, ThinkArgs{Reasoning: "concurrent", SessionID: base.SessionID})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent Think: %v", err)
		}
	}

	view, err := w.ViewSession(ctx, base.SessionID)
	if err != nil {
		t.Fatalf("ViewSession: %v", err)
	}
	if view.Count != writers+1 {
		t.Errorf("thought count = %d, want %d (no lost updates)", view.Count, writers+1)
	}
	seen := make(map[string]bool)
	for _, th := range view.Thoughts {
		if seen[th.ID] {
			t.Errorf("duplicate thought id %s", th.ID)
		}
		seen[th.ID] = true
	}
}

func TestViewSessionResolution(t *testing.T) {
	w := newTestWorkspace(t)
	ctx := context.Background()

	if _, err := w.ViewSession(ctx, "session_1_absnt"); !errors.Is(err, store.ErrSessionNotFound) {
		t.Errorf("unknown explicit session: err = %v, want ErrSessionNotFound", err)
	}
	if _, err := w.ViewSession(ctx, ""); !errors.Is(err, store.ErrNoDefaultSession) {
		t.Errorf("no default set: err = %v, want ErrNoDefaultSession", err)
	}
	if Classify(store.ErrNoDefaultSession) != KindNotFound {
		t.Error("missing default should classify as not-found")
	}

	res, err := w.Think(ctx, ThinkArgs{Reasoning: "a", SetAsDefault: true})
	if err != nil {
		t.Fatalf("Think: %v", err)
	}
	view, err := w.ViewSession(ctx, "")
	if err != nil {
		t.Fatalf("ViewSession via default: %v", err)
	}
	if view.SessionID != res.SessionID || !view.UsedDefault {
		t.Errorf("default view = %+v, want session %s", view, res.SessionID)
	}
}

func TestListSessions(t *testing.T) {
	w := newTestWorkspace(t)
	ctx := context.Background()

	empty, err := w.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if empty.Count != 0 {
		t.Errorf("Count = %d, want 0", empty.Count)
	}

	a, _ := w.Think(ctx, ThinkArgs{Reasoning: "a"})
	b, err := w.Think(ctx, ThinkArgs{Reasoning: "b", SetAsDefault: true})
	if err != nil {
		t.Fatalf("Think: %v", err)
	}

	list, err := w.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if list.Count != 2 {
		t.Fatalf("Count = %d, want 2", list.Count)
	}
	if list.DefaultSessionID != b.SessionID {
		t.Errorf("DefaultSessionID = %q, want %q", list.DefaultSessionID, b.SessionID)
	}
	ids := map[string]bool{list.Sessions[0].ID: true, list.Sessions[1].ID: true}
	if !ids[a.SessionID] || !ids[b.SessionID] {
		t.Errorf("sessions = %v, want both appended sessions", ids)
	}
}

func TestDeleteSession(t *testing.T) {
	w := newTestWorkspace(t)
	ctx := context.Background()

	res, err := w.Think(ctx, ThinkArgs{Reasoning: "a", SetAsDefault: true})
	if err != nil {
		t.Fatalf("Think: %v", err)
	}

	del, err := w.DeleteSession(ctx, res.SessionID)
	if err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if !del.WasDefault {
		t.Error("deleting the default session should report WasDefault")
	}
	if _, err := w.ViewSession(ctx, ""); !errors.Is(err, store.ErrNoDefaultSession) {
		t.Errorf("default pointer not cleared by delete: %v", err)
	}

	_, err = w.DeleteSession(ctx, res.SessionID)
	if !errors.Is(err, store.ErrSessionNotFound) {
		t.Errorf("double delete: err = %v, want ErrSessionNotFound", err)
	}
	if Classify(err) != KindNotFound {
		t.Errorf("Classify(%v) = %v, want KindNotFound", err, Classify(err))
	}
}

func TestSetDefaultSession(t *testing.T) {
	w := newTestWorkspace(t)
	ctx := context.Background()

	if _, err := w.SetDefaultSession(ctx, "session_1_ghost"); !errors.Is(err, ErrUnknownSession) {
		t.Errorf("set-default on missing session: err = %v, want ErrUnknownSession", err)
	}

	res, err := w.Think(ctx, ThinkArgs{Reasoning: "a"})
	if err != nil {
		t.Fatalf("Think: %v", err)
	}
	set, err := w.SetDefaultSession(ctx, res.SessionID)
	if err != nil {
		t.Fatalf("SetDefaultSession: %v", err)
	}
	if set.SessionID != res.SessionID {
		t.Errorf("SessionID = %q, want %q", set.SessionID, res.SessionID)
	}

	cleared, err := w.ClearDefaultSession(ctx)
	if err != nil {
		t.Fatalf("ClearDefaultSession: %v", err)
	}
	if !cleared.Cleared {
		t.Error("ClearDefaultSession did not report Cleared")
	}
	// Clearing twice is still a success.
	if _, err := w.ClearDefaultSession(ctx); err != nil {
		t.Errorf("second clear: %v", err)
	}
}

func TestFindThoughtRelationships(t *testing.T) {
	w := newTestWorkspace(t)
	ctx := context.Background()

	base, err := w.Think(ctx, ThinkArgs{Reasoning: "database schema design", Tags: []string{"storage"}})
	if err != nil {
		t.Fatalf("Think: %v", err)
	}
	follow, err := w.Think(ctx, ThinkArgs{
		Reasoning: "index the schema lookups", SessionID: base.SessionID,
		RelatesTo: base.ThoughtID, RelationshipType: thought.RelRefines,
	})
	if err != nil {
		t.Fatalf("Think: %v", err)
	}
	if _, err := w.Think(ctx, ThinkArgs{Reasoning: "unrelated musing", SessionID: base.SessionID}); err != nil {
		t.Fatalf("Think: %v", err)
	}

	res, err := w.FindThoughtRelationships(ctx, SearchArgs{Query: "schema", SessionID: base.SessionID})
	if err != nil {
		t.Fatalf("FindThoughtRelationships: %v", err)
	}
	if res.Total != 2 || res.SearchedCount != 3 {
		t.Fatalf("Total = %d, SearchedCount = %d, want 2 of 3", res.Total, res.SearchedCount)
	}

	filtered, err := w.FindThoughtRelationships(ctx, SearchArgs{
		Query: "schema", SessionID: base.SessionID,
		RelationshipTypes: []thought.RelationshipType{thought.RelRefines},
	})
	if err != nil {
		t.Fatalf("FindThoughtRelationships: %v", err)
	}
	if filtered.Total != 1 || filtered.Results[0].ID != follow.ThoughtID {
		t.Errorf("filtered results = %+v, want only the refines thought", filtered.Results)
	}

	excluded, err := w.FindThoughtRelationships(ctx, SearchArgs{
		Query: "schema", SessionID: base.SessionID, ExcludeThoughtID: base.ThoughtID,
	})
	if err != nil {
		t.Fatalf("FindThoughtRelationships: %v", err)
	}
	for _, hit := range excluded.Results {
		if hit.ID == base.ThoughtID {
			t.Error("excluded thought id present in results")
		}
	}

	if _, err := w.FindThoughtRelationships(ctx, SearchArgs{SessionID: base.SessionID}); !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("empty query: err = %v, want ErrEmptyQuery", err)
	}
	if _, err := w.FindThoughtRelationships(ctx, SearchArgs{Query: "   ", SessionID: base.SessionID}); !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("whitespace query: err = %v, want ErrEmptyQuery", err)
	}
	if _, err := w.FindThoughtRelationships(ctx, SearchArgs{
		Query: "x", SessionID: base.SessionID,
		RelationshipTypes: []thought.RelationshipType{"extends"},
	}); !errors.Is(err, ErrInvalidRelationship) {
		t.Errorf("bad type filter: err = %v, want ErrInvalidRelationship", err)
	}
}

func TestCleanupSessionsDelegates(t *testing.T) {
	w := newTestWorkspace(t)
	ctx := context.Background()

	if _, err := w.Think(ctx, ThinkArgs{Reasoning: "recent"}); err != nil {
		t.Fatalf("Think: %v", err)
	}
	res, err := w.CleanupSessions(ctx, 0)
	if err != nil {
		t.Fatalf("CleanupSessions: %v", err)
	}
	if res.MaxAgeDays != 90 {
		t.Errorf("MaxAgeDays = %d, want fallback 90", res.MaxAgeDays)
	}
	if res.Deleted != 0 {
		t.Errorf("Deleted = %d, want 0 for a fresh session", res.Deleted)
	}
}
