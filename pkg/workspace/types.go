package workspace

import (
	"time"

	"github.com/mindweave-dev/mindweave/pkg/graph"
	"github.com/mindweave-dev/mindweave/pkg/store"
	"github.com/mindweave-dev/mindweave/pkg/thought"
)

// ThinkArgs are the arguments of the think (append) operation.
type ThinkArgs struct {
	// Reasoning is the verbatim reasoning text. Required.
	Reasoning string
	// SessionID names an explicit session to append to.
	SessionID string
	// UseDefaultSession appends to the current default session when one
	// is set; otherwise a fresh session is created.
	UseDefaultSession bool
	// SetAsDefault marks the resolved session as the default afterwards.
	SetAsDefault bool
	// NewChat forces a fresh session regardless of the other flags.
	NewChat bool
	// Mode is the reasoning mode; empty defaults to linear.
	Mode thought.Mode
	// Tags are free-text labels stored with the thought.
	Tags []string
	// RelatesTo optionally names a prior thought in the same session.
	RelatesTo string
	// RelationshipType classifies the relates_to edge. Required when
	// RelatesTo is set.
	RelationshipType thought.RelationshipType
}

// ThoughtSummary is the preview form of a thought in derived context.
type ThoughtSummary struct {
	ID               string                   `json:"id"`
	Preview          string                   `json:"content_preview"`
	Mode             thought.Mode             `json:"mode"`
	Timestamp        time.Time                `json:"timestamp"`
	RelationshipType thought.RelationshipType `json:"relationship_type,omitempty"`
}

// RelationshipContext is the auxiliary context returned when a thought
// declares a builds_on relationship.
type RelationshipContext struct {
	RelatesTo        string                   `json:"relates_to"`
	RelationshipType thought.RelationshipType `json:"relationship_type"`
	// Chain is the reasoning chain rooted at the referenced thought.
	Chain *graph.Chain `json:"chain,omitempty"`
	// Contradictions are up to 3 thoughts contradicting the referenced one.
	Contradictions []ThoughtSummary `json:"contradictions,omitempty"`
	// Supports are up to 3 thoughts supporting the referenced one.
	Supports []ThoughtSummary `json:"supports,omitempty"`
}

// ThinkResult is the response of the think operation.
type ThinkResult struct {
	ThoughtID          string               `json:"thought_id"`
	SessionID          string               `json:"session_id"`
	ThoughtCount       int                  `json:"thought_count"`
	Reasoning          string               `json:"reasoning"`
	Mode               thought.Mode         `json:"mode"`
	UsedDefaultSession bool                 `json:"used_default_session"`
	SetAsDefault       bool                 `json:"set_as_default"`
	NewSession         bool                 `json:"new_session"`
	Relationship       *RelationshipContext `json:"relationship,omitempty"`
}

// ListSessionsResult enumerates every persisted session.
type ListSessionsResult struct {
	Sessions         []*store.SessionSummary `json:"sessions"`
	Count            int                     `json:"count"`
	DefaultSessionID string                  `json:"default_session_id,omitempty"`
}

// ViewSessionResult is the full thought list of one session.
type ViewSessionResult struct {
	SessionID   string             `json:"session_id"`
	Thoughts    []*thought.Thought `json:"thoughts"`
	Count       int                `json:"count"`
	UsedDefault bool               `json:"used_default"`
}

// DeleteSessionResult reports a completed deletion.
type DeleteSessionResult struct {
	SessionID  string `json:"session_id"`
	WasDefault bool   `json:"was_default"`
}

// SetDefaultResult reports a default-pointer update.
type SetDefaultResult struct {
	SessionID string `json:"session_id,omitempty"`
	Cleared   bool   `json:"cleared,omitempty"`
}

// SearchArgs are the arguments of find_thought_relationships.
type SearchArgs struct {
	// Query is the search text. Required.
	Query string
	// SessionID names the session to search; falls back to the default.
	SessionID string
	// RelationshipTypes filters results to thoughts declaring one of
	// these relationship types.
	RelationshipTypes []thought.RelationshipType
	// ExcludeThoughtID drops one thought from consideration.
	ExcludeThoughtID string
	// Limit caps results (1-20, default 10).
	Limit int
}

// SearchHit is one ranked search result.
type SearchHit struct {
	ID               string                   `json:"id"`
	Preview          string                   `json:"content_preview"`
	Mode             thought.Mode             `json:"mode"`
	Tags             []string                 `json:"tags,omitempty"`
	Timestamp        time.Time                `json:"timestamp"`
	RelationshipType thought.RelationshipType `json:"relationship_type,omitempty"`
	Score            int                      `json:"score"`
}

// SearchResult is the response of find_thought_relationships.
type SearchResult struct {
	SessionID     string      `json:"session_id"`
	Results       []SearchHit `json:"results"`
	Total         int         `json:"total"`
	SearchedCount int         `json:"searched_count"`
	UsedDefault   bool        `json:"used_default"`
}

func summarize(t *thought.Thought) ThoughtSummary {
	return ThoughtSummary{
		ID:               t.ID,
		Preview:          t.Preview(),
		Mode:             t.Mode,
		Timestamp:        t.Timestamp,
		RelationshipType: t.RelationshipType,
	}
}
