// Package thought defines the core data model for the mindweave workspace.
// A Thought is one atomic unit of stored reasoning; thoughts belong to a
// session and may declare directed relationships to earlier thoughts in
// the same session.
package thought

import (
	"time"
)

// Mode classifies the style of reasoning a thought captures.
type Mode string

const (
	// ModeLinear is step-by-step sequential reasoning. This is the default.
	ModeLinear Mode = "linear"
	// ModeCreative is divergent, exploratory reasoning.
	ModeCreative Mode = "creative"
	// ModeCritical is evaluative reasoning that probes for flaws.
	ModeCritical Mode = "critical"
	// ModeStrategic is long-horizon planning reasoning.
	ModeStrategic Mode = "strategic"
	// ModeEmpathetic is perspective-taking reasoning.
	ModeEmpathetic Mode = "empathetic"
)

// Modes lists every valid reasoning mode.
var Modes = []Mode{ModeLinear, ModeCreative, ModeCritical, ModeStrategic, ModeEmpathetic}

// ValidMode reports whether m is a known reasoning mode.
func ValidMode(m Mode) bool {
	for _, known := range Modes {
		if m == known {
			return true
		}
	}
	return false
}

// RelationshipType classifies a directed edge between two thoughts.
type RelationshipType string

const (
	// RelBuildsOn marks a thought that extends an earlier one. Builds-on
	// edges are the ones followed when reconstructing reasoning chains.
	RelBuildsOn RelationshipType = "builds_on"
	// RelSupports marks a thought that provides evidence for another.
	RelSupports RelationshipType = "supports"
	// RelContradicts marks a thought that disputes another.
	RelContradicts RelationshipType = "contradicts"
	// RelRefines marks a thought that sharpens or narrows another.
	RelRefines RelationshipType = "refines"
	// RelSynthesizes marks a thought that combines earlier ones.
	RelSynthesizes RelationshipType = "synthesizes"
)

// RelationshipTypes lists every valid relationship type.
var RelationshipTypes = []RelationshipType{
	RelBuildsOn, RelSupports, RelContradicts, RelRefines, RelSynthesizes,
}

// ValidRelationshipType reports whether r is a known relationship type.
func ValidRelationshipType(r RelationshipType) bool {
	for _, known := range RelationshipTypes {
		if r == known {
			return true
		}
	}
	return false
}

// RelationshipRef records one end of a relationship edge as stored on a
// thought: the other thought's id plus the edge type.
type RelationshipRef struct {
	ThoughtID        string           `json:"thought_id"`
	RelationshipType RelationshipType `json:"relationship_type"`
}

// Thought is the atomic unit of stored reasoning.
// Content is stored verbatim; truncation happens only in derived preview
// fields returned to callers, never in storage. A thought's ID never
// changes after creation, and thoughts are only removed by whole-session
// deletion.
type Thought struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Mode      Mode      `json:"mode"`
	Tags      []string  `json:"tags,omitempty"`
	Timestamp time.Time `json:"timestamp"`

	// RelatesTo names a prior thought in the same session this thought
	// declares a relationship to. Empty when the thought stands alone.
	RelatesTo        string           `json:"relates_to,omitempty"`
	RelationshipType RelationshipType `json:"relationship_type,omitempty"`

	// RelationshipsIn mirrors the outgoing edges of other thoughts that
	// reference this one. Every outgoing edge has exactly one mirrored
	// incoming entry, written as part of the same append.
	RelationshipsIn  []RelationshipRef `json:"relationships_in,omitempty"`
	RelationshipsOut []RelationshipRef `json:"relationships_out,omitempty"`
}

// HasRelationships reports whether the thought carries any relationship
// metadata at all (declared, incoming, or outgoing).
func (t *Thought) HasRelationships() bool {
	return t.RelatesTo != "" || len(t.RelationshipsIn) > 0 || len(t.RelationshipsOut) > 0
}

// PreviewLength is the number of characters kept in derived content
// previews returned to callers.
const PreviewLength = 120

// Preview returns the first PreviewLength characters of the content with
// an ellipsis when the content was longer. The stored content is never
// modified.
func (t *Thought) Preview() string {
	runes := []rune(t.Content)
	if len(runes) <= PreviewLength {
		return t.Content
	}
	return string(runes[:PreviewLength]) + "..."
}
