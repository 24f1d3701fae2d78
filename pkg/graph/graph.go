// Package graph builds the in-memory relationship structure over one
// loaded session's thought list. It is never persisted separately; it is
// rebuilt from the relationship fields already stored on each thought.
package graph

import (
	"errors"
	"time"

	"github.com/mindweave-dev/mindweave/pkg/thought"
)

// Relationship validation errors. Detected before any mutation is
// attempted; the persisted state stays untouched when one is returned.
var (
	// ErrSelfReference is returned when a thought references itself.
	ErrSelfReference = errors.New("cannot reference self")
	// ErrReferenceNotFound is returned when relates_to names a thought
	// that does not exist in the session.
	ErrReferenceNotFound = errors.New("referenced thought not found")
	// ErrFutureReference is returned when relates_to names a thought
	// whose timestamp is strictly after the referencing thought's.
	ErrFutureReference = errors.New("cannot reference future thoughts")
)

// Graph indexes one session's thoughts by id for relationship lookups.
// Thoughts are indexed once per build rather than re-scanned per lookup.
type Graph struct {
	order []*thought.Thought
	byID  map[string]*thought.Thought
}

// New builds a Graph over the given thought list.
func New(thoughts []*thought.Thought) *Graph {
	g := &Graph{
		order: thoughts,
		byID:  make(map[string]*thought.Thought, len(thoughts)),
	}
	for _, t := range thoughts {
		g.byID[t.ID] = t
	}
	return g
}

// Lookup returns the thought with the given id, or nil.
func (g *Graph) Lookup(id string) *thought.Thought {
	return g.byID[id]
}

// Contains reports whether a thought with the given id exists.
func (g *Graph) Contains(id string) bool {
	_, ok := g.byID[id]
	return ok
}

// ValidateReference checks a proposed relates_to reference from a new
// thought (identified by newID with creation time newTS) against the
// session. The checks run in a fixed order: self-reference, existence,
// then future-reference.
func (g *Graph) ValidateReference(newID string, newTS time.Time, relatesTo string) error {
	if relatesTo == newID {
		return ErrSelfReference
	}
	target, ok := g.byID[relatesTo]
	if !ok {
		return ErrReferenceNotFound
	}
	if target.Timestamp.After(newTS) {
		return ErrFutureReference
	}
	return nil
}

// RelatedBy returns up to limit thoughts whose declared outgoing
// relationship to targetID is of the given type, in stored order.
func (g *Graph) RelatedBy(targetID string, rel thought.RelationshipType, limit int) []*thought.Thought {
	var related []*thought.Thought
	for _, t := range g.order {
		if t.RelatesTo == targetID && t.RelationshipType == rel {
			related = append(related, t)
			if limit > 0 && len(related) == limit {
				break
			}
		}
	}
	return related
}
