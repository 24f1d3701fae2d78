package graph

import (
	"time"

	"github.com/mindweave-dev/mindweave/pkg/thought"
)

const (
	// maxChainHops bounds the backward walk regardless of cycle detection.
	maxChainHops = 20
	// visibleChainEntries is the working-memory-sized cap on the slice of
	// chain entries returned to callers.
	visibleChainEntries = 7
)

// ChainEntry is one visible step of a reasoning chain. Content is a
// derived preview; the stored thought is untouched.
type ChainEntry struct {
	ID               string                   `json:"id"`
	Preview          string                   `json:"content_preview"`
	Mode             thought.Mode             `json:"mode"`
	Timestamp        time.Time                `json:"timestamp"`
	RelationshipType thought.RelationshipType `json:"relationship_type,omitempty"`

	// Truncated marks the head entry of a capped chain; OmittedEarlier
	// counts the entries dropped before it.
	Truncated      bool `json:"truncated,omitempty"`
	OmittedEarlier int  `json:"omitted_earlier,omitempty"`
}

// Chain is a reconstructed builds-on provenance chain in root-to-leaf
// order (oldest first).
type Chain struct {
	Entries     []ChainEntry `json:"entries"`
	TotalLength int          `json:"total_length"`
	Truncated   bool         `json:"truncated"`
}

// BuildChain walks backward from startID, following relates_to only
// while the current thought's relationship type is builds_on. The walk
// stops at a thought without such a reference, at a missing target, on
// revisiting an id (cycle guard), or after 20 hops. When the accumulated
// chain exceeds 7 entries, only the most recent 7 are kept and the
// retained head is annotated with the omitted count.
func (g *Graph) BuildChain(startID string) Chain {
	start, ok := g.byID[startID]
	if !ok {
		return Chain{Entries: []ChainEntry{}}
	}

	visited := make(map[string]bool)
	var leafToRoot []*thought.Thought

	current := start
	for hops := 0; hops < maxChainHops; hops++ {
		if visited[current.ID] {
			break
		}
		visited[current.ID] = true
		leafToRoot = append(leafToRoot, current)

		if current.RelationshipType != thought.RelBuildsOn || current.RelatesTo == "" {
			break
		}
		next, ok := g.byID[current.RelatesTo]
		if !ok {
			break
		}
		current = next
	}

	// Reverse into root-to-leaf (oldest first) order.
	entries := make([]ChainEntry, 0, len(leafToRoot))
	for i := len(leafToRoot) - 1; i >= 0; i-- {
		t := leafToRoot[i]
		entries = append(entries, ChainEntry{
			ID:               t.ID,
			Preview:          t.Preview(),
			Mode:             t.Mode,
			Timestamp:        t.Timestamp,
			RelationshipType: t.RelationshipType,
		})
	}

	chain := Chain{
		Entries:     entries,
		TotalLength: len(entries),
	}
	if len(entries) > visibleChainEntries {
		omitted := len(entries) - visibleChainEntries
		chain.Entries = entries[omitted:]
		chain.Entries[0].Truncated = true
		chain.Entries[0].OmittedEarlier = omitted
		chain.Truncated = true
	}
	return chain
}
