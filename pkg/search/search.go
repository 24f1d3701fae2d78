// Package search scores thought entries in a loaded session against a
// query string. Scoring is a lexical heuristic, not a probabilistic
// relevance measure.
package search

import (
	"sort"
	"strings"

	"github.com/mindweave-dev/mindweave/pkg/thought"
)

// Limit bounds for result truncation.
const (
	DefaultLimit = 10
	MinLimit     = 1
	MaxLimit     = 20
)

// Options filters and bounds a search.
type Options struct {
	// ExcludeID drops the thought with this id from consideration.
	ExcludeID string
	// RelationshipTypes, when non-empty, keeps only thoughts whose
	// declared relationship type is in the set.
	RelationshipTypes []thought.RelationshipType
	// Limit caps the number of results (clamped to [MinLimit, MaxLimit];
	// zero means DefaultLimit).
	Limit int
}

// Result pairs a matching thought with its relevance score.
type Result struct {
	Thought *thought.Thought `json:"thought"`
	Score   int              `json:"score"`
}

// Scoring weights.
const (
	scoreFullMatch    = 10 // content contains the entire query
	scorePerWord      = 2  // per query word found in content
	scorePerTag       = 5  // per tag containing the query
	scoreModeMatch    = 3  // mode contains the query
	scoreRelationship = 1  // thought carries any relationship metadata
)

// Search ranks the session's thoughts against query. Matching is
// case-insensitive over content, tags, and mode; ties keep encounter
// order (stable sort).
func Search(thoughts []*thought.Thought, query string, opts Options) []Result {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		// An empty query would substring-match everything; treat it as
		// matching nothing.
		return nil
	}
	words := strings.Fields(q)

	filterSet := make(map[thought.RelationshipType]bool, len(opts.RelationshipTypes))
	for _, rel := range opts.RelationshipTypes {
		filterSet[rel] = true
	}

	var results []Result
	for _, t := range thoughts {
		if t.ID == opts.ExcludeID {
			continue
		}
		if len(filterSet) > 0 && (t.RelationshipType == "" || !filterSet[t.RelationshipType]) {
			continue
		}

		score := score(t, q, words)
		if score == 0 {
			continue
		}
		results = append(results, Result{Thought: t, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	limit := clampLimit(opts.Limit)
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// score computes the relevance of one thought, or 0 when no field matches.
func score(t *thought.Thought, q string, words []string) int {
	content := strings.ToLower(t.Content)
	mode := strings.ToLower(string(t.Mode))

	matched := strings.Contains(content, q) || strings.Contains(mode, q)
	var tagHits int
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			tagHits++
			matched = true
		}
	}
	if !matched {
		// A thought is a candidate only if content, a tag, or mode matches
		// the full query; individual word hits alone don't qualify it.
		return 0
	}

	var s int
	if strings.Contains(content, q) {
		s += scoreFullMatch
	}
	for _, w := range words {
		if strings.Contains(content, w) {
			s += scorePerWord
		}
	}
	s += tagHits * scorePerTag
	if strings.Contains(mode, q) {
		s += scoreModeMatch
	}
	if t.HasRelationships() {
		s += scoreRelationship
	}
	return s
}

func clampLimit(limit int) int {
	switch {
	case limit == 0:
		return DefaultLimit
	case limit < MinLimit:
		return MinLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}
