package search

import (
	"testing"
	"time"

	"github.com/mindweave-dev/mindweave/pkg/thought"
)

func searchThought(id, content string, mode thought.Mode, tags ...string) *thought.Thought {
	return &thought.Thought{
		ID:        id,
		Content:   content,
		Mode:      mode,
		Tags:      tags,
		Timestamp: time.Now().UTC(),
	}
}

func TestSearchScoring(t *testing.T) {
	thoughts := []*thought.Thought{
		searchThought("t1", "the cache design needs work", thought.ModeLinear),
		searchThought("t2", "cache invalidation is hard", thought.ModeCritical, "cache"),
		searchThought("t3", "unrelated musing", thought.ModeCreative),
	}

	results := Search(thoughts, "cache", Options{})
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	// t2: +10 content, +2 word, +5 tag = 17. t1: +10 content, +2 word = 12.
	if results[0].Thought.ID != "t2" {
		t.Errorf("top result = %s, want t2", results[0].Thought.ID)
	}
	if results[0].Score != 17 {
		t.Errorf("top score = %d, want 17", results[0].Score)
	}
	if results[1].Score != 12 {
		t.Errorf("second score = %d, want 12", results[1].Score)
	}
}

func TestSearchCaseInsensitive(t *testing.T) {
	thoughts := []*thought.Thought{
		searchThought("t1", "The CACHE Design", thought.ModeLinear),
	}

	results := Search(thoughts, "Cache", Options{})
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
}

func TestSearchModeMatch(t *testing.T) {
	thoughts := []*thought.Thought{
		searchThought("t1", "some reasoning", thought.ModeCreative),
	}

	results := Search(thoughts, "creative", Options{})
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Score != scoreModeMatch {
		t.Errorf("score = %d, want %d (mode only)", results[0].Score, scoreModeMatch)
	}
}

func TestSearchRelationshipBonus(t *testing.T) {
	plain := searchThought("t1", "shared topic", thought.ModeLinear)
	related := searchThought("t2", "shared topic", thought.ModeLinear)
	related.RelatesTo = "t1"
	related.RelationshipType = thought.RelBuildsOn

	results := Search([]*thought.Thought{plain, related}, "shared topic", Options{})
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Thought.ID != "t2" {
		t.Errorf("top result = %s, want t2 (relationship bonus)", results[0].Thought.ID)
	}
	if results[0].Score != results[1].Score+scoreRelationship {
		t.Errorf("score gap = %d, want %d", results[0].Score-results[1].Score, scoreRelationship)
	}
}

func TestSearchExcludeID(t *testing.T) {
	thoughts := []*thought.Thought{
		searchThought("t1", "topic", thought.ModeLinear),
		searchThought("t2", "topic", thought.ModeLinear),
	}

	results := Search(thoughts, "topic", Options{ExcludeID: "t1"})
	if len(results) != 1 || results[0].Thought.ID != "t2" {
		t.Errorf("results = %v, want only t2", results)
	}
}

func TestSearchRelationshipTypeFilter(t *testing.T) {
	plain := searchThought("t1", "topic", thought.ModeLinear)
	builds := searchThought("t2", "topic", thought.ModeLinear)
	builds.RelatesTo = "t1"
	builds.RelationshipType = thought.RelBuildsOn
	contra := searchThought("t3", "topic", thought.ModeLinear)
	contra.RelatesTo = "t1"
	contra.RelationshipType = thought.RelContradicts

	results := Search([]*thought.Thought{plain, builds, contra}, "topic", Options{
		RelationshipTypes: []thought.RelationshipType{thought.RelContradicts},
	})
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Thought.ID != "t3" {
		t.Errorf("result = %s, want t3", results[0].Thought.ID)
	}
}

func TestSearchStableTies(t *testing.T) {
	thoughts := []*thought.Thought{
		searchThought("t1", "same text", thought.ModeLinear),
		searchThought("t2", "same text", thought.ModeLinear),
		searchThought("t3", "same text", thought.ModeLinear),
	}

	results := Search(thoughts, "same text", Options{})
	want := []string{"t1", "t2", "t3"}
	for i, w := range want {
		if results[i].Thought.ID != w {
			t.Errorf("results[%d] = %s, want %s (encounter order)", i, results[i].Thought.ID, w)
		}
	}
}

func TestSearchLimit(t *testing.T) {
	var thoughts []*thought.Thought
	for i := 0; i < 30; i++ {
		thoughts = append(thoughts, searchThought(
			thought.NewThoughtID(), "common topic", thought.ModeLinear,
		))
	}

	if got := len(Search(thoughts, "topic", Options{})); got != DefaultLimit {
		t.Errorf("default limit results = %d, want %d", got, DefaultLimit)
	}
	if got := len(Search(thoughts, "topic", Options{Limit: 5})); got != 5 {
		t.Errorf("limit 5 results = %d, want 5", got)
	}
	if got := len(Search(thoughts, "topic", Options{Limit: 100})); got != MaxLimit {
		t.Errorf("oversized limit results = %d, want %d", got, MaxLimit)
	}
	if got := len(Search(thoughts, "topic", Options{Limit: -3})); got != MinLimit {
		t.Errorf("negative limit results = %d, want %d", got, MinLimit)
	}
}

func TestSearchNoMatch(t *testing.T) {
	thoughts := []*thought.Thought{
		searchThought("t1", "completely different", thought.ModeLinear),
	}

	if results := Search(thoughts, "zebra", Options{}); len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

func TestSearchBlankQuery(t *testing.T) {
	thoughts := []*thought.Thought{
		searchThought("t1", "anything at all", thought.ModeLinear),
		searchThought("t2", "something else", thought.ModeCreative, "tagged"),
	}

	// A blank query must not substring-match every thought.
	for _, query := range []string{"", "   ", "\t\n"} {
		if results := Search(thoughts, query, Options{}); len(results) != 0 {
			t.Errorf("Search(%q) returned %d results, want 0", query, len(results))
		}
	}
}
