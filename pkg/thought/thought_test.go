package thought

import (
	"regexp"
	"strings"
	"testing"
)

func TestValidMode(t *testing.T) {
	tests := []struct {
		mode Mode
		want bool
	}{
		{ModeLinear, true},
		{ModeCreative, true},
		{ModeCritical, true},
		{ModeStrategic, true},
		{ModeEmpathetic, true},
		{Mode("quantum"), false},
		{Mode(""), false},
	}

	for _, tt := range tests {
		if got := ValidMode(tt.mode); got != tt.want {
			t.Errorf("ValidMode(%q) = %v, want %v", tt.mode, got, tt.want)
		}
	}
}

func TestValidRelationshipType(t *testing.T) {
	for _, rel := range RelationshipTypes {
		if !ValidRelationshipType(rel) {
			t.Errorf("ValidRelationshipType(%q) = false, want true", rel)
		}
	}
	if ValidRelationshipType("duplicates") {
		t.Error("ValidRelationshipType(\"duplicates\") = true, want false")
	}
}

func TestPreview(t *testing.T) {
	short := &Thought{Content: "brief"}
	if got := short.Preview(); got != "brief" {
		t.Errorf("Preview() = %q, want %q", got, "brief")
	}

	long := &Thought{Content: strings.Repeat("a", PreviewLength+1)}
	got := long.Preview()
	if len([]rune(got)) != PreviewLength+3 {
		t.Errorf("Preview() length = %d, want %d", len([]rune(got)), PreviewLength+3)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("Preview() = %q, want ellipsis suffix", got)
	}

	exact := &Thought{Content: strings.Repeat("b", PreviewLength)}
	if got := exact.Preview(); strings.HasSuffix(got, "...") {
		t.Error("Preview() added ellipsis to content at exactly the preview length")
	}
}

func TestHasRelationships(t *testing.T) {
	if (&Thought{}).HasRelationships() {
		t.Error("empty thought should have no relationships")
	}
	if !(&Thought{RelatesTo: "thought_1_aaaaa"}).HasRelationships() {
		t.Error("thought with relates_to should report relationships")
	}
	if !(&Thought{RelationshipsIn: []RelationshipRef{{ThoughtID: "x", RelationshipType: RelSupports}}}).HasRelationships() {
		t.Error("thought with incoming refs should report relationships")
	}
}

func TestIDFormat(t *testing.T) {
	sessionPattern := regexp.MustCompile(`^session_\d+_[0-9a-z]{5}$`)
	thoughtPattern := regexp.MustCompile(`^thought_\d+_[0-9a-z]{5}$`)

	for i := 0; i < 50; i++ {
		if id := NewSessionID(); !sessionPattern.MatchString(id) {
			t.Fatalf("NewSessionID() = %q, does not match expected format", id)
		}
		if id := NewThoughtID(); !thoughtPattern.MatchString(id) {
			t.Fatalf("NewThoughtID() = %q, does not match expected format", id)
		}
	}
}
