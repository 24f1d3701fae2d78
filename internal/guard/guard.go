// Package guard bounds the inputs and call rates of the tool surface.
// Validation here covers transport-level hygiene (sizes, control bytes);
// domain validation (modes, relationship wiring) lives in the workspace.
package guard

import (
	"fmt"
	"strings"
)

// Limits bounds the sizes accepted from a tool call.
type Limits struct {
	MaxContentLength int
	MaxTags          int
	MaxTagLength     int
	MaxQueryLength   int
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{
		MaxContentLength: 50000,
		MaxTags:          20,
		MaxTagLength:     100,
		MaxQueryLength:   500,
	}
}

// maxIDLength bounds identifiers; callers may supply their own session
// ids, so no shape beyond hygiene is enforced.
const maxIDLength = 128

// ValidateContent checks reasoning content for size and byte hygiene.
func ValidateContent(content string, limits Limits) error {
	if limits.MaxContentLength > 0 && len(content) > limits.MaxContentLength {
		return fmt.Errorf("content exceeds max length %d", limits.MaxContentLength)
	}
	if strings.Contains(content, "\x00") {
		return fmt.Errorf("content contains null bytes")
	}
	return nil
}

// ValidateTags checks tag count and per-tag shape.
func ValidateTags(tags []string, limits Limits) error {
	if limits.MaxTags > 0 && len(tags) > limits.MaxTags {
		return fmt.Errorf("too many tags: maximum %d", limits.MaxTags)
	}
	for _, tag := range tags {
		if tag == "" {
			return fmt.Errorf("tags must not be empty")
		}
		if limits.MaxTagLength > 0 && len(tag) > limits.MaxTagLength {
			return fmt.Errorf("tag %q exceeds max length %d", tag, limits.MaxTagLength)
		}
		if err := disallowControlChars(tag); err != nil {
			return fmt.Errorf("tag %q: %w", tag, err)
		}
	}
	return nil
}

// ValidateQuery checks a search query for size and byte hygiene.
func ValidateQuery(query string, limits Limits) error {
	if limits.MaxQueryLength > 0 && len(query) > limits.MaxQueryLength {
		return fmt.Errorf("query exceeds max length %d", limits.MaxQueryLength)
	}
	return disallowControlChars(query)
}

// ValidateID checks an identifier for size, byte hygiene, and path
// safety. Identifiers are opaque, so no generated shape is required.
// Empty identifiers are allowed; presence requirements belong to each
// tool.
func ValidateID(id string) error {
	if id == "" {
		return nil
	}
	if len(id) > maxIDLength {
		return fmt.Errorf("identifier exceeds max length %d", maxIDLength)
	}
	if err := disallowControlChars(id); err != nil {
		return fmt.Errorf("identifier %q: %w", id, err)
	}
	if strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return fmt.Errorf("unsafe identifier %q", id)
	}
	return nil
}

func disallowControlChars(s string) error {
	for _, r := range s {
		if r < 32 && r != '\n' && r != '\t' && r != '\r' {
			return fmt.Errorf("contains control characters")
		}
	}
	return nil
}
