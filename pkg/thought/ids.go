package thought

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

const (
	base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	suffixLength   = 5
)

// NewSessionID generates a session identifier of the form
// session_<epoch-ms>_<5-char-base36>. Uniqueness is best-effort; callers
// that need a guarantee re-roll against the session index.
func NewSessionID() string {
	return newID("session")
}

// NewThoughtID generates a thought identifier of the form
// thought_<epoch-ms>_<5-char-base36>.
func NewThoughtID() string {
	return newID("thought")
}

func newID(prefix string) string {
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixMilli(), randomSuffix())
}

func randomSuffix() string {
	var b strings.Builder
	b.Grow(suffixLength)
	for i := 0; i < suffixLength; i++ {
		b.WriteByte(base36Alphabet[rand.IntN(len(base36Alphabet))])
	}
	return b.String()
}
