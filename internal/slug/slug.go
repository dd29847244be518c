package slug

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Make derives a URL-safe slug from a human title: lowercase, runs of
// anything that is not a letter or digit collapse to a single hyphen, and
// leading/trailing hyphens are stripped. Deterministic and I/O free.
func Make(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	pendingHyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}

// WithSuffix appends a monotonic uniqueness suffix. Callers use it after a
// lookup found the plain slug already taken; the check and the insert are
// separate statements, so the storage unique index stays the source of truth.
func WithSuffix(s string) string {
	return fmt.Sprintf("%s-%d", s, time.Now().UnixNano()/int64(time.Millisecond))
}
