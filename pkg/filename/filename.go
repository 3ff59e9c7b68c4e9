// Package filename maps arbitrary human-supplied strings to safe,
// bounded-length filesystem names.
package filename

import "strings"

// Fallback is returned when sanitization leaves nothing usable.
const Fallback = "video"

const maxRunes = 200

// Sanitize replaces characters that are illegal on Windows or Unix
// filesystems with underscores, trims surrounding whitespace and caps the
// result at 200 runes. An empty result falls back to "video".
func Sanitize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	out := strings.TrimSpace(b.String())
	if runes := []rune(out); len(runes) > maxRunes {
		out = string(runes[:maxRunes])
	}
	if out == "" {
		return Fallback
	}
	return out
}
