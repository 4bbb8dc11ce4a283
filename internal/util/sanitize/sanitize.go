// Package sanitize produces filesystem-safe path components from
// API-supplied strings.
//
// Measurement names and device serials come from the BactoCloud API and
// may contain characters that are invalid in directory names on one
// platform or another (slashes, colons, control characters, invisible
// Unicode). The rule here is a whitelist: keep letters, digits, spaces,
// underscores and hyphens, drop everything else.
package sanitize

import (
	"strings"
	"unicode"
)

// FallbackName is used when sanitization leaves nothing behind.
const FallbackName = "unnamed"

// PathComponent returns s reduced to characters that are safe in a
// directory name on Windows, macOS and Linux. Runs of whitespace are
// collapsed to a single space and the result is trimmed. An empty result
// becomes FallbackName.
func PathComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '_' || r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}

	out := strings.TrimSpace(collapseSpaces(b.String()))
	if out == "" {
		return FallbackName
	}
	return out
}

// collapseSpaces replaces runs of spaces with a single space.
func collapseSpaces(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevSpace := false
	for _, r := range s {
		if r == ' ' {
			if prevSpace {
				continue
			}
			prevSpace = true
		} else {
			prevSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
