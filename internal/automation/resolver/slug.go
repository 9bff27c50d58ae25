// internal/automation/resolver/slug.go
package resolver

import (
	"regexp"
	"strings"
)

var (
	slugPattern     = regexp.MustCompile(`^[a-z0-9-]+$`)
	nonSlugChars    = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespaceRuns  = regexp.MustCompile(`\s+`)
	hyphenRuns      = regexp.MustCompile(`-{2,}`)
)

// IsSlug reports whether the value already looks like a canonical slug
// rather than a human-entered display name.
func IsSlug(value string) bool {
	return value != "" && slugPattern.MatchString(value)
}

// GenerateSlug deterministically derives a slug from a display name:
// lower-case, whitespace collapsed to hyphens, non-slug characters
// stripped, repeated and edge hyphens collapsed.
func GenerateSlug(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = nonSlugChars.ReplaceAllString(s, "")
	s = whitespaceRuns.ReplaceAllString(s, "-")
	s = hyphenRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
