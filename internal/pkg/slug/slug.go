package slug

import (
	"regexp"
	"strings"
)

var (
	invalidChars    = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespaceRuns  = regexp.MustCompile(`\s+`)
	hyphenRuns      = regexp.MustCompile(`-+`)
	leadingTrailing = regexp.MustCompile(`^-|-$`)
)

// Make converts free text into a URL-safe slug. An empty result means the
// input had no usable characters and the caller must reject it.
func Make(value string) string {
	s := strings.ToLower(strings.TrimSpace(value))
	s = invalidChars.ReplaceAllString(s, "")
	s = whitespaceRuns.ReplaceAllString(s, "-")
	s = hyphenRuns.ReplaceAllString(s, "-")
	s = leadingTrailing.ReplaceAllString(s, "")
	return s
}
