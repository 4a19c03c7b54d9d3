package feeds

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

const (
	maxDescriptionLen = 300
	truncatedBodyLen  = 297
	ellipsis          = "..."
)

var stripPolicy = bluemonday.StrictPolicy()

// Sanitize turns a raw HTML fragment into bounded plain text: all markup is
// stripped, entities are decoded, whitespace runs (including newlines)
// collapse to single spaces, and the result is capped at 300 characters with
// a trailing ellipsis when cut. Empty input yields an empty string.
func Sanitize(raw string) string {
	if raw == "" {
		return ""
	}

	clean := stripPolicy.Sanitize(raw)
	// StrictPolicy re-escapes the surviving text, so decode after stripping.
	clean = html.UnescapeString(clean)
	clean = strings.Join(strings.Fields(clean), " ")

	runes := []rune(clean)
	if len(runes) > maxDescriptionLen {
		clean = string(runes[:truncatedBodyLen]) + ellipsis
	}
	return clean
}
