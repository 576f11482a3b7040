package sanitizer

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strict = bluemonday.StrictPolicy()
	ugc    = bluemonday.UGCPolicy()
)

// Text strips every tag from s and collapses runs of whitespace. Used for titles and names.
func Text(s string) string {
	clean := html.UnescapeString(strict.Sanitize(s))
	return strings.Join(strings.Fields(clean), " ")
}

// RichText keeps the safe subset of user formatting (links, emphasis, lists) and drops
// scripts, handlers and styles.
func RichText(s string) string {
	return strings.TrimSpace(ugc.Sanitize(s))
}
