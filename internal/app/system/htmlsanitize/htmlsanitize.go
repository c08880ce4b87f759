// Package htmlsanitize strips markup from user-entered free text.
//
// Registration notes, addresses and log actions are stored as plain text.
// Anything that looks like HTML is removed before it reaches the store so
// that a front end can render the values without further escaping rules.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// policy removes all elements. Script and style bodies are dropped along
// with their tags.
var policy = bluemonday.StrictPolicy()

// PlainText returns s with every tag removed and entities decoded.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(s)))
}
