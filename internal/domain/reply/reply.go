// Package reply holds indexed reply candidates and the markup cleanup applied before they are sent.
package reply

import (
	"html"
	"regexp"
	"strings"
)

// Candidate is a single document returned by the reply index.
type Candidate struct {
	ID       string
	Text     string
	QuotedBy int     // popularity: how many times the reply was quoted
	Score    float64 // backend relevance score, boost included
}

// Body returns the sanitized reply text and whether anything sendable is left.
// Markup-only text sanitizes to blank and is not usable.
func (c Candidate) Body() (string, bool) {
	body := Sanitize(c.Text)
	return body, strings.TrimSpace(body) != ""
}

var anchorOpen = regexp.MustCompile(`<A[^>]+>`)

const anchorClose = "</A>"

// Sanitize decodes HTML entities and removes leftover anchor tags from indexed text.
// Passes repeat until the text stops changing, so Sanitize(Sanitize(s)) == Sanitize(s)
// for any depth of escaping.
//
// The loop terminates: a pass never raises the number of '&', and a pass that keeps
// it unchanged only decoded '&'-producing entities or dropped tags, both of which
// shorten the string.
func Sanitize(s string) string {
	for {
		next := sanitizeOnce(s)
		if next == s {
			return s
		}
		s = next
	}
}

func sanitizeOnce(s string) string {
	s = html.UnescapeString(s)
	s = anchorOpen.ReplaceAllString(s, "")
	return strings.ReplaceAll(s, anchorClose, "")
}
