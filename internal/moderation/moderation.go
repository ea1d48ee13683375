// Package moderation cleans user-written text before it is stored.
package moderation

import (
	"html"
	"strings"

	goaway "github.com/TwiN/go-away"
	"github.com/microcosm-cc/bluemonday"
)

// Filter strips markup and censors profanity.
type Filter struct {
	policy *bluemonday.Policy
}

func NewFilter() *Filter {
	return &Filter{policy: bluemonday.StrictPolicy()}
}

// Clean returns text without any HTML, trimmed and with profane words masked.
// The result is plain text and must still be escaped when rendered as HTML.
func (f *Filter) Clean(text string) string {
	stripped := html.UnescapeString(f.policy.Sanitize(text))
	stripped = strings.TrimSpace(stripped)
	if stripped == "" {
		return ""
	}
	return goaway.Censor(stripped)
}

// IsProfane reports whether text contains a profane word. Used for usernames,
// which are rejected rather than masked.
func (f *Filter) IsProfane(text string) bool {
	return goaway.IsProfane(text)
}
