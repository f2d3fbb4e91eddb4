package wiktionary

import (
	"regexp"
	"strings"
)

var (
	htmlTagRe    = regexp.MustCompile(`<[^>]*>`)
	wikiLinkRe   = regexp.MustCompile(`\[\[([^|\]]*\|)?([^\]]*)\]\]`)
	multiSpaceRe = regexp.MustCompile(`\s{2,}`)
)

// StripMarkup removes HTML tags and wiki-style links from s,
// collapses multiple spaces, and trims whitespace.
func StripMarkup(s string) string {
	if s == "" {
		return ""
	}

	// Remove HTML tags.
	s = htmlTagRe.ReplaceAllString(s, "")

	// Replace wiki links [[link|display]] → display, [[word]] → word.
	s = wikiLinkRe.ReplaceAllString(s, "$2")

	// Collapse multiple whitespace into a single space.
	s = multiSpaceRe.ReplaceAllString(s, " ")

	return strings.TrimSpace(s)
}
