package domain

import (
	"strings"
)

// NormalizeKey prepares text for use as a store key:
//   - trims leading/trailing whitespace
//   - converts to lowercase
//   - compresses multiple spaces into one
//
// Diacritics, hyphens, and apostrophes are preserved.
func NormalizeKey(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	text = strings.ToLower(text)

	// Compress multiple spaces into one.
	var b strings.Builder
	b.Grow(len(text))
	prevSpace := false
	for _, r := range text {
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

// StripTrailingPunct removes a trailing run of sentence punctuation
// (`.`, `!`, `?`, `,`, `;`, `:`) from s. Translated lemmas arrive with
// sentence-final punctuation attached; the lookup key must not carry it.
func StripTrailingPunct(s string) string {
	s = strings.TrimSpace(s)
	return strings.TrimRight(s, ".!?,;:")
}
