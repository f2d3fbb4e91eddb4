package domain

import (
	"strings"
	"unicode"
)

// Classify maps raw input text to its query class. Rules, in order:
// any CJK codepoint forces InputChinese regardless of token count; more than
// one whitespace-separated token is InputPhrase; everything else is InputWord.
// Pure and total; never fails.
func Classify(text string) InputType {
	trimmed := strings.TrimSpace(text)
	for _, r := range trimmed {
		if isCJK(r) {
			return InputChinese
		}
	}
	if len(strings.Fields(trimmed)) > 1 {
		return InputPhrase
	}
	return InputWord
}

// isCJK reports whether r is a CJK ideograph or kana-range codepoint.
// unicode.Han covers the unified ideograph blocks and their extensions.
func isCJK(r rune) bool {
	if unicode.Is(unicode.Han, r) {
		return true
	}
	// CJK symbols and full-width punctuation that accompany Chinese input.
	return r >= 0x3000 && r <= 0x303F || r >= 0xFF00 && r <= 0xFFEF
}
