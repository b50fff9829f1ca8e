// Package text provides utilities for text processing and analysis.
// This package includes reusable functions for character counting, truncation and
// chunking that are shared by the summarization providers and the fallback summarizer.
package text

import (
	"strings"
	"unicode/utf8"
)

// CountRunes counts the number of Unicode characters (runes) in the given text.
// All length thresholds in the summarization pipeline are expressed in runes so that
// multi-byte input such as Japanese text or emoji is measured the same way as ASCII.
//
// Examples:
//
//	CountRunes("hello")     // returns 5
//	CountRunes("hello世界")  // returns 7
//	CountRunes("")          // returns 0
func CountRunes(text string) int {
	return utf8.RuneCountInString(text)
}

// Truncate cuts text to at most limit runes and appends marker when anything was cut.
// A non-positive limit returns the empty string.
func Truncate(text string, limit int, marker string) string {
	if limit <= 0 {
		return ""
	}
	cut := runeOffset(text, limit)
	if cut >= len(text) {
		return text
	}
	return text[:cut] + marker
}

// Sanitize makes text safe to store: invalid UTF-8 sequences become U+FFFD
// and NUL bytes are dropped, since PostgreSQL TEXT columns reject both.
func Sanitize(text string) string {
	text = strings.ToValidUTF8(text, "\uFFFD")
	return strings.ReplaceAll(text, "\x00", "")
}

// runeOffset returns the byte offset just past the first n runes of s, or
// len(s) when s is shorter. Each invalid byte counts as one rune.
func runeOffset(s string, n int) int {
	i := 0
	for ; n > 0 && i < len(s); n-- {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return i
}

// CollapseWhitespace replaces every run of whitespace with a single space and trims both ends.
func CollapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
