package text

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultLookBack is how far, in runes, Split searches backward from a window end for a natural break.
const DefaultLookBack = 500

// Split divides text into ordered chunks of at most maxChunkSize runes.
// Concatenating the chunks reproduces text exactly, even when text is not valid UTF-8;
// each invalid byte then counts as one rune.
//
// Each cut prefers, within DefaultLookBack runes of the window end, a paragraph
// break, then a line break, then sentence-ending punctuation followed by whitespace.
// When none is found the raw window end is used.
func Split(text string, maxChunkSize int) []string {
	return SplitWithLookBack(text, maxChunkSize, DefaultLookBack)
}

// SplitWithLookBack is Split with an explicit look-back distance.
func SplitWithLookBack(text string, maxChunkSize, lookBack int) []string {
	total := utf8.RuneCountInString(text)
	if maxChunkSize <= 0 || total <= maxChunkSize {
		return []string{text}
	}
	if lookBack < 0 {
		lookBack = 0
	}

	chunks := make([]string, 0, total/maxChunkSize+1)
	for text != "" {
		end := runeOffset(text, maxChunkSize)
		if end >= len(text) {
			chunks = append(chunks, text)
			break
		}
		cut := findBreak(text[:end], lookBack)
		chunks = append(chunks, text[:cut])
		text = text[cut:]
	}
	return chunks
}

// findBreak returns the byte offset at which window should be cut.
// The result is always in (0, len(window)].
func findBreak(window string, lookBack int) int {
	floor := len(window)
	for n := 0; n < lookBack && floor > 0; n++ {
		_, size := utf8.DecodeLastRuneInString(window[:floor])
		floor -= size
	}
	tail := window[floor:]

	// paragraph break: cut after "\n\n"
	if i := strings.LastIndex(tail, "\n\n"); i >= 0 {
		return floor + i + 2
	}
	// line break: cut after "\n"
	if i := strings.LastIndexByte(tail, '\n'); i >= 0 {
		return floor + i + 1
	}
	// sentence end: cut after the punctuation and its following whitespace
	for pos := len(tail); pos > 0; {
		r, size := utf8.DecodeLastRuneInString(tail[:pos])
		pos -= size
		if pos > 0 && unicode.IsSpace(r) && isSentenceEnd(tail[pos-1]) {
			return floor + pos + size
		}
	}
	return len(window)
}

func isSentenceEnd(b byte) bool {
	return b == '.' || b == '!' || b == '?'
}
