package chunker

import (
	"strings"
	"unicode/utf8"
)

// Fixed splits text into non-overlapping windows of a fixed character count.
type Fixed struct {
	size int
}

// NewFixed returns a chunker producing windows of size characters.
func NewFixed(size int) *Fixed {
	if size <= 0 {
		size = 500
	}
	return &Fixed{size: size}
}

// Size returns the configured window length.
func (c *Fixed) Size() int { return c.size }

// Chunk splits text using the configured window length.
func (c *Fixed) Chunk(text string) []string {
	return Split(text, c.size)
}

// Split trims text and cuts it into consecutive windows of size characters.
// The last window may be shorter. Joining the result reproduces the trimmed
// input exactly. Blank input yields no chunks.
func Split(text string, size int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	n := utf8.RuneCountInString(text)
	if size <= 0 || n <= size {
		return []string{text}
	}
	chunks := make([]string, 0, (n+size-1)/size)
	start, count := 0, 0
	for i := range text {
		if count == size {
			chunks = append(chunks, text[start:i])
			start, count = i, 0
		}
		count++
	}
	chunks = append(chunks, text[start:])
	return chunks
}
