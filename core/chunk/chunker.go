// Package chunk splits page text into word-bounded pieces so oversized pages
// can be cut down to an LLM input budget. Words are whitespace-separated
// runs; the original spacing and line breaks inside a piece are preserved.
package chunk

import (
	"strings"
	"unicode"
)

// Chunker splits text into runs of at most ChunkSize words.
type Chunker struct {
	ChunkSize int // number of words per chunk
}

// New creates a Chunker with the given chunk size.
// Defaults to 512 if chunkSize <= 0.
func New(chunkSize int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = 512
	}
	return &Chunker{ChunkSize: chunkSize}
}

// Chunk splits text into consecutive pieces of at most ChunkSize words.
func (c *Chunker) Chunk(text string) []string {
	starts := wordStarts(text)
	if len(starts) == 0 {
		return nil
	}

	var chunks []string
	for i := 0; i < len(starts); i += c.ChunkSize {
		end := len(text)
		if next := i + c.ChunkSize; next < len(starts) {
			end = starts[next]
		}
		chunks = append(chunks, strings.TrimSpace(text[starts[i]:end]))
	}
	return chunks
}

// Head returns the first chunk of text and whether anything was cut off.
func (c *Chunker) Head(text string) (string, bool) {
	chunks := c.Chunk(text)
	if len(chunks) == 0 {
		return "", false
	}
	return chunks[0], len(chunks) > 1
}

// wordStarts returns the byte offset of every word in text.
func wordStarts(text string) []int {
	var starts []int
	inWord := false
	for i, r := range text {
		if unicode.IsSpace(r) {
			inWord = false
			continue
		}
		if !inWord {
			starts = append(starts, i)
			inWord = true
		}
	}
	return starts
}
