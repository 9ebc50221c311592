// Package chunk provides a deterministic sliding-window text splitter.
package chunk

import (
	"strings"
	"unicode/utf8"

	"github.com/loamlabs/loam/core"
)

// DefaultSize is the default number of characters per chunk.
const DefaultSize = 500

// DefaultOverlap is the default number of overlapping characters.
const DefaultOverlap = 200

// Split divides text into overlapping windows of at most size bytes.
// Starting at offset 0, each window covers [start, min(start+size, len));
// the window text is whitespace-trimmed and dropped if empty. When a window
// reaches the end of the input the split stops, otherwise the next window
// starts at end-overlap (clamped to >= 0). A boundary that would land inside
// a multibyte rune is backed up to the rune's start, so every chunk is valid
// UTF-8; for ASCII input the windows are exactly size bytes.
//
// Identical (text, size, overlap) inputs always yield an identical sequence,
// which keeps vector point IDs stable across reruns.
func Split(text string, size, overlap int) []string {
	if text == "" || size <= 0 {
		return nil
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + size
		if end >= len(text) {
			end = len(text)
		} else {
			end = runeStart(text, end)
			if end == start {
				// size is smaller than the rune at start; take it whole.
				_, n := utf8.DecodeRuneInString(text[start:])
				end = start + n
			}
		}

		if trimmed := strings.TrimSpace(text[start:end]); trimmed != "" {
			chunks = append(chunks, trimmed)
		}

		if end == len(text) {
			break
		}
		next := end - overlap
		if next > 0 {
			next = runeStart(text, next)
		}
		if next <= start {
			next = end
		}
		start = next
	}

	return chunks
}

// runeStart backs i up to the nearest rune boundary at or before it.
func runeStart(text string, i int) int {
	for i > 0 && !utf8.RuneStart(text[i]) {
		i--
	}
	return i
}

// SplitSource splits text and wraps each window as a core.Chunk with a
// sequential 0-based index for the given source.
func SplitSource(sourceID, text string, size, overlap int) []core.Chunk {
	parts := Split(text, size, overlap)
	chunks := make([]core.Chunk, len(parts))
	for i, part := range parts {
		chunks[i] = core.Chunk{
			SourceID: sourceID,
			Index:    i,
			Text:     part,
		}
	}
	return chunks
}
