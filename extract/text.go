package extract

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

// TextExtractor handles plain text and Markdown payloads.
// Markdown is ingested verbatim; heading markers and emphasis survive
// chunking without harming embeddings.
type TextExtractor struct{}

var _ Extractor = (*TextExtractor)(nil)

// Extract validates the payload as UTF-8 and normalizes line endings.
func (e *TextExtractor) Extract(_ context.Context, data []byte, _ Options) (*Result, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: invalid UTF-8", ErrCorruptDocument)
	}

	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyDocument
	}

	return &Result{Text: text}, nil
}
