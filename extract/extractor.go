package extract

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Options carries format-specific extraction settings.
type Options struct {
	// KeepTimestamps preserves subtitle cue numbering and timestamps
	// verbatim instead of stripping them.
	KeepTimestamps bool

	// Delimiter joins CSV fields within a flattened row. Defaults to " | ".
	Delimiter string
}

// Result is the outcome of a successful extraction.
type Result struct {
	// Text is the extracted plain text.
	Text string

	// Title is a document title when the format carries one, else empty.
	Title string
}

// Extractor converts raw document bytes of one format into plain text.
// Implementations must be safe for concurrent use.
type Extractor interface {
	// Extract converts the payload into plain text.
	// Returns ErrEmptyDocument when the payload has no extractable text and
	// ErrCorruptDocument (possibly wrapped) when it cannot be parsed.
	Extract(ctx context.Context, data []byte, opts Options) (*Result, error)
}

// Registry dispatches extraction to the extractor registered for a type.
type Registry struct {
	extractors map[string]Extractor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{extractors: make(map[string]Extractor)}
}

// DefaultRegistry returns a registry with every built-in format registered:
// plain text, Markdown, CSV, VTT/SRT subtitles, DOCX and PDF.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	text := &TextExtractor{}
	subtitle := &SubtitleExtractor{}
	r.Register(text, "txt", "text", "md", "markdown")
	r.Register(&CSVExtractor{}, "csv")
	r.Register(subtitle, "vtt", "srt")
	r.Register(&DOCXExtractor{}, "docx")
	r.Register(&PDFExtractor{}, "pdf")
	return r
}

// Register binds an extractor to one or more type hints.
func (r *Registry) Register(e Extractor, types ...string) {
	for _, t := range types {
		r.extractors[normalizeType(t)] = e
	}
}

// ExtractorFor returns the extractor registered for a type hint.
func (r *Registry) ExtractorFor(typeHint string) (Extractor, error) {
	e, ok := r.extractors[normalizeType(typeHint)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, typeHint)
	}
	return e, nil
}

// Supports reports whether a type hint has a registered extractor.
func (r *Registry) Supports(typeHint string) bool {
	_, ok := r.extractors[normalizeType(typeHint)]
	return ok
}

// Extract dispatches to the extractor for the given type hint.
func (r *Registry) Extract(ctx context.Context, data []byte, typeHint string, opts Options) (*Result, error) {
	e, err := r.ExtractorFor(typeHint)
	if err != nil {
		return nil, err
	}
	return e.Extract(ctx, data, opts)
}

// TypeHintForPath derives a type hint from a file path's extension.
func TypeHintForPath(path string) string {
	return normalizeType(filepath.Ext(path))
}

// normalizeType lowercases a hint and strips a leading dot, so ".PDF",
// "pdf" and "PDF" all select the same extractor.
func normalizeType(t string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(t)), ".")
}
