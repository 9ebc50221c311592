package ingest

import (
	"context"
	"os"

	"github.com/loamlabs/loam/core"
	"github.com/loamlabs/loam/extract"
)

// Item is one source document flowing through the pipeline.
type Item interface {
	// Key is the stable item key: a normalized absolute file path or a
	// canonical URL.
	Key() string

	// TypeHint selects the extractor for the payload.
	TypeHint() string

	// Title is a display title when the source carries one, else empty.
	Title() string

	// Checksum computes the content hash without requiring the whole
	// payload in memory.
	Checksum(ctx context.Context) (string, error)

	// Content returns the full payload for extraction.
	Content(ctx context.Context) ([]byte, error)
}

// FileItem is an Item backed by a file on disk.
type FileItem struct {
	path string
}

var _ Item = (*FileItem)(nil)

// NewFileItem wraps an absolute, normalized file path.
func NewFileItem(path string) *FileItem {
	return &FileItem{path: path}
}

// Key returns the file path.
func (f *FileItem) Key() string { return f.path }

// TypeHint derives the format from the file extension.
func (f *FileItem) TypeHint() string { return extract.TypeHintForPath(f.path) }

// Title is empty for files; extraction may supply one.
func (f *FileItem) Title() string { return "" }

// Checksum streams the file through the hash, never loading it whole.
func (f *FileItem) Checksum(_ context.Context) (string, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return "", err
	}
	defer file.Close()
	return core.HashReader(file)
}

// Content reads the full file for extraction.
func (f *FileItem) Content(_ context.Context) ([]byte, error) {
	return os.ReadFile(f.path)
}

// PageItem is an Item backed by an already-fetched web page.
type PageItem struct {
	url   string
	title string
	text  string
}

var _ Item = (*PageItem)(nil)

// NewPageItem wraps a crawled page. The URL must already be canonical.
func NewPageItem(url, title, text string) *PageItem {
	return &PageItem{url: url, title: title, text: text}
}

// Key returns the canonical page URL.
func (p *PageItem) Key() string { return p.url }

// TypeHint marks the extracted page text as plain text.
func (p *PageItem) TypeHint() string { return "text" }

// Title returns the page title.
func (p *PageItem) Title() string { return p.title }

// Checksum hashes the extracted page text.
func (p *PageItem) Checksum(_ context.Context) (string, error) {
	return core.HashBytes([]byte(p.text)), nil
}

// Content returns the extracted page text.
func (p *PageItem) Content(_ context.Context) ([]byte, error) {
	return []byte(p.text), nil
}
