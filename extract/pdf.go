package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor handles PDF documents.
type PDFExtractor struct{}

var _ Extractor = (*PDFExtractor)(nil)

// Extract reads the plain text stream of every page.
func (e *PDFExtractor) Extract(_ context.Context, data []byte, _ Options) (result *Result, err error) {
	// The pdf package panics on some malformed inputs; a corrupt item must
	// not take down the worker.
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: %v", ErrCorruptDocument, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptDocument, err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptDocument, err)
	}

	var sb strings.Builder
	if _, err := io.Copy(&sb, plain); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptDocument, err)
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return nil, ErrEmptyDocument
	}

	return &Result{Text: text}, nil
}
