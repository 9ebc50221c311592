package extract

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// defaultCSVDelimiter joins the fields of a flattened CSV row.
const defaultCSVDelimiter = " | "

// CSVExtractor flattens CSV rows into delimiter-joined lines rather than
// raw CSV syntax, which reads far better after chunking.
type CSVExtractor struct{}

var _ Extractor = (*CSVExtractor)(nil)

// Extract parses the payload as CSV and emits one flattened line per row.
func (e *CSVExtractor) Extract(_ context.Context, data []byte, opts Options) (*Result, error) {
	delimiter := opts.Delimiter
	if delimiter == "" {
		delimiter = defaultCSVDelimiter
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // ragged rows are common in the wild

	var sb strings.Builder
	rows := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptDocument, err)
		}

		line := strings.TrimSpace(strings.Join(record, delimiter))
		if line == "" || strings.Trim(line, delimiter+" ") == "" {
			continue
		}
		if rows > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(line)
		rows++
	}

	if rows == 0 {
		return nil, ErrEmptyDocument
	}

	return &Result{Text: sb.String()}, nil
}
