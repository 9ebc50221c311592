package extract

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

// SubtitleExtractor handles WebVTT and SRT subtitle files.
// By default cue numbering and timestamp lines are stripped so only the
// spoken text remains; Options.KeepTimestamps preserves the file verbatim.
type SubtitleExtractor struct{}

var _ Extractor = (*SubtitleExtractor)(nil)

// Extract converts subtitle cues into plain text.
func (e *SubtitleExtractor) Extract(_ context.Context, data []byte, opts Options) (*Result, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: invalid UTF-8", ErrCorruptDocument)
	}

	raw := strings.ReplaceAll(string(data), "\r\n", "\n")

	if opts.KeepTimestamps {
		text := strings.TrimSpace(raw)
		if text == "" {
			return nil, ErrEmptyDocument
		}
		return &Result{Text: text}, nil
	}

	var sb strings.Builder
	inNote := false
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			inNote = false
			continue
		case inNote:
			continue
		case strings.HasPrefix(trimmed, "WEBVTT"):
			continue
		case strings.HasPrefix(trimmed, "NOTE"):
			inNote = true
			continue
		case strings.Contains(trimmed, "-->"):
			continue
		case isCueNumber(trimmed):
			continue
		}

		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(trimmed)
	}

	text := sb.String()
	if text == "" {
		return nil, ErrEmptyDocument
	}

	return &Result{Text: text}, nil
}

// isCueNumber reports whether a line is a bare SRT cue counter.
func isCueNumber(line string) bool {
	if line == "" {
		return false
	}
	for _, r := range line {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
