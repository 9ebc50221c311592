package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExtractor_FlattensRows(t *testing.T) {
	e := &CSVExtractor{}
	data := []byte("name,role\nada,engineer\ngrace,admiral\n")

	result, err := e.Extract(context.Background(), data, Options{})
	require.NoError(t, err)
	assert.Equal(t, "name | role\nada | engineer\ngrace | admiral", result.Text)
}

func TestCSVExtractor_CustomDelimiter(t *testing.T) {
	e := &CSVExtractor{}
	data := []byte("a,b\n1,2\n")

	result, err := e.Extract(context.Background(), data, Options{Delimiter: "; "})
	require.NoError(t, err)
	assert.Equal(t, "a; b\n1; 2", result.Text)
}

func TestCSVExtractor_RaggedRows(t *testing.T) {
	e := &CSVExtractor{}
	data := []byte("a,b,c\n1,2\n")

	result, err := e.Extract(context.Background(), data, Options{})
	require.NoError(t, err)
	assert.Contains(t, result.Text, "1 | 2")
}

func TestCSVExtractor_Empty(t *testing.T) {
	e := &CSVExtractor{}

	_, err := e.Extract(context.Background(), []byte(""), Options{})
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestCSVExtractor_Corrupt(t *testing.T) {
	e := &CSVExtractor{}
	// Unclosed quote
	_, err := e.Extract(context.Background(), []byte("a,\"b\nc,d"), Options{})
	assert.ErrorIs(t, err, ErrCorruptDocument)
}
