package chunk

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_ReferenceBoundaries(t *testing.T) {
	// 1205 characters with size=500, overlap=200 must produce windows
	// [0,500) [300,800) [600,1100) [900,1205).
	text := strings.Repeat("x", 1205)

	chunks := Split(text, 500, 200)
	require.Len(t, chunks, 4)
	assert.Len(t, chunks[0], 500)
	assert.Len(t, chunks[1], 500)
	assert.Len(t, chunks[2], 500)
	assert.Len(t, chunks[3], 305)
}

func TestSplit_Deterministic(t *testing.T) {
	text := strings.Repeat("lorem ipsum dolor sit amet ", 100)

	first := Split(text, 500, 200)
	second := Split(text, 500, 200)
	assert.Equal(t, first, second)
}

func TestSplit_ShortInput(t *testing.T) {
	chunks := Split("short", 500, 200)
	require.Len(t, chunks, 1)
	assert.Equal(t, "short", chunks[0])
}

func TestSplit_Empty(t *testing.T) {
	assert.Nil(t, Split("", 500, 200))
}

func TestSplit_WhitespaceOnlyWindowsDropped(t *testing.T) {
	text := "abc" + strings.Repeat(" ", 20)
	chunks := Split(text, 10, 0)
	require.Len(t, chunks, 1)
	assert.Equal(t, "abc", chunks[0])
}

func TestSplit_Trimmed(t *testing.T) {
	chunks := Split("  padded  ", 500, 0)
	require.Len(t, chunks, 1)
	assert.Equal(t, "padded", chunks[0])
}

func TestSplit_ZeroOverlap(t *testing.T) {
	text := strings.Repeat("a", 1000)
	chunks := Split(text, 500, 0)
	require.Len(t, chunks, 2)
	assert.Len(t, chunks[0], 500)
	assert.Len(t, chunks[1], 500)
}

func TestSplit_MultibyteRunesStayIntact(t *testing.T) {
	// 400 three-byte runes: byte offsets 500 and 300 both land mid-rune,
	// so window boundaries must back up instead of splitting one.
	text := strings.Repeat("日", 400)

	chunks := Split(text, 500, 200)
	require.NotEmpty(t, chunks)
	for i, c := range chunks {
		assert.True(t, utf8.ValidString(c), "chunk %d must be valid UTF-8", i)
		assert.LessOrEqual(t, len(c), 500)
	}
}

func TestSplit_MixedWidthDeterministic(t *testing.T) {
	text := strings.Repeat("naïve café — 日本語テキスト ", 60)

	first := Split(text, 500, 200)
	second := Split(text, 500, 200)
	require.Equal(t, first, second)
	for i, c := range first {
		assert.True(t, utf8.ValidString(c), "chunk %d must be valid UTF-8", i)
	}
}

func TestSplit_SizeSmallerThanRune(t *testing.T) {
	chunks := Split("日本", 1, 0)
	require.Len(t, chunks, 2)
	assert.Equal(t, "日", chunks[0])
	assert.Equal(t, "本", chunks[1])
}

func TestSplitSource_SequentialIndices(t *testing.T) {
	text := strings.Repeat("y", 1205)
	chunks := SplitSource("/docs/a.txt", text, 500, 200)

	require.Len(t, chunks, 4)
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		assert.Equal(t, "/docs/a.txt", c.SourceID)
		assert.NotEmpty(t, c.Text)
	}
}
