package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashReader_Deterministic(t *testing.T) {
	first, err := HashReader(strings.NewReader("the quick brown fox"))
	require.NoError(t, err)

	second, err := HashReader(strings.NewReader("the quick brown fox"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64, "256-bit digest hex-encoded")
}

func TestHashReader_SensitiveToContent(t *testing.T) {
	a, err := HashReader(strings.NewReader("content version one"))
	require.NoError(t, err)

	b, err := HashReader(strings.NewReader("content version two"))
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestHashReader_Empty(t *testing.T) {
	sum, err := HashReader(strings.NewReader(""))
	require.NoError(t, err)
	assert.Len(t, sum, 64)
}

func TestHashBytes_MatchesReader(t *testing.T) {
	fromReader, err := HashReader(strings.NewReader("same bytes"))
	require.NoError(t, err)
	assert.Equal(t, fromReader, HashBytes([]byte("same bytes")))
}
