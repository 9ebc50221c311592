package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loamlabs/loam/extract"
)

func TestEnumerateDir_FindsSupportedFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested", "deep"), 0o755))

	for _, name := range []string{
		"a.txt",
		"b.md",
		"c.csv",
		filepath.Join("nested", "d.vtt"),
		filepath.Join("nested", "deep", "e.docx"),
		"ignored.bin",
		"noext",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	items, err := EnumerateDir(dir, extract.DefaultRegistry())
	require.NoError(t, err)

	require.Len(t, items, 5, "unsupported extensions are skipped")
	for _, item := range items {
		assert.True(t, filepath.IsAbs(item.Key()), "keys are absolute paths")
	}
}

func TestEnumerateDir_TypeFilter(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.txt", "b.pdf", "c.PDF", "d.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	items, err := EnumerateDir(dir, extract.DefaultRegistry(), "pdf")
	require.NoError(t, err)

	require.Len(t, items, 2, "filter matches case-insensitively")
	for _, item := range items {
		assert.Equal(t, "pdf", item.TypeHint())
	}
}

func TestEnumerateDir_MissingRoot(t *testing.T) {
	_, err := EnumerateDir(filepath.Join(t.TempDir(), "absent"), extract.DefaultRegistry())
	assert.ErrorIs(t, err, ErrRootNotFound)
}

func TestEnumerateDir_FileRoot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, err := EnumerateDir(path, extract.DefaultRegistry())
	assert.ErrorIs(t, err, ErrRootNotFound)
}

func TestEnumerateDir_EmptyDir(t *testing.T) {
	items, err := EnumerateDir(t.TempDir(), extract.DefaultRegistry())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestFileItem_ChecksumMatchesContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("checksum me"), 0o644))

	item := NewFileItem(path)
	sum1, err := item.Checksum(context.Background())
	require.NoError(t, err)

	sum2, err := item.Checksum(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sum1, sum2, "checksum is stable for unchanged content")

	require.NoError(t, os.WriteFile(path, []byte("checksum me!"), 0o644))
	sum3, err := item.Checksum(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, sum1, sum3, "checksum changes with content")
}
