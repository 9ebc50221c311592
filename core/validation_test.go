package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEntry_Valid(t *testing.T) {
	entry := &ManifestEntry{Key: "/docs/a.pdf", Status: StatusQueued}
	assert.NoError(t, ValidateEntry(entry))
}

func TestValidateEntry_Nil(t *testing.T) {
	err := ValidateEntry(nil)
	assert.ErrorIs(t, err, ErrInvalidEntry)
}

func TestValidateEntry_EmptyKey(t *testing.T) {
	err := ValidateEntry(&ManifestEntry{Status: StatusQueued})
	assert.ErrorIs(t, err, ErrEmptyKey)
}

func TestValidateEntry_BadStatus(t *testing.T) {
	err := ValidateEntry(&ManifestEntry{Key: "k", Status: "paused"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestValidateEntry_NegativeChunks(t *testing.T) {
	err := ValidateEntry(&ManifestEntry{Key: "k", Status: StatusCompleted, ChunksCount: -1})
	assert.ErrorIs(t, err, ErrInvalidEntry)
}

func TestValidateChunking(t *testing.T) {
	assert.NoError(t, ValidateChunking(500, 200))
	assert.NoError(t, ValidateChunking(500, 0))
	assert.ErrorIs(t, ValidateChunking(0, 0), ErrInvalidChunking)
	assert.ErrorIs(t, ValidateChunking(500, 500), ErrInvalidChunking)
	assert.ErrorIs(t, ValidateChunking(500, -1), ErrInvalidChunking)
}
