package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Valid(t *testing.T) {
	assert.True(t, StatusQueued.Valid())
	assert.True(t, StatusProcessing.Valid())
	assert.True(t, StatusCompleted.Valid())
	assert.True(t, StatusError.Valid())
	assert.False(t, Status("done").Valid())
	assert.False(t, Status("").Valid())
}

func TestStatus_Terminal(t *testing.T) {
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusError.Terminal())
	assert.False(t, StatusQueued.Terminal())
	assert.False(t, StatusProcessing.Terminal())
}

func TestPointID_Deterministic(t *testing.T) {
	first := PointID("/docs/report.pdf", 3)
	second := PointID("/docs/report.pdf", 3)
	assert.Equal(t, first, second, "same source/index must produce the same ID")
}

func TestPointID_DistinctAcrossChunks(t *testing.T) {
	ids := map[string]bool{}
	for i := 0; i < 100; i++ {
		ids[PointID("/docs/report.pdf", i)] = true
	}
	assert.Len(t, ids, 100, "each chunk index must map to a distinct ID")
}

func TestPointID_DistinctAcrossSources(t *testing.T) {
	a := PointID("/docs/a.pdf", 0)
	b := PointID("/docs/b.pdf", 0)
	assert.NotEqual(t, a, b)
}

func TestPointID_IsUUID(t *testing.T) {
	id := PointID("https://example.com/page", 12)
	require.Len(t, id, 36)
	assert.Contains(t, id, "-")
}

func TestOperation_Finished(t *testing.T) {
	op := &Operation{Total: 10, Completed: 6, Skipped: 2, Errors: 2}
	assert.True(t, op.Finished())

	op = &Operation{Total: 10, Completed: 6, Skipped: 2, Errors: 1}
	assert.False(t, op.Finished())
}
