package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loamlabs/loam/core"
)

func TestOperationRegistry_RegisterAndGet(t *testing.T) {
	r := NewOperationRegistry()

	require.NoError(t, r.Register("op-1", func() {}))

	op, err := r.Get("op-1")
	require.NoError(t, err)
	assert.Equal(t, "op-1", op.ID)
	assert.Equal(t, core.OperationStarting, op.Status)
}

func TestOperationRegistry_DuplicateID(t *testing.T) {
	r := NewOperationRegistry()

	require.NoError(t, r.Register("op-1", func() {}))
	err := r.Register("op-1", func() {})
	assert.ErrorIs(t, err, ErrOperationExists)
}

func TestOperationRegistry_GetUnknown(t *testing.T) {
	r := NewOperationRegistry()

	_, err := r.Get("missing")
	assert.ErrorIs(t, err, ErrOperationNotFound)
}

func TestOperationRegistry_UpdateSnapshot(t *testing.T) {
	r := NewOperationRegistry()
	require.NoError(t, r.Register("op-1", func() {}))

	r.Update(core.Operation{ID: "op-1", Status: core.OperationProcessing, Completed: 5})

	op, err := r.Get("op-1")
	require.NoError(t, err)
	assert.Equal(t, core.OperationProcessing, op.Status)
	assert.Equal(t, 5, op.Completed)
}

func TestOperationRegistry_UpdateUnknownIsIgnored(t *testing.T) {
	r := NewOperationRegistry()

	r.Update(core.Operation{ID: "ghost", Completed: 1})
	_, err := r.Get("ghost")
	assert.ErrorIs(t, err, ErrOperationNotFound)
}

func TestOperationRegistry_CancelKeepsSnapshot(t *testing.T) {
	r := NewOperationRegistry()

	canceled := false
	require.NoError(t, r.Register("op-1", func() { canceled = true }))

	r.Cancel("op-1")
	assert.True(t, canceled)

	_, err := r.Get("op-1")
	assert.NoError(t, err, "cancel must not forget the operation")
}

func TestOperationRegistry_RemoveCancelsAndForgets(t *testing.T) {
	r := NewOperationRegistry()

	canceled := false
	require.NoError(t, r.Register("op-1", func() { canceled = true }))

	r.Remove("op-1")
	assert.True(t, canceled)

	_, err := r.Get("op-1")
	assert.ErrorIs(t, err, ErrOperationNotFound)

	// Freed ID can be reused.
	assert.NoError(t, r.Register("op-1", func() {}))
}

func TestOperationRegistry_List(t *testing.T) {
	r := NewOperationRegistry()
	require.NoError(t, r.Register("op-1", func() {}))
	require.NoError(t, r.Register("op-2", func() {}))

	ops := r.List()
	assert.Len(t, ops, 2)
}
