package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff_CreateFromAbsent(t *testing.T) {
	ops, err := Diff(nil, map[string]any{"n": 1})
	require.NoError(t, err)
	require.Len(t, ops, 1)

	assert.Equal(t, "add", ops[0].Op)
	assert.Equal(t, "/root", ops[0].Path)
}

func TestDiff_RemoveToAbsent(t *testing.T) {
	ops, err := Diff(map[string]any{"n": 1}, nil)
	require.NoError(t, err)
	require.Len(t, ops, 1)

	assert.Equal(t, "remove", ops[0].Op)
	assert.Equal(t, "/root", ops[0].Path)
}

func TestDiff_InPlaceChange(t *testing.T) {
	ops, err := Diff(map[string]any{"n": 1, "s": "x"}, map[string]any{"n": 2, "s": "x"})
	require.NoError(t, err)
	require.NotEmpty(t, ops)

	// The unchanged field must not appear in the ops.
	for _, op := range ops {
		assert.NotContains(t, op.Path, "/root/s")
	}
}

func TestDiff_EqualValuesProduceNoOps(t *testing.T) {
	v := map[string]any{"a": []any{1, "two", nil}, "b": map[string]any{"c": true}}

	ops, err := Diff(v, v)
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestDiff_NumericTypesCompareByJSONValue(t *testing.T) {
	// An int written by a caller and the float64 read back from storage
	// encode to the same JSON and must not produce a diff.
	ops, err := Diff(map[string]any{"n": 1}, map[string]any{"n": float64(1)})
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestDiff_AbsentToAbsent(t *testing.T) {
	ops, err := Diff(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, ops)
}

func TestApply_RoundTrip(t *testing.T) {
	prev := map[string]any{"n": float64(1), "tags": []any{"a"}}
	next := map[string]any{"n": float64(2), "tags": []any{"a", "b"}}

	ops, err := Diff(prev, next)
	require.NoError(t, err)

	got, err := Apply(prev, Patch{Version: Version{1, 2}, Ops: ops})
	require.NoError(t, err)
	assert.Equal(t, next, got)
}

func TestApply_CreateAndRemoveTransitions(t *testing.T) {
	value := map[string]any{"n": float64(7)}

	createOps, err := Diff(nil, value)
	require.NoError(t, err)
	created, err := Apply(nil, Patch{Version: Version{1, 1}, Ops: createOps})
	require.NoError(t, err)
	assert.Equal(t, value, created)

	removeOps, err := Diff(value, nil)
	require.NoError(t, err)
	removed, err := Apply(value, Patch{Version: Version{1, 2}, Ops: removeOps})
	require.NoError(t, err)
	assert.Nil(t, removed)
}

func TestApply_NullInsideValueSurvives(t *testing.T) {
	prev := map[string]any{"n": float64(1)}
	next := map[string]any{"n": nil}

	ops, err := Diff(prev, next)
	require.NoError(t, err)
	require.NotEmpty(t, ops)

	got, err := Apply(prev, Patch{Version: Version{1, 2}, Ops: ops})
	require.NoError(t, err)
	assert.Equal(t, next, got)
}
