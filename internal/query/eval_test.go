package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDoc is the value side of a document, shaped the way the codec
// decodes stored JSON.
var testDoc = map[string]any{
	"name":  "Quill",
	"age":   float64(20),
	"alive": true,
	"note":  nil,
	"tags":  []any{"db", "embedded"},
	"owner": map[string]any{"id": "u1"},
}

func mustEval(t *testing.T, f Filter, value any) bool {
	t.Helper()
	ok, err := Eval(f, value)
	require.NoError(t, err)
	return ok
}

func TestEval_NilFilterMatchesEverything(t *testing.T) {
	assert.True(t, mustEval(t, nil, testDoc))
}

func TestEval_Compare(t *testing.T) {
	tests := []struct {
		name string
		f    Filter
		want bool
	}{
		{"eq string", Compare{Op: OpEq, Path: Path{"name"}, Value: "Quill"}, true},
		{"eq mismatched", Compare{Op: OpEq, Path: Path{"name"}, Value: "Ink"}, false},
		{"eq int operand vs float doc", Compare{Op: OpEq, Path: Path{"age"}, Value: 20}, true},
		{"eq composite", Compare{Op: OpEq, Path: Path{"owner"}, Value: map[string]any{"id": "u1"}}, true},
		{"eq missing path is false", Compare{Op: OpEq, Path: Path{"ghost"}, Value: 1}, false},
		{"ne", Compare{Op: OpNe, Path: Path{"name"}, Value: "Ink"}, true},
		{"ne missing path is true", Compare{Op: OpNe, Path: Path{"ghost"}, Value: 1}, true},
		{"gt true", Compare{Op: OpGt, Path: Path{"age"}, Value: 15}, true},
		{"gt false", Compare{Op: OpGt, Path: Path{"age"}, Value: 20}, false},
		{"gte boundary", Compare{Op: OpGte, Path: Path{"age"}, Value: 20}, true},
		{"lt string", Compare{Op: OpLt, Path: Path{"name"}, Value: "Z"}, true},
		{"lte string boundary", Compare{Op: OpLte, Path: Path{"name"}, Value: "Quill"}, true},
		{"cross-type compare is false", Compare{Op: OpGt, Path: Path{"name"}, Value: 5}, false},
		{"bool is not ordered", Compare{Op: OpGt, Path: Path{"alive"}, Value: false}, false},
		{"gt on missing path", Compare{Op: OpGt, Path: Path{"ghost"}, Value: 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mustEval(t, tt.f, testDoc))
		})
	}
}

func TestEval_ExistsAndIsNull(t *testing.T) {
	assert.True(t, mustEval(t, Exists{Path: Path{"name"}}, testDoc))
	assert.True(t, mustEval(t, Exists{Path: Path{"note"}}, testDoc), "explicit null exists")
	assert.False(t, mustEval(t, Exists{Path: Path{"ghost"}}, testDoc))

	assert.True(t, mustEval(t, IsNull{Path: Path{"note"}}, testDoc))
	assert.False(t, mustEval(t, IsNull{Path: Path{"name"}}, testDoc))
	assert.False(t, mustEval(t, IsNull{Path: Path{"ghost"}}, testDoc), "missing is not null")
}

func TestEval_MatchAndHasPrefix(t *testing.T) {
	assert.True(t, mustEval(t, Match{Path: Path{"name"}, Pattern: "^Qu"}, testDoc))
	assert.False(t, mustEval(t, Match{Path: Path{"name"}, Pattern: "^qu"}, testDoc))
	assert.True(t, mustEval(t, Match{Path: Path{"name"}, Pattern: "^qu", IgnoreCase: true}, testDoc))
	assert.False(t, mustEval(t, Match{Path: Path{"age"}, Pattern: "2"}, testDoc), "non-string leaf")

	assert.True(t, mustEval(t, HasPrefix{Path: Path{"name"}, Prefix: "Qui"}, testDoc))
	assert.False(t, mustEval(t, HasPrefix{Path: Path{"name"}, Prefix: "qui"}, testDoc))
	assert.False(t, mustEval(t, HasPrefix{Path: Path{"tags"}, Prefix: "d"}, testDoc), "non-string leaf")
}

func TestEval_MatchBadPattern(t *testing.T) {
	_, err := Eval(Match{Path: Path{"name"}, Pattern: "("}, testDoc)
	assert.Error(t, err)
}

func TestEval_Logical(t *testing.T) {
	gt := Compare{Op: OpGt, Path: Path{"age"}, Value: 15}
	eq := Compare{Op: OpEq, Path: Path{"name"}, Value: "Ink"}

	assert.True(t, mustEval(t, And{}, testDoc), "empty and is vacuously true")
	assert.False(t, mustEval(t, Or{}, testDoc), "empty or is false")
	assert.True(t, mustEval(t, And{Filters: []Filter{gt}}, testDoc))
	assert.False(t, mustEval(t, And{Filters: []Filter{gt, eq}}, testDoc))
	assert.True(t, mustEval(t, Or{Filters: []Filter{gt, eq}}, testDoc))
	assert.False(t, mustEval(t, Not{Filter: gt}, testDoc))
	assert.True(t, mustEval(t, Not{Filter: eq}, testDoc))
}

func TestLookup_PathWalking(t *testing.T) {
	v, found := Lookup(testDoc, Path{"tags", 1})
	require.True(t, found)
	assert.Equal(t, "embedded", v)

	v, found = Lookup(testDoc, Path{"owner", "id"})
	require.True(t, found)
	assert.Equal(t, "u1", v)

	_, found = Lookup(testDoc, Path{"tags", 5})
	assert.False(t, found, "index out of range")

	_, found = Lookup(testDoc, Path{"name", "x"})
	assert.False(t, found, "field access on a string")

	v, found = Lookup(testDoc, Path{})
	require.True(t, found, "empty path is the value itself")
	assert.Equal(t, testDoc, v)
}
