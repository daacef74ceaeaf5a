package kv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLite {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenSQLite_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err, "database file should exist")
}

func TestOpenSQLite_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := OpenSQLite(path)
		require.NoError(t, err, "open iteration %d", i)
		s.Close()
	}
}

func TestSQLite_GetMissingKey(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_PutGetOverwrite(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "a", []byte("one")))
	got, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), got)

	require.NoError(t, s.Put(ctx, "a", []byte("two")))
	got, err = s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), got)
}

func TestSQLite_IterateAscendingKeyOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// Insert out of order; iteration must come back sorted.
	for _, key := range []string{"c", "a", "b", "aa"} {
		require.NoError(t, s.Put(ctx, key, []byte(key)))
	}

	var keys []string
	err := s.Iterate(ctx, func(key string, value []byte) error {
		keys = append(keys, key)
		assert.Equal(t, []byte(key), value)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "aa", "b", "c"}, keys)
}

func TestSQLite_IterateStopsOnCallbackError(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "a", []byte("1")))
	require.NoError(t, s.Put(ctx, "b", []byte("2")))

	var seen int
	err := s.Iterate(ctx, func(string, []byte) error {
		seen++
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, seen)
}

func TestSQLite_ValuesSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	s1, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s1.Put(ctx, "a", []byte("persisted")))
	require.NoError(t, s1.Close())

	s2, err := OpenSQLite(path)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("persisted"), got)
}
