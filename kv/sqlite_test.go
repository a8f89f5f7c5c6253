package kv

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "dashgrid.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	_, ok, err := s.Get(ctx, "dashboard")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put(ctx, "dashboard", []byte(`{"items":{}}`)))
	require.NoError(t, s.Put(ctx, "dashboard", []byte(`{"items":{"a":{}}}`)))

	v, ok, err := s.Get(ctx, "dashboard")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"items":{"a":{}}}`, string(v))
}

func TestSQLiteStore_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "dashgrid.db")

	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "dashboard", []byte("v1")))
	require.NoError(t, s.Close())

	// migrations must be idempotent across opens
	s, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	v, ok, err := s.Get(ctx, "dashboard")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v1", string(v))
	assert.Equal(t, path, s.Path())
}

func TestSQLiteStore_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	s := newTestSQLite(t)

	require.NoError(t, s.Put(ctx, "a", []byte("1")))
	require.NoError(t, s.Put(ctx, "b", []byte("2")))

	a, _, err := s.Get(ctx, "a")
	require.NoError(t, err)
	b, _, err := s.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "1", string(a))
	assert.Equal(t, "2", string(b))
}

func TestNewSQLiteStore_RequiresPath(t *testing.T) {
	_, err := NewSQLiteStore("")
	assert.Error(t, err)
}
