package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_CreatesDatabaseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "library.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err)
	assert.Equal(t, path, s.Path())
}

func TestKVStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := Open(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	defer s.Close()

	_, found, err := s.Get(ctx, "@tapstampr/folders")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, "@tapstampr/folders", "[]"))
	require.NoError(t, s.Set(ctx, "@tapstampr/folders", `[{"id":"1"}]`))

	v, found, err := s.Get(ctx, "@tapstampr/folders")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[{"id":"1"}]`, v)

	require.NoError(t, s.Remove(ctx, "@tapstampr/folders"))
	require.NoError(t, s.Remove(ctx, "never-set"))

	_, found, err = s.Get(ctx, "@tapstampr/folders")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestKVStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "k", "durable"))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	v, found, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "durable", v)
}
