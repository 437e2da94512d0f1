package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKVStore_RoundTrip(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := Connect(ctx, uri)
	require.NoError(t, err)
	defer client.Disconnect(context.Background())

	db := client.Database("tapstampr_test")
	t.Cleanup(func() { _ = db.Drop(context.Background()) })

	s := New(db)

	_, found, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, "k", "v1"))
	require.NoError(t, s.Set(ctx, "k", "v2"))

	v, found, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v2", v)

	require.NoError(t, s.Remove(ctx, "k"))
	_, found, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}
