package cache

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}

	store, err := NewRedis(redisURL)
	if err != nil {
		t.Skip("Redis not available")
	}
	defer store.Close()

	ctx := context.Background()
	prefix := "/test-redis-store/a.py"
	t.Cleanup(func() { _ = store.Forget(ctx, prefix) })

	_, found, err := store.Lookup(ctx, prefix+":f")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Record(ctx, prefix+":f", "digest1"))
	require.NoError(t, store.Record(ctx, prefix+":g", "digest2"))

	digest, found, err := store.Lookup(ctx, prefix+":f")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "digest1", digest)

	require.NoError(t, store.Forget(ctx, prefix))

	_, found, err = store.Lookup(ctx, prefix+":f")
	require.NoError(t, err)
	assert.False(t, found)
	_, found, err = store.Lookup(ctx, prefix+":g")
	require.NoError(t, err)
	assert.False(t, found)
}
