package data

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/prreview-api/internal/testutil"
)

// setupTestRedis creates a Redis client for testing.
// Tests will be skipped if Redis is not available.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	client := testutil.SetupTestRedis(t)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisCacheRepo_Set_Get_Delete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	client := setupTestRedis(t)
	repo := NewRedisCacheRepo(client, "")
	ctx := context.Background()

	t.Run("set and get", func(t *testing.T) {
		ttl := 5 * time.Minute
		require.NoError(t, repo.Set(ctx, "k1", []byte("v1"), ttl))

		got, err := repo.Get(ctx, "k1")
		require.NoError(t, err)
		assert.Equal(t, []byte("v1"), got)

		actualTTL := client.TTL(ctx, DefaultCachePrefix+"k1").Val()
		assert.True(t, actualTTL > 0 && actualTTL <= ttl)
	})

	t.Run("missing key", func(t *testing.T) {
		got, err := repo.Get(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, "k2", []byte("v2"), time.Minute))

		deleted, err := repo.Delete(ctx, "k2")
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = repo.Delete(ctx, "k2")
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("empty key", func(t *testing.T) {
		require.Error(t, repo.Set(ctx, "", []byte("x"), time.Minute))
		_, err := repo.Get(ctx, "")
		require.Error(t, err)
		_, err = repo.Delete(ctx, "")
		require.Error(t, err)
	})

	t.Run("health", func(t *testing.T) {
		require.NoError(t, repo.Health(ctx))
	})
}

func TestRedisCacheRepo_Prefix(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	client := setupTestRedis(t)
	a := NewRedisCacheRepo(client, "a:")
	b := NewRedisCacheRepo(client, "b:")
	ctx := context.Background()

	require.NoError(t, a.Set(ctx, "shared", []byte("from-a"), time.Minute))
	got, err := b.Get(ctx, "shared")
	require.NoError(t, err)
	assert.Nil(t, got)
}
