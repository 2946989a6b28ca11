package revocation

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// redisClient returns a client against REDIS_ADDR, skipping the test when
// no Redis is available (CI runs these against a service container).
func redisClient(t *testing.T) redis.UniversalClient {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set, skipping Redis-backed tests")
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: 9})
	t.Cleanup(func() {
		_ = client.FlushDB(context.Background()).Err()
		_ = client.Close()
	})
	return client
}

func TestRedisStoreRevoke(t *testing.T) {
	ctx := context.Background()
	s := NewRedisStore(redisClient(t), time.Hour)

	revoked, err := s.IsRevoked(ctx, "token-a")
	require.NoError(t, err)
	require.False(t, revoked)

	require.NoError(t, s.Revoke(ctx, "token-a", time.Now().Add(time.Hour)))

	revoked, err = s.IsRevoked(ctx, "token-a")
	require.NoError(t, err)
	require.True(t, revoked)

	// Revoking an already-expired token is a no-op, not an error.
	require.NoError(t, s.Revoke(ctx, "token-b", time.Now().Add(-time.Minute)))
	revoked, err = s.IsRevoked(ctx, "token-b")
	require.NoError(t, err)
	require.False(t, revoked)
}

func TestRedisStoreCutoffIsMonotonic(t *testing.T) {
	ctx := context.Background()
	s := NewRedisStore(redisClient(t), time.Hour)

	later := time.Now().Truncate(time.Second)
	earlier := later.Add(-time.Hour)

	require.NoError(t, s.MarkLogoutAll(ctx, "u1", later))
	require.NoError(t, s.MarkLogoutAll(ctx, "u1", earlier))

	before, err := s.IssuedBeforeCutoff(ctx, "u1", earlier.Add(time.Minute))
	require.NoError(t, err)
	require.True(t, before)

	before, err = s.IssuedBeforeCutoff(ctx, "u1", later.Add(time.Minute))
	require.NoError(t, err)
	require.False(t, before)
}

func TestRedisStoreAbsentCutoff(t *testing.T) {
	ctx := context.Background()
	s := NewRedisStore(redisClient(t), time.Hour)

	before, err := s.IssuedBeforeCutoff(ctx, "nobody", time.Now())
	require.NoError(t, err)
	require.False(t, before)
}
