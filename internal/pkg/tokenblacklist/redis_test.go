package tokenblacklist

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs only against a live server, e.g. REDIS_TEST_ADDR=localhost:6379
func TestRedis_RevokeRoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	ctx := context.Background()
	client, err := NewRedisClient(ctx, addr, "", 0)
	require.NoError(t, err)
	defer client.Close()

	bl := NewRedis(client)
	jti := uuid.NewString()

	revoked, err := bl.IsRevoked(ctx, jti)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, bl.Revoke(ctx, jti, time.Now().Add(time.Minute)))
	revoked, err = bl.IsRevoked(ctx, jti)
	require.NoError(t, err)
	assert.True(t, revoked)

	ttl, err := client.TTL(ctx, keyPrefix+jti).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, bl.Revoke(ctx, "expired-"+jti, time.Now().Add(-time.Minute)))
	revoked, _ = bl.IsRevoked(ctx, "expired-"+jti)
	assert.False(t, revoked)
}
