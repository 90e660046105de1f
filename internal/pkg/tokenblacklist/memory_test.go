package tokenblacklist

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_RevokeAndExpire(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	m := NewMemory()
	m.now = func() time.Time { return clock }

	require.NoError(t, m.Revoke(ctx, "a", clock.Add(time.Hour)))
	require.NoError(t, m.Revoke(ctx, "a", clock.Add(time.Hour)))
	require.NoError(t, m.Revoke(ctx, "stale", clock.Add(-time.Minute)))

	revoked, err := m.IsRevoked(ctx, "a")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, _ = m.IsRevoked(ctx, "stale")
	assert.False(t, revoked)
	assert.Equal(t, 1, m.Len())

	clock = clock.Add(2 * time.Hour)
	revoked, _ = m.IsRevoked(ctx, "a")
	assert.False(t, revoked)

	require.NoError(t, m.Revoke(ctx, "b", clock.Add(time.Hour)))
	assert.Equal(t, 1, m.Len())
}

func TestMemory_PurgeExpired(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	m := NewMemory()
	m.now = func() time.Time { return clock }

	require.NoError(t, m.Revoke(ctx, "short", clock.Add(time.Minute)))
	require.NoError(t, m.Revoke(ctx, "long", clock.Add(time.Hour)))

	purged, err := m.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), purged)

	clock = clock.Add(30 * time.Minute)
	purged, err = m.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
	assert.Equal(t, 1, m.Len())

	revoked, _ := m.IsRevoked(ctx, "long")
	assert.True(t, revoked)
}

func TestMemory_Concurrent(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	exp := time.Now().Add(time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = m.Revoke(ctx, string(rune('a'+i%26)), exp)
			_, _ = m.IsRevoked(ctx, "a")
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 26, m.Len())
}
