package bootstrap_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/abroadcrm/internal/bootstrap"
	"github.com/yigit/abroadcrm/internal/pkg/tokenblacklist"
)

type countingBlacklist struct {
	purged int64
	err    error
	calls  int
}

func (b *countingBlacklist) Revoke(context.Context, string, time.Time) error { return nil }

func (b *countingBlacklist) IsRevoked(context.Context, string) (bool, error) { return false, nil }

func (b *countingBlacklist) PurgeExpired(context.Context) (int64, error) {
	b.calls++
	return b.purged, b.err
}

type ttlBlacklist struct{}

func (ttlBlacklist) Revoke(context.Context, string, time.Time) error { return nil }

func (ttlBlacklist) IsRevoked(context.Context, string) (bool, error) { return false, nil }

func TestPurgeExpiredTokens(t *testing.T) {
	ctx := context.Background()

	t.Run("purging backend", func(t *testing.T) {
		bl := &countingBlacklist{purged: 3}
		purged, err := bootstrap.PurgeExpiredTokens(ctx, bl, zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, int64(3), purged)
		assert.Equal(t, 1, bl.calls)
	})

	t.Run("purge error", func(t *testing.T) {
		bl := &countingBlacklist{err: errors.New("connection refused")}
		_, err := bootstrap.PurgeExpiredTokens(ctx, bl, zerolog.Nop())
		assert.Error(t, err)
	})

	t.Run("self expiring backend", func(t *testing.T) {
		purged, err := bootstrap.PurgeExpiredTokens(ctx, ttlBlacklist{}, zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, int64(0), purged)
	})

	t.Run("memory backend", func(t *testing.T) {
		bl := tokenblacklist.NewMemory()
		require.NoError(t, bl.Revoke(ctx, "soon", time.Now().Add(20*time.Millisecond)))
		require.NoError(t, bl.Revoke(ctx, "later", time.Now().Add(time.Hour)))
		time.Sleep(50 * time.Millisecond)

		purged, err := bootstrap.PurgeExpiredTokens(ctx, bl, zerolog.Nop())
		require.NoError(t, err)
		assert.Equal(t, int64(1), purged)
		assert.Equal(t, 1, bl.Len())
	})
}
