// Package tokenblacklist provides refresh token blacklists backed by Redis and by process memory.
// The PostgreSQL backend lives with the other repositories.
package tokenblacklist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "blacklist:"

// Redis stores revoked token ids as keys that expire with the token
type Redis struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

// NewRedis wraps a connected client
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client, now: time.Now}
}

// Revoke blacklists jti until expiresAt. Already expired tokens are not stored.
func (r *Redis) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, keyPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}
	return nil
}

// IsRevoked reports whether jti is blacklisted
func (r *Redis) IsRevoked(ctx context.Context, jti string) (bool, error) {
	err := r.client.Get(ctx, keyPrefix+jti).Err()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check token blacklist: %w", err)
}
