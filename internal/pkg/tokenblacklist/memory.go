package tokenblacklist

import (
	"context"
	"sync"
	"time"
)

// Memory keeps revoked token ids in process memory. Entries are dropped lazily once expired.
type Memory struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
	now     func() time.Time
}

// NewMemory creates an empty in-memory blacklist
func NewMemory() *Memory {
	return &Memory{
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Revoke blacklists jti until expiresAt
func (m *Memory) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.purgeLocked()
	if expiresAt.After(m.now()) {
		m.revoked[jti] = expiresAt
	}
	return nil
}

// IsRevoked reports whether jti is blacklisted and not yet expired
func (m *Memory) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	expiresAt, ok := m.revoked[jti]
	return ok && expiresAt.After(m.now()), nil
}

// Len returns the number of stored entries, expired ones included
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.revoked)
}

// PurgeExpired drops expired entries and returns how many were removed
func (m *Memory) PurgeExpired(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.purgeLocked(), nil
}

func (m *Memory) purgeLocked() int64 {
	now := m.now()
	var purged int64
	for jti, expiresAt := range m.revoked {
		if !expiresAt.After(now) {
			delete(m.revoked, jti)
			purged++
		}
	}
	return purged
}
