package auth

import (
	"context"
	"sync"
	"time"
)

// Blacklist records revoked token identifiers until the token's natural
// expiry. Entries are keyed by JTI, never by the raw token.
type Blacklist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type MemoryBlacklist struct {
	mu sync.RWMutex
	m  map[string]time.Time
}

func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{
		m: make(map[string]time.Time),
	}
}

func (b *MemoryBlacklist) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	b.mu.Lock()
	b.m[jti] = time.Now().Add(ttl)
	b.mu.Unlock()

	return nil
}

func (b *MemoryBlacklist) IsRevoked(_ context.Context, jti string) (bool, error) {
	now := time.Now()

	b.mu.RLock()
	exp, ok := b.m[jti]
	b.mu.RUnlock()

	if !ok {
		return false, nil
	}

	if now.After(exp) {
		// token itself has expired, the entry no longer matters
		b.mu.Lock()
		delete(b.m, jti)
		b.mu.Unlock()

		return false, nil
	}

	return true, nil
}
