package cache

import (
	"context"
	"sync"
	"time"
)

// Store is a TTL'd key/value cache. It is an optimization only: a miss
// (including a backend outage) means the caller goes to the upstream API,
// it never fails a request.
type Store interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

type MemoryStore struct {
	mu sync.RWMutex
	m  map[string]entry
}

type entry struct {
	val string
	exp time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		m: make(map[string]entry),
	}
}

func (c *MemoryStore) Get(_ context.Context, key string) (string, bool) {
	now := time.Now()
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		return "", false
	}

	if now.After(e.exp) {
		c.mu.Lock()
		delete(c.m, key)
		c.mu.Unlock()
		return "", false
	}

	return e.val, true
}

func (c *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	c.mu.Lock()
	c.m[key] = entry{val: value, exp: time.Now().Add(ttl)}
	c.mu.Unlock()
}

func (c *MemoryStore) Delete(_ context.Context, key string) {
	c.mu.Lock()
	delete(c.m, key)
	c.mu.Unlock()
}

// Sweep drops expired entries. Get already evicts lazily, this keeps keys
// that are never read again from piling up.
func (c *MemoryStore) Sweep() {
	now := time.Now()

	c.mu.Lock()
	for k, e := range c.m {
		if now.After(e.exp) {
			delete(c.m, k)
		}
	}
	c.mu.Unlock()
}

// StartSweeper runs Sweep on an interval until the returned stop func is
// called.
func (c *MemoryStore) StartSweeper(interval time.Duration) (stop func()) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.Sweep()
			case <-done:
				return
			}
		}
	}()

	var once sync.Once

	return func() {
		once.Do(func() { close(done) })
	}
}
