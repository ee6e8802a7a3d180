package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/nimbusapi/nimbus/internal/cache"
)

func TestMemoryStore_GetBeforeAndAfterTTL(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryStore()

	store.Set(ctx, "k", "v", 50*time.Millisecond)

	got, ok := store.Get(ctx, "k")

	if !ok || got != "v" {
		t.Fatalf("expected hit with %q before ttl, got %q ok=%v", "v", got, ok)
	}

	time.Sleep(60 * time.Millisecond)

	if _, ok := store.Get(ctx, "k"); ok {
		t.Fatal("expected miss after ttl elapsed")
	}
}

func TestMemoryStore_MissOnUnknownKey(t *testing.T) {
	store := cache.NewMemoryStore()

	if _, ok := store.Get(context.Background(), "nope"); ok {
		t.Fatal("expected miss for unknown key")
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryStore()

	store.Set(ctx, "k", "v", time.Minute)
	store.Delete(ctx, "k")

	if _, ok := store.Get(ctx, "k"); ok {
		t.Fatal("expected miss after delete")
	}
}

func TestMemoryStore_SweepDropsExpired(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryStore()

	store.Set(ctx, "old", "v", 10*time.Millisecond)
	store.Set(ctx, "fresh", "v", time.Minute)

	time.Sleep(20 * time.Millisecond)
	store.Sweep()

	if _, ok := store.Get(ctx, "fresh"); !ok {
		t.Fatal("sweep must not evict live entries")
	}

	if _, ok := store.Get(ctx, "old"); ok {
		t.Fatal("sweep must evict expired entries")
	}
}

// flakyStore misses on every read, as a redis-down stand-in.
type flakyStore struct{}

func (flakyStore) Get(context.Context, string) (string, bool)         { return "", false }
func (flakyStore) Set(context.Context, string, string, time.Duration) {}
func (flakyStore) Delete(context.Context, string)                     {}

func TestFallback_ServesFromSecondaryWhenPrimaryMisses(t *testing.T) {
	ctx := context.Background()
	secondary := cache.NewMemoryStore()
	fb := cache.NewFallback(flakyStore{}, secondary)

	fb.Set(ctx, "k", "v", time.Minute)

	got, ok := fb.Get(ctx, "k")

	if !ok || got != "v" {
		t.Fatalf("expected fallback hit, got %q ok=%v", got, ok)
	}
}
