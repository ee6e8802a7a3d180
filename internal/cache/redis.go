package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func NewRedisClient(cfg RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// RedisStore keeps cache entries in redis. Any redis error is reported as
// a miss (or a dropped write); the caller falls through to the upstream.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool) {
	val, err := s.client.Get(ctx, key).Result()

	if err != nil {
		return "", false
	}

	return val, true
}

func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) {
	_ = s.client.Set(ctx, key, value, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, key string) {
	_ = s.client.Del(ctx, key).Err()
}

// Fallback reads through primary then secondary and writes to both. It is
// how the service keeps serving cached responses from the in-process map
// when redis is down.
type Fallback struct {
	primary   Store
	secondary Store
}

func NewFallback(primary, secondary Store) *Fallback {
	return &Fallback{primary: primary, secondary: secondary}
}

func (f *Fallback) Get(ctx context.Context, key string) (string, bool) {
	if val, ok := f.primary.Get(ctx, key); ok {
		return val, true
	}

	return f.secondary.Get(ctx, key)
}

func (f *Fallback) Set(ctx context.Context, key, value string, ttl time.Duration) {
	f.primary.Set(ctx, key, value, ttl)
	f.secondary.Set(ctx, key, value, ttl)
}

func (f *Fallback) Delete(ctx context.Context, key string) {
	f.primary.Delete(ctx, key)
	f.secondary.Delete(ctx, key)
}
