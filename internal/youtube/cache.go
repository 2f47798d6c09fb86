package youtube

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache stores resolved watch URLs by query
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

type memoryEntry struct {
	value   string
	expires time.Time
}

// MemoryCache is an in-process Cache with per-entry expiry
type MemoryCache struct {
	mu    sync.Mutex
	items map[string]memoryEntry
	now   func() time.Time
}

// NewMemoryCache creates an empty cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: make(map[string]memoryEntry), now: time.Now}
}

// Get returns the cached value when present and not expired
func (m *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.items[key]
	if !ok {
		return "", false, nil
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		delete(m.items, key)
		return "", false, nil
	}
	return e.value, true, nil
}

// Set stores value; ttl <= 0 keeps it until the process exits
func (m *MemoryCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.items[key] = e
	return nil
}

// RedisCache shares lookups between processes
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache wraps client; keys are stored under prefix
func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	if prefix == "" {
		prefix = "violaflow:video:"
	}
	return &RedisCache{client: client, prefix: prefix}
}

// Get returns the cached value, treating a missing key as a miss
func (r *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Set stores value with ttl
func (r *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, r.prefix+key, value, ttl).Err()
}

// CachedFinder consults a Cache before delegating to another Finder
type CachedFinder struct {
	next  Finder
	cache Cache
	ttl   time.Duration
	log   *zap.Logger
}

// NewCachedFinder decorates next with cache
func NewCachedFinder(next Finder, cache Cache, ttl time.Duration, log *zap.Logger) *CachedFinder {
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedFinder{next: next, cache: cache, ttl: ttl, log: log}
}

// Find serves from cache, falling back to the wrapped finder. Cache errors only get logged.
func (f *CachedFinder) Find(ctx context.Context, query string) (string, error) {
	key := cacheKey(query)

	if v, ok, err := f.cache.Get(ctx, key); err != nil {
		f.log.Warn("Video cache read failed", zap.Error(err))
	} else if ok {
		return v, nil
	}

	v, err := f.next.Find(ctx, query)
	if err != nil {
		return "", err
	}

	if err := f.cache.Set(ctx, key, v, f.ttl); err != nil {
		f.log.Warn("Video cache write failed", zap.Error(err))
	}
	return v, nil
}

func cacheKey(query string) string {
	return strings.ToLower(strings.Join(strings.Fields(query), " "))
}
