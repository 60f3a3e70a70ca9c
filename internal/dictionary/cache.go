package dictionary

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"legaldoc/internal/models"

	"github.com/redis/go-redis/v9"
)

// Cache stores resolved definitions. Misses and backend failures look the same
// to callers.
type Cache interface {
	Get(ctx context.Context, term string) (models.TermLookupResult, bool)
	Set(ctx context.Context, res models.TermLookupResult, ttl time.Duration) error
}

type memoryEntry struct {
	res     models.TermLookupResult
	expires time.Time
}

type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: map[string]memoryEntry{}, now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context, term string) (models.TermLookupResult, bool) {
	c.mu.RLock()
	e, ok := c.entries[term]
	c.mu.RUnlock()
	if !ok {
		return models.TermLookupResult{}, false
	}
	if !e.expires.IsZero() && c.now().After(e.expires) {
		c.mu.Lock()
		delete(c.entries, term)
		c.mu.Unlock()
		return models.TermLookupResult{}, false
	}
	return e.res, true
}

func (c *MemoryCache) Set(_ context.Context, res models.TermLookupResult, ttl time.Duration) error {
	e := memoryEntry{res: res}
	if ttl > 0 {
		e.expires = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[res.Term] = e
	c.mu.Unlock()
	return nil
}

const redisKeyPrefix = "legaldoc:definition:"

type RedisCache struct {
	rdb *redis.Client
}

func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func (c *RedisCache) Get(ctx context.Context, term string) (models.TermLookupResult, bool) {
	raw, err := c.rdb.Get(ctx, redisKeyPrefix+term).Bytes()
	if err != nil {
		return models.TermLookupResult{}, false
	}
	var res models.TermLookupResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return models.TermLookupResult{}, false
	}
	return res, true
}

func (c *RedisCache) Set(ctx context.Context, res models.TermLookupResult, ttl time.Duration) error {
	b, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, redisKeyPrefix+res.Term, b, ttl).Err()
}
