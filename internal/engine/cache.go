package engine

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache hit and miss counters.
var (
	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
)

// TieredCache implements L1 (memory) + L2 (Redis) caching.
// L1 is fast but lost on restart. L2 survives restarts.
// A nil *TieredCache is valid and caches nothing.
type TieredCache struct {
	l1              sync.Map      // key → *cacheEntry
	rdb             *redis.Client // nil if Redis unavailable
	ttl             time.Duration
	maxEntries      int
	cleanupInterval time.Duration
	stop            chan struct{}
	stopOnce        sync.Once
}

type cacheEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewTieredCache sets up the 2-tier cache and starts the L1 cleanup loop.
// redisURL can be empty to disable L2.
func NewTieredCache(redisURL string, ttl time.Duration, maxEntries int, cleanupInterval time.Duration) *TieredCache {
	c := &TieredCache{
		ttl:             ttl,
		maxEntries:      maxEntries,
		cleanupInterval: cleanupInterval,
		stop:            make(chan struct{}),
	}

	if redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			slog.Warn("cache: invalid redis URL, L2 disabled", slog.Any("error", err))
		} else {
			rdb := redis.NewClient(opts)
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := rdb.Ping(ctx).Err(); err != nil {
				slog.Warn("cache: redis unreachable, L2 disabled", slog.Any("error", err))
				_ = rdb.Close()
			} else {
				c.rdb = rdb
				slog.Info("cache: L2 redis connected", slog.String("addr", opts.Addr))
			}
		}
	}

	slog.Info("cache: initialized", slog.Duration("ttl", ttl), slog.Bool("redis", c.rdb != nil), slog.Int("max_entries", maxEntries))

	if cleanupInterval > 0 {
		go c.cleanupLoop()
	}
	return c
}

// CacheKey builds a deterministic cache key from parts.
func CacheKey(parts ...string) string {
	joined := strings.Join(parts, "|")
	hash := sha256.Sum256([]byte(joined))
	return fmt.Sprintf("vs:%x", hash[:12])
}

// Get tries L1, then L2. On L2 hit, populates L1.
func (c *TieredCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil {
		cacheMisses.Add(1)
		return nil, false
	}

	if val, ok := c.l1.Load(key); ok {
		entry := val.(*cacheEntry)
		if time.Now().Before(entry.expiresAt) {
			slog.Debug("cache: L1 hit", slog.String("key", key))
			cacheHits.Add(1)
			return entry.data, true
		}
		c.l1.Delete(key)
	}

	if c.rdb != nil {
		data, err := c.rdb.Get(ctx, key).Bytes()
		if err == nil {
			slog.Debug("cache: L2 hit", slog.String("key", key))
			cacheHits.Add(1)
			c.l1.Store(key, &cacheEntry{data: data, expiresAt: time.Now().Add(c.ttl)})
			return data, true
		}
	}

	cacheMisses.Add(1)
	return nil, false
}

// Set stores data in both L1 and L2.
func (c *TieredCache) Set(ctx context.Context, key string, data []byte) {
	if c == nil {
		return
	}

	c.evictIfNeeded()
	c.l1.Store(key, &cacheEntry{data: data, expiresAt: time.Now().Add(c.ttl)})

	if c.rdb != nil {
		if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
			slog.Debug("cache: L2 set failed", slog.Any("error", err))
		}
	}
}

// Close stops the cleanup loop and releases the Redis connection.
func (c *TieredCache) Close() error {
	if c == nil {
		return nil
	}
	c.stopOnce.Do(func() { close(c.stop) })
	if c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}

// LoadJSON reads key and decodes it into T. Corrupt entries count as misses.
func LoadJSON[T any](ctx context.Context, c *TieredCache, key string) (T, bool) {
	var out T
	data, ok := c.Get(ctx, key)
	if !ok {
		return out, false
	}
	if err := json.Unmarshal(data, &out); err != nil {
		slog.Debug("cache: corrupt entry", slog.String("key", key), slog.Any("error", err))
		return out, false
	}
	return out, true
}

// StoreJSON encodes value and stores it under key.
func StoreJSON[T any](ctx context.Context, c *TieredCache, key string, value T) {
	if c == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	c.Set(ctx, key, data)
}

// CacheStats returns current cache hit/miss counters.
func CacheStats() (hits, misses int64) {
	return cacheHits.Load(), cacheMisses.Load()
}

func (c *TieredCache) len() int {
	n := 0
	c.l1.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// evictIfNeeded removes entries when L1 reaches maxEntries.
// Expired entries go first, then the entries closest to expiry.
func (c *TieredCache) evictIfNeeded() {
	if c.maxEntries <= 0 {
		return
	}

	count := c.len()
	if count < c.maxEntries {
		return
	}

	now := time.Now()
	c.l1.Range(func(key, val any) bool {
		if entry, ok := val.(*cacheEntry); ok && now.After(entry.expiresAt) {
			c.l1.Delete(key)
			count--
		}
		return count >= c.maxEntries
	})

	for count >= c.maxEntries {
		var oldestKey any
		oldestAt := now.Add(c.ttl + time.Hour)
		c.l1.Range(func(key, val any) bool {
			if entry, ok := val.(*cacheEntry); ok && entry.expiresAt.Before(oldestAt) {
				oldestKey = key
				oldestAt = entry.expiresAt
			}
			return true
		})
		if oldestKey == nil {
			return
		}
		c.l1.Delete(oldestKey)
		count--
	}
}

func (c *TieredCache) cleanupLoop() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			now := time.Now()
			c.l1.Range(func(key, val any) bool {
				if entry, ok := val.(*cacheEntry); ok && now.After(entry.expiresAt) {
					c.l1.Delete(key)
				}
				return true
			})
		}
	}
}
