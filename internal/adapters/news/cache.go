package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"argusBot/internal/ports"
)

// EventCache stores filtered calendar events under a key for a bounded time.
// Get returns ports.ErrCacheMiss when the key is absent or expired.
type EventCache interface {
	Get(ctx context.Context, key string) ([]Event, error)
	Set(ctx context.Context, key string, events []Event, ttl time.Duration) error
}

type memoryEntry struct {
	events  []Event
	expires time.Time
}

// MemoryCache is a process-local EventCache.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry), now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, ports.ErrCacheMiss
	}
	if !c.now().Before(e.expires) {
		delete(c.entries, key)
		return nil, ports.ErrCacheMiss
	}
	out := make([]Event, len(e.events))
	copy(out, e.events)
	return out, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, events []Event, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	stored := make([]Event, len(events))
	copy(stored, events)
	c.entries[key] = memoryEntry{events: stored, expires: c.now().Add(ttl)}
	return nil
}

const redisKeyPrefix = "argusbot:news:"

// RedisCache shares calendar events between processes through Redis.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to addr and verifies connectivity.
func NewRedisCache(ctx context.Context, addr, password string, db int) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("NewRedisCache failed: %w: %w", ports.ErrConfigurationError, err)
	}
	return &RedisCache{client: client}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]Event, error) {
	raw, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ports.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("RedisCache.Get failed: %w", err)
	}
	var events []Event
	if err := json.Unmarshal(raw, &events); err != nil {
		return nil, fmt.Errorf("RedisCache.Get failed: decode: %w", err)
	}
	return events, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, events []Event, ttl time.Duration) error {
	raw, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("RedisCache.Set failed: encode: %w", err)
	}
	if err := c.client.Set(ctx, redisKeyPrefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("RedisCache.Set failed: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
