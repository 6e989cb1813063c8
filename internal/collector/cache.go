package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"StockVision/internal/model"
)

// BarCache stores fetched bars for a short time so repeated requests
// for the same symbol do not hit the data source.
type BarCache interface {
	Get(ctx context.Context, key string) ([]model.OHLCV, bool, error)
	Set(ctx context.Context, key string, bars []model.OHLCV, ttl time.Duration) error
}

type memoryEntry struct {
	bars    []model.OHLCV
	expires time.Time
}

// MemoryBarCache is an in-process BarCache.
type MemoryBarCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryBarCache creates an empty in-process cache.
func NewMemoryBarCache() *MemoryBarCache {
	return &MemoryBarCache{entries: make(map[string]memoryEntry), now: time.Now}
}

func (c *MemoryBarCache) Get(_ context.Context, key string) ([]model.OHLCV, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if c.now().After(e.expires) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false, nil
	}
	return append([]model.OHLCV(nil), e.bars...), true, nil
}

func (c *MemoryBarCache) Set(_ context.Context, key string, bars []model.OHLCV, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{bars: append([]model.OHLCV(nil), bars...), expires: c.now().Add(ttl)}
	return nil
}

// RedisBarCache implements BarCache on Redis with JSON payloads.
type RedisBarCache struct {
	client *redis.Client
	prefix string
}

// NewRedisBarCache connects to Redis and verifies the connection.
func NewRedisBarCache(addr, password string, db int) (*RedisBarCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisBarCache{client: client, prefix: "stockvision"}, nil
}

func (c *RedisBarCache) key(k string) string { return c.prefix + ":" + k }

func (c *RedisBarCache) Get(ctx context.Context, key string) ([]model.OHLCV, bool, error) {
	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var bars []model.OHLCV
	if err := json.Unmarshal(data, &bars); err != nil {
		return nil, false, fmt.Errorf("decode cached bars: %w", err)
	}
	return bars, true, nil
}

func (c *RedisBarCache) Set(ctx context.Context, key string, bars []model.OHLCV, ttl time.Duration) error {
	data, err := json.Marshal(bars)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(key), data, ttl).Err()
}

// Close closes the Redis connection.
func (c *RedisBarCache) Close() error {
	return c.client.Close()
}
