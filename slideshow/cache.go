package slideshow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache remembers image lookups per query. An empty URL is a valid entry: it
// marks a query that failed or found nothing, so it is not fetched again.
type Cache interface {
	Get(ctx context.Context, query string) (url string, found bool, err error)
	Set(ctx context.Context, query, url string) error
}

// MemoryCache is a process-local Cache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]string)}
}

func (c *MemoryCache) Get(_ context.Context, query string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	url, ok := c.entries[query]
	return url, ok, nil
}

func (c *MemoryCache) Set(_ context.Context, query, url string) error {
	c.mu.Lock()
	c.entries[query] = url
	c.mu.Unlock()
	return nil
}

// RedisConfig configures the shared Redis cache.
type RedisConfig struct {
	Addr     string // e.g. localhost:6379
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// RedisCache shares lookups between players through Redis, with expiring keys.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache connects and verifies the server answers.
func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "briefcast:image:"
	}
	return &RedisCache{client: client, prefix: cfg.Prefix, ttl: cfg.TTL}, nil
}

func (c *RedisCache) key(query string) string { return c.prefix + query }

func (c *RedisCache) Get(ctx context.Context, query string) (string, bool, error) {
	url, err := c.client.Get(ctx, c.key(query)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return url, true, nil
}

func (c *RedisCache) Set(ctx context.Context, query, url string) error {
	return c.client.Set(ctx, c.key(query), url, c.ttl).Err()
}

// Close closes the Redis connection.
func (c *RedisCache) Close() error { return c.client.Close() }
