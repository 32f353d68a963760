package redis

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache wraps the redis client. All methods are safe on a nil client;
// the server runs without redis, just slower.
type Cache struct {
	client *redis.Client
}

// New connects to redis at addr. Returns a degraded (nil-client)
// cache when redis is unreachable.
func New(addr string) *Cache {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		log.Println("Redis not available. Running without Redis.")
		return &Cache{}
	}
	log.Println("Redis connected successfully.")
	return &Cache{client: client}
}

// NewWithClient wraps an existing client (tests use miniredis here).
func NewWithClient(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Get reads key into a string. The second return is false on miss,
// error, or disabled cache.
func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	if c == nil || c.client == nil {
		return "", false
	}
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

// Set stores key with a TTL, best-effort.
func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		log.Printf("cache set %s failed: %v", key, err)
	}
}

// Del drops keys, best-effort.
func (c *Cache) Del(ctx context.Context, keys ...string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		log.Printf("cache del failed: %v", err)
	}
}
