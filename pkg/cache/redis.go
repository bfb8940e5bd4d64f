package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to Redis and verifies the connection with a ping.
func NewRedisClient(addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return rdb, nil
}

// ProductCache is a read-through cache for product records. A nil
// *ProductCache is valid and disables caching, so callers never have to
// branch on whether Redis is configured.
type ProductCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewProductCache creates a ProductCache backed by rdb. A zero ttl falls
// back to 30 seconds; stock moves fast, so the window is kept short.
func NewProductCache(rdb *redis.Client, ttl time.Duration) *ProductCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &ProductCache{rdb: rdb, ttl: ttl}
}

func productKey(id string) string {
	return fmt.Sprintf("product:%s", id)
}

// Get loads the cached product with the given id into dest. It returns
// false on a miss or any cache failure; a failing cache must never fail a
// read path.
func (c *ProductCache) Get(ctx context.Context, id string, dest interface{}) bool {
	if c == nil || c.rdb == nil {
		return false
	}
	data, err := c.rdb.Get(ctx, productKey(id)).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		log.Printf("cache: corrupt entry for product %s: %v", id, err)
		return false
	}
	return true
}

// Set stores a product record under its id.
func (c *ProductCache) Set(ctx context.Context, id string, product interface{}) {
	if c == nil || c.rdb == nil {
		return
	}
	data, err := json.Marshal(product)
	if err != nil {
		log.Printf("cache: failed to marshal product %s: %v", id, err)
		return
	}
	if err := c.rdb.Set(ctx, productKey(id), data, c.ttl).Err(); err != nil {
		log.Printf("cache: failed to set product %s: %v", id, err)
	}
}

// Invalidate drops the cached entry for a product. Every stock or price
// mutation must call this so reads never serve stale quantities beyond
// the TTL window.
func (c *ProductCache) Invalidate(ctx context.Context, id string) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, productKey(id)).Err(); err != nil {
		log.Printf("cache: failed to invalidate product %s: %v", id, err)
	}
}
