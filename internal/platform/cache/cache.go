// Package cache provides a Redis-backed read-through cache for catalog
// lookups. All operations are best-effort: a cache failure never fails the
// request, it only skips the cache.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/gold360/backoffice/internal/app/domain/product"
	"github.com/gold360/backoffice/pkg/logger"
)

const productKeyPrefix = "gold360:product:"

// ProductCache caches products by ID in Redis.
type ProductCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, addr string, ttl time.Duration, log *logger.Logger) (*ProductCache, error) {
	if log == nil {
		log = logger.NewDefault("cache")
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return &ProductCache{client: client, ttl: ttl, log: log}, nil
}

// GetProduct returns a cached product, if present.
func (c *ProductCache) GetProduct(ctx context.Context, id string) (product.Product, bool) {
	data, err := c.client.Get(ctx, productKeyPrefix+id).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.WithError(err).Debug("cache read failed")
		}
		return product.Product{}, false
	}
	var p product.Product
	if err := json.Unmarshal(data, &p); err != nil {
		return product.Product{}, false
	}
	return p, true
}

// SetProduct stores a product with the configured TTL.
func (c *ProductCache) SetProduct(ctx context.Context, p product.Product) {
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, productKeyPrefix+p.ID, data, c.ttl).Err(); err != nil {
		c.log.WithError(err).Debug("cache write failed")
	}
}

// InvalidateProduct drops a product from the cache.
func (c *ProductCache) InvalidateProduct(ctx context.Context, id string) {
	if err := c.client.Del(ctx, productKeyPrefix+id).Err(); err != nil {
		c.log.WithError(err).Debug("cache invalidate failed")
	}
}

// Close releases the Redis connection.
func (c *ProductCache) Close() error {
	return c.client.Close()
}
