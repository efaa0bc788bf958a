package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"github.com/finrl-desk/internal/models"
)

// ErrCacheMiss is returned when no snapshot is cached
var ErrCacheMiss = errors.New("cache miss")

// Cache holds the latest quote snapshot for a short time
type Cache interface {
	Get(ctx context.Context, key string) ([]models.Quote, error)
	Set(ctx context.Context, key string, quotes []models.Quote, ttl time.Duration) error
}

// MemoryCache is an in-process snapshot cache
type MemoryCache struct {
	store *gocache.Cache
}

// NewMemoryCache creates a MemoryCache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{store: gocache.New(gocache.NoExpiration, time.Minute)}
}

// Get returns a cached snapshot
func (c *MemoryCache) Get(_ context.Context, key string) ([]models.Quote, error) {
	v, ok := c.store.Get(key)
	if !ok {
		return nil, ErrCacheMiss
	}
	quotes := v.([]models.Quote)
	result := make([]models.Quote, len(quotes))
	copy(result, quotes)
	return result, nil
}

// Set stores a snapshot
func (c *MemoryCache) Set(_ context.Context, key string, quotes []models.Quote, ttl time.Duration) error {
	stored := make([]models.Quote, len(quotes))
	copy(stored, quotes)
	c.store.Set(key, stored, ttl)
	return nil
}

// RedisCache shares snapshots between instances through Redis
type RedisCache struct {
	client redis.Cmdable
	prefix string
}

// NewRedisCache creates a RedisCache
func NewRedisCache(client redis.Cmdable) *RedisCache {
	return &RedisCache{client: client, prefix: "market:"}
}

// Get returns a cached snapshot
func (c *RedisCache) Get(ctx context.Context, key string) ([]models.Quote, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}

	var quotes []models.Quote
	if err := json.Unmarshal(data, &quotes); err != nil {
		return nil, fmt.Errorf("decode cached snapshot: %w", err)
	}
	return quotes, nil
}

// Set stores a snapshot with expiry
func (c *RedisCache) Set(ctx context.Context, key string, quotes []models.Quote, ttl time.Duration) error {
	data, err := json.Marshal(quotes)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.prefix+key, data, ttl).Err()
}

var (
	_ Cache = (*MemoryCache)(nil)
	_ Cache = (*RedisCache)(nil)
	_ Feed  = (*SimulatedFeed)(nil)
)
