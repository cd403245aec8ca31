package question

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultCacheTTL = 5 * time.Minute
	bankCacheKey    = "battlebank:v1"
)

// Cache provides Redis-backed bank caching to offload repeated DB reads; the
// bank changes rarely but every matchmade pair needs a slice of it.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache creates a question bank cache.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cache{client: client, ttl: ttl}
}

// Get returns the cached bank, or nil on a miss.
func (c *Cache) Get(ctx context.Context) ([]BattleQuestion, error) {
	data, err := c.client.Get(ctx, bankCacheKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var bank []BattleQuestion
	if err := json.Unmarshal(data, &bank); err != nil {
		return nil, err
	}
	return bank, nil
}

// Set stores the bank for the cache TTL.
func (c *Cache) Set(ctx context.Context, bank []BattleQuestion) error {
	data, err := json.Marshal(bank)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, bankCacheKey, data, c.ttl).Err()
}
