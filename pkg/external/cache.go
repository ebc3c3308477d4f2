package external

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ra-risk-server/internal/domain"
)

const probabilityKeyPrefix = "ra-risk:prob:"

// RedisCache stores predictor output in Redis so replicas share it.
type RedisCache struct {
	redis      *redis.Client
	defaultTTL time.Duration
}

// CachedProbability represents a cached probability with metadata
type CachedProbability struct {
	Probability float64   `json:"probability"`
	CachedAt    time.Time `json:"cached_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// NewRedisCache creates a new cache client and pings the server.
func NewRedisCache(ctx context.Context, config domain.CacheConfig) (*RedisCache, error) {
	opts, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	if config.PoolSize > 0 {
		opts.PoolSize = config.PoolSize
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return newRedisCacheFromClient(client, config.TTL), nil
}

func newRedisCacheFromClient(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl == 0 {
		ttl = time.Hour
	}
	return &RedisCache{redis: client, defaultTTL: ttl}
}

// GetProbability retrieves a cached probability
func (c *RedisCache) GetProbability(ctx context.Context, key string) (float64, bool, error) {
	redisKey := probabilityKeyPrefix + key

	val, err := c.redis.Get(ctx, redisKey).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get cached probability: %w", err)
	}

	var cached CachedProbability
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		// Remove corrupted cache entry
		c.redis.Del(ctx, redisKey)
		return 0, false, nil
	}

	if time.Now().After(cached.ExpiresAt) {
		c.redis.Del(ctx, redisKey)
		return 0, false, nil
	}

	return cached.Probability, true, nil
}

// SetProbability caches a probability
func (c *RedisCache) SetProbability(ctx context.Context, key string, probability float64, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.defaultTTL
	}

	now := time.Now()
	data, err := json.Marshal(CachedProbability{
		Probability: probability,
		CachedAt:    now,
		ExpiresAt:   now.Add(ttl),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal cached probability: %w", err)
	}

	return c.redis.Set(ctx, probabilityKeyPrefix+key, data, ttl).Err()
}

// Ping checks the Redis connection.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.redis.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	return c.redis.Close()
}
