package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"taskhub/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TTL for cached records.
const TTL = time.Hour

// EvictedTTL is how long an evicted key refuses to be re-populated. A read
// that loaded the row before a write landed cannot cache it afterwards.
const EvictedTTL = 30 * time.Second

const evicted = "\x00evicted"

// Cache is a JSON read-through cache. A miss and a backend failure look
// the same to callers; failures are logged, never returned. Set only fills
// an empty key, and Delete blocks Set on that key for EvictedTTL.
type Cache interface {
	Get(ctx context.Context, key string, dst any) bool
	Set(ctx context.Context, key string, value any)
	Delete(ctx context.Context, keys ...string)
}

func TaskKey(kind string, id uuid.UUID) string {
	return fmt.Sprintf("task:%s:%s", kind, id)
}

func UserKey(id uuid.UUID) string {
	return fmt.Sprintf("user:%s", id)
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client, ttl: TTL}
}

func (c *RedisCache) Get(ctx context.Context, key string, dst any) bool {
	cached, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.ErrorLogger.Error("Error reading cache", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if cached == evicted {
		return false
	}
	if err := json.Unmarshal([]byte(cached), dst); err != nil {
		logger.ErrorLogger.Error("Error decoding cached value", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *RedisCache) Set(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		logger.ErrorLogger.Error("Error encoding value for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.SetNX(ctx, key, data, c.ttl).Err(); err != nil {
		logger.ErrorLogger.Error("Error caching value", zap.String("key", key), zap.Error(err))
	}
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) {
	pipe := c.client.TxPipeline()
	for _, key := range keys {
		pipe.SetEX(ctx, key, evicted, EvictedTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logger.ErrorLogger.Error("Error evicting cache", zap.Strings("keys", keys), zap.Error(err))
	}
}

// Noop is used when Redis is disabled.
type Noop struct{}

func (Noop) Get(context.Context, string, any) bool { return false }
func (Noop) Set(context.Context, string, any)      {}
func (Noop) Delete(context.Context, ...string)     {}
