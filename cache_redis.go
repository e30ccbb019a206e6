package i18n

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache is a ResultCache backed by a shared Redis instance, for
// deployments where several processes should reuse resolved strings. Unlike
// MemoryCache it trades the never-blocks property for sharing; eviction is
// left to Redis via the optional TTL. Backend failures degrade to cache
// misses or dropped writes and are logged, never surfacing into resolution.
type RedisCache struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
	logger *log.Logger
}

var _ ResultCache = (*RedisCache)(nil)

// RedisCacheOption tweaks a RedisCache.
type RedisCacheOption func(*RedisCache)

// WithRedisPrefix namespaces every key; the default is "i18n:".
func WithRedisPrefix(prefix string) RedisCacheOption {
	return func(c *RedisCache) {
		c.prefix = prefix
	}
}

// WithRedisTTL expires entries after ttl. Zero keeps them until invalidated.
func WithRedisTTL(ttl time.Duration) RedisCacheOption {
	return func(c *RedisCache) {
		c.ttl = ttl
	}
}

func WithRedisLogger(logger *log.Logger) RedisCacheOption {
	return func(c *RedisCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewRedisCache wraps client as a ResultCache.
func NewRedisCache(client redis.Cmdable, opts ...RedisCacheOption) *RedisCache {
	c := &RedisCache{
		client: client,
		prefix: "i18n:",
		logger: log.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *RedisCache) redisKey(locale, key string) string {
	return c.prefix + locale + "|" + key
}

func (c *RedisCache) Get(locale, key string) (string, bool) {
	value, err := c.client.Get(context.Background(), c.redisKey(locale, key)).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		c.logger.Printf("i18n: redis get %s/%s: %v", locale, key, err)
		return "", false
	}
	return value, true
}

func (c *RedisCache) Set(locale, key, value string) {
	if err := c.client.Set(context.Background(), c.redisKey(locale, key), value, c.ttl).Err(); err != nil {
		c.logger.Printf("i18n: redis set %s/%s: %v", locale, key, err)
	}
}

// InvalidateLocale scans for the locale's namespace and deletes it in
// batches.
func (c *RedisCache) InvalidateLocale(locale string) {
	ctx := context.Background()
	pattern := c.prefix + locale + "|*"

	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			c.logger.Printf("i18n: redis scan %s: %v", locale, err)
			return
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				c.logger.Printf("i18n: redis del %s: %v", locale, err)
				return
			}
		}
		cursor = next
		if cursor == 0 {
			return
		}
	}
}
