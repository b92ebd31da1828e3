package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const tokenKeyPrefix = "launchpath:portal-token:"

// RedisTokenCache caches token resolutions in Redis. Lookup errors are logged
// and reported as misses so a Redis outage degrades to database reads instead
// of portal downtime.
type RedisTokenCache struct {
	client redis.UniversalClient
	logger *slog.Logger
}

// NewRedisTokenCache connects to Redis and verifies the connection.
func NewRedisTokenCache(ctx context.Context, logger *slog.Logger, redisURL string) (*RedisTokenCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisTokenCache{
		client: client,
		logger: logger.With("module", "token_cache"),
	}, nil
}

func (c *RedisTokenCache) Get(ctx context.Context, token string) string {
	value, err := c.client.Get(ctx, tokenKeyPrefix+token).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WarnContext(ctx, "Token cache lookup failed", "error", err)
		}

		return ""
	}

	return value
}

func (c *RedisTokenCache) Set(ctx context.Context, token, onboardingID string, ttl time.Duration) {
	err := c.client.Set(ctx, tokenKeyPrefix+token, onboardingID, ttl).Err()
	if err != nil {
		c.logger.WarnContext(ctx, "Token cache write failed", "error", err)
	}
}

func (c *RedisTokenCache) Invalidate(ctx context.Context, token string) {
	err := c.client.Del(ctx, tokenKeyPrefix+token).Err()
	if err != nil {
		c.logger.WarnContext(ctx, "Token cache invalidation failed", "error", err)
	}
}

func (c *RedisTokenCache) Close() error {
	return c.client.Close()
}
