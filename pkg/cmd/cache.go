package cmd

import (
	"context"
	"log/slog"

	"github.com/launchpath/launchpath/pkg/cache"
)

// NewTokenCache returns the Redis portal token cache when a Redis URL is
// configured and a no-op cache otherwise. Portal auth works without the
// cache, so an unreachable Redis degrades to direct lookups instead of
// failing startup.
func NewTokenCache(ctx context.Context, logger *slog.Logger, redisURL string) cache.TokenCache {
	if redisURL == "" {
		return cache.NewNoopTokenCache()
	}

	tokenCache, err := cache.NewRedisTokenCache(ctx, logger, redisURL)
	if err != nil {
		logger.Warn("Redis unavailable, portal token caching disabled", "error", err)

		return cache.NewNoopTokenCache()
	}

	return tokenCache
}
