// Package cache provides the portal token resolution cache. The portal
// authenticates every request by token, so the hot path is token to
// onboarding ID; the cache sits in front of persistence and is always safe to
// miss.
package cache

import (
	"context"
	"time"
)

// TokenCache maps portal tokens to onboarding IDs. Implementations must treat
// every failure as a miss; the authoritative mapping lives in persistence.
type TokenCache interface {
	// Get returns the onboarding ID for the token, or "" on a miss.
	Get(ctx context.Context, token string) string
	Set(ctx context.Context, token, onboardingID string, ttl time.Duration)
	Invalidate(ctx context.Context, token string)
	Close() error
}

// NoopTokenCache is used when no cache backend is configured.
type NoopTokenCache struct{}

func NewNoopTokenCache() *NoopTokenCache {
	return &NoopTokenCache{}
}

func (*NoopTokenCache) Get(_ context.Context, _ string) string { return "" }

func (*NoopTokenCache) Set(_ context.Context, _, _ string, _ time.Duration) {}

func (*NoopTokenCache) Invalidate(_ context.Context, _ string) {}

func (*NoopTokenCache) Close() error { return nil }
