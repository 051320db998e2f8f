// Package cache provides an optional Redis-backed page cache so repeated
// scrapes within the TTL skip the network entirely.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// PageCache stores fetched page HTML keyed by URL.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPageCache connects to Redis and verifies the connection.
func NewPageCache(redisURL string, ttl time.Duration) (*PageCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &PageCache{client: client, ttl: ttl}, nil
}

// Close closes the Redis connection.
func (c *PageCache) Close() error {
	return c.client.Close()
}

// HealthCheck pings Redis to verify the connection.
func (c *PageCache) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Get returns the cached HTML for a URL, or "" on a miss. Cache errors are
// indistinguishable from misses on purpose: the caller refetches either way.
func (c *PageCache) Get(ctx context.Context, url string) string {
	html, err := c.client.Get(ctx, pageKey(url)).Result()
	if err != nil {
		return ""
	}
	return html
}

// Put stores page HTML with the configured TTL.
func (c *PageCache) Put(ctx context.Context, url, html string) error {
	return c.client.Set(ctx, pageKey(url), html, c.ttl).Err()
}

// Invalidate drops cached pages.
func (c *PageCache) Invalidate(ctx context.Context, urls ...string) error {
	keys := make([]string, len(urls))
	for i, u := range urls {
		keys[i] = pageKey(u)
	}
	return c.client.Del(ctx, keys...).Err()
}

func pageKey(url string) string {
	return "aahl:page:" + url
}
