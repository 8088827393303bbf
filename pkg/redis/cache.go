package redis

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"
)

// PageCache caches scraped HTML pages keyed by URL.
// Avoids re-fetching the same dividend pages within a run window.
type PageCache struct {
	client *Client
	prefix string
	ttl    time.Duration
}

// NewPageCache creates a new page cache.
func NewPageCache(client *Client, prefix string, ttl time.Duration) *PageCache {
	return &PageCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// key hashes the URL so arbitrary query strings stay redis-safe.
func (c *PageCache) key(url string) string {
	sum := sha1.Sum([]byte(url))
	return fmt.Sprintf("%s:page:%s", c.prefix, hex.EncodeToString(sum[:]))
}

// Get retrieves a cached page body. Returns false on miss or when disabled.
func (c *PageCache) Get(ctx context.Context, url string) (string, bool) {
	if !c.client.Enabled() {
		return "", false
	}

	body, err := c.client.Redis().Get(ctx, c.key(url)).Result()
	if err != nil {
		return "", false
	}

	return body, true
}

// Set stores a page body with the configured TTL.
func (c *PageCache) Set(ctx context.Context, url, body string) error {
	if !c.client.Enabled() {
		return nil
	}

	return c.client.Redis().Set(ctx, c.key(url), body, c.ttl).Err()
}

// Delete removes a cached page.
func (c *PageCache) Delete(ctx context.Context, url string) error {
	if !c.client.Enabled() {
		return nil
	}

	return c.client.Redis().Del(ctx, c.key(url)).Err()
}
