// Package dohod scrapes the dividend analytics pages of dohod.ru:
// the main table listing all assets with their upcoming payouts, and the
// per-asset payment history tables.
package dohod

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aakulov/divcast/pkg/httputil"
	"github.com/aakulov/divcast/pkg/redis"
)

// Client handles communication with the dividend site.
type Client struct {
	httpClient *httputil.Client
	cache      *redis.PageCache
	log        zerolog.Logger
	baseURL    string
}

// NewClient creates a new dividend-site client. cache may be a disabled
// page cache; fetches then always hit the network.
func NewClient(httpClient *httputil.Client, cache *redis.PageCache, baseURL string, log zerolog.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		cache:      cache,
		log:        log.With().Str("component", "dohod.client").Logger(),
		baseURL:    baseURL,
	}
}

// BaseURL returns the configured main page URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// fetchHTML fetches a page, serving from the page cache when possible.
func (c *Client) fetchHTML(ctx context.Context, url string) (string, error) {
	if body, ok := c.cache.Get(ctx, url); ok {
		c.log.Debug().Str("url", url).Msg("page cache hit")
		return body, nil
	}

	body, err := c.httpClient.GetBody(ctx, url)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}

	if err := c.cache.Set(ctx, url, body); err != nil {
		c.log.Warn().Err(err).Str("url", url).Msg("page cache write failed")
	}

	return body, nil
}
