// Package fetch wraps the HTTP client used to retrieve order history and
// order details pages.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// Client fetches HTML pages from an authenticated browsing session.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

// NewClient builds a page fetcher. An empty userAgent falls back to a
// desktop browser string, since Amazon serves a different DOM to unknown
// agents.
func NewClient(userAgent string, logger *slog.Logger) *Client {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	http := resty.New().
		SetTimeout(30 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(1 * time.Second).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept-Language", "de-DE,de;q=0.9,en;q=0.8")

	return &Client{http: http, logger: logger}
}

// GetHTML fetches a page and returns its body.
func (c *Client) GetHTML(ctx context.Context, url string) (string, error) {
	c.logger.DebugContext(ctx, "fetching page", "url", url)

	resp, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("fetching %s: unexpected status %d", url, resp.StatusCode())
	}
	return resp.String(), nil
}
