// Package shorten wraps the URL-shortening collaborator. Transport file
// URLs are far too long to embed in an imagine prompt, so photo input is
// shortened before it becomes prompt text.
package shorten

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultAPIURL  = "https://tinyurl.com/api-create.php"
	defaultTimeout = 15 * time.Second
)

// Shortener is the URL-shortening collaborator contract.
type Shortener interface {
	// Shorten returns a short equivalent of the URL.
	Shorten(ctx context.Context, longURL string) (string, error)
}

// Client implements Shortener over the TinyURL create API.
type Client struct {
	apiURL string
	http   *http.Client
}

// ClientOption is a functional option for configuring a Client.
type ClientOption func(*Client)

// NewClient creates a shortener client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		apiURL: defaultAPIURL,
		http:   &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithAPIURL overrides the API endpoint (used by tests).
func WithAPIURL(apiURL string) ClientOption {
	return func(c *Client) {
		c.apiURL = apiURL
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.http = httpClient
	}
}

// Shorten implements Shortener.
func (c *Client) Shorten(ctx context.Context, longURL string) (string, error) {
	if longURL == "" {
		return "", fmt.Errorf("shorten failed: url is required")
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		c.apiURL+"?url="+url.QueryEscape(longURL),
		nil,
	)
	if err != nil {
		return "", fmt.Errorf("failed to build shorten request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("shorten request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return "", fmt.Errorf("failed to read shorten response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("shorten http %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	short := strings.TrimSpace(string(raw))
	// The API answers with a plain-HTTP link; upgrade it.
	return strings.Replace(short, "http://", "https://", 1), nil
}
