package imagine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Veraticus/chibi/internal/session"
)

const (
	// defaultTimeout covers a full generation round-trip; the backend
	// queues jobs and can take minutes.
	defaultTimeout = 5 * time.Minute
)

// Client implements Generator over an HTTP image-generation proxy.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// ClientOption is a functional option for configuring a Client.
type ClientOption func(*Client)

// NewClient creates a generator client for the given proxy endpoint.
func NewClient(baseURL, apiKey string, opts ...ClientOption) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("imagine client creation failed: base url is required")
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.http = httpClient
	}
}

// wireGeneration is the proxy's result shape for generate/variate calls.
type wireGeneration struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Hash    string `json:"hash"`
	URI     string `json:"uri"`
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

type followupRequest struct {
	MessageID string `json:"message_id"`
	Content   string `json:"content"`
	Hash      string `json:"hash"`
	Index     int    `json:"index"`
}

type upscaleResponse struct {
	URI string `json:"uri"`
}

// Generate implements Generator.
func (c *Client) Generate(ctx context.Context, prompt string) (session.Generation, error) {
	// Chat clients autocorrect "--" into an em dash; the backend only
	// understands the former.
	prompt = strings.ReplaceAll(prompt, "—", "--")

	var result wireGeneration
	err := c.post(ctx, "/imagine", generateRequest{Prompt: prompt}, &result)
	if err != nil {
		return session.Generation{}, fmt.Errorf("generate failed: %w", err)
	}
	if result.ID == "" || result.URI == "" {
		return session.Generation{}, fmt.Errorf("generate returned an empty result")
	}
	return session.Generation{
		ID:      result.ID,
		Content: result.Content,
		Hash:    result.Hash,
		URI:     result.URI,
	}, nil
}

// Upscale implements Generator.
func (c *Client) Upscale(ctx context.Context, gen session.Generation, n int) (string, error) {
	if n < 1 || n > 4 {
		return "", fmt.Errorf("upscale index %d out of range", n)
	}

	req := followupRequest{
		MessageID: gen.ID,
		Content:   gen.Content,
		Hash:      gen.Hash,
		Index:     n,
	}
	var result upscaleResponse
	if err := c.post(ctx, "/upscale", req, &result); err != nil {
		return "", fmt.Errorf("upscale failed: %w", err)
	}
	return result.URI, nil
}

// Variate implements Generator.
func (c *Client) Variate(ctx context.Context, gen session.Generation, n int) (session.Generation, error) {
	if n < 1 || n > 4 {
		return session.Generation{}, fmt.Errorf("variation index %d out of range", n)
	}

	req := followupRequest{
		MessageID: gen.ID,
		Content:   gen.Content,
		Hash:      gen.Hash,
		Index:     n,
	}
	var result wireGeneration
	if err := c.post(ctx, "/variate", req, &result); err != nil {
		return session.Generation{}, fmt.Errorf("variation failed: %w", err)
	}
	if result.ID == "" || result.URI == "" {
		return session.Generation{}, fmt.Errorf("variation returned an empty result")
	}
	return session.Generation{
		ID:      result.ID,
		Content: result.Content,
		Hash:    result.Hash,
		URI:     result.URI,
	}, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("backend http %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
