// Package translate provides language detection and text translation over
// the Google Translate v2 REST API. Both operations fail soft: detection
// falls back to "en" and translation to the input text, so callers never
// branch on a translation error.
package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://translation.googleapis.com/language/translate/v2"
	defaultTimeout = 15 * time.Second

	// FallbackLanguage is returned when detection fails.
	FallbackLanguage = "en"
)

// Translator is the translation collaborator contract.
type Translator interface {
	// DetectLanguage returns the BCP-47 language tag of the text, or
	// FallbackLanguage when detection fails.
	DetectLanguage(ctx context.Context, text string) string

	// Translate returns the text translated to the target language, or
	// the input unchanged when translation fails.
	Translate(ctx context.Context, text, targetLang string) string
}

// Client implements Translator.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// ClientOption is a functional option for configuring a Client.
type ClientOption func(*Client)

// NewClient creates a translate client for the given API key.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithBaseURL overrides the API endpoint (used by tests).
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.http = httpClient
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

type detectResponse struct {
	Data struct {
		Detections [][]struct {
			Language string `json:"language"`
		} `json:"detections"`
	} `json:"data"`
}

type translateResponse struct {
	Data struct {
		Translations []struct {
			TranslatedText string `json:"translatedText"`
		} `json:"translations"`
	} `json:"data"`
}

// DetectLanguage implements Translator.
func (c *Client) DetectLanguage(ctx context.Context, text string) string {
	params := url.Values{}
	params.Set("q", text)

	var out detectResponse
	if err := c.call(ctx, "/detect", params, &out); err != nil {
		c.logger.WarnContext(ctx, "Language detection failed, falling back",
			slog.String("fallback", FallbackLanguage),
			slog.Any("error", err))
		return FallbackLanguage
	}
	if len(out.Data.Detections) == 0 || len(out.Data.Detections[0]) == 0 {
		return FallbackLanguage
	}
	return out.Data.Detections[0][0].Language
}

// Translate implements Translator.
func (c *Client) Translate(ctx context.Context, text, targetLang string) string {
	params := url.Values{}
	params.Set("q", text)
	params.Set("target", targetLang)

	var out translateResponse
	if err := c.call(ctx, "", params, &out); err != nil {
		c.logger.WarnContext(ctx, "Translation failed, returning input unchanged",
			slog.String("target", targetLang),
			slog.Any("error", err))
		return text
	}
	if len(out.Data.Translations) == 0 {
		return text
	}
	return out.Data.Translations[0].TranslatedText
}

func (c *Client) call(ctx context.Context, path string, params url.Values, out any) error {
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+path+"?"+params.Encode(),
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to build translate request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("translate request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read translate response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("translate http %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode translate response: %w", err)
	}
	return nil
}
