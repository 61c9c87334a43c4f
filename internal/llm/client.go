package llm

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// defaultHistoryLimit caps how many prior exchanges are replayed as
	// conversation memory on each call.
	defaultHistoryLimit = 20
)

// chatCompleter is the slice of the OpenAI client the LLM needs
// (allows mocking in tests).
type chatCompleter interface {
	CreateChatCompletion(
		ctx context.Context,
		request openai.ChatCompletionRequest,
	) (openai.ChatCompletionResponse, error)
}

// Client implements the LLM interface over the OpenAI chat completion API.
type Client struct {
	api          chatCompleter
	systemPrompt string
	logger       *slog.Logger

	mu           sync.Mutex
	model        Model
	temperature  Temperature
	history      []openai.ChatCompletionMessage
	historyLimit int
}

// ClientOption is a functional option for configuring a Client.
type ClientOption func(*Client) error

// NewClient creates an LLM client for the given API key.
func NewClient(apiKey string, opts ...ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("llm client creation failed: api key is required")
	}

	c := &Client{
		api:          openai.NewClient(apiKey),
		logger:       slog.Default(),
		model:        ModelGPT3,
		temperature:  TempInventive,
		historyLimit: defaultHistoryLimit,
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	return c, nil
}

// WithModel sets the initial model tier.
func WithModel(model Model) ClientOption {
	return func(c *Client) error {
		if model == "" {
			return fmt.Errorf("invalid option: model cannot be empty")
		}
		c.model = model
		return nil
	}
}

// WithSystemPrompt sets the system prompt prepended to every conversation.
func WithSystemPrompt(prompt string) ClientOption {
	return func(c *Client) error {
		c.systemPrompt = prompt
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) error {
		if logger == nil {
			return fmt.Errorf("invalid option: logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}

// WithCompleter replaces the OpenAI API client (used by tests).
func WithCompleter(api chatCompleter) ClientOption {
	return func(c *Client) error {
		if api == nil {
			return fmt.Errorf("invalid option: completer cannot be nil")
		}
		c.api = api
		return nil
	}
}

// SetModel switches the model tier. The conversation memory is reset so the
// new model starts from a clean exchange, matching a fresh chat.
func (c *Client) SetModel(model Model) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.model != model {
		c.model = model
		c.history = nil
	}
}

// SetTemperature adjusts the generation temperature.
func (c *Client) SetTemperature(temp Temperature) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.temperature = temp
}

// Ask sends text to the model and returns its reply, maintaining a rolling
// conversation history.
func (c *Client) Ask(ctx context.Context, text string) (string, error) {
	c.mu.Lock()
	messages := make([]openai.ChatCompletionMessage, 0, len(c.history)+2)
	if c.systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: c.systemPrompt,
		})
	}
	messages = append(messages, c.history...)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: text,
	})
	req := openai.ChatCompletionRequest{
		Model:       string(c.model),
		Messages:    messages,
		Temperature: float32(c.temperature),
		MaxTokens:   DefaultMaxTokens,
	}
	c.mu.Unlock()

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	reply := resp.Choices[0].Message.Content

	c.mu.Lock()
	c.history = append(c.history,
		openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: text},
		openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: reply},
	)
	if len(c.history) > c.historyLimit {
		c.history = c.history[len(c.history)-c.historyLimit:]
	}
	c.mu.Unlock()

	return reply, nil
}
