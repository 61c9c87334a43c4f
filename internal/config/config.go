// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Veraticus/chibi/internal/speech"
)

// Config is the full runtime configuration, loaded from one YAML file.
// ${VAR} references in the file are expanded from the environment, so
// secrets can stay out of the file itself.
type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Auth     AuthConfig     `yaml:"auth"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Imagine  ImagineConfig  `yaml:"imagine"`
	PlayHT   PlayHTConfig   `yaml:"playht"`
	Google   GoogleConfig   `yaml:"google"`
	Store    StoreConfig    `yaml:"store"`
	Speech   SpeechConfig   `yaml:"speech"`
}

// TelegramConfig configures the chat transport.
type TelegramConfig struct {
	Token string `yaml:"token"`
}

// AuthConfig configures the shared-password gate.
type AuthConfig struct {
	Password string `yaml:"password"`
}

// OpenAIConfig configures chat completion and transcription.
type OpenAIConfig struct {
	APIKey string `yaml:"apiKey"`
	// Model is the default tier for fresh sessions: "3" or "4".
	Model string `yaml:"model"`
	// SystemPromptPath optionally points at a file holding the system
	// prompt; empty means the built-in persona.
	SystemPromptPath string `yaml:"systemPromptPath"`
}

// ImagineConfig configures the image-generation proxy.
type ImagineConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"apiKey"`
}

// PlayHTConfig configures text-to-speech.
type PlayHTConfig struct {
	UserID    string `yaml:"userId"`
	SecretKey string `yaml:"secretKey"`
}

// GoogleConfig configures language detection and translation.
type GoogleConfig struct {
	APIKey string `yaml:"apiKey"`
}

// StoreConfig configures session persistence.
type StoreConfig struct {
	// Type is "memory" or "redis".
	Type          string `yaml:"type"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`
	RedisDB       int    `yaml:"redisDB"`
}

// SpeechConfig configures voice selection.
type SpeechConfig struct {
	// DefaultCountryCodes upgrade bare language codes to full locales,
	// e.g. "en-US" makes "en" resolve to American English voices.
	DefaultCountryCodes []string `yaml:"defaultCountryCodes"`
	// Voices optionally replaces the built-in voice catalog.
	Voices []speech.Voice `yaml:"voices"`
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path) // #nosec G304 - path comes from the CLI flag
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := defaultConfig()
	expanded := os.ExpandEnv(string(raw))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		OpenAI: OpenAIConfig{Model: "3"},
		Store:  StoreConfig{Type: "memory"},
		Speech: SpeechConfig{
			DefaultCountryCodes: []string{"en-US", "de-DE", "es-ES", "fr-FR", "it-IT", "pt-BR", "ru-RU", "ja-JP"},
		},
	}
}

// Validate ensures the configuration is complete enough to start.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Telegram.Token) == "" {
		return fmt.Errorf("config: telegram.token is required")
	}
	if strings.TrimSpace(c.Auth.Password) == "" {
		return fmt.Errorf("config: auth.password is required")
	}
	if strings.TrimSpace(c.OpenAI.APIKey) == "" {
		return fmt.Errorf("config: openai.apiKey is required")
	}
	if c.OpenAI.Model != "3" && c.OpenAI.Model != "4" {
		return fmt.Errorf("config: openai.model must be %q or %q, got %q", "3", "4", c.OpenAI.Model)
	}
	if strings.TrimSpace(c.Imagine.URL) == "" {
		return fmt.Errorf("config: imagine.url is required")
	}
	if strings.TrimSpace(c.PlayHT.UserID) == "" || strings.TrimSpace(c.PlayHT.SecretKey) == "" {
		return fmt.Errorf("config: playht.userId and playht.secretKey are required")
	}
	switch c.Store.Type {
	case "memory":
	case "redis":
		if strings.TrimSpace(c.Store.RedisAddr) == "" {
			return fmt.Errorf("config: store.redisAddr is required for the redis store")
		}
	default:
		return fmt.Errorf("config: store.type must be %q or %q, got %q", "memory", "redis", c.Store.Type)
	}
	return nil
}

// LoadSystemPrompt loads the LLM system prompt from a file and validates
// that it is non-empty.
func LoadSystemPrompt(path string) (string, error) {
	content, err := os.ReadFile(path) // #nosec G304 - path comes from config
	if err != nil {
		return "", fmt.Errorf("failed to read system prompt: %w", err)
	}
	prompt := string(content)
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("system prompt is empty")
	}
	return prompt, nil
}
