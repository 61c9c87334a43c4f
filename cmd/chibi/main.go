// Package main provides the entry point for the chibi assistant bot.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/Veraticus/chibi/internal/bot"
	"github.com/Veraticus/chibi/internal/config"
	"github.com/Veraticus/chibi/internal/imagine"
	"github.com/Veraticus/chibi/internal/llm"
	"github.com/Veraticus/chibi/internal/session"
	"github.com/Veraticus/chibi/internal/shorten"
	"github.com/Veraticus/chibi/internal/speech"
	"github.com/Veraticus/chibi/internal/telegram"
	"github.com/Veraticus/chibi/internal/translate"
)

func main() {
	os.Exit(runMain())
}

func runMain() int {
	var configPath string
	var debug bool

	root := &cobra.Command{
		Use:   "chibi",
		Short: "A chat assistant that talks, listens, and draws",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if debug {
				slog.SetLogLoggerLevel(slog.LevelDebug)
			}
			return run(cmd.Context(), configPath)
		},
		SilenceUsage: true,
	}
	root.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the configuration file")
	root.Flags().BoolVar(&debug, "debug", false, "enable debug logging")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("shutting down gracefully")
		cancel()
	}()

	if err := root.ExecuteContext(ctx); err != nil {
		slog.Error("exiting", slog.Any("error", err))
		return 1
	}
	return 0
}

func run(ctx context.Context, configPath string) error {
	logger := slog.Default()
	logger.InfoContext(ctx, "chibi starting")

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	sessions, err := buildStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := sessions.Close(); closeErr != nil {
			logger.Error("failed to close session store", slog.Any("error", closeErr))
		}
	}()

	client, err := telegram.NewClient(cfg.Telegram.Token)
	if err != nil {
		return fmt.Errorf("failed to create telegram client: %w", err)
	}
	messenger := telegram.NewMessenger(client, logger)

	generator, err := imagine.NewClient(cfg.Imagine.URL, cfg.Imagine.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create image generator: %w", err)
	}

	transcriber, err := speech.NewWhisperTranscriber(cfg.OpenAI.APIKey, os.TempDir(),
		speech.WithTranscriberLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create transcriber: %w", err)
	}

	synthesizer, err := speech.NewHTSynthesizer(cfg.PlayHT.UserID, cfg.PlayHT.SecretKey,
		speech.WithSynthesizerLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create synthesizer: %w", err)
	}

	voices := cfg.Speech.Voices
	if len(voices) == 0 {
		voices = speech.DefaultVoices
	}
	picker := speech.NewPicker(voices, cfg.Speech.DefaultCountryCodes)

	translator := translate.NewClient(cfg.Google.APIKey, translate.WithLogger(logger))

	llmFactory, err := buildLLMFactory(cfg, logger)
	if err != nil {
		return err
	}

	assistant, err := bot.New(messenger, sessions,
		bot.WithLLMFactory(llmFactory),
		bot.WithGenerator(generator),
		bot.WithSplitter(imagine.NewQuadrantSplitter()),
		bot.WithTranscriber(transcriber),
		bot.WithSynthesizer(synthesizer),
		bot.WithVoicePicker(picker),
		bot.WithTranslator(translator),
		bot.WithShortener(shorten.NewClient()),
		bot.WithPassword(cfg.Auth.Password),
		bot.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create bot: %w", err)
	}

	logger.InfoContext(ctx, "chibi ready")
	return assistant.Run(ctx)
}

// buildStore wires the configured session store.
func buildStore(cfg *config.Config) (session.Store, error) {
	opts := []session.StoreOption{
		session.WithDefaultModel(modelTier(cfg.OpenAI.Model)),
	}
	switch cfg.Store.Type {
	case "redis":
		opts = append(opts, session.WithRedisClient(redis.NewClient(&redis.Options{
			Addr:     cfg.Store.RedisAddr,
			Password: cfg.Store.RedisPassword,
			DB:       cfg.Store.RedisDB,
		})))
		return session.NewStore(session.StoreTypeRedis, opts...)
	default:
		return session.NewStore(session.StoreTypeMemory, opts...)
	}
}

// buildLLMFactory returns the per-user LLM constructor, loading the system
// prompt once up front.
func buildLLMFactory(cfg *config.Config, logger *slog.Logger) (bot.LLMFactory, error) {
	var systemPrompt string
	if cfg.OpenAI.SystemPromptPath != "" {
		prompt, err := config.LoadSystemPrompt(cfg.OpenAI.SystemPromptPath)
		if err != nil {
			return nil, err
		}
		systemPrompt = prompt
	}

	return func(model llm.Model) (llm.LLM, error) {
		opts := []llm.ClientOption{
			llm.WithModel(model),
			llm.WithLogger(logger),
		}
		if systemPrompt != "" {
			opts = append(opts, llm.WithSystemPrompt(systemPrompt))
		}
		client, err := llm.NewClient(cfg.OpenAI.APIKey, opts...)
		if err != nil {
			return nil, err
		}
		return client, nil
	}, nil
}

// modelTier maps the config's "3"/"4" shorthand to a model identifier.
func modelTier(tier string) llm.Model {
	if tier == "4" {
		return llm.ModelGPT4
	}
	return llm.ModelGPT3
}
