// Package bot orchestrates one conversational turn end to end: auth gate,
// input normalization, intent dispatch, and the imagine/variate/upscale and
// speech follow-up workflows.
package bot

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/Veraticus/chibi/internal/imagine"
	"github.com/Veraticus/chibi/internal/intent"
	"github.com/Veraticus/chibi/internal/llm"
	"github.com/Veraticus/chibi/internal/session"
	"github.com/Veraticus/chibi/internal/shorten"
	"github.com/Veraticus/chibi/internal/speech"
	"github.com/Veraticus/chibi/internal/telegram"
	"github.com/Veraticus/chibi/internal/translate"
)

// speakButtonThreshold is the reply body length above which a speak button
// is attached.
const speakButtonThreshold = 100

// synthesizeAttempts is how many times voice delivery is retried before
// giving up silently.
const synthesizeAttempts = 3

// LLMFactory creates a fresh conversation-scoped language model client for
// a user, starting at the given model tier.
type LLMFactory func(model llm.Model) (llm.LLM, error)

// Bot is the per-turn orchestrator. One Bot serves all users; per-user
// state lives in sessions and in the per-user LLM table.
type Bot struct {
	messenger   telegram.Messenger
	heartbeats  telegram.HeartbeatFactory
	sessions    session.Store
	newLLM      LLMFactory
	generator   imagine.Generator
	splitter    imagine.Splitter
	transcriber speech.Transcriber
	synthesizer speech.Synthesizer
	voices      *speech.Picker
	translator  translate.Translator
	classifier  *intent.Classifier
	shortener   shorten.Shortener
	password    string
	messages    Messages
	logger      *slog.Logger

	mu   sync.Mutex
	llms map[int64]llm.LLM
}

// Option configures a Bot.
type Option func(*Bot) error

// New creates the orchestrator. Messenger and session store are the primary
// dependencies; everything else arrives via options and is validated after
// they apply.
func New(messenger telegram.Messenger, sessions session.Store, opts ...Option) (*Bot, error) {
	if messenger == nil {
		return nil, fmt.Errorf("bot creation failed: messenger is required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("bot creation failed: session store is required")
	}

	b := &Bot{
		messenger: messenger,
		sessions:  sessions,
		messages:  DefaultMessages(),
		logger:    slog.Default(),
		llms:      make(map[int64]llm.LLM),
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if b.newLLM == nil {
		return nil, fmt.Errorf("bot creation failed: LLM factory is required")
	}
	if b.generator == nil {
		return nil, fmt.Errorf("bot creation failed: image generator is required")
	}
	if b.splitter == nil {
		return nil, fmt.Errorf("bot creation failed: image splitter is required")
	}
	if b.transcriber == nil {
		return nil, fmt.Errorf("bot creation failed: transcriber is required")
	}
	if b.synthesizer == nil {
		return nil, fmt.Errorf("bot creation failed: synthesizer is required")
	}
	if b.translator == nil {
		return nil, fmt.Errorf("bot creation failed: translator is required")
	}
	if b.shortener == nil {
		return nil, fmt.Errorf("bot creation failed: URL shortener is required")
	}
	if b.password == "" {
		return nil, fmt.Errorf("bot creation failed: auth password is required")
	}
	if b.voices == nil {
		b.voices = speech.NewPicker(speech.DefaultVoices, nil)
	}
	if b.classifier == nil {
		b.classifier = intent.NewClassifier(b.translator)
	}
	if b.heartbeats == nil {
		b.heartbeats = telegram.NewHeartbeatFactory(messenger, telegram.WithHeartbeatLogger(b.logger))
	}

	return b, nil
}

// WithLLMFactory sets the per-user LLM constructor.
func WithLLMFactory(factory LLMFactory) Option {
	return func(b *Bot) error {
		if factory == nil {
			return fmt.Errorf("LLM factory cannot be nil")
		}
		b.newLLM = factory
		return nil
	}
}

// WithGenerator sets the image generation backend.
func WithGenerator(g imagine.Generator) Option {
	return func(b *Bot) error {
		if g == nil {
			return fmt.Errorf("generator cannot be nil")
		}
		b.generator = g
		return nil
	}
}

// WithSplitter sets the quadrant splitter.
func WithSplitter(s imagine.Splitter) Option {
	return func(b *Bot) error {
		if s == nil {
			return fmt.Errorf("splitter cannot be nil")
		}
		b.splitter = s
		return nil
	}
}

// WithTranscriber sets the voice-note transcriber.
func WithTranscriber(t speech.Transcriber) Option {
	return func(b *Bot) error {
		if t == nil {
			return fmt.Errorf("transcriber cannot be nil")
		}
		b.transcriber = t
		return nil
	}
}

// WithSynthesizer sets the text-to-speech backend.
func WithSynthesizer(s speech.Synthesizer) Option {
	return func(b *Bot) error {
		if s == nil {
			return fmt.Errorf("synthesizer cannot be nil")
		}
		b.synthesizer = s
		return nil
	}
}

// WithVoicePicker sets the voice catalog picker.
func WithVoicePicker(p *speech.Picker) Option {
	return func(b *Bot) error {
		if p == nil {
			return fmt.Errorf("voice picker cannot be nil")
		}
		b.voices = p
		return nil
	}
}

// WithTranslator sets the language detection and translation backend.
func WithTranslator(t translate.Translator) Option {
	return func(b *Bot) error {
		if t == nil {
			return fmt.Errorf("translator cannot be nil")
		}
		b.translator = t
		return nil
	}
}

// WithClassifier overrides the intent classifier.
func WithClassifier(c *intent.Classifier) Option {
	return func(b *Bot) error {
		if c == nil {
			return fmt.Errorf("classifier cannot be nil")
		}
		b.classifier = c
		return nil
	}
}

// WithShortener sets the URL shortener used for photo references.
func WithShortener(s shorten.Shortener) Option {
	return func(b *Bot) error {
		if s == nil {
			return fmt.Errorf("shortener cannot be nil")
		}
		b.shortener = s
		return nil
	}
}

// WithPassword sets the shared auth password.
func WithPassword(password string) Option {
	return func(b *Bot) error {
		if password == "" {
			return fmt.Errorf("password cannot be empty")
		}
		b.password = password
		return nil
	}
}

// WithMessages overrides the reply strings.
func WithMessages(m Messages) Option {
	return func(b *Bot) error {
		b.messages = m
		return nil
	}
}

// WithHeartbeatFactory overrides the typing-indicator factory.
func WithHeartbeatFactory(f telegram.HeartbeatFactory) Option {
	return func(b *Bot) error {
		if f == nil {
			return fmt.Errorf("heartbeat factory cannot be nil")
		}
		b.heartbeats = f
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bot) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		b.logger = logger
		return nil
	}
}

// userLLM returns the conversation client for a user, creating it at the
// session's model tier on first use.
func (b *Bot) userLLM(userID int64, sess *session.Session) (llm.LLM, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if client, ok := b.llms[userID]; ok {
		return client, nil
	}
	client, err := b.newLLM(sess.Model)
	if err != nil {
		return nil, fmt.Errorf("creating LLM for user %d: %w", userID, err)
	}
	b.llms[userID] = client
	return client, nil
}
