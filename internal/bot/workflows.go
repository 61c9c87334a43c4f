package bot

import (
	"context"
	"log/slog"

	"github.com/Veraticus/chibi/internal/codec"
	"github.com/Veraticus/chibi/internal/imagine"
	"github.com/Veraticus/chibi/internal/llm"
	"github.com/Veraticus/chibi/internal/session"
	"github.com/Veraticus/chibi/internal/telegram"
)

// askLLM sends chat text to the user's language model and delivers the
// parsed reply. The reply's detected language updates the session so later
// speech uses a matching voice.
func (b *Bot) askLLM(ctx context.Context, logger *slog.Logger, sess *session.Session, userID, chatID int64, text string) {
	client, err := b.userLLM(userID, sess)
	if err != nil {
		logger.ErrorContext(ctx, "failed to create LLM", slog.Any("error", err))
		b.sendText(ctx, logger, chatID, b.messages.ChatError)
		return
	}

	reply, err := client.Ask(ctx, text)
	if err != nil {
		logger.ErrorContext(ctx, "LLM request failed", slog.Any("error", err))
		b.sendText(ctx, logger, chatID, b.messages.ChatError)
		return
	}

	b.followLanguage(ctx, logger, sess, reply)
	b.respond(ctx, logger, chatID, reply)
}

// followLanguage tracks the conversation's language: when the model answers
// in a new one, the session language and voice move with it.
func (b *Bot) followLanguage(ctx context.Context, logger *slog.Logger, sess *session.Session, reply string) {
	lang := b.translator.DetectLanguage(ctx, reply)
	if lang == languageCode(sess.Language) {
		return
	}
	voice := b.voices.Pick(lang)
	logger.InfoContext(ctx, "conversation language changed",
		slog.String("language", lang),
		slog.String("voice", voice.Value),
	)
	sess.Language = lang
	sess.Voice = voice.Value
}

// respond parses a model reply and sends it with its buttons: a speak
// button for longer bodies, then one button per trailing link.
func (b *Bot) respond(ctx context.Context, logger *slog.Logger, chatID int64, reply string) {
	parsed := llm.ParseReply(reply)

	var buttons []telegram.Button
	if len([]rune(parsed.Body)) > speakButtonThreshold {
		buttons = append(buttons, telegram.Button{Label: "\U0001F50A", Data: string(codec.ActionSpeak)})
	}
	for _, link := range parsed.Links {
		buttons = append(buttons, telegram.Button{Label: link.Label, URL: link.URL})
	}

	if _, err := b.messenger.SendMessage(ctx, chatID, parsed.Body, buttons); err != nil {
		logger.ErrorContext(ctx, "failed to send reply", slog.Any("error", err))
	}
}

// imagineNew starts a fresh generation from a prompt.
func (b *Bot) imagineNew(ctx context.Context, logger *slog.Logger, sess *session.Session, chatID int64, prompt string) {
	gen, err := b.generator.Generate(ctx, prompt)
	if err != nil {
		logger.ErrorContext(ctx, "image generation failed", slog.Any("error", err))
		b.sendText(ctx, logger, chatID, b.messages.ImagineError)
		return
	}
	b.postGeneration(ctx, logger, sess, chatID, prompt, gen)
}

// reimagine refines the latest generation: upscale variant n, then feed the
// upscaled image URL plus the original text back in as a new prompt.
func (b *Bot) reimagine(ctx context.Context, logger *slog.Logger, sess *session.Session, chatID int64, text string, n int) {
	last, ok := sess.Gallery.Last()
	if !ok {
		b.sendText(ctx, logger, chatID, b.messages.ImagineError)
		return
	}

	url, err := b.generator.Upscale(ctx, last, n)
	if err != nil || url == "" {
		logger.ErrorContext(ctx, "upscale for refinement failed", slog.Any("error", err))
		b.sendText(ctx, logger, chatID, b.messages.ImagineError)
		return
	}

	prompt := url
	if text != "" {
		prompt += " " + text
	}
	gen, err := b.generator.Generate(ctx, prompt)
	if err != nil {
		logger.ErrorContext(ctx, "image generation failed", slog.Any("error", err))
		b.sendText(ctx, logger, chatID, b.messages.ImagineError)
		return
	}
	b.postGeneration(ctx, logger, sess, chatID, text, gen)
}

// variate requests a variation of variant n of a stored generation.
func (b *Bot) variate(ctx context.Context, logger *slog.Logger, sess *session.Session, chatID int64, genID string, n int) {
	gen, ok := sess.Gallery.FindByID(genID)
	if !ok {
		logger.WarnContext(ctx, "generation not found", slog.String("generation_id", genID))
		b.sendText(ctx, logger, chatID, b.messages.ImagineError)
		return
	}

	next, err := b.generator.Variate(ctx, gen, n)
	if err != nil {
		logger.ErrorContext(ctx, "variation failed", slog.Any("error", err))
		b.sendText(ctx, logger, chatID, b.messages.ImagineError)
		return
	}
	b.postGeneration(ctx, logger, sess, chatID, imagine.ExtractCaption(gen.Content), next)
}

// upscale sends variant n of a stored generation as a full-quality document
// attachment. An empty URL from the backend is a soft failure and produces
// no reply.
func (b *Bot) upscale(ctx context.Context, logger *slog.Logger, sess *session.Session, chatID int64, genID string, n int) {
	gen, ok := sess.Gallery.FindByID(genID)
	if !ok {
		logger.WarnContext(ctx, "generation not found", slog.String("generation_id", genID))
		b.sendText(ctx, logger, chatID, b.messages.ImagineError)
		return
	}

	url, err := b.generator.Upscale(ctx, gen, n)
	if err != nil {
		logger.ErrorContext(ctx, "upscale failed", slog.Any("error", err))
		b.sendText(ctx, logger, chatID, b.messages.ImagineError)
		return
	}
	if url == "" {
		logger.WarnContext(ctx, "upscale returned no image", slog.String("generation_id", genID))
		return
	}
	if err := b.messenger.SendDocumentURL(ctx, chatID, url); err != nil {
		logger.ErrorContext(ctx, "failed to send upscaled document", slog.Any("error", err))
	}
}

// postGeneration records a generation in the gallery and presents it: the
// four quadrants as a photo group, then a caption message carrying the
// variant and upscale buttons.
func (b *Bot) postGeneration(ctx context.Context, logger *slog.Logger, sess *session.Session, chatID int64, caption string, gen session.Generation) {
	images, err := b.splitter.SplitQuadrants(ctx, gen.URI)
	if err != nil {
		logger.ErrorContext(ctx, "failed to split generation image", slog.Any("error", err))
		b.sendText(ctx, logger, chatID, b.messages.ImagineError)
		return
	}

	sess.Gallery.Append(gen)

	buttons, err := generationButtons(gen.ID)
	if err != nil {
		logger.ErrorContext(ctx, "failed to encode action tokens", slog.Any("error", err))
		b.sendText(ctx, logger, chatID, b.messages.ImagineError)
		return
	}

	if err := b.messenger.SendPhotoGroup(ctx, chatID, images); err != nil {
		logger.ErrorContext(ctx, "failed to send photo group", slog.Any("error", err))
		b.sendText(ctx, logger, chatID, b.messages.ImagineError)
		return
	}

	if caption == "" {
		caption = imagine.ExtractCaption(gen.Content)
	}
	if caption == "" {
		caption = "\U0001F5BC"
	}
	if _, err := b.messenger.SendMessage(ctx, chatID, caption, buttons); err != nil {
		logger.ErrorContext(ctx, "failed to send generation caption", slog.Any("error", err))
	}
}

// generationButtons builds the V1-V4 and 1-4 rows keyed to a generation ID.
func generationButtons(genID string) ([]telegram.Button, error) {
	actions := []codec.Action{
		codec.ActionVariant1, codec.ActionVariant2, codec.ActionVariant3, codec.ActionVariant4,
		codec.ActionUpscale1, codec.ActionUpscale2, codec.ActionUpscale3, codec.ActionUpscale4,
	}
	buttons := make([]telegram.Button, 0, len(actions))
	for _, action := range actions {
		token, err := codec.Encode(action, genID)
		if err != nil {
			return nil, err
		}
		buttons = append(buttons, telegram.Button{Label: string(action), Data: token})
	}
	return buttons, nil
}

// synthesizeAndSend converts text to speech and delivers it as a voice
// note, retrying a few times. Exhausted retries are logged and otherwise
// silent: a missing voice note is less disruptive than a late error.
func (b *Bot) synthesizeAndSend(ctx context.Context, logger *slog.Logger, chatID int64, text, voice string) {
	var lastErr error
	for attempt := 1; attempt <= synthesizeAttempts; attempt++ {
		audio, filename, err := b.synthesizer.Synthesize(ctx, text, voice)
		if err != nil {
			lastErr = err
			continue
		}
		if err := b.messenger.SendVoice(ctx, chatID, audio, filename); err != nil {
			lastErr = err
			continue
		}
		return
	}
	logger.ErrorContext(ctx, "voice delivery failed",
		slog.Int("attempts", synthesizeAttempts),
		slog.Any("error", lastErr),
	)
}
