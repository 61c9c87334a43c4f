package bot

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Veraticus/chibi/internal/intent"
	"github.com/Veraticus/chibi/internal/session"
	"github.com/Veraticus/chibi/internal/telegram"
)

// normalize reduces any inbound message shape to plain text for dispatch.
// Photos and image documents become imagine prompts referencing the image
// by short URL; voice notes are transcribed. A false return means the turn
// is over: either there was nothing usable or the user was already told
// what went wrong.
func (b *Bot) normalize(ctx context.Context, logger *slog.Logger, msg telegram.IncomingMessage, sess *session.Session) (string, bool) {
	switch {
	case len(msg.Photos) > 0:
		return b.photoToPrompt(ctx, logger, msg.ChatID, bestPhoto(msg.Photos).FileID, msg.Caption)
	case msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/"):
		return b.photoToPrompt(ctx, logger, msg.ChatID, msg.Document.FileID, msg.Caption)
	case msg.VoiceFileID != "":
		return b.voiceToText(ctx, logger, msg.ChatID, msg.VoiceFileID)
	default:
		return msg.Text, true
	}
}

// photoToPrompt turns an uploaded image into an imagine prompt: resolve the
// file URL, shorten it, and splice the caption in after the keyword.
func (b *Bot) photoToPrompt(ctx context.Context, logger *slog.Logger, chatID int64, fileID, caption string) (string, bool) {
	fileURL, err := b.messenger.FileURL(ctx, fileID)
	if err != nil {
		logger.ErrorContext(ctx, "failed to resolve photo URL", slog.Any("error", err))
		b.sendText(ctx, logger, chatID, b.messages.ImagineError)
		return "", false
	}

	short, err := b.shortener.Shorten(ctx, fileURL)
	if err != nil {
		// The long URL still works as a prompt reference, it just eats
		// more of the prompt budget.
		logger.WarnContext(ctx, "failed to shorten photo URL", slog.Any("error", err))
		short = fileURL
	}

	prompt := short
	if caption != "" {
		prompt += " " + intent.RemoveKeyword(caption)
	}
	return intent.AddKeyword(prompt), true
}

// voiceToText transcribes a voice note.
func (b *Bot) voiceToText(ctx context.Context, logger *slog.Logger, chatID int64, fileID string) (string, bool) {
	fileURL, err := b.messenger.FileURL(ctx, fileID)
	if err != nil {
		logger.ErrorContext(ctx, "failed to resolve voice URL", slog.Any("error", err))
		b.sendText(ctx, logger, chatID, b.messages.VoiceError)
		return "", false
	}

	text, err := b.transcriber.Transcribe(ctx, fileURL)
	if err != nil {
		logger.ErrorContext(ctx, "failed to transcribe voice note", slog.Any("error", err))
		b.sendText(ctx, logger, chatID, b.messages.VoiceError)
		return "", false
	}
	return text, true
}

// bestPhoto returns the highest-resolution variant.
func bestPhoto(photos []telegram.PhotoSize) telegram.PhotoSize {
	best := photos[0]
	for _, p := range photos[1:] {
		if p.Width*p.Height > best.Width*best.Height {
			best = p
		}
	}
	return best
}
