package bot

import (
	"context"
	"log/slog"

	"github.com/Veraticus/chibi/internal/codec"
	"github.com/Veraticus/chibi/internal/session"
	"github.com/Veraticus/chibi/internal/telegram"
)

// handleCallback processes an inline-button press. The callback is always
// acknowledged first so the client stops its spinner, whatever happens
// afterwards.
func (b *Bot) handleCallback(ctx context.Context, logger *slog.Logger, msg telegram.IncomingMessage, sess *session.Session) {
	cb := msg.Callback
	if err := b.messenger.AnswerCallback(ctx, cb.ID); err != nil {
		logger.WarnContext(ctx, "failed to answer callback", slog.Any("error", err))
	}

	// Buttons only exist on messages sent to authenticated users, but the
	// token arrives from the client and is not trusted on its own.
	if !sess.Auth.Authenticated {
		logger.WarnContext(ctx, "ignoring callback from unauthenticated user")
		return
	}

	action, payload, err := codec.Decode(cb.Data)
	if err != nil {
		logger.WarnContext(ctx, "malformed action token",
			slog.String("token", cb.Data),
			slog.Any("error", err),
		)
	}

	switch {
	case action == codec.ActionSpeak:
		hb := b.startHeartbeat(ctx, logger, msg.ChatID)
		defer b.stopHeartbeat(ctx, hb)
		b.synthesizeAndSend(ctx, logger, msg.ChatID, cb.MessageText, sess.Voice)
	case action.VariantNumber() != 0:
		hb := b.startHeartbeat(ctx, logger, msg.ChatID)
		defer b.stopHeartbeat(ctx, hb)
		b.variate(ctx, logger, sess, msg.ChatID, payload, action.VariantNumber())
	case action.UpscaleNumber() != 0:
		hb := b.startHeartbeat(ctx, logger, msg.ChatID)
		defer b.stopHeartbeat(ctx, hb)
		b.upscale(ctx, logger, sess, msg.ChatID, payload, action.UpscaleNumber())
	default:
		logger.WarnContext(ctx, "ignoring unknown action", slog.String("action", string(action)))
	}
}
