package bot

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/Veraticus/chibi/internal/intent"
	"github.com/Veraticus/chibi/internal/llm"
	"github.com/Veraticus/chibi/internal/session"
	"github.com/Veraticus/chibi/internal/telegram"
)

// HandleMessage processes one inbound event as a complete turn. It never
// returns an error: every failure is reported to the user in-chat or
// logged, and the turn ends.
func (b *Bot) HandleMessage(ctx context.Context, msg telegram.IncomingMessage) {
	logger := b.logger.With(
		slog.String("turn_id", uuid.NewString()),
		slog.Int64("user_id", msg.UserID),
		slog.Int64("chat_id", msg.ChatID),
	)

	userKey := strconv.FormatInt(msg.UserID, 10)
	sess, err := b.sessions.LoadOrCreate(ctx, userKey)
	if err != nil {
		logger.ErrorContext(ctx, "failed to load session", slog.Any("error", err))
		return
	}

	switch {
	case msg.Callback != nil:
		b.handleCallback(ctx, logger, msg, sess)
	case msg.IsCommand():
		b.handleCommand(ctx, logger, msg, sess)
	default:
		b.handleInput(ctx, logger, msg, sess)
	}

	if err := b.sessions.Save(ctx, userKey, sess); err != nil {
		logger.ErrorContext(ctx, "failed to save session", slog.Any("error", err))
	}
}

// handleInput runs the auth gate, the normalizer, and intent dispatch for a
// non-command message.
func (b *Bot) handleInput(ctx context.Context, logger *slog.Logger, msg telegram.IncomingMessage, sess *session.Session) {
	if !sess.Auth.Authenticated {
		b.sendText(ctx, logger, msg.ChatID, b.messages.AuthPrompt)
		return
	}

	hb := b.startHeartbeat(ctx, logger, msg.ChatID)
	defer b.stopHeartbeat(ctx, hb)

	text, ok := b.normalize(ctx, logger, msg, sess)
	if !ok || text == "" || strings.HasPrefix(text, "/") {
		return
	}

	it := b.classifier.Classify(ctx, text)
	switch it.Kind {
	case intent.KindShortcut:
		b.reimagine(ctx, logger, sess, msg.ChatID, text, it.Shortcut)
	case intent.KindImagine:
		b.imagineNew(ctx, logger, sess, msg.ChatID, it.Prompt)
	case intent.KindChat:
		b.askLLM(ctx, logger, sess, msg.UserID, msg.ChatID, text)
	}
}

// handleCommand dispatches slash commands. Only /start and /auth work
// before authentication.
func (b *Bot) handleCommand(ctx context.Context, logger *slog.Logger, msg telegram.IncomingMessage, sess *session.Session) {
	fields := strings.Fields(msg.Text)
	if len(fields) == 0 {
		return
	}
	cmd := strings.TrimPrefix(fields[0], "/")
	// Group chats address commands as /cmd@botname.
	cmd, _, _ = strings.Cut(cmd, "@")
	cmd = strings.ToLower(cmd)
	arg := strings.Join(fields[1:], " ")

	switch cmd {
	case "start":
		b.sendText(ctx, logger, msg.ChatID, b.messages.Welcome)
		return
	case "auth":
		b.handleAuth(ctx, logger, msg.ChatID, sess, arg)
		return
	}

	if !sess.Auth.Authenticated {
		b.sendText(ctx, logger, msg.ChatID, b.messages.AuthPrompt)
		return
	}

	switch cmd {
	case "gpt":
		b.handleModelSwitch(ctx, logger, msg, sess, arg)
	case "focused":
		b.handleTemperature(ctx, logger, msg, sess, llm.TempFocused, "focused")
	case "balanced":
		b.handleTemperature(ctx, logger, msg, sess, llm.TempBalanced, "balanced")
	case "inventive":
		b.handleTemperature(ctx, logger, msg, sess, llm.TempInventive, "inventive")
	case "creative":
		b.handleTemperature(ctx, logger, msg, sess, llm.TempCreative, "creative")
	case "voice":
		b.handleVoicePick(ctx, logger, msg.ChatID, sess)
	case "help":
		b.handleHelp(ctx, logger, msg.ChatID, sess)
	case "1", "2", "3", "4":
		n, _ := strconv.Atoi(cmd)
		hb := b.startHeartbeat(ctx, logger, msg.ChatID)
		defer b.stopHeartbeat(ctx, hb)
		b.reimagine(ctx, logger, sess, msg.ChatID, arg, n)
	default:
		logger.InfoContext(ctx, "ignoring unknown command", slog.String("command", cmd))
	}
}

// handleAuth checks the password. Attempts only accumulate; at the cap the
// session stays locked until an administrative reset.
func (b *Bot) handleAuth(ctx context.Context, logger *slog.Logger, chatID int64, sess *session.Session, password string) {
	if password == "" {
		b.sendText(ctx, logger, chatID, b.messages.AuthPrompt)
		return
	}
	if !sess.TryAuth(password, b.password) {
		logger.InfoContext(ctx, "failed auth attempt",
			slog.Uint64("attempts", uint64(sess.Auth.Attempts)),
			slog.Bool("locked", sess.AuthLocked()),
		)
		b.sendText(ctx, logger, chatID, b.messages.InvalidPass)
		return
	}
	b.sendText(ctx, logger, chatID, b.messages.HelpText())
}

func (b *Bot) handleModelSwitch(ctx context.Context, logger *slog.Logger, msg telegram.IncomingMessage, sess *session.Session, arg string) {
	var model llm.Model
	switch arg {
	case "3":
		model = llm.ModelGPT3
	case "4":
		model = llm.ModelGPT4
	default:
		b.sendText(ctx, logger, msg.ChatID, "Usage: /gpt 3 or /gpt 4")
		return
	}

	sess.Model = model
	client, err := b.userLLM(msg.UserID, sess)
	if err != nil {
		logger.ErrorContext(ctx, "failed to create LLM", slog.Any("error", err))
		b.sendText(ctx, logger, msg.ChatID, b.messages.ChatError)
		return
	}
	client.SetModel(model)
	b.sendText(ctx, logger, msg.ChatID, "Now using "+string(model)+".")
}

func (b *Bot) handleTemperature(ctx context.Context, logger *slog.Logger, msg telegram.IncomingMessage, sess *session.Session, temp llm.Temperature, name string) {
	client, err := b.userLLM(msg.UserID, sess)
	if err != nil {
		logger.ErrorContext(ctx, "failed to create LLM", slog.Any("error", err))
		b.sendText(ctx, logger, msg.ChatID, b.messages.ChatError)
		return
	}
	client.SetTemperature(temp)
	b.sendText(ctx, logger, msg.ChatID, "Okay, I'll be "+name+" from now on.")
}

// handleVoicePick selects a fresh voice for the session's language and
// sends a short spoken preview so the user hears it immediately.
func (b *Bot) handleVoicePick(ctx context.Context, logger *slog.Logger, chatID int64, sess *session.Session) {
	hb := b.startHeartbeat(ctx, logger, chatID)
	defer b.stopHeartbeat(ctx, hb)

	voice := b.voices.Pick(sess.Language)
	sess.Voice = voice.Value
	b.sendText(ctx, logger, chatID, "Voice set to "+voice.Name+".")

	preview := "Hi! My name is " + voice.Name + "."
	if lang := languageCode(sess.Language); lang != "en" {
		preview = b.translator.Translate(ctx, preview, lang)
	}
	b.synthesizeAndSend(ctx, logger, chatID, preview, sess.Voice)
}

// handleHelp sends the help text, translated for non-English sessions.
func (b *Bot) handleHelp(ctx context.Context, logger *slog.Logger, chatID int64, sess *session.Session) {
	text := b.messages.HelpText()
	if lang := languageCode(sess.Language); lang != "en" {
		text = b.translator.Translate(ctx, text, lang)
	}
	b.sendText(ctx, logger, chatID, text)
}

// sendText sends plain text and logs delivery failures. Replies are best
// effort; a failed send never aborts the turn.
func (b *Bot) sendText(ctx context.Context, logger *slog.Logger, chatID int64, text string) {
	if _, err := b.messenger.SendMessage(ctx, chatID, text, nil); err != nil {
		logger.ErrorContext(ctx, "failed to send message", slog.Any("error", err))
	}
}

// startHeartbeat begins the typing indicator for a chat. A nil return means
// the placeholder could not be posted; the turn proceeds without one.
func (b *Bot) startHeartbeat(ctx context.Context, logger *slog.Logger, chatID int64) *telegram.Heartbeat {
	hb, err := b.heartbeats.Start(ctx, chatID)
	if err != nil {
		logger.WarnContext(ctx, "failed to start heartbeat", slog.Any("error", err))
		return nil
	}
	return hb
}

func (b *Bot) stopHeartbeat(ctx context.Context, hb *telegram.Heartbeat) {
	if hb != nil {
		hb.Stop(ctx)
	}
}

// languageCode reduces a locale like "en-US" to its bare language part.
func languageCode(locale string) string {
	lang, _, _ := strings.Cut(locale, "-")
	return lang
}
