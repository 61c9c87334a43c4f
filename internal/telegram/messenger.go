package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const (
	// pollTimeout is the long-poll window for getUpdates.
	pollTimeout = 30 * time.Second
	// pollRetryDelay backs the loop off after a transport error.
	pollRetryDelay = 3 * time.Second
	// incomingBuffer sizes the subscription channel.
	incomingBuffer = 64
)

// messenger implements Messenger over a Bot API client.
type messenger struct {
	client *Client
	logger *slog.Logger

	mu           sync.Mutex
	subscription *subscription
}

// subscription tracks an active update poll loop.
type subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// NewMessenger creates a Messenger over the given client.
func NewMessenger(client *Client, logger *slog.Logger) Messenger {
	if logger == nil {
		logger = slog.Default()
	}
	return &messenger{
		client: client,
		logger: logger,
	}
}

func (m *messenger) SendMessage(ctx context.Context, chatID int64, text string, buttons []Button) (int64, error) {
	if text == "" {
		return 0, fmt.Errorf("message cannot be empty")
	}
	id, err := m.client.SendMessage(ctx, chatID, text, buttons)
	if err != nil {
		return 0, fmt.Errorf("failed to send message: %w", err)
	}
	return id, nil
}

func (m *messenger) SendPhotoGroup(ctx context.Context, chatID int64, images [][]byte) error {
	if len(images) == 0 {
		return fmt.Errorf("photo group cannot be empty")
	}
	if err := m.client.SendPhotoGroup(ctx, chatID, images); err != nil {
		return fmt.Errorf("failed to send photo group: %w", err)
	}
	return nil
}

func (m *messenger) SendDocumentURL(ctx context.Context, chatID int64, fileURL string) error {
	if err := m.client.SendDocumentURL(ctx, chatID, fileURL); err != nil {
		return fmt.Errorf("failed to send document: %w", err)
	}
	return nil
}

func (m *messenger) SendVoice(ctx context.Context, chatID int64, audio []byte, filename string) error {
	if len(audio) == 0 {
		return fmt.Errorf("voice audio cannot be empty")
	}
	if err := m.client.SendVoice(ctx, chatID, audio, filename); err != nil {
		return fmt.Errorf("failed to send voice: %w", err)
	}
	return nil
}

func (m *messenger) SendTyping(ctx context.Context, chatID int64) error {
	if err := m.client.SendChatAction(ctx, chatID, "typing"); err != nil {
		return fmt.Errorf("failed to send typing action: %w", err)
	}
	return nil
}

func (m *messenger) DeleteMessage(ctx context.Context, chatID int64, messageID int64) error {
	if err := m.client.DeleteMessage(ctx, chatID, messageID); err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

func (m *messenger) AnswerCallback(ctx context.Context, callbackID string) error {
	if err := m.client.AnswerCallback(ctx, callbackID); err != nil {
		return fmt.Errorf("failed to answer callback: %w", err)
	}
	return nil
}

func (m *messenger) FileURL(ctx context.Context, fileID string) (string, error) {
	fileURL, err := m.client.FileURL(ctx, fileID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve file url: %w", err)
	}
	return fileURL, nil
}

// Subscribe starts a long-poll loop delivering incoming messages. A second
// call replaces the previous subscription.
func (m *messenger) Subscribe(ctx context.Context) (<-chan IncomingMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.subscription != nil {
		m.subscription.cancel()
		<-m.subscription.done
		m.subscription = nil
	}

	pollCtx, cancel := context.WithCancel(ctx)
	out := make(chan IncomingMessage, incomingBuffer)
	done := make(chan struct{})

	m.subscription = &subscription{cancel: cancel, done: done}

	go m.poll(pollCtx, out, done)

	return out, nil
}

func (m *messenger) poll(ctx context.Context, out chan<- IncomingMessage, done chan<- struct{}) {
	defer close(done)
	defer close(out)

	var offset int64
	for {
		if ctx.Err() != nil {
			return
		}

		updates, next, err := m.client.GetUpdates(ctx, offset, pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			m.logger.ErrorContext(ctx, "Update poll failed, retrying",
				slog.Any("error", err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(pollRetryDelay):
			}
			continue
		}
		offset = next

		for _, update := range updates {
			msg, ok := convertUpdate(update)
			if !ok {
				continue
			}
			select {
			case out <- msg:
			case <-ctx.Done():
				return
			}
		}
	}
}

// convertUpdate maps a wire update onto the transport-neutral message type.
func convertUpdate(update wireUpdate) (IncomingMessage, bool) {
	if update.Callback != nil {
		cb := update.Callback
		msg := IncomingMessage{
			Callback: &Callback{
				ID:   cb.ID,
				Data: cb.Data,
			},
		}
		if cb.From != nil {
			msg.UserID = cb.From.ID
		}
		if cb.Message != nil {
			msg.ChatID = cb.Message.Chat.ID
			msg.Callback.MessageText = cb.Message.Text
			msg.Callback.MessageID = cb.Message.MessageID
		}
		return msg, true
	}

	if update.Message == nil {
		return IncomingMessage{}, false
	}

	wire := update.Message
	msg := IncomingMessage{
		ChatID:    wire.Chat.ID,
		MessageID: wire.MessageID,
		Text:      wire.Text,
		Caption:   wire.Caption,
	}
	if wire.From != nil {
		msg.UserID = wire.From.ID
	}
	for _, p := range wire.Photo {
		msg.Photos = append(msg.Photos, PhotoSize{FileID: p.FileID, Width: p.Width, Height: p.Height})
	}
	if wire.Voice != nil {
		msg.VoiceFileID = wire.Voice.FileID
	}
	if wire.Document != nil {
		msg.Document = &Document{
			FileID:   wire.Document.FileID,
			FileName: wire.Document.FileName,
			MimeType: wire.Document.MimeType,
		}
	}
	return msg, true
}
