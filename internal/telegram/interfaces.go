package telegram

import "context"

// Messenger abstracts the chat transport for the rest of the system.
type Messenger interface {
	// SendMessage sends text with optional inline buttons and returns the
	// sent message's ID.
	SendMessage(ctx context.Context, chatID int64, text string, buttons []Button) (int64, error)

	// SendPhotoGroup sends up to ten images as one grouped message.
	SendPhotoGroup(ctx context.Context, chatID int64, images [][]byte) error

	// SendDocumentURL sends a document attachment by URL.
	SendDocumentURL(ctx context.Context, chatID int64, fileURL string) error

	// SendVoice sends an audio file as a voice note.
	SendVoice(ctx context.Context, chatID int64, audio []byte, filename string) error

	// SendTyping emits a typing indicator for the chat.
	SendTyping(ctx context.Context, chatID int64) error

	// DeleteMessage deletes a previously sent message.
	DeleteMessage(ctx context.Context, chatID int64, messageID int64) error

	// AnswerCallback acknowledges a button press.
	AnswerCallback(ctx context.Context, callbackID string) error

	// FileURL resolves a transport file reference to a fetchable URL.
	FileURL(ctx context.Context, fileID string) (string, error)

	// Subscribe returns a channel of incoming messages. The channel is
	// closed when the context is canceled.
	Subscribe(ctx context.Context) (<-chan IncomingMessage, error)
}
