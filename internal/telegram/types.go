// Package telegram provides the chat transport collaborator: a Telegram Bot
// API client, the Messenger interface the rest of the system talks to, and
// the typing-indicator heartbeat wrapped around long operations.
package telegram

// PhotoSize is one resolution variant of an incoming photo.
type PhotoSize struct {
	FileID string
	Width  int
	Height int
}

// Document is an incoming file attachment.
type Document struct {
	FileID   string
	FileName string
	MimeType string
}

// Callback is an inline-button press.
type Callback struct {
	ID string
	// Data is the raw action token carried on the button.
	Data string
	// MessageText is the text of the message the button is attached to.
	MessageText string
	MessageID   int64
}

// IncomingMessage is one inbound event from the transport.
type IncomingMessage struct {
	ChatID    int64
	MessageID int64
	UserID    int64
	Text      string
	Caption   string
	// Photos holds all resolution variants of a photo message.
	Photos []PhotoSize
	// VoiceFileID is set for voice notes.
	VoiceFileID string
	// Document is set for file attachments.
	Document *Document
	// Callback is set for button presses; all other fields except ChatID
	// and UserID are empty then.
	Callback *Callback
}

// IsCommand reports whether the message text is a slash command.
func (m *IncomingMessage) IsCommand() bool {
	return len(m.Text) > 0 && m.Text[0] == '/'
}

// Button is one inline keyboard button. Exactly one of Data and URL is set.
type Button struct {
	Label string
	// Data is a callback action token.
	Data string
	// URL makes the button open a link instead.
	URL string
}
