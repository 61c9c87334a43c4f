package bot

import "strings"

// Messages holds the user-visible reply strings. Operators may override
// them wholesale; Help is translated on the fly for non-English sessions.
type Messages struct {
	Welcome      string   `yaml:"welcome"`
	AuthPrompt   string   `yaml:"authPrompt"`
	InvalidPass  string   `yaml:"invalidPass"`
	ChatError    string   `yaml:"chatError"`
	ImagineError string   `yaml:"imagineError"`
	VoiceError   string   `yaml:"voiceError"`
	Help         []string `yaml:"help"`
}

// DefaultMessages returns the built-in reply strings.
func DefaultMessages() Messages {
	return Messages{
		Welcome:      "Hi! I chat, and I draw. Say \"Imagine a red bicycle\" to get started.",
		AuthPrompt:   "Please authenticate first: /auth &lt;password&gt;",
		InvalidPass:  "Invalid password.",
		ChatError:    "Something went wrong answering that. Please try again.",
		ImagineError: "I couldn't imagine that. Please try again.",
		VoiceError:   "I couldn't fetch that voice note. Please try sending it again.",
		Help: []string{
			"<b>What I can do</b>",
			"Chat with me in any language, or start a message with <i>Imagine</i> to generate images.",
			"Send a photo to use it as a visual reference.",
			"Send a voice note and I'll listen.",
			"",
			"<b>Commands</b>",
			"/auth &lt;password&gt; - unlock the bot",
			"/1 /2 /3 /4 - refine the latest image from its variants",
			"/gpt &lt;3|4&gt; - switch the chat model",
			"/focused /balanced /inventive /creative - set creativity",
			"/voice - pick a new voice and hear a preview",
			"/help - this text",
		},
	}
}

// HelpText joins the help lines into one message body.
func (m Messages) HelpText() string {
	return strings.Join(m.Help, "\n")
}
