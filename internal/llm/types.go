// Package llm wraps the language-model backend behind a narrow Ask contract
// and parses its replies into body text plus trailing link buttons.
package llm

// Model identifies a language-model tier.
type Model string

// Supported model tiers.
const (
	ModelGPT3 Model = "gpt-3.5-turbo"
	ModelGPT4 Model = "gpt-4"
)

// Temperature is a generation temperature preset.
type Temperature float32

// Temperature presets selectable by command.
const (
	TempFocused   Temperature = 0.25
	TempBalanced  Temperature = 0.5
	TempInventive Temperature = 0.75
	TempCreative  Temperature = 1.0
)

// DefaultMaxTokens bounds completion length.
const DefaultMaxTokens = 2048

// URLButton is one parsed trailing link of a reply.
type URLButton struct {
	URL   string
	Label string
}

// ParsedReply is a model reply split into body text and link buttons.
type ParsedReply struct {
	Body  string
	Links []URLButton
}
