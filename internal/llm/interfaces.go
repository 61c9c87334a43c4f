package llm

import "context"

// LLM is the language-model collaborator contract. Implementations own the
// conversation memory attached to one session.
type LLM interface {
	// Ask sends the user's text and returns the model's reply.
	Ask(ctx context.Context, text string) (string, error)

	// SetModel switches the model tier for subsequent calls.
	SetModel(model Model)

	// SetTemperature adjusts the generation temperature preset.
	SetTemperature(temp Temperature)
}
