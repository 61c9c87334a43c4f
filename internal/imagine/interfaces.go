// Package imagine wraps the image-generation backend: new generations,
// numbered upscales and variations, and quadrant splitting of the composite
// image every generation returns.
package imagine

import (
	"context"

	"github.com/Veraticus/chibi/internal/session"
)

// Generator is the image-generation collaborator contract. All operations
// may fail outright or soft-fail with an empty result.
type Generator interface {
	// Generate starts a new generation from a text prompt.
	Generate(ctx context.Context, prompt string) (session.Generation, error)

	// Upscale requests an upscale of variant n (1-4) of a generation and
	// returns the resulting image URL. An empty URL is a soft failure.
	Upscale(ctx context.Context, gen session.Generation, n int) (string, error)

	// Variate requests a variation of variant n (1-4) of a generation.
	Variate(ctx context.Context, gen session.Generation, n int) (session.Generation, error)
}

// Splitter cuts a generation's composite image into its four quadrants.
type Splitter interface {
	// SplitQuadrants fetches the image at uri and returns the four
	// quadrants as encoded images, left-to-right then top-to-bottom.
	SplitQuadrants(ctx context.Context, uri string) ([][]byte, error)
}
