package imagine

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"time"

	// Register decoders for the formats the backend serves.
	_ "image/jpeg"
	_ "image/png"
)

const (
	splitterTimeout = 60 * time.Second
	// maxImageBytes bounds the composite image download.
	maxImageBytes = 32 << 20
)

// QuadrantSplitter implements Splitter by downloading the composite image
// and cutting it into four equal quadrants.
type QuadrantSplitter struct {
	http *http.Client
}

// NewQuadrantSplitter creates a splitter with its own HTTP client.
func NewQuadrantSplitter() *QuadrantSplitter {
	return &QuadrantSplitter{
		http: &http.Client{Timeout: splitterTimeout},
	}
}

// NewQuadrantSplitterWithClient creates a splitter using the given HTTP
// client (used by tests).
func NewQuadrantSplitterWithClient(httpClient *http.Client) *QuadrantSplitter {
	return &QuadrantSplitter{http: httpClient}
}

// SplitQuadrants implements Splitter. Quadrant order is top-left,
// top-right, bottom-left, bottom-right to match the backend's variant
// numbering.
func (s *QuadrantSplitter) SplitQuadrants(ctx context.Context, uri string) ([][]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build image request: %w", err)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image download failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("image download http %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	return Split(data)
}

// subImager is satisfied by every stdlib image type backed by a pixel
// buffer.
type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// Split cuts an encoded composite image into four PNG-encoded quadrants.
func Split(data []byte) ([][]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	src, ok := img.(subImager)
	if !ok {
		return nil, fmt.Errorf("image type %T does not support cropping", img)
	}

	bounds := img.Bounds()
	halfW := bounds.Dx() / 2
	halfH := bounds.Dy() / 2
	if halfW == 0 || halfH == 0 {
		return nil, fmt.Errorf("image %dx%d too small to split", bounds.Dx(), bounds.Dy())
	}

	quadrants := []image.Rectangle{
		image.Rect(bounds.Min.X, bounds.Min.Y, bounds.Min.X+halfW, bounds.Min.Y+halfH),
		image.Rect(bounds.Min.X+halfW, bounds.Min.Y, bounds.Max.X, bounds.Min.Y+halfH),
		image.Rect(bounds.Min.X, bounds.Min.Y+halfH, bounds.Min.X+halfW, bounds.Max.Y),
		image.Rect(bounds.Min.X+halfW, bounds.Min.Y+halfH, bounds.Max.X, bounds.Max.Y),
	}

	out := make([][]byte, 0, len(quadrants))
	for _, rect := range quadrants {
		var buf bytes.Buffer
		if err := png.Encode(&buf, src.SubImage(rect)); err != nil {
			return nil, fmt.Errorf("failed to encode quadrant: %w", err)
		}
		out = append(out, buf.Bytes())
	}
	return out, nil
}
