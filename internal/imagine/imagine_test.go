package imagine

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/chibi/internal/session"
)

func TestGenerate(t *testing.T) {
	var gotPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/imagine", r.URL.Path)
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotPrompt = req.Prompt
		_, _ = w.Write([]byte(`{"id":"g1","content":"**a cat** <tag>","hash":"h1","uri":"https://img/x.png"}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "key")
	require.NoError(t, err)

	gen, err := client.Generate(context.Background(), "a cat —ar 1:1")
	require.NoError(t, err)
	assert.Equal(t, "a cat --ar 1:1", gotPrompt)
	assert.Equal(t, session.Generation{
		ID:      "g1",
		Content: "**a cat** <tag>",
		Hash:    "h1",
		URI:     "https://img/x.png",
	}, gen)
}

func TestGenerateEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "")
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), "a cat")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty result")
}

func TestUpscale(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/upscale", r.URL.Path)
		var req followupRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "g1", req.MessageID)
		assert.Equal(t, 2, req.Index)
		_, _ = w.Write([]byte(`{"uri":"https://img/up.png"}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "")
	require.NoError(t, err)

	uri, err := client.Upscale(context.Background(), session.Generation{ID: "g1"}, 2)
	require.NoError(t, err)
	assert.Equal(t, "https://img/up.png", uri)
}

func TestUpscaleIndexOutOfRange(t *testing.T) {
	client, err := NewClient("http://localhost:0", "")
	require.NoError(t, err)

	_, err = client.Upscale(context.Background(), session.Generation{ID: "g1"}, 5)
	require.Error(t, err)

	_, err = client.Variate(context.Background(), session.Generation{ID: "g1"}, 0)
	require.Error(t, err)
}

func compositePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestSplit(t *testing.T) {
	quadrants, err := Split(compositePNG(t, 8, 6))
	require.NoError(t, err)
	require.Len(t, quadrants, 4)

	for _, q := range quadrants {
		img, _, decodeErr := image.Decode(bytes.NewReader(q))
		require.NoError(t, decodeErr)
		assert.Equal(t, 4, img.Bounds().Dx())
		assert.Equal(t, 3, img.Bounds().Dy())
	}
}

func TestSplitRejectsTinyImages(t *testing.T) {
	_, err := Split(compositePNG(t, 1, 1))
	require.Error(t, err)
}

func TestSplitRejectsGarbage(t *testing.T) {
	_, err := Split([]byte("not an image"))
	require.Error(t, err)
}

func TestSplitQuadrantsDownloads(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(compositePNG(t, 4, 4))
	}))
	defer server.Close()

	splitter := NewQuadrantSplitter()
	quadrants, err := splitter.SplitQuadrants(context.Background(), server.URL+"/img.png")
	require.NoError(t, err)
	assert.Len(t, quadrants, 4)
}

func TestSplitQuadrantsHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	splitter := NewQuadrantSplitter()
	_, err := splitter.SplitQuadrants(context.Background(), server.URL+"/img.png")
	require.Error(t, err)
}

func TestExtractCaption(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "bold segment wins",
			input: "https://img/src.png **a red bicycle** <fast> - Variations",
			want:  "a red bicycle",
		},
		{
			name:  "no bold falls back to cleaned content",
			input: "a plain prompt <tag> https://x.com/a.png done",
			want:  "a plain prompt  done",
		},
		{
			name:  "urls inside bold removed",
			input: "**https://x.com/ref.png a cat**",
			want:  "a cat",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractCaption(tt.input))
		})
	}
}
