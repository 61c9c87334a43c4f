package speech

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesize(t *testing.T) {
	var statusCalls atomic.Int32
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/convert", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("Authorization"))
		assert.Equal(t, "user-1", r.Header.Get("X-User-ID"))

		var req convertRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "en-US-JaneNeural", req.Voice)
		require.Len(t, req.SSML, 1)
		assert.Contains(t, req.SSML[0], "hello world")

		_, _ = w.Write([]byte(`{"transcriptionId":"job-1"}`))
	})
	mux.HandleFunc("/articleStatus", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "job-1", r.URL.Query().Get("transcriptionId"))
		if statusCalls.Add(1) < 3 {
			_, _ = w.Write([]byte(`{"converted":false}`))
			return
		}
		_, _ = fmt.Fprintf(w, `{"converted":true,"audioUrl":%q}`, server.URL+"/audio.mp3")
	})
	mux.HandleFunc("/audio.mp3", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("mp3-bytes"))
	})

	synth, err := NewHTSynthesizer("user-1", "secret",
		WithSynthBaseURL(server.URL),
		WithPollInterval(time.Millisecond),
	)
	require.NoError(t, err)

	audio, filename, err := synth.Synthesize(context.Background(), "hello world", "en-US-JaneNeural")
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3-bytes"), audio)
	assert.Equal(t, "voice-job-1.mp3", filename)
	assert.GreaterOrEqual(t, statusCalls.Load(), int32(3))
}

func TestSynthesizeJobError(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/convert", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"transcriptionId":"job-1"}`))
	})
	mux.HandleFunc("/articleStatus", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error":true,"message":"voice not found"}`))
	})

	synth, err := NewHTSynthesizer("user-1", "secret",
		WithSynthBaseURL(server.URL),
		WithPollInterval(time.Millisecond),
	)
	require.NoError(t, err)

	_, _, err = synth.Synthesize(context.Background(), "hello", "bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "voice not found")
}

func TestSynthesizeCanceled(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/convert", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"transcriptionId":"job-1"}`))
	})
	mux.HandleFunc("/articleStatus", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"converted":false}`))
	})

	synth, err := NewHTSynthesizer("user-1", "secret",
		WithSynthBaseURL(server.URL),
		WithPollInterval(time.Millisecond),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, _, err = synth.Synthesize(ctx, "hello", "en-US-JaneNeural")
	require.Error(t, err)
}

func TestNewHTSynthesizerRequiresCredentials(t *testing.T) {
	_, err := NewHTSynthesizer("", "secret")
	require.Error(t, err)
	_, err = NewHTSynthesizer("user", "")
	require.Error(t, err)
}
