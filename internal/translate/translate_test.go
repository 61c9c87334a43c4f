package translate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectLanguage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/detect", r.URL.Path)
		assert.Equal(t, "hola", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`{"data":{"detections":[[{"language":"es"}]]}}`))
	}))
	defer server.Close()

	client := NewClient("key", WithBaseURL(server.URL))
	assert.Equal(t, "es", client.DetectLanguage(context.Background(), "hola"))
}

func TestDetectLanguageFailsSoft(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient("key", WithBaseURL(server.URL))
	assert.Equal(t, FallbackLanguage, client.DetectLanguage(context.Background(), "hola"))
}

func TestTranslate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "de", r.URL.Query().Get("target"))
		_, _ = w.Write([]byte(`{"data":{"translations":[{"translatedText":"hallo"}]}}`))
	}))
	defer server.Close()

	client := NewClient("key", WithBaseURL(server.URL))
	assert.Equal(t, "hallo", client.Translate(context.Background(), "hello", "de"))
}

func TestTranslateFailsSoftToIdentity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient("key", WithBaseURL(server.URL))
	assert.Equal(t, "hello", client.Translate(context.Background(), "hello", "de"))
}

func TestTranslateEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"translations":[]}}`))
	}))
	defer server.Close()

	client := NewClient("key", WithBaseURL(server.URL))
	assert.Equal(t, "hello", client.Translate(context.Background(), "hello", "de"))
}
