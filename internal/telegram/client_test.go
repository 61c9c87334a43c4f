package telegram

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient("test-token", WithBaseURL(server.URL))
	require.NoError(t, err)
	return client
}

func TestSendMessage(t *testing.T) {
	var got map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottest-token/sendMessage", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":99}}`))
	})

	id, err := client.SendMessage(context.Background(), 42, "hello", []Button{
		{Label: "V1", Data: "V1|abc"},
		{Label: "site", URL: "https://a.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(99), id)
	assert.Equal(t, float64(42), got["chat_id"])
	assert.Equal(t, "hello", got["text"])

	markup, ok := got["reply_markup"].(map[string]any)
	require.True(t, ok)
	rows, ok := markup["inline_keyboard"].([]any)
	require.True(t, ok)
	require.Len(t, rows, 1)
	row, ok := rows[0].([]any)
	require.True(t, ok)
	require.Len(t, row, 2)
	first, _ := row[0].(map[string]any)
	assert.Equal(t, "V1|abc", first["callback_data"])
	second, _ := row[1].(map[string]any)
	assert.Equal(t, "https://a.com", second["url"])
}

func TestSendMessageAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false,"description":"Bad Request: message is too long"}`))
	})

	_, err := client.SendMessage(context.Background(), 42, "hello", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "message is too long")
}

func TestGetUpdatesAdvancesOffset(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true,"result":[
			{"update_id":7,"message":{"message_id":1,"chat":{"id":5},"from":{"id":9},"text":"hi"}},
			{"update_id":8,"message":{"message_id":2,"chat":{"id":5},"from":{"id":9},"text":"yo"}}
		]}`))
	})

	updates, next, err := client.GetUpdates(context.Background(), 0, time.Second)
	require.NoError(t, err)
	assert.Len(t, updates, 2)
	assert.Equal(t, int64(9), next)
}

func TestFileURL(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottest-token/getFile", r.URL.Path)
		_, _ = w.Write([]byte(`{"ok":true,"result":{"file_id":"f1","file_path":"voice/abc.oga"}}`))
	})

	url, err := client.FileURL(context.Background(), "f1")
	require.NoError(t, err)
	assert.Contains(t, url, "/file/bottest-token/voice/abc.oga")
}

func TestSendPhotoGroupBuildsMultipart(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "42", r.FormValue("chat_id"))

		var media []map[string]string
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("media")), &media))
		require.Len(t, media, 4)
		assert.Equal(t, "attach://photo0", media[0]["media"])

		_, _ = w.Write([]byte(`{"ok":true,"result":[]}`))
	})

	images := [][]byte{{1}, {2}, {3}, {4}}
	require.NoError(t, client.SendPhotoGroup(context.Background(), 42, images))
}

func TestConvertUpdateCallback(t *testing.T) {
	update := wireUpdate{
		Callback: &wireCallback{
			ID:   "cb1",
			From: &wireUser{ID: 9},
			Data: "Speak",
			Message: &wireMessage{
				MessageID: 3,
				Chat:      wireChat{ID: 5},
				Text:      "a long reply",
			},
		},
	}

	msg, ok := convertUpdate(update)
	require.True(t, ok)
	require.NotNil(t, msg.Callback)
	assert.Equal(t, int64(5), msg.ChatID)
	assert.Equal(t, int64(9), msg.UserID)
	assert.Equal(t, "Speak", msg.Callback.Data)
	assert.Equal(t, "a long reply", msg.Callback.MessageText)
}

func TestConvertUpdateVoiceAndDocument(t *testing.T) {
	msg, ok := convertUpdate(wireUpdate{Message: &wireMessage{
		MessageID: 1,
		Chat:      wireChat{ID: 5},
		From:      &wireUser{ID: 9},
		Voice:     &wireFileRef{FileID: "v1"},
	}})
	require.True(t, ok)
	assert.Equal(t, "v1", msg.VoiceFileID)

	msg, ok = convertUpdate(wireUpdate{Message: &wireMessage{
		MessageID: 2,
		Chat:      wireChat{ID: 5},
		Document:  &wireDocument{FileID: "d1", MimeType: "image/png"},
	}})
	require.True(t, ok)
	require.NotNil(t, msg.Document)
	assert.Equal(t, "image/png", msg.Document.MimeType)

	_, ok = convertUpdate(wireUpdate{})
	assert.False(t, ok)
}

func TestIsCommand(t *testing.T) {
	assert.True(t, (&IncomingMessage{Text: "/auth hunter2"}).IsCommand())
	assert.False(t, (&IncomingMessage{Text: "imagine a cat"}).IsCommand())
	assert.False(t, (&IncomingMessage{}).IsCommand())
}
