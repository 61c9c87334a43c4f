package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL     = "https://api.telegram.org"
	defaultHTTPTimeout = 65 * time.Second

	// maxResponseBytes bounds how much of an API response is read.
	maxResponseBytes = 4 << 20
)

// Client is a minimal Telegram Bot API HTTP client covering exactly the
// calls the bot needs.
type Client struct {
	token   string
	baseURL string
	http    *http.Client
}

// ClientOption is a functional option for configuring a Client.
type ClientOption func(*Client)

// NewClient creates a Bot API client for the given token.
func NewClient(token string, opts ...ClientOption) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram client creation failed: token is required")
	}

	c := &Client{
		token:   token,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// WithBaseURL overrides the API host (used by tests).
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.http = httpClient
	}
}

func (c *Client) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
}

// apiResponse is the generic Bot API envelope.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
}

func (c *Client) postJSON(ctx context.Context, method string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL(method), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, method, out)
}

func (c *Client) do(req *http.Request, method string, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", method, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", method, err)
	}

	var envelope apiResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	if !envelope.OK {
		return fmt.Errorf("telegram %s failed: %s", method, envelope.Description)
	}
	if out != nil && len(envelope.Result) > 0 {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return fmt.Errorf("failed to decode %s result: %w", method, err)
		}
	}
	return nil
}

// wire types for inbound updates

type wireUpdate struct {
	UpdateID int64          `json:"update_id"`
	Message  *wireMessage   `json:"message"`
	Callback *wireCallback  `json:"callback_query"`
}

type wireMessage struct {
	MessageID int64           `json:"message_id"`
	Chat      wireChat        `json:"chat"`
	From      *wireUser       `json:"from"`
	Text      string          `json:"text"`
	Caption   string          `json:"caption"`
	Photo     []wirePhotoSize `json:"photo"`
	Voice     *wireFileRef    `json:"voice"`
	Document  *wireDocument   `json:"document"`
}

type wireChat struct {
	ID int64 `json:"id"`
}

type wireUser struct {
	ID int64 `json:"id"`
}

type wirePhotoSize struct {
	FileID string `json:"file_id"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type wireFileRef struct {
	FileID string `json:"file_id"`
}

type wireDocument struct {
	FileID   string `json:"file_id"`
	FileName string `json:"file_name"`
	MimeType string `json:"mime_type"`
}

type wireCallback struct {
	ID      string       `json:"id"`
	From    *wireUser    `json:"from"`
	Data    string       `json:"data"`
	Message *wireMessage `json:"message"`
}

type wireFile struct {
	FileID   string `json:"file_id"`
	FilePath string `json:"file_path"`
}

// GetUpdates long-polls for updates after the given offset and returns them
// together with the next offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]wireUpdate, int64, error) {
	secs := int(timeout.Seconds())
	if secs < 1 {
		secs = 1
	}

	payload := map[string]any{
		"timeout":         secs,
		"allowed_updates": []string{"message", "callback_query"},
	}
	if offset > 0 {
		payload["offset"] = offset
	}

	var updates []wireUpdate
	if err := c.postJSON(ctx, "getUpdates", payload, &updates); err != nil {
		return nil, offset, err
	}

	next := offset
	for _, u := range updates {
		if u.UpdateID >= next {
			next = u.UpdateID + 1
		}
	}
	return updates, next, nil
}

type sentMessage struct {
	MessageID int64 `json:"message_id"`
}

// SendMessage sends text with an optional inline keyboard and returns the
// message ID.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, buttons []Button) (int64, error) {
	payload := map[string]any{
		"chat_id":                  chatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	}
	if len(buttons) > 0 {
		payload["reply_markup"] = inlineKeyboard(buttons)
	}

	var sent sentMessage
	if err := c.postJSON(ctx, "sendMessage", payload, &sent); err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// inlineKeyboard lays buttons out in rows of four, so the eight-button
// variant/upscale grid renders as two aligned rows.
func inlineKeyboard(buttons []Button) map[string]any {
	const perRow = 4
	var rows [][]map[string]any
	row := make([]map[string]any, 0, perRow)
	for _, b := range buttons {
		btn := map[string]any{"text": b.Label}
		if b.URL != "" {
			btn["url"] = b.URL
		} else {
			btn["callback_data"] = b.Data
		}
		row = append(row, btn)
		if len(row) == perRow {
			rows = append(rows, row)
			row = make([]map[string]any, 0, perRow)
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return map[string]any{"inline_keyboard": rows}
}

// SendPhotoGroup uploads images as one media group.
func (c *Client) SendPhotoGroup(ctx context.Context, chatID int64, images [][]byte) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	media := make([]map[string]string, 0, len(images))
	for i, img := range images {
		name := fmt.Sprintf("photo%d", i)
		part, err := writer.CreateFormFile(name, name+".png")
		if err != nil {
			return fmt.Errorf("failed to build media group: %w", err)
		}
		if _, err := part.Write(img); err != nil {
			return fmt.Errorf("failed to build media group: %w", err)
		}
		media = append(media, map[string]string{
			"type":  "photo",
			"media": "attach://" + name,
		})
	}

	mediaJSON, err := json.Marshal(media)
	if err != nil {
		return fmt.Errorf("failed to encode media group: %w", err)
	}
	if err := writer.WriteField("chat_id", fmt.Sprintf("%d", chatID)); err != nil {
		return fmt.Errorf("failed to build media group: %w", err)
	}
	if err := writer.WriteField("media", string(mediaJSON)); err != nil {
		return fmt.Errorf("failed to build media group: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to build media group: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL("sendMediaGroup"), &buf)
	if err != nil {
		return fmt.Errorf("failed to build sendMediaGroup request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.do(req, "sendMediaGroup", nil)
}

// SendDocumentURL sends a document by URL; Telegram fetches it server-side.
func (c *Client) SendDocumentURL(ctx context.Context, chatID int64, fileURL string) error {
	payload := map[string]any{
		"chat_id":  chatID,
		"document": fileURL,
	}
	return c.postJSON(ctx, "sendDocument", payload, nil)
}

// SendVoice uploads an audio file as a voice note.
func (c *Client) SendVoice(ctx context.Context, chatID int64, audio []byte, filename string) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("voice", filename)
	if err != nil {
		return fmt.Errorf("failed to build voice upload: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return fmt.Errorf("failed to build voice upload: %w", err)
	}
	if err := writer.WriteField("chat_id", fmt.Sprintf("%d", chatID)); err != nil {
		return fmt.Errorf("failed to build voice upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to build voice upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL("sendVoice"), &buf)
	if err != nil {
		return fmt.Errorf("failed to build sendVoice request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.do(req, "sendVoice", nil)
}

// SendChatAction emits a chat action such as "typing".
func (c *Client) SendChatAction(ctx context.Context, chatID int64, action string) error {
	payload := map[string]any{
		"chat_id": chatID,
		"action":  action,
	}
	return c.postJSON(ctx, "sendChatAction", payload, nil)
}

// DeleteMessage deletes a previously sent message.
func (c *Client) DeleteMessage(ctx context.Context, chatID int64, messageID int64) error {
	payload := map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
	}
	return c.postJSON(ctx, "deleteMessage", payload, nil)
}

// AnswerCallback acknowledges a button press so the client stops showing a
// progress spinner.
func (c *Client) AnswerCallback(ctx context.Context, callbackID string) error {
	payload := map[string]any{
		"callback_query_id": callbackID,
	}
	return c.postJSON(ctx, "answerCallbackQuery", payload, nil)
}

// FileURL resolves a file ID to a direct download URL.
func (c *Client) FileURL(ctx context.Context, fileID string) (string, error) {
	if fileID == "" {
		return "", fmt.Errorf("file url resolution failed: file id is required")
	}

	payload := map[string]any{"file_id": fileID}
	var file wireFile
	if err := c.postJSON(ctx, "getFile", payload, &file); err != nil {
		return "", err
	}
	if file.FilePath == "" {
		return "", fmt.Errorf("telegram getFile returned no file path for %s", fileID)
	}
	return fmt.Sprintf("%s/file/bot%s/%s", c.baseURL, c.token, strings.TrimLeft(file.FilePath, "/")), nil
}

// DownloadFile fetches a file previously resolved with FileURL.
func (c *Client) DownloadFile(ctx context.Context, fileURL string) ([]byte, error) {
	if _, err := url.Parse(fileURL); err != nil {
		return nil, fmt.Errorf("invalid file url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build download request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("file download failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("file download http %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read file download: %w", err)
	}
	return data, nil
}
