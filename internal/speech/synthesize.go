package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultSynthBaseURL = "https://play.ht/api/v1"
	synthHTTPTimeout    = 30 * time.Second

	// pollInterval paces the conversion status checks.
	pollInterval = 1500 * time.Millisecond
	// maxAudioBytes bounds the synthesized audio download.
	maxAudioBytes = 20 << 20
	// titleLimit truncates the conversion job title.
	titleLimit = 36
)

// Synthesizer is the text-to-speech collaborator contract.
type Synthesizer interface {
	// Synthesize converts text to speech with the given voice and returns
	// the audio bytes plus a suggested filename.
	Synthesize(ctx context.Context, text, voice string) ([]byte, string, error)
}

// HTSynthesizer implements Synthesizer over the play.ht conversion API:
// submit a job, poll until converted, download the audio.
type HTSynthesizer struct {
	userID    string
	secretKey string
	baseURL   string
	http      *http.Client
	interval  time.Duration
	logger    *slog.Logger
}

// SynthesizerOption is a functional option for configuring an
// HTSynthesizer.
type SynthesizerOption func(*HTSynthesizer)

// NewHTSynthesizer creates a synthesizer with the given API credentials.
func NewHTSynthesizer(userID, secretKey string, opts ...SynthesizerOption) (*HTSynthesizer, error) {
	if userID == "" || secretKey == "" {
		return nil, fmt.Errorf("synthesizer creation failed: api credentials are required")
	}

	s := &HTSynthesizer{
		userID:    userID,
		secretKey: secretKey,
		baseURL:   defaultSynthBaseURL,
		http:      &http.Client{Timeout: synthHTTPTimeout},
		interval:  pollInterval,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// WithSynthBaseURL overrides the API endpoint (used by tests).
func WithSynthBaseURL(baseURL string) SynthesizerOption {
	return func(s *HTSynthesizer) {
		s.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithPollInterval overrides the status poll pacing (used by tests).
func WithPollInterval(interval time.Duration) SynthesizerOption {
	return func(s *HTSynthesizer) {
		s.interval = interval
	}
}

// WithSynthesizerLogger sets the logger.
func WithSynthesizerLogger(logger *slog.Logger) SynthesizerOption {
	return func(s *HTSynthesizer) {
		s.logger = logger
	}
}

type convertRequest struct {
	Voice string   `json:"voice"`
	SSML  []string `json:"ssml"`
	Title string   `json:"title"`
}

type convertResponse struct {
	TranscriptionID string `json:"transcriptionId"`
}

type statusResponse struct {
	Converted bool   `json:"converted"`
	AudioURL  string `json:"audioUrl"`
	Error     bool   `json:"error"`
	Message   string `json:"message"`
}

// Synthesize implements Synthesizer.
func (s *HTSynthesizer) Synthesize(ctx context.Context, text, voice string) ([]byte, string, error) {
	jobID, err := s.submit(ctx, text, voice)
	if err != nil {
		return nil, "", err
	}

	audioURL, err := s.waitForAudio(ctx, jobID)
	if err != nil {
		return nil, "", err
	}

	audio, err := s.download(ctx, audioURL)
	if err != nil {
		return nil, "", err
	}

	return audio, fmt.Sprintf("voice-%s.mp3", jobID), nil
}

func (s *HTSynthesizer) submit(ctx context.Context, text, voice string) (string, error) {
	title := text
	if len(title) > titleLimit {
		title = title[:titleLimit]
	}
	payload := convertRequest{
		Voice: voice,
		SSML:  []string{"<speak><p>" + html.EscapeString(text) + "</p></speak>"},
		Title: title,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode convert request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/convert", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build convert request: %w", err)
	}
	s.authorize(req)
	req.Header.Set("Content-Type", "application/json")

	var out convertResponse
	if err := s.doJSON(req, &out); err != nil {
		return "", fmt.Errorf("synthesis submit failed: %w", err)
	}
	if out.TranscriptionID == "" {
		return "", fmt.Errorf("synthesis submit returned no job id")
	}
	return out.TranscriptionID, nil
}

func (s *HTSynthesizer) waitForAudio(ctx context.Context, jobID string) (string, error) {
	statusURL := s.baseURL + "/articleStatus?transcriptionId=" + url.QueryEscape(jobID)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("synthesis wait canceled: %w", ctx.Err())
		case <-ticker.C:
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, statusURL, nil)
		if err != nil {
			return "", fmt.Errorf("failed to build status request: %w", err)
		}
		s.authorize(req)

		var status statusResponse
		if err := s.doJSON(req, &status); err != nil {
			return "", fmt.Errorf("synthesis status check failed: %w", err)
		}
		if status.Error {
			return "", fmt.Errorf("synthesis job failed: %s", status.Message)
		}
		if status.Converted {
			if status.AudioURL == "" {
				return "", fmt.Errorf("synthesis job converted without audio url")
			}
			return status.AudioURL, nil
		}
	}
}

func (s *HTSynthesizer) download(ctx context.Context, audioURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build audio request: %w", err)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("audio download failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("audio download http %d", resp.StatusCode)
	}
	audio, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read audio: %w", err)
	}
	return audio, nil
}

func (s *HTSynthesizer) authorize(req *http.Request) {
	req.Header.Set("Authorization", s.secretKey)
	req.Header.Set("X-User-ID", s.userID)
}

func (s *HTSynthesizer) doJSON(req *http.Request, out any) error {
	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
