package speech

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Veraticus/chibi/internal/command"
)

const (
	downloadTimeout = 60 * time.Second
	// maxVoiceBytes bounds the voice note download.
	maxVoiceBytes = 20 << 20
)

// ErrVoiceDownload indicates the voice note could not be fetched or
// transcoded. Callers surface a voice-specific error for it instead of the
// generic one.
var ErrVoiceDownload = fmt.Errorf("speech: voice download failed")

// Transcriber is the transcription collaborator contract.
type Transcriber interface {
	// Transcribe fetches the audio at fileURL and returns its text.
	Transcribe(ctx context.Context, fileURL string) (string, error)
}

// transcriptionAPI is the slice of the OpenAI client the transcriber needs
// (allows mocking in tests).
type transcriptionAPI interface {
	CreateTranscription(ctx context.Context, request openai.AudioRequest) (openai.AudioResponse, error)
}

// commandRunner interface for subprocess execution (allows mocking in tests).
type commandRunner interface {
	RunCommandContext(ctx context.Context, name string, args ...string) (string, error)
}

// realCommandRunner wraps the command package for production use.
type realCommandRunner struct{}

func (r *realCommandRunner) RunCommandContext(ctx context.Context, name string, args ...string) (string, error) {
	output, err := command.RunCommandContext(ctx, name, args...)
	if err != nil {
		return "", fmt.Errorf("command execution failed: %w", err)
	}
	return output, nil
}

// WhisperTranscriber implements Transcriber: download the OGG voice note,
// transcode to MP3 with ffmpeg, run it through Whisper.
type WhisperTranscriber struct {
	api      transcriptionAPI
	http     *http.Client
	runner   commandRunner
	storeDir string
	logger   *slog.Logger
}

// TranscriberOption is a functional option for configuring a
// WhisperTranscriber.
type TranscriberOption func(*WhisperTranscriber)

// NewWhisperTranscriber creates a transcriber storing intermediate audio
// files under storeDir.
func NewWhisperTranscriber(apiKey, storeDir string, opts ...TranscriberOption) (*WhisperTranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("transcriber creation failed: api key is required")
	}
	if storeDir == "" {
		return nil, fmt.Errorf("transcriber creation failed: store dir is required")
	}

	t := &WhisperTranscriber{
		api:      openai.NewClient(apiKey),
		http:     &http.Client{Timeout: downloadTimeout},
		runner:   &realCommandRunner{},
		storeDir: storeDir,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// WithTranscriptionAPI replaces the Whisper API client (used by tests).
func WithTranscriptionAPI(api transcriptionAPI) TranscriberOption {
	return func(t *WhisperTranscriber) {
		t.api = api
	}
}

// WithDownloadClient overrides the HTTP client used for audio downloads.
func WithDownloadClient(httpClient *http.Client) TranscriberOption {
	return func(t *WhisperTranscriber) {
		t.http = httpClient
	}
}

// WithCommandRunner replaces the subprocess runner (used by tests).
func WithCommandRunner(runner commandRunner) TranscriberOption {
	return func(t *WhisperTranscriber) {
		t.runner = runner
	}
}

// WithTranscriberLogger sets the logger.
func WithTranscriberLogger(logger *slog.Logger) TranscriberOption {
	return func(t *WhisperTranscriber) {
		t.logger = logger
	}
}

// Transcribe implements Transcriber.
func (t *WhisperTranscriber) Transcribe(ctx context.Context, fileURL string) (string, error) {
	mp3Path, err := t.fetchAndTranscode(ctx, fileURL)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrVoiceDownload, err)
	}
	defer func() { _ = os.Remove(mp3Path) }()

	resp, err := t.api.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: mp3Path,
	})
	if err != nil {
		return "", fmt.Errorf("transcription failed: %w", err)
	}

	t.logger.InfoContext(ctx, "Transcribed voice note",
		slog.Int("chars", len(resp.Text)))
	return resp.Text, nil
}

func (t *WhisperTranscriber) fetchAndTranscode(ctx context.Context, fileURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build download request: %w", err)
	}
	resp, err := t.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("audio download failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("audio download http %d", resp.StatusCode)
	}

	base := filepath.Join(t.storeDir, fmt.Sprintf("voice-%d", time.Now().UnixNano()))
	oggPath := base + ".ogg"
	mp3Path := base + ".mp3"

	ogg, err := os.Create(oggPath)
	if err != nil {
		return "", fmt.Errorf("failed to create audio file: %w", err)
	}
	_, copyErr := io.Copy(ogg, io.LimitReader(resp.Body, maxVoiceBytes))
	closeErr := ogg.Close()
	if copyErr != nil {
		return "", fmt.Errorf("failed to write audio file: %w", copyErr)
	}
	if closeErr != nil {
		return "", fmt.Errorf("failed to close audio file: %w", closeErr)
	}
	defer func() { _ = os.Remove(oggPath) }()

	if _, err := t.runner.RunCommandContext(ctx, "ffmpeg", "-y", "-i", oggPath, mp3Path); err != nil {
		return "", fmt.Errorf("audio transcode failed: %w", err)
	}
	return mp3Path, nil
}
