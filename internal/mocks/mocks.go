// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"
	"sync"

	"github.com/Veraticus/chibi/internal/imagine"
	"github.com/Veraticus/chibi/internal/llm"
	"github.com/Veraticus/chibi/internal/session"
	"github.com/Veraticus/chibi/internal/shorten"
	"github.com/Veraticus/chibi/internal/speech"
	"github.com/Veraticus/chibi/internal/telegram"
	"github.com/Veraticus/chibi/internal/translate"
)

// incomingChannelSize is the buffer size for the mock update channel.
const incomingChannelSize = 100

// Compile-time checks to ensure mocks implement their interfaces.
var (
	_ telegram.Messenger   = (*MockMessenger)(nil)
	_ llm.LLM              = (*MockLLM)(nil)
	_ imagine.Generator    = (*MockGenerator)(nil)
	_ imagine.Splitter     = (*MockSplitter)(nil)
	_ speech.Transcriber   = (*MockTranscriber)(nil)
	_ speech.Synthesizer   = (*MockSynthesizer)(nil)
	_ translate.Translator = (*MockTranslator)(nil)
	_ shorten.Shortener    = (*MockShortener)(nil)
)

// SentMessage records one SendMessage call.
type SentMessage struct {
	ChatID  int64
	Text    string
	Buttons []telegram.Button
}

// SentVoice records one SendVoice call.
type SentVoice struct {
	ChatID   int64
	Audio    []byte
	Filename string
}

// MockMessenger is a test implementation of telegram.Messenger. It records
// every outbound call and lets tests feed inbound messages through the
// subscription channel.
type MockMessenger struct {
	mu            sync.Mutex
	messages      []SentMessage
	photoGroups   [][][]byte
	documentURLs  []string
	voices        []SentVoice
	typingChats   []int64
	deleted       []int64
	answered      []string
	nextMessageID int64
	incoming      chan telegram.IncomingMessage

	// Optional overrides for error injection.
	SendMessageFunc func(ctx context.Context, chatID int64, text string, buttons []telegram.Button) (int64, error)
	SendVoiceFunc   func(ctx context.Context, chatID int64, audio []byte, filename string) error
	FileURLFunc     func(ctx context.Context, fileID string) (string, error)
}

// NewMockMessenger creates a mock messenger.
func NewMockMessenger() *MockMessenger {
	return &MockMessenger{
		incoming: make(chan telegram.IncomingMessage, incomingChannelSize),
	}
}

// SendMessage implements telegram.Messenger.
func (m *MockMessenger) SendMessage(ctx context.Context, chatID int64, text string, buttons []telegram.Button) (int64, error) {
	if m.SendMessageFunc != nil {
		return m.SendMessageFunc(ctx, chatID, text, buttons)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, SentMessage{ChatID: chatID, Text: text, Buttons: buttons})
	m.nextMessageID++
	return m.nextMessageID, nil
}

// SendPhotoGroup implements telegram.Messenger.
func (m *MockMessenger) SendPhotoGroup(_ context.Context, _ int64, images [][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.photoGroups = append(m.photoGroups, images)
	return nil
}

// SendDocumentURL implements telegram.Messenger.
func (m *MockMessenger) SendDocumentURL(_ context.Context, _ int64, fileURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.documentURLs = append(m.documentURLs, fileURL)
	return nil
}

// SendVoice implements telegram.Messenger.
func (m *MockMessenger) SendVoice(ctx context.Context, chatID int64, audio []byte, filename string) error {
	if m.SendVoiceFunc != nil {
		return m.SendVoiceFunc(ctx, chatID, audio, filename)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.voices = append(m.voices, SentVoice{ChatID: chatID, Audio: audio, Filename: filename})
	return nil
}

// SendTyping implements telegram.Messenger.
func (m *MockMessenger) SendTyping(_ context.Context, chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.typingChats = append(m.typingChats, chatID)
	return nil
}

// DeleteMessage implements telegram.Messenger.
func (m *MockMessenger) DeleteMessage(_ context.Context, _ int64, messageID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, messageID)
	return nil
}

// AnswerCallback implements telegram.Messenger.
func (m *MockMessenger) AnswerCallback(_ context.Context, callbackID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.answered = append(m.answered, callbackID)
	return nil
}

// FileURL implements telegram.Messenger.
func (m *MockMessenger) FileURL(ctx context.Context, fileID string) (string, error) {
	if m.FileURLFunc != nil {
		return m.FileURLFunc(ctx, fileID)
	}
	return "https://files.example.com/" + fileID, nil
}

// Subscribe implements telegram.Messenger.
func (m *MockMessenger) Subscribe(ctx context.Context) (<-chan telegram.IncomingMessage, error) {
	out := make(chan telegram.IncomingMessage)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-m.incoming:
				if !ok {
					return
				}
				select {
				case out <- msg:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Deliver feeds an inbound message to the active subscription.
func (m *MockMessenger) Deliver(msg telegram.IncomingMessage) {
	m.incoming <- msg
}

// CloseIncoming ends the subscription stream.
func (m *MockMessenger) CloseIncoming() {
	close(m.incoming)
}

// Messages returns a copy of all recorded SendMessage calls.
func (m *MockMessenger) Messages() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentMessage, len(m.messages))
	copy(out, m.messages)
	return out
}

// LastMessage returns the most recent SendMessage call.
func (m *MockMessenger) LastMessage() (SentMessage, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.messages) == 0 {
		return SentMessage{}, false
	}
	return m.messages[len(m.messages)-1], true
}

// PhotoGroups returns all recorded SendPhotoGroup payloads.
func (m *MockMessenger) PhotoGroups() [][][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][][]byte, len(m.photoGroups))
	copy(out, m.photoGroups)
	return out
}

// DocumentURLs returns all recorded SendDocumentURL calls.
func (m *MockMessenger) DocumentURLs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.documentURLs))
	copy(out, m.documentURLs)
	return out
}

// Voices returns all recorded SendVoice calls.
func (m *MockMessenger) Voices() []SentVoice {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentVoice, len(m.voices))
	copy(out, m.voices)
	return out
}

// Answered returns all acknowledged callback IDs.
func (m *MockMessenger) Answered() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.answered))
	copy(out, m.answered)
	return out
}

// Deleted returns all deleted message IDs.
func (m *MockMessenger) Deleted() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int64, len(m.deleted))
	copy(out, m.deleted)
	return out
}

// MockLLM is a test implementation of llm.LLM.
type MockLLM struct {
	mu          sync.Mutex
	asks        []string
	model       llm.Model
	temperature llm.Temperature

	// Reply is returned by Ask when AskFunc is unset.
	Reply string
	// AskFunc allows tests to provide custom behavior.
	AskFunc func(ctx context.Context, text string) (string, error)
}

// NewMockLLM creates a mock LLM with a canned reply.
func NewMockLLM(reply string) *MockLLM {
	return &MockLLM{Reply: reply}
}

// Ask implements llm.LLM.
func (m *MockLLM) Ask(ctx context.Context, text string) (string, error) {
	m.mu.Lock()
	m.asks = append(m.asks, text)
	m.mu.Unlock()
	if m.AskFunc != nil {
		return m.AskFunc(ctx, text)
	}
	return m.Reply, nil
}

// SetModel implements llm.LLM.
func (m *MockLLM) SetModel(model llm.Model) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.model = model
}

// SetTemperature implements llm.LLM.
func (m *MockLLM) SetTemperature(temp llm.Temperature) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.temperature = temp
}

// Asks returns all prompts sent to Ask.
func (m *MockLLM) Asks() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.asks))
	copy(out, m.asks)
	return out
}

// Model returns the last model set.
func (m *MockLLM) Model() llm.Model {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.model
}

// Temperature returns the last temperature set.
func (m *MockLLM) Temperature() llm.Temperature {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.temperature
}

// GeneratorCall records one image-generation request.
type GeneratorCall struct {
	Op     string
	Prompt string
	GenID  string
	N      int
}

// MockGenerator is a test implementation of imagine.Generator.
type MockGenerator struct {
	mu    sync.Mutex
	calls []GeneratorCall

	GenerateFunc func(ctx context.Context, prompt string) (session.Generation, error)
	UpscaleFunc  func(ctx context.Context, gen session.Generation, n int) (string, error)
	VariateFunc  func(ctx context.Context, gen session.Generation, n int) (session.Generation, error)
}

// NewMockGenerator creates a mock generator with usable defaults.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Generate implements imagine.Generator.
func (m *MockGenerator) Generate(ctx context.Context, prompt string) (session.Generation, error) {
	m.mu.Lock()
	m.calls = append(m.calls, GeneratorCall{Op: "generate", Prompt: prompt})
	m.mu.Unlock()
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}
	return session.Generation{
		ID:      "gen-" + prompt,
		Content: "**" + prompt + "**",
		URI:     "https://images.example.com/gen.png",
	}, nil
}

// Upscale implements imagine.Generator.
func (m *MockGenerator) Upscale(ctx context.Context, gen session.Generation, n int) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, GeneratorCall{Op: "upscale", GenID: gen.ID, N: n})
	m.mu.Unlock()
	if m.UpscaleFunc != nil {
		return m.UpscaleFunc(ctx, gen, n)
	}
	return "https://images.example.com/" + gen.ID + "-upscaled.png", nil
}

// Variate implements imagine.Generator.
func (m *MockGenerator) Variate(ctx context.Context, gen session.Generation, n int) (session.Generation, error) {
	m.mu.Lock()
	m.calls = append(m.calls, GeneratorCall{Op: "variate", GenID: gen.ID, N: n})
	m.mu.Unlock()
	if m.VariateFunc != nil {
		return m.VariateFunc(ctx, gen, n)
	}
	return session.Generation{
		ID:      gen.ID + "-v",
		Content: gen.Content,
		URI:     "https://images.example.com/variation.png",
	}, nil
}

// Calls returns all recorded generator calls.
func (m *MockGenerator) Calls() []GeneratorCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]GeneratorCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// MockSplitter is a test implementation of imagine.Splitter.
type MockSplitter struct {
	mu   sync.Mutex
	uris []string

	SplitFunc func(ctx context.Context, uri string) ([][]byte, error)
}

// NewMockSplitter creates a mock splitter returning four stub quadrants.
func NewMockSplitter() *MockSplitter {
	return &MockSplitter{}
}

// SplitQuadrants implements imagine.Splitter.
func (m *MockSplitter) SplitQuadrants(ctx context.Context, uri string) ([][]byte, error) {
	m.mu.Lock()
	m.uris = append(m.uris, uri)
	m.mu.Unlock()
	if m.SplitFunc != nil {
		return m.SplitFunc(ctx, uri)
	}
	return [][]byte{{1}, {2}, {3}, {4}}, nil
}

// URIs returns all split image URIs.
func (m *MockSplitter) URIs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.uris))
	copy(out, m.uris)
	return out
}

// MockTranscriber is a test implementation of speech.Transcriber.
type MockTranscriber struct {
	mu   sync.Mutex
	urls []string

	// Text is returned by Transcribe when TranscribeFunc is unset.
	Text           string
	TranscribeFunc func(ctx context.Context, fileURL string) (string, error)
}

// NewMockTranscriber creates a mock transcriber with a canned transcript.
func NewMockTranscriber(text string) *MockTranscriber {
	return &MockTranscriber{Text: text}
}

// Transcribe implements speech.Transcriber.
func (m *MockTranscriber) Transcribe(ctx context.Context, fileURL string) (string, error) {
	m.mu.Lock()
	m.urls = append(m.urls, fileURL)
	m.mu.Unlock()
	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, fileURL)
	}
	return m.Text, nil
}

// URLs returns all transcribed file URLs.
func (m *MockTranscriber) URLs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.urls))
	copy(out, m.urls)
	return out
}

// SynthesizeCall records one text-to-speech request.
type SynthesizeCall struct {
	Text  string
	Voice string
}

// MockSynthesizer is a test implementation of speech.Synthesizer.
type MockSynthesizer struct {
	mu    sync.Mutex
	calls []SynthesizeCall

	SynthesizeFunc func(ctx context.Context, text, voice string) ([]byte, string, error)
}

// NewMockSynthesizer creates a mock synthesizer.
func NewMockSynthesizer() *MockSynthesizer {
	return &MockSynthesizer{}
}

// Synthesize implements speech.Synthesizer.
func (m *MockSynthesizer) Synthesize(ctx context.Context, text, voice string) ([]byte, string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, SynthesizeCall{Text: text, Voice: voice})
	m.mu.Unlock()
	if m.SynthesizeFunc != nil {
		return m.SynthesizeFunc(ctx, text, voice)
	}
	return []byte("audio"), "speech.mp3", nil
}

// Calls returns all recorded synthesis requests.
func (m *MockSynthesizer) Calls() []SynthesizeCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SynthesizeCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// MockTranslator is a test implementation of translate.Translator. By
// default it detects English and translates by identity.
type MockTranslator struct {
	// Language is returned by DetectLanguage when DetectFunc is unset.
	Language      string
	DetectFunc    func(ctx context.Context, text string) string
	TranslateFunc func(ctx context.Context, text, targetLang string) string
}

// NewMockTranslator creates a mock translator detecting the given language.
func NewMockTranslator(language string) *MockTranslator {
	return &MockTranslator{Language: language}
}

// DetectLanguage implements translate.Translator.
func (m *MockTranslator) DetectLanguage(ctx context.Context, text string) string {
	if m.DetectFunc != nil {
		return m.DetectFunc(ctx, text)
	}
	if m.Language == "" {
		return translate.FallbackLanguage
	}
	return m.Language
}

// Translate implements translate.Translator.
func (m *MockTranslator) Translate(ctx context.Context, text, targetLang string) string {
	if m.TranslateFunc != nil {
		return m.TranslateFunc(ctx, text, targetLang)
	}
	return text
}

// MockShortener is a test implementation of shorten.Shortener.
type MockShortener struct {
	ShortenFunc func(ctx context.Context, longURL string) (string, error)
}

// NewMockShortener creates a mock shortener.
func NewMockShortener() *MockShortener {
	return &MockShortener{}
}

// Shorten implements shorten.Shortener.
func (m *MockShortener) Shorten(ctx context.Context, longURL string) (string, error) {
	if m.ShortenFunc != nil {
		return m.ShortenFunc(ctx, longURL)
	}
	return "https://tiny.example/x", nil
}
