package intent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeTranslator is a scripted translate.Translator.
type fakeTranslator struct {
	detected     string
	translated   string
	detectCalls  int
	translateTo  string
	translateIn  string
	translations int
}

func (f *fakeTranslator) DetectLanguage(_ context.Context, _ string) string {
	f.detectCalls++
	if f.detected == "" {
		return "en"
	}
	return f.detected
}

func (f *fakeTranslator) Translate(_ context.Context, text, target string) string {
	f.translations++
	f.translateIn = text
	f.translateTo = target
	if f.translated == "" {
		return text
	}
	return f.translated
}

func TestClassifyImagine(t *testing.T) {
	c := NewClassifier(&fakeTranslator{})

	got := c.Classify(context.Background(), "Imagine a cat")
	assert.Equal(t, KindImagine, got.Kind)
	assert.Equal(t, "a cat", got.Prompt)
}

func TestClassifyShortcut(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"Imagine two more cats", 2},
		{"imagine one", 1},
		{"Imagine 4 again please", 4},
		{"imagining three of them", 3},
	}

	c := NewClassifier(&fakeTranslator{})
	for _, tt := range tests {
		got := c.Classify(context.Background(), tt.input)
		assert.Equal(t, KindShortcut, got.Kind, "input %q", tt.input)
		assert.Equal(t, tt.want, got.Shortcut, "input %q", tt.input)
	}
}

func TestClassifyChat(t *testing.T) {
	c := NewClassifier(&fakeTranslator{})

	got := c.Classify(context.Background(), "hello there")
	assert.Equal(t, KindChat, got.Kind)
}

func TestClassifyAccentedKeyword(t *testing.T) {
	c := NewClassifier(&fakeTranslator{})

	got := c.Classify(context.Background(), "Imaginé un gato")
	assert.Equal(t, KindImagine, got.Kind)
}

func TestClassifyTranslatesOnce(t *testing.T) {
	tr := &fakeTranslator{detected: "es", translated: "Imagine a red house"}
	c := NewClassifier(tr)

	got := c.Classify(context.Background(), "Dibuja una casa roja")
	assert.Equal(t, KindImagine, got.Kind)
	assert.Equal(t, "a red house", got.Prompt)
	assert.Equal(t, 1, tr.translations)
	assert.Equal(t, "en", tr.translateTo)
}

func TestClassifyTranslationMissesKeyword(t *testing.T) {
	tr := &fakeTranslator{detected: "es", translated: "Draw a red house"}
	c := NewClassifier(tr)

	got := c.Classify(context.Background(), "Dibuja una casa roja")
	assert.Equal(t, KindChat, got.Kind)
	assert.Equal(t, 1, tr.translations)
}

func TestClassifyEnglishChatSkipsTranslation(t *testing.T) {
	tr := &fakeTranslator{detected: "en"}
	c := NewClassifier(tr)

	got := c.Classify(context.Background(), "what is the weather")
	assert.Equal(t, KindChat, got.Kind)
	assert.Equal(t, 0, tr.translations)
}

func TestAddRemoveKeyword(t *testing.T) {
	assert.Equal(t, "Imagine a dog", AddKeyword("a dog"))
	assert.Equal(t, "imagine a dog", AddKeyword("imagine a dog"))

	assert.Equal(t, "A dog", RemoveKeyword("imagine a dog"))
	assert.Equal(t, "A dog", RemoveKeyword("a dog"))
	assert.Equal(t, "https://x.com/img", RemoveKeyword("Imagine https://x.com/img"))
	assert.Equal(t, "", RemoveKeyword("imagine"))
}

func TestHasKeyword(t *testing.T) {
	assert.True(t, HasKeyword("Imagine a cat"))
	assert.True(t, HasKeyword("imagining things"))
	assert.False(t, HasKeyword("hello imagine"))
	assert.False(t, HasKeyword(""))
}
