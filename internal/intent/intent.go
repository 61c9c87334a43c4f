// Package intent classifies normalized message text into plain chat, a new
// imagine request, or a numbered shortcut against the latest generation.
package intent

import (
	"context"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/Veraticus/chibi/internal/translate"
)

// Kind tags the classification result.
type Kind int

const (
	// KindChat routes the text to the language model unchanged.
	KindChat Kind = iota
	// KindImagine starts a new image generation with a prompt.
	KindImagine
	// KindShortcut applies a numbered follow-up to the latest generation.
	KindShortcut
)

// Intent is a classified message.
type Intent struct {
	Kind Kind
	// Prompt carries the words after the imagine keyword (KindImagine).
	Prompt string
	// Shortcut is the 1-4 variant index (KindShortcut).
	Shortcut int
}

// keywordPrefix matches "imagine" and close inflections ("imagined",
// "imagining", Spanish "imagina", ...) after accent stripping.
const keywordPrefix = "imagin"

// shortcutWords maps the recognized second token to a variant index.
var shortcutWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4,
	"1": 1, "2": 2, "3": 3, "4": 4,
}

// Classifier decides what a message means. Non-English text gets one
// translation round-trip to the home language before giving up on the
// imagine keyword.
type Classifier struct {
	translator translate.Translator
	homeLang   string
}

// NewClassifier creates a classifier with the given translator.
func NewClassifier(translator translate.Translator) *Classifier {
	return &Classifier{
		translator: translator,
		homeLang:   translate.FallbackLanguage,
	}
}

// Classify tags normalized message text. Command-prefixed text never reaches
// this; the orchestrator filters it beforehand.
func (c *Classifier) Classify(ctx context.Context, text string) Intent {
	words := strings.Fields(stripAccents(text))

	if !c.matchesKeyword(words) {
		lang := c.translator.DetectLanguage(ctx, text)
		if lang != c.homeLang {
			translated := c.translator.Translate(ctx, text, c.homeLang)
			words = strings.Fields(stripAccents(translated))
		}
		if !c.matchesKeyword(words) {
			return Intent{Kind: KindChat}
		}
	}

	if len(words) > 1 {
		if n, ok := shortcutWords[strings.ToLower(words[1])]; ok {
			// The remaining words are irrelevant: a shortcut refers to
			// the latest generation, not a new prompt.
			return Intent{Kind: KindShortcut, Shortcut: n}
		}
	}

	return Intent{Kind: KindImagine, Prompt: strings.Join(words[1:], " ")}
}

func (c *Classifier) matchesKeyword(words []string) bool {
	return len(words) > 0 && strings.HasPrefix(strings.ToLower(words[0]), keywordPrefix)
}

// stripAccents removes combining marks so "imaginé" matches the keyword.
func stripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return stripped
}

// HasKeyword reports whether text already leads with the imagine keyword.
func HasKeyword(text string) bool {
	words := strings.Fields(text)
	return len(words) > 0 && strings.HasPrefix(strings.ToLower(words[0]), keywordPrefix)
}

// AddKeyword prefixes text with the imagine keyword unless already present.
func AddKeyword(text string) string {
	if strings.HasPrefix(strings.ToLower(text), "imagine ") {
		return text
	}
	return "Imagine " + text
}

// RemoveKeyword drops a leading imagine keyword and capitalizes what
// remains, leaving URLs untouched.
func RemoveKeyword(text string) string {
	words := strings.Fields(text)
	if len(words) > 0 && strings.EqualFold(words[0], "imagine") {
		words = words[1:]
	}
	return capitalizeFirst(strings.Join(words, " "))
}

func capitalizeFirst(s string) string {
	if s == "" || strings.HasPrefix(s, "http") {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
