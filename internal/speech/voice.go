// Package speech covers the three voice concerns: picking a synthesis voice
// for a language, transcribing voice notes, and text-to-speech delivery.
package speech

import (
	"math/rand"
	"strings"
)

// Voice is one entry of the synthesis voice catalog.
type Voice struct {
	// Value is the backend voice identifier, e.g. "en-US-JaneNeural".
	Value string `json:"value" yaml:"value"`
	// Name is the human-readable name used in previews.
	Name string `json:"name" yaml:"name"`
	// LanguageCode is the voice's locale, e.g. "en-US".
	LanguageCode string `json:"languageCode" yaml:"languageCode"`
	// Gender is the catalog's gender tag.
	Gender string `json:"gender" yaml:"gender"`
}

// Picker selects voices from a catalog. Selection is intentionally
// non-deterministic: repeated picks for the same language may differ.
type Picker struct {
	voices []Voice
	// countryDefaults maps a bare language code to a full locale,
	// e.g. "en" -> "en-US".
	countryDefaults map[string]string
}

// NewPicker creates a voice picker. defaultCountryCodes is an
// operator-configured list of fully qualified locales ("en-US", "de-DE")
// whose language part becomes the key for bare-language lookups.
func NewPicker(voices []Voice, defaultCountryCodes []string) *Picker {
	defaults := make(map[string]string, len(defaultCountryCodes))
	for _, code := range defaultCountryCodes {
		code = strings.TrimSpace(code)
		lang, _, found := strings.Cut(code, "-")
		if found {
			defaults[lang] = code
		}
	}
	return &Picker{
		voices:          voices,
		countryDefaults: defaults,
	}
}

// Pick returns a voice for the language tag. Bare language codes are
// upgraded via the default-country table, then the catalog is filtered to
// female voices whose locale matches as a prefix; one match is chosen at
// random. With no match the catalog's first entry is the fallback.
func (p *Picker) Pick(language string) Voice {
	if full, ok := p.countryDefaults[language]; ok {
		language = full
	}

	var matching []Voice
	for _, v := range p.voices {
		if strings.HasPrefix(v.LanguageCode, language) && v.Gender == "Female" {
			matching = append(matching, v)
		}
	}

	if len(matching) == 0 {
		if len(p.voices) == 0 {
			return Voice{}
		}
		return p.voices[0]
	}
	return matching[rand.Intn(len(matching))]
}

// DefaultVoices is the built-in catalog used when the operator does not
// supply one.
var DefaultVoices = []Voice{
	{Value: "en-US-JaneNeural", Name: "Jane", LanguageCode: "en-US", Gender: "Female"},
	{Value: "en-US-JennyNeural", Name: "Jenny", LanguageCode: "en-US", Gender: "Female"},
	{Value: "en-US-GuyNeural", Name: "Guy", LanguageCode: "en-US", Gender: "Male"},
	{Value: "en-GB-SoniaNeural", Name: "Sonia", LanguageCode: "en-GB", Gender: "Female"},
	{Value: "de-DE-KatjaNeural", Name: "Katja", LanguageCode: "de-DE", Gender: "Female"},
	{Value: "de-DE-ConradNeural", Name: "Conrad", LanguageCode: "de-DE", Gender: "Male"},
	{Value: "es-ES-ElviraNeural", Name: "Elvira", LanguageCode: "es-ES", Gender: "Female"},
	{Value: "es-MX-DaliaNeural", Name: "Dalia", LanguageCode: "es-MX", Gender: "Female"},
	{Value: "fr-FR-DeniseNeural", Name: "Denise", LanguageCode: "fr-FR", Gender: "Female"},
	{Value: "it-IT-ElsaNeural", Name: "Elsa", LanguageCode: "it-IT", Gender: "Female"},
	{Value: "pt-BR-FranciscaNeural", Name: "Francisca", LanguageCode: "pt-BR", Gender: "Female"},
	{Value: "ja-JP-NanamiNeural", Name: "Nanami", LanguageCode: "ja-JP", Gender: "Female"},
	{Value: "ru-RU-SvetlanaNeural", Name: "Svetlana", LanguageCode: "ru-RU", Gender: "Female"},
	{Value: "nl-NL-ColetteNeural", Name: "Colette", LanguageCode: "nl-NL", Gender: "Female"},
	{Value: "pl-PL-ZofiaNeural", Name: "Zofia", LanguageCode: "pl-PL", Gender: "Female"},
}
