package speech

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() []Voice {
	return []Voice{
		{Value: "en-US-A", Name: "A", LanguageCode: "en-US", Gender: "Female"},
		{Value: "en-US-B", Name: "B", LanguageCode: "en-US", Gender: "Male"},
		{Value: "en-GB-C", Name: "C", LanguageCode: "en-GB", Gender: "Female"},
		{Value: "de-DE-D", Name: "D", LanguageCode: "de-DE", Gender: "Female"},
	}
}

func TestPickMatchesLocalePrefixAndGender(t *testing.T) {
	picker := NewPicker(testCatalog(), nil)

	// Only one female de-DE voice exists, so the random pick is fixed.
	got := picker.Pick("de-DE")
	assert.Equal(t, "de-DE-D", got.Value)
}

func TestPickUsesDefaultCountryCodes(t *testing.T) {
	picker := NewPicker(testCatalog(), []string{"en-US", " de-DE "})

	got := picker.Pick("de")
	assert.Equal(t, "de-DE-D", got.Value)

	got = picker.Pick("en")
	assert.Equal(t, "en-US-A", got.Value)
}

func TestPickBareLanguageWithoutDefaultMatchesAnyCountry(t *testing.T) {
	picker := NewPicker(testCatalog(), nil)

	got := picker.Pick("en")
	assert.Contains(t, []string{"en-US-A", "en-GB-C"}, got.Value)
}

func TestPickFallsBackToFirstEntry(t *testing.T) {
	picker := NewPicker(testCatalog(), nil)

	got := picker.Pick("ja-JP")
	assert.Equal(t, "en-US-A", got.Value)
}

func TestPickNeverReturnsMale(t *testing.T) {
	picker := NewPicker(testCatalog(), []string{"en-US"})

	for i := 0; i < 50; i++ {
		got := picker.Pick("en")
		assert.NotEqual(t, "Male", got.Gender)
	}
}

func TestPickEmptyCatalog(t *testing.T) {
	picker := NewPicker(nil, nil)
	assert.Equal(t, Voice{}, picker.Pick("en"))
}

func TestDefaultVoicesHaveFemalePerLanguage(t *testing.T) {
	require.NotEmpty(t, DefaultVoices)
	picker := NewPicker(DefaultVoices, []string{"en-US", "de-DE", "es-ES", "fr-FR"})
	assert.Equal(t, "Female", picker.Pick("de").Gender)
}
