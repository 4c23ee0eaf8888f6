// Package catalog_test tests the language registry.
package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anuvadml/anuvad/internal/catalog"
)

func TestDefaultCatalogOrder(t *testing.T) {
	t.Parallel()

	languages := catalog.Default().List()
	require.Len(t, languages, 6)

	codes := make([]string, 0, len(languages))
	for _, language := range languages {
		codes = append(codes, language.Code)
	}

	assert.Equal(t, []string{"en", "hi", "kn", "ta", "te", "ml"}, codes)
}

func TestNextWrapsAtEnd(t *testing.T) {
	t.Parallel()

	defaultCatalog := catalog.Default()

	next, err := defaultCatalog.Next("ml")
	require.NoError(t, err)
	assert.Equal(t, "en", next)
}

func TestNextFullCycleReturnsToStart(t *testing.T) {
	t.Parallel()

	defaultCatalog := catalog.Default()
	code := "en"

	for range defaultCatalog.Len() {
		var err error

		code, err = defaultCatalog.Next(code)
		require.NoError(t, err)
	}

	assert.Equal(t, "en", code)
}

func TestNextUnknownCode(t *testing.T) {
	t.Parallel()

	_, err := catalog.Default().Next("xx")
	require.ErrorIs(t, err, catalog.ErrUnknownLanguage)
}

func TestLookup(t *testing.T) {
	t.Parallel()

	language, err := catalog.Default().Lookup("hi")
	require.NoError(t, err)
	assert.Equal(t, "Hindi", language.DisplayName)
	assert.Equal(t, "hi-IN", language.SpeechCode)

	_, err = catalog.Default().Lookup("zz")
	require.ErrorIs(t, err, catalog.ErrUnknownLanguage)
}

func TestSpeechCodeFallback(t *testing.T) {
	t.Parallel()

	defaultCatalog := catalog.Default()

	assert.Equal(t, "ta-IN", defaultCatalog.SpeechCode("ta", "en-US"))
	assert.Equal(t, "en-US", defaultCatalog.SpeechCode("xx", "en-US"))
}

func TestNewValidation(t *testing.T) {
	t.Parallel()

	_, err := catalog.New(nil)
	require.ErrorIs(t, err, catalog.ErrEmptyCatalog)

	_, err = catalog.New([]catalog.Language{
		{Code: "en", DisplayName: "English", SpeechCode: "en-US"},
		{Code: "en", DisplayName: "English (again)", SpeechCode: "en-GB"},
	})
	require.ErrorIs(t, err, catalog.ErrDuplicateCode)

	_, err = catalog.New([]catalog.Language{
		{Code: "en", DisplayName: "English", SpeechCode: ""},
	})
	require.ErrorIs(t, err, catalog.ErrEmptySpeechCode)
}

func TestNewPreservesInsertionOrder(t *testing.T) {
	t.Parallel()

	custom, err := catalog.New([]catalog.Language{
		{Code: "fr", DisplayName: "French", SpeechCode: "fr-FR"},
		{Code: "de", DisplayName: "German", SpeechCode: "de-DE"},
	})
	require.NoError(t, err)

	next, err := custom.Next("de")
	require.NoError(t, err)
	assert.Equal(t, "fr", next)
}
