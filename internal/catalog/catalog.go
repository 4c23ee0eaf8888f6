// Package catalog holds the fixed ordered registry of selectable languages.
//
// Catalog order is cycling order: advancing past the last entry wraps to the
// first. Selection in the rest of the client only ever derives from List and
// Next, so lookups of unknown codes indicate programmer error.
package catalog

import (
	"errors"
	"fmt"
)

// Static errors.
var (
	// ErrUnknownLanguage indicates a code that is not part of the catalog.
	ErrUnknownLanguage = errors.New("unknown language code")
	// ErrEmptyCatalog indicates a catalog with no entries.
	ErrEmptyCatalog = errors.New("catalog needs at least one language")
	// ErrDuplicateCode indicates two entries sharing a language code.
	ErrDuplicateCode = errors.New("duplicate language code")
	// ErrEmptySpeechCode indicates an entry without a speech-engine code.
	ErrEmptySpeechCode = errors.New("language has empty speech code")
)

// Language is one selectable entry. SpeechCode is the code handed to the
// speech engine, which differs from the translation code (e.g. "hi" vs
// "hi-IN").
type Language struct {
	Code        string
	DisplayName string
	SpeechCode  string
}

// Catalog is an immutable ordered set of languages.
type Catalog struct {
	languages []Language
	byCode    map[string]int
}

// New builds a catalog from the given languages, preserving their order.
// It rejects empty catalogs, duplicate codes, and missing speech codes.
func New(languages []Language) (*Catalog, error) {
	if len(languages) == 0 {
		return nil, ErrEmptyCatalog
	}

	byCode := make(map[string]int, len(languages))

	for index, language := range languages {
		if language.Code == "" {
			return nil, fmt.Errorf("%w: entry %d", ErrUnknownLanguage, index)
		}

		if language.SpeechCode == "" {
			return nil, fmt.Errorf("%w: %s", ErrEmptySpeechCode, language.Code)
		}

		if _, exists := byCode[language.Code]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCode, language.Code)
		}

		byCode[language.Code] = index
	}

	return &Catalog{
		languages: append([]Language(nil), languages...),
		byCode:    byCode,
	}, nil
}

// Default returns the reference catalog: English, Hindi, Kannada, Tamil,
// Telugu, Malayalam.
func Default() *Catalog {
	defaultCatalog, err := New([]Language{
		{Code: "en", DisplayName: "English", SpeechCode: "en-US"},
		{Code: "hi", DisplayName: "Hindi", SpeechCode: "hi-IN"},
		{Code: "kn", DisplayName: "Kannada", SpeechCode: "kn-IN"},
		{Code: "ta", DisplayName: "Tamil", SpeechCode: "ta-IN"},
		{Code: "te", DisplayName: "Telugu", SpeechCode: "te-IN"},
		{Code: "ml", DisplayName: "Malayalam", SpeechCode: "ml-IN"},
	})
	if err != nil {
		// The reference catalog is a compile-time constant; this cannot fail.
		panic(err)
	}

	return defaultCatalog
}

// List returns the languages in catalog order.
func (c *Catalog) List() []Language {
	return append([]Language(nil), c.languages...)
}

// Len returns the number of languages in the catalog.
func (c *Catalog) Len() int {
	return len(c.languages)
}

// Next returns the code immediately following the given code in catalog order,
// wrapping to the first entry after the last.
func (c *Catalog) Next(code string) (string, error) {
	index, exists := c.byCode[code]
	if !exists {
		return "", fmt.Errorf("%w: %s", ErrUnknownLanguage, code)
	}

	return c.languages[(index+1)%len(c.languages)].Code, nil
}

// Lookup returns the language registered for the given code.
func (c *Catalog) Lookup(code string) (Language, error) {
	index, exists := c.byCode[code]
	if !exists {
		return Language{}, fmt.Errorf("%w: %s", ErrUnknownLanguage, code)
	}

	return c.languages[index], nil
}

// SpeechCode resolves the speech-engine code for a language, returning the
// fallback when the code is not in the catalog.
func (c *Catalog) SpeechCode(code, fallback string) string {
	index, exists := c.byCode[code]
	if !exists {
		return fallback
	}

	return c.languages[index].SpeechCode
}
