package glossary

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	csvData := "en-US,fr-FR,de-DE\nwater,eau,Wasser\ncloud,nuage,\n"

	g, err := ReadCSV(strings.NewReader(csvData))
	require.NoError(t, err)

	assert.Equal(t, []string{"en-US", "fr-FR", "de-DE"}, g.Languages)
	require.Len(t, g.Entries, 2)
	assert.Equal(t, "eau", g.Entries[0].Term("fr-FR"))

	// Empty cell means no translation for that language.
	assert.False(t, g.Entries[1].Has("de-DE"))
	assert.True(t, g.Entries[1].Has("fr-FR"))
}

func TestReadCSV_SkipsEmptyRows(t *testing.T) {
	g, err := ReadCSV(strings.NewReader("en-US,fr-FR\n,\nwater,eau\n"))
	require.NoError(t, err)
	assert.Len(t, g.Entries, 1)
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.Error(t, err)
}

func TestEntry_TermMatchesLanguageBase(t *testing.T) {
	e := Entry{Translations: map[string]string{"en-US": "water"}}

	assert.Equal(t, "water", e.Term("en-US"))
	assert.Equal(t, "water", e.Term("en-GB"))
	assert.Equal(t, "", e.Term("fr-FR"))
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	g := &Glossary{
		Languages: []string{"en-US", "fr-FR"},
		Entries: []Entry{
			{Translations: map[string]string{"en-US": "water", "fr-FR": "eau"}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, g))

	parsed, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, g.Languages, parsed.Languages)
	require.Len(t, parsed.Entries, 1)
	assert.Equal(t, "eau", parsed.Entries[0].Term("fr-FR"))
}

func TestXLSX_RoundTrip(t *testing.T) {
	g := &Glossary{
		Languages: []string{"en-US", "es-ES"},
		Entries: []Entry{
			{Translations: map[string]string{"en-US": "cloud", "es-ES": "nube"}},
			{Translations: map[string]string{"en-US": "fire"}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, g))

	parsed, err := ReadXLSX(&buf)
	require.NoError(t, err)
	assert.Equal(t, g.Languages, parsed.Languages)
	require.Len(t, parsed.Entries, 2)
	assert.Equal(t, "nube", parsed.Entries[0].Term("es-ES"))
	assert.False(t, parsed.Entries[1].Has("es-ES"))
}

func TestTermsFor(t *testing.T) {
	g := &Glossary{
		Languages: []string{"en-US", "fr-FR"},
		Entries: []Entry{
			{Translations: map[string]string{"en-US": "water", "fr-FR": "eau"}},
			{Translations: map[string]string{"fr-FR": "nuage"}},
		},
	}

	assert.Equal(t, []string{"water"}, g.TermsFor("en-US"))
	assert.Equal(t, []string{"eau", "nuage"}, g.TermsFor("fr-FR"))
}

func TestDetectSourceLanguage(t *testing.T) {
	g := &Glossary{Languages: []string{"en-US", "fr-FR"}}

	code := g.DetectSourceLanguage("The quick brown fox jumps over the lazy dog near the river bank")
	assert.Equal(t, "en-US", code)
}
