package tmx

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite_EscapesSpecialCharacters(t *testing.T) {
	mem := NewMemory()
	mem.Add(Unit{
		SourceText: `Use <b>bold</b> & "quotes"`,
		TargetText: "Utilisez <b>gras</b>",
		SourceLang: "en-US",
		TargetLang: "fr-FR",
	})

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, mem, "en-US"))

	out := buf.String()
	assert.Contains(t, out, "&lt;b&gt;bold&lt;/b&gt;")
	assert.Contains(t, out, "&amp;")
	assert.NotContains(t, out, "<b>bold</b>")
	assert.Contains(t, out, `srclang="en-US"`)
	assert.Contains(t, out, `version="1.4"`)
	assert.Contains(t, out, `xml:lang="fr-FR"`)
}

func TestReadWrite_RoundTrip(t *testing.T) {
	mem := NewMemory()
	mem.Add(Unit{
		SourceText: "Click <b>Save</b> to continue",
		TargetText: "Cliquez sur <b>Enregistrer</b>",
		SourceLang: "en-US",
		TargetLang: "fr-FR",
		Quality:    80,
		UsageCount: 3,
		Context:    "toolbar",
	})

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, mem, "en-US"))

	parsed, err := Read(&buf)
	require.NoError(t, err)
	require.Len(t, parsed.Units, 1)

	unit := parsed.Units[0]
	// Entity-decoded back to literal inline markup.
	assert.Equal(t, "Click <b>Save</b> to continue", unit.SourceText)
	assert.Equal(t, "Cliquez sur <b>Enregistrer</b>", unit.TargetText)
	assert.Equal(t, 80, unit.Quality)
	assert.Equal(t, 3, unit.UsageCount)
	assert.Equal(t, "toolbar", unit.Context)
	assert.True(t, parsed.TargetLanguages["fr-FR"])
}

func TestRead_ToleratesMissingOptionalAttributes(t *testing.T) {
	doc := `<?xml version="1.0"?>
<tmx version="1.4">
  <header srclang="en"/>
  <body>
    <tu>
      <tuv xml:lang="en"><seg>Hello</seg></tuv>
      <tuv xml:lang="fr"><seg>Bonjour</seg></tuv>
    </tu>
  </body>
</tmx>`

	mem, err := Read(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, mem.Units, 1)
	assert.Equal(t, "Hello", mem.Units[0].SourceText)
	assert.Equal(t, "Bonjour", mem.Units[0].TargetText)
	assert.Zero(t, mem.Units[0].Quality)
}

func TestRead_MultipleTargetVariants(t *testing.T) {
	doc := `<tmx version="1.4">
  <header srclang="en"/>
  <body>
    <tu>
      <tuv xml:lang="en"><seg>Hello</seg></tuv>
      <tuv xml:lang="fr"><seg>Bonjour</seg></tuv>
      <tuv xml:lang="de"><seg>Hallo</seg></tuv>
    </tu>
  </body>
</tmx>`

	mem, err := Read(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Len(t, mem.Units, 2)
	assert.True(t, mem.TargetLanguages["fr"])
	assert.True(t, mem.TargetLanguages["de"])
}

func TestRead_SkipsSingleVariantUnits(t *testing.T) {
	doc := `<tmx version="1.4">
  <header srclang="en"/>
  <body>
    <tu><tuv xml:lang="en"><seg>Orphan</seg></tuv></tu>
    <tu>
      <tuv xml:lang="en"><seg>Pair</seg></tuv>
      <tuv xml:lang="fr"><seg>Paire</seg></tuv>
    </tu>
  </body>
</tmx>`

	mem, err := Read(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Len(t, mem.Units, 1)
}

func TestRead_MalformedXML(t *testing.T) {
	_, err := Read(strings.NewReader("<tmx><body><tu>"))
	assert.Error(t, err)
}
