package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSystemPrompt_MentionsMarkersAndLanguages(t *testing.T) {
	prompt := buildSystemPrompt(TranslateRequest{
		SourceLang:   "en-US",
		TargetLang:   "fr-FR",
		Instructions: "Legal contracts.",
	})
	assert.Contains(t, prompt, "__DNT_<number>__")
	assert.Contains(t, prompt, "en-US")
	assert.Contains(t, prompt, "fr-FR")
	assert.Contains(t, prompt, "Legal contracts.")
	assert.Contains(t, prompt, `"translations"`)
}

func TestParseResponse_ObjectFormat(t *testing.T) {
	out, err := parseResponse(`{"translations":["Bonjour","monde"]}`, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Bonjour", "monde"}, out)
}

func TestParseResponse_ArbitraryKey(t *testing.T) {
	out, err := parseResponse(`{"results":["Hallo"]}`, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Hallo"}, out)
}

func TestParseResponse_BareArray(t *testing.T) {
	out, err := parseResponse(`["uno","dos"]`, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"uno", "dos"}, out)
}

func TestParseResponse_CountMismatch(t *testing.T) {
	_, err := parseResponse(`{"translations":["solo"]}`, 2)
	var mismatch *CountMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, 2, mismatch.Expected)
	assert.Equal(t, 1, mismatch.Got)
}

func TestParseResponse_Garbage(t *testing.T) {
	_, err := parseResponse(`not json at all`, 1)
	var perr *Error
	assert.ErrorAs(t, err, &perr)
}

func TestIsRetryableError(t *testing.T) {
	assert.True(t, isRetryableError(errors.New("429 Too Many Requests")))
	assert.True(t, isRetryableError(errors.New("context deadline exceeded: timeout")))
	assert.False(t, isRetryableError(errors.New("invalid api key")))
}

func TestMockProvider_KnownAndUnknown(t *testing.T) {
	m := NewMockProvider()
	m.Translations["Hello"] = "Bonjour"

	out, err := m.Translate(context.Background(), TranslateRequest{
		Texts:      []string{"Hello", "stranger"},
		TargetLang: "fr-FR",
	})
	require.NoError(t, err)
	assert.Equal(t, "Bonjour", out[0])
	assert.Equal(t, "[stranger→fr-FR]", out[1])
	assert.Equal(t, 1, m.CallCount())
}
