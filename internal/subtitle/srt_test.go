package subtitle

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSRT = `1
00:00:01,000 --> 00:00:03,500
Hello there.

2
00:00:04,000 --> 00:00:06,000
Second line
continues here.

3
00:00:07,000 --> 00:00:09,000
Last cue.
`

func TestParseSRT(t *testing.T) {
	file := ParseSRT(sampleSRT)

	require.Len(t, file.Cues, 3)
	assert.Equal(t, FormatSRT, file.Format)

	first := file.Cues[0]
	assert.Equal(t, 1, first.Index)
	assert.Equal(t, time.Second, first.StartTime)
	assert.Equal(t, 3500*time.Millisecond, first.EndTime)
	assert.Equal(t, "Hello there.", first.Text)
	assert.True(t, first.TimingParsed)

	assert.Equal(t, "Second line\ncontinues here.", file.Cues[1].Text)
	assert.Equal(t, []string{"Second line", "continues here."}, file.Cues[1].OriginalLines)
}

func TestParseSRT_NoTrailingBlankLine(t *testing.T) {
	file := ParseSRT("1\n00:00:01,000 --> 00:00:02,000\nOnly cue")
	require.Len(t, file.Cues, 1)
	assert.Equal(t, "Only cue", file.Cues[0].Text)
}

func TestParseSRT_MalformedTimecodeKept(t *testing.T) {
	raw := "1\n00:00:01.000 -> bad\nText survives.\n\n2\n00:00:05,000 --> 00:00:06,000\nGood cue.\n"
	file := ParseSRT(raw)

	require.Len(t, file.Cues, 2)
	assert.False(t, file.Cues[0].TimingParsed)
	assert.Equal(t, "Text survives.", file.Cues[0].Text)
	assert.True(t, file.Cues[1].TimingParsed)
}

func TestParseSRT_IndexGapsTolerated(t *testing.T) {
	raw := "1\n00:00:01,000 --> 00:00:02,000\nA.\n\n7\n00:00:03,000 --> 00:00:04,000\nB.\n"
	file := ParseSRT(raw)

	require.Len(t, file.Cues, 2)
	assert.Equal(t, 7, file.Cues[1].Index)
}

func TestWriteSRT_ReindexesAndUsesTranslation(t *testing.T) {
	file := ParseSRT(sampleSRT)
	file.Cues[0].TranslatedText = "Bonjour."
	file.Cues[1].Index = 42 // writer must emit a clean ascending sequence

	out := WriteSRT(file)

	assert.True(t, strings.HasPrefix(out, "1\n00:00:01,000 --> 00:00:03,500\nBonjour.\n\n"))
	assert.Contains(t, out, "\n2\n00:00:04,000 --> 00:00:06,000\n")
	// Untranslated cues fall back to the original text.
	assert.Contains(t, out, "Last cue.")
}

func TestFormatSRTTime(t *testing.T) {
	d := time.Hour + 2*time.Minute + 3*time.Second + 45*time.Millisecond
	assert.Equal(t, "01:02:03,045", FormatSRTTime(d))
}

func TestParseSRT_RoundTrip(t *testing.T) {
	file := ParseSRT(sampleSRT)
	// The writer terminates the last cue with a blank line.
	assert.Equal(t, sampleSRT+"\n", WriteSRT(file))
}

func TestDetectLanguage_English(t *testing.T) {
	file := ParseSRT("1\n00:00:01,000 --> 00:00:02,000\nThe quick brown fox jumps over the lazy dog.\n")
	base, _ := file.Language.Base()
	assert.Equal(t, "en", base.String())
}
