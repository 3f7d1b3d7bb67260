package subtitle

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// vttTimeRe matches a WebVTT timing line: 00:00:01.000 --> 00:00:04.000,
// optionally followed by cue settings. The hour component is optional per
// the WebVTT grammar.
var vttTimeRe = regexp.MustCompile(`(?:(\d{2,}):)?(\d{2}):(\d{2})\.(\d{3}) --> (?:(\d{2,}):)?(\d{2}):(\d{2})\.(\d{3})(?:[ \t]+(.+))?`)

// voiceTagRe matches a <v Speaker> tag wrapping cue text. (?s) lets the
// body span multiple cue lines.
var voiceTagRe = regexp.MustCompile(`(?s)^<v(?:\.[^ >]*)?\s+([^>]+)>(.*?)(?:</v>)?$`)

// ParseVTT parses WebVTT content. NOTE/STYLE/REGION blocks are preserved
// verbatim; malformed cue timing lines keep the cue with
// TimingParsed=false.
func ParseVTT(content string) *File {
	file := &File{Format: FormatVTT}

	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	blocks := strings.Split(normalized, "\n\n")

	cueIndex := 0
	for i, block := range blocks {
		block = strings.Trim(block, "\n")
		if block == "" {
			continue
		}

		lines := strings.Split(block, "\n")

		if i == 0 && strings.HasPrefix(lines[0], "WEBVTT") {
			if len(lines) == 1 {
				continue
			}
			// Header block may carry metadata lines after WEBVTT.
			lines = lines[1:]
		}

		first := strings.TrimSpace(lines[0])
		if strings.HasPrefix(first, "NOTE") || strings.HasPrefix(first, "STYLE") || strings.HasPrefix(first, "REGION") {
			file.HeaderBlocks = append(file.HeaderBlocks, block)
			continue
		}

		cue, ok := parseVTTCue(lines)
		if !ok {
			continue
		}
		cueIndex++
		if cue.Index == 0 {
			cue.Index = cueIndex
		}
		file.Cues = append(file.Cues, cue)
	}

	file.Language = detectLanguage(file.Cues)
	return file
}

func parseVTTCue(lines []string) (Cue, bool) {
	cue := Cue{}

	idx := 0
	// Optional identifier line: any line before the timing line that does
	// not contain an arrow.
	if !strings.Contains(lines[0], "-->") {
		cue.Identifier = strings.TrimSpace(lines[0])
		if n, err := strconv.Atoi(cue.Identifier); err == nil {
			cue.Index = n
		}
		idx = 1
		if idx >= len(lines) {
			return Cue{}, false
		}
	}

	timing := strings.TrimSpace(lines[idx])
	if !strings.Contains(timing, "-->") {
		return Cue{}, false
	}
	cue.RawTiming = timing

	if m := vttTimeRe.FindStringSubmatch(timing); m != nil {
		cue.StartTime = timecodeDuration(orZero(m[1]), m[2], m[3], m[4])
		cue.EndTime = timecodeDuration(orZero(m[5]), m[6], m[7], m[8])
		cue.Settings = strings.TrimSpace(m[9])
		cue.TimingParsed = true
	}

	textLines := lines[idx+1:]
	cue.OriginalLines = append([]string(nil), textLines...)
	text := strings.Join(textLines, "\n")

	if m := voiceTagRe.FindStringSubmatch(text); m != nil {
		cue.VoiceTag = strings.TrimSpace(m[1])
		text = m[2]
	}
	cue.Text = text

	return cue, true
}

func orZero(s string) string {
	if s == "" {
		return "00"
	}
	return s
}

// FormatVTTTime formats a duration as a WebVTT timecode (HH:MM:SS.mmm).
func FormatVTTTime(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	milliseconds := int(d.Milliseconds()) % 1000

	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, seconds, milliseconds)
}

// WriteVTT renders the file as WebVTT, keeping header blocks and cue
// identifiers, settings and voice tags.
func WriteVTT(file *File) string {
	var sb strings.Builder
	sb.WriteString("WEBVTT\n\n")

	for _, block := range file.HeaderBlocks {
		sb.WriteString(block)
		sb.WriteString("\n\n")
	}

	for _, cue := range file.Cues {
		if cue.Identifier != "" {
			sb.WriteString(cue.Identifier)
			sb.WriteByte('\n')
		}

		sb.WriteString(FormatVTTTime(cue.StartTime))
		sb.WriteString(" --> ")
		sb.WriteString(FormatVTTTime(cue.EndTime))
		if cue.Settings != "" {
			sb.WriteByte(' ')
			sb.WriteString(cue.Settings)
		}
		sb.WriteByte('\n')

		text := cue.TranslatedText
		if text == "" {
			text = cue.Text
		}
		if cue.VoiceTag != "" {
			text = "<v " + cue.VoiceTag + ">" + text
		}
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}

	return sb.String()
}
