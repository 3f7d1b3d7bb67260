package subtitle

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/language"
)

// srtTimeRe matches an SRT timing line: 00:02:16,612 --> 00:02:19,376
var srtTimeRe = regexp.MustCompile(`(\d{2}):(\d{2}):(\d{2}),(\d{3}) --> (\d{2}):(\d{2}):(\d{2}),(\d{3})`)

// ParseSRT parses SRT content. Malformed timing lines do not abort the
// parse: the cue is kept with TimingParsed=false so validation can report
// it while the rest of the file remains translatable.
func ParseSRT(content string) *File {
	var cues []Cue

	currentCue := Cue{}
	state := "index" // "index", "time", "text"
	var textLines []string

	flush := func() {
		if len(textLines) > 0 || currentCue.RawTiming != "" {
			currentCue.Text = strings.Join(textLines, "\n")
			currentCue.OriginalLines = append([]string(nil), textLines...)
			cues = append(cues, currentCue)
		}
		currentCue = Cue{}
		textLines = nil
	}

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch state {
		case "index":
			if line == "" {
				continue
			}
			index, err := strconv.Atoi(line)
			if err != nil {
				// Not an index; maybe a stray timing line from a cue
				// whose index is missing.
				if strings.Contains(line, "-->") {
					currentCue.Index = -1
					parseSRTTiming(&currentCue, line)
					state = "text"
				}
				continue
			}
			currentCue.Index = index
			state = "time"

		case "time":
			if line == "" {
				continue
			}
			parseSRTTiming(&currentCue, line)
			state = "text"

		case "text":
			if line == "" {
				flush()
				state = "index"
			} else {
				textLines = append(textLines, line)
			}
		}
	}

	if state == "text" {
		flush()
	}

	return &File{
		Cues:     cues,
		Language: detectLanguage(cues),
		Format:   FormatSRT,
	}
}

func parseSRTTiming(cue *Cue, line string) {
	cue.RawTiming = line
	start, end, err := parseSRTTime(line)
	if err != nil {
		cue.TimingParsed = false
		return
	}
	cue.StartTime = start
	cue.EndTime = end
	cue.TimingParsed = true
}

// parseSRTTime parses one SRT timing line into start and end durations.
func parseSRTTime(timeString string) (time.Duration, time.Duration, error) {
	matches := srtTimeRe.FindStringSubmatch(timeString)
	if len(matches) != 9 {
		return 0, 0, fmt.Errorf("invalid time format: %s", timeString)
	}

	start := timecodeDuration(matches[1], matches[2], matches[3], matches[4])
	end := timecodeDuration(matches[5], matches[6], matches[7], matches[8])
	return start, end, nil
}

func timecodeDuration(hours, minutes, seconds, milliseconds string) time.Duration {
	h, _ := strconv.Atoi(hours)
	m, _ := strconv.Atoi(minutes)
	s, _ := strconv.Atoi(seconds)
	ms, _ := strconv.Atoi(milliseconds)

	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(ms)*time.Millisecond
}

// FormatSRTTime formats a duration as an SRT timecode (HH:MM:SS,mmm).
func FormatSRTTime(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	milliseconds := int(d.Milliseconds()) % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, milliseconds)
}

// WriteSRT renders the file as SRT, re-indexing cues from 1 and using
// translated text when available.
func WriteSRT(file *File) string {
	var sb strings.Builder
	for i, cue := range file.Cues {
		fmt.Fprintf(&sb, "%d\n", i+1)
		fmt.Fprintf(&sb, "%s --> %s\n", FormatSRTTime(cue.StartTime), FormatSRTTime(cue.EndTime))

		text := cue.TranslatedText
		if text == "" {
			text = cue.Text
		}
		fmt.Fprintf(&sb, "%s\n\n", text)
	}
	return sb.String()
}

// detectLanguage detects the dominant language across cue texts.
func detectLanguage(cues []Cue) language.Tag {
	if len(cues) == 0 {
		return language.Und
	}

	langMap := make(map[string]int)
	for _, cue := range cues {
		lang := whatlanggo.DetectLang(cue.Text).Iso6391()
		langMap[lang]++
	}

	var topLang string
	var topCount int
	for lang, count := range langMap {
		if count > topCount {
			topLang = lang
			topCount = count
		}
	}

	return language.All.Make(topLang)
}

// DefaultReader reads subtitle files from disk, choosing the parser by
// file extension.
type DefaultReader struct{}

// NewReader creates a subtitle file reader.
func NewReader() Reader {
	return &DefaultReader{}
}

// Read reads and parses a subtitle file.
func (r *DefaultReader) Read(path string) (*File, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("subtitle file does not exist: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read subtitle file: %w", err)
	}

	switch {
	case strings.HasSuffix(strings.ToLower(path), ".srt"):
		return ParseSRT(string(data)), nil
	case strings.HasSuffix(strings.ToLower(path), ".vtt"):
		return ParseVTT(string(data)), nil
	default:
		return nil, fmt.Errorf("unsupported subtitle format: %s", path)
	}
}

// DefaultWriter writes subtitle files to disk.
type DefaultWriter struct{}

// NewWriter creates a subtitle file writer.
func NewWriter() Writer {
	return &DefaultWriter{}
}

// Write renders the file in its format and writes it to path.
func (w *DefaultWriter) Write(path string, file *File) error {
	if file == nil {
		return fmt.Errorf("subtitle data is empty")
	}

	var rendered string
	switch file.Format {
	case FormatVTT:
		rendered = WriteVTT(file)
	default:
		rendered = WriteSRT(file)
	}

	if err := os.WriteFile(path, []byte(rendered), 0644); err != nil {
		return fmt.Errorf("failed to write subtitle file: %w", err)
	}
	return nil
}
