// Package subtitle parses, validates and writes SRT and WebVTT cue files.
package subtitle

import (
	"time"

	"golang.org/x/text/language"
)

// Format identifies a subtitle file format.
type Format string

const (
	FormatSRT Format = "SRT"
	FormatVTT Format = "VTT"
)

// Cue represents a single subtitle cue. Gaps or duplicates in Index are
// tolerated on input; writers always emit a clean ascending sequence.
type Cue struct {
	Index         int
	StartTime     time.Duration
	EndTime       time.Duration
	Text          string
	OriginalLines []string

	// RawTiming keeps the unparsed timecode line; TimingParsed is false
	// when it did not match the format's syntax. Malformed cues are kept
	// so validation can report them while the rest of the file is still
	// usable.
	RawTiming    string
	TimingParsed bool

	// WebVTT extensions, empty for SRT cues.
	Identifier string
	Settings   string
	VoiceTag   string

	TranslatedText string
}

// File represents a parsed subtitle file.
type File struct {
	Cues     []Cue
	Language language.Tag
	Format   Format

	// HeaderBlocks holds VTT NOTE/STYLE/REGION blocks verbatim so a
	// rewritten file keeps them.
	HeaderBlocks []string
}

// Reader is the interface for reading subtitle files.
type Reader interface {
	Read(path string) (*File, error)
}

// Writer is the interface for writing subtitle files.
type Writer interface {
	Write(path string, file *File) error
}

// Duration returns the cue's length; zero when the timecode did not parse
// or end precedes start.
func (c Cue) Duration() time.Duration {
	if !c.TimingParsed || c.EndTime <= c.StartTime {
		return 0
	}
	return c.EndTime - c.StartTime
}
