package service

import (
	"time"

	"github.com/lingokit/lingokit/internal/content"
	"github.com/lingokit/lingokit/internal/subtitle"
	"github.com/lingokit/lingokit/internal/tmx"
)

// InputFile is one document handed to the pipeline. Name decides the
// subtitle/content split by extension; Hint optionally forces the content
// classification for non-subtitle files.
type InputFile struct {
	Name    string
	Content string
	Hint    content.Hint
}

// BatchRequest describes one pipeline run: N files into M target
// languages. JobID keys the resume checkpoint; an empty JobID disables
// checkpointing.
type BatchRequest struct {
	Files       []InputFile
	SourceLang  string
	TargetLangs []string
	JobID       string
}

// FileOutput is one reconstructed document for one target language.
type FileOutput struct {
	Name       string
	TargetLang string
	Content    string

	// Issues holds subtitle validation findings; empty for non-subtitle
	// files.
	Issues []subtitle.Issue
}

// FileFailure records a document that could not be produced. The rest of
// the batch still completes.
type FileFailure struct {
	Name       string
	TargetLang string
	Err        error
}

// Advisory surfaces non-exact translation memory matches for review. The
// pipeline applies exact matches automatically and only reports these.
type Advisory struct {
	SourceText string
	TargetLang string
	Matches    []tmx.Match
}

// BatchStats summarizes one run. On cancellation LanguagesCompleted falls
// short of the requested languages and the result holds only the outputs
// of the finished ones.
type BatchStats struct {
	Files              int
	LanguagesCompleted int
	TotalStrings       int
	UniqueStrings      int
	DuplicatesSkipped  int
	ProviderCalls      int
	CacheHits          int
	MemoryHits         int
	Elapsed            time.Duration
}

// BatchResult is the outcome of one TranslateBatch run.
type BatchResult struct {
	Outputs    []FileOutput
	Failures   []FileFailure
	Advisories []Advisory
	Stats      BatchStats
}

var subtitleExts = []string{
	".srt", // SubRip
	".vtt", // WebVTT
}
