package persistence

import "time"

// TranslationRecord is one cached translation, keyed by the hash of the
// source text plus the target language.
type TranslationRecord struct {
	SourceHash string
	SourceText string
	TargetLang string
	Translated string
	Provider   string
	UpdatedAt  time.Time
}

// Checkpoint holds the per-job partial progress: item ID to translated
// text for everything already completed.
type Checkpoint struct {
	JobID     string
	Completed map[string]string
	UpdatedAt time.Time
}
