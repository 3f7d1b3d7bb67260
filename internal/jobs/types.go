package jobs

import "time"

type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

type EnqueueRequest struct {
	Source    string
	DedupeKey string
	Payload   Payload
}

// Payload describes one unit of batch work: a set of input files to
// translate into the given target languages. File paths are relative
// to the watch input directory so persisted jobs survive remounts.
type Payload struct {
	Files       []string `json:"files"`
	SourceLang  string   `json:"source_lang,omitempty"`
	TargetLangs []string `json:"target_langs"`
}

type Job struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	DedupeKey string    `json:"dedupe_key"`
	Payload   Payload   `json:"payload"`
	Status    Status    `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
