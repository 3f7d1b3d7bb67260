package persistence

import (
	"context"
	"sync"
	"time"

	"github.com/lingokit/lingokit/internal/jobs"
)

// MemoryStore is a process-local Store for tests and cache-less runs.
type MemoryStore struct {
	mu           sync.RWMutex
	kv           map[string]string
	translations map[string]TranslationRecord
	checkpoints  map[string]Checkpoint
	jobs         map[string]*jobs.Job
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		kv:           make(map[string]string),
		translations: make(map[string]TranslationRecord),
		checkpoints:  make(map[string]Checkpoint),
		jobs:         make(map[string]*jobs.Job),
	}
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) SetValue(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kv[key] = value
	return nil
}

func (s *MemoryStore) GetValue(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.kv[key]
	return value, ok, nil
}

func (s *MemoryStore) PutTranslation(_ context.Context, rec TranslationRecord) error {
	if rec.SourceHash == "" {
		rec.SourceHash = HashText(rec.SourceText)
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.translations[rec.SourceHash+"|"+rec.TargetLang] = rec
	return nil
}

func (s *MemoryStore) GetTranslation(_ context.Context, sourceText, targetLang string) (TranslationRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.translations[HashText(sourceText)+"|"+targetLang]
	return rec, ok, nil
}

func (s *MemoryStore) PurgeTranslations(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for key, rec := range s.translations {
		if !rec.UpdatedAt.After(cutoff) {
			delete(s.translations, key)
			removed++
		}
	}
	return removed, nil
}

func (s *MemoryStore) SaveCheckpoint(_ context.Context, jobID string, completed map[string]string) error {
	copied := make(map[string]string, len(completed))
	for k, v := range completed {
		copied[k] = v
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkpoints[jobID] = Checkpoint{JobID: jobID, Completed: copied, UpdatedAt: time.Now().UTC()}
	return nil
}

func (s *MemoryStore) LoadCheckpoint(_ context.Context, jobID string) (Checkpoint, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp, ok := s.checkpoints[jobID]
	return cp, ok, nil
}

func (s *MemoryStore) DeleteCheckpoint(_ context.Context, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.checkpoints, jobID)
	return nil
}
