package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lingokit/lingokit/internal/persistence"
)

// Store is the persistence surface the pipeline needs. Both
// persistence.SQLiteStore and persistence.MemoryStore satisfy it.
type Store interface {
	GetTranslation(ctx context.Context, sourceText, targetLang string) (persistence.TranslationRecord, bool, error)
	PutTranslation(ctx context.Context, rec persistence.TranslationRecord) error
	SaveCheckpoint(ctx context.Context, jobID string, completed map[string]string) error
	LoadCheckpoint(ctx context.Context, jobID string) (persistence.Checkpoint, bool, error)
	DeleteCheckpoint(ctx context.Context, jobID string) error
}

// progressTracker keeps a job's completed units in memory and mirrors
// every addition to the store, so an interrupted run resumes where it
// stopped instead of re-translating.
type progressTracker struct {
	store Store
	jobID string

	mu        sync.RWMutex
	completed map[string]string
}

func newProgressTracker(ctx context.Context, store Store, jobID string) (*progressTracker, error) {
	if store == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if jobID == "" {
		return nil, fmt.Errorf("job id is empty")
	}

	completed := make(map[string]string)
	if cp, ok, err := store.LoadCheckpoint(ctx, jobID); err != nil {
		return nil, err
	} else if ok {
		for k, v := range cp.Completed {
			completed[k] = v
		}
	}

	return &progressTracker{
		store:     store,
		jobID:     jobID,
		completed: completed,
	}, nil
}

func progressKey(targetLang, sourceText string) string {
	return targetLang + "\x00" + persistence.HashText(sourceText)
}

func (t *progressTracker) Load(targetLang, sourceText string) (string, bool) {
	if t == nil {
		return "", false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	translated, ok := t.completed[progressKey(targetLang, sourceText)]
	return translated, ok
}

func (t *progressTracker) Save(ctx context.Context, targetLang, sourceText, translated string) error {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	t.completed[progressKey(targetLang, sourceText)] = translated
	snapshot := make(map[string]string, len(t.completed))
	for k, v := range t.completed {
		snapshot[k] = v
	}
	t.mu.Unlock()

	return t.store.SaveCheckpoint(ctx, t.jobID, snapshot)
}

// Clear drops the checkpoint after a fully successful run.
func (t *progressTracker) Clear(ctx context.Context) error {
	if t == nil {
		return nil
	}
	return t.store.DeleteCheckpoint(ctx, t.jobID)
}

// cacheLookup consults the cross-run translation cache.
func cacheLookup(ctx context.Context, store Store, sourceText, targetLang string) (string, bool) {
	if store == nil {
		return "", false
	}
	rec, ok, err := store.GetTranslation(ctx, sourceText, targetLang)
	if err != nil || !ok {
		return "", false
	}
	return rec.Translated, true
}

// cacheStore records a fresh translation; failures are non-fatal because
// the cache is an optimization, not correctness.
func cacheStore(ctx context.Context, store Store, providerName, sourceText, targetLang, translated string) {
	if store == nil {
		return
	}
	_ = store.PutTranslation(ctx, persistence.TranslationRecord{
		SourceText: sourceText,
		TargetLang: targetLang,
		Translated: translated,
		Provider:   providerName,
		UpdatedAt:  time.Now().UTC(),
	})
}
