package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingokit/lingokit/internal/content"
	"github.com/lingokit/lingokit/internal/glossary"
	"github.com/lingokit/lingokit/internal/pattern"
	"github.com/lingokit/lingokit/internal/persistence"
	"github.com/lingokit/lingokit/internal/provider"
	"github.com/lingokit/lingokit/internal/tmx"
)

func newTestService(t *testing.T, cfg Config, gloss *glossary.Glossary, memory *tmx.Memory, store Store, prov provider.Provider) *Service {
	t.Helper()
	return New(cfg, content.NewExtractor(pattern.NewRegistry()), gloss, nil, memory, store, prov)
}

func TestTranslateBatch_DeduplicatesAcrossFiles(t *testing.T) {
	mock := provider.NewMockProvider()
	svc := newTestService(t, Config{BatchSize: 100}, nil, nil, nil, mock)

	res, err := svc.TranslateBatch(context.Background(), BatchRequest{
		Files: []InputFile{
			{Name: "a.txt", Content: "Hello"},
			{Name: "b.txt", Content: "Hello"},
			{Name: "c.txt", Content: "World"},
		},
		SourceLang:  "en-US",
		TargetLangs: []string{"fr-FR"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Stats.UniqueStrings)
	assert.Equal(t, 1, res.Stats.DuplicatesSkipped)
	// One provider call covers both unique strings.
	assert.Equal(t, 1, res.Stats.ProviderCalls)
	require.Len(t, res.Outputs, 3)
	assert.Equal(t, res.Outputs[0].Content, res.Outputs[1].Content)
}

func TestTranslateBatch_OneCallPerLanguage(t *testing.T) {
	mock := provider.NewMockProvider()
	svc := newTestService(t, Config{BatchSize: 100, Concurrency: 1}, nil, nil, nil, mock)

	res, err := svc.TranslateBatch(context.Background(), BatchRequest{
		Files:       []InputFile{{Name: "a.txt", Content: "Hello"}},
		SourceLang:  "en-US",
		TargetLangs: []string{"fr-FR", "de-DE", "es-ES"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Stats.ProviderCalls)
	assert.Equal(t, 3, mock.CallCount())
	assert.Len(t, res.Outputs, 3)
}

func TestTranslateBatch_CacheShortCircuitsProvider(t *testing.T) {
	store := persistence.NewMemoryStore()
	require.NoError(t, store.PutTranslation(context.Background(), persistence.TranslationRecord{
		SourceText: "Hello",
		TargetLang: "fr-FR",
		Translated: "Bonjour",
	}))

	mock := provider.NewMockProvider()
	svc := newTestService(t, Config{}, nil, nil, store, mock)

	res, err := svc.TranslateBatch(context.Background(), BatchRequest{
		Files:       []InputFile{{Name: "a.txt", Content: "Hello"}},
		SourceLang:  "en-US",
		TargetLangs: []string{"fr-FR"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Stats.ProviderCalls)
	assert.Equal(t, 1, res.Stats.CacheHits)
	require.Len(t, res.Outputs, 1)
	assert.Equal(t, "Bonjour", res.Outputs[0].Content)
}

func TestTranslateBatch_ExactMemoryMatchApplied(t *testing.T) {
	memory := tmx.NewMemory()
	memory.Add(tmx.Unit{
		SourceText: "Hello",
		TargetText: "Bonjour",
		SourceLang: "en-US",
		TargetLang: "fr-FR",
	})

	mock := provider.NewMockProvider()
	svc := newTestService(t, Config{}, nil, memory, nil, mock)

	res, err := svc.TranslateBatch(context.Background(), BatchRequest{
		Files:       []InputFile{{Name: "a.txt", Content: "Hello"}},
		SourceLang:  "en-US",
		TargetLangs: []string{"fr-FR"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Stats.ProviderCalls)
	assert.Equal(t, 1, res.Stats.MemoryHits)
	assert.Equal(t, "Bonjour", res.Outputs[0].Content)
}

func TestTranslateBatch_FuzzyMatchIsAdvisoryOnly(t *testing.T) {
	memory := tmx.NewMemory()
	memory.Add(tmx.Unit{
		SourceText: "Hello there friend",
		TargetText: "Bonjour cher ami",
		SourceLang: "en-US",
		TargetLang: "fr-FR",
	})

	mock := provider.NewMockProvider()
	svc := newTestService(t, Config{FuzzyThreshold: 50}, nil, memory, nil, mock)

	res, err := svc.TranslateBatch(context.Background(), BatchRequest{
		Files:       []InputFile{{Name: "a.txt", Content: "Hello there friends"}},
		SourceLang:  "en-US",
		TargetLangs: []string{"fr-FR"},
	})
	require.NoError(t, err)
	// Near match is surfaced but the provider still translates.
	assert.Equal(t, 1, res.Stats.ProviderCalls)
	require.NotEmpty(t, res.Advisories)
	assert.Equal(t, "Hello there friends", res.Advisories[0].SourceText)
	assert.Equal(t, "Bonjour cher ami", res.Advisories[0].Matches[0].Unit.TargetText)
}

func TestTranslateBatch_GlossaryFullMatchSkipsProvider(t *testing.T) {
	gloss := &glossary.Glossary{
		Languages: []string{"en-US", "fr-FR"},
		Entries: []glossary.Entry{
			{Translations: map[string]string{"en-US": "water", "fr-FR": "eau"}},
		},
	}

	mock := provider.NewMockProvider()
	svc := newTestService(t, Config{}, gloss, nil, nil, mock)

	res, err := svc.TranslateBatch(context.Background(), BatchRequest{
		Files:       []InputFile{{Name: "a.txt", Content: "water"}},
		SourceLang:  "en-US",
		TargetLangs: []string{"fr-FR"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Stats.ProviderCalls)
	assert.Equal(t, "eau", res.Outputs[0].Content)
}

func TestTranslateBatch_ProviderFailureIsCollected(t *testing.T) {
	mock := provider.NewMockProvider()
	mock.Err = errors.New("backend down")
	svc := newTestService(t, Config{}, nil, nil, nil, mock)

	res, err := svc.TranslateBatch(context.Background(), BatchRequest{
		Files:       []InputFile{{Name: "a.txt", Content: "Hello"}},
		SourceLang:  "en-US",
		TargetLangs: []string{"fr-FR"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Failures)
	assert.True(t, IsErrorType(res.Failures[0].Err, ErrProvider))
	// The file is still reconstructed; its token stays in place for plain text.
	require.Len(t, res.Outputs, 1)
}

func TestTranslateBatch_CheckpointResume(t *testing.T) {
	store := persistence.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.SaveCheckpoint(ctx, "job-7", map[string]string{
		progressKey("fr-FR", "Hello"): "Bonjour",
	}))

	mock := provider.NewMockProvider()
	svc := newTestService(t, Config{}, nil, nil, store, mock)

	res, err := svc.TranslateBatch(ctx, BatchRequest{
		Files:       []InputFile{{Name: "a.txt", Content: "Hello"}},
		SourceLang:  "en-US",
		TargetLangs: []string{"fr-FR"},
		JobID:       "job-7",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Stats.ProviderCalls)
	assert.Equal(t, "Bonjour", res.Outputs[0].Content)

	// A clean run clears its checkpoint.
	_, ok, err := store.LoadCheckpoint(ctx, "job-7")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTranslateBatch_SubtitleFile(t *testing.T) {
	srt := "1\n00:00:01,000 --> 00:00:03,000\nHello\n\n2\n00:00:04,000 --> 00:00:06,000\nWorld\n"

	mock := provider.NewMockProvider()
	mock.Translations["Hello"] = "Bonjour"
	mock.Translations["World"] = "Monde"
	svc := newTestService(t, Config{}, nil, nil, nil, mock)

	res, err := svc.TranslateBatch(context.Background(), BatchRequest{
		Files:       []InputFile{{Name: "episode.srt", Content: srt}},
		SourceLang:  "en-US",
		TargetLangs: []string{"fr-FR"},
	})
	require.NoError(t, err)
	require.Len(t, res.Outputs, 1)
	assert.Contains(t, res.Outputs[0].Content, "Bonjour")
	assert.Contains(t, res.Outputs[0].Content, "Monde")
	assert.Contains(t, res.Outputs[0].Content, "00:00:01,000 --> 00:00:03,000")
}

func TestTranslateBatch_SubtitleValidationIssuesSurface(t *testing.T) {
	// Second cue overlaps the first.
	srt := "1\n00:00:01,000 --> 00:00:05,000\nHello\n\n2\n00:00:04,000 --> 00:00:06,000\nWorld\n"

	mock := provider.NewMockProvider()
	svc := newTestService(t, Config{}, nil, nil, nil, mock)

	res, err := svc.TranslateBatch(context.Background(), BatchRequest{
		Files:       []InputFile{{Name: "episode.srt", Content: srt}},
		SourceLang:  "en-US",
		TargetLangs: []string{"fr-FR"},
	})
	require.NoError(t, err)
	require.Len(t, res.Outputs, 1)
	assert.NotEmpty(t, res.Outputs[0].Issues)
}

func TestTranslateBatch_ValidatesRequest(t *testing.T) {
	svc := newTestService(t, Config{}, nil, nil, nil, provider.NewMockProvider())

	_, err := svc.TranslateBatch(context.Background(), BatchRequest{
		TargetLangs: []string{"fr-FR"},
	})
	assert.True(t, IsErrorType(err, ErrValidation))

	_, err = svc.TranslateBatch(context.Background(), BatchRequest{
		Files: []InputFile{{Name: "a.txt", Content: "x"}},
	})
	assert.True(t, IsErrorType(err, ErrValidation))
}

func TestTranslateBatch_CancelStopsRun(t *testing.T) {
	mock := provider.NewMockProvider()
	svc := newTestService(t, Config{}, nil, nil, nil, mock)
	svc.Controller().Cancel()

	_, err := svc.TranslateBatch(context.Background(), BatchRequest{
		Files:       []InputFile{{Name: "a.txt", Content: "Hello"}},
		SourceLang:  "en-US",
		TargetLangs: []string{"fr-FR"},
	})
	require.Error(t, err)
	assert.True(t, IsErrorType(err, ErrCancelled))
}

func TestController_PauseBlocksUntilResume(t *testing.T) {
	ctrl := NewController()
	ctrl.Pause()
	assert.Equal(t, StatePaused, ctrl.State())

	released := make(chan error, 1)
	go func() {
		released <- ctrl.Wait(context.Background())
	}()

	select {
	case <-released:
		t.Fatal("Wait returned while paused")
	case <-time.After(50 * time.Millisecond):
	}

	ctrl.Resume()
	select {
	case err := <-released:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after resume")
	}
	assert.Equal(t, StateRunning, ctrl.State())
}

func TestController_CancelWhilePaused(t *testing.T) {
	ctrl := NewController()
	ctrl.Pause()

	released := make(chan error, 1)
	go func() {
		released <- ctrl.Wait(context.Background())
	}()

	ctrl.Cancel()
	select {
	case err := <-released:
		assert.True(t, IsErrorType(err, ErrCancelled))
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after cancel")
	}
}

// captureProvider records every text it is asked to translate.
type captureProvider struct {
	mu    sync.Mutex
	texts []string
}

func (p *captureProvider) Name() string { return "capture" }

func (p *captureProvider) Translate(_ context.Context, req provider.TranslateRequest) ([]string, error) {
	p.mu.Lock()
	p.texts = append(p.texts, req.Texts...)
	p.mu.Unlock()

	out := make([]string, len(req.Texts))
	for i, text := range req.Texts {
		out[i] = "[" + text + "]"
	}
	return out, nil
}

func (p *captureProvider) received() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.texts...)
}

func TestTranslateBatch_JSONLeavesReachProviderUnmarked(t *testing.T) {
	prov := &captureProvider{}
	extractor := content.NewExtractor(pattern.DefaultRegistry(), "Acme")
	svc := New(Config{}, extractor, nil, []string{"Acme"}, nil, nil, prov)

	raw := `{"locale":"en-US","greeting":"Welcome to Acme cloud","brand":"Acme"}`
	res, err := svc.TranslateBatch(context.Background(), BatchRequest{
		Files:       []InputFile{{Name: "ui.json", Content: raw}},
		SourceLang:  "en-US",
		TargetLangs: []string{"fr-FR"},
	})
	require.NoError(t, err)
	require.Empty(t, res.Failures)

	received := prov.received()
	require.Contains(t, received, "Welcome to Acme cloud")
	for _, text := range received {
		assert.NotContains(t, text, "__DNT_")
	}

	// The DNT-literal leaf was never extracted, so it survives verbatim.
	require.Len(t, res.Outputs, 1)
	assert.Contains(t, res.Outputs[0].Content, `"brand":"Acme"`)
}

func TestTranslateBatch_PlainTextStillGetsMarkers(t *testing.T) {
	prov := &captureProvider{}
	extractor := content.NewExtractor(pattern.NewRegistry(), "Acme")
	svc := New(Config{}, extractor, nil, []string{"Acme"}, nil, nil, prov)

	_, err := svc.TranslateBatch(context.Background(), BatchRequest{
		Files:       []InputFile{{Name: "a.txt", Content: "Welcome to Acme cloud"}},
		SourceLang:  "en-US",
		TargetLangs: []string{"fr-FR"},
	})
	require.NoError(t, err)

	received := prov.received()
	require.Len(t, received, 1)
	assert.Contains(t, received[0], "__DNT_0__")
	assert.NotContains(t, received[0], "Acme")
}

// hookProvider runs a callback after each successful provider call.
type hookProvider struct {
	provider.Provider
	after func()
}

func (p *hookProvider) Translate(ctx context.Context, req provider.TranslateRequest) ([]string, error) {
	out, err := p.Provider.Translate(ctx, req)
	if p.after != nil {
		p.after()
	}
	return out, err
}

func TestTranslateBatch_CancelKeepsCompletedLanguages(t *testing.T) {
	mock := provider.NewMockProvider()
	mock.Translations["Hello"] = "Bonjour"

	prov := &hookProvider{Provider: mock}
	svc := newTestService(t, Config{Concurrency: 1}, nil, nil, nil, prov)
	// Cancel after the first language's provider call: the second language
	// stops at its next unit boundary.
	prov.after = func() { svc.Controller().Cancel() }

	res, err := svc.TranslateBatch(context.Background(), BatchRequest{
		Files:       []InputFile{{Name: "a.txt", Content: "Hello"}},
		SourceLang:  "en-US",
		TargetLangs: []string{"fr-FR", "de-DE"},
	})
	require.Error(t, err)
	assert.True(t, IsErrorType(err, ErrCancelled))

	require.NotNil(t, res)
	assert.Equal(t, 1, res.Stats.LanguagesCompleted)
	require.Len(t, res.Outputs, 1)
	assert.Equal(t, "fr-FR", res.Outputs[0].TargetLang)
	assert.Equal(t, "Bonjour", res.Outputs[0].Content)
}
