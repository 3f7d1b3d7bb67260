// Package service orchestrates the translation pipeline: extraction,
// deduplication, span protection, translation memory, the provider call
// and reconstruction.
package service

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lingokit/lingokit/internal/content"
	"github.com/lingokit/lingokit/internal/dedup"
	"github.com/lingokit/lingokit/internal/glossary"
	"github.com/lingokit/lingokit/internal/protect"
	"github.com/lingokit/lingokit/internal/provider"
	"github.com/lingokit/lingokit/internal/rebuild"
	"github.com/lingokit/lingokit/internal/subtitle"
	"github.com/lingokit/lingokit/internal/tmx"
	"github.com/lingokit/lingokit/pkg/log"
)

// Config tunes one Service instance.
type Config struct {
	FuzzyThreshold int // minimum score for advisory memory matches
	BatchSize      int // texts per provider call
	Concurrency    int // parallel target languages

	Validator     subtitle.ValidatorConfig
	OverlapPolicy subtitle.OverlapPolicy
}

func (c Config) withDefaults() Config {
	if c.FuzzyThreshold <= 0 {
		c.FuzzyThreshold = 75
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 20
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 2
	}
	if c.OverlapPolicy == "" {
		c.OverlapPolicy = subtitle.OverlapWarnOnly
	}
	return c
}

// Service is the pipeline orchestrator. All fields are set at New; the
// translation memory is the one component mutated afterwards and is
// internally synchronized.
type Service struct {
	cfg       Config
	extractor *content.Extractor
	gloss     *glossary.Glossary
	dntTerms  []string
	memory    *tmx.Memory
	store     Store
	prov      provider.Provider
	ctrl      *Controller
}

func New(
	cfg Config,
	extractor *content.Extractor,
	gloss *glossary.Glossary,
	dntTerms []string,
	memory *tmx.Memory,
	store Store,
	prov provider.Provider,
) *Service {
	if gloss == nil {
		gloss = &glossary.Glossary{}
	}
	if memory == nil {
		memory = tmx.NewMemory()
	}
	return &Service{
		cfg:       cfg.withDefaults(),
		extractor: extractor,
		gloss:     gloss,
		dntTerms:  dntTerms,
		memory:    memory,
		store:     store,
		prov:      prov,
		ctrl:      NewController(),
	}
}

// Controller exposes the pause/resume/cancel handle for this service.
func (s *Service) Controller() *Controller {
	return s.ctrl
}

// fileState carries one input file through the pipeline.
type fileState struct {
	input      InputFile
	isSubtitle bool

	sub        *subtitle.File
	extraction *content.Extraction
	items      []content.Item
}

func isSubtitleName(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range subtitleExts {
		if ext == e {
			return true
		}
	}
	return false
}

// TranslateBatch runs the whole pipeline over one batch. Individual file
// or unit failures are collected into the result; the returned error is
// reserved for request-level problems and cancellation.
func (s *Service) TranslateBatch(ctx context.Context, req BatchRequest) (*BatchResult, error) {
	started := time.Now()

	if len(req.Files) == 0 {
		return nil, NewError(ErrValidation, "no input files")
	}
	if len(req.TargetLangs) == 0 {
		return nil, NewError(ErrValidation, "no target languages")
	}
	if s.prov == nil {
		return nil, NewError(ErrConfig, "no translation provider configured")
	}

	sourceLang := req.SourceLang
	if sourceLang == "" {
		sourceLang = s.detectSourceLang(req.Files)
		log.Info("Detected source language: %s", sourceLang)
	}

	var tracker *progressTracker
	if req.JobID != "" && s.store != nil {
		var err error
		tracker, err = newProgressTracker(ctx, s.store, req.JobID)
		if err != nil {
			return nil, WrapError(err, ErrPersistence, "failed to load checkpoint")
		}
	}

	// Decompose every file into translatable items.
	states := make([]*fileState, len(req.Files))
	perFileItems := make([][]content.Item, len(req.Files))
	result := &BatchResult{}
	for i, in := range req.Files {
		st := s.decompose(in)
		states[i] = st
		perFileItems[i] = st.items
	}

	idx := dedup.Build(perFileItems)
	log.Info("Batch: %d files, %d strings, %d unique", len(req.Files), idx.OccurrenceCount, len(idx.UniqueStrings))

	// Translate every unique string into every target language, one
	// goroutine per language.
	type langResult struct {
		lang         string
		translations map[string]string
		advisories   []Advisory
		stats        BatchStats
		failures     []FileFailure
	}

	var mu sync.Mutex
	perLang := make(map[string]langResult, len(req.TargetLangs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for _, lang := range req.TargetLangs {
		lang := lang
		g.Go(func() error {
			lr, err := s.translateUnique(gctx, idx, sourceLang, lang, tracker)
			if err != nil {
				return err
			}
			mu.Lock()
			perLang[lang] = langResult{
				lang:         lang,
				translations: lr.translations,
				advisories:   lr.advisories,
				stats:        lr.stats,
				failures:     lr.failures,
			}
			mu.Unlock()
			return nil
		})
	}
	// On cancellation the completed languages still get reconstructed:
	// partially translated languages are absent from perLang and simply
	// fall out of the result, and the caller reads the stats to see how
	// much finished.
	waitErr := g.Wait()

	// Fan translations back out and reconstruct each file per language.
	for _, lang := range req.TargetLangs {
		lr, ok := perLang[lang]
		if !ok {
			continue
		}
		result.Advisories = append(result.Advisories, lr.advisories...)
		result.Failures = append(result.Failures, lr.failures...)
		result.Stats.ProviderCalls += lr.stats.ProviderCalls
		result.Stats.CacheHits += lr.stats.CacheHits
		result.Stats.MemoryHits += lr.stats.MemoryHits

		perFile := idx.FanOut(lr.translations, len(states))
		for i, st := range states {
			out, err := s.reconstruct(st, perFile[i], lang)
			if err != nil {
				result.Failures = append(result.Failures, FileFailure{
					Name:       st.input.Name,
					TargetLang: lang,
					Err:        err,
				})
				continue
			}
			result.Outputs = append(result.Outputs, out)
		}
	}

	result.Stats.Files = len(req.Files)
	result.Stats.LanguagesCompleted = len(perLang)
	result.Stats.TotalStrings = idx.OccurrenceCount
	result.Stats.UniqueStrings = len(idx.UniqueStrings)
	result.Stats.DuplicatesSkipped = idx.DuplicateCount
	result.Stats.Elapsed = time.Since(started)

	if waitErr != nil {
		log.Warn("Batch stopped early: %d of %d languages completed: %v", len(perLang), len(req.TargetLangs), waitErr)
		return result, waitErr
	}

	if tracker != nil && len(result.Failures) == 0 {
		if err := tracker.Clear(ctx); err != nil {
			log.Warn("Failed to clear checkpoint for job %s: %v", req.JobID, err)
		}
	}

	logSummary(result)
	return result, nil
}

// decompose classifies one file and extracts its translatable items.
func (s *Service) decompose(in InputFile) *fileState {
	st := &fileState{input: in}

	if isSubtitleName(in.Name) {
		st.isSubtitle = true
		if strings.EqualFold(filepath.Ext(in.Name), ".vtt") {
			st.sub = subtitle.ParseVTT(in.Content)
		} else {
			st.sub = subtitle.ParseSRT(in.Content)
		}
		for i, cue := range st.sub.Cues {
			if strings.TrimSpace(cue.Text) == "" {
				continue
			}
			st.items = append(st.items, content.Item{
				ID:   strconv.Itoa(i),
				Path: "cue[" + strconv.Itoa(i) + "]",
				Text: cue.Text,
			})
		}
		return st
	}

	st.extraction = s.extractor.Extract(in.Content, in.Hint)
	st.items = st.extraction.Segments
	return st
}

func (s *Service) detectSourceLang(files []InputFile) string {
	var sample strings.Builder
	for _, f := range files {
		sample.WriteString(f.Content)
		sample.WriteString("\n")
		if sample.Len() > 4096 {
			break
		}
	}
	return s.gloss.DetectSourceLanguage(sample.String())
}

type uniqueResult struct {
	translations map[string]string
	advisories   []Advisory
	stats        BatchStats
	failures     []FileFailure
}

// translateUnique resolves every unique string for one target language:
// checkpoint, then cache, then exact memory match, then the provider in
// batches. Batch failures abort only the strings of that batch.
func (s *Service) translateUnique(
	ctx context.Context,
	idx *dedup.Index,
	sourceLang string,
	targetLang string,
	tracker *progressTracker,
) (*uniqueResult, error) {
	res := &uniqueResult{translations: make(map[string]string, len(idx.UniqueStrings))}

	type pendingUnit struct {
		source  string
		encoded protect.Encoded
	}
	var pending []pendingUnit

	for _, text := range idx.UniqueStrings {
		if err := s.ctrl.Wait(ctx); err != nil {
			return nil, err
		}
		if text == "" {
			continue
		}

		if translated, ok := tracker.Load(targetLang, text); ok {
			res.translations[text] = translated
			continue
		}
		if translated, ok := cacheLookup(ctx, s.store, text, targetLang); ok {
			res.translations[text] = translated
			res.stats.CacheHits++
			continue
		}

		matches := tmx.FindMatches(text, s.memory, targetLang, s.cfg.FuzzyThreshold)
		if len(matches) > 0 && matches[0].Type == tmx.MatchExact {
			res.translations[text] = matches[0].Unit.TargetText
			res.stats.MemoryHits++
			continue
		}
		if len(matches) > 0 {
			res.advisories = append(res.advisories, Advisory{
				SourceText: text,
				TargetLang: targetLang,
				Matches:    matches,
			})
		}

		// JSON-extracted text goes to the provider unmarked: a marker
		// inside a JSON string value risks corrupting downstream
		// consumers. Its DNT protection happened at extraction.
		if idx.FromJSON[text] {
			pending = append(pending, pendingUnit{source: text, encoded: protect.Encoded{Processed: text}})
			continue
		}

		encoded := protect.Encode(text, s.dntTerms, s.gloss.Entries, sourceLang, targetLang)
		if encoded.FullMatch {
			res.translations[text] = encoded.Translation
			continue
		}
		pending = append(pending, pendingUnit{source: text, encoded: encoded})
	}

	for start := 0; start < len(pending); start += s.cfg.BatchSize {
		if err := s.ctrl.Wait(ctx); err != nil {
			return nil, err
		}

		end := start + s.cfg.BatchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]

		texts := make([]string, len(batch))
		for i, unit := range batch {
			texts[i] = unit.encoded.Processed
		}

		translated, err := s.prov.Translate(ctx, provider.TranslateRequest{
			Texts:      texts,
			SourceLang: sourceLang,
			TargetLang: targetLang,
		})
		if err != nil {
			log.Error("Provider batch failed for %s (%d strings): %v", targetLang, len(batch), err)
			res.failures = append(res.failures, FileFailure{
				TargetLang: targetLang,
				Err:        WrapError(err, ErrProvider, "provider batch failed"),
			})
			continue
		}
		res.stats.ProviderCalls++
		if len(translated) != len(batch) {
			res.failures = append(res.failures, FileFailure{
				TargetLang: targetLang,
				Err: NewError(ErrTranslation, "provider returned wrong count").
					WithContext("expected", len(batch)).
					WithContext("got", len(translated)),
			})
			continue
		}

		for i, unit := range batch {
			restored := protect.Restore(translated[i], unit.encoded.Substitutions)
			res.translations[unit.source] = restored

			cacheStore(ctx, s.store, s.prov.Name(), unit.source, targetLang, restored)
			if err := tracker.Save(ctx, targetLang, unit.source, restored); err != nil {
				log.Warn("Failed to checkpoint unit: %v", err)
			}
			s.memory.Add(tmx.Unit{
				SourceText: unit.source,
				TargetText: restored,
				SourceLang: sourceLang,
				TargetLang: targetLang,
				UsageCount: 1,
			})
		}
	}

	return res, nil
}

// reconstruct rebuilds one output document from the per-file translations.
func (s *Service) reconstruct(st *fileState, translations map[string]string, targetLang string) (FileOutput, error) {
	out := FileOutput{Name: st.input.Name, TargetLang: targetLang}

	if st.isSubtitle {
		translated := &subtitle.File{
			Cues:         append([]subtitle.Cue(nil), st.sub.Cues...),
			Language:     st.sub.Language,
			Format:       st.sub.Format,
			HeaderBlocks: st.sub.HeaderBlocks,
		}
		for i := range translated.Cues {
			if text, ok := translations[strconv.Itoa(i)]; ok {
				translated.Cues[i].TranslatedText = text
			}
		}

		out.Issues = subtitle.Validate(translated.Cues, s.cfg.Validator)
		for i, cue := range translated.Cues {
			text := cue.TranslatedText
			if text == "" {
				text = cue.Text
			}
			out.Issues = append(out.Issues, subtitle.CheckTagBalance(i, text)...)
		}
		translated.Cues = subtitle.ResolveOverlaps(translated.Cues, s.cfg.OverlapPolicy)

		if translated.Format == subtitle.FormatVTT {
			out.Content = subtitle.WriteVTT(translated)
		} else {
			out.Content = subtitle.WriteSRT(translated)
		}
		return out, nil
	}

	rebuilt, err := rebuild.Rebuild(st.extraction.Template, translations, targetLang)
	if err != nil {
		return FileOutput{}, WrapError(err, ErrTranslation, "reconstruction failed").
			WithContext("file", st.input.Name)
	}
	out.Content = rebuilt
	return out, nil
}

func logSummary(result *BatchResult) {
	log.Info(
		"Batch done: %d outputs, %d failures, %d unique strings (%d duplicates folded), %d provider calls, %d cache hits, %d memory hits, elapsed %s",
		len(result.Outputs),
		len(result.Failures),
		result.Stats.UniqueStrings,
		result.Stats.DuplicatesSkipped,
		result.Stats.ProviderCalls,
		result.Stats.CacheHits,
		result.Stats.MemoryHits,
		result.Stats.Elapsed.Round(time.Millisecond),
	)
	for _, failure := range result.Failures {
		log.Warn("Failed: %s (%s): %v", failure.Name, failure.TargetLang, failure.Err)
	}
}
