package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/lingokit/lingokit/internal/config"
	"github.com/lingokit/lingokit/internal/content"
	"github.com/lingokit/lingokit/internal/glossary"
	"github.com/lingokit/lingokit/internal/jobs"
	"github.com/lingokit/lingokit/internal/pattern"
	"github.com/lingokit/lingokit/internal/persistence"
	"github.com/lingokit/lingokit/internal/provider"
	"github.com/lingokit/lingokit/internal/service"
	"github.com/lingokit/lingokit/internal/tmx"
	"github.com/lingokit/lingokit/pkg/file"
	"github.com/lingokit/lingokit/pkg/log"
)

func main() {
	watch := flag.Bool("watch", false, "scan the input directory on a cron schedule instead of translating the given files")
	flag.Parse()

	// Missing .env is fine; real environments set variables directly.
	_ = godotenv.Load()

	var opts []config.Option
	if settings, err := config.LoadRuntimeSettingsFile(config.RuntimeSettingsFilePath()); err == nil {
		opts = append(opts, config.WithRuntimeSettings(settings))
	}

	cfg, err := config.NewFromEnv(opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	log.InitLogger(log.ParseLevel(cfg.LogLevel))

	svc, jobStore, closeStore, err := buildService(cfg)
	if err != nil {
		log.Fatal("Failed to build pipeline: %v", err)
	}
	defer closeStore()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *watch {
		if err := runWatch(ctx, cfg, svc, jobStore); err != nil {
			log.Fatal("Watch mode failed: %v", err)
		}
		return
	}

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: lingokit [-watch] <file>...")
		os.Exit(2)
	}
	if err := runOnce(ctx, cfg, svc, flag.Args()); err != nil {
		log.Fatal("Translation failed: %v", err)
	}
}

// buildService assembles the pipeline from configuration: glossary,
// translation memory, cache store and provider. The returned jobs.Store
// shares the same backing database as the translation cache.
func buildService(cfg *config.Config) (*service.Service, jobs.Store, func(), error) {
	gloss, err := loadGlossary(cfg.Resources.GlossaryFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load glossary: %w", err)
	}

	memory := tmx.NewMemory()
	if cfg.Resources.TMXFile != "" {
		f, err := os.Open(cfg.Resources.TMXFile)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to open TMX file: %w", err)
		}
		memory, err = tmx.Read(f)
		_ = f.Close()
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to parse TMX file: %w", err)
		}
		log.Info("Loaded %d translation memory units", memory.Len())
	}

	var store service.Store
	var jobStore jobs.Store
	closeStore := func() {}
	if cfg.Resources.DBPath != "" {
		sqliteStore, err := persistence.NewSQLiteStore(cfg.Resources.DBPath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to open cache database: %w", err)
		}
		store = sqliteStore
		jobStore = sqliteStore
		closeStore = func() { _ = sqliteStore.Close() }
	} else {
		memStore := persistence.NewMemoryStore()
		store = memStore
		jobStore = memStore
	}

	registry, err := loadRegistry(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load schema registry: %w", err)
	}

	prov := provider.NewOpenAIProvider(provider.OpenAIConfig{
		APIKey:      cfg.Provider.APIKey,
		Model:       cfg.Provider.Model,
		Temperature: float32(cfg.Provider.Temperature),
		BaseURL:     cfg.Provider.APIURL,
	})

	svc := service.New(
		service.Config{
			FuzzyThreshold: cfg.Translate.FuzzyThreshold,
			BatchSize:      cfg.Translate.BatchSize,
			Concurrency:    cfg.Translate.Concurrency,
			Validator:      cfg.Subtitle.ValidatorConfig(),
			OverlapPolicy:  cfg.Subtitle.OverlapPolicy,
		},
		content.NewExtractor(registry, cfg.Resources.DNTTerms...),
		gloss,
		cfg.Resources.DNTTerms,
		memory,
		store,
		prov,
	)
	return svc, jobStore, closeStore, nil
}

// loadRegistry reads schema definitions from SCHEMA_DIR, falling back to
// the built-in locale-document schema so JSON catalogs are recognized out
// of the box.
func loadRegistry(cfg *config.Config) (*pattern.Registry, error) {
	if cfg.Resources.SchemaDir != "" {
		return pattern.LoadSchemaDir(cfg.Resources.SchemaDir)
	}
	return pattern.DefaultRegistry(), nil
}

func loadGlossary(path string) (*glossary.Glossary, error) {
	if path == "" {
		return &glossary.Glossary{}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch filepath.Ext(path) {
	case ".xlsx":
		return glossary.ReadXLSX(f)
	default:
		return glossary.ReadCSV(f)
	}
}

// runOnce translates the named files and writes one output per file and
// target language next to each input.
func runOnce(ctx context.Context, cfg *config.Config, svc *service.Service, paths []string) error {
	var inputs []service.InputFile
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		inputs = append(inputs, service.InputFile{Name: path, Content: string(data)})
	}

	res, err := svc.TranslateBatch(ctx, service.BatchRequest{
		Files:       inputs,
		SourceLang:  cfg.Translate.SourceLang,
		TargetLangs: cfg.Translate.TargetLangs,
		JobID:       uuid.NewString(),
	})
	if err != nil {
		return err
	}

	for _, out := range res.Outputs {
		ext := filepath.Ext(out.Name)
		target := file.ReplaceExt(out.Name, out.TargetLang+ext)
		if err := os.WriteFile(target, []byte(out.Content), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", target, err)
		}
		log.Info("Wrote %s", target)
		for _, issue := range out.Issues {
			log.Warn("%s cue %d [%s] %s", target, issue.CueIndex, issue.Type, issue.Message)
		}
	}
	for _, adv := range res.Advisories {
		best := adv.Matches[0]
		log.Info("Memory suggestion (%d%%) for %q → %q [%s]", best.Score, adv.SourceText, best.Unit.TargetText, adv.TargetLang)
	}
	if len(res.Failures) > 0 {
		return fmt.Errorf("%d of %d outputs failed", len(res.Failures), len(res.Failures)+len(res.Outputs))
	}
	return nil
}

// runWatch schedules periodic scans of the input directory and blocks
// until the context ends. Scans enqueue work on a persistent queue so
// unfinished batches resume after a restart.
func runWatch(ctx context.Context, cfg *config.Config, svc *service.Service, jobStore jobs.Store) error {
	queue := jobs.NewQueue(1, jobStore)

	cronEngine := cron.New()
	watcher := service.NewWatcher(service.WatcherConfig{
		InputDir:    cfg.Watch.InputDir,
		OutputDir:   cfg.Watch.OutputDir,
		CronExpr:    cfg.Watch.CronExpr,
		SourceLang:  cfg.Translate.SourceLang,
		TargetLangs: cfg.Translate.TargetLangs,
	}, svc, cronEngine, queue)

	if err := watcher.Schedule(ctx); err != nil {
		return err
	}
	queue.Start(watcher.Executor())
	defer queue.Stop()
	cronEngine.Start()
	defer func() { <-cronEngine.Stop().Done() }()

	<-ctx.Done()
	return nil
}
