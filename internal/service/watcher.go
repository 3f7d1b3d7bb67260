package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/singleflight"

	"github.com/lingokit/lingokit/internal/jobs"
	"github.com/lingokit/lingokit/pkg/file"
	"github.com/lingokit/lingokit/pkg/icron"
	"github.com/lingokit/lingokit/pkg/log"
)

// watchExts are the file types the watcher picks up from the input
// directory.
var watchExts = []string{".srt", ".vtt", ".json", ".txt", ".html"}

// WatcherConfig drives periodic directory scans.
type WatcherConfig struct {
	InputDir    string
	OutputDir   string
	CronExpr    string
	SourceLang  string
	TargetLangs []string
}

// Watcher runs the pipeline on a cron schedule over files that appeared
// in the input directory since the previous trigger. With a queue
// attached, scans only enqueue work and the queue workers execute it;
// without one, scans translate inline.
type Watcher struct {
	cfg             WatcherConfig
	svc             *Service
	cron            *cron.Cron
	queue           *jobs.Queue
	lastTriggerTime time.Time
}

func NewWatcher(cfg WatcherConfig, svc *Service, c *cron.Cron, q *jobs.Queue) *Watcher {
	return &Watcher{cfg: cfg, svc: svc, cron: c, queue: q}
}

var singleflightGroup singleflight.Group

// Schedule registers the scan on the cron instance. Overlapping triggers
// collapse into one running scan.
func (w *Watcher) Schedule(ctx context.Context) error {
	log.Info("Watching %s on schedule %q", w.cfg.InputDir, w.cfg.CronExpr)

	runFunc := func() {
		_, _, _ = singleflightGroup.Do("scan", func() (any, error) {
			if err := w.runOnce(ctx); err != nil {
				log.Error("Scan of %s failed: %v", w.cfg.InputDir, err)
			}
			return nil, nil
		})
	}
	_, err := w.cron.AddFunc(w.cfg.CronExpr, runFunc)
	return err
}

// Executor returns the queue callback that translates the files named in
// a job's payload.
func (w *Watcher) Executor() jobs.Executor {
	return func(ctx context.Context, job *jobs.Job) error {
		return w.processFiles(ctx, job.Payload.Files, job.Payload.SourceLang, job.Payload.TargetLangs, job.ID)
	}
}

// runOnce scans for fresh files and either enqueues them as one job or,
// without a queue, translates them in place.
func (w *Watcher) runOnce(ctx context.Context) error {
	if _, err := os.Stat(w.cfg.InputDir); os.IsNotExist(err) {
		return NewError(ErrFileNotFound, "input directory does not exist").
			WithContext("dir", w.cfg.InputDir)
	}

	startTime, err := w.startTime()
	if err != nil {
		return WrapError(err, ErrConfig, "failed to resolve scan window")
	}
	w.lastTriggerTime = time.Now()

	recent, err := file.FindRecentAfter(w.cfg.InputDir, startTime)
	if err != nil {
		return WrapError(err, ErrFileRead, "failed to scan input directory")
	}

	var names []string
	for _, path := range recent {
		if !isWatchTarget(path) {
			continue
		}
		rel, err := filepath.Rel(w.cfg.InputDir, path)
		if err != nil {
			rel = filepath.Base(path)
		}
		names = append(names, rel)
	}
	if len(names) == 0 {
		log.Info("No new files in %s since %v", w.cfg.InputDir, startTime)
		return nil
	}
	log.Info("Found %d new files in %s", len(names), w.cfg.InputDir)

	if w.queue != nil {
		job, created := w.queue.Enqueue(jobs.EnqueueRequest{
			Source:    "watch",
			DedupeKey: dedupeKey(names, w.cfg.TargetLangs),
			Payload: jobs.Payload{
				Files:       names,
				SourceLang:  w.cfg.SourceLang,
				TargetLangs: w.cfg.TargetLangs,
			},
		})
		if created {
			log.Info("Enqueued %s for %d files", job.ID, len(names))
		} else {
			log.Info("Scan collapsed into active %s", job.ID)
		}
		return nil
	}

	return w.processFiles(ctx, names, w.cfg.SourceLang, w.cfg.TargetLangs, fmt.Sprintf("watch-%d", startTime.Unix()))
}

// processFiles reads the named files from the input directory, runs the
// batch and writes one output per file and target language.
func (w *Watcher) processFiles(ctx context.Context, names []string, sourceLang string, targetLangs []string, jobID string) error {
	var inputs []InputFile
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(w.cfg.InputDir, name))
		if err != nil {
			log.Error("Failed to read %s: %v", name, err)
			continue
		}
		inputs = append(inputs, InputFile{Name: name, Content: string(data)})
	}
	if len(inputs) == 0 {
		return NewError(ErrFileRead, "none of the queued files could be read").
			WithContext("job", jobID)
	}

	res, err := w.svc.TranslateBatch(ctx, BatchRequest{
		Files:       inputs,
		SourceLang:  sourceLang,
		TargetLangs: targetLangs,
		JobID:       jobID,
	})
	if err != nil {
		return err
	}

	for _, out := range res.Outputs {
		target := filepath.Join(w.cfg.OutputDir, outputName(out.Name, out.TargetLang))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			log.Error("Failed to create output directory for %s: %v", target, err)
			continue
		}
		if err := os.WriteFile(target, []byte(out.Content), 0o644); err != nil {
			log.Error("Failed to write %s: %v", target, err)
			continue
		}
		for _, issue := range out.Issues {
			log.Warn("%s cue %d [%s] %s", target, issue.CueIndex, issue.Type, issue.Message)
		}
	}
	if len(res.Failures) > 0 {
		return NewError(ErrTranslation, fmt.Sprintf("%d of %d files failed", len(res.Failures), len(inputs))).
			WithContext("job", jobID)
	}
	return nil
}

// dedupeKey identifies a scan batch so repeated triggers over the same
// unprocessed files collapse into one job.
func dedupeKey(names, targetLangs []string) string {
	return strings.Join(names, ",") + "|" + strings.Join(targetLangs, ",")
}

// outputName inserts the target language before the extension, e.g.
// "show.srt" and "fr-FR" become "show.fr-FR.srt".
func outputName(name, targetLang string) string {
	ext := filepath.Ext(name)
	return file.ReplaceExt(name, targetLang+ext)
}

func isWatchTarget(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range watchExts {
		if ext == e {
			return true
		}
	}
	return false
}

// startTime picks the scan window start: the previous cron trigger, or a
// week back when the schedule has not fired recently.
func (w *Watcher) startTime() (time.Time, error) {
	if w.lastTriggerTime.IsZero() {
		info, err := icron.GetTriggerInfo(w.cfg.CronExpr, time.Now())
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to get cron schedule: %w", err)
		}

		if time.Now().Add(-24 * time.Hour).Before(info.Last) {
			return time.Now().Add(-24 * 7 * time.Hour), nil
		}
		return info.Last, nil
	}

	return w.lastTriggerTime, nil
}
