package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingokit/lingokit/internal/content"
	"github.com/lingokit/lingokit/internal/jobs"
	"github.com/lingokit/lingokit/internal/pattern"
	"github.com/lingokit/lingokit/internal/provider"
)

func TestOutputName(t *testing.T) {
	assert.Equal(t, "show.fr-FR.srt", outputName("show.srt", "fr-FR"))
	assert.Equal(t, filepath.Join("nested", "ui.de-DE.json"), outputName(filepath.Join("nested", "ui.json"), "de-DE"))
}

func TestIsWatchTarget(t *testing.T) {
	assert.True(t, isWatchTarget("/in/a.SRT"))
	assert.True(t, isWatchTarget("/in/a.json"))
	assert.False(t, isWatchTarget("/in/movie.mkv"))
}

func TestWatcher_RunOnceTranslatesNewFiles(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(inputDir, "hello.txt"), []byte("Hello"), 0o644))

	mock := provider.NewMockProvider()
	mock.Translations["Hello"] = "Bonjour"
	svc := newTestService(t, Config{}, nil, nil, nil, mock)

	w := NewWatcher(WatcherConfig{
		InputDir:    inputDir,
		OutputDir:   outputDir,
		CronExpr:    "0 * * * *",
		SourceLang:  "en-US",
		TargetLangs: []string{"fr-FR"},
	}, svc, cron.New(), nil)

	require.NoError(t, w.runOnce(context.Background()))

	data, err := os.ReadFile(filepath.Join(outputDir, "hello.fr-FR.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Bonjour", string(data))
}

func TestWatcher_RunOnceMissingDir(t *testing.T) {
	svc := newTestService(t, Config{}, nil, nil, nil, provider.NewMockProvider())
	w := NewWatcher(WatcherConfig{
		InputDir: filepath.Join(t.TempDir(), "nope"),
		CronExpr: "0 * * * *",
	}, svc, cron.New(), nil)

	err := w.runOnce(context.Background())
	assert.True(t, IsErrorType(err, ErrFileNotFound))
}

func TestWatcher_RunOnceEnqueuesWhenQueueAttached(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(inputDir, "hello.txt"), []byte("Hello"), 0o644))

	mock := provider.NewMockProvider()
	mock.Translations["Hello"] = "Bonjour"
	svc := newTestService(t, Config{}, nil, nil, nil, mock)

	q := jobs.NewQueue(1, nil)
	w := NewWatcher(WatcherConfig{
		InputDir:    inputDir,
		OutputDir:   outputDir,
		CronExpr:    "0 * * * *",
		SourceLang:  "en-US",
		TargetLangs: []string{"fr-FR"},
	}, svc, cron.New(), q)

	q.Start(w.Executor())
	defer q.Stop()

	require.NoError(t, w.runOnce(context.Background()))

	queued := q.List()
	require.Len(t, queued, 1)

	require.Eventually(t, func() bool {
		got, ok := q.Get(queued[0].ID)
		return ok && got.Status == jobs.StatusSuccess
	}, 2*time.Second, 10*time.Millisecond)

	data, err := os.ReadFile(filepath.Join(outputDir, "hello.fr-FR.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Bonjour", string(data))
}

func TestDedupeKey(t *testing.T) {
	a := dedupeKey([]string{"a.srt", "b.srt"}, []string{"fr-FR"})
	b := dedupeKey([]string{"a.srt", "b.srt"}, []string{"fr-FR"})
	c := dedupeKey([]string{"a.srt"}, []string{"fr-FR"})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestWatcher_RunOnceTranslatesJSONDocument(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()
	raw := `{"locale":"en-US","greeting":"Hello","farewell":"Goodbye"}`
	require.NoError(t, os.WriteFile(filepath.Join(inputDir, "ui.json"), []byte(raw), 0o644))

	mock := provider.NewMockProvider()
	mock.Translations["Hello"] = "Bonjour"
	mock.Translations["Goodbye"] = "Au revoir"
	extractor := content.NewExtractor(pattern.DefaultRegistry())
	svc := New(Config{}, extractor, nil, nil, nil, nil, mock)

	w := NewWatcher(WatcherConfig{
		InputDir:    inputDir,
		OutputDir:   outputDir,
		CronExpr:    "0 * * * *",
		SourceLang:  "en-US",
		TargetLangs: []string{"fr-FR"},
	}, svc, cron.New(), nil)

	require.NoError(t, w.runOnce(context.Background()))

	data, err := os.ReadFile(filepath.Join(outputDir, "ui.fr-FR.json"))
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `"greeting":"Bonjour"`)
	assert.Contains(t, out, `"farewell":"Au revoir"`)
	assert.Contains(t, out, `"locale":"fr-FR"`)
}
