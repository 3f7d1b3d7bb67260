package persistence

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &SQLiteStore{db: db}
	if err := store.init(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		return fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		return fmt.Errorf("set busy timeout: %w", err)
	}
	// Bootstrap schema_migrations table so we can track applied versions.
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	entries, err := migrationFiles.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		version := migrationVersion(entry.Name())
		if version <= 0 {
			continue
		}
		var exists int
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, version).Scan(&exists); err != nil {
			return fmt.Errorf("check migration %s: %w", entry.Name(), err)
		}
		if exists > 0 {
			continue
		}
		content, err := migrationFiles.ReadFile(filepath.Join("migrations", entry.Name()))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		if _, err := s.db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
		if _, err := s.db.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
			return fmt.Errorf("record migration %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// migrationVersion extracts the leading integer from a migration filename (e.g. "001_init.sql" → 1).
func migrationVersion(name string) int {
	for i, c := range name {
		if c < '0' || c > '9' {
			if i == 0 {
				return 0
			}
			n, _ := strconv.Atoi(name[:i])
			return n
		}
	}
	n, _ := strconv.Atoi(name)
	return n
}

// HashText derives the cache key component for a source text.
func HashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func (s *SQLiteStore) SetValue(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	return err
}

func (s *SQLiteStore) GetValue(ctx context.Context, key string) (string, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key)
	var value string
	if err := row.Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (s *SQLiteStore) PutTranslation(ctx context.Context, rec TranslationRecord) error {
	if rec.SourceHash == "" {
		rec.SourceHash = HashText(rec.SourceText)
	}
	updatedAt := rec.UpdatedAt.UTC()
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO translation_cache (
			source_hash, target_lang, source_text, translated, provider, updated_at
		) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_hash, target_lang) DO UPDATE SET
			source_text=excluded.source_text,
			translated=excluded.translated,
			provider=excluded.provider,
			updated_at=excluded.updated_at`,
		rec.SourceHash,
		rec.TargetLang,
		rec.SourceText,
		rec.Translated,
		rec.Provider,
		updatedAt,
	)
	return err
}

func (s *SQLiteStore) GetTranslation(ctx context.Context, sourceText, targetLang string) (TranslationRecord, bool, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT source_hash, target_lang, source_text, translated, provider, updated_at
		 FROM translation_cache
		 WHERE source_hash = ? AND target_lang = ?`,
		HashText(sourceText),
		targetLang,
	)
	var rec TranslationRecord
	if err := row.Scan(&rec.SourceHash, &rec.TargetLang, &rec.SourceText, &rec.Translated, &rec.Provider, &rec.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return TranslationRecord{}, false, nil
		}
		return TranslationRecord{}, false, err
	}
	return rec, true, nil
}

// PurgeTranslations removes cached translations last touched before cutoff.
func (s *SQLiteStore) PurgeTranslations(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM translation_cache WHERE updated_at <= ?`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) SaveCheckpoint(ctx context.Context, jobID string, completed map[string]string) error {
	payload, err := json.Marshal(completed)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO job_checkpoints (job_id, completed_json, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(job_id) DO UPDATE SET
			completed_json=excluded.completed_json,
			updated_at=excluded.updated_at`,
		jobID,
		string(payload),
		time.Now().UTC(),
	)
	return err
}

func (s *SQLiteStore) LoadCheckpoint(ctx context.Context, jobID string) (Checkpoint, bool, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT job_id, completed_json, updated_at FROM job_checkpoints WHERE job_id = ?`,
		jobID,
	)
	var cp Checkpoint
	var completedJSON string
	if err := row.Scan(&cp.JobID, &completedJSON, &cp.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return Checkpoint{}, false, nil
		}
		return Checkpoint{}, false, err
	}
	if err := json.Unmarshal([]byte(completedJSON), &cp.Completed); err != nil {
		return Checkpoint{}, false, err
	}
	return cp, true, nil
}

func (s *SQLiteStore) DeleteCheckpoint(ctx context.Context, jobID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM job_checkpoints WHERE job_id = ?`, jobID)
	return err
}
