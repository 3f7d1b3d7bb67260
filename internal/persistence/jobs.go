package persistence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/lingokit/lingokit/internal/jobs"
)

// SQLiteStore implements jobs.Store so queued work survives restarts.

func (s *SQLiteStore) LoadJobs(ctx context.Context) ([]*jobs.Job, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, source, dedupe_key, payload_json, status, error, created_at, updated_at FROM jobs`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ret []*jobs.Job
	for rows.Next() {
		var job jobs.Job
		var payloadJSON string
		var status string
		if err := rows.Scan(
			&job.ID,
			&job.Source,
			&job.DedupeKey,
			&payloadJSON,
			&status,
			&job.Error,
			&job.CreatedAt,
			&job.UpdatedAt,
		); err != nil {
			return nil, err
		}
		job.Status = jobs.Status(status)
		if err := json.Unmarshal([]byte(payloadJSON), &job.Payload); err != nil {
			return nil, err
		}
		ret = append(ret, &job)
	}
	return ret, rows.Err()
}

func (s *SQLiteStore) UpsertJob(ctx context.Context, job *jobs.Job) error {
	payload, err := json.Marshal(job.Payload)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO jobs (id, source, dedupe_key, payload_json, status, error, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			source=excluded.source,
			dedupe_key=excluded.dedupe_key,
			payload_json=excluded.payload_json,
			status=excluded.status,
			error=excluded.error,
			updated_at=excluded.updated_at`,
		job.ID,
		job.Source,
		job.DedupeKey,
		string(payload),
		string(job.Status),
		job.Error,
		job.CreatedAt.UTC(),
		job.UpdatedAt.UTC(),
	)
	return err
}

func (s *SQLiteStore) DeleteJob(ctx context.Context, jobID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, jobID)
	return err
}

// DeleteJobData drops the progress checkpoint accumulated for a job.
func (s *SQLiteStore) DeleteJobData(ctx context.Context, jobID string) error {
	return s.DeleteCheckpoint(ctx, jobID)
}

var _ jobs.Store = (*SQLiteStore)(nil)

func (s *MemoryStore) LoadJobs(_ context.Context) ([]*jobs.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ret := make([]*jobs.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		tmp := *job
		ret = append(ret, &tmp)
	}
	return ret, nil
}

func (s *MemoryStore) UpsertJob(_ context.Context, job *jobs.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmp := *job
	if tmp.UpdatedAt.IsZero() {
		tmp.UpdatedAt = time.Now()
	}
	s.jobs[job.ID] = &tmp
	return nil
}

func (s *MemoryStore) DeleteJob(_ context.Context, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.jobs, jobID)
	return nil
}

func (s *MemoryStore) DeleteJobData(ctx context.Context, jobID string) error {
	return s.DeleteCheckpoint(ctx, jobID)
}

var _ jobs.Store = (*MemoryStore)(nil)
