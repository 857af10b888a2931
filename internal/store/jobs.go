package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"siteintel/internal/models"
)

func (s *Store) CreateJob(ctx context.Context, id string, req models.JobRequest) error {
	raw, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode job request: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO jobs (id, status, priority, request, callback_url, total_count)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)
	`, id, models.JobQueued, req.Priority, raw, req.CallbackURL, len(req.Domains))
	if err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

func (s *Store) GetJob(ctx context.Context, id string) (models.JobStatus, error) {
	var js models.JobStatus
	var errText *string
	err := s.pool.QueryRow(ctx, `
		SELECT id, status, priority, total_count, processed_count, created_at, started_at, completed_at, error
		FROM jobs WHERE id = $1
	`, id).Scan(&js.ID, &js.Status, &js.Priority, &js.TotalDomains, &js.ProcessedDomains,
		&js.CreatedAt, &js.StartedAt, &js.CompletedAt, &errText)
	if errors.Is(err, pgx.ErrNoRows) {
		return js, ErrNotFound
	}
	if err != nil {
		return js, fmt.Errorf("get job: %w", err)
	}
	if errText != nil {
		js.Error = *errText
	}
	return js, nil
}

// LoadRequest returns the request a job was submitted with.
func (s *Store) LoadRequest(ctx context.Context, id string) (models.JobRequest, error) {
	var raw []byte
	var req models.JobRequest
	err := s.pool.QueryRow(ctx, `SELECT request FROM jobs WHERE id = $1`, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return req, ErrNotFound
	}
	if err != nil {
		return req, fmt.Errorf("load job request: %w", err)
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return req, fmt.Errorf("decode job request: %w", err)
	}
	return req, nil
}

func (s *Store) MarkProcessing(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE jobs SET status = $2, started_at = COALESCE(started_at, NOW()) WHERE id = $1
	`, id, models.JobProcessing)
	if err != nil {
		return fmt.Errorf("mark job processing: %w", err)
	}
	return nil
}

// SaveResults stores one chunk of results starting at input position offset
// and advances the job's progress in the same transaction.
func (s *Store) SaveResults(ctx context.Context, id string, offset int, results []models.AnalysisResult) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	batch := &pgx.Batch{}
	for i, r := range results {
		data, mErr := json.Marshal(r)
		if mErr != nil {
			return fmt.Errorf("encode result %s: %w", r.Domain, mErr)
		}
		batch.Queue(`
			INSERT INTO results (job_id, position, domain, status, seo_score, data)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (job_id, position) DO UPDATE
			SET domain = EXCLUDED.domain, status = EXCLUDED.status, seo_score = EXCLUDED.seo_score, data = EXCLUDED.data
		`, id, offset+i, r.Domain, string(r.Status), r.SEOScore, data)
	}
	if err = tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("save results: %w", err)
	}

	if _, err = tx.Exec(ctx, `
		UPDATE jobs SET processed_count = (SELECT COUNT(*) FROM results WHERE job_id = $1)
		WHERE id = $1
	`, id); err != nil {
		return fmt.Errorf("update job progress: %w", err)
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *Store) MarkCompleted(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE jobs SET status = $2, completed_at = NOW() WHERE id = $1
	`, id, models.JobCompleted)
	if err != nil {
		return fmt.Errorf("mark job completed: %w", err)
	}
	return nil
}

func (s *Store) MarkFailed(ctx context.Context, id, reason string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE jobs SET status = $2, error = $3, completed_at = NOW() WHERE id = $1
	`, id, models.JobFailed, reason)
	if err != nil {
		return fmt.Errorf("mark job failed: %w", err)
	}
	return nil
}

// Results returns a job's results in input order.
func (s *Store) Results(ctx context.Context, id string) ([]models.AnalysisResult, error) {
	rows, err := s.pool.Query(ctx, `SELECT data FROM results WHERE job_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	out := []models.AnalysisResult{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		var r models.AnalysisResult
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("decode result: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountByStatus returns the number of jobs in each status. Statuses with no
// jobs are reported as zero.
func (s *Store) CountByStatus(ctx context.Context) (map[string]int64, error) {
	counts := map[string]int64{
		models.JobQueued:     0,
		models.JobProcessing: 0,
		models.JobCompleted:  0,
		models.JobFailed:     0,
	}
	rows, err := s.pool.Query(ctx, `SELECT status, COUNT(*) FROM jobs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count jobs: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan job count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
