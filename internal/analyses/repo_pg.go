package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new record with status processing.
func (r *PGRepo) Create(ctx context.Context, id, filename string, meta Meta) error {
	const query = `
INSERT INTO resume_analyses (id, original_filename, status, checksum, size_bytes)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO NOTHING`

	res, err := r.DB.ExecContext(ctx, query, id, filename, string(StatusProcessing), meta.Checksum, meta.SizeBytes)
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAlreadyExists
	}
	return nil
}

// Complete transitions the record to completed in a single conditional update.
func (r *PGRepo) Complete(ctx context.Context, id string, result Result) error {
	const query = `
UPDATE resume_analyses
SET status = 'completed',
    word_count = $2,
    skills = $3::jsonb,
    raw_content = $4,
    analysis_result = $5::jsonb,
    completed_at = now(),
    updated_at = now()
WHERE id = $1::uuid AND status IN ('pending', 'processing')`

	skills := result.Skills
	if skills == nil {
		skills = []string{}
	}
	skillsPayload, err := json.Marshal(skills)
	if err != nil {
		return err
	}
	resultPayload, err := json.Marshal(result.Payload())
	if err != nil {
		return err
	}

	res, err := r.DB.ExecContext(ctx, query, id, result.WordCount, string(skillsPayload), result.RawText, string(resultPayload))
	if err != nil {
		return fmt.Errorf("complete analysis: %w", err)
	}
	return r.checkTransition(ctx, id, res)
}

// Fail transitions the record to failed in a single conditional update.
func (r *PGRepo) Fail(ctx context.Context, id string, failure Failure) error {
	const query = `
UPDATE resume_analyses
SET status = 'failed',
    analysis_result = $2::jsonb,
    completed_at = now(),
    updated_at = now()
WHERE id = $1::uuid AND status IN ('pending', 'processing')`

	payload, err := json.Marshal(failure.Payload())
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, query, id, string(payload))
	if err != nil {
		return fmt.Errorf("fail analysis: %w", err)
	}
	return r.checkTransition(ctx, id, res)
}

// checkTransition tells a missing record apart from one that already finished.
func (r *PGRepo) checkTransition(ctx context.Context, id string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}
	var status string
	err = r.DB.QueryRowContext(ctx, `SELECT status FROM resume_analyses WHERE id = $1::uuid`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lookup analysis status: %w", err)
	}
	return ErrAlreadyTerminal
}

// GetByID returns a record by ID.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Record, error) {
	const query = `
SELECT id, original_filename, status, word_count, skills, raw_content, analysis_result,
       checksum, size_bytes, created_at, updated_at, completed_at
FROM resume_analyses
WHERE id = $1::uuid
LIMIT 1`

	var rec Record
	var status string
	var wordCount sql.NullInt64
	var skills sql.NullString
	var rawContent sql.NullString
	var analysisResult sql.NullString
	var completedAt sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&rec.ID,
		&rec.OriginalFilename,
		&status,
		&wordCount,
		&skills,
		&rawContent,
		&analysisResult,
		&rec.Checksum,
		&rec.SizeBytes,
		&rec.CreatedAt,
		&rec.UpdatedAt,
		&completedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("get analysis: %w", err)
	}
	rec.Status = Status(status)
	if wordCount.Valid {
		n := int(wordCount.Int64)
		rec.WordCount = &n
	}
	if skills.Valid {
		if err := json.Unmarshal([]byte(skills.String), &rec.Skills); err != nil {
			return Record{}, fmt.Errorf("decode skills: %w", err)
		}
	}
	if rawContent.Valid {
		rec.RawContent = &rawContent.String
	}
	if analysisResult.Valid {
		rec.AnalysisResult = map[string]any{}
		if err := json.Unmarshal([]byte(analysisResult.String), &rec.AnalysisResult); err != nil {
			return Record{}, fmt.Errorf("decode analysis result: %w", err)
		}
	}
	if completedAt.Valid {
		rec.CompletedAt = &completedAt.Time
	}
	return rec, nil
}

var _ Repo = (*PGRepo)(nil)
