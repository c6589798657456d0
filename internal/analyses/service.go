package analyses

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"resume-analyzer/internal/extract"
	"resume-analyzer/internal/shared/metrics"
	"resume-analyzer/internal/shared/telemetry"
	"resume-analyzer/internal/shared/util"
)

// Service accepts submissions, hands them to the worker pool and records outcomes.
type Service struct {
	repo  Repo
	pool  *WorkerPool
	newID func() string
}

// NewService wires the store and the pipeline through a WorkerPool whose
// completion callback performs the store transition.
func NewService(repo Repo, analyzer Analyzer, opts PoolOptions) *Service {
	s := &Service{repo: repo, newID: uuid.NewString}
	s.pool = NewWorkerPool(analyzer, s.complete, opts)
	return s
}

// Submit creates a processing record and queues the analysis. When the queue
// rejects the task the record is marked failed and the queue error returned
// together with the record.
func (s *Service) Submit(ctx context.Context, filename string, data []byte) (Record, error) {
	id := s.newID()
	meta := Meta{Checksum: util.Checksum(data), SizeBytes: int64(len(data))}
	if err := s.repo.Create(ctx, id, filename, meta); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return Record{}, err
		}
		return Record{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	rec := Record{
		ID:               id,
		OriginalFilename: filename,
		Status:           StatusProcessing,
		Checksum:         meta.Checksum,
		SizeBytes:        meta.SizeBytes,
	}

	task := Task{ID: id, Filename: filename, Data: data, SubmittedAt: time.Now().UTC()}
	if err := s.pool.Submit(ctx, task); err != nil {
		s.fail(ctx, task, Failure{
			Filename: filename,
			Code:     ErrorCodeInternal,
			Message:  sanitizeError(err),
		})
		rec.Status = StatusFailed
		return rec, err
	}

	metrics.IncAnalysisStarted()
	telemetry.Info("analysis.status", map[string]any{
		"request_id":        telemetry.RequestIDFromContext(ctx),
		"analysis_id":       id,
		"filename":          filename,
		"size_bytes":        meta.SizeBytes,
		"status":            StatusProcessing,
		"status_transition": "->processing",
	})
	return rec, nil
}

// Get returns the current state of a record.
func (s *Service) Get(ctx context.Context, id string) (Record, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Record{}, err
		}
		return Record{}, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return rec, nil
}

// Close stops accepting work and drains queued analyses.
func (s *Service) Close(ctx context.Context) error {
	return s.pool.Close(ctx)
}

func (s *Service) complete(ctx context.Context, task Task, result Result, err error) {
	if err != nil {
		s.fail(ctx, task, Failure{
			Filename: task.Filename,
			Code:     classifyFailure(err),
			Message:  sanitizeError(err),
		})
		return
	}

	if err := s.repo.Complete(ctx, task.ID, result); err != nil {
		if errors.Is(err, ErrAlreadyTerminal) || errors.Is(err, ErrNotFound) {
			s.transitionFailed(ctx, task, StatusCompleted, err)
			return
		}
		s.fail(ctx, task, Failure{
			Filename: task.Filename,
			Code:     ErrorCodeStorage,
			Message:  sanitizeError(fmt.Errorf("store result: %w", err)),
		})
		return
	}

	duration := durationMs(task.SubmittedAt, time.Now().UTC())
	metrics.IncAnalysisCompleted()
	metrics.ObserveAnalysisDurationMs(duration)
	telemetry.Info("analysis.status", map[string]any{
		"request_id":        telemetry.RequestIDFromContext(ctx),
		"analysis_id":       task.ID,
		"status":            StatusCompleted,
		"status_transition": "processing->completed",
		"word_count":        result.WordCount,
		"skills":            strings.Join(result.Skills, ","),
		"duration_ms":       duration,
	})
}

func (s *Service) fail(ctx context.Context, task Task, failure Failure) {
	if err := s.repo.Fail(ctx, task.ID, failure); err != nil {
		s.transitionFailed(ctx, task, StatusFailed, err)
		return
	}
	duration := durationMs(task.SubmittedAt, time.Now().UTC())
	metrics.IncAnalysisFailed()
	metrics.ObserveAnalysisDurationMs(duration)
	telemetry.Warn("analysis.status", map[string]any{
		"request_id":        telemetry.RequestIDFromContext(ctx),
		"analysis_id":       task.ID,
		"status":            StatusFailed,
		"status_transition": "processing->failed",
		"error_code":        failure.Code,
		"error":             failure.Message,
		"duration_ms":       duration,
	})
}

// transitionFailed surfaces a record that could not reach its terminal state.
func (s *Service) transitionFailed(ctx context.Context, task Task, target Status, err error) {
	metrics.IncTransitionFailure()
	telemetry.Error("analysis.transition_failed", map[string]any{
		"request_id":  telemetry.RequestIDFromContext(ctx),
		"analysis_id": task.ID,
		"target":      target,
		"error":       err,
	})
}

func durationMs(startedAt, completedAt time.Time) float64 {
	if startedAt.IsZero() || completedAt.IsZero() {
		return 0
	}
	return float64(completedAt.Sub(startedAt).Microseconds()) / 1000.0
}

func classifyFailure(err error) string {
	switch {
	case err == nil:
		return ErrorCodeInternal
	case errors.Is(err, ErrUnsupportedFormat):
		return ErrorCodeUnsupportedFormat
	case errors.Is(err, extract.ErrParseFailure):
		return ErrorCodeParseFailure
	case errors.Is(err, ErrStorage):
		return ErrorCodeStorage
	default:
		return ErrorCodeInternal
	}
}

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(msg)
	const maxLen = 500
	if utf8.RuneCountInString(msg) > maxLen {
		msg = string([]rune(msg)[:maxLen])
	}
	return msg
}
