package analyses

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo stores records in memory and is safe for concurrent use.
// Transitions swap the whole record under the lock, so readers see either
// the old or the new state.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Record
	now  func() time.Time
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID: make(map[string]Record),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a new record with status processing.
func (r *MemoryRepo) Create(ctx context.Context, id, filename string, meta Meta) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[id]; exists {
		return ErrAlreadyExists
	}
	now := r.now()
	r.byID[id] = Record{
		ID:               id,
		OriginalFilename: filename,
		Status:           StatusProcessing,
		Checksum:         meta.Checksum,
		SizeBytes:        meta.SizeBytes,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	return nil
}

// Complete transitions the record to completed.
func (r *MemoryRepo) Complete(ctx context.Context, id string, result Result) error {
	wordCount := result.WordCount
	rawText := result.RawText
	skills := append([]string{}, result.Skills...)
	return r.transition(ctx, id, func(rec *Record) {
		rec.Status = StatusCompleted
		rec.WordCount = &wordCount
		rec.Skills = skills
		rec.RawContent = &rawText
		rec.AnalysisResult = result.Payload()
	})
}

// Fail transitions the record to failed.
func (r *MemoryRepo) Fail(ctx context.Context, id string, failure Failure) error {
	return r.transition(ctx, id, func(rec *Record) {
		rec.Status = StatusFailed
		rec.AnalysisResult = failure.Payload()
	})
}

func (r *MemoryRepo) transition(ctx context.Context, id string, apply func(*Record)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	if rec.Status.Terminal() {
		return ErrAlreadyTerminal
	}
	apply(&rec)
	now := r.now()
	rec.UpdatedAt = now
	rec.CompletedAt = &now
	r.byID[id] = rec
	return nil
}

// GetByID returns a copy of the record.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.byID[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	if rec.Skills != nil {
		rec.Skills = append([]string{}, rec.Skills...)
	}
	return rec, nil
}

var _ Repo = (*MemoryRepo)(nil)
