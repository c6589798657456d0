package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

const testID = "3f2b8c1e-6f0a-4a51-9d7e-2c1b5a4e9f10"

func newMockRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoCreateInsertsProcessing(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("INSERT INTO resume_analyses").
		WithArgs(testID, "resume.pdf", "processing", "abc123", int64(2048)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), testID, "resume.pdf", Meta{Checksum: "abc123", SizeBytes: 2048}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoCreateDuplicate(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("INSERT INTO resume_analyses").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Create(context.Background(), testID, "resume.pdf", Meta{})
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestPGRepoCompleteWritesResult(t *testing.T) {
	repo, mock := newMockRepo(t)
	result := Result{
		Filename:  "resume.pdf",
		WordCount: 50,
		Skills:    []string{"python"},
		Content:   "Jane Doe",
		RawText:   "Jane Doe",
	}
	payload, _ := json.Marshal(result.Payload())

	mock.ExpectExec(`UPDATE resume_analyses\s+SET status = 'completed'.*WHERE id = \$1::uuid AND status IN \('pending', 'processing'\)`).
		WithArgs(testID, 50, `["python"]`, "Jane Doe", string(payload)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Complete(context.Background(), testID, result); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoCompleteAlreadyTerminal(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE resume_analyses").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT status FROM resume_analyses").
		WithArgs(testID).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("failed"))

	err := repo.Complete(context.Background(), testID, Result{Filename: "resume.pdf"})
	if !errors.Is(err, ErrAlreadyTerminal) {
		t.Fatalf("expected ErrAlreadyTerminal, got %v", err)
	}
}

func TestPGRepoFailUnknownID(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE resume_analyses\s+SET status = 'failed'`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT status FROM resume_analyses").
		WithArgs(testID).
		WillReturnError(sql.ErrNoRows)

	err := repo.Fail(context.Background(), testID, Failure{Filename: "resume.pdf", Code: ErrorCodeParseFailure, Message: "bad"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoFailWrapsDriverError(t *testing.T) {
	repo, mock := newMockRepo(t)
	boom := errors.New("connection reset")

	mock.ExpectExec("UPDATE resume_analyses").WillReturnError(boom)

	err := repo.Fail(context.Background(), testID, Failure{Code: ErrorCodeInternal})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped driver error, got %v", err)
	}
}

func TestPGRepoGetByIDCompleted(t *testing.T) {
	repo, mock := newMockRepo(t)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	completed := created.Add(2 * time.Second)

	rows := sqlmock.NewRows([]string{
		"id", "original_filename", "status", "word_count", "skills", "raw_content", "analysis_result",
		"checksum", "size_bytes", "created_at", "updated_at", "completed_at",
	}).AddRow(
		testID, "resume.pdf", "completed", int64(3), `["docker","python"]`, "a b c",
		`{"filename":"resume.pdf","word_count":3,"skills":["docker","python"],"content":"a b c"}`,
		"abc", int64(10), created, completed, completed,
	)
	mock.ExpectQuery("SELECT id, original_filename, status").
		WithArgs(testID).
		WillReturnRows(rows)

	rec, err := repo.GetByID(context.Background(), testID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if rec.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", rec.Status)
	}
	if rec.WordCount == nil || *rec.WordCount != 3 {
		t.Fatalf("unexpected word count %v", rec.WordCount)
	}
	if len(rec.Skills) != 2 || rec.Skills[0] != "docker" {
		t.Fatalf("unexpected skills %v", rec.Skills)
	}
	if rec.RawContent == nil || *rec.RawContent != "a b c" {
		t.Fatalf("unexpected raw content %v", rec.RawContent)
	}
	if rec.AnalysisResult["filename"] != "resume.pdf" {
		t.Fatalf("unexpected analysis result %v", rec.AnalysisResult)
	}
	if rec.CompletedAt == nil || !rec.CompletedAt.Equal(completed) {
		t.Fatalf("unexpected completed_at %v", rec.CompletedAt)
	}
}

func TestPGRepoGetByIDProcessingHasNullFields(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{
		"id", "original_filename", "status", "word_count", "skills", "raw_content", "analysis_result",
		"checksum", "size_bytes", "created_at", "updated_at", "completed_at",
	}).AddRow(testID, "cv.docx", "processing", nil, nil, nil, nil, "", int64(0), now, now, nil)
	mock.ExpectQuery("SELECT id, original_filename, status").WillReturnRows(rows)

	rec, err := repo.GetByID(context.Background(), testID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if rec.Status != StatusProcessing || rec.WordCount != nil || rec.Skills != nil || rec.AnalysisResult != nil || rec.CompletedAt != nil {
		t.Fatalf("expected bare processing record, got %+v", rec)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT id, original_filename, status").WillReturnError(sql.ErrNoRows)

	if _, err := repo.GetByID(context.Background(), testID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
