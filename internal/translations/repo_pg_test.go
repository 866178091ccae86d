package translations

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoCreateWritesQueuedRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	tr := Translation{
		ID:             "tr-1",
		DocumentID:     "doc-1",
		UserID:         "user-1",
		TargetLanguage: "French",
		Provider:       "gemini",
		Model:          "gemini-2.0-flash",
		Status:         StatusQueued,
		Progress:       0,
		CreatedAt:      time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO translations").
		WithArgs(
			tr.ID,
			tr.DocumentID,
			tr.UserID,
			tr.TargetLanguage,
			sqlmock.AnyArg(), // provider
			sqlmock.AnyArg(), // model
			tr.Status,
			tr.Progress,
			sqlmock.AnyArg(), // created_at
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), tr); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDDecodesPages(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	created := time.Date(2026, time.February, 1, 10, 0, 0, 0, time.UTC)
	pages := []byte(`[{"pageNumber":1,"originalText":"alpha","translatedText":"alpha-fr"}]`)

	rows := sqlmock.NewRows([]string{
		"id", "document_id", "user_id", "target_language", "provider", "model",
		"status", "progress", "page_count", "pages", "error_code", "error_message",
		"retryable", "created_at", "started_at", "completed_at",
	}).AddRow(
		"tr-1", "doc-1", "user-1", "French", "gemini", "gemini-2.0-flash",
		StatusCompleted, 100, 1, pages, nil, nil,
		nil, created, created, created,
	)
	mock.ExpectQuery("SELECT .+ FROM translations").
		WithArgs("tr-1").
		WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), "tr-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != StatusCompleted || got.Progress != 100 {
		t.Fatalf("unexpected status/progress: %s/%d", got.Status, got.Progress)
	}
	if len(got.Pages) != 1 || got.Pages[0].TranslatedText != "alpha-fr" {
		t.Fatalf("pages not decoded: %+v", got.Pages)
	}
	if got.CompletedAt == nil || !got.CompletedAt.Equal(created) {
		t.Fatalf("completed_at not scanned")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoFailRequiresExistingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectExec("UPDATE translations").
		WithArgs(StatusFailed, "internal", "boom", false, sqlmock.AnyArg(), "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.Fail(context.Background(), "missing", "internal", "boom", false, time.Now().UTC())
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
