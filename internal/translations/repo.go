package translations

import (
	"context"
	"time"
)

// ListFilter narrows ListByUser results.
type ListFilter struct {
	DocumentID string // "" means all documents
	Limit      int
	Offset     int
}

// Repo defines persistence operations for translation jobs.
type Repo interface {
	Create(ctx context.Context, tr Translation) error
	GetByID(ctx context.Context, translationID string) (Translation, error)
	ListByUser(ctx context.Context, userID string, filter ListFilter) ([]Translation, error)
	MarkProcessing(ctx context.Context, translationID, model string, pageCount int, startedAt time.Time) error
	UpdateProgress(ctx context.Context, translationID string, progress int, pages []Page) error
	Complete(ctx context.Context, translationID string, pages []Page, completedAt time.Time) error
	Fail(ctx context.Context, translationID, code, message string, retryable bool, completedAt time.Time) error
	ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error)
}
