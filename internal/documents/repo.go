package documents

import "context"

var (
	ErrNotFound     = errNotFound{}
	ErrInvalidInput = errInvalidInput{}
)

type errNotFound struct{}

func (errNotFound) Error() string { return "document not found" }

type errInvalidInput struct{}

func (errInvalidInput) Error() string { return "invalid input" }

// ListFilter narrows ListByUser results.
type ListFilter struct {
	FolderID string // "" means all folders
	Limit    int
	Offset   int
}

// DocumentsRepo defines persistence operations for documents.
type DocumentsRepo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, userID, documentID string) (Document, error)
	ListByUser(ctx context.Context, userID string, filter ListFilter) ([]Document, error)
	SetFolder(ctx context.Context, userID, documentID, folderID string) error
	SoftDelete(ctx context.Context, userID, documentID string) error
	ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error)
}
