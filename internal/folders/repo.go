package folders

import "context"

var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "folder not found" }

type Repo interface {
	Create(ctx context.Context, folder Folder) error
	GetByID(ctx context.Context, userID, folderID string) (Folder, error)
	ListByUser(ctx context.Context, userID string) ([]Folder, error)
	Rename(ctx context.Context, userID, folderID, name string) error
	// Delete soft-deletes the folder and detaches its documents.
	Delete(ctx context.Context, userID, folderID string) error
}
