package documents

import "time"

// Document represents an uploaded PDF owned by a user.
type Document struct {
	ID               string
	UserID           string
	FolderID         string
	FileName         string
	OriginalFilename string
	MimeType         string
	ContentType      string
	SizeBytes        int64
	PageCount        int
	StorageProvider  string
	StorageKey       string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
