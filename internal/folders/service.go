package folders

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

const maxNameLen = 120

var ErrInvalidName = errors.New("folder name must be 1-120 characters")

// DocumentPurger deletes the documents filed in a folder before the folder
// row goes away.
type DocumentPurger interface {
	PurgeFolder(ctx context.Context, userID, folderID string) error
}

type Service struct {
	Repo Repo
	Docs DocumentPurger
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

func (s *Service) Create(ctx context.Context, userID, name string) (Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxNameLen {
		return Folder{}, ErrInvalidName
	}
	folder := Folder{
		ID:     uuid.NewString(),
		UserID: userID,
		Name:   name,
	}
	if err := s.Repo.Create(ctx, folder); err != nil {
		return Folder{}, err
	}
	return s.Repo.GetByID(ctx, userID, folder.ID)
}

func (s *Service) List(ctx context.Context, userID string) ([]Folder, error) {
	return s.Repo.ListByUser(ctx, userID)
}

func (s *Service) Rename(ctx context.Context, userID, folderID, name string) (Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxNameLen {
		return Folder{}, ErrInvalidName
	}
	if err := s.Repo.Rename(ctx, userID, folderID, name); err != nil {
		return Folder{}, err
	}
	return s.Repo.GetByID(ctx, userID, folderID)
}

// Delete removes a folder and its documents. The folder must exist before
// the purge starts so an unknown ID still returns not found.
func (s *Service) Delete(ctx context.Context, userID, folderID string) error {
	if _, err := s.Repo.GetByID(ctx, userID, folderID); err != nil {
		return err
	}
	if s.Docs != nil {
		if err := s.Docs.PurgeFolder(ctx, userID, folderID); err != nil {
			return err
		}
	}
	return s.Repo.Delete(ctx, userID, folderID)
}

// Exists reports whether the folder belongs to the user. Used when
// filing documents.
func (s *Service) Exists(ctx context.Context, userID, folderID string) (bool, error) {
	_, err := s.Repo.GetByID(ctx, userID, folderID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
