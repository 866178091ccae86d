package folders

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Folder

	// DetachDocuments, when set, is called on delete so the in-memory
	// documents repo can clear folder assignments.
	DetachDocuments func(userID, folderID string)
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Folder)}
}

func (r *MemoryRepo) Create(ctx context.Context, folder Folder) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	folder.CreatedAt = now
	folder.UpdatedAt = now
	r.data[folder.ID] = folder
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID, folderID string) (Folder, error) {
	if err := ctx.Err(); err != nil {
		return Folder{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	folder, ok := r.data[folderID]
	if !ok || folder.UserID != userID {
		return Folder{}, ErrNotFound
	}
	return folder, nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Folder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Folder, 0)
	for _, folder := range r.data {
		if folder.UserID == userID {
			out = append(out, folder)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepo) Rename(ctx context.Context, userID, folderID, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	folder, ok := r.data[folderID]
	if !ok || folder.UserID != userID {
		return ErrNotFound
	}
	folder.Name = name
	folder.UpdatedAt = time.Now().UTC()
	r.data[folderID] = folder
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, userID, folderID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	folder, ok := r.data[folderID]
	if !ok || folder.UserID != userID {
		r.mu.Unlock()
		return ErrNotFound
	}
	delete(r.data, folderID)
	detach := r.DetachDocuments
	r.mu.Unlock()

	if detach != nil {
		detach(userID, folderID)
	}
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
