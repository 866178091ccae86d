package translations

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Translation
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Translation)}
}

func (r *MemoryRepo) Create(ctx context.Context, tr Translation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[tr.ID] = tr
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, translationID string) (Translation, error) {
	if err := ctx.Err(); err != nil {
		return Translation{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	tr, ok := r.data[translationID]
	if !ok {
		return Translation{}, ErrNotFound
	}
	return cloneTranslation(tr), nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, filter ListFilter) ([]Translation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	limit := filter.Limit
	if limit < 0 {
		limit = 0
	}

	r.mu.RLock()
	out := make([]Translation, 0)
	for _, tr := range r.data {
		if tr.UserID != userID {
			continue
		}
		if filter.DocumentID != "" && tr.DocumentID != filter.DocumentID {
			continue
		}
		out = append(out, cloneTranslation(tr))
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if offset >= len(out) {
		return []Translation{}, nil
	}
	end := len(out)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return out[offset:end], nil
}

func (r *MemoryRepo) MarkProcessing(ctx context.Context, translationID, model string, pageCount int, startedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	tr, ok := r.data[translationID]
	if !ok {
		return ErrNotFound
	}
	tr.Status = StatusProcessing
	if model != "" {
		tr.Model = model
	}
	if pageCount > 0 {
		tr.PageCount = pageCount
	}
	started := startedAt
	tr.StartedAt = &started
	r.data[translationID] = tr
	return nil
}

func (r *MemoryRepo) UpdateProgress(ctx context.Context, translationID string, progress int, pages []Page) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	tr, ok := r.data[translationID]
	if !ok {
		return ErrNotFound
	}
	tr.Progress = progress
	tr.Pages = clonePages(pages)
	r.data[translationID] = tr
	return nil
}

func (r *MemoryRepo) Complete(ctx context.Context, translationID string, pages []Page, completedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	tr, ok := r.data[translationID]
	if !ok {
		return ErrNotFound
	}
	tr.Status = StatusCompleted
	tr.Progress = 100
	tr.Pages = clonePages(pages)
	tr.PageCount = len(pages)
	tr.ErrorCode = ""
	tr.ErrorMessage = ""
	tr.Retryable = nil
	completed := completedAt
	tr.CompletedAt = &completed
	r.data[translationID] = tr
	return nil
}

func (r *MemoryRepo) Fail(ctx context.Context, translationID, code, message string, retryable bool, completedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	tr, ok := r.data[translationID]
	if !ok {
		return ErrNotFound
	}
	tr.Status = StatusFailed
	tr.ErrorCode = code
	tr.ErrorMessage = message
	retry := retryable
	tr.Retryable = &retry
	completed := completedAt
	tr.CompletedAt = &completed
	r.data[translationID] = tr
	return nil
}

func (r *MemoryRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for id, tr := range r.data {
		if tr.UserID == guestUserID {
			tr.UserID = authedUserID
			r.data[id] = tr
			count++
		}
	}
	return count, nil
}

func cloneTranslation(tr Translation) Translation {
	out := tr
	out.Pages = clonePages(tr.Pages)
	return out
}

func clonePages(pages []Page) []Page {
	if pages == nil {
		return nil
	}
	return append([]Page(nil), pages...)
}

var _ Repo = (*MemoryRepo)(nil)
