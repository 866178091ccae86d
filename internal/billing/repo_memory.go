package billing

import (
	"context"
	"sync"
)

// MemoryEventsRepo is an in-memory implementation of EventsRepo.
type MemoryEventsRepo struct {
	mu   sync.Mutex
	seen map[string]string
}

// NewMemoryEventsRepo constructs a MemoryEventsRepo.
func NewMemoryEventsRepo() *MemoryEventsRepo {
	return &MemoryEventsRepo{seen: make(map[string]string)}
}

func (r *MemoryEventsRepo) MarkProcessed(ctx context.Context, eventID, eventType string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.seen[eventID]; ok {
		return false, nil
	}
	r.seen[eventID] = eventType
	return true, nil
}

var _ EventsRepo = (*MemoryEventsRepo)(nil)
