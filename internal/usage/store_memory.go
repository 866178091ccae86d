package usage

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type memoryStore struct {
	mu   sync.Mutex
	data map[string]Usage
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string]Usage)}
}

func (s *memoryStore) EnsurePeriod(ctx context.Context, userID, plan string) (Usage, error) {
	if err := ctx.Err(); err != nil {
		return Usage{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureLocked(userID, plan), nil
}

func (s *memoryStore) Reserve(ctx context.Context, userID, plan string, docs int, sizeBytes int64) (Usage, error) {
	if err := ctx.Err(); err != nil {
		return Usage{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.ensureLocked(userID, plan)
	if u.DocsUsed+docs > u.DocLimit {
		return Usage{}, fmt.Errorf("%w: document limit %d reached", ErrQuotaExceeded, u.DocLimit)
	}
	if u.StorageUsedBytes+sizeBytes > u.StorageLimitBytes {
		return Usage{}, fmt.Errorf("%w: storage limit %d bytes reached", ErrQuotaExceeded, u.StorageLimitBytes)
	}
	u.DocsUsed += docs
	u.StorageUsedBytes += sizeBytes
	s.data[userID] = u
	return u, nil
}

func (s *memoryStore) Release(ctx context.Context, userID string, docs int, sizeBytes int64) (Usage, error) {
	if err := ctx.Err(); err != nil {
		return Usage{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.ensureLocked(userID, "")
	u.DocsUsed -= docs
	if u.DocsUsed < 0 {
		u.DocsUsed = 0
	}
	u.StorageUsedBytes -= sizeBytes
	if u.StorageUsedBytes < 0 {
		u.StorageUsedBytes = 0
	}
	s.data[userID] = u
	return u, nil
}

func (s *memoryStore) ApplyPlan(ctx context.Context, userID, plan string) (Usage, error) {
	if err := ctx.Err(); err != nil {
		return Usage{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.ensureLocked(userID, plan)
	docLimit, storageLimit := PlanLimits(plan)
	u.Plan = plan
	u.DocLimit = docLimit
	u.StorageLimitBytes = storageLimit
	s.data[userID] = u
	return u, nil
}

func (s *memoryStore) Reset(ctx context.Context, userID string) (Usage, error) {
	if err := ctx.Err(); err != nil {
		return Usage{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.ensureLocked(userID, "")
	u.DocsUsed = 0
	u.ResetsAt = time.Now().UTC().Add(periodLength)
	s.data[userID] = u
	return u, nil
}

func (s *memoryStore) ensureLocked(userID, plan string) Usage {
	u, ok := s.data[userID]
	if !ok {
		u = defaultUsage(plan)
		s.data[userID] = u
		return u
	}
	if !time.Now().UTC().Before(u.ResetsAt) {
		u.DocsUsed = 0
		u.ResetsAt = time.Now().UTC().Add(periodLength)
		s.data[userID] = u
	}
	return u
}

var _ store = (*memoryStore)(nil)
