package users

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]User
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]User)}
}

func (r *MemoryRepo) Upsert(ctx context.Context, user User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	existing, ok := r.data[user.ID]
	if ok {
		user.Plan = existing.Plan
		user.StripeCustomerID = existing.StripeCustomerID
		user.CreatedAt = existing.CreatedAt
	} else {
		if user.Plan == "" {
			user.Plan = PlanFree
		}
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	r.data[user.ID] = user
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.data[userID]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (r *MemoryRepo) GetByStripeCustomer(ctx context.Context, customerID string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.data {
		if user.StripeCustomerID == customerID && customerID != "" {
			return user, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *MemoryRepo) SetPlan(ctx context.Context, userID, plan string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.data[userID]
	if !ok {
		return ErrNotFound
	}
	user.Plan = plan
	user.UpdatedAt = time.Now().UTC()
	r.data[userID] = user
	return nil
}

func (r *MemoryRepo) SetStripeCustomer(ctx context.Context, userID, customerID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.data[userID]
	if !ok {
		return ErrNotFound
	}
	user.StripeCustomerID = customerID
	user.UpdatedAt = time.Now().UTC()
	r.data[userID] = user
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
